// Package catalog loads product and behaviour fixtures from JSON or YAML
// files and offers id lookup and fuzzy text search over the products.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/shop-recommender/internal/model"
	"github.com/rcliao/shop-recommender/internal/scorer"
)

// Catalog is an immutable product set with the shopper's action log.
type Catalog struct {
	Products []model.Product
	Actions  []model.UserAction

	byID  map[string]int
	index searchIndex
}

// New indexes products. Later duplicates of an id shadow earlier ones in
// Lookup but stay in Products.
func New(products []model.Product, actions []model.UserAction) *Catalog {
	c := &Catalog{
		Products: products,
		Actions:  actions,
		byID:     make(map[string]int, len(products)),
		index:    make(searchIndex, len(products)),
	}
	for i, p := range products {
		c.byID[p.ID] = i
		c.index[i] = searchText(p)
	}
	return c
}

// Load reads the product file and, when actionsPath is set, the action
// log concurrently.
func Load(ctx context.Context, productsPath, actionsPath string) (*Catalog, error) {
	var products []model.Product
	var actions []model.UserAction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		products, err = LoadProducts(productsPath)
		return err
	})
	if actionsPath != "" {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var err error
			actions, err = LoadActions(actionsPath)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return New(products, actions), nil
}

// LoadProducts decodes a list of products from a .json, .yaml or .yml file.
func LoadProducts(path string) ([]model.Product, error) {
	var products []model.Product
	if err := decodeFile(path, &products); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for i, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("load products: %s: entry %d has no id", path, i)
		}
	}
	return products, nil
}

// LoadActions decodes a behaviour event list.
func LoadActions(path string) ([]model.UserAction, error) {
	var actions []model.UserAction
	if err := decodeFile(path, &actions); err != nil {
		return nil, fmt.Errorf("load actions: %w", err)
	}
	return actions, nil
}

func decodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Lookup returns the product with id.
func (c *Catalog) Lookup(id string) (model.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return c.Products[i], true
}

// UserContext folds the action log into a behaviour context.
func (c *Catalog) UserContext() model.UserContext {
	return scorer.BuildUserContextFromActions(c.Actions, c.Lookup)
}

// Search fuzzy-matches each query term against title, brand, category and
// tags. Products matching more terms rank first, then by summed match
// score. limit <= 0 returns every match.
func (c *Catalog) Search(query string, limit int) []model.Product {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []model.Product{}
	}

	type hit struct {
		idx   int
		terms int
		score int
	}
	hits := make(map[int]*hit)
	for _, term := range terms {
		for _, m := range fuzzy.FindFrom(term, c.index) {
			h, ok := hits[m.Index]
			if !ok {
				h = &hit{idx: m.Index}
				hits[m.Index] = h
			}
			h.terms++
			h.score += m.Score
		}
	}

	ranked := make([]*hit, 0, len(hits))
	for _, h := range hits {
		ranked = append(ranked, h)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].terms != ranked[j].terms {
			return ranked[i].terms > ranked[j].terms
		}
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].idx < ranked[j].idx
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]model.Product, len(ranked))
	for i, h := range ranked {
		out[i] = c.Products[h.idx]
	}
	return out
}

// searchIndex implements fuzzy.Source over lower-cased product text.
type searchIndex []string

func (s searchIndex) String(i int) string { return s[i] }
func (s searchIndex) Len() int            { return len(s) }

func searchText(p model.Product) string {
	parts := []string{p.Title, p.Brand, p.Category, p.SubCategory}
	parts = append(parts, p.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}
