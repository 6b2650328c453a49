// Package scorer ranks catalog products for a shopper by blending what they
// asked for in chat, how they behaved on the site, and product popularity.
package scorer

import (
	"math"
	"sort"
	"strings"

	"github.com/rcliao/shop-recommender/internal/model"
)

const (
	DefaultTopLimit = 5
	DefaultMinScore = 30
)

// Sub-score weights of the total.
const (
	chatWeight       = 0.4
	behaviorWeight   = 0.4
	popularityWeight = 0.2
)

const (
	ReasonCategory   = "Matches your search category"
	ReasonColor      = "Matches your color preference"
	ReasonBudget     = "Within your budget"
	ReasonViewed     = "Similar to products you viewed"
	ReasonCartBrand  = "Same brand as items in your cart"
	ReasonHighRating = "Highly rated"
	ReasonBestSeller = "Best seller"
	ReasonPopular    = "Popular"
)

// ScoreProducts scores every product and returns them highest first. Ties
// keep their input order. current may be nil when only the accumulated
// context is known.
func ScoreProducts(products []model.Product, ctx model.UserContext, current *model.ExtractedKeywords) []model.ScoredProduct {
	out := make([]model.ScoredProduct, 0, len(products))
	for _, p := range products {
		out = append(out, Score(p, ctx, current))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Score computes one product's total score, breakdown and reasons.
func Score(p model.Product, ctx model.UserContext, current *model.ExtractedKeywords) model.ScoredProduct {
	chat, chatReasons := ChatScore(p, ctx, current)
	behavior, behaviorReasons := BehaviorScore(p, ctx)
	popularity, popularityReasons := PopularityScore(p)

	total := int(math.Round(float64(chat)*chatWeight + float64(behavior)*behaviorWeight + float64(popularity)*popularityWeight))

	reasons := make([]string, 0, len(chatReasons)+len(behaviorReasons)+len(popularityReasons))
	reasons = appendUnique(reasons, chatReasons...)
	reasons = appendUnique(reasons, behaviorReasons...)
	reasons = appendUnique(reasons, popularityReasons...)

	return model.ScoredProduct{
		Product: p,
		Score:   total,
		Breakdown: model.ScoreBreakdown{
			Chat:       chat,
			Behavior:   behavior,
			Popularity: popularity,
		},
		MatchReasons: reasons,
	}
}

// ChatScore rates p against the current message's keywords and, with a
// smaller weight, the categories and brands mentioned earlier in the chat.
func ChatScore(p model.Product, ctx model.UserContext, current *model.ExtractedKeywords) (int, []string) {
	score := 0
	var reasons []string

	category := strings.ToLower(p.Category)
	tags := lowerAll(p.Tags)

	if current != nil {
		if matchesCategory(category, tags, current.Categories) {
			score += 30
			reasons = append(reasons, ReasonCategory)
		}
		if p.Brand != "" && containsFold(current.Brands, p.Brand) {
			score += 25
			reasons = append(reasons, "Brand: "+p.Brand)
		}
		if overlapsFold(p.Colors, current.Colors) {
			score += 15
			reasons = append(reasons, ReasonColor)
		}
		if current.PriceRange.Contains(p.Price) {
			score += 20
			reasons = append(reasons, ReasonBudget)
		}
		// Tag hits are a tie-breaker and carry no reason.
		if n := countTagMatches(tags, current.RawKeywords); n > 0 {
			score += min(5*n, 10)
		}
	}

	// Earlier turns of the conversation.
	for _, c := range ctx.ChatCategories {
		if c != "" && strings.Contains(category, strings.ToLower(c)) {
			score += 10
			break
		}
	}
	if p.Brand != "" && containsFold(ctx.ChatBrands, p.Brand) {
		score += 10
	}

	return clamp(score), reasons
}

// BehaviorScore rates p against the shopper's browsing, cart and wishlist.
func BehaviorScore(p model.Product, ctx model.UserContext) (int, []string) {
	score := 0
	var reasons []string

	if p.Category != "" && containsFold(ctx.ViewedCategories, p.Category) {
		score += 25
		reasons = append(reasons, ReasonViewed)
	}
	if p.Brand != "" && containsFold(ctx.CartBrands, p.Brand) {
		score += 30
		reasons = append(reasons, ReasonCartBrand)
	}
	// Flat nudge for shoppers with anything in the cart, whatever it is.
	if len(ctx.CartProductIDs) > 0 {
		score += 15
	}
	if !contains(ctx.WishlistProductIDs, p.ID) {
		score += 10
	}
	if overlapsFold(p.Colors, ctx.PreferredColors) {
		score += 10
		reasons = append(reasons, ReasonColor)
	}
	if ctx.PriceRange.Contains(p.Price) {
		score += 10
	}

	return clamp(score), reasons
}

// PopularityScore rates p on rating, sales, traffic and cart conversion.
// Each signal contributes only its highest tier.
func PopularityScore(p model.Product) (int, []string) {
	score := 0
	var reasons []string

	switch {
	case p.Rating >= 4.5:
		score += 30
		reasons = append(reasons, ReasonHighRating)
	case p.Rating >= 4.0:
		score += 20
	case p.Rating >= 3.5:
		score += 10
	}

	switch {
	case p.TotalSales >= 100:
		score += 30
		reasons = append(reasons, ReasonBestSeller)
	case p.TotalSales >= 50:
		score += 20
	case p.TotalSales >= 10:
		score += 10
	}

	if p.Views != nil {
		switch {
		case *p.Views >= 1000:
			score += 20
			reasons = append(reasons, ReasonPopular)
		case *p.Views >= 100:
			score += 10
		}

		if p.CartAdds != nil && *p.Views > 0 {
			rate := float64(*p.CartAdds) / float64(*p.Views)
			switch {
			case rate >= 0.10:
				score += 20
			case rate >= 0.05:
				score += 10
			}
		}
	}

	return clamp(score), reasons
}

// TopRecommendations keeps the first limit entries scoring at least
// minScore. scored must already be sorted; see ScoreProducts.
func TopRecommendations(scored []model.ScoredProduct, limit, minScore int) []model.ScoredProduct {
	out := []model.ScoredProduct{}
	if limit <= 0 {
		return out
	}
	for _, s := range scored {
		if s.Score < minScore {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

// BuildUserContextFromActions folds a raw behaviour log into the behaviour
// half of a UserContext. Products lookup cannot resolve still have their id
// recorded; only the metadata-derived fields skip them.
func BuildUserContextFromActions(actions []model.UserAction, lookup func(id string) (model.Product, bool)) model.UserContext {
	var ctx model.UserContext
	var priceSum float64
	var priceCount int

	find := func(id string) (model.Product, bool) {
		if lookup == nil {
			return model.Product{}, false
		}
		return lookup(id)
	}

	for _, a := range actions {
		if a.ProductID == "" {
			continue
		}
		switch a.Type {
		case model.ActionProductView:
			ctx.ViewedProductIDs = appendUnique(ctx.ViewedProductIDs, a.ProductID)
			p, ok := find(a.ProductID)
			if !ok {
				continue
			}
			if p.Category != "" {
				ctx.ViewedCategories = appendUnique(ctx.ViewedCategories, p.Category)
			}
			ctx.PreferredColors = appendUnique(ctx.PreferredColors, p.Colors...)
			// Averaged per view event, so repeat views weigh more.
			if p.Price > 0 {
				priceSum += p.Price
				priceCount++
			}
		case model.ActionAddToCart:
			ctx.CartProductIDs = appendUnique(ctx.CartProductIDs, a.ProductID)
			if p, ok := find(a.ProductID); ok && p.Brand != "" {
				ctx.CartBrands = appendUnique(ctx.CartBrands, p.Brand)
			}
		case model.ActionAddToWishlist:
			ctx.WishlistProductIDs = appendUnique(ctx.WishlistProductIDs, a.ProductID)
		}
	}

	if priceCount > 0 {
		avg := priceSum / float64(priceCount)
		lo, hi := avg*0.5, avg*2
		ctx.PriceRange = &model.PriceRange{Min: &lo, Max: &hi}
	}
	return ctx
}

func matchesCategory(category string, tags, wanted []string) bool {
	for _, w := range wanted {
		w = strings.ToLower(w)
		if w == "" {
			continue
		}
		if strings.Contains(category, w) {
			return true
		}
		for _, t := range tags {
			if strings.Contains(t, w) {
				return true
			}
		}
	}
	return false
}

func countTagMatches(tags, keywords []string) int {
	n := 0
	for _, t := range tags {
		for _, k := range keywords {
			if k != "" && strings.Contains(t, strings.ToLower(k)) {
				n++
				break
			}
		}
	}
	return n
}

func overlapsFold(a, b []string) bool {
	for _, v := range a {
		if containsFold(b, v) {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if !contains(list, v) {
			list = append(list, v)
		}
	}
	return list
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func clamp(score int) int {
	return max(0, min(score, 100))
}
