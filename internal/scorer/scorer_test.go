package scorer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/shop-recommender/internal/keywords"
	"github.com/rcliao/shop-recommender/internal/model"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func testCatalog() []model.Product {
	return []model.Product{
		{ID: "p1", Title: "Adidas Ultraboost", Category: "shoes", Brand: "Adidas", Tags: []string{"running"}, Price: 180, Rating: 4.3, TotalSales: 120, Views: intPtr(2000), CartAdds: intPtr(250)},
		{ID: "p3", Title: "Nike Club Hoodie", Category: "clothing", Brand: "Nike", Tags: []string{"hoodie"}, Price: 60, Rating: 4.2},
		{ID: "p4", Title: "Sony WH-1000XM5", Category: "electronics", Brand: "Sony", Price: 300, Rating: 4.8, TotalSales: 500, Views: intPtr(5000), CartAdds: intPtr(600)},
		{ID: "p5", Title: "Cork Yoga Mat", Category: "sports", Tags: []string{"yoga"}, Price: 25},
		{ID: "p2", Title: "Nike Pegasus 41", Category: "shoes", Brand: "Nike", Tags: []string{"running"}, Price: 150, Rating: 4.6, TotalSales: 80},
	}
}

func TestScoreProducts_NikeShoesRankFirst(t *testing.T) {
	kw := keywords.Extract("Nike running shoes under $200")
	scored := ScoreProducts(testCatalog(), model.UserContext{}, &kw)

	require.Len(t, scored, 5)
	assert.Equal(t, "p2", scored[0].Product.ID)
	assert.Equal(t, 46, scored[0].Score)
	assert.Equal(t, model.ScoreBreakdown{Chat: 80, Behavior: 10, Popularity: 50}, scored[0].Breakdown)
	assert.Equal(t, []string{ReasonCategory, "Brand: Nike", ReasonBudget, ReasonHighRating}, scored[0].MatchReasons)

	var ids []string
	for i, s := range scored {
		ids = append(ids, s.Product.ID)
		if i > 0 {
			assert.GreaterOrEqual(t, scored[i-1].Score, s.Score)
		}
	}
	// p4 and p5 tie and keep their input order.
	assert.Equal(t, []string{"p2", "p1", "p3", "p4", "p5"}, ids)
}

func TestScoreProducts_ScoreBounds(t *testing.T) {
	kw := keywords.Extract("red nike shoes between $10 and $500")
	ctx := model.UserContext{
		ChatCategories:   []string{"shoes"},
		ChatBrands:       []string{"nike"},
		ViewedCategories: []string{"shoes"},
		CartProductIDs:   []string{"c1"},
		CartBrands:       []string{"Nike"},
		PreferredColors:  []string{"red"},
		PriceRange:       &model.PriceRange{Min: floatPtr(10), Max: floatPtr(1000)},
	}
	products := append(testCatalog(), model.Product{
		ID: "max", Category: "shoes", Brand: "Nike", Colors: []string{"Red"}, Tags: []string{"shoes", "nike"},
		Price: 100, Rating: 5, TotalSales: 1000, Views: intPtr(10000), CartAdds: intPtr(5000),
	})

	for _, s := range ScoreProducts(products, ctx, &kw) {
		b := s.Breakdown
		for _, v := range []int{b.Chat, b.Behavior, b.Popularity} {
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 100)
		}
		want := int(math.Round(0.4*float64(b.Chat) + 0.4*float64(b.Behavior) + 0.2*float64(b.Popularity)))
		assert.Equal(t, want, s.Score, "product %s", s.Product.ID)
	}

	top := Score(products[len(products)-1], ctx, &kw)
	assert.Equal(t, model.ScoreBreakdown{Chat: 100, Behavior: 100, Popularity: 100}, top.Breakdown)
	assert.Equal(t, 100, top.Score)
}

func TestChatScore(t *testing.T) {
	p := model.Product{ID: "x", Category: "Shoes", Brand: "Nike", Colors: []string{"black"}, Tags: []string{"running", "trail", "road"}, Price: 120}

	score, reasons := ChatScore(p, model.UserContext{}, nil)
	assert.Equal(t, 0, score)
	assert.Empty(t, reasons)

	kw := keywords.Extract("black running trail road gear under $100")
	score, reasons = ChatScore(p, model.UserContext{}, &kw)
	// color 15 + tag overlap capped at 10; price out of range
	assert.Equal(t, 25, score)
	assert.Equal(t, []string{ReasonColor}, reasons)

	// History bonuses carry no reasons.
	score, reasons = ChatScore(p, model.UserContext{ChatCategories: []string{"shoe"}, ChatBrands: []string{"NIKE"}}, nil)
	assert.Equal(t, 20, score)
	assert.Empty(t, reasons)
}

func TestChatScore_CategoryMatchesTags(t *testing.T) {
	p := model.Product{ID: "x", Category: "footwear", Tags: []string{"Running Shoes"}}
	kw := model.NewExtractedKeywords()
	kw.Categories = []string{"shoes"}
	score, reasons := ChatScore(p, model.UserContext{}, &kw)
	assert.Equal(t, 30, score)
	assert.Equal(t, []string{ReasonCategory}, reasons)
}

func TestBehaviorScore(t *testing.T) {
	p := model.Product{ID: "p", Category: "shoes", Brand: "Nike", Colors: []string{"red"}, Price: 150}
	ctx := model.UserContext{
		ViewedCategories: []string{"Shoes"},
		CartProductIDs:   []string{"other"},
		CartBrands:       []string{"nike"},
		PreferredColors:  []string{"RED"},
		PriceRange:       &model.PriceRange{Min: floatPtr(100), Max: floatPtr(200)},
	}

	score, reasons := BehaviorScore(p, ctx)
	assert.Equal(t, 100, score)
	assert.Equal(t, []string{ReasonViewed, ReasonCartBrand, ReasonColor}, reasons)

	ctx.WishlistProductIDs = []string{"p"}
	score, _ = BehaviorScore(p, ctx)
	assert.Equal(t, 90, score)

	score, reasons = BehaviorScore(p, model.UserContext{})
	assert.Equal(t, 10, score)
	assert.Empty(t, reasons)
}

func TestPopularityScore_Tiers(t *testing.T) {
	testcases := []struct {
		name    string
		product model.Product
		want    int
		reasons []string
	}{
		{name: "nothing", product: model.Product{}, want: 0},
		{name: "rating tiers are exclusive", product: model.Product{Rating: 4.9}, want: 30, reasons: []string{ReasonHighRating}},
		{name: "rating 4.0", product: model.Product{Rating: 4.0}, want: 20},
		{name: "rating 3.5", product: model.Product{Rating: 3.5}, want: 10},
		{name: "sales 50", product: model.Product{TotalSales: 50}, want: 20},
		{name: "sales 10", product: model.Product{TotalSales: 10}, want: 10},
		{name: "views 100", product: model.Product{Views: intPtr(100)}, want: 10},
		{name: "popular with conversion", product: model.Product{Views: intPtr(1000), CartAdds: intPtr(60)}, want: 30, reasons: []string{ReasonPopular}},
		{name: "conversion needs views", product: model.Product{Views: intPtr(0), CartAdds: intPtr(5)}, want: 0},
		{name: "conversion needs cart adds", product: model.Product{Views: intPtr(200)}, want: 10},
		{name: "all tiers", product: model.Product{Rating: 4.5, TotalSales: 100, Views: intPtr(1000), CartAdds: intPtr(100)}, want: 100,
			reasons: []string{ReasonHighRating, ReasonBestSeller, ReasonPopular}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			got, reasons := PopularityScore(tc.product)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.reasons, reasons)
		})
	}
}

func TestScore_ReasonsDeduplicated(t *testing.T) {
	p := model.Product{ID: "p", Colors: []string{"blue"}}
	kw := model.NewExtractedKeywords()
	kw.Colors = []string{"blue"}
	s := Score(p, model.UserContext{PreferredColors: []string{"blue"}}, &kw)
	assert.Equal(t, []string{ReasonColor}, s.MatchReasons)
}

func TestTopRecommendations(t *testing.T) {
	kw := keywords.Extract("Nike running shoes under $200")
	scored := ScoreProducts(testCatalog(), model.UserContext{}, &kw)

	top := TopRecommendations(scored, 3, 20)
	assert.LessOrEqual(t, len(top), 3)
	for _, s := range top {
		assert.GreaterOrEqual(t, s.Score, 20)
	}

	top = TopRecommendations(scored, DefaultTopLimit, DefaultMinScore)
	require.Len(t, top, 2)
	assert.Equal(t, "p2", top[0].Product.ID)
	assert.Equal(t, "p1", top[1].Product.ID)

	assert.Empty(t, TopRecommendations(scored, 0, 0))
	assert.Empty(t, TopRecommendations(nil, 5, 0))
	assert.NotNil(t, TopRecommendations(nil, 5, 0))
}

func TestTopRecommendations_DoesNotSort(t *testing.T) {
	scored := []model.ScoredProduct{
		{Product: model.Product{ID: "low"}, Score: 40},
		{Product: model.Product{ID: "high"}, Score: 90},
	}
	top := TopRecommendations(scored, 1, 0)
	require.Len(t, top, 1)
	assert.Equal(t, "low", top[0].Product.ID)
}

func TestBuildUserContextFromActions(t *testing.T) {
	catalog := map[string]model.Product{
		"p1": {ID: "p1", Category: "shoes", Brand: "Nike", Colors: []string{"red"}, Price: 100},
		"p2": {ID: "p2", Category: "clothing", Brand: "Adidas", Colors: []string{"black"}, Price: 40},
		"p3": {ID: "p3", Category: "bags", Price: 0},
	}
	lookup := func(id string) (model.Product, bool) {
		p, ok := catalog[id]
		return p, ok
	}

	actions := []model.UserAction{
		{Type: model.ActionProductView, ProductID: "p1"},
		{Type: model.ActionProductView, ProductID: "p1"},
		{Type: model.ActionProductView, ProductID: "p3"},
		{Type: model.ActionProductView, ProductID: "missing"},
		{Type: model.ActionProductView},
		{Type: model.ActionAddToCart, ProductID: "p2"},
		{Type: model.ActionAddToCart, ProductID: "gone"},
		{Type: model.ActionAddToWishlist, ProductID: "p3"},
		{Type: "checkout", ProductID: "p1"},
	}

	ctx := BuildUserContextFromActions(actions, lookup)
	assert.Equal(t, []string{"p1", "p3", "missing"}, ctx.ViewedProductIDs)
	assert.Equal(t, []string{"shoes", "bags"}, ctx.ViewedCategories)
	assert.Equal(t, []string{"red"}, ctx.PreferredColors)
	assert.Equal(t, []string{"p2", "gone"}, ctx.CartProductIDs)
	assert.Equal(t, []string{"Adidas"}, ctx.CartBrands)
	assert.Equal(t, []string{"p3"}, ctx.WishlistProductIDs)

	// Two priced views of p1 at 100; p3 has no price.
	require.NotNil(t, ctx.PriceRange)
	assert.Equal(t, 50.0, *ctx.PriceRange.Min)
	assert.Equal(t, 200.0, *ctx.PriceRange.Max)
}

func TestBuildUserContextFromActions_NoPricedViews(t *testing.T) {
	ctx := BuildUserContextFromActions([]model.UserAction{
		{Type: model.ActionProductView, ProductID: "a"},
	}, nil)
	assert.Equal(t, []string{"a"}, ctx.ViewedProductIDs)
	assert.Nil(t, ctx.PriceRange)
	assert.Empty(t, ctx.ViewedCategories)
}
