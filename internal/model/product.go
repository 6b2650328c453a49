package model

import "time"

// Product is the catalog view the scorer works on. It is owned by the
// catalog and never mutated here.
type Product struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Category    string   `json:"category" yaml:"category"`
	SubCategory string   `json:"subCategory,omitempty" yaml:"subCategory,omitempty"`
	Brand       string   `json:"brand,omitempty" yaml:"brand,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Colors      []string `json:"colors,omitempty" yaml:"colors,omitempty"`
	Price       float64  `json:"price" yaml:"price"`
	Rating      float64  `json:"rating" yaml:"rating"`
	TotalSales  int      `json:"totalSales" yaml:"totalSales"`
	Views       *int     `json:"views,omitempty" yaml:"views,omitempty"`
	CartAdds    *int     `json:"cartAdds,omitempty" yaml:"cartAdds,omitempty"`
	Purchases   *int     `json:"purchases,omitempty" yaml:"purchases,omitempty"`
}

// UserContext carries what is known about the shopper. Chat fields come from
// the session manager, behaviour fields from analytics.
type UserContext struct {
	UserID string `json:"userId,omitempty" yaml:"userId,omitempty"`

	ChatKeywords   []string `json:"chatKeywords,omitempty" yaml:"chatKeywords,omitempty"`
	ChatCategories []string `json:"chatCategories,omitempty" yaml:"chatCategories,omitempty"`
	ChatBrands     []string `json:"chatBrands,omitempty" yaml:"chatBrands,omitempty"`

	ViewedProductIDs   []string `json:"viewedProductIds,omitempty" yaml:"viewedProductIds,omitempty"`
	ViewedCategories   []string `json:"viewedCategories,omitempty" yaml:"viewedCategories,omitempty"`
	CartProductIDs     []string `json:"cartProductIds,omitempty" yaml:"cartProductIds,omitempty"`
	CartBrands         []string `json:"cartBrands,omitempty" yaml:"cartBrands,omitempty"`
	WishlistProductIDs []string `json:"wishlistProductIds,omitempty" yaml:"wishlistProductIds,omitempty"`

	PriceRange      *PriceRange `json:"priceRange,omitempty" yaml:"priceRange,omitempty"`
	PreferredColors []string    `json:"preferredColors,omitempty" yaml:"preferredColors,omitempty"`
}

// ActionType is a kind of tracked shopper behaviour.
type ActionType string

const (
	ActionProductView   ActionType = "product_view"
	ActionAddToCart     ActionType = "add_to_cart"
	ActionAddToWishlist ActionType = "add_to_wishlist"
)

// UserAction is one raw behaviour event from analytics.
type UserAction struct {
	Type      ActionType `json:"type" yaml:"type"`
	ProductID string     `json:"productId,omitempty" yaml:"productId,omitempty"`
	At        time.Time  `json:"at,omitempty" yaml:"at,omitempty"`
}

// ScoreBreakdown holds the three clamped sub-scores.
type ScoreBreakdown struct {
	Chat       int `json:"chatScore"`
	Behavior   int `json:"behaviorScore"`
	Popularity int `json:"popularityScore"`
}

// ScoredProduct is a product with its relevance score and reasons.
type ScoredProduct struct {
	Product      Product        `json:"product"`
	Score        int            `json:"score"`
	Breakdown    ScoreBreakdown `json:"breakdown"`
	MatchReasons []string       `json:"matchReasons"`
}
