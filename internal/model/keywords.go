package model

// PriceModifier is a coarse price tier requested in chat.
type PriceModifier string

const (
	PriceCheap     PriceModifier = "cheap"
	PriceMid       PriceModifier = "mid"
	PriceExpensive PriceModifier = "expensive"
)

// Gender is the audience a shopper asked for.
type Gender string

const (
	GenderMen    Gender = "men"
	GenderWomen  Gender = "women"
	GenderUnisex Gender = "unisex"
	GenderKids   Gender = "kids"
)

// PriceRange is an optionally open price interval. A nil bound is
// unconstrained on that side.
type PriceRange struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Contains reports whether price falls inside the range.
func (r *PriceRange) Contains(price float64) bool {
	if r == nil {
		return false
	}
	if r.Min != nil && price < *r.Min {
		return false
	}
	if r.Max != nil && price > *r.Max {
		return false
	}
	return true
}

// Clone returns a deep copy of the range.
func (r *PriceRange) Clone() *PriceRange {
	if r == nil {
		return nil
	}
	out := &PriceRange{}
	if r.Min != nil {
		v := *r.Min
		out.Min = &v
	}
	if r.Max != nil {
		v := *r.Max
		out.Max = &v
	}
	return out
}

// ExtractedKeywords holds structured filters pulled out of chat text.
// List fields behave as insertion-ordered sets.
type ExtractedKeywords struct {
	Categories    []string      `json:"categories"`
	Brands        []string      `json:"brands"`
	Colors        []string      `json:"colors"`
	Sizes         []string      `json:"sizes"`
	PriceRange    *PriceRange   `json:"priceRange,omitempty"`
	PriceModifier PriceModifier `json:"priceModifier,omitempty"`
	Gender        Gender        `json:"gender,omitempty"`
	RawKeywords   []string      `json:"rawKeywords"`
}

// NewExtractedKeywords returns an empty keyword set with non-nil slices so
// it serialises as empty arrays.
func NewExtractedKeywords() ExtractedKeywords {
	return ExtractedKeywords{
		Categories:  []string{},
		Brands:      []string{},
		Colors:      []string{},
		Sizes:       []string{},
		RawKeywords: []string{},
	}
}

// IsEmpty reports whether nothing was extracted.
func (k ExtractedKeywords) IsEmpty() bool {
	return len(k.Categories) == 0 && len(k.Brands) == 0 && len(k.Colors) == 0 &&
		len(k.Sizes) == 0 && len(k.RawKeywords) == 0 &&
		k.PriceRange == nil && k.PriceModifier == "" && k.Gender == ""
}

// Clone returns a deep copy.
func (k ExtractedKeywords) Clone() ExtractedKeywords {
	return ExtractedKeywords{
		Categories:    cloneStrings(k.Categories),
		Brands:        cloneStrings(k.Brands),
		Colors:        cloneStrings(k.Colors),
		Sizes:         cloneStrings(k.Sizes),
		PriceRange:    k.PriceRange.Clone(),
		PriceModifier: k.PriceModifier,
		Gender:        k.Gender,
		RawKeywords:   cloneStrings(k.RawKeywords),
	}
}

// Merge returns k unioned with next. Set fields only grow; the scalar
// fields take next's value whenever next has one.
func (k ExtractedKeywords) Merge(next ExtractedKeywords) ExtractedKeywords {
	out := k.Clone()
	out.Categories = UnionStrings(out.Categories, next.Categories)
	out.Brands = UnionStrings(out.Brands, next.Brands)
	out.Colors = UnionStrings(out.Colors, next.Colors)
	out.Sizes = UnionStrings(out.Sizes, next.Sizes)
	out.RawKeywords = UnionStrings(out.RawKeywords, next.RawKeywords)
	if next.PriceRange != nil {
		out.PriceRange = next.PriceRange.Clone()
	}
	if next.PriceModifier != "" {
		out.PriceModifier = next.PriceModifier
	}
	if next.Gender != "" {
		out.Gender = next.Gender
	}
	return out
}

// UnionStrings appends the values of b missing from a, keeping a's order
// and b's first-occurrence order. The result is never nil.
func UnionStrings(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
