// Package keywords extracts structured shopping filters (category, brand,
// color, size, price, gender) from free-form chat text.
package keywords

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/rcliao/shop-recommender/internal/model"
)

const number = `(\d[\d,]*(?:\.\d+)?)`

type pricePattern struct {
	re   *regexp.Regexp
	kind priceKind
}

type priceKind int

const (
	priceBetween priceKind = iota
	priceMax
	priceMin
)

// Tried in order; the first hit wins.
var pricePatterns = []pricePattern{
	{re: regexp.MustCompile(`\bbetween\s+\$?\s*` + number + `\s*(?:and|&|to|-)\s*\$?\s*` + number), kind: priceBetween},
	{re: regexp.MustCompile(`\$\s*` + number + `\s*(?:to|–|-)\s*\$?\s*` + number), kind: priceBetween},
	{re: regexp.MustCompile(`\b` + number + `\s*(?:to|–|-)\s*\$\s*` + number), kind: priceBetween},
	{re: regexp.MustCompile(`\b(?:under|below|less than|up to|no more than|cheaper than|at most|max(?:imum)?)\s*:?\s*\$?\s*` + number), kind: priceMax},
	{re: regexp.MustCompile(`\b(?:over|above|more than|at least|starting at|min(?:imum)?)\s*:?\s*\$?\s*` + number), kind: priceMin},
}

var (
	numericSizeRe = regexp.MustCompile(`\bsize\s*(\d+(?:\.\d)?)`)
	letterSizeRe  = regexp.MustCompile(`\bsize\s*(xxs|xs|s|m|l|xl|xxl|xxxl)\b`)
	nonWordRe     = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)

	colorRes      = wordRegexps(colorVocabulary)
	sizePhraseRes = phraseRegexps(sizePhrases)
	genderRes     = genderRegexps(genderVocabulary)
)

func wordRegexps(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return out
}

func phraseRegexps(phrases []sizeToken) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(phrases))
	for i, p := range phrases {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(p.token) + `\b`)
	}
	return out
}

func genderRegexps(vocab []genderVocab) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(vocab))
	for i, g := range vocab {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(g.keyword) + `\b`)
	}
	return out
}

// Normalize folds compatibility forms and typographic quotes, then lower-cases.
func Normalize(message string) string {
	s := norm.NFKC.String(message)
	s = strings.NewReplacer("’", "'", "‘", "'").Replace(s)
	return strings.ToLower(strings.TrimSpace(s))
}

// Extract pulls structured filters out of message. It never fails; empty
// input yields an empty result.
func Extract(message string) model.ExtractedKeywords {
	kw := model.NewExtractedKeywords()
	text := Normalize(message)
	if text == "" {
		return kw
	}

	kw.Categories = extractCategories(text)
	kw.Brands = extractBrands(text)
	kw.Colors = extractColors(text)
	kw.Sizes = extractSizes(text)
	kw.PriceRange = extractPriceRange(text)
	kw.PriceModifier = extractPriceModifier(text)
	kw.Gender = extractGender(text)
	kw.RawKeywords = extractRawKeywords(text)
	return kw
}

func extractCategories(text string) []string {
	out := []string{}
	for _, c := range categoryVocabulary {
		for _, k := range c.keywords {
			if strings.Contains(text, k) {
				out = append(out, c.category)
				break
			}
		}
	}
	return out
}

func extractBrands(text string) []string {
	out := []string{}
	for _, b := range brandVocabulary {
		if strings.Contains(text, b) {
			out = append(out, b)
		}
	}
	return out
}

func extractColors(text string) []string {
	out := []string{}
	for i, re := range colorRes {
		if re.MatchString(text) {
			out = append(out, colorVocabulary[i])
		}
	}
	return out
}

func extractSizes(text string) []string {
	out := []string{}
	add := func(size string) {
		for _, s := range out {
			if s == size {
				return
			}
		}
		out = append(out, size)
	}

	// Spelled phrases first, blanked out so "extra large" does not also
	// count as "large".
	rest := text
	for i, re := range sizePhraseRes {
		if re.MatchString(rest) {
			add(sizePhrases[i].size)
			rest = re.ReplaceAllString(rest, " ")
		}
	}

	// Apostrophes and dots stay inside tokens so "men's", "i'm" and "u.s."
	// are not sizes. A trailing dot still ends a sentence: "in s." is S.
	tokens := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(rest, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '.'
	}) {
		tok = strings.Trim(tok, ".")
		if strings.Contains(tok, ".") {
			continue
		}
		tokens[tok] = true
	}
	for _, st := range sizeTokens {
		if tokens[st.token] {
			add(st.size)
		}
	}

	for _, m := range numericSizeRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range letterSizeRe.FindAllStringSubmatch(text, -1) {
		add(strings.ToUpper(m[1]))
	}
	return out
}

func extractPriceRange(text string) *model.PriceRange {
	for _, p := range pricePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		switch p.kind {
		case priceBetween:
			lo, okLo := parsePrice(m[1])
			hi, okHi := parsePrice(m[2])
			if !okLo || !okHi {
				continue
			}
			return &model.PriceRange{Min: &lo, Max: &hi}
		case priceMax:
			v, ok := parsePrice(m[1])
			if !ok {
				continue
			}
			return &model.PriceRange{Max: &v}
		case priceMin:
			v, ok := parsePrice(m[1])
			if !ok {
				continue
			}
			return &model.PriceRange{Min: &v}
		}
	}
	return nil
}

func parsePrice(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func extractPriceModifier(text string) model.PriceModifier {
	for _, m := range priceModifierVocabulary {
		if strings.Contains(text, m.keyword) {
			return m.modifier
		}
	}
	return ""
}

func extractGender(text string) model.Gender {
	for i, re := range genderRes {
		if re.MatchString(text) {
			return genderVocabulary[i].gender
		}
	}
	return ""
}

func extractRawKeywords(text string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, tok := range strings.Fields(nonWordRe.ReplaceAllString(text, " ")) {
		if utf8.RuneCountInString(tok) <= 2 || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// BuildSearchQuery renders keywords as a free-text query for an external
// search index: brands, colors, categories, then up to three raw keywords.
func BuildSearchQuery(kw model.ExtractedKeywords) string {
	parts := make([]string, 0, len(kw.Brands)+len(kw.Colors)+len(kw.Categories)+3)
	parts = append(parts, kw.Brands...)
	parts = append(parts, kw.Colors...)
	parts = append(parts, kw.Categories...)
	raw := kw.RawKeywords
	if len(raw) > 3 {
		raw = raw[:3]
	}
	parts = append(parts, raw...)
	return strings.TrimSpace(strings.Join(parts, " "))
}
