// Package intent classifies chat messages into shopping intents using a
// priority-ordered table of compiled patterns.
package intent

import (
	"math"
	"math/rand"
	randv2 "math/rand/v2"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rcliao/shop-recommender/internal/model"
)

// Result is the outcome of classifying one message.
type Result struct {
	Intent           model.Intent `json:"intent"`
	Confidence       int          `json:"confidence"`
	ExtractedText    string       `json:"extractedText,omitempty"`
	QuickReplies     []string     `json:"quickReplies"`
	ResponseTemplate string       `json:"responseTemplate"`
}

type rule struct {
	intent   model.Intent
	priority int
	patterns []*regexp.Regexp
}

// compiled once; sorted by descending priority, stable on declaration order.
var rules = compileRules(patternSpecs)

func compileRules(specs []patternSpec) []rule {
	out := make([]rule, 0, len(specs))
	for _, s := range specs {
		r := rule{intent: s.intent, priority: s.priority}
		for _, p := range s.patterns {
			r.patterns = append(r.patterns, regexp.MustCompile(p))
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].priority > out[j].priority
	})
	return out
}

// Picker chooses an index in [0, n).
type Picker func(n int) int

// Classifier detects intents. It is safe for concurrent use.
type Classifier struct {
	rules []rule
	pick  Picker
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithPicker sets the template selector. Tests use it for determinism.
func WithPicker(p Picker) Option {
	return func(c *Classifier) {
		if p != nil {
			c.pick = p
		}
	}
}

// WithRand selects templates from r. Access to r is serialised.
func WithRand(r *rand.Rand) Option {
	var mu sync.Mutex
	return WithPicker(func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		return r.Intn(n)
	})
}

// New returns a classifier over the built-in pattern table.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		rules: rules,
		pick:  randv2.IntN,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var defaultClassifier = New()

// Default returns the shared classifier used by the package-level helpers.
func Default() *Classifier { return defaultClassifier }

// DetectIntent classifies message with the default classifier.
func DetectIntent(message string) Result { return defaultClassifier.DetectIntent(message) }

// DetectAllIntents runs every intent with the default classifier.
func DetectAllIntents(message string) []Result { return defaultClassifier.DetectAllIntents(message) }

// MatchesIntent reports whether message classifies as target.
func MatchesIntent(message string, target model.Intent) bool {
	return defaultClassifier.MatchesIntent(message, target)
}

// DetectIntent returns the first intent, by descending priority, with a
// pattern matching the trimmed message. It never fails; empty or unmatched
// input yields UNKNOWN with confidence 0.
func (c *Classifier) DetectIntent(message string) Result {
	text := strings.TrimSpace(message)
	if text == "" {
		return c.result(model.IntentUnknown, 0, "")
	}
	for _, r := range c.rules {
		if res, ok := c.matchRule(r, text); ok {
			return res
		}
	}
	return c.result(model.IntentUnknown, 0, "")
}

// DetectAllIntents evaluates every intent instead of stopping at the first
// hit and returns one result per matching intent, highest confidence first.
func (c *Classifier) DetectAllIntents(message string) []Result {
	text := strings.TrimSpace(message)
	if text == "" {
		return []Result{c.result(model.IntentUnknown, 0, "")}
	}
	var out []Result
	for _, r := range c.rules {
		if res, ok := c.matchRule(r, text); ok {
			out = append(out, res)
		}
	}
	if len(out) == 0 {
		return []Result{c.result(model.IntentUnknown, 0, "")}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// MatchesIntent reports whether DetectIntent(message) yields target.
func (c *Classifier) MatchesIntent(message string, target model.Intent) bool {
	return c.DetectIntent(message).Intent == target
}

// matchRule tries r's patterns in order and scores the first match.
func (c *Classifier) matchRule(r rule, text string) (Result, bool) {
	for _, re := range r.patterns {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		matched := text[loc[0]:loc[1]]
		var extracted string
		if len(loc) >= 4 && loc[2] >= 0 {
			extracted = strings.TrimSpace(text[loc[2]:loc[3]])
		}
		conf := confidence(r.priority, matched, text)
		return c.result(r.intent, conf, extracted), true
	}
	return Result{}, false
}

// confidence rewards priority, coverage of the input by the match, and an
// exact whole-input match.
func confidence(priority int, matched, text string) int {
	score := math.Min(float64(priority)/2, 50)
	inputLen := utf8.RuneCountInString(text)
	if inputLen > 0 {
		coverage := float64(utf8.RuneCountInString(matched)) / float64(inputLen) * 30
		score += math.Min(coverage, 30)
	}
	if strings.EqualFold(strings.TrimSpace(matched), text) {
		score += 30
	}
	conf := int(math.Round(score))
	if conf < 0 {
		return 0
	}
	if conf > 100 {
		return 100
	}
	return conf
}

func (c *Classifier) result(intent model.Intent, conf int, extracted string) Result {
	return Result{
		Intent:           intent,
		Confidence:       conf,
		ExtractedText:    extracted,
		QuickReplies:     QuickReplies(intent),
		ResponseTemplate: c.Template(intent),
	}
}

// Template picks one of intent's response templates.
func (c *Classifier) Template(intent model.Intent) string {
	candidates := responseTemplates[intent]
	if len(candidates) == 0 {
		candidates = responseTemplates[model.IntentUnknown]
	}
	i := c.pick(len(candidates))
	if i < 0 || i >= len(candidates) {
		i = 0
	}
	return candidates[i]
}

// QuickReplies returns a copy of intent's quick-reply suggestions.
func QuickReplies(intent model.Intent) []string {
	src, ok := quickReplies[intent]
	if !ok {
		src = quickReplies[model.IntentUnknown]
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Templates returns a copy of intent's response templates.
func Templates(intent model.Intent) []string {
	src := responseTemplates[intent]
	out := make([]string, len(src))
	copy(out, src)
	return out
}
