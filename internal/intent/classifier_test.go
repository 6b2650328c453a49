package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/shop-recommender/internal/model"
)

func TestDetectIntent(t *testing.T) {
	testcases := []struct {
		name    string
		message string
		want    model.Intent
	}{
		{name: "search", message: "Looking for running shoes", want: model.IntentSearchProduct},
		{name: "search by category word", message: "red sneakers", want: model.IntentSearchProduct},
		{name: "greeting", message: "Hello", want: model.IntentGreeting},
		{name: "greeting with punctuation", message: "hey!", want: model.IntentGreeting},
		{name: "price beats search", message: "How much are these sneakers?", want: model.IntentAskPrice},
		{name: "stock", message: "Is the blue jacket in stock?", want: model.IntentAskStock},
		{name: "recommend", message: "Can you recommend something for my dad?", want: model.IntentRecommend},
		{name: "compare", message: "nike pegasus vs adidas ultraboost", want: model.IntentCompare},
		{name: "help", message: "what can you do", want: model.IntentHelp},
		{name: "search beats greeting", message: "Hi, I'm looking for a jacket", want: model.IntentSearchProduct},
		{name: "gibberish", message: "qwzx plorb", want: model.IntentUnknown},
	}

	c := New(WithPicker(func(int) int { return 0 }))
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.DetectIntent(tc.message)
			assert.Equal(t, tc.want, got.Intent)
			assert.GreaterOrEqual(t, got.Confidence, 0)
			assert.LessOrEqual(t, got.Confidence, 100)
			assert.NotEmpty(t, got.QuickReplies)
			assert.Contains(t, Templates(got.Intent), got.ResponseTemplate)
		})
	}
}

func TestDetectIntent_SearchConfidence(t *testing.T) {
	got := DetectIntent("Looking for running shoes")
	assert.Equal(t, model.IntentSearchProduct, got.Intent)
	assert.Greater(t, got.Confidence, 30)
	assert.Equal(t, "running shoes", got.ExtractedText)
}

func TestDetectIntent_ExactGreetingConfidence(t *testing.T) {
	got := DetectIntent("Hello")
	require.Equal(t, model.IntentGreeting, got.Intent)
	// priority 50/2 + full coverage 30 + exact match 30
	assert.Equal(t, 85, got.Confidence)
	assert.Empty(t, got.ExtractedText)
}

func TestDetectIntent_EmptyInput(t *testing.T) {
	for _, msg := range []string{"", "   ", "\t\n"} {
		got := DetectIntent(msg)
		assert.Equal(t, model.IntentUnknown, got.Intent)
		assert.Equal(t, 0, got.Confidence)
		assert.NotEmpty(t, got.ResponseTemplate)
	}
}

func TestDetectIntent_Deterministic(t *testing.T) {
	messages := []string{"Looking for running shoes", "How much is the Nike hoodie", "hi", "zzz"}
	for _, msg := range messages {
		a, b := DetectIntent(msg), DetectIntent(msg)
		assert.Equal(t, a.Intent, b.Intent)
		assert.Equal(t, a.Confidence, b.Confidence)
		assert.Equal(t, a.ExtractedText, b.ExtractedText)
	}
}

func TestDetectAllIntents(t *testing.T) {
	results := DetectAllIntents("Hi, can you help me find shoes")
	require.Len(t, results, 3)

	var intents []model.Intent
	for i, r := range results {
		intents = append(intents, r.Intent)
		if i > 0 {
			assert.GreaterOrEqual(t, results[i-1].Confidence, r.Confidence)
		}
	}
	assert.ElementsMatch(t, []model.Intent{model.IntentSearchProduct, model.IntentHelp, model.IntentGreeting}, intents)
	assert.Equal(t, model.IntentSearchProduct, results[0].Intent)
}

func TestDetectAllIntents_NoMatch(t *testing.T) {
	for _, msg := range []string{"", "qwzx plorb"} {
		results := DetectAllIntents(msg)
		require.Len(t, results, 1)
		assert.Equal(t, model.IntentUnknown, results[0].Intent)
		assert.Equal(t, 0, results[0].Confidence)
	}
}

func TestMatchesIntent(t *testing.T) {
	assert.True(t, MatchesIntent("hello", model.IntentGreeting))
	assert.False(t, MatchesIntent("hello", model.IntentHelp))
	assert.True(t, MatchesIntent("", model.IntentUnknown))
}

func TestConfidence(t *testing.T) {
	// half coverage, no exact match: 45 + 15
	assert.Equal(t, 60, confidence(90, "abcde", "abcdefghij"))
	// priority contribution caps at 50
	assert.Equal(t, 100, confidence(200, "abc", "ABC"))
	assert.Equal(t, 0, confidence(0, "", "abc"))
}

func TestTemplatePickerOutOfRange(t *testing.T) {
	c := New(WithPicker(func(n int) int { return n + 5 }))
	assert.Equal(t, Templates(model.IntentGreeting)[0], c.Template(model.IntentGreeting))
}

func TestQuickRepliesReturnsCopy(t *testing.T) {
	qr := QuickReplies(model.IntentGreeting)
	qr[0] = "mutated"
	assert.NotEqual(t, "mutated", QuickReplies(model.IntentGreeting)[0])
}
