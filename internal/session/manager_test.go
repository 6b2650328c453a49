package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/shop-recommender/internal/intent"
	"github.com/rcliao/shop-recommender/internal/model"
	"github.com/rcliao/shop-recommender/internal/store"
)

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func testProducts() []model.Product {
	return []model.Product{
		{ID: "p1", Title: "Adidas Ultraboost", Category: "shoes", Brand: "Adidas", Tags: []string{"running"}, Price: 180, Rating: 4.3, TotalSales: 120, Views: intPtr(2000), CartAdds: intPtr(250)},
		{ID: "p3", Title: "Nike Club Hoodie", Category: "clothing", Brand: "Nike", Tags: []string{"hoodie"}, Price: 60, Rating: 4.2},
		{ID: "p4", Title: "Sony WH-1000XM5", Category: "electronics", Brand: "Sony", Price: 300, Rating: 4.8, TotalSales: 500, Views: intPtr(5000), CartAdds: intPtr(600)},
		{ID: "p5", Title: "Cork Yoga Mat", Category: "sports", Tags: []string{"yoga"}, Price: 25},
		{ID: "p2", Title: "Nike Pegasus 41", Category: "shoes", Brand: "Nike", Tags: []string{"running"}, Price: 150, Rating: 4.6, TotalSales: 80},
	}
}

func firstTemplate(int) int { return 0 }

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	base := []Option{
		WithClassifier(intent.New(intent.WithPicker(firstTemplate))),
		WithClock(func() time.Time { return t0 }),
	}
	return NewManager(s, append(base, opts...)...)
}

func TestStartConversation(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	conv, err := m.StartConversation(ctx, "u1")
	require.NoError(t, err)
	_, err = ulid.Parse(conv.ID)
	assert.NoError(t, err, "conversation id should be a ULID")
	assert.Equal(t, "u1", conv.UserID)
	assert.Empty(t, conv.Messages)
	assert.Empty(t, conv.DetectedIntents)
	assert.True(t, conv.AccumulatedKeywords.IsEmpty())
	assert.True(t, conv.StartedAt.Equal(t0))

	other, err := m.StartConversation(ctx, "")
	require.NoError(t, err)
	assert.NotEqual(t, conv.ID, other.ID)

	got, ok, err := m.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, conv.ID, got.ID)

	_, ok, err = m.GetConversation(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWelcome(t *testing.T) {
	w := newTestManager(t).Welcome()
	assert.Equal(t, WelcomeMessage, w.Message)
	assert.Equal(t, intent.QuickReplies(model.IntentGreeting), w.QuickReplies)
	assert.Empty(t, w.Recommendations)
}

func TestProcessMessage_Greeting(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	conv, err := m.StartConversation(ctx, "")
	require.NoError(t, err)

	resp, err := m.ProcessMessage(ctx, conv.ID, "Hello", nil, model.UserContext{})
	require.NoError(t, err)
	assert.Equal(t, model.IntentGreeting, resp.Intent)
	assert.Equal(t, intent.Templates(model.IntentGreeting)[0], resp.Message)
	assert.Empty(t, resp.Recommendations)
	assert.NotEmpty(t, resp.QuickReplies)

	history, err := m.History(ctx, conv.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.SenderUser, history[0].SenderType)
	assert.Equal(t, "Hello", history[0].Content)
	assert.Equal(t, model.IntentGreeting, history[0].Intent)
	assert.Equal(t, model.SenderAI, history[1].SenderType)
	assert.Equal(t, resp.Message, history[1].Content)
	for _, msg := range history {
		assert.True(t, strings.HasPrefix(msg.ID, "msg-"), msg.ID)
		assert.Equal(t, conv.ID, msg.ConversationID)
	}
}

func TestProcessMessage_UnknownConversation(t *testing.T) {
	m := newTestManager(t)
	_, err := m.ProcessMessage(context.Background(), "nope", "Hello", nil, model.UserContext{})
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestProcessMessage_Recommends(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	conv, _ := m.StartConversation(ctx, "u1")

	resp, err := m.ProcessMessage(ctx, conv.ID, "Looking for Nike running shoes under $200", testProducts(), model.UserContext{})
	require.NoError(t, err)
	assert.Equal(t, model.IntentSearchProduct, resp.Intent)
	assert.Greater(t, resp.Confidence, 30)
	assert.Equal(t, []string{"nike"}, resp.ExtractedKeywords.Brands)

	require.NotEmpty(t, resp.Recommendations)
	assert.LessOrEqual(t, len(resp.Recommendations), DefaultRecommendationLimit)
	assert.Equal(t, "p2", resp.Recommendations[0].Product.ID)
	for _, r := range resp.Recommendations {
		assert.GreaterOrEqual(t, r.Score, DefaultMinScore)
	}
	assert.Equal(t, intent.Templates(model.IntentSearchProduct)[0], resp.Message)

	history, _ := m.History(ctx, conv.ID, 0)
	require.Len(t, history, 2)
	ai := history[1]
	require.Len(t, ai.RecommendedProductIDs, len(resp.Recommendations))
	assert.Equal(t, "p2", ai.RecommendedProductIDs[0])
}

func TestProcessMessage_RecommendationLimitAndMinScore(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, WithRecommendationLimit(2), WithMinScore(50))
	conv, _ := m.StartConversation(ctx, "")

	resp, err := m.ProcessMessage(ctx, conv.ID, "Looking for Nike running shoes under $200", testProducts(), model.UserContext{})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(resp.Recommendations), 2)
	for _, r := range resp.Recommendations {
		assert.GreaterOrEqual(t, r.Score, 50)
	}
}

func TestProcessMessage_NoResults(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	conv, _ := m.StartConversation(ctx, "")

	resp, err := m.ProcessMessage(ctx, conv.ID, "Looking for a leather sofa", nil, model.UserContext{})
	require.NoError(t, err)
	assert.Equal(t, model.IntentSearchProduct, resp.Intent)
	assert.Equal(t, NoResultsMessage, resp.Message)
	assert.Empty(t, resp.Recommendations)

	history, _ := m.History(ctx, conv.ID, 0)
	require.Len(t, history, 2)
	assert.Equal(t, NoResultsMessage, history[1].Content)
	assert.Empty(t, history[1].RecommendedProductIDs)
}

func TestProcessMessage_NonShoppingIntentSkipsScoring(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	conv, _ := m.StartConversation(ctx, "")

	resp, err := m.ProcessMessage(ctx, conv.ID, "what can you do", testProducts(), model.UserContext{})
	require.NoError(t, err)
	assert.Equal(t, model.IntentHelp, resp.Intent)
	assert.Empty(t, resp.Recommendations)
	assert.Equal(t, intent.Templates(model.IntentHelp)[0], resp.Message)
}

func TestProcessMessage_AccumulatesKeywords(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	conv, _ := m.StartConversation(ctx, "")

	messages := []string{
		"Hi there",
		"I need nike shoes under $100",
		"maybe something in red, size 10",
		"actually show me adidas jackets over $50",
		"how much is the hoodie",
	}

	prev := model.NewExtractedKeywords()
	for _, msg := range messages {
		_, err := m.ProcessMessage(ctx, conv.ID, msg, testProducts(), model.UserContext{})
		require.NoError(t, err)

		acc, ok, err := m.AccumulatedKeywords(ctx, conv.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Subset(t, acc.Categories, prev.Categories, msg)
		assert.Subset(t, acc.Brands, prev.Brands, msg)
		assert.Subset(t, acc.Colors, prev.Colors, msg)
		assert.Subset(t, acc.Sizes, prev.Sizes, msg)
		assert.Subset(t, acc.RawKeywords, prev.RawKeywords, msg)
		prev = acc
	}

	assert.Equal(t, []string{"nike", "adidas"}, prev.Brands)
	assert.Contains(t, prev.Colors, "red")
	assert.Contains(t, prev.Sizes, "10")
	// Latest price wins.
	require.NotNil(t, prev.PriceRange)
	require.NotNil(t, prev.PriceRange.Min)
	assert.Equal(t, 50.0, *prev.PriceRange.Min)
	assert.Nil(t, prev.PriceRange.Max)

	conv, _, _ = m.GetConversation(ctx, conv.ID)
	require.GreaterOrEqual(t, len(conv.DetectedIntents), 3)
	assert.Equal(t, []model.Intent{model.IntentGreeting, model.IntentSearchProduct}, conv.DetectedIntents[:2])
	seen := map[model.Intent]bool{}
	for _, i := range conv.DetectedIntents {
		assert.False(t, seen[i], "intent %s recorded twice", i)
		seen[i] = true
	}
	assert.True(t, seen[model.IntentAskPrice])

	_, ok, err := m.AccumulatedKeywords(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHistory_Limit(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	conv, _ := m.StartConversation(ctx, "")

	for i := 0; i < 3; i++ {
		_, err := m.ProcessMessage(ctx, conv.ID, fmt.Sprintf("message %d", i), nil, model.UserContext{})
		require.NoError(t, err)
	}

	all, err := m.History(ctx, conv.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	last, err := m.History(ctx, conv.ID, 3)
	require.NoError(t, err)
	require.Len(t, last, 3)
	assert.Equal(t, model.SenderAI, last[0].SenderType)
	assert.Equal(t, "message 2", last[1].Content)
	assert.Equal(t, model.SenderAI, last[2].SenderType)

	short := NewManager(store.NewMemoryStore(), WithHistoryLimit(2))
	c2, _ := short.StartConversation(ctx, "")
	short.ProcessMessage(ctx, c2.ID, "hello", nil, model.UserContext{})
	short.ProcessMessage(ctx, c2.ID, "hello again", nil, model.UserContext{})
	h, _ := short.History(ctx, c2.ID, 0)
	assert.Len(t, h, 2)

	missing, err := m.History(ctx, "missing", 5)
	require.NoError(t, err)
	assert.NotNil(t, missing)
	assert.Empty(t, missing)
}

func TestClearConversation(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	a, _ := m.StartConversation(ctx, "")
	b, _ := m.StartConversation(ctx, "")

	require.NoError(t, m.ClearConversation(ctx, a.ID))
	_, err := m.ProcessMessage(ctx, a.ID, "Hello", nil, model.UserContext{})
	assert.ErrorIs(t, err, ErrConversationNotFound)
	assert.ErrorIs(t, m.ClearConversation(ctx, a.ID), ErrConversationNotFound)

	_, ok, _ := m.GetConversation(ctx, b.ID)
	assert.True(t, ok)

	require.NoError(t, m.ClearAll(ctx))
	_, ok, _ = m.GetConversation(ctx, b.ID)
	assert.False(t, ok)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	now := t0
	m := newTestManager(t, WithClock(func() time.Time { return now }))

	stale, _ := m.StartConversation(ctx, "")
	active, _ := m.StartConversation(ctx, "")

	now = t0.Add(2 * time.Hour)
	_, err := m.ProcessMessage(ctx, active.ID, "Hello", nil, model.UserContext{})
	require.NoError(t, err)

	removed, err := m.Sweep(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok, _ := m.GetConversation(ctx, stale.ID)
	assert.False(t, ok)
	_, ok, _ = m.GetConversation(ctx, active.ID)
	assert.True(t, ok)

	removed, err = m.Sweep(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestProcessMessage_Concurrent(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	const workers, perWorker = 8, 5
	var ids []string
	for i := 0; i < 3; i++ {
		c, err := m.StartConversation(ctx, "")
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	var g errgroup.Group
	for _, id := range ids {
		for w := 0; w < workers; w++ {
			g.Go(func() error {
				for i := 0; i < perWorker; i++ {
					msg := fmt.Sprintf("looking for nike shoes %d-%d", w, i)
					if _, err := m.ProcessMessage(ctx, id, msg, testProducts(), model.UserContext{}); err != nil {
						return err
					}
				}
				return nil
			})
		}
	}
	require.NoError(t, g.Wait())

	for _, id := range ids {
		conv, ok, err := m.GetConversation(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, conv.Messages, 2*workers*perWorker)
		for i, msg := range conv.Messages {
			want := model.SenderUser
			if i%2 == 1 {
				want = model.SenderAI
			}
			assert.Equal(t, want, msg.SenderType, "message %d of %s", i, id)
		}
	}
	assert.Equal(t, 0, m.locks.size())
}

func TestProcessMessage_SQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "conv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	m := NewManager(s, WithClock(func() time.Time { return t0 }))
	conv, err := m.StartConversation(ctx, "u1")
	require.NoError(t, err)

	_, err = m.ProcessMessage(ctx, conv.ID, "Hello", nil, model.UserContext{})
	require.NoError(t, err)
	resp, err := m.ProcessMessage(ctx, conv.ID, "Looking for Nike running shoes under $200", testProducts(), model.UserContext{})
	require.NoError(t, err)

	history, err := m.History(ctx, conv.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, resp.Recommendations[0].Product.ID, history[3].RecommendedProductIDs[0])

	acc, ok, err := m.AccumulatedKeywords(ctx, conv.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"nike"}, acc.Brands)
}

// pausingStore holds the first armed Get after it has read the conversation
// until release is closed.
type pausingStore struct {
	store.Store
	armed   bool
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func (p *pausingStore) Get(ctx context.Context, id string) (*model.Conversation, error) {
	conv, err := p.Store.Get(ctx, id)
	if p.armed {
		p.once.Do(func() {
			close(p.reached)
			<-p.release
		})
	}
	return conv, err
}

func TestClearAll_WaitsForInFlightMessage(t *testing.T) {
	ctx := context.Background()
	ps := &pausingStore{
		Store:   store.NewMemoryStore(),
		reached: make(chan struct{}),
		release: make(chan struct{}),
	}
	m := NewManager(ps, WithClock(func() time.Time { return t0 }))

	conv, err := m.StartConversation(ctx, "")
	require.NoError(t, err)
	ps.armed = true

	processed := make(chan error, 1)
	go func() {
		_, err := m.ProcessMessage(ctx, conv.ID, "show me nike shoes", testProducts(), model.UserContext{})
		processed <- err
	}()
	<-ps.reached

	cleared := make(chan error, 1)
	go func() { cleared <- m.ClearAll(ctx) }()

	select {
	case <-cleared:
		t.Fatal("ClearAll returned while a message was still being processed")
	case <-time.After(50 * time.Millisecond):
	}

	close(ps.release)
	require.NoError(t, <-processed)
	require.NoError(t, <-cleared)

	_, ok, err := m.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.False(t, ok, "conversation must stay cleared")
}
