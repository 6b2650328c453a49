// Package session runs chat conversations: each user message is classified,
// mined for keywords, folded into the conversation's accumulated context and,
// for shopping intents, answered with scored product recommendations.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/rcliao/shop-recommender/internal/intent"
	"github.com/rcliao/shop-recommender/internal/keywords"
	"github.com/rcliao/shop-recommender/internal/logger"
	"github.com/rcliao/shop-recommender/internal/model"
	"github.com/rcliao/shop-recommender/internal/scorer"
	"github.com/rcliao/shop-recommender/internal/store"
)

const (
	DefaultRecommendationLimit = scorer.DefaultTopLimit
	DefaultMinScore            = 20
	DefaultHistoryLimit        = 10

	WelcomeMessage   = "Hi! I'm your shopping assistant. Tell me what you're looking for and I'll find the best matches."
	NoResultsMessage = "Sorry, I couldn't find matching products. Try a different brand, color or price range."
)

// Response is the assistant's answer to one user message.
type Response struct {
	Message           string                  `json:"message"`
	QuickReplies      []string                `json:"quickReplies"`
	Recommendations   []model.ScoredProduct   `json:"recommendations"`
	Intent            model.Intent            `json:"intent"`
	Confidence        int                     `json:"confidence"`
	ExtractedKeywords model.ExtractedKeywords `json:"extractedKeywords"`
}

// Manager owns conversation state. It is safe for concurrent use: calls on
// the same conversation are serialised, calls on different conversations
// run independently.
type Manager struct {
	store      store.Store
	classifier *intent.Classifier
	now        func() time.Time

	limit        int
	minScore     int
	historyLimit int

	// clearMu is held for reading by per-conversation writers and for
	// writing by ClearAll, so a clear never interleaves with a write-back.
	clearMu sync.RWMutex
	locks   *keyedMutex

	idMu    sync.Mutex
	entropy io.Reader
}

// Option configures a Manager.
type Option func(*Manager)

func WithClassifier(c *intent.Classifier) Option {
	return func(m *Manager) {
		if c != nil {
			m.classifier = c
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func WithRecommendationLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.limit = n
		}
	}
}

func WithMinScore(n int) Option {
	return func(m *Manager) { m.minScore = n }
}

// WithHistoryLimit sets the History default used when a caller passes 0.
func WithHistoryLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.historyLimit = n
		}
	}
}

// NewManager returns a manager persisting to s.
func NewManager(s store.Store, opts ...Option) *Manager {
	m := &Manager{
		store:        s,
		classifier:   intent.Default(),
		now:          time.Now,
		limit:        DefaultRecommendationLimit,
		minScore:     DefaultMinScore,
		historyLimit: DefaultHistoryLimit,
		locks:        newKeyedMutex(),
		entropy:      ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) newConversationID(at time.Time) string {
	m.idMu.Lock()
	defer m.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), m.entropy).String()
}

func newMessageID() string {
	return "msg-" + uuid.NewString()
}

// Welcome is the greeting shown when a conversation starts.
func (m *Manager) Welcome() Response {
	return Response{
		Message:           WelcomeMessage,
		QuickReplies:      intent.QuickReplies(model.IntentGreeting),
		Recommendations:   []model.ScoredProduct{},
		Intent:            model.IntentGreeting,
		ExtractedKeywords: model.NewExtractedKeywords(),
	}
}

// StartConversation allocates and stores an empty conversation. userID may
// be empty for anonymous shoppers.
func (m *Manager) StartConversation(ctx context.Context, userID string) (*model.Conversation, error) {
	now := m.now()
	conv := model.NewConversation(m.newConversationID(now), userID, now)
	if err := m.store.Put(ctx, conv); err != nil {
		return nil, fmt.Errorf("store conversation: %w", err)
	}

	logger.InfoCF("session", "Conversation started", map[string]interface{}{
		"conversation_id": conv.ID,
		"user_id":         userID,
	})
	return conv, nil
}

// GetConversation returns a copy of the conversation and whether it exists.
func (m *Manager) GetConversation(ctx context.Context, id string) (*model.Conversation, bool, error) {
	conv, err := m.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return conv, true, nil
}

// ProcessMessage handles one user message and returns the assistant reply.
// products is the candidate set to score; userCtx carries behaviour signals
// and is overlaid with the conversation's accumulated chat keywords.
func (m *Manager) ProcessMessage(ctx context.Context, id, message string, products []model.Product, userCtx model.UserContext) (*Response, error) {
	m.clearMu.RLock()
	defer m.clearMu.RUnlock()
	unlock := m.locks.Lock(id)
	defer unlock()

	conv, err := m.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	detected := m.classifier.DetectIntent(message)
	kw := keywords.Extract(message)
	now := m.now()

	msgKeywords := kw.Clone()
	conv.Messages = append(conv.Messages, model.ChatMessage{
		ID:             newMessageID(),
		ConversationID: conv.ID,
		SenderType:     model.SenderUser,
		Content:        message,
		Timestamp:      now,
		Intent:         detected.Intent,
		Keywords:       &msgKeywords,
	})

	conv.AccumulatedKeywords = conv.AccumulatedKeywords.Merge(kw)
	if !conv.HasIntent(detected.Intent) {
		conv.DetectedIntents = append(conv.DetectedIntents, detected.Intent)
	}

	reply := detected.ResponseTemplate
	recs := []model.ScoredProduct{}
	if detected.Intent.WantsProducts() {
		enriched := userCtx
		enriched.ChatKeywords = model.UnionStrings(nil, conv.AccumulatedKeywords.RawKeywords)
		enriched.ChatCategories = model.UnionStrings(nil, conv.AccumulatedKeywords.Categories)
		enriched.ChatBrands = model.UnionStrings(nil, conv.AccumulatedKeywords.Brands)

		scored := scorer.ScoreProducts(products, enriched, &kw)
		recs = scorer.TopRecommendations(scored, m.limit, m.minScore)
		if len(recs) == 0 {
			reply = NoResultsMessage
		}
	}

	recIDs := make([]string, len(recs))
	for i, r := range recs {
		recIDs[i] = r.Product.ID
	}
	conv.Messages = append(conv.Messages, model.ChatMessage{
		ID:                    newMessageID(),
		ConversationID:        conv.ID,
		SenderType:            model.SenderAI,
		Content:               reply,
		Timestamp:             now,
		RecommendedProductIDs: recIDs,
	})
	conv.LastMessageAt = now

	if err := m.store.Put(ctx, conv); err != nil {
		return nil, fmt.Errorf("store conversation: %w", err)
	}

	logger.DebugCF("session", "Message processed", map[string]interface{}{
		"conversation_id": conv.ID,
		"intent":          string(detected.Intent),
		"confidence":      detected.Confidence,
		"candidates":      len(products),
		"recommendations": len(recs),
	})

	return &Response{
		Message:           reply,
		QuickReplies:      detected.QuickReplies,
		Recommendations:   recs,
		Intent:            detected.Intent,
		Confidence:        detected.Confidence,
		ExtractedKeywords: kw,
	}, nil
}

// History returns the most recent limit messages in chronological order.
// limit <= 0 uses the configured default. An unknown id yields an empty list.
func (m *Manager) History(ctx context.Context, id string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = m.historyLimit
	}
	conv, ok, err := m.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.ChatMessage{}, nil
	}
	msgs := conv.Messages
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]model.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

// AccumulatedKeywords returns everything extracted so far in the
// conversation and whether the conversation exists.
func (m *Manager) AccumulatedKeywords(ctx context.Context, id string) (model.ExtractedKeywords, bool, error) {
	conv, ok, err := m.GetConversation(ctx, id)
	if err != nil || !ok {
		return model.ExtractedKeywords{}, ok, err
	}
	return conv.AccumulatedKeywords, true, nil
}

// ClearConversation deletes one conversation.
func (m *Manager) ClearConversation(ctx context.Context, id string) error {
	m.clearMu.RLock()
	defer m.clearMu.RUnlock()
	unlock := m.locks.Lock(id)
	defer unlock()

	err := m.store.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	if err != nil {
		return err
	}
	logger.InfoCF("session", "Conversation cleared", map[string]interface{}{"conversation_id": id})
	return nil
}

// ClearAll deletes every conversation. It waits for in-flight messages to
// be stored first.
func (m *Manager) ClearAll(ctx context.Context) error {
	m.clearMu.Lock()
	defer m.clearMu.Unlock()
	if err := m.store.Clear(ctx); err != nil {
		return err
	}
	logger.InfoCF("session", "All conversations cleared", nil)
	return nil
}

// Sweep deletes conversations with no message for longer than idleFor and
// returns how many were removed. The manager never calls it on its own.
func (m *Manager) Sweep(ctx context.Context, idleFor time.Duration) (int, error) {
	cutoff := m.now().Add(-idleFor)
	idle, err := m.store.List(ctx, store.ListParams{IdleSince: cutoff})
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, s := range idle {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		ok, err := m.sweepOne(ctx, s.ID, cutoff)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}

	logger.InfoCF("session", "Sweep finished", map[string]interface{}{
		"idle_for": idleFor.String(),
		"removed":  removed,
	})
	return removed, nil
}

// sweepOne re-checks idleness under the conversation lock so a message
// that arrived after listing keeps the conversation alive.
func (m *Manager) sweepOne(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	m.clearMu.RLock()
	defer m.clearMu.RUnlock()
	unlock := m.locks.Lock(id)
	defer unlock()

	conv, err := m.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !conv.LastMessageAt.Before(cutoff) {
		return false, nil
	}
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	return true, nil
}
