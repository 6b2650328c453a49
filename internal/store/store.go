// Package store provides the conversation storage interface with in-memory
// and SQLite implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/shop-recommender/internal/model"
)

// ErrNotFound is returned when no conversation has the requested id.
var ErrNotFound = errors.New("conversation not found")

// ListParams holds parameters for listing conversations.
type ListParams struct {
	UserID string
	// IdleSince keeps only conversations whose last message is strictly
	// before it. Zero disables the filter.
	IdleSince time.Time
	Limit     int // 0 means no limit
}

// Store defines the conversation storage interface. Implementations are
// safe for concurrent use; callers serialise writes to a single
// conversation themselves.
type Store interface {
	// Get returns a copy of the conversation, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Conversation, error)

	// Put creates or replaces the conversation. Messages are append-only:
	// the stored log is always a prefix of conv.Messages.
	Put(ctx context.Context, conv *model.Conversation) error

	// Delete removes one conversation, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List returns conversation summaries, most recently active first.
	List(ctx context.Context, p ListParams) ([]model.ConversationSummary, error)

	// Clear removes every conversation.
	Clear(ctx context.Context) error

	// Close releases the store.
	Close() error
}

func matches(s model.ConversationSummary, p ListParams) bool {
	if p.UserID != "" && s.UserID != p.UserID {
		return false
	}
	if !p.IdleSince.IsZero() && !s.LastMessageAt.Before(p.IdleSince) {
		return false
	}
	return true
}
