package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rcliao/shop-recommender/internal/model"
)

// UserStats summarises one shopper's conversations.
type UserStats struct {
	UserID        string    `json:"userId"`
	Conversations int       `json:"conversations"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

// ExportAll returns every conversation with its full message log, optionally
// filtered by user.
func (s *SQLiteStore) ExportAll(ctx context.Context, userID string) ([]model.Conversation, error) {
	summaries, err := s.List(ctx, ListParams{UserID: userID})
	if err != nil {
		return nil, err
	}

	convs := make([]model.Conversation, 0, len(summaries))
	// Oldest first so a re-import replays in the original order.
	for i := len(summaries) - 1; i >= 0; i-- {
		c, err := s.Get(ctx, summaries[i].ID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		convs = append(convs, *c)
	}
	return convs, nil
}

// Import stores conversations from an export. Conversations whose id already
// exists are skipped. Returns the number imported. The whole batch is
// rejected before any write if an entry is malformed.
func (s *SQLiteStore) Import(ctx context.Context, convs []model.Conversation) (int, error) {
	for i := range convs {
		if err := validateImport(&convs[i]); err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	imported := 0
	for i := range convs {
		c := &convs[i]
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM conversations WHERE id = ?`, c.ID).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return imported, err
		}
		if err := s.Put(ctx, c); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func validateImport(c *model.Conversation) error {
	if c.ID == "" {
		return errors.New("missing conversation id")
	}
	for _, in := range c.DetectedIntents {
		if !model.ValidIntents[in] {
			return fmt.Errorf("%s: unknown intent %q", c.ID, in)
		}
	}
	for _, m := range c.Messages {
		if m.Intent != "" && !model.ValidIntents[m.Intent] {
			return fmt.Errorf("%s: message %s: unknown intent %q", c.ID, m.ID, m.Intent)
		}
	}
	return nil
}

// ListUsers returns per-user conversation counts, most recently active first.
// Anonymous conversations are not included.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]UserStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, COUNT(*), MAX(last_message_at) AS last
		FROM conversations WHERE user_id IS NOT NULL
		GROUP BY user_id ORDER BY last DESC, user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserStats
	for rows.Next() {
		var u UserStats
		var last string
		if err := rows.Scan(&u.UserID, &u.Conversations, &last); err != nil {
			return nil, err
		}
		u.LastMessageAt = parseTime(last)
		users = append(users, u)
	}
	return users, rows.Err()
}
