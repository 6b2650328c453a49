package store

import (
	"context"
	"os"

	"github.com/rcliao/shop-recommender/internal/model"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string        `json:"db_path"`
	DBSizeBytes   int64         `json:"db_size_bytes"`
	Conversations int           `json:"conversations"`
	Messages      int           `json:"messages"`
	Users         int           `json:"users"`
	Intents       []IntentStats `json:"intents"`
}

// IntentStats counts user messages per detected intent.
type IntentStats struct {
	Intent model.Intent `json:"intent"`
	Count  int          `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, Intents: []IntentStats{}}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&st.Conversations)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&st.Messages)
	s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT user_id) FROM conversations WHERE user_id IS NOT NULL`).Scan(&st.Users)

	rows, err := s.db.QueryContext(ctx, `
		SELECT intent, COUNT(*) AS cnt
		FROM messages WHERE sender_type = ? AND intent IS NOT NULL
		GROUP BY intent ORDER BY cnt DESC, intent`, string(model.SenderUser))
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var is IntentStats
		var intent string
		rows.Scan(&intent, &is.Count)
		is.Intent = model.Intent(intent)
		st.Intents = append(st.Intents, is)
	}

	return st, rows.Err()
}
