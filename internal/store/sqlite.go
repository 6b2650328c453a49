package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rcliao/shop-recommender/internal/model"
)

// Fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id                   TEXT PRIMARY KEY,
		user_id              TEXT,
		started_at           TEXT NOT NULL,
		last_message_at      TEXT NOT NULL,
		accumulated_keywords TEXT NOT NULL,
		detected_intents     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id);
	CREATE INDEX IF NOT EXISTS idx_conversations_last ON conversations(last_message_at DESC);

	CREATE TABLE IF NOT EXISTS messages (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		seq             INTEGER NOT NULL,
		sender_type     TEXT NOT NULL,
		content         TEXT NOT NULL,
		timestamp       TEXT NOT NULL,
		intent          TEXT,
		keywords        TEXT,
		recommended     TEXT,
		UNIQUE (conversation_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_messages_intent ON messages(intent);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, started_at, last_message_at, accumulated_keywords, detected_intents
		 FROM conversations WHERE id = ?`, id)
	conv, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, sender_type, content, timestamp, intent, keywords, recommended
		 FROM messages WHERE conversation_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		conv.Messages = append(conv.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *SQLiteStore) Put(ctx context.Context, conv *model.Conversation) error {
	kwJSON, err := json.Marshal(conv.AccumulatedKeywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}
	intents := conv.DetectedIntents
	if intents == nil {
		intents = []model.Intent{}
	}
	intentsJSON, err := json.Marshal(intents)
	if err != nil {
		return fmt.Errorf("encode intents: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, started_at, last_message_at, accumulated_keywords, detected_intents)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   user_id = excluded.user_id,
		   last_message_at = excluded.last_message_at,
		   accumulated_keywords = excluded.accumulated_keywords,
		   detected_intents = excluded.detected_intents`,
		conv.ID, nullString(conv.UserID), formatTime(conv.StartedAt), formatTime(conv.LastMessageAt),
		string(kwJSON), string(intentsJSON))
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}

	// Only the tail of the log not yet stored is written.
	var stored int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conv.ID).Scan(&stored); err != nil {
		return err
	}
	for seq := stored; seq < len(conv.Messages); seq++ {
		m := conv.Messages[seq]
		var kw, rec *string
		if m.Keywords != nil {
			b, err := json.Marshal(m.Keywords)
			if err != nil {
				return fmt.Errorf("encode message keywords: %w", err)
			}
			v := string(b)
			kw = &v
		}
		if len(m.RecommendedProductIDs) > 0 {
			b, _ := json.Marshal(m.RecommendedProductIDs)
			v := string(b)
			rec = &v
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO messages (id, conversation_id, seq, sender_type, content, timestamp, intent, keywords, recommended)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, conv.ID, seq, string(m.SenderType), m.Content, formatTime(m.Timestamp),
			nullString(string(m.Intent)), kw, rec)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.ConversationSummary, error) {
	var where []string
	var args []interface{}

	if p.UserID != "" {
		where = append(where, "c.user_id = ?")
		args = append(args, p.UserID)
	}
	if !p.IdleSince.IsZero() {
		where = append(where, "c.last_message_at < ?")
		args = append(args, formatTime(p.IdleSince))
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	limit := p.Limit
	if limit <= 0 {
		limit = -1
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.user_id, c.started_at, c.last_message_at, c.detected_intents,
		       (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id)
		FROM conversations c
		%s
		ORDER BY c.last_message_at DESC, c.id DESC
		LIMIT ?`, whereClause)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ConversationSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM conversations`); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanConversation(row scanner) (*model.Conversation, error) {
	var userID sql.NullString
	var startedAt, lastAt, kwJSON, intentsJSON string
	conv := &model.Conversation{Messages: []model.ChatMessage{}}

	if err := row.Scan(&conv.ID, &userID, &startedAt, &lastAt, &kwJSON, &intentsJSON); err != nil {
		return nil, err
	}
	conv.UserID = userID.String
	conv.StartedAt = parseTime(startedAt)
	conv.LastMessageAt = parseTime(lastAt)

	conv.AccumulatedKeywords = model.NewExtractedKeywords()
	if err := json.Unmarshal([]byte(kwJSON), &conv.AccumulatedKeywords); err != nil {
		return nil, fmt.Errorf("decode keywords: %w", err)
	}
	conv.DetectedIntents = []model.Intent{}
	if err := json.Unmarshal([]byte(intentsJSON), &conv.DetectedIntents); err != nil {
		return nil, fmt.Errorf("decode intents: %w", err)
	}
	return conv, nil
}

func scanMessage(row scanner) (model.ChatMessage, error) {
	var m model.ChatMessage
	var sender, ts string
	var intent, kw, rec sql.NullString

	err := row.Scan(&m.ID, &m.ConversationID, &sender, &m.Content, &ts, &intent, &kw, &rec)
	if err != nil {
		return m, err
	}

	m.SenderType = model.SenderType(sender)
	m.Timestamp = parseTime(ts)
	if intent.Valid {
		m.Intent = model.Intent(intent.String)
	}
	if kw.Valid {
		k := model.NewExtractedKeywords()
		if err := json.Unmarshal([]byte(kw.String), &k); err != nil {
			return m, fmt.Errorf("decode message keywords: %w", err)
		}
		m.Keywords = &k
	}
	if rec.Valid {
		if err := json.Unmarshal([]byte(rec.String), &m.RecommendedProductIDs); err != nil {
			return m, fmt.Errorf("decode recommendations: %w", err)
		}
	}
	return m, nil
}

func scanSummary(row scanner) (model.ConversationSummary, error) {
	var sum model.ConversationSummary
	var userID sql.NullString
	var startedAt, lastAt, intentsJSON string

	err := row.Scan(&sum.ID, &userID, &startedAt, &lastAt, &intentsJSON, &sum.MessageCount)
	if err != nil {
		return sum, err
	}
	sum.UserID = userID.String
	sum.StartedAt = parseTime(startedAt)
	sum.LastMessageAt = parseTime(lastAt)
	sum.DetectedIntents = []model.Intent{}
	if err := json.Unmarshal([]byte(intentsJSON), &sum.DetectedIntents); err != nil {
		return sum, fmt.Errorf("decode intents: %w", err)
	}
	return sum, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
