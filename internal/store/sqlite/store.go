package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"carechat-backend/internal/models"
	"carechat-backend/internal/store"
)

// Compile-time check to ensure SqliteStore implements store.Store
var _ store.Store = (*SqliteStore)(nil)

// SqliteStore is a single-writer file-backed history store. Concurrent
// appends from multiple requests are serialized by sqlite's own locking.
type SqliteStore struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite database at path.
func Open(path string) (*SqliteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path must be provided")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer at a time keeps insertion order stable.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	return &SqliteStore{db: db}, nil
}

const migrateMessages = `
CREATE TABLE IF NOT EXISTS messages (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    TEXT NOT NULL,
    role       TEXT NOT NULL,
    content    TEXT NOT NULL,
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_user_order
    ON messages (user_id, created_at, id);
`

// Migrate ensures the messages table exists. Safe to call repeatedly.
func (s *SqliteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, migrateMessages); err != nil {
		return fmt.Errorf("migrate messages table: %w", err)
	}
	return nil
}

func (s *SqliteStore) AppendMessage(ctx context.Context, userID string, role models.Role, content string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (user_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		userID, string(role), content, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("database error appending message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("message id: %w", err)
	}
	return id, nil
}

func (s *SqliteStore) GetHistory(ctx context.Context, userID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, role, content, created_at FROM messages WHERE user_id = ? ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("database error querying history: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return messages, nil
}

func (s *SqliteStore) Close() {
	_ = s.db.Close()
}
