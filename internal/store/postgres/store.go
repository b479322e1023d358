package postgres

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"carechat-backend/internal/models"
	"carechat-backend/internal/store"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const migrateMessages = `
CREATE TABLE IF NOT EXISTS messages (
    id         BIGSERIAL PRIMARY KEY,
    user_id    TEXT NOT NULL,
    role       TEXT NOT NULL,
    content    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_messages_user_order
    ON messages (user_id, created_at, id);
`

// Migrate ensures the messages table and its ordering index exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, migrateMessages); err != nil {
		return fmt.Errorf("migrate messages table: %w", err)
	}
	return nil
}

const appendMessage = `-- name: AppendMessage :one
INSERT INTO messages (user_id, role, content)
VALUES ($1, $2, $3)
RETURNING id;
`

func (s *PostgresStore) AppendMessage(ctx context.Context, userID string, role models.Role, content string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, appendMessage, userID, string(role), content).Scan(&id)
	if err != nil {
		log.Printf("ERROR [PostgresStore] AppendMessage: insert failed for user %s: %v", userID, err)
		return 0, fmt.Errorf("database error appending message: %w", err)
	}
	return id, nil
}

const getHistory = `-- name: GetHistory :many
SELECT id, user_id, role, content, created_at
FROM messages
WHERE user_id = $1
ORDER BY created_at ASC, id ASC;
`

func (s *PostgresStore) GetHistory(ctx context.Context, userID string) ([]models.Message, error) {
	rows, err := s.db.Query(ctx, getHistory, userID)
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

func (s *PostgresStore) Close() {
	s.db.Close()
}
