package store

import (
	"context"

	"carechat-backend/internal/models"
)

// Store defines the interface for conversation-history persistence.
// This allows for mocking in tests and switching between the postgres and
// sqlite backends at startup.
//
// The messages table is append-only: rows are never updated or deleted, and
// AppendMessage is the only write. GetHistory returns messages for a user in
// ascending (created_at, id) order; an unknown user yields an empty slice,
// not an error.
type Store interface {
	// Migrate creates the messages table if it does not already exist.
	// Calling it against an already-migrated database is a no-op.
	Migrate(ctx context.Context) error

	// AppendMessage durably inserts one message and returns its assigned id.
	AppendMessage(ctx context.Context, userID string, role models.Role, content string) (int64, error)

	// GetHistory returns every message for userID in insertion order.
	GetHistory(ctx context.Context, userID string) ([]models.Message, error)

	Close()
}
