// Package llm defines the completion-gateway contract. Providers are opaque:
// the backend hands them an assembled message sequence and gets text back,
// with no local retry and no enforcement of the prompt's behavioral rules.
package llm

import (
	"context"

	"carechat-backend/internal/models"
)

// Client is a synchronous completion gateway to an external LLM provider.
type Client interface {
	// Complete sends the assembled messages and returns the model's reply
	// text. It blocks for the duration of the remote call; implementations
	// impose their own client-side timeout.
	Complete(ctx context.Context, messages []models.Message) (string, error)
}
