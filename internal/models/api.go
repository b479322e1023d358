package models

// --- Request Structs ---

// ChatRequest defines the expected body for the chat endpoint.
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// --- Response Structs ---

// ChatResponse carries the assistant's reply for a successful chat turn.
type ChatResponse struct {
	Response string `json:"response"`
}

// HistoryEntry is the projection of a stored message returned by the
// history endpoint. IDs and timestamps are internal ordering detail and
// are not exposed.
type HistoryEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// HistoryResponse defines the body returned by the history endpoint.
// History is always present, an empty array for unknown users.
type HistoryResponse struct {
	History []HistoryEntry `json:"history"`
}

// ErrorResponse defines the standard structure for API errors. Details is
// populated for server-side failures with a short machine-readable reason,
// never raw internals.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
