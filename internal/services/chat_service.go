package services

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"carechat-backend/internal/llm"
	"carechat-backend/internal/models"
	"carechat-backend/internal/prompt"
	"carechat-backend/internal/store"
)

// ChatService orchestrates a conversation turn: persist the user message,
// fetch history, assemble the prompt, call the completion gateway, persist
// the reply.
type ChatService struct {
	store   store.Store
	gateway llm.Client
	window  prompt.Window
}

// NewChatService creates a new ChatService. A nil window defaults to
// forwarding the full history on every call.
func NewChatService(st store.Store, gateway llm.Client, window prompt.Window) *ChatService {
	if window == nil {
		window = prompt.FullHistory{}
	}
	return &ChatService{
		store:   st,
		gateway: gateway,
		window:  window,
	}
}

// Chat runs one conversation turn for userID and returns the assistant's
// reply text.
//
// Failure handling is deliberately asymmetric: a store failure while
// persisting the user turn fails the request (the client must resubmit),
// but a store failure while persisting the assistant reply is logged and
// the reply is still returned. The answer has already been computed at that
// point and losing it helps nobody; the only cost is that the turn is
// missing from future context.
func (s *ChatService) Chat(ctx context.Context, userID, message string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", newError(ErrorValidation, "missing_user_id", nil)
	}
	if strings.TrimSpace(message) == "" {
		return "", newError(ErrorValidation, "missing_message", nil)
	}

	turnID := uuid.NewString()

	userMsgID, err := s.store.AppendMessage(ctx, userID, models.RoleUser, message)
	if err != nil {
		log.Printf("ERROR [ChatService] turn %s: persist user message: %v", turnID, err)
		return "", newError(ErrorStorage, "persist_user_message", err)
	}

	history, err := s.store.GetHistory(ctx, userID)
	if err != nil {
		log.Printf("ERROR [ChatService] turn %s: fetch history: %v", turnID, err)
		return "", newError(ErrorStorage, "fetch_history", err)
	}

	// The fetch above already contains the turn persisted a moment ago;
	// the assembler re-appends the message as the final entry, so strip
	// that row from the prior history to avoid sending it twice.
	prior := make([]models.Message, 0, len(history))
	for _, m := range history {
		if m.ID == userMsgID {
			continue
		}
		prior = append(prior, m)
	}

	messages := prompt.Assemble(s.window.Apply(prior), message)

	reply, err := s.gateway.Complete(ctx, messages)
	if err != nil {
		// The user's message stays persisted: the conversation is left in
		// an "awaiting reply" state and the client simply sends again.
		log.Printf("ERROR [ChatService] turn %s: gateway call: %v", turnID, err)
		return "", newError(ErrorGateway, "completion_failed", err)
	}

	if _, err := s.store.AppendMessage(ctx, userID, models.RoleAssistant, reply); err != nil {
		log.Printf("WARN [ChatService] turn %s: persist assistant reply failed, returning reply anyway: %v", turnID, err)
	}

	return reply, nil
}

// History returns the ordered conversation projection for userID. An
// unknown user yields an empty (non-nil) slice.
func (s *ChatService) History(ctx context.Context, userID string) ([]models.HistoryEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newError(ErrorValidation, "missing_user_id", nil)
	}

	history, err := s.store.GetHistory(ctx, userID)
	if err != nil {
		log.Printf("ERROR [ChatService] fetch history for %s: %v", userID, err)
		return nil, newError(ErrorStorage, "fetch_history", err)
	}

	entries := make([]models.HistoryEntry, 0, len(history))
	for _, m := range history {
		entries = append(entries, models.HistoryEntry{Role: m.Role, Content: m.Content})
	}
	return entries, nil
}
