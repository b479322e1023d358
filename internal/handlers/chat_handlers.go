package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"carechat-backend/internal/models"
	"carechat-backend/internal/services"
	"carechat-backend/pkg/httputil"
)

// ChatHandlers handles HTTP requests for the chat and history endpoints.
type ChatHandlers struct {
	chatService *services.ChatService
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(chatService *services.ChatService) *ChatHandlers {
	return &ChatHandlers{chatService: chatService}
}

// HandleChat handles one conversation turn.
func (h *ChatHandlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := h.chatService.Chat(r.Context(), req.UserID, req.Message)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.ChatResponse{Response: reply})
}

// HandleGetHistory returns the stored conversation for a user.
func (h *ChatHandlers) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	entries, err := h.chatService.History(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.HistoryResponse{History: entries})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Validation failures carry their reason as the client-facing message;
// storage and gateway failures return a generic message with the reason in
// the details field only.
func respondServiceError(w http.ResponseWriter, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		log.Printf("ERROR [ChatHandlers] unclassified error: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "An error occurred while processing your request.")
		return
	}

	switch svcErr.Code {
	case services.ErrorValidation:
		httputil.RespondError(w, http.StatusBadRequest, validationMessage(svcErr.Reason))
	case services.ErrorStorage:
		httputil.RespondErrorDetails(w, http.StatusInternalServerError,
			"An error occurred while processing your request.", svcErr.Reason)
	case services.ErrorGateway:
		httputil.RespondErrorDetails(w, http.StatusInternalServerError,
			"An error occurred while processing your request.", svcErr.Reason)
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "An error occurred while processing your request.")
	}
}

func validationMessage(reason string) string {
	switch reason {
	case "missing_user_id":
		return "user_id is required"
	case "missing_message":
		return "message is required"
	default:
		return "invalid request"
	}
}
