package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bensooter/readai/internal/relay"
	"github.com/go-chi/chi/v5"
)

// ChatHandler handles the message and reset endpoints.
type ChatHandler struct {
	*Handler
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(base *Handler) *ChatHandler {
	return &ChatHandler{Handler: base}
}

// RegisterRoutes registers chat routes.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/message", h.Message)
		r.Post("/reset", h.Reset)
	})
}

type messageRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type resetRequest struct {
	UserID string `json:"userId"`
}

// Message relays one user message to the assistant and returns the reply.
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.Message == "" {
		Error(w, http.StatusBadRequest, "Missing userId or message")
		return
	}

	reply, err := h.relay.SendMessage(r.Context(), req.UserID, req.Message)
	switch {
	case err == nil:
		JSON(w, http.StatusOK, map[string]string{"reply": reply})
	case errors.Is(err, relay.ErrMissingInput):
		Error(w, http.StatusBadRequest, "Missing userId or message")
	case errors.Is(err, relay.ErrRunFailed):
		slog.Error("Assistant run failed", "user_id", req.UserID, "error", err)
		Error(w, http.StatusInternalServerError, "Assistant run failed.")
	case errors.Is(err, relay.ErrRunTimeout):
		slog.Error("Assistant run timed out", "user_id", req.UserID, "error", err)
		ErrorWithDetails(w, http.StatusGatewayTimeout, "Assistant run timed out", err.Error())
	default:
		slog.Error("Message relay failed", "user_id", req.UserID, "error", err)
		ErrorWithDetails(w, http.StatusInternalServerError, "Internal server error", err.Error())
	}
}

// Reset clears the user's conversation. An unknown user is not an error.
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	removed, err := h.relay.ResetUser(r.Context(), req.UserID)
	if err != nil {
		slog.Error("Reset failed", "user_id", req.UserID, "error", err)
		ErrorWithDetails(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": removed})
}
