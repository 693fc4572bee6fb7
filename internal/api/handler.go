// Package api provides HTTP handlers for the chat relay API.
package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// Orchestrator is the conversation session orchestrator consumed by the HTTP
// layer. *relay.Coordinator implements it.
type Orchestrator interface {
	SendMessage(ctx context.Context, userID, message string) (string, error)
	ResetUser(ctx context.Context, userID string) (bool, error)
}

// Handler provides common handler utilities.
type Handler struct {
	relay Orchestrator
}

// NewHandler creates a new Handler around the orchestrator.
func NewHandler(relay Orchestrator) *Handler {
	return &Handler{relay: relay}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// ErrorWithDetails writes a JSON error response carrying the underlying
// failure detail.
func ErrorWithDetails(w http.ResponseWriter, status int, message, details string) {
	JSON(w, status, map[string]string{"error": message, "details": details})
}
