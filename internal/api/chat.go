package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"fincoach/internal/conversation"
	"fincoach/internal/orchestration"
	"fincoach/pkg/logger"
)

const maxChatBodyBytes = 64 * 1024

// SessionStore persists per-session conversation history between
// requests
type SessionStore interface {
	History(ctx context.Context, sessionID string) ([]conversation.Message, error)
	Save(ctx context.Context, sessionID string, messages []conversation.Message) error
}

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
}

// WorkflowRunner runs one request through the assistant pipeline
type WorkflowRunner interface {
	Run(ctx context.Context, req orchestration.Request) *orchestration.Result
}

// ChatHandler receives user messages and runs them through the
// assistant workflow
type ChatHandler struct {
	workflow WorkflowRunner
	sessions SessionStore
	log      *logger.Logger
}

// NewChatHandler creates the chat endpoint handler
func NewChatHandler(workflow WorkflowRunner, sessions SessionStore) *ChatHandler {
	return &ChatHandler{
		workflow: workflow,
		sessions: sessions,
		log:      logger.Get().With("component", "chat_handler"),
	}
}

// HandleChat processes one user message and returns the assistant
// response. Session history is loaded before the run and the updated
// history saved after, so the conversation survives across requests.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	userID := req.UserID
	if userID == "" {
		userID = sessionID
	}

	ctx := r.Context()

	history, err := h.sessions.History(ctx, sessionID)
	if err != nil {
		h.log.Warnw("Failed to load session history, starting fresh",
			"session_id", sessionID, "error", err)
		history = nil
	}

	result := h.workflow.Run(ctx, orchestration.Request{
		SessionID: sessionID,
		UserID:    userID,
		Message:   req.Message,
		History:   history,
	})

	if len(result.History) > 0 {
		if err := h.sessions.Save(ctx, sessionID, result.History); err != nil {
			h.log.Warnw("Failed to save session history",
				"session_id", sessionID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, result.Response)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
