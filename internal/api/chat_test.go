package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincoach/internal/conversation"
	"fincoach/internal/orchestration"
)

type stubRunner struct {
	lastReq orchestration.Request
}

func (s *stubRunner) Run(_ context.Context, req orchestration.Request) *orchestration.Result {
	s.lastReq = req
	reply := conversation.NewAssistantMessage("Diversification spreads risk.")
	return &orchestration.Result{
		Response: &orchestration.Response{
			SessionID:  req.SessionID,
			Message:    reply.Content,
			Confidence: 0.85,
			Intent:     "education",
			AgentsUsed: []string{"finance_qa"},
		},
		History: append(req.History, conversation.NewUserMessage(req.Message), reply),
	}
}

type memSessions struct {
	store   map[string][]conversation.Message
	loadErr error
}

func newMemSessions() *memSessions {
	return &memSessions{store: make(map[string][]conversation.Message)}
}

func (m *memSessions) History(_ context.Context, sessionID string) ([]conversation.Message, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.store[sessionID], nil
}

func (m *memSessions) Save(_ context.Context, sessionID string, messages []conversation.Message) error {
	m.store[sessionID] = messages
	return nil
}

func postChat(t *testing.T, handler *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleChat(rec, req)
	return rec
}

func TestHandleChatReturnsResponse(t *testing.T) {
	runner := &stubRunner{}
	sessions := newMemSessions()
	handler := NewChatHandler(runner, sessions)

	rec := postChat(t, handler, `{"session_id":"s-1","user_id":"u-1","message":"What is diversification?"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp orchestration.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s-1", resp.SessionID)
	assert.Equal(t, "Diversification spreads risk.", resp.Message)
	assert.Equal(t, "education", resp.Intent)

	assert.Equal(t, "u-1", runner.lastReq.UserID)
	assert.Len(t, sessions.store["s-1"], 2)
}

func TestHandleChatGeneratesSessionID(t *testing.T) {
	runner := &stubRunner{}
	handler := NewChatHandler(runner, newMemSessions())

	rec := postChat(t, handler, `{"message":"hello there"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp orchestration.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	_, err := uuid.Parse(resp.SessionID)
	assert.NoError(t, err)
	// Anonymous users fall back to the session as identity
	assert.Equal(t, resp.SessionID, runner.lastReq.UserID)
}

func TestHandleChatLoadsExistingHistory(t *testing.T) {
	runner := &stubRunner{}
	sessions := newMemSessions()
	sessions.store["s-2"] = []conversation.Message{
		conversation.NewUserMessage("earlier question"),
		conversation.NewAssistantMessage("earlier answer"),
	}
	handler := NewChatHandler(runner, sessions)

	rec := postChat(t, handler, `{"session_id":"s-2","message":"follow-up"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, runner.lastReq.History, 2)
	assert.Len(t, sessions.store["s-2"], 4)
}

func TestHandleChatSurvivesSessionLoadFailure(t *testing.T) {
	runner := &stubRunner{}
	sessions := newMemSessions()
	sessions.loadErr = fmt.Errorf("redis down")
	handler := NewChatHandler(runner, sessions)

	rec := postChat(t, handler, `{"session_id":"s-3","message":"still works?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, runner.lastReq.History)
}

func TestHandleChatRejectsEmptyMessage(t *testing.T) {
	handler := NewChatHandler(&stubRunner{}, newMemSessions())

	rec := postChat(t, handler, `{"session_id":"s-4","message":"   "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChatRejectsMalformedBody(t *testing.T) {
	handler := NewChatHandler(&stubRunner{}, newMemSessions())

	rec := postChat(t, handler, `{"message":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
