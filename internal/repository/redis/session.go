package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	redisadapter "fincoach/internal/adapters/redis"
	"fincoach/internal/conversation"
	"fincoach/pkg/errors"
	"fincoach/pkg/logger"
)

// SessionStore keeps per-session conversation history in Redis with a
// sliding TTL
type SessionStore struct {
	client *redisadapter.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewSessionStore creates a session store
func NewSessionStore(client *redisadapter.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{
		client: client,
		ttl:    ttl,
		log:    logger.Get().With("component", "session_store"),
	}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

// History returns the stored messages for a session. A missing session
// is an empty history, not an error.
func (s *SessionStore) History(ctx context.Context, sessionID string) ([]conversation.Message, error) {
	var messages []conversation.Message
	err := s.client.Get(ctx, sessionKey(sessionID), &messages)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to load session %s", sessionID)
	}
	return messages, nil
}

// Save replaces the session history and refreshes its TTL
func (s *SessionStore) Save(ctx context.Context, sessionID string, messages []conversation.Message) error {
	if err := s.client.Set(ctx, sessionKey(sessionID), messages, s.ttl); err != nil {
		return errors.Wrapf(err, "failed to save session %s", sessionID)
	}
	return nil
}

// Delete removes a session
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Delete(ctx, sessionKey(sessionID))
}
