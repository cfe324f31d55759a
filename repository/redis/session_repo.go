package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

const defaultPrefix = "session:"

// SessionStore keeps sessions as JSON strings that expire with the session itself.
type SessionStore struct {
	client redislib.UniversalClient
	prefix string
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client redislib.UniversalClient, prefix string) *SessionStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SessionStore{
		client: client,
		prefix: prefix,
	}
}

func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.Token == "" {
		return domain.ErrInvalidPayload
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, session.Token)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(session.Token), payload, ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

// List scans the prefix; keys that vanish between SCAN and GET are skipped.
func (s *SessionStore) List(ctx context.Context) ([]domain.Session, error) {
	var sessions []domain.Session
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Result()
		if err != nil {
			if errors.Is(err, redislib.Nil) {
				continue
			}
			return nil, err
		}
		var session domain.Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			continue
		}
		sessions = append(sessions, session)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Close is a no-op; the client is owned by the caller.
func (s *SessionStore) Close() error {
	return nil
}

func (s *SessionStore) key(token string) string {
	return fmt.Sprintf("%s%s", s.prefix, token)
}

var _ repository.SessionStore = (*SessionStore)(nil)
