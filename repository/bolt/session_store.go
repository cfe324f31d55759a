// Package bolt persists registry sessions in an embedded BoltDB file.
package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

const defaultBucket = "sessions"

// SessionStore keeps one JSON document per session token.
type SessionStore struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string) (*SessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(defaultBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{
		db:     db,
		bucket: []byte(defaultBucket),
	}, nil
}

func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if session == nil || session.Token == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(session.Token), payload)
	})
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(token))
	})
}

// List returns every stored session. Undecodable entries are skipped.
func (s *SessionStore) List(_ context.Context) ([]domain.Session, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	var sessions []domain.Session
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(_, v []byte) error {
			var session domain.Session
			if err := json.Unmarshal(v, &session); err != nil {
				return nil
			}
			sessions = append(sessions, session)
			return nil
		})
	})
	return sessions, err
}

// Size returns the number of stored sessions.
func (s *SessionStore) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Ping fails when the database is closed; the health monitor uses it as a probe.
func (s *SessionStore) Ping(context.Context) error {
	_, err := s.Size()
	return err
}

func (s *SessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ repository.SessionStore = (*SessionStore)(nil)
