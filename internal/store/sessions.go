package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelfscore/shelfscore-server/internal/domain"
)

const (
	sessionPrefix            = "session:"
	sessionByTokenHashPrefix = "idx:sessions:token:" //nolint:gosec // Key prefix, not a credential
)

var ErrSessionNotFound = errors.New("session not found")

// Session Operations

// CreateSession stores a new session and its refresh token hash index.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := setInTxn(txn, []byte(sessionPrefix+session.ID), session); err != nil {
			return err
		}
		return txn.Set([]byte(sessionByTokenHashPrefix+session.RefreshTokenHash), []byte(session.ID))
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("session created", "id", session.ID, "user_id", session.UserID)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	err := s.get([]byte(sessionPrefix+id), &session)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

// GetSessionByTokenHash looks up a session by its refresh token hash.
func (s *Store) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var sessionID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionByTokenHashPrefix + tokenHash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			sessionID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session by token hash: %w", err)
	}
	return s.GetSession(ctx, sessionID)
}

// UpdateSession persists a session, rotating the token hash index when the
// refresh token changed.
func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	oldSession, err := s.GetSession(ctx, session.ID)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if oldSession.RefreshTokenHash != session.RefreshTokenHash {
			if err := txn.Delete([]byte(sessionByTokenHashPrefix + oldSession.RefreshTokenHash)); err != nil {
				return err
			}
			if err := txn.Set([]byte(sessionByTokenHashPrefix+session.RefreshTokenHash), []byte(session.ID)); err != nil {
				return err
			}
		}
		return setInTxn(txn, []byte(sessionPrefix+session.ID), session)
	})
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// DeleteSession removes a session and its token hash index.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(sessionPrefix + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(sessionByTokenHashPrefix + session.RefreshTokenHash))
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("session deleted", "id", id, "user_id", session.UserID)
	}
	return nil
}

// ListSessionsByUser returns all sessions belonging to a user.
func (s *Store) ListSessionsByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	sessions, err := s.listAllSessions()
	if err != nil {
		return nil, err
	}

	var out []*domain.Session
	for _, session := range sessions {
		if session.UserID == userID {
			out = append(out, session)
		}
	}
	return out, nil
}

// DeleteExpiredSessions removes all sessions past their expiry.
// Returns the number of sessions removed. Called by the cleanup worker.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int, error) {
	sessions, err := s.listAllSessions()
	if err != nil {
		return 0, err
	}

	now := time.Now()
	deleted := 0
	for _, session := range sessions {
		if now.After(session.ExpiresAt) {
			if err := s.DeleteSession(ctx, session.ID); err != nil && !errors.Is(err, ErrSessionNotFound) {
				return deleted, err
			}
			deleted++
		}
	}

	if s.logger != nil && deleted > 0 {
		s.logger.Info("expired sessions removed", "count", deleted)
	}
	return deleted, nil
}

func (s *Store) listAllSessions() ([]*domain.Session, error) {
	var sessions []*domain.Session

	prefix := []byte(sessionPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var session domain.Session
				if err := json.Unmarshal(val, &session); err != nil {
					return err
				}
				sessions = append(sessions, &session)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return sessions, nil
}
