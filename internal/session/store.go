// Package session keeps login sessions in an embedded badger database.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"
	"github.com/pxtester/showcase/internal/domain"
	"github.com/rs/zerolog"
)

const keyPrefix = "session:"

// Store persists sessions keyed by token. Entries carry a badger TTL so
// expired sessions disappear without a sweeper.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
	now    func() time.Time
}

// badgerLogger adapts zerolog to badger.Logger.
type badgerLogger struct {
	logger zerolog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, items ...any)   { l.logger.Error().Msgf(msg, items...) }
func (l *badgerLogger) Warningf(msg string, items ...any) { l.logger.Warn().Msgf(msg, items...) }
func (l *badgerLogger) Infof(msg string, items ...any)    { l.logger.Debug().Msgf(msg, items...) }
func (l *badgerLogger) Debugf(msg string, items ...any)   { l.logger.Trace().Msgf(msg, items...) }

// Open opens the store at dir, or an in-memory store when dir is empty.
func Open(dir string, logger zerolog.Logger) (*Store, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create session dir: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &badgerLogger{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type record struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issue creates a session for actor that lasts ttl.
func (s *Store) Issue(ctx context.Context, actor domain.Actor, ttl time.Duration) (*domain.Session, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	now := s.now().UTC()
	sess := &domain.Session{
		Token:     uuid.NewString(),
		Actor:     actor,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Create stores sess under its token.
func (s *Store) Create(_ context.Context, sess *domain.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(record{
		UserID:    sess.Actor.UserID,
		Email:     sess.Actor.Email,
		Name:      sess.Actor.Name,
		Role:      string(sess.Actor.Role),
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key(sess.Token), data).WithTTL(ttl))
	})
}

// Get returns the live session for token or domain.ErrSessionNotFound.
func (s *Store) Get(_ context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	var rec record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(token))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	sess := &domain.Session{
		Token: token,
		Actor: domain.Actor{
			UserID: rec.UserID,
			Email:  rec.Email,
			Name:   rec.Name,
			Role:   domain.Role(rec.Role),
		},
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}
	// badger TTLs have second granularity.
	if sess.Expired(s.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Delete revokes token. Deleting an unknown token is not an error.
func (s *Store) Delete(_ context.Context, token string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(token))
	})
}

func key(token string) []byte {
	return []byte(keyPrefix + token)
}
