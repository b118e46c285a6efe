// Package memory holds per-session workflow state in an in-process TTL
// cache. Sessions are deliberately transient: the external index and pipeline
// own all durable state, so an expired session loses nothing but display
// state and the running indexed counter.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/kirillkom/policy-navigator/internal/core/domain"
)

var ErrNotFound = errors.New("session not found")

type Store struct {
	// mu serializes read-modify-write cycles; go-cache only locks single
	// operations.
	mu    sync.Mutex
	cache *gocache.Cache
}

// New builds a store whose sessions expire ttl after their last write.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

func (s *Store) Ensure(_ context.Context, id string) (*domain.Session, error) {
	if id == "" {
		id = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache.Get(id); ok {
		return cached.(*domain.Session).Clone(), nil
	}
	sess := domain.NewSession(id)
	s.cache.SetDefault(id, sess.Clone())
	return sess, nil
}

func (s *Store) Get(_ context.Context, id string) (*domain.Session, error) {
	cached, ok := s.cache.Get(id)
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get session", ErrNotFound)
	}
	return cached.(*domain.Session).Clone(), nil
}

// Update re-reads the session under the store's lock, applies the mutation,
// and writes the result back, refreshing the TTL. The session is created if
// it does not exist. When apply returns an error nothing is written.
func (s *Store) Update(_ context.Context, id string, apply func(*domain.Session) error) (*domain.Session, error) {
	if id == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update session", errors.New("session id required"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var sess *domain.Session
	if cached, ok := s.cache.Get(id); ok {
		sess = cached.(*domain.Session).Clone()
	} else {
		sess = domain.NewSession(id)
	}
	if err := apply(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = time.Now().UTC()
	s.cache.SetDefault(id, sess.Clone())
	return sess, nil
}
