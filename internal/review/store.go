// internal/review/store.go
// Package review owns the per-request holding area for uncertain
// verdicts and the recompute that resolves them. The store is the only
// cross-request mutable shared state in the core; sessions are
// single-writer per request_id.
package review

import (
	"context"
	"sync"
	"time"

	"menu-classifier/internal/common/errors"
	"menu-classifier/internal/common/metrics"
	"menu-classifier/internal/models"
)

// Store holds open review sessions keyed by request_id. A session is
// created exactly once, read many times, and removed exactly once:
// Claim atomically hands ownership to a single caller, so idempotent
// external retries cannot double-apply corrections.
type Store interface {
	// Open creates a session; DuplicateSessionError if request_id
	// already has one.
	Open(ctx context.Context, session *models.ReviewSession) error
	// Get reads a session without closing it; UnknownSessionError if
	// absent or expired.
	Get(ctx context.Context, requestID string) (*models.ReviewSession, error)
	// Claim atomically removes and returns the session. Exactly one
	// caller succeeds; everyone else gets UnknownSessionError.
	Claim(ctx context.Context, requestID string) (*models.ReviewSession, error)
}

// MemoryStore is the in-memory backend for single-instance deployments.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*models.ReviewSession
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*models.ReviewSession),
		stop:     make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *MemoryStore) Open(_ context.Context, session *models.ReviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[session.RequestID]; ok && !existing.Expired(time.Now()) {
		return errors.NewDuplicateSessionError(session.RequestID)
	}
	s.sessions[session.RequestID] = session
	metrics.ReviewSessionsOpen.Inc()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, requestID string) (*models.ReviewSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[requestID]
	if !ok || session.Expired(time.Now()) {
		return nil, errors.NewUnknownSessionError(requestID)
	}
	return session, nil
}

func (s *MemoryStore) Claim(_ context.Context, requestID string) (*models.ReviewSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[requestID]
	if !ok {
		return nil, errors.NewUnknownSessionError(requestID)
	}
	delete(s.sessions, requestID)
	metrics.ReviewSessionsOpen.Dec()
	if session.Expired(time.Now()) {
		return nil, errors.NewUnknownSessionError(requestID)
	}
	return session, nil
}

// Stop terminates the expiry janitor.
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for id, session := range s.sessions {
				if session.Expired(now) {
					delete(s.sessions, id)
					metrics.ReviewSessionsOpen.Dec()
				}
			}
			s.mu.Unlock()
		}
	}
}
