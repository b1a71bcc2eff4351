// Package store holds the verification session stores.
package store

import (
	"context"
	"slices"
	"sync"

	"bioclock/internal/verification/models"
	id "bioclock/pkg/domain"
	"bioclock/pkg/platform/sentinel"
)

// InMemory is a map-backed SessionStore.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.Session
}

func NewInMemory() *InMemory {
	return &InMemory{sessions: make(map[id.SessionID]*models.Session)}
}

func (s *InMemory) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return sentinel.ErrConflict
	}
	s.sessions[session.ID] = clone(session)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(session), nil
}

func (s *InMemory) Save(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = clone(session)
	return nil
}

func clone(session *models.Session) *models.Session {
	c := *session
	c.Data = slices.Clone(session.Data)
	if session.CompletedAt != nil {
		t := *session.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
