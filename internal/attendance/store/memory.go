// Package store holds the attendance event stores.
package store

import (
	"context"
	"slices"
	"sync"

	"bioclock/internal/attendance/models"
	id "bioclock/pkg/domain"
	"bioclock/pkg/platform/sentinel"
)

type eventKey struct {
	subject id.SubjectID
	day     string
	typ     models.Type
}

// InMemory keeps events in process. Insert checks and writes under one lock.
type InMemory struct {
	mu     sync.RWMutex
	keys   map[eventKey]struct{}
	events map[id.SubjectID][]*models.Event
}

func NewInMemory() *InMemory {
	return &InMemory{
		keys:   make(map[eventKey]struct{}),
		events: make(map[id.SubjectID][]*models.Event),
	}
}

func (s *InMemory) Insert(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := eventKey{subject: event.Subject, day: event.Day, typ: event.Type}
	if _, exists := s.keys[key]; exists {
		return sentinel.ErrConflict
	}
	s.keys[key] = struct{}{}
	stored := *event
	s.events[event.Subject] = append(s.events[event.Subject], &stored)
	return nil
}

func (s *InMemory) ListByDay(_ context.Context, subject id.SubjectID, day string) ([]*models.Event, error) {
	return s.collect(subject, func(e *models.Event) bool { return e.Day == day }), nil
}

// ListRange compares days lexically, which orders YYYY-MM-DD correctly.
func (s *InMemory) ListRange(_ context.Context, subject id.SubjectID, from, to string) ([]*models.Event, error) {
	return s.collect(subject, func(e *models.Event) bool { return e.Day >= from && e.Day <= to }), nil
}

func (s *InMemory) collect(subject id.SubjectID, keep func(*models.Event) bool) []*models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Event
	for _, e := range s.events[subject] {
		if keep(e) {
			c := *e
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *models.Event) int { return a.Timestamp.Compare(b.Timestamp) })
	return out
}
