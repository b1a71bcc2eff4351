package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioclock/internal/verification/models"
	id "bioclock/pkg/domain"
	"bioclock/pkg/platform/sentinel"
)

func newSession() *models.Session {
	now := time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)
	return &models.Session{
		ID:          id.NewSessionID(),
		Subject:     id.SubjectID(uuid.New()),
		Type:        models.TypeFace,
		Status:      models.StatusInProgress,
		MaxAttempts: 3,
		Data:        json.RawMessage(`{"kiosk":"lobby"}`),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	session := newSession()

	t.Run("unknown session", func(t *testing.T) {
		_, err := s.FindByID(ctx, id.NewSessionID())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("create then find", func(t *testing.T) {
		require.NoError(t, s.Create(ctx, session))
		found, err := s.FindByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.Subject, found.Subject)
		assert.JSONEq(t, `{"kiosk":"lobby"}`, string(found.Data))
	})

	t.Run("create refuses an existing id", func(t *testing.T) {
		assert.ErrorIs(t, s.Create(ctx, session), sentinel.ErrConflict)
	})

	t.Run("save is last-write-wins", func(t *testing.T) {
		updated := *session
		updated.Attempts = 2
		require.NoError(t, s.Save(ctx, &updated))

		found, err := s.FindByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, found.Attempts)
	})

	t.Run("returned sessions are copies", func(t *testing.T) {
		found, err := s.FindByID(ctx, session.ID)
		require.NoError(t, err)
		found.Status = models.StatusCancelled

		again, err := s.FindByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, again.Status)
	})
}
