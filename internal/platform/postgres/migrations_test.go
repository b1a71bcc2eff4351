package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioclock/internal/platform/config"
)

func TestPendingMigrationFiles(t *testing.T) {
	t.Run("all files pending on a fresh database", func(t *testing.T) {
		files, err := pendingMigrationFiles(map[string]bool{})
		require.NoError(t, err)
		assert.Equal(t, []string{"001_biometric_profiles.sql", "002_attendance_events.sql"}, files)
	})

	t.Run("applied files are skipped", func(t *testing.T) {
		files, err := pendingMigrationFiles(map[string]bool{"001_biometric_profiles.sql": true})
		require.NoError(t, err)
		assert.Equal(t, []string{"002_attendance_events.sql"}, files)
	})
}

func TestNewPoolRequiresURL(t *testing.T) {
	_, err := NewPool(context.Background(), config.DatabaseConfig{})
	assert.EqualError(t, err, "database URL is required")
}
