package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	serve := func(checks map[string]Check) (*httptest.ResponseRecorder, HealthResponse) {
		rr := httptest.NewRecorder()
		Health(checks)(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		var body HealthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		return rr, body
	}

	t.Run("no dependencies", func(t *testing.T) {
		rr, body := serve(nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", body.Status)
		assert.Empty(t, body.Checks)
	})

	t.Run("failing dependency", func(t *testing.T) {
		rr, body := serve(map[string]Check{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "ok", body.Checks["postgres"])
		assert.Equal(t, "connection refused", body.Checks["redis"])
	})
}

func TestNew(t *testing.T) {
	srv := New(":0", http.NotFoundHandler())
	assert.Equal(t, ":0", srv.Addr)
	assert.NotZero(t, srv.ReadHeaderTimeout)
}
