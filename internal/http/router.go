// Package httpapi assembles the public HTTP surface. Handlers delegate to
// domain services; this package only orders middleware and mounts routes.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	attendancehandler "bioclock/internal/attendance/handler"
	enrollmenthandler "bioclock/internal/enrollment/handler"
	"bioclock/internal/platform/httpserver"
	"bioclock/internal/platform/metrics"
	"bioclock/internal/platform/middleware"
	verificationhandler "bioclock/internal/verification/handler"
)

// Deps are the collaborators the router mounts.
type Deps struct {
	Logger       *slog.Logger
	Validator    middleware.JWTValidator
	Metrics      *metrics.Metrics
	Enrollment   enrollmenthandler.Service
	Verification verificationhandler.Service
	Attendance   attendancehandler.Service
	HealthChecks map[string]httpserver.Check
}

// NewRouter wires all public endpoints. /health and /metrics are open; every
// biometric and attendance route requires a bearer token.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Trace)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Get("/health", httpserver.Health(d.HealthChecks))
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Validator, d.Logger))
		enrollmenthandler.New(d.Enrollment, d.Logger).Register(r)
		verificationhandler.New(d.Verification, d.Logger).Register(r)
		attendancehandler.New(d.Attendance, d.Logger).Register(r)
	})
	return r
}
