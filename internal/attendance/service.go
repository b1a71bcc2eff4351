// Package attendance adjudicates and records attendance events.
package attendance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"bioclock/internal/attendance/metrics"
	"bioclock/internal/attendance/models"
	"bioclock/internal/attendance/ports"
	"bioclock/internal/biometric"
	enrollment "bioclock/internal/enrollment/models"
	id "bioclock/pkg/domain"
	dErrors "bioclock/pkg/domain-errors"
	"bioclock/pkg/platform/sentinel"
	"bioclock/pkg/requestcontext"
)

var tracer = otel.Tracer("bioclock/attendance")

// Service records attendance for enrolled subjects.
type Service struct {
	enrollments ports.EnrollmentReader
	events      ports.EventStore
	publisher   ports.Publisher
	metrics     *metrics.Metrics
	logger      *slog.Logger

	thresholds biometric.ThresholdConfig
	workStart  time.Duration
	location   *time.Location
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithPublisher announces every recorded event.
func WithPublisher(p ports.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithThresholds(cfg biometric.ThresholdConfig) Option {
	return func(s *Service) {
		s.thresholds = cfg
	}
}

// WithWorkStart sets the local time-of-day after which a check-in is late.
func WithWorkStart(offset time.Duration) Option {
	return func(s *Service) {
		s.workStart = offset
	}
}

// WithLocation sets the time zone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// New constructs a Service. Without options it uses UTC days, a 09:00 work
// start and the default thresholds.
func New(enrollments ports.EnrollmentReader, events ports.EventStore, opts ...Option) (*Service, error) {
	if enrollments == nil {
		return nil, errors.New("enrollment reader is required")
	}
	if events == nil {
		return nil, errors.New("event store is required")
	}
	s := &Service{
		enrollments: enrollments,
		events:      events,
		logger:      slog.Default(),
		workStart:   9 * time.Hour,
		location:    time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Mark adjudicates and records one attendance event for the subject.
func (s *Service) Mark(ctx context.Context, subject id.SubjectID, req MarkRequest) (*models.Event, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "attendance.Mark")
	defer span.End()
	span.SetAttributes(
		attribute.String("event_type", string(req.Type)),
		attribute.Bool("override", req.Override != nil),
	)

	event, err := s.mark(ctx, subject, req)
	s.metrics.ObserveMarkLatency(time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mark failed")
		s.metrics.IncrementOutcome(string(req.Type), string(dErrors.CodeOf(err)))
		s.logger.WarnContext(ctx, "attendance rejected",
			"subject_id", subject,
			"type", req.Type,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}

	s.metrics.IncrementOutcome(string(req.Type), "recorded")
	s.metrics.IncrementRecorded(string(event.Method), event.Status == models.StatusLate)
	s.logger.InfoContext(ctx, "attendance recorded",
		"subject_id", subject,
		"event_id", event.ID,
		"type", event.Type,
		"status", event.Status,
		"method", event.Method,
		"request_id", requestcontext.RequestID(ctx),
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.metrics.IncrementPublishFailure()
			s.logger.ErrorContext(ctx, "failed to publish attendance event",
				"event_id", event.ID,
				"error", err,
			)
		}
	}
	return event, nil
}

func (s *Service) mark(ctx context.Context, subject id.SubjectID, req MarkRequest) (*models.Event, error) {
	now := requestcontext.Now(ctx)
	day := now.In(s.location).Format(models.DayLayout)

	var (
		profile *enrollment.Profile
		today   []*models.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.enrollments.Get(gctx, subject)
		if err != nil {
			if isNotEnrolled(err) {
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load enrollment profile")
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		events, err := s.events.ListByDay(gctx, subject, day)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load today's attendance")
		}
		today = events
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if profile == nil {
		if req.Override == nil {
			return nil, ErrNotEnrolled
		}
		profile = &enrollment.Profile{Subject: subject}
	}

	event, err := Adjudicate(Input{
		Subject:         subject,
		AccountVerified: profile.AccountVerified,
		Request:         req,
		Enrolled:        profile.Biometrics,
		Today:           today,
		Thresholds:      biometric.ResolveThresholds(s.thresholds, req.Thresholds),
		WorkStart:       s.workStart,
		Location:        s.location,
		Now:             now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.events.Insert(ctx, event); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, ErrDuplicateEvent
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record attendance")
	}
	return event, nil
}

// Today lists the subject's events for the current local day.
func (s *Service) Today(ctx context.Context, subject id.SubjectID) ([]*models.Event, error) {
	day := requestcontext.Now(ctx).In(s.location).Format(models.DayLayout)
	events, err := s.events.ListByDay(ctx, subject, day)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load today's attendance")
	}
	if events == nil {
		events = []*models.Event{}
	}
	return events, nil
}

// Summary rolls up the subject's attendance over the period ending today.
func (s *Service) Summary(ctx context.Context, subject id.SubjectID, period models.Period) (models.Summary, error) {
	ctx, span := tracer.Start(ctx, "attendance.Summary")
	defer span.End()
	span.SetAttributes(attribute.String("period", string(period)))

	if _, ok := models.ParsePeriod(string(period)); !ok {
		return models.Summary{}, dErrors.New(dErrors.CodeValidation, "period must be weekly or monthly")
	}

	now := requestcontext.Now(ctx)
	from, to := SummaryWindow(period, now, s.location)
	events, err := s.events.ListRange(ctx, subject, from.Format(models.DayLayout), to.Format(models.DayLayout))
	if err != nil {
		return models.Summary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load attendance history")
	}

	summary := BuildSummary(period, from, to, events)
	summary.GeneratedAt = now
	return summary, nil
}

func isNotEnrolled(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotEnrolled)
}
