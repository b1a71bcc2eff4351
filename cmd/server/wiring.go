package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bioclock/internal/attendance"
	attendanceMetrics "bioclock/internal/attendance/metrics"
	attendancePorts "bioclock/internal/attendance/ports"
	"bioclock/internal/attendance/publisher"
	attendanceStore "bioclock/internal/attendance/store"
	"bioclock/internal/biometric"
	"bioclock/internal/enrollment"
	enrollmentPorts "bioclock/internal/enrollment/ports"
	enrollmentStore "bioclock/internal/enrollment/store"
	jwttoken "bioclock/internal/jwt_token"
	"bioclock/internal/platform/config"
	"bioclock/internal/platform/httpserver"
	"bioclock/internal/platform/kafka"
	"bioclock/internal/platform/postgres"
	"bioclock/internal/platform/redis"
	"bioclock/internal/verification"
	verificationMetrics "bioclock/internal/verification/metrics"
	verificationPorts "bioclock/internal/verification/ports"
	verificationStore "bioclock/internal/verification/store"
)

// infrastructure holds the optional backing services. Nil fields fall back
// to in-memory stores or a log-only publisher.
type infrastructure struct {
	db    *postgres.Pool
	redis *redis.Client
	kafka *kafka.Client
}

func connect(ctx context.Context, cfg *config.Config, log *slog.Logger) (*infrastructure, error) {
	infra := &infrastructure{}

	if cfg.Database.URL != "" {
		db, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		infra.db = db
		applied, err := db.Migrate(ctx)
		if err != nil {
			infra.Close(log)
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		log.Info("postgres ready", "migrations_applied", applied)
	} else {
		log.Info("DATABASE_URL not set, using in-memory profile and event stores")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		infra.Close(log)
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	infra.redis = rc
	if rc == nil {
		log.Info("REDIS_URL not set, using in-memory session store")
	}

	kc, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		infra.Close(log)
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	if kc != nil {
		infra.kafka = kc
		if err := kc.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("failed to ensure attendance topic", "topic", kc.Topic(), "error", err)
		}
	} else {
		log.Info("KAFKA_BROKERS not set, attendance events are logged only")
	}

	return infra, nil
}

// HealthChecks lists a check per configured backend.
func (i *infrastructure) HealthChecks() map[string]httpserver.Check {
	checks := map[string]httpserver.Check{}
	if i.db != nil {
		checks["postgres"] = i.db.Health
	}
	if i.redis != nil {
		checks["redis"] = i.redis.Health
	}
	if i.kafka != nil {
		checks["kafka"] = i.kafka.Health
	}
	return checks
}

// Close releases backends. The kafka client is owned by the publisher's sink
// once services are built.
func (i *infrastructure) Close(log *slog.Logger) {
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Warn("failed to close redis", "error", err)
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			log.Warn("failed to close postgres", "error", err)
		}
	}
}

type services struct {
	validator    *jwttoken.JWTServiceAdapter
	enrollment   *enrollment.Service
	verification *verification.Service
	attendance   *attendance.Service
	publisher    *publisher.Publisher
}

func buildServices(cfg *config.Config, infra *infrastructure, log *slog.Logger) (*services, error) {
	minConfidence := cfg.Biometric.MinConfidence
	thresholds := biometric.ThresholdConfig{
		Face:          cfg.Biometric.FaceThreshold,
		Ear:           cfg.Biometric.EarThreshold,
		MinConfidence: &minConfidence,
	}

	var (
		profiles enrollmentPorts.ProfileStore   = enrollmentStore.NewInMemory()
		events   attendancePorts.EventStore     = attendanceStore.NewInMemory()
		sessions verificationPorts.SessionStore = verificationStore.NewInMemory()
		sink     publisher.Sink                 = publisher.NewLogSink(log)
	)
	if infra.db != nil {
		profiles = enrollmentStore.NewPostgres(infra.db.DB())
		events = attendanceStore.NewPostgres(infra.db.DB())
	}
	if infra.redis != nil {
		sessions = verificationStore.NewRedis(infra.redis.Client,
			verificationStore.WithRetention(verificationStore.RetentionFor(cfg.Session.TTL())))
	}
	if infra.kafka != nil {
		sink = publisher.NewKafkaSink(infra.kafka)
	}

	enr, err := enrollment.New(profiles, enrollment.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("build enrollment service: %w", err)
	}

	ver, err := verification.New(sessions, enr,
		verification.WithLogger(log),
		verification.WithMetrics(verificationMetrics.New()),
		verification.WithMaxAttempts(cfg.Session.MaxAttempts),
		verification.WithTTL(cfg.Session.TTL()),
		verification.WithThresholds(thresholds),
	)
	if err != nil {
		return nil, fmt.Errorf("build verification service: %w", err)
	}

	pub := publisher.New(sink,
		publisher.WithLogger(log),
		publisher.WithAsyncBuffer(cfg.Kafka.BufferSize),
		publisher.WithCircuitBreaker(publisher.NewCircuitBreaker(5, 30*time.Second)),
	)

	att, err := attendance.New(enr, events,
		attendance.WithLogger(log),
		attendance.WithMetrics(attendanceMetrics.New()),
		attendance.WithPublisher(pub),
		attendance.WithThresholds(thresholds),
		attendance.WithWorkStart(cfg.WorkStart()),
		attendance.WithLocation(cfg.Location()),
	)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("build attendance service: %w", err)
	}

	tokens := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	return &services{
		validator:    jwttoken.NewJWTServiceAdapter(tokens),
		enrollment:   enr,
		verification: ver,
		attendance:   att,
		publisher:    pub,
	}, nil
}
