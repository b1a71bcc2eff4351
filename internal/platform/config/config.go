package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	strs "bioclock/pkg/platform/strings"
)

// DefaultWorkStart is used when BIOCLOCK_WORK_START_TIME is absent or malformed.
const DefaultWorkStart = 9 * time.Hour

// Config is the full process configuration.
type Config struct {
	Server    Server
	Biometric Biometric
	Session   Session
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Log       LogConfig
	Tracing   TracingConfig

	location          *time.Location
	workStart         time.Duration
	workStartFallback bool
}

// Location is the time zone that attendance days and lateness are computed in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// WorkStart is the offset from local midnight after which a check-in is late.
func (c *Config) WorkStart() time.Duration {
	if c.location == nil && c.workStart == 0 {
		return DefaultWorkStart
	}
	return c.workStart
}

// WorkStartFallback reports whether the configured start time was malformed
// and DefaultWorkStart is in effect.
func (c *Config) WorkStartFallback() bool {
	return c.workStartFallback
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string `env:"BIOCLOCK_ADDR"            envDefault:":8080"`
	JWTSigningKey string `env:"BIOCLOCK_JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"BIOCLOCK_JWT_ISSUER"`
	JWTAudience   string `env:"BIOCLOCK_JWT_AUDIENCE"`
}

// Biometric holds matching thresholds and attendance policy.
// FaceThreshold and EarThreshold stay nil when unset so they can fall back
// to MinConfidence.
type Biometric struct {
	FaceThreshold *float64 `env:"BIOCLOCK_FACE_THRESHOLD"`
	EarThreshold  *float64 `env:"BIOCLOCK_EAR_THRESHOLD"`
	MinConfidence float64  `env:"BIOCLOCK_MIN_CONFIDENCE"  envDefault:"0.8"`
	WorkStartTime string   `env:"BIOCLOCK_WORK_START_TIME" envDefault:"09:00"`
	Timezone      string   `env:"BIOCLOCK_TIMEZONE"        envDefault:"UTC"`
}

// Session configures the verification session lifecycle.
type Session struct {
	MaxAttempts int `env:"BIOCLOCK_SESSION_MAX_ATTEMPTS" envDefault:"3"`
	TTLSeconds  int `env:"BIOCLOCK_SESSION_TTL_SECONDS"  envDefault:"1800"`
}

// TTL returns the session lifetime.
func (s Session) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

// DatabaseConfig configures the Postgres pool. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL          string `env:"DATABASE_URL"`
	MaxOpenConns int    `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns int    `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
}

// RedisConfig configures the session cache. An empty URL selects the in-memory store.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE"      envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT"   envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT"   envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT"  envDefault:"3s"`
}

// KafkaConfig configures the attendance event publisher. No brokers means
// events are only logged.
type KafkaConfig struct {
	Brokers         []string `env:"KAFKA_BROKERS"          envSeparator:","`
	AttendanceTopic string   `env:"KAFKA_ATTENDANCE_TOPIC" envDefault:"attendance.recorded"`
	ClientID        string   `env:"KAFKA_CLIENT_ID"        envDefault:"bioclock"`
	BufferSize      int      `env:"KAFKA_BUFFER_SIZE"      envDefault:"256"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// TracingConfig configures span export. An empty endpoint keeps the no-op
// tracer provider.
type TracingConfig struct {
	Endpoint    string  `env:"BIOCLOCK_OTEL_ENDPOINT"`
	Enabled     bool    `env:"BIOCLOCK_OTEL_ENABLED"      envDefault:"true"`
	SampleRatio float64 `env:"BIOCLOCK_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// Load parses the environment into a validated Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolve() error {
	if err := c.Validate(); err != nil {
		return err
	}

	loc, err := time.LoadLocation(c.Biometric.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", c.Biometric.Timezone, err)
	}
	c.location = loc

	c.workStart, c.workStartFallback = ParseWorkStart(c.Biometric.WorkStartTime)
	c.Kafka.Brokers = strs.DedupeAndTrim(c.Kafka.Brokers)
	return nil
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	var errs []error
	checkUnit := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1], got %v", name, v))
		}
	}
	checkUnit("BIOCLOCK_MIN_CONFIDENCE", c.Biometric.MinConfidence)
	if c.Biometric.FaceThreshold != nil {
		checkUnit("BIOCLOCK_FACE_THRESHOLD", *c.Biometric.FaceThreshold)
	}
	if c.Biometric.EarThreshold != nil {
		checkUnit("BIOCLOCK_EAR_THRESHOLD", *c.Biometric.EarThreshold)
	}
	checkUnit("BIOCLOCK_OTEL_SAMPLE_RATIO", c.Tracing.SampleRatio)
	if c.Session.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("BIOCLOCK_SESSION_MAX_ATTEMPTS must be positive, got %d", c.Session.MaxAttempts))
	}
	if c.Session.TTLSeconds < 1 {
		errs = append(errs, fmt.Errorf("BIOCLOCK_SESSION_TTL_SECONDS must be positive, got %d", c.Session.TTLSeconds))
	}
	if c.Server.JWTSigningKey == "" {
		errs = append(errs, errors.New("BIOCLOCK_JWT_SIGNING_KEY must not be empty"))
	}
	return errors.Join(errs...)
}

// ParseWorkStart parses an "HH:MM" clock into an offset from midnight.
// Malformed input yields DefaultWorkStart and fallback=true.
func ParseWorkStart(raw string) (offset time.Duration, fallback bool) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return DefaultWorkStart, true
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, false
}
