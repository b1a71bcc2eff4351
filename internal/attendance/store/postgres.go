package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bioclock/internal/attendance/models"
	id "bioclock/pkg/domain"
	"bioclock/pkg/platform/sentinel"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// Postgres persists attendance events in attendance_events.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed event store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Insert relies on the (subject_id, day, event_type) constraint for atomicity.
func (s *Postgres) Insert(ctx context.Context, event *models.Event) error {
	device, err := json.Marshal(event.Device)
	if err != nil {
		return fmt.Errorf("marshal device: %w", err)
	}
	const query = `
		INSERT INTO attendance_events (
			id, subject_id, event_type, day, recorded_at, status, method,
			face_verified, face_confidence, ear_verified, ear_confidence,
			location, device, notes, operator_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(event.ID),
		uuid.UUID(event.Subject),
		string(event.Type),
		event.Day,
		event.Timestamp,
		string(event.Status),
		string(event.Method),
		event.FaceVerified,
		event.FaceConfidence,
		event.EarVerified,
		event.EarConfidence,
		event.Location,
		string(device),
		event.Notes,
		event.OperatorID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert attendance event: %w", err)
	}
	return nil
}

const selectEvents = `
	SELECT id, subject_id, event_type, to_char(day, 'YYYY-MM-DD'), recorded_at, status, method,
	       face_verified, face_confidence, ear_verified, ear_confidence,
	       location, device, notes, operator_id
	FROM attendance_events
`

func (s *Postgres) ListByDay(ctx context.Context, subject id.SubjectID, day string) ([]*models.Event, error) {
	query := selectEvents + `WHERE subject_id = $1 AND day = $2::date ORDER BY recorded_at`
	return s.query(ctx, query, uuid.UUID(subject), day)
}

func (s *Postgres) ListRange(ctx context.Context, subject id.SubjectID, from, to string) ([]*models.Event, error) {
	query := selectEvents + `WHERE subject_id = $1 AND day BETWEEN $2::date AND $3::date ORDER BY recorded_at`
	return s.query(ctx, query, uuid.UUID(subject), from, to)
}

func (s *Postgres) query(ctx context.Context, query string, args ...any) ([]*models.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attendance events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance events: %w", err)
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (*models.Event, error) {
	var (
		e                   models.Event
		eventID, subjectID  uuid.UUID
		typ, status, method string
		device              string
	)
	err := rows.Scan(
		&eventID,
		&subjectID,
		&typ,
		&e.Day,
		&e.Timestamp,
		&status,
		&method,
		&e.FaceVerified,
		&e.FaceConfidence,
		&e.EarVerified,
		&e.EarConfidence,
		&e.Location,
		&device,
		&e.Notes,
		&e.OperatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("scan attendance event: %w", err)
	}
	e.ID = id.EventID(eventID)
	e.Subject = id.SubjectID(subjectID)
	e.Type = models.Type(typ)
	e.Status = models.Status(status)
	e.Method = models.Method(method)
	if device != "" {
		if err := json.Unmarshal([]byte(device), &e.Device); err != nil {
			return nil, fmt.Errorf("decode device: %w", err)
		}
	}
	return &e, nil
}
