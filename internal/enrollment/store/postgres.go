package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"bioclock/internal/biometric"
	"bioclock/internal/enrollment/models"
	id "bioclock/pkg/domain"
	"bioclock/pkg/platform/sentinel"
)

// Postgres stores profiles in biometric_profiles with pgvector columns.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Get(ctx context.Context, subject id.SubjectID) (*models.Profile, error) {
	const query = `
		SELECT subject_id, account_verified, face_vector, ear_unified, ear_left, ear_right,
		       face_registered_at, ear_registered_at, created_at, updated_at
		FROM biometric_profiles
		WHERE subject_id = $1
	`

	var (
		p                          models.Profile
		subjectID                  uuid.UUID
		face, unified, left, right pgvector.Vector
		faceAt, earAt              sql.NullTime
	)
	// NULL vector columns scan as empty vectors.
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(subject)).Scan(
		&subjectID,
		&p.AccountVerified,
		nullVector{&face},
		nullVector{&unified},
		nullVector{&left},
		nullVector{&right},
		&faceAt,
		&earAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query biometric profile: %w", err)
	}

	p.Subject = id.SubjectID(subjectID)
	p.Biometrics = biometric.Enrolled{
		Face: face.Slice(),
		Ear: biometric.EarSet{
			Unified: unified.Slice(),
			Left:    left.Slice(),
			Right:   right.Slice(),
		},
	}
	p.FaceRegisteredAt = timePtr(faceAt)
	p.EarRegisteredAt = timePtr(earAt)
	return &p, nil
}

func (s *Postgres) Save(ctx context.Context, profile *models.Profile) error {
	const query = `
		INSERT INTO biometric_profiles (
			subject_id, account_verified, face_vector, ear_unified, ear_left, ear_right,
			face_registered_at, ear_registered_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (subject_id) DO UPDATE SET
			account_verified   = EXCLUDED.account_verified,
			face_vector        = EXCLUDED.face_vector,
			ear_unified        = EXCLUDED.ear_unified,
			ear_left           = EXCLUDED.ear_left,
			ear_right          = EXCLUDED.ear_right,
			face_registered_at = EXCLUDED.face_registered_at,
			ear_registered_at  = EXCLUDED.ear_registered_at,
			updated_at         = EXCLUDED.updated_at
	`

	b := profile.Biometrics
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(profile.Subject),
		profile.AccountVerified,
		vectorArg(b.Face),
		vectorArg(b.Ear.Unified),
		vectorArg(b.Ear.Left),
		vectorArg(b.Ear.Right),
		nullTime(profile.FaceRegisteredAt),
		nullTime(profile.EarRegisteredAt),
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save biometric profile: %w", err)
	}
	return nil
}

// Register writes the modality's reference vectors in one statement. Columns of
// other modalities keep their stored values. When the stored profile already
// holds vectors for the modality no row is written and sentinel.ErrConflict is
// returned.
func (s *Postgres) Register(ctx context.Context, profile *models.Profile, modality biometric.Modality) error {
	const query = `
		INSERT INTO biometric_profiles (
			subject_id, account_verified, face_vector, ear_unified, ear_left, ear_right,
			face_registered_at, ear_registered_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (subject_id) DO UPDATE SET
			account_verified   = EXCLUDED.account_verified,
			face_vector        = CASE WHEN $11::boolean THEN EXCLUDED.face_vector ELSE biometric_profiles.face_vector END,
			face_registered_at = CASE WHEN $11::boolean THEN EXCLUDED.face_registered_at ELSE biometric_profiles.face_registered_at END,
			ear_unified        = CASE WHEN $12::boolean THEN EXCLUDED.ear_unified ELSE biometric_profiles.ear_unified END,
			ear_left           = CASE WHEN $12::boolean THEN EXCLUDED.ear_left ELSE biometric_profiles.ear_left END,
			ear_right          = CASE WHEN $12::boolean THEN EXCLUDED.ear_right ELSE biometric_profiles.ear_right END,
			ear_registered_at  = CASE WHEN $12::boolean THEN EXCLUDED.ear_registered_at ELSE biometric_profiles.ear_registered_at END,
			updated_at         = EXCLUDED.updated_at
		WHERE (NOT $11::boolean OR biometric_profiles.face_vector IS NULL)
		  AND (NOT $12::boolean OR (biometric_profiles.ear_unified IS NULL
		                            AND biometric_profiles.ear_left IS NULL
		                            AND biometric_profiles.ear_right IS NULL))
	`

	b := profile.Biometrics
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(profile.Subject),
		profile.AccountVerified,
		vectorArg(b.Face),
		vectorArg(b.Ear.Unified),
		vectorArg(b.Ear.Left),
		vectorArg(b.Ear.Right),
		nullTime(profile.FaceRegisteredAt),
		nullTime(profile.EarRegisteredAt),
		profile.CreatedAt,
		profile.UpdatedAt,
		modality.Includes(biometric.ModalityFace),
		modality.Includes(biometric.ModalityEar),
	)
	if err != nil {
		return fmt.Errorf("register biometric profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("register biometric profile: %w", err)
	}
	if n == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

// vectorArg maps an absent vector to SQL NULL.
func vectorArg(v biometric.Vector) any {
	if !v.Present() {
		return nil
	}
	return pgvector.NewVector(v)
}

// nullVector scans a nullable vector column, leaving the target empty on NULL.
type nullVector struct {
	v *pgvector.Vector
}

func (n nullVector) Scan(src any) error {
	if src == nil {
		*n.v = pgvector.Vector{}
		return nil
	}
	return n.v.Scan(src)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
