package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "bioclock/pkg/domain-errors"
)

// TestParseSubjectID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseSubjectID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseSubjectID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseSubjectID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseSubjectID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseSubjectID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, SubjectID(validUUID), id)
		assert.Equal(t, validUUID.String(), id.String())
	})
}

// TestParseID_BoundaryInputs checks hostile and malformed inputs at API entry points.
func TestParseID_BoundaryInputs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE attendance_events;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSessionID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errSubject := ParseSubjectID(validUUID)
		_, errSession := ParseSessionID(validUUID)
		_, errEvent := ParseEventID(validUUID)

		require.NoError(t, errSubject)
		require.NoError(t, errSession)
		require.NoError(t, errEvent)
	})

	for _, input := range []string{"", "invalid", uuid.Nil.String()} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errSubject := ParseSubjectID(input)
			_, errSession := ParseSessionID(input)
			_, errEvent := ParseEventID(input)

			require.Error(t, errSubject)
			require.Error(t, errSession)
			require.Error(t, errEvent)
		})
	}
}

func TestNewIDs(t *testing.T) {
	assert.False(t, NewSessionID().IsNil())
	assert.False(t, NewEventID().IsNil())
	assert.NotEqual(t, NewSessionID(), NewSessionID())
	assert.True(t, SubjectID{}.IsNil())
}

func TestIDsMarshalAsStrings(t *testing.T) {
	u := uuid.New()
	body, err := json.Marshal(struct {
		Subject SubjectID `json:"subject_id"`
	}{SubjectID(u)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"subject_id":"`+u.String()+`"}`, string(body))

	var decoded struct {
		Session SessionID `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"session_id":"`+u.String()+`"}`), &decoded))
	assert.Equal(t, SessionID(u), decoded.Session)
}
