package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioclock/internal/platform/config"
)

func TestNewWithoutBrokersIsDisabled(t *testing.T) {
	client, err := New(context.Background(), config.KafkaConfig{AttendanceTopic: "attendance.recorded"})
	require.NoError(t, err)
	assert.Nil(t, client)
}
