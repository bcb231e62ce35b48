package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
)

func TestMockLoggerRecordsMessages(t *testing.T) {
	log := NewMockLogger()

	log.Info("loaded", logging.Int("count", 3))
	log.Warn("skipped feature")
	log.Named("child").Error("boom")

	assert.Len(t, log.GetMessages(), 3)
	assert.True(t, log.HasMessage("warn", "skipped feature"))
	assert.False(t, log.HasMessage("warn", "other"))
	assert.Equal(t, 1, log.CountLevel("error"))

	log.Clear()
	assert.Empty(t, log.GetMessages())
}

func TestMockLoggerWithReturnsSameRecorder(t *testing.T) {
	log := NewMockLogger()
	log.With(logging.String("run_id", "r1")).Info("start")
	assert.True(t, log.HasMessage("info", "start"))
}
