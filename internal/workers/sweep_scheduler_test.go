package workers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateNextSweepTime(t *testing.T) {
	from := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	next := calculateNextSweepTime("0 3 * * *", from)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC), *next)

	next = calculateNextSweepTime("*/15 * * * *", from)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2026, 3, 10, 12, 15, 0, 0, time.UTC), *next)
}

func TestCalculateNextSweepTimeInvalid(t *testing.T) {
	assert.Nil(t, calculateNextSweepTime("", time.Now()))
	assert.Nil(t, calculateNextSweepTime("not a cron line", time.Now()))
	assert.Nil(t, calculateNextSweepTime("0 3 * *", time.Now()), "five fields required")
}
