package utils

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger("debug")
	require.NotNil(t, logger)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	assert.Equal(t, logrus.InfoLevel, NewLogger("chatty").GetLevel())
}

func TestParseTimestampKeepsOffset(t *testing.T) {
	ts, err := ParseTimestamp("2025-10-10T23:30:00-05:00")
	require.NoError(t, err)

	_, offset := ts.Zone()
	assert.Equal(t, -5*3600, offset)
	assert.Equal(t, "2025-10-10", CalendarDate(ts), "date must not be converted to UTC")
}

func TestParseTimestampNaive(t *testing.T) {
	for _, s := range []string{
		"2025-10-10T08:00:00.123456",
		"2025-10-10 08:00:00",
		"2025-10-10 08:00",
		"2025-10-10",
	} {
		ts, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.Equal(t, "2025-10-10", CalendarDate(ts), s)
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestFormatTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2025, 10, 10, 8, 0, 0, 500, time.FixedZone("", 2*3600))
	parsed, err := ParseTimestamp(FormatTimestamp(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))
}
