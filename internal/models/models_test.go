package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeWindow_Valid(t *testing.T) {
	start := time.Date(2025, 6, 14, 21, 42, 43, 0, time.UTC)
	end := start.Add(5 * time.Minute)

	w, err := NewTimeWindow(start, end)
	require.NoError(t, err)
	assert.True(t, w.Valid())
	assert.Equal(t, 5*time.Minute, w.Duration())

	from, to := w.UnixRange()
	assert.Equal(t, start.Unix(), from)
	assert.Equal(t, end.Unix(), to)
}

func TestNewTimeWindow_StartNotBeforeEnd(t *testing.T) {
	now := time.Now()

	_, err := NewTimeWindow(now, now)
	assert.Error(t, err)

	_, err = NewTimeWindow(now.Add(time.Minute), now)
	assert.Error(t, err)
}

func TestLogRecord_Evidence(t *testing.T) {
	rec := LogRecord{FieldEvidence: "payment.Timeout"}
	assert.Equal(t, "payment.Timeout", rec.Evidence())

	assert.Equal(t, "", LogRecord{}.Evidence())
}

func TestLogRecord_Duration(t *testing.T) {
	d, ok := LogRecord{FieldDuration: "2500000000"}.Duration()
	require.True(t, ok)
	assert.Equal(t, int64(2500000000), d)

	_, ok = LogRecord{}.Duration()
	assert.False(t, ok)

	_, ok = LogRecord{FieldDuration: "not-a-number"}.Duration()
	assert.False(t, ok)
}

func TestLogRecord_Timestamp(t *testing.T) {
	rec := LogRecord{FieldTime: "1749937363"}
	assert.Equal(t, time.Unix(1749937363, 0).UTC(), rec.Timestamp())

	assert.True(t, LogRecord{}.Timestamp().IsZero())
	assert.True(t, LogRecord{FieldTime: "garbage"}.Timestamp().IsZero())
}
