// Package models defines the request-scoped data types shared by the
// collectors and the analyzer: the query time window and the raw log record.
package models

import (
	"fmt"
	"strconv"
	"time"
)

// Well-known log record field names.
const (
	// FieldEvidence is the free-text field hinting at the originating
	// service/operation.
	FieldEvidence = "evidence"

	// FieldDuration carries the span duration in nanoseconds.
	FieldDuration = "duration"

	// FieldTime carries the record timestamp as Unix seconds.
	FieldTime = "__time__"
)

// TimeWindow is the (start, end) range scoping all log queries for one
// analysis. Immutable once constructed; Start is always strictly before End.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow constructs a validated time window.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if !start.Before(end) {
		return TimeWindow{}, fmt.Errorf("invalid time window: start %s is not before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeWindow{Start: start, End: end}, nil
}

// Valid reports whether the window satisfies the start < end invariant.
func (w TimeWindow) Valid() bool {
	return w.Start.Before(w.End)
}

// Duration returns the window length.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// UnixRange returns the window bounds as Unix seconds, the unit the log
// store's query API expects.
func (w TimeWindow) UnixRange() (int64, int64) {
	return w.Start.Unix(), w.End.Unix()
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s ~ %s", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// LogRecord is one retrieved log entry: a flat mapping of field name to
// value as returned by the log store. Records are owned transiently by a
// collector and discarded after evidence parsing.
type LogRecord map[string]string

// Evidence returns the free-text evidence field, or "" if absent.
func (r LogRecord) Evidence() string {
	return r[FieldEvidence]
}

// Duration returns the duration field in nanoseconds. The second return
// value is false when the field is absent or not an integer.
func (r LogRecord) Duration() (int64, bool) {
	raw, ok := r[FieldDuration]
	if !ok {
		return 0, false
	}
	d, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return d, true
}

// Timestamp returns the record timestamp, or the zero time when the field
// is absent or malformed.
func (r LogRecord) Timestamp() time.Time {
	raw, ok := r[FieldTime]
	if !ok {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
