package analysis

import (
	"fmt"

	"github.com/moolen/culprit/internal/models"
)

// ValidationError indicates a malformed analysis request (bad window).
// Never retried; surfaced immediately to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}

// CollectionFailure indicates that one or more signal collectors failed.
// The analysis for the case is abandoned; it is never downgraded to an empty
// result, which would be indistinguishable from a genuine negative.
type CollectionFailure struct {
	// Collector names the failed collector ("error" or "latency").
	Collector string
	// Window is the query window of the failed analysis, for re-driving.
	Window models.TimeWindow
	// Err is the underlying collector error.
	Err error
}

func (e *CollectionFailure) Error() string {
	return fmt.Sprintf("%s collector failed for window %s: %v", e.Collector, e.Window, e.Err)
}

func (e *CollectionFailure) Unwrap() error {
	return e.Err
}
