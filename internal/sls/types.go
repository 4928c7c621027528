// Package sls implements the log store query client: a thin, credential-aware
// HTTP wrapper around the SLS GetLogs API.
//
// The analysis core depends only on the Client interface; everything here is
// replaceable plumbing.
package sls

import (
	"context"
	"errors"
	"fmt"

	"github.com/moolen/culprit/internal/models"
)

// Scope identifies the project/logstore/region the queries run against.
type Scope struct {
	Project  string
	Logstore string
	Region   string
}

// QueryParams describes one log store query.
type QueryParams struct {
	// Query is the search/analysis expression, e.g. "statusCode > 1".
	Query string
	// Window scopes the query in time.
	Window models.TimeWindow
	// Limit caps the number of returned records. Zero means the backend
	// default.
	Limit int
}

// Client executes log store queries. Implementations must issue exactly one
// network query per call and must not retry; retry policy belongs to the
// caller.
type Client interface {
	Query(ctx context.Context, params QueryParams) ([]models.LogRecord, error)
}

// QueryError indicates a failed log store query. Transient distinguishes
// backend hiccups worth retrying from permanent rejections (malformed query,
// auth denied).
type QueryError struct {
	StatusCode int
	Code       string
	Message    string
	Transient  bool
	Err        error
}

func (e *QueryError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s query error: %v", kind, e.Err)
	}
	return fmt.Sprintf("%s query error (status %d, code %s): %s", kind, e.StatusCode, e.Code, e.Message)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a QueryError marked transient.
func IsTransient(err error) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Transient
	}
	return false
}
