// Package collect implements the error and latency signal collectors.
//
// Each collector issues exactly one log store query per call, scoped to the
// analysis window, and returns records in backend order. Retry policy belongs
// to the query client's caller, never to a collector.
package collect

import (
	"context"

	"github.com/moolen/culprit/internal/logging"
	"github.com/moolen/culprit/internal/models"
	"github.com/moolen/culprit/internal/sls"
)

// errorRecordsQuery selects error-class spans. Status codes above 1 indicate
// a failed span in the tracing logstore schema.
const errorRecordsQuery = "statusCode > 1"

// ErrorCollector retrieves error-class log records for a time window.
type ErrorCollector struct {
	client sls.Client
	limit  int
	logger *logging.Logger
}

// NewErrorCollector creates an error signal collector. limit caps the number
// of records per query and comes from configuration, never a hardcoded
// default.
func NewErrorCollector(client sls.Client, limit int) *ErrorCollector {
	return &ErrorCollector{
		client: client,
		limit:  limit,
		logger: logging.GetLogger("collect.errors"),
	}
}

// CollectErrors issues one query for error-class records within the window.
// Fewer than limit records is success, not partial failure.
func (c *ErrorCollector) CollectErrors(ctx context.Context, window models.TimeWindow) ([]models.LogRecord, error) {
	records, err := c.client.Query(ctx, sls.QueryParams{
		Query:  errorRecordsQuery,
		Window: window,
		Limit:  c.limit,
	})
	if err != nil {
		return nil, err
	}

	c.logger.DebugWithFields("error records collected",
		logging.Field("records", len(records)),
		logging.Field("limit", c.limit),
		logging.Field("window", window.String()),
	)
	return records, nil
}
