package collect

import (
	"context"
	"fmt"

	"github.com/moolen/culprit/internal/logging"
	"github.com/moolen/culprit/internal/models"
	"github.com/moolen/culprit/internal/sls"
)

// LatencyCollector retrieves duration measurements exceeding a threshold.
type LatencyCollector struct {
	client         sls.Client
	thresholdNanos int64
	limit          int
	logger         *logging.Logger
}

// NewLatencyCollector creates a latency signal collector. thresholdNanos is
// the violation cutoff in nanoseconds, the backend's native duration unit.
func NewLatencyCollector(client sls.Client, thresholdNanos int64, limit int) *LatencyCollector {
	return &LatencyCollector{
		client:         client,
		thresholdNanos: thresholdNanos,
		limit:          limit,
		logger:         logging.GetLogger("collect.latency"),
	}
}

// CollectLatencyViolations issues one query for records whose duration
// exceeds the threshold. The filter runs server-side in the query expression,
// with a client-side guard against lenient backends: records whose duration
// is missing, unparseable, or at/below the threshold are dropped, since none
// of them demonstrates a violation. An empty result means no violations were
// observed, a valid terminal state.
func (c *LatencyCollector) CollectLatencyViolations(ctx context.Context, window models.TimeWindow) ([]models.LogRecord, error) {
	records, err := c.client.Query(ctx, sls.QueryParams{
		Query:  fmt.Sprintf("* and duration > %d", c.thresholdNanos),
		Window: window,
		Limit:  c.limit,
	})
	if err != nil {
		return nil, err
	}

	violations := make([]models.LogRecord, 0, len(records))
	for _, rec := range records {
		d, ok := rec.Duration()
		if !ok || d <= c.thresholdNanos {
			continue
		}
		violations = append(violations, rec)
	}

	c.logger.DebugWithFields("latency violations collected",
		logging.Field("records", len(records)),
		logging.Field("violations", len(violations)),
		logging.Field("threshold_nanos", c.thresholdNanos),
		logging.Field("window", window.String()),
	)
	return violations, nil
}
