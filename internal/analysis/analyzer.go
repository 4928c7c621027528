// Package analysis implements the root cause analysis engine: it turns raw
// log query results into a decided, ranked set of root-cause candidates.
package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/moolen/culprit/internal/evidence"
	"github.com/moolen/culprit/internal/logging"
	"github.com/moolen/culprit/internal/models"
)

// ErrorSource collects error-class log records for a window.
type ErrorSource interface {
	CollectErrors(ctx context.Context, window models.TimeWindow) ([]models.LogRecord, error)
}

// LatencySource collects duration-threshold violations for a window.
type LatencySource interface {
	CollectLatencyViolations(ctx context.Context, window models.TimeWindow) ([]models.LogRecord, error)
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithBestEffort enables best-effort mode: when exactly one collector fails,
// the analysis proceeds on the surviving signal instead of failing hard.
// Off by default; partial conclusions are misleading unless explicitly
// requested.
func WithBestEffort(enabled bool) Option {
	return func(a *Analyzer) { a.bestEffort = enabled }
}

// Analyzer orchestrates the signal collectors and the evidence parser to
// produce an AnalysisResult for one (window, candidates) pair. Stateless
// across invocations; safe for concurrent use.
type Analyzer struct {
	errors     ErrorSource
	latency    LatencySource
	parser     *evidence.Parser
	bestEffort bool
	logger     *logging.Logger
}

// NewAnalyzer creates an analyzer over the two injected signal sources.
func NewAnalyzer(errors ErrorSource, latency LatencySource, parser *evidence.Parser, opts ...Option) *Analyzer {
	a := &Analyzer{
		errors:  errors,
		latency: latency,
		parser:  parser,
		logger:  logging.GetLogger("analysis"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs both collectors over the window, matches the parsed evidence
// against the candidate labels, and returns the ranked result.
//
// An empty candidate set yields an empty result without issuing any queries.
// Collector failures surface as *CollectionFailure; in best-effort mode a
// single collector failure is tolerated when the other succeeds.
func (a *Analyzer) Analyze(ctx context.Context, window models.TimeWindow, candidates []string) (*AnalysisResult, error) {
	if !window.Valid() {
		return nil, &ValidationError{
			Message: "window start must be before end: " + window.String(),
		}
	}

	deduped := dedupeCandidates(candidates)
	if len(deduped) == 0 {
		a.logger.Debug("no candidates supplied, skipping collection for window %s", window)
		return &AnalysisResult{RootCauses: []RankedCause{}}, nil
	}

	var errorRecords, latencyRecords []models.LogRecord
	var errorErr, latencyErr error

	// The collectors share no mutable state, so they always run
	// concurrently. Results only surface on full completion; a canceled
	// context fails both branches.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		errorRecords, errorErr = a.errors.CollectErrors(gctx, window)
		return nil
	})
	g.Go(func() error {
		latencyRecords, latencyErr = a.latency.CollectLatencyViolations(gctx, window)
		return nil
	})
	_ = g.Wait()

	if err := a.checkCollection(window, errorErr, latencyErr); err != nil {
		return nil, err
	}

	parsed := make([]evidence.ParsedEvidence, 0, len(errorRecords)+len(latencyRecords))
	for _, rec := range errorRecords {
		parsed = append(parsed, a.parser.Parse(rec.Evidence()))
	}
	for _, rec := range latencyRecords {
		parsed = append(parsed, a.parser.Parse(rec.Evidence()))
	}

	result := &AnalysisResult{
		RootCauses:           rankCandidates(deduped, parsed),
		ErrorRecordsExamined: len(errorRecords),
		LatencyViolations:    len(latencyRecords),
	}

	a.logger.InfoWithFields("analysis complete",
		logging.Field("window", window.String()),
		logging.Field("candidates", len(deduped)),
		logging.Field("root_causes", len(result.RootCauses)),
		logging.Field("error_records", result.ErrorRecordsExamined),
		logging.Field("latency_violations", result.LatencyViolations),
	)
	return result, nil
}

// checkCollection applies the failure policy: any collector error is a hard
// failure of the whole analysis, unless best-effort mode is on and exactly
// one collector failed.
func (a *Analyzer) checkCollection(window models.TimeWindow, errorErr, latencyErr error) error {
	if errorErr == nil && latencyErr == nil {
		return nil
	}

	if a.bestEffort && (errorErr == nil) != (latencyErr == nil) {
		failed, cause := "error", errorErr
		if latencyErr != nil {
			failed, cause = "latency", latencyErr
		}
		a.logger.WarnWithFields("collector failed, continuing in best-effort mode",
			logging.Field("collector", failed),
			logging.Field("window", window.String()),
			logging.Field("error", cause.Error()),
		)
		return nil
	}

	if errorErr != nil {
		return &CollectionFailure{Collector: "error", Window: window, Err: errorErr}
	}
	return &CollectionFailure{Collector: "latency", Window: window, Err: latencyErr}
}
