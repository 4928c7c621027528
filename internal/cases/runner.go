package cases

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/moolen/culprit/internal/analysis"
	"github.com/moolen/culprit/internal/logging"
	"github.com/moolen/culprit/internal/models"
)

// Analyzer is the subset of the analysis engine the runner needs.
type Analyzer interface {
	Analyze(ctx context.Context, window models.TimeWindow, candidates []string) (*analysis.AnalysisResult, error)
}

// Runner drives a batch of cases through the analyzer sequentially. A
// failing case degrades to an empty root-cause list; the batch keeps going.
type Runner struct {
	analyzer Analyzer
	tracer   trace.Tracer
	logger   *logging.Logger
}

// NewRunner creates a batch runner. A nil tracer disables span creation.
func NewRunner(analyzer Analyzer, tracer trace.Tracer) *Runner {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("cases")
	}
	return &Runner{
		analyzer: analyzer,
		tracer:   tracer,
		logger:   logging.GetLogger("cases"),
	}
}

// Run processes all cases in order, writing one result line per case. The
// returned error covers output failures only; per-case analysis failures
// are recorded in the output and logged.
func (r *Runner) Run(ctx context.Context, batch []Case, out *Writer) error {
	runID := uuid.NewString()
	logger := r.logger.WithField("run_id", runID)
	logger.Info("Starting batch run with %d cases", len(batch))

	for _, c := range batch {
		result := r.runCase(ctx, logger, c)
		if err := out.Write(result); err != nil {
			return err
		}
	}

	logger.Info("Batch run complete")
	return nil
}

func (r *Runner) runCase(ctx context.Context, logger *logging.Logger, c Case) Result {
	ctx, span := r.tracer.Start(ctx, "analyze_case",
		trace.WithAttributes(attribute.String("problem.id", c.ProblemID)))
	defer span.End()

	result := Result{
		ProblemID:    c.ProblemID,
		AnalysisType: DetermineAnalysisType(c.AlarmRules),
	}
	caseLogger := logger.WithField("problem_id", c.ProblemID)

	window, err := ParseTimeRange(c.TimeRange)
	if err != nil {
		caseLogger.ErrorWithErr("Skipping case with invalid time range", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid time range")
		return result
	}

	analyzed, err := r.analyzer.Analyze(ctx, window, c.CandidateRootCauses)
	if err != nil {
		caseLogger.ErrorWithErr("Analysis failed", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		return result
	}

	result.RootCauses = analyzed.CauseLabels()
	result.ErrorRecordsExamined = analyzed.ErrorRecordsExamined
	result.LatencyViolations = analyzed.LatencyViolations

	caseLogger.Info("Case analyzed: %d supported causes, %d error records, %d latency violations",
		len(result.RootCauses), result.ErrorRecordsExamined, result.LatencyViolations)
	span.SetAttributes(
		attribute.Int("analysis.supported_causes", len(result.RootCauses)),
		attribute.Int("analysis.error_records", result.ErrorRecordsExamined),
		attribute.Int("analysis.latency_violations", result.LatencyViolations),
	)
	return result
}
