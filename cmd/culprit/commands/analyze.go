package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/moolen/culprit/internal/analysis"
	"github.com/moolen/culprit/internal/cases"
	"github.com/moolen/culprit/internal/collect"
	"github.com/moolen/culprit/internal/config"
	"github.com/moolen/culprit/internal/credentials"
	"github.com/moolen/culprit/internal/evidence"
	"github.com/moolen/culprit/internal/logging"
	"github.com/moolen/culprit/internal/sls"
	"github.com/moolen/culprit/internal/tracing"
)

var (
	configPath string
	inputPath  string
	outputPath string
	startStr   string
	endStr     string
	candidates []string
	bestEffort bool

	tracingEnabled     bool
	tracingEndpoint    string
	tracingTLSCAPath   string
	tracingTLSInsecure bool
)

const queryTimeout = 30 * time.Second

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run root cause analysis",
	Long: `Run root cause analysis against the configured log store.

Two modes:
  - Batch: --input cases.jsonl --output results.jsonl processes one case per
    input line and writes one result line per case.
  - Single window: --start, --end and --candidates analyze one time window
    and print the result as JSON to stdout.`,
	Run: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&configPath, "config", getEnv("CULPRIT_CONFIG", ""), "Path to the YAML config file")
	analyzeCmd.Flags().StringVar(&inputPath, "input", "", "JSONL case file for batch mode")
	analyzeCmd.Flags().StringVar(&outputPath, "output", "results.jsonl", "JSONL output file for batch mode")
	analyzeCmd.Flags().StringVar(&startStr, "start", "", "Window start for single-window mode, e.g. '2025-06-14 21:42:43'")
	analyzeCmd.Flags().StringVar(&endStr, "end", "", "Window end for single-window mode")
	analyzeCmd.Flags().StringSliceVar(&candidates, "candidates", nil, "Candidate root-cause labels for single-window mode")
	analyzeCmd.Flags().BoolVar(&bestEffort, "best-effort", false, "Tolerate a single collector failure instead of failing the analysis")

	analyzeCmd.Flags().BoolVar(&tracingEnabled, "tracing-enabled", false, "Enable OpenTelemetry trace export")
	analyzeCmd.Flags().StringVar(&tracingEndpoint, "tracing-endpoint", getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""), "OTLP gRPC endpoint")
	analyzeCmd.Flags().StringVar(&tracingTLSCAPath, "tracing-tls-ca", "", "CA certificate for the OTLP endpoint")
	analyzeCmd.Flags().BoolVar(&tracingTLSInsecure, "tracing-tls-insecure", false, "Skip OTLP TLS certificate verification")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runAnalyze(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	HandleError(err, "Failed to load configuration")

	HandleError(setupLog(cfg.LogLevel), "Failed to setup logging")
	logger := logging.GetLogger("analyze")

	if cmd.Flags().Changed("best-effort") {
		cfg.Analysis.BestEffort = bestEffort
	}

	tracer, err := tracing.NewProvider(tracing.Config{
		Enabled:     tracingEnabled,
		Endpoint:    tracingEndpoint,
		TLSCAPath:   tracingTLSCAPath,
		TLSInsecure: tracingTLSInsecure,
	})
	HandleError(err, "Failed to initialize tracing")
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Tracing shutdown failed: %v", err)
		}
	}()

	analyzer, err := buildAnalyzer(cfg)
	HandleError(err, "Failed to build analyzer")

	ctx := context.Background()

	if inputPath != "" {
		runBatch(ctx, analyzer, tracer, logger)
		return
	}
	runSingleWindow(ctx, analyzer, logger)
}

// buildAnalyzer wires credentials, query client, and collectors from config.
func buildAnalyzer(cfg *config.Config) (*analysis.Analyzer, error) {
	provider, err := buildCredentialProvider(cfg)
	if err != nil {
		return nil, err
	}

	client := sls.NewHTTPClient(sls.ClientConfig{
		Endpoint: cfg.SLS.ResolveEndpoint(),
		Scope: sls.Scope{
			Project:  cfg.SLS.Project,
			Logstore: cfg.SLS.Logstore,
			Region:   cfg.SLS.Region,
		},
		QueryTimeout: queryTimeout,
	}, provider, prometheus.DefaultRegisterer)

	return analysis.NewAnalyzer(
		collect.NewErrorCollector(client, cfg.Analysis.ErrorTracesLimit),
		collect.NewLatencyCollector(client, cfg.Analysis.DurationThresholdNanos, cfg.Analysis.ErrorTracesLimit),
		evidence.NewParser(),
		analysis.WithBestEffort(cfg.Analysis.BestEffort),
	), nil
}

// buildCredentialProvider assumes the configured role when one is set,
// otherwise uses the long-lived account keys directly.
func buildCredentialProvider(cfg *config.Config) (credentials.Provider, error) {
	accessKeyID := os.Getenv("ALIBABA_CLOUD_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("ALIBABA_CLOUD_ACCESS_KEY_SECRET")
	if accessKeyID == "" || accessKeySecret == "" {
		return nil, fmt.Errorf("ALIBABA_CLOUD_ACCESS_KEY_ID and ALIBABA_CLOUD_ACCESS_KEY_SECRET must be set")
	}

	if cfg.STS.RoleARN == "" {
		return &credentials.StaticProvider{Creds: credentials.Credentials{
			AccessKeyID:     accessKeyID,
			AccessKeySecret: accessKeySecret,
			SecurityToken:   os.Getenv("ALIBABA_CLOUD_SECURITY_TOKEN"),
		}}, nil
	}

	return credentials.NewSTSProvider(credentials.STSConfig{
		Endpoint:        cfg.STS.ResolveEndpoint(cfg.SLS.Region),
		RoleARN:         cfg.STS.RoleARN,
		SessionName:     cfg.STS.SessionName,
		DurationSeconds: cfg.STS.DurationSeconds,
		AccessKeyID:     accessKeyID,
		AccessKeySecret: accessKeySecret,
	})
}

func runBatch(ctx context.Context, analyzer *analysis.Analyzer, tracer *tracing.Provider, logger *logging.Logger) {
	batch, err := cases.ReadCases(inputPath)
	HandleError(err, "Failed to read case file")
	logger.Info("Loaded %d cases from %s", len(batch), inputPath)

	out, err := cases.NewFileWriter(outputPath)
	HandleError(err, "Failed to create output file")
	defer out.Close()

	runner := cases.NewRunner(analyzer, tracer.Tracer("cases"))
	HandleError(runner.Run(ctx, batch, out), "Batch run failed")
	logger.Info("Results written to %s", outputPath)
}

func runSingleWindow(ctx context.Context, analyzer *analysis.Analyzer, logger *logging.Logger) {
	if startStr == "" || endStr == "" {
		HandleError(fmt.Errorf("either --input or both --start and --end are required"), "Invalid arguments")
	}

	window, err := cases.ParseTimeRange(startStr + " ~ " + endStr)
	HandleError(err, "Invalid time window")

	result, err := analyzer.Analyze(ctx, window, candidates)
	HandleError(err, "Analysis failed")

	encoded, err := json.MarshalIndent(result, "", "  ")
	HandleError(err, "Failed to encode result")
	fmt.Println(string(encoded))
}
