package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moolen/culprit/internal/logging"
)

const Version = "0.1.0"

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "culprit",
	Short: "Culprit - evidence-based root cause analysis for log stores",
	Long: `Culprit analyzes an incident time window against a set of candidate
root-cause labels. It queries the log store for error records and latency
violations, parses service evidence out of each record, and ranks the
candidates that the evidence supports.`,
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, error, fatal")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// HandleError prints error and exits
func HandleError(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}

// setupLog initializes logging from the persistent flag, letting an explicit
// flag win over the config file level.
func setupLog(configLevel string) error {
	level := configLevel
	if rootCmd.PersistentFlags().Changed("log-level") || level == "" {
		level = logLevel
	}
	return logging.Initialize(level)
}
