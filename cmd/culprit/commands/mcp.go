package commands

import (
	"github.com/spf13/cobra"

	"github.com/moolen/culprit/internal/config"
	"github.com/moolen/culprit/internal/logging"
	"github.com/moolen/culprit/internal/mcp"
)

var mcpConfigPath string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server that exposes root
cause analysis as an MCP tool for AI assistants. Serves over stdio for
subprocess-based MCP clients.`,
	Run: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpConfigPath, "config", getEnv("CULPRIT_CONFIG", ""), "Path to the YAML config file")
}

func runMCP(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(mcpConfigPath)
	HandleError(err, "Failed to load configuration")

	HandleError(setupLog(cfg.LogLevel), "Failed to setup logging")
	logger := logging.GetLogger("mcp")
	logger.Info("Starting Culprit MCP Server (transport: stdio)")

	analyzer, err := buildAnalyzer(cfg)
	HandleError(err, "Failed to build analyzer")

	srv := mcp.NewServer(analyzer, Version)
	if err := srv.ServeStdio(); err != nil {
		logger.Error("Stdio transport error: %v", err)
	}
}
