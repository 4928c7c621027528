package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/moolen/culprit/internal/cases"
	"github.com/moolen/culprit/internal/models"
)

// AnalyzeTool runs one root-cause analysis per tool call.
type AnalyzeTool struct {
	analyzer cases.Analyzer
}

// NewAnalyzeTool creates the analyze_root_cause tool.
func NewAnalyzeTool(analyzer cases.Analyzer) *AnalyzeTool {
	return &AnalyzeTool{analyzer: analyzer}
}

type analyzeInput struct {
	StartTime  int64    `json:"start_time"`
	EndTime    int64    `json:"end_time"`
	Candidates []string `json:"candidates"`
}

// Execute parses the tool arguments and runs the analysis.
func (t *AnalyzeTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var params analyzeInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	window, err := models.NewTimeWindow(
		time.Unix(params.StartTime, 0).UTC(),
		time.Unix(params.EndTime, 0).UTC(),
	)
	if err != nil {
		return nil, err
	}

	return t.analyzer.Analyze(ctx, window, params.Candidates)
}
