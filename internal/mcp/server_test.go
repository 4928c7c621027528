package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/culprit/internal/analysis"
	"github.com/moolen/culprit/internal/models"
)

type fakeAnalyzer struct {
	result     *analysis.AnalysisResult
	err        error
	window     models.TimeWindow
	candidates []string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, window models.TimeWindow, candidates []string) (*analysis.AnalysisResult, error) {
	f.window = window
	f.candidates = candidates
	return f.result, f.err
}

func TestAnalyzeTool_Execute(t *testing.T) {
	analyzer := &fakeAnalyzer{result: &analysis.AnalysisResult{
		RootCauses:           []analysis.RankedCause{{Candidate: "payment", EvidenceCount: 4}},
		ErrorRecordsExamined: 4,
	}}
	tool := NewAnalyzeTool(analyzer)

	input := json.RawMessage(`{"start_time":1749937363,"end_time":1749937663,"candidates":["payment","inventory"]}`)
	result, err := tool.Execute(context.Background(), input)
	require.NoError(t, err)

	analyzed, ok := result.(*analysis.AnalysisResult)
	require.True(t, ok)
	assert.Equal(t, "payment", analyzed.RootCauses[0].Candidate)

	assert.Equal(t, []string{"payment", "inventory"}, analyzer.candidates)
	start, end := analyzer.window.UnixRange()
	assert.Equal(t, int64(1749937363), start)
	assert.Equal(t, int64(1749937663), end)
}

func TestAnalyzeTool_InvalidWindow(t *testing.T) {
	tool := NewAnalyzeTool(&fakeAnalyzer{})

	input := json.RawMessage(`{"start_time":200,"end_time":100,"candidates":["payment"]}`)
	_, err := tool.Execute(context.Background(), input)
	assert.Error(t, err)
}

func TestAnalyzeTool_MalformedInput(t *testing.T) {
	tool := NewAnalyzeTool(&fakeAnalyzer{})

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"start_time":"nope"}`))
	assert.Error(t, err)
}

func TestNewServer_RegistersAnalyzeTool(t *testing.T) {
	s := NewServer(&fakeAnalyzer{}, "0.1.0")

	require.NotNil(t, s.GetMCPServer())
	assert.Contains(t, s.tools, "analyze_root_cause")
}
