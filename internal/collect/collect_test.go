package collect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/culprit/internal/models"
	"github.com/moolen/culprit/internal/sls"
)

// fakeClient records the queries it receives and replays canned results.
type fakeClient struct {
	params  []sls.QueryParams
	records []models.LogRecord
	err     error
}

func (f *fakeClient) Query(_ context.Context, params sls.QueryParams) ([]models.LogRecord, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func window(t *testing.T) models.TimeWindow {
	t.Helper()
	start := time.Date(2025, 6, 14, 21, 42, 43, 0, time.UTC)
	w, err := models.NewTimeWindow(start, start.Add(5*time.Minute))
	require.NoError(t, err)
	return w
}

func TestErrorCollector_IssuesExactlyOneQuery(t *testing.T) {
	client := &fakeClient{records: []models.LogRecord{
		{"evidence": "payment.Timeout"},
		{"evidence": "checkout.Failure"},
	}}
	collector := NewErrorCollector(client, 2000)

	records, err := collector.CollectErrors(context.Background(), window(t))
	require.NoError(t, err)
	assert.Len(t, records, 2)

	require.Len(t, client.params, 1)
	assert.Equal(t, "statusCode > 1", client.params[0].Query)
	assert.Equal(t, 2000, client.params[0].Limit)
	assert.Equal(t, window(t), client.params[0].Window)
}

func TestErrorCollector_FewerThanLimitIsSuccess(t *testing.T) {
	client := &fakeClient{records: []models.LogRecord{{"evidence": "a.B"}}}
	collector := NewErrorCollector(client, 2000)

	records, err := collector.CollectErrors(context.Background(), window(t))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestErrorCollector_PropagatesQueryError(t *testing.T) {
	client := &fakeClient{err: &sls.QueryError{Transient: true}}
	collector := NewErrorCollector(client, 2000)

	_, err := collector.CollectErrors(context.Background(), window(t))
	require.Error(t, err)
	assert.True(t, sls.IsTransient(err))
	assert.Len(t, client.params, 1, "no retry inside the collector")
}

func TestLatencyCollector_QueryCarriesThreshold(t *testing.T) {
	client := &fakeClient{}
	collector := NewLatencyCollector(client, 2_000_000_000, 1000)

	_, err := collector.CollectLatencyViolations(context.Background(), window(t))
	require.NoError(t, err)

	require.Len(t, client.params, 1)
	assert.Equal(t, "* and duration > 2000000000", client.params[0].Query)
	assert.Equal(t, 1000, client.params[0].Limit)
}

func TestLatencyCollector_ClientSideGuardFilter(t *testing.T) {
	client := &fakeClient{records: []models.LogRecord{
		{"evidence": "checkout.Slow", "duration": "2500000000"},
		{"evidence": "cart.Slow", "duration": "1000000000"}, // at/below threshold, dropped
		{"evidence": "payment.Slow", "duration": "2000000001"},
		{"evidence": "gateway.Slow"},                        // no duration field, dropped
		{"evidence": "shipping.Slow", "duration": "3.5e9"},  // unparseable duration, dropped
	}}
	collector := NewLatencyCollector(client, 2_000_000_000, 1000)

	violations, err := collector.CollectLatencyViolations(context.Background(), window(t))
	require.NoError(t, err)
	require.Len(t, violations, 2)
	assert.Equal(t, "checkout.Slow", violations[0].Evidence())
	assert.Equal(t, "payment.Slow", violations[1].Evidence())
}

func TestLatencyCollector_EmptyResultIsTerminal(t *testing.T) {
	client := &fakeClient{}
	collector := NewLatencyCollector(client, 2_000_000_000, 1000)

	violations, err := collector.CollectLatencyViolations(context.Background(), window(t))
	require.NoError(t, err)
	assert.Empty(t, violations)
}
