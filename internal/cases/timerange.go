package cases

import (
	"fmt"
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"

	"github.com/moolen/culprit/internal/models"
)

// timeRangeLayout is the canonical timestamp layout of the input files.
const timeRangeLayout = "2006-01-02 15:04:05"

// ParseTimeRange parses a case time range of the form
// "2025-06-14 21:42:43 ~ 2025-06-14 21:47:43". Timestamps that do not match
// the canonical layout fall back to natural-language date parsing.
func ParseTimeRange(raw string) (models.TimeWindow, error) {
	parts := strings.Split(raw, "~")
	if len(parts) != 2 {
		return models.TimeWindow{}, fmt.Errorf("time range %q must be \"<start> ~ <end>\"", raw)
	}

	start, err := parseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return models.TimeWindow{}, fmt.Errorf("invalid start timestamp: %w", err)
	}
	end, err := parseTimestamp(strings.TrimSpace(parts[1]))
	if err != nil {
		return models.TimeWindow{}, fmt.Errorf("invalid end timestamp: %w", err)
	}

	return models.NewTimeWindow(start, end)
}

func parseTimestamp(value string) (time.Time, error) {
	if ts, err := time.Parse(timeRangeLayout, value); err == nil {
		return ts, nil
	}

	parser := dps.Parser{}
	cfg := &dps.Configuration{
		PreferredDateSource: dps.CurrentPeriod,
	}
	parsed, err := parser.Parse(cfg, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q is not parseable: %w", value, err)
	}
	if parsed.IsZero() {
		return time.Time{}, fmt.Errorf("timestamp %q is not parseable", value)
	}
	return parsed.Time, nil
}
