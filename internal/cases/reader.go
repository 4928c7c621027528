package cases

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/moolen/culprit/internal/logging"
)

// ReadCases parses a JSONL case file. Malformed lines are logged and
// skipped; a read failure aborts.
func ReadCases(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open case file %q: %w", path, err)
	}
	defer f.Close()

	cases, err := DecodeCases(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file %q: %w", path, err)
	}
	return cases, nil
}

// DecodeCases reads JSONL cases from r, one JSON object per line. Blank
// lines are ignored and malformed lines are skipped with a warning.
func DecodeCases(r io.Reader) ([]Case, error) {
	logger := logging.GetLogger("cases")

	var cases []Case
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var c Case
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			logger.Warn("Skipping malformed case on line %d: %v", lineNo, err)
			continue
		}
		if c.ProblemID == "" {
			logger.Warn("Skipping case on line %d: missing problem_id", lineNo)
			continue
		}
		cases = append(cases, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cases, nil
}
