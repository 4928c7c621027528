package cases

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Writer emits one JSON result object per line.
type Writer struct {
	enc    *json.Encoder
	closer io.Closer
}

// NewWriter wraps w in a JSONL result writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// NewFileWriter creates (truncating) the output file at path.
func NewFileWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	return &Writer{enc: json.NewEncoder(f), closer: f}, nil
}

// Write appends one result line. Results serialize with an empty (never
// null) root-cause list.
func (w *Writer) Write(result Result) error {
	if result.RootCauses == nil {
		result.RootCauses = []string{}
	}
	return w.enc.Encode(result)
}

// Close closes the underlying file, if any.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
