package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/danpilch/netspeed/pkg/sample"
)

// CSVWriter emits samples as CSV records, flushing after each one so the
// stream can be tailed.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter creates a CSV writer on w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (c *CSVWriter) WriteHeader() error {
	return c.write(sample.Header)
}

// Write writes one sample row.
func (c *CSVWriter) Write(s sample.Sample) error {
	return c.write(s.Record())
}

func (c *CSVWriter) write(record []string) error {
	if err := c.w.Write(record); err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("flushing csv row: %w", err)
	}
	return nil
}
