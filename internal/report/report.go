// Package report writes validator findings as CSV files and renders
// terminal summaries.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/eykd/rorv/internal/domain"
)

// FileWriter persists a named file and returns its path.
type FileWriter interface {
	WriteFile(ctx context.Context, filename string, content []byte) (string, error)
}

// CSVWriter writes one CSV file per validator.
type CSVWriter struct {
	files FileWriter
}

// NewCSVWriter creates a CSVWriter on top of files.
func NewCSVWriter(files FileWriter) *CSVWriter {
	return &CSVWriter{files: files}
}

// Write renders findings with a header of fields, one column per field.
func (w *CSVWriter) Write(ctx context.Context, filename string, fields []string, findings []domain.Finding) (string, error) {
	content, err := Encode(fields, findings)
	if err != nil {
		return "", err
	}
	return w.files.WriteFile(ctx, filename, content)
}

// Encode renders findings as CSV bytes.
func Encode(fields []string, findings []domain.Finding) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(fields); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	row := make([]string, len(fields))
	for _, f := range findings {
		for i, col := range fields {
			row[i] = f.Column(col)
		}
		if err := cw.Write(row); err != nil {
			return nil, fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}
