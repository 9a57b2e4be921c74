// Package fs provides filesystem adapters: input readers that turn CSV and
// JSON files into records, and a writer for report files.
package fs

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eykd/rorv/internal/domain"
)

// ErrNoInput is returned when a JSON path holds no records.
var ErrNoInput = errors.New("no records found")

// ErrNoDumpFile is returned when a data dump archive holds no JSON file.
var ErrNoDumpFile = errors.New("no JSON file in data dump archive")

// OSWriter writes files under a root directory.
type OSWriter struct {
	Root string
}

// WriteFileImpl writes content to a file under the root, creating directories as needed.
func (w *OSWriter) WriteFileImpl(_ context.Context, filename string, content []byte) (string, error) {
	path := filepath.Join(w.Root, filename)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// WriteFile delegates to WriteFileImpl.
func (w *OSWriter) WriteFile(ctx context.Context, filename string, content []byte) (string, error) {
	return w.WriteFileImpl(ctx, filename, content)
}

// CSVReader reads a tabular batch file.
type CSVReader struct {
	Path string
}

// ReadImpl opens the file and parses every row.
func (r *CSVReader) ReadImpl(_ context.Context) ([]domain.Record, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", r.Path, err)
	}
	defer f.Close()

	records, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.Path, err)
	}
	return records, nil
}

// Read delegates to ReadImpl.
func (r *CSVReader) Read(ctx context.Context) ([]domain.Record, error) {
	return r.ReadImpl(ctx)
}

// JSONReader reads canonical records from a file or a directory of files.
type JSONReader struct {
	Path string
}

// ReadImpl reads one file, or every *.json file of a directory in name order.
func (r *JSONReader) ReadImpl(ctx context.Context) ([]domain.Record, error) {
	info, err := os.Stat(r.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.Path, err)
	}
	if !info.IsDir() {
		return readJSONFile(r.Path)
	}

	matches, err := filepath.Glob(filepath.Join(r.Path, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.Path, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInput, r.Path)
	}

	records := []domain.Record{}
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := readJSONFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

// Read delegates to ReadImpl.
func (r *JSONReader) Read(ctx context.Context) ([]domain.Record, error) {
	return r.ReadImpl(ctx)
}

func readJSONFile(path string) ([]domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	records, err := ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}

// DumpLoader loads a registry data dump, either a JSON file or a .zip
// archive holding one.
type DumpLoader struct {
	Path string
}

// LoadImpl reads the dump into records.
func (l *DumpLoader) LoadImpl(ctx context.Context) ([]domain.Record, error) {
	if !strings.EqualFold(filepath.Ext(l.Path), ".zip") {
		return (&JSONReader{Path: l.Path}).Read(ctx)
	}

	zr, err := zip.OpenReader(l.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", l.Path, err)
	}
	defer zr.Close()

	file := pickDumpFile(zr.File)
	if file == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDumpFile, l.Path)
	}
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s in %s: %w", file.Name, l.Path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s in %s: %w", file.Name, l.Path, err)
	}
	records, err := ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s in %s: %w", file.Name, l.Path, err)
	}
	return records, nil
}

// Load delegates to LoadImpl.
func (l *DumpLoader) Load(ctx context.Context) ([]domain.Record, error) {
	return l.LoadImpl(ctx)
}

// pickDumpFile prefers the schema v2 file of a release archive and falls
// back to the first JSON file.
func pickDumpFile(files []*zip.File) *zip.File {
	var first *zip.File
	for _, f := range files {
		name := strings.ToLower(f.Name)
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		if strings.HasSuffix(name, "schema_v2.json") {
			return f
		}
		if first == nil {
			first = f
		}
	}
	return first
}
