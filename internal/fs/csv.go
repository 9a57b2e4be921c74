package fs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/eykd/rorv/internal/directive"
	"github.com/eykd/rorv/internal/domain"
	"github.com/eykd/rorv/internal/normalize"
)

// ErrEmptyHeader is returned when a CSV file has no header row.
var ErrEmptyHeader = errors.New("csv has no header")

// ParseCSV reads a batch of tabular rows. The first row names the field
// path of each column. A UTF-8 byte order mark is dropped.
func ParseCSV(r io.Reader) ([]domain.Record, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	records := []domain.Record{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		cells := make(map[string]string, len(header))
		blank := true
		for i, col := range header {
			if col == "" {
				continue
			}
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			if strings.TrimSpace(cell) != "" {
				blank = false
			}
			cells[col] = cell
		}
		if blank {
			continue
		}
		records = append(records, rowRecord(line, cells))
	}
	return records, nil
}

// rowRecord builds a record from one row. New-record rows hold their split
// cell values; update rows hold the values their directives assert.
func rowRecord(line int, cells map[string]string) domain.Record {
	rec := domain.Record{
		ID:     strings.TrimSpace(cells[domain.FieldID]),
		Source: strings.TrimSpace(cells[domain.FieldIssueURL]),
		Line:   line,
		Format: domain.FormatTabular,
		Fields: make(map[string][]string, len(cells)),
		Raw:    cells,
	}

	for col, cell := range cells {
		spec, known := domain.LookupField(col)
		var values []string
		if rec.ID != "" && known && !spec.Meta {
			values = assertedValues(spec, cell)
		} else {
			values = domain.SplitValues(cell)
		}
		if len(values) > 0 {
			rec.Fields[col] = values
		}
	}

	rec.Names = rowNames(rec)
	return rec
}

func assertedValues(spec domain.FieldSpec, cell string) []string {
	edit, _ := directive.Parse(cell)
	var out []string
	for _, v := range edit.Asserted() {
		if spec.Multi {
			out = append(out, domain.SplitValues(v)...)
			continue
		}
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

func rowNames(rec domain.Record) []domain.Name {
	var names []domain.Name
	for _, role := range []string{domain.NameTypeDisplay, domain.NameTypeLabel, domain.NameTypeAlias, domain.NameTypeAcronym} {
		for _, v := range rec.Values(domain.NameFields[role]) {
			name, lang := normalize.SplitLang(v)
			types := []string{role}
			if role == domain.NameTypeDisplay {
				types = append(types, domain.NameTypeLabel)
			}
			names = append(names, domain.Name{Value: name, Types: types, Lang: lang})
		}
	}
	return names
}
