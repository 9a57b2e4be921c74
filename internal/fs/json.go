package fs

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/eykd/rorv/internal/domain"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// ParseJSON decodes either a single canonical record or an array of them.
func ParseJSON(data []byte) ([]domain.Record, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 {
		return nil, ErrNoInput
	}

	var docs []domain.Document
	if data[0] == '[' {
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("decoding record array: %w", err)
		}
	} else {
		var doc domain.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		docs = append(docs, doc)
	}

	records := make([]domain.Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.Record())
	}
	return records, nil
}
