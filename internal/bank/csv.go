package bank

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"fun-quiz/internal/domain"
)

// ParseCSV reads a question file with a header row. Columns are matched by name,
// in any order; category is optional and unknown columns are ignored.
func ParseCSV(r io.Reader) ([]domain.Question, Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, Stats{}, fmt.Errorf("%w: missing header row", domain.ErrMalformedUpload)
	}
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %v", domain.ErrMalformedUpload, err)
	}
	columns := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		columns[i] = strings.ToLower(strings.TrimSpace(name))
	}

	var rows []RawRecord
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, Stats{}, fmt.Errorf("%w: %v", domain.ErrMalformedUpload, err)
		}
		row := make(RawRecord, len(columns))
		for i, value := range record {
			if i < len(columns) {
				row[columns[i]] = value
			}
		}
		rows = append(rows, row)
	}

	questions, stats := normalize(rows)
	return questions, stats, nil
}
