package rates

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ErrTooManyRows is returned when an upload exceeds the configured row limit.
var ErrTooManyRows = errors.New("matrix exceeds the configured row limit")

// DecodeRows reads comma-separated tabular text into raw string-cell rows.
// The file carries no header row. Ragged rows are allowed here; column counts
// are validated by matrix.Parse, which reports precise per-cell errors.
func DecodeRows(r io.Reader, maxRows int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows := make([][]string, 0, 16)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, record)
		if maxRows > 0 && len(rows) > maxRows {
			return nil, ErrTooManyRows
		}
	}
	return rows, nil
}
