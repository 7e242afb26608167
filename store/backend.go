package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Table names understood by every Backend.
const (
	TableBooks = "books"
	TableUsers = "users"
	TableAdmin = "admin"
)

// Backend persists ordered rows of string fields per table. Load on a table that does not
// exist yet creates it empty and returns no rows.
type Backend interface {
	Load(table string) ([][]string, error)
	Save(table string, rows [][]string) error
	Close() error
}

var errEmptyRow = errors.New("empty row")

// encodeRow renders fields as one comma-separated line without the trailing newline.
func encodeRow(fields []string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(fields); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\r\n"), nil
}

// decodeRow splits one line into fields, trimming the blanks around each comma.
func decodeRow(line string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, errEmptyRow
	}
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	fields, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, errEmptyRow
	}
	if err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields, nil
}
