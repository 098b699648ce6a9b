package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	ColumnTrackURI    = "Track URI"
	ColumnTrackName   = "Track Name"
	ColumnArtistNames = "Artist Name(s)"
)

const utf8BOM = "\ufeff"

// Row is one record of a reference export keyed by column name.
type Row map[string]string

// Get returns the value for column, or "" when the row has no such cell.
func (r Row) Get(column string) string {
	if r == nil {
		return ""
	}
	return r[column]
}

type Table struct {
	Header []string
	Rows   []Row
}

type MissingColumnError struct {
	Path    string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	quoted := make([]string, 0, len(e.Columns))
	for _, column := range e.Columns {
		quoted = append(quoted, fmt.Sprintf("%q", column))
	}
	if e.Path == "" {
		return fmt.Sprintf("reference export is missing column(s) %s", strings.Join(quoted, ", "))
	}
	return fmt.Sprintf("reference export %s is missing column(s) %s", e.Path, strings.Join(quoted, ", "))
}

func Read(path string) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open reference export: %w", err)
	}
	defer file.Close()

	table, err := ReadFrom(file)
	if err != nil {
		return Table{}, fmt.Errorf("read reference export %s: %w", path, err)
	}
	return table, nil
}

// ReadFrom parses a CSV stream whose first record is the header. Short rows
// are padded with empty cells; cells past the header width are ignored.
func ReadFrom(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, fmt.Errorf("header row is required")
		}
		return Table{}, fmt.Errorf("parse header: %w", err)
	}
	header = append([]string{}, header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := Table{Header: header, Rows: []Row{}}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("parse record: %w", err)
		}
		row := make(Row, len(header))
		for i, column := range header {
			value := ""
			if i < len(record) {
				value = record[i]
			}
			row[column] = value
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// RequireColumns reports every column in names that the header lacks.
func (t Table) RequireColumns(names ...string) error {
	present := make(map[string]struct{}, len(t.Header))
	for _, column := range t.Header {
		present[column] = struct{}{}
	}
	missing := []string{}
	for _, name := range names {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	return nil
}

// Write emits header followed by rows, each rendered in header order.
func Write(w io.Writer, header []string, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, column := range header {
			record[i] = row.Get(column)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
