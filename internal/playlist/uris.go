package playlist

import (
	"regexp"
	"strings"

	"github.com/jaa/spotdiff/internal/reference"
)

var trackURIPattern = regexp.MustCompile(`^spotify:track:[A-Za-z0-9]{22}$`)

func IsTrackURI(raw string) bool {
	return trackURIPattern.MatchString(strings.TrimSpace(raw))
}

// TrackURIs collects well-formed track URIs from the "Track URI" column, or
// from the first column when the table has no such header. A header cell
// that is itself a URI counts, so header-less URI lists work too.
func TrackURIs(table reference.Table) []string {
	column := reference.ColumnTrackURI
	hasColumn := false
	for _, name := range table.Header {
		if name == column {
			hasColumn = true
			break
		}
	}

	uris := []string{}
	if !hasColumn {
		if len(table.Header) == 0 {
			return uris
		}
		column = table.Header[0]
		if IsTrackURI(column) {
			uris = append(uris, strings.TrimSpace(column))
		}
	}
	return append(uris, uriColumn(table.Rows, column)...)
}

// RowURIs collects the well-formed URIs of rows in order.
func RowURIs(rows []reference.Row) []string {
	return uriColumn(rows, reference.ColumnTrackURI)
}

func uriColumn(rows []reference.Row, column string) []string {
	uris := make([]string, 0, len(rows))
	for _, row := range rows {
		value := strings.TrimSpace(row.Get(column))
		if IsTrackURI(value) {
			uris = append(uris, value)
		}
	}
	return uris
}
