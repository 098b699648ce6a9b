package reconcile

import (
	"sort"

	"github.com/jaa/spotdiff/internal/reference"
)

// Index holds the two views of a reference export. Full keys keep the last
// row seen for a key; track-only keys keep the first.
type Index struct {
	Header []string

	full          map[string]reference.Row
	trackOnly     map[string]reference.Row
	trackOnlyKeys []string
}

func BuildIndex(table reference.Table) *Index {
	index := &Index{
		Header:        append([]string{}, table.Header...),
		full:          make(map[string]reference.Row, len(table.Rows)),
		trackOnly:     make(map[string]reference.Row, len(table.Rows)),
		trackOnlyKeys: make([]string, 0, len(table.Rows)),
	}
	for _, row := range table.Rows {
		index.Add(row)
	}
	return index
}

func (i *Index) Add(row reference.Row) {
	if key := FullKey(row); key != "" {
		i.full[key] = row
	}
	track := TrackKey(row)
	if track == "" {
		return
	}
	if _, exists := i.trackOnly[track]; exists {
		return
	}
	i.trackOnly[track] = row
	i.trackOnlyKeys = append(i.trackOnlyKeys, track)
}

func (i *Index) Row(fullKey string) (reference.Row, bool) {
	row, ok := i.full[fullKey]
	return row, ok
}

func (i *Index) TrackRow(trackKey string) (reference.Row, bool) {
	row, ok := i.trackOnly[trackKey]
	return row, ok
}

// Keys returns the full keys in ascending order.
func (i *Index) Keys() []string {
	keys := make([]string, 0, len(i.full))
	for key := range i.full {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// TrackKeys returns the track-only keys in first-seen order.
func (i *Index) TrackKeys() []string {
	return append([]string{}, i.trackOnlyKeys...)
}

func (i *Index) Len() int {
	return len(i.full)
}

func (i *Index) TrackLen() int {
	return len(i.trackOnlyKeys)
}
