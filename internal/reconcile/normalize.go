package reconcile

import (
	"regexp"
	"strings"

	"github.com/jaa/spotdiff/internal/reference"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Under the full Unicode case mapping U+0130 lowercases to "i" plus U+0307,
// so "İstanbul" keys as "i stanbul". strings.ToLower alone drops the dot.
var fullLowerSpecial = strings.NewReplacer("\u0130", "i\u0307")

// Normalize lowercases s, collapses every run of characters outside [a-z0-9]
// into a single space and trims the result.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(nonAlnumRun.ReplaceAllString(strings.ToLower(fullLowerSpecial.Replace(s)), " "))
}

// MainArtist normalizes the first entry of a ";"-joined artist list.
func MainArtist(artists string) string {
	first, _, _ := strings.Cut(artists, ";")
	return Normalize(strings.TrimSpace(first))
}

func TrackKey(row reference.Row) string {
	return Normalize(row.Get(reference.ColumnTrackName))
}

// FullKey is the track plus main artist identity of a reference row.
func FullKey(row reference.Row) string {
	return strings.TrimSpace(TrackKey(row) + " " + MainArtist(row.Get(reference.ColumnArtistNames)))
}
