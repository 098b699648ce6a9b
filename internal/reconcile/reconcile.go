package reconcile

import "github.com/jaa/spotdiff/internal/reference"

type Options struct {
	Strategy Strategy
	Cutoff   float64
}

type Stats struct {
	Reference  int `json:"reference"`
	TrackOnly  int `json:"track_only"`
	Candidates int `json:"candidates"`
	Exact      int `json:"exact"`
	Fuzzy      int `json:"fuzzy"`
	Unresolved int `json:"unresolved"`
	Observed   int `json:"observed"`
	Missing    int `json:"missing"`
}

type Result struct {
	Index    *Index
	Observed KeySet
	Missing  []string
	Stats    Stats
}

// Run indexes the reference table, resolves the candidates and computes the
// reference keys no candidate accounted for.
func Run(table reference.Table, candidates []string, opts Options) Result {
	index := BuildIndex(table)
	match := NewMatcher(opts.Strategy, opts.Cutoff).Match(index, candidates)
	missing := Difference(index.Keys(), match.Observed)

	return Result{
		Index:    index,
		Observed: match.Observed,
		Missing:  missing,
		Stats: Stats{
			Reference:  index.Len(),
			TrackOnly:  index.TrackLen(),
			Candidates: match.Considered,
			Exact:      match.Exact,
			Fuzzy:      match.Fuzzy,
			Unresolved: len(match.Unresolved),
			Observed:   len(match.Observed),
			Missing:    len(missing),
		},
	}
}

// MissingRows returns the reference row for every missing key, in key order.
func (r Result) MissingRows() []reference.Row {
	rows := make([]reference.Row, 0, len(r.Missing))
	for _, key := range r.Missing {
		if row, ok := r.Index.Row(key); ok {
			rows = append(rows, row)
		}
	}
	return rows
}
