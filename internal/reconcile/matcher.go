package reconcile

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

type Strategy string

const (
	StrategyExact Strategy = "exact"
	StrategyFuzzy Strategy = "fuzzy"
)

const DefaultCutoff = 0.7

func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(strings.TrimSpace(strings.ToLower(raw))) {
	case "", StrategyFuzzy:
		return StrategyFuzzy, nil
	case StrategyExact:
		return StrategyExact, nil
	default:
		return "", fmt.Errorf("invalid match strategy %q (expected: fuzzy, exact)", raw)
	}
}

type closestFunc func(word string, possibilities []string, cutoff float64) (string, bool)

// Matcher resolves directory candidates to full keys, borrowing the artist
// from the track-only index.
type Matcher struct {
	Strategy Strategy
	Cutoff   float64

	closest closestFunc
}

func NewMatcher(strategy Strategy, cutoff float64) *Matcher {
	if strategy == "" {
		strategy = StrategyFuzzy
	}
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}
	return &Matcher{Strategy: strategy, Cutoff: cutoff, closest: closestMatch}
}

type MatchResult struct {
	Observed KeySet
	// Considered counts the non-empty candidates; it is always
	// Exact + Fuzzy + len(Unresolved).
	Considered int
	Exact      int
	Fuzzy      int
	Unresolved []string
}

func (m *Matcher) Match(index *Index, candidates []string) MatchResult {
	result := MatchResult{Observed: KeySet{}, Unresolved: []string{}}
	closest := m.closest
	if closest == nil {
		closest = closestMatch
	}

	var trackKeys []string
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		result.Considered++

		row, ok := index.TrackRow(candidate)
		if ok {
			result.Exact++
		} else if m.Strategy == StrategyFuzzy {
			if trackKeys == nil {
				trackKeys = index.TrackKeys()
			}
			key, found := closest(candidate, trackKeys, m.Cutoff)
			if found {
				row, ok = index.TrackRow(key)
			}
			if ok {
				result.Fuzzy++
			}
		}

		if !ok {
			result.Unresolved = append(result.Unresolved, candidate)
			continue
		}
		if key := FullKey(row); key != "" {
			result.Observed.Add(key)
		}
	}
	return result
}

// Similarity is the difflib ratio 2*M/T between a and b.
func Similarity(a string, b string) float64 {
	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

// closestMatch returns the possibility with the highest ratio against word,
// provided it reaches cutoff. Equal scores go to the greater key.
func closestMatch(word string, possibilities []string, cutoff float64) (string, bool) {
	if len(possibilities) == 0 {
		return "", false
	}

	matcher := difflib.NewMatcher(nil, splitChars(word))
	best := ""
	bestScore := 0.0
	found := false
	for _, possibility := range possibilities {
		matcher.SetSeq1(splitChars(possibility))
		if matcher.RealQuickRatio() < cutoff || matcher.QuickRatio() < cutoff {
			continue
		}
		score := matcher.Ratio()
		if score < cutoff {
			continue
		}
		if !found || score > bestScore || (score == bestScore && possibility > best) {
			best = possibility
			bestScore = score
			found = true
		}
	}
	return best, found
}

func splitChars(s string) []string {
	chars := make([]string, 0, len(s))
	for _, r := range s {
		chars = append(chars, string(r))
	}
	return chars
}
