package reconcile

import (
	"path/filepath"
	"strings"
)

// CandidateFromFilename normalizes a file basename with its extension removed.
func CandidateFromFilename(name string) string {
	return Normalize(StripExtension(filepath.Base(name)))
}

// FilenameCandidates maps every basename to its candidate key. Duplicates and
// empty keys are kept; the matcher tolerates both.
func FilenameCandidates(names []string) []string {
	candidates := make([]string, 0, len(names))
	for _, name := range names {
		candidates = append(candidates, CandidateFromFilename(name))
	}
	return candidates
}

// StripExtension drops the last ".ext" of name. Leading dots do not start an
// extension, so ".hidden" is returned unchanged.
func StripExtension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return name
	}
	if strings.Trim(name[:idx], ".") == "" {
		return name
	}
	return name[:idx]
}
