package library

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/jaa/spotdiff/internal/reconcile"
)

type CandidateSource string

const (
	SourceFilename CandidateSource = "filename"
	SourceTags     CandidateSource = "tags"
)

func ParseCandidateSource(raw string) (CandidateSource, error) {
	switch CandidateSource(strings.TrimSpace(strings.ToLower(raw))) {
	case "", SourceFilename:
		return SourceFilename, nil
	case SourceTags:
		return SourceTags, nil
	default:
		return "", fmt.Errorf("invalid candidate source %q (expected: filename, tags)", raw)
	}
}

// TitleReader returns the embedded title of an audio file, or "" when it has
// none.
type TitleReader func(path string) (string, error)

// Candidates turns scanned files into directory candidates. The tags source
// prefers the embedded title and falls back to the filename.
func Candidates(files []File, source CandidateSource, readTitle TitleReader) []string {
	if source != SourceTags {
		return reconcile.FilenameCandidates(Names(files))
	}
	if readTitle == nil {
		readTitle = ReadID3Title
	}

	candidates := make([]string, 0, len(files))
	for _, file := range files {
		title, err := readTitle(file.Path)
		if err == nil {
			if candidate := reconcile.Normalize(title); candidate != "" {
				candidates = append(candidates, candidate)
				continue
			}
		}
		candidates = append(candidates, reconcile.CandidateFromFilename(file.Name))
	}
	return candidates
}

func ReadID3Title(path string) (string, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Title"}})
	if err != nil {
		return "", err
	}
	defer tag.Close()
	return strings.TrimSpace(tag.Title()), nil
}
