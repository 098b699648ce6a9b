package report

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jaa/spotdiff/internal/fileops"
	"github.com/jaa/spotdiff/internal/reconcile"
	"github.com/jaa/spotdiff/internal/reference"
)

const (
	DefaultOutputPath     = "missing_tracks.csv"
	DefaultDiagnosticsDir = "spotdiff-debug"

	ReferenceKeysFile = "csv_keys.txt"
	DirectoryKeysFile = "directory.txt"
	MissingKeysFile   = "missing.txt"
	TrackOnlyKeysFile = "track_only.txt"
)

type Settings struct {
	OutputPath     string
	DiagnosticsDir string
	Debug          bool
}

type Writer struct {
	settings Settings
}

func NewWriter(settings Settings) *Writer {
	if strings.TrimSpace(settings.OutputPath) == "" {
		settings.OutputPath = DefaultOutputPath
	}
	if strings.TrimSpace(settings.DiagnosticsDir) == "" {
		settings.DiagnosticsDir = DefaultDiagnosticsDir
	}
	return &Writer{settings: settings}
}

type Outcome struct {
	// ExportPath is empty when nothing was missing.
	ExportPath      string
	ExportedRows    int
	DiagnosticFiles []string
}

func (o Outcome) Complete() bool {
	return o.ExportPath == ""
}

func (w *Writer) Write(result reconcile.Result) (Outcome, error) {
	outcome := Outcome{}
	if w.settings.Debug {
		files, err := w.WriteDiagnostics(result)
		if err != nil {
			return outcome, err
		}
		outcome.DiagnosticFiles = files
	}

	path, rows, err := w.WriteExport(result)
	if err != nil {
		return outcome, err
	}
	outcome.ExportPath = path
	outcome.ExportedRows = rows
	return outcome, nil
}

// WriteDiagnostics dumps the reference, observed, missing and track-only key
// lists into the diagnostics directory, one key per line.
func (w *Writer) WriteDiagnostics(result reconcile.Result) ([]string, error) {
	trackKeys := result.Index.TrackKeys()
	sort.Strings(trackKeys)

	lists := []struct {
		name string
		keys []string
	}{
		{name: ReferenceKeysFile, keys: result.Index.Keys()},
		{name: DirectoryKeysFile, keys: result.Observed.Sorted()},
		{name: MissingKeysFile, keys: result.Missing},
		{name: TrackOnlyKeysFile, keys: trackKeys},
	}

	written := make([]string, 0, len(lists))
	for _, list := range lists {
		path := filepath.Join(w.settings.DiagnosticsDir, list.name)
		if err := WriteKeys(path, list.keys); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// WriteExport writes the missing rows with the source header. Nothing is
// written when every reference track was found.
func (w *Writer) WriteExport(result reconcile.Result) (string, int, error) {
	if len(result.Missing) == 0 {
		return "", 0, nil
	}
	rows := result.MissingRows()
	path := w.settings.OutputPath
	err := fileops.WriteFileAtomic(path, func(out io.Writer) error {
		return reference.Write(out, result.Index.Header, rows)
	})
	if err != nil {
		return "", 0, fmt.Errorf("write missing tracks export %s: %w", path, err)
	}
	return path, len(rows), nil
}

func WriteKeys(path string, keys []string) error {
	err := fileops.WriteFileAtomic(path, func(out io.Writer) error {
		buffered := bufio.NewWriter(out)
		for _, key := range keys {
			if _, err := buffered.WriteString(key + "\n"); err != nil {
				return err
			}
		}
		return buffered.Flush()
	})
	if err != nil {
		return fmt.Errorf("write key list %s: %w", path, err)
	}
	return nil
}
