package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jaa/spotdiff/internal/reconcile"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func TestScanRecursesAndSorts(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b/Radioactive.flac", "Believer.mp3", "a/deep/er/Thunder.mp3")

	files, err := Scan(context.Background(), root, ScanOptions{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	got := Names(files)
	want := []string{"Believer.mp3", "Thunder.mp3", "Radioactive.flac"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
}

func TestScanFiltersExtensions(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "Believer.MP3", "cover.jpg", "Thunder.flac", "notes.txt")

	files, err := Scan(context.Background(), root, ScanOptions{Extensions: []string{"mp3", ".FLAC", " "}})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	got := Names(files)
	want := []string{"Believer.MP3", "Thunder.flac"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
}

func TestScanRejectsMissingOrFileRoot(t *testing.T) {
	root := t.TempDir()
	if _, err := Scan(context.Background(), filepath.Join(root, "missing"), ScanOptions{}); err == nil {
		t.Fatalf("expected error for missing root")
	}

	writeFiles(t, root, "file.mp3")
	if _, err := Scan(context.Background(), filepath.Join(root, "file.mp3"), ScanOptions{}); err == nil {
		t.Fatalf("expected error for file root")
	}
}

func TestScanSkipsSymlinkedDirectories(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFiles(t, root, "Radioactive.mp3")
	writeFiles(t, outside, "Thunder.mp3", "album/Whatever It Takes.mp3")

	links := map[string]string{
		"Believer":    filepath.Join(outside, "album"),
		"Thunder.mp3": filepath.Join(outside, "Thunder.mp3"),
	}
	for name, target := range links {
		if err := os.Symlink(target, filepath.Join(root, name)); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
	}

	files, err := Scan(context.Background(), root, ScanOptions{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	got := Names(files)
	want := []string{"Radioactive.mp3", "Thunder.mp3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
}

func TestScanHonorsCancellation(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "Believer.mp3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Scan(ctx, root, ScanOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCandidatesFromFilenames(t *testing.T) {
	files := []File{{Path: "/m/Believer.mp3", Name: "Believer.mp3"}, {Path: "/m/x/Thunder!.flac", Name: "Thunder!.flac"}}
	got := Candidates(files, SourceFilename, func(string) (string, error) {
		t.Fatalf("filename source must not read tags")
		return "", nil
	})
	want := reconcile.FilenameCandidates([]string{"Believer.mp3", "Thunder!.flac"})
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Candidates() = %v, want %v", got, want)
	}
}

func TestCandidatesFromTagsFallBackToFilename(t *testing.T) {
	files := []File{
		{Path: "/m/01 - track.mp3", Name: "01 - track.mp3"},
		{Path: "/m/untagged.mp3", Name: "untagged.mp3"},
		{Path: "/m/broken.mp3", Name: "broken.mp3"},
	}
	titles := map[string]string{"/m/01 - track.mp3": "Believer"}
	readTitle := func(path string) (string, error) {
		if path == "/m/broken.mp3" {
			return "Ignored", errors.New("bad frame")
		}
		return titles[path], nil
	}

	got := Candidates(files, SourceTags, readTitle)
	want := []string{"believer", "untagged", "broken"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Candidates() = %v, want %v", got, want)
	}
}

func TestParseCandidateSource(t *testing.T) {
	if got, err := ParseCandidateSource(""); err != nil || got != SourceFilename {
		t.Fatalf("ParseCandidateSource(\"\") = %q, %v", got, err)
	}
	if got, err := ParseCandidateSource("TAGS"); err != nil || got != SourceTags {
		t.Fatalf("ParseCandidateSource(TAGS) = %q, %v", got, err)
	}
	if _, err := ParseCandidateSource("fingerprint"); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}
