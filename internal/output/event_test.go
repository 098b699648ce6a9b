package output

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"
)

func TestJSONEmitterSerializesEvent(t *testing.T) {
	buf := &bytes.Buffer{}
	emitter := NewJSONEmitter(buf)

	event := Event{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:     LevelInfo,
		Event:     EventDiffFinished,
		Message:   "diff finished",
		Details: map[string]any{
			"missing": 2,
		},
	}

	if err := emitter.Emit(event); err != nil {
		t.Fatalf("emit: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}

	if decoded["event"] != string(EventDiffFinished) {
		t.Fatalf("unexpected event name: %v", decoded["event"])
	}
	if decoded["message"] != "diff finished" {
		t.Fatalf("unexpected message: %v", decoded["message"])
	}
	details, ok := decoded["details"].(map[string]any)
	if !ok || details["missing"] != float64(2) {
		t.Fatalf("unexpected details: %v", decoded["details"])
	}
}

func TestHumanEmitterFiltersByMode(t *testing.T) {
	events := []Event{
		{Level: LevelInfo, Event: EventLibraryScanned, Message: "scanned"},
		{Level: LevelWarn, Event: EventLibraryScanned, Message: "unreadable tag"},
		{Level: LevelInfo, Event: EventExportWritten, Message: "wrote export"},
		{Level: LevelInfo, Event: EventDiffFinished, Message: "done"},
	}

	tests := []struct {
		name       string
		quiet      bool
		verbose    bool
		wantStdout string
		wantStderr string
	}{
		{name: "default", wantStdout: "wrote export\ndone\n", wantStderr: "WARN: unreadable tag\n"},
		{name: "verbose", verbose: true, wantStdout: "scanned\nwrote export\ndone\n", wantStderr: "WARN: unreadable tag\n"},
		{name: "quiet", quiet: true, wantStdout: "done\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}
			emitter := NewHumanEmitter(stdout, stderr, tc.quiet, tc.verbose)
			for _, event := range events {
				if err := emitter.Emit(event); err != nil {
					t.Fatalf("emit: %v", err)
				}
			}
			if stdout.String() != tc.wantStdout {
				t.Fatalf("stdout = %q, want %q", stdout.String(), tc.wantStdout)
			}
			if stderr.String() != tc.wantStderr {
				t.Fatalf("stderr = %q, want %q", stderr.String(), tc.wantStderr)
			}
		})
	}
}

func TestHumanEmitterColorPrefixes(t *testing.T) {
	stderr := &bytes.Buffer{}
	emitter := NewHumanEmitter(&bytes.Buffer{}, stderr, false, false)
	emitter.SetColor(true)

	if err := emitter.Emit(Event{Level: LevelError, Event: EventDiffFinished, Message: "boom"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if !strings.Contains(stderr.String(), "\x1b[") || !strings.Contains(stderr.String(), "ERROR:") {
		t.Fatalf("expected colored ERROR prefix, got %q", stderr.String())
	}
	if IsTerminal(stderr) {
		t.Fatalf("buffer must not be treated as a terminal")
	}
}

func TestIsTerminalRejectsBuffersAndRegularFiles(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Fatalf("buffer reported as terminal")
	}
	file, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatalf("create temp: %v", err)
	}
	defer file.Close()
	if IsTerminal(file) {
		t.Fatalf("regular file reported as terminal")
	}
}
