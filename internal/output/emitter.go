package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type EventEmitter interface {
	Emit(event Event) error
}

type JSONEmitter struct {
	enc *json.Encoder
	mu  sync.Mutex
}

func NewJSONEmitter(w io.Writer) *JSONEmitter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONEmitter{enc: enc}
}

func (e *JSONEmitter) Emit(event Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(event)
}

type HumanEmitter struct {
	stdout  io.Writer
	stderr  io.Writer
	quiet   bool
	verbose bool
	warn    *color.Color
	fail    *color.Color
}

func NewHumanEmitter(stdout, stderr io.Writer, quiet, verbose bool) *HumanEmitter {
	e := &HumanEmitter{
		stdout:  stdout,
		stderr:  stderr,
		quiet:   quiet,
		verbose: verbose,
		warn:    color.New(color.FgYellow, color.Bold),
		fail:    color.New(color.FgRed, color.Bold),
	}
	e.SetColor(!color.NoColor && IsTerminal(stderr))
	return e
}

// SetColor forces the WARN/ERROR prefixes on or off.
func (e *HumanEmitter) SetColor(enabled bool) {
	for _, c := range []*color.Color{e.warn, e.fail} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

// IsTerminal reports whether w is a terminal (including Cygwin/MSYS ptys).
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (e *HumanEmitter) Emit(event Event) error {
	line := event.Message
	if line == "" {
		line = string(event.Event)
	}

	switch event.Level {
	case LevelError:
		_, err := fmt.Fprintln(e.stderr, e.fail.Sprint("ERROR:"), line)
		return err
	case LevelWarn:
		if e.quiet {
			return nil
		}
		_, err := fmt.Fprintln(e.stderr, e.warn.Sprint("WARN:"), line)
		return err
	default:
		if e.quiet && !isOutcome(event.Event) {
			return nil
		}
		if !e.verbose && isProgress(event.Event) {
			return nil
		}
		_, err := fmt.Fprintln(e.stdout, line)
		return err
	}
}

// isOutcome reports events that are still printed in quiet mode.
func isOutcome(name EventName) bool {
	return name == EventDiffFinished || name == EventPlaylistCreated
}

func isProgress(name EventName) bool {
	switch name {
	case EventDiffStarted, EventReferenceLoaded, EventLibraryScanned, EventPlaylistBatchAdded:
		return true
	default:
		return false
	}
}
