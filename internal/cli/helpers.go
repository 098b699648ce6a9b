package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jaa/spotdiff/internal/config"
	"github.com/jaa/spotdiff/internal/exitcode"
	"github.com/jaa/spotdiff/internal/output"
	"github.com/spf13/cobra"
)

func loadConfig(app *AppContext) (config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("resolve working directory: %w", err)
	}

	cfg, err := config.Load(config.LoadOptions{
		ExplicitPath: strings.TrimSpace(app.Opts.ConfigPath),
		WorkingDir:   wd,
	})
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newEmitter(app *AppContext, verbose bool) output.EventEmitter {
	if app.Opts.JSON {
		return output.NewJSONEmitter(app.IO.Out)
	}
	emitter := output.NewHumanEmitter(app.IO.Out, app.IO.ErrOut, app.Opts.Quiet, verbose)
	if app.Opts.NoColor {
		emitter.SetColor(false)
	}
	return emitter
}

func emit(emitter output.EventEmitter, level output.Level, name output.EventName, message string, details map[string]any) {
	_ = emitter.Emit(output.Event{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Event:     name,
		Message:   message,
		Details:   details,
	})
}

// exactArgs is cobra.ExactArgs with the usage exit code attached.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return withExitCode(exitcode.InvalidUsage, err)
		}
		return nil
	}
}
