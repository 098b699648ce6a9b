package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"

	"github.com/jaa/spotdiff/internal/config"
	"github.com/jaa/spotdiff/internal/exitcode"
	"github.com/jaa/spotdiff/internal/library"
	"github.com/jaa/spotdiff/internal/output"
	"github.com/jaa/spotdiff/internal/playlist"
	"github.com/jaa/spotdiff/internal/reconcile"
	"github.com/jaa/spotdiff/internal/reference"
	"github.com/jaa/spotdiff/internal/report"
	"github.com/spf13/cobra"
)

type diffFlags struct {
	output       string
	debug        bool
	strategy     string
	cutoff       float64
	source       string
	playlist     bool
	playlistName string
	public       bool
}

func newDiffCommand(app *AppContext) *cobra.Command {
	flags := diffFlags{}

	cmd := &cobra.Command{
		Use:   "diff <csv> <directory>",
		Short: "List CSV tracks that have no matching file in a directory",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if err := applyDiffFlags(cmd, &cfg, flags); err != nil {
				return withExitCode(exitcode.InvalidUsage, err)
			}
			if err := config.Validate(cfg); err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), interruptSignals()...)
			defer stop()

			emitter := newEmitter(app, flags.debug)
			result, err := runDiff(ctx, cfg, args[0], args[1], flags.debug, emitter)
			if err != nil {
				return classifyRunError(err)
			}

			if !flags.playlist {
				return nil
			}
			if len(result.Missing) == 0 {
				return nil
			}
			uris := playlist.RowURIs(result.MissingRows())
			if len(uris) == 0 {
				emit(emitter, output.LevelWarn, output.EventPlaylistCreated, fmt.Sprintf("missing rows have no %q values; playlist not created", reference.ColumnTrackURI), nil)
				return nil
			}
			public := cfg.Playlist.Public
			if cmd.Flags().Changed("public") {
				public = flags.public
			}
			if err := exportPlaylist(ctx, app, cfg, emitter, uris, flags.playlistName, public); err != nil {
				return classifyRunError(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", report.DefaultOutputPath, "Path of the missing tracks CSV")
	cmd.Flags().BoolVarP(&flags.debug, "debug", "v", false, "Write key lists to the diagnostics directory and show progress")
	cmd.Flags().StringVar(&flags.strategy, "strategy", string(reconcile.StrategyFuzzy), "Match strategy: fuzzy or exact")
	cmd.Flags().Float64Var(&flags.cutoff, "cutoff", reconcile.DefaultCutoff, "Minimum similarity for a fuzzy title match, in (0, 1]")
	cmd.Flags().StringVar(&flags.source, "source", string(library.SourceFilename), "Candidate source: filename or tags")
	cmd.Flags().BoolVar(&flags.playlist, "playlist", false, "Create a Spotify playlist from the missing tracks")
	cmd.Flags().StringVar(&flags.playlistName, "playlist-name", "", "Name of the playlist created by --playlist")
	cmd.Flags().BoolVar(&flags.public, "public", false, "Make the playlist created by --playlist public")
	return cmd
}

// applyDiffFlags layers explicitly set flags over the loaded config.
func applyDiffFlags(cmd *cobra.Command, cfg *config.Config, flags diffFlags) error {
	changed := cmd.Flags().Changed
	if changed("output") {
		if strings.TrimSpace(flags.output) == "" {
			return fmt.Errorf("--output must not be empty")
		}
		cfg.Report.Output = flags.output
	}
	if changed("strategy") {
		strategy, err := reconcile.ParseStrategy(flags.strategy)
		if err != nil {
			return err
		}
		cfg.Match.Strategy = string(strategy)
	}
	if changed("cutoff") {
		if flags.cutoff <= 0 || flags.cutoff > 1 {
			return fmt.Errorf("invalid --cutoff %v (expected a value in (0, 1])", flags.cutoff)
		}
		cfg.Match.Cutoff = flags.cutoff
	}
	if changed("source") {
		source, err := library.ParseCandidateSource(flags.source)
		if err != nil {
			return err
		}
		cfg.Match.CandidateSource = string(source)
	}
	return nil
}

func runDiff(ctx context.Context, cfg config.Config, csvPath string, directory string, debug bool, emitter output.EventEmitter) (reconcile.Result, error) {
	strategy, err := reconcile.ParseStrategy(cfg.Match.Strategy)
	if err != nil {
		return reconcile.Result{}, err
	}
	source, err := library.ParseCandidateSource(cfg.Match.CandidateSource)
	if err != nil {
		return reconcile.Result{}, err
	}

	emit(emitter, output.LevelInfo, output.EventDiffStarted, fmt.Sprintf("Comparing %s with %s", csvPath, directory), map[string]any{
		"csv":       csvPath,
		"directory": directory,
		"strategy":  string(strategy),
		"cutoff":    cfg.Match.Cutoff,
		"source":    string(source),
	})

	table, err := reference.Read(csvPath)
	if err != nil {
		return reconcile.Result{}, err
	}
	if err := table.RequireColumns(reference.ColumnTrackName, reference.ColumnArtistNames); err != nil {
		return reconcile.Result{}, err
	}
	emit(emitter, output.LevelInfo, output.EventReferenceLoaded, fmt.Sprintf("Loaded %d rows from %s", len(table.Rows), csvPath), map[string]any{
		"rows":    len(table.Rows),
		"columns": len(table.Header),
	})

	files, err := library.Scan(ctx, directory, library.ScanOptions{Extensions: cfg.Library.Extensions})
	if err != nil {
		return reconcile.Result{}, err
	}
	emit(emitter, output.LevelInfo, output.EventLibraryScanned, fmt.Sprintf("Found %d files under %s", len(files), directory), map[string]any{
		"files": len(files),
	})

	candidates := library.Candidates(files, source, nil)
	result := reconcile.Run(table, candidates, reconcile.Options{Strategy: strategy, Cutoff: cfg.Match.Cutoff})

	writer := report.NewWriter(report.Settings{
		OutputPath:     cfg.Report.Output,
		DiagnosticsDir: cfg.Report.DiagnosticsDir,
		Debug:          debug,
	})
	outcome, err := writer.Write(result)
	if len(outcome.DiagnosticFiles) > 0 {
		emit(emitter, output.LevelInfo, output.EventDiagnosticsWritten, fmt.Sprintf("Wrote key lists to %s", cfg.Report.DiagnosticsDir), map[string]any{
			"files": outcome.DiagnosticFiles,
		})
	}
	if err != nil {
		return result, err
	}
	if !outcome.Complete() {
		emit(emitter, output.LevelInfo, output.EventExportWritten, fmt.Sprintf("Wrote %d missing tracks to %s", outcome.ExportedRows, outcome.ExportPath), map[string]any{
			"path": outcome.ExportPath,
			"rows": outcome.ExportedRows,
		})
	}

	emit(emitter, output.LevelInfo, output.EventDiffFinished, summaryMessage(result.Stats), map[string]any{
		"stats":  result.Stats,
		"export": outcome.ExportPath,
	})
	return result, nil
}

func summaryMessage(stats reconcile.Stats) string {
	lines := []string{
		fmt.Sprintf("Tracks in CSV: %d", stats.Reference),
		fmt.Sprintf("Tracks in directory: %d", stats.Observed),
		fmt.Sprintf("Missing from directory: %d", stats.Missing),
	}
	if stats.Missing == 0 {
		lines = append(lines, "No missing tracks. Every CSV track has a matching file.")
	}
	return strings.Join(lines, "\n")
}

func classifyRunError(err error) error {
	if errors.Is(err, context.Canceled) {
		return withExitCode(exitcode.Interrupted, err)
	}
	return withExitCode(exitcode.RuntimeFailure, err)
}
