package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/jaa/spotdiff/internal/auth"
	"github.com/jaa/spotdiff/internal/config"
	"github.com/jaa/spotdiff/internal/exitcode"
	"github.com/jaa/spotdiff/internal/output"
	"github.com/jaa/spotdiff/internal/playlist"
	"github.com/jaa/spotdiff/internal/reference"
	"github.com/spf13/cobra"
)

type playlistAPIFactory func(ctx context.Context, app *AppContext, cfg config.Config) (playlist.API, error)

func newPlaylistCommand(app *AppContext) *cobra.Command {
	var name string
	var public bool

	cmd := &cobra.Command{
		Use:   "playlist <csv>",
		Short: "Create a Spotify playlist from the track URIs in a CSV",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if err := config.Validate(cfg); err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if cmd.Flags().Changed("public") {
				cfg.Playlist.Public = public
			}

			table, err := reference.Read(args[0])
			if err != nil {
				return withExitCode(exitcode.RuntimeFailure, err)
			}
			uris := playlist.TrackURIs(table)
			if len(uris) == 0 {
				return withExitCode(exitcode.RuntimeFailure, fmt.Errorf("%s: %w", args[0], playlist.ErrNoTracks))
			}

			ctx, stop := signal.NotifyContext(context.Background(), interruptSignals()...)
			defer stop()

			emitter := newEmitter(app, true)
			if err := exportPlaylist(ctx, app, cfg, emitter, uris, name, cfg.Playlist.Public); err != nil {
				return classifyRunError(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Playlist name (default \"SpotDiff Missing Tracks <date>\")")
	cmd.Flags().BoolVar(&public, "public", false, "Create a public playlist")
	return cmd
}

func exportPlaylist(ctx context.Context, app *AppContext, cfg config.Config, emitter output.EventEmitter, uris []string, name string, public bool) error {
	if strings.TrimSpace(name) == "" {
		name = cfg.Playlist.Name
	}

	factory := app.NewPlaylistAPI
	if factory == nil {
		factory = newSpotifyPlaylistAPI
	}
	api, err := factory(ctx, app, cfg)
	if err != nil {
		return err
	}

	exporter := playlist.NewExporter(api, func(batch int, total int, added int) {
		emit(emitter, output.LevelInfo, output.EventPlaylistBatchAdded, fmt.Sprintf("Added batch %d/%d (%d tracks)", batch, total, added), map[string]any{
			"batch": batch,
			"total": total,
			"added": added,
		})
	})
	result, err := exporter.Export(ctx, playlist.Request{Name: name, Public: public, URIs: uris})
	if err != nil {
		return err
	}

	message := fmt.Sprintf("Created playlist with %d tracks", result.Added)
	if result.Playlist.URL != "" {
		message = fmt.Sprintf("%s: %s", message, result.Playlist.URL)
	}
	emit(emitter, output.LevelInfo, output.EventPlaylistCreated, message, map[string]any{
		"playlist_id": result.Playlist.ID,
		"url":         result.Playlist.URL,
		"added":       result.Added,
		"batches":     result.Batches,
	})
	return nil
}

func newSpotifyPlaylistAPI(ctx context.Context, app *AppContext, cfg config.Config) (playlist.API, error) {
	credentials, err := auth.ResolveSpotifyCredentials()
	if err != nil {
		if errors.Is(err, auth.ErrSpotifyCredentialsNotFound) {
			return nil, fmt.Errorf("%w: set SPOTDIFF_SPOTIFY_CLIENT_ID and SPOTDIFF_SPOTIFY_CLIENT_SECRET", err)
		}
		return nil, err
	}

	tokenPath, err := config.ResolveStateFile(cfg.Defaults.StateDir, cfg.Playlist.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("resolve token file: %w", err)
	}

	authorizer := &playlist.Authorizer{
		Credentials: credentials,
		RedirectURI: cfg.Playlist.RedirectURI,
		Store:       auth.TokenStore{Path: tokenPath},
	}
	if !app.Opts.NoInput && output.IsTerminal(os.Stdin) {
		authorizer.Prompt = func(authURL string) {
			fmt.Fprintf(app.IO.ErrOut, "Open this URL in a browser to authorize spotdiff:\n%s\n", authURL)
		}
	}

	client, err := authorizer.Client(ctx)
	if err != nil {
		if errors.Is(err, playlist.ErrAuthorizationRequired) {
			return nil, fmt.Errorf("%w: rerun interactively to sign in", err)
		}
		return nil, err
	}
	return playlist.NewSpotifyAPI(client), nil
}
