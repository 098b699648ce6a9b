package playlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaa/spotdiff/internal/auth"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const DefaultRedirectURI = "http://127.0.0.1:8888/callback"

const trackURIPrefix = "spotify:track:"

// ErrAuthorizationRequired is returned when no usable token is stored and the
// authorizer has no way to ask the user to sign in.
var ErrAuthorizationRequired = errors.New("spotify authorization required")

// SpotifyAPI adapts a Web API client to the exporter.
type SpotifyAPI struct {
	client *spotify.Client
}

func NewSpotifyAPI(client *spotify.Client) *SpotifyAPI {
	return &SpotifyAPI{client: client}
}

func (a *SpotifyAPI) CurrentUserID(ctx context.Context) (string, error) {
	user, err := a.client.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (a *SpotifyAPI) CreatePlaylist(ctx context.Context, userID string, name string, description string, public bool) (Playlist, error) {
	created, err := a.client.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return Playlist{}, err
	}
	return Playlist{ID: created.ID.String(), URL: created.ExternalURLs["spotify"]}, nil
}

func (a *SpotifyAPI) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	_, err := a.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), trackIDs(uris)...)
	return err
}

func trackIDs(uris []string) []spotify.ID {
	ids := make([]spotify.ID, 0, len(uris))
	for _, uri := range uris {
		ids = append(ids, spotify.ID(strings.TrimPrefix(strings.TrimSpace(uri), trackURIPrefix)))
	}
	return ids
}

// Authorizer produces an authenticated Web API client, reusing the stored
// token when possible and otherwise running the authorization code flow
// against a loopback redirect.
type Authorizer struct {
	Credentials auth.SpotifyCredentials
	RedirectURI string
	Store       auth.TokenStore
	// Prompt receives the URL the user has to open in a browser. Without it a
	// missing token fails with ErrAuthorizationRequired.
	Prompt func(authURL string)
	Listen func(network string, address string) (net.Listener, error)
	// TokenURL overrides the accounts service token endpoint.
	TokenURL string
}

func (a *Authorizer) Client(ctx context.Context) (*spotify.Client, error) {
	redirect := strings.TrimSpace(a.RedirectURI)
	if redirect == "" {
		redirect = DefaultRedirectURI
	}
	authenticator := spotifyauth.New(
		spotifyauth.WithClientID(a.Credentials.ClientID),
		spotifyauth.WithClientSecret(a.Credentials.ClientSecret),
		spotifyauth.WithRedirectURL(redirect),
		spotifyauth.WithScopes(spotifyauth.ScopePlaylistModifyPrivate, spotifyauth.ScopePlaylistModifyPublic),
	)

	unlock, err := a.Store.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	oauthConfig := a.oauthConfig(redirect)
	token, err := a.Store.Load()
	if err != nil {
		return nil, err
	}
	if token != nil && !token.Valid() && token.RefreshToken != "" {
		refreshed, refreshErr := oauthConfig.TokenSource(ctx, token).Token()
		if refreshErr == nil {
			token = refreshed
			if err := a.Store.Save(token); err != nil {
				return nil, err
			}
		} else {
			token = nil
		}
	}
	if !auth.Usable(token) {
		token, err = a.authorize(ctx, authenticator, redirect)
		if err != nil {
			return nil, err
		}
		if err := a.Store.Save(token); err != nil {
			return nil, err
		}
	}
	source := &storingTokenSource{
		base:  oauthConfig.TokenSource(ctx, token),
		store: a.Store,
		last:  token,
	}
	return spotify.New(oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, source))), nil
}

func (a *Authorizer) oauthConfig(redirect string) *oauth2.Config {
	tokenURL := strings.TrimSpace(a.TokenURL)
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}
	return &oauth2.Config{
		ClientID:     a.Credentials.ClientID,
		ClientSecret: a.Credentials.ClientSecret,
		RedirectURL:  redirect,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyauth.AuthURL,
			TokenURL: tokenURL,
		},
	}
}

// storingTokenSource saves every token the base source hands out that differs
// from the last one seen, so refreshes made during a run survive it.
type storingTokenSource struct {
	base  oauth2.TokenSource
	store auth.TokenStore

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *storingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last != nil && s.last.AccessToken == token.AccessToken && s.last.RefreshToken == token.RefreshToken {
		return token, nil
	}
	if err := s.store.Save(token); err != nil {
		return nil, err
	}
	s.last = token
	return token, nil
}

func (a *Authorizer) authorize(ctx context.Context, authenticator *spotifyauth.Authenticator, redirect string) (*oauth2.Token, error) {
	if a.Prompt == nil {
		return nil, ErrAuthorizationRequired
	}
	address, callbackPath, err := loopbackAddress(redirect)
	if err != nil {
		return nil, err
	}
	state := strings.ReplaceAll(uuid.NewString(), "-", "")

	listen := a.Listen
	if listen == nil {
		listen = net.Listen
	}
	listener, err := listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen for spotify callback on %s: %w", address, err)
	}

	type outcome struct {
		token *oauth2.Token
		err   error
	}
	done := make(chan outcome, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		token, tokenErr := authenticator.Token(r.Context(), state, r)
		if tokenErr != nil {
			http.Error(w, "spotify authorization failed", http.StatusForbidden)
		} else {
			_, _ = io.WriteString(w, "spotdiff is authorized. You can close this window.\n")
		}
		select {
		case done <- outcome{token: token, err: tokenErr}:
		default:
		}
	})
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = server.Serve(listener) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	a.Prompt(authenticator.AuthURL(state))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-done:
		if result.err != nil {
			return nil, fmt.Errorf("spotify authorization: %w", result.err)
		}
		return result.token, nil
	}
}

// loopbackAddress returns the listen address and path of a loopback
// redirect URI.
func loopbackAddress(redirect string) (string, string, error) {
	parsed, err := url.Parse(redirect)
	if err != nil {
		return "", "", fmt.Errorf("invalid redirect uri %q: %w", redirect, err)
	}
	if parsed.Scheme != "http" {
		return "", "", fmt.Errorf("redirect uri %q must use http on a loopback host", redirect)
	}
	host := parsed.Hostname()
	if host != "127.0.0.1" && host != "localhost" && host != "::1" {
		return "", "", fmt.Errorf("redirect uri %q must point at a loopback host", redirect)
	}
	port := parsed.Port()
	if port == "" {
		port = "80"
	}
	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	return net.JoinHostPort(host, port), path, nil
}
