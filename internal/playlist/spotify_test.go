package playlist

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jaa/spotdiff/internal/auth"
	"golang.org/x/oauth2"
)

func TestLoopbackAddress(t *testing.T) {
	tests := []struct {
		name     string
		redirect string
		address  string
		path     string
		wantErr  bool
	}{
		{name: "default", redirect: DefaultRedirectURI, address: "127.0.0.1:8888", path: "/callback"},
		{name: "localhost without port", redirect: "http://localhost", address: "localhost:80", path: "/"},
		{name: "https rejected", redirect: "https://127.0.0.1:8888/callback", wantErr: true},
		{name: "remote host rejected", redirect: "http://example.com/callback", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			address, path, err := loopbackAddress(tc.redirect)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.redirect)
				}
				return
			}
			if err != nil {
				t.Fatalf("loopbackAddress: %v", err)
			}
			if address != tc.address || path != tc.path {
				t.Fatalf("got (%q, %q), want (%q, %q)", address, path, tc.address, tc.path)
			}
		})
	}
}

func TestAuthorizerRequiresPromptWithoutToken(t *testing.T) {
	listened := false
	authorizer := &Authorizer{
		Credentials: auth.SpotifyCredentials{ClientID: "id", ClientSecret: "secret"},
		Store:       auth.TokenStore{Path: filepath.Join(t.TempDir(), "token.json")},
		Listen: func(network string, address string) (net.Listener, error) {
			listened = true
			return nil, errors.New("unexpected listen")
		},
	}

	_, err := authorizer.Client(context.Background())
	if !errors.Is(err, ErrAuthorizationRequired) {
		t.Fatalf("expected ErrAuthorizationRequired, got %v", err)
	}
	if listened {
		t.Fatalf("callback server should not start without a prompt")
	}
}

func TestAuthorizerReusesStoredToken(t *testing.T) {
	store := auth.TokenStore{Path: filepath.Join(t.TempDir(), "token.json")}
	if err := store.Save(&oauth2.Token{AccessToken: "access", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("save token: %v", err)
	}

	authorizer := &Authorizer{
		Credentials: auth.SpotifyCredentials{ClientID: "id", ClientSecret: "secret"},
		Store:       store,
		Prompt: func(string) {
			t.Fatalf("prompt should not be shown for a valid token")
		},
	}

	client, err := authorizer.Client(context.Background())
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if client == nil {
		t.Fatalf("expected client")
	}
}

func TestAuthorizerRefreshesExpiredToken(t *testing.T) {
	var gotGrant, gotRefresh string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotGrant = r.PostForm.Get("grant_type")
		gotRefresh = r.PostForm.Get("refresh_token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"fresh","token_type":"Bearer","refresh_token":"rotated","expires_in":3600}`)
	}))
	defer server.Close()

	store := auth.TokenStore{Path: filepath.Join(t.TempDir(), "token.json")}
	expired := &oauth2.Token{AccessToken: "stale", TokenType: "Bearer", RefreshToken: "old", Expiry: time.Now().Add(-time.Hour)}
	if err := store.Save(expired); err != nil {
		t.Fatalf("save token: %v", err)
	}

	authorizer := &Authorizer{
		Credentials: auth.SpotifyCredentials{ClientID: "id", ClientSecret: "secret"},
		Store:       store,
		TokenURL:    server.URL,
		Prompt: func(string) {
			t.Fatalf("prompt should not be shown when the token can be refreshed")
		},
	}

	client, err := authorizer.Client(context.Background())
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if client == nil {
		t.Fatalf("expected client")
	}
	if gotGrant != "refresh_token" || gotRefresh != "old" {
		t.Fatalf("token request grant=%q refresh=%q", gotGrant, gotRefresh)
	}

	saved, err := store.Load()
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if saved.AccessToken != "fresh" || saved.RefreshToken != "rotated" || !saved.Valid() {
		t.Fatalf("unexpected saved token: %+v", saved)
	}
}

func TestAuthorizerFallsBackToPromptWhenRefreshFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid_grant"}`)
	}))
	defer server.Close()

	store := auth.TokenStore{Path: filepath.Join(t.TempDir(), "token.json")}
	if err := store.Save(&oauth2.Token{AccessToken: "stale", RefreshToken: "revoked", Expiry: time.Now().Add(-time.Hour)}); err != nil {
		t.Fatalf("save token: %v", err)
	}

	authorizer := &Authorizer{
		Credentials: auth.SpotifyCredentials{ClientID: "id", ClientSecret: "secret"},
		Store:       store,
		TokenURL:    server.URL,
	}

	_, err := authorizer.Client(context.Background())
	if !errors.Is(err, ErrAuthorizationRequired) {
		t.Fatalf("expected ErrAuthorizationRequired, got %v", err)
	}
}

type sequenceTokenSource struct {
	tokens []*oauth2.Token
}

func (s *sequenceTokenSource) Token() (*oauth2.Token, error) {
	token := s.tokens[0]
	if len(s.tokens) > 1 {
		s.tokens = s.tokens[1:]
	}
	return token, nil
}

func TestStoringTokenSourceSavesRotatedTokens(t *testing.T) {
	store := auth.TokenStore{Path: filepath.Join(t.TempDir(), "token.json")}
	initial := &oauth2.Token{AccessToken: "first", RefreshToken: "r1", Expiry: time.Now().Add(time.Hour)}
	rotated := &oauth2.Token{AccessToken: "second", RefreshToken: "r2", Expiry: time.Now().Add(time.Hour)}
	source := &storingTokenSource{
		base:  &sequenceTokenSource{tokens: []*oauth2.Token{initial, rotated}},
		store: store,
		last:  initial,
	}

	if _, err := source.Token(); err != nil {
		t.Fatalf("first token: %v", err)
	}
	saved, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if saved != nil {
		t.Fatalf("unchanged token should not be written, got %+v", saved)
	}

	if _, err := source.Token(); err != nil {
		t.Fatalf("second token: %v", err)
	}
	saved, err = store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if saved == nil || saved.AccessToken != "second" || saved.RefreshToken != "r2" {
		t.Fatalf("rotated token not saved: %+v", saved)
	}
}

func TestTrackIDsStripPrefix(t *testing.T) {
	ids := trackIDs([]string{"spotify:track:0pqnGHJpmpxLKifKRmU6WP", "4pbJqGIASGPr0ZpGpnWkDn"})
	if len(ids) != 2 || ids[0] != "0pqnGHJpmpxLKifKRmU6WP" || ids[1] != "4pbJqGIASGPr0ZpGpnWkDn" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}
