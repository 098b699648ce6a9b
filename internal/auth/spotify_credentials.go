package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var ErrSpotifyCredentialsNotFound = errors.New("spotify credentials not found")

const (
	spotifyKeychainService       = "spotdiff.spotify"
	spotifyKeychainAccountID     = "client_id"
	spotifyKeychainAccountSecret = "client_secret"
)

// spotifyEnvPairs are checked in order; the SPOTIPY_ names keep existing
// .env files from the spotipy tooling working.
var spotifyEnvPairs = [][2]string{
	{"SPOTDIFF_SPOTIFY_CLIENT_ID", "SPOTDIFF_SPOTIFY_CLIENT_SECRET"},
	{"SPOTIPY_CLIENT_ID", "SPOTIPY_CLIENT_SECRET"},
}

type commandRunner func(name string, args ...string) ([]byte, error)

type SpotifyCredentials struct {
	ClientID     string
	ClientSecret string
}

type spotifySpotDLConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type SpotifyCredentialsResolver struct {
	Getenv   func(string) string
	ReadFile func(string) ([]byte, error)
	HomeDir  func() (string, error)
	Command  commandRunner
}

func ResolveSpotifyCredentials() (SpotifyCredentials, error) {
	return SpotifyCredentialsResolver{
		Getenv:   os.Getenv,
		ReadFile: os.ReadFile,
		HomeDir:  os.UserHomeDir,
		Command:  runCommandOutput,
	}.Resolve()
}

func (r SpotifyCredentialsResolver) Resolve() (SpotifyCredentials, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, pair := range spotifyEnvPairs {
		clientID := strings.TrimSpace(getenv(pair[0]))
		clientSecret := strings.TrimSpace(getenv(pair[1]))
		if clientID != "" && clientSecret != "" {
			return SpotifyCredentials{ClientID: clientID, ClientSecret: clientSecret}, nil
		}
		if clientID != "" || clientSecret != "" {
			return SpotifyCredentials{}, fmt.Errorf("both %s and %s are required", pair[0], pair[1])
		}
	}

	command := r.Command
	if command == nil {
		command = runCommandOutput
	}
	keychainClientID := keychainCredential(command, spotifyKeychainService, spotifyKeychainAccountID)
	keychainClientSecret := keychainCredential(command, spotifyKeychainService, spotifyKeychainAccountSecret)
	if keychainClientID != "" && keychainClientSecret != "" {
		return SpotifyCredentials{
			ClientID:     keychainClientID,
			ClientSecret: keychainClientSecret,
		}, nil
	}

	readFile := r.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	homeDir := r.HomeDir
	if homeDir == nil {
		homeDir = os.UserHomeDir
	}
	home, err := homeDir()
	if err != nil {
		return SpotifyCredentials{}, ErrSpotifyCredentialsNotFound
	}
	configPath := filepath.Join(home, ".spotdl", "config.json")
	payload, err := readFile(configPath)
	if err != nil {
		return SpotifyCredentials{}, ErrSpotifyCredentialsNotFound
	}

	var cfg spotifySpotDLConfig
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return SpotifyCredentials{}, fmt.Errorf("parse spotdl config %s: %w", configPath, err)
	}
	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	cfg.ClientSecret = strings.TrimSpace(cfg.ClientSecret)
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return SpotifyCredentials{}, ErrSpotifyCredentialsNotFound
	}
	return SpotifyCredentials{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}, nil
}

func keychainCredential(command commandRunner, service string, account string) string {
	raw, err := command(
		"security",
		"find-generic-password",
		"-s", service,
		"-a", account,
		"-w",
	)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func runCommandOutput(name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, err
	}
	return exec.Command(name, args...).Output()
}
