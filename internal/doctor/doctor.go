package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaa/spotdiff/internal/auth"
	"github.com/jaa/spotdiff/internal/config"
)

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

type Check struct {
	Severity Severity `json:"severity"`
	Name     string   `json:"name"`
	Message  string   `json:"message"`
}

type Report struct {
	Checks []Check `json:"checks"`
}

func (r Report) HasErrors() bool {
	for _, check := range r.Checks {
		if check.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r Report) ErrorCount() int {
	count := 0
	for _, check := range r.Checks {
		if check.Severity == SeverityError {
			count++
		}
	}
	return count
}

type Checker struct {
	WorkingDir         string
	CheckWritable      func(string) error
	Stat               func(string) (os.FileInfo, error)
	ReadFile           func(string) ([]byte, error)
	HomeDir            func() (string, error)
	ResolveCredentials func() (auth.SpotifyCredentials, error)
}

func NewChecker() *Checker {
	return &Checker{
		CheckWritable: func(path string) error {
			return checkDirWritable(path)
		},
		Stat:               os.Stat,
		ReadFile:           os.ReadFile,
		HomeDir:            os.UserHomeDir,
		ResolveCredentials: auth.ResolveSpotifyCredentials,
	}
}

func (c *Checker) Check(ctx context.Context, cfg config.Config) Report {
	report := Report{Checks: []Check{}}

	stateDir, err := config.ExpandPath(cfg.Defaults.StateDir)
	if err != nil {
		report.add(SeverityError, "filesystem", fmt.Sprintf("state_dir is invalid: %v", err))
	} else {
		report.Checks = append(report.Checks, c.directoryCheck("state_dir", stateDir))
	}

	for _, entry := range []struct {
		name string
		path string
	}{
		{name: "report.output directory", path: filepath.Dir(cfg.Report.Output)},
		{name: "report.diagnostics_dir parent", path: filepath.Dir(filepath.Clean(cfg.Report.DiagnosticsDir))},
	} {
		if ctx.Err() != nil {
			break
		}
		path, err := config.ExpandPath(entry.path)
		if err != nil {
			report.add(SeverityError, "filesystem", fmt.Sprintf("%s is invalid: %v", entry.name, err))
			continue
		}
		report.Checks = append(report.Checks, c.directoryCheck(entry.name, c.resolve(path)))
	}

	if len(cfg.Library.Extensions) == 0 {
		report.add(SeverityInfo, "library", "all files are treated as tracks; set library.extensions to filter")
	} else {
		report.add(SeverityInfo, "library", fmt.Sprintf("tracks limited to extensions %s", strings.Join(cfg.Library.Extensions, ", ")))
	}

	report.Checks = append(report.Checks, c.credentialsCheck())
	if check, ok := c.sharedSpotDLCredentialsCheck(); ok {
		report.Checks = append(report.Checks, check)
	}

	if strings.TrimSpace(cfg.Playlist.TokenFile) != "" && err == nil {
		tokenPath, tokenErr := config.ResolveStateFile(stateDir, cfg.Playlist.TokenFile)
		if tokenErr != nil {
			report.add(SeverityError, "auth", fmt.Sprintf("playlist.token_file is invalid: %v", tokenErr))
		} else {
			report.Checks = append(report.Checks, c.tokenCheck(tokenPath))
		}
	}

	return report
}

func (r *Report) add(severity Severity, name string, message string) {
	r.Checks = append(r.Checks, Check{Severity: severity, Name: name, Message: message})
}

func (c *Checker) resolve(path string) string {
	if filepath.IsAbs(path) || strings.TrimSpace(c.WorkingDir) == "" {
		return path
	}
	return filepath.Join(c.WorkingDir, path)
}

func (c *Checker) directoryCheck(name string, path string) Check {
	stat := c.Stat
	if stat == nil {
		stat = os.Stat
	}
	if _, err := stat(path); errors.Is(err, os.ErrNotExist) {
		return Check{Severity: SeverityWarn, Name: "filesystem", Message: fmt.Sprintf("%s %s does not exist yet; it will be created on first write", name, path)}
	}
	if err := c.CheckWritable(path); err != nil {
		return Check{Severity: SeverityError, Name: "filesystem", Message: fmt.Sprintf("%s is not writable: %v", name, err)}
	}
	return Check{Severity: SeverityInfo, Name: "filesystem", Message: fmt.Sprintf("%s %s is writable", name, path)}
}

func (c *Checker) credentialsCheck() Check {
	resolve := c.ResolveCredentials
	if resolve == nil {
		resolve = auth.ResolveSpotifyCredentials
	}
	if _, err := resolve(); err != nil {
		if errors.Is(err, auth.ErrSpotifyCredentialsNotFound) {
			return Check{Severity: SeverityWarn, Name: "auth", Message: "spotify credentials not found; playlist export is unavailable (set SPOTDIFF_SPOTIFY_CLIENT_ID and SPOTDIFF_SPOTIFY_CLIENT_SECRET)"}
		}
		return Check{Severity: SeverityError, Name: "auth", Message: fmt.Sprintf("spotify credentials are invalid: %v", err)}
	}
	return Check{Severity: SeverityInfo, Name: "auth", Message: "spotify credentials are present"}
}

func (c *Checker) tokenCheck(path string) Check {
	store := auth.TokenStore{Path: path}
	token, err := store.Load()
	if err != nil {
		return Check{Severity: SeverityWarn, Name: "auth", Message: fmt.Sprintf("cached spotify token is unreadable: %v", err)}
	}
	if token == nil {
		return Check{Severity: SeverityInfo, Name: "auth", Message: "no cached spotify token; playlist export will ask for authorization"}
	}
	if !auth.Usable(token) {
		return Check{Severity: SeverityWarn, Name: "auth", Message: fmt.Sprintf("cached spotify token at %s has expired and cannot be refreshed", path)}
	}
	return Check{Severity: SeverityInfo, Name: "auth", Message: fmt.Sprintf("cached spotify token found at %s", path)}
}

type spotDLConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func (c *Checker) sharedSpotDLCredentialsCheck() (Check, bool) {
	readFile := c.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	homeDir := c.HomeDir
	if homeDir == nil {
		homeDir = os.UserHomeDir
	}
	home, err := homeDir()
	if err != nil {
		return Check{}, false
	}
	configPath := filepath.Join(home, ".spotdl", "config.json")
	raw, err := readFile(configPath)
	if err != nil {
		return Check{}, false
	}

	var cfg spotDLConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Check{}, false
	}

	if !usesSharedSpotDLCredentials(cfg.ClientID, cfg.ClientSecret) {
		return Check{}, false
	}

	return Check{
		Severity: SeverityWarn,
		Name:     "auth",
		Message:  fmt.Sprintf("spotdl config at %s is using shared default Spotify credentials; set your own app client_id/client_secret to avoid API throttling", configPath),
	}, true
}

func usesSharedSpotDLCredentials(clientID string, clientSecret string) bool {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return false
	}

	knownPairs := [][2]string{
		{"5f573c9620494bae87890c0f08a60293", "212476d9b0f3472eaa762d90b19b0ba8"},
		{"f8a606e5583643beaa27ce62c48e3fc1", "f6f4c8f73f0649939286cf417c811607"},
	}
	for _, pair := range knownPairs {
		if clientID == pair[0] && clientSecret == pair[1] {
			return true
		}
	}
	return false
}

func checkDirWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	file, err := os.CreateTemp(path, ".spotdiff-write-check-*")
	if err != nil {
		return err
	}
	name := file.Name()
	_ = file.Close()
	_ = os.Remove(name)
	return nil
}
