package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jaa/spotdiff/internal/auth"
	"github.com/jaa/spotdiff/internal/config"
	"golang.org/x/oauth2"
)

func testConfig(stateDir string) config.Config {
	cfg := config.DefaultConfig()
	cfg.Defaults.StateDir = stateDir
	return cfg
}

func presentCredentials() (auth.SpotifyCredentials, error) {
	return auth.SpotifyCredentials{ClientID: "id", ClientSecret: "secret"}, nil
}

func missingCredentials() (auth.SpotifyCredentials, error) {
	return auth.SpotifyCredentials{}, auth.ErrSpotifyCredentialsNotFound
}

func hasCheck(report Report, severity Severity, name string, fragment string) bool {
	for _, check := range report.Checks {
		if check.Severity == severity && check.Name == name && strings.Contains(check.Message, fragment) {
			return true
		}
	}
	return false
}

func TestDoctorHealthyWorkspace(t *testing.T) {
	tmp := t.TempDir()
	checker := NewChecker()
	checker.WorkingDir = tmp
	checker.ResolveCredentials = presentCredentials
	checker.HomeDir = func() (string, error) { return tmp, nil }

	report := checker.Check(context.Background(), testConfig(tmp))
	if report.HasErrors() {
		t.Fatalf("expected no errors, got %+v", report.Checks)
	}
	if !hasCheck(report, SeverityInfo, "auth", "credentials are present") {
		t.Fatalf("expected credentials info check, got %+v", report.Checks)
	}
	if !hasCheck(report, SeverityInfo, "auth", "no cached spotify token") {
		t.Fatalf("expected missing token info check, got %+v", report.Checks)
	}
}

func TestDoctorUnwritableDirectory(t *testing.T) {
	tmp := t.TempDir()
	checker := &Checker{
		WorkingDir:         tmp,
		CheckWritable:      func(path string) error { return fmt.Errorf("permission denied") },
		ReadFile:           func(string) ([]byte, error) { return nil, os.ErrNotExist },
		HomeDir:            func() (string, error) { return tmp, nil },
		ResolveCredentials: presentCredentials,
	}

	report := checker.Check(context.Background(), testConfig(tmp))
	if !report.HasErrors() {
		t.Fatalf("expected doctor errors for unwritable directory")
	}
	if report.ErrorCount() < 1 {
		t.Fatalf("expected error count to be positive")
	}
}

func TestDoctorWarnsOnMissingStateDir(t *testing.T) {
	tmp := t.TempDir()
	checker := &Checker{
		WorkingDir:         tmp,
		CheckWritable:      func(path string) error { return nil },
		ReadFile:           func(string) ([]byte, error) { return nil, os.ErrNotExist },
		HomeDir:            func() (string, error) { return tmp, nil },
		ResolveCredentials: presentCredentials,
	}

	report := checker.Check(context.Background(), testConfig(filepath.Join(tmp, "absent")))
	if report.HasErrors() {
		t.Fatalf("missing state dir should only warn, got %+v", report.Checks)
	}
	if !hasCheck(report, SeverityWarn, "filesystem", "does not exist yet") {
		t.Fatalf("expected missing directory warning, got %+v", report.Checks)
	}
}

func TestDoctorWarnsWithoutCredentials(t *testing.T) {
	tmp := t.TempDir()
	checker := NewChecker()
	checker.WorkingDir = tmp
	checker.ResolveCredentials = missingCredentials
	checker.HomeDir = func() (string, error) { return tmp, nil }

	report := checker.Check(context.Background(), testConfig(tmp))
	if report.HasErrors() {
		t.Fatalf("missing credentials should not fail doctor, got %+v", report.Checks)
	}
	if !hasCheck(report, SeverityWarn, "auth", "playlist export is unavailable") {
		t.Fatalf("expected credentials warning, got %+v", report.Checks)
	}
}

func TestDoctorReportsPartialCredentialsAsError(t *testing.T) {
	tmp := t.TempDir()
	checker := NewChecker()
	checker.WorkingDir = tmp
	checker.HomeDir = func() (string, error) { return tmp, nil }
	checker.ResolveCredentials = func() (auth.SpotifyCredentials, error) {
		return auth.SpotifyCredentials{}, fmt.Errorf("both SPOTDIFF_SPOTIFY_CLIENT_ID and SPOTDIFF_SPOTIFY_CLIENT_SECRET are required")
	}

	report := checker.Check(context.Background(), testConfig(tmp))
	if !hasCheck(report, SeverityError, "auth", "credentials are invalid") {
		t.Fatalf("expected credentials error, got %+v", report.Checks)
	}
}

func TestDoctorReportsCachedToken(t *testing.T) {
	tmp := t.TempDir()
	store := auth.TokenStore{Path: filepath.Join(tmp, "spotify-token.json")}
	if err := store.Save(&oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: time.Now().Add(-time.Hour)}); err != nil {
		t.Fatalf("save token: %v", err)
	}

	checker := NewChecker()
	checker.WorkingDir = tmp
	checker.ResolveCredentials = presentCredentials
	checker.HomeDir = func() (string, error) { return tmp, nil }

	report := checker.Check(context.Background(), testConfig(tmp))
	if !hasCheck(report, SeverityInfo, "auth", "cached spotify token found") {
		t.Fatalf("expected cached token info, got %+v", report.Checks)
	}
}

func TestDoctorWarnsOnExpiredTokenWithoutRefresh(t *testing.T) {
	tmp := t.TempDir()
	store := auth.TokenStore{Path: filepath.Join(tmp, "spotify-token.json")}
	if err := store.Save(&oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(-time.Hour)}); err != nil {
		t.Fatalf("save token: %v", err)
	}

	checker := NewChecker()
	checker.WorkingDir = tmp
	checker.ResolveCredentials = presentCredentials
	checker.HomeDir = func() (string, error) { return tmp, nil }

	report := checker.Check(context.Background(), testConfig(tmp))
	if !hasCheck(report, SeverityWarn, "auth", "cannot be refreshed") {
		t.Fatalf("expected expired token warning, got %+v", report.Checks)
	}
}

func TestDoctorWarnsOnSharedSpotDLCredentials(t *testing.T) {
	tmp := t.TempDir()
	checker := NewChecker()
	checker.WorkingDir = tmp
	checker.ResolveCredentials = presentCredentials
	checker.HomeDir = func() (string, error) { return "/home/tester", nil }
	checker.ReadFile = func(path string) ([]byte, error) {
		if path != filepath.Join("/home/tester", ".spotdl", "config.json") {
			return nil, os.ErrNotExist
		}
		return []byte(`{"client_id":"5f573c9620494bae87890c0f08a60293","client_secret":"212476d9b0f3472eaa762d90b19b0ba8"}`), nil
	}

	report := checker.Check(context.Background(), testConfig(tmp))
	if !hasCheck(report, SeverityWarn, "auth", "shared default Spotify credentials") {
		t.Fatalf("expected shared spotdl credentials warning, got %+v", report.Checks)
	}
}

func TestDoctorSkipsSharedCredentialWarningForCustomCredentials(t *testing.T) {
	tmp := t.TempDir()
	checker := NewChecker()
	checker.WorkingDir = tmp
	checker.ResolveCredentials = presentCredentials
	checker.HomeDir = func() (string, error) { return "/home/tester", nil }
	checker.ReadFile = func(path string) ([]byte, error) {
		return []byte(`{"client_id":"custom-id","client_secret":"custom-secret"}`), nil
	}

	report := checker.Check(context.Background(), testConfig(tmp))
	if hasCheck(report, SeverityWarn, "auth", "shared default Spotify credentials") {
		t.Fatalf("did not expect shared credential warning, got %+v", report.Checks)
	}
}

func TestDoctorListsLibraryExtensions(t *testing.T) {
	tmp := t.TempDir()
	cfg := testConfig(tmp)
	cfg.Library.Extensions = []string{".mp3", ".flac"}

	checker := NewChecker()
	checker.WorkingDir = tmp
	checker.ResolveCredentials = presentCredentials
	checker.HomeDir = func() (string, error) { return tmp, nil }

	report := checker.Check(context.Background(), cfg)
	if !hasCheck(report, SeverityInfo, "library", ".mp3, .flac") {
		t.Fatalf("expected extension listing, got %+v", report.Checks)
	}
}
