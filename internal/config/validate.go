package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/jaa/spotdiff/internal/library"
	"github.com/jaa/spotdiff/internal/reconcile"
)

type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid config"
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(e.Problems, "; "))
}

func Validate(cfg Config) error {
	problems := []string{}

	if cfg.Version != 1 {
		problems = append(problems, "version must be 1")
	}

	stateDir, err := ExpandPath(cfg.Defaults.StateDir)
	if err != nil || strings.TrimSpace(stateDir) == "" {
		problems = append(problems, "defaults.state_dir must be a valid path")
	} else if !filepath.IsAbs(stateDir) {
		problems = append(problems, "defaults.state_dir must resolve to an absolute path")
	}

	if _, err := reconcile.ParseStrategy(cfg.Match.Strategy); err != nil {
		problems = append(problems, fmt.Sprintf("match.strategy: %v", err))
	}
	if cfg.Match.Cutoff <= 0 || cfg.Match.Cutoff > 1 {
		problems = append(problems, "match.cutoff must be > 0 and <= 1")
	}
	if _, err := library.ParseCandidateSource(cfg.Match.CandidateSource); err != nil {
		problems = append(problems, fmt.Sprintf("match.candidate_source: %v", err))
	}

	for _, ext := range cfg.Library.Extensions {
		if strings.ContainsAny(ext, `/\`) || strings.TrimLeft(ext, ".") == "" {
			problems = append(problems, fmt.Sprintf("library.extensions entry %q is invalid", ext))
		}
	}

	if strings.TrimSpace(cfg.Report.Output) == "" {
		problems = append(problems, "report.output must be set")
	}
	if strings.TrimSpace(cfg.Report.DiagnosticsDir) == "" {
		problems = append(problems, "report.diagnostics_dir must be set")
	}

	if strings.TrimSpace(cfg.Playlist.RedirectURI) == "" {
		problems = append(problems, "playlist.redirect_uri must be set")
	} else if err := validateURL(cfg.Playlist.RedirectURI); err != nil {
		problems = append(problems, fmt.Sprintf("playlist.redirect_uri is invalid: %v", err))
	}
	if strings.TrimSpace(cfg.Playlist.TokenFile) == "" {
		problems = append(problems, "playlist.token_file must be set")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validateURL(raw string) error {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
