package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type LoadOptions struct {
	ExplicitPath string
	WorkingDir   string
	Env          map[string]string
}

type fileConfig struct {
	Version  *int               `yaml:"version"`
	Defaults fileDefaults       `yaml:"defaults"`
	Match    fileMatchConfig    `yaml:"match"`
	Library  fileLibraryConfig  `yaml:"library"`
	Report   fileReportConfig   `yaml:"report"`
	Playlist filePlaylistConfig `yaml:"playlist"`
}

type fileDefaults struct {
	StateDir *string `yaml:"state_dir"`
}

type fileMatchConfig struct {
	Strategy        *string  `yaml:"strategy"`
	Cutoff          *float64 `yaml:"cutoff"`
	CandidateSource *string  `yaml:"candidate_source"`
}

type fileLibraryConfig struct {
	Extensions *[]string `yaml:"extensions"`
}

type fileReportConfig struct {
	Output         *string `yaml:"output"`
	DiagnosticsDir *string `yaml:"diagnostics_dir"`
}

type filePlaylistConfig struct {
	Name        *string `yaml:"name"`
	Public      *bool   `yaml:"public"`
	RedirectURI *string `yaml:"redirect_uri"`
	TokenFile   *string `yaml:"token_file"`
}

func Load(opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	cwd := opts.WorkingDir
	if strings.TrimSpace(cwd) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("resolve working directory: %w", err)
		}
		cwd = wd
	}

	env := opts.Env
	if env == nil {
		env = osEnvMap()
	}

	if explicit := strings.TrimSpace(opts.ExplicitPath); explicit != "" {
		if err := mergeFile(&cfg, explicit, true); err != nil {
			return Config{}, err
		}
	} else {
		userPath, err := UserConfigPath()
		if err != nil {
			return Config{}, err
		}
		if err := mergeFile(&cfg, userPath, false); err != nil {
			return Config{}, err
		}

		if err := mergeFile(&cfg, ProjectConfigPath(cwd), false); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg, env); err != nil {
		return Config{}, err
	}

	normalize(&cfg)
	return cfg, nil
}

func mergeFile(cfg *Config, path string, required bool) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file does not exist: %s", path)
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(payload, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Version != nil {
		cfg.Version = *fc.Version
	}
	if fc.Defaults.StateDir != nil {
		cfg.Defaults.StateDir = strings.TrimSpace(*fc.Defaults.StateDir)
	}
	if fc.Match.Strategy != nil {
		cfg.Match.Strategy = strings.TrimSpace(*fc.Match.Strategy)
	}
	if fc.Match.Cutoff != nil {
		cfg.Match.Cutoff = *fc.Match.Cutoff
	}
	if fc.Match.CandidateSource != nil {
		cfg.Match.CandidateSource = strings.TrimSpace(*fc.Match.CandidateSource)
	}
	if fc.Library.Extensions != nil {
		cfg.Library.Extensions = append([]string{}, (*fc.Library.Extensions)...)
	}
	if fc.Report.Output != nil {
		cfg.Report.Output = strings.TrimSpace(*fc.Report.Output)
	}
	if fc.Report.DiagnosticsDir != nil {
		cfg.Report.DiagnosticsDir = strings.TrimSpace(*fc.Report.DiagnosticsDir)
	}
	if fc.Playlist.Name != nil {
		cfg.Playlist.Name = strings.TrimSpace(*fc.Playlist.Name)
	}
	if fc.Playlist.Public != nil {
		cfg.Playlist.Public = *fc.Playlist.Public
	}
	if fc.Playlist.RedirectURI != nil {
		cfg.Playlist.RedirectURI = strings.TrimSpace(*fc.Playlist.RedirectURI)
	}
	if fc.Playlist.TokenFile != nil {
		cfg.Playlist.TokenFile = strings.TrimSpace(*fc.Playlist.TokenFile)
	}

	return nil
}

func applyEnvOverrides(cfg *Config, env map[string]string) error {
	if value := strings.TrimSpace(env["SPOTDIFF_STATE_DIR"]); value != "" {
		cfg.Defaults.StateDir = value
	}
	if value := strings.TrimSpace(env["SPOTDIFF_MATCH_STRATEGY"]); value != "" {
		cfg.Match.Strategy = value
	}
	if value := strings.TrimSpace(env["SPOTDIFF_MATCH_CUTOFF"]); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid SPOTDIFF_MATCH_CUTOFF value %q: %w", value, err)
		}
		cfg.Match.Cutoff = parsed
	}
	if value := strings.TrimSpace(env["SPOTDIFF_CANDIDATE_SOURCE"]); value != "" {
		cfg.Match.CandidateSource = value
	}
	if value := strings.TrimSpace(env["SPOTDIFF_OUTPUT"]); value != "" {
		cfg.Report.Output = value
	}
	if value := strings.TrimSpace(env["SPOTDIFF_DIAGNOSTICS_DIR"]); value != "" {
		cfg.Report.DiagnosticsDir = value
	}
	if value := strings.TrimSpace(env["SPOTDIFF_PLAYLIST_REDIRECT_URI"]); value != "" {
		cfg.Playlist.RedirectURI = value
	}
	return nil
}

func normalize(cfg *Config) {
	cfg.Match.Strategy = strings.ToLower(strings.TrimSpace(cfg.Match.Strategy))
	cfg.Match.CandidateSource = strings.ToLower(strings.TrimSpace(cfg.Match.CandidateSource))
	extensions := make([]string, 0, len(cfg.Library.Extensions))
	for _, ext := range cfg.Library.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions = append(extensions, ext)
	}
	cfg.Library.Extensions = extensions
}

func osEnvMap() map[string]string {
	result := map[string]string{}
	for _, pair := range os.Environ() {
		pieces := strings.SplitN(pair, "=", 2)
		if len(pieces) == 2 {
			result[pieces[0]] = pieces[1]
		}
	}
	return result
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory %s: %w", dir, err)
	}
	return nil
}
