package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func UserConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); strings.TrimSpace(xdg) != "" {
		return filepath.Join(xdg, "spotdiff", "config.yaml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "spotdiff", "config.yaml"), nil
}

func ProjectConfigPath(cwd string) string {
	return filepath.Join(cwd, "spotdiff.yaml")
}

func defaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); strings.TrimSpace(xdg) != "" {
		return filepath.Join(xdg, "spotdiff")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./.spotdiff-state"
	}
	return filepath.Join(home, ".local", "state", "spotdiff")
}

func ExpandPath(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	expanded := os.ExpandEnv(strings.TrimSpace(raw))
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~/"))
	}

	return filepath.Clean(expanded), nil
}

// ResolveStateFile places a relative state file under the state directory;
// absolute paths are returned as-is.
func ResolveStateFile(defaultStateDir string, stateFile string) (string, error) {
	expandedStateFile, err := ExpandPath(stateFile)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expandedStateFile) {
		return expandedStateFile, nil
	}

	expandedStateDir, err := ExpandPath(defaultStateDir)
	if err != nil {
		return "", err
	}

	return filepath.Clean(filepath.Join(expandedStateDir, expandedStateFile)), nil
}
