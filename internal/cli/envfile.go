package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var dotenvKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// dotEnvFiles are read in order; later files override earlier ones.
var dotEnvFiles = []string{".env", ".env.local"}

type dotEnvEntry struct {
	key   string
	value string
}

// loadDotEnvFiles exports the .env entries of cwd. Variables already present
// in environ are never overridden.
func loadDotEnvFiles(cwd string, environ []string, setenv func(string, string) error) error {
	if strings.TrimSpace(cwd) == "" {
		return nil
	}
	if setenv == nil {
		return fmt.Errorf("setenv is required")
	}

	protected := make(map[string]struct{}, len(environ))
	for _, pair := range environ {
		if key, _, ok := strings.Cut(pair, "="); ok {
			protected[key] = struct{}{}
		}
	}

	for _, name := range dotEnvFiles {
		path := filepath.Join(cwd, name)
		entries, err := readDotEnvFile(path)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if _, exists := protected[entry.key]; exists {
				continue
			}
			if err := setenv(entry.key, entry.value); err != nil {
				return fmt.Errorf("set %s from %s: %w", entry.key, path, err)
			}
		}
	}
	return nil
}

func readDotEnvFile(path string) ([]dotEnvEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer file.Close()

	entries, err := parseDotEnv(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s:%w", path, err)
	}
	return entries, nil
}

func parseDotEnv(r io.Reader) ([]dotEnvEntry, error) {
	entries := []dotEnvEntry{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		key, value, ok, err := parseDotEnvLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("%d: %w", lineNo, err)
		}
		if ok {
			entries = append(entries, dotEnvEntry{key: key, value: value})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return entries, nil
}

// parseDotEnvLine accepts KEY=VALUE with an optional "export " prefix. Values
// may be double-quoted (Go escapes), single-quoted (literal) or bare, where a
// " #" starts a trailing comment.
func parseDotEnvLine(raw string) (string, string, bool, error) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false, nil
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false, fmt.Errorf("expected KEY=VALUE format")
	}
	key = strings.TrimSpace(key)
	if !dotenvKeyPattern.MatchString(key) {
		return "", "", false, fmt.Errorf("invalid key %q", key)
	}
	value = strings.TrimSpace(value)

	switch {
	case len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"':
		decoded, err := strconv.Unquote(value)
		if err != nil {
			return "", "", false, fmt.Errorf("invalid quoted value for %q", key)
		}
		return key, decoded, true, nil
	case len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'':
		return key, value[1 : len(value)-1], true, nil
	}

	if idx := strings.Index(value, " #"); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	return key, value, true, nil
}
