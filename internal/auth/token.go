package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/oauth2"
)

const lockRetryDelay = 100 * time.Millisecond

// TokenStore persists an OAuth2 token as JSON so later runs can skip the
// browser authorization step.
type TokenStore struct {
	Path string
}

// Load returns nil without error when no token has been stored yet.
func (s TokenStore) Load() (*oauth2.Token, error) {
	path := strings.TrimSpace(s.Path)
	if path == "" {
		return nil, nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read token file %s: %w", path, err)
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(payload, token); err != nil {
		return nil, fmt.Errorf("decode token file %s: %w", path, err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, nil
	}
	return token, nil
}

func (s TokenStore) Save(token *oauth2.Token) error {
	path := strings.TrimSpace(s.Path)
	if path == "" || token == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("write token file %s: %w", path, err)
	}
	return nil
}

// Usable reports whether token can authorize requests, either directly or
// after a refresh.
func Usable(token *oauth2.Token) bool {
	if token == nil {
		return false
	}
	return token.Valid() || token.RefreshToken != ""
}

// Lock takes an exclusive lock next to the token file so concurrent runs do
// not refresh or rewrite the token at the same time. The returned func
// releases it.
func (s TokenStore) Lock(ctx context.Context) (func(), error) {
	path := strings.TrimSpace(s.Path)
	if path == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create token directory: %w", err)
	}
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock token file %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock token file %s: already locked", path)
	}
	return func() { _ = lock.Unlock() }, nil
}
