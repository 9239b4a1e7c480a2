// Package auth manages per-profile OAuth2 tokens and the local consent flow.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/hal9000y/mail-copilot/internal/observability"
)

// ErrTokenNotSet indicates no OAuth token is available for a profile.
var ErrTokenNotSet = errors.New("no token defined")

// Token manages one profile's OAuth2 token with thread-safe operations.
type Token struct {
	mu          sync.RWMutex
	cfg         *oauth2.Config
	token       *oauth2.Token
	persistPath string
	stateStore  map[string]time.Time
}

// NewToken creates a Token manager, loading from disk if the file exists.
// The config is copied so per-flow redirect URLs don't leak between profiles.
func NewToken(cfg *oauth2.Config, persistPath string) (*Token, error) {
	cfgCopy := *cfg
	t := &Token{
		cfg:         &cfgCopy,
		persistPath: persistPath,
		stateStore:  make(map[string]time.Time),
	}
	if persistPath == "" {
		return t, nil
	}

	f, err := os.Open(persistPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return t, nil
		}

		return nil, fmt.Errorf("os.Open failed: %w", err)
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		observability.Logger().Warn("token file corrupt, re-authentication required",
			"path", persistPath, "error", err)
		return t, nil
	}
	t.token = token

	return t, nil
}

// SetRedirectURL points the consent flow at the per-run localhost listener.
func (t *Token) SetRedirectURL(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cfg.RedirectURL = url
}

// AuthURL generates the OAuth2 authorization URL with a secure random state.
func (t *Token) AuthURL() (string, error) {
	state, err := t.generateState()
	if err != nil {
		return "", fmt.Errorf("generateState failed: %w", err)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

func (t *Token) generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read failed: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.stateStore[state] = now.Add(5 * time.Minute)

	for s, exp := range t.stateStore {
		if exp.Before(now) {
			delete(t.stateStore, s)
		}
	}

	return state, nil
}

func (t *Token) validateState(state string) bool {
	if state == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	expiry, exists := t.stateStore[state]
	if !exists {
		return false
	}

	delete(t.stateStore, state)

	return !time.Now().After(expiry)
}

// AuthorizeCode exchanges an authorization code for an access token after validating state.
func (t *Token) AuthorizeCode(ctx context.Context, code string, state string) error {
	if !t.validateState(state) {
		return errors.New("invalid or expired state parameter")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	tok, err := t.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("cfg.Exchange failed: %w", err)
	}

	t.token = tok

	return nil
}

// OAuthToken returns the current OAuth2 token.
func (t *Token) OAuthToken() (*oauth2.Token, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.token == nil {
		return nil, ErrTokenNotSet
	}

	return t.token, nil
}

// Update replaces the stored token, typically after a refresh.
func (t *Token) Update(tok *oauth2.Token) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.token = tok
}

// Persist saves the token to disk with temp-file-then-rename so an
// interrupt mid-write cannot corrupt the file.
func (t *Token) Persist() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.persistPath == "" || t.token == nil {
		return nil
	}

	raw, err := json.Marshal(t.token)
	if err != nil {
		return fmt.Errorf("json.Marshal failed: %w", err)
	}

	tmp := t.persistPath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("os.WriteFile failed: %w", err)
	}
	if err := os.Rename(tmp, t.persistPath); err != nil {
		return fmt.Errorf("os.Rename failed: %w", err)
	}

	return nil
}
