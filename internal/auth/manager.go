package auth

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Manager resolves account profiles to authorized tokens, running the
// consent flow on first use of a profile without a stored token.
type Manager struct {
	credentialsFile string
	scopes          []string
	profiles        map[string]string

	mu     sync.Mutex
	cfg    *oauth2.Config
	tokens map[string]*Token
}

// NewManager creates a Manager for the given credentials file and
// profile-name to token-file mapping.
func NewManager(credentialsFile string, scopes []string, profiles map[string]string) *Manager {
	return &Manager{
		credentialsFile: credentialsFile,
		scopes:          scopes,
		profiles:        profiles,
		tokens:          make(map[string]*Token),
	}
}

// Config parses the OAuth client configuration. Called lazily so a missing
// credentials file only fails once authentication is actually required.
func (m *Manager) Config() (*oauth2.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.configLocked()
}

func (m *Manager) configLocked() (*oauth2.Config, error) {
	if m.cfg != nil {
		return m.cfg, nil
	}

	raw, err := os.ReadFile(m.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf(
			"OAuth credentials file %s is missing or unreadable: %w; "+
				"download desktop-app credentials from the Google Cloud console and place them there",
			m.credentialsFile, err)
	}

	cfg, err := google.ConfigFromJSON(raw, m.scopes...)
	if err != nil {
		return nil, fmt.Errorf("google.ConfigFromJSON failed: %w", err)
	}
	m.cfg = cfg

	return cfg, nil
}

// Token returns an authorized token for the profile, running the local
// consent flow if no stored token exists. Unknown profiles fall back to
// "default".
func (m *Manager) Token(ctx context.Context, profile string) (*Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path, ok := m.profiles[profile]
	if !ok {
		profile = "default"
		path = m.profiles[profile]
	}

	if tok, ok := m.tokens[profile]; ok {
		return tok, nil
	}

	cfg, err := m.configLocked()
	if err != nil {
		return nil, err
	}

	tok, err := NewToken(cfg, path)
	if err != nil {
		return nil, fmt.Errorf("NewToken failed: %w", err)
	}

	if _, err := tok.OAuthToken(); err != nil {
		if err := Authorize(ctx, tok); err != nil {
			return nil, fmt.Errorf("consent flow for profile %q failed: %w", profile, err)
		}
		if err := tok.Persist(); err != nil {
			return nil, fmt.Errorf("tok.Persist failed: %w", err)
		}
	}

	m.tokens[profile] = tok

	return tok, nil
}

// PersistAll writes every cached token back to disk.
func (m *Manager) PersistAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for profile, tok := range m.tokens {
		if err := tok.Persist(); err != nil {
			return fmt.Errorf("persist profile %q failed: %w", profile, err)
		}
	}

	return nil
}

// DescribeState reports auth status per profile for the --dry-run output.
func (m *Manager) DescribeState() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, credsErr := os.Stat(m.credentialsFile)

	profiles := map[string]any{}
	for name, path := range m.profiles {
		_, err := os.Stat(path)
		profiles[name] = map[string]any{
			"token_path":        path,
			"token_file_exists": err == nil,
		}
	}

	return map[string]any{
		"credentials_path":        m.credentialsFile,
		"credentials_file_exists": credsErr == nil,
		"scopes":                  m.scopes,
		"profiles":                profiles,
	}
}
