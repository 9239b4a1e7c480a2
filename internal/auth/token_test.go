package auth_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/hal9000y/mail-copilot/internal/auth"
)

func testOAuthCfg() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scopes:       []string{"scope"},
	}
}

func TestTokenPersistRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	tok, err := auth.NewToken(testOAuthCfg(), path)
	require.NoError(t, err)

	_, err = tok.OAuthToken()
	require.ErrorIs(t, err, auth.ErrTokenNotSet)

	tok.Update(&oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	})
	require.NoError(t, tok.Persist())

	reloaded, err := auth.NewToken(testOAuthCfg(), path)
	require.NoError(t, err)

	got, err := reloaded.OAuthToken()
	require.NoError(t, err)
	assert.Equal(t, "access", got.AccessToken)
	assert.Equal(t, "refresh", got.RefreshToken)
}

func TestTokenCorruptFileRequiresReauth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	tok, err := auth.NewToken(testOAuthCfg(), path)
	require.NoError(t, err)

	_, err = tok.OAuthToken()
	assert.ErrorIs(t, err, auth.ErrTokenNotSet)
}

func TestTokenPersistWithoutTokenWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	tok, err := auth.NewToken(testOAuthCfg(), path)
	require.NoError(t, err)
	require.NoError(t, tok.Persist())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestTokenPersistFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	tok, err := auth.NewToken(testOAuthCfg(), path)
	require.NoError(t, err)
	tok.Update(&oauth2.Token{AccessToken: "access"})
	require.NoError(t, tok.Persist())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var stored oauth2.Token
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "access", stored.AccessToken)
}

func TestAuthorizeCodeRejectsUnknownState(t *testing.T) {
	tok, err := auth.NewToken(testOAuthCfg(), "")
	require.NoError(t, err)

	err = tok.AuthorizeCode(context.Background(), "code", "forged-state")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state")
}
