package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/mail-copilot/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("UNREAD_LIMIT", "")
	t.Setenv("PROCESSED_LABEL", "")

	dir := t.TempDir()

	cfg, err := config.Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultModel, cfg.GeminiModel)
	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, config.DefaultUnreadLimit, cfg.UnreadLimit)
	assert.Equal(t, "AI-Processed", cfg.ProcessedLabel)
	assert.Equal(t, config.DefaultRecencyDays, cfg.RecencyDays)
	assert.Equal(t, config.DefaultMaxRunsPerDay, cfg.MaxRunsPerDay)
	assert.Equal(t, config.DefaultMaxRunsPerHour, cfg.MaxRunsPerHour)
	assert.Equal(t, config.DefaultRadioEndpoint, cfg.RadioEndpoint)
	assert.Equal(t, "Europe/Stockholm", cfg.Timezone)
	assert.Equal(t, filepath.Join(dir, "credentials.json"), cfg.CredentialsFile)

	// No profiles.json means a single default profile.
	assert.Equal(t, map[string]string{"default": filepath.Join(dir, "token.json")}, cfg.Profiles)
	assert.Equal(t, []string{"default"}, cfg.ProfileNames())
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()

	envFile := filepath.Join(dir, "copilot.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"GEMINI_MODEL=gemini-2.5-pro\nUNREAD_LIMIT=3\nSAFETY_MAX_RUNS_PER_DAY=5\n",
	), 0o600))

	cfg, err := config.Load(dir, envFile)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-pro", cfg.GeminiModel)
	assert.Equal(t, 3, cfg.UnreadLimit)
	assert.Equal(t, 5, cfg.MaxRunsPerDay)
}

func TestLoadProfilesFile(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles.json"), []byte(
		`{"default": "/tokens/default.json", "family": "/tokens/family.json"}`,
	), 0o600))

	cfg, err := config.Load(dir, "")
	require.NoError(t, err)

	assert.Len(t, cfg.Profiles, 2)
	assert.Equal(t, "/tokens/family.json", cfg.Profiles["family"])
}

func TestLoadCorruptProfilesFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles.json"), []byte("{broken"), 0o600))

	cfg, err := config.Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"default": filepath.Join(dir, "token.json")}, cfg.Profiles)
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("UNREAD_LIMIT", "many")

	cfg, err := config.Load(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultUnreadLimit, cfg.UnreadLimit)
}
