// Package config loads runtime configuration from the environment and
// the operator's profile file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/hal9000y/mail-copilot/internal/observability"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultModel          = "gemini-flash-latest"
	DefaultUnreadLimit    = 10
	DefaultProcessedLabel = "AI-Processed"
	DefaultRecencyDays    = 7
	DefaultMaxRunsPerDay  = 20
	DefaultMaxRunsPerHour = 6
	DefaultRadioEndpoint  = "https://sveriges-radio.onrender.com/mcp"
	DefaultTimezone       = "Europe/Stockholm"
	DefaultPollInterval   = 60
)

// Config holds everything the copilot needs at startup. Profiles maps an
// operator-defined account name to its OAuth token file.
type Config struct {
	BaseDir         string
	CredentialsFile string
	Profiles        map[string]string
	GeminiModel     string
	GeminiAPIKey    string
	UnreadLimit     int
	ProcessedLabel  string
	RecencyDays     int
	SafetyFile      string
	MaxRunsPerDay   int
	MaxRunsPerHour  int
	RadioEndpoint   string
	Timezone        string
}

// Load reads env (optionally overlaid from envFile) and profiles.json under
// baseDir. A missing profiles.json yields the single "default" profile; a
// corrupt one is logged and replaced by the default, never fatal.
func Load(baseDir, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Overload(envFile); err != nil {
			return nil, fmt.Errorf("godotenv.Overload failed: %w", err)
		}
	} else if err := godotenv.Overload(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("godotenv.Overload failed: %w", err)
	}

	cfg := &Config{
		BaseDir:         baseDir,
		CredentialsFile: envOr("GOOGLE_CREDENTIALS_FILE", filepath.Join(baseDir, "credentials.json")),
		Profiles:        loadProfiles(baseDir),
		GeminiModel:     envOr("GEMINI_MODEL", DefaultModel),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		UnreadLimit:     envIntOr("UNREAD_LIMIT", DefaultUnreadLimit),
		ProcessedLabel:  envOr("PROCESSED_LABEL", DefaultProcessedLabel),
		RecencyDays:     envIntOr("RECENCY_DAYS", DefaultRecencyDays),
		SafetyFile:      envOr("SAFETY_FILE", filepath.Join(baseDir, "safety_usage.json")),
		MaxRunsPerDay:   envIntOr("SAFETY_MAX_RUNS_PER_DAY", DefaultMaxRunsPerDay),
		MaxRunsPerHour:  envIntOr("SAFETY_MAX_RUNS_PER_HOUR", DefaultMaxRunsPerHour),
		RadioEndpoint:   envOr("RADIO_MCP_URL", DefaultRadioEndpoint),
		Timezone:        envOr("CALENDAR_TIMEZONE", DefaultTimezone),
	}

	return cfg, nil
}

// ProfileNames returns the configured account profile names.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	return names
}

func loadProfiles(baseDir string) map[string]string {
	fallback := map[string]string{"default": filepath.Join(baseDir, "token.json")}

	raw, err := os.ReadFile(filepath.Join(baseDir, "profiles.json"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			observability.Logger().Warn("profiles.json unreadable, using default profile", "error", err)
		}
		return fallback
	}

	profiles := map[string]string{}
	if err := json.Unmarshal(raw, &profiles); err != nil {
		observability.Logger().Warn("profiles.json corrupt, using default profile", "error", err)
		return fallback
	}
	if len(profiles) == 0 {
		return fallback
	}

	return profiles
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		observability.Logger().Warn("invalid integer env value, using default", "key", key, "value", v)
		return fallback
	}

	return n
}
