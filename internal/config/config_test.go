package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freshtrack/internal/expiry"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load("", envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "0 8 * * *", cfg.NotifySchedule)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, expiry.DefaultPolicy(), cfg.Policy)
	assert.Equal(t, 30*24*time.Hour, cfg.Retention())
}

func TestLoadEnvOverrides(t *testing.T) {
	cfg, err := load("", envOf(map[string]string{
		"PORT":               "9000",
		"JWT_SECRET":         "s3cret",
		"TOKEN_TTL":          "2h",
		"NOTIFY_SCHEDULE":    "off",
		"TZ_NAME":            "UTC",
		"CRITICAL_DAYS":      "1",
		"WARNING_DAYS":       "4",
		"ATTENTION_DAYS":     "14",
		"LOW_STOCK_DEFAULT":  "2.5",
		"NOTIFY_WINDOW_DAYS": "2",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Empty(t, cfg.NotifySchedule)
	assert.Equal(t, 1, cfg.Policy.CriticalDays)
	assert.Equal(t, 4, cfg.Policy.WarningDays)
	assert.Equal(t, 14, cfg.Policy.AttentionDays)
	assert.True(t, cfg.Policy.DefaultLowStock.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, 2, cfg.Policy.NotifyWindowDays)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freshtrack.yaml")
	yml := `
port: "7070"
token_ttl: 36h
policy:
  critical_days: 3
  warning_days: 6
  attention_days: 12
  default_low_stock: "1.5"
  retention_days: 14
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := load(path, envOf(map[string]string{"WARNING_DAYS": "7"}))
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 36*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 3, cfg.Policy.CriticalDays)
	assert.Equal(t, 7, cfg.Policy.WarningDays, "env wins over file")
	assert.Equal(t, 12, cfg.Policy.AttentionDays)
	assert.Equal(t, 14, cfg.Policy.RetentionDays)
	assert.True(t, cfg.Policy.DefaultLowStock.Equal(decimal.RequireFromString("1.5")))
	// untouched keys keep their defaults
	assert.Equal(t, expiry.DefaultSoonWindowDays, cfg.Policy.SoonWindowDays)
	assert.Equal(t, "freshtrack.db", cfg.DBDSN)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"non-increasing thresholds": {"CRITICAL_DAYS": "5", "WARNING_DAYS": "5"},
		"not a number":              {"ATTENTION_DAYS": "ten"},
		"bad duration":              {"TOKEN_TTL": "forever"},
		"bad decimal":               {"LOW_STOCK_DEFAULT": "lots"},
		"unknown zone":              {"TZ_NAME": "Mars/Olympus"},
		"zero retention":            {"RETENTION_DAYS": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := load("", envOf(env))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.yaml"), envOf(nil))
	assert.Error(t, err)
}
