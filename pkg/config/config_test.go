package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-patchbay/pkg/events"
	"github.com/dd0wney/cluso-patchbay/pkg/logging"
	"github.com/dd0wney/cluso-patchbay/pkg/validation"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, events.DefaultBuffer, cfg.EventBuffer)
	assert.Equal(t, logging.InfoLevel, cfg.Level())

	v, err := cfg.Validator()
	require.NoError(t, err)
	assert.Same(t, validation.Strict, v)
}

func TestParse(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
log_level: debug
validation_mode: no-cycle
metrics_addr: ":9090"
event_buffer: 16
`))
	require.NoError(t, err)
	assert.Equal(t, logging.DebugLevel, cfg.Level())
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, 16, cfg.EventBuffer)

	v, err := cfg.Validator()
	require.NoError(t, err)
	assert.Same(t, validation.NoCycle, v)
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("log_levle: debug\n"))
	assert.Error(t, err)
}

func TestValidateFailures(t *testing.T) {
	cases := map[string]func(*Config){
		"mode":         func(c *Config) { c.ValidationMode = "loose" },
		"level":        func(c *Config) { c.LogLevel = "chatty" },
		"buffer":       func(c *Config) { c.EventBuffer = 0 },
		"metrics addr": func(c *Config) { c.MetricsAddr = "not an address" },
		"schemas file": func(c *Config) { c.SchemasFile = filepath.Join(t.TempDir(), "missing.yaml") },
		"empty level":  func(c *Config) { c.LogLevel = "" },
		"empty mode":   func(c *Config) { c.ValidationMode = "" },
		"huge buffer":  func(c *Config) { c.EventBuffer = 1 << 20 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PATCHBAY_LOG_LEVEL":       " warn ",
		"PATCHBAY_VALIDATION_MODE": "permissive",
		"PATCHBAY_EVENT_BUFFER":    "32",
	}
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "permissive", cfg.ValidationMode)
	assert.Equal(t, 32, cfg.EventBuffer)

	bad := Default()
	err := bad.ApplyEnv(func(k string) (string, bool) {
		if k == "PATCHBAY_EVENT_BUFFER" {
			return "lots", true
		}
		return "", false
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	unchanged := Default()
	require.NoError(t, unchanged.ApplyEnv(noEnv))
	assert.Equal(t, Default(), unchanged)
}

func TestLoadLayers(t *testing.T) {
	schemas := writeFile(t, "schemas.yaml", "schemas: []\n")
	path := writeFile(t, "patchbay.yaml", "log_level: error\nschemas_file: "+schemas+"\n")
	envFile := writeFile(t, ".env", "PATCHBAY_VALIDATION_MODE=permissive\n")

	t.Setenv("PATCHBAY_LOG_LEVEL", "debug")
	// godotenv never overrides variables that are already set; make sure
	// the mode is unset so the file can supply it.
	t.Setenv("PATCHBAY_VALIDATION_MODE", "")
	require.NoError(t, os.Unsetenv("PATCHBAY_VALIDATION_MODE"))

	cfg, err := Load(path, envFile, filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "environment beats the file")
	assert.Equal(t, "permissive", cfg.ValidationMode, ".env fills the gap")
	assert.Equal(t, schemas, cfg.SchemasFile)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
