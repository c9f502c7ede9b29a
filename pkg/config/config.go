// Package config loads patchbay settings from a YAML file, an optional
// .env file and PATCHBAY_* environment variables, in that order of
// increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-patchbay/pkg/events"
	"github.com/dd0wney/cluso-patchbay/pkg/logging"
	"github.com/dd0wney/cluso-patchbay/pkg/validation"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PATCHBAY_"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Config holds the process settings.
type Config struct {
	LogLevel       string `yaml:"log_level" validate:"required"`
	ValidationMode string `yaml:"validation_mode" validate:"required"`
	// SchemasFile is an optional YAML overlay of port schemas.
	SchemasFile string `yaml:"schemas_file"`
	// MetricsAddr enables the Prometheus endpoint when set, e.g. ":9090".
	MetricsAddr string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
	EventBuffer int    `yaml:"event_buffer" validate:"gte=1,lte=65536"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:       "info",
		ValidationMode: string(validation.ModeStrict),
		EventBuffer:    events.DefaultBuffer,
	}
}

// Load reads path (if non-empty), then the .env files (missing ones are
// skipped), then the environment, and validates the result.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(bytes.NewReader(data)); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := loadEnvFiles(envFiles...); err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes YAML from r over the defaults and validates the result.
// The environment is not consulted.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	if err := cfg.decode(r); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// loadEnvFiles loads each existing file into the process environment.
// Variables already set win over the files.
func loadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from PATCHBAY_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str("LOG_LEVEL", &c.LogLevel)
	str("VALIDATION_MODE", &c.ValidationMode)
	str("SCHEMAS_FILE", &c.SchemasFile)
	str("METRICS_ADDR", &c.MetricsAddr)

	if v, ok := lookup(EnvPrefix + "EVENT_BUFFER"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %sEVENT_BUFFER: %v", ErrInvalidConfig, EnvPrefix, err)
		}
		c.EventBuffer = n
	}
	return nil
}

// Validate checks field formats with struct tags and the cross-package
// rules with a Checker.
func (c Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				errs = append(errs, fmt.Errorf("config.%s: failed %q", fe.Field(), fe.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	check := NewChecker("config").
		OneOf("LogLevel", strings.ToLower(c.LogLevel), logLevels).
		OneOf("ValidationMode", c.ValidationMode, validation.Modes()).
		When(c.SchemasFile != "", func(ch *Checker) {
			ch.Custom("SchemasFile", func() error {
				_, err := os.Stat(c.SchemasFile)
				return err
			})
		})
	errs = append(errs, check.Errors()...)

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Level returns the configured log level.
func (c Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}

// Validator returns the validator preset for the configured mode.
func (c Config) Validator() (*validation.Validator, error) {
	return validation.ForMode(validation.Mode(DefaultOr(c.ValidationMode, string(validation.ModeStrict))))
}
