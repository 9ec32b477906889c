// Package config loads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ironsheep/piece-finder-mcp/internal/matcher"
)

// Environment variable names.
const (
	EnvScaleFactor   = "PIECE_MCP_SCALE_FACTOR"
	EnvThreshold     = "PIECE_MCP_CONFIDENCE_THRESHOLD"
	EnvResample      = "PIECE_MCP_RESAMPLE"
	EnvWorkers       = "PIECE_MCP_WORKERS"
	EnvMaxSearchCost = "PIECE_MCP_MAX_SEARCH_COST"
	EnvMaxFileBytes  = "PIECE_MCP_MAX_FILE_BYTES"
	EnvLogLevel      = "PIECE_MCP_LOG_LEVEL"
	EnvDotenvFile    = "PIECE_MCP_ENV_FILE"
)

// Config holds the server settings.
type Config struct {
	// ScaleFactor is applied to both images before searching, in (0,1].
	ScaleFactor float64
	// ConfidenceThreshold: scores strictly above it count as a confident match.
	ConfidenceThreshold float64
	Resample            string
	Workers             int
	// MaxSearchCost caps pixel comparisons per match; 0 disables the cap.
	MaxSearchCost uint64
	MaxFileBytes  int64
	LogLevel      string
}

// Defaults returns the built-in settings.
func Defaults() *Config {
	return &Config{
		ScaleFactor:         0.5,
		ConfidenceThreshold: 0.5,
		Resample:            matcher.DefaultFilter,
		Workers:             0,
		MaxSearchCost:       0,
		MaxFileBytes:        20 << 20,
		LogLevel:            "info",
	}
}

// Load reads the optional .env file named by PIECE_MCP_ENV_FILE (default
// ".env" in the working directory) and then the environment. Variables
// already set in the environment win over the file. Unset or empty
// variables keep their defaults; values that do not parse are errors.
func Load() (*Config, error) {
	file := getEnv(EnvDotenvFile, ".env")
	if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	d := Defaults()
	cfg := &Config{
		Resample: getEnv(EnvResample, d.Resample),
		LogLevel: strings.ToLower(getEnv(EnvLogLevel, d.LogLevel)),
	}

	var errs [5]error
	cfg.ScaleFactor, errs[0] = getEnvFloat(EnvScaleFactor, d.ScaleFactor)
	cfg.ConfidenceThreshold, errs[1] = getEnvFloat(EnvThreshold, d.ConfidenceThreshold)
	cfg.Workers, errs[2] = getEnvInt(EnvWorkers, d.Workers)
	cfg.MaxSearchCost, errs[3] = getEnvUint(EnvMaxSearchCost, d.MaxSearchCost)
	cfg.MaxFileBytes, errs[4] = getEnvInt64(EnvMaxFileBytes, d.MaxFileBytes)
	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and the resample filter name.
func (c *Config) Validate() error {
	if err := matcher.ValidateScale(c.ScaleFactor); err != nil {
		return fmt.Errorf("%s: %w", EnvScaleFactor, err)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("%s: %g is outside [0,1]", EnvThreshold, c.ConfidenceThreshold)
	}
	if _, err := matcher.ParseFilter(c.Resample); err != nil {
		return fmt.Errorf("%s: %w", EnvResample, err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%s: must not be negative", EnvWorkers)
	}
	if c.MaxFileBytes <= 0 {
		return fmt.Errorf("%s: must be positive", EnvMaxFileBytes)
	}
	return nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool { return c.LogLevel == "debug" }

// MatcherOptions builds matcher options from the config. Call Validate first.
func (c *Config) MatcherOptions() matcher.Options {
	filter, _ := matcher.ParseFilter(c.Resample)
	return matcher.Options{Filter: filter, Workers: c.Workers}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return i, nil
}

func getEnvInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return i, nil
}

func getEnvUint(key string, def uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	u, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a non-negative integer", key, v)
	}
	return u, nil
}

func getEnvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, v)
	}
	return f, nil
}
