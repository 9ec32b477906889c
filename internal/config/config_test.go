package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate points the .env lookup at an empty temp dir and clears every
// setting so the host environment cannot leak into a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(EnvDotenvFile, filepath.Join(t.TempDir(), "missing.env"))
	for _, k := range []string{EnvScaleFactor, EnvThreshold, EnvResample, EnvWorkers,
		EnvMaxSearchCost, EnvMaxFileBytes, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Defaults()
	if *cfg != *want {
		t.Errorf("got %+v, want %+v", *cfg, *want)
	}
	if cfg.Debug() {
		t.Error("debug should be off by default")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvScaleFactor, "0.25")
	t.Setenv(EnvThreshold, "0.8")
	t.Setenv(EnvResample, "lanczos")
	t.Setenv(EnvWorkers, "4")
	t.Setenv(EnvMaxSearchCost, "1000000")
	t.Setenv(EnvMaxFileBytes, "1024")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ScaleFactor != 0.25 {
		t.Errorf("ScaleFactor: got %v, want 0.25", cfg.ScaleFactor)
	}
	if cfg.ConfidenceThreshold != 0.8 {
		t.Errorf("ConfidenceThreshold: got %v, want 0.8", cfg.ConfidenceThreshold)
	}
	if cfg.Resample != "lanczos" {
		t.Errorf("Resample: got %s, want lanczos", cfg.Resample)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers: got %d, want 4", cfg.Workers)
	}
	if cfg.MaxSearchCost != 1000000 {
		t.Errorf("MaxSearchCost: got %d, want 1000000", cfg.MaxSearchCost)
	}
	if cfg.MaxFileBytes != 1024 {
		t.Errorf("MaxFileBytes: got %d, want 1024", cfg.MaxFileBytes)
	}
	if !cfg.Debug() {
		t.Error("debug should be on")
	}
	if cfg.MatcherOptions().Workers != 4 {
		t.Errorf("MatcherOptions.Workers: got %d, want 4", cfg.MatcherOptions().Workers)
	}
}

func TestLoad_Unparseable(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvScaleFactor, "half"},
		{EnvThreshold, "high"},
		{EnvWorkers, "many"},
		{EnvWorkers, "1.5"},
		{EnvMaxSearchCost, "-1"},
		{EnvMaxFileBytes, "20MB"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			if err == nil {
				t.Fatalf("expected error, got %+v", cfg)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error should name %s: %v", tt.key, err)
			}
		})
	}
}

func TestLoad_UnparseableReportsAll(t *testing.T) {
	isolate(t)
	t.Setenv(EnvScaleFactor, "half")
	t.Setenv(EnvWorkers, "many")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{EnvScaleFactor, EnvWorkers} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error should name %s: %v", key, err)
		}
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"scale zero", EnvScaleFactor, "0"},
		{"scale above one", EnvScaleFactor, "1.5"},
		{"threshold above one", EnvThreshold, "2"},
		{"threshold negative", EnvThreshold, "-0.1"},
		{"unknown filter", EnvResample, "sharpest"},
		{"negative workers", EnvWorkers, "-2"},
		{"zero file size", EnvMaxFileBytes, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_DotenvFile(t *testing.T) {
	isolate(t)
	// The file can only fill variables that are absent, so drop the empty
	// placeholder for the one under test.
	os.Unsetenv(EnvThreshold)
	t.Cleanup(func() { os.Unsetenv(EnvThreshold) })

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte(EnvThreshold+"=0.9\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv(EnvDotenvFile, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ConfidenceThreshold != 0.9 {
		t.Errorf("ConfidenceThreshold: got %v, want 0.9", cfg.ConfidenceThreshold)
	}
}

func TestLoad_DotenvUnreadable(t *testing.T) {
	isolate(t)
	// A directory cannot be parsed as an env file.
	t.Setenv(EnvDotenvFile, t.TempDir())

	if _, err := Load(); err == nil {
		t.Error("expected error for unreadable env file")
	}
}
