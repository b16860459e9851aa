package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/osamarehman/hex-docs/internal/config"
	"github.com/osamarehman/hex-docs/pkg/constants"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), config.ServerConfig{}, config.LoggingConfig{})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
	if cfg.BodySizeBytes() != constants.DefaultMaxBodySizeBytes {
		t.Fatalf("expected default max body size, got %d", cfg.BodySizeBytes())
	}
	if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
		t.Fatalf("expected empty logging defaults, got %+v", cfg.Logging)
	}
}

func TestLoadConfigKeepsBase(t *testing.T) {
	base := config.ServerConfig{Address: ":7070", MaxBodySize: "64K"}
	logging := config.LoggingConfig{Level: "warn"}

	cfg, err := LoadConfig("", base, logging)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Address != ":7070" {
		t.Fatalf("expected base address, got %s", cfg.Address)
	}
	if cfg.BodySizeBytes() != 64*1024 {
		t.Fatalf("expected base body size, got %d", cfg.BodySizeBytes())
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected base logging level, got %s", cfg.Logging.Level)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server-config.yaml")

	contents := []byte(`address: 127.0.0.1:9000
maxBodySize: 2M
logging:
  level: debug
  format: console
  outputFile: /tmp/server.log
`)
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path, config.ServerConfig{Address: ":8080", MaxBodySize: "1K"}, config.LoggingConfig{Level: "info"})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.BodySizeBytes() != 2*1024*1024 {
		t.Fatalf("expected max body override, got %d", cfg.BodySizeBytes())
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected logging format console, got %s", cfg.Logging.Format)
	}
	if cfg.Logging.OutputFile != "/tmp/server.log" {
		t.Fatalf("expected logging outputFile /tmp/server.log, got %s", cfg.Logging.OutputFile)
	}
}

func TestLoadConfigInvalidSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")

	if err := os.WriteFile(path, []byte("maxBodySize: invalid"), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	if _, err := LoadConfig(path, config.ServerConfig{}, config.LoggingConfig{}); err == nil {
		t.Fatal("expected error for invalid size but got nil")
	}
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(config.ServerConfig{MaxBodySize: "512"}, config.LoggingConfig{})
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	if cfg.BodySizeBytes() != 512 {
		t.Fatalf("expected 512 bytes, got %d", cfg.BodySizeBytes())
	}

	cfg.SetBodySizeBytes(4096)
	if cfg.BodySizeBytes() != 4096 || cfg.MaxBodySize != "4096" {
		t.Fatalf("expected override to 4096, got %d (%s)", cfg.BodySizeBytes(), cfg.MaxBodySize)
	}
	cfg.SetBodySizeBytes(0)
	if cfg.BodySizeBytes() != 4096 {
		t.Fatalf("expected zero override to be ignored, got %d", cfg.BodySizeBytes())
	}

	if _, err := NewConfig(config.ServerConfig{MaxBodySize: "5X"}, config.LoggingConfig{}); err == nil {
		t.Fatal("expected error for unsupported unit")
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxBodySizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"2G":        2 * 1024 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("ParseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("ParseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	for _, input := range []string{"1TB", "abc", "-5K", "99999999999G"} {
		if _, err := ParseSize(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}
