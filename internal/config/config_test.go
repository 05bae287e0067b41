// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, "console.yaml", `
server:
  http_addr: "0.0.0.0:8080"

api:
  base_url: "http://127.0.0.1:9000/"
  timeout: "5s"

auth:
  session_secret: "shhh"
  session_duration: "2h"

polling:
  interval: "10s"

logging:
  level: "debug"
  format: "json"

console:
  base_url: "https://console.example.com"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:8080")
	}
	if cfg.API.BaseURL != "http://127.0.0.1:9000" {
		t.Errorf("API.BaseURL = %q, want trailing slash trimmed", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("API.Timeout = %v, want %v", cfg.API.Timeout, 5*time.Second)
	}
	if cfg.Auth.SessionSecret != "shhh" {
		t.Errorf("Auth.SessionSecret = %q, want %q", cfg.Auth.SessionSecret, "shhh")
	}
	if cfg.Auth.SessionDuration != 2*time.Hour {
		t.Errorf("Auth.SessionDuration = %v, want %v", cfg.Auth.SessionDuration, 2*time.Hour)
	}
	if cfg.Polling.Interval != 10*time.Second {
		t.Errorf("Polling.Interval = %v, want %v", cfg.Polling.Interval, 10*time.Second)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
	if cfg.Console.BaseURL != "https://console.example.com" {
		t.Errorf("Console.BaseURL = %q", cfg.Console.BaseURL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, "console.yaml", `
server:
  http_addr: ":8080"
api:
  base_url: "http://api.local"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Timeout != DefaultAPITimeout {
		t.Errorf("API.Timeout = %v, want %v", cfg.API.Timeout, DefaultAPITimeout)
	}
	if cfg.Auth.SessionDuration != DefaultSessionDuration {
		t.Errorf("Auth.SessionDuration = %v, want %v", cfg.Auth.SessionDuration, DefaultSessionDuration)
	}
	if cfg.Polling.Interval != 8*time.Second {
		t.Errorf("Polling.Interval = %v, want 8s", cfg.Polling.Interval)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad_TOML(t *testing.T) {
	configPath := writeConfig(t, "console.toml", `
[server]
http_addr = "127.0.0.1:8081"

[api]
base_url = "https://api.example.com"
timeout = "3s"

[polling]
interval = "30s"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "127.0.0.1:8081" {
		t.Errorf("Server.HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Errorf("API.Timeout = %v, want 3s", cfg.API.Timeout)
	}
	if cfg.Polling.Interval != 30*time.Second {
		t.Errorf("Polling.Interval = %v, want 30s", cfg.Polling.Interval)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_HS_API", "http://from-env:9000")
	t.Setenv("TEST_HS_SECRET", "secret-from-env")

	configPath := writeConfig(t, "console.yaml", `
server:
  http_addr: ":8080"
api:
  base_url: "${TEST_HS_API}"
auth:
  session_secret: "${TEST_HS_SECRET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "http://from-env:9000" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "http://from-env:9000")
	}
	if cfg.Auth.SessionSecret != "secret-from-env" {
		t.Errorf("Auth.SessionSecret = %q, want %q", cfg.Auth.SessionSecret, "secret-from-env")
	}
}

func TestLoad_EnvVarExpansion_UnsetVar(t *testing.T) {
	os.Unsetenv("UNSET_VAR_FOR_TEST")

	configPath := writeConfig(t, "console.yaml", `
server:
  http_addr: ":8080"
api:
  base_url: "http://api.local"
auth:
  session_secret: "${UNSET_VAR_FOR_TEST}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.SessionSecret != "" {
		t.Errorf("Auth.SessionSecret = %q, want empty string", cfg.Auth.SessionSecret)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, "console.yaml", `
server:
  http_addr: ":8080"
api:
  base_url: "http://api.local"
polling:
  interval: "soon"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "polling.interval") {
		t.Errorf("error = %v, want mention of polling.interval", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
	if !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("error = %v, want reading config file", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:  ServerConfig{HTTPAddr: ":8080"},
			API:     APIConfig{BaseURL: "http://api.local"},
			Polling: PollingConfig{Interval: 8 * time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing base url", mutate: func(c *Config) { c.API.BaseURL = "" }, wantErr: "api.base_url is required"},
		{name: "bad scheme", mutate: func(c *Config) { c.API.BaseURL = "ftp://api.local" }, wantErr: "http or https"},
		{name: "no host", mutate: func(c *Config) { c.API.BaseURL = "http://" }, wantErr: "must include a host"},
		{name: "missing http addr", mutate: func(c *Config) { c.Server.HTTPAddr = "" }, wantErr: "server.http_addr"},
		{
			name: "tailscale replaces http addr",
			mutate: func(c *Config) {
				c.Server.HTTPAddr = ""
				c.Tailscale = TailscaleConfig{Enabled: true, Hostname: "hs-console"}
			},
		},
		{
			name:    "tailscale needs hostname",
			mutate:  func(c *Config) { c.Tailscale.Enabled = true },
			wantErr: "tailscale.hostname",
		},
		{name: "poll too fast", mutate: func(c *Config) { c.Polling.Interval = 10 * time.Millisecond }, wantErr: "polling.interval"},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HS_CONSOLE_CONFIG", "/etc/hs/console.yaml")
	if got := DefaultPath(); got != "/etc/hs/console.yaml" {
		t.Errorf("DefaultPath() = %q, want env override", got)
	}

	t.Setenv("HS_CONSOLE_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultPath(); got != filepath.Join("/tmp/xdg", "hurricanesoft", "console.yaml") {
		t.Errorf("DefaultPath() = %q, want XDG path", got)
	}
}
