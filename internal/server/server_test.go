// ABOUTME: Tests for the server runtime: construction, health endpoints, and shutdown
// ABOUTME: Uses an httptest upstream in place of the HurricaneSoft API

package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hurricanesoft/hs-console/internal/config"
)

// testConfig creates a minimal config pointing at apiURL with an available port.
func testConfig(t *testing.T, apiURL string) *config.Config {
	t.Helper()

	httpListener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find available HTTP port: %v", err)
	}
	httpAddr := httpListener.Addr().String()
	httpListener.Close()

	return &config.Config{
		Server: config.ServerConfig{HTTPAddr: httpAddr},
		API: config.APIConfig{
			BaseURL: apiURL,
			Timeout: 2 * time.Second,
		},
		Auth:    config.AuthConfig{SessionDuration: time.Hour},
		Polling: config.PollingConfig{Interval: time.Hour},
	}
}

// testLogger creates a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func versionAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/version" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"name":"hurricanesoft","version":"2.1","endpoints":["/api/todo/list"]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestServerNew(t *testing.T) {
	cfg := testConfig(t, "http://api.invalid")

	s, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Shutdown(context.Background())

	if s.config != cfg {
		t.Error("server config mismatch")
	}
	if s.sessions == nil || s.console == nil || s.submits == nil {
		t.Error("components should not be nil")
	}
	if s.ConsoleURL() != "http://"+cfg.Server.HTTPAddr {
		t.Errorf("ConsoleURL() = %q", s.ConsoleURL())
	}
}

func TestServerRunAndShutdown(t *testing.T) {
	cfg := testConfig(t, versionAPI(t).URL)

	s, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Run(ctx)
	}()

	// Give it time to start
	time.Sleep(100 * time.Millisecond)

	resp, err := http.Get("http://" + cfg.Server.HTTPAddr + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Run() returned unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("server did not shutdown in time")
	}
}

func TestRun_ListenError(t *testing.T) {
	cfg := testConfig(t, "http://api.invalid")

	busy, err := net.Listen("tcp", cfg.Server.HTTPAddr)
	if err != nil {
		t.Fatalf("failed to occupy port: %v", err)
	}
	defer busy.Close()

	s, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Shutdown(context.Background())

	if err := s.Run(t.Context()); err == nil {
		t.Error("Run() should fail when the address is taken")
	}
}

func TestReadyEndpoint(t *testing.T) {
	cfg := testConfig(t, versionAPI(t).URL)
	s, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Shutdown(context.Background())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := rec.Body.String(); !strings.Contains(body, "hurricanesoft 2.1") {
		t.Errorf("ready body = %q", body)
	}
}

func TestReadyEndpoint_UpstreamDown(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	url := down.URL
	down.Close()

	s, err := New(testConfig(t, url), testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Shutdown(context.Background())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestConsoleRoutesMounted(t *testing.T) {
	s, err := New(testConfig(t, "http://api.invalid"), testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Shutdown(context.Background())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("login status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("shell without session = %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestDetermineConsoleURL(t *testing.T) {
	t.Setenv("HS_CONSOLE_URL", "")

	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "explicit",
			cfg:  config.Config{Console: config.ConsoleConfig{BaseURL: "https://console.example.com"}},
			want: "https://console.example.com",
		},
		{
			name: "tcp",
			cfg:  config.Config{Server: config.ServerConfig{HTTPAddr: "localhost:8080"}},
			want: "http://localhost:8080",
		},
		{
			name: "tailscale http",
			cfg:  config.Config{Tailscale: config.TailscaleConfig{Enabled: true, Hostname: "hs"}},
			want: "http://hs",
		},
		{
			name: "tailscale https",
			cfg:  config.Config{Tailscale: config.TailscaleConfig{Enabled: true, Hostname: "hs", HTTPS: true}},
			want: "https://hs",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineConsoleURL(&tt.cfg); got != tt.want {
				t.Errorf("determineConsoleURL() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Setenv("HS_CONSOLE_URL", "https://hs.tailnet.ts.net")
	if got := determineConsoleURL(&config.Config{}); got != "https://hs.tailnet.ts.net" {
		t.Errorf("env override = %q", got)
	}
}

func TestResolveTailscaleSettings(t *testing.T) {
	dir, err := resolveTailscaleStateDir("/var/lib/hs")
	if err != nil || dir != "/var/lib/hs" {
		t.Errorf("configured state dir = %q, %v", dir, err)
	}

	t.Setenv("HOME", t.TempDir())
	dir, err = resolveTailscaleStateDir("")
	if err != nil {
		t.Fatalf("default state dir: %v", err)
	}
	if !strings.HasSuffix(dir, filepath.Join("hs-console", "tailscale")) {
		t.Errorf("default state dir = %q", dir)
	}

	t.Setenv("TS_AUTHKEY", "")
	if _, err := resolveTailscaleAuthKey(""); err == nil {
		t.Error("missing auth key should fail")
	}
	t.Setenv("TS_AUTHKEY", "tskey-env")
	if key, _ := resolveTailscaleAuthKey(""); key != "tskey-env" {
		t.Errorf("auth key from env = %q", key)
	}
	if key, _ := resolveTailscaleAuthKey("tskey-cfg"); key != "tskey-cfg" {
		t.Errorf("configured auth key = %q", key)
	}
}

func TestSessionSecret(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{SessionSecret: "fixed"}}
	secret, err := sessionSecret(cfg, testLogger())
	if err != nil || string(secret) != "fixed" {
		t.Errorf("configured secret = %q, %v", secret, err)
	}

	a, _ := sessionSecret(&config.Config{}, testLogger())
	b, _ := sessionSecret(&config.Config{}, testLogger())
	if len(a) != 32 || string(a) == string(b) {
		t.Error("random secrets should be 32 bytes and differ")
	}
}
