// ABOUTME: Server runtime that wires the API client, sessions, and console behind one HTTP server
// ABOUTME: Manages TCP or Tailscale listeners, health endpoints, and graceful shutdown

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/hurricanesoft/hs-console/internal/auth"
	"github.com/hurricanesoft/hs-console/internal/client"
	"github.com/hurricanesoft/hs-console/internal/config"
	"github.com/hurricanesoft/hs-console/internal/console"
	"github.com/hurricanesoft/hs-console/internal/dedupe"
	"github.com/hurricanesoft/hs-console/internal/session"
	"github.com/hurricanesoft/hs-console/internal/views"
)

// readyTimeout bounds the upstream check behind /health/ready.
const readyTimeout = 3 * time.Second

// Server orchestrates the hs-console components.
type Server struct {
	config      *config.Config
	api         *client.Client
	sessions    *session.Supervisor
	console     *console.Console
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	logger      *slog.Logger

	// submits drops duplicated form submissions
	submits *dedupe.Cache

	// consoleURL is the external URL users open
	consoleURL string
}

// determineConsoleURL resolves the console URL from config or environment.
func determineConsoleURL(cfg *config.Config) string {
	// Use explicit config first
	if cfg.Console.BaseURL != "" {
		return cfg.Console.BaseURL
	}

	// HS_CONSOLE_URL may carry the full tailnet DNS name
	if envURL := os.Getenv("HS_CONSOLE_URL"); envURL != "" {
		return envURL
	}

	if !cfg.Tailscale.Enabled {
		return "http://" + cfg.Server.HTTPAddr
	}
	if cfg.Tailscale.HTTPS || cfg.Tailscale.Funnel {
		return "https://" + cfg.Tailscale.Hostname
	}
	return "http://" + cfg.Tailscale.Hostname
}

// sessionSecret returns the configured cookie secret or a random one.
// Sessions live in memory, so a per-process secret loses nothing on restart.
func sessionSecret(cfg *config.Config, logger *slog.Logger) ([]byte, error) {
	if cfg.Auth.SessionSecret != "" {
		return []byte(cfg.Auth.SessionSecret), nil
	}
	logger.Debug("auth.session_secret not set, using a random per-process secret")
	return auth.RandomSecret(32)
}

// New creates a new Server with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	api := client.New(cfg.API.BaseURL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithUserAgent("hs-console"),
	)

	secret, err := sessionSecret(cfg, logger)
	if err != nil {
		return nil, err
	}

	sessions := session.NewSupervisor(api, session.Options{
		PollInterval: cfg.Polling.Interval,
		TTL:          cfg.Auth.SessionDuration,
	}, logger.With("component", "sessions"))

	renderer, err := views.NewRenderer(api, logger.With("component", "views"))
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	router := views.NewRouter(renderer, logger.With("component", "router"))

	submits := dedupe.New(5*time.Minute, 10_000, time.Minute)

	consoleURL := determineConsoleURL(cfg)
	c, err := console.New(sessions, router, api, auth.NewSigner(secret), submits, console.Config{
		BaseURL:         consoleURL,
		SessionDuration: cfg.Auth.SessionDuration,
	})
	if err != nil {
		submits.Close()
		return nil, fmt.Errorf("creating console: %w", err)
	}

	s := &Server{
		config:     cfg,
		api:        api,
		sessions:   sessions,
		console:    c,
		submits:    submits,
		consoleURL: consoleURL,
		logger:     logger.With("component", "server"),
	}

	mux := http.NewServeMux()

	// Health endpoints - no session required
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/ready", s.handleReady)

	c.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ConsoleURL returns the external URL of the console.
func (s *Server) ConsoleURL() string {
	return s.consoleURL
}

// setupTCPListener creates a standard TCP listener for HTTP.
func (s *Server) setupTCPListener() (net.Listener, error) {
	s.logger.Info("starting console", "http_addr", s.config.Server.HTTPAddr, "api", s.config.API.BaseURL)

	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// setupListener creates a listener based on configuration (Tailscale or TCP).
func (s *Server) setupListener(ctx context.Context) (net.Listener, error) {
	if s.config.Tailscale.Enabled {
		if s.config.Server.HTTPAddr != "" {
			s.logger.Warn("server.http_addr is ignored when tailscale is enabled", "http_addr", s.config.Server.HTTPAddr)
		}
		return s.setupTailscaleListener(ctx)
	}
	return s.setupTCPListener()
}

// Run starts the HTTP server and the session sweeper and blocks until the
// context is canceled. Returns nil on graceful shutdown, or an error if the
// server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.setupListener(ctx)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String(), "url", s.consoleURL)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		s.sessions.Run(sweepCtx)
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	stopSweep()
	<-sweepDone

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// The original context is already canceled at this point.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "hs-console", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable")
	}
	return authKey, nil
}

// setupTailscaleListener starts a tsnet node and returns its HTTP listener.
func (s *Server) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := s.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	s.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	s.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := s.tsnetServer.Up(ctx)
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}

	s.logTailscaleStatus(tsCfg.Hostname, status)
	s.updateConsoleURLFromStatus(status)

	return s.createTailscaleHTTPListener(tsCfg)
}

// logTailscaleStatus logs info about the tailscale node status.
func (s *Server) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		s.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	s.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// updateConsoleURLFromStatus switches the console URL to the tailnet DNS name
// unless one was configured explicitly.
func (s *Server) updateConsoleURLFromStatus(status *ipnstate.Status) {
	if s.config.Console.BaseURL != "" || status.Self == nil || status.Self.DNSName == "" {
		return
	}
	scheme := "http://"
	if s.config.Tailscale.HTTPS || s.config.Tailscale.Funnel {
		scheme = "https://"
	}
	newURL := scheme + strings.TrimSuffix(status.Self.DNSName, ".")
	if newURL != s.consoleURL {
		s.logger.Info("updated console URL to use Tailscale DNS name", "old", s.consoleURL, "new", newURL)
		s.consoleURL = newURL
	}
}

// createTailscaleHTTPListener creates the appropriate HTTP listener based on config.
func (s *Server) createTailscaleHTTPListener(tsCfg config.TailscaleConfig) (net.Listener, error) {
	switch {
	case tsCfg.Funnel:
		s.logger.Info("enabling tailscale funnel (public HTTPS) on :443")
		ln, err := s.tsnetServer.ListenFunnel("tcp", ":443")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale funnel port: %w", err)
		}
		return ln, nil
	case tsCfg.HTTPS:
		return s.createTailscaleTLSListener()
	default:
		ln, err := s.tsnetServer.Listen("tcp", ":80")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
		}
		return ln, nil
	}
}

// createTailscaleTLSListener creates a TLS listener using Tailscale's auto-provisioned certs.
func (s *Server) createTailscaleTLSListener() (net.Listener, error) {
	s.logger.Info("enabling HTTPS with Tailscale certs on :443")
	ln, err := s.tsnetServer.Listen("tcp", ":443")
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale HTTPS port: %w", err)
	}
	lc, err := s.tsnetServer.LocalClient()
	if err != nil {
		_ = ln.Close()
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("getting tailscale local client: %w", err)
	}
	return tls.NewListener(ln, &tls.Config{
		GetCertificate: lc.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}), nil
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the HTTP server, ends every session, and releases resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down console")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))

	// Ends pollers and sends logout to open websockets, which are hijacked
	// and so not waited on by the HTTP shutdown.
	s.sessions.Shutdown()

	if s.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", s.tsnetServer.Close())
	}
	s.submits.Close()

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK if the upstream API answers its version endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	v, err := s.api.Version(ctx)
	if err != nil {
		s.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream API unreachable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%s %s, %d sessions)", v.Name, v.Version, s.sessions.Len())
}
