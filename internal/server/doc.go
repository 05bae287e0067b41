// Package server runs hs-console: it builds the API client, the session
// supervisor, and the console routes, then serves them on a TCP address or a
// Tailscale node until its context is canceled.
//
// # Endpoints
//
//   - GET /health: liveness, always 200
//   - GET /health/ready: 200 when the upstream /api/version answers
//
// All other routes belong to the console package.
//
// # Tailscale
//
// With tailscale.enabled the server joins the tailnet through tsnet and
// listens on :80, on :443 with Tailscale-issued certificates (https), or on
// a public Funnel (funnel). The auth key comes from tailscale.auth_key or
// TS_AUTHKEY.
package server
