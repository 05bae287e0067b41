// Package config handles configuration loading for hs-console.
//
// # Overview
//
// Configuration is loaded from YAML (or TOML, by file extension) with
// environment variable expansion. The package provides validation and
// sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from HS_CONSOLE_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/hurricanesoft/console.yaml
//  3. ~/.config/hurricanesoft/console.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  session_secret: "${HS_SESSION_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server and upstream API:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	api:
//	  base_url: "http://127.0.0.1:9000"
//	  timeout: "15s"
//
// Sessions and polling:
//
//	auth:
//	  session_secret: "${HS_SESSION_SECRET}"
//	  session_duration: "12h"
//	polling:
//	  interval: "8s"
//
// Tailscale:
//
//	tailscale:
//	  enabled: false
//	  hostname: "hs-console"
//	  auth_key: "${TS_AUTHKEY}"
//	  https: true
//	  funnel: false
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
