// Package config handles configuration loading for concierge-gateway.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from CONCIERGE_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/concierge/gateway.yaml
//  3. ~/.config/concierge/gateway.yaml
//
// Files ending in .toml are decoded as TOML; everything else is YAML.
// Keys that are absent keep their defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	voice:
//	  api_key: "${HUME_API_KEY}"
//
// Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	tools:
//	  timeout: "15s"   # "0" or empty disables the client timeout
//	dedupe:
//	  ttl: "10m"
//
// # Configuration Sections
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	  grpc_addr: "0.0.0.0:50051"   # empty disables gRPC
//	  shutdown_timeout: "10s"
//
//	database:
//	  path: "~/.local/share/concierge/gateway.db"   # ":memory:" for a throwaway store
//
//	tools:
//	  base_url: "http://localhost:8080"   # defaults to the HTTP listener
//	  validate_parameters: false
//
//	auth:
//	  jwt_secret: "${CONCIERGE_JWT_SECRET}"   # empty disables auth
//
//	voice:
//	  url: "wss://api.hume.ai/v0/evi/chat"
//	  api_key: "${HUME_API_KEY}"
//	  config_ids:
//	    restaurant: "..."
//
//	rate_limit:
//	  requests_per_second: 20
//	  burst: 40
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
