// ABOUTME: Configuration loading and parsing for concierge-gateway
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that overrides the config location.
const EnvConfigPath = "CONCIERGE_CONFIG"

// MinJWTSecretLength is the shortest accepted auth.jwt_secret.
const MinJWTSecretLength = 32

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the complete concierge-gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Tools     ToolsConfig     `yaml:"tools" toml:"tools"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Voice     VoiceConfig     `yaml:"voice" toml:"voice"`
	Dedupe    DedupeConfig    `yaml:"dedupe" toml:"dedupe"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// ServerConfig holds listener configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr" toml:"grpc_addr"`

	ShutdownTimeout    time.Duration `yaml:"-" toml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// ToolsConfig controls tool dispatch
type ToolsConfig struct {
	// BaseURL roots the tool endpoints. Defaults to the HTTP listener.
	BaseURL string `yaml:"base_url" toml:"base_url"`

	// ValidateParameters enforces each tool's parameter schema on POST calls.
	ValidateParameters bool `yaml:"validate_parameters" toml:"validate_parameters"`

	// Timeout bounds each backend call. Zero means no client timeout.
	Timeout    time.Duration `yaml:"-" toml:"-"`
	TimeoutRaw string        `yaml:"timeout" toml:"timeout"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" toml:"jwt_secret"`

	TokenTTL    time.Duration `yaml:"-" toml:"-"`
	TokenTTLRaw string        `yaml:"token_ttl" toml:"token_ttl"`
}

// Enabled reports whether bearer auth is required on the tool-call API.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// VoiceConfig holds the voice provider connection settings
type VoiceConfig struct {
	URL       string `yaml:"url" toml:"url"`
	APIKey    string `yaml:"api_key" toml:"api_key"`
	SecretKey string `yaml:"secret_key" toml:"secret_key"`

	// ConfigIDs overrides the voice configuration id per agent category.
	ConfigIDs map[string]string `yaml:"config_ids" toml:"config_ids"`

	PingInterval    time.Duration `yaml:"-" toml:"-"`
	PingIntervalRaw string        `yaml:"ping_interval" toml:"ping_interval"`
}

// DedupeConfig sizes the tool_call_id dedupe cache
type DedupeConfig struct {
	TTL     time.Duration `yaml:"-" toml:"-"`
	TTLRaw  string        `yaml:"ttl" toml:"ttl"`
	MaxSize int           `yaml:"max_size" toml:"max_size"`
}

// RateLimitConfig limits tool-call requests per client. Zero disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int     `yaml:"burst" toml:"burst"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:           "0.0.0.0:8080",
			GRPCAddr:           "0.0.0.0:50051",
			ShutdownTimeoutRaw: "10s",
		},
		Database: DatabaseConfig{
			Path: defaultDatabasePath(),
		},
		Auth: AuthConfig{
			TokenTTLRaw: "24h",
		},
		Voice: VoiceConfig{
			URL:             "wss://api.hume.ai/v0/evi/chat",
			PingIntervalRaw: "20s",
		},
		Dedupe: DedupeConfig{
			TTLRaw:  "10m",
			MaxSize: 10000,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the file at DefaultPath, or returns the defaults when
// no file exists there.
func LoadDefault() (*Config, error) {
	path := DefaultPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := cfg.finish(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(path)
}

// finish parses durations and validates.
func (c *Config) finish() error {
	if err := parseDurations(c); err != nil {
		return fmt.Errorf("parsing durations: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

// DefaultPath returns the config location: $CONCIERGE_CONFIG, then
// $XDG_CONFIG_HOME/concierge/gateway.yaml, then ~/.config/concierge/gateway.yaml.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "concierge", "gateway.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "concierge", "gateway.yaml")
	}
	return filepath.Join(home, ".config", "concierge", "gateway.yaml")
}

func defaultDatabasePath() string {
	if data := os.Getenv("XDG_DATA_HOME"); data != "" {
		return filepath.Join(data, "concierge", "gateway.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "gateway.db"
	}
	return filepath.Join(home, ".local", "share", "concierge", "gateway.db")
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("%w: server.http_addr is required", ErrInvalidConfig)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}
	if c.Auth.Enabled() && len(c.Auth.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("%w: auth.jwt_secret must be at least %d bytes", ErrInvalidConfig, MinJWTSecretLength)
	}
	if c.Tools.Timeout < 0 {
		return fmt.Errorf("%w: tools.timeout must not be negative", ErrInvalidConfig)
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("%w: rate_limit values must not be negative", ErrInvalidConfig)
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst == 0 {
		return fmt.Errorf("%w: rate_limit.burst is required when requests_per_second is set", ErrInvalidConfig)
	}
	if c.Dedupe.MaxSize < 0 {
		return fmt.Errorf("%w: dedupe.max_size must not be negative", ErrInvalidConfig)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: logging.format must be text or json, got %q", ErrInvalidConfig, c.Logging.Format)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

// LogLevel returns the slog level named by logging.level.
func (c *Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Logging.Level)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", s)
	}
}

// ToolsBaseURL returns tools.base_url, or an http URL for the HTTP listener
// with unspecified hosts replaced by localhost.
func (c *Config) ToolsBaseURL() string {
	if c.Tools.BaseURL != "" {
		return strings.TrimRight(c.Tools.BaseURL, "/")
	}

	host, port, err := net.SplitHostPort(c.Server.HTTPAddr)
	if err != nil {
		return "http://" + c.Server.HTTPAddr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeoutRaw, &cfg.Server.ShutdownTimeout},
		{"tools.timeout", cfg.Tools.TimeoutRaw, &cfg.Tools.Timeout},
		{"auth.token_ttl", cfg.Auth.TokenTTLRaw, &cfg.Auth.TokenTTL},
		{"voice.ping_interval", cfg.Voice.PingIntervalRaw, &cfg.Voice.PingInterval},
		{"dedupe.ttl", cfg.Dedupe.TTLRaw, &cfg.Dedupe.TTL},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}
	return nil
}
