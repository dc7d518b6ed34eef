package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // export.timezone must resolve on hosts without a zoneinfo database

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Session SessionConfig `yaml:"session"`
	Server  ServerConfig  `yaml:"server"`
	Mock    MockConfig    `yaml:"mock"`
	AI      AIConfig      `yaml:"ai"`
	Store   StoreConfig   `yaml:"store"`
	Export  ExportConfig  `yaml:"export"`
	Log     LogConfig     `yaml:"log"`
}

// BackendConfig selects the remote endpoint. An empty URL (or the
// placeholder) switches the client to the in-process mock backend.
type BackendConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// SessionConfig contains session persistence settings.
type SessionConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig contains dev server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	MetricsToken    string   `yaml:"-"` // env-only, never in YAML
}

// MockConfig contains mock backend settings.
type MockConfig struct {
	DBPath         string   `yaml:"db_path"`
	Seed           bool     `yaml:"seed"`
	LatencyMin     Duration `yaml:"latency_min"`
	LatencyMax     Duration `yaml:"latency_max"`
	RequireSession bool     `yaml:"require_session"`
	TokenTTL       Duration `yaml:"token_ttl"`
	JWTSecret      string   `yaml:"-"` // env-only, never in YAML
}

// AIConfig contains settings for the mock backend's AI generator.
// Without an API key the placeholder generator is used.
type AIConfig struct {
	APIKey string `yaml:"-"` // env-only, never in YAML
	Model  string `yaml:"model"`
}

// StoreConfig contains domain store settings.
type StoreConfig struct {
	NotificationTTL Duration `yaml:"notification_ttl"`
}

// ExportConfig contains CSV export settings.
type ExportConfig struct {
	Filename string `yaml:"filename"`
	Timezone string `yaml:"timezone"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Location returns the time zone for exported dates. An empty timezone
// means the local zone.
func (c *Config) Location() *time.Location {
	if c.Export.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Export.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("PORTFOLIO_CONFIG_PATH", "config/portfolio.yaml")

	// Load YAML file if it exists (missing file is not an error)
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit config paths.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	// Load YAML file (file must exist for this function)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Backend: BackendConfig{
			Timeout: Duration(30 * time.Second),
		},
		Session: SessionConfig{
			Path: "~/.portfolio/session.yaml",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(60 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Mock: MockConfig{
			DBPath:     "~/.portfolio/users.db",
			Seed:       true,
			LatencyMin: Duration(300 * time.Millisecond),
			LatencyMax: Duration(700 * time.Millisecond),
			TokenTTL:   Duration(24 * time.Hour),
		},
		AI: AIConfig{
			Model: "gpt-4o-mini",
		},
		Store: StoreConfig{
			NotificationTTL: Duration(5 * time.Second),
		},
		Export: ExportConfig{
			Filename: "ideias_priorizadas.csv",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
// Missing file is not an error; we just use defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Backend
	if v := os.Getenv("PORTFOLIO_BACKEND_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv("PORTFOLIO_BACKEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Backend.Timeout = Duration(d)
		}
	}

	// Session
	if v := os.Getenv("PORTFOLIO_SESSION_PATH"); v != "" {
		cfg.Session.Path = v
	}

	// Server
	if v := os.Getenv("PORTFOLIO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PORTFOLIO_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = Duration(d)
		}
	}
	if v := os.Getenv("PORTFOLIO_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = Duration(d)
		}
	}
	if v := os.Getenv("PORTFOLIO_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ShutdownTimeout = Duration(d)
		}
	}
	if v := os.Getenv("PORTFOLIO_METRICS_TOKEN"); v != "" {
		cfg.Server.MetricsToken = v
	}

	// Mock backend
	if v := os.Getenv("PORTFOLIO_MOCK_DB_PATH"); v != "" {
		cfg.Mock.DBPath = v
	}
	if v := os.Getenv("PORTFOLIO_MOCK_SEED"); v != "" {
		cfg.Mock.Seed = parseBool(v)
	}
	if v := os.Getenv("PORTFOLIO_MOCK_LATENCY_MIN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Mock.LatencyMin = Duration(d)
		}
	}
	if v := os.Getenv("PORTFOLIO_MOCK_LATENCY_MAX"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Mock.LatencyMax = Duration(d)
		}
	}
	if v := os.Getenv("PORTFOLIO_MOCK_REQUIRE_SESSION"); v != "" {
		cfg.Mock.RequireSession = parseBool(v)
	}
	if v := os.Getenv("PORTFOLIO_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Mock.TokenTTL = Duration(d)
		}
	}
	if v := os.Getenv("PORTFOLIO_JWT_SECRET"); v != "" {
		cfg.Mock.JWTSecret = v
	}

	// AI (OPENAI_API_KEY is industry convention)
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("PORTFOLIO_AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}

	// Store
	if v := os.Getenv("PORTFOLIO_NOTIFICATION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Store.NotificationTTL = Duration(d)
		}
	}

	// Export
	if v := os.Getenv("PORTFOLIO_EXPORT_TIMEZONE"); v != "" {
		cfg.Export.Timezone = v
	}

	// Log
	if v := os.Getenv("PORTFOLIO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PORTFOLIO_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// validate checks ranges and enumerations. No value is required: an empty
// configuration runs against the mock backend.
func (c *Config) validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	durations := []struct {
		name  string
		value Duration
	}{
		{"backend.timeout", c.Backend.Timeout},
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"mock.latency_min", c.Mock.LatencyMin},
		{"mock.latency_max", c.Mock.LatencyMax},
		{"mock.token_ttl", c.Mock.TokenTTL},
		{"store.notification_ttl", c.Store.NotificationTTL},
	}
	for _, d := range durations {
		if d.value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", d.name))
		}
	}
	if c.Mock.LatencyMin > c.Mock.LatencyMax {
		errs = append(errs, errors.New("mock.latency_min must not exceed mock.latency_max"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}

	if c.Export.Timezone != "" {
		if _, err := time.LoadLocation(c.Export.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("export.timezone: %w", err))
		}
	}

	return errors.Join(errs...)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
