// Package config resolves runtime configuration in priority order:
// built-in defaults, then an optional YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// DefaultPath is read when CONFIG_PATH is not set.
const DefaultPath = "configs/default.yaml"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Logging   LoggingConfig   `yaml:"logging"`
	Auth      AuthConfig      `yaml:"auth"`
}

type ServerConfig struct {
	Port        string `yaml:"port"`
	Host        string `yaml:"host"`
	Environment string `yaml:"environment"`
}

type DatabaseConfig struct {
	URL     string `yaml:"url"`
	Migrate bool   `yaml:"migrate"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AuthConfig names the request header carrying the caller's role.
type AuthConfig struct {
	RoleHeader string `yaml:"role_header"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:        "8080",
			Host:        "0.0.0.0",
			Environment: "development",
		},
		Database: DatabaseConfig{Migrate: true},
		Redis:    RedisConfig{CacheTTL: 30 * time.Second},
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   time.Minute,
		},
		CORS:    CORSConfig{AllowedOrigins: []string{"*"}},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Auth:    AuthConfig{RoleHeader: "X-User-Role"},
	}
}

// LoadDotEnv loads a .env file into the process environment if one exists.
// Variables already set are not overwritten.
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		slog.Debug("no .env file loaded, using system environment", "err", err)
	}
}

// Load resolves configuration from defaults, the YAML file at path (a
// missing file is not an error) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.Host = getEnv("HOST", cfg.Server.Host)
	cfg.Server.Environment = getEnv("ENVIRONMENT", cfg.Server.Environment)

	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Migrate = parseBool(os.Getenv("DATABASE_MIGRATE"), cfg.Database.Migrate)

	cfg.Redis.URL = getEnv("REDIS_URL", cfg.Redis.URL)
	cfg.Redis.CacheTTL = parseDuration(os.Getenv("CACHE_TTL"), cfg.Redis.CacheTTL)

	cfg.RateLimit.Requests = parseInt(os.Getenv("RATE_LIMIT_REQUESTS"), cfg.RateLimit.Requests)
	cfg.RateLimit.Window = parseDuration(os.Getenv("RATE_LIMIT_WINDOW"), cfg.RateLimit.Window)

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.CORS.AllowedOrigins = parseStringSlice(v)
	}

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Auth.RoleHeader = getEnv("ROLE_HEADER", cfg.Auth.RoleHeader)
}

// Validate checks value ranges. All failures wrap ErrInvalid.
func (c Config) Validate() error {
	var errs []error

	if p, err := strconv.Atoi(c.Server.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("%w: port %q", ErrInvalid, c.Server.Port))
	}
	if c.RateLimit.Requests <= 0 {
		errs = append(errs, fmt.Errorf("%w: rate limit requests must be positive", ErrInvalid))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, fmt.Errorf("%w: rate limit window must be positive", ErrInvalid))
	}
	if c.Redis.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("%w: cache ttl must be positive", ErrInvalid))
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		errs = append(errs, fmt.Errorf("%w: log format %q", ErrInvalid, c.Logging.Format))
	}
	if strings.TrimSpace(c.Auth.RoleHeader) == "" {
		errs = append(errs, fmt.Errorf("%w: role header is empty", ErrInvalid))
	}
	if c.IsProduction() && slices.Contains(c.CORS.AllowedOrigins, "*") {
		errs = append(errs, fmt.Errorf("%w: wildcard CORS origin in production", ErrInvalid))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Addr is the listen address.
func (c Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalid, l.Level)
	}
}

// NewLogger builds the process logger from the logging settings.
func (l LoggingConfig) NewLogger() *slog.Logger {
	level, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, defaultValue int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return defaultValue
}

func parseBool(s string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultValue
}

// parseDuration accepts Go durations ("30s", "5m") or bare seconds ("60").
func parseDuration(s string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if i, err := strconv.Atoi(s); err == nil {
		return time.Duration(i) * time.Second
	}
	return defaultValue
}

func parseStringSlice(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
