// Package config loads taskboard settings.
//
// Sources are applied in order, each overriding the previous one:
//   - built-in defaults
//   - a YAML file named by --config or TASKBOARD_CONFIG
//   - environment variables
//   - command-line flags
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/s1natex/taskboard/internal/middleware"
	"github.com/s1natex/taskboard/internal/telemetry"
)

type Config struct {
	// Addr is the listen address of the server.
	Addr string `yaml:"addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFile receives JSON log records instead of stdout. The terminal
	// board discards logs when it is empty.
	LogFile string `yaml:"log_file"`

	// DBPath is the SQLite file. Empty keeps tasks in memory.
	DBPath string `yaml:"db_path"`

	// APIURL is where the board and the TUI reach the task API. Empty
	// means the server's own /api.
	APIURL string `yaml:"api_url"`

	// APITimeout bounds each client request to the task API.
	APITimeout time.Duration `yaml:"api_timeout"`

	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

type AuthConfig struct {
	Mode        string `yaml:"mode"`
	APIKey      string `yaml:"api_key"`
	BearerToken string `yaml:"bearer_token"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type TracingConfig struct {
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

func Default() Config {
	return Config{
		Addr:       ":8080",
		LogLevel:   "info",
		APITimeout: 10 * time.Second,
		Auth:       AuthConfig{Mode: string(middleware.AuthNone)},
		RateLimit:  RateLimitConfig{RPS: 0, Burst: 20},
		Tracing:    TracingConfig{Exporter: telemetry.ExporterNone},
	}
}

// Load builds a Config from args (without the program name), the process
// environment and an optional YAML file.
func Load(name string, args []string) (Config, error) {
	return load(name, args, os.LookupEnv)
}

type lookupFunc func(string) (string, bool)

func load(name string, args []string, lookup lookupFunc) (Config, error) {
	cfg := Default()

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file (env TASKBOARD_CONFIG)")
	addr := fs.String("addr", "", "listen address")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	logFile := fs.String("log-file", "", "write JSON logs to this file")
	dbPath := fs.String("db", "", "SQLite database path (empty: in-memory)")
	apiURL := fs.String("api-url", "", "task API base URL")
	authMode := fs.String("auth-mode", "", "task API auth: none, apikey, bearer")
	tracing := fs.String("tracing", "", "trace exporter: none, stdout, otlp")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	path := *configPath
	if path == "" {
		path, _ = lookup("TASKBOARD_CONFIG")
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.mergeEnv(lookup); err != nil {
		return Config{}, err
	}

	setIf(fs, "addr", &cfg.Addr, *addr)
	setIf(fs, "log-level", &cfg.LogLevel, *logLevel)
	setIf(fs, "log-file", &cfg.LogFile, *logFile)
	setIf(fs, "db", &cfg.DBPath, *dbPath)
	setIf(fs, "api-url", &cfg.APIURL, *apiURL)
	setIf(fs, "auth-mode", &cfg.Auth.Mode, *authMode)
	setIf(fs, "tracing", &cfg.Tracing.Exporter, *tracing)

	return cfg, cfg.Validate()
}

func setIf(fs *pflag.FlagSet, flag string, dst *string, v string) {
	if fs.Changed(flag) {
		*dst = v
	}
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("TASKBOARD_ADDR", &c.Addr)
	str("LOG_LEVEL", &c.LogLevel)
	str("TASKBOARD_LOG_FILE", &c.LogFile)
	str("TASKBOARD_DB", &c.DBPath)
	str("TASKBOARD_API_URL", &c.APIURL)
	str("TASKBOARD_AUTH_MODE", &c.Auth.Mode)
	str("TASKBOARD_API_KEY", &c.Auth.APIKey)
	str("TASKBOARD_BEARER_TOKEN", &c.Auth.BearerToken)
	str("TASKBOARD_TRACING", &c.Tracing.Exporter)
	str("TASKBOARD_OTLP_ENDPOINT", &c.Tracing.Endpoint)

	if v, ok := lookup("TASKBOARD_API_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: TASKBOARD_API_TIMEOUT: %w", err)
		}
		c.APITimeout = d
	}
	if v, ok := lookup("TASKBOARD_RATE_RPS"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: TASKBOARD_RATE_RPS: %w", err)
		}
		c.RateLimit.RPS = f
	}
	if v, ok := lookup("TASKBOARD_RATE_BURST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: TASKBOARD_RATE_BURST: %w", err)
		}
		c.RateLimit.Burst = n
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}

	mode, err := middleware.ParseAuthMode(c.Auth.Mode)
	if err != nil {
		errs = append(errs, err)
	}
	if mode == middleware.AuthAPIKey && c.Auth.APIKey == "" {
		errs = append(errs, errors.New("auth mode apikey requires an api key"))
	}
	if mode == middleware.AuthBearer && c.Auth.BearerToken == "" {
		errs = append(errs, errors.New("auth mode bearer requires a bearer token"))
	}

	switch c.Tracing.Exporter {
	case "", telemetry.ExporterNone, telemetry.ExporterStdout, telemetry.ExporterOTLP:
	default:
		errs = append(errs, fmt.Errorf("unknown tracing exporter %q", c.Tracing.Exporter))
	}

	if c.RateLimit.RPS < 0 {
		errs = append(errs, errors.New("rate_limit.rps must not be negative"))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, errors.New("api_timeout must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// ParseLogLevel maps a log_level value to a slog level. Unknown values
// fall back to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AuthMode returns the validated auth mode.
func (c Config) AuthMode() middleware.AuthMode {
	m, _ := middleware.ParseAuthMode(c.Auth.Mode)
	return m
}

// APIBaseURL resolves where clients reach the task API.
func (c Config) APIBaseURL() string {
	if c.APIURL != "" {
		return c.APIURL
	}
	host := c.Addr
	if strings.HasPrefix(host, ":") {
		host = "127.0.0.1" + host
	}
	return "http://" + host + "/api"
}
