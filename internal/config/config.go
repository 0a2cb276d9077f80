package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/courtbook/toastpop/internal/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the file Load looks for in a directory.
	ConfigFileName = "toastpop.json"

	// DefaultAddress is the default listen address.
	DefaultAddress = ":8080"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "toastpop"
)

// Config is the complete configuration.
type Config struct {
	Server  ServerConfig  `json:"server" toml:"server" yaml:"server"`
	Log     LogConfig     `json:"log" toml:"log" yaml:"log"`
	Metrics MetricsConfig `json:"metrics" toml:"metrics" yaml:"metrics"`
	Tracing TracingConfig `json:"tracing" toml:"tracing" yaml:"tracing"`

	// path is where the config was loaded from.
	path string
}

// ServerConfig configures the HTTP and WebSocket server.
type ServerConfig struct {
	// Address is the listen address (e.g. ":8080").
	Address string `json:"address,omitempty" toml:"address,omitempty" yaml:"address,omitempty"`

	// ReadTimeout is how long a socket may stay silent, e.g. "60s".
	ReadTimeout string `json:"readTimeout,omitempty" toml:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`

	// WriteTimeout bounds a single frame write, e.g. "10s".
	WriteTimeout string `json:"writeTimeout,omitempty" toml:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`

	// HeartbeatInterval is the time between server pings, e.g. "30s".
	HeartbeatInterval string `json:"heartbeatInterval,omitempty" toml:"heartbeatInterval,omitempty" yaml:"heartbeatInterval,omitempty"`

	// MaxSessions caps concurrent live sessions. 0 means no limit.
	MaxSessions int `json:"maxSessions,omitempty" toml:"maxSessions,omitempty" yaml:"maxSessions,omitempty"`

	// AllowedOrigins restricts WebSocket upgrades. Empty allows only
	// same-origin requests.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" toml:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" toml:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" toml:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" toml:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace,omitempty" toml:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig configures OpenTelemetry spans.
type TracingConfig struct {
	// ServiceName names the tracer.
	ServiceName string `json:"serviceName,omitempty" toml:"serviceName,omitempty" yaml:"serviceName,omitempty"`
}

// New returns a Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address:           DefaultAddress,
			ReadTimeout:       "60s",
			WriteTimeout:      "10s",
			HeartbeatInterval: "30s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			ServiceName: "toastpop",
		},
	}
}

// Load reads toastpop.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from path. The decoder is chosen by the
// file extension.
func LoadFile(path string) (*Config, error) {
	unmarshal, err := decoderFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E120").
			WithDetail("Could not read " + path).
			Wrap(err)
	}

	cfg := New()
	if err := unmarshal(data, cfg); err != nil {
		return nil, errors.New("E121").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file syntax").
			Wrap(err)
	}

	cfg.path = path
	cfg.applyDefaults()
	return cfg, nil
}

func decoderFor(path string) (func([]byte, any) error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Unmarshal, nil
	case ".toml":
		return toml.Unmarshal, nil
	case ".yaml", ".yml":
		return yaml.Unmarshal, nil
	default:
		return nil, errors.New("E122").WithSuggestion("Rename the file to toastpop.json")
	}
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// applyDefaults fills in empty fields after decoding.
func (c *Config) applyDefaults() {
	d := New()
	if c.Server.Address == "" {
		c.Server.Address = d.Server.Address
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	if c.Server.HeartbeatInterval == "" {
		c.Server.HeartbeatInterval = d.Server.HeartbeatInterval
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = d.Tracing.ServiceName
	}
}

// Validate checks every field and returns the first coded error.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.Address); err != nil {
		return errors.New("E101").
			WithDetail("server.address " + quote(c.Server.Address) + " is not host:port").
			WithSuggestion(`Use a value like ":8080" or "127.0.0.1:8080"`)
	}
	durations := []struct{ name, value string }{
		{"server.readTimeout", c.Server.ReadTimeout},
		{"server.writeTimeout", c.Server.WriteTimeout},
		{"server.heartbeatInterval", c.Server.HeartbeatInterval},
	}
	for _, f := range durations {
		if d, err := time.ParseDuration(f.value); err != nil || d <= 0 {
			return errors.New("E102").
				WithDetail(f.name + " " + quote(f.value) + " is not a positive duration").
				WithSuggestion(`Use Go duration syntax such as "10s" or "1m"`)
		}
	}
	if hb, rt := c.Server.HeartbeatDuration(), c.Server.ReadTimeoutDuration(); hb >= rt {
		return errors.New("E105").
			WithDetail("server.heartbeatInterval " + quote(c.Server.HeartbeatInterval) +
				" is not shorter than server.readTimeout " + quote(c.Server.ReadTimeout)).
			WithSuggestion("Lower server.heartbeatInterval or raise server.readTimeout")
	}
	if c.Server.MaxSessions < 0 {
		return errors.New("E104")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E103")
	}
	return nil
}

// ReadTimeoutDuration returns the parsed read timeout. Call Validate first.
func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return mustDuration(c.ReadTimeout)
}

// WriteTimeoutDuration returns the parsed write timeout.
func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return mustDuration(c.WriteTimeout)
}

// HeartbeatDuration returns the parsed heartbeat interval.
func (c *ServerConfig) HeartbeatDuration() time.Duration {
	return mustDuration(c.HeartbeatInterval)
}

// SlogLevel maps Level to a slog.Level.
func (c *LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.New("E100").WithDetail("log.level " + quote(c.Level) + " is not one of debug, info, warn, error")
	}
}

// NewLogger builds a logger writing to w per the log settings.
func (c *LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := c.SlogLevel()
	return c.NewLeveledLogger(w, level)
}

// NewLeveledLogger is like NewLogger but takes the level from level, so a
// *slog.LevelVar can change it while the logger is in use.
func (c *LogConfig) NewLeveledLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func quote(s string) string {
	return `"` + s + `"`
}
