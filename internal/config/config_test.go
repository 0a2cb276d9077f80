package config

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/courtbook/toastpop/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultsValidate(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultAddress, cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeoutDuration())
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeoutDuration())
	assert.Equal(t, 30*time.Second, cfg.Server.HeartbeatDuration())
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(`{
		"server": {"address": "127.0.0.1:9000", "maxSessions": 50, "allowedOrigins": ["https://a.example"]},
		"log": {"level": "debug", "format": "json"}
	}`), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.Equal(t, 50, cfg.Server.MaxSessions)
	assert.Equal(t, []string{"https://a.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "json", cfg.Log.Format)
	// Untouched fields keep their defaults.
	assert.Equal(t, "10s", cfg.Server.WriteTimeout)
	assert.Equal(t, DefaultNamespace, cfg.Metrics.Namespace)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.Path())
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "toastpop.toml", `
[server]
address = ":9100"
heartbeatInterval = "5s"

[metrics]
enabled = false
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.HeartbeatDuration())
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "toastpop.yaml", `
server:
  address: "0.0.0.0:7000"
log:
  level: warn
tracing:
  serviceName: courts
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:7000", cfg.Server.Address)
	assert.Equal(t, "courts", cfg.Tracing.ServiceName)
	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, "E120"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFile(writeFile(t, "bad.json", `{"server": `))
	assert.True(t, errors.Is(err, "E121"))

	_, err = LoadFile(writeFile(t, "toastpop.ini", `x=1`))
	assert.True(t, errors.Is(err, "E122"))
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"address", func(c *Config) { c.Server.Address = "8080" }, "E101"},
		{"duration", func(c *Config) { c.Server.WriteTimeout = "soon" }, "E102"},
		{"negative duration", func(c *Config) { c.Server.ReadTimeout = "-1s" }, "E102"},
		{"sessions", func(c *Config) { c.Server.MaxSessions = -1 }, "E104"},
		{"heartbeat equals read timeout", func(c *Config) {
			c.Server.HeartbeatInterval = "1m"
			c.Server.ReadTimeout = "60s"
		}, "E105"},
		{"heartbeat exceeds read timeout", func(c *Config) { c.Server.HeartbeatInterval = "2m" }, "E105"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "E100"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "E103"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.code), "got %v", err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	lc := LogConfig{Level: "debug", Format: "json"}

	lc.NewLogger(&buf).Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	lc = LogConfig{Level: "error", Format: "text"}
	lc.NewLogger(&buf).Info("quiet")
	assert.Empty(t, buf.String())
}

func TestNewLeveledLogger(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)

	lc := LogConfig{Format: "json"}
	logger := lc.NewLeveledLogger(&buf, level)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	level.Set(slog.LevelDebug)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeFile(t, "toastpop.json", `{"log":{"level":"info"}}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, slog.New(slog.NewTextHandler(io.Discard, nil)), func(c *Config) {
			select {
			case got <- c:
			default:
			}
		})
	}()

	// Rewrite until the watcher has registered and reports the change.
	deadline := time.After(3 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	var cfg *Config
	for cfg == nil {
		select {
		case cfg = <-got:
		case <-ticker.C:
			require.NoError(t, os.WriteFile(path, []byte(`{"log":{"level":"debug"}}`), 0o644))
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
	assert.Equal(t, "debug", cfg.Log.Level)

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_SkipsInvalidFile(t *testing.T) {
	path := writeFile(t, "toastpop.json", `{"log":{"level":"info"}}`)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	var calls int
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.WriteFile(path, []byte(`{"log":{"level":"loud"}}`), 0o644)
	}()
	require.NoError(t, Watch(ctx, path, slog.New(slog.NewTextHandler(io.Discard, nil)), func(*Config) { calls++ }))
	assert.Zero(t, calls)
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "toastpop.json"), slog.Default(), func(*Config) {})
	assert.Error(t, err)
}
