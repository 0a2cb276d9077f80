package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/courtbook/toastpop/internal/config"
	"github.com/courtbook/toastpop/internal/errors"
	"github.com/courtbook/toastpop/pkg/live"
	"github.com/courtbook/toastpop/pkg/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	configPath  string
	address     string
	logLevel    string
	logFormat   string
	maxSessions int
	noMetrics   bool
	reload      bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the toast server",
		Long: `Start the HTTP server that serves the toast page and pushes toasts to
connected browsers.

Configuration is read from --config, or from toastpop.json in the
working directory when present. Flags override file values.

Examples:
  toastpop serve
  toastpop serve --addr=:9000
  toastpop serve --config=deploy/toastpop.yaml --log-format=json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(cmd, opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, opts.reload)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file (.json, .toml, .yaml)")
	cmd.Flags().StringVarP(&opts.address, "addr", "a", "", "Listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")
	cmd.Flags().IntVar(&opts.maxSessions, "max-sessions", 0, "Maximum connected pages (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "Disable the /metrics endpoint")
	cmd.Flags().BoolVar(&opts.reload, "reload", false, "Apply log.level changes when the config file is edited")

	return cmd
}

// loadServeConfig resolves the config file, applies flag overrides, and
// validates the result.
func loadServeConfig(cmd *cobra.Command, opts serveOptions) (*config.Config, error) {
	cfg := config.New()
	switch {
	case opts.configPath != "":
		loaded, err := config.LoadFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		if _, err := os.Stat(config.ConfigFileName); err == nil {
			loaded, err := config.Load(".")
			if err != nil {
				return nil, err
			}
			cfg = loaded
		}
	}

	if opts.address != "" {
		cfg.Server.Address = opts.address
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if cmd.Flags().Changed("max-sessions") {
		cfg.Server.MaxSessions = opts.maxSessions
	}
	if opts.noMetrics {
		cfg.Metrics.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// liveConfig maps server settings onto the live transport.
func liveConfig(cfg *config.Config) *live.Config {
	lc := live.DefaultConfig()
	lc.ReadTimeout = cfg.Server.ReadTimeoutDuration()
	lc.WriteTimeout = cfg.Server.WriteTimeoutDuration()
	lc.HeartbeatInterval = cfg.Server.HeartbeatDuration()
	lc.MaxSessions = cfg.Server.MaxSessions
	if len(cfg.Server.AllowedOrigins) > 0 {
		lc.CheckOrigin = live.AllowOrigins(cfg.Server.AllowedOrigins...)
	}
	return lc
}

// newHandler builds the hub and HTTP handler for cfg.
func newHandler(cfg *config.Config, logger *slog.Logger) (*live.Hub, *web.Server) {
	hubOpts := []live.HubOption{live.WithLogger(logger)}
	webOpts := []web.Option{
		web.WithLogger(logger),
		web.WithTracerName(cfg.Tracing.ServiceName),
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := live.NewMetrics(
			live.WithNamespace(cfg.Metrics.Namespace),
			live.WithRegistry(reg),
		)
		hubOpts = append(hubOpts, live.WithMetrics(metrics))
		webOpts = append(webOpts, web.WithGatherer(reg))
	}

	hub := live.NewHub(liveConfig(cfg), hubOpts...)
	return hub, web.New(hub, webOpts...)
}

func runServe(ctx context.Context, cfg *config.Config, reload bool) error {
	level := new(slog.LevelVar)
	if l, err := cfg.Log.SlogLevel(); err == nil {
		level.Set(l)
	}
	logger := cfg.Log.NewLeveledLogger(os.Stderr, level)
	slog.SetDefault(logger)

	if reload && cfg.Path() != "" {
		go watchLogLevel(ctx, cfg.Path(), level, logger)
	}

	hub, handler := newHandler(cfg, logger)
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeoutDuration(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	source := "defaults"
	if cfg.Path() != "" {
		source = filepath.Base(cfg.Path())
	}
	logger.Info("toastpop listening",
		"address", cfg.Server.Address,
		"config", source,
		"metrics", cfg.Metrics.Enabled,
		"version", version)

	select {
	case err := <-errCh:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			hub.Close()
			return errors.New("E200").WithDetail("Listening on " + cfg.Server.Address).Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.New("E200").WithDetail("Shutdown did not complete").Wrap(err)
	}
	logger.Info("shutdown complete")
	return nil
}

// watchLogLevel applies log.level from the config file each time it is
// saved. Other settings need a restart.
func watchLogLevel(ctx context.Context, path string, level *slog.LevelVar, logger *slog.Logger) {
	err := config.Watch(ctx, path, logger, func(c *config.Config) {
		l, err := c.Log.SlogLevel()
		if err != nil || l == level.Level() {
			return
		}
		level.Set(l)
		logger.Info("log level changed", "level", l.String())
	})
	if err != nil {
		logger.Warn("config reload disabled", "file", path, "error", err)
	}
}
