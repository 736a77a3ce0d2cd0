package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"bastion-hq/rampart/pkg/appsec"
	"bastion-hq/rampart/pkg/cli"
	"bastion-hq/rampart/pkg/config"
	"bastion-hq/rampart/pkg/httpsec"
	"bastion-hq/rampart/pkg/report"
	"bastion-hq/rampart/pkg/report/store"
	"bastion-hq/rampart/pkg/telemetry/health"
	"bastion-hq/rampart/pkg/telemetry/logging"
	"bastion-hq/rampart/pkg/telemetry/metrics"
	"bastion-hq/rampart/pkg/waf"
	"bastion-hq/rampart/pkg/waf/ruleset"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the rampart inspection server",
	Long: `Start the rampart server with the specified configuration.

The server wraps its handlers in the inspection middleware: request data is
delivered to the rule engine as it arrives, and blocking matches stop the
request with a 403 before the handler runs.

Examples:
  # Start with default config
  rampart run

  # Start with custom config
  rampart run --config /etc/rampart/config.yaml

  # Override listen address
  rampart run --listen 0.0.0.0:8080

  # Validate config without starting the server
  rampart run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.Setup(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx := cli.SetupSignalHandler()

	registry := prometheus.NewRegistry()
	var wafMetrics *metrics.WAFMetrics
	if cfg.Metrics.Enabled {
		wafMetrics = metrics.NewWAFMetrics("rampart", registry)
	}

	checker := health.New(5 * time.Second)

	reporter, closeReporter, err := buildReporter(ctx, cfg, logger, checker)
	if err != nil {
		return err
	}
	defer closeReporter()

	agent := buildAgent(cfg, logger, wafMetrics, reporter)
	defer agent.Close()

	if cfg.Ruleset.Watch && agent.Enabled() {
		watcher, err := ruleset.NewWatcher(&ruleset.WatcherConfig{
			Path:             cfg.Ruleset.Path,
			DebounceInterval: cfg.Ruleset.Debounce,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to create ruleset watcher: %w", err)
		}
		go func() {
			err := watcher.Watch(ctx, func() error {
				return agent.ReloadFromFile(cfg.Ruleset.Path)
			})
			if err != nil {
				logger.Error("ruleset watcher failed", "error", err)
			}
		}()
	}

	checker.RegisterCheck("inspection", func(context.Context) error {
		if !agent.Enabled() {
			return errors.New("inspection disabled")
		}
		return nil
	})

	mux := http.NewServeMux()
	mux.Handle("/", httpsec.Middleware(agent)(http.HandlerFunc(echoHandler)))
	mux.HandleFunc("/healthz", checker.LivenessHandler())
	mux.HandleFunc("/readyz", checker.ReadinessHandler())
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler(registry))
	}

	srv := &http.Server{
		Addr:           cfg.Server.ListenAddress,
		Handler:        mux,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			"address", cfg.Server.ListenAddress,
			"inspected", agent.Enabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// buildReporter creates the configured event sink and its cleanup func.
func buildReporter(ctx context.Context, cfg *config.Config, logger *slog.Logger, checker *health.Checker) (report.Reporter, func(), error) {
	switch cfg.Events.Reporter {
	case "none":
		return nil, func() {}, nil

	case "sqlite":
		s, err := store.NewSQLiteStore(store.DefaultConfig(cfg.Events.SQLite.Path), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open event store: %w", err)
		}
		checker.RegisterCheck("event_store", s.Ping)
		pruner := store.NewPruner(s, store.RetentionConfig{
			Days:     cfg.Events.Retention.Days,
			Schedule: cfg.Events.Retention.Schedule,
		}, logger)
		if err := pruner.Start(ctx); err != nil {
			s.Close()
			return nil, nil, err
		}
		cleanup := func() {
			pruner.Stop()
			if err := s.Close(); err != nil {
				logger.Error("failed to close event store", "error", err)
			}
		}
		return s, cleanup, nil

	default: // "log"
		return report.NewLogReporter(logger, logging.NewRedactor(nil)), func() {}, nil
	}
}

// buildAgent compiles the ruleset against the configured engine binding.
// Failures degrade to a disabled (nil) agent instead of aborting startup:
// traffic is served uninspected, loudly.
func buildAgent(cfg *config.Config, logger *slog.Logger, m *metrics.WAFMetrics, reporter report.Reporter) *appsec.Agent {
	loader, err := waf.Lookup(cfg.WAF.Engine)
	if err != nil {
		logger.Warn("no waf engine binding available, inspection disabled",
			"engine", cfg.WAF.Engine,
			"registered", waf.Registered(),
			"error", err,
		)
		return nil
	}

	rs, err := ruleset.Load(cfg.Ruleset.Path)
	if err != nil {
		logger.Error("failed to load ruleset, inspection disabled",
			"path", cfg.Ruleset.Path,
			"error", err,
		)
		return nil
	}

	agent, err := appsec.New(appsec.Config{
		Loader:   loader,
		Reporter: reporter,
		Budget:   cfg.WAF.Budget,
		Logger:   logger,
		Metrics:  m,
	}, rs)
	if err != nil {
		var cerr *waf.CompilationError
		if errors.As(err, &cerr) {
			logger.Error("ruleset rejected by engine, inspection disabled", "error", err)
			return nil
		}
		logger.Error("failed to start inspection, continuing without it", "error", err)
		return nil
	}
	return agent
}

// echoHandler is the built-in demo application protected by the
// middleware. It reflects basic request attributes.
func echoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"method": r.Method,
		"path":   r.URL.Path,
		"query":  r.URL.Query(),
	})
}
