package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/schedsim/internal/config"
	"github.com/me/schedsim/internal/logging"
	"github.com/me/schedsim/internal/server"
	"github.com/me/schedsim/internal/store"
	"github.com/me/schedsim/internal/tracing"
)

func main() {
	cfg := config.DefaultServerConfig()

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, auto)")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Database path (default $"+config.EnvDBPath+" or ~/.schedsim/schedsim.db)")
	flag.IntVar(&cfg.MaxConcurrent, "max-concurrent", cfg.MaxConcurrent, "Maximum simultaneous simulations per comparison (0 = unlimited)")
	flag.IntVar(&cfg.MaxTicks, "max-ticks", cfg.MaxTicks, "Maximum max_ticks, arrival and total burst per request (0 = unlimited)")
	flag.IntVar(&cfg.MaxCPUs, "max-cpus", cfg.MaxCPUs, "Maximum cpus per request (0 = unlimited)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	traceFile := flag.String("trace-file", "", "Write OpenTelemetry spans as JSON to this file")

	flag.Parse()

	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	if *traceFile != "" {
		shutdown, err := tracing.Init("schedsim-server", config.Version, *traceFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "init tracing: %v\n", err)
			os.Exit(1)
		}
		defer shutdown(context.Background())
		logger.Info("tracing enabled", "file", *traceFile)
	}

	// Resolve database path.
	dbPath, err := config.ResolveDBPath(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Open store and run migrations.
	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate database: %v\n", err)
		os.Exit(1)
	}
	logger.Info("database ready", "path", dbPath)

	srv := server.New(cfg, st, logger)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "version", config.Version)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
