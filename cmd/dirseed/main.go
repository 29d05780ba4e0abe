package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dirseed/dirseed/internal/config"
	"github.com/dirseed/dirseed/internal/core"
	"github.com/dirseed/dirseed/internal/logging"
	"github.com/dirseed/dirseed/internal/schema"
	"github.com/dirseed/dirseed/internal/web"
)

func main() {
	serve := flag.Bool("serve", false, "keep running and expose the reload API after the initial load")
	flag.Parse()

	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"data_dir", cfg.Loader.DataDir,
		"schema", cfg.Database.Schema,
		"map_nested", cfg.Loader.MapNested,
	)

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	catalog, err := schema.Introspect(ctx, pool, cfg.Database.Schema)
	if err != nil {
		slog.Error("failed to introspect schema", "error", err)
		os.Exit(1)
	}
	slog.Info("schema introspected", "tables", catalog.Len())

	if cfg.Loader.ModelsFile != "" {
		if err := core.RegisterFromFile(cfg.Loader.ModelsFile); err != nil {
			slog.Error("failed to load models file", "error", err)
			os.Exit(1)
		}
	} else {
		// No models file: every introspected table is a flat load target.
		for _, name := range catalog.Names() {
			core.Register(core.Model{Table: name})
		}
	}
	slog.Info("models registered", "count", core.ModelCount())

	service, err := core.NewService(pool, catalog, cfg)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	result, err := service.Load(ctx)
	if err != nil {
		slog.Error("load failed", "error", err)
		os.Exit(1)
	}
	slog.Info("initial load complete",
		"run_id", result.RunID,
		"records", result.Records,
		"duration_ms", result.Duration.Milliseconds(),
	)

	if !*serve {
		return
	}

	server := web.NewServer(service, cfg)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("reload API listening", "addr", cfg.Server.Addr())
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
			os.Exit(1)
		}
	}
}
