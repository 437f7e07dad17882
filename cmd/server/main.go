package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"

	"lakeflow/internal/api"
	"lakeflow/internal/app"
	"lakeflow/internal/config"
	internaldb "lakeflow/internal/db"
	"lakeflow/internal/objstore"
	"lakeflow/internal/warehouse"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = config.LoadDotEnv(".env")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Control-plane SQLite: markers, provenance, leases.
	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.MetaDBPath, 4)
	if err != nil {
		return err
	}
	defer writeDB.Close()
	defer readDB.Close()
	if err := internaldb.RunMigrations(writeDB); err != nil {
		return err
	}

	// Warehouse DuckDB.
	duckDB, err := warehouse.Open(cfg.WarehouseDB)
	if err != nil {
		return err
	}
	defer duckDB.Close()
	wh := warehouse.New(duckDB, logger.With("component", "warehouse"))
	if err := wh.EnsureSchemas(ctx); err != nil {
		return err
	}

	store, err := objstore.New(ctx, cfg)
	if err != nil {
		return err
	}

	a, err := app.New(app.Deps{
		Cfg:     cfg,
		DuckDB:  duckDB,
		WriteDB: writeDB,
		ReadDB:  readDB,
		Store:   store,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	if err := a.Scheduler.Start(cfg.TransformCron); err != nil {
		return err
	}
	defer a.Scheduler.Stop()

	handler := api.NewHandler(a.Gateway, a.Loader, a.Runner, logger.With("component", "api"))
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewRouter(handler, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http api listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
