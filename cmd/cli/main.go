// Package main is the entry point for the lakeflow ops CLI. It runs pipeline
// stages directly against the configured stores, without the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"lakeflow/internal/api"
	"lakeflow/internal/app"
	"lakeflow/internal/config"
	internaldb "lakeflow/internal/db"
	"lakeflow/internal/domain"
	"lakeflow/internal/objstore"
	"lakeflow/internal/warehouse"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lakeflow",
		Short:         "Medallion pipeline operations",
		Long:          "Run lakeflow pipeline stages (load, transform) and migrations locally.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newLoadCmd())
	rootCmd.AddCommand(newTransformCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server with the transformation scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cfg, cleanup, err := setupWithConfig(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.Scheduler.Start(cfg.TransformCron); err != nil {
				return err
			}
			defer a.Scheduler.Stop()

			logger := slog.Default()
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
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

// setupWithConfig loads config and wires the application. The caller must
// invoke the returned cleanup func.
func setupWithConfig(cmd *cobra.Command) (*app.App, *config.Config, func(), error) {
	_ = config.LoadDotEnv(".env")
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.MetaDBPath, 4)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := internaldb.RunMigrations(writeDB); err != nil {
		writeDB.Close()
		readDB.Close()
		return nil, nil, nil, err
	}

	duckDB, err := warehouse.Open(cfg.WarehouseDB)
	if err != nil {
		writeDB.Close()
		readDB.Close()
		return nil, nil, nil, err
	}
	cleanup := func() {
		duckDB.Close()
		readDB.Close()
		writeDB.Close()
	}

	wh := warehouse.New(duckDB, logger.With("component", "warehouse"))
	if err := wh.EnsureSchemas(cmd.Context()); err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	store, err := objstore.New(cmd.Context(), cfg)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
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
		cleanup()
		return nil, nil, nil, err
	}
	return a, cfg, cleanup, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply control-plane schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = config.LoadDotEnv(".env")
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			writeDB, err := internaldb.OpenSQLite(cfg.MetaDBPath, "write", 0)
			if err != nil {
				return err
			}
			defer writeDB.Close()
			if err := internaldb.RunMigrations(writeDB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newLoadCmd() *cobra.Command {
	var (
		company    string
		domainName string
		date       string
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a bronze partition into the warehouse",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := domain.NewPartition(company, domainName, date)
			if err != nil {
				return err
			}
			a, _, cleanup, err := setupWithConfig(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := a.Loader.Load(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %s: %d files processed, %d skipped\n",
				result.Table, result.FilesProcessed, result.FilesSkipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "company the partition belongs to")
	cmd.Flags().StringVar(&domainName, "domain", "", "data domain of the partition")
	cmd.Flags().StringVar(&date, "date", "", "partition date (yyyy-mm-dd)")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newTransformCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transform",
		Short: "Run the transformation catalog in dependency order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, cleanup, err := setupWithConfig(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := a.Runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range result.Executed {
				fmt.Fprintf(cmd.OutOrStdout(), "executed %s\n", name)
			}
			return nil
		},
	}
}
