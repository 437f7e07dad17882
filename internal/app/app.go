// Package app provides application-level wiring and dependency injection
// for the lakeflow pipeline.
package app

import (
	"database/sql"
	"log/slog"

	"lakeflow/internal/config"
	"lakeflow/internal/db/repository"
	"lakeflow/internal/domain"
	"lakeflow/internal/service/ingest"
	"lakeflow/internal/service/loader"
	"lakeflow/internal/service/transform"
	"lakeflow/internal/warehouse"
)

// Deps holds the external dependencies that main() must provide: config,
// database handles, the object store client, and the logger.
type Deps struct {
	Cfg     *config.Config
	DuckDB  *sql.DB
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Store   domain.ObjectStore
	Logger  *slog.Logger
}

// App holds the fully-wired pipeline services.
type App struct {
	Gateway   *ingest.Gateway
	Loader    *loader.Service
	Runner    *transform.Runner
	Scheduler *transform.Scheduler
}

// New wires all repositories and services from the provided deps.
func New(deps Deps) (*App, error) {
	markerRepo := repository.NewMarkerRepo(deps.WriteDB)
	provenanceRepo := repository.NewProvenanceRepo(deps.WriteDB)
	leaseRepo := repository.NewLeaseRepo(deps.WriteDB, deps.Cfg.LeaseTTL)

	wh := warehouse.New(deps.DuckDB, deps.Logger.With("component", "warehouse"))

	gateway := ingest.NewGateway(
		deps.Store, provenanceRepo,
		deps.Cfg.LandingBucket, deps.Cfg.BronzeBucket,
		deps.Logger.With("component", "ingest"),
	)

	loaderSvc := loader.NewService(
		deps.Store, markerRepo, leaseRepo, wh,
		deps.Cfg.BronzeBucket,
		deps.Logger.With("component", "loader"),
	)

	catalog, err := transform.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	runner := transform.NewRunner(wh, catalog, deps.Logger.With("component", "transform"))
	scheduler := transform.NewScheduler(runner, deps.Logger.With("component", "scheduler"))

	return &App{
		Gateway:   gateway,
		Loader:    loaderSvc,
		Runner:    runner,
		Scheduler: scheduler,
	}, nil
}
