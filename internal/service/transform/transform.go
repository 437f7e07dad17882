package transform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"lakeflow/internal/domain"
)

// Runner executes a transformation catalog against the warehouse. Each
// transformation replaces its target table in full, so a run is idempotent:
// executing it twice yields the same tables.
type Runner struct {
	wh              domain.Warehouse
	transformations []domain.Transformation
	logger          *slog.Logger
}

func NewRunner(wh domain.Warehouse, transformations []domain.Transformation, logger *slog.Logger) *Runner {
	return &Runner{
		wh:              wh,
		transformations: transformations,
		logger:          logger,
	}
}

// Run executes every transformation in dependency order. Transformations in
// the same topological level run concurrently; a failure anywhere aborts the
// run before the next level starts, so nothing downstream of a failed step
// ever executes against stale inputs.
func (r *Runner) Run(ctx context.Context) (*domain.RunResult, error) {
	levels, err := ResolveExecutionOrder(r.transformations)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]domain.Transformation, len(r.transformations))
	for _, t := range r.transformations {
		byName[t.Name] = t
	}

	result := &domain.RunResult{}

	for i, level := range levels {
		r.logger.Info("executing transformation level",
			slog.Int("level", i),
			slog.Int("transformations", len(level)))

		g, gctx := errgroup.WithContext(ctx)
		for _, name := range level {
			t := byName[name]
			g.Go(func() error {
				start := time.Now()
				if err := r.wh.ReplaceTable(gctx, t.Target, t.SQL); err != nil {
					r.logger.Error("transformation failed",
						slog.String("name", t.Name),
						slog.String("target", t.Target),
						slog.String("error", err.Error()))
					return fmt.Errorf("transformation %s: %w", t.Name, err)
				}
				r.logger.Info("transformation complete",
					slog.String("name", t.Name),
					slog.String("target", t.Target),
					slog.Duration("elapsed", time.Since(start)))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		result.Executed = append(result.Executed, level...)
	}
	return result, nil
}
