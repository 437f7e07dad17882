// Package loader implements the bronze-to-silver load: discover bronze
// objects for a partition, skip already-loaded ones, parse and tag the rest,
// and append the unioned batch to the warehouse.
package loader

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	"lakeflow/internal/domain"
	"lakeflow/internal/warehouse"
)

// csvExt is the only recognized bronze file extension.
const csvExt = ".csv"

// Service loads one partition of bronze objects into the warehouse.
type Service struct {
	store        domain.ObjectStore
	markers      domain.MarkerStore
	locks        domain.PartitionLocker
	wh           domain.Warehouse
	bronzeBucket string
	now          func() time.Time
	logger       *slog.Logger
}

// NewService creates a loader Service.
func NewService(
	store domain.ObjectStore,
	markers domain.MarkerStore,
	locks domain.PartitionLocker,
	wh domain.Warehouse,
	bronzeBucket string,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:        store,
		markers:      markers,
		locks:        locks,
		wh:           wh,
		bronzeBucket: bronzeBucket,
		now:          time.Now,
		logger:       logger,
	}
}

// SetClock overrides the load-timestamp source. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Load ingests all unprocessed bronze objects of a partition into the
// domain-named bronze table.
//
// The call holds the partition lease for its whole duration: two loaders
// cannot race each other past the marker check on the same partition.
// Markers are written strictly after the warehouse append commits, so a
// crash in between causes at most a reprocess, never data loss.
//
// FilesProcessed counts newly loaded files only; already-marked objects are
// skipped and counted in FilesSkipped.
func (s *Service) Load(ctx context.Context, p domain.Partition) (*domain.LoadResult, error) {
	logger := s.logger.With("partition", p.String())

	holder := domain.NewID()
	acquired, err := s.locks.Acquire(ctx, p.LeaseKey(), holder)
	if err != nil {
		return nil, domain.ErrUnavailable("acquire lease for %s: %v", p, err)
	}
	if !acquired {
		return nil, domain.ErrConflict("load already in progress for partition %s", p)
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), p.LeaseKey()); err != nil {
			logger.Error("release partition lease failed", "error", err)
		}
	}()

	objects, err := s.discover(ctx, p)
	if err != nil {
		return nil, err
	}

	table := warehouse.SchemaBronze + "." + p.Domain
	loadedAt := s.now().UTC()

	var batches []*domain.Batch
	var included []string
	skipped := 0

	for _, obj := range objects {
		id := domain.MarkerID(p.Company, p.Domain, obj.Key)
		exists, err := s.markers.Exists(ctx, id)
		if err != nil {
			return nil, domain.ErrUnavailable("check marker for %s: %v", obj.Key, err)
		}
		if exists {
			logger.Info("object already loaded, skipping", "object", obj.Key)
			skipped++
			continue
		}

		data, err := s.store.Read(ctx, s.bronzeBucket, obj.Key)
		if err != nil {
			return nil, domain.ErrUnavailable("read %s: %v", obj.Key, err)
		}

		sourceFile := s.bronzeBucket + "/" + obj.Key
		batch, err := parseCSV(data, p.Company, p.Domain, sourceFile, loadedAt)
		if err != nil {
			// One malformed file fails the whole partition load.
			return nil, domain.ErrValidation("parse %s: %v", obj.Key, err)
		}

		batches = append(batches, batch)
		included = append(included, obj.Key)
	}

	if err := s.wh.Append(ctx, table, unionBatches(batches)); err != nil {
		return nil, domain.ErrUnavailable("append to %s for partition %s: %v", table, p, err)
	}

	// Markers only after the append committed.
	for _, key := range included {
		m := domain.NewMarker(p.Company, p.Domain, key, s.now().UTC())
		if err := s.markers.Put(ctx, m); err != nil {
			return nil, domain.ErrUnavailable("mark %s processed: %v", key, err)
		}
	}

	logger.Info("partition loaded", "table", table,
		"files_processed", len(included), "files_skipped", skipped)

	return &domain.LoadResult{
		Status:         domain.StatusOK,
		Company:        p.Company,
		Domain:         p.Domain,
		Date:           p.Date.Format("2006-01-02"),
		FilesProcessed: len(included),
		FilesSkipped:   skipped,
		Table:          table,
	}, nil
}

// discover lists the partition's bronze objects with the recognized
// extension. An empty partition is an error: there is nothing to load.
func (s *Service) discover(ctx context.Context, p domain.Partition) ([]domain.ObjectInfo, error) {
	listed, err := s.store.List(ctx, s.bronzeBucket, p.Prefix())
	if err != nil {
		return nil, domain.ErrUnavailable("list bronze objects for %s: %v", p, err)
	}

	var objects []domain.ObjectInfo
	for _, obj := range listed {
		if strings.EqualFold(path.Ext(obj.Key), csvExt) {
			objects = append(objects, obj)
		}
	}
	if len(objects) == 0 {
		return nil, domain.ErrNotFound("no files found under %s", p.Prefix())
	}
	return objects, nil
}
