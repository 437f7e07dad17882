// Package ingest implements the event-triggered ingestion gateway that
// relocates landing objects into the partitioned bronze layer.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lakeflow/internal/domain"
)

// Gateway handles "object created" notifications for the landing bucket.
// It validates the event, computes the bronze destination path from the
// processing date, copies the object, and appends a provenance record.
type Gateway struct {
	store         domain.ObjectStore
	provenance    domain.ProvenanceLog
	landingBucket string
	bronzeBucket  string
	now           func() time.Time
	logger        *slog.Logger
}

// NewGateway creates an ingestion Gateway.
func NewGateway(
	store domain.ObjectStore,
	provenance domain.ProvenanceLog,
	landingBucket, bronzeBucket string,
	logger *slog.Logger,
) *Gateway {
	return &Gateway{
		store:         store,
		provenance:    provenance,
		landingBucket: landingBucket,
		bronzeBucket:  bronzeBucket,
		now:           time.Now,
		logger:        logger,
	}
}

// SetClock overrides the processing-time source. Intended for tests.
func (g *Gateway) SetClock(now func() time.Time) {
	g.now = now
}

// Handle processes one object-created event.
//
// Malformed or foreign-bucket events are expected noise from the
// notification channel: they yield an "ignored" result, never an error.
// Copy and logging failures are returned as errors for the transport layer
// to report; retry is the notification channel's responsibility.
func (g *Gateway) Handle(ctx context.Context, evt domain.ObjectCreatedEvent) (*domain.IngestResult, error) {
	if evt.Bucket == "" || evt.Name == "" {
		g.logger.Warn("incomplete event ignored", "bucket", evt.Bucket, "name", evt.Name)
		return &domain.IngestResult{Status: domain.StatusIgnored, Message: "incomplete event"}, nil
	}

	if evt.Bucket != g.landingBucket {
		g.logger.Info("event for unmonitored bucket ignored", "bucket", evt.Bucket)
		return &domain.IngestResult{Status: domain.StatusIgnored, Message: "bucket not monitored"}, nil
	}

	company, domainName, remainder, err := domain.SplitObjectKey(evt.Name)
	if err != nil {
		return nil, err
	}

	// Partitioned by processing date, not any date in the source path.
	// The loader addresses partitions the same way.
	bronzePath := domain.BronzePath(company, domainName, remainder, g.now())

	g.logger.Info("relocating object to bronze",
		"source", fmt.Sprintf("%s/%s", evt.Bucket, evt.Name), "bronze_path", bronzePath)

	if err := g.store.Copy(ctx, evt.Bucket, evt.Name, g.bronzeBucket, bronzePath); err != nil {
		return nil, domain.ErrUnavailable("relocate %s/%s: %v", evt.Bucket, evt.Name, err)
	}

	rec := &domain.ProvenanceRecord{
		ID:           domain.NewID(),
		SourceBucket: evt.Bucket,
		SourceObject: evt.Name,
		BronzeObject: bronzePath,
		Status:       domain.ProvenanceStatusBronzeCreated,
		IngestedAt:   g.now().UTC(),
	}
	if err := g.provenance.Append(ctx, rec); err != nil {
		return nil, domain.ErrUnavailable("record provenance for %s: %v", bronzePath, err)
	}

	return &domain.IngestResult{Status: domain.StatusOK, BronzePath: bronzePath}, nil
}
