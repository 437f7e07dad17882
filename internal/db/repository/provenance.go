package repository

import (
	"context"
	"database/sql"
	"fmt"

	"lakeflow/internal/domain"
)

// ProvenanceRepo implements domain.ProvenanceLog on the SQLite control plane.
type ProvenanceRepo struct {
	db *sql.DB
}

// NewProvenanceRepo creates a new ProvenanceRepo.
func NewProvenanceRepo(db *sql.DB) *ProvenanceRepo {
	return &ProvenanceRepo{db: db}
}

var _ domain.ProvenanceLog = (*ProvenanceRepo)(nil)

// Append inserts one ingestion log entry. The log is append-only and
// diagnostic: duplicate entries for the same source object are expected
// when the notification channel redelivers an event.
func (r *ProvenanceRepo) Append(ctx context.Context, rec *domain.ProvenanceRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ingestion_log (id, source_bucket, source_object, bronze_object, status, ingestion_ts)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SourceBucket, rec.SourceObject, rec.BronzeObject, rec.Status, rec.IngestedAt)
	if err != nil {
		return fmt.Errorf("append ingestion log for %s/%s: %w", rec.SourceBucket, rec.SourceObject, err)
	}
	return nil
}

// ListBySource returns the log entries for one source object, oldest first.
func (r *ProvenanceRepo) ListBySource(ctx context.Context, bucket, object string) ([]domain.ProvenanceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, source_bucket, source_object, bronze_object, status, ingestion_ts
		 FROM ingestion_log
		 WHERE source_bucket = ? AND source_object = ?
		 ORDER BY ingestion_ts`, bucket, object)
	if err != nil {
		return nil, fmt.Errorf("list ingestion log for %s/%s: %w", bucket, object, err)
	}
	defer func() { _ = rows.Close() }()

	var recs []domain.ProvenanceRecord
	for rows.Next() {
		var rec domain.ProvenanceRecord
		if err := rows.Scan(&rec.ID, &rec.SourceBucket, &rec.SourceObject,
			&rec.BronzeObject, &rec.Status, &rec.IngestedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
