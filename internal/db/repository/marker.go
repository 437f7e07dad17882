// Package repository implements the SQLite-backed control-plane stores.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"lakeflow/internal/domain"
)

// MarkerRepo implements domain.MarkerStore on the SQLite control plane.
type MarkerRepo struct {
	db *sql.DB
}

// NewMarkerRepo creates a new MarkerRepo.
func NewMarkerRepo(db *sql.DB) *MarkerRepo {
	return &MarkerRepo{db: db}
}

var _ domain.MarkerStore = (*MarkerRepo)(nil)

// Exists reports whether a marker with the given id has been written.
func (r *MarkerRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM markers WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check marker %s: %w", id, err)
	}
	return true, nil
}

// Put writes a marker. Re-writing an existing id is a no-op, so retried
// loads that race past the existence check do not fail here.
func (r *MarkerRepo) Put(ctx context.Context, m *domain.IngestionMarker) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO markers (id, company, domain, bronze_path, status, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		m.ID, m.Company, m.Domain, m.BronzePath, m.Status, m.ProcessedAt)
	if err != nil {
		return fmt.Errorf("put marker %s: %w", m.ID, err)
	}
	return nil
}

// CountByPartition returns the number of markers for a (company, domain)
// pair. Used for operational inspection, not by the load path.
func (r *MarkerRepo) CountByPartition(ctx context.Context, company, domainName string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM markers WHERE company = ? AND domain = ?`,
		company, domainName).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count markers for %s/%s: %w", company, domainName, err)
	}
	return n, nil
}
