package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lakeflow/internal/domain"
)

// DefaultLeaseTTL bounds how long a lease may sit unreleased before another
// caller can take it over. A loader that crashes between Acquire and Release
// never deletes its lease row, so expiry is the only way the partition
// becomes loadable again.
const DefaultLeaseTTL = 15 * time.Minute

// LeaseRepo implements domain.PartitionLocker with a conditional upsert into
// the partition_leases table. SQLite's single-writer pool makes the upsert
// atomic, so two loaders contending for the same partition cannot both win.
type LeaseRepo struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewLeaseRepo creates a new LeaseRepo. A non-positive ttl falls back to
// DefaultLeaseTTL.
func NewLeaseRepo(db *sql.DB, ttl time.Duration) *LeaseRepo {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	return &LeaseRepo{db: db, ttl: ttl, now: time.Now}
}

var _ domain.PartitionLocker = (*LeaseRepo)(nil)

// Acquire attempts to take the lease for a partition key. Returns false when
// another holder owns it and the lease is younger than the TTL. An expired
// lease is taken over in the same statement.
func (r *LeaseRepo) Acquire(ctx context.Context, key, holder string) (bool, error) {
	now := r.now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO partition_leases (lease_key, holder, acquired_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (lease_key) DO UPDATE
		 SET holder = excluded.holder, acquired_at = excluded.acquired_at
		 WHERE partition_leases.acquired_at < ?`,
		key, holder, now, now.Add(-r.ttl))
	if err != nil {
		return false, fmt.Errorf("acquire lease %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("acquire lease %s: %w", key, err)
	}
	return n == 1, nil
}

// Release drops the lease for a partition key. Releasing an absent lease is
// not an error.
func (r *LeaseRepo) Release(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM partition_leases WHERE lease_key = ?`, key)
	if err != nil {
		return fmt.Errorf("release lease %s: %w", key, err)
	}
	return nil
}
