package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakeflow/internal/db"
)

func TestLeaseRepo_AcquireRelease(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewLeaseRepo(writeDB, 0)
	ctx := context.Background()

	acquired, err := repo.Acquire(ctx, "acme__sales__2024-03-01", "holder-1")
	require.NoError(t, err)
	assert.True(t, acquired)

	// Second acquirer loses while the lease is held.
	acquired, err = repo.Acquire(ctx, "acme__sales__2024-03-01", "holder-2")
	require.NoError(t, err)
	assert.False(t, acquired)

	// A different partition is not affected.
	acquired, err = repo.Acquire(ctx, "acme__sales__2024-03-02", "holder-2")
	require.NoError(t, err)
	assert.True(t, acquired)

	require.NoError(t, repo.Release(ctx, "acme__sales__2024-03-01"))

	acquired, err = repo.Acquire(ctx, "acme__sales__2024-03-01", "holder-2")
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestLeaseRepo_ExpiredLeaseIsTakenOver(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewLeaseRepo(writeDB, time.Minute)
	ctx := context.Background()

	// A holder that crashed after Acquire never releases its lease.
	acquired, err := repo.Acquire(ctx, "acme__sales__2024-03-01", "crashed-holder")
	require.NoError(t, err)
	require.True(t, acquired)

	// While the lease is younger than the TTL it stays exclusive.
	acquired, err = repo.Acquire(ctx, "acme__sales__2024-03-01", "new-holder")
	require.NoError(t, err)
	assert.False(t, acquired)

	// Age the lease past the TTL.
	repo.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	acquired, err = repo.Acquire(ctx, "acme__sales__2024-03-01", "new-holder")
	require.NoError(t, err)
	assert.True(t, acquired, "an expired lease must be reclaimable")

	var holder string
	require.NoError(t, writeDB.QueryRowContext(ctx,
		`SELECT holder FROM partition_leases WHERE lease_key = ?`,
		"acme__sales__2024-03-01").Scan(&holder))
	assert.Equal(t, "new-holder", holder)
}

func TestLeaseRepo_TakeoverKeepsOtherLeases(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewLeaseRepo(writeDB, time.Minute)
	ctx := context.Background()

	acquired, err := repo.Acquire(ctx, "acme__sales__2024-03-01", "holder-1")
	require.NoError(t, err)
	require.True(t, acquired)

	repo.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	// A lease acquired at the aged time is still fresh from that clock's
	// point of view, so contention on it behaves normally.
	acquired, err = repo.Acquire(ctx, "acme__billing__2024-03-01", "holder-1")
	require.NoError(t, err)
	require.True(t, acquired)

	acquired, err = repo.Acquire(ctx, "acme__billing__2024-03-01", "holder-2")
	require.NoError(t, err)
	assert.False(t, acquired)
}

func TestLeaseRepo_ReleaseAbsentLease(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewLeaseRepo(writeDB, 0)

	assert.NoError(t, repo.Release(context.Background(), "never-acquired"))
}
