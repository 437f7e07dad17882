package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakeflow/internal/db"
	"lakeflow/internal/domain"
)

func testRecord(id string, at time.Time) *domain.ProvenanceRecord {
	return &domain.ProvenanceRecord{
		ID:           id,
		SourceBucket: "landing",
		SourceObject: "acme/sales/orders.csv",
		BronzeObject: "acme/sales/2024/03/01/orders.csv",
		Status:       domain.ProvenanceStatusBronzeCreated,
		IngestedAt:   at,
	}
}

func TestProvenanceRepo_AppendAndList(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewProvenanceRepo(writeDB)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, testRecord("id-2", base.Add(time.Minute))))
	require.NoError(t, repo.Append(ctx, testRecord("id-1", base)))

	recs, err := repo.ListBySource(ctx, "landing", "acme/sales/orders.csv")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Oldest first regardless of insert order.
	assert.Equal(t, "id-1", recs[0].ID)
	assert.Equal(t, "id-2", recs[1].ID)
	assert.Equal(t, domain.ProvenanceStatusBronzeCreated, recs[0].Status)
	assert.Equal(t, "acme/sales/2024/03/01/orders.csv", recs[0].BronzeObject)
}

func TestProvenanceRepo_RedeliveredEventAppendsAgain(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewProvenanceRepo(writeDB)
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, repo.Append(ctx, testRecord("id-1", base)))
	require.NoError(t, repo.Append(ctx, testRecord("id-2", base.Add(time.Second))))

	recs, err := repo.ListBySource(ctx, "landing", "acme/sales/orders.csv")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestProvenanceRepo_ListUnknownSource(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewProvenanceRepo(writeDB)

	recs, err := repo.ListBySource(context.Background(), "landing", "nope.csv")
	require.NoError(t, err)
	assert.Empty(t, recs)
}
