package ingest

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakeflow/internal/domain"
	"lakeflow/internal/testutil"
)

const (
	testLanding = "landing"
	testBronze  = "bronze"
)

func newTestGateway(store *testutil.MockObjectStore, prov *testutil.MockProvenanceLog) *Gateway {
	g := NewGateway(store, prov, testLanding, testBronze, slog.New(slog.DiscardHandler))
	g.SetClock(func() time.Time {
		return time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	})
	return g
}

func TestGatewayHandle_RelocatesToBronze(t *testing.T) {
	store := testutil.NewMockObjectStore()
	store.PutObject(testLanding, "acme/sales/orders.csv", []byte("id\n1\n"))
	prov := &testutil.MockProvenanceLog{}
	g := newTestGateway(store, prov)

	result, err := g.Handle(context.Background(), domain.ObjectCreatedEvent{
		Bucket: testLanding,
		Name:   "acme/sales/orders.csv",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOK, result.Status)
	assert.Equal(t, "acme/sales/2024/03/01/orders.csv", result.BronzePath)

	// Object copied to the bronze bucket at the computed path.
	data, err := store.Read(context.Background(), testBronze, "acme/sales/2024/03/01/orders.csv")
	require.NoError(t, err)
	assert.Equal(t, []byte("id\n1\n"), data)

	// Provenance recorded after the copy.
	rec := prov.LastRecord()
	require.NotNil(t, rec)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, testLanding, rec.SourceBucket)
	assert.Equal(t, "acme/sales/orders.csv", rec.SourceObject)
	assert.Equal(t, "acme/sales/2024/03/01/orders.csv", rec.BronzeObject)
	assert.Equal(t, domain.ProvenanceStatusBronzeCreated, rec.Status)
}

func TestGatewayHandle_IgnoresIncompleteEvents(t *testing.T) {
	tests := []struct {
		name string
		evt  domain.ObjectCreatedEvent
	}{
		{name: "missing bucket", evt: domain.ObjectCreatedEvent{Name: "acme/sales/orders.csv"}},
		{name: "missing name", evt: domain.ObjectCreatedEvent{Bucket: testLanding}},
		{name: "empty event", evt: domain.ObjectCreatedEvent{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockObjectStore()
			prov := &testutil.MockProvenanceLog{}
			g := newTestGateway(store, prov)

			result, err := g.Handle(context.Background(), tt.evt)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusIgnored, result.Status)
			assert.Empty(t, store.Copies)
			assert.Empty(t, prov.Records)
		})
	}
}

func TestGatewayHandle_IgnoresForeignBucket(t *testing.T) {
	store := testutil.NewMockObjectStore()
	prov := &testutil.MockProvenanceLog{}
	g := newTestGateway(store, prov)

	result, err := g.Handle(context.Background(), domain.ObjectCreatedEvent{
		Bucket: "some-other-bucket",
		Name:   "acme/sales/orders.csv",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIgnored, result.Status)
	assert.Empty(t, store.Copies)
}

func TestGatewayHandle_RejectsShallowKey(t *testing.T) {
	store := testutil.NewMockObjectStore()
	prov := &testutil.MockProvenanceLog{}
	g := newTestGateway(store, prov)

	_, err := g.Handle(context.Background(), domain.ObjectCreatedEvent{
		Bucket: testLanding,
		Name:   "orders.csv",
	})
	require.Error(t, err)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Empty(t, store.Copies)
	assert.Empty(t, prov.Records)
}

func TestGatewayHandle_CopyFailure(t *testing.T) {
	store := testutil.NewMockObjectStore()
	store.CopyFn = func(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
		return domain.ErrUnavailable("bucket unreachable")
	}
	prov := &testutil.MockProvenanceLog{}
	g := newTestGateway(store, prov)

	_, err := g.Handle(context.Background(), domain.ObjectCreatedEvent{
		Bucket: testLanding,
		Name:   "acme/sales/orders.csv",
	})
	require.Error(t, err)
	var ue *domain.UnavailableError
	assert.ErrorAs(t, err, &ue)

	// No provenance without a successful copy.
	assert.Empty(t, prov.Records)
}

func TestGatewayHandle_NestedRemainderKeepsStructure(t *testing.T) {
	store := testutil.NewMockObjectStore()
	store.PutObject(testLanding, "acme/sales/batch7/orders.csv", []byte("id\n"))
	prov := &testutil.MockProvenanceLog{}
	g := newTestGateway(store, prov)

	result, err := g.Handle(context.Background(), domain.ObjectCreatedEvent{
		Bucket: testLanding,
		Name:   "acme/sales/batch7/orders.csv",
	})
	require.NoError(t, err)
	assert.Equal(t, "acme/sales/2024/03/01/batch7/orders.csv", result.BronzePath)
}
