package domain

import "context"

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStore is the object storage contract: list-by-prefix, server-side
// copy, and whole-object read. Implementations wrap GCS, S3, or Azure Blob.
type ObjectStore interface {
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error
	Read(ctx context.Context, bucket, key string) ([]byte, error)
}

// MarkerStore is the durable has-been-loaded record. Put must be idempotent:
// re-writing an existing marker id is not an error.
type MarkerStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Put(ctx context.Context, m *IngestionMarker) error
}

// ProvenanceLog is the append-only ingestion log.
type ProvenanceLog interface {
	Append(ctx context.Context, rec *ProvenanceRecord) error
}

// PartitionLocker serializes loads of the same partition. Acquire returns
// false when another holder owns the lease.
type PartitionLocker interface {
	Acquire(ctx context.Context, key, holder string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Warehouse is the analytical store contract. Append creates the table on
// first write using the batch's inferred schema and appends rows; appending
// an empty batch is a no-op. ReplaceTable atomically rebuilds a table from
// a query (CREATE OR REPLACE semantics).
type Warehouse interface {
	Append(ctx context.Context, table string, batch *Batch) error
	ReplaceTable(ctx context.Context, table, query string) error
}
