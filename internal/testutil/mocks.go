// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"

	"lakeflow/internal/domain"
)

// === Object Store Mock ===

// MockObjectStore implements domain.ObjectStore backed by an in-memory
// bucket/key map. Each method may be overridden with a Fn field; otherwise
// it operates on Objects.
type MockObjectStore struct {
	ListFn func(ctx context.Context, bucket, prefix string) ([]domain.ObjectInfo, error)
	CopyFn func(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error
	ReadFn func(ctx context.Context, bucket, key string) ([]byte, error)

	mu      sync.Mutex
	Objects map[string][]byte // keyed by "bucket/key"
	Copies  []string          // "srcBucket/srcKey -> dstBucket/dstKey" for assertions
}

// NewMockObjectStore returns an empty in-memory store.
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{Objects: make(map[string][]byte)}
}

// PutObject seeds an object for the test.
func (m *MockObjectStore) PutObject(bucket, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[bucket+"/"+key] = data
}

// List implements the interface method for testing.
func (m *MockObjectStore) List(ctx context.Context, bucket, prefix string) ([]domain.ObjectInfo, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, bucket, prefix)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var infos []domain.ObjectInfo
	for k, v := range m.Objects {
		if strings.HasPrefix(k, bucket+"/"+prefix) {
			infos = append(infos, domain.ObjectInfo{
				Key:  strings.TrimPrefix(k, bucket+"/"),
				Size: int64(len(v)),
			})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// Copy implements the interface method for testing.
func (m *MockObjectStore) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	if m.CopyFn != nil {
		return m.CopyFn(ctx, srcBucket, srcKey, dstBucket, dstKey)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[srcBucket+"/"+srcKey]
	if !ok {
		return domain.ErrNotFound("object %s/%s not found", srcBucket, srcKey)
	}
	m.Objects[dstBucket+"/"+dstKey] = data
	m.Copies = append(m.Copies, srcBucket+"/"+srcKey+" -> "+dstBucket+"/"+dstKey)
	return nil
}

// Read implements the interface method for testing.
func (m *MockObjectStore) Read(ctx context.Context, bucket, key string) ([]byte, error) {
	if m.ReadFn != nil {
		return m.ReadFn(ctx, bucket, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[bucket+"/"+key]
	if !ok {
		return nil, domain.ErrNotFound("object %s/%s not found", bucket, key)
	}
	return data, nil
}

var _ domain.ObjectStore = (*MockObjectStore)(nil)

// === Marker Store Mock ===

// MockMarkerStore implements domain.MarkerStore with an in-memory set.
type MockMarkerStore struct {
	ExistsFn func(ctx context.Context, id string) (bool, error)
	PutFn    func(ctx context.Context, m *domain.IngestionMarker) error

	mu      sync.Mutex
	Markers map[string]*domain.IngestionMarker
}

// NewMockMarkerStore returns an empty marker store.
func NewMockMarkerStore() *MockMarkerStore {
	return &MockMarkerStore{Markers: make(map[string]*domain.IngestionMarker)}
}

// Exists implements the interface method for testing.
func (m *MockMarkerStore) Exists(ctx context.Context, id string) (bool, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Markers[id]
	return ok, nil
}

// Put implements the interface method for testing.
func (m *MockMarkerStore) Put(ctx context.Context, marker *domain.IngestionMarker) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, marker)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Markers[marker.ID] = marker
	return nil
}

var _ domain.MarkerStore = (*MockMarkerStore)(nil)

// === Provenance Log Mock ===

// MockProvenanceLog implements domain.ProvenanceLog, collecting records.
type MockProvenanceLog struct {
	AppendFn func(ctx context.Context, rec *domain.ProvenanceRecord) error

	mu      sync.Mutex
	Records []*domain.ProvenanceRecord
}

// Append implements the interface method for testing.
func (m *MockProvenanceLog) Append(ctx context.Context, rec *domain.ProvenanceRecord) error {
	if m.AppendFn != nil {
		if err := m.AppendFn(ctx, rec); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, rec)
	return nil
}

// LastRecord returns the most recently appended record, or nil.
func (m *MockProvenanceLog) LastRecord() *domain.ProvenanceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Records) == 0 {
		return nil
	}
	return m.Records[len(m.Records)-1]
}

var _ domain.ProvenanceLog = (*MockProvenanceLog)(nil)

// === Partition Locker Mock ===

// MockLocker implements domain.PartitionLocker with an in-memory lease map.
type MockLocker struct {
	AcquireFn func(ctx context.Context, key, holder string) (bool, error)
	ReleaseFn func(ctx context.Context, key string) error

	mu     sync.Mutex
	Leases map[string]string // key → holder
}

// NewMockLocker returns a locker with no leases held.
func NewMockLocker() *MockLocker {
	return &MockLocker{Leases: make(map[string]string)}
}

// Acquire implements the interface method for testing.
func (m *MockLocker) Acquire(ctx context.Context, key, holder string) (bool, error) {
	if m.AcquireFn != nil {
		return m.AcquireFn(ctx, key, holder)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.Leases[key]; held {
		return false, nil
	}
	m.Leases[key] = holder
	return true, nil
}

// Release implements the interface method for testing.
func (m *MockLocker) Release(ctx context.Context, key string) error {
	if m.ReleaseFn != nil {
		return m.ReleaseFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Leases, key)
	return nil
}

var _ domain.PartitionLocker = (*MockLocker)(nil)

// === Warehouse Mock ===

// AppendCall records one Warehouse.Append invocation.
type AppendCall struct {
	Table string
	Batch *domain.Batch
}

// ReplaceCall records one Warehouse.ReplaceTable invocation.
type ReplaceCall struct {
	Table string
	Query string
}

// MockWarehouse implements domain.Warehouse, collecting calls.
type MockWarehouse struct {
	AppendFn       func(ctx context.Context, table string, batch *domain.Batch) error
	ReplaceTableFn func(ctx context.Context, table, query string) error

	mu       sync.Mutex
	Appends  []AppendCall
	Replaces []ReplaceCall
}

// Append implements the interface method for testing.
func (m *MockWarehouse) Append(ctx context.Context, table string, batch *domain.Batch) error {
	if m.AppendFn != nil {
		if err := m.AppendFn(ctx, table, batch); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Appends = append(m.Appends, AppendCall{Table: table, Batch: batch})
	return nil
}

// ReplaceTable implements the interface method for testing.
func (m *MockWarehouse) ReplaceTable(ctx context.Context, table, query string) error {
	if m.ReplaceTableFn != nil {
		if err := m.ReplaceTableFn(ctx, table, query); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Replaces = append(m.Replaces, ReplaceCall{Table: table, Query: query})
	return nil
}

// ReplacedTables returns the replaced table names in call order.
func (m *MockWarehouse) ReplacedTables() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	tables := make([]string, len(m.Replaces))
	for i, c := range m.Replaces {
		tables[i] = c.Table
	}
	return tables
}

var _ domain.Warehouse = (*MockWarehouse)(nil)
