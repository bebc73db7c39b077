package repository

import (
	"context"
	"sync"
	"time"

	"github.com/navid-fn/carrier-sales/internal/model"
)

type memoryCallRepository struct {
	mu      sync.RWMutex
	records []model.CallRecord
	now     func() time.Time
}

// NewMemoryCallRepository keeps the call log in process memory. Nothing survives a restart.
func NewMemoryCallRepository(opts ...Option) CallRecordRepository {
	o := buildOptions(opts)
	return &memoryCallRepository{now: o.now}
}

func (r *memoryCallRepository) Append(_ context.Context, record *model.CallRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var last time.Time
	if n := len(r.records); n > 0 {
		last = r.records[n-1].Timestamp
	}
	stamp(record, r.now, last)
	record.ID = int64(len(r.records) + 1)
	r.records = append(r.records, *record)
	return nil
}

func (r *memoryCallRepository) Find(_ context.Context, filter model.CallFilter) ([]model.CallRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return filterCalls(r.records, filter), nil
}

func (r *memoryCallRepository) Ping(context.Context) error { return nil }

func (r *memoryCallRepository) Close() error { return nil }
