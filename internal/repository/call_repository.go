// Package repository holds the load catalog and the call record stores.
package repository

import (
	"context"
	"time"

	"github.com/navid-fn/carrier-sales/internal/model"
	"github.com/navid-fn/carrier-sales/internal/query"
)

// CallRecordRepository is the append-only call log.
type CallRecordRepository interface {
	// Append stamps the record (when its timestamp is zero) and stores it durably before returning.
	// Timestamps never go backwards in insertion order.
	Append(ctx context.Context, record *model.CallRecord) error

	// Find returns the records matching every set filter exactly, in insertion order.
	Find(ctx context.Context, filter model.CallFilter) ([]model.CallRecord, error)

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases storage resources.
	Close() error
}

// Option configures a call record repository.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now as the source of record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// stamp assigns the record timestamp and keeps it from preceding the last stored one.
func stamp(record *model.CallRecord, now func() time.Time, last time.Time) {
	if record.Timestamp.IsZero() {
		record.Timestamp = now()
	}
	if record.Timestamp.Before(last) {
		record.Timestamp = last
	}
}

// callFilters converts a CallFilter into exact-mode filters, skipping empty values.
func callFilters(f model.CallFilter) []query.Filter {
	var filters []query.Filter
	if f.Outcome != "" {
		filters = append(filters, query.Filter{Field: "outcome", Value: f.Outcome})
	}
	if f.Sentiment != "" {
		filters = append(filters, query.Filter{Field: "sentiment", Value: f.Sentiment})
	}
	if f.LoadAccepted != "" {
		filters = append(filters, query.Bool("load_accepted", f.LoadAccepted))
	}
	return filters
}

func filterCalls(records []model.CallRecord, f model.CallFilter) []model.CallRecord {
	return query.Select(records, query.Exact, callFilters(f)...)
}
