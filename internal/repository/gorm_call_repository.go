package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/navid-fn/carrier-sales/internal/model"
	"gorm.io/gorm"
)

// gormCallRepository stores the call log in a SQL table (sqlite or ClickHouse).
// ClickHouse has no autoincrement, so ids are assigned here as max(id)+1 under a mutex.
type gormCallRepository struct {
	db  *gorm.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewGormCallRepository serves the call log from the call_records table. The schema must
// already exist (see storage.Migrate).
func NewGormCallRepository(db *gorm.DB, opts ...Option) CallRecordRepository {
	o := buildOptions(opts)
	return &gormCallRepository{db: db, now: o.now}
}

func (r *gormCallRepository) Append(ctx context.Context, record *model.CallRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var last []model.CallRecord
	if err := r.db.WithContext(ctx).Order("id desc").Limit(1).Find(&last).Error; err != nil {
		return fmt.Errorf("read last call record: %w", err)
	}

	var lastTime time.Time
	var lastID int64
	if len(last) > 0 {
		lastTime = last[0].Timestamp
		lastID = last[0].ID
	}
	stamp(record, r.now, lastTime)
	record.ID = lastID + 1

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("insert call record: %w", err)
	}
	return nil
}

func (r *gormCallRepository) Find(ctx context.Context, filter model.CallFilter) ([]model.CallRecord, error) {
	q := r.db.WithContext(ctx).Model(&model.CallRecord{})
	if filter.Outcome != "" {
		q = q.Where("outcome = ?", filter.Outcome)
	}
	if filter.Sentiment != "" {
		q = q.Where("sentiment = ?", filter.Sentiment)
	}
	if filter.LoadAccepted != "" {
		q = q.Where("load_accepted = ?", strings.EqualFold(filter.LoadAccepted, "true"))
	}

	records := make([]model.CallRecord, 0)
	if err := q.Order("id asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query call records: %w", err)
	}
	return records, nil
}

func (r *gormCallRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *gormCallRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
