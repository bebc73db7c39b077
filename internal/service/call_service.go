// Package service holds the use cases behind the HTTP routes.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/navid-fn/carrier-sales/internal/analytics"
	"github.com/navid-fn/carrier-sales/internal/metrics"
	"github.com/navid-fn/carrier-sales/internal/model"
	"github.com/navid-fn/carrier-sales/internal/repository"
	"github.com/sirupsen/logrus"
)

type CallMetricsService struct {
	repo   repository.CallRecordRepository
	logger logrus.FieldLogger
}

func NewCallMetricsService(repo repository.CallRecordRepository, logger logrus.FieldLogger) *CallMetricsService {
	return &CallMetricsService{
		repo:   repo,
		logger: logger,
	}
}

// Log builds a record from a decoded JSON payload and appends it to the call log.
// Missing fields take their defaults; a field of the wrong JSON type is an error.
func (cs *CallMetricsService) Log(ctx context.Context, payload map[string]json.RawMessage) (model.CallRecord, error) {
	record, err := model.NewCallRecord(payload)
	if err != nil {
		return model.CallRecord{}, err
	}

	if err := cs.repo.Append(ctx, &record); err != nil {
		metrics.CallStoreErrorsTotal.WithLabelValues("append").Inc()
		return model.CallRecord{}, fmt.Errorf("append call record: %w", err)
	}
	metrics.CallRecordsTotal.WithLabelValues(outcomeLabel(record.Outcome)).Inc()

	cs.logger.WithFields(logrus.Fields{
		"mc_number": record.MCNumber,
		"load_id":   record.LoadID,
		"outcome":   record.Outcome,
	}).Info("Call metrics logged")
	return record, nil
}

// List returns the logged calls matching filter, oldest first.
func (cs *CallMetricsService) List(ctx context.Context, filter model.CallFilter) ([]model.CallRecord, error) {
	records, err := cs.repo.Find(ctx, filter)
	if err != nil {
		metrics.CallStoreErrorsTotal.WithLabelValues("find").Inc()
		return nil, fmt.Errorf("find call records: %w", err)
	}
	return records, nil
}

// Healthy reports whether the call store is reachable.
func (cs *CallMetricsService) Healthy(ctx context.Context) error {
	return cs.repo.Ping(ctx)
}

// outcomeLabel bounds the metric label set; outcomes are free text.
func outcomeLabel(outcome string) string {
	switch outcome {
	case model.OutcomeSuccessful, model.OutcomeFailed, model.OutcomeTransferred:
		return outcome
	case "":
		return "unknown"
	}
	return "other"
}

// DashboardData is the payload of the dashboard refresh.
type DashboardData struct {
	Metrics analytics.Metrics           `json:"metrics"`
	Charts  map[string]analytics.Figure `json:"charts"`
}

type DashboardService struct {
	repo repository.CallRecordRepository
}

func NewDashboardService(repo repository.CallRecordRepository) *DashboardService {
	return &DashboardService{
		repo: repo,
	}
}

// Data summarizes the whole call log. Nothing is cached between calls.
func (ds *DashboardService) Data(ctx context.Context) (DashboardData, error) {
	records, err := ds.repo.Find(ctx, model.CallFilter{})
	if err != nil {
		metrics.CallStoreErrorsTotal.WithLabelValues("find").Inc()
		return DashboardData{}, fmt.Errorf("read call log: %w", err)
	}

	report := analytics.Summarize(records)
	return DashboardData{
		Metrics: report.Metrics,
		Charts:  analytics.Figures(report),
	}, nil
}
