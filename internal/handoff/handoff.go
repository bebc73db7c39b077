// Package handoff forwards successful calls to the human sales team.
package handoff

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/navid-fn/carrier-sales/configs"
	"github.com/sirupsen/logrus"
)

// ErrMissingMessage is returned when a transfer request carries no message field.
var ErrMissingMessage = errors.New("missing message field")

// Transfer is one hand-off of a carrier call to a sales rep.
type Transfer struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTransfer stamps a new transfer with a random id.
func NewTransfer(message string, now time.Time) Transfer {
	return Transfer{
		ID:        uuid.New(),
		Message:   message,
		CreatedAt: now,
	}
}

// Dispatcher delivers transfers to one sink.
type Dispatcher interface {
	// Dispatch returns once the sink has accepted the transfer.
	Dispatch(ctx context.Context, t Transfer) error
	Close() error
}

// New builds the dispatcher for cfg. Transfers are always logged; the webhook and Kafka
// sinks are added when configured, each behind its own breaker.
func New(cfg configs.HandoffConfig, logger logrus.FieldLogger) (Dispatcher, error) {
	dispatchers := []Dispatcher{NewLogDispatcher(logger)}
	breaker := BreakerConfig{}

	if cfg.WebhookURL != "" {
		dispatchers = append(dispatchers,
			WithBreaker("webhook", NewWebhookDispatcher(cfg.WebhookURL, logger), breaker, logger))
	}
	if cfg.KafkaBroker != "" {
		kd, err := NewKafkaDispatcher(cfg.KafkaBroker, cfg.KafkaTopic, logger)
		if err != nil {
			return nil, err
		}
		dispatchers = append(dispatchers, WithBreaker("kafka", kd, breaker, logger))
	}

	if len(dispatchers) == 1 {
		return dispatchers[0], nil
	}
	return NewMultiDispatcher(dispatchers...), nil
}

type logDispatcher struct {
	logger logrus.FieldLogger
}

// NewLogDispatcher records transfers in the log and nothing else.
func NewLogDispatcher(logger logrus.FieldLogger) Dispatcher {
	return &logDispatcher{logger: logger}
}

func (d *logDispatcher) Dispatch(_ context.Context, t Transfer) error {
	d.logger.WithFields(logrus.Fields{
		"transfer_id": t.ID.String(),
		"message":     t.Message,
	}).Info("Transferring call to sales")
	return nil
}

func (d *logDispatcher) Close() error { return nil }

type multiDispatcher struct {
	dispatchers []Dispatcher
}

// NewMultiDispatcher fans a transfer out to every dispatcher. All sinks are attempted
// even when one fails; the failures are joined.
func NewMultiDispatcher(dispatchers ...Dispatcher) Dispatcher {
	return &multiDispatcher{dispatchers: dispatchers}
}

func (m *multiDispatcher) Dispatch(ctx context.Context, t Transfer) error {
	var errs []error
	for _, d := range m.dispatchers {
		if err := d.Dispatch(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiDispatcher) Close() error {
	var errs []error
	for _, d := range m.dispatchers {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
