package handoff

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/navid-fn/carrier-sales/internal/metrics"
	"github.com/sirupsen/logrus"
)

// ErrSinkUnavailable is returned while a sink's breaker is open.
var ErrSinkUnavailable = errors.New("hand-off sink unavailable")

// breakerState is the state of a sink breaker.
type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes a sink breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures int
	// Cooldown is how long an open breaker rejects transfers before probing the sink again.
	Cooldown time.Duration
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.MaxFailures <= 0 {
		c.MaxFailures = 5
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 30 * time.Second
	}
	return c
}

type breakerDispatcher struct {
	name   string
	next   Dispatcher
	config BreakerConfig
	logger logrus.FieldLogger
	now    func() time.Time

	mu       sync.Mutex
	state    breakerState
	failures int
	openedAt time.Time
}

// WithBreaker wraps next so that after MaxFailures consecutive failures transfers are
// rejected with ErrSinkUnavailable until Cooldown has passed. One probe transfer is then
// let through; success closes the breaker and failure reopens it.
func WithBreaker(name string, next Dispatcher, cfg BreakerConfig, logger logrus.FieldLogger) Dispatcher {
	metrics.HandoffSinkOpen.WithLabelValues(name).Set(0)
	return &breakerDispatcher{
		name:   name,
		next:   next,
		config: cfg.withDefaults(),
		logger: logger.WithField("sink", name),
		now:    time.Now,
	}
}

func (b *breakerDispatcher) Dispatch(ctx context.Context, t Transfer) error {
	if !b.allow() {
		return fmt.Errorf("%s: %w", b.name, ErrSinkUnavailable)
	}
	err := b.next.Dispatch(ctx, t)
	b.record(err)
	return err
}

func (b *breakerDispatcher) Close() error { return b.next.Close() }

func (b *breakerDispatcher) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateClosed:
		return true
	case stateOpen:
		if b.now().Sub(b.openedAt) < b.config.Cooldown {
			return false
		}
		b.setState(stateHalfOpen)
		return true
	default:
		// a probe is already in flight
		return false
	}
}

func (b *breakerDispatcher) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		b.setState(stateClosed)
		return
	}

	b.failures++
	if b.state == stateHalfOpen || b.failures >= b.config.MaxFailures {
		b.openedAt = b.now()
		if b.state != stateOpen {
			b.logger.WithError(err).Warnf("Sink failing after %d attempts, pausing hand-offs for %s",
				b.failures, b.config.Cooldown)
		}
		b.setState(stateOpen)
	}
}

func (b *breakerDispatcher) setState(state breakerState) {
	if b.state == state {
		return
	}
	b.logger.Infof("Sink breaker %s -> %s", b.state, state)
	b.state = state

	open := 0.0
	if state == stateOpen {
		open = 1
	}
	metrics.HandoffSinkOpen.WithLabelValues(b.name).Set(open)
}
