package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/navid-fn/carrier-sales/internal/handoff"
	"github.com/navid-fn/carrier-sales/internal/metrics"
)

type TransferService struct {
	dispatcher handoff.Dispatcher
	now        func() time.Time
}

func NewTransferService(dispatcher handoff.Dispatcher) *TransferService {
	return &TransferService{
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Transfer hands the call described by payload["message"] to sales.
// The message key must be present; a non-string value is forwarded as its JSON text.
func (ts *TransferService) Transfer(ctx context.Context, payload map[string]json.RawMessage) (handoff.Transfer, error) {
	raw, ok := payload["message"]
	if !ok {
		return handoff.Transfer{}, handoff.ErrMissingMessage
	}

	transfer := handoff.NewTransfer(messageText(raw), ts.now())
	if err := ts.dispatcher.Dispatch(ctx, transfer); err != nil {
		metrics.HandoffsTotal.WithLabelValues("error").Inc()
		return handoff.Transfer{}, fmt.Errorf("dispatch transfer: %w", err)
	}
	metrics.HandoffsTotal.WithLabelValues("ok").Inc()
	return transfer, nil
}

func messageText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
