package handoff

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	webhookTimeout    = 10 * time.Second
	webhookRetryCount = 2
)

type webhookDispatcher struct {
	client *resty.Client
	url    string
	logger logrus.FieldLogger
}

// NewWebhookDispatcher posts every transfer as JSON to url.
// Server errors and transport failures are retried.
func NewWebhookDispatcher(url string, logger logrus.FieldLogger) Dispatcher {
	client := resty.New()
	client.SetTimeout(webhookTimeout)
	client.SetRetryCount(webhookRetryCount)
	client.SetRetryWaitTime(200 * time.Millisecond)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= 500
	})
	client.SetHeader("Content-Type", "application/json")

	return &webhookDispatcher{
		client: client,
		url:    url,
		logger: logger.WithField("sink", "webhook"),
	}
}

func (d *webhookDispatcher) Dispatch(ctx context.Context, t Transfer) error {
	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(t).
		Post(d.url)
	if err != nil {
		return fmt.Errorf("post transfer webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("transfer webhook returned %s", resp.Status())
	}

	d.logger.WithFields(logrus.Fields{
		"transfer_id": t.ID.String(),
		"status":      resp.StatusCode(),
	}).Debug("Transfer delivered to webhook")
	return nil
}

func (d *webhookDispatcher) Close() error { return nil }
