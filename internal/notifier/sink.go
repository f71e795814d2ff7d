package notifier

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"StockScanner/internal/model"
)

// Sink receives finished scan results.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, result *model.ScanResult) error
}

// retryPolicy is the exponential backoff shared by the HTTP sinks.
type retryPolicy struct {
	MaxRetries int
	Backoff    time.Duration // first wait, doubled per attempt
}

var defaultRetry = retryPolicy{MaxRetries: 3, Backoff: time.Second}

// do calls send until it succeeds, the retries run out or ctx ends.
func (p retryPolicy) do(ctx context.Context, log *zap.Logger, name string, send func(context.Context) error) error {
	var lastErr error
	for i := 0; i <= p.MaxRetries; i++ {
		err := send(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == p.MaxRetries {
			break
		}
		backoff := p.Backoff * time.Duration(1<<uint(i))
		log.Warn("send failed, retrying",
			zap.String("sink", name),
			zap.Int("attempt", i+1),
			zap.Int("of", p.MaxRetries+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("%s: all %d attempts failed: %w", name, p.MaxRetries+1, lastErr)
}
