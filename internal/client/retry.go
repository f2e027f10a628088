package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/kilupskalvis/vimlantis/internal/models"
)

// RetryConfig configures reconnect behavior for the event subscription.
type RetryConfig struct {
	MaxRetries     int // consecutive failed dials before giving up, <0 retries forever
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JitterFraction float64 // 0.0 to 1.0
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		JitterFraction: 0.25,
	}
}

// isTransient returns true for errors that are worth retrying.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status >= 500 || re.Status == http.StatusTooManyRequests
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true // network errors are transient
}

// backoff computes the delay for the given attempt with jitter.
func (rc *RetryConfig) backoff(attempt int) time.Duration {
	base := float64(rc.InitialBackoff) * math.Pow(2, float64(attempt))
	if base > float64(rc.MaxBackoff) {
		base = float64(rc.MaxBackoff)
	}
	jitter := base * rc.JitterFraction * (rand.Float64()*2 - 1)
	d := time.Duration(base + jitter)
	if d < 0 {
		d = 0
	}
	return d
}

// sleep waits for the given duration or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Follow keeps an event subscription alive until ctx is cancelled,
// redialing with exponential backoff whenever the connection fails or
// drops. The attempt counter resets after every connection that was
// established. A nil cfg uses DefaultRetryConfig.
func (c *HTTPClient) Follow(ctx context.Context, cfg *RetryConfig, logger *slog.Logger, fn func(models.Event)) error {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	attempt := 0
	for {
		err := c.Subscribe(ctx, fn)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, ErrConnectionLost) {
			attempt = 0
		}
		if !isTransient(err) {
			return err
		}
		if cfg.MaxRetries >= 0 && attempt >= cfg.MaxRetries {
			return fmt.Errorf("follow events: %w (after %d retries)", err, attempt)
		}

		d := cfg.backoff(attempt)
		logger.Debug("event connection failed, retrying", "error", err, "attempt", attempt+1, "backoff", d)
		if err := sleep(ctx, d); err != nil {
			return nil
		}
		attempt++
	}
}
