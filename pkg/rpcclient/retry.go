package rpcclient

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"
)

type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseBackoff: 50 * time.Millisecond}
}

// Backoff returns base*2^attempt plus up to half of that as jitter.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	exp := p.BaseBackoff * time.Duration(1<<attempt)
	if exp <= 1 {
		return exp
	}
	return exp + time.Duration(rand.Int63n(int64(exp/2)))
}

func (p RetryPolicy) wait(ctx context.Context, attempt int) error {
	t := time.NewTimer(p.Backoff(attempt))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryable(err error) bool {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, errDecode) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}
