package batch

import (
	"context"
	"strings"

	"golang.org/x/time/rate"
)

type wrappedLimiter struct {
	limiter *rate.Limiter
}

func newWrappedLimiter(r rate.Limit, b int) *wrappedLimiter {
	if r <= 0 {
		r = rate.Inf
	}
	if b < 1 {
		b = 1
	}
	return &wrappedLimiter{
		limiter: rate.NewLimiter(r, b),
	}
}

func (wl *wrappedLimiter) Wait(ctx context.Context) error {
	err := wl.limiter.Wait(ctx)
	if err == nil {
		return nil
	}
	// The limiter fails early when the wait would overrun the context
	// deadline. Treat that the same as the deadline itself so callers
	// only have to deal with context errors.
	if strings.Contains(err.Error(), "would exceed context deadline") {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}
