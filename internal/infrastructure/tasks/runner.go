package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/knawat/mp-backend/internal/application/orders"
	"github.com/knawat/mp-backend/internal/application/taxes"
)

// sideEffectTimeout bounds each fire-and-forget task so a stuck cache or
// SMTP server cannot leak goroutines forever.
const sideEffectTimeout = 30 * time.Second

// BestEffort runs side effects in their own goroutines. Failures and panics
// are logged, never propagated; the request that spawned the task has usually
// already returned by the time it runs.
type BestEffort struct {
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewBestEffort creates a best-effort runner.
func NewBestEffort(logger *zap.Logger) *BestEffort {
	return &BestEffort{logger: logger}
}

// Go schedules fn on a fresh goroutine with its own timeout context.
func (r *BestEffort) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("side effect panicked",
					zap.String("task", name),
					zap.Any("panic", rec))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			r.logger.Warn("side effect failed",
				zap.String("task", name),
				zap.Error(err))
		}
	}()
}

// Wait blocks until all scheduled tasks finish. Used during shutdown.
func (r *BestEffort) Wait() {
	r.wg.Wait()
}

// Ensure BestEffort satisfies the runner contracts of its consumers
var (
	_ orders.Runner = (*BestEffort)(nil)
	_ taxes.Runner  = (*BestEffort)(nil)
)
