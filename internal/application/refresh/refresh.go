package refresh

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Warmer re-populates the vendor cache and reports how many keys it wrote (tenancy.Service).
type Warmer interface {
	Warm(ctx context.Context) (int, error)
}

// RunOnce warms the cache with a bounded context. Errors are returned, not retried.
func RunOnce(ctx context.Context, w Warmer, timeout time.Duration) (int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return w.Warm(ctx)
}

// Run re-warms the cache every interval until ctx is done. interval 0 = no-op.
// A failed pass is logged and the next tick tries again; cached entries keep serving meanwhile.
func Run(ctx context.Context, w Warmer, interval, timeout time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := RunOnce(ctx, w, timeout)
			if err != nil {
				log.Warn().Err(err).Msg("vendor cache refresh failed")
				continue
			}
			log.Debug().Int("keys", n).Msg("vendor cache refreshed")
		}
	}
}
