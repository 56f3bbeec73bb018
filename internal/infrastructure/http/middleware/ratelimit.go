package middleware

import (
	"net/http"
	"strconv"

	"github.com/ulule/limiter/v3"
	stdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// newLimiter parses "100-M", "1000-H", "50-S" into an in-memory limiter. Empty returns nil.
func newLimiter(rateFormatted string) (*limiter.Limiter, error) {
	if rateFormatted == "" {
		return nil, nil
	}
	rate, err := limiter.NewRateFromFormatted(rateFormatted)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), rate), nil
}

// NewIPRateLimiter limits by client IP. Empty rate disables.
func NewIPRateLimiter(rateFormatted string) (func(next http.Handler) http.Handler, error) {
	l, err := newLimiter(rateFormatted)
	if err != nil || l == nil {
		return passThrough, err
	}
	mw := stdlib.NewMiddleware(l, stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusTooManyRequests, "rate limit exceeded")
	}))
	return mw.Handler, nil
}

// NewVendorRateLimiter limits by resolved vendor ID so one busy storefront cannot starve the rest.
// Mount after TenantResolver; marketplace requests pass through. Empty rate disables.
func NewVendorRateLimiter(rateFormatted string) (func(next http.Handler) http.Handler, error) {
	l, err := newLimiter(rateFormatted)
	if err != nil || l == nil {
		return passThrough, err
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			vendor := VendorFromContext(r.Context())
			if vendor == nil {
				next.ServeHTTP(w, r)
				return
			}
			lc, err := l.Increment(r.Context(), "vendor:"+vendor.ID, 1)
			if err != nil {
				// Store failure: fail open.
				next.ServeHTTP(w, r)
				return
			}
			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(lc.Limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(lc.Remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(lc.Reset, 10))
			if lc.Reached {
				writeErr(w, http.StatusTooManyRequests, "vendor rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

func passThrough(next http.Handler) http.Handler { return next }
