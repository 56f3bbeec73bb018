package middleware

import (
	"context"

	"github.com/amirhosseinghanipour/storefront/internal/domain"
)

type contextKey string

const (
	vendorContextKey   contextKey = "vendor"
	degradedContextKey contextKey = "tenant_degraded"
)

// WithVendor injects the resolved vendor into the context. nil means marketplace.
func WithVendor(ctx context.Context, vendor *domain.Vendor) context.Context {
	return context.WithValue(ctx, vendorContextKey, vendor)
}

// VendorFromContext returns the vendor from the context, or nil (marketplace).
func VendorFromContext(ctx context.Context) *domain.Vendor {
	v := ctx.Value(vendorContextKey)
	if v == nil {
		return nil
	}
	vendor, _ := v.(*domain.Vendor)
	return vendor
}

// WithDegraded marks the request as served in marketplace context because tenant lookup failed.
func WithDegraded(ctx context.Context) context.Context {
	return context.WithValue(ctx, degradedContextKey, true)
}

// IsDegraded reports whether tenant resolution failed for this request.
func IsDegraded(ctx context.Context) bool {
	d, _ := ctx.Value(degradedContextKey).(bool)
	return d
}
