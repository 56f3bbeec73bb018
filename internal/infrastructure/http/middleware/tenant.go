package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/storefront/internal/domain"
	domerrors "github.com/amirhosseinghanipour/storefront/internal/domain/errors"
)

// DegradedHeader is set on responses served in marketplace context because the vendor
// lookup failed, so edge caches and clients can tell an outage from a plain miss.
const DegradedHeader = "X-Tenant-Degraded"

// HostResolver resolves a Host header to a vendor (tenancy.Service).
type HostResolver interface {
	ResolveVendorByHost(ctx context.Context, host string) (*domain.Vendor, error)
}

// TenantResolver resolves the request host to a vendor and sets it in context.
// Unknown hosts fall through as marketplace; backend failures fall through as degraded marketplace.
// A request whose own context ended during the lookup is not counted as degraded.
type TenantResolver struct {
	resolver           HostResolver
	trustForwardedHost bool
	log                zerolog.Logger
}

func NewTenantResolver(resolver HostResolver, trustForwardedHost bool, log zerolog.Logger) *TenantResolver {
	return &TenantResolver{resolver: resolver, trustForwardedHost: trustForwardedHost, log: log}
}

func (m *TenantResolver) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := m.host(r)
		ctx := r.Context()
		vendor, err := m.resolver.ResolveVendorByHost(ctx, host)
		switch {
		case err == nil:
			RecordResolution("vendor")
			ctx = WithVendor(ctx, vendor)
		case errors.Is(err, domerrors.ErrVendorNotFound):
			RecordResolution("marketplace")
		case errors.Is(err, domerrors.ErrInvalidDomain):
			RecordResolution("invalid")
		case ctx.Err() != nil && errors.Is(err, ctx.Err()):
			// Client went away or its deadline passed; the backend is not at fault.
			RecordResolution("canceled")
			m.log.Debug().Err(err).Str("host", host).Msg("tenant resolution abandoned by client")
		default:
			RecordResolution("degraded")
			m.log.Warn().Err(err).Str("host", host).Msg("tenant resolution failed; serving marketplace")
			w.Header().Set(DegradedHeader, "1")
			ctx = WithDegraded(ctx)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *TenantResolver) host(r *http.Request) string {
	if m.trustForwardedHost {
		if fh := r.Header.Get("X-Forwarded-Host"); fh != "" {
			first, _, _ := strings.Cut(fh, ",")
			return strings.TrimSpace(first)
		}
	}
	return r.Host
}
