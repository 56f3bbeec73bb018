package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhosseinghanipour/storefront/internal/application/tenancy"
	"github.com/amirhosseinghanipour/storefront/internal/domain"
	"github.com/amirhosseinghanipour/storefront/internal/infrastructure/cache"
	"github.com/amirhosseinghanipour/storefront/internal/infrastructure/http/handlers"
	"github.com/amirhosseinghanipour/storefront/internal/infrastructure/http/middleware"
	"github.com/amirhosseinghanipour/storefront/internal/infrastructure/persistence/memory"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	repo := memory.NewVendorRepository()
	repo.Upsert(&domain.Vendor{Name: "Acme", Domain: "acme.com", Slug: "acme"})
	svc := tenancy.NewService(repo, cache.NewVendorCache(time.Minute), tenancy.Options{RootDomain: "market.test", Log: zerolog.Nop()})
	ipLimit, err := middleware.NewIPRateLimiter("")
	require.NoError(t, err)
	return NewRouter(RouterConfig{
		HealthHandler:  handlers.NewHealthHandler(nil, nil),
		VendorsHandler: handlers.NewVendorsHandler(svc, zerolog.Nop()),
		AdminHandler:   handlers.NewAdminHandler(svc, zerolog.Nop()),
		Tenant:         middleware.NewTenantResolver(svc, false, zerolog.Nop()),
		RequireAdmin:   middleware.RequireAdminSecret("s3cret"),
		Log:            zerolog.Nop(),
		Secure:         middleware.NewSecure(middleware.SecureOptions(true)),
		IPRateLimit:    ipLimit,
		Metrics:        true,
	})
}

func TestRouter_Routes(t *testing.T) {
	r := newTestRouter(t)
	tests := []struct {
		method, path, host string
		want               int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/v1/tenant", "acme.market.test", http.StatusOK},
		{http.MethodGet, "/v1/vendors", "", http.StatusOK},
		{http.MethodGet, "/v1/vendors/acme", "", http.StatusOK},
		{http.MethodGet, "/v1/domains/acme.com/availability", "", http.StatusOK},
		{http.MethodGet, "/admin/tenant-table", "", http.StatusUnauthorized},
		{http.MethodPost, "/admin/cache/invalidate", "", http.StatusUnauthorized},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.host != "" {
				req.Host = tt.host
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_AdminWithSecret(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/admin/cache/invalidate", strings.NewReader(`{"domain":"acme.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Storefront-Admin-Secret", "s3cret")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/admin/cache/invalidate", strings.NewReader(`domain=acme.com`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Storefront-Admin-Secret", "s3cret")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
