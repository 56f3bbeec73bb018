package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/storefront/internal/domain"
	domerrors "github.com/amirhosseinghanipour/storefront/internal/domain/errors"
	"github.com/amirhosseinghanipour/storefront/internal/infrastructure/http/middleware"
)

// VendorService is the read side of tenancy.Service used by the public API.
type VendorService interface {
	ResolveVendorBySlug(ctx context.Context, slug string) (*domain.Vendor, error)
	ListActiveVendors(ctx context.Context) ([]*domain.Vendor, error)
	IsDomainAvailable(ctx context.Context, domain string) (bool, error)
}

// VendorsHandler handles /v1/tenant, /v1/vendors and /v1/domains.
type VendorsHandler struct {
	svc VendorService
	log zerolog.Logger
}

// NewVendorsHandler creates the public vendor handler.
func NewVendorsHandler(svc VendorService, log zerolog.Logger) *VendorsHandler {
	return &VendorsHandler{svc: svc, log: log}
}

// Tenant handles GET /v1/tenant. Requires TenantResolver middleware.
func (h *VendorsHandler) Tenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if v := middleware.VendorFromContext(ctx); v != nil {
		resp := toVendorResponse(v)
		writeJSON(w, http.StatusOK, TenantResponse{Context: "vendor", Vendor: &resp})
		return
	}
	writeJSON(w, http.StatusOK, TenantResponse{Context: "marketplace", Degraded: middleware.IsDegraded(ctx)})
}

// List handles GET /v1/vendors.
func (h *VendorsHandler) List(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.svc.ListActiveVendors(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list vendors failed")
		writeTenancyErr(w, err)
		return
	}
	out := make([]VendorResponse, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, toVendorResponse(v))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"vendors": out})
}

// BySlug handles GET /v1/vendors/{slug}.
func (h *VendorsHandler) BySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" || len(slug) > MaxSlugLength {
		writeErr(w, http.StatusBadRequest, "", "invalid slug")
		return
	}
	v, err := h.svc.ResolveVendorBySlug(r.Context(), slug)
	if err != nil {
		if domerrors.IsRepositoryError(err) {
			h.log.Error().Err(err).Str("slug", slug).Msg("vendor by slug failed")
		}
		writeTenancyErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVendorResponse(v))
}

// DomainAvailability handles GET /v1/domains/{domain}/availability.
func (h *VendorsHandler) DomainAvailability(w http.ResponseWriter, r *http.Request) {
	raw := SanitizeHostInput(chi.URLParam(r, "domain"))
	if raw == "" {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidDomain, "domain required")
		return
	}
	available, err := h.svc.IsDomainAvailable(r.Context(), raw)
	if err != nil {
		if domerrors.IsRepositoryError(err) {
			h.log.Error().Err(err).Str("domain", raw).Msg("domain availability failed")
		}
		writeTenancyErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"domain": raw, "available": available})
}
