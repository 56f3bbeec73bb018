package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/storefront/internal/application/tenancy"
	domerrors "github.com/amirhosseinghanipour/storefront/internal/domain/errors"
)

// CacheAdmin is the operator side of tenancy.Service.
type CacheAdmin interface {
	InvalidateCache(ctx context.Context, domain string) error
	TenantTableName(vendorID, baseTable string) string
	Warm(ctx context.Context) (int, error)
}

// AdminHandler handles /admin/*. Requires X-Storefront-Admin-Secret.
type AdminHandler struct {
	svc      CacheAdmin
	validate *validator.Validate
	log      zerolog.Logger
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(svc CacheAdmin, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, validate: newValidator(), log: log}
}

// InvalidateCache handles POST /admin/cache/invalidate. Body: { "domain": "..." } (optional).
// An empty or missing domain clears the whole cache.
func (h *AdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Domain string `json:"domain" validate:"omitempty,max=2048"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	domain := strings.TrimSpace(body.Domain)
	scope := "all"
	if key := tenancy.Normalize(domain); key != "" {
		scope = key
	}
	err := h.svc.InvalidateCache(r.Context(), domain)
	if errors.Is(err, domerrors.ErrInvalidDomain) {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidDomain, "invalid domain")
		return
	}
	if err != nil {
		// Local eviction already happened; only the broadcast to peers failed.
		h.log.Error().Err(err).Str("scope", scope).Msg("invalidation broadcast failed")
		writeJSON(w, http.StatusAccepted, map[string]interface{}{"invalidated": scope, "broadcast": false})
		return
	}
	h.log.Info().Str("scope", scope).Msg("vendor cache invalidated")
	writeJSON(w, http.StatusOK, map[string]interface{}{"invalidated": scope, "broadcast": true})
}

// WarmCache handles POST /admin/cache/warm. Returns { "keys": n }.
func (h *AdminHandler) WarmCache(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Warm(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("cache warm failed")
		writeTenancyErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"keys": n})
}

// TenantTable handles GET /admin/tenant-table?vendor_id=&table=.
func (h *AdminHandler) TenantTable(w http.ResponseWriter, r *http.Request) {
	q := struct {
		VendorID string `validate:"required,uuid"`
		Table    string `validate:"required,max=63,sqlident"`
	}{
		VendorID: strings.TrimSpace(r.URL.Query().Get("vendor_id")),
		Table:    strings.TrimSpace(r.URL.Query().Get("table")),
	}
	if err := h.validate.Struct(&q); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"vendor_id": q.VendorID,
		"table":     h.svc.TenantTableName(q.VendorID, q.Table),
	})
}
