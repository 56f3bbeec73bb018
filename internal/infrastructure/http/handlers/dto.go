package handlers

import (
	"time"

	"github.com/amirhosseinghanipour/storefront/internal/domain"
)

// VendorResponse is the public JSON shape of a vendor.
type VendorResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Slug      string              `json:"slug"`
	Domain    string              `json:"domain,omitempty"`
	LogoURL   string              `json:"logo_url,omitempty"`
	Theme     *domain.ThemeConfig `json:"theme,omitempty"`
	Status    string              `json:"status"`
	CreatedAt string              `json:"created_at"`
}

func toVendorResponse(v *domain.Vendor) VendorResponse {
	return VendorResponse{
		ID:        v.ID,
		Name:      v.Name,
		Slug:      v.Slug,
		Domain:    v.Domain,
		LogoURL:   v.LogoURL,
		Theme:     v.Theme,
		Status:    string(v.Status),
		CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// TenantResponse is returned by GET /v1/tenant.
type TenantResponse struct {
	Context  string          `json:"context"` // "vendor" or "marketplace"
	Vendor   *VendorResponse `json:"vendor,omitempty"`
	Degraded bool            `json:"degraded,omitempty"`
}
