package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/storefront/internal/application/ports"
	"github.com/amirhosseinghanipour/storefront/internal/domain"
	domerrors "github.com/amirhosseinghanipour/storefront/internal/domain/errors"
)

// VendorRepository is an in-memory VendorRepository for tests and local development
// (VENDOR_SEED_FILE). It is safe for concurrent use.
type VendorRepository struct {
	mu      sync.RWMutex
	vendors map[string]*domain.Vendor // id -> vendor
}

func NewVendorRepository() *VendorRepository {
	return &VendorRepository{vendors: make(map[string]*domain.Vendor)}
}

// Upsert stores a copy of v, assigning an ID and CreatedAt when missing. Status defaults to active.
func (r *VendorRepository) Upsert(v *domain.Vendor) *domain.Vendor {
	c := v.Clone()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = domain.VendorStatusActive
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.mu.Lock()
	r.vendors[c.ID] = c
	r.mu.Unlock()
	return c.Clone()
}

func (r *VendorRepository) Delete(id string) {
	r.mu.Lock()
	delete(r.vendors, id)
	r.mu.Unlock()
}

func (r *VendorRepository) FindByDomain(_ context.Context, d string) (*domain.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var www *domain.Vendor
	for _, v := range r.vendors {
		if !v.Resolvable() {
			continue
		}
		switch strings.ToLower(v.Domain) {
		case "":
		case d:
			return v.Clone(), nil
		case "www." + d:
			www = v
		}
	}
	if www != nil {
		return www.Clone(), nil
	}
	return nil, domerrors.ErrVendorNotFound
}

func (r *VendorRepository) FindBySlug(_ context.Context, slug string) (*domain.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.vendors {
		if v.Resolvable() && strings.EqualFold(v.Slug, slug) {
			return v.Clone(), nil
		}
	}
	return nil, domerrors.ErrVendorNotFound
}

func (r *VendorRepository) ListActive(_ context.Context) ([]*domain.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Vendor, 0, len(r.vendors))
	for _, v := range r.vendors {
		if v.Resolvable() {
			out = append(out, v.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *VendorRepository) ExistsForDomain(_ context.Context, d string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.vendors {
		vd := strings.ToLower(v.Domain)
		if vd != "" && (vd == d || vd == "www."+d) {
			return true, nil
		}
	}
	return false, nil
}

// seedVendor is the JSON shape of one VENDOR_SEED_FILE entry.
type seedVendor struct {
	ID      string              `json:"id"`
	Name    string              `json:"name" validate:"required,max=255"`
	Domain  string              `json:"domain" validate:"omitempty,fqdn"`
	Slug    string              `json:"slug" validate:"required,hostname_rfc1123,excludes=."`
	LogoURL string              `json:"logo_url" validate:"omitempty,url"`
	Theme   *domain.ThemeConfig `json:"theme_config" validate:"omitempty"`
	Status  string              `json:"status" validate:"omitempty,oneof=active inactive suspended"`
}

// LoadSeedFile reads a JSON array of vendors from path and upserts them. It returns the count loaded.
func (r *VendorRepository) LoadSeedFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read vendor seed file: %w", err)
	}
	return r.LoadSeed(data)
}

// LoadSeed upserts vendors from a JSON array. Nothing is stored if any entry is invalid.
func (r *VendorRepository) LoadSeed(data []byte) (int, error) {
	var seeds []seedVendor
	if err := json.Unmarshal(data, &seeds); err != nil {
		return 0, fmt.Errorf("decode vendor seed: %w", err)
	}
	validate := validator.New()
	slugs := make(map[string]bool, len(seeds))
	for i := range seeds {
		if err := validate.Struct(&seeds[i]); err != nil {
			return 0, fmt.Errorf("vendor seed entry %d: %w", i, err)
		}
		slug := strings.ToLower(seeds[i].Slug)
		if slugs[slug] {
			return 0, fmt.Errorf("vendor seed entry %d: duplicate slug %q", i, slug)
		}
		slugs[slug] = true
	}
	for _, s := range seeds {
		r.Upsert(&domain.Vendor{
			ID:      s.ID,
			Name:    s.Name,
			Domain:  strings.ToLower(s.Domain),
			Slug:    strings.ToLower(s.Slug),
			LogoURL: s.LogoURL,
			Theme:   s.Theme,
			Status:  domain.VendorStatus(s.Status),
		})
	}
	return len(seeds), nil
}

var _ ports.VendorRepository = (*VendorRepository)(nil)
