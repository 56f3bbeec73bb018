package tenancy

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/storefront/internal/application/ports"
	"github.com/amirhosseinghanipour/storefront/internal/domain"
	domerrors "github.com/amirhosseinghanipour/storefront/internal/domain/errors"
)

// Service is the tenant resolution API used by the HTTP layer and by any code that needs
// the current vendor. Build one per process and inject it; it owns its cache.
type Service struct {
	resolver    *Resolver
	invalidator *Invalidator
	vendors     ports.VendorRepository
	cache       ports.VendorCache
	log         zerolog.Logger
}

// Options configures optional Service collaborators.
type Options struct {
	RootDomain    string
	LookupTimeout time.Duration
	Publisher     ports.InvalidationPublisher
	Log           zerolog.Logger
}

// NewService wires the resolver and invalidator around a shared cache.
func NewService(vendors ports.VendorRepository, cache ports.VendorCache, opts Options) *Service {
	resolver := NewResolver(vendors, cache, opts.RootDomain, opts.LookupTimeout)
	invalidator := NewInvalidator(cache, opts.Publisher, opts.Log)
	invalidator.gate = resolver.gate
	return &Service{
		resolver:    resolver,
		invalidator: invalidator,
		vendors:     vendors,
		cache:       cache,
		log:         opts.Log,
	}
}

// Invalidator exposes the invalidator so peers' messages can be applied locally.
func (s *Service) Invalidator() *Invalidator { return s.invalidator }

// ResolveVendorByHost resolves an inbound Host header to a vendor.
func (s *Service) ResolveVendorByHost(ctx context.Context, host string) (*domain.Vendor, error) {
	return s.resolver.Resolve(ctx, host)
}

// ResolveVendorBySlug looks a vendor up by slug, bypassing the host cache.
func (s *Service) ResolveVendorBySlug(ctx context.Context, slug string) (*domain.Vendor, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !ValidKey(slug) || strings.Contains(slug, ".") {
		return nil, domerrors.ErrInvalidDomain
	}
	v, err := s.vendors.FindBySlug(ctx, slug)
	switch {
	case err == nil && v.Resolvable():
		return v, nil
	case err == nil, errors.Is(err, domerrors.ErrVendorNotFound):
		return nil, domerrors.ErrVendorNotFound
	default:
		return nil, domerrors.NewRepositoryError("find_by_slug", err)
	}
}

// ListActiveVendors returns every active vendor.
func (s *Service) ListActiveVendors(ctx context.Context) ([]*domain.Vendor, error) {
	list, err := s.vendors.ListActive(ctx)
	if err != nil {
		return nil, domerrors.NewRepositoryError("list_active", err)
	}
	out := make([]*domain.Vendor, 0, len(list))
	for _, v := range list {
		if v.Resolvable() {
			out = append(out, v)
		}
	}
	return out, nil
}

// IsDomainAvailable reports whether no vendor, in any status, owns domain or its www. form.
func (s *Service) IsDomainAvailable(ctx context.Context, domain string) (bool, error) {
	key := Normalize(domain)
	if !ValidKey(key) {
		return false, domerrors.ErrInvalidDomain
	}
	exists, err := s.vendors.ExistsForDomain(ctx, key)
	if err != nil {
		return false, domerrors.NewRepositoryError("exists_for_domain", err)
	}
	return !exists, nil
}

// InvalidateCache evicts one domain, or everything when domain is empty.
func (s *Service) InvalidateCache(ctx context.Context, domain string) error {
	return s.invalidator.Invalidate(ctx, domain)
}

// TenantTableName namespaces a per-tenant table: "<vendorID>_<baseTable>".
func (s *Service) TenantTableName(vendorID, baseTable string) string {
	return TenantTableName(vendorID, baseTable)
}

// Warm pre-populates the cache with every active vendor's custom domain and slug host.
// It returns the number of keys written; an invalidation while warming stops further writes.
func (s *Service) Warm(ctx context.Context) (int, error) {
	gen := s.resolver.gate.generation()
	list, err := s.ListActiveVendors(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	root := s.resolver.RootDomain()
	// Slug hosts first: a custom domain match takes precedence on the same key.
	if root != "" {
		for _, v := range list {
			if key := Normalize(v.Slug + "." + root); v.Slug != "" && ValidKey(key) && s.resolver.gate.put(s.cache, key, v, gen) {
				n++
			}
		}
	}
	for _, v := range list {
		if key := Normalize(v.Domain); ValidKey(key) && s.resolver.gate.put(s.cache, key, v, gen) {
			n++
		}
	}
	s.log.Info().Int("keys", n).Int("vendors", len(list)).Msg("vendor cache warmed")
	return n, nil
}

// TenantTableName namespaces a per-tenant table: "<vendorID>_<baseTable>".
func TenantTableName(vendorID, baseTable string) string {
	return vendorID + "_" + baseTable
}
