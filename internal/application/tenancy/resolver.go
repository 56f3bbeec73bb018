package tenancy

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/amirhosseinghanipour/storefront/internal/application/ports"
	"github.com/amirhosseinghanipour/storefront/internal/domain"
	domerrors "github.com/amirhosseinghanipour/storefront/internal/domain/errors"
)

// DefaultLookupTimeout bounds a repository lookup once it is detached from its caller.
const DefaultLookupTimeout = 5 * time.Second

// Resolver maps a host to an active vendor: normalize -> cache -> domain lookup -> slug fallback.
// Only positive results are cached.
type Resolver struct {
	vendors       ports.VendorRepository
	cache         ports.VendorCache
	rootDomain    string
	lookupTimeout time.Duration
	group         singleflight.Group
	gate          *fillGate
}

// NewResolver builds the resolution engine. rootDomain is the platform domain whose
// subdomains are vendor slugs (e.g. "supermart.com"); empty disables slug fallback.
func NewResolver(vendors ports.VendorRepository, cache ports.VendorCache, rootDomain string, lookupTimeout time.Duration) *Resolver {
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}
	return &Resolver{
		vendors:       vendors,
		cache:         cache,
		rootDomain:    Normalize(rootDomain),
		lookupTimeout: lookupTimeout,
		gate:          &fillGate{},
	}
}

// RootDomain returns the normalized platform root domain.
func (r *Resolver) RootDomain() string { return r.rootDomain }

// Resolve returns the vendor for host, ErrInvalidDomain, ErrVendorNotFound or a *RepositoryError.
//
// Concurrent misses for the same key share one repository lookup. The lookup is detached
// from ctx: if the caller gives up, the lookup still finishes and fills the cache.
// Lookups started before an invalidation are neither joined nor allowed to fill the cache.
func (r *Resolver) Resolve(ctx context.Context, host string) (*domain.Vendor, error) {
	key := Normalize(host)
	if !ValidKey(key) {
		return nil, domerrors.ErrInvalidDomain
	}
	if v, ok := r.cache.Get(key); ok {
		return v, nil
	}

	detached := context.WithoutCancel(ctx)
	gen := r.gate.generation()
	ch := r.group.DoChan(key+"@"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		return r.lookup(detached, key, gen)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Vendor).Clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Resolver) lookup(ctx context.Context, key string, gen uint64) (*domain.Vendor, error) {
	ctx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	v, err := r.vendors.FindByDomain(ctx, key)
	switch {
	case err == nil && v.Resolvable():
		r.gate.put(r.cache, key, v, gen)
		return v, nil
	case err == nil, errors.Is(err, domerrors.ErrVendorNotFound):
	default:
		return nil, domerrors.NewRepositoryError("find_by_domain", err)
	}

	slug, ok := r.SlugFor(key)
	if !ok {
		return nil, domerrors.ErrVendorNotFound
	}
	v, err = r.vendors.FindBySlug(ctx, slug)
	switch {
	case err == nil && v.Resolvable():
		r.gate.put(r.cache, key, v, gen)
		return v, nil
	case err == nil, errors.Is(err, domerrors.ErrVendorNotFound):
		return nil, domerrors.ErrVendorNotFound
	default:
		return nil, domerrors.NewRepositoryError("find_by_slug", err)
	}
}

// SlugFor extracts the leading label of key when key is a subdomain of the root domain.
func (r *Resolver) SlugFor(key string) (string, bool) {
	if r.rootDomain == "" || !strings.HasSuffix(key, "."+r.rootDomain) {
		return "", false
	}
	label, _, _ := strings.Cut(key, ".")
	if label == "" {
		return "", false
	}
	return label, true
}
