package ports

import (
	"context"

	"github.com/amirhosseinghanipour/storefront/internal/domain"
)

// VendorRepository is the durable vendor lookup owned outside this service.
// Not found is reported as errors.ErrVendorNotFound; backend failures as *errors.RepositoryError.
type VendorRepository interface {
	// FindByDomain matches domain or "www."+domain, active vendors only.
	FindByDomain(ctx context.Context, domain string) (*domain.Vendor, error)
	// FindBySlug matches the subdomain slug, active vendors only.
	FindBySlug(ctx context.Context, slug string) (*domain.Vendor, error)
	ListActive(ctx context.Context) ([]*domain.Vendor, error)
	// ExistsForDomain ignores status: any vendor owning domain or its www. form counts.
	ExistsForDomain(ctx context.Context, domain string) (bool, error)
}

// VendorCache maps a normalized host to a resolved vendor. Implementations never fail
// and must be safe for concurrent use.
type VendorCache interface {
	Get(key string) (*domain.Vendor, bool)
	Put(key string, vendor *domain.Vendor)
	Invalidate(key string)
	Clear()
}

// InvalidationPublisher fans a cache invalidation out to other instances.
// An empty key means "clear everything".
type InvalidationPublisher interface {
	Publish(ctx context.Context, key string) error
}
