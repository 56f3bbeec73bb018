package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/amirhosseinghanipour/storefront/internal/application/ports"
	"github.com/amirhosseinghanipour/storefront/internal/domain"
)

const (
	// DefaultTTL is how long a resolved host stays valid.
	DefaultTTL = 5 * time.Minute
	// DefaultCapacity caps the number of cached hosts.
	DefaultCapacity = 10000
)

var (
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_vendor_cache_lookups_total",
			Help: "Vendor cache lookups by result (hit, miss, stale)",
		},
		[]string{"result"},
	)
	cacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_vendor_cache_evictions_total",
			Help: "Vendor cache evictions by reason",
		},
		[]string{"reason"},
	)
)

type entry struct {
	vendor     *domain.Vendor
	insertedAt time.Time
}

// VendorCache is an in-memory TTL cache of normalized host -> vendor.
// Validity is decided by the injected clock; ttlcache handles storage, capacity and purging.
type VendorCache struct {
	items    *ttlcache.Cache[string, entry]
	ttl      time.Duration
	capacity uint64
	now      func() time.Time
}

// Option configures VendorCache.
type Option func(*VendorCache)

// WithClock sets the time source (default time.Now).
func WithClock(now func() time.Time) Option {
	return func(c *VendorCache) {
		c.now = now
	}
}

// WithCapacity bounds the number of entries; the least recently used one goes first.
func WithCapacity(n uint64) Option {
	return func(c *VendorCache) {
		c.capacity = n
	}
}

// NewVendorCache returns a cache whose entries expire ttl after insertion (0 = DefaultTTL).
func NewVendorCache(ttl time.Duration, opts ...Option) *VendorCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &VendorCache{ttl: ttl, capacity: DefaultCapacity, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.items = ttlcache.New(
		ttlcache.WithTTL[string, entry](ttl),
		ttlcache.WithCapacity[string, entry](c.capacity),
		ttlcache.WithDisableTouchOnHit[string, entry](),
	)
	c.items.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, _ *ttlcache.Item[string, entry]) {
		cacheEvictions.WithLabelValues(evictionReason(reason)).Inc()
	})
	return c
}

// Start runs the expired-item purge loop until Stop is called. Run it in a goroutine.
func (c *VendorCache) Start() { c.items.Start() }

// Stop ends the purge loop.
func (c *VendorCache) Stop() { c.items.Stop() }

// TTL returns the configured entry lifetime.
func (c *VendorCache) TTL() time.Duration { return c.ttl }

// Get returns a copy of the cached vendor. Entries at or past their TTL are evicted and reported absent.
func (c *VendorCache) Get(key string) (*domain.Vendor, bool) {
	item := c.items.Get(key)
	if item == nil {
		cacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	e := item.Value()
	if c.now().Sub(e.insertedAt) >= c.ttl {
		c.items.Delete(key)
		cacheLookups.WithLabelValues("stale").Inc()
		return nil, false
	}
	cacheLookups.WithLabelValues("hit").Inc()
	return e.vendor.Clone(), true
}

// Put stores a copy of vendor under key. Last write wins.
func (c *VendorCache) Put(key string, vendor *domain.Vendor) {
	if vendor == nil {
		return
	}
	c.items.Set(key, entry{vendor: vendor.Clone(), insertedAt: c.now()}, ttlcache.DefaultTTL)
}

// Invalidate removes key if present.
func (c *VendorCache) Invalidate(key string) {
	c.items.Delete(key)
}

// Clear removes every entry.
func (c *VendorCache) Clear() {
	c.items.DeleteAll()
}

// Len returns the number of stored entries, including ones not yet purged.
func (c *VendorCache) Len() int {
	return c.items.Len()
}

func evictionReason(r ttlcache.EvictionReason) string {
	switch r {
	case ttlcache.EvictionReasonExpired:
		return "expired"
	case ttlcache.EvictionReasonCapacityReached:
		return "capacity"
	case ttlcache.EvictionReasonDeleted:
		return "deleted"
	default:
		return "other"
	}
}

var _ ports.VendorCache = (*VendorCache)(nil)
