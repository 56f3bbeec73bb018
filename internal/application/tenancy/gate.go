package tenancy

import (
	"sync"

	"github.com/amirhosseinghanipour/storefront/internal/application/ports"
	"github.com/amirhosseinghanipour/storefront/internal/domain"
)

// fillGate orders cache fills against invalidations. A fill that started before an
// invalidation is dropped instead of restoring the evicted entry.
type fillGate struct {
	mu  sync.Mutex
	gen uint64
}

func (g *fillGate) generation() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen
}

// put stores v under key unless an invalidation happened since generation since.
func (g *fillGate) put(c ports.VendorCache, key string, v *domain.Vendor, since uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen != since {
		return false
	}
	c.Put(key, v)
	return true
}

// invalidate bumps the generation and runs evict while no fill can land.
func (g *fillGate) invalidate(evict func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	evict()
}
