package tenancy

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amirhosseinghanipour/storefront/internal/domain"
	domerrors "github.com/amirhosseinghanipour/storefront/internal/domain/errors"
	"github.com/amirhosseinghanipour/storefront/internal/infrastructure/cache"
)

// fakeRepo is a deterministic VendorRepository that counts calls.
type fakeRepo struct {
	mu      sync.Mutex
	vendors []*domain.Vendor

	domainErr error
	slugErr   error
	listErr   error
	// gate, when set, blocks lookups until closed.
	gate chan struct{}
	// hold, when set, blocks FindByDomain after the matching row was read.
	hold chan struct{}

	domainCalls atomic.Int32
	slugCalls   atomic.Int32
}

func (f *fakeRepo) add(v *domain.Vendor) {
	f.mu.Lock()
	f.vendors = append(f.vendors, v)
	f.mu.Unlock()
}

func (f *fakeRepo) wait(ctx context.Context) error {
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeRepo) FindByDomain(ctx context.Context, d string) (*domain.Vendor, error) {
	f.domainCalls.Add(1)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.domainErr != nil {
		return nil, f.domainErr
	}
	var found *domain.Vendor
	f.mu.Lock()
	for _, v := range f.vendors {
		vd := strings.ToLower(v.Domain)
		if v.Status == domain.VendorStatusActive && vd != "" && (vd == d || vd == "www."+d) {
			found = v.Clone()
			break
		}
	}
	f.mu.Unlock()
	if found == nil {
		return nil, domerrors.ErrVendorNotFound
	}
	if f.hold != nil {
		select {
		case <-f.hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return found, nil
}

func (f *fakeRepo) FindBySlug(ctx context.Context, slug string) (*domain.Vendor, error) {
	f.slugCalls.Add(1)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.slugErr != nil {
		return nil, f.slugErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.vendors {
		if v.Status == domain.VendorStatusActive && v.Slug == slug {
			return v, nil
		}
	}
	return nil, domerrors.ErrVendorNotFound
}

func (f *fakeRepo) ListActive(ctx context.Context) ([]*domain.Vendor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Vendor
	for _, v := range f.vendors {
		if v.Status == domain.VendorStatusActive {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeRepo) ExistsForDomain(ctx context.Context, d string) (bool, error) {
	if f.domainErr != nil {
		return false, f.domainErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.vendors {
		vd := strings.ToLower(v.Domain)
		if vd != "" && (vd == d || vd == "www."+d) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) rename(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.vendors {
		if v.ID == id {
			v.Name = name
		}
	}
}

func (f *fakeRepo) calls() int {
	return int(f.domainCalls.Load() + f.slugCalls.Load())
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return p.err
}

func newTestCache(clock *fakeClock) *cache.VendorCache {
	return cache.NewVendorCache(5*time.Minute, cache.WithClock(clock.Now))
}

func activeVendor(id, domainName, slug string) *domain.Vendor {
	return &domain.Vendor{ID: id, Name: id, Domain: domainName, Slug: slug, Status: domain.VendorStatusActive}
}
