package tenancy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhosseinghanipour/storefront/internal/domain"
	domerrors "github.com/amirhosseinghanipour/storefront/internal/domain/errors"
)

func TestResolve_CacheHitSkipsRepository(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(activeVendor("v1", "shop.example.com", "shop"))
	r := NewResolver(repo, newTestCache(newFakeClock()), "supermart.com", 0)

	v, err := r.Resolve(context.Background(), "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, "v1", v.ID)
	assert.Equal(t, 1, repo.calls())

	v, err = r.Resolve(context.Background(), "SHOP.example.com:443")
	require.NoError(t, err)
	assert.Equal(t, "v1", v.ID)
	assert.Equal(t, 1, repo.calls(), "second call within TTL must not hit the repository")
}

func TestResolve_SubdomainFallback(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(activeVendor("v-electric", "", "electric"))
	c := newTestCache(newFakeClock())
	r := NewResolver(repo, c, "supermart.com", 0)

	v, err := r.Resolve(context.Background(), "electric.supermart.com")
	require.NoError(t, err)
	assert.Equal(t, "v-electric", v.ID)
	assert.EqualValues(t, 1, repo.domainCalls.Load())
	assert.EqualValues(t, 1, repo.slugCalls.Load())

	cached, ok := c.Get("electric.supermart.com")
	require.True(t, ok, "fallback result cached under the full host")
	assert.Equal(t, "v-electric", cached.ID)
}

func TestResolve_NoFallbackOutsideRootDomain(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(activeVendor("v-electric", "", "electric"))
	r := NewResolver(repo, newTestCache(newFakeClock()), "supermart.com", 0)

	for _, host := range []string{"electric.othermart.com", "supermart.com", "electricsupermart.com"} {
		_, err := r.Resolve(context.Background(), host)
		assert.ErrorIs(t, err, domerrors.ErrVendorNotFound, host)
	}
	assert.EqualValues(t, 0, repo.slugCalls.Load())
}

func TestResolve_NegativeResultsNotCached(t *testing.T) {
	repo := &fakeRepo{}
	r := NewResolver(repo, newTestCache(newFakeClock()), "supermart.com", 0)

	_, err := r.Resolve(context.Background(), "newshop.com")
	require.ErrorIs(t, err, domerrors.ErrVendorNotFound)

	repo.add(activeVendor("v-new", "newshop.com", "newshop"))
	v, err := r.Resolve(context.Background(), "newshop.com")
	require.NoError(t, err)
	assert.Equal(t, "v-new", v.ID)
}

func TestResolve_RepositoryErrorPropagated(t *testing.T) {
	backendDown := errors.New("connection refused")
	repo := &fakeRepo{domainErr: backendDown}
	repo.add(activeVendor("v1", "mystore.com", "mystore"))
	c := newTestCache(newFakeClock())
	r := NewResolver(repo, c, "supermart.com", 0)

	_, err := r.Resolve(context.Background(), "mystore.com")
	require.Error(t, err)
	assert.True(t, domerrors.IsRepositoryError(err))
	assert.ErrorIs(t, err, backendDown)
	assert.NotErrorIs(t, err, domerrors.ErrVendorNotFound)
	assert.EqualValues(t, 0, repo.slugCalls.Load(), "no fallback after a backend failure")
	_, ok := c.Get("mystore.com")
	assert.False(t, ok)
}

func TestResolve_SlugRepositoryErrorPropagated(t *testing.T) {
	repo := &fakeRepo{slugErr: context.DeadlineExceeded}
	r := NewResolver(repo, newTestCache(newFakeClock()), "supermart.com", 0)

	_, err := r.Resolve(context.Background(), "electric.supermart.com")
	assert.True(t, domerrors.IsRepositoryError(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolve_InvalidDomain(t *testing.T) {
	repo := &fakeRepo{}
	r := NewResolver(repo, newTestCache(newFakeClock()), "supermart.com", 0)

	for _, host := range []string{"", "   ", "http://", "bad host.com", "a..b"} {
		_, err := r.Resolve(context.Background(), host)
		assert.ErrorIs(t, err, domerrors.ErrInvalidDomain, host)
	}
	assert.Equal(t, 0, repo.calls())
}

func TestResolve_InactiveVendorNotResolvable(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(&domain.Vendor{ID: "v1", Domain: "gone.com", Slug: "gone", Status: domain.VendorStatusSuspended})
	r := NewResolver(repo, newTestCache(newFakeClock()), "supermart.com", 0)

	_, err := r.Resolve(context.Background(), "gone.com")
	assert.ErrorIs(t, err, domerrors.ErrVendorNotFound)
	_, err = r.Resolve(context.Background(), "gone.supermart.com")
	assert.ErrorIs(t, err, domerrors.ErrVendorNotFound)
}

func TestResolve_ConcurrentMissesCoalesced(t *testing.T) {
	repo := &fakeRepo{gate: make(chan struct{})}
	repo.add(activeVendor("v1", "mystore.com", "mystore"))
	r := NewResolver(repo, newTestCache(newFakeClock()), "supermart.com", 0)

	const callers = 20
	var wg sync.WaitGroup
	results := make(chan *domain.Vendor, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := r.Resolve(context.Background(), "www.mystore.com")
			if assert.NoError(t, err) {
				results <- v
			}
		}()
	}
	require.Eventually(t, func() bool { return repo.domainCalls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(repo.gate)
	wg.Wait()
	close(results)

	assert.EqualValues(t, 1, repo.domainCalls.Load())
	seen := map[*domain.Vendor]bool{}
	for v := range results {
		assert.Equal(t, "v1", v.ID)
		assert.False(t, seen[v], "each caller gets its own copy")
		seen[v] = true
	}
}

func TestResolve_CallerTimeoutStillPopulatesCache(t *testing.T) {
	repo := &fakeRepo{gate: make(chan struct{})}
	repo.add(activeVendor("v1", "mystore.com", "mystore"))
	c := newTestCache(newFakeClock())
	r := NewResolver(repo, c, "supermart.com", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctx, "mystore.com")
		done <- err
	}()
	require.Eventually(t, func() bool { return repo.domainCalls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(repo.gate)
	require.Eventually(t, func() bool {
		_, ok := c.Get("mystore.com")
		return ok
	}, time.Second, 5*time.Millisecond)

	v, err := r.Resolve(context.Background(), "mystore.com")
	require.NoError(t, err)
	assert.Equal(t, "v1", v.ID)
	assert.EqualValues(t, 1, repo.domainCalls.Load())
}

func TestResolve_EndToEndTTL(t *testing.T) {
	clock := newFakeClock()
	repo := &fakeRepo{}
	repo.add(activeVendor("v1", "mystore.com", "mystore"))
	r := NewResolver(repo, newTestCache(clock), "supermart.com", 0)

	v, err := r.Resolve(context.Background(), "www.mystore.com")
	require.NoError(t, err)
	assert.Equal(t, "v1", v.ID)
	assert.EqualValues(t, 1, repo.domainCalls.Load())

	clock.Advance(time.Minute)
	v, err = r.Resolve(context.Background(), "www.mystore.com")
	require.NoError(t, err)
	assert.Equal(t, "v1", v.ID)
	assert.EqualValues(t, 1, repo.domainCalls.Load(), "no repository call 1 minute later")

	clock.Advance(5 * time.Minute)
	v, err = r.Resolve(context.Background(), "www.mystore.com")
	require.NoError(t, err)
	assert.Equal(t, "v1", v.ID)
	assert.EqualValues(t, 2, repo.domainCalls.Load(), "exactly one fresh call after TTL")
}

func TestSlugFor(t *testing.T) {
	r := NewResolver(&fakeRepo{}, newTestCache(newFakeClock()), "https://www.SuperMart.com/", 0)
	assert.Equal(t, "supermart.com", r.RootDomain())

	slug, ok := r.SlugFor("electric.supermart.com")
	assert.True(t, ok)
	assert.Equal(t, "electric", slug)

	slug, ok = r.SlugFor("a.b.supermart.com")
	assert.True(t, ok)
	assert.Equal(t, "a", slug)

	_, ok = r.SlugFor("supermart.com")
	assert.False(t, ok)
	_, ok = r.SlugFor("mystore.com")
	assert.False(t, ok)

	noRoot := NewResolver(&fakeRepo{}, newTestCache(newFakeClock()), "", 0)
	_, ok = noRoot.SlugFor("electric.supermart.com")
	assert.False(t, ok)
}
