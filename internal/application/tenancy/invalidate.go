package tenancy

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/storefront/internal/application/ports"
	domerrors "github.com/amirhosseinghanipour/storefront/internal/domain/errors"
)

// Invalidator evicts cached resolutions after administrative vendor changes.
type Invalidator struct {
	cache     ports.VendorCache
	publisher ports.InvalidationPublisher
	gate      *fillGate
	log       zerolog.Logger
}

// NewInvalidator builds the invalidator. publisher may be nil (single instance).
func NewInvalidator(cache ports.VendorCache, publisher ports.InvalidationPublisher, log zerolog.Logger) *Invalidator {
	return &Invalidator{cache: cache, publisher: publisher, gate: &fillGate{}, log: log}
}

// Invalidate evicts the normalized domain, or clears the whole cache when domain is blank,
// then tells other instances to do the same. The local eviction always happens; a publish
// error is returned so the admin caller knows peers may still serve the old entry.
// A non-blank domain that is not a valid host returns ErrInvalidDomain and evicts nothing.
func (i *Invalidator) Invalidate(ctx context.Context, domain string) error {
	key, err := i.Apply(domain)
	if err != nil {
		return err
	}
	if i.publisher == nil {
		return nil
	}
	if err := i.publisher.Publish(ctx, key); err != nil {
		i.log.Warn().Err(err).Str("key", key).Msg("publish cache invalidation failed")
		return err
	}
	return nil
}

// Apply evicts locally without publishing and returns the evicted key ("" = cleared).
// Used for invalidations received from peers.
func (i *Invalidator) Apply(domain string) (string, error) {
	if strings.TrimSpace(domain) == "" {
		i.gate.invalidate(i.cache.Clear)
		i.log.Info().Msg("vendor cache cleared")
		return "", nil
	}
	key := Normalize(domain)
	if !ValidKey(key) {
		return "", domerrors.ErrInvalidDomain
	}
	i.gate.invalidate(func() { i.cache.Invalidate(key) })
	i.log.Debug().Str("key", key).Msg("vendor cache entry invalidated")
	return key, nil
}
