// Package provider maps third-party asset ids (CoinGecko, CoinCap, ...) to
// AssetIDs and back.
//
// Each provider's table lives in a Cache that loads it through an injected
// FetchFunc and reloads it once the TTL has passed. The package does no
// network I/O itself; the daemon backs caches with the database.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Klingon-tech/caip/pkg/caip"
	"github.com/Klingon-tech/caip/pkg/logging"
)

// Name identifies a price or metadata provider.
type Name string

const (
	CoinGecko Name = "coingecko"
	CoinCap   Name = "coincap"
	Yearn     Name = "yearn"
	Osmosis   Name = "osmosis"
	Idle      Name = "idle"
	Thorchain Name = "thorchain"
)

// Names returns the known provider names.
func Names() []Name {
	return []Name{CoinGecko, CoinCap, Yearn, Osmosis, Idle, Thorchain}
}

const (
	// DefaultTTL is how long a fetched table is served before reloading.
	DefaultTTL = 10 * time.Minute
	// DefaultRetryCooldown is how long lookups wait after a failed fetch
	// before fetching again.
	DefaultRetryCooldown = 30 * time.Second
)

var (
	// ErrUnknownProviderID is returned when a provider id has no mapping.
	ErrUnknownProviderID = errors.New("unknown provider id")
	// ErrNoProviderID is returned when an AssetID has no provider id.
	ErrNoProviderID = errors.New("no provider id for asset")
	// ErrUnknownProvider is returned by Registry lookups.
	ErrUnknownProvider = errors.New("unknown provider")
)

// FetchFunc loads a provider table as provider id -> AssetID string.
type FetchFunc func(ctx context.Context) (map[string]string, error)

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the time source used for TTL checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithTTL sets how long a table is considered fresh.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithRetryCooldown sets the minimum time between a failed fetch and the
// next fetch triggered by a lookup. Refresh ignores it.
func WithRetryCooldown(d time.Duration) Option {
	return func(c *Cache) { c.retryCooldown = d }
}

// WithLogger sets the logger used for skipped entries and refreshes.
func WithLogger(l *logging.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// Cache is a bidirectional provider id <-> AssetID table.
type Cache struct {
	name          Name
	fetch         FetchFunc
	now           func() time.Time
	ttl           time.Duration
	retryCooldown time.Duration
	log           *logging.Logger

	refreshMu   sync.Mutex // serializes fetches, guards lastAttempt and lastErr
	lastAttempt time.Time
	lastErr     error

	mu        sync.RWMutex
	toAsset   map[string]caip.AssetID
	fromAsset map[caip.AssetID]string
	fetchedAt time.Time
	skipped   int
}

// NewCache creates a cache for one provider.
func NewCache(name Name, fetch FetchFunc, opts ...Option) *Cache {
	c := &Cache{
		name:          name,
		fetch:         fetch,
		now:           time.Now,
		ttl:           DefaultTTL,
		retryCooldown: DefaultRetryCooldown,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logging.GetDefault()
	}
	c.log = c.log.Component("provider").With("provider", string(name))
	return c
}

// Name returns the provider name.
func (c *Cache) Name() Name {
	return c.name
}

// Refresh fetches the table unconditionally and replaces the cached one.
// Entries whose value does not parse as an AssetID are logged and skipped.
// On fetch error the previous table is kept.
func (c *Cache) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *Cache) refreshLocked(ctx context.Context) error {
	c.lastAttempt = c.now()
	raw, err := c.fetch(ctx)
	if err != nil {
		err = fmt.Errorf("%s: fetch failed: %w", c.name, err)
		// A caller giving up is not a backend failure.
		if ctx.Err() == nil {
			c.lastErr = err
		}
		return err
	}
	c.lastErr = nil

	toAsset := make(map[string]caip.AssetID, len(raw))
	fromAsset := make(map[caip.AssetID]string, len(raw))
	skipped := 0

	for providerID, s := range raw {
		id, err := caip.FromAssetID(s)
		if err != nil {
			skipped++
			c.log.Warn("Skipping provider entry", "provider_id", providerID, "asset_id", s, "error", err)
			continue
		}
		toAsset[providerID] = id
		// Several provider ids may share an asset; keep the smallest for a
		// stable reverse mapping.
		if prev, ok := fromAsset[id]; !ok || providerID < prev {
			fromAsset[id] = providerID
		}
	}

	c.mu.Lock()
	c.toAsset = toAsset
	c.fromAsset = fromAsset
	c.fetchedAt = c.now()
	c.skipped = skipped
	c.mu.Unlock()

	c.log.Debug("Refreshed", "entries", len(toAsset), "skipped", skipped)
	return nil
}

// stale reports whether the table was never fetched or is older than the TTL.
func (c *Cache) stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt.IsZero() || c.now().Sub(c.fetchedAt) >= c.ttl
}

// ensureFresh refreshes a stale table. A failed refresh of a table that was
// loaded before is logged and the old table is served. Within the retry
// cooldown after a failure no fetch is made and the last error stands.
func (c *Cache) ensureFresh(ctx context.Context) error {
	if !c.stale() {
		return nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another caller may have refreshed while we waited.
	if !c.stale() {
		return nil
	}

	if c.lastErr != nil && c.now().Sub(c.lastAttempt) < c.retryCooldown {
		if c.loaded() {
			return nil
		}
		return c.lastErr
	}

	err := c.refreshLocked(ctx)
	if err == nil {
		return nil
	}
	if !c.loaded() {
		return err
	}
	c.log.Warn("Serving stale table", "error", err, "retry_in", c.retryCooldown)
	return nil
}

func (c *Cache) loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.toAsset != nil
}

// ToAssetID returns the AssetID for a provider id.
func (c *Cache) ToAssetID(ctx context.Context, providerID string) (caip.AssetID, error) {
	if err := c.ensureFresh(ctx); err != nil {
		return caip.AssetID{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.toAsset[providerID]
	if !ok {
		return caip.AssetID{}, fmt.Errorf("%w: %s %q", ErrUnknownProviderID, c.name, providerID)
	}
	return id, nil
}

// FromAssetID returns the provider id for an AssetID.
func (c *Cache) FromAssetID(ctx context.Context, id caip.AssetID) (string, error) {
	if err := c.ensureFresh(ctx); err != nil {
		return "", err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	providerID, ok := c.fromAsset[id]
	if !ok {
		return "", fmt.Errorf("%w: %s %s", ErrNoProviderID, c.name, id)
	}
	return providerID, nil
}

// Len returns the number of cached provider ids.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.toAsset)
}

// Stats describes the state of a cache.
type Stats struct {
	Provider  Name      `json:"provider"`
	Entries   int       `json:"entries"`
	Skipped   int       `json:"skipped"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Stats returns a snapshot of the cache state.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Provider:  c.name,
		Entries:   len(c.toAsset),
		Skipped:   c.skipped,
		FetchedAt: c.fetchedAt,
	}
}

// Registry holds one cache per provider.
type Registry struct {
	mu     sync.RWMutex
	caches map[Name]*Cache
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{caches: make(map[Name]*Cache)}
}

// Register adds or replaces a provider's cache.
func (r *Registry) Register(c *Cache) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caches[c.Name()] = c
}

// Get returns the cache for a provider.
func (r *Registry) Get(name Name) (*Cache, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caches[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return c, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]Name, 0, len(r.caches))
	for name := range r.caches {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Stats returns the stats of every registered cache, sorted by name.
func (r *Registry) Stats() []Stats {
	var out []Stats
	for _, name := range r.Names() {
		c, err := r.Get(name)
		if err != nil {
			continue
		}
		out = append(out, c.Stats())
	}
	return out
}

// RefreshAll refreshes every cache and returns the joined errors.
func (r *Registry) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, name := range r.Names() {
		c, err := r.Get(name)
		if err != nil {
			continue
		}
		if err := c.Refresh(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
