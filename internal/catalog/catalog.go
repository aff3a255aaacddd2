// Package catalog holds asset metadata keyed by AssetID.
//
// Lookups are exact matches on the canonical identifier; no fuzzy matching
// is attempted. Entries come from chain metadata, YAML seed files and the
// database. Seed or database entries whose identifier does not parse are
// logged and skipped.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Klingon-tech/caip/internal/chain"
	"github.com/Klingon-tech/caip/pkg/caip"
	"github.com/Klingon-tech/caip/pkg/logging"
)

// Source records where an entry came from.
type Source string

const (
	SourceChain Source = "chain" // chain metadata and token table
	SourceSeed  Source = "seed"  // YAML seed file
	SourceStore Source = "store" // restored from the database
)

// ErrNotFound is returned when an AssetID has no catalog entry.
var ErrNotFound = errors.New("asset not found")

// Asset is a catalog entry.
type Asset struct {
	AssetID   caip.AssetID `json:"assetId"`
	Symbol    string       `json:"symbol"`
	Name      string       `json:"name"`
	Precision int          `json:"precision"`
	Source    Source       `json:"source"`
}

// Catalog is a concurrency-safe AssetID -> Asset map.
type Catalog struct {
	mu     sync.RWMutex
	assets map[caip.AssetID]Asset
	log    *logging.Logger
}

// New creates an empty catalog.
func New(log *logging.Logger) *Catalog {
	if log == nil {
		log = logging.GetDefault()
	}
	return &Catalog{
		assets: make(map[caip.AssetID]Asset),
		log:    log.Component("catalog"),
	}
}

// Add inserts or replaces an entry.
func (c *Catalog) Add(a Asset) error {
	if a.AssetID == (caip.AssetID{}) {
		return fmt.Errorf("catalog: empty asset id")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.assets[a.AssetID] = a
	return nil
}

// Get returns the entry for an AssetID.
func (c *Catalog) Get(id caip.AssetID) (Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assets[id]
	return a, ok
}

// Lookup parses s and returns its entry. Parse failures carry the
// identifier error; a valid id without an entry returns ErrNotFound.
func (c *Catalog) Lookup(s string) (Asset, error) {
	id, err := caip.FromAssetID(s)
	if err != nil {
		return Asset{}, err
	}
	a, ok := c.Get(id)
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a, nil
}

// List returns all entries ordered by AssetID string.
func (c *Catalog) List() []Asset {
	c.mu.RLock()
	out := make([]Asset, 0, len(c.assets))
	for _, a := range c.assets {
		out = append(out, a)
	}
	c.mu.RUnlock()

	sortAssets(out)
	return out
}

// ListByChain returns the entries on one chain ordered by AssetID string.
func (c *Catalog) ListByChain(id caip.ChainID) []Asset {
	c.mu.RLock()
	var out []Asset
	for _, a := range c.assets {
		if a.AssetID.Chain == id {
			out = append(out, a)
		}
	}
	c.mu.RUnlock()

	sortAssets(out)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.assets)
}

// FromChains adds the native asset of every registered chain, the base
// denom of cosmos chains and every well-known token. It returns the number
// of entries added.
func (c *Catalog) FromChains() (int, error) {
	added := 0

	for _, params := range chain.All() {
		id, err := params.NativeAssetID()
		if err != nil {
			return added, fmt.Errorf("%s %s: %w", params.Symbol, params.Network, err)
		}
		if err := c.Add(Asset{
			AssetID:   id,
			Symbol:    params.GetNativeToken(),
			Name:      params.Name,
			Precision: int(params.Decimals),
			Source:    SourceChain,
		}); err != nil {
			return added, err
		}
		added++

		// Cosmos chains also address their staking coin by base denom.
		denomID, ok, err := params.NativeDenomAssetID()
		if err != nil {
			return added, fmt.Errorf("%s %s: %w", params.Symbol, params.Network, err)
		}
		if !ok {
			continue
		}
		if err := c.Add(Asset{
			AssetID:   denomID,
			Symbol:    params.GetNativeToken(),
			Name:      params.Name,
			Precision: int(params.Decimals),
			Source:    SourceChain,
		}); err != nil {
			return added, err
		}
		added++
	}

	for _, token := range chain.ListAllTokens() {
		id, err := token.AssetID()
		if err != nil {
			return added, fmt.Errorf("token %s on %d: %w", token.Symbol, token.ChainID, err)
		}
		if err := c.Add(Asset{
			AssetID:   id,
			Symbol:    token.Symbol,
			Name:      token.Name,
			Precision: int(token.Decimals),
			Source:    SourceChain,
		}); err != nil {
			return added, err
		}
		added++
	}

	c.log.Debug("Loaded chain assets", "count", added)
	return added, nil
}

func sortAssets(assets []Asset) {
	sort.Slice(assets, func(i, j int) bool {
		return assets[i].AssetID.String() < assets[j].AssetID.String()
	})
}
