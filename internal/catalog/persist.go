package catalog

import (
	"github.com/Klingon-tech/caip/internal/storage"
	"github.com/Klingon-tech/caip/pkg/caip"
)

// Store is the subset of storage the catalog persists through.
type Store interface {
	SaveAssets(recs []*storage.AssetRecord) error
	ListAssets(chainID string) ([]*storage.AssetRecord, error)
}

// Pruner is a Store that can delete rows.
type Pruner interface {
	Store
	DeleteAsset(assetID string) error
}

// Persist writes every entry to the store.
func (c *Catalog) Persist(store Store) error {
	assets := c.List()
	recs := make([]*storage.AssetRecord, 0, len(assets))
	for _, a := range assets {
		recs = append(recs, &storage.AssetRecord{
			AssetID:   a.AssetID.String(),
			ChainID:   a.AssetID.Chain.String(),
			Symbol:    a.Symbol,
			Name:      a.Name,
			Precision: a.Precision,
			Source:    string(a.Source),
		})
	}
	return store.SaveAssets(recs)
}

// Restore loads stored entries. Rows whose asset_id no longer parses, for
// example after a chain left the registry, are logged and skipped. Entries
// already in the catalog are kept.
func (c *Catalog) Restore(store Store) (LoadStats, error) {
	var stats LoadStats

	recs, err := store.ListAssets("")
	if err != nil {
		return stats, err
	}

	for _, rec := range recs {
		id, err := caip.FromAssetID(rec.AssetID)
		if err != nil {
			stats.Skipped++
			c.log.Warn("Skipping stored asset", "asset_id", rec.AssetID, "kind", kindName(err), "error", err)
			continue
		}
		if _, ok := c.Get(id); ok {
			continue
		}
		if err := c.Add(Asset{
			AssetID:   id,
			Symbol:    rec.Symbol,
			Name:      rec.Name,
			Precision: rec.Precision,
			Source:    SourceStore,
		}); err != nil {
			return stats, err
		}
		stats.Loaded++
	}

	c.log.Debug("Restored assets", "loaded", stats.Loaded, "skipped", stats.Skipped)
	return stats, nil
}

// PruneStored deletes stored rows whose asset_id no longer parses and
// returns how many were removed. The catalog itself is not changed.
func (c *Catalog) PruneStored(store Pruner) (int, error) {
	recs, err := store.ListAssets("")
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, rec := range recs {
		_, parseErr := caip.FromAssetID(rec.AssetID)
		if parseErr == nil {
			continue
		}
		if err := store.DeleteAsset(rec.AssetID); err != nil {
			return pruned, err
		}
		pruned++
		c.log.Info("Pruned stored asset", "asset_id", rec.AssetID, "kind", kindName(parseErr))
	}
	return pruned, nil
}
