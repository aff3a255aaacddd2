package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Klingon-tech/caip/pkg/caip"
)

//go:embed default_seed.yaml
var defaultSeed []byte

// seedFile is the YAML layout of a seed file. AssetID stays a raw string so
// one bad entry does not fail the whole document.
type seedFile struct {
	Assets []seedEntry `yaml:"assets"`
}

type seedEntry struct {
	AssetID   string `yaml:"asset_id"`
	Symbol    string `yaml:"symbol"`
	Name      string `yaml:"name"`
	Precision int    `yaml:"precision"`
}

// LoadStats reports the outcome of a bulk load.
type LoadStats struct {
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
}

// LoadSeed reads a YAML seed document. Entries whose asset_id does not parse
// are logged and skipped; only a document-level YAML error is returned.
func (c *Catalog) LoadSeed(r io.Reader) (LoadStats, error) {
	var stats LoadStats

	var doc seedFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return stats, nil
		}
		return stats, fmt.Errorf("failed to parse seed: %w", err)
	}

	for i, entry := range doc.Assets {
		id, err := caip.FromAssetID(entry.AssetID)
		if err != nil {
			stats.Skipped++
			c.log.Warn("Skipping seed entry",
				"index", i,
				"asset_id", entry.AssetID,
				"kind", kindName(err),
				"error", err)
			continue
		}

		if err := c.Add(Asset{
			AssetID:   id,
			Symbol:    entry.Symbol,
			Name:      entry.Name,
			Precision: entry.Precision,
			Source:    SourceSeed,
		}); err != nil {
			return stats, err
		}
		stats.Loaded++
	}

	c.log.Debug("Loaded seed", "loaded", stats.Loaded, "skipped", stats.Skipped)
	return stats, nil
}

// LoadSeedFile reads a seed file from disk.
func (c *Catalog) LoadSeedFile(path string) (LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadStats{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return c.LoadSeed(f)
}

// LoadDefaultSeed loads the built-in seed of assets that chain metadata
// does not describe (IBC denoms, CosmWasm and NFT contracts).
func (c *Catalog) LoadDefaultSeed() (LoadStats, error) {
	return c.LoadSeed(bytes.NewReader(defaultSeed))
}

func kindName(err error) string {
	if kind := caip.Kind(err); kind != nil {
		return kind.Error()
	}
	return "unknown"
}
