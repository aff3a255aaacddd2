package main

import (
	"testing"

	"github.com/Klingon-tech/caip/internal/config"
	"github.com/Klingon-tech/caip/internal/provider"
	"github.com/Klingon-tech/caip/internal/storage"
	"github.com/Klingon-tech/caip/pkg/logging"
)

func newTestStore(t *testing.T) *storage.Storage {
	t.Helper()
	store, err := storage.New(&storage.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSeedProviderTable(t *testing.T) {
	store := newTestStore(t)
	want := len(provider.DefaultTable(provider.CoinGecko))

	n, err := seedProviderTable(store, provider.CoinGecko, false)
	if err != nil {
		t.Fatalf("seedProviderTable() error = %v", err)
	}
	if n != want {
		t.Errorf("seeded %d rows, want %d", n, want)
	}

	// a provider with rows is left alone
	if err := store.SaveProviderID(&storage.ProviderIDRecord{
		Provider:   string(provider.CoinGecko),
		ProviderID: "local-only",
		AssetID:    "eip155:1/slip44:60",
	}); err != nil {
		t.Fatalf("SaveProviderID() error = %v", err)
	}
	n, err = seedProviderTable(store, provider.CoinGecko, false)
	if err != nil {
		t.Fatalf("seedProviderTable() error = %v", err)
	}
	if n != 0 {
		t.Errorf("second seed wrote %d rows, want 0", n)
	}
	recs, _ := store.ListProviderIDs(string(provider.CoinGecko))
	if len(recs) != want+1 {
		t.Errorf("stored %d rows, want %d", len(recs), want+1)
	}

	// reseed drops local rows and writes the built-in table
	n, err = seedProviderTable(store, provider.CoinGecko, true)
	if err != nil {
		t.Fatalf("seedProviderTable(reseed) error = %v", err)
	}
	if n != want {
		t.Errorf("reseed wrote %d rows, want %d", n, want)
	}
	recs, _ = store.ListProviderIDs(string(provider.CoinGecko))
	if len(recs) != want {
		t.Errorf("after reseed stored %d rows, want %d", len(recs), want)
	}
	for _, rec := range recs {
		if rec.ProviderID == "local-only" {
			t.Error("reseed kept a row missing from the built-in table")
		}
	}

	// other providers are untouched
	other, _ := store.ListProviderIDs(string(provider.CoinCap))
	if len(other) != 0 {
		t.Errorf("coincap has %d rows, want 0", len(other))
	}
}

func TestBuildCatalogPrunesStoredRows(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveAsset(&storage.AssetRecord{AssetID: "eip155:250/slip44:60", ChainID: "eip155:250", Symbol: "FTM"}); err != nil {
		t.Fatalf("SaveAsset() error = %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Catalog.LoadDefaultSeed = false
	cfg.Catalog.PruneStored = true

	cat, err := buildCatalog(cfg, store, logging.Discard())
	if err != nil {
		t.Fatalf("buildCatalog() error = %v", err)
	}

	rec, err := store.GetAsset("eip155:250/slip44:60")
	if err != nil {
		t.Fatalf("GetAsset() error = %v", err)
	}
	if rec != nil {
		t.Error("unparseable row should have been pruned")
	}
	count, err := store.AssetCount()
	if err != nil {
		t.Fatalf("AssetCount() error = %v", err)
	}
	if count != cat.Len() {
		t.Errorf("stored %d assets, catalog has %d", count, cat.Len())
	}
}
