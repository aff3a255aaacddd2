package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "caip-storage-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := New(&Config{DataDir: tmpDir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNew(t *testing.T) {
	store := newTestStorage(t)

	if _, err := os.Stat(store.Path()); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if filepath.Base(store.Path()) != DBFileName {
		t.Errorf("Path() = %s, want file %s", store.Path(), DBFileName)
	}
	if store.DB() == nil {
		t.Error("DB() returned nil")
	}
}

func TestNewWithTildeExpansion(t *testing.T) {
	home, _ := os.UserHomeDir()
	expanded := expandPath("~/.test")
	expected := filepath.Join(home, ".test")

	if expanded != expected {
		t.Errorf("expandPath(~/.test) = %s, want %s", expanded, expected)
	}
	if expandPath("/abs/path") != "/abs/path" {
		t.Error("absolute path should be unchanged")
	}
}

func TestStorageSchema(t *testing.T) {
	store := newTestStorage(t)

	for _, table := range []string{"assets", "provider_ids", "settings"} {
		var name string
		err := store.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestAssetsSchemaColumns(t *testing.T) {
	store := newTestStorage(t)

	rows, err := store.DB().Query("SELECT name FROM pragma_table_info('assets')")
	if err != nil {
		t.Fatalf("table_info error = %v", err)
	}
	defer rows.Close()

	seen := map[string]int{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		seen[name]++
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows error = %v", err)
	}

	for _, col := range []string{"asset_id", "chain_id", "symbol", "name", "precision", "source", "updated_at"} {
		if seen[col] != 1 {
			t.Errorf("column %s seen %d times, want 1", col, seen[col])
		}
	}
	if len(seen) != 7 {
		t.Errorf("assets has %d columns, want 7", len(seen))
	}
}

func TestReopenKeepsData(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "caip-storage-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	store, err := New(&Config{DataDir: tmpDir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.SaveAsset(&AssetRecord{AssetID: "eip155:1/slip44:60", ChainID: "eip155:1", Symbol: "ETH"}); err != nil {
		t.Fatalf("SaveAsset() error = %v", err)
	}
	store.Close()

	// Reopening an existing database keeps the schema and rows.
	store, err = New(&Config{DataDir: tmpDir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer store.Close()

	count, err := store.AssetCount()
	if err != nil || count != 1 {
		t.Errorf("AssetCount() = %d, %v; want 1", count, err)
	}
}

func TestSettings(t *testing.T) {
	store := newTestStorage(t)

	_, ok, err := store.GetSetting("missing")
	if err != nil || ok {
		t.Errorf("GetSetting(missing) = ok %v, err %v", ok, err)
	}

	if err := store.SetSetting("catalog.persisted_at", "1"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	if err := store.SetSetting("catalog.persisted_at", "2"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}

	value, ok, err := store.GetSetting("catalog.persisted_at")
	if err != nil || !ok || value != "2" {
		t.Errorf("GetSetting() = %q, %v, %v; want 2", value, ok, err)
	}
}

func TestAssetCRUD(t *testing.T) {
	store := newTestStorage(t)

	fox := &AssetRecord{
		AssetID:   "eip155:1/erc20:0xc770eefad204b5180df6a14ee197d99d808ee52d",
		ChainID:   "eip155:1",
		Symbol:    "FOX",
		Name:      "FOX",
		Precision: 18,
		Source:    "chain",
		UpdatedAt: time.Unix(1700000000, 0),
	}
	if err := store.SaveAsset(fox); err != nil {
		t.Fatalf("SaveAsset() error = %v", err)
	}

	got, err := store.GetAsset(fox.AssetID)
	if err != nil {
		t.Fatalf("GetAsset() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetAsset() returned nil")
	}
	if got.Symbol != "FOX" || got.Precision != 18 || got.Source != "chain" {
		t.Errorf("GetAsset() = %+v", got)
	}
	if !got.UpdatedAt.Equal(fox.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, fox.UpdatedAt)
	}

	// Upsert
	fox.Name = "ShapeShift FOX"
	fox.Source = "seed"
	if err := store.SaveAsset(fox); err != nil {
		t.Fatalf("SaveAsset() update error = %v", err)
	}
	got, _ = store.GetAsset(fox.AssetID)
	if got.Name != "ShapeShift FOX" || got.Source != "seed" {
		t.Errorf("after update = %+v", got)
	}

	missing, err := store.GetAsset("eip155:1/slip44:60")
	if err != nil || missing != nil {
		t.Errorf("GetAsset(missing) = %v, %v; want nil, nil", missing, err)
	}

	if err := store.DeleteAsset(fox.AssetID); err != nil {
		t.Fatalf("DeleteAsset() error = %v", err)
	}
	count, _ := store.AssetCount()
	if count != 0 {
		t.Errorf("AssetCount() after delete = %d, want 0", count)
	}
}

func TestListAssets(t *testing.T) {
	store := newTestStorage(t)

	recs := []*AssetRecord{
		{AssetID: "eip155:1/slip44:60", ChainID: "eip155:1", Symbol: "ETH", Precision: 18},
		{AssetID: "cosmos:osmosis-1/slip44:118", ChainID: "cosmos:osmosis-1", Symbol: "OSMO", Precision: 6},
		{AssetID: "eip155:1/erc20:0xc770eefad204b5180df6a14ee197d99d808ee52d", ChainID: "eip155:1", Symbol: "FOX", Precision: 18},
	}
	if err := store.SaveAssets(recs); err != nil {
		t.Fatalf("SaveAssets() error = %v", err)
	}

	all, err := store.ListAssets("")
	if err != nil {
		t.Fatalf("ListAssets() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListAssets() returned %d, want 3", len(all))
	}
	if all[0].AssetID != "cosmos:osmosis-1/slip44:118" {
		t.Errorf("first asset = %s, want ordered by asset id", all[0].AssetID)
	}

	eth, err := store.ListAssets("eip155:1")
	if err != nil {
		t.Fatalf("ListAssets(eip155:1) error = %v", err)
	}
	if len(eth) != 2 {
		t.Errorf("ListAssets(eip155:1) returned %d, want 2", len(eth))
	}
}

func TestProviderIDs(t *testing.T) {
	store := newTestStorage(t)

	for _, rec := range []*ProviderIDRecord{
		{Provider: "coingecko", ProviderID: "ethereum", AssetID: "eip155:1/slip44:60"},
		{Provider: "coingecko", ProviderID: "bitcoin", AssetID: "bip122:000000000019d6689c085ae165831e93/slip44:0"},
		{Provider: "coincap", ProviderID: "ethereum", AssetID: "eip155:1/slip44:60"},
	} {
		if err := store.SaveProviderID(rec); err != nil {
			t.Fatalf("SaveProviderID() error = %v", err)
		}
	}

	recs, err := store.ListProviderIDs("coingecko")
	if err != nil {
		t.Fatalf("ListProviderIDs() error = %v", err)
	}
	if len(recs) != 2 || recs[0].ProviderID != "bitcoin" {
		t.Errorf("ListProviderIDs(coingecko) = %v", recs)
	}

	// Upsert changes the mapping.
	if err := store.SaveProviderID(&ProviderIDRecord{Provider: "coingecko", ProviderID: "bitcoin", AssetID: "bip122:000000000933ea01ad0ee984209779ba/slip44:0"}); err != nil {
		t.Fatalf("SaveProviderID() update error = %v", err)
	}

	fetch := store.ProviderFetchFunc("coingecko")
	table, err := fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch error = %v", err)
	}
	if len(table) != 2 {
		t.Errorf("fetch returned %d entries, want 2", len(table))
	}
	if table["bitcoin"] != "bip122:000000000933ea01ad0ee984209779ba/slip44:0" {
		t.Errorf("bitcoin = %s", table["bitcoin"])
	}

	if err := store.DeleteProviderIDs("coingecko"); err != nil {
		t.Fatalf("DeleteProviderIDs() error = %v", err)
	}
	table, err = fetch(context.Background())
	if err != nil || len(table) != 0 {
		t.Errorf("after delete = %v, %v", table, err)
	}

	other, _ := store.ListProviderIDs("coincap")
	if len(other) != 1 {
		t.Errorf("coincap entries = %d, want 1", len(other))
	}
}

func TestProviderFetchFuncCanceled(t *testing.T) {
	store := newTestStorage(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.ProviderFetchFunc("coingecko")(ctx); err == nil {
		t.Error("expected error for canceled context")
	}
}
