// Package main provides the caipd daemon - a JSON-RPC service for CAIP
// chain, asset and account identifiers.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Klingon-tech/caip/internal/catalog"
	"github.com/Klingon-tech/caip/internal/config"
	"github.com/Klingon-tech/caip/internal/provider"
	"github.com/Klingon-tech/caip/internal/rpc"
	"github.com/Klingon-tech/caip/internal/storage"
	"github.com/Klingon-tech/caip/pkg/caip"
	"github.com/Klingon-tech/caip/pkg/logging"
)

var (
	version = rpc.Version
	commit  = "unknown"
)

func main() {
	// Parse flags
	var (
		dataDir     = flag.String("data-dir", "~/.caip", "Data directory")
		configFile  = flag.String("config", "", "Config file path (default: <data-dir>/config.yaml)")
		apiAddr     = flag.String("api", "", "JSON-RPC API address, overrides config")
		seedFile    = flag.String("seed", "", "Extra catalog seed file (YAML)")
		reseed      = flag.Bool("reseed-providers", false, "Replace stored provider tables with the built-in ones")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides config")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	// Set up logging (initial, replaced once the config is loaded)
	log := logging.New(&logging.Config{
		Level:      "info",
		TimeFormat: time.TimeOnly,
	})
	logging.SetDefault(log)

	if *showVersion {
		log.Infof("caipd %s (commit: %s)", version, commit)
		os.Exit(0)
	}

	// Load or create config file
	configPath := config.ConfigPath(*dataDir)
	if *configFile != "" {
		configPath = config.ExpandPath(*configFile)
	}
	cfg, err := config.LoadConfigFile(configPath, *dataDir)
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// CLI flags take precedence over the config file
	if *apiAddr != "" {
		cfg.API.Address = *apiAddr
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *seedFile != "" {
		cfg.Catalog.SeedFiles = append(cfg.Catalog.SeedFiles, *seedFile)
	}
	if *reseed {
		cfg.Providers.SeedDefaults = true
		cfg.Providers.Reseed = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid config", "error", err)
	}

	var output io.Writer = os.Stderr
	if cfg.Logging.File != "" {
		f, err := logging.OpenFile(config.ExpandPath(cfg.Logging.File))
		if err != nil {
			log.Fatal("Failed to open log file", "error", err)
		}
		defer f.Close()
		output = f
	}
	log = logging.New(&logging.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		TimeFormat: time.TimeOnly,
		Output:     output,
	})
	logging.SetDefault(log)

	log.Info("Config loaded", "path", configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	dataPath := config.ExpandPath(cfg.Storage.DataDir)
	store, err := storage.New(&storage.Config{DataDir: dataPath})
	if err != nil {
		log.Fatal("Failed to initialize storage", "error", err)
	}
	defer store.Close()
	log.Info("Storage initialized", "path", store.Path())

	cat, err := buildCatalog(cfg, store, log.Component("catalog"))
	if err != nil {
		log.Fatal("Failed to build catalog", "error", err)
	}

	providers, err := buildProviders(ctx, cfg, store, log.Component("provider"))
	if err != nil {
		log.Fatal("Failed to set up providers", "error", err)
	}

	// Start RPC server
	server := rpc.NewServer(cat, providers, store, rpc.Options{
		EnableWebSocket: cfg.API.EnableWebSocket,
		EnableMetrics:   cfg.API.EnableMetrics,
		AllowedOrigins:  cfg.API.AllowedOrigins,
		Logger:          log,
	})
	if err := server.Start(cfg.API.Address); err != nil {
		log.Fatal("Failed to start RPC server", "error", err)
	}

	printBanner(log, cfg, cat, server)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("Received signal, shutting down...", "signal", sig)

	cancel()
	if err := server.Stop(); err != nil {
		log.Error("Error stopping RPC server", "error", err)
	}

	log.Info("Goodbye!")
}

// buildCatalog fills the catalog from chain metadata, seeds and previously
// stored entries, then writes it back when persistence is enabled.
func buildCatalog(cfg *config.Config, store *storage.Storage, log *logging.Logger) (*catalog.Catalog, error) {
	cat := catalog.New(log)

	n, err := cat.FromChains()
	if err != nil {
		return nil, err
	}
	log.Info("Loaded chain assets", "count", n)

	if cfg.Catalog.LoadDefaultSeed {
		stats, err := cat.LoadDefaultSeed()
		if err != nil {
			return nil, err
		}
		log.Info("Loaded default seed", "loaded", stats.Loaded, "skipped", stats.Skipped)
	}

	for _, path := range cfg.Catalog.SeedFiles {
		stats, err := cat.LoadSeedFile(config.ExpandPath(path))
		if err != nil {
			return nil, err
		}
		log.Info("Loaded seed file", "path", path, "loaded", stats.Loaded, "skipped", stats.Skipped)
	}

	if cfg.Catalog.PruneStored {
		pruned, err := cat.PruneStored(store)
		if err != nil {
			return nil, err
		}
		if pruned > 0 {
			log.Info("Pruned stored assets", "count", pruned)
		}
	}

	stats, err := cat.Restore(store)
	if err != nil {
		return nil, err
	}
	if stats.Loaded > 0 || stats.Skipped > 0 {
		log.Info("Restored stored assets", "loaded", stats.Loaded, "skipped", stats.Skipped)
	}

	if cfg.Catalog.Persist {
		if err := cat.Persist(store); err != nil {
			return nil, err
		}
		if err := store.SetSetting("catalog.persisted_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
			log.Warn("Failed to record persist time", "error", err)
		}
	}

	log.Info("Catalog ready", "assets", cat.Len(), "chains", len(caip.ChainIDs()))
	return cat, nil
}

// buildProviders creates one cache per enabled provider, backed by the
// provider_ids table.
func buildProviders(ctx context.Context, cfg *config.Config, store *storage.Storage, log *logging.Logger) (*provider.Registry, error) {
	registry := provider.NewRegistry()

	for _, name := range cfg.ProviderNames() {
		if cfg.Providers.SeedDefaults {
			n, err := seedProviderTable(store, name, cfg.Providers.Reseed)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				log.Info("Seeded provider table", "provider", name, "entries", n, "reseed", cfg.Providers.Reseed)
			}
		}

		registry.Register(provider.NewCache(name, store.ProviderFetchFunc(string(name)),
			provider.WithTTL(cfg.Providers.TTL),
			provider.WithRetryCooldown(cfg.Providers.RetryCooldown),
			provider.WithLogger(log),
		))
	}

	// Warm the caches; a failed provider is reloaded on first use.
	if err := registry.RefreshAll(ctx); err != nil {
		log.Warn("Provider refresh failed", "error", err)
	}
	for _, stats := range registry.Stats() {
		log.Info("Provider ready", "provider", stats.Provider, "entries", stats.Entries, "skipped", stats.Skipped)
	}
	return registry, nil
}

// seedProviderTable writes the built-in table for a provider and returns
// the number of rows written. Without reseed a provider that already has
// rows is left alone; with reseed its rows are replaced.
func seedProviderTable(store *storage.Storage, name provider.Name, reseed bool) (int, error) {
	if reseed {
		if err := store.DeleteProviderIDs(string(name)); err != nil {
			return 0, err
		}
	} else {
		existing, err := store.ListProviderIDs(string(name))
		if err != nil {
			return 0, err
		}
		if len(existing) > 0 {
			return 0, nil
		}
	}

	n := 0
	for providerID, assetID := range provider.DefaultTable(name) {
		if err := store.SaveProviderID(&storage.ProviderIDRecord{
			Provider:   string(name),
			ProviderID: providerID,
			AssetID:    assetID,
		}); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func printBanner(log *logging.Logger, cfg *config.Config, cat *catalog.Catalog, server *rpc.Server) {
	addr := cfg.API.Address
	if a := server.Addr(); a != nil {
		addr = a.String()
	}

	log.Info("")
	log.Info("=================================================")
	log.Info("  CAIP Identifier Service")
	log.Infof("  Version: %s", version)
	log.Info("=================================================")
	log.Info("")
	log.Infof("  API: http://%s", addr)
	if cfg.API.EnableWebSocket {
		log.Infof("  WS:  ws://%s/ws", addr)
	}
	if cfg.API.EnableMetrics {
		log.Infof("  Metrics: http://%s/metrics", addr)
	}
	log.Info("")
	log.Infof("  Chains: %d | Assets: %d | Providers: %d", len(caip.ChainIDs()), cat.Len(), len(cfg.ProviderNames()))
	log.Infof("  Data dir: %s", config.ExpandPath(cfg.Storage.DataDir))
	log.Info("")
	log.Info("=================================================")
	log.Info("")
}
