package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Klingon-tech/caip/internal/catalog"
	"github.com/Klingon-tech/caip/internal/chain"
	"github.com/Klingon-tech/caip/internal/provider"
	"github.com/Klingon-tech/caip/pkg/caip"
)

// Version of the daemon
const Version = "0.1.0-dev"

var errChainNotFound = errors.New("chain not found")

// ========================================
// Chain handlers
// ========================================

// ChainInfo describes a supported chain.
type ChainInfo struct {
	ChainID       string `json:"chainId"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Network       string `json:"network"`
	Family        string `json:"family"`
	Decimals      uint8  `json:"decimals"`
	NativeAssetID string `json:"nativeAssetId"`
	NativeToken   string `json:"nativeToken"`
}

func chainInfo(p *chain.Params) (*ChainInfo, error) {
	id, err := p.ChainID()
	if err != nil {
		return nil, err
	}
	native, err := p.NativeAssetID()
	if err != nil {
		return nil, err
	}
	return &ChainInfo{
		ChainID:       id.String(),
		Symbol:        p.Symbol,
		Name:          p.Name,
		Network:       string(p.Network),
		Family:        string(p.Family),
		Decimals:      p.Decimals,
		NativeAssetID: native.String(),
		NativeToken:   p.GetNativeToken(),
	}, nil
}

// ChainsListParams filters chains_list. An empty Family lists every chain.
type ChainsListParams struct {
	Family string `json:"family,omitempty"`
}

func (s *Server) chainsList(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ChainsListParams
	if len(params) > 0 && string(params) != "null" {
		if err := parseParams(params, &p); err != nil {
			return nil, err
		}
	}

	entries := chain.All()
	if p.Family != "" {
		family := chain.Family(p.Family)
		if _, err := family.Namespace(); err != nil {
			return nil, &Error{Code: InvalidParams, Message: err.Error()}
		}
		entries = chain.ListByFamily(family)
	}

	infos := make([]*ChainInfo, 0, len(entries))
	for _, cp := range entries {
		info, err := chainInfo(cp)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// ChainsGetParams selects a chain by ChainID or by EVM chain id. Exactly
// one must be set.
type ChainsGetParams struct {
	ChainID    string `json:"chainId,omitempty"`
	EVMChainID uint64 `json:"evmChainId,omitempty"`
}

func (s *Server) chainsGet(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ChainsGetParams
	if err := parseParams(params, &p); err != nil {
		return nil, err
	}

	switch {
	case p.ChainID != "" && p.EVMChainID != 0:
		return nil, &Error{Code: InvalidParams, Message: "chainId and evmChainId are mutually exclusive"}
	case p.EVMChainID != 0:
		cp, ok := chain.GetByEVMChainID(p.EVMChainID)
		if !ok {
			return nil, fmt.Errorf("%w: evm chain id %d", errChainNotFound, p.EVMChainID)
		}
		return chainInfo(cp)
	case p.ChainID == "":
		return nil, &Error{Code: InvalidParams, Message: "chainId or evmChainId is required"}
	}

	id, err := caip.FromChainID(p.ChainID)
	if err != nil {
		return nil, err
	}
	cp, ok := chain.GetByChainID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errChainNotFound, id)
	}
	return chainInfo(cp)
}

// ========================================
// Catalog handlers
// ========================================

func (s *Server) assetsGet(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p AssetIDStringParams
	if err := parseParams(params, &p); err != nil {
		return nil, err
	}

	asset, err := s.catalog.Lookup(p.AssetID)
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// AssetsListParams filters assets_list. An empty ChainID lists everything.
type AssetsListParams struct {
	ChainID string `json:"chainId,omitempty"`
}

func (s *Server) assetsList(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p AssetsListParams
	if len(params) > 0 {
		if err := parseParams(params, &p); err != nil {
			return nil, err
		}
	}

	if p.ChainID == "" {
		return s.catalog.List(), nil
	}

	id, err := caip.FromChainID(p.ChainID)
	if err != nil {
		return nil, err
	}
	assets := s.catalog.ListByChain(id)
	if assets == nil {
		assets = []catalog.Asset{}
	}
	return assets, nil
}

// ========================================
// Provider handlers
// ========================================

// ProviderParams names a provider.
type ProviderParams struct {
	Provider string `json:"provider"`
}

// ProviderIDParams looks up a provider id.
type ProviderIDParams struct {
	Provider   string `json:"provider"`
	ProviderID string `json:"providerId"`
}

// ProviderAssetParams looks up an AssetID's provider id.
type ProviderAssetParams struct {
	Provider string `json:"provider"`
	AssetID  string `json:"assetId"`
}

// ProviderIDResult pairs a provider id with its AssetID.
type ProviderIDResult struct {
	Provider   string `json:"provider"`
	ProviderID string `json:"providerId"`
	AssetID    string `json:"assetId"`
}

func (s *Server) providerCache(name string) (*provider.Cache, error) {
	if name == "" {
		return nil, &Error{Code: InvalidParams, Message: "missing provider"}
	}
	return s.providers.Get(provider.Name(name))
}

func (s *Server) providerList(ctx context.Context, params json.RawMessage) (interface{}, error) {
	stats := s.providers.Stats()
	if stats == nil {
		stats = []provider.Stats{}
	}
	return stats, nil
}

func (s *Server) providerToAssetID(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ProviderIDParams
	if err := parseParams(params, &p); err != nil {
		return nil, err
	}

	cache, err := s.providerCache(p.Provider)
	if err != nil {
		return nil, err
	}
	id, err := cache.ToAssetID(ctx, p.ProviderID)
	if err != nil {
		return nil, err
	}
	return &ProviderIDResult{Provider: p.Provider, ProviderID: p.ProviderID, AssetID: id.String()}, nil
}

func (s *Server) providerFromAssetID(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ProviderAssetParams
	if err := parseParams(params, &p); err != nil {
		return nil, err
	}

	id, err := caip.FromAssetID(p.AssetID)
	if err != nil {
		return nil, err
	}
	cache, err := s.providerCache(p.Provider)
	if err != nil {
		return nil, err
	}
	providerID, err := cache.FromAssetID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProviderIDResult{Provider: p.Provider, ProviderID: providerID, AssetID: id.String()}, nil
}

func (s *Server) providerRefresh(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ProviderParams
	if err := parseParams(params, &p); err != nil {
		return nil, err
	}

	cache, err := s.providerCache(p.Provider)
	if err != nil {
		return nil, err
	}
	if err := cache.Refresh(ctx); err != nil {
		return nil, err
	}

	stats := cache.Stats()
	if s.wsHub != nil {
		s.wsHub.Broadcast(EventProviderRefreshed, stats)
	}
	return stats, nil
}

// ========================================
// Node handlers
// ========================================

// NodeStatusResult is the response for node_status.
type NodeStatusResult struct {
	Running      bool             `json:"running"`
	Version      string           `json:"version"`
	Uptime       string           `json:"uptime"`
	Chains       int              `json:"chains"`
	Assets       int              `json:"assets"`
	StoredAssets int              `json:"storedAssets"`
	Providers    []provider.Stats `json:"providers"`
	WSClients    int              `json:"wsClients"`
}

func (s *Server) nodeStatus(ctx context.Context, params json.RawMessage) (interface{}, error) {
	storedAssets := 0
	if s.store != nil {
		count, err := s.store.AssetCount()
		if err == nil {
			storedAssets = count
		}
	}

	wsClients := 0
	if s.wsHub != nil {
		wsClients = s.wsHub.ClientCount()
	}

	providers := s.providers.Stats()
	if providers == nil {
		providers = []provider.Stats{}
	}

	return &NodeStatusResult{
		Running:      true,
		Version:      Version,
		Uptime:       time.Since(s.startedAt).Round(time.Second).String(),
		Chains:       len(caip.ChainIDs()),
		Assets:       s.catalog.Len(),
		StoredAssets: storedAssets,
		Providers:    providers,
		WSClients:    wsClients,
	}, nil
}
