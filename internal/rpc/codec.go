package rpc

import (
	"context"
	"encoding/json"

	"github.com/Klingon-tech/caip/pkg/caip"
)

// ========================================
// Identifier codec handlers
// ========================================

// ChainIDParams are the parts of a ChainID.
type ChainIDParams struct {
	ChainNamespace string `json:"chainNamespace"`
	ChainReference string `json:"chainReference"`
}

// ChainIDResult describes a ChainID.
type ChainIDResult struct {
	ChainID        string `json:"chainId"`
	ChainNamespace string `json:"chainNamespace"`
	ChainReference string `json:"chainReference"`
}

func chainIDResult(id caip.ChainID) *ChainIDResult {
	return &ChainIDResult{
		ChainID:        id.String(),
		ChainNamespace: string(id.Namespace),
		ChainReference: string(id.Reference),
	}
}

func (s *Server) caipToChainID(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ChainIDParams
	if err := parseParams(params, &p); err != nil {
		return nil, err
	}

	id, err := caip.ToChainID(caip.ChainNamespace(p.ChainNamespace), caip.ChainReference(p.ChainReference))
	if err != nil {
		return nil, err
	}
	return chainIDResult(id), nil
}

// ChainIDStringParams carries a ChainID string.
type ChainIDStringParams struct {
	ChainID string `json:"chainId"`
}

func (s *Server) caipFromChainID(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ChainIDStringParams
	if err := parseParams(params, &p); err != nil {
		return nil, err
	}

	id, err := caip.FromChainID(p.ChainID)
	if err != nil {
		return nil, err
	}
	return chainIDResult(id), nil
}

// ValidResult answers an Is* query.
type ValidResult struct {
	Valid bool `json:"valid"`
}

func (s *Server) caipIsChainID(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ChainIDStringParams
	if err := parseParams(params, &p); err != nil {
		return nil, err
	}
	return &ValidResult{Valid: caip.IsChainID(p.ChainID)}, nil
}

// AssetIDParams are the parts of an AssetID.
type AssetIDParams struct {
	ChainNamespace string `json:"chainNamespace"`
	ChainReference string `json:"chainReference"`
	AssetNamespace string `json:"assetNamespace"`
	AssetReference string `json:"assetReference"`
}

// AssetIDResult describes an AssetID.
type AssetIDResult struct {
	AssetID        string `json:"assetId"`
	ChainID        string `json:"chainId"`
	ChainNamespace string `json:"chainNamespace"`
	ChainReference string `json:"chainReference"`
	AssetNamespace string `json:"assetNamespace"`
	AssetReference string `json:"assetReference"`
}

func assetIDResult(id caip.AssetID) *AssetIDResult {
	return &AssetIDResult{
		AssetID:        id.String(),
		ChainID:        id.Chain.String(),
		ChainNamespace: string(id.Chain.Namespace),
		ChainReference: string(id.Chain.Reference),
		AssetNamespace: string(id.Namespace),
		AssetReference: string(id.Reference),
	}
}

func (s *Server) caipToAssetID(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p AssetIDParams
	if err := parseParams(params, &p); err != nil {
		return nil, err
	}

	id, err := caip.ToAssetID(
		caip.ChainNamespace(p.ChainNamespace),
		caip.ChainReference(p.ChainReference),
		caip.AssetNamespace(p.AssetNamespace),
		caip.AssetReference(p.AssetReference),
	)
	if err != nil {
		return nil, err
	}
	return assetIDResult(id), nil
}

// AssetIDStringParams carries an AssetID string.
type AssetIDStringParams struct {
	AssetID string `json:"assetId"`
}

func (s *Server) caipFromAssetID(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p AssetIDStringParams
	if err := parseParams(params, &p); err != nil {
		return nil, err
	}

	id, err := caip.FromAssetID(p.AssetID)
	if err != nil {
		return nil, err
	}
	return assetIDResult(id), nil
}

func (s *Server) caipIsAssetID(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p AssetIDStringParams
	if err := parseParams(params, &p); err != nil {
		return nil, err
	}
	return &ValidResult{Valid: caip.IsAssetID(p.AssetID)}, nil
}

// AccountIDParams build an AccountID from either a chainId string or the
// chain namespace and reference.
type AccountIDParams struct {
	ChainID        string `json:"chainId,omitempty"`
	ChainNamespace string `json:"chainNamespace,omitempty"`
	ChainReference string `json:"chainReference,omitempty"`
	Account        string `json:"account"`
}

// AccountIDResult describes an AccountID.
type AccountIDResult struct {
	AccountID      string `json:"accountId"`
	ChainID        string `json:"chainId"`
	ChainNamespace string `json:"chainNamespace"`
	ChainReference string `json:"chainReference"`
	Account        string `json:"account"`
}

func accountIDResult(id caip.AccountID) *AccountIDResult {
	return &AccountIDResult{
		AccountID:      id.String(),
		ChainID:        id.Chain.String(),
		ChainNamespace: string(id.Chain.Namespace),
		ChainReference: string(id.Chain.Reference),
		Account:        id.Account,
	}
}

func (s *Server) caipToAccountID(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p AccountIDParams
	if err := parseParams(params, &p); err != nil {
		return nil, err
	}

	var (
		id  caip.AccountID
		err error
	)
	if p.ChainID != "" {
		id, err = caip.ToAccountID(p.ChainID, p.Account)
	} else {
		id, err = caip.ToAccountIDFromParts(caip.ChainNamespace(p.ChainNamespace), caip.ChainReference(p.ChainReference), p.Account)
	}
	if err != nil {
		return nil, err
	}
	return accountIDResult(id), nil
}

// AccountIDStringParams carries an AccountID string.
type AccountIDStringParams struct {
	AccountID string `json:"accountId"`
}

func (s *Server) caipFromAccountID(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p AccountIDStringParams
	if err := parseParams(params, &p); err != nil {
		return nil, err
	}

	id, err := caip.FromAccountID(p.AccountID)
	if err != nil {
		return nil, err
	}
	return accountIDResult(id), nil
}
