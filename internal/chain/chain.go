// Package chain defines metadata for the chains the identifier registry
// supports and maps each of them to its ChainID and native AssetID.
// All chain-specific values are hardcoded here - no external configuration needed.
package chain

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/Klingon-tech/caip/pkg/caip"
)

// Network represents mainnet or one of a chain's testnets.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"

	// Legacy Ethereum testnets, still addressable by their ChainIDs.
	Ropsten Network = "ropsten"
	Rinkeby Network = "rinkeby"
)

// Family represents the blockchain family.
type Family string

const (
	FamilyBitcoin Family = "bitcoin" // BTC and forks (LTC, DOGE)
	FamilyEVM     Family = "evm"     // Ethereum and EVM chains
	FamilyCosmos  Family = "cosmos"  // Cosmos SDK chains
)

// Namespace returns the ChainID namespace used by the family.
func (f Family) Namespace() (caip.ChainNamespace, error) {
	switch f {
	case FamilyBitcoin:
		return caip.ChainNamespaceBitcoin, nil
	case FamilyEVM:
		return caip.ChainNamespaceEthereum, nil
	case FamilyCosmos:
		return caip.ChainNamespaceCosmos, nil
	default:
		return "", fmt.Errorf("unknown chain family %q", f)
	}
}

// Params contains all parameters for a blockchain.
type Params struct {
	// Identity
	Symbol   string // BTC, ETH, ATOM, etc.
	Name     string // Bitcoin, Ethereum, Cosmos Hub, etc.
	Family   Family // bitcoin, evm, cosmos
	Network  Network
	Decimals uint8 // 8 for BTC, 18 for ETH, 6 for ATOM

	// SLIP-44 coin type of the native asset. Testnets carry the mainnet value.
	CoinType uint32

	// Bitcoin-like
	GenesisHash *chainhash.Hash
	Bech32HRP   string // also used by cosmos chains

	// EVM
	EVMChainID  uint64
	NativeToken string // Native token symbol (ETH, BNB, POL) - empty means same as Symbol

	// Cosmos
	CosmosChainName string // chain-id from genesis, e.g. cosmoshub-4
	NativeDenom     string // base denom, e.g. uatom
}

// ChainID returns the identifier of the chain.
func (p *Params) ChainID() (caip.ChainID, error) {
	ns, err := p.Family.Namespace()
	if err != nil {
		return caip.ChainID{}, err
	}

	var ref caip.ChainReference
	switch p.Family {
	case FamilyEVM:
		ref = caip.ChainReference(strconv.FormatUint(p.EVMChainID, 10))
	case FamilyBitcoin:
		if p.GenesisHash == nil {
			return caip.ChainID{}, fmt.Errorf("%s %s: no genesis hash", p.Symbol, p.Network)
		}
		ref = caip.Bip122Reference(p.GenesisHash.String())
	case FamilyCosmos:
		ref = caip.ChainReference(p.CosmosChainName)
	}

	return caip.ToChainID(ns, ref)
}

// NativeAssetID returns the slip44 AssetID of the chain's native asset.
func (p *Params) NativeAssetID() (caip.AssetID, error) {
	chainID, err := p.ChainID()
	if err != nil {
		return caip.AssetID{}, err
	}
	ref := caip.AssetReference(strconv.FormatUint(uint64(p.CoinType), 10))
	return caip.NewAssetID(chainID, caip.AssetNamespaceSlip44, ref)
}

// NativeDenomAssetID returns the native:<denom> AssetID of a cosmos chain.
// ok is false when the chain has no base denom.
func (p *Params) NativeDenomAssetID() (id caip.AssetID, ok bool, err error) {
	if p.NativeDenom == "" {
		return caip.AssetID{}, false, nil
	}
	chainID, err := p.ChainID()
	if err != nil {
		return caip.AssetID{}, false, err
	}
	id, err = caip.NewAssetID(chainID, caip.AssetNamespaceNative, caip.AssetReference(p.NativeDenom))
	if err != nil {
		return caip.AssetID{}, false, err
	}
	return id, true, nil
}

// GetNativeToken returns the native token symbol for a chain.
// For most EVM chains, this returns "ETH", "BNB", "POL", etc.
func (p *Params) GetNativeToken() string {
	if p.NativeToken != "" {
		return p.NativeToken
	}
	return p.Symbol
}

// Registry holds all chain parameters indexed by symbol.
var registry = make(map[string]map[Network]*Params)

// Register adds chain params to the registry.
func Register(symbol string, network Network, params *Params) {
	if registry[symbol] == nil {
		registry[symbol] = make(map[Network]*Params)
	}
	params.Network = network
	registry[symbol][network] = params
}

// Get returns chain params for a symbol and network.
func Get(symbol string, network Network) (*Params, bool) {
	nets, ok := registry[symbol]
	if !ok {
		return nil, false
	}
	params, ok := nets[network]
	return params, ok
}

// List returns all registered chain symbols, sorted.
func List() []string {
	symbols := make([]string, 0, len(registry))
	for symbol := range registry {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// All returns every registered (symbol, network) entry, ordered by symbol
// then network.
func All() []*Params {
	var all []*Params
	for _, nets := range registry {
		for _, params := range nets {
			all = append(all, params)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Symbol != all[j].Symbol {
			return all[i].Symbol < all[j].Symbol
		}
		return all[i].Network < all[j].Network
	})
	return all
}

// ListByFamily returns the entries of one family in All order.
func ListByFamily(family Family) []*Params {
	var out []*Params
	for _, params := range All() {
		if params.Family == family {
			out = append(out, params)
		}
	}
	return out
}

// GetByEVMChainID returns chain params for an EVM chain ID.
func GetByEVMChainID(chainID uint64) (*Params, bool) {
	for _, nets := range registry {
		for _, params := range nets {
			if params.Family == FamilyEVM && params.EVMChainID == chainID {
				return params, true
			}
		}
	}
	return nil, false
}

// GetByChainID returns chain params for a ChainID.
func GetByChainID(id caip.ChainID) (*Params, bool) {
	for _, nets := range registry {
		for _, params := range nets {
			got, err := params.ChainID()
			if err == nil && got == id {
				return params, true
			}
		}
	}
	return nil, false
}

func mustHash(s string) *chainhash.Hash {
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		panic(fmt.Sprintf("chain: bad genesis hash %q: %v", s, err))
	}
	return h
}
