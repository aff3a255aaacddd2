// Package caip parses, constructs and canonicalizes chain, asset and account
// identifiers (ChainID, AssetID, AccountID) for the eip155, bip122 and cosmos
// chain families.
//
// Only chains listed in the registry are accepted. All functions are pure and
// safe for concurrent use; the registry tables are populated at package init
// and never modified afterwards.
package caip

import (
	"sort"
	"strings"

	"github.com/Klingon-tech/caip/pkg/helpers"
)

// ChainNamespace is the chain family part of a ChainID.
type ChainNamespace string

const (
	ChainNamespaceEthereum ChainNamespace = "eip155" // EVM chains
	ChainNamespaceBitcoin  ChainNamespace = "bip122" // BTC and forks
	ChainNamespaceCosmos   ChainNamespace = "cosmos" // Cosmos SDK chains
)

// ChainReference identifies a chain within its namespace.
type ChainReference string

const (
	// eip155: decimal EVM chain id
	ChainReferenceEthereumMainnet ChainReference = "1"
	ChainReferenceEthereumRopsten ChainReference = "3"
	ChainReferenceEthereumRinkeby ChainReference = "4"
	ChainReferenceOptimism        ChainReference = "10"
	ChainReferenceBSC             ChainReference = "56"
	ChainReferencePolygon         ChainReference = "137"
	ChainReferenceBase            ChainReference = "8453"
	ChainReferenceArbitrum        ChainReference = "42161"
	ChainReferenceAvalanche       ChainReference = "43114"
	ChainReferenceEthereumSepolia ChainReference = "11155111"

	// bip122: first 32 hex chars of the genesis block hash
	ChainReferenceBitcoinMainnet  ChainReference = "000000000019d6689c085ae165831e93"
	ChainReferenceBitcoinTestnet  ChainReference = "000000000933ea01ad0ee984209779ba"
	ChainReferenceLitecoinMainnet ChainReference = "12a765e31ffd4059bada1e25190f6e98"
	ChainReferenceDogecoinMainnet ChainReference = "1a91e3dace36e2be3bf030a65679fe82"

	// cosmos: chain name from genesis
	ChainReferenceCosmosHubMainnet ChainReference = "cosmoshub-4"
	ChainReferenceCosmosHubVega    ChainReference = "vega-testnet"
	ChainReferenceOsmosisMainnet   ChainReference = "osmosis-1"
	ChainReferenceOsmosisTestnet   ChainReference = "osmo-testnet-1"
)

// AssetNamespace selects the grammar of an asset reference.
type AssetNamespace string

const (
	AssetNamespaceSlip44 AssetNamespace = "slip44" // native asset, numeric coin type
	AssetNamespaceERC20  AssetNamespace = "erc20"  // 0x contract address
	AssetNamespaceERC721 AssetNamespace = "erc721" // 0x contract address
	AssetNamespaceIBC    AssetNamespace = "ibc"    // IBC denom hash
	AssetNamespaceNative AssetNamespace = "native" // chain-native denom
	AssetNamespaceCW20   AssetNamespace = "cw20"   // CosmWasm token contract
	AssetNamespaceCW721  AssetNamespace = "cw721"  // CosmWasm NFT contract
)

// AssetReference identifies an asset within its asset namespace.
type AssetReference string

// Well-known slip44 coin types.
const (
	AssetReferenceBitcoin  AssetReference = "0"
	AssetReferenceEthereum AssetReference = "60"
	AssetReferenceCosmos   AssetReference = "118"
	AssetReferenceOsmosis  AssetReference = "118"
)

// bip122ReferenceLen is the number of genesis hash hex chars kept in a
// bip122 chain reference.
const bip122ReferenceLen = 32

var chainReferences = map[ChainNamespace][]ChainReference{
	ChainNamespaceEthereum: {
		ChainReferenceEthereumMainnet,
		ChainReferenceEthereumRopsten,
		ChainReferenceEthereumRinkeby,
		ChainReferenceOptimism,
		ChainReferenceBSC,
		ChainReferencePolygon,
		ChainReferenceBase,
		ChainReferenceArbitrum,
		ChainReferenceAvalanche,
		ChainReferenceEthereumSepolia,
	},
	ChainNamespaceBitcoin: {
		ChainReferenceBitcoinMainnet,
		ChainReferenceBitcoinTestnet,
		ChainReferenceLitecoinMainnet,
		ChainReferenceDogecoinMainnet,
	},
	ChainNamespaceCosmos: {
		ChainReferenceCosmosHubMainnet,
		ChainReferenceCosmosHubVega,
		ChainReferenceOsmosisMainnet,
		ChainReferenceOsmosisTestnet,
	},
}

var assetNamespaces = []AssetNamespace{
	AssetNamespaceSlip44,
	AssetNamespaceERC20,
	AssetNamespaceERC721,
	AssetNamespaceIBC,
	AssetNamespaceNative,
	AssetNamespaceCW20,
	AssetNamespaceCW721,
}

// registered is the lookup form of chainReferences.
var registered = func() map[ChainNamespace]map[ChainReference]struct{} {
	m := make(map[ChainNamespace]map[ChainReference]struct{}, len(chainReferences))
	for ns, refs := range chainReferences {
		set := make(map[ChainReference]struct{}, len(refs))
		for _, ref := range refs {
			set[ref] = struct{}{}
		}
		m[ns] = set
	}
	return m
}()

// ChainNamespaces returns the supported chain namespaces in sorted order.
func ChainNamespaces() []ChainNamespace {
	out := make([]ChainNamespace, 0, len(chainReferences))
	for ns := range chainReferences {
		out = append(out, ns)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ChainReferences returns a copy of the references registered for ns,
// or nil if ns is not supported.
func ChainReferences(ns ChainNamespace) []ChainReference {
	refs, ok := chainReferences[ns]
	if !ok {
		return nil
	}
	out := make([]ChainReference, len(refs))
	copy(out, refs)
	return out
}

// AssetNamespaces returns a copy of the supported asset namespaces.
func AssetNamespaces() []AssetNamespace {
	out := make([]AssetNamespace, len(assetNamespaces))
	copy(out, assetNamespaces)
	return out
}

// ChainIDs returns every registered chain, sorted by canonical string.
func ChainIDs() []ChainID {
	var out []ChainID
	for ns, refs := range chainReferences {
		for _, ref := range refs {
			out = append(out, ChainID{Namespace: ns, Reference: ref})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Bip122Reference derives a bip122 chain reference from a genesis block hash
// in its usual big-endian hex form. It returns "" if genesisHash is not hex.
// The result is not checked against the registry.
func Bip122Reference(genesisHash string) ChainReference {
	if !helpers.IsHexDigits(genesisHash) {
		return ""
	}
	h := strings.ToLower(genesisHash)
	if len(h) > bip122ReferenceLen {
		h = h[:bip122ReferenceLen]
	}
	return ChainReference(h)
}
