package chain

import (
	"sort"
	"strconv"

	"github.com/Klingon-tech/caip/pkg/caip"
)

// TokenInfo contains information about an ERC-20 token on a specific chain.
type TokenInfo struct {
	Symbol   string // Token symbol (USDT, USDC, etc.)
	Name     string // Full name
	Decimals uint8  // Token decimals
	Address  string // Contract address, any hex case
	ChainID  uint64 // EVM chain ID
}

// AssetID returns the erc20 AssetID of the token.
func (t *TokenInfo) AssetID() (caip.AssetID, error) {
	return caip.ToAssetID(
		caip.ChainNamespaceEthereum,
		caip.ChainReference(strconv.FormatUint(t.ChainID, 10)),
		caip.AssetNamespaceERC20,
		caip.AssetReference(t.Address),
	)
}

var wellKnownTokens = []TokenInfo{
	// Ethereum Mainnet
	{"FOX", "FOX", 18, "0xc770EEfAd204B5180dF6a14Ee197D99d808ee52d", 1},
	{"USDT", "Tether USD", 6, "0xdAC17F958D2ee523a2206206994597C13D831ec7", 1},
	{"USDC", "USD Coin", 6, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", 1},
	{"WETH", "Wrapped Ether", 18, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", 1},
	{"WBTC", "Wrapped Bitcoin", 8, "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", 1},
	{"DAI", "Dai Stablecoin", 18, "0x6B175474E89094C44Da98b954EedeAC495271d0F", 1},

	// Arbitrum One
	{"USDT", "Tether USD", 6, "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9", 42161},
	{"USDC", "USD Coin", 6, "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", 42161},
	{"WETH", "Wrapped Ether", 18, "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1", 42161},
	{"WBTC", "Wrapped Bitcoin", 8, "0x2f2a2543B76A4166549F7aaB2e75Bef0aefC5B0f", 42161},

	// Optimism
	{"USDT", "Tether USD", 6, "0x94b008aA00579c1307B0EF2c499aD98a8ce58e58", 10},
	{"USDC", "USD Coin", 6, "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85", 10},
	{"WETH", "Wrapped Ether", 18, "0x4200000000000000000000000000000000000006", 10},

	// Base
	{"USDC", "USD Coin", 6, "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", 8453},
	{"WETH", "Wrapped Ether", 18, "0x4200000000000000000000000000000000000006", 8453},

	// BNB Smart Chain. USDT and USDC have 18 decimals here.
	{"USDT", "Tether USD", 18, "0x55d398326f99059fF775485246999027B3197955", 56},
	{"USDC", "USD Coin", 18, "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", 56},
	{"WBNB", "Wrapped BNB", 18, "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c", 56},

	// Polygon
	{"USDT", "Tether USD", 6, "0xc2132D05D31c914a87C6611C10748AEb04B58e8F", 137},
	{"USDC", "USD Coin", 6, "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359", 137},
	{"WETH", "Wrapped Ether", 18, "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619", 137},
	{"WPOL", "Wrapped POL", 18, "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270", 137},

	// Avalanche C-Chain
	{"USDT", "Tether USD", 6, "0x9702230A8Ea53601f5cD2dc00fDBc13d4dF4A8c7", 43114},
	{"USDC", "USD Coin", 6, "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E", 43114},
	{"WAVAX", "Wrapped AVAX", 18, "0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7", 43114},
}

// tokenRegistry maps chainID -> symbol -> TokenInfo
var tokenRegistry = make(map[uint64]map[string]*TokenInfo)

func init() {
	for i := range wellKnownTokens {
		registerToken(&wellKnownTokens[i])
	}
}

func registerToken(token *TokenInfo) {
	if tokenRegistry[token.ChainID] == nil {
		tokenRegistry[token.ChainID] = make(map[string]*TokenInfo)
	}
	tokenRegistry[token.ChainID][token.Symbol] = token
}

// GetToken returns token info for a symbol on a specific chain.
// Returns nil if the token is not registered on that chain.
func GetToken(chainID uint64, symbol string) *TokenInfo {
	if tokens, ok := tokenRegistry[chainID]; ok {
		return tokens[symbol]
	}
	return nil
}

// ListTokens returns all registered tokens for a specific chain, sorted by symbol.
func ListTokens(chainID uint64) []*TokenInfo {
	tokens, ok := tokenRegistry[chainID]
	if !ok {
		return nil
	}
	result := make([]*TokenInfo, 0, len(tokens))
	for _, token := range tokens {
		result = append(result, token)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Symbol < result[j].Symbol })
	return result
}

// ListAllTokens returns all registered tokens across all chains.
func ListAllTokens() []*TokenInfo {
	result := make([]*TokenInfo, 0, len(wellKnownTokens))
	for i := range wellKnownTokens {
		result = append(result, &wellKnownTokens[i])
	}
	return result
}
