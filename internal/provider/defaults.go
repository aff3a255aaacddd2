package provider

import "context"

const (
	ethNative  = "eip155:1/slip44:60"
	btcNative  = "bip122:000000000019d6689c085ae165831e93/slip44:0"
	ltcNative  = "bip122:12a765e31ffd4059bada1e25190f6e98/slip44:2"
	dogeNative = "bip122:1a91e3dace36e2be3bf030a65679fe82/slip44:3"
	atomNative = "cosmos:cosmoshub-4/slip44:118"
	osmoNative = "cosmos:osmosis-1/slip44:118"
	foxERC20   = "eip155:1/erc20:0xc770eefad204b5180df6a14ee197d99d808ee52d"
	usdcERC20  = "eip155:1/erc20:0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
)

// defaultTables are the built-in mappings used to seed an empty database.
var defaultTables = map[Name]map[string]string{
	CoinGecko: {
		"ethereum":             ethNative,
		"bitcoin":              btcNative,
		"litecoin":             ltcNative,
		"dogecoin":             dogeNative,
		"cosmos":               atomNative,
		"osmosis":              osmoNative,
		"shapeshift-fox-token": foxERC20,
		"usd-coin":             usdcERC20,
		"binancecoin":          "eip155:56/slip44:60",
		"avalanche-2":          "eip155:43114/slip44:60",
	},
	CoinCap: {
		"ethereum":  ethNative,
		"bitcoin":   btcNative,
		"litecoin":  ltcNative,
		"dogecoin":  dogeNative,
		"cosmos":    atomNative,
		"osmosis":   osmoNative,
		"fox-token": foxERC20,
		"usd-coin":  usdcERC20,
	},
	Yearn: {
		"0xa354f35829ae975e850e23e9615b11da1b3dc4de": "eip155:1/erc20:0xa354f35829ae975e850e23e9615b11da1b3dc4de",
		"0xdc59ac4fefa32293a95889dc396682858d52e5db": "eip155:1/erc20:0xdc59ac4fefa32293a95889dc396682858d52e5db",
	},
	Osmosis: {
		"uosmo":                                                                osmoNative,
		"uion":                                                                 "cosmos:osmosis-1/native:uion",
		"ibc/27394FB092D2ECCD56123C74F36E4C1F926001CEADA9CA97EA622B25F41E5EB2": "cosmos:osmosis-1/ibc:27394FB092D2ECCD56123C74F36E4C1F926001CEADA9CA97EA622B25F41E5EB2",
	},
	Idle: {
		"0x3fe7940616e5bc47b0775a0dccf6237893353bb4": "eip155:1/erc20:0x3fe7940616e5bc47b0775a0dccf6237893353bb4",
		"0x5274891bec421b39d23760c04a6755ecb444797c": "eip155:1/erc20:0x5274891bec421b39d23760c04a6755ecb444797c",
	},
	Thorchain: {
		"BTC.BTC":                                             btcNative,
		"ETH.ETH":                                             ethNative,
		"LTC.LTC":                                             ltcNative,
		"DOGE.DOGE":                                           dogeNative,
		"GAIA.ATOM":                                           atomNative,
		"ETH.FOX-0XC770EEFAD204B5180DF6A14EE197D99D808EE52D":  foxERC20,
		"ETH.USDC-0XA0B86991C6218B36C1D19D4A2E9EB0CE3606EB48": usdcERC20,
	},
}

// DefaultTable returns a copy of the built-in table for a provider.
func DefaultTable(name Name) map[string]string {
	src := defaultTables[name]
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// StaticFetch returns a FetchFunc serving a fixed table.
func StaticFetch(table map[string]string) FetchFunc {
	return func(ctx context.Context) (map[string]string, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := make(map[string]string, len(table))
		for k, v := range table {
			out[k] = v
		}
		return out, nil
	}
}
