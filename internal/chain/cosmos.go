package chain

func init() {
	// Cosmos Hub
	Register("ATOM", Mainnet, &Params{
		Symbol:          "ATOM",
		Name:            "Cosmos Hub",
		Family:          FamilyCosmos,
		Decimals:        6,
		CoinType:        118,
		Bech32HRP:       "cosmos",
		CosmosChainName: "cosmoshub-4",
		NativeDenom:     "uatom",
	})

	Register("ATOM", Testnet, &Params{
		Symbol:          "ATOM",
		Name:            "Cosmos Hub Vega Testnet",
		Family:          FamilyCosmos,
		Decimals:        6,
		CoinType:        118,
		Bech32HRP:       "cosmos",
		CosmosChainName: "vega-testnet",
		NativeDenom:     "uatom",
	})

	// Osmosis
	Register("OSMO", Mainnet, &Params{
		Symbol:          "OSMO",
		Name:            "Osmosis",
		Family:          FamilyCosmos,
		Decimals:        6,
		CoinType:        118,
		Bech32HRP:       "osmo",
		CosmosChainName: "osmosis-1",
		NativeDenom:     "uosmo",
	})

	Register("OSMO", Testnet, &Params{
		Symbol:          "OSMO",
		Name:            "Osmosis Testnet",
		Family:          FamilyCosmos,
		Decimals:        6,
		CoinType:        118,
		Bech32HRP:       "osmo",
		CosmosChainName: "osmo-testnet-1",
		NativeDenom:     "uosmo",
	})
}
