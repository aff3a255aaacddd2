package chain

func init() {
	// ==========================================================================
	// Ethereum
	// ==========================================================================

	// Ethereum Mainnet (chainID 1)
	Register("ETH", Mainnet, &Params{
		Symbol:      "ETH",
		Name:        "Ethereum",
		Family:      FamilyEVM,
		Decimals:    18,
		NativeToken: "ETH",
		CoinType:    60,
		EVMChainID:  1,
	})

	// Ethereum Ropsten (chainID 3, deprecated)
	Register("ETH", Ropsten, &Params{
		Symbol:      "ETH",
		Name:        "Ethereum Ropsten",
		Family:      FamilyEVM,
		Decimals:    18,
		NativeToken: "ETH",
		CoinType:    60,
		EVMChainID:  3,
	})

	// Ethereum Rinkeby (chainID 4, deprecated)
	Register("ETH", Rinkeby, &Params{
		Symbol:      "ETH",
		Name:        "Ethereum Rinkeby",
		Family:      FamilyEVM,
		Decimals:    18,
		NativeToken: "ETH",
		CoinType:    60,
		EVMChainID:  4,
	})

	// Ethereum Sepolia Testnet (chainID 11155111)
	Register("ETH", Testnet, &Params{
		Symbol:      "ETH",
		Name:        "Ethereum Sepolia",
		Family:      FamilyEVM,
		Decimals:    18,
		NativeToken: "ETH",
		CoinType:    60,
		EVMChainID:  11155111,
	})

	// ==========================================================================
	// EVM mainnets. Native assets share the Ethereum coin type.
	// ==========================================================================

	Register("BSC", Mainnet, &Params{
		Symbol:      "BSC",
		Name:        "BNB Smart Chain",
		Family:      FamilyEVM,
		Decimals:    18,
		NativeToken: "BNB",
		CoinType:    60,
		EVMChainID:  56,
	})

	Register("POLYGON", Mainnet, &Params{
		Symbol:      "POLYGON",
		Name:        "Polygon",
		Family:      FamilyEVM,
		Decimals:    18,
		NativeToken: "POL",
		CoinType:    60,
		EVMChainID:  137,
	})

	Register("ARBITRUM", Mainnet, &Params{
		Symbol:      "ARBITRUM",
		Name:        "Arbitrum One",
		Family:      FamilyEVM,
		Decimals:    18,
		NativeToken: "ETH",
		CoinType:    60,
		EVMChainID:  42161,
	})

	Register("OPTIMISM", Mainnet, &Params{
		Symbol:      "OPTIMISM",
		Name:        "Optimism",
		Family:      FamilyEVM,
		Decimals:    18,
		NativeToken: "ETH",
		CoinType:    60,
		EVMChainID:  10,
	})

	Register("BASE", Mainnet, &Params{
		Symbol:      "BASE",
		Name:        "Base",
		Family:      FamilyEVM,
		Decimals:    18,
		NativeToken: "ETH",
		CoinType:    60,
		EVMChainID:  8453,
	})

	// Avalanche C-Chain
	Register("AVAX", Mainnet, &Params{
		Symbol:      "AVAX",
		Name:        "Avalanche C-Chain",
		Family:      FamilyEVM,
		Decimals:    18,
		NativeToken: "AVAX",
		CoinType:    60,
		EVMChainID:  43114,
	})
}
