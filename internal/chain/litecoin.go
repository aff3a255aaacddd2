package chain

func init() {
	// Litecoin Mainnet
	Register("LTC", Mainnet, &Params{
		Symbol:      "LTC",
		Name:        "Litecoin",
		Family:      FamilyBitcoin,
		Decimals:    8,
		CoinType:    2,
		GenesisHash: mustHash("12a765e31ffd4059bada1e25190f6e98c99d9714d334efa41a195a7e7e04bfe2"),
		Bech32HRP:   "ltc",
	})
}
