package chain

func init() {
	// Dogecoin Mainnet. No SegWit, so no bech32 prefix.
	Register("DOGE", Mainnet, &Params{
		Symbol:      "DOGE",
		Name:        "Dogecoin",
		Family:      FamilyBitcoin,
		Decimals:    8,
		CoinType:    3,
		GenesisHash: mustHash("1a91e3dace36e2be3bf030a65679fe821aa1d6ef92e7c9902eb318182c355691"),
	})
}
