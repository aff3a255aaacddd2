package chain

import "github.com/btcsuite/btcd/chaincfg"

func init() {
	// Bitcoin Mainnet
	Register("BTC", Mainnet, &Params{
		Symbol:      "BTC",
		Name:        "Bitcoin",
		Family:      FamilyBitcoin,
		Decimals:    8,
		CoinType:    0,
		GenesisHash: chaincfg.MainNetParams.GenesisHash,
		Bech32HRP:   chaincfg.MainNetParams.Bech32HRPSegwit,
	})

	// Bitcoin Testnet3
	Register("BTC", Testnet, &Params{
		Symbol:      "BTC",
		Name:        "Bitcoin Testnet",
		Family:      FamilyBitcoin,
		Decimals:    8,
		CoinType:    0,
		GenesisHash: chaincfg.TestNet3Params.GenesisHash,
		Bech32HRP:   chaincfg.TestNet3Params.Bech32HRPSegwit,
	})
}
