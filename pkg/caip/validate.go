package caip

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Klingon-tech/caip/pkg/helpers"
)

// Shape bounds.
const (
	minNamespaceLen      = 3
	maxNamespaceLen      = 8
	maxChainReferenceLen = 32
	maxAssetReferenceLen = 128
	maxAccountLen        = 128
)

// IsChainNamespace reports whether ns is a supported chain namespace.
func IsChainNamespace(ns string) bool {
	_, ok := chainReferences[ChainNamespace(ns)]
	return ok
}

// IsChainReference reports whether ref is registered under ns.
func IsChainReference(ns ChainNamespace, ref string) bool {
	set, ok := registered[ns]
	if !ok {
		return false
	}
	_, ok = set[ChainReference(ref)]
	return ok
}

// IsAssetNamespace reports whether ns is a supported asset namespace.
func IsAssetNamespace(ns string) bool {
	for _, n := range assetNamespaces {
		if string(n) == ns {
			return true
		}
	}
	return false
}

// IsValidSlip44Reference reports whether v is a base-10 integer in [0, 2^32)
// written without leading zeros.
func IsValidSlip44Reference(v string) bool {
	if !helpers.IsDecimalDigits(v) {
		return false
	}
	if len(v) > 1 && v[0] == '0' {
		return false
	}
	_, err := strconv.ParseUint(v, 10, 32)
	return err == nil
}

// IsHexAddressReference reports whether v is "0x" followed by exactly 40 hex
// characters, in any case.
func IsHexAddressReference(v string) bool {
	return helpers.Has0xPrefix(v) && len(v) == 2+2*common.AddressLength && common.IsHexAddress(v)
}

func isNamespaceShape(s string) bool {
	return helpers.IsLowerAlnumDash(s, minNamespaceLen, maxNamespaceLen)
}

func isChainReferenceShape(s string) bool {
	return helpers.IsAlnumDash(s, 1, maxChainReferenceLen)
}
