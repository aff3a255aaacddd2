package caip

import (
	"strings"

	errorsmod "cosmossdk.io/errors"

	"github.com/Klingon-tech/caip/pkg/helpers"
)

// AssetID identifies an asset on a chain as
// "<chainId>/<assetNamespace>:<assetReference>".
type AssetID struct {
	Chain     ChainID
	Namespace AssetNamespace
	Reference AssetReference
}

// String returns the canonical form.
func (a AssetID) String() string {
	return a.Chain.String() + "/" + string(a.Namespace) + ":" + string(a.Reference)
}

// ChainID returns the chain half of the identifier.
func (a AssetID) ChainID() ChainID {
	return a.Chain
}

// MarshalText implements encoding.TextMarshaler.
func (a AssetID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using FromAssetID.
func (a *AssetID) UnmarshalText(text []byte) error {
	parsed, err := FromAssetID(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ToAssetID builds an AssetID from raw parts. erc20 and erc721 references
// are lower-cased; every other reference is kept as given.
func ToAssetID(chainNs ChainNamespace, chainRef ChainReference, assetNs AssetNamespace, assetRef AssetReference) (AssetID, error) {
	chain, err := ToChainID(chainNs, chainRef)
	if err != nil {
		return AssetID{}, invalid(ErrInvalidAssetID, err)
	}
	return NewAssetID(chain, assetNs, assetRef)
}

// NewAssetID is ToAssetID for an already resolved chain.
func NewAssetID(chain ChainID, assetNs AssetNamespace, assetRef AssetReference) (AssetID, error) {
	if err := checkChain(string(chain.Namespace), string(chain.Reference)); err != nil {
		return AssetID{}, invalid(ErrInvalidAssetID, invalid(ErrInvalidChainID, err))
	}
	ref, err := canonicalAssetReference(assetNs, string(assetRef))
	if err != nil {
		return AssetID{}, invalid(ErrInvalidAssetID, err)
	}
	return AssetID{Chain: chain, Namespace: assetNs, Reference: ref}, nil
}

// FromAssetID parses s. Parsing canonicalizes the same way ToAssetID does.
func FromAssetID(s string) (AssetID, error) {
	a, err := parseAsset(s)
	if err != nil {
		return AssetID{}, invalid(ErrInvalidAssetID, err)
	}
	return a, nil
}

// IsAssetID reports whether s parses as a valid AssetID.
func IsAssetID(s string) bool {
	_, err := parseAsset(s)
	return err == nil
}

func parseAsset(s string) (AssetID, error) {
	if s == "" {
		return AssetID{}, missing("asset id")
	}
	slash := strings.IndexByte(s, '/')
	if slash < 0 {
		return AssetID{}, malformed("%q: expected <chainId>/<assetNamespace>:<assetReference>", s)
	}
	chainPart, assetPart := s[:slash], s[slash+1:]

	colon := strings.IndexByte(assetPart, ':')
	if colon < 0 {
		return AssetID{}, malformed("%q: expected <assetNamespace>:<assetReference>", assetPart)
	}
	ns, ref := assetPart[:colon], assetPart[colon+1:]
	if !isNamespaceShape(ns) || ref == "" {
		return AssetID{}, malformed("%q: expected <assetNamespace>:<assetReference>", assetPart)
	}

	chain, err := parseChain(chainPart)
	if err != nil {
		return AssetID{}, invalid(ErrInvalidChainID, err)
	}
	canon, err := canonicalAssetReference(AssetNamespace(ns), ref)
	if err != nil {
		return AssetID{}, err
	}
	return AssetID{Chain: chain, Namespace: AssetNamespace(ns), Reference: canon}, nil
}

// canonicalAssetReference validates ref against the grammar of ns and
// returns its canonical form.
func canonicalAssetReference(ns AssetNamespace, ref string) (AssetReference, error) {
	if ns == "" {
		return "", missing("asset namespace")
	}

	switch ns {
	case AssetNamespaceSlip44:
		if ref == "" {
			return "", missing("asset reference")
		}
		if !IsValidSlip44Reference(ref) {
			return "", errorsmod.Wrapf(ErrInvalidAssetReference, "%q is not a slip44 coin type", ref)
		}
		return AssetReference(ref), nil

	case AssetNamespaceERC20, AssetNamespaceERC721:
		if ref == "" {
			return "", missing("asset reference")
		}
		if !IsHexAddressReference(ref) {
			return "", errorsmod.Wrapf(ErrInvalidAssetReference, "%q is not a 0x-prefixed 20 byte hex address", ref)
		}
		return AssetReference(strings.ToLower(ref)), nil

	case AssetNamespaceIBC, AssetNamespaceNative, AssetNamespaceCW20, AssetNamespaceCW721:
		if ref == "" {
			return "", missing("asset reference")
		}
		if len(ref) > maxAssetReferenceLen {
			return "", errorsmod.Wrapf(ErrInvalidAssetReference, "%s reference longer than %d bytes", ns, maxAssetReferenceLen)
		}
		if !helpers.IsPrintableToken(ref) {
			return "", errorsmod.Wrapf(ErrInvalidAssetReference, "%s reference %q has control, space or invalid UTF-8 bytes", ns, ref)
		}
		return AssetReference(ref), nil

	default:
		return "", errorsmod.Wrapf(ErrUnsupportedAssetNamespace, "%q", ns)
	}
}
