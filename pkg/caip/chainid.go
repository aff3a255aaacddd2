package caip

import (
	"strings"

	errorsmod "cosmossdk.io/errors"
)

// ChainID identifies a blockchain network as "<namespace>:<reference>".
type ChainID struct {
	Namespace ChainNamespace
	Reference ChainReference
}

// String returns the canonical form.
func (c ChainID) String() string {
	return string(c.Namespace) + ":" + string(c.Reference)
}

// MarshalText implements encoding.TextMarshaler.
func (c ChainID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using FromChainID.
func (c *ChainID) UnmarshalText(text []byte) error {
	parsed, err := FromChainID(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ToChainID builds a ChainID from its parts. The pair must be registered.
func ToChainID(ns ChainNamespace, ref ChainReference) (ChainID, error) {
	if err := checkChain(string(ns), string(ref)); err != nil {
		return ChainID{}, invalid(ErrInvalidChainID, err)
	}
	return ChainID{Namespace: ns, Reference: ref}, nil
}

// FromChainID parses s, splitting on the first ':'.
func FromChainID(s string) (ChainID, error) {
	c, err := parseChain(s)
	if err != nil {
		return ChainID{}, invalid(ErrInvalidChainID, err)
	}
	return c, nil
}

// IsChainID reports whether s parses as a registered ChainID.
func IsChainID(s string) bool {
	_, err := parseChain(s)
	return err == nil
}

func parseChain(s string) (ChainID, error) {
	if s == "" {
		return ChainID{}, missing("chain id")
	}
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return ChainID{}, malformed("%q: expected <namespace>:<reference>", s)
	}
	ns, ref := s[:i], s[i+1:]
	if !isNamespaceShape(ns) || !isChainReferenceShape(ref) {
		return ChainID{}, malformed("%q: expected <namespace>:<reference>", s)
	}
	if err := checkChain(ns, ref); err != nil {
		return ChainID{}, err
	}
	return ChainID{Namespace: ChainNamespace(ns), Reference: ChainReference(ref)}, nil
}

// checkChain returns the failure cause for an unregistered pair, or nil.
func checkChain(ns, ref string) error {
	switch {
	case ns == "":
		return missing("chain namespace")
	case ref == "":
		return missing("chain reference")
	case !IsChainNamespace(ns):
		return errorsmod.Wrapf(ErrUnsupportedChainNamespace, "%q", ns)
	case !IsChainReference(ChainNamespace(ns), ref):
		return errorsmod.Wrapf(ErrUnsupportedChainReference, "%q in namespace %s", ref, ns)
	}
	return nil
}
