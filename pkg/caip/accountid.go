package caip

import (
	"strings"

	"github.com/Klingon-tech/caip/pkg/helpers"
)

// AccountID identifies an account on a chain as "<chainId>:<account>".
type AccountID struct {
	Chain   ChainID
	Account string
}

// String returns the canonical form.
func (a AccountID) String() string {
	return a.Chain.String() + ":" + a.Account
}

// ChainID returns the chain half of the identifier.
func (a AccountID) ChainID() ChainID {
	return a.Chain
}

// MarshalText implements encoding.TextMarshaler.
func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using FromAccountID.
func (a *AccountID) UnmarshalText(text []byte) error {
	parsed, err := FromAccountID(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ToAccountID builds an AccountID from a ChainID string and an account.
// eip155 accounts are lower-cased; other accounts are kept verbatim.
func ToAccountID(chainID, account string) (AccountID, error) {
	chain, err := FromChainID(chainID)
	if err != nil {
		return AccountID{}, invalid(ErrInvalidAccountID, err)
	}
	return NewAccountID(chain, account)
}

// ToAccountIDFromParts is ToAccountID with the chain given as its parts.
func ToAccountIDFromParts(ns ChainNamespace, ref ChainReference, account string) (AccountID, error) {
	chain, err := ToChainID(ns, ref)
	if err != nil {
		return AccountID{}, invalid(ErrInvalidAccountID, err)
	}
	return NewAccountID(chain, account)
}

// NewAccountID is ToAccountID for an already resolved chain.
func NewAccountID(chain ChainID, account string) (AccountID, error) {
	if err := checkChain(string(chain.Namespace), string(chain.Reference)); err != nil {
		return AccountID{}, invalid(ErrInvalidAccountID, invalid(ErrInvalidChainID, err))
	}
	acc, err := canonicalAccount(chain.Namespace, account)
	if err != nil {
		return AccountID{}, invalid(ErrInvalidAccountID, err)
	}
	return AccountID{Chain: chain, Account: acc}, nil
}

// FromAccountID parses s, which must have exactly three ':' separated
// segments.
func FromAccountID(s string) (AccountID, error) {
	a, err := parseAccount(s)
	if err != nil {
		return AccountID{}, invalid(ErrInvalidAccountID, err)
	}
	return a, nil
}

// IsAccountID reports whether s parses as a valid AccountID.
func IsAccountID(s string) bool {
	_, err := parseAccount(s)
	return err == nil
}

func parseAccount(s string) (AccountID, error) {
	if s == "" {
		return AccountID{}, missing("account id")
	}
	parts := strings.SplitN(s, ":", 4)
	if len(parts) != 3 {
		return AccountID{}, malformed("%q: expected <namespace>:<reference>:<account>", s)
	}
	ns, ref, account := parts[0], parts[1], parts[2]
	if !isNamespaceShape(ns) || !isChainReferenceShape(ref) {
		return AccountID{}, invalid(ErrInvalidChainID, malformed("%q: expected <namespace>:<reference>", ns+":"+ref))
	}
	if err := checkChain(ns, ref); err != nil {
		return AccountID{}, invalid(ErrInvalidChainID, err)
	}
	chain := ChainID{Namespace: ChainNamespace(ns), Reference: ChainReference(ref)}
	acc, err := canonicalAccount(chain.Namespace, account)
	if err != nil {
		return AccountID{}, err
	}
	return AccountID{Chain: chain, Account: acc}, nil
}

// canonicalAccount lower-cases eip155 accounts. Bitcoin and cosmos
// addresses carry case-sensitive checksums and are kept as given.
func canonicalAccount(ns ChainNamespace, account string) (string, error) {
	if account == "" {
		return "", missing("account")
	}
	if len(account) > maxAccountLen {
		return "", malformed("account longer than %d bytes", maxAccountLen)
	}
	if strings.IndexByte(account, ':') >= 0 {
		return "", malformed("account %q contains ':'", account)
	}
	if !helpers.IsPrintableToken(account) {
		return "", malformed("account %q has control, space or invalid UTF-8 bytes", account)
	}

	switch ns {
	case ChainNamespaceEthereum:
		return strings.ToLower(account), nil
	case ChainNamespaceBitcoin, ChainNamespaceCosmos:
		return account, nil
	default:
		return "", malformed("no account rule for namespace %q", ns)
	}
}
