package caip

import (
	"errors"
	"fmt"

	errorsmod "cosmossdk.io/errors"
)

// Codespace is the error codespace of this package.
const Codespace = "caip"

const baseErrorCode uint32 = 1

// Failure causes.
var (
	ErrMissingField              = errorsmod.Register(Codespace, baseErrorCode+1, "missing field")
	ErrUnsupportedChainNamespace = errorsmod.Register(Codespace, baseErrorCode+2, "unsupported chain namespace")
	ErrUnsupportedChainReference = errorsmod.Register(Codespace, baseErrorCode+3, "unsupported chain reference")
	ErrUnsupportedAssetNamespace = errorsmod.Register(Codespace, baseErrorCode+4, "unsupported asset namespace")
	ErrInvalidAssetReference     = errorsmod.Register(Codespace, baseErrorCode+5, "invalid asset reference")
	ErrMalformedIdentifier       = errorsmod.Register(Codespace, baseErrorCode+6, "malformed identifier")
)

// Identifier-level errors. An error returned by a codec function matches the
// identifier it was building, ErrInvalidChainID when the chain half was at
// fault, and one failure cause under errors.Is.
var (
	ErrInvalidChainID   = errorsmod.Register(Codespace, baseErrorCode+7, "invalid chain id")
	ErrInvalidAssetID   = errorsmod.Register(Codespace, baseErrorCode+8, "invalid asset id")
	ErrInvalidAccountID = errorsmod.Register(Codespace, baseErrorCode+9, "invalid account id")
)

// causes is ordered most specific first.
var causes = []*errorsmod.Error{
	ErrMissingField,
	ErrUnsupportedChainNamespace,
	ErrUnsupportedChainReference,
	ErrUnsupportedAssetNamespace,
	ErrInvalidAssetReference,
	ErrMalformedIdentifier,
	ErrInvalidChainID,
	ErrInvalidAssetID,
	ErrInvalidAccountID,
}

// Kind returns the most specific registered error matched by err, or nil if
// err did not come from this package.
func Kind(err error) *errorsmod.Error {
	if err == nil {
		return nil
	}
	for _, c := range causes {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}

func invalid(id *errorsmod.Error, cause error) error {
	return fmt.Errorf("%w: %w", id, cause)
}

func missing(field string) error {
	return errorsmod.Wrap(ErrMissingField, field)
}

func malformed(format string, args ...interface{}) error {
	return errorsmod.Wrapf(ErrMalformedIdentifier, format, args...)
}
