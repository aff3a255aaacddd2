package rpc

import (
	"encoding/json"
	"errors"

	"github.com/Klingon-tech/caip/internal/catalog"
	"github.com/Klingon-tech/caip/internal/provider"
	"github.com/Klingon-tech/caip/pkg/caip"
)

// ErrorData is attached to InvalidParams errors caused by identifier
// validation.
type ErrorData struct {
	Codespace string `json:"codespace"`
	Code      uint32 `json:"code"`
	Kind      string `json:"kind"`
}

// toRPCError maps a handler error to a JSON-RPC error.
func (s *Server) toRPCError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	if kind := caip.Kind(err); kind != nil {
		s.metrics.codecFailure(kind.Error())
		return &Error{
			Code:    InvalidParams,
			Message: err.Error(),
			Data: ErrorData{
				Codespace: kind.Codespace(),
				Code:      kind.ABCICode(),
				Kind:      kind.Error(),
			},
		}
	}

	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, provider.ErrUnknownProviderID),
		errors.Is(err, provider.ErrNoProviderID),
		errors.Is(err, provider.ErrUnknownProvider),
		errors.Is(err, errChainNotFound):
		return &Error{Code: NotFound, Message: err.Error()}
	}

	return &Error{Code: InternalError, Message: err.Error()}
}

// parseParams decodes params into v. Missing or undecodable params are
// InvalidParams.
func parseParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return &Error{Code: InvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &Error{Code: InvalidParams, Message: "invalid params: " + err.Error()}
	}
	return nil
}
