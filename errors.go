package apcaledger

import "errors"

var (
	// ErrUnknownSymbol is returned when the registry has no name for a symbol.
	ErrUnknownSymbol = errors.New("symbol not present in registry")
	// ErrMissingField is returned when an activity lacks a field required to render it.
	ErrMissingField = errors.New("missing required field")
	// ErrUnclassifiedFee is returned for fee descriptions that match no known category.
	ErrUnclassifiedFee = errors.New("unclassified fee")
	// ErrUnparsableDescription is returned when a value cannot be extracted from a description.
	ErrUnparsableDescription = errors.New("unparsable description")
	// ErrUnmatchedFee is returned when a trade fee has no trade in its day.
	ErrUnmatchedFee = errors.New("no trade matches fee")
	// ErrOverfill is returned when merged partial fills exceed the order's cumulative quantity.
	ErrOverfill = errors.New("merged fills exceed cumulative quantity")
)
