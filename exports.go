package paygate

import "github.com/xraph/paygate/types"

// Re-export common types for convenience so users don't have to import types package.

// Address is re-exported from types package.
type Address = types.Address

// Amount is re-exported from types package.
type Amount = types.Amount

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Address and Amount constructors
var (
	ParseAddress     = types.ParseAddress
	MustParseAddress = types.MustParseAddress
	NewAmount        = types.NewAmount
	ParseAmount      = types.ParseAmount
	MustParseAmount  = types.MustParseAmount
	ZeroAmount       = types.ZeroAmount
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
