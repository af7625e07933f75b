package factoring

import "github.com/xraph/factoring/types"

// Re-export common types for convenience so users don't have to import types package.

// Money is re-exported from types package.
type Money = types.Money

// Principal is re-exported from types package.
type Principal = types.Principal

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Money constructors
var (
	Units      = types.Units
	Minor      = types.Minor
	ParseMoney = types.ParseMoney
	Sum        = types.Sum
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
