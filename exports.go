package custody

import (
	"github.com/xraph/custody/contribution"
	"github.com/xraph/custody/types"
)

// Re-export common types for convenience so users don't have to import types package.

// Value is re-exported from types package.
type Value = types.Value

// Entity is re-exported from types package.
type Entity = types.Entity

// Contribution is re-exported from contribution package.
type Contribution = contribution.Contribution

// Re-export Value constructors
var (
	Ether     = types.Ether
	MustEther = types.MustEther
	USD       = types.USD
	MustUSD   = types.MustUSD
	Wei       = types.Wei
	Sum       = types.Sum
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
