// Package ledger defines the asset movement interface the engine settles
// against.
//
// The engine is deliberately ignorant of how value actually moves: a Ledger
// may wrap a token contract client, a core banking API, or an in-process
// balance table. What the engine requires is the batch guarantee — either
// every transfer in a batch lands or none do.
package ledger

import (
	"context"

	"github.com/xraph/factoring/types"
)

// Transfer is a single asset movement between two principals.
type Transfer struct {
	From   types.Principal `json:"from"`
	To     types.Principal `json:"to"`
	Amount types.Money     `json:"amount"`
}

// Ledger moves the configured asset between principals.
type Ledger interface {
	// Transfer moves amount from one principal to another.
	Transfer(ctx context.Context, t Transfer) error

	// TransferBatch applies all transfers atomically. If any transfer
	// cannot be applied, none are, and the error identifies the failure.
	TransferBatch(ctx context.Context, ts []Transfer) error
}
