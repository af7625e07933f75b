// Package memory provides an in-process Ledger backed by a balance map.
// It is intended for tests and embedded development setups.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/factoring/ledger"
	"github.com/xraph/factoring/types"
)

// Ledger is an in-memory balance table.
type Ledger struct {
	mu       sync.Mutex
	balances map[types.Principal]types.Money
}

// New creates an empty in-memory ledger.
func New() *Ledger {
	return &Ledger{balances: make(map[types.Principal]types.Money)}
}

// Mint credits a principal out of thin air. Test setup only.
func (l *Ledger) Mint(p types.Principal, amount types.Money) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[p] = l.balances[p].Add(amount)
}

// Balance reports a principal's current balance.
func (l *Ledger) Balance(p types.Principal) types.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[p]
}

// Transfer moves amount between principals, failing on insufficient funds.
func (l *Ledger) Transfer(ctx context.Context, t ledger.Transfer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.apply(t)
}

// TransferBatch applies all transfers or none. The balance table is only
// mutated after every transfer in the batch has been checked against the
// staged balances.
func (l *Ledger) TransferBatch(ctx context.Context, ts []ledger.Transfer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	staged := make(map[types.Principal]types.Money, len(ts)*2)
	for p, b := range l.balances {
		staged[p] = b
	}
	for _, t := range ts {
		if err := validate(t); err != nil {
			return err
		}
		if staged[t.From].LessThan(t.Amount) {
			return fmt.Errorf("ledger: insufficient balance for %s: have %s, need %s",
				t.From, staged[t.From], t.Amount)
		}
		staged[t.From] = staged[t.From].Sub(t.Amount)
		staged[t.To] = staged[t.To].Add(t.Amount)
	}
	l.balances = staged
	return nil
}

func (l *Ledger) apply(t ledger.Transfer) error {
	if err := validate(t); err != nil {
		return err
	}
	if l.balances[t.From].LessThan(t.Amount) {
		return fmt.Errorf("ledger: insufficient balance for %s: have %s, need %s",
			t.From, l.balances[t.From], t.Amount)
	}
	l.balances[t.From] = l.balances[t.From].Sub(t.Amount)
	l.balances[t.To] = l.balances[t.To].Add(t.Amount)
	return nil
}

func validate(t ledger.Transfer) error {
	if t.From.IsZero() || t.To.IsZero() {
		return fmt.Errorf("ledger: transfer requires both parties")
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("ledger: negative transfer amount %s", t.Amount)
	}
	return nil
}

var _ ledger.Ledger = (*Ledger)(nil)
