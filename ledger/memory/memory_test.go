package memory

import (
	"context"
	"testing"

	"github.com/xraph/factoring/ledger"
	"github.com/xraph/factoring/types"
)

func TestTransfer(t *testing.T) {
	l := New()
	l.Mint("a", types.Units(100))

	ctx := context.Background()

	if err := l.Transfer(ctx, ledger.Transfer{From: "a", To: "b", Amount: types.Units(40)}); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if got := l.Balance("a"); got != types.Units(60) {
		t.Errorf("a: got %v, want %v", got, types.Units(60))
	}
	if got := l.Balance("b"); got != types.Units(40) {
		t.Errorf("b: got %v, want %v", got, types.Units(40))
	}
}

func TestTransferInsufficient(t *testing.T) {
	l := New()
	l.Mint("a", types.Units(10))

	err := l.Transfer(context.Background(), ledger.Transfer{From: "a", To: "b", Amount: types.Units(11)})
	if err == nil {
		t.Fatal("expected error for insufficient balance")
	}
	if got := l.Balance("a"); got != types.Units(10) {
		t.Errorf("a changed after failed transfer: %v", got)
	}
}

func TestTransferValidation(t *testing.T) {
	l := New()
	l.Mint("a", types.Units(100))
	ctx := context.Background()

	tests := []struct {
		name string
		tr   ledger.Transfer
	}{
		{"no sender", ledger.Transfer{To: "b", Amount: types.Units(1)}},
		{"no recipient", ledger.Transfer{From: "a", Amount: types.Units(1)}},
		{"negative amount", ledger.Transfer{From: "a", To: "b", Amount: types.Units(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := l.Transfer(ctx, tt.tr); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTransferBatch(t *testing.T) {
	l := New()
	l.Mint("payer", types.Units(1000))

	err := l.TransferBatch(context.Background(), []ledger.Transfer{
		{From: "payer", To: "lender", Amount: types.Units(918)},
		{From: "payer", To: "sme", Amount: types.Units(77)},
		{From: "payer", To: "treasury", Amount: types.Units(5)},
	})
	if err != nil {
		t.Fatalf("TransferBatch: %v", err)
	}

	if got := l.Balance("payer"); !got.IsZero() {
		t.Errorf("payer: got %v, want 0", got)
	}
	if got := l.Balance("lender"); got != types.Units(918) {
		t.Errorf("lender: got %v, want %v", got, types.Units(918))
	}
	if got := l.Balance("treasury"); got != types.Units(5) {
		t.Errorf("treasury: got %v, want %v", got, types.Units(5))
	}
}

func TestTransferBatchAtomic(t *testing.T) {
	l := New()
	l.Mint("payer", types.Units(100))

	// The first transfer alone would succeed; the second exceeds what is
	// left. Neither may be applied.
	err := l.TransferBatch(context.Background(), []ledger.Transfer{
		{From: "payer", To: "x", Amount: types.Units(80)},
		{From: "payer", To: "y", Amount: types.Units(30)},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	if got := l.Balance("payer"); got != types.Units(100) {
		t.Errorf("payer: got %v, want %v", got, types.Units(100))
	}
	if got := l.Balance("x"); !got.IsZero() {
		t.Errorf("x: got %v, want 0", got)
	}
}

func TestTransferBatchIntermediateFunds(t *testing.T) {
	l := New()
	l.Mint("a", types.Units(50))

	// b has nothing up front but receives within the batch; staged
	// balances make the forwarding leg valid.
	err := l.TransferBatch(context.Background(), []ledger.Transfer{
		{From: "a", To: "b", Amount: types.Units(50)},
		{From: "b", To: "c", Amount: types.Units(20)},
	})
	if err != nil {
		t.Fatalf("TransferBatch: %v", err)
	}
	if got := l.Balance("b"); got != types.Units(30) {
		t.Errorf("b: got %v, want %v", got, types.Units(30))
	}
	if got := l.Balance("c"); got != types.Units(20) {
		t.Errorf("c: got %v, want %v", got, types.Units(20))
	}
}
