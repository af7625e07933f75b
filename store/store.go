// Package store defines the persistence interface for the factoring engine.
//
// Four backends implement it: memory (tests, embedded dev), sqlite,
// postgres, and mongo. Drivers are responsible for the atomicity of the
// two commit methods; the engine stages every change in memory and calls
// a single commit per operation.
package store

import (
	"context"
	"strconv"
	"time"

	"github.com/xraph/factoring/config"
	"github.com/xraph/factoring/invoice"
	"github.com/xraph/factoring/reputation"
	"github.com/xraph/factoring/types"
)

// Stats are the engine-wide counters.
type Stats struct {
	TotalInvoices uint64      `json:"total_invoices"`
	VolumeFunded  types.Money `json:"volume_funded"`
	VolumeSettled types.Money `json:"volume_settled"`
}

// KeyKind identifies a class of stored records for lifetime management.
type KeyKind string

const (
	KindConfig     KeyKind = "config"
	KindInvoice    KeyKind = "invoice"
	KindReputation KeyKind = "reputation"
	KindCounters   KeyKind = "counters"
)

// Key addresses a stored record for ExtendLifetime. Ref is the invoice ID
// or originator principal for the per-record kinds and empty for the
// singleton kinds.
type Key struct {
	Kind KeyKind
	Ref  string
}

// ConfigKey addresses the singleton configuration record.
func ConfigKey() Key { return Key{Kind: KindConfig} }

// InvoiceKey addresses an invoice record.
func InvoiceKey(id uint64) Key {
	return Key{Kind: KindInvoice, Ref: invoiceRef(id)}
}

// ReputationKey addresses an originator's reputation record.
func ReputationKey(originator types.Principal) Key {
	return Key{Kind: KindReputation, Ref: string(originator)}
}

// CountersKey addresses the singleton counters record.
func CountersKey() Key { return Key{Kind: KindCounters} }

func invoiceRef(id uint64) string { return strconv.FormatUint(id, 10) }

// Store is the unified storage interface for all factoring entities.
type Store interface {
	// Config methods. The configuration is a singleton record.
	SetConfig(ctx context.Context, cfg *config.Config) error
	GetConfig(ctx context.Context) (*config.Config, error)
	HasConfig(ctx context.Context) (bool, error)

	// Invoice methods
	CreateInvoice(ctx context.Context, inv *invoice.Invoice) error
	GetInvoice(ctx context.Context, invID uint64) (*invoice.Invoice, error)
	UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error
	ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error)

	// CommitFunding atomically persists a funded invoice and adds its
	// advance amount to the funded-volume counter.
	CommitFunding(ctx context.Context, inv *invoice.Invoice, fundedVolume types.Money) error

	// CommitSettlement atomically persists a settled or defaulted invoice,
	// its originator's updated reputation, and the settled-volume counter
	// increment.
	CommitSettlement(ctx context.Context, inv *invoice.Invoice, rep *reputation.Reputation, settledVolume types.Money) error

	// Reputation methods
	GetReputation(ctx context.Context, originator types.Principal) (*reputation.Reputation, error)
	SetReputation(ctx context.Context, rep *reputation.Reputation) error

	// Counter methods. AllocateInvoiceID returns the next dense ID and
	// advances the counter in one step.
	AllocateInvoiceID(ctx context.Context) (uint64, error)
	IncrementTotalInvoices(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)

	// ExtendLifetime asks the backend to keep the addressed record alive
	// for at least minTTL, renewing up to maxTTL. Backends with no
	// expiry semantics treat it as a no-op.
	ExtendLifetime(ctx context.Context, key Key, minTTL, maxTTL time.Duration) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
