package factoring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/factoring/auth"
	"github.com/xraph/factoring/config"
	"github.com/xraph/factoring/id"
	"github.com/xraph/factoring/invoice"
	"github.com/xraph/factoring/ledger"
	"github.com/xraph/factoring/plugin"
	"github.com/xraph/factoring/reputation"
	"github.com/xraph/factoring/settlement"
	"github.com/xraph/factoring/store"
	"github.com/xraph/factoring/types"
)

// Record lifetime targets for backends with expiry semantics. The keeper
// worker renews the singleton records; per-record keys are renewed on
// access.
const (
	recordMinTTL = 30 * 24 * time.Hour
	recordMaxTTL = 90 * 24 * time.Hour
)

// Engine is the invoice factoring engine.
type Engine struct {
	store     store.Store
	ledger    ledger.Ledger
	authn     auth.Authenticator
	authority settlement.Authority
	plugins   *plugin.Registry
	logger    *slog.Logger
	now       func() time.Time

	// Background keeper
	stopChan          chan struct{}
	wg                sync.WaitGroup
	keepAliveInterval time.Duration
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:             s,
		authn:             auth.NewContextAuthenticator(),
		plugins:           plugin.NewRegistry(),
		logger:            slog.Default(),
		now:               time.Now,
		stopChan:          make(chan struct{}),
		keepAliveInterval: time.Hour,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithLedger sets the asset ledger used for fund movements. Without one,
// funding and settlement fail.
func WithLedger(l ledger.Ledger) Option {
	return func(e *Engine) {
		e.ledger = l
	}
}

// WithAuthenticator replaces the context-based caller authenticator.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(e *Engine) {
		e.authn = a
	}
}

// WithSettlementAuthority sets who may attest settlements. The default
// authority accepts only the configured admin.
func WithSettlementAuthority(a settlement.Authority) Option {
	return func(e *Engine) {
		e.authority = a
	}
}

// WithClock overrides the time source. Tests use this to control due-date
// and settlement-day arithmetic.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithKeepAliveInterval sets how often the keeper worker renews record
// lifetimes on expiring backends.
func WithKeepAliveInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.keepAliveInterval = d
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// Start migrates the store and begins background workers.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	e.plugins.EmitInit(ctx, e)

	e.wg.Add(1)
	go e.keepAliveWorker(ctx)

	e.logger.Info("factoring engine started",
		"keep_alive_interval", e.keepAliveInterval,
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	close(e.stopChan)
	e.wg.Wait()

	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// ──────────────────────────────────────────────────
// Configuration
// ──────────────────────────────────────────────────

// Initialize performs the one-time configuration commit. It fails if a
// configuration already exists; no caller attestation is required because
// the first successful commit is the act that establishes the admin.
func (e *Engine) Initialize(ctx context.Context, admin, asset, treasury types.Principal, defaultAdvanceBps, protocolFeeBps uint32) (*config.Config, error) {
	exists, err := e.store.HasConfig(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyInitialized
	}

	if !config.ValidAdvanceBps(defaultAdvanceBps) {
		return nil, ErrInvalidAdvancePercentage
	}
	if !config.ValidFeeBps(protocolFeeBps) {
		return nil, ErrInvalidFeePercentage
	}

	cfg := config.New(admin, asset, treasury, defaultAdvanceBps, protocolFeeBps)
	if err := e.store.SetConfig(ctx, cfg); err != nil {
		return nil, err
	}
	e.extendLifetime(ctx, store.ConfigKey())

	e.logger.Info("configuration initialized",
		"admin", admin,
		"treasury", treasury,
		"default_advance_bps", defaultAdvanceBps,
		"protocol_fee_bps", protocolFeeBps,
	)

	e.plugins.EmitConfigInitialized(ctx, cfg)
	return cfg, nil
}

// UpdateConfig applies an admin-only partial configuration update.
func (e *Engine) UpdateConfig(ctx context.Context, caller types.Principal, update config.Update) (*config.Config, error) {
	cfg, err := e.requireConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.requireAdmin(ctx, caller, cfg); err != nil {
		return nil, err
	}
	if update.IsZero() {
		return cfg, nil
	}

	old := *cfg
	if update.Treasury != nil {
		cfg.Treasury = *update.Treasury
	}
	if update.AdvanceBps != nil {
		if !config.ValidAdvanceBps(*update.AdvanceBps) {
			return nil, ErrInvalidAdvancePercentage
		}
		cfg.DefaultAdvanceBps = *update.AdvanceBps
	}
	if update.ProtocolFeeBps != nil {
		if !config.ValidFeeBps(*update.ProtocolFeeBps) {
			return nil, ErrInvalidFeePercentage
		}
		cfg.ProtocolFeeBps = *update.ProtocolFeeBps
	}
	cfg.TouchAt(e.now())

	if err := e.store.SetConfig(ctx, cfg); err != nil {
		return nil, err
	}
	e.extendLifetime(ctx, store.ConfigKey())

	e.logger.Info("configuration updated",
		"treasury", cfg.Treasury,
		"default_advance_bps", cfg.DefaultAdvanceBps,
		"protocol_fee_bps", cfg.ProtocolFeeBps,
	)

	e.plugins.EmitConfigUpdated(ctx, &old, cfg)
	return cfg, nil
}

// GetConfig returns the current configuration.
func (e *Engine) GetConfig(ctx context.Context) (*config.Config, error) {
	return e.requireConfig(ctx)
}

// ──────────────────────────────────────────────────
// Invoice lifecycle
// ──────────────────────────────────────────────────

// CreateInvoice registers a new invoice for the originator in params. The
// advance amount locks in at creation from the configured default advance
// rate.
func (e *Engine) CreateInvoice(ctx context.Context, params invoice.CreateParams) (*invoice.Invoice, error) {
	cfg, err := e.requireConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.authn.Require(ctx, params.Originator); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	now := e.now()
	if !cfg.ValidAmount(params.Amount) {
		return nil, ErrInvalidAmount
	}
	if params.PayerRef == "" {
		return nil, ErrInvalidPayer
	}
	if !config.ValidFeeBps(params.FeeBps) {
		return nil, ErrInvalidFeePercentage
	}

	invID, err := e.store.AllocateInvoiceID(ctx)
	if err != nil {
		return nil, err
	}

	inv := &invoice.Invoice{
		Entity:        types.NewEntityAt(now),
		ID:            invID,
		Originator:    params.Originator,
		PayerRef:      params.PayerRef,
		Amount:        params.Amount,
		AdvanceAmount: params.Amount.MulBps(cfg.DefaultAdvanceBps),
		FeeBps:        params.FeeBps,
		Status:        invoice.StatusCreated,
		DueDate:       params.DueDate,
		Country:       params.Country,
		Industry:      params.Industry,
	}

	if err := e.store.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	if err := e.store.IncrementTotalInvoices(ctx); err != nil {
		return nil, err
	}

	rep, err := e.store.GetReputation(ctx, params.Originator)
	if err != nil {
		if !IsNotFound(err) {
			return nil, err
		}
		rep = reputation.New(params.Originator)
	}
	rep.RecordCreated(now)
	if err := e.store.SetReputation(ctx, rep); err != nil {
		return nil, err
	}

	e.extendLifetime(ctx, store.InvoiceKey(inv.ID))
	e.extendLifetime(ctx, store.ReputationKey(params.Originator))

	e.logger.Info("invoice created",
		"invoice_id", inv.ID,
		"originator", inv.Originator,
		"amount", inv.Amount,
		"advance_amount", inv.AdvanceAmount,
		"due_date", inv.DueDate,
	)

	e.plugins.EmitInvoiceCreated(ctx, inv)
	e.plugins.EmitReputationUpdated(ctx, rep)
	return inv, nil
}

// FundInvoice advances the invoice's locked-in advance amount from the
// funder to the originator and marks the invoice funded. An invoice can be
// funded exactly once, and only before its due date.
func (e *Engine) FundInvoice(ctx context.Context, invID uint64, funder types.Principal) (*invoice.FundingReceipt, error) {
	if _, err := e.requireConfig(ctx); err != nil {
		return nil, err
	}
	if err := e.authn.Require(ctx, funder); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	inv, err := e.store.GetInvoice(ctx, invID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(inv, invoice.StatusCreated); err != nil {
		return nil, err
	}

	now := e.now()
	if !inv.DueDate.After(now) {
		return nil, ErrInvoiceExpired
	}

	if e.ledger == nil {
		return nil, fmt.Errorf("%w: no ledger configured", ErrTransferFailed)
	}
	if err := e.ledger.Transfer(ctx, ledger.Transfer{
		From:   funder,
		To:     inv.Originator,
		Amount: inv.AdvanceAmount,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	inv.Funder = funder
	inv.FundedAt = &now
	inv.Status = invoice.StatusFunded
	inv.TouchAt(now)

	if err := e.store.CommitFunding(ctx, inv, inv.AdvanceAmount); err != nil {
		return nil, err
	}
	e.extendLifetime(ctx, store.InvoiceKey(inv.ID))

	receipt := &invoice.FundingReceipt{
		ID:        id.NewReceiptID(),
		InvoiceID: inv.ID,
		Funder:    funder,
		Amount:    inv.AdvanceAmount,
		Timestamp: now,
	}

	e.logger.Info("invoice funded",
		"invoice_id", inv.ID,
		"funder", funder,
		"amount", inv.AdvanceAmount,
		"receipt_id", receipt.ID,
	)

	e.plugins.EmitInvoiceFunded(ctx, inv, receipt)
	return receipt, nil
}

// SettleInvoice distributes a payer remittance across the funder, the
// originator, and the treasury, then folds the outcome into the
// originator's reputation. The three payouts and the state change stand or
// fall together.
func (e *Engine) SettleInvoice(ctx context.Context, invID uint64, caller types.Principal, amount types.Money) (*settlement.Result, error) {
	cfg, err := e.requireConfig(ctx)
	if err != nil {
		return nil, err
	}

	if err := e.requireSettlementCaller(ctx, caller, cfg); err != nil {
		return nil, err
	}

	inv, err := e.store.GetInvoice(ctx, invID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(inv, invoice.StatusFunded); err != nil {
		return nil, err
	}

	if e.authority != nil {
		if err := e.authority.Attest(ctx, caller, inv, amount); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
	}

	if amount.LessThan(inv.Amount) {
		return nil, ErrInsufficientSettlement
	}
	dist := settlement.Distribute(inv, cfg.ProtocolFeeBps, amount)

	if e.ledger == nil {
		return nil, fmt.Errorf("%w: no ledger configured", ErrTransferFailed)
	}
	transfers := []ledger.Transfer{
		{From: caller, To: inv.Funder, Amount: dist.LenderAmount},
	}
	if dist.SmeAmount.IsPositive() {
		transfers = append(transfers, ledger.Transfer{From: caller, To: inv.Originator, Amount: dist.SmeAmount})
	}
	if dist.ProtocolFee.IsPositive() {
		transfers = append(transfers, ledger.Transfer{From: caller, To: cfg.Treasury, Amount: dist.ProtocolFee})
	}
	if err := e.ledger.TransferBatch(ctx, transfers); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	now := e.now()
	inv.SettledAt = &now
	inv.Status = invoice.StatusSettled
	inv.TouchAt(now)

	rep, err := e.store.GetReputation(ctx, inv.Originator)
	if err != nil {
		if !IsNotFound(err) {
			return nil, err
		}
		rep = reputation.New(inv.Originator)
	}
	rep.RecordSettled(inv.Amount, inv.SettledOnTime(), inv.SettlementDays(), now)

	if err := e.store.CommitSettlement(ctx, inv, rep, amount); err != nil {
		return nil, err
	}
	e.extendLifetime(ctx, store.InvoiceKey(inv.ID))
	e.extendLifetime(ctx, store.ReputationKey(inv.Originator))

	result := &settlement.Result{
		ID:           id.NewSettlementID(),
		InvoiceID:    inv.ID,
		Distribution: dist,
		Timestamp:    now,
	}

	e.logger.Info("invoice settled",
		"invoice_id", inv.ID,
		"amount", amount,
		"lender_amount", dist.LenderAmount,
		"sme_amount", dist.SmeAmount,
		"protocol_fee", dist.ProtocolFee,
		"on_time", inv.SettledOnTime(),
	)

	e.plugins.EmitInvoiceSettled(ctx, inv, result)
	e.plugins.EmitReputationUpdated(ctx, rep)
	return result, nil
}

// CancelInvoice withdraws an unfunded invoice. The originator or the admin
// may cancel; a funded invoice can never be cancelled.
func (e *Engine) CancelInvoice(ctx context.Context, invID uint64, caller types.Principal) (*invoice.Invoice, error) {
	cfg, err := e.requireConfig(ctx)
	if err != nil {
		return nil, err
	}

	inv, err := e.store.GetInvoice(ctx, invID)
	if err != nil {
		return nil, err
	}

	if caller != inv.Originator && caller != cfg.Admin {
		return nil, fmt.Errorf("%w: only the originator or admin may cancel", ErrUnauthorized)
	}
	if err := e.authn.Require(ctx, caller); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	switch inv.Status {
	case invoice.StatusCreated:
	case invoice.StatusCancelled:
		return nil, ErrInvoiceCancelled
	default:
		// Funded and Settled invoices are past the point of no return.
		return nil, ErrInvoiceAlreadyFunded
	}

	now := e.now()
	inv.Status = invoice.StatusCancelled
	inv.TouchAt(now)

	if err := e.store.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	e.logger.Info("invoice cancelled",
		"invoice_id", inv.ID,
		"caller", caller,
	)

	e.plugins.EmitInvoiceCancelled(ctx, inv)
	return inv, nil
}

// GetInvoice retrieves an invoice by ID.
func (e *Engine) GetInvoice(ctx context.Context, invID uint64) (*invoice.Invoice, error) {
	inv, err := e.store.GetInvoice(ctx, invID)
	if err != nil {
		return nil, err
	}
	e.extendLifetime(ctx, store.InvoiceKey(inv.ID))
	return inv, nil
}

// ListInvoices returns invoices matching the filter.
func (e *Engine) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	return e.store.ListInvoices(ctx, opts)
}

// PreviewSettlement computes the distribution a settlement of amount would
// produce, without moving funds or changing state.
func (e *Engine) PreviewSettlement(ctx context.Context, invID uint64, amount types.Money) (settlement.Distribution, error) {
	cfg, err := e.requireConfig(ctx)
	if err != nil {
		return settlement.Distribution{}, err
	}
	inv, err := e.store.GetInvoice(ctx, invID)
	if err != nil {
		return settlement.Distribution{}, err
	}
	return settlement.Distribute(inv, cfg.ProtocolFeeBps, amount), nil
}

// ──────────────────────────────────────────────────
// Reputation and stats
// ──────────────────────────────────────────────────

// GetReputation returns an originator's reputation record.
func (e *Engine) GetReputation(ctx context.Context, originator types.Principal) (*reputation.Reputation, error) {
	rep, err := e.store.GetReputation(ctx, originator)
	if err != nil {
		return nil, err
	}
	e.extendLifetime(ctx, store.ReputationKey(originator))
	return rep, nil
}

// GetStats returns the engine-wide counters.
func (e *Engine) GetStats(ctx context.Context) (store.Stats, error) {
	return e.store.Stats(ctx)
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func (e *Engine) requireConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := e.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (e *Engine) requireAdmin(ctx context.Context, caller types.Principal, cfg *config.Config) error {
	if caller != cfg.Admin {
		return fmt.Errorf("%w: admin required", ErrUnauthorized)
	}
	if err := e.authn.Require(ctx, caller); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return nil
}

// requireSettlementCaller authenticates the settlement caller. Without an
// external authority only the admin may settle; with one, any authenticated
// caller may attempt it and the authority decides per invoice.
func (e *Engine) requireSettlementCaller(ctx context.Context, caller types.Principal, cfg *config.Config) error {
	if err := e.authn.Require(ctx, caller); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if e.authority != nil {
		return nil
	}
	if caller != cfg.Admin {
		return fmt.Errorf("%w: settlement requires the admin", ErrUnauthorized)
	}
	return nil
}

func requireStatus(inv *invoice.Invoice, want invoice.Status) error {
	if inv.Status == want {
		return nil
	}
	switch inv.Status {
	case invoice.StatusFunded:
		return ErrInvoiceAlreadyFunded
	case invoice.StatusSettled:
		return ErrInvoiceAlreadySettled
	case invoice.StatusCancelled:
		return ErrInvoiceCancelled
	default:
		return ErrInvoiceNotFunded
	}
}

func (e *Engine) extendLifetime(ctx context.Context, key store.Key) {
	_ = e.store.ExtendLifetime(ctx, key, recordMinTTL, recordMaxTTL) //nolint:errcheck // best-effort lifetime renewal
}

// keepAliveWorker periodically renews the singleton records on backends
// with expiry semantics.
func (e *Engine) keepAliveWorker(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.extendLifetime(ctx, store.ConfigKey())
			e.extendLifetime(ctx, store.CountersKey())
			e.logger.Debug("record lifetimes renewed")
		}
	}
}
