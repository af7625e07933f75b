package factoring

import "errors"

// Sentinel errors — the closed set of failure kinds reported by the engine.
// Collaborator failures (authentication, ledger transfers, settlement
// attestation) are wrapped into this set so callers can always classify an
// error with errors.Is against a sentinel.
var (
	// Initialization errors
	ErrNotInitialized     = errors.New("factoring: contract not initialized")
	ErrAlreadyInitialized = errors.New("factoring: contract already initialized")

	// Invoice errors
	ErrInvoiceNotFound       = errors.New("factoring: invoice not found")
	ErrInvoiceAlreadyExists  = errors.New("factoring: invoice already exists")
	ErrInvoiceAlreadyFunded  = errors.New("factoring: invoice already funded")
	ErrInvoiceAlreadySettled = errors.New("factoring: invoice already settled")
	ErrInvoiceNotFunded      = errors.New("factoring: invoice not funded")
	ErrInvoiceCancelled      = errors.New("factoring: invoice cancelled")
	ErrInvoiceExpired        = errors.New("factoring: invoice past its due date")

	// Validation errors
	ErrInvalidAmount            = errors.New("factoring: invalid invoice amount")
	ErrInvalidFeePercentage     = errors.New("factoring: fee percentage out of bounds")
	ErrInvalidAdvancePercentage = errors.New("factoring: advance percentage out of bounds")
	ErrInvalidPayer             = errors.New("factoring: invalid payer reference")
	ErrInsufficientSettlement   = errors.New("factoring: settlement amount below face amount")

	// Authorization errors
	ErrUnauthorized = errors.New("factoring: unauthorized")

	// Transfer errors
	ErrTransferFailed = errors.New("factoring: ledger transfer failed")

	// Reputation errors
	ErrReputationNotFound = errors.New("factoring: no reputation record for originator")
)

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInvoiceNotFound) ||
		errors.Is(err, ErrReputationNotFound) ||
		errors.Is(err, ErrNotInitialized)
}

// IsValidation returns true if the error is a precondition/bounds failure
// on caller-supplied input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidFeePercentage) ||
		errors.Is(err, ErrInvalidAdvancePercentage) ||
		errors.Is(err, ErrInvalidPayer) ||
		errors.Is(err, ErrInsufficientSettlement)
}

// IsConflict returns true if the error reports an invoice in the wrong
// lifecycle state for the attempted transition.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyInitialized) ||
		errors.Is(err, ErrInvoiceAlreadyExists) ||
		errors.Is(err, ErrInvoiceAlreadyFunded) ||
		errors.Is(err, ErrInvoiceAlreadySettled) ||
		errors.Is(err, ErrInvoiceNotFunded) ||
		errors.Is(err, ErrInvoiceCancelled) ||
		errors.Is(err, ErrInvoiceExpired)
}
