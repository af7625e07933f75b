package audithook

// Action constants for audit events.
const (
	// Configuration actions
	ActionConfigInitialized = "config.initialized"
	ActionConfigUpdated     = "config.updated"

	// Invoice actions
	ActionInvoiceCreated   = "invoice.created"
	ActionInvoiceFunded    = "invoice.funded"
	ActionInvoiceSettled   = "invoice.settled"
	ActionInvoiceCancelled = "invoice.cancelled"

	// Reputation actions
	ActionReputationUpdated = "reputation.updated"
)

// Resource constants for audit events.
const (
	ResourceConfig     = "config"
	ResourceInvoice    = "invoice"
	ResourceSettlement = "settlement"
	ResourceReputation = "reputation"
)

// Category constants for audit events.
const (
	CategoryAdmin      = "admin"
	CategoryFactoring  = "factoring"
	CategorySettlement = "settlement"
	CategoryRisk       = "risk"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
