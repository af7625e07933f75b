package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/factoring/config"
	"github.com/xraph/factoring/invoice"
	"github.com/xraph/factoring/reputation"
	"github.com/xraph/factoring/types"
)

// ==================== Config model ====================

// The configuration is a single document with a fixed ID.
const configDocID = int64(1)

type configModel struct {
	grove.BaseModel `grove:"table:factoring_config"`

	ID                int64      `grove:"id,pk"               bson:"_id"`
	Admin             string     `grove:"admin"               bson:"admin"`
	Asset             string     `grove:"asset"               bson:"asset"`
	Treasury          string     `grove:"treasury"            bson:"treasury"`
	DefaultAdvanceBps int64      `grove:"default_advance_bps" bson:"default_advance_bps"`
	ProtocolFeeBps    int64      `grove:"protocol_fee_bps"    bson:"protocol_fee_bps"`
	MinInvoiceAmount  int64      `grove:"min_invoice_amount"  bson:"min_invoice_amount"`
	MaxInvoiceAmount  int64      `grove:"max_invoice_amount"  bson:"max_invoice_amount"`
	ExpiresAt         *time.Time `grove:"expires_at"          bson:"expires_at,omitempty"`
	CreatedAt         time.Time  `grove:"created_at"          bson:"created_at"`
	UpdatedAt         time.Time  `grove:"updated_at"          bson:"updated_at"`
}

func toConfigModel(c *config.Config) *configModel {
	return &configModel{
		ID:                configDocID,
		Admin:             string(c.Admin),
		Asset:             string(c.Asset),
		Treasury:          string(c.Treasury),
		DefaultAdvanceBps: int64(c.DefaultAdvanceBps),
		ProtocolFeeBps:    int64(c.ProtocolFeeBps),
		MinInvoiceAmount:  c.MinInvoiceAmount.Int64(),
		MaxInvoiceAmount:  c.MaxInvoiceAmount.Int64(),
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func fromConfigModel(m *configModel) *config.Config {
	return &config.Config{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Admin:             types.Principal(m.Admin),
		Asset:             types.Principal(m.Asset),
		Treasury:          types.Principal(m.Treasury),
		DefaultAdvanceBps: uint32(m.DefaultAdvanceBps),
		ProtocolFeeBps:    uint32(m.ProtocolFeeBps),
		MinInvoiceAmount:  types.Money(m.MinInvoiceAmount),
		MaxInvoiceAmount:  types.Money(m.MaxInvoiceAmount),
	}
}

// ==================== Invoice model ====================

type invoiceModel struct {
	grove.BaseModel `grove:"table:factoring_invoices"`

	ID            int64      `grove:"id,pk"          bson:"_id"`
	Originator    string     `grove:"originator"     bson:"originator"`
	PayerRef      string     `grove:"payer_ref"      bson:"payer_ref"`
	Amount        int64      `grove:"amount"         bson:"amount"`
	AdvanceAmount int64      `grove:"advance_amount" bson:"advance_amount"`
	FeeBps        int64      `grove:"fee_bps"        bson:"fee_bps"`
	Funder        string     `grove:"funder"         bson:"funder"`
	Status        string     `grove:"status"         bson:"status"`
	FundedAt      *time.Time `grove:"funded_at"      bson:"funded_at,omitempty"`
	SettledAt     *time.Time `grove:"settled_at"     bson:"settled_at,omitempty"`
	DueDate       time.Time  `grove:"due_date"       bson:"due_date"`
	Country       string     `grove:"country"        bson:"country"`
	Industry      string     `grove:"industry"       bson:"industry"`
	ExpiresAt     *time.Time `grove:"expires_at"     bson:"expires_at,omitempty"`
	CreatedAt     time.Time  `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time  `grove:"updated_at"     bson:"updated_at"`
}

func toInvoiceModel(inv *invoice.Invoice) *invoiceModel {
	return &invoiceModel{
		ID:            int64(inv.ID),
		Originator:    string(inv.Originator),
		PayerRef:      inv.PayerRef,
		Amount:        inv.Amount.Int64(),
		AdvanceAmount: inv.AdvanceAmount.Int64(),
		FeeBps:        int64(inv.FeeBps),
		Funder:        string(inv.Funder),
		Status:        string(inv.Status),
		FundedAt:      inv.FundedAt,
		SettledAt:     inv.SettledAt,
		DueDate:       inv.DueDate,
		Country:       inv.Country,
		Industry:      inv.Industry,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

func fromInvoiceModel(m *invoiceModel) *invoice.Invoice {
	return &invoice.Invoice{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:            uint64(m.ID),
		Originator:    types.Principal(m.Originator),
		PayerRef:      m.PayerRef,
		Amount:        types.Money(m.Amount),
		AdvanceAmount: types.Money(m.AdvanceAmount),
		FeeBps:        uint32(m.FeeBps),
		Funder:        types.Principal(m.Funder),
		Status:        invoice.Status(m.Status),
		FundedAt:      m.FundedAt,
		SettledAt:     m.SettledAt,
		DueDate:       m.DueDate,
		Country:       m.Country,
		Industry:      m.Industry,
	}
}

// ==================== Reputation model ====================

type reputationModel struct {
	grove.BaseModel `grove:"table:factoring_reputation"`

	Originator        string     `grove:"originator,pk"       bson:"_id"`
	TotalInvoices     int64      `grove:"total_invoices"      bson:"total_invoices"`
	SettledInvoices   int64      `grove:"settled_invoices"    bson:"settled_invoices"`
	TotalVolume       int64      `grove:"total_volume"        bson:"total_volume"`
	AvgSettlementDays int64      `grove:"avg_settlement_days" bson:"avg_settlement_days"`
	OnTimeRateBps     int64      `grove:"on_time_rate_bps"    bson:"on_time_rate_bps"`
	RiskScore         int64      `grove:"risk_score"          bson:"risk_score"`
	ExpiresAt         *time.Time `grove:"expires_at"          bson:"expires_at,omitempty"`
	CreatedAt         time.Time  `grove:"created_at"          bson:"created_at"`
	UpdatedAt         time.Time  `grove:"updated_at"          bson:"updated_at"`
}

func toReputationModel(r *reputation.Reputation) *reputationModel {
	return &reputationModel{
		Originator:        string(r.Originator),
		TotalInvoices:     int64(r.TotalInvoices),
		SettledInvoices:   int64(r.SettledInvoices),
		TotalVolume:       r.TotalVolume.Int64(),
		AvgSettlementDays: int64(r.AvgSettlementDays),
		OnTimeRateBps:     int64(r.OnTimeRateBps),
		RiskScore:         int64(r.RiskScore),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func fromReputationModel(m *reputationModel) *reputation.Reputation {
	return &reputation.Reputation{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Originator:        types.Principal(m.Originator),
		TotalInvoices:     uint32(m.TotalInvoices),
		SettledInvoices:   uint32(m.SettledInvoices),
		TotalVolume:       types.Money(m.TotalVolume),
		AvgSettlementDays: uint32(m.AvgSettlementDays),
		OnTimeRateBps:     uint32(m.OnTimeRateBps),
		RiskScore:         uint32(m.RiskScore),
	}
}

// ==================== Counters model ====================

const countersDocID = int64(1)

type countersModel struct {
	grove.BaseModel `grove:"table:factoring_counters"`

	ID            int64     `grove:"id,pk"           bson:"_id"`
	NextInvoiceID int64     `grove:"next_invoice_id" bson:"next_invoice_id"`
	TotalInvoices int64     `grove:"total_invoices"  bson:"total_invoices"`
	VolumeFunded  int64     `grove:"volume_funded"   bson:"volume_funded"`
	VolumeSettled int64     `grove:"volume_settled"  bson:"volume_settled"`
	UpdatedAt     time.Time `grove:"updated_at"      bson:"updated_at"`
}
