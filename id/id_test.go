package id_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/xraph/factoring/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"ReceiptID", id.NewReceiptID, "rcpt_"},
		{"SettlementID", id.NewSettlementID, "stl_"},
		{"AuditEventID", id.NewAuditEventID, "aud_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixReceipt)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixReceipt {
		t.Errorf("expected prefix %q, got %q", id.PrefixReceipt, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"ReceiptID", id.NewReceiptID, id.ParseReceiptID},
		{"SettlementID", id.NewSettlementID, id.ParseSettlementID},
		{"AuditEventID", id.NewAuditEventID, id.ParseAuditEventID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	receipt := id.NewReceiptID()

	if _, err := id.ParseSettlementID(receipt.String()); err == nil {
		t.Error("expected error parsing receipt ID as settlement ID")
	}
	if _, err := id.ParseAuditEventID(receipt.String()); err == nil {
		t.Error("expected error parsing receipt ID as audit event ID")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"not a typeid",
		"rcpt_!!!",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if _, err := id.Parse(input); err == nil {
				t.Errorf("Parse(%q): expected error", input)
			}
		})
	}
}

func TestNilID(t *testing.T) {
	if !id.Nil.IsNil() {
		t.Error("Nil should be nil")
	}
	if id.Nil.String() != "" {
		t.Errorf("Nil.String(): got %q, want empty", id.Nil.String())
	}
	if id.Nil.Prefix() != "" {
		t.Errorf("Nil.Prefix(): got %q, want empty", id.Nil.Prefix())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	original := id.NewSettlementID()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded id.ID
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.String() != original.String() {
		t.Errorf("round-trip mismatch: %q != %q", decoded.String(), original.String())
	}
}

func TestSQLValueScan(t *testing.T) {
	original := id.NewReceiptID()

	v, err := original.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var scanned id.ID
	if err := scanned.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if scanned.String() != original.String() {
		t.Errorf("round-trip mismatch: %q != %q", scanned.String(), original.String())
	}

	// Nil stores NULL and scans back to Nil.
	nv, err := id.Nil.Value()
	if err != nil {
		t.Fatalf("Nil Value: %v", err)
	}
	if nv != nil {
		t.Errorf("Nil.Value(): got %v, want nil", nv)
	}

	var fromNull id.ID
	if err := fromNull.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if !fromNull.IsNil() {
		t.Error("Scan(nil) should produce the Nil ID")
	}
}

func TestKSortable(t *testing.T) {
	a := id.NewReceiptID()
	b := id.NewReceiptID()

	// Generated in order within the same millisecond or later, so the
	// string form must not sort backwards.
	if strings.Compare(a.String(), b.String()) > 0 {
		t.Errorf("expected %q <= %q", a.String(), b.String())
	}
}
