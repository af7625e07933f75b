package plugin

import (
	"context"
	"errors"
	"testing"
)

// recorder implements every lifecycle hook and records invocations.
type recorder struct {
	name   string
	calls  []string
	failOn string
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) hook(name string) error {
	r.calls = append(r.calls, name)
	if r.failOn == name {
		return errors.New("hook failed")
	}
	return nil
}

func (r *recorder) OnInit(context.Context, interface{}) error { return r.hook("init") }
func (r *recorder) OnShutdown(context.Context) error          { return r.hook("shutdown") }
func (r *recorder) OnConfigInitialized(context.Context, interface{}) error {
	return r.hook("config_initialized")
}
func (r *recorder) OnConfigUpdated(context.Context, interface{}, interface{}) error {
	return r.hook("config_updated")
}
func (r *recorder) OnInvoiceCreated(context.Context, interface{}) error {
	return r.hook("invoice_created")
}
func (r *recorder) OnInvoiceFunded(context.Context, interface{}, interface{}) error {
	return r.hook("invoice_funded")
}
func (r *recorder) OnInvoiceSettled(context.Context, interface{}, interface{}) error {
	return r.hook("invoice_settled")
}
func (r *recorder) OnInvoiceCancelled(context.Context, interface{}) error {
	return r.hook("invoice_cancelled")
}
func (r *recorder) OnReputationUpdated(context.Context, interface{}) error {
	return r.hook("reputation_updated")
}

// nameOnly implements just the base Plugin interface.
type nameOnly struct{ name string }

func (p *nameOnly) Name() string { return p.name }

// assessor implements the named RiskAssessor extension point.
type assessor struct {
	name  string
	score uint32
}

func (a *assessor) Name() string         { return a.name }
func (a *assessor) AssessorName() string { return a.name }
func (a *assessor) Assess(context.Context, interface{}) (uint32, error) {
	return a.score, nil
}

func TestRegister(t *testing.T) {
	r := NewRegistry()

	p := &recorder{name: "rec"}
	if err := r.Register(p); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if r.Count() != 1 {
		t.Errorf("Count: got %d, want 1", r.Count())
	}
	if r.Get("rec") != p {
		t.Error("Get did not return the registered plugin")
	}
	if r.Get("missing") != nil {
		t.Error("Get for unknown name should be nil")
	}

	// Names are unique.
	if err := r.Register(&nameOnly{name: "rec"}); err == nil {
		t.Error("duplicate name accepted")
	}
	if r.Count() != 1 {
		t.Errorf("Count after duplicate: got %d, want 1", r.Count())
	}
}

func TestEmitDispatch(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{name: "rec"}
	if err := r.Register(rec); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// A plugin with no hooks never gets dispatched to.
	if err := r.Register(&nameOnly{name: "bare"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	ctx := context.Background()
	r.EmitInit(ctx, nil)
	r.EmitConfigInitialized(ctx, nil)
	r.EmitConfigUpdated(ctx, nil, nil)
	r.EmitInvoiceCreated(ctx, nil)
	r.EmitInvoiceFunded(ctx, nil, nil)
	r.EmitInvoiceSettled(ctx, nil, nil)
	r.EmitInvoiceCancelled(ctx, nil)
	r.EmitReputationUpdated(ctx, nil)
	r.EmitShutdown(ctx)

	want := []string{
		"init", "config_initialized", "config_updated",
		"invoice_created", "invoice_funded", "invoice_settled",
		"invoice_cancelled", "reputation_updated", "shutdown",
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls: got %v, want %v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("call %d: got %q, want %q", i, rec.calls[i], want[i])
		}
	}
}

func TestEmitContinuesAfterFailure(t *testing.T) {
	r := NewRegistry()

	failing := &recorder{name: "failing", failOn: "invoice_created"}
	healthy := &recorder{name: "healthy"}
	if err := r.Register(failing); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(healthy); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// A failing hook is logged, not propagated; later plugins still run.
	r.EmitInvoiceCreated(context.Background(), nil)

	if len(healthy.calls) != 1 || healthy.calls[0] != "invoice_created" {
		t.Errorf("healthy plugin not dispatched: %v", healthy.calls)
	}
}

func TestRiskAssessors(t *testing.T) {
	r := NewRegistry()

	a := &assessor{name: "kyc", score: 250}
	if err := r.Register(a); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got := r.GetRiskAssessor("kyc")
	if got == nil {
		t.Fatal("assessor not found")
	}
	score, err := got.Assess(context.Background(), nil)
	if err != nil || score != 250 {
		t.Errorf("Assess: got %d, %v", score, err)
	}

	if r.GetRiskAssessor("missing") != nil {
		t.Error("unknown assessor should be nil")
	}
}

func TestList(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"a", "b", "c"} {
		if err := r.Register(&nameOnly{name: name}); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("List: got %d, want 3", len(list))
	}

	// The returned slice is a copy.
	list[0] = nil
	if r.Get("a") == nil {
		t.Error("List leaked internal state")
	}
}
