package features

import (
	"testing"

	"github.com/pierregondois/lisa/internal/params"
)

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&Feature{Name: "alpha"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&Feature{Name: "beta"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, ok := r.Lookup("alpha"); !ok {
		t.Errorf("alpha not found")
	}
	if _, ok := r.Lookup("gamma"); ok {
		t.Errorf("gamma should not exist")
	}
}

func TestRegisterRejectsDuplicatesAndEmptyNames(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&Feature{Name: "alpha"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&Feature{Name: "alpha"}); err == nil {
		t.Errorf("duplicate registration should fail")
	}
	if err := r.Register(&Feature{}); err == nil {
		t.Errorf("empty name should fail")
	}
	if err := r.Register(nil); err == nil {
		t.Errorf("nil feature should fail")
	}
}

func TestSealFreezesCatalog(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&Feature{Name: "alpha"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	r.Seal()
	if !r.Sealed() {
		t.Errorf("Sealed() = false after Seal")
	}
	if err := r.Register(&Feature{Name: "beta"}); err == nil {
		t.Errorf("registration after Seal should fail")
	}
}

func TestVisibleSkipsHidden(t *testing.T) {
	r := NewRegistry()
	r.Register(&Feature{Name: "public1"})
	r.Register(&Feature{Name: "__internal", Hidden: true})
	r.Register(&Feature{Name: "public2"})

	visible := r.Visible()
	if len(visible) != 2 {
		t.Fatalf("Visible returned %d features, want 2", len(visible))
	}
	if visible[0].Name != "public1" || visible[1].Name != "public2" {
		t.Errorf("visible features out of order: %v, %v", visible[0].Name, visible[1].Name)
	}
}

func TestFeaturesPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	names := []string{"c", "a", "b"}
	for _, n := range names {
		r.Register(&Feature{Name: n})
	}

	all := r.Features()
	for i, n := range names {
		if all[i].Name != n {
			t.Errorf("Features()[%d] = %s, want %s", i, all[i].Name, n)
		}
	}
}

func TestSelectionParamValidatesAgainstCatalog(t *testing.T) {
	r := NewRegistry()
	r.Register(&Feature{Name: "alpha"})
	r.Register(&Feature{Name: "__hidden", Hidden: true})
	r.Seal()

	sel := r.SelectionParam()

	v, err := sel.Ops.Parse("alpha")
	if err != nil {
		t.Fatalf("Parse(alpha) failed: %v", err)
	}
	if v.(string) != "alpha" {
		t.Errorf("Parse(alpha) = %v", v)
	}

	// Hidden features are selectable, just not listed.
	if _, err := sel.Ops.Parse("__hidden"); err != nil {
		t.Errorf("hidden feature should be selectable: %v", err)
	}

	if _, err := sel.Ops.Parse("nope"); err == nil {
		t.Errorf("unknown feature should fail to parse")
	}
}

func TestFeatureParamLookup(t *testing.T) {
	f := &Feature{
		Name: "ftrace",
		Params: []*params.Param{
			params.New("ftrace", "events", params.StringOps{}, true),
			params.New("ftrace", "tracer", params.StringOps{}, true),
		},
	}

	if p, ok := f.Param("tracer"); !ok || p.Name != "tracer" {
		t.Errorf("Param(tracer) = %v, %v", p, ok)
	}
	if _, ok := f.Param("missing"); ok {
		t.Errorf("Param(missing) should not be found")
	}
}

func TestDrainGlobals(t *testing.T) {
	r := NewRegistry()
	p := params.New("alpha", "x", params.StringOps{}, true)
	r.Register(&Feature{Name: "alpha", Params: []*params.Param{p}})
	r.Seal()

	p.Global().Append("v")
	r.SelectionParam().Global().Append("alpha")

	r.DrainGlobals()
	if p.Global().Len() != 0 {
		t.Errorf("param global store not drained")
	}
	if r.SelectionParam().Global().Len() != 0 {
		t.Errorf("selection global store not drained")
	}
}

func TestRegisterBuiltins(t *testing.T) {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		t.Fatalf("RegisterBuiltins failed: %v", err)
	}

	for _, name := range []string{"sched_stats", "ftrace", "thermal", "cpufreq", "__trace_clock"} {
		if _, ok := r.Lookup(name); !ok {
			t.Errorf("builtin %s missing", name)
		}
	}

	// The trace clock stays out of listings.
	for _, f := range r.Visible() {
		if f.Name == "__trace_clock" {
			t.Errorf("__trace_clock should be hidden")
		}
	}

	// Its clock parameter is read-only.
	tc, _ := r.Lookup("__trace_clock")
	clock, ok := tc.Param("clock")
	if !ok {
		t.Fatalf("clock parameter missing")
	}
	if clock.Writable {
		t.Errorf("clock parameter should not be writable")
	}
}
