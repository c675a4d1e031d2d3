package venue

import "testing"

func TestDefaultRegistryShape(t *testing.T) {
	r := Default()
	if r.Len() != 35 {
		t.Fatalf("expected 35 built-in venues, got %d", r.Len())
	}

	stats := r.Statistics()
	if stats.Enabled != 35 || stats.Disabled != 0 {
		t.Fatalf("all built-ins start enabled: %+v", stats)
	}
	if stats.ByChain[ChainPolygon] != 20 {
		t.Fatalf("expected 20 polygon venues, got %d", stats.ByChain[ChainPolygon])
	}
	if stats.ByChain[ChainEthereum] != 10 {
		t.Fatalf("expected 10 ethereum venues, got %d", stats.ByChain[ChainEthereum])
	}
	if stats.Flashloan != 4 {
		t.Fatalf("expected 4 flashloan-capable venues, got %d", stats.Flashloan)
	}
}

func TestActiveFiltersAndSorts(t *testing.T) {
	r := Default()

	top := r.Active(ChainPolygon, 9, 0)
	for _, v := range top {
		if v.Chain != ChainPolygon {
			t.Fatalf("chain filter leaked %s", v.Identifier)
		}
		if v.Priority < 9 {
			t.Fatalf("priority filter leaked %s (%d)", v.Identifier, v.Priority)
		}
	}
	for i := 1; i < len(top); i++ {
		if top[i].Priority > top[i-1].Priority {
			t.Fatalf("not sorted by priority descending at %d", i)
		}
	}

	capped := r.Active("", 0, 5)
	if len(capped) != 5 {
		t.Fatalf("cap ignored, got %d", len(capped))
	}
	if capped[0].Priority != 10 {
		t.Fatalf("highest priority venue should lead, got %d", capped[0].Priority)
	}
}

func TestEnableDisable(t *testing.T) {
	r := Default()

	if !r.SetEnabled("quickswap", false) {
		t.Fatal("quickswap should be known")
	}
	if r.SetEnabled("nonexistent", false) {
		t.Fatal("unknown identifier should report false")
	}

	for _, v := range r.Active(ChainPolygon, 0, 0) {
		if v.Identifier == "quickswap" {
			t.Fatal("disabled venue still active")
		}
	}

	v, ok := r.ByIdentifier("quickswap")
	if !ok || v.Enabled {
		t.Fatalf("lookup should reflect the disable: %+v ok=%v", v, ok)
	}

	changed := r.SetEnabledBulk([]string{"quickswap", "sushiswap", "nonexistent"}, true)
	if changed != 2 {
		t.Fatalf("expected 2 known identifiers, got %d", changed)
	}
	if v, _ := r.ByIdentifier("quickswap"); !v.Enabled {
		t.Fatal("bulk enable did not apply")
	}
}

func TestWithFlashloan(t *testing.T) {
	r := Default()
	poly := r.WithFlashloan(ChainPolygon)
	if len(poly) != 2 {
		t.Fatalf("expected balancer_v2 and dodo on polygon, got %d", len(poly))
	}
	for _, v := range poly {
		if !v.SupportsFlashloan {
			t.Fatalf("%s does not support flashloans", v.Identifier)
		}
	}
}

func TestDuplicateIdentifierReplaces(t *testing.T) {
	r := NewRegistry(
		Venue{Identifier: "v", Name: "first", Enabled: true, Priority: 1},
		Venue{Identifier: "v", Name: "second", Enabled: true, Priority: 2},
	)
	if r.Len() != 1 {
		t.Fatalf("duplicate should replace, len=%d", r.Len())
	}
	v, _ := r.ByIdentifier("v")
	if v.Name != "second" || v.Priority != 2 {
		t.Fatalf("later entry should win: %+v", v)
	}
}
