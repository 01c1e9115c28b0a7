package core

import "testing"

func TestComputeStatKeyDeterministic(t *testing.T) {
	sel := ComputeSelectionHash([]string{"0:0:true", "1:1:true"})

	a := ComputeStatKey("diversity", map[string]any{"window_size": 10000.0, "mode": "site"}, sel)
	b := ComputeStatKey("diversity", map[string]any{"mode": "site", "window_size": 10000.0}, sel)
	if a != b {
		t.Error("param order must not affect the key")
	}
}

func TestComputeStatKeySensitivity(t *testing.T) {
	sel := ComputeSelectionHash([]string{"0:0:true"})
	base := ComputeStatKey("diversity", map[string]any{"window_size": 10000.0}, sel)

	if got := ComputeStatKey("fst", map[string]any{"window_size": 10000.0}, sel); got == base {
		t.Error("statistic name must affect the key")
	}
	if got := ComputeStatKey("diversity", map[string]any{"window_size": 5000.0}, sel); got == base {
		t.Error("param values must affect the key")
	}
	other := ComputeSelectionHash([]string{"0:0:false"})
	if got := ComputeStatKey("diversity", map[string]any{"window_size": 10000.0}, other); got == base {
		t.Error("selection state must affect the key")
	}
}

func TestComputeSelectionHash(t *testing.T) {
	a := ComputeSelectionHash([]string{"0:0:true", "1:1:true"})
	b := ComputeSelectionHash([]string{"0:0:true", "1:1:true"})
	if a != b {
		t.Error("same entries must hash equal")
	}
	c := ComputeSelectionHash([]string{"1:1:true", "0:0:true"})
	if a == c {
		t.Error("entry order encodes table order and must matter")
	}
	if Hash(a).IsEmpty() {
		t.Error("selection hash must not be empty")
	}
}

func TestNewHash(t *testing.T) {
	h := NewHash([]byte("data"))
	if len(h) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h))
	}
	if h != NewHash([]byte("data")) {
		t.Error("hashing is deterministic")
	}
}
