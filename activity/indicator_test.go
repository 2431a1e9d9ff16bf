package activity

import "testing"

type pin struct{ writes []bool }

func (p *pin) Set(l bool) { p.writes = append(p.writes, l) }

func TestIndicatorForwardsToPin(t *testing.T) {
	p := &pin{}
	ind := New(p)
	ind.Set(true)
	ind.Set(false)
	ind.Set(true)

	if !ind.Level() {
		t.Fatal("Level() = false after Set(true)")
	}
	if got := ind.Wakes(); got != 2 {
		t.Fatalf("Wakes() = %d, want 2", got)
	}
	if len(p.writes) != 3 || p.writes[1] {
		t.Fatalf("pin writes = %v", p.writes)
	}
}

func TestNilIndicatorIsInert(t *testing.T) {
	var ind *Indicator
	ind.Set(true)
	if ind.Level() || ind.Wakes() != 0 {
		t.Fatal("nil indicator reported state")
	}
	New(nil).Set(true)
}
