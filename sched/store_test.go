package sched

import "testing"

func TestEntityStore_Fork_SharesBindings(t *testing.T) {
	// GIVEN a store with one bound well
	parent := NewEntityStore[Well]()
	w1 := NewWell("W1", "G1", 1, 1, PhaseOil, 0)
	parent.Update("W1", w1)

	// WHEN the store is forked
	child := parent.Fork()

	// THEN the fork aliases the same object instead of copying it
	if child.Get("W1") != w1 {
		t.Error("Fork did not share the binding pointer")
	}
}

func TestEntityStore_Fork_UpdateDoesNotLeakToParent(t *testing.T) {
	// GIVEN a parent store and its fork
	parent := NewEntityStore[Well]()
	w1 := NewWell("W1", "G1", 1, 1, PhaseOil, 0)
	parent.Update("W1", w1)
	child := parent.Fork()

	// WHEN the fork rebinds W1 to a revised copy
	cp := *w1
	cp.Status = StatusOpen
	child.Update("W1", &cp)

	// THEN the parent keeps the original object
	if parent.Get("W1") != w1 {
		t.Error("fork update rebounds the parent binding")
	}
	if parent.Get("W1").Status != StatusShut {
		t.Errorf("parent well status: got %v, want SHUT", parent.Get("W1").Status)
	}
	if child.Get("W1").Status != StatusOpen {
		t.Errorf("child well status: got %v, want OPEN", child.Get("W1").Status)
	}
}

func TestEntityStore_Names_InsertionOrder(t *testing.T) {
	// GIVEN wells bound in deck order
	st := NewEntityStore[Well]()
	for i, name := range []string{"P3", "P1", "P2"} {
		st.Update(name, NewWell(name, "G", 1, 1, PhaseOil, i))
	}

	// WHEN a name is rebound
	st.Update("P1", NewWell("P1", "G", 2, 2, PhaseOil, 1))

	// THEN iteration order is first-binding order, not alphabetical
	want := []string{"P3", "P1", "P2"}
	got := st.Names()
	if len(got) != len(want) {
		t.Fatalf("Names: got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTableStore_Fork_SharesTables(t *testing.T) {
	// GIVEN a table store with one VFP table
	parent := NewTableStore[VFPProdTable]()
	tbl := &VFPProdTable{TableNum: 5}
	parent.Update(5, tbl)

	// WHEN forked
	child := parent.Fork()

	// THEN the table is shared and a fork-side update stays local
	if child.Get(5) != tbl {
		t.Error("Fork did not share the table pointer")
	}
	child.Update(5, &VFPProdTable{TableNum: 5, DatumDepth: 100})
	if parent.Get(5) != tbl {
		t.Error("fork update rebounds the parent table")
	}
}
