package borrowck

import (
	"fmt"

	"fortio.org/safecast"

	"oxcheck/internal/ir"
)

// OwnershipState is the per-binding move machine. Transitions only run
// forward: Uninitialized → Owned → {Moved | Dropped}; the last two are
// terminal within one scope chain.
type OwnershipState uint8

const (
	StateUninitialized OwnershipState = iota
	StateOwned
	StateMoved
	StateDropped
)

func (s OwnershipState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateOwned:
		return "owned"
	case StateMoved:
		return "moved"
	case StateDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// ownershipTable tracks one OwnershipState per binding for a single
// function pass. Indexed directly by BindingID; slot 0 is the sentinel.
type ownershipTable struct {
	states  []OwnershipState
	movedAt []ir.Pos
}

func newOwnershipTable(bindings int) *ownershipTable {
	return &ownershipTable{
		states:  make([]OwnershipState, bindings+1),
		movedAt: make([]ir.Pos, bindings+1),
	}
}

func (t *ownershipTable) state(id ir.BindingID) OwnershipState {
	if t == nil || !id.IsValid() || int(id) >= len(t.states) {
		return StateUninitialized
	}
	return t.states[id]
}

// declare resets the slot to Uninitialized. Re-declaring is legal for loop
// bodies where each iteration gets a fresh slot.
func (t *ownershipTable) declare(id ir.BindingID) {
	if t == nil || !id.IsValid() || int(id) >= len(t.states) {
		return
	}
	t.states[id] = StateUninitialized
	t.movedAt[id] = ir.Pos{}
}

// initialize transitions Uninitialized → Owned. Initializing an Owned slot
// (assignment with a fresh value) keeps it Owned.
func (t *ownershipTable) initialize(id ir.BindingID) {
	if t == nil || !id.IsValid() || int(id) >= len(t.states) {
		return
	}
	t.states[id] = StateOwned
}

// markMoved records the terminal Moved transition and where it happened.
func (t *ownershipTable) markMoved(id ir.BindingID, at ir.Pos) {
	if t == nil || !id.IsValid() || int(id) >= len(t.states) {
		return
	}
	if t.states[id] == StateMoved {
		return
	}
	t.states[id] = StateMoved
	t.movedAt[id] = at
}

// movedPos returns where the binding moved, for "value moved here" notes.
func (t *ownershipTable) movedPos(id ir.BindingID) ir.Pos {
	if t == nil || !id.IsValid() || int(id) >= len(t.movedAt) {
		return ir.Pos{}
	}
	return t.movedAt[id]
}

// drop transitions Owned → Dropped at scope exit. Idempotent; Moved slots
// stay Moved (nothing left to destroy).
func (t *ownershipTable) drop(id ir.BindingID) bool {
	if t == nil || !id.IsValid() || int(id) >= len(t.states) {
		return false
	}
	if t.states[id] != StateOwned {
		return false
	}
	t.states[id] = StateDropped
	return true
}

// snapshot copies the state vector for loop fixed-point comparison.
func (t *ownershipTable) snapshot() []OwnershipState {
	out := make([]OwnershipState, len(t.states))
	copy(out, t.states)
	return out
}

func ownershipEqual(a, b []OwnershipState) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// regressedBinding finds the first binding whose state went backward in
// permissiveness relative to the entry snapshot (e.g. Owned became Moved).
func regressedBinding(entry, after []OwnershipState) ir.BindingID {
	for i := 1; i < len(entry) && i < len(after); i++ {
		if after[i] != entry[i] {
			value, err := safecast.Conv[uint32](i)
			if err != nil {
				panic(fmt.Errorf("binding index overflow: %w", err))
			}
			return ir.BindingID(value)
		}
	}
	return ir.NoBindingID
}
