package borrowck

import (
	"fmt"

	"fortio.org/safecast"

	"oxcheck/internal/ir"
)

// BorrowID identifies an active borrow entry.
type BorrowID uint32

// NoBorrowID marks the absence of a borrow.
const NoBorrowID BorrowID = 0

// BorrowKind differentiates shared vs exclusive borrows.
type BorrowKind uint8

const (
	BorrowShared BorrowKind = iota
	BorrowExclusive
)

func (k BorrowKind) String() string {
	if k == BorrowExclusive {
		return "exclusive"
	}
	return "shared"
}

// BorrowIssueKind enumerates reasons a borrow-related action fails.
type BorrowIssueKind uint8

const (
	BorrowIssueNone BorrowIssueKind = iota
	// BorrowIssueConflictShared blocks an exclusive borrow: shared entries live.
	BorrowIssueConflictShared
	// BorrowIssueConflictExclusive blocks any new borrow: exclusive entry live.
	BorrowIssueConflictExclusive
	// BorrowIssueFrozen blocks mutation/move: shared entries live.
	BorrowIssueFrozen
	// BorrowIssueTaken blocks mutation/move: exclusive entry live.
	BorrowIssueTaken
)

// BorrowIssue carries information about conflicts.
type BorrowIssue struct {
	Kind   BorrowIssueKind
	Borrow BorrowID
}

// BorrowInfo stores metadata about each borrow.
type BorrowInfo struct {
	ID      BorrowID
	Kind    BorrowKind
	Binding ir.BindingID
	// Ref is the reference the borrow produced; spawn captures have none.
	Ref ir.RefID
	At  ir.Pos
	// Scope caps the live range: the borrow dies no later than this scope.
	Scope scopeID
	// active flips off once the borrow expires (last use or scope exit).
	active bool
}

type borrowState struct {
	shared []BorrowID
	excl   BorrowID
}

type scopeID uint32

const noScopeID scopeID = 0

// BorrowTable tracks active borrows per binding. Invariant at every program
// point: a binding's set is empty, all shared, or exactly one exclusive.
type BorrowTable struct {
	infos        []BorrowInfo
	bindingState map[ir.BindingID]borrowState
	refBorrow    map[ir.RefID]BorrowID
	scopeBorrows map[scopeID][]BorrowID
}

// NewBorrowTable builds an empty borrow table ready for tracking.
func NewBorrowTable() *BorrowTable {
	return &BorrowTable{
		infos:        []BorrowInfo{{}},
		bindingState: make(map[ir.BindingID]borrowState),
		refBorrow:    make(map[ir.RefID]BorrowID),
		scopeBorrows: make(map[scopeID][]BorrowID),
	}
}

// BeginBorrow registers a borrow of binding. ref may be NoRefID for spawn
// captures; scope caps the live range.
func (bt *BorrowTable) BeginBorrow(ref ir.RefID, at ir.Pos, kind BorrowKind, binding ir.BindingID, scope scopeID) (BorrowID, BorrowIssue) {
	if bt == nil || !binding.IsValid() || scope == noScopeID {
		return NoBorrowID, BorrowIssue{}
	}
	state := bt.bindingState[binding]
	switch kind {
	case BorrowShared:
		if state.excl != NoBorrowID {
			return NoBorrowID, BorrowIssue{Kind: BorrowIssueConflictExclusive, Borrow: state.excl}
		}
	case BorrowExclusive:
		if len(state.shared) > 0 {
			return NoBorrowID, BorrowIssue{Kind: BorrowIssueConflictShared, Borrow: state.shared[0]}
		}
		if state.excl != NoBorrowID {
			return NoBorrowID, BorrowIssue{Kind: BorrowIssueConflictExclusive, Borrow: state.excl}
		}
	}
	value, err := safecast.Conv[uint32](len(bt.infos))
	if err != nil {
		panic(fmt.Errorf("borrow table overflow: %w", err))
	}
	id := BorrowID(value)
	bt.infos = append(bt.infos, BorrowInfo{
		ID:      id,
		Kind:    kind,
		Binding: binding,
		Ref:     ref,
		At:      at,
		Scope:   scope,
		active:  true,
	})
	switch kind {
	case BorrowShared:
		state.shared = append(state.shared, id)
	case BorrowExclusive:
		state.excl = id
	}
	bt.bindingState[binding] = state
	if ref.IsValid() {
		bt.refBorrow[ref] = id
	}
	bt.scopeBorrows[scope] = append(bt.scopeBorrows[scope], id)
	return id, BorrowIssue{}
}

// MutationAllowed verifies whether the binding can be written or mutated.
func (bt *BorrowTable) MutationAllowed(binding ir.BindingID) BorrowIssue {
	return bt.accessIssue(binding)
}

// MoveAllowed verifies whether the binding can be moved from.
func (bt *BorrowTable) MoveAllowed(binding ir.BindingID) BorrowIssue {
	return bt.accessIssue(binding)
}

func (bt *BorrowTable) accessIssue(binding ir.BindingID) BorrowIssue {
	if bt == nil || !binding.IsValid() {
		return BorrowIssue{}
	}
	state, ok := bt.bindingState[binding]
	if !ok {
		return BorrowIssue{}
	}
	if len(state.shared) > 0 {
		return BorrowIssue{Kind: BorrowIssueFrozen, Borrow: state.shared[0]}
	}
	if state.excl != NoBorrowID {
		return BorrowIssue{Kind: BorrowIssueTaken, Borrow: state.excl}
	}
	return BorrowIssue{}
}

// DropBorrow expires one borrow, typically at its last use.
func (bt *BorrowTable) DropBorrow(id BorrowID) {
	if bt == nil {
		return
	}
	info := bt.info(id)
	if info == nil || !info.active {
		return
	}
	info.active = false
	state := bt.bindingState[info.Binding]
	switch info.Kind {
	case BorrowShared:
		state.shared = dropBorrowID(state.shared, id)
	case BorrowExclusive:
		if state.excl == id {
			state.excl = NoBorrowID
		}
	}
	if len(state.shared) == 0 && state.excl == NoBorrowID {
		delete(bt.bindingState, info.Binding)
	} else {
		bt.bindingState[info.Binding] = state
	}
}

// EndScope expires all borrows whose live range is capped by scope.
func (bt *BorrowTable) EndScope(scope scopeID) []BorrowID {
	if bt == nil || scope == noScopeID {
		return nil
	}
	ids := bt.scopeBorrows[scope]
	if len(ids) == 0 {
		return nil
	}
	expired := make([]BorrowID, 0, len(ids))
	for _, id := range ids {
		if info := bt.info(id); info != nil && info.active {
			bt.DropBorrow(id)
			expired = append(expired, id)
		}
	}
	delete(bt.scopeBorrows, scope)
	return expired
}

// RefBorrow returns the borrow produced for a reference, if still known.
func (bt *BorrowTable) RefBorrow(ref ir.RefID) BorrowID {
	if bt == nil || !ref.IsValid() {
		return NoBorrowID
	}
	return bt.refBorrow[ref]
}

// Info returns metadata for the borrow.
func (bt *BorrowTable) Info(id BorrowID) *BorrowInfo {
	return bt.info(id)
}

func (bt *BorrowTable) info(id BorrowID) *BorrowInfo {
	if bt == nil || id == NoBorrowID || int(id) >= len(bt.infos) {
		return nil
	}
	return &bt.infos[id]
}

// IsActive reports whether the borrow has not yet expired.
func (bt *BorrowTable) IsActive(id BorrowID) bool {
	info := bt.info(id)
	return info != nil && info.active
}

// Infos returns a copy of stored borrow infos (excluding the sentinel).
func (bt *BorrowTable) Infos() []BorrowInfo {
	if bt == nil || len(bt.infos) <= 1 {
		return nil
	}
	out := make([]BorrowInfo, len(bt.infos)-1)
	copy(out, bt.infos[1:])
	return out
}

// activeShape summarizes live borrows per binding for fixed-point checks.
type activeShape struct {
	shared int
	excl   bool
}

// ActiveShapes snapshots the live borrow structure of every binding.
func (bt *BorrowTable) ActiveShapes() map[ir.BindingID]activeShape {
	if bt == nil || len(bt.bindingState) == 0 {
		return nil
	}
	out := make(map[ir.BindingID]activeShape, len(bt.bindingState))
	for binding, state := range bt.bindingState {
		out[binding] = activeShape{shared: len(state.shared), excl: state.excl != NoBorrowID}
	}
	return out
}

func shapesEqual(a, b map[ir.BindingID]activeShape) bool {
	if len(a) != len(b) {
		return false
	}
	for binding, sa := range a {
		if sb, ok := b[binding]; !ok || sa != sb {
			return false
		}
	}
	return true
}

func dropBorrowID(ids []BorrowID, target BorrowID) []BorrowID {
	if len(ids) == 0 {
		return ids
	}
	for i, id := range ids {
		if id == target {
			ids[i] = ids[len(ids)-1]
			return ids[:len(ids)-1]
		}
	}
	return ids
}
