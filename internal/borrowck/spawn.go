package borrowck

import (
	"fmt"

	"oxcheck/internal/diag"
	"oxcheck/internal/ir"
)

// spawn verifies that every capture of a thread body is safe to cross the
// thread boundary. Ordinary borrow rules run first: two spawns fighting over
// one binding are a plain ConflictingBorrow, independent of any thread-safety
// classification. The type-level Send/Share checks stack on top.
func (c *Checker) spawn(stmt *ir.Stmt, pos ir.Pos) {
	respawns := bodyRespawns(c.program, stmt.Body)
	for _, capture := range stmt.Captures {
		if c.failed {
			return
		}
		switch capture.Mode {
		case ir.CaptureByMove:
			c.captureByMove(capture, pos)
		case ir.CaptureByReference:
			c.captureByRef(capture, pos, respawns)
		}
	}
	if c.failed || len(stmt.Body) == 0 {
		return
	}
	// The body runs on another thread, but statically it is still walked in
	// program order so nested spawns and uses of captures are checked.
	// By-move captures are the thread's own values while its body is walked;
	// they go back to Moved for the rest of the spawning function.
	moved := make([]ir.BindingID, 0, len(stmt.Captures))
	movedAt := make([]ir.Pos, 0, len(stmt.Captures))
	for _, capture := range stmt.Captures {
		if capture.Mode == ir.CaptureByMove && c.own.state(capture.Binding) == StateMoved {
			moved = append(moved, capture.Binding)
			movedAt = append(movedAt, c.own.movedPos(capture.Binding))
			c.own.initialize(capture.Binding)
		}
	}
	c.pushScope()
	c.block(stmt.Body)
	if c.failed {
		return
	}
	c.popScope(pos)
	for i, binding := range moved {
		c.own.markMoved(binding, movedAt[i])
	}
}

func (c *Checker) captureByMove(capture ir.Capture, pos ir.Pos) {
	if !c.moveOut(capture.Binding, pos) {
		return
	}
	c.event(Event{Kind: EvSpawnEscape, Binding: capture.Binding, Pos: pos, Note: "by_move"})
	facts := c.facts.FactsOf(c.bindingType(capture.Binding))
	if facts.SendSafe {
		return
	}
	diag.ReportError(c, diag.CheckCrossThreadMove, pos,
		fmt.Sprintf("cannot move '%s' of type '%s' into spawned thread: type is not move-safe across threads",
			c.bindingName(capture.Binding), c.facts.Name(c.bindingType(capture.Binding)))).
		WithBinding(capture.Binding).
		Emit()
}

func (c *Checker) captureByRef(capture ir.Capture, pos ir.Pos, respawns bool) {
	if !c.requireOwned(capture.Binding, pos) {
		return
	}
	kind := BorrowShared
	if capture.Mutable {
		kind = BorrowExclusive
	}
	// The thread may outlive every inner scope of the spawning function, so
	// the capture's borrow is pinned to the function root scope.
	id, issue := c.borrows.BeginBorrow(ir.NoRefID, pos, kind, capture.Binding, c.rootScope())
	if issue.Kind != BorrowIssueNone {
		c.reportBorrowConflict(capture.Binding, ir.NoRefID, kind, pos, issue)
		return
	}
	c.event(Event{Kind: EvSpawnEscape, Borrow: id, BorrowKind: kind, Binding: capture.Binding, Pos: pos, Note: "by_reference"})

	facts := c.facts.FactsOf(c.bindingType(capture.Binding))
	switch kind {
	case BorrowShared:
		if !facts.ShareSafe {
			c.reportUnsafeShare(capture.Binding, pos)
		}
	case BorrowExclusive:
		// An exclusive capture is already the sole live borrow (the table
		// just guaranteed it); it only needs the share classification when
		// the spawned body hands the reference to yet another thread.
		if respawns && !facts.ShareSafe {
			c.reportUnsafeShare(capture.Binding, pos)
		}
	}
}

func (c *Checker) reportUnsafeShare(binding ir.BindingID, pos ir.Pos) {
	diag.ReportError(c, diag.CheckCrossThreadShare, pos,
		fmt.Sprintf("cannot share '%s' of type '%s' with spawned thread: type is not share-safe across threads",
			c.bindingName(binding), c.facts.Name(c.bindingType(binding)))).
		WithBinding(binding).
		Emit()
}
