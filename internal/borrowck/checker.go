package borrowck

import (
	"fmt"

	"oxcheck/internal/diag"
	"oxcheck/internal/ir"
	"oxcheck/internal/typefacts"
)

// Checker runs the ownership and borrow rules over one function. It owns a
// private ownership table and borrow table; nothing is shared across
// functions except the read-only facts table, so independent functions can
// be checked in parallel by the driver.
//
// The first error diagnostic aborts the function's analysis; sibling
// functions are unaffected.
type Checker struct {
	program  *ir.Program
	fnID     ir.FuncID
	fn       *ir.Func
	facts    *typefacts.Table
	opts     Options
	reporter diag.Reporter

	own     *ownershipTable
	borrows *BorrowTable
	// expiry maps a statement to the references whose live range ends
	// right after it (precomputed backward last-use scan).
	expiry map[ir.StmtID][]ir.RefID

	scopes    []scopeID
	declared  [][]ir.BindingID
	nextScope scopeID

	events []Event
	failed bool
}

// NewChecker prepares a checker for one function.
func NewChecker(program *ir.Program, fn ir.FuncID, facts *typefacts.Table, opts Options, reporter diag.Reporter) *Checker {
	c := &Checker{
		program:  program,
		fnID:     fn,
		fn:       program.Func(fn),
		facts:    facts,
		opts:     opts.normalized(),
		reporter: reporter,
		own:      newOwnershipTable(program.NumBindings()),
		borrows:  NewBorrowTable(),
		expiry:   make(map[ir.StmtID][]ir.RefID),
	}
	if c.fn != nil {
		for ref, stmt := range computeLastUses(program, c.fn) {
			c.expiry[stmt] = append(c.expiry[stmt], ref)
		}
	}
	return c
}

// Run traverses the function body once, forward, applying every rule.
func (c *Checker) Run() {
	if c == nil || c.fn == nil {
		return
	}
	c.pushScope()
	c.block(c.fn.Body)
	if !c.failed {
		c.popScope(ir.Pos{Func: c.fnID})
	}
}

// Failed reports whether analysis aborted on an error.
func (c *Checker) Failed() bool {
	return c != nil && c.failed
}

// Events returns the observational borrow event log.
func (c *Checker) Events() []Event {
	if c == nil {
		return nil
	}
	return c.events
}

// Borrows returns metadata of every borrow seen, expired or not.
func (c *Checker) Borrows() []BorrowInfo {
	if c == nil {
		return nil
	}
	return c.borrows.Infos()
}

func (c *Checker) block(body []ir.StmtID) {
	for _, id := range body {
		if c.failed {
			return
		}
		c.stmt(id)
		if !c.failed {
			c.expireAt(id)
		}
	}
}

func (c *Checker) stmt(id ir.StmtID) {
	stmt := c.program.Stmt(id)
	if stmt == nil {
		return
	}
	pos := c.pos(id)
	switch stmt.Kind {
	case ir.StmtDeclare:
		c.own.declare(stmt.Binding)
		c.trackDeclared(stmt.Binding)
		if stmt.HasInit {
			c.own.initialize(stmt.Binding)
		}
	case ir.StmtAssign:
		c.assign(stmt.Binding, pos)
	case ir.StmtMove:
		c.move(stmt.Src, stmt.Dst, pos)
	case ir.StmtBorrowShared:
		c.borrow(stmt.Binding, stmt.Ref, BorrowShared, pos)
	case ir.StmtBorrowExclusive:
		c.borrow(stmt.Binding, stmt.Ref, BorrowExclusive, pos)
	case ir.StmtUseRef:
		c.useRef(stmt.Ref, pos)
	case ir.StmtUseBinding:
		c.requireOwned(stmt.Binding, pos)
	case ir.StmtCall:
		c.call(stmt, pos)
	case ir.StmtSpawn:
		c.spawn(stmt, pos)
	case ir.StmtEnterScope:
		c.pushScope()
	case ir.StmtExitScope:
		c.popScope(pos)
	case ir.StmtLoop:
		c.loop(stmt, pos)
	default:
		panic(fmt.Sprintf("borrowck: unhandled statement kind %q", stmt.Kind))
	}
}

func (c *Checker) pos(id ir.StmtID) ir.Pos {
	return ir.Pos{Func: c.fnID, Stmt: id}
}

// Report makes the checker a diag.Reporter for its own rule code: the first
// error flips the abort flag before the diagnostic goes downstream.
func (c *Checker) Report(d diag.Diagnostic) {
	if d.Severity >= diag.SevError {
		c.failed = true
	}
	if c.reporter != nil {
		c.reporter.Report(d)
	}
}

func (c *Checker) bindingName(id ir.BindingID) string {
	return c.program.BindingName(id)
}

func (c *Checker) bindingType(id ir.BindingID) typefacts.TypeID {
	if b := c.program.Binding(id); b != nil {
		return b.Type
	}
	return typefacts.NoTypeID
}

func (c *Checker) isCopy(id ir.BindingID) bool {
	return c.opts.CopyTypesExempt && c.facts.IsCopy(c.bindingType(id))
}

// requireOwned enforces the read/write precondition of the ownership store.
func (c *Checker) requireOwned(binding ir.BindingID, pos ir.Pos) bool {
	switch c.own.state(binding) {
	case StateOwned:
		return true
	case StateUninitialized:
		diag.ReportError(c, diag.CheckUseOfUninitialized, pos,
			fmt.Sprintf("use of possibly-uninitialized binding '%s'", c.bindingName(binding))).
			WithBinding(binding).
			Emit()
	case StateMoved:
		diag.ReportError(c, diag.CheckUseAfterMove, pos,
			fmt.Sprintf("use of moved value '%s'", c.bindingName(binding))).
			WithBinding(binding).
			WithNote(c.own.movedPos(binding), fmt.Sprintf("value '%s' moved here", c.bindingName(binding))).
			Emit()
	case StateDropped:
		diag.ReportError(c, diag.CheckUseAfterMove, pos,
			fmt.Sprintf("use of dropped value '%s'", c.bindingName(binding))).
			WithBinding(binding).
			Emit()
	}
	return false
}

func (c *Checker) assign(binding ir.BindingID, pos ir.Pos) {
	// Writing a fresh value into an uninitialized slot is the
	// Uninitialized → Owned transition; Moved and Dropped stay terminal.
	if c.own.state(binding) != StateUninitialized && !c.requireOwned(binding, pos) {
		return
	}
	if issue := c.borrows.MutationAllowed(binding); issue.Kind != BorrowIssueNone {
		c.reportBlocked(diag.CheckMutateWhileBorrowed, binding, pos, issue,
			"cannot assign to '%s' while it is borrowed")
		return
	}
	c.own.initialize(binding)
	c.event(Event{Kind: EvWrite, Binding: binding, Pos: pos})
}

func (c *Checker) move(src, dst ir.BindingID, pos ir.Pos) {
	if !c.moveOut(src, pos) {
		return
	}
	if issue := c.borrows.MutationAllowed(dst); issue.Kind != BorrowIssueNone {
		c.reportBlocked(diag.CheckMutateWhileBorrowed, dst, pos, issue,
			"cannot assign to '%s' while it is borrowed")
		return
	}
	c.own.initialize(dst)
}

// moveOut applies the move_out rules to a binding; Copy types degrade to a
// plain read and keep the Owned state.
func (c *Checker) moveOut(binding ir.BindingID, pos ir.Pos) bool {
	if !c.requireOwned(binding, pos) {
		return false
	}
	if issue := c.borrows.MoveAllowed(binding); issue.Kind != BorrowIssueNone {
		c.reportBlocked(diag.CheckBorrowWhileMoving, binding, pos, issue,
			"cannot move out of '%s' because it is borrowed")
		return false
	}
	if c.isCopy(binding) {
		c.event(Event{Kind: EvMove, Binding: binding, Pos: pos, Note: "copy"})
		return true
	}
	c.own.markMoved(binding, pos)
	c.event(Event{Kind: EvMove, Binding: binding, Pos: pos})
	return true
}

func (c *Checker) borrow(binding ir.BindingID, ref ir.RefID, kind BorrowKind, pos ir.Pos) {
	if !c.requireOwned(binding, pos) {
		return
	}
	id, issue := c.borrows.BeginBorrow(ref, pos, kind, binding, c.currentScope())
	if issue.Kind != BorrowIssueNone {
		c.event(Event{Kind: EvBorrowStart, BorrowKind: kind, Binding: binding, Pos: pos,
			Issue: issue.Kind, IssueBorrow: issue.Borrow})
		c.reportBorrowConflict(binding, ref, kind, pos, issue)
		return
	}
	c.event(Event{Kind: EvBorrowStart, Borrow: id, BorrowKind: kind, Binding: binding, Pos: pos})
}

func (c *Checker) useRef(ref ir.RefID, pos ir.Pos) {
	id := c.borrows.RefBorrow(ref)
	if id == NoBorrowID || !c.borrows.IsActive(id) {
		diag.ReportError(c, diag.CheckExpiredRef, pos,
			fmt.Sprintf("reference '%s' used after its live range ended", c.program.RefName(ref))).
			WithRef(ref).
			Emit()
	}
}

func (c *Checker) call(stmt *ir.Stmt, pos ir.Pos) {
	// Container-mutating calls hit the receiver like a write: live borrows
	// of it are a conflict even when their lexical scope is still open.
	if stmt.Mutating && len(stmt.Args) > 0 && stmt.Args[0].Binding.IsValid() {
		receiver := stmt.Args[0].Binding
		if !c.requireOwned(receiver, pos) {
			return
		}
		if issue := c.borrows.MutationAllowed(receiver); issue.Kind != BorrowIssueNone {
			c.reportBlocked(diag.CheckMutateWhileBorrowed, receiver, pos, issue,
				"cannot call mutating method on '%s' while it is borrowed")
			return
		}
		c.event(Event{Kind: EvWrite, Binding: receiver, Pos: pos, Note: stmt.Callee})
	}

	// Arguments create implicit borrows that all live until the call
	// returns, so conflicting argument pairs are detected.
	var transient []BorrowID
	for _, arg := range stmt.Args {
		if c.failed {
			break
		}
		switch {
		case arg.Ref.IsValid():
			c.useRef(arg.Ref, pos)
		case arg.Mode == ir.PassByValue:
			c.moveOut(arg.Binding, pos)
		case arg.Mode == ir.PassByShared:
			transient = c.argBorrow(arg.Binding, BorrowShared, pos, transient)
		case arg.Mode == ir.PassByExclusive:
			transient = c.argBorrow(arg.Binding, BorrowExclusive, pos, transient)
		}
	}
	for _, id := range transient {
		c.borrows.DropBorrow(id)
		c.event(Event{Kind: EvBorrowEnd, Borrow: id, Pos: pos, Note: "call return"})
	}
}

func (c *Checker) argBorrow(binding ir.BindingID, kind BorrowKind, pos ir.Pos, transient []BorrowID) []BorrowID {
	if !c.requireOwned(binding, pos) {
		return transient
	}
	id, issue := c.borrows.BeginBorrow(ir.NoRefID, pos, kind, binding, c.currentScope())
	if issue.Kind != BorrowIssueNone {
		c.reportBorrowConflict(binding, ir.NoRefID, kind, pos, issue)
		return transient
	}
	c.event(Event{Kind: EvBorrowStart, Borrow: id, BorrowKind: kind, Binding: binding, Pos: pos, Note: "call argument"})
	return append(transient, id)
}

func (c *Checker) loop(stmt *ir.Stmt, pos ir.Pos) {
	entryOwn := c.own.snapshot()
	prevOwn := entryOwn
	prevShapes := c.borrows.ActiveShapes()
	for iter := 0; iter < c.opts.LoopIterations; iter++ {
		c.pushScope()
		c.block(stmt.Body)
		if c.failed {
			return
		}
		c.popScope(pos)
		curOwn := c.own.snapshot()
		curShapes := c.borrows.ActiveShapes()
		if ownershipEqual(curOwn, prevOwn) && shapesEqual(curShapes, prevShapes) {
			return
		}
		prevOwn = curOwn
		prevShapes = curShapes
	}
	binding := regressedBinding(entryOwn, prevOwn)
	msg := "loop body does not reach a stable ownership state after one iteration"
	if binding.IsValid() {
		msg = fmt.Sprintf("loop body leaves '%s' less permissive than at loop entry", c.bindingName(binding))
	}
	diag.ReportError(c, diag.CheckLoopFixedPoint, pos, msg).WithBinding(binding).Emit()
}

// expireAt drops every borrow whose reference saw its last use at stmt.
func (c *Checker) expireAt(stmt ir.StmtID) {
	for _, ref := range c.expiry[stmt] {
		id := c.borrows.RefBorrow(ref)
		if id == NoBorrowID || !c.borrows.IsActive(id) {
			continue
		}
		c.borrows.DropBorrow(id)
		c.event(Event{Kind: EvBorrowEnd, Borrow: id, Pos: c.pos(stmt), Note: "last use"})
	}
}

func (c *Checker) reportBorrowConflict(binding ir.BindingID, ref ir.RefID, kind BorrowKind, pos ir.Pos, issue BorrowIssue) {
	name := c.bindingName(binding)
	var msg string
	switch {
	case kind == BorrowExclusive && issue.Kind == BorrowIssueConflictExclusive:
		msg = fmt.Sprintf("cannot borrow '%s' as exclusive more than once at a time", name)
	case kind == BorrowExclusive:
		msg = fmt.Sprintf("cannot borrow '%s' as exclusive because it is also borrowed as shared", name)
	default:
		msg = fmt.Sprintf("cannot borrow '%s' as shared because it is also borrowed as exclusive", name)
	}
	rb := diag.ReportError(c, diag.CheckConflictingBorrow, pos, msg).WithBinding(binding).WithRef(ref)
	if info := c.borrows.Info(issue.Borrow); info != nil {
		rb.WithNote(info.At, fmt.Sprintf("previous %s borrow of '%s' occurs here", info.Kind, name))
	}
	rb.Emit()
}

func (c *Checker) reportBlocked(code diag.Code, binding ir.BindingID, pos ir.Pos, issue BorrowIssue, format string) {
	rb := diag.ReportError(c, code, pos, fmt.Sprintf(format, c.bindingName(binding))).WithBinding(binding)
	if info := c.borrows.Info(issue.Borrow); info != nil {
		rb.WithNote(info.At, fmt.Sprintf("%s borrow of '%s' occurs here", info.Kind, c.bindingName(binding)))
	}
	rb.Emit()
}

func (c *Checker) event(ev Event) {
	if !c.opts.RecordEvents {
		return
	}
	c.events = append(c.events, ev)
}

func (c *Checker) pushScope() {
	c.nextScope++
	c.scopes = append(c.scopes, c.nextScope)
	c.declared = append(c.declared, nil)
}

func (c *Checker) popScope(pos ir.Pos) {
	if len(c.scopes) == 0 {
		return
	}
	top := c.scopes[len(c.scopes)-1]
	for _, id := range c.borrows.EndScope(top) {
		c.event(Event{Kind: EvBorrowEnd, Borrow: id, Pos: pos, Note: "scope end"})
	}
	// Bindings die in reverse declaration order, mirroring nested
	// destruction.
	bindings := c.declared[len(c.declared)-1]
	for i := len(bindings) - 1; i >= 0; i-- {
		if c.own.drop(bindings[i]) {
			c.event(Event{Kind: EvDrop, Binding: bindings[i], Pos: pos})
		}
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.declared = c.declared[:len(c.declared)-1]
}

func (c *Checker) currentScope() scopeID {
	if len(c.scopes) == 0 {
		return noScopeID
	}
	return c.scopes[len(c.scopes)-1]
}

func (c *Checker) rootScope() scopeID {
	if len(c.scopes) == 0 {
		return noScopeID
	}
	return c.scopes[0]
}

func (c *Checker) trackDeclared(binding ir.BindingID) {
	if len(c.declared) == 0 || !binding.IsValid() {
		return
	}
	c.declared[len(c.declared)-1] = append(c.declared[len(c.declared)-1], binding)
}
