package ir

import (
	"testing"

	"oxcheck/internal/typefacts"
)

func TestBuilderAssignsSequentialIDs(t *testing.T) {
	b := NewBuilder()
	fn := b.NewFunc("main")
	if fn != FuncID(1) {
		t.Fatalf("first function must get id 1, got %d", fn)
	}
	x := b.NewBinding("x", typefacts.NoTypeID, true)
	y := b.NewBinding("y", typefacts.NoTypeID, false)
	if x != BindingID(1) || y != BindingID(2) {
		t.Fatalf("bindings must number from 1, got %d %d", x, y)
	}

	decl := b.Declare(x, true)
	if decl != StmtID(1) {
		t.Fatalf("first statement must get id 1, got %d", decl)
	}
	b.SetBody(fn, []StmtID{decl})

	p := b.Program()
	if p.NumFuncs() != 1 || p.NumBindings() != 2 {
		t.Fatalf("unexpected arena sizes: %d funcs, %d bindings", p.NumFuncs(), p.NumBindings())
	}
	if got := p.Func(fn).Body; len(got) != 1 || got[0] != decl {
		t.Fatalf("body not attached: %v", got)
	}
}

func TestBuilderBorrowProducesRef(t *testing.T) {
	b := NewBuilder()
	x := b.NewBinding("x", typefacts.NoTypeID, false)

	stmt, ref := b.BorrowShared("r", x)
	p := b.Program()
	s := p.Stmt(stmt)
	if s.Kind != StmtBorrowShared || s.Binding != x || s.Ref != ref {
		t.Fatalf("borrow statement malformed: %+v", s)
	}
	if got := p.Ref(ref); got == nil || got.Target != x || got.Name != "r" {
		t.Fatalf("ref metadata malformed: %+v", got)
	}

	_, ref2 := b.BorrowExclusive("w", x)
	if ref2 == ref {
		t.Fatalf("each borrow must produce a fresh reference")
	}
}

func TestBuilderNestedBodies(t *testing.T) {
	b := NewBuilder()
	x := b.NewBinding("x", typefacts.NoTypeID, false)

	use := b.UseBinding(x)
	spawn := b.Spawn([]Capture{{Binding: x, Mode: CaptureByMove}}, use)
	loop := b.Loop(spawn)

	p := b.Program()
	if got := p.Stmt(loop).Body; len(got) != 1 || got[0] != spawn {
		t.Fatalf("loop body malformed: %v", got)
	}
	s := p.Stmt(spawn)
	if len(s.Captures) != 1 || s.Captures[0].Binding != x {
		t.Fatalf("spawn captures malformed: %+v", s.Captures)
	}
	if len(s.Body) != 1 || s.Body[0] != use {
		t.Fatalf("spawn body malformed: %v", s.Body)
	}
}

func TestSentinelAccessorsTolerant(t *testing.T) {
	p := NewProgram()
	if p.Func(NoFuncID) != nil || p.Stmt(NoStmtID) != nil || p.Binding(NoBindingID) != nil || p.Ref(NoRefID) != nil {
		t.Fatalf("sentinel ids must resolve to nil")
	}
	if got := p.BindingName(NoBindingID); got != "_" {
		t.Fatalf("sentinel binding name must fall back, got %q", got)
	}
	if got := p.FuncName(FuncID(99)); got != "_" {
		t.Fatalf("out-of-range func name must fall back, got %q", got)
	}
}

func TestPosOrdering(t *testing.T) {
	a := Pos{Func: 1, Stmt: 2}
	c := Pos{Func: 1, Stmt: 5}
	d := Pos{Func: 2, Stmt: 1}
	if !a.Before(c) || !c.Before(d) || d.Before(a) {
		t.Fatalf("positions order by function, then statement")
	}
	if got := a.String(); got != "1:2" {
		t.Fatalf("unexpected rendering %q", got)
	}
}
