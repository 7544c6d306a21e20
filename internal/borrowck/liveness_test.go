package borrowck

import (
	"testing"

	"oxcheck/internal/ir"
	"oxcheck/internal/typefacts"
)

func TestComputeLastUsesTracksFinalUse(t *testing.T) {
	b := ir.NewBuilder()
	fn := b.NewFunc("last_use")
	x := b.NewBinding("x", typefacts.NoTypeID, false)

	decl := b.Declare(x, true)
	borrow, r := b.BorrowShared("r", x)
	use1 := b.UseRef(r)
	use2 := b.UseRef(r)
	b.SetBody(fn, []ir.StmtID{decl, borrow, use1, use2})

	last := computeLastUses(b.Program(), b.Program().Func(fn))
	if got := last[r]; got != use2 {
		t.Fatalf("expected last use at %d, got %d", use2, got)
	}
}

func TestComputeLastUsesUnusedRefDiesAtBirth(t *testing.T) {
	b := ir.NewBuilder()
	fn := b.NewFunc("unused_ref")
	x := b.NewBinding("x", typefacts.NoTypeID, false)

	decl := b.Declare(x, true)
	borrow, r := b.BorrowShared("r", x)
	b.SetBody(fn, []ir.StmtID{decl, borrow})

	last := computeLastUses(b.Program(), b.Program().Func(fn))
	if got := last[r]; got != borrow {
		t.Fatalf("unused ref must expire at its borrow %d, got %d", borrow, got)
	}
}

func TestComputeLastUsesDescendsIntoNestedBodies(t *testing.T) {
	b := ir.NewBuilder()
	fn := b.NewFunc("nested")
	x := b.NewBinding("x", typefacts.NoTypeID, false)

	decl := b.Declare(x, true)
	borrow, r := b.BorrowShared("r", x)
	use := b.UseRef(r)
	loop := b.Loop(use)
	b.SetBody(fn, []ir.StmtID{decl, borrow, loop})

	last := computeLastUses(b.Program(), b.Program().Func(fn))
	if got := last[r]; got != use {
		t.Fatalf("expected last use inside the loop at %d, got %d", use, got)
	}
}

func TestComputeLastUsesSeesCallRefArguments(t *testing.T) {
	b := ir.NewBuilder()
	fn := b.NewFunc("ref_arg")
	x := b.NewBinding("x", typefacts.NoTypeID, false)

	decl := b.Declare(x, true)
	borrow, r := b.BorrowShared("r", x)
	use := b.UseRef(r)
	call := b.Call("print", false, ir.Arg{Ref: r, Mode: ir.PassByShared})
	b.SetBody(fn, []ir.StmtID{decl, borrow, use, call})

	last := computeLastUses(b.Program(), b.Program().Func(fn))
	if got := last[r]; got != call {
		t.Fatalf("expected last use at the call %d, got %d", call, got)
	}
}

func TestBodyRespawns(t *testing.T) {
	b := ir.NewBuilder()
	inner := b.Spawn(nil)
	use := b.UseBinding(ir.NoBindingID)
	loop := b.Loop(inner)

	if !bodyRespawns(b.Program(), []ir.StmtID{loop}) {
		t.Fatalf("nested spawn inside a loop must be detected")
	}
	if bodyRespawns(b.Program(), []ir.StmtID{use}) {
		t.Fatalf("plain statements must not count as respawn")
	}
}
