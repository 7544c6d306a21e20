package diag

import (
	"strings"
	"testing"

	"oxcheck/internal/ir"
)

func TestBagRespectsLimit(t *testing.T) {
	bag := NewBag(2)
	if !bag.Add(NewError(CheckUseAfterMove, ir.Pos{Func: 1, Stmt: 1}, "one")) {
		t.Fatalf("first add must succeed")
	}
	if !bag.Add(NewError(CheckUseAfterMove, ir.Pos{Func: 1, Stmt: 2}, "two")) {
		t.Fatalf("second add must succeed")
	}
	if bag.Add(NewError(CheckUseAfterMove, ir.Pos{Func: 1, Stmt: 3}, "three")) {
		t.Fatalf("add beyond the cap must be rejected")
	}
	if bag.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", bag.Len())
	}
}

func TestBagSortIsDeterministic(t *testing.T) {
	bag := NewBag(10)
	bag.Add(NewError(CheckConflictingBorrow, ir.Pos{Func: 2, Stmt: 1}, "late func"))
	bag.Add(New(SevWarning, CheckInfo, ir.Pos{Func: 1, Stmt: 5}, "warning"))
	bag.Add(NewError(CheckUseAfterMove, ir.Pos{Func: 1, Stmt: 5}, "error"))
	bag.Add(NewError(CheckUseOfUninitialized, ir.Pos{Func: 1, Stmt: 2}, "early stmt"))
	bag.Sort()

	items := bag.Items()
	if items[0].Code != CheckUseOfUninitialized {
		t.Fatalf("expected the earliest statement first, got %s", items[0].Code)
	}
	// Same position: errors outrank warnings.
	if items[1].Code != CheckUseAfterMove || items[2].Code != CheckInfo {
		t.Fatalf("expected error before warning at the same position, got %s then %s", items[1].Code, items[2].Code)
	}
	if items[3].Code != CheckConflictingBorrow {
		t.Fatalf("expected the later function last, got %s", items[3].Code)
	}
}

func TestBagDedup(t *testing.T) {
	bag := NewBag(10)
	pos := ir.Pos{Func: 1, Stmt: 3}
	bag.Add(NewError(CheckUseAfterMove, pos, "first"))
	bag.Add(NewError(CheckUseAfterMove, pos, "repeat"))
	bag.Add(NewError(CheckUseAfterMove, ir.Pos{Func: 1, Stmt: 4}, "elsewhere"))
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}

func TestBagMergeGrowsCap(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(CheckUseAfterMove, ir.Pos{Func: 1, Stmt: 1}, "a"))
	b := NewBag(1)
	b.Add(NewError(CheckUseAfterMove, ir.Pos{Func: 2, Stmt: 1}, "b"))

	a.Merge(b)
	if a.Len() != 2 {
		t.Fatalf("merge must keep all items, got %d", a.Len())
	}
	if !a.HasErrors() {
		t.Fatalf("merged bag must report errors")
	}
}

func TestDedupReporterSuppressesRepeats(t *testing.T) {
	bag := NewBag(10)
	reporter := NewDedupReporter(BagReporter{Bag: bag})

	d := NewError(CheckUseAfterMove, ir.Pos{Func: 1, Stmt: 3}, "use of moved value 'x'")
	reporter.Report(d)
	reporter.Report(d)
	reporter.Report(NewError(CheckUseAfterMove, ir.Pos{Func: 1, Stmt: 4}, "use of moved value 'x'"))

	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics after dedup, got %d", bag.Len())
	}
}

func TestFormatShortDiagnostics(t *testing.T) {
	b := ir.NewBuilder()
	fn := b.NewFunc("main")

	diags := []Diagnostic{
		NewError(CheckUseAfterMove, ir.Pos{Func: fn, Stmt: 4}, "use of moved value 'word'").
			WithNote(ir.Pos{Func: fn, Stmt: 3}, "value 'word' moved here"),
		NewError(CheckUseOfUninitialized, ir.Pos{Func: fn, Stmt: 2}, "use of possibly-uninitialized binding 'x'"),
	}

	got := FormatShortDiagnostics(diags, b.Program(), true)
	want := strings.Join([]string{
		"main:2: ERROR UseOfUninitialized: use of possibly-uninitialized binding 'x'",
		"main:3: NOTE UseAfterMove: value 'word' moved here",
		"main:4: ERROR UseAfterMove: use of moved value 'word'",
	}, "\n") + "\n"
	if got != want {
		t.Fatalf("short rendering mismatch:\n%s\nwant:\n%s", got, want)
	}

	if got := FormatShortDiagnostics(nil, b.Program(), true); got != "" {
		t.Fatalf("no diagnostics must render empty, got %q", got)
	}
}
