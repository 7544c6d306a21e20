package diag

import (
	"testing"

	"oxcheck/internal/ir"
)

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(10)
	rb := ReportError(BagReporter{Bag: bag}, CheckConflictingBorrow, ir.Pos{Func: 1, Stmt: 2},
		"cannot borrow 'x' as exclusive more than once at a time").
		WithBinding(ir.BindingID(1)).
		WithNote(ir.Pos{Func: 1, Stmt: 1}, "previous exclusive borrow of 'x' occurs here")

	rb.Emit()
	rb.Emit()

	if bag.Len() != 1 {
		t.Fatalf("expected a single emission, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Severity != SevError || d.Code != CheckConflictingBorrow {
		t.Fatalf("unexpected diagnostic %v %s", d.Severity, d.Code)
	}
	if d.Binding != ir.BindingID(1) || len(d.Notes) != 1 {
		t.Fatalf("builder details lost: %+v", d)
	}
}

func TestReportWarningSeverity(t *testing.T) {
	bag := NewBag(1)
	ReportWarning(BagReporter{Bag: bag}, CheckInfo, ir.Pos{Func: 1, Stmt: 1}, "informational").Emit()
	if !bag.HasWarnings() || bag.HasErrors() {
		t.Fatalf("expected a warning without errors")
	}
}
