package diagfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"oxcheck/internal/borrowck"
	"oxcheck/internal/diag"
	"oxcheck/internal/ir"
)

func sampleBag() (*diag.Bag, *ir.Program) {
	b := ir.NewBuilder()
	fn := b.NewFunc("main")
	x := b.NewBinding("x", 0, false)

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.CheckUseAfterMove, ir.Pos{Func: fn, Stmt: 4}, "use of moved value 'x'").
		WithBinding(x).
		WithNote(ir.Pos{Func: fn, Stmt: 3}, "value 'x' moved here"))
	bag.Add(diag.New(diag.SevWarning, diag.CheckInfo, ir.Pos{Func: fn, Stmt: 7}, "informational"))
	bag.Sort()
	return bag, b.Program()
}

func TestPrettyWithoutColor(t *testing.T) {
	bag, program := sampleBag()

	var sb strings.Builder
	Pretty(&sb, bag, program, PrettyOpts{Color: false, WithNotes: true})
	got := sb.String()

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), got)
	}
	if lines[0] != "main:4: ERROR UseAfterMove: use of moved value 'x'" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if lines[1] != "  note main:3: value 'x' moved here" {
		t.Fatalf("unexpected note line %q", lines[1])
	}
	if lines[2] != "main:7: WARNING CheckInfo: informational" {
		t.Fatalf("unexpected warning line %q", lines[2])
	}
	if strings.Contains(got, "\x1b[") {
		t.Fatalf("color disabled yet escape codes present:\n%q", got)
	}
}

func TestPrettyOmitsNotesByDefault(t *testing.T) {
	bag, program := sampleBag()

	var sb strings.Builder
	Pretty(&sb, bag, program, PrettyOpts{})
	if strings.Contains(sb.String(), "note") {
		t.Fatalf("notes must be opt-in:\n%s", sb.String())
	}
}

func TestPrettyEmptyBag(t *testing.T) {
	var sb strings.Builder
	Pretty(&sb, diag.NewBag(1), ir.NewProgram(), PrettyOpts{})
	if sb.Len() != 0 {
		t.Fatalf("empty bag must render nothing, got %q", sb.String())
	}
}

func TestJSONReport(t *testing.T) {
	bag, program := sampleBag()

	var sb strings.Builder
	if err := JSON(&sb, bag, program); err != nil {
		t.Fatalf("json render: %v", err)
	}

	var report ReportJSON
	if err := json.Unmarshal([]byte(sb.String()), &report); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if report.Errors != 1 || report.Warnings != 1 {
		t.Fatalf("expected 1 error and 1 warning, got %d/%d", report.Errors, report.Warnings)
	}
	if len(report.Diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(report.Diagnostics))
	}
	first := report.Diagnostics[0]
	if first.Code != "UseAfterMove" || first.CodeNum != 4002 || first.Binding != "x" {
		t.Fatalf("diagnostic payload malformed: %+v", first)
	}
	if first.Location.Func != "main" || first.Location.Stmt != 4 {
		t.Fatalf("location payload malformed: %+v", first.Location)
	}
	if len(first.Notes) != 1 || first.Notes[0].Location.Stmt != 3 {
		t.Fatalf("note payload malformed: %+v", first.Notes)
	}
}

func TestEventsRendering(t *testing.T) {
	b := ir.NewBuilder()
	fn := b.NewFunc("worker")
	x := b.NewBinding("x", 0, false)

	events := []borrowck.Event{
		{Kind: borrowck.EvBorrowStart, BorrowKind: borrowck.BorrowExclusive, Binding: x, Pos: ir.Pos{Func: fn, Stmt: 2}},
		{Kind: borrowck.EvMove, Binding: x, Pos: ir.Pos{Func: fn, Stmt: 3}, Note: "copy"},
		{Kind: borrowck.EvDrop, Binding: x, Pos: ir.Pos{Func: fn, Stmt: 5}},
	}

	var sb strings.Builder
	Events(&sb, events, b.Program())
	want := strings.Join([]string{
		"worker:2 borrow_start x (exclusive)",
		"worker:3 move x [copy]",
		"worker:5 drop x",
	}, "\n") + "\n"
	if sb.String() != want {
		t.Fatalf("event log mismatch:\n%s\nwant:\n%s", sb.String(), want)
	}
}
