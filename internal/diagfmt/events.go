package diagfmt

import (
	"fmt"
	"io"

	"oxcheck/internal/borrowck"
	"oxcheck/internal/ir"
)

// Events renders the observational borrow event log, one line per event.
// The log never affects diagnostics; it exists for downstream debugging.
func Events(w io.Writer, events []borrowck.Event, program *ir.Program) {
	for _, ev := range events {
		line := fmt.Sprintf("%s %s", location(program, ev.Pos), ev.Kind)
		if ev.Binding.IsValid() {
			line += " " + program.BindingName(ev.Binding)
		}
		if ev.Kind == borrowck.EvBorrowStart {
			line += " (" + ev.BorrowKind.String() + ")"
		}
		if ev.Note != "" {
			line += " [" + ev.Note + "]"
		}
		fmt.Fprintln(w, line)
	}
}
