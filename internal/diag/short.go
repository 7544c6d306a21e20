package diag

import (
	"fmt"
	"sort"
	"strings"

	"oxcheck/internal/ir"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Func     string
	FuncID   ir.FuncID
	Stmt     ir.StmtID
	Message  string
}

// FormatShortDiagnostics renders diagnostics into a stable,
// single-line-per-entry representation suitable for golden comparisons in
// tests and for the CLI short output. Entries are sorted deterministically
// and returned as a single string (empty when nothing remains).
func FormatShortDiagnostics(diags []Diagnostic, program *ir.Program, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}

	rendered := make([]shortDiagnostic, 0, len(diags))
	for _, d := range diags {
		rendered = append(rendered, shortDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Func:     program.FuncName(d.Primary.Func),
			FuncID:   d.Primary.Func,
			Stmt:     d.Primary.Stmt,
			Message:  d.Message,
		})
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			rendered = append(rendered, shortDiagnostic{
				Severity: "NOTE",
				Code:     d.Code.String(),
				Func:     program.FuncName(note.Pos.Func),
				FuncID:   note.Pos.Func,
				Stmt:     note.Pos.Stmt,
				Message:  note.Msg,
			})
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.FuncID != dj.FuncID {
			return di.FuncID < dj.FuncID
		}
		if di.Stmt != dj.Stmt {
			return di.Stmt < dj.Stmt
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		return di.Code < dj.Code
	})

	var sb strings.Builder
	for _, r := range rendered {
		fmt.Fprintf(&sb, "%s:%d: %s %s: %s\n", r.Func, r.Stmt, r.Severity, r.Code, r.Message)
	}
	return sb.String()
}
