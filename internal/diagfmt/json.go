package diagfmt

import (
	"encoding/json"
	"io"

	"oxcheck/internal/diag"
	"oxcheck/internal/ir"
)

// LocationJSON представляет позицию в программе для JSON
type LocationJSON struct {
	Func   string `json:"func"`
	FuncID uint32 `json:"func_id"`
	Stmt   uint32 `json:"stmt"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет одну диагностику для JSON
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	CodeNum  uint16       `json:"code_num"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Binding  string       `json:"binding,omitempty"`
	Ref      string       `json:"ref,omitempty"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// ReportJSON is the top-level payload of the json output format.
type ReportJSON struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
}

// JSON сериализует отсортированный bag в стабильный JSON-отчёт.
func JSON(w io.Writer, bag *diag.Bag, program *ir.Program) error {
	report := ReportJSON{Diagnostics: make([]DiagnosticJSON, 0, bag.Len())}
	for _, d := range bag.Items() {
		entry := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			CodeNum:  uint16(d.Code),
			Message:  d.Message,
			Location: locationJSON(program, d.Primary),
		}
		if d.Binding.IsValid() {
			entry.Binding = program.BindingName(d.Binding)
		}
		if d.Ref.IsValid() {
			entry.Ref = program.RefName(d.Ref)
		}
		for _, note := range d.Notes {
			entry.Notes = append(entry.Notes, NoteJSON{
				Message:  note.Msg,
				Location: locationJSON(program, note.Pos),
			})
		}
		switch d.Severity {
		case diag.SevError:
			report.Errors++
		case diag.SevWarning:
			report.Warnings++
		}
		report.Diagnostics = append(report.Diagnostics, entry)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func locationJSON(program *ir.Program, pos ir.Pos) LocationJSON {
	return LocationJSON{
		Func:   program.FuncName(pos.Func),
		FuncID: uint32(pos.Func),
		Stmt:   uint32(pos.Stmt),
	}
}
