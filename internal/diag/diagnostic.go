package diag

import (
	"oxcheck/internal/ir"
)

type Note struct {
	Pos ir.Pos
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  ir.Pos

	// Binding and Ref name the participants so the external reporter can
	// render "cannot borrow X as mutable more than once at a time".
	Binding ir.BindingID
	Ref     ir.RefID

	Notes []Note
}

func New(sev Severity, code Code, primary ir.Pos, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary ir.Pos, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(pos ir.Pos, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Pos: pos, Msg: msg})
	return d
}

func (d Diagnostic) WithBinding(id ir.BindingID) Diagnostic {
	d.Binding = id
	return d
}

func (d Diagnostic) WithRef(id ir.RefID) Diagnostic {
	d.Ref = id
	return d
}
