package ir

import "oxcheck/internal/typefacts"

// Binding is a named storage slot declared inside a function.
type Binding struct {
	Name    string           `msgpack:"name"`
	Type    typefacts.TypeID `msgpack:"type"`
	Mutable bool             `msgpack:"mutable,omitempty"`
}

// Ref is the metadata of a reference produced by a borrow statement.
type Ref struct {
	Name   string    `msgpack:"name"`
	Target BindingID `msgpack:"target"`
}

// Func is one analyzable unit: an ordered top-level statement list.
// Nested scope, loop and spawn bodies hang off their statements.
type Func struct {
	Name string   `msgpack:"name"`
	Body []StmtID `msgpack:"body"`
}

// Program is the arena-backed representation handed over by the front end.
// All ids are 1-based indexes into the flat slices; slot 0 is the sentinel.
type Program struct {
	Funcs    []Func    `msgpack:"funcs"`
	Stmts    []Stmt    `msgpack:"stmts"`
	Bindings []Binding `msgpack:"bindings"`
	Refs     []Ref     `msgpack:"refs"`
}

// NewProgram builds an empty program with the sentinel slots reserved.
func NewProgram() *Program {
	return &Program{
		Funcs:    []Func{{}},
		Stmts:    []Stmt{{}},
		Bindings: []Binding{{}},
		Refs:     []Ref{{}},
	}
}

// Func returns the function for id, or nil for the sentinel or out-of-range ids.
func (p *Program) Func(id FuncID) *Func {
	if p == nil || !id.IsValid() || int(id) >= len(p.Funcs) {
		return nil
	}
	return &p.Funcs[id]
}

// Stmt returns the statement for id, or nil.
func (p *Program) Stmt(id StmtID) *Stmt {
	if p == nil || !id.IsValid() || int(id) >= len(p.Stmts) {
		return nil
	}
	return &p.Stmts[id]
}

// Binding returns the binding for id, or nil.
func (p *Program) Binding(id BindingID) *Binding {
	if p == nil || !id.IsValid() || int(id) >= len(p.Bindings) {
		return nil
	}
	return &p.Bindings[id]
}

// Ref returns the reference metadata for id, or nil.
func (p *Program) Ref(id RefID) *Ref {
	if p == nil || !id.IsValid() || int(id) >= len(p.Refs) {
		return nil
	}
	return &p.Refs[id]
}

// BindingName resolves a display name, tolerating invalid ids.
func (p *Program) BindingName(id BindingID) string {
	if b := p.Binding(id); b != nil && b.Name != "" {
		return b.Name
	}
	return "_"
}

// RefName resolves a display name, tolerating invalid ids.
func (p *Program) RefName(id RefID) string {
	if r := p.Ref(id); r != nil && r.Name != "" {
		return r.Name
	}
	return "_"
}

// FuncName resolves a display name, tolerating invalid ids.
func (p *Program) FuncName(id FuncID) string {
	if f := p.Func(id); f != nil && f.Name != "" {
		return f.Name
	}
	return "_"
}

// NumFuncs returns the function count, excluding the sentinel.
func (p *Program) NumFuncs() int {
	if p == nil || len(p.Funcs) == 0 {
		return 0
	}
	return len(p.Funcs) - 1
}

// NumBindings returns the binding count, excluding the sentinel.
func (p *Program) NumBindings() int {
	if p == nil || len(p.Bindings) == 0 {
		return 0
	}
	return len(p.Bindings) - 1
}

// NumRefs returns the reference count, excluding the sentinel.
func (p *Program) NumRefs() int {
	if p == nil || len(p.Refs) == 0 {
		return 0
	}
	return len(p.Refs) - 1
}
