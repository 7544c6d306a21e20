package ir

import (
	"fmt"

	"fortio.org/safecast"

	"oxcheck/internal/typefacts"
)

// Builder assembles a Program arena by arena. Front ends and tests create
// statements first, then attach them to function or nested bodies; the
// builder never validates shapes (that is the front end's contract).
type Builder struct {
	program *Program
}

// NewBuilder starts a fresh program.
func NewBuilder() *Builder {
	return &Builder{program: NewProgram()}
}

// Program returns the assembled arena.
func (b *Builder) Program() *Program {
	return b.program
}

func (b *Builder) newFuncID() FuncID {
	value, err := safecast.Conv[uint32](len(b.program.Funcs))
	if err != nil {
		panic(fmt.Errorf("func arena overflow: %w", err))
	}
	return FuncID(value)
}

func (b *Builder) newStmtID() StmtID {
	value, err := safecast.Conv[uint32](len(b.program.Stmts))
	if err != nil {
		panic(fmt.Errorf("stmt arena overflow: %w", err))
	}
	return StmtID(value)
}

func (b *Builder) newBindingID() BindingID {
	value, err := safecast.Conv[uint32](len(b.program.Bindings))
	if err != nil {
		panic(fmt.Errorf("binding arena overflow: %w", err))
	}
	return BindingID(value)
}

func (b *Builder) newRefID() RefID {
	value, err := safecast.Conv[uint32](len(b.program.Refs))
	if err != nil {
		panic(fmt.Errorf("ref arena overflow: %w", err))
	}
	return RefID(value)
}

// NewFunc registers an empty function; attach its body with SetBody.
func (b *Builder) NewFunc(name string) FuncID {
	id := b.newFuncID()
	b.program.Funcs = append(b.program.Funcs, Func{Name: name})
	return id
}

// SetBody attaches the top-level statement list of a function.
func (b *Builder) SetBody(fn FuncID, body []StmtID) {
	if f := b.program.Func(fn); f != nil {
		f.Body = body
	}
}

// NewBinding registers a named slot of the given type.
func (b *Builder) NewBinding(name string, typ typefacts.TypeID, mutable bool) BindingID {
	id := b.newBindingID()
	b.program.Bindings = append(b.program.Bindings, Binding{Name: name, Type: typ, Mutable: mutable})
	return id
}

func (b *Builder) push(s Stmt) StmtID {
	id := b.newStmtID()
	b.program.Stmts = append(b.program.Stmts, s)
	return id
}

// Declare creates a declaration statement; hasInit marks an initializer.
func (b *Builder) Declare(binding BindingID, hasInit bool) StmtID {
	return b.push(Stmt{Kind: StmtDeclare, Binding: binding, HasInit: hasInit})
}

// Assign creates an assignment to an existing binding.
func (b *Builder) Assign(binding BindingID) StmtID {
	return b.push(Stmt{Kind: StmtAssign, Binding: binding})
}

// Move creates an ownership transfer from src into dst.
func (b *Builder) Move(src, dst BindingID) StmtID {
	return b.push(Stmt{Kind: StmtMove, Src: src, Dst: dst})
}

// BorrowShared creates a shared borrow of binding and returns the statement
// together with the fresh reference id it produces.
func (b *Builder) BorrowShared(name string, binding BindingID) (StmtID, RefID) {
	ref := b.newRefID()
	b.program.Refs = append(b.program.Refs, Ref{Name: name, Target: binding})
	return b.push(Stmt{Kind: StmtBorrowShared, Binding: binding, Ref: ref}), ref
}

// BorrowExclusive creates an exclusive borrow of binding.
func (b *Builder) BorrowExclusive(name string, binding BindingID) (StmtID, RefID) {
	ref := b.newRefID()
	b.program.Refs = append(b.program.Refs, Ref{Name: name, Target: binding})
	return b.push(Stmt{Kind: StmtBorrowExclusive, Binding: binding, Ref: ref}), ref
}

// UseRef creates a dereference of ref.
func (b *Builder) UseRef(ref RefID) StmtID {
	return b.push(Stmt{Kind: StmtUseRef, Ref: ref})
}

// UseBinding creates a direct read of binding.
func (b *Builder) UseBinding(binding BindingID) StmtID {
	return b.push(Stmt{Kind: StmtUseBinding, Binding: binding})
}

// Call creates a call statement. Set mutating for container-mutating callees.
func (b *Builder) Call(callee string, mutating bool, args ...Arg) StmtID {
	return b.push(Stmt{Kind: StmtCall, Callee: callee, Mutating: mutating, Args: args})
}

// Spawn creates a thread spawn with the given capture record and body.
func (b *Builder) Spawn(captures []Capture, body ...StmtID) StmtID {
	return b.push(Stmt{Kind: StmtSpawn, Captures: captures, Body: body})
}

// EnterScope opens a lexical scope.
func (b *Builder) EnterScope() StmtID {
	return b.push(Stmt{Kind: StmtEnterScope})
}

// ExitScope closes the innermost lexical scope.
func (b *Builder) ExitScope() StmtID {
	return b.push(Stmt{Kind: StmtExitScope})
}

// Loop creates a loop node over body.
func (b *Builder) Loop(body ...StmtID) StmtID {
	return b.push(Stmt{Kind: StmtLoop, Body: body})
}
