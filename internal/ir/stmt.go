package ir

// StmtKind enumerates the statement forms of the intermediate language.
type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	// StmtDeclare introduces a binding, optionally initializing it.
	StmtDeclare
	// StmtAssign writes a fresh value into an already-declared binding.
	StmtAssign
	// StmtMove transfers ownership from Src into Dst.
	StmtMove
	// StmtBorrowShared takes a shared reference to Binding, producing Ref.
	StmtBorrowShared
	// StmtBorrowExclusive takes an exclusive reference to Binding, producing Ref.
	StmtBorrowExclusive
	// StmtUseRef dereferences a previously created reference.
	StmtUseRef
	// StmtUseBinding reads a binding directly.
	StmtUseBinding
	// StmtCall invokes a function with explicit argument pass modes.
	StmtCall
	// StmtSpawn launches Body on another thread with the given captures.
	StmtSpawn
	// StmtEnterScope opens a lexical scope.
	StmtEnterScope
	// StmtExitScope closes the innermost scope.
	StmtExitScope
	// StmtLoop repeats Body; the checker requires a state fixed point.
	StmtLoop
)

func (k StmtKind) String() string {
	switch k {
	case StmtDeclare:
		return "declare"
	case StmtAssign:
		return "assign"
	case StmtMove:
		return "move"
	case StmtBorrowShared:
		return "borrow_shared"
	case StmtBorrowExclusive:
		return "borrow_exclusive"
	case StmtUseRef:
		return "use_ref"
	case StmtUseBinding:
		return "use_binding"
	case StmtCall:
		return "call"
	case StmtSpawn:
		return "spawn"
	case StmtEnterScope:
		return "enter_scope"
	case StmtExitScope:
		return "exit_scope"
	case StmtLoop:
		return "loop"
	default:
		return "invalid"
	}
}

// PassMode describes how a call argument is handed to the callee.
type PassMode uint8

const (
	PassByValue PassMode = iota
	PassByShared
	PassByExclusive
)

func (m PassMode) String() string {
	switch m {
	case PassByValue:
		return "by_value"
	case PassByShared:
		return "by_shared"
	case PassByExclusive:
		return "by_exclusive"
	default:
		return "unknown"
	}
}

// Arg is one call argument: either a binding or a previously created
// reference, never both.
type Arg struct {
	Binding BindingID `msgpack:"binding,omitempty"`
	Ref     RefID     `msgpack:"ref,omitempty"`
	Mode    PassMode  `msgpack:"mode"`
}

// CaptureMode describes how a spawned body binds an outer variable.
type CaptureMode uint8

const (
	CaptureByReference CaptureMode = iota
	CaptureByMove
)

func (m CaptureMode) String() string {
	if m == CaptureByMove {
		return "by_move"
	}
	return "by_reference"
}

// Capture is one entry of a spawn's capture record.
type Capture struct {
	Binding BindingID   `msgpack:"binding"`
	Mode    CaptureMode `msgpack:"mode"`
	// Mutable only applies to by-reference captures: it requests an
	// exclusive borrow instead of a shared one.
	Mutable bool `msgpack:"mutable,omitempty"`
}

// Stmt is one arena slot. Which fields are meaningful depends on Kind;
// unrelated fields stay at their zero sentinel.
type Stmt struct {
	Kind StmtKind `msgpack:"kind"`

	// Binding is the primary operand of declare/assign/borrow/use_binding.
	Binding BindingID `msgpack:"binding,omitempty"`
	// Src and Dst are the move operands.
	Src BindingID `msgpack:"src,omitempty"`
	Dst BindingID `msgpack:"dst,omitempty"`
	// Ref is the reference produced by a borrow or consumed by use_ref.
	Ref RefID `msgpack:"ref,omitempty"`

	// HasInit distinguishes `declare x = ...` from a bare declaration.
	HasInit bool `msgpack:"has_init,omitempty"`

	// Callee and Args describe a call. Mutating marks calls that mutate the
	// container passed as their first argument (e.g. push), which conflicts
	// with live borrows of that container.
	Callee   string `msgpack:"callee,omitempty"`
	Args     []Arg  `msgpack:"args,omitempty"`
	Mutating bool   `msgpack:"mutating,omitempty"`

	// Captures belongs to spawn statements.
	Captures []Capture `msgpack:"captures,omitempty"`

	// Body holds the nested statements of loop and spawn nodes.
	Body []StmtID `msgpack:"body,omitempty"`
}
