package ir

type (
	// FuncID identifies a function within a Program.
	FuncID uint32
	// StmtID identifies a statement in the program-wide statement arena.
	StmtID uint32
	// BindingID identifies a named storage slot.
	BindingID uint32
	// RefID identifies a reference produced by a borrow statement.
	RefID uint32
)

// Zero sentinels for every arena id.
const (
	NoFuncID    FuncID    = 0
	NoStmtID    StmtID    = 0
	NoBindingID BindingID = 0
	NoRefID     RefID     = 0
)

// IsValid reports whether the id references a real function.
func (id FuncID) IsValid() bool { return id != NoFuncID }

// IsValid reports whether the id references a real statement.
func (id StmtID) IsValid() bool { return id != NoStmtID }

// IsValid reports whether the id references a real binding.
func (id BindingID) IsValid() bool { return id != NoBindingID }

// IsValid reports whether the id references a real reference.
func (id RefID) IsValid() bool { return id != NoRefID }
