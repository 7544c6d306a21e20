package borrowck

import (
	"oxcheck/internal/ir"
)

// EventKind identifies the type of borrow event recorded during analysis.
type EventKind uint8

const (
	// EvBorrowStart indicates the beginning of a borrow.
	EvBorrowStart EventKind = iota
	// EvBorrowEnd indicates the end of a borrow.
	EvBorrowEnd
	EvMove
	EvWrite
	EvDrop
	EvSpawnEscape
)

func (k EventKind) String() string {
	switch k {
	case EvBorrowStart:
		return "borrow_start"
	case EvBorrowEnd:
		return "borrow_end"
	case EvMove:
		return "move"
	case EvWrite:
		return "write"
	case EvDrop:
		return "drop"
	case EvSpawnEscape:
		return "spawn_escape"
	default:
		return "unknown"
	}
}

// Event is a lightweight log entry produced while borrow checking.
// It is meant for downstream debug/visualization and must not affect diagnostics.
type Event struct {
	Kind EventKind

	// Borrow is the borrow entry associated with this event (when applicable).
	Borrow BorrowID

	// BorrowKind is only meaningful for EvBorrowStart.
	BorrowKind BorrowKind

	// Binding is the binding involved in this event (when applicable),
	// e.g. drop target or spawn-captured variable.
	Binding ir.BindingID

	Pos ir.Pos

	// Issue captures whether this event was blocked by an active borrow.
	Issue       BorrowIssueKind
	IssueBorrow BorrowID

	Note string
}
