package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Ownership/borrow checking (4xxx block)
	CheckInfo                Code = 4000
	CheckUseOfUninitialized  Code = 4001
	CheckUseAfterMove        Code = 4002
	CheckConflictingBorrow   Code = 4003
	CheckMutateWhileBorrowed Code = 4004
	CheckBorrowWhileMoving   Code = 4005
	CheckLoopFixedPoint      Code = 4006
	CheckCrossThreadMove     Code = 4007
	CheckCrossThreadShare    Code = 4008
	CheckExpiredRef          Code = 4009

	// IO / program file errors (9xxx block)
	IOLoadFileError Code = 9001
	IOBadSchema     Code = 9002
)

var codeNames = map[Code]string{
	UnknownCode:              "Unknown",
	CheckInfo:                "CheckInfo",
	CheckUseOfUninitialized:  "UseOfUninitialized",
	CheckUseAfterMove:        "UseAfterMove",
	CheckConflictingBorrow:   "ConflictingBorrow",
	CheckMutateWhileBorrowed: "MutateWhileBorrowed",
	CheckBorrowWhileMoving:   "BorrowWhileMoving",
	CheckLoopFixedPoint:      "LoopFixedPointViolation",
	CheckCrossThreadMove:     "UnsafeCrossThreadMove",
	CheckCrossThreadShare:    "UnsafeCrossThreadShare",
	CheckExpiredRef:          "UseOfExpiredReference",
	IOLoadFileError:          "IOLoadFileError",
	IOBadSchema:              "IOBadSchema",
}

var codeSummaries = map[Code]string{
	CheckUseOfUninitialized:  "a binding was read or borrowed before it was ever initialized",
	CheckUseAfterMove:        "a binding was used after its value moved elsewhere; Moved is terminal",
	CheckConflictingBorrow:   "a new borrow would break the one-exclusive-xor-many-shared rule",
	CheckMutateWhileBorrowed: "a write, move, or container-mutating call hit a binding with live borrows",
	CheckBorrowWhileMoving:   "a move was attempted while borrows of the source were still live",
	CheckLoopFixedPoint:      "the state after one loop iteration is less permissive than at loop entry",
	CheckCrossThreadMove:     "a by-move capture's type cannot be moved into another thread",
	CheckCrossThreadShare:    "a by-reference capture's type cannot be shared with another thread",
	CheckExpiredRef:          "a reference was dereferenced after its live range ended",
}

// String returns the stable display name of the code, e.g. "UseAfterMove".
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", uint16(c))
}

// Summary returns a one-line explanation for the explain command, or "".
func (c Code) Summary() string {
	return codeSummaries[c]
}

// Codes lists every documented check code in ascending numeric order.
func Codes() []Code {
	return []Code{
		CheckUseOfUninitialized,
		CheckUseAfterMove,
		CheckConflictingBorrow,
		CheckMutateWhileBorrowed,
		CheckBorrowWhileMoving,
		CheckLoopFixedPoint,
		CheckCrossThreadMove,
		CheckCrossThreadShare,
		CheckExpiredRef,
	}
}
