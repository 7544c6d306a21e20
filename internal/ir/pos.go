package ir

import "fmt"

// Pos locates a diagnostic inside a program. The analyzer never sees source
// text, so positions are function plus statement coordinates; the external
// front end maps them back to its own spans.
type Pos struct {
	Func FuncID `msgpack:"func"`
	Stmt StmtID `msgpack:"stmt"`
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Func, p.Stmt)
}

// Before orders positions by function, then by statement arena order.
// Statement ids grow in program order within a function, so this matches
// traversal order.
func (p Pos) Before(other Pos) bool {
	if p.Func != other.Func {
		return p.Func < other.Func
	}
	return p.Stmt < other.Stmt
}
