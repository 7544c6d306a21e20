package borrowck

import (
	"oxcheck/internal/ir"
)

// computeLastUses finds, per reference, the last statement that dereferences
// it anywhere in the function, including nested loop and spawn bodies. The
// forward checker expires a borrow right after that statement, so its live
// range ends at the last syntactic use rather than at lexical scope exit.
// A reference that is never dereferenced expires at its own borrow statement.
func computeLastUses(program *ir.Program, fn *ir.Func) map[ir.RefID]ir.StmtID {
	last := make(map[ir.RefID]ir.StmtID)
	if program == nil || fn == nil {
		return last
	}
	walkStmts(program, fn.Body, func(id ir.StmtID, stmt *ir.Stmt) {
		switch stmt.Kind {
		case ir.StmtBorrowShared, ir.StmtBorrowExclusive:
			// Creation opens the range; without later uses it also closes it.
			if stmt.Ref.IsValid() {
				last[stmt.Ref] = id
			}
		case ir.StmtUseRef:
			if stmt.Ref.IsValid() {
				last[stmt.Ref] = id
			}
		case ir.StmtCall:
			for _, arg := range stmt.Args {
				if arg.Ref.IsValid() {
					last[arg.Ref] = id
				}
			}
		}
	})
	return last
}

// walkStmts visits a statement list in program order, descending into loop
// and spawn bodies.
func walkStmts(program *ir.Program, body []ir.StmtID, visit func(ir.StmtID, *ir.Stmt)) {
	for _, id := range body {
		stmt := program.Stmt(id)
		if stmt == nil {
			continue
		}
		visit(id, stmt)
		if len(stmt.Body) > 0 {
			walkStmts(program, stmt.Body, visit)
		}
	}
}

// bodyRespawns reports whether the statement list contains a nested spawn.
func bodyRespawns(program *ir.Program, body []ir.StmtID) bool {
	found := false
	walkStmts(program, body, func(_ ir.StmtID, stmt *ir.Stmt) {
		if stmt.Kind == ir.StmtSpawn {
			found = true
		}
	})
	return found
}
