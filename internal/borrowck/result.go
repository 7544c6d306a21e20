package borrowck

import (
	"oxcheck/internal/diag"
	"oxcheck/internal/ir"
	"oxcheck/internal/typefacts"
)

// Result carries everything one function's analysis produced.
type Result struct {
	Func ir.FuncID
	Bag  *diag.Bag
	// Events is the observational log; empty unless Options.RecordEvents.
	Events []Event
	// Borrows lists every borrow the pass registered, expired or not.
	Borrows []BorrowInfo
}

// CheckFunc analyzes a single function and returns its diagnostics.
// Loop bodies are traversed repeatedly, so the reporter is wrapped in a
// DedupReporter to keep first-iteration findings single.
func CheckFunc(program *ir.Program, fn ir.FuncID, facts *typefacts.Table, opts Options) *Result {
	opts = opts.normalized()
	bag := diag.NewBag(opts.MaxDiagnostics)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	checker := NewChecker(program, fn, facts, opts, reporter)
	checker.Run()
	return &Result{
		Func:    fn,
		Bag:     bag,
		Events:  checker.Events(),
		Borrows: checker.Borrows(),
	}
}
