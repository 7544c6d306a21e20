package borrowck

import (
	"testing"

	"oxcheck/internal/diag"
	"oxcheck/internal/ir"
	"oxcheck/internal/typefacts"
)

// testTypes bundles the handful of type shapes the scenarios need.
type testTypes struct {
	Table *typefacts.Table
	Int   typefacts.TypeID // Copy, Send, Share
	Str   typefacts.TypeID // Send, Share
	Vec   typefacts.TypeID // Send, Share
	Rc    typefacts.TypeID // non-atomic sharing: neither Send nor Share
	Arc   typefacts.TypeID // atomic sharing: Send and Share
	Cell  typefacts.TypeID // Send, not Share
}

func newTestTypes() testTypes {
	table := typefacts.NewTable()
	intID := table.Scalar("Int", typefacts.Facts{Copy: true, SendSafe: true, ShareSafe: true})
	strID := table.Scalar("String", typefacts.Facts{SendSafe: true, ShareSafe: true})
	vecID := table.Scalar("Vec", typefacts.Facts{SendSafe: true, ShareSafe: true})
	cellID := table.Scalar("Cell", typefacts.Facts{SendSafe: true})
	return testTypes{
		Table: table,
		Int:   intID,
		Str:   strID,
		Vec:   vecID,
		Rc:    table.SharedNonAtomic("Rc", strID),
		Arc:   table.SharedAtomic("Arc", strID),
		Cell:  cellID,
	}
}

func runCheck(t *testing.T, b *ir.Builder, fn ir.FuncID, types testTypes) []diag.Diagnostic {
	t.Helper()
	res := CheckFunc(b.Program(), fn, types.Table, DefaultOptions())
	return res.Bag.Items()
}

func runCheckOpts(t *testing.T, b *ir.Builder, fn ir.FuncID, types testTypes, opts Options) *Result {
	t.Helper()
	return CheckFunc(b.Program(), fn, types.Table, opts)
}

func hasCode(diags []diag.Diagnostic, code diag.Code) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func diagCodes(diags []diag.Diagnostic) []diag.Code {
	codes := make([]diag.Code, 0, len(diags))
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	return codes
}
