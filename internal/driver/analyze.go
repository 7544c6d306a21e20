package driver

import (
	"context"
	"fmt"
	"runtime"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"oxcheck/internal/borrowck"
	"oxcheck/internal/diag"
	"oxcheck/internal/ir"
	"oxcheck/internal/typefacts"
)

// FuncResult содержит результат анализа одной функции
type FuncResult struct {
	Func    ir.FuncID             // ID функции в Program
	Name    string                // Имя функции
	Bag     *diag.Bag             // Диагностики
	Events  []borrowck.Event      // Журнал borrow-событий (опционально)
	Borrows []borrowck.BorrowInfo
}

// AnalysisResult aggregates every function's outcome plus the merged bag.
type AnalysisResult struct {
	Funcs []FuncResult
	// Bag holds all diagnostics merged in function order, then sorted:
	// within a function the order is traversal order, across functions the
	// order is function index, matching the determinism contract.
	Bag *diag.Bag
}

// AnalyzeProgram checks every function of the program. Functions are
// independent (each checker owns its stores; the facts table is read-only),
// so they are distributed over jobs parallel workers. Zero jobs means
// GOMAXPROCS.
func AnalyzeProgram(ctx context.Context, program *ir.Program, facts *typefacts.Table, opts borrowck.Options, jobs int) (*AnalysisResult, error) {
	count := program.NumFuncs()
	if count == 0 {
		return &AnalysisResult{Bag: diag.NewBag(opts.MaxDiagnostics)}, nil
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FuncResult, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, count))

	for i := 0; i < count; i++ {
		g.Go(func(i int) func() error {
			return func() error {
				// Проверка отмены
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				value, err := safecast.Conv[uint32](i + 1)
				if err != nil {
					panic(fmt.Errorf("func index overflow: %w", err))
				}
				fn := ir.FuncID(value)

				res := borrowck.CheckFunc(program, fn, facts, opts)

				// Сохраняем результат (мьютекс не нужен — индекс i уникален)
				results[i] = FuncResult{
					Func:    fn,
					Name:    program.FuncName(fn),
					Bag:     res.Bag,
					Events:  res.Events,
					Borrows: res.Borrows,
				}
				return nil
			}
		}(i))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := diag.NewBag(mergedCap(results, opts.MaxDiagnostics))
	for i := range results {
		merged.Merge(results[i].Bag)
	}
	merged.Sort()

	return &AnalysisResult{Funcs: results, Bag: merged}, nil
}

func mergedCap(results []FuncResult, perFunc int) int {
	total := 0
	for i := range results {
		if results[i].Bag != nil {
			total += results[i].Bag.Len()
		}
	}
	if total < perFunc {
		return perFunc
	}
	return total
}
