package borrowck

// Options is the single configuration surface of the analyzer.
type Options struct {
	// CopyTypesExempt keeps Copy-classified bindings in Owned state across
	// moves: a move of a Copy value is a plain read.
	CopyTypesExempt bool

	// LoopIterations is how many times a loop body is traversed while
	// searching for a state fixed point. The minimum (and default) is 2:
	// one pass from the entry state, one from the post-iteration state.
	LoopIterations int

	// MaxDiagnostics caps the per-function diagnostic bag.
	MaxDiagnostics int

	// RecordEvents enables the observational borrow event log.
	RecordEvents bool
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		CopyTypesExempt: true,
		LoopIterations:  2,
		MaxDiagnostics:  100,
	}
}

// normalized clamps out-of-range values instead of failing: configuration
// mistakes must not change what counts as a violation.
func (o Options) normalized() Options {
	if o.LoopIterations < 2 {
		o.LoopIterations = 2
	}
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = 100
	}
	return o
}
