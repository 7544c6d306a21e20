// Package borrowck implements the static ownership and borrow analysis.
//
// One Checker instance covers one function: it owns an ownership table
// (Uninitialized → Owned → Moved/Dropped per binding), a BorrowTable
// (per-binding shared list or single exclusive entry), and a precomputed
// last-use map that ends each borrow's live range at its final dereference
// rather than at lexical scope exit. Thread spawns route through the
// capture-safety layer, which stacks Send/Share type classification on top
// of the ordinary borrow rules.
//
// The checker performs no IO and holds no global state; the driver runs one
// checker per function, in parallel when asked to.
package borrowck
