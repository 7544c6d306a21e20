// Package diag defines the diagnostic model shared by the analyzer passes.
//
// Diagnostic is the central record: severity, a stable numeric code, a
// human-oriented message, the ir.Pos of the offending statement and the
// binding/reference ids involved, plus optional notes pointing at the
// conflicting operation ("previous borrow here").
//
// Producers emit through the Reporter interface; BagReporter aggregates into
// a Bag which supports sorting, deduplication and merging. Rendering lives in
// internal/diagfmt; this package performs no IO or formatting beyond the
// stable short form used by tests and the CLI short output.
package diag
