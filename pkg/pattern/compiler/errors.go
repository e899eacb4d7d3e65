package compiler

import "errors"

// Compile-time errors (spec.md §7).
var (
	// ErrCaptureInDelegatedPattern is returned when a Capture appears
	// inside a sub-pattern the compiler delegates wholesale to the
	// interpreter (And, Not, and any unbounded or Possessive Repeat) —
	// the interpreter has no way to report a capture binding back to the
	// VM's Save bookkeeping. Sequence and bounded non-Possessive Repeat
	// compile to genuine instructions instead, so a Capture nested in
	// either of those reaches the VM directly.
	ErrCaptureInDelegatedPattern = errors.New("compiler: Capture is not permitted inside And/Not/an unbounded-or-Possessive Repeat")

	// ErrUnsupportedPattern is returned for a pattern.Kind the compiler
	// does not recognize — defensive, since the pattern package is
	// closed and every Kind is handled.
	ErrUnsupportedPattern = errors.New("compiler: unsupported pattern kind")
)
