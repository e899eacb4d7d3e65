// Package interp implements a direct AST-walking evaluator for the
// pattern algebra (package pattern). It serves two roles: a standalone
// fast path for capture-free patterns, and the atomic evaluator the
// compiled VM delegates to for leaf and structural literal slots, And,
// Not, and repeat resolution — without ever re-entering the VM itself.
package interp

import "errors"

// ErrCaptureRequiresVM is returned by Paths when asked to evaluate a
// pattern containing a Capture: captures are only tracked by the
// compiled VM's Save bookkeeping.
var ErrCaptureRequiresVM = errors.New("interp: pattern containing Capture requires VM execution")
