package vm

import "errors"

// ErrBudgetExhausted is never returned as an error from Run — a budget
// that runs out simply truncates the result set (RunResult.Truncated)
// rather than failing the whole match, since a partial result is still
// useful. It is exported so callers can check Truncated against a
// sentinel-shaped condition in logs/tests without hardcoding a string.
var ErrBudgetExhausted = errors.New("vm: step budget exhausted before the thread queue drained")
