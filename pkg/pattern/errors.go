package pattern

import "errors"

// Pattern build errors, reported immediately at construction.
var (
	ErrInvalidRange      = errors.New("pattern: invalid range")
	ErrEmptyCombinator   = errors.New("pattern: And/Or require at least one sub-pattern")
	ErrInvalidRepeat     = errors.New("pattern: Repeat.max must be >= Repeat.min")
	ErrNegativeRepeatMin = errors.New("pattern: Repeat.min must be >= 0")
	ErrEmptyCaptureName  = errors.New("pattern: Capture requires a non-empty name")
)
