package pattern

import "fmt"

// AnyPattern matches any envelope whatsoever.
type AnyPattern struct{}

func Any() AnyPattern         { return AnyPattern{} }
func (p AnyPattern) Kind() Kind { return KindAny }

// NonePattern matches no envelope. Useful as an Or identity and in
// tests.
type NonePattern struct{}

func None() NonePattern        { return NonePattern{} }
func (p NonePattern) Kind() Kind { return KindNone }

// NotPattern negates Inner: matches iff Inner does not match the current
// envelope. Never descends — Not is evaluated atomically.
type NotPattern struct {
	Inner Pattern
}

// Not wraps inner in negation. inner must not itself require VM
// execution (a Capture) — Not is evaluated atomically by the
// interpreter, which cannot record capture bindings, so the compiler
// rejects a Capture inside it (as it does inside And and unbounded or
// Possessive Repeat).
func Not(inner Pattern) NotPattern { return NotPattern{Inner: inner} }
func (p NotPattern) Kind() Kind    { return KindNot }

// AndPattern matches iff every sub-pattern matches the current envelope.
// Evaluated atomically: emits at most the single current path, never a
// cross product.
type AndPattern struct {
	Patterns []Pattern
}

// And requires at least one sub-pattern.
func And(patterns ...Pattern) (AndPattern, error) {
	if len(patterns) == 0 {
		return AndPattern{}, fmt.Errorf("pattern: And(): %w", ErrEmptyCombinator)
	}
	return AndPattern{Patterns: patterns}, nil
}
func (p AndPattern) Kind() Kind { return KindAnd }

// OrPattern matches if any sub-pattern matches, emitting one path per
// matching alternative in declaration order — unlike And/Not, Or is
// never atomic: the compiler always forks genuine VM threads, one per
// alternative.
type OrPattern struct {
	Patterns []Pattern
}

// Or requires at least one sub-pattern.
func Or(patterns ...Pattern) (OrPattern, error) {
	if len(patterns) == 0 {
		return OrPattern{}, fmt.Errorf("pattern: Or(): %w", ErrEmptyCombinator)
	}
	return OrPattern{Patterns: patterns}, nil
}
func (p OrPattern) Kind() Kind { return KindOr }

// SequencePattern matches its sub-patterns in order, left to right: the
// first is matched at the current envelope, and each later one is
// matched at the tip of every path the previous one produced, extending
// that path. An empty Sequence matches like Any.
type SequencePattern struct {
	Patterns []Pattern
}

func Sequence(patterns ...Pattern) SequencePattern {
	return SequencePattern{Patterns: patterns}
}
func (p SequencePattern) Kind() Kind { return KindSequence }

// Greediness selects a Repeat's iteration-count resolution strategy.
type Greediness int

const (
	// Greedy tries the maximum iteration count first, backing off on
	// failure.
	Greedy Greediness = iota
	// Lazy tries the minimum iteration count first, extending on
	// failure.
	Lazy
	// Possessive commits to the maximum count greedily reachable with no
	// backtracking once chosen.
	Possessive
)

func (g Greediness) String() string {
	switch g {
	case Greedy:
		return "Greedy"
	case Lazy:
		return "Lazy"
	case Possessive:
		return "Possessive"
	default:
		return "Unknown"
	}
}

// RepeatPattern applies Sub between Min and Max times (inclusive). Max <
// 0 means unbounded.
type RepeatPattern struct {
	Sub        Pattern
	Min, Max   int
	Greediness Greediness
}

// Repeat validates min >= 0 and (max < 0 or max >= min).
func Repeat(sub Pattern, min, max int, greediness Greediness) (RepeatPattern, error) {
	if min < 0 {
		return RepeatPattern{}, fmt.Errorf("pattern: Repeat(min=%d): %w", min, ErrNegativeRepeatMin)
	}
	if max >= 0 && max < min {
		return RepeatPattern{}, fmt.Errorf("pattern: Repeat(min=%d, max=%d): %w", min, max, ErrInvalidRepeat)
	}
	return RepeatPattern{Sub: sub, Min: min, Max: max, Greediness: greediness}, nil
}
func (p RepeatPattern) Kind() Kind { return KindRepeat }

// SearchPattern matches Inner against every descendant of the current
// envelope, in pre-order, emitting one path per matching descendant.
type SearchPattern struct {
	Inner Pattern
}

// Search builds a SearchPattern; a nil inner (matching everything, at
// every node) is normalized to Any, the same nil-handling Subject and
// friends apply.
func Search(inner Pattern) SearchPattern { return SearchPattern{Inner: orAny(inner)} }
func (p SearchPattern) Kind() Kind       { return KindSearch }

// CapturePattern binds the current envelope (or Inner's match result, if
// Inner is non-nil) to Name whenever it matches. Capture always requires
// VM execution — the interpreter rejects any pattern containing one.
type CapturePattern struct {
	Name  string
	Inner Pattern
}

// Capture requires a non-empty name.
func Capture(name string, inner Pattern) (CapturePattern, error) {
	if name == "" {
		return CapturePattern{}, fmt.Errorf("pattern: Capture(): %w", ErrEmptyCaptureName)
	}
	return CapturePattern{Name: name, Inner: inner}, nil
}
func (p CapturePattern) Kind() Kind { return KindCapture }
