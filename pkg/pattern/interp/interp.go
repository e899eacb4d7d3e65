package interp

import (
	"fmt"

	"github.com/gitrdm/envpattern/pkg/envelope"
	"github.com/gitrdm/envpattern/pkg/pattern"
)

// Paths evaluates p against e directly, without compiling to VM code,
// returning every matching path in the order each combinator assigns
// (Or: branch declaration order; Assertions/Search: pre-order traversal
// order). It returns ErrCaptureRequiresVM if p (at any depth) contains a
// Capture.
func Paths(p pattern.Pattern, e *envelope.Envelope, ctx *pattern.MatchContext) ([]pattern.Path, error) {
	if pattern.HasCapture(p) {
		return nil, fmt.Errorf("interp.Paths: %w", ErrCaptureRequiresVM)
	}
	return matchAt(p, e, ctx, pattern.Path{e})
}

// EvalFrom evaluates p starting at cur, with prefix the accumulated path
// from the overall match root down to (but not including) cur. It is the
// entry point the compiled VM uses to delegate atomic-kind patterns
// (package pattern's IsAtomicKind) to this interpreter instead of
// compiling dedicated instructions for them. p must not contain a
// Capture — the VM never delegates a capture-bearing sub-pattern here.
func EvalFrom(p pattern.Pattern, cur *envelope.Envelope, ctx *pattern.MatchContext, prefix pattern.Path) ([]pattern.Path, error) {
	if pattern.HasCapture(p) {
		return nil, fmt.Errorf("interp.EvalFrom: %w", ErrCaptureRequiresVM)
	}
	full := make(pattern.Path, 0, len(prefix)+1)
	full = append(full, prefix...)
	full = append(full, cur)
	return matchAt(p, cur, ctx, full)
}

// Matches reports whether p matches e at all.
func Matches(p pattern.Pattern, e *envelope.Envelope, ctx *pattern.MatchContext) (bool, error) {
	paths, err := Paths(p, e, ctx)
	if err != nil {
		return false, err
	}
	return len(paths) > 0, nil
}

func clonePath(path pattern.Path) pattern.Path {
	out := make(pattern.Path, len(path))
	copy(out, path)
	return out
}

// matchAt matches p against the last envelope of path (== cur), returning
// every resulting path (path extended as p descends).
func matchAt(p pattern.Pattern, cur *envelope.Envelope, ctx *pattern.MatchContext, path pattern.Path) ([]pattern.Path, error) {
	switch v := p.(type) {
	case pattern.AnyPattern:
		return []pattern.Path{clonePath(path)}, nil
	case pattern.NonePattern:
		return nil, nil

	case pattern.BoolPattern:
		lv, ok := cur.Leaf()
		if !ok {
			return nil, nil
		}
		b, err := lv.Bool()
		if err != nil {
			return nil, nil
		}
		if v.Match(b) {
			return []pattern.Path{clonePath(path)}, nil
		}
		return nil, nil

	case pattern.NumberPattern:
		lv, ok := cur.Leaf()
		if !ok {
			return nil, nil
		}
		n, err := lv.Number()
		if err != nil {
			return nil, nil
		}
		if v.Match(n) {
			return []pattern.Path{clonePath(path)}, nil
		}
		return nil, nil

	case pattern.TextPattern:
		lv, ok := cur.Leaf()
		if !ok {
			return nil, nil
		}
		s, err := lv.Text()
		if err != nil {
			return nil, nil
		}
		if v.Match(s) {
			return []pattern.Path{clonePath(path)}, nil
		}
		return nil, nil

	case pattern.ByteStringPattern:
		lv, ok := cur.Leaf()
		if !ok {
			return nil, nil
		}
		b, err := lv.Bytes()
		if err != nil {
			return nil, nil
		}
		if v.Match(b) {
			return []pattern.Path{clonePath(path)}, nil
		}
		return nil, nil

	case pattern.DatePattern:
		lv, ok := cur.Leaf()
		if !ok {
			return nil, nil
		}
		d, err := lv.Date()
		if err != nil {
			return nil, nil
		}
		if v.Match(d) {
			return []pattern.Path{clonePath(path)}, nil
		}
		return nil, nil

	case pattern.KnownValuePattern:
		lv, ok := cur.Leaf()
		if !ok {
			return nil, nil
		}
		kv, err := lv.Known()
		if err != nil {
			return nil, nil
		}
		if v.Match(kv, ctx) {
			return []pattern.Path{clonePath(path)}, nil
		}
		return nil, nil

	case pattern.NullPattern:
		lv, ok := cur.Leaf()
		if !ok {
			return nil, nil
		}
		if _, err := lv.Kind(); err != nil {
			return nil, nil
		}
		kind, _ := lv.Kind()
		if kind == envelope.LeafNull {
			return []pattern.Path{clonePath(path)}, nil
		}
		return nil, nil

	case pattern.TaggedPattern:
		lv, ok := cur.Leaf()
		if !ok {
			return nil, nil
		}
		tagNum, err := lv.TagNumber()
		if err != nil {
			return nil, nil
		}
		if v.Match(tagNum, ctx) {
			return []pattern.Path{clonePath(path)}, nil
		}
		return nil, nil

	case pattern.ArrayPattern:
		lv, ok := cur.Leaf()
		if !ok {
			return nil, nil
		}
		n, err := lv.ArrayLen()
		if err != nil {
			return nil, nil
		}
		if v.MatchCount(n) {
			return []pattern.Path{clonePath(path)}, nil
		}
		return nil, nil

	case pattern.MapPattern:
		lv, ok := cur.Leaf()
		if !ok {
			return nil, nil
		}
		n, err := lv.MapLen()
		if err != nil {
			return nil, nil
		}
		if v.MatchCount(n) {
			return []pattern.Path{clonePath(path)}, nil
		}
		return nil, nil

	case pattern.CBORPattern:
		lv, ok := cur.Leaf()
		if !ok {
			return nil, nil
		}
		if v.Match(lv.Raw()) {
			return []pattern.Path{clonePath(path)}, nil
		}
		return nil, nil

	case pattern.NodePattern:
		if !cur.IsNode() {
			return nil, nil
		}
		if v.MatchCount(len(cur.Assertions())) {
			return []pattern.Path{clonePath(path)}, nil
		}
		return nil, nil

	case pattern.SubjectPattern:
		if !cur.IsNode() {
			return nil, nil
		}
		subj, _ := cur.Subject()
		return matchAt(v.Inner, subj, ctx, append(clonePath(path), subj))

	case pattern.PredicatePattern:
		if !cur.IsAssertion() {
			return nil, nil
		}
		pred, _ := cur.Predicate()
		return matchAt(v.Inner, pred, ctx, append(clonePath(path), pred))

	case pattern.ObjectPattern:
		if !cur.IsAssertion() {
			return nil, nil
		}
		obj, _ := cur.Object()
		return matchAt(v.Inner, obj, ctx, append(clonePath(path), obj))

	case pattern.AssertionsPattern:
		if !cur.IsNode() {
			return nil, nil
		}
		var out []pattern.Path
		for _, a := range cur.Assertions() {
			sub, err := matchAt(v.Inner, a, ctx, append(clonePath(path), a))
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil

	case pattern.WrappedPattern:
		if v.IsAny() {
			if cur.IsWrapped() {
				return []pattern.Path{clonePath(path)}, nil
			}
			return nil, nil
		}
		if !cur.IsWrapped() {
			return nil, nil
		}
		inner, err := cur.Unwrap()
		if err != nil {
			return nil, nil
		}
		return matchAt(v.Inner, inner, ctx, append(clonePath(path), inner))

	case pattern.ObscuredPattern:
		if !cur.IsObscured() {
			return nil, nil
		}
		kind, _ := cur.ObscuredKind()
		if v.Match(kind) {
			return []pattern.Path{clonePath(path)}, nil
		}
		return nil, nil

	case pattern.DigestPattern:
		if v.Match(cur.Digest()) {
			return []pattern.Path{clonePath(path)}, nil
		}
		return nil, nil

	case pattern.NotPattern:
		sub, err := matchAt(v.Inner, cur, ctx, pattern.Path{cur})
		if err != nil {
			return nil, err
		}
		if len(sub) == 0 {
			return []pattern.Path{clonePath(path)}, nil
		}
		return nil, nil

	case pattern.AndPattern:
		for _, s := range v.Patterns {
			sub, err := matchAt(s, cur, ctx, pattern.Path{cur})
			if err != nil {
				return nil, err
			}
			if len(sub) == 0 {
				return nil, nil
			}
		}
		return []pattern.Path{clonePath(path)}, nil

	case pattern.OrPattern:
		var out []pattern.Path
		for _, s := range v.Patterns {
			sub, err := matchAt(s, cur, ctx, clonePath(path))
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil

	case pattern.SearchPattern:
		return matchSearch(v, cur, ctx, path)

	case pattern.SequencePattern:
		return matchSequence(v.Patterns, cur, ctx, path)

	case pattern.RepeatPattern:
		return matchRepeat(v, cur, ctx, path)

	default:
		return nil, fmt.Errorf("interp: unhandled pattern kind %v", p.Kind())
	}
}

// matchSearch visits cur and every descendant in pre-order, matching
// inner atomically at each candidate.
func matchSearch(v pattern.SearchPattern, cur *envelope.Envelope, ctx *pattern.MatchContext, path pattern.Path) ([]pattern.Path, error) {
	var out []pattern.Path
	var walkErr error
	envelope.Walk(cur, func(node *envelope.Envelope, _ envelope.EdgeType, rel []*envelope.Envelope) {
		if walkErr != nil {
			return
		}
		full := make(pattern.Path, 0, len(path)-1+len(rel))
		full = append(full, path[:len(path)-1]...)
		for _, e := range rel {
			full = append(full, e)
		}
		sub, err := matchAt(v.Inner, node, ctx, full)
		if err != nil {
			walkErr = err
			return
		}
		out = append(out, sub...)
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}

// matchSequence folds subs left to right over the current set of
// candidate paths (initially just path), the way spec.md §4.1 defines
// Sequence: each sub-pattern is matched against the tip of every path
// surviving so far, and every result it produces (Object, Subject, and
// friends can themselves descend further than a single step) becomes a
// new candidate path for the next sub-pattern. This fans out to every
// combination the sub-patterns jointly allow, unlike a single
// stream-position backtrack.
func matchSequence(subs []pattern.Pattern, cur *envelope.Envelope, ctx *pattern.MatchContext, path pattern.Path) ([]pattern.Path, error) {
	current := []pattern.Path{clonePath(path)}
	for _, sub := range subs {
		var next []pattern.Path
		for _, p := range current {
			results, err := matchAt(sub, p.Leaf(), ctx, p)
			if err != nil {
				return nil, err
			}
			next = append(next, results...)
		}
		current = next
		if len(current) == 0 {
			return nil, nil
		}
	}
	return current, nil
}

// matchRepeat applies v.Sub between v.Min and v.Max times (inclusive;
// unbounded if v.Max < 0), folding the same way matchSequence does for a
// fixed-length chain: level k holds every path reachable by k successful
// applications of v.Sub in a row. Levels stop advancing once v.Max is
// reached, once a level produces no results, or once a level makes no
// further descent at all (a zero-width Sub, e.g. Repeat(Any(), ...),
// would otherwise fold forever for an unbounded Max). Greediness then
// selects which levels to emit: Possessive keeps only the maximum
// reachable level, Lazy emits the smallest satisfying levels first, and
// Greedy emits the largest first.
func matchRepeat(v pattern.RepeatPattern, cur *envelope.Envelope, ctx *pattern.MatchContext, path pattern.Path) ([]pattern.Path, error) {
	levels := [][]pattern.Path{{clonePath(path)}}

	for v.Max < 0 || len(levels)-1 < v.Max {
		prior := levels[len(levels)-1]
		var next []pattern.Path
		for _, p := range prior {
			results, err := matchAt(v.Sub, p.Leaf(), ctx, p)
			if err != nil {
				return nil, err
			}
			next = append(next, results...)
		}
		if len(next) == 0 {
			break
		}
		if maxPathLen(next) <= maxPathLen(prior) {
			// Sub matched without descending anywhere: every further
			// level would be identical, so stop instead of folding
			// forever, recording that level for every count up to Min
			// so a satisfiable minimum is still met.
			for len(levels)-1 < v.Min {
				levels = append(levels, next)
			}
			break
		}
		levels = append(levels, next)
	}

	maxReached := len(levels) - 1
	if maxReached < v.Min {
		return nil, nil
	}

	switch v.Greediness {
	case pattern.Possessive:
		return levels[maxReached], nil
	case pattern.Lazy:
		var out []pattern.Path
		for k := v.Min; k <= maxReached; k++ {
			out = append(out, levels[k]...)
		}
		return out, nil
	default: // Greedy
		var out []pattern.Path
		for k := maxReached; k >= v.Min; k-- {
			out = append(out, levels[k]...)
		}
		return out, nil
	}
}

func maxPathLen(paths []pattern.Path) int {
	m := 0
	for _, p := range paths {
		if len(p) > m {
			m = len(p)
		}
	}
	return m
}
