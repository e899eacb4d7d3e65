package interp_test

import (
	"regexp"
	"testing"

	"github.com/gitrdm/envpattern/pkg/envelope"
	"github.com/gitrdm/envpattern/pkg/pattern"
	"github.com/gitrdm/envpattern/pkg/pattern/interp"
	"github.com/stretchr/testify/require"
)

func leaf(t *testing.T, v any) *envelope.Envelope {
	t.Helper()
	lv, err := envelope.NewLeafValue(v)
	require.NoError(t, err)
	return envelope.NewLeaf(lv)
}

func assertion(t *testing.T, pred, obj *envelope.Envelope) *envelope.Envelope {
	t.Helper()
	a, err := envelope.NewAssertion(pred, obj)
	require.NoError(t, err)
	return a
}

func node(t *testing.T, subject *envelope.Envelope, assertions ...*envelope.Envelope) *envelope.Envelope {
	t.Helper()
	n, err := envelope.NewNode(subject, assertions...)
	require.NoError(t, err)
	return n
}

func wrapped(t *testing.T, inner *envelope.Envelope) *envelope.Envelope {
	t.Helper()
	w, err := envelope.NewWrapped(inner)
	require.NoError(t, err)
	return w
}

// S1 — exact text leaf.
func TestPathsExactTextLeaf(t *testing.T) {
	e := leaf(t, "Alice")
	paths, err := interp.Paths(pattern.TextExact("Alice"), e, nil)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Equal(t, e.Digest(), paths[0].Leaf().Digest())
}

// S2 — Sequence folding: Assertions(Any) then Object(Text::Exact("Bob"))
// over a node should descend all the way to the object leaf, not stop at
// the assertion.
func TestSequenceFoldsThroughDescentPatterns(t *testing.T) {
	subj := leaf(t, "Alice")
	pred := leaf(t, "knows")
	obj := leaf(t, "Bob")
	a := assertion(t, pred, obj)
	n := node(t, subj, a)

	p := pattern.Sequence(pattern.Assertions(pattern.Any()), pattern.Object(pattern.TextExact("Bob")))
	paths, err := interp.Paths(p, n, nil)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Len(t, paths[0], 3) // node, assertion, object
	require.Equal(t, obj.Digest(), paths[0].Leaf().Digest())
}

// S3 — optional wrapper: Sequence(Repeat(Wrapped::Unwrap,0..1,Greedy),
// Any) matches both the bare leaf and a once-wrapped copy, with the
// wrapped case producing a length-2 path.
func TestOptionalWrapperMatchesBothForms(t *testing.T) {
	inner := leaf(t, "data")
	wrap := wrapped(t, inner)

	once, err := pattern.Repeat(pattern.Wrapped(nil), 0, 1, pattern.Greedy)
	require.NoError(t, err)
	p := pattern.Sequence(once, pattern.Any())

	innerPaths, err := interp.Paths(p, inner, nil)
	require.NoError(t, err)
	require.Len(t, innerPaths, 1)
	require.Len(t, innerPaths[0], 1)

	wrapPaths, err := interp.Paths(p, wrap, nil)
	require.NoError(t, err)
	require.NotEmpty(t, wrapPaths)
	require.Equal(t, 2, len(wrapPaths[0]))
}

// S4 — greedy vs lazy: over a doubly wrapped leaf, Greedy's first result
// unwraps twice; Lazy's first result unwraps once.
func TestGreedyVsLazyOrdering(t *testing.T) {
	e := wrapped(t, wrapped(t, leaf(t, "x")))

	greedy, err := pattern.Repeat(pattern.Wrapped(nil), 1, 10, pattern.Greedy)
	require.NoError(t, err)
	lazy, err := pattern.Repeat(pattern.Wrapped(nil), 1, 10, pattern.Lazy)
	require.NoError(t, err)

	gp := pattern.Sequence(greedy, pattern.Any())
	lp := pattern.Sequence(lazy, pattern.Any())

	gpaths, err := interp.Paths(gp, e, nil)
	require.NoError(t, err)
	require.NotEmpty(t, gpaths)
	require.Equal(t, 3, len(gpaths[0]))

	lpaths, err := interp.Paths(lp, e, nil)
	require.NoError(t, err)
	require.NotEmpty(t, lpaths)
	require.Equal(t, 2, len(lpaths[0]))
}

// S5 — recursive search finds a number anywhere beneath a node.
func TestSearchFindsDescendant(t *testing.T) {
	subj := leaf(t, "subject")
	pred := leaf(t, "predicate")
	obj := leaf(t, 42.0)
	a := assertion(t, pred, obj)
	n := node(t, subj, a)

	paths, err := interp.Paths(pattern.Search(pattern.NumberExact(42)), n, nil)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Equal(t, obj.Digest(), paths[0].Leaf().Digest())
}

// S6 — negation: Not(Text::Exact("Bob")) matches everything else.
func TestNotNegatesInner(t *testing.T) {
	e := leaf(t, "Alice")
	ok, err := interp.Matches(pattern.Not(pattern.TextExact("Bob")), e, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = interp.Matches(pattern.Not(pattern.TextExact("Alice")), e, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPathsRejectsCapture(t *testing.T) {
	cap, err := pattern.Capture("x", pattern.Any())
	require.NoError(t, err)
	_, err = interp.Paths(cap, leaf(t, "x"), nil)
	require.ErrorIs(t, err, interp.ErrCaptureRequiresVM)
}

func TestWrappedAnyDoesNotDescend(t *testing.T) {
	inner := leaf(t, "data")
	wrap := wrapped(t, inner)

	paths, err := interp.Paths(pattern.WrappedAny(), wrap, nil)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Equal(t, wrap.Digest(), paths[0].Leaf().Digest())

	paths, err = interp.Paths(pattern.WrappedAny(), inner, nil)
	require.NoError(t, err)
	require.Empty(t, paths)
}

func TestRepeatPossessiveTakesMaximumOnly(t *testing.T) {
	e := wrapped(t, wrapped(t, leaf(t, "x")))
	possessive, err := pattern.Repeat(pattern.Wrapped(nil), 0, 10, pattern.Possessive)
	require.NoError(t, err)

	paths, err := interp.Paths(possessive, e, nil)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Len(t, paths[0], 3) // root + two unwraps
}

func TestRepeatZeroWidthGuardTerminates(t *testing.T) {
	// Repeat(Any(), 0, -1, Greedy) never descends, so the fold must stop
	// after the first level instead of looping forever.
	e := leaf(t, "x")
	rep, err := pattern.Repeat(pattern.Any(), 0, -1, pattern.Greedy)
	require.NoError(t, err)

	paths, err := interp.Paths(rep, e, nil)
	require.NoError(t, err)
	require.NotEmpty(t, paths)
}

func TestNodePatternMatchesAssertionsCountRange(t *testing.T) {
	subj := leaf(t, "Alice")
	a1 := assertion(t, leaf(t, "knows"), leaf(t, "Bob"))
	a2 := assertion(t, leaf(t, "likes"), leaf(t, "coffee"))
	n := node(t, subj, a1, a2)

	countRange, err := pattern.NodeAssertionsCountRange(1, 2)
	require.NoError(t, err)
	paths, err := interp.Paths(countRange, n, nil)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	tooFew, err := pattern.NodeAssertionsCountRange(3, 5)
	require.NoError(t, err)
	paths, err = interp.Paths(tooFew, n, nil)
	require.NoError(t, err)
	require.Empty(t, paths)

	// Node() (no count constraint) still matches regardless of count.
	paths, err = interp.Paths(pattern.Node(), n, nil)
	require.NoError(t, err)
	require.Len(t, paths, 1)
}

func TestDigestPatternBinaryRegex(t *testing.T) {
	e := leaf(t, "Alice")

	re := regexp.MustCompile(`(?s).`)
	paths, err := interp.Paths(pattern.DigestBinaryRegex(re), e, nil)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	reNone := regexp.MustCompile(`\x00{32}`)
	paths, err = interp.Paths(pattern.DigestBinaryRegex(reNone), e, nil)
	require.NoError(t, err)
	require.Empty(t, paths)
}
