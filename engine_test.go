package envpattern_test

import (
	"testing"

	envpattern "github.com/gitrdm/envpattern"
	"github.com/gitrdm/envpattern/pkg/envelope"
	"github.com/gitrdm/envpattern/pkg/pattern"
	"github.com/stretchr/testify/require"
)

func leaf(t *testing.T, v any) *envelope.Envelope {
	t.Helper()
	lv, err := envelope.NewLeafValue(v)
	require.NoError(t, err)
	return envelope.NewLeaf(lv)
}

func TestMatchesCaptureFreePattern(t *testing.T) {
	e := leaf(t, "Alice")
	ok, err := envpattern.Matches(pattern.TextExact("Alice"), e, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPathsRoutesThroughInterpWithoutCapture(t *testing.T) {
	e := leaf(t, "Alice")
	paths, err := envpattern.Paths(pattern.TextExact("Alice"), e, nil)
	require.NoError(t, err)
	require.Len(t, paths, 1)
}

func TestPathsRoutesThroughVMWithCapture(t *testing.T) {
	e := leaf(t, "Alice")
	cap, err := pattern.Capture("name", pattern.TextExact("Alice"))
	require.NoError(t, err)
	paths, err := envpattern.Paths(cap, e, nil)
	require.NoError(t, err)
	require.Len(t, paths, 1)
}

func TestCapturesReturnsBindings(t *testing.T) {
	subj := leaf(t, "subject")
	pred := leaf(t, "predicate")
	obj := leaf(t, "Bob")
	assertion, err := envelope.NewAssertion(pred, obj)
	require.NoError(t, err)
	node, err := envelope.NewNode(subj, assertion)
	require.NoError(t, err)

	capObj, err := pattern.Capture("object", pattern.TextExact("Bob"))
	require.NoError(t, err)
	p := pattern.Assertions(pattern.Object(capObj))

	caps, err := envpattern.Captures(p, node, nil)
	require.NoError(t, err)
	require.Len(t, caps, 1)
	require.Equal(t, "object", caps[0].Name)
	require.Equal(t, obj.Digest(), caps[0].Path.Leaf().Digest())
}

func TestCapturesOnCaptureFreePatternReturnsNone(t *testing.T) {
	e := leaf(t, "Alice")
	caps, err := envpattern.Captures(pattern.TextExact("Alice"), e, nil)
	require.NoError(t, err)
	require.Empty(t, caps)
}

func TestCompileAndRunProgramDirectly(t *testing.T) {
	e := leaf(t, "Alice")
	prog, err := envpattern.Compile(pattern.TextExact("Alice"))
	require.NoError(t, err)

	res, err := envpattern.RunProgram(prog, e, nil, envpattern.VMOptions{})
	require.NoError(t, err)
	require.Len(t, res.Paths, 1)
}
