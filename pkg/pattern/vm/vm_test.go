package vm_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/gitrdm/envpattern/pkg/envelope"
	"github.com/gitrdm/envpattern/pkg/pattern"
	"github.com/gitrdm/envpattern/pkg/pattern/compiler"
	"github.com/gitrdm/envpattern/pkg/pattern/vm"
	"github.com/stretchr/testify/require"
)

func leaf(t *testing.T, v any) *envelope.Envelope {
	t.Helper()
	lv, err := envelope.NewLeafValue(v)
	require.NoError(t, err)
	return envelope.NewLeaf(lv)
}

func TestRunMatchesAtomicLeaf(t *testing.T) {
	e := leaf(t, "Bob")
	prog, err := compiler.Compile(pattern.TextExact("Bob"))
	require.NoError(t, err)

	res, err := vm.Run(prog, e, nil, vm.Options{})
	require.NoError(t, err)
	require.Len(t, res.Paths, 1)
	require.False(t, res.Truncated)
}

func TestRunCaptureRecordsOneBindingPerMatch(t *testing.T) {
	subj := leaf(t, "subject")
	pred1 := leaf(t, "p1")
	pred2 := leaf(t, "p2")
	obj1 := leaf(t, "first")
	obj2 := leaf(t, "second")

	a1, err := envelope.NewAssertion(pred1, obj1)
	require.NoError(t, err)
	a2, err := envelope.NewAssertion(pred2, obj2)
	require.NoError(t, err)
	n, err := envelope.NewNode(subj, a1, a2)
	require.NoError(t, err)

	capObj, err := pattern.Capture("object", pattern.Any())
	require.NoError(t, err)
	p := pattern.Assertions(pattern.Object(capObj))

	prog, err := compiler.Compile(p)
	require.NoError(t, err)
	res, err := vm.Run(prog, n, nil, vm.Options{})
	require.NoError(t, err)
	require.Len(t, res.Paths, 2)
	for _, caps := range res.Captures {
		require.Len(t, caps, 1)
		require.Equal(t, "object", caps[0].Name)
	}
}

func TestRunBudgetTruncates(t *testing.T) {
	subj := leaf(t, "subject")
	pred := leaf(t, "pred")
	obj := leaf(t, "obj")
	a, err := envelope.NewAssertion(pred, obj)
	require.NoError(t, err)
	n, err := envelope.NewNode(subj, a)
	require.NoError(t, err)

	prog, err := compiler.Compile(pattern.Search(pattern.Any()))
	require.NoError(t, err)

	res, err := vm.Run(prog, n, nil, vm.Options{Budget: 1})
	require.NoError(t, err)
	require.True(t, res.Truncated)
}

func TestRunDeduplicatesByDigestSequence(t *testing.T) {
	e := leaf(t, "x")
	or, err := pattern.Or(pattern.Any(), pattern.Any())
	require.NoError(t, err)
	prog, err := compiler.Compile(or)
	require.NoError(t, err)

	res, err := vm.Run(prog, e, nil, vm.Options{})
	require.NoError(t, err)
	require.Len(t, res.Paths, 1)

	raw, err := vm.Run(prog, e, nil, vm.Options{Raw: true})
	require.NoError(t, err)
	require.Len(t, raw.Paths, 2)
}

func TestRunTracerInvokedPerInstruction(t *testing.T) {
	e := leaf(t, "x")
	prog, err := compiler.Compile(pattern.Any())
	require.NoError(t, err)

	var steps int
	_, err = vm.Run(prog, e, nil, vm.Options{Tracer: func(step int, pc int, op compiler.Op) {
		steps++
	}})
	require.NoError(t, err)
	require.Equal(t, len(prog.Code), steps)
}

func TestRunLoggerEmitsMatchAndForkEvents(t *testing.T) {
	subj := leaf(t, "subject")
	pred := leaf(t, "pred")
	obj := leaf(t, "obj")
	a, err := envelope.NewAssertion(pred, obj)
	require.NoError(t, err)
	n, err := envelope.NewNode(subj, a)
	require.NoError(t, err)

	prog, err := compiler.Compile(pattern.Assertions(pattern.Any()))
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	res, err := vm.Run(prog, n, nil, vm.Options{Logger: logger})
	require.NoError(t, err)
	require.Len(t, res.Paths, 1)
	require.Contains(t, buf.String(), "vm fork")
	require.Contains(t, buf.String(), "vm match")
}

func TestRunBoundedRepeatWithCapture(t *testing.T) {
	// Repeat(Capture("hop", Wrapped::Unwrap), 1, 2, Greedy) over a
	// doubly wrapped leaf — exercises the Split/Jump-compiled Repeat
	// with a nested Capture, which a pure OpEval delegation could never
	// support.
	inner := leaf(t, "x")
	w1, err := envelope.NewWrapped(inner)
	require.NoError(t, err)
	w2, err := envelope.NewWrapped(w1)
	require.NoError(t, err)

	cap, err := pattern.Capture("hop", pattern.Wrapped(nil))
	require.NoError(t, err)
	rep, err := pattern.Repeat(cap, 1, 2, pattern.Greedy)
	require.NoError(t, err)

	prog, err := compiler.Compile(rep)
	require.NoError(t, err)

	res, err := vm.Run(prog, w2, nil, vm.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, res.Paths)
	require.NotEmpty(t, res.Captures[0])
}
