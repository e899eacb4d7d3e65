package compiler_test

import (
	"testing"

	"github.com/gitrdm/envpattern/pkg/pattern"
	"github.com/gitrdm/envpattern/pkg/pattern/compiler"
	"github.com/stretchr/testify/require"
)

func TestCompileAtomicLeafEmitsSingleEval(t *testing.T) {
	prog, err := compiler.Compile(pattern.TextExact("Bob"))
	require.NoError(t, err)
	require.Len(t, prog.Code, 2) // Eval, Match
	require.Equal(t, compiler.OpEval, prog.Code[0].Op)
	require.Equal(t, compiler.OpMatch, prog.Code[1].Op)
}

func TestCompileSequenceConcatenatesDirectly(t *testing.T) {
	prog, err := compiler.Compile(pattern.Sequence(pattern.TextExact("a"), pattern.TextExact("b")))
	require.NoError(t, err)
	// Eval("a"), Eval("b"), Match — no extra instructions for the
	// Sequence wrapper itself, since it's a pure concatenation.
	require.Len(t, prog.Code, 3)
	require.Equal(t, compiler.OpEval, prog.Code[0].Op)
	require.Equal(t, compiler.OpEval, prog.Code[1].Op)
	require.Equal(t, compiler.OpMatch, prog.Code[2].Op)
}

func TestCompileCaptureInsideSequenceReachesVM(t *testing.T) {
	cap, err := pattern.Capture("x", pattern.TextExact("Bob"))
	require.NoError(t, err)
	seq := pattern.Sequence(pattern.Any(), cap)

	prog, err := compiler.Compile(seq)
	require.NoError(t, err)

	var hasSaveStart, hasSaveEnd bool
	for _, instr := range prog.Code {
		if instr.Op == compiler.OpSaveStart {
			hasSaveStart = true
		}
		if instr.Op == compiler.OpSaveEnd {
			hasSaveEnd = true
		}
	}
	require.True(t, hasSaveStart)
	require.True(t, hasSaveEnd)
	require.Equal(t, []string{"x"}, prog.CaptureNames)
}

func TestCompileRejectsCaptureInDelegatedAtomicPattern(t *testing.T) {
	cap, err := pattern.Capture("x", pattern.Any())
	require.NoError(t, err)
	// And is always atomic (IsAtomicKind), so a Capture nested directly
	// inside one must be rejected rather than silently dropped.
	and, err := pattern.And(cap, pattern.Any())
	require.NoError(t, err)

	_, err = compiler.Compile(and)
	require.ErrorIs(t, err, compiler.ErrCaptureInDelegatedPattern)
}

func TestCompileBoundedRepeatEmitsSplitChain(t *testing.T) {
	rep, err := pattern.Repeat(pattern.Any(), 1, 3, pattern.Greedy)
	require.NoError(t, err)

	prog, err := compiler.Compile(rep)
	require.NoError(t, err)

	splits := 0
	for _, instr := range prog.Code {
		if instr.Op == compiler.OpSplit {
			splits++
		}
	}
	// 1 mandatory copy + (3-1) optional copies, each optional copy
	// guarded by its own Split.
	require.Equal(t, 2, splits)
}

func TestCompilePossessiveRepeatDelegatesToInterp(t *testing.T) {
	rep, err := pattern.Repeat(pattern.Any(), 1, 3, pattern.Possessive)
	require.NoError(t, err)

	prog, err := compiler.Compile(rep)
	require.NoError(t, err)
	require.Len(t, prog.Code, 2) // Eval, Match — delegated wholesale
	require.Equal(t, compiler.OpEval, prog.Code[0].Op)
}

func TestCompileUnboundedRepeatDelegatesToInterp(t *testing.T) {
	rep, err := pattern.Repeat(pattern.Any(), 0, -1, pattern.Greedy)
	require.NoError(t, err)

	prog, err := compiler.Compile(rep)
	require.NoError(t, err)
	require.Len(t, prog.Code, 2)
	require.Equal(t, compiler.OpEval, prog.Code[0].Op)
}

func TestCompileOrEmitsSplitChainWithSharedExit(t *testing.T) {
	or, err := pattern.Or(pattern.TextExact("a"), pattern.TextExact("b"), pattern.TextExact("c"))
	require.NoError(t, err)

	prog, err := compiler.Compile(or)
	require.NoError(t, err)

	splits := 0
	for _, instr := range prog.Code {
		if instr.Op == compiler.OpSplit {
			splits++
		}
	}
	require.Equal(t, 2, splits) // n-ary Or with 3 branches needs 2 splits
}

func TestCompileWrappedAnyDelegatesWithoutDescent(t *testing.T) {
	prog, err := compiler.Compile(pattern.WrappedAny())
	require.NoError(t, err)
	require.Len(t, prog.Code, 2)
	require.Equal(t, compiler.OpEval, prog.Code[0].Op)
}

func TestCompileWrappedUnwrapEmitsMatchStructure(t *testing.T) {
	prog, err := compiler.Compile(pattern.Wrapped(pattern.Any()))
	require.NoError(t, err)
	require.Equal(t, compiler.OpMatchStructure, prog.Code[0].Op)
	require.Equal(t, compiler.AxisWrapped, prog.Code[0].Axis)
}
