// Package envpattern is the public façade over the envelope pattern
// engine: compile a pattern.Pattern, then match it against an
// envelope.Envelope via Matches, Paths, or Captures. It lives at the
// module root — rather than nested under pkg/pattern, as a first
// reading of the layout might suggest — because pkg/pattern/compiler,
// pkg/pattern/vm, and pkg/pattern/interp all import pkg/pattern for the
// AST types; a facade composing all four cannot live inside the package
// those three already import without creating an import cycle.
//
// Capture-free patterns run through the direct interpreter (package
// interp) — the cheaper path, since no instruction stream needs
// building. Patterns containing a Capture always compile and run
// through the VM (package vm), the only evaluator that records capture
// bindings.
package envpattern

import (
	"fmt"

	"github.com/gitrdm/envpattern/pkg/envelope"
	"github.com/gitrdm/envpattern/pkg/pattern"
	"github.com/gitrdm/envpattern/pkg/pattern/compiler"
	"github.com/gitrdm/envpattern/pkg/pattern/interp"
	"github.com/gitrdm/envpattern/pkg/pattern/vm"
)

// Program is a compiled pattern, ready for repeated VM execution
// without recompiling.
type Program = compiler.Program

// CompileOption configures Compile.
type CompileOption = compiler.CompileOption

// Compile translates p into a Program. Most callers don't need to call
// this directly — Matches, Paths, and Captures compile internally — but
// a caller matching the same pattern against many envelopes should
// Compile once and drive the VM directly via RunProgram.
func Compile(p pattern.Pattern, opts ...CompileOption) (*Program, error) {
	prog, err := compiler.Compile(p, opts...)
	if err != nil {
		return nil, fmt.Errorf("envpattern: Compile: %w", err)
	}
	return prog, nil
}

// VMOptions configures VM execution, for callers driving a precompiled
// Program directly (RunProgram).
type VMOptions = vm.Options

// RunProgram executes a precompiled Program against e.
func RunProgram(prog *Program, e *envelope.Envelope, ctx *pattern.MatchContext, opts VMOptions) (*vm.RunResult, error) {
	result, err := vm.Run(prog, e, ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("envpattern: RunProgram: %w", err)
	}
	return result, nil
}

// Matches reports whether p matches e, i.e. whether Paths returns at
// least one path. Matching starts at e itself; wrap p in
// pattern.Search to look for a match anywhere beneath e.
func Matches(p pattern.Pattern, e *envelope.Envelope, ctx *pattern.MatchContext) (bool, error) {
	paths, err := Paths(p, e, ctx)
	if err != nil {
		return false, err
	}
	return len(paths) > 0, nil
}

// Paths returns every path p matches in e, in spec order (Or: branch
// declaration order; Assertions/Search: pre-order traversal order),
// de-duplicated by digest sequence.
func Paths(p pattern.Pattern, e *envelope.Envelope, ctx *pattern.MatchContext) ([]pattern.Path, error) {
	if !pattern.HasCapture(p) {
		paths, err := interp.Paths(p, e, ctx)
		if err != nil {
			return nil, fmt.Errorf("envpattern: Paths: %w", err)
		}
		seen := make(map[string]bool, len(paths))
		out := make([]pattern.Path, 0, len(paths))
		for _, path := range paths {
			key := fmt.Sprint(path.Digests())
			if !seen[key] {
				seen[key] = true
				out = append(out, path)
			}
		}
		return out, nil
	}
	prog, err := Compile(p)
	if err != nil {
		return nil, err
	}
	result, err := RunProgram(prog, e, ctx, VMOptions{})
	if err != nil {
		return nil, err
	}
	return result.Paths, nil
}

// Captures returns every capture binding produced by matching p against
// e, across every matching path, in match order. p need not contain a
// Capture — it will simply produce no bindings.
func Captures(p pattern.Pattern, e *envelope.Envelope, ctx *pattern.MatchContext) ([]pattern.CaptureResult, error) {
	prog, err := Compile(p)
	if err != nil {
		return nil, err
	}
	result, err := RunProgram(prog, e, ctx, VMOptions{})
	if err != nil {
		return nil, err
	}
	var out []pattern.CaptureResult
	for _, perMatch := range result.Captures {
		out = append(out, perMatch...)
	}
	return out, nil
}
