// Package vm executes a compiler.Program against an envelope tree, the
// way a Thompson/Pike regex VM executes compiled Split/Jump/Save
// instructions instead of backtracking over the AST. Threads are
// scheduled depth-first from an explicit LIFO stack (gokando's
// parallel_search.go and stream.go schedule goal resolution the same
// way: a stack of pending alternatives rather than native recursion),
// which gives OpSplit's A-branch scheduling priority over its B-branch.
// A bounded, non-Possessive Repeat compiles to a genuine Split/Jump
// chain (package compiler); unbounded and Possessive repeats still
// delegate wholesale to package interp, which resolves Greedy/Lazy/
// Possessive directly (see DESIGN.md).
package vm

import (
	"fmt"
	"log/slog"

	"github.com/gitrdm/envpattern/pkg/envelope"
	"github.com/gitrdm/envpattern/pkg/pattern"
	"github.com/gitrdm/envpattern/pkg/pattern/compiler"
	"github.com/gitrdm/envpattern/pkg/pattern/interp"
)

// Options configures a single Run.
type Options struct {
	// Budget caps the number of instructions executed across every
	// thread. Zero means unbounded. When the budget is reached, Run
	// returns whatever results were already recorded with Truncated set
	// — it never returns ErrBudgetExhausted as an error.
	Budget int
	// Raw disables de-duplicating result paths by digest sequence, which
	// is otherwise applied by default.
	Raw bool
	// Tracer, if non-nil, is invoked once per executed instruction —
	// grounded in gokando's highlevel_api tracing hooks for solver
	// search steps.
	Tracer func(step int, pc int, op compiler.Op)
	// Logger, if non-nil, receives one structured event per thread fork
	// (OpSplit/OpAssertionsFork/OpSearchFork), prune (a structural
	// descent that kills its thread), and match — off by default, the
	// way helm's core/pkg/observability package wires an optional
	// *slog.Logger through to a hot path rather than calling the
	// package-level default logger directly.
	Logger *slog.Logger
}

// RunResult is the outcome of executing a Program against one envelope.
type RunResult struct {
	Paths     []pattern.Path
	Captures  [][]pattern.CaptureResult // parallel to Paths
	Truncated bool
}

type threadState struct {
	pc             int
	cur            *envelope.Envelope
	path           pattern.Path
	captureStarts  map[int]int
	captureResults map[int]pattern.Path
}

func (t *threadState) clone() *threadState {
	starts := make(map[int]int, len(t.captureStarts))
	for k, v := range t.captureStarts {
		starts[k] = v
	}
	results := make(map[int]pattern.Path, len(t.captureResults))
	for k, v := range t.captureResults {
		results[k] = v
	}
	path := make(pattern.Path, len(t.path))
	copy(path, t.path)
	return &threadState{
		pc:             t.pc,
		cur:            t.cur,
		path:           path,
		captureStarts:  starts,
		captureResults: results,
	}
}

// Run executes prog against root.
func Run(prog *compiler.Program, root *envelope.Envelope, ctx *pattern.MatchContext, opts Options) (*RunResult, error) {
	init := &threadState{
		pc:             0,
		cur:            root,
		path:           pattern.Path{root},
		captureStarts:  map[int]int{},
		captureResults: map[int]pattern.Path{},
	}

	stack := []*threadState{init}
	var paths []pattern.Path
	var captures [][]pattern.CaptureResult
	steps := 0
	truncated := false

	for len(stack) > 0 {
		if budgetEnabled(opts.Budget) && steps >= opts.Budget {
			truncated = true
			if opts.Logger != nil {
				opts.Logger.Info("vm truncated", "steps", steps, "pending", len(stack))
			}
			break
		}
		th := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if th.pc < 0 || th.pc >= len(prog.Code) {
			return nil, fmt.Errorf("vm: thread pc %d out of range (program has %d instructions)", th.pc, len(prog.Code))
		}
		instr := prog.Code[th.pc]
		steps++
		if opts.Tracer != nil {
			opts.Tracer(steps, th.pc, instr.Op)
		}

		switch instr.Op {
		case compiler.OpMatch:
			paths = append(paths, th.path)
			captures = append(captures, capturesForThread(prog, th))
			if opts.Logger != nil {
				opts.Logger.Info("vm match", "step", steps, "pathLen", len(th.path))
			}

		case compiler.OpEval:
			lit := prog.Literals[instr.Literal]
			results, err := interp.EvalFrom(lit, th.cur, ctx, th.path[:len(th.path)-1])
			if err != nil {
				return nil, fmt.Errorf("vm: OpEval: %w", err)
			}
			for i := len(results) - 1; i >= 0; i-- {
				nt := th.clone()
				nt.pc = th.pc + 1
				nt.path = results[i]
				nt.cur = results[i].Leaf()
				stack = append(stack, nt)
			}

		case compiler.OpMatchStructure:
			target, ok := descend(th.cur, instr.Axis)
			if ok {
				nt := th.clone()
				nt.pc++
				nt.cur = target
				nt.path = append(nt.path, target)
				stack = append(stack, nt)
			} else if opts.Logger != nil {
				opts.Logger.Debug("vm prune", "step", steps, "axis", instr.Axis.String())
			}

		case compiler.OpSplit:
			tb := th.clone()
			tb.pc = instr.B
			ta := th.clone()
			ta.pc = instr.A
			stack = append(stack, tb, ta)
			if opts.Logger != nil {
				opts.Logger.Debug("vm fork", "step", steps, "op", "Split", "branches", 2)
			}

		case compiler.OpJump:
			th.pc = instr.A
			stack = append(stack, th)

		case compiler.OpAssertionsFork:
			if th.cur.IsNode() {
				as := th.cur.Assertions()
				for i := len(as) - 1; i >= 0; i-- {
					nt := th.clone()
					nt.pc = th.pc + 1
					nt.cur = as[i]
					nt.path = append(nt.path, as[i])
					stack = append(stack, nt)
				}
				if opts.Logger != nil {
					opts.Logger.Debug("vm fork", "step", steps, "op", "AssertionsFork", "branches", len(as))
				}
			} else if opts.Logger != nil {
				opts.Logger.Debug("vm prune", "step", steps, "op", "AssertionsFork")
			}

		case compiler.OpSearchFork:
			candidates := preOrderCandidates(th.cur)
			for i := len(candidates) - 1; i >= 0; i-- {
				nt := th.clone()
				nt.pc = th.pc + 1
				nt.cur = candidates[i].node
				nt.path = append(nt.path[:len(nt.path)-1:len(nt.path)-1], candidates[i].path...)
				stack = append(stack, nt)
			}
			if opts.Logger != nil {
				opts.Logger.Debug("vm fork", "step", steps, "op", "SearchFork", "branches", len(candidates))
			}

		case compiler.OpSaveStart:
			nt := th.clone()
			nt.captureStarts[instr.Slot] = len(nt.path) - 1
			nt.pc++
			stack = append(stack, nt)

		case compiler.OpSaveEnd:
			nt := th.clone()
			if start, ok := nt.captureStarts[instr.Slot]; ok && start <= len(nt.path)-1 {
				seg := make(pattern.Path, len(nt.path)-start)
				copy(seg, nt.path[start:])
				nt.captureResults[instr.Slot] = seg
			}
			nt.pc++
			stack = append(stack, nt)

		default:
			return nil, fmt.Errorf("vm: unhandled opcode %s", instr.Op)
		}
	}

	if !opts.Raw {
		paths, captures = dedup(paths, captures)
	}

	return &RunResult{Paths: paths, Captures: captures, Truncated: truncated}, nil
}

func budgetEnabled(budget int) bool { return budget > 0 }

func capturesForThread(prog *compiler.Program, th *threadState) []pattern.CaptureResult {
	var out []pattern.CaptureResult
	for slot, seg := range th.captureResults {
		if slot < 0 || slot >= len(prog.CaptureNames) {
			continue
		}
		out = append(out, pattern.CaptureResult{Name: prog.CaptureNames[slot], Path: seg})
	}
	return out
}

func descend(e *envelope.Envelope, axis compiler.Axis) (*envelope.Envelope, bool) {
	switch axis {
	case compiler.AxisSubject:
		return e.Subject()
	case compiler.AxisPredicate:
		return e.Predicate()
	case compiler.AxisObject:
		return e.Object()
	case compiler.AxisWrapped:
		u, err := e.Unwrap()
		if err != nil {
			return nil, false
		}
		return u, true
	default:
		return nil, false
	}
}

type candidate struct {
	node *envelope.Envelope
	path []*envelope.Envelope // relative: from the fork point (inclusive) to node (inclusive)
}

// preOrderCandidates lists e and every descendant of e, in pre-order,
// each paired with the relative path segment from e to it.
func preOrderCandidates(e *envelope.Envelope) []candidate {
	var out []candidate
	envelope.Walk(e, func(node *envelope.Envelope, _ envelope.EdgeType, rel []*envelope.Envelope) {
		seg := make([]*envelope.Envelope, len(rel))
		copy(seg, rel)
		out = append(out, candidate{node: node, path: seg})
	})
	return out
}

func dedup(paths []pattern.Path, captures [][]pattern.CaptureResult) ([]pattern.Path, [][]pattern.CaptureResult) {
	seen := make(map[string]bool, len(paths))
	outPaths := make([]pattern.Path, 0, len(paths))
	outCaptures := make([][]pattern.CaptureResult, 0, len(paths))
	for i, p := range paths {
		key := digestKey(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		outPaths = append(outPaths, p)
		outCaptures = append(outCaptures, captures[i])
	}
	return outPaths, outCaptures
}

func digestKey(p pattern.Path) string {
	digests := p.Digests()
	buf := make([]byte, 0, len(digests)*65)
	for _, d := range digests {
		buf = append(buf, []byte(d.Hex())...)
		buf = append(buf, ':')
	}
	return string(buf)
}
