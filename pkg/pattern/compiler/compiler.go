// Package compiler translates a pattern.Pattern into a linear Program of
// VM instructions, the way a Pike-style regex engine compiles an AST
// into Split/Jump/Save opcodes rather than walking the AST at match
// time. The inherently multi-path or state-recording pattern forms —
// Subject/Predicate/Object/Wrapped (structural descent), Assertions and
// Search (dynamic forking), Or (static branching), Sequence (direct
// concatenation), bounded non-Possessive Repeat (a Split/Jump chain),
// and Capture (Save bookkeeping) — get dedicated instructions. Every
// other pattern kind (pattern.IsAtomicKind), plus unbounded or
// Possessive Repeat, is compiled as a single OpEval that delegates to
// package interp at VM execution time.
package compiler

import (
	"fmt"

	"github.com/gitrdm/envpattern/pkg/pattern"
)

// Op identifies a VM instruction.
type Op int

const (
	// OpMatch terminates a thread successfully; the program has exactly
	// one, appended by Compile after the whole pattern's code.
	OpMatch Op = iota
	// OpEval delegates Literals[Literal] to interp.EvalFrom against the
	// thread's current envelope. Every returned path spawns a
	// continuation thread at pc+1 with its current envelope advanced to
	// that path's leaf.
	OpEval
	// OpMatchStructure descends Axis from the thread's current envelope.
	// The thread dies if the current envelope's case doesn't support
	// Axis; otherwise it continues at pc+1 with the axis target as its
	// new current envelope.
	OpMatchStructure
	// OpSplit forks two threads, at A and B in that priority order (A is
	// tried/scheduled first), both starting from the same state.
	OpSplit
	// OpJump transfers control unconditionally to A.
	OpJump
	// OpAssertionsFork requires the current envelope to be a Node and
	// forks one continuation thread per assertion child, each starting
	// at pc+1 with that assertion as its current envelope.
	OpAssertionsFork
	// OpSearchFork forks one continuation thread per node in the
	// current envelope's own pre-order subtree (including itself), each
	// starting at pc+1 with that descendant as its current envelope.
	OpSearchFork
	// OpSaveStart records the path length at the start of capture Slot.
	OpSaveStart
	// OpSaveEnd closes capture Slot, binding it to the path segment
	// recorded since the matching OpSaveStart. Re-closing an
	// already-bound slot (a Capture that ran more than once) overwrites
	// it — last iteration wins.
	OpSaveEnd
)

func (op Op) String() string {
	switch op {
	case OpMatch:
		return "Match"
	case OpEval:
		return "Eval"
	case OpMatchStructure:
		return "MatchStructure"
	case OpSplit:
		return "Split"
	case OpJump:
		return "Jump"
	case OpAssertionsFork:
		return "AssertionsFork"
	case OpSearchFork:
		return "SearchFork"
	case OpSaveStart:
		return "SaveStart"
	case OpSaveEnd:
		return "SaveEnd"
	default:
		return "Unknown"
	}
}

// Axis names the structural descent OpMatchStructure performs.
type Axis int

const (
	AxisSubject Axis = iota
	AxisPredicate
	AxisObject
	AxisWrapped
)

func (a Axis) String() string {
	switch a {
	case AxisSubject:
		return "subject"
	case AxisPredicate:
		return "predicate"
	case AxisObject:
		return "object"
	case AxisWrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}

// Instr is one VM instruction. Fields are interpreted per Op; unused
// fields are zero.
type Instr struct {
	Op      Op
	A, B    int // jump/split targets
	Literal int // index into Program.Literals, for OpEval
	Axis    Axis
	Slot    int // capture slot, for OpSaveStart/OpSaveEnd
}

// Program is the compiled form of a single pattern.Pattern.
type Program struct {
	Code         []Instr
	Literals     []pattern.Pattern
	CaptureNames []string
}

// config holds Compile's options, currently reserved for future
// extension.
type config struct{}

// CompileOption configures Compile.
type CompileOption func(*config)

type builder struct {
	code         []Instr
	literals     []pattern.Pattern
	captureNames []string
}

func (b *builder) emit(i Instr) int {
	b.code = append(b.code, i)
	return len(b.code) - 1
}

func (b *builder) addLiteral(p pattern.Pattern) int {
	b.literals = append(b.literals, p)
	return len(b.literals) - 1
}

// Compile translates p into a Program ready for VM execution.
func Compile(p pattern.Pattern, opts ...CompileOption) (*Program, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	b := &builder{}
	if err := compile(b, p); err != nil {
		return nil, err
	}
	b.emit(Instr{Op: OpMatch})
	return &Program{Code: b.code, Literals: b.literals, CaptureNames: b.captureNames}, nil
}

func compile(b *builder, p pattern.Pattern) error {
	// A bounded, non-Possessive Repeat compiles to a genuine Split/Jump
	// chain rather than a delegated OpEval, so a Capture nested in its
	// Sub still reaches the VM's Save bookkeeping (spec.md §4.4). This
	// check runs before IsAtomicKind, which would otherwise claim every
	// Repeat.
	if rp, ok := p.(pattern.RepeatPattern); ok && rp.Max >= 0 && rp.Greediness != pattern.Possessive {
		return compileRepeatBounded(b, rp)
	}

	if pattern.IsAtomicKind(p.Kind()) {
		if pattern.HasCapture(p) {
			return fmt.Errorf("compiler: compiling %s: %w", p.Kind(), ErrCaptureInDelegatedPattern)
		}
		lit := b.addLiteral(p)
		b.emit(Instr{Op: OpEval, Literal: lit})
		return nil
	}

	switch v := p.(type) {
	case pattern.SubjectPattern:
		b.emit(Instr{Op: OpMatchStructure, Axis: AxisSubject})
		return compile(b, v.Inner)
	case pattern.PredicatePattern:
		b.emit(Instr{Op: OpMatchStructure, Axis: AxisPredicate})
		return compile(b, v.Inner)
	case pattern.ObjectPattern:
		b.emit(Instr{Op: OpMatchStructure, Axis: AxisObject})
		return compile(b, v.Inner)
	case pattern.WrappedPattern:
		if v.IsAny() {
			lit := b.addLiteral(p)
			b.emit(Instr{Op: OpEval, Literal: lit})
			return nil
		}
		b.emit(Instr{Op: OpMatchStructure, Axis: AxisWrapped})
		return compile(b, v.Inner)
	case pattern.AssertionsPattern:
		b.emit(Instr{Op: OpAssertionsFork})
		return compile(b, v.Inner)
	case pattern.SearchPattern:
		b.emit(Instr{Op: OpSearchFork})
		return compile(b, v.Inner)
	case pattern.OrPattern:
		return compileOr(b, v.Patterns)
	case pattern.SequencePattern:
		// Direct concatenation, not a delegated literal: each
		// sub-pattern's own compilation is spliced in place, so a
		// Capture anywhere in the sequence still reaches the VM.
		for _, sub := range v.Patterns {
			if err := compile(b, sub); err != nil {
				return err
			}
		}
		return nil
	case pattern.CapturePattern:
		slot := len(b.captureNames)
		b.captureNames = append(b.captureNames, v.Name)
		b.emit(Instr{Op: OpSaveStart, Slot: slot})
		if v.Inner != nil {
			if err := compile(b, v.Inner); err != nil {
				return err
			}
		}
		b.emit(Instr{Op: OpSaveEnd, Slot: slot})
		return nil
	default:
		return fmt.Errorf("compiler: %s: %w", p.Kind(), ErrUnsupportedPattern)
	}
}

// compileRepeatBounded lowers a bounded, non-Possessive Repeat the way a
// regex compiler lowers a{m,n}: v.Min mandatory copies of Sub compiled
// back to back, followed by (Max-Min) optional copies each guarded by an
// OpSplit whose "skip" branch jumps straight past every remaining
// optional copy to the shared end label — not just the next one — so
// bailing out at any depth drops immediately to whatever follows the
// Repeat. Greedy orders each split to try entering before skipping; Lazy
// orders it the other way. Possessive and unbounded Repeat never reach
// this function — both continue to delegate wholesale to interp, which
// resolves them without backtracking.
//
// v.Sub is compiled exactly once, into a standalone fragment, and every
// physical copy splices that same fragment's instructions (relocating
// only its internal jump/split offsets). Literal and capture-slot
// indices are registered once and shared across every copy — so a
// Capture nested in Sub binds to one slot for the whole Repeat, and each
// iteration's OpSaveEnd simply overwrites the last one's binding, the
// same last-iteration-wins rule CaptureResult documents. Compiling Sub
// fresh per copy (allocating a new slot each time) would instead scatter
// one Repeat's Capture across N unrelated slots.
func compileRepeatBounded(b *builder, v pattern.RepeatPattern) error {
	sub := &builder{}
	if err := compile(sub, v.Sub); err != nil {
		return err
	}
	litBase := len(b.literals)
	b.literals = append(b.literals, sub.literals...)
	capBase := len(b.captureNames)
	b.captureNames = append(b.captureNames, sub.captureNames...)

	splice := func() {
		codeBase := len(b.code)
		for _, instr := range sub.code {
			ni := instr
			switch instr.Op {
			case OpJump, OpSplit:
				ni.A += codeBase
				ni.B += codeBase
			case OpEval:
				ni.Literal += litBase
			case OpSaveStart, OpSaveEnd:
				ni.Slot += capBase
			}
			b.code = append(b.code, ni)
		}
	}

	for i := 0; i < v.Min; i++ {
		splice()
	}

	optional := v.Max - v.Min
	splitIdxs := make([]int, 0, optional)
	for i := 0; i < optional; i++ {
		splitIdx := b.emit(Instr{Op: OpSplit})
		enterStart := len(b.code)
		splice()
		if v.Greediness == pattern.Lazy {
			b.code[splitIdx].B = enterStart
		} else {
			b.code[splitIdx].A = enterStart
		}
		splitIdxs = append(splitIdxs, splitIdx)
	}

	end := len(b.code)
	for _, idx := range splitIdxs {
		if v.Greediness == pattern.Lazy {
			b.code[idx].A = end
		} else {
			b.code[idx].B = end
		}
	}
	return nil
}

// compileOr emits an n-ary Split chain: branch i (i < n-1) is guarded by
// a Split whose B target is the next branch's Split (or the last
// branch's code, for the penultimate one); every branch ends with a Jump
// to the shared end label, patched once the whole chain is emitted —
// mirroring how a regex compiler lowers `a|b|c` (spec.md §4.2).
func compileOr(b *builder, patterns []pattern.Pattern) error {
	n := len(patterns)
	var exitJumps []int
	for i, sub := range patterns {
		if i < n-1 {
			splitIdx := b.emit(Instr{Op: OpSplit})
			branchStart := len(b.code)
			if err := compile(b, sub); err != nil {
				return err
			}
			exitJumps = append(exitJumps, b.emit(Instr{Op: OpJump}))
			b.code[splitIdx].A = branchStart
			b.code[splitIdx].B = len(b.code)
		} else {
			if err := compile(b, sub); err != nil {
				return err
			}
		}
	}
	end := len(b.code)
	for _, j := range exitJumps {
		b.code[j].A = end
	}
	return nil
}
