// Package main demonstrates the envelope pattern engine end to end:
// building envelopes, constructing patterns programmatically, and
// printing the paths and captures each match produces.
package main

import (
	"fmt"
	"log/slog"
	"os"

	envpattern "github.com/gitrdm/envpattern"
	"github.com/gitrdm/envpattern/pkg/envelope"
	"github.com/gitrdm/envpattern/pkg/pattern"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	fmt.Println("=== envgrep examples ===")
	fmt.Println()

	exactText()
	optionalWrapper()
	greedyVsLazy()
	recursiveSearch()
	namedCapture()
}

func mustLeaf(v any) *envelope.Envelope {
	lv, err := envelope.NewLeafValue(v)
	if err != nil {
		panic(err)
	}
	return envelope.NewLeaf(lv)
}

func mustWrapped(inner *envelope.Envelope) *envelope.Envelope {
	e, err := envelope.NewWrapped(inner)
	if err != nil {
		panic(err)
	}
	return e
}

// exactText matches a bare-leaf envelope by exact text.
func exactText() {
	fmt.Println("1. Exact text leaf:")

	e := mustLeaf("Alice")
	p := pattern.TextExact("Alice")

	paths, err := envpattern.Paths(p, e, nil)
	if err != nil {
		slog.Error("exactText", "err", err)
		return
	}
	printPaths(`Text::Exact("Alice")`, paths)
}

// optionalWrapper matches the same pattern across a bare leaf and a
// once-wrapped copy of it, the way spec.md's S3 scenario does.
func optionalWrapper() {
	fmt.Println("2. Optional wrapper (Sequence + Repeat):")

	inner := mustLeaf("data")
	wrapped := mustWrapped(inner)

	unwrapOnce, err := pattern.Repeat(pattern.Wrapped(nil), 0, 1, pattern.Greedy)
	if err != nil {
		slog.Error("optionalWrapper: Repeat", "err", err)
		return
	}
	p := pattern.Sequence(unwrapOnce, pattern.Any())

	for _, e := range []*envelope.Envelope{inner, wrapped} {
		paths, err := envpattern.Paths(p, e, nil)
		if err != nil {
			slog.Error("optionalWrapper", "err", err)
			continue
		}
		printPaths(fmt.Sprintf("Sequence(Repeat(Wrapped::Unwrap,0..1), Any) over %s", e.Digest().Hex()[:8]), paths)
	}
}

// greedyVsLazy shows the same Repeat over a doubly wrapped envelope
// emitting a different path length under Greedy vs Lazy, spec.md's S4.
func greedyVsLazy() {
	fmt.Println("3. Greedy vs Lazy:")

	e := mustWrapped(mustWrapped(mustLeaf("x")))

	greedy, err := pattern.Repeat(pattern.Wrapped(nil), 1, 10, pattern.Greedy)
	if err != nil {
		slog.Error("greedyVsLazy: Repeat(Greedy)", "err", err)
		return
	}
	lazy, err := pattern.Repeat(pattern.Wrapped(nil), 1, 10, pattern.Lazy)
	if err != nil {
		slog.Error("greedyVsLazy: Repeat(Lazy)", "err", err)
		return
	}

	gp := pattern.Sequence(greedy, pattern.Any())
	lp := pattern.Sequence(lazy, pattern.Any())

	gpaths, err := envpattern.Paths(gp, e, nil)
	if err != nil {
		slog.Error("greedyVsLazy: greedy", "err", err)
		return
	}
	printPaths("Greedy", gpaths)

	lpaths, err := envpattern.Paths(lp, e, nil)
	if err != nil {
		slog.Error("greedyVsLazy: lazy", "err", err)
		return
	}
	printPaths("Lazy", lpaths)
}

// recursiveSearch locates a number anywhere beneath a node, regardless
// of depth, via Search — spec.md's S5.
func recursiveSearch() {
	fmt.Println("4. Recursive search:")

	subj := mustLeaf("subject")
	pred := mustLeaf("predicate")
	obj := mustLeaf(42.0)
	assertion, err := envelope.NewAssertion(pred, obj)
	if err != nil {
		slog.Error("recursiveSearch: NewAssertion", "err", err)
		return
	}
	node, err := envelope.NewNode(subj, assertion)
	if err != nil {
		slog.Error("recursiveSearch: NewNode", "err", err)
		return
	}

	p := pattern.Search(pattern.NumberExact(42))
	paths, err := envpattern.Paths(p, node, nil)
	if err != nil {
		slog.Error("recursiveSearch", "err", err)
		return
	}
	printPaths("Search(Number::Exact(42))", paths)
}

// namedCapture binds the matched object to a name and prints the
// resulting capture — every Capture forces VM execution.
func namedCapture() {
	fmt.Println("5. Named capture:")

	subj := mustLeaf("subject")
	pred := mustLeaf("predicate")
	obj := mustLeaf("Bob")
	assertion, err := envelope.NewAssertion(pred, obj)
	if err != nil {
		slog.Error("namedCapture: NewAssertion", "err", err)
		return
	}
	node, err := envelope.NewNode(subj, assertion)
	if err != nil {
		slog.Error("namedCapture: NewNode", "err", err)
		return
	}

	capObj, err := pattern.Capture("object", pattern.TextExact("Bob"))
	if err != nil {
		slog.Error("namedCapture: Capture", "err", err)
		return
	}
	p := pattern.Assertions(pattern.Object(capObj))

	captures, err := envpattern.Captures(p, node, nil)
	if err != nil {
		slog.Error("namedCapture", "err", err)
		return
	}
	for _, c := range captures {
		fmt.Printf("   %s = %s\n", c.Name, c.Path.Leaf().Digest().Hex()[:8])
	}
	fmt.Println()
}

func printPaths(label string, paths []pattern.Path) {
	fmt.Printf("   %s => %d path(s)\n", label, len(paths))
	for i, p := range paths {
		fmt.Printf("     [%d] length %d, tip digest %s\n", i, len(p), p.Leaf().Digest().Hex()[:8])
	}
	fmt.Println()
}
