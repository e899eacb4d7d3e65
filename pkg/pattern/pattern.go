// Package pattern defines the pattern algebra matched against envelope
// trees: leaf predicates, structural predicates, and meta combinators.
// Patterns are immutable and structurally comparable, the same
// discipline gokando's Term/Var/Atom types (pkg/minikanren/core.go)
// apply to logic-programming terms.
package pattern

// Kind discriminates every pattern variant in the algebra. It plays the
// role gokando's MetaPattern enum (pkg/minikanren/dcg.go-adjacent meta
// pattern) plays for DCG goal descriptions: a closed, inspectable tag so
// the compiler can dispatch without a type switch scattered everywhere.
type Kind int

const (
	// Leaf patterns.
	KindBool Kind = iota
	KindNumber
	KindText
	KindByteString
	KindDate
	KindKnownValue
	KindNull
	KindTagged
	KindArray
	KindMap
	KindCBOR

	// Structure patterns.
	KindSubject
	KindPredicate
	KindObject
	KindAssertions
	KindWrapped
	KindNode
	KindObscured
	KindDigest

	// Meta patterns.
	KindAny
	KindNone
	KindNot
	KindAnd
	KindOr
	KindSequence
	KindRepeat
	KindSearch
	KindCapture
)

var kindNames = map[Kind]string{
	KindBool: "Bool", KindNumber: "Number", KindText: "Text",
	KindByteString: "ByteString", KindDate: "Date", KindKnownValue: "KnownValue",
	KindNull: "Null", KindTagged: "Tagged", KindArray: "Array", KindMap: "Map",
	KindCBOR: "CBOR", KindSubject: "Subject", KindPredicate: "Predicate",
	KindObject: "Object", KindAssertions: "Assertions", KindWrapped: "Wrapped",
	KindNode: "Node", KindObscured: "Obscured", KindDigest: "Digest",
	KindAny: "Any", KindNone: "None", KindNot: "Not", KindAnd: "And",
	KindOr: "Or", KindSequence: "Sequence", KindRepeat: "Repeat",
	KindSearch: "Search", KindCapture: "Capture",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// Pattern is the closed sum type of the pattern algebra. Every variant
// in this package implements it.
type Pattern interface {
	Kind() Kind
}

// IsAtomicKind reports whether a pattern of this kind is, by default,
// compiled as a single delegated evaluation against the interpreter
// (package interp) rather than a dedicated VM instruction sequence. This
// covers every leaf kind, the non-descending structural kinds (Node,
// Obscured, Digest), And, Not, and Repeat — patterns whose result is a
// deterministic function of a single starting envelope, needing no
// VM-level thread forking.
//
// Subject, Predicate, Object, Assertions, Wrapped, Or, Sequence, Search,
// and Capture compile to genuine VM instructions instead, since their
// runtime behavior is inherently multi-path or state-recording. Sequence
// is a pure concatenation of its sub-compilations (compiler.compile),
// not a delegated literal, precisely so a Capture nested inside one of
// its sub-patterns still reaches the VM's Save bookkeeping. Repeat is
// the one exception compiler.compile special-cases ahead of this
// function: a bounded, non-possessive Repeat also compiles to genuine
// Split/Jump instructions (for the same capture-reachability reason);
// IsAtomicKind still reports Repeat as atomic because that is the
// fallback used for unbounded or possessive repeats, which continue to
// delegate to interp.
func IsAtomicKind(k Kind) bool {
	switch k {
	case KindBool, KindNumber, KindText, KindByteString, KindDate, KindKnownValue,
		KindNull, KindTagged, KindArray, KindMap, KindCBOR,
		KindNode, KindObscured, KindDigest,
		KindAny, KindNone, KindAnd, KindNot, KindRepeat:
		return true
	default:
		return false
	}
}

// HasCapture reports whether p or any of its sub-patterns is a Capture —
// such patterns must execute via the VM, never the direct interpreter
// fast-path.
func HasCapture(p Pattern) bool {
	switch v := p.(type) {
	case CapturePattern:
		return true
	case NotPattern:
		return HasCapture(v.Inner)
	case AndPattern:
		return anyHasCapture(v.Patterns)
	case OrPattern:
		return anyHasCapture(v.Patterns)
	case SequencePattern:
		return anyHasCapture(v.Patterns)
	case RepeatPattern:
		return HasCapture(v.Sub)
	case SearchPattern:
		return HasCapture(v.Inner)
	case SubjectPattern:
		return v.Inner != nil && HasCapture(v.Inner)
	case PredicatePattern:
		return v.Inner != nil && HasCapture(v.Inner)
	case ObjectPattern:
		return v.Inner != nil && HasCapture(v.Inner)
	case AssertionsPattern:
		return v.Inner != nil && HasCapture(v.Inner)
	case WrappedPattern:
		return v.Inner != nil && HasCapture(v.Inner)
	default:
		return false
	}
}

func anyHasCapture(ps []Pattern) bool {
	for _, p := range ps {
		if HasCapture(p) {
			return true
		}
	}
	return false
}
