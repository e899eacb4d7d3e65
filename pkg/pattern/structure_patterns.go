package pattern

import (
	"fmt"
	"regexp"

	"github.com/gitrdm/envpattern/pkg/envelope"
)

// SubjectPattern matches a Node's subject axis, optionally constraining
// the subject envelope with Inner.
type SubjectPattern struct {
	Inner Pattern
}

// Subject builds a SubjectPattern. A nil inner means "descend with no
// further constraint" and is normalized to Any so the compiler and
// interpreter never have to special-case a nil sub-pattern.
func Subject(inner Pattern) SubjectPattern {
	return SubjectPattern{Inner: orAny(inner)}
}
func (p SubjectPattern) Kind() Kind { return KindSubject }

// PredicatePattern matches an Assertion's predicate axis.
type PredicatePattern struct {
	Inner Pattern
}

// Predicate builds a PredicatePattern; see Subject for nil-inner handling.
func Predicate(inner Pattern) PredicatePattern {
	return PredicatePattern{Inner: orAny(inner)}
}
func (p PredicatePattern) Kind() Kind { return KindPredicate }

// ObjectPattern matches an Assertion's object axis.
type ObjectPattern struct {
	Inner Pattern
}

// Object builds an ObjectPattern; see Subject for nil-inner handling.
func Object(inner Pattern) ObjectPattern {
	return ObjectPattern{Inner: orAny(inner)}
}
func (p ObjectPattern) Kind() Kind { return KindObject }

// AssertionsPattern matches a Node's assertion set: Inner must match at
// least one assertion child, emitting one path per matching assertion.
type AssertionsPattern struct {
	Inner Pattern
}

// Assertions builds an AssertionsPattern; see Subject for nil-inner handling.
func Assertions(inner Pattern) AssertionsPattern {
	return AssertionsPattern{Inner: orAny(inner)}
}
func (p AssertionsPattern) Kind() Kind { return KindAssertions }

// WrappedPattern matches a Wrapped envelope, either checking only that
// it is wrapped (WrappedAny, the spec's Wrapped::Any) or additionally
// descending into its inner envelope through Inner (Wrapped, the spec's
// Wrapped::Unwrap — spec.md §4.2).
type WrappedPattern struct {
	justCheck bool
	Inner     Pattern
}

// WrappedAny matches any Wrapped envelope without descending into it —
// the non-descending half of Wrapped::any|unwrap.
func WrappedAny() WrappedPattern { return WrappedPattern{justCheck: true} }

// Wrapped builds a descending WrappedPattern (Wrapped::Unwrap); see
// Subject for nil-inner handling. Fails when the envelope isn't wrapped.
func Wrapped(inner Pattern) WrappedPattern {
	return WrappedPattern{Inner: orAny(inner)}
}
func (p WrappedPattern) Kind() Kind { return KindWrapped }

// IsAny reports whether p is the non-descending Wrapped::Any variant.
func (p WrappedPattern) IsAny() bool { return p.justCheck }

// orAny normalizes a nil sub-pattern to Any, so every descent pattern's
// Inner field is always non-nil.
func orAny(p Pattern) Pattern {
	if p == nil {
		return Any()
	}
	return p
}

// NodePattern matches a Node envelope without descending into it — use
// Subject/Assertions to constrain further. Optionally constrained to a
// count-range over the node's number of assertions (spec.md §3's
// `Node{any|assertions_count(range)}`, mirroring
// `original_source/src/pattern/structure/node_pattern.rs`'s
// `AssertionsCount(RangeInclusive<usize>)`).
type NodePattern struct {
	countSet bool
	lo, hi   int
}

func Node() NodePattern { return NodePattern{} }

// NodeAssertionsCountRange matches a Node whose assertion count is in
// lo..=hi, inclusive — see ArrayCountRange/MapCountRange for the same
// validate-then-error shape.
func NodeAssertionsCountRange(lo, hi int) (NodePattern, error) {
	if lo < 0 || hi < lo {
		return NodePattern{}, fmt.Errorf("pattern: NodeAssertionsCountRange(%d, %d): %w", lo, hi, ErrInvalidRange)
	}
	return NodePattern{countSet: true, lo: lo, hi: hi}, nil
}
func (p NodePattern) Kind() Kind { return KindNode }

// MatchCount reports whether n, the node's assertion count, satisfies p.
func (p NodePattern) MatchCount(n int) bool {
	if !p.countSet {
		return true
	}
	return n >= p.lo && n <= p.hi
}

// ObscuredPattern matches an Obscured envelope, optionally constrained to
// a specific ObscuredKind.
type ObscuredPattern struct {
	any  bool
	kind envelope.ObscuredKind
}

func ObscuredAny() ObscuredPattern { return ObscuredPattern{any: true} }
func ObscuredOfKind(kind envelope.ObscuredKind) ObscuredPattern {
	return ObscuredPattern{kind: kind}
}
func (p ObscuredPattern) Kind() Kind { return KindObscured }

// Match reports whether kind satisfies p.
func (p ObscuredPattern) Match(kind envelope.ObscuredKind) bool {
	if p.any {
		return true
	}
	return kind == p.kind
}

// DigestPattern matches any envelope (of any case) by its content digest:
// an exact digest, a hex prefix, or a regex matched against the digest's
// raw bytes (spec.md §3's `Digest{exact|hex_prefix|binary_regex}`,
// mirroring `original_source/src/pattern/digest_pattern.rs`'s
// `DigestPattern::BinaryRegex(regex::bytes::Regex)`).
type DigestPattern struct {
	exact     bool
	digest    envelope.Digest
	hexPrefix string
	re        *regexp.Regexp
}

func DigestExact(d envelope.Digest) DigestPattern { return DigestPattern{exact: true, digest: d} }
func DigestHexPrefix(prefix string) DigestPattern { return DigestPattern{hexPrefix: prefix} }

// DigestBinaryRegex matches envelopes whose raw digest bytes satisfy re,
// the same byte-regex idiom ByteStringBinaryRegex applies to leaf bytes.
func DigestBinaryRegex(re *regexp.Regexp) DigestPattern { return DigestPattern{re: re} }
func (p DigestPattern) Kind() Kind                      { return KindDigest }

// Match reports whether d satisfies p.
func (p DigestPattern) Match(d envelope.Digest) bool {
	switch {
	case p.exact:
		return d == p.digest
	case p.re != nil:
		return p.re.Match(d[:])
	default:
		return d.HasHexPrefix(p.hexPrefix)
	}
}
