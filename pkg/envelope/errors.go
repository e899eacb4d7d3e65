package envelope

import "errors"

// Sentinel errors returned by the envelope façade. Callers should use
// errors.Is rather than comparing messages.
var (
	// ErrNotWrapped is returned by Unwrap when the envelope is not a
	// Wrapped envelope.
	ErrNotWrapped = errors.New("envelope: not wrapped")

	// ErrNotLeaf is returned by leaf extraction helpers when the envelope
	// is not a Leaf envelope.
	ErrNotLeaf = errors.New("envelope: not a leaf")

	// ErrLeafKindMismatch is returned when a leaf extractor is called
	// against a leaf whose underlying CBOR value is not of the requested
	// kind.
	ErrLeafKindMismatch = errors.New("envelope: leaf kind mismatch")

	// ErrEmptyAssertions is returned by NewNode when called with no
	// assertions; a Node always carries a subject plus one or more
	// assertions.
	ErrEmptyAssertions = errors.New("envelope: node requires at least one assertion")

	// ErrNilSubject / ErrNilChild guard against constructing malformed
	// trees from nil envelopes.
	ErrNilSubject = errors.New("envelope: nil subject")
	ErrNilChild   = errors.New("envelope: nil child envelope")
)
