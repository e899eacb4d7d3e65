package pattern

import "github.com/gitrdm/envpattern/pkg/envelope"

// Path is a sequence of envelopes from the root of a match down to the
// envelope a pattern ultimately matched. Paths are compared and
// de-duplicated by the structural sequence of digests they carry, never
// by object identity.
type Path []*envelope.Envelope

// Digests returns the sequence of content digests identifying p,
// suitable as a de-duplication key.
func (p Path) Digests() []envelope.Digest {
	ds := make([]envelope.Digest, len(p))
	for i, e := range p {
		ds[i] = e.Digest()
	}
	return ds
}

// Leaf returns the last envelope in the path, the one the pattern
// ultimately matched.
func (p Path) Leaf() *envelope.Envelope {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// Equal reports whether p and other carry the same digest sequence.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i].Digest() != other[i].Digest() {
			return false
		}
	}
	return true
}

// CaptureResult pairs a capture name with the path it bound to, for a
// single overall match. When a Capture sits inside a Repeat, the last
// iteration's binding wins.
type CaptureResult struct {
	Name string
	Path Path
}
