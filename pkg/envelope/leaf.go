package envelope

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// LeafKind classifies the decoded shape of a leaf's tagged CBOR value, the
// same discriminators the leaf pattern family tests against.
type LeafKind int

const (
	LeafBool LeafKind = iota
	LeafNumber
	LeafText
	LeafBytes
	LeafDate
	LeafKnownValue
	LeafNull
	LeafTagged
	LeafArray
	LeafMap
)

// KnownValue is a small, named, well-known constant — the envelope
// equivalent of a reserved symbol. It is carried inside a leaf as a CBOR
// tag (tagKnownValue) wrapping its numeric value.
type KnownValue struct {
	Value uint64
	Name  string
}

// tagKnownValue is the CBOR tag number this façade uses to wrap known
// values inside a leaf. It is local to this bundled façade, not a registry
// value shared with any external system.
const tagKnownValue = 40100

// LeafValue is the decoded content of a Leaf envelope: raw CBOR bytes plus
// typed extraction helpers. Construction always goes through NewLeafValue so the
// stored bytes are canonical (cbor.Marshal with sorted-map-keys + shortest
// encodings) — the same "encode once, hash what you encoded" discipline
// Mindburn-Labs/helm's canonicalize/jcs.go applies to JSON.
type LeafValue struct {
	raw []byte
}

var canonicalEncMode cbor.EncMode

func init() {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("envelope: building canonical CBOR encoder: %v", err))
	}
	canonicalEncMode = mode
}

// NewLeafValue canonically encodes v as CBOR and wraps it as leaf content.
// Accepted v: bool, any integer/float kind, string, []byte, time.Time,
// cbor.Tag (including a known value built by NewKnownValue), nil, or a
// slice/map of the above.
func NewLeafValue(v any) (*LeafValue, error) {
	raw, err := canonicalEncMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("envelope: encoding leaf value: %w", err)
	}
	return &LeafValue{raw: raw}, nil
}

// Raw returns the canonical CBOR encoding of the leaf's value.
func (l *LeafValue) Raw() []byte { return l.raw }

// decode unmarshal's the raw CBOR into a generic Go value for inspection.
func (l *LeafValue) decode() (any, error) {
	var v any
	if err := cbor.Unmarshal(l.raw, &v); err != nil {
		return nil, fmt.Errorf("envelope: decoding leaf value: %w", err)
	}
	return v, nil
}

// Kind classifies the leaf's decoded CBOR shape.
func (l *LeafValue) Kind() (LeafKind, error) {
	v, err := l.decode()
	if err != nil {
		return 0, err
	}
	return kindOf(v), nil
}

func kindOf(v any) LeafKind {
	switch t := v.(type) {
	case nil:
		return LeafNull
	case bool:
		return LeafBool
	case int64, uint64, float64:
		return LeafNumber
	case string:
		return LeafText
	case []byte:
		return LeafBytes
	case time.Time:
		return LeafDate
	case cbor.Tag:
		if t.Number == tagKnownValue {
			return LeafKnownValue
		}
		return LeafTagged
	case []any:
		return LeafArray
	case map[any]any:
		return LeafMap
	default:
		return LeafTagged
	}
}

// Bool extracts a boolean leaf value.
func (l *LeafValue) Bool() (bool, error) {
	v, err := l.decode()
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("envelope: Bool: %w", ErrLeafKindMismatch)
	}
	return b, nil
}

// Number extracts a numeric leaf value as a float64, matching the range
// comparisons Number patterns need.
func (l *LeafValue) Number() (float64, error) {
	v, err := l.decode()
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("envelope: Number: %w", ErrLeafKindMismatch)
	}
}

// Text extracts a string leaf value.
func (l *LeafValue) Text() (string, error) {
	v, err := l.decode()
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("envelope: Text: %w", ErrLeafKindMismatch)
	}
	return s, nil
}

// Bytes extracts a byte-string leaf value.
func (l *LeafValue) Bytes() ([]byte, error) {
	v, err := l.decode()
	if err != nil {
		return nil, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("envelope: Bytes: %w", ErrLeafKindMismatch)
	}
	return b, nil
}

// Date extracts a date leaf value.
func (l *LeafValue) Date() (time.Time, error) {
	v, err := l.decode()
	if err != nil {
		return time.Time{}, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("envelope: Date: %w", ErrLeafKindMismatch)
	}
	return t, nil
}

// Known extracts a known-value leaf.
func (l *LeafValue) Known() (KnownValue, error) {
	v, err := l.decode()
	if err != nil {
		return KnownValue{}, err
	}
	tag, ok := v.(cbor.Tag)
	if !ok || tag.Number != tagKnownValue {
		return KnownValue{}, fmt.Errorf("envelope: Known: %w", ErrLeafKindMismatch)
	}
	n, ok := tag.Content.(uint64)
	if !ok {
		if i, ok2 := tag.Content.(int64); ok2 {
			n = uint64(i)
		} else {
			return KnownValue{}, fmt.Errorf("envelope: Known: malformed known-value content")
		}
	}
	return KnownValue{Value: n}, nil
}

// TagNumber extracts the CBOR tag number of a tagged leaf (excluding the
// reserved known-value tag, which Known handles instead).
func (l *LeafValue) TagNumber() (uint64, error) {
	v, err := l.decode()
	if err != nil {
		return 0, err
	}
	tag, ok := v.(cbor.Tag)
	if !ok || tag.Number == tagKnownValue {
		return 0, fmt.Errorf("envelope: TagNumber: %w", ErrLeafKindMismatch)
	}
	return tag.Number, nil
}

// ArrayLen returns the element count of an array leaf.
func (l *LeafValue) ArrayLen() (int, error) {
	v, err := l.decode()
	if err != nil {
		return 0, err
	}
	a, ok := v.([]any)
	if !ok {
		return 0, fmt.Errorf("envelope: ArrayLen: %w", ErrLeafKindMismatch)
	}
	return len(a), nil
}

// MapLen returns the entry count of a map leaf.
func (l *LeafValue) MapLen() (int, error) {
	v, err := l.decode()
	if err != nil {
		return 0, err
	}
	m, ok := v.(map[any]any)
	if !ok {
		return 0, fmt.Errorf("envelope: MapLen: %w", ErrLeafKindMismatch)
	}
	return len(m), nil
}

// NewKnownValue wraps a known value so it can be passed to NewLeafValue.
func NewKnownValue(value uint64) cbor.Tag {
	return cbor.Tag{Number: tagKnownValue, Content: value}
}

// NewTag wraps content under an arbitrary CBOR tag number.
func NewTag(number uint64, content any) cbor.Tag {
	return cbor.Tag{Number: number, Content: content}
}
