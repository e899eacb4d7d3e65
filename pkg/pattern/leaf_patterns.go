package pattern

import (
	"fmt"
	"regexp"
	"time"

	"github.com/gitrdm/envpattern/pkg/envelope"
)

// BoolPattern matches a leaf's extracted boolean value.
type BoolPattern struct {
	any   bool
	exact bool
	want  bool
}

func BoolAny() BoolPattern             { return BoolPattern{any: true} }
func BoolExact(want bool) BoolPattern  { return BoolPattern{exact: true, want: want} }
func (p BoolPattern) Kind() Kind       { return KindBool }
func (p BoolPattern) Match(v bool) bool {
	if p.any {
		return true
	}
	return p.exact && v == p.want
}

// NumberOp discriminates NumberPattern's comparison mode.
type NumberOp int

const (
	NumAny NumberOp = iota
	NumExact
	NumRange
	NumGreaterThan
	NumLessThan
	NumGreaterEqual
	NumLessEqual
)

// NumberPattern matches a leaf's extracted numeric value.
type NumberPattern struct {
	op     NumberOp
	value  float64
	lo, hi float64
}

func NumberAnyPattern() NumberPattern          { return NumberPattern{op: NumAny} }
func NumberExact(v float64) NumberPattern      { return NumberPattern{op: NumExact, value: v} }
func NumberGreaterThan(v float64) NumberPattern { return NumberPattern{op: NumGreaterThan, value: v} }
func NumberLessThan(v float64) NumberPattern    { return NumberPattern{op: NumLessThan, value: v} }
func NumberGreaterEqual(v float64) NumberPattern { return NumberPattern{op: NumGreaterEqual, value: v} }
func NumberLessEqual(v float64) NumberPattern    { return NumberPattern{op: NumLessEqual, value: v} }

// NumberRange matches lo..=hi inclusive. Returns ErrInvalidRange if lo > hi.
func NumberRange(lo, hi float64) (NumberPattern, error) {
	if lo > hi {
		return NumberPattern{}, fmt.Errorf("pattern: NumberRange(%v, %v): %w", lo, hi, ErrInvalidRange)
	}
	return NumberPattern{op: NumRange, lo: lo, hi: hi}, nil
}

func (p NumberPattern) Kind() Kind { return KindNumber }
func (p NumberPattern) Match(v float64) bool {
	switch p.op {
	case NumAny:
		return true
	case NumExact:
		return v == p.value
	case NumRange:
		return v >= p.lo && v <= p.hi
	case NumGreaterThan:
		return v > p.value
	case NumLessThan:
		return v < p.value
	case NumGreaterEqual:
		return v >= p.value
	case NumLessEqual:
		return v <= p.value
	default:
		return false
	}
}

// TextPattern matches a leaf's extracted text value.
type TextPattern struct {
	any   bool
	exact bool
	want  string
	re    *regexp.Regexp
}

func TextAny() TextPattern            { return TextPattern{any: true} }
func TextExact(want string) TextPattern { return TextPattern{exact: true, want: want} }
func TextRegex(re *regexp.Regexp) TextPattern { return TextPattern{re: re} }
func (p TextPattern) Kind() Kind      { return KindText }
func (p TextPattern) Match(v string) bool {
	switch {
	case p.any:
		return true
	case p.exact:
		return v == p.want
	case p.re != nil:
		return p.re.MatchString(v)
	default:
		return false
	}
}

// ByteStringPattern matches a leaf's extracted byte-string value.
type ByteStringPattern struct {
	any   bool
	exact bool
	want  []byte
	re    *regexp.Regexp
}

func ByteStringAny() ByteStringPattern { return ByteStringPattern{any: true} }
func ByteStringExact(want []byte) ByteStringPattern {
	return ByteStringPattern{exact: true, want: want}
}
func ByteStringBinaryRegex(re *regexp.Regexp) ByteStringPattern {
	return ByteStringPattern{re: re}
}
func (p ByteStringPattern) Kind() Kind { return KindByteString }
func (p ByteStringPattern) Match(v []byte) bool {
	switch {
	case p.any:
		return true
	case p.exact:
		return string(v) == string(p.want)
	case p.re != nil:
		return p.re.Match(v)
	default:
		return false
	}
}

// DatePattern matches a leaf's extracted date value.
type DatePattern struct {
	any         bool
	exact       bool
	rangeSet    bool
	want        time.Time
	lo, hi      time.Time
}

func DateAny() DatePattern               { return DatePattern{any: true} }
func DateExact(want time.Time) DatePattern { return DatePattern{exact: true, want: want} }

// DateRange matches lo..=hi inclusive. Returns ErrInvalidRange if lo is after hi.
func DateRange(lo, hi time.Time) (DatePattern, error) {
	if lo.After(hi) {
		return DatePattern{}, fmt.Errorf("pattern: DateRange(%v, %v): %w", lo, hi, ErrInvalidRange)
	}
	return DatePattern{rangeSet: true, lo: lo, hi: hi}, nil
}

func (p DatePattern) Kind() Kind { return KindDate }
func (p DatePattern) Match(v time.Time) bool {
	switch {
	case p.any:
		return true
	case p.exact:
		return v.Equal(p.want)
	case p.rangeSet:
		return !v.Before(p.lo) && !v.After(p.hi)
	default:
		return false
	}
}

// KnownValuePattern matches a leaf's extracted known value, by exact
// numeric value, by registered name, or by regex over the registered
// name (resolved through a MatchContext registry).
type KnownValuePattern struct {
	any       bool
	exact     bool
	value     uint64
	name      string
	nameRegex *regexp.Regexp
}

func KnownValueAny() KnownValuePattern { return KnownValuePattern{any: true} }
func KnownValueExact(v uint64) KnownValuePattern {
	return KnownValuePattern{exact: true, value: v}
}
func KnownValueName(name string) KnownValuePattern { return KnownValuePattern{name: name} }
func KnownValueNameRegex(re *regexp.Regexp) KnownValuePattern {
	return KnownValuePattern{nameRegex: re}
}
func (p KnownValuePattern) Kind() Kind { return KindKnownValue }

// Match resolves p against kv, consulting ctx's KnownValueRegistry for the
// name/regex modes. A nil ctx means name/regex patterns never match.
func (p KnownValuePattern) Match(kv envelope.KnownValue, ctx *MatchContext) bool {
	switch {
	case p.any:
		return true
	case p.exact:
		return kv.Value == p.value
	case p.name != "":
		if ctx == nil || ctx.KnownValues == nil {
			return false
		}
		name, ok := ctx.KnownValues.NameOf(kv.Value)
		return ok && name == p.name
	case p.nameRegex != nil:
		if ctx == nil || ctx.KnownValues == nil {
			return false
		}
		return ctx.KnownValues.MatchNameRegex(kv.Value, p.nameRegex)
	default:
		return false
	}
}

// NullPattern matches a leaf carrying CBOR null.
type NullPattern struct{ any bool }

func NullAny() NullPattern   { return NullPattern{any: true} }
func (p NullPattern) Kind() Kind { return KindNull }

// TaggedPattern matches a leaf's CBOR tag, by numeric tag or by a name
// resolved through the registry.
type TaggedPattern struct {
	any     bool
	byValue bool
	value   uint64
	byName  bool
	name    string
}

func TaggedAny() TaggedPattern              { return TaggedPattern{any: true} }
func TaggedByValue(v uint64) TaggedPattern  { return TaggedPattern{byValue: true, value: v} }
func TaggedByName(name string) TaggedPattern { return TaggedPattern{byName: true, name: name} }
func (p TaggedPattern) Kind() Kind          { return KindTagged }

// Match resolves p against tagNumber, consulting ctx's TagRegistry for
// the by-name mode.
func (p TaggedPattern) Match(tagNumber uint64, ctx *MatchContext) bool {
	switch {
	case p.any:
		return true
	case p.byValue:
		return tagNumber == p.value
	case p.byName:
		if ctx == nil || ctx.Tags == nil {
			return false
		}
		n, ok := ctx.Tags.NumberOf(p.name)
		return ok && n == tagNumber
	default:
		return false
	}
}

// ArrayPattern matches a leaf holding a CBOR array, optionally constrained
// by element count.
type ArrayPattern struct {
	any      bool
	countSet bool
	lo, hi   int
}

func ArrayAny() ArrayPattern { return ArrayPattern{any: true} }

// ArrayCountRange matches arrays whose length is in lo..=hi.
func ArrayCountRange(lo, hi int) (ArrayPattern, error) {
	if lo < 0 || hi < lo {
		return ArrayPattern{}, fmt.Errorf("pattern: ArrayCountRange(%d, %d): %w", lo, hi, ErrInvalidRange)
	}
	return ArrayPattern{countSet: true, lo: lo, hi: hi}, nil
}
func (p ArrayPattern) Kind() Kind { return KindArray }
func (p ArrayPattern) MatchCount(n int) bool {
	if p.any {
		return true
	}
	return n >= p.lo && n <= p.hi
}

// MapPattern matches a leaf holding a CBOR map, optionally constrained by
// entry count.
type MapPattern struct {
	any      bool
	countSet bool
	lo, hi   int
}

func MapAny() MapPattern { return MapPattern{any: true} }

// MapCountRange matches maps whose entry count is in lo..=hi.
func MapCountRange(lo, hi int) (MapPattern, error) {
	if lo < 0 || hi < lo {
		return MapPattern{}, fmt.Errorf("pattern: MapCountRange(%d, %d): %w", lo, hi, ErrInvalidRange)
	}
	return MapPattern{countSet: true, lo: lo, hi: hi}, nil
}
func (p MapPattern) Kind() Kind { return KindMap }
func (p MapPattern) MatchCount(n int) bool {
	if p.any {
		return true
	}
	return n >= p.lo && n <= p.hi
}

// CBORPattern matches a leaf whose canonical CBOR encoding equals an exact
// byte sequence.
type CBORPattern struct {
	want []byte
}

func CBORExact(want []byte) CBORPattern { return CBORPattern{want: want} }
func (p CBORPattern) Kind() Kind        { return KindCBOR }

// Raw returns the exact canonical CBOR bytes p requires a leaf's
// encoding to equal.
func (p CBORPattern) Raw() []byte { return p.want }

// Match reports whether raw equals p's required canonical encoding.
func (p CBORPattern) Match(raw []byte) bool { return string(raw) == string(p.want) }
