package pattern

import (
	"encoding/binary"
	"regexp"

	"github.com/google/uuid"
)

// KnownValueRegistry resolves known-value numeric identifiers to their
// registered names and back. It starts empty; entries are added with
// Register or RegisterAuto.
type KnownValueRegistry struct {
	byValue map[uint64]string
	byName  map[string]uint64
}

// NewKnownValueRegistry builds an empty registry.
func NewKnownValueRegistry() *KnownValueRegistry {
	return &KnownValueRegistry{
		byValue: make(map[uint64]string),
		byName:  make(map[string]uint64),
	}
}

// Register associates value with name, overwriting any prior
// registration for either key.
func (r *KnownValueRegistry) Register(value uint64, name string) {
	r.byValue[value] = name
	r.byName[name] = value
}

// NameOf returns the registered name for value, if any.
func (r *KnownValueRegistry) NameOf(value uint64) (string, bool) {
	name, ok := r.byValue[value]
	return name, ok
}

// ValueOf returns the registered value for name, if any.
func (r *KnownValueRegistry) ValueOf(name string) (uint64, bool) {
	v, ok := r.byName[name]
	return v, ok
}

// RegisterAuto mints a synthetic known-value identifier derived from a
// random UUID and registers it under name, the way
// Mindburn-Labs/helm/core/pkg/provenance/envelope.go stamps each
// envelope with a UUID rather than a caller-supplied numeric ID. Useful
// for test fixtures and ad-hoc registries that don't care about a
// specific numeric value, only that it's unique and named.
func (r *KnownValueRegistry) RegisterAuto(name string) uint64 {
	value := uuidToUint64(uuid.New())
	r.Register(value, name)
	return value
}

// uuidToUint64 folds a UUID's 16 bytes into a uint64 by XOR-ing its two
// halves, giving a compact synthetic identifier derived from genuinely
// random bits rather than a caller-chosen constant.
func uuidToUint64(id uuid.UUID) uint64 {
	hi := binary.BigEndian.Uint64(id[:8])
	lo := binary.BigEndian.Uint64(id[8:])
	return hi ^ lo
}

// MatchNameRegex reports whether value's registered name (if any)
// matches re.
func (r *KnownValueRegistry) MatchNameRegex(value uint64, re *regexp.Regexp) bool {
	name, ok := r.byValue[value]
	return ok && re.MatchString(name)
}

// TagRegistry resolves CBOR tag numbers to their registered names, for
// TaggedPattern's TaggedByName mode.
type TagRegistry struct {
	byNumber map[uint64]string
	byName   map[string]uint64
}

// NewTagRegistry builds an empty registry.
func NewTagRegistry() *TagRegistry {
	return &TagRegistry{
		byNumber: make(map[uint64]string),
		byName:   make(map[string]uint64),
	}
}

// Register associates number with name.
func (r *TagRegistry) Register(number uint64, name string) {
	r.byNumber[number] = name
	r.byName[name] = number
}

// NumberOf returns the registered tag number for name, if any.
func (r *TagRegistry) NumberOf(name string) (uint64, bool) {
	n, ok := r.byName[name]
	return n, ok
}

// NameOf returns the registered name for number, if any.
func (r *TagRegistry) NameOf(number uint64) (string, bool) {
	n, ok := r.byNumber[number]
	return n, ok
}

// RegisterAuto mints a synthetic tag number from a random UUID and
// registers it under name; see KnownValueRegistry.RegisterAuto.
func (r *TagRegistry) RegisterAuto(name string) uint64 {
	number := uuidToUint64(uuid.New())
	r.Register(number, name)
	return number
}

// MatchContext carries the registries a match needs to resolve
// KnownValuePattern and TaggedPattern's by-name/regex modes. A nil
// *MatchContext is valid: name/regex-based patterns simply never
// match, since there is nothing registered to resolve them against.
type MatchContext struct {
	KnownValues *KnownValueRegistry
	Tags        *TagRegistry
}

// NewMatchContext builds a context with empty registries.
func NewMatchContext() *MatchContext {
	return &MatchContext{
		KnownValues: NewKnownValueRegistry(),
		Tags:        NewTagRegistry(),
	}
}
