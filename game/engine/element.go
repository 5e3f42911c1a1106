package engine

import "strings"

// Element is one substance of a catalog. Its identity is immutable; only the
// unlocked flag changes over the lifetime of a catalog.
type Element struct {
	id       ElementID
	base     bool
	unlocked bool
}

// NewElement creates a standalone element. Elements created this way are
// equal to catalog elements with the same name and image key.
func NewElement(name, imageKey string, unlocked bool) *Element {
	return &Element{
		id:       ElementID{Name: name, ImageKey: imageKey},
		unlocked: unlocked,
	}
}

// ID returns the identity of the element
func (e *Element) ID() ElementID {
	return e.id
}

// Name returns the human-readable element name
func (e *Element) Name() string {
	return e.id.Name
}

// ImageKey returns the opaque asset reference
func (e *Element) ImageKey() string {
	return e.id.ImageKey
}

// IsBase reports whether the element is one of the four starter elements
func (e *Element) IsBase() bool {
	return e.base
}

// IsUnlocked reports whether the element is available for selection
func (e *Element) IsUnlocked() bool {
	return e.unlocked
}

// Equal compares identities only. The unlocked flag is ignored.
func (e *Element) Equal(other *Element) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.id == other.id
}

// String implements fmt.Stringer
func (e *Element) String() string {
	return e.id.Name
}

// pairKey is an unordered pair of element identities
type pairKey struct {
	a, b ElementID
}

// newPairKey normalises the operand order so {a,b} and {b,a} share a key
func newPairKey(first, second ElementID) pairKey {
	if less(second, first) {
		first, second = second, first
	}
	return pairKey{a: first, b: second}
}

func less(x, y ElementID) bool {
	if x.Name != y.Name {
		return x.Name < y.Name
	}
	return x.ImageKey < y.ImageKey
}

// normalizeName is the lookup key for element names
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
