package attribute

import (
	"slices"
	"strconv"
	"strings"
)

// Attribute is an opaque, comparable attribute identifier.
type Attribute int64

// String returns the decimal form of the attribute. This is the name passed to
// schemes that take string attributes.
func (a Attribute) String() string {
	return strconv.FormatInt(int64(a), 10)
}

// Set is an immutable set of attributes. The zero value is the empty set.
type Set struct {
	// sorted ascending, no duplicates
	attrs []Attribute
}

// NewSet returns the set containing attrs. Duplicates collapse.
func NewSet(attrs ...Attribute) Set {
	if len(attrs) == 0 {
		return Set{}
	}
	sorted := slices.Clone(attrs)
	slices.Sort(sorted)
	return Set{attrs: slices.Compact(sorted)}
}

// Range returns the dense set {0, 1, ..., n-1}. A non-positive n yields the
// empty set.
func Range(n int) Set {
	if n <= 0 {
		return Set{}
	}
	attrs := make([]Attribute, n)
	for i := range attrs {
		attrs[i] = Attribute(i)
	}
	return Set{attrs: attrs}
}

// Len returns the number of attributes in the set.
func (s Set) Len() int {
	return len(s.attrs)
}

// Contains reports whether a is a member of s.
func (s Set) Contains(a Attribute) bool {
	_, found := slices.BinarySearch(s.attrs, a)
	return found
}

// Attributes returns the members of s in ascending order. The returned slice
// is a copy.
func (s Set) Attributes() []Attribute {
	return slices.Clone(s.attrs)
}

// Strings returns the decimal names of the members of s in ascending order.
func (s Set) Strings() []string {
	out := make([]string, len(s.attrs))
	for i, a := range s.attrs {
		out[i] = a.String()
	}
	return out
}

// Union returns the set of attributes contained in s or other.
func (s Set) Union(other Set) Set {
	merged := make([]Attribute, 0, len(s.attrs)+len(other.attrs))
	merged = append(merged, s.attrs...)
	merged = append(merged, other.attrs...)
	return NewSet(merged...)
}

// Subset reports whether every member of other is also a member of s.
func (s Set) Subset(other Set) bool {
	for _, a := range other.attrs {
		if !s.Contains(a) {
			return false
		}
	}
	return true
}

// Equal reports whether s and other contain exactly the same attributes.
func (s Set) Equal(other Set) bool {
	return slices.Equal(s.attrs, other.attrs)
}

// AttributeSet returns s itself, which lets a Set act as a key or ciphertext
// index.
func (s Set) AttributeSet() Set {
	return s
}

// Max returns the largest attribute in s and false if s is empty.
func (s Set) Max() (Attribute, bool) {
	if len(s.attrs) == 0 {
		return 0, false
	}
	return s.attrs[len(s.attrs)-1], true
}

// String renders the set as {a, b, c}.
func (s Set) String() string {
	return "{" + strings.Join(s.Strings(), ", ") + "}"
}
