package policy

import (
	"slices"

	"github.com/coinbase/pebench-go/pkg/pebench/attribute"
)

// LeafAttribute returns the attribute of a leaf. ok is false for gates.
func LeafAttribute(p Policy) (a attribute.Attribute, ok bool) {
	l, ok := p.(leaf)
	return l.attr, ok
}

// Gate describes p as a threshold gate: an AND over n children is n-of-n and
// an OR is 1-of-n. ok is false for leaves. The returned slice is a copy.
func Gate(p Policy) (k int, children []Policy, ok bool) {
	switch node := p.(type) {
	case andGate:
		return len(node.children), slices.Clone(node.children), true
	case orGate:
		return 1, slices.Clone(node.children), true
	case thresholdGate:
		return node.k, slices.Clone(node.children), true
	default:
		return 0, nil, false
	}
}

// Leaves returns the attribute of every leaf in depth-first order, including
// repeats.
func Leaves(p Policy) []attribute.Attribute {
	var out []attribute.Attribute
	var walk func(Policy)
	walk = func(p Policy) {
		if a, ok := LeafAttribute(p); ok {
			out = append(out, a)
			return
		}
		_, children, _ := Gate(p)
		for _, c := range children {
			walk(c)
		}
	}
	walk(p)
	return out
}

// Repeated returns the first attribute that appears in more than one leaf
// of p.
func Repeated(p Policy) (attribute.Attribute, bool) {
	seen := make(map[attribute.Attribute]bool)
	for _, a := range Leaves(p) {
		if seen[a] {
			return a, true
		}
		seen[a] = true
	}
	return 0, false
}
