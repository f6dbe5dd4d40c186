package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coinbase/pebench-go/pkg/pebench/attribute"
)

// ErrInvalidPolicy indicates a structurally malformed policy tree.
var ErrInvalidPolicy = errors.New("policy: invalid policy")

// Policy is a predicate over a set of attributes.
type Policy interface {
	// SatisfiedBy reports whether attrs satisfies the policy.
	SatisfiedBy(attrs attribute.Set) bool
	// AttributeSet returns every attribute the policy mentions.
	AttributeSet() attribute.Set
	String() string

	isPolicy()
}

// leaf is satisfied by any set containing attr.
type leaf struct {
	attr attribute.Attribute
}

// andGate requires all children.
type andGate struct {
	children []Policy
}

// orGate requires any child.
type orGate struct {
	children []Policy
}

// thresholdGate requires k of n children.
type thresholdGate struct {
	k        int
	children []Policy
}

func (leaf) isPolicy()          {}
func (andGate) isPolicy()       {}
func (orGate) isPolicy()        {}
func (thresholdGate) isPolicy() {}

// Leaf creates a policy satisfied by any set containing a.
func Leaf(a attribute.Attribute) Policy {
	return leaf{attr: a}
}

// And creates a policy requiring every child to be satisfied.
func And(children ...Policy) Policy {
	return andGate{children: children}
}

// Or creates a policy requiring at least one child to be satisfied.
func Or(children ...Policy) Policy {
	return orGate{children: children}
}

// Threshold creates a policy requiring at least k of its children to be
// satisfied.
func Threshold(k int, children ...Policy) Policy {
	return thresholdGate{k: k, children: children}
}

// AllOf returns the AND of one leaf per attribute of set.
func AllOf(set attribute.Set) Policy {
	return And(leaves(set)...)
}

// AnyOf returns the OR of one leaf per attribute of set.
func AnyOf(set attribute.Set) Policy {
	return Or(leaves(set)...)
}

func leaves(set attribute.Set) []Policy {
	attrs := set.Attributes()
	out := make([]Policy, len(attrs))
	for i, a := range attrs {
		out[i] = Leaf(a)
	}
	return out
}

func (p leaf) SatisfiedBy(attrs attribute.Set) bool {
	return attrs.Contains(p.attr)
}

func (p andGate) SatisfiedBy(attrs attribute.Set) bool {
	return countSatisfied(p.children, attrs) == len(p.children)
}

func (p orGate) SatisfiedBy(attrs attribute.Set) bool {
	return countSatisfied(p.children, attrs) > 0
}

func (p thresholdGate) SatisfiedBy(attrs attribute.Set) bool {
	return countSatisfied(p.children, attrs) >= p.k
}

func countSatisfied(children []Policy, attrs attribute.Set) int {
	n := 0
	for _, c := range children {
		if c.SatisfiedBy(attrs) {
			n++
		}
	}
	return n
}

func (p leaf) AttributeSet() attribute.Set          { return attribute.NewSet(p.attr) }
func (p andGate) AttributeSet() attribute.Set       { return union(p.children) }
func (p orGate) AttributeSet() attribute.Set        { return union(p.children) }
func (p thresholdGate) AttributeSet() attribute.Set { return union(p.children) }

func union(children []Policy) attribute.Set {
	var out []attribute.Attribute
	for _, c := range children {
		out = append(out, c.AttributeSet().Attributes()...)
	}
	return attribute.NewSet(out...)
}

func (p leaf) String() string    { return p.attr.String() }
func (p andGate) String() string { return "AND(" + join(p.children) + ")" }
func (p orGate) String() string  { return "OR(" + join(p.children) + ")" }
func (p thresholdGate) String() string {
	return fmt.Sprintf("TH%d(%s)", p.k, join(p.children))
}

func join(children []Policy) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// Validate checks the structure of p: gates must have children and threshold
// gates must satisfy 1 <= k <= n.
func Validate(p Policy) error {
	switch node := p.(type) {
	case nil:
		return fmt.Errorf("%w: nil policy", ErrInvalidPolicy)
	case leaf:
		return nil
	case andGate:
		return validateChildren("AND", node.children)
	case orGate:
		return validateChildren("OR", node.children)
	case thresholdGate:
		if err := validateChildren("threshold", node.children); err != nil {
			return err
		}
		if node.k <= 0 {
			return fmt.Errorf("%w: threshold k must be positive, got %d", ErrInvalidPolicy, node.k)
		}
		if node.k > len(node.children) {
			return fmt.Errorf("%w: threshold k (%d) cannot exceed number of children (%d)", ErrInvalidPolicy, node.k, len(node.children))
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown policy type %T", ErrInvalidPolicy, p)
	}
}

func validateChildren(gate string, children []Policy) error {
	if len(children) == 0 {
		return fmt.Errorf("%w: %s gate requires at least one child", ErrInvalidPolicy, gate)
	}
	for _, c := range children {
		if err := Validate(c); err != nil {
			return err
		}
	}
	return nil
}
