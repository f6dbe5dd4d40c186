package bench

import (
	"github.com/coinbase/pebench-go/pkg/pebench/attribute"
	"github.com/coinbase/pebench-go/pkg/pebench/policy"
)

// Fixture pairs a benchmark input with the label it is reported under.
type Fixture[T any] struct {
	value T
	label string
}

// NewFixture returns a fixture holding value under label.
func NewFixture[T any](value T, label string) Fixture[T] {
	return Fixture[T]{value: value, label: label}
}

func (f Fixture[T]) Value() T      { return f.value }
func (f Fixture[T]) Label() string { return f.label }

type (
	AttributeSetFixture = Fixture[attribute.Set]
	PolicyFixture       = Fixture[policy.Policy]
)
