package policy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/pebench-go/pkg/pebench/attribute"
	"github.com/coinbase/pebench-go/pkg/pebench/policy"
)

func TestAllOfAnyOf(t *testing.T) {
	full := attribute.Range(64)
	all := policy.AllOf(full)
	anyOf := policy.AnyOf(full)

	assert.True(t, all.SatisfiedBy(full))
	assert.True(t, anyOf.SatisfiedBy(full))

	partial := attribute.NewSet(7)
	assert.False(t, all.SatisfiedBy(partial))
	assert.True(t, anyOf.SatisfiedBy(partial))

	assert.False(t, anyOf.SatisfiedBy(attribute.Set{}))
	assert.False(t, anyOf.SatisfiedBy(attribute.NewSet(64)))

	assert.True(t, all.AttributeSet().Equal(full))
}

func TestThreshold(t *testing.T) {
	p := policy.Threshold(2,
		policy.Leaf(1),
		policy.Leaf(2),
		policy.Leaf(3),
	)

	cases := []struct {
		attrs attribute.Set
		want  bool
	}{
		{attribute.NewSet(1), false},
		{attribute.NewSet(1, 2), true},
		{attribute.NewSet(2, 3), true},
		{attribute.NewSet(1, 2, 3), true},
		{attribute.NewSet(3, 4, 5), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, p.SatisfiedBy(tc.attrs), "attrs %s", tc.attrs)
	}
}

func TestNestedPolicy(t *testing.T) {
	// 0 AND (1 OR (2-of-3: 2, 3, 4))
	p := policy.And(
		policy.Leaf(0),
		policy.Or(
			policy.Leaf(1),
			policy.Threshold(2, policy.Leaf(2), policy.Leaf(3), policy.Leaf(4)),
		),
	)

	require.NoError(t, policy.Validate(p))
	assert.True(t, p.SatisfiedBy(attribute.NewSet(0, 1)))
	assert.True(t, p.SatisfiedBy(attribute.NewSet(0, 2, 4)))
	assert.False(t, p.SatisfiedBy(attribute.NewSet(0, 2)))
	assert.False(t, p.SatisfiedBy(attribute.NewSet(1, 2, 3)))
	assert.Equal(t, []string{"0", "1", "2", "3", "4"}, p.AttributeSet().Strings())
	assert.Equal(t, "AND(0, OR(1, TH2(2, 3, 4)))", p.String())
}

func TestValidate(t *testing.T) {
	cases := map[string]policy.Policy{
		"nil":             nil,
		"empty and":       policy.And(),
		"empty or":        policy.Or(),
		"zero threshold":  policy.Threshold(0, policy.Leaf(1)),
		"k exceeds n":     policy.Threshold(3, policy.Leaf(1), policy.Leaf(2)),
		"nested empty or": policy.And(policy.Leaf(1), policy.Or()),
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			err := policy.Validate(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, policy.ErrInvalidPolicy))
		})
	}
}

func TestGateAndLeaves(t *testing.T) {
	k, children, ok := policy.Gate(policy.AllOf(attribute.Range(3)))
	require.True(t, ok)
	assert.Equal(t, 3, k)
	assert.Len(t, children, 3)

	k, _, ok = policy.Gate(policy.AnyOf(attribute.Range(3)))
	require.True(t, ok)
	assert.Equal(t, 1, k)

	k, children, ok = policy.Gate(policy.Threshold(2, leavesOf(4)...))
	require.True(t, ok)
	assert.Equal(t, 2, k)
	children[0] = policy.Leaf(99)
	_, again, _ := policy.Gate(policy.Threshold(2, leavesOf(4)...))
	assert.Equal(t, "0", again[0].String())

	_, _, ok = policy.Gate(policy.Leaf(7))
	assert.False(t, ok)
	a, ok := policy.LeafAttribute(policy.Leaf(7))
	require.True(t, ok)
	assert.Equal(t, attribute.Attribute(7), a)
	_, ok = policy.LeafAttribute(policy.Or(policy.Leaf(7)))
	assert.False(t, ok)

	nested := policy.And(policy.Leaf(1), policy.Or(policy.Leaf(2), policy.Leaf(1)))
	assert.Equal(t, []attribute.Attribute{1, 2, 1}, policy.Leaves(nested))
	rep, ok := policy.Repeated(nested)
	require.True(t, ok)
	assert.Equal(t, attribute.Attribute(1), rep)

	_, ok = policy.Repeated(policy.Threshold(2, leavesOf(5)...))
	assert.False(t, ok)
}

func leavesOf(n int) []policy.Policy {
	out := make([]policy.Policy, n)
	for i := range out {
		out[i] = policy.Leaf(attribute.Attribute(i))
	}
	return out
}
