// Package policy provides a small DSL for the access policies used by
// predicate encryption benchmarks.
//
// A Policy is a predicate over an attribute.Set. The package offers four
// building blocks:
//   - Leaf(a): satisfied iff attribute a is present
//   - And(children...): satisfied iff ALL children are
//   - Or(children...): satisfied iff ANY child is
//   - Threshold(k, children...): satisfied iff at least k children are
//
// AllOf and AnyOf build the flat AND/OR policies over every attribute of a
// set that the default benchmark configuration uses:
//
//	set := attribute.Range(64)
//	all := policy.AllOf(set)  // 0 AND 1 AND ... AND 63
//	any := policy.AnyOf(set)  // 0 OR 1 OR ... OR 63
//
//	nested := policy.And(
//	    policy.Leaf(0),
//	    policy.Threshold(2, policy.Leaf(1), policy.Leaf(2), policy.Leaf(3)),
//	)
//	nested.SatisfiedBy(attribute.NewSet(0, 1, 3)) // true
//
// # Walking a policy
//
// Gate and LeafAttribute expose the tree to code that compiles policies into
// other forms, such as the span programs used by ABE schemes. Gate reports
// every gate as k-of-n, so AND and OR need no special cases. Leaves and
// Repeated list the attribute occurrences.
package policy
