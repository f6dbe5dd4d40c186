// Package attribute defines the attributes and attribute sets that predicate
// encryption schemes are benchmarked against.
//
// An Attribute is an opaque integer tag. A Set is an immutable collection of
// distinct attributes; depending on the polarity of the scheme under test a
// Set is bound either to a decryption key (ciphertext-policy) or to a
// ciphertext (key-policy).
//
//	set := attribute.Range(64)          // 0..63
//	small := attribute.NewSet(1, 2, 3)
//	ok := set.Subset(small)             // true
//
// Schemes that operate on string attributes use Set.Strings, which renders
// every attribute in decimal.
package attribute
