// Package scheme defines the contracts between the benchmark harness and the
// schemes it measures.
//
// The harness never depends on concrete scheme types. Each scheme family is
// driven through one capability interface:
//   - PredicateBenchmarkable: CP-ABE, KP-ABE and other predicate encryption
//   - SignatureBenchmarkable: (multi-message) signature schemes
//   - EncryptionBenchmarkable: plain public-key encryption
//
// All three embed Benchmarkable, which covers setup, plaintext sampling and
// access to the public parameters.
//
// # Polarity
//
// Predicate encryption schemes differ in which side carries the policy.
// Polarity.Indices is the single place where that choice is resolved:
//
//	key, ct := scheme.CiphertextPolicy.Indices(attrs, pol) // key = attrs, ct = pol
//	key, ct  = scheme.KeyPolicy.Indices(attrs, pol)        // key = pol,   ct = attrs
//
// Adapters use AsAttributeSet and AsPolicy to unwrap indices; both return
// ErrIndexType when handed the wrong kind, so a polarity mix-up fails loudly
// instead of silently benchmarking the wrong cost curve.
//
// # Message spaces
//
// GroupElement (random non-identity elements of the BN256 target group),
// RingElement (random elements of Z_p) and MessageBlock (a block of several
// messages) cover the message spaces of the bundled adapters.
package scheme
