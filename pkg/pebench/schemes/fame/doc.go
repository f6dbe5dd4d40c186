// Package fame adapts the FAME ciphertext-policy ABE construction of
// github.com/fentec-project/gofe to the scheme.PredicateBenchmarkable
// contract.
//
// Keys are issued for attribute sets and ciphertexts are bound to policies.
// Plaintexts are random elements of the BN256 target group; they are
// hex-encoded before encryption because FAME encrypts strings.
package fame
