// Package paillier benchmarks Paillier public-key encryption from
// github.com/roasbeef/go-go-gadget-paillier.
//
// Plaintexts are ring elements below 2^(bits-2), which is smaller than every
// modulus N a key of the configured size can have.
package paillier
