// Package ecdsa benchmarks secp256k1 ECDSA, as implemented by go-ethereum,
// as a multi-message signature scheme: a key pair signs the Keccak-256
// digest of a whole message block.
package ecdsa
