// Package pebench is a benchmarking harness for predicate encryption,
// signature and public-key encryption schemes.
//
// The harness lives in package bench and drives schemes only through the
// contracts in package scheme, so new constructions plug in without changes
// to the runner. Adapters for gofe FAME (CP-ABE), gofe GPSW (KP-ABE),
// secp256k1 ECDSA, BIP-340 Schnorr and Paillier live under schemes/.
package pebench
