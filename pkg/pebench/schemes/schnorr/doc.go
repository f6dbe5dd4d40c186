// Package schnorr benchmarks BIP-340 Schnorr signatures over secp256k1 from
// btcec. A key pair signs the SHA3-256 digest of a whole message block.
package schnorr
