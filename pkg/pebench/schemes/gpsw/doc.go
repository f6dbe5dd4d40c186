// Package gpsw adapts the GPSW key-policy ABE construction of
// github.com/fentec-project/gofe to the scheme.PredicateBenchmarkable
// contract.
//
// GPSW has a small attribute universe {0, ..., l-1} fixed at setup. DoSetup
// sizes it from the index hints so that every attribute the run will use
// fits.
package gpsw
