package main

import (
	"sort"

	"github.com/coinbase/pebench-go/pkg/pebench/scheme"
	"github.com/coinbase/pebench-go/pkg/pebench/schemes/ecdsa"
	"github.com/coinbase/pebench-go/pkg/pebench/schemes/fame"
	"github.com/coinbase/pebench-go/pkg/pebench/schemes/gpsw"
	"github.com/coinbase/pebench-go/pkg/pebench/schemes/paillier"
	"github.com/coinbase/pebench-go/pkg/pebench/schemes/schnorr"
)

// schemeOptions carries the adapter tuning flags.
type schemeOptions struct {
	messages     int
	paillierBits int
	maxRows      int
}

// schemeEntry holds exactly one factory, matching the scheme's family.
type schemeEntry struct {
	predicate  func(schemeOptions) scheme.PredicateBenchmarkable
	signature  func(schemeOptions) scheme.SignatureBenchmarkable
	encryption func(schemeOptions) scheme.EncryptionBenchmarkable
}

var registry = map[string]schemeEntry{
	fame.Name: {predicate: func(o schemeOptions) scheme.PredicateBenchmarkable {
		return fame.New(fame.WithMaxRows(o.maxRows))
	}},
	gpsw.Name: {predicate: func(o schemeOptions) scheme.PredicateBenchmarkable {
		return gpsw.New(gpsw.WithMaxRows(o.maxRows))
	}},
	ecdsa.Name: {signature: func(o schemeOptions) scheme.SignatureBenchmarkable {
		return ecdsa.New(ecdsa.WithMessages(o.messages))
	}},
	schnorr.Name: {signature: func(o schemeOptions) scheme.SignatureBenchmarkable {
		return schnorr.New(schnorr.WithMessages(o.messages))
	}},
	paillier.Name: {encryption: func(o schemeOptions) scheme.EncryptionBenchmarkable {
		return paillier.New(paillier.WithBits(o.paillierBits))
	}},
}

func schemeNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
