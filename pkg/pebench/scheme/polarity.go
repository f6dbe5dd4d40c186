package scheme

import (
	"fmt"
	"strings"

	"github.com/coinbase/pebench-go/pkg/pebench/attribute"
	"github.com/coinbase/pebench-go/pkg/pebench/policy"
)

// Polarity selects which side of a predicate encryption scheme carries the
// policy and which carries the attribute set.
type Polarity int

const (
	// CiphertextPolicy schemes bind keys to attribute sets and ciphertexts to
	// policies.
	CiphertextPolicy Polarity = iota + 1
	// KeyPolicy schemes bind keys to policies and ciphertexts to attribute
	// sets.
	KeyPolicy
)

func (p Polarity) String() string {
	switch p {
	case CiphertextPolicy:
		return "cp"
	case KeyPolicy:
		return "kp"
	default:
		return "unset"
	}
}

// Valid reports whether p is CiphertextPolicy or KeyPolicy.
func (p Polarity) Valid() bool {
	return p == CiphertextPolicy || p == KeyPolicy
}

// ParsePolarity accepts "cp", "ciphertext-policy", "kp" and "key-policy" in
// any case.
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cp", "ciphertext-policy":
		return CiphertextPolicy, nil
	case "kp", "key-policy":
		return KeyPolicy, nil
	default:
		return 0, fmt.Errorf("unknown polarity %q (want cp or kp)", s)
	}
}

// Indices resolves which object indexes the decryption key and which indexes
// the ciphertext:
//
//	CiphertextPolicy: key = attrs,  ciphertext = pol
//	KeyPolicy:        key = pol,    ciphertext = attrs
//
// In both cases decryption succeeds iff attrs satisfies pol. Indices panics on
// an invalid polarity.
func (p Polarity) Indices(attrs attribute.Set, pol policy.Policy) (key, ciphertext Index) {
	switch p {
	case CiphertextPolicy:
		return attrs, pol
	case KeyPolicy:
		return pol, attrs
	default:
		panic(fmt.Sprintf("scheme: invalid polarity %d", int(p)))
	}
}
