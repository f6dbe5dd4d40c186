package scheme

import (
	"context"
	"errors"
	"fmt"

	"github.com/coinbase/pebench-go/pkg/pebench/attribute"
	"github.com/coinbase/pebench-go/pkg/pebench/policy"
)

var (
	// ErrIndexType indicates that a key or ciphertext index of the wrong kind
	// was passed to a scheme, e.g. a policy where a CP-ABE key expects an
	// attribute set. It is the visible symptom of a polarity mix-up.
	ErrIndexType = errors.New("scheme: wrong index type")

	// ErrPlainTextType indicates a plaintext outside the scheme's message space.
	ErrPlainTextType = errors.New("scheme: wrong plaintext type")

	// ErrKeyType indicates a key or ciphertext produced by a different scheme.
	ErrKeyType = errors.New("scheme: wrong key type")

	// ErrNotSetUp indicates an operation was invoked before DoSetup succeeded.
	ErrNotSetUp = errors.New("scheme: setup has not been performed")
)

// Opaque scheme objects. The harness only moves them between calls.
type (
	CipherText    any
	DecryptionKey any
	Signature     any
)

// KeyPair holds the public and secret halves produced by a signature or
// public-key encryption scheme.
type KeyPair struct {
	Public any
	Secret any
}

// Index is the object a decryption key or a ciphertext is bound to: either an
// attribute.Set or a policy.Policy.
type Index interface {
	AttributeSet() attribute.Set
}

// IndexHint lists the indices a scheme will see in one role during a setup
// iteration, so setup can size internal structures such as the attribute
// universe.
type IndexHint []Index

// Universe returns every attribute mentioned by the hinted indices.
func (h IndexHint) Universe() attribute.Set {
	var out attribute.Set
	for _, idx := range h {
		if idx == nil {
			continue
		}
		out = out.Union(idx.AttributeSet())
	}
	return out
}

// AsAttributeSet returns idx as an attribute set or ErrIndexType.
func AsAttributeSet(idx Index) (attribute.Set, error) {
	set, ok := idx.(attribute.Set)
	if !ok {
		return attribute.Set{}, fmt.Errorf("%w: want attribute set, got %T", ErrIndexType, idx)
	}
	return set, nil
}

// AsPolicy returns idx as a policy or ErrIndexType.
func AsPolicy(idx Index) (policy.Policy, error) {
	p, ok := idx.(policy.Policy)
	if !ok {
		return nil, fmt.Errorf("%w: want policy, got %T", ErrIndexType, idx)
	}
	return p, nil
}

// Benchmarkable is the capability shared by every scheme the harness can
// drive. An instance holds the state of one setup iteration; the runner
// constructs a fresh instance for every setup and never reuses it.
type Benchmarkable interface {
	// Name identifies the scheme in reports.
	Name() string

	// DoSetup generates public parameters and, where applicable, the master
	// secret. Failures are returned unchanged; retry policy belongs to the
	// scheme.
	DoSetup(ctx context.Context, keyHint, ciphertextHint IndexHint) error

	// GeneratePlainText samples a fresh message from the scheme's message
	// space. Calls are independent.
	GeneratePlainText() (PlainText, error)

	// PublicParameters returns the parameters produced by DoSetup.
	PublicParameters() any
}

// PredicateBenchmarkable is implemented by attribute-based and other
// predicate encryption schemes.
type PredicateBenchmarkable interface {
	Benchmarkable

	// Polarity reports whether the scheme is ciphertext-policy or key-policy.
	Polarity() Polarity

	// MasterSecret returns the master secret produced by DoSetup.
	MasterSecret() any

	GenerateDecryptionKey(ctx context.Context, keyIndex Index) (DecryptionKey, error)
	Encrypt(ctx context.Context, pt PlainText, ciphertextIndex Index) (CipherText, error)
	Decrypt(ctx context.Context, ct CipherText, key DecryptionKey) (PlainText, error)
}

// SignatureBenchmarkable is implemented by (multi-message) signature schemes.
type SignatureBenchmarkable interface {
	Benchmarkable

	GenerateKeyPair(ctx context.Context) (KeyPair, error)
	Sign(ctx context.Context, pt PlainText, signingKey any) (Signature, error)
	Verify(ctx context.Context, pt PlainText, sig Signature, verificationKey any) (bool, error)
}

// EncryptionBenchmarkable is implemented by plain public-key encryption
// schemes.
type EncryptionBenchmarkable interface {
	Benchmarkable

	GenerateKeyPair(ctx context.Context) (KeyPair, error)
	Encrypt(ctx context.Context, pt PlainText, encryptionKey any) (CipherText, error)
	Decrypt(ctx context.Context, ct CipherText, decryptionKey any) (PlainText, error)
}
