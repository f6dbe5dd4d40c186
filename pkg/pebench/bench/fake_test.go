package bench_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/coinbase/pebench-go/pkg/pebench/attribute"
	"github.com/coinbase/pebench-go/pkg/pebench/policy"
	"github.com/coinbase/pebench-go/pkg/pebench/scheme"
)

var testModulus = new(big.Int).Lsh(big.NewInt(1), 127)

// calls is shared by every instance a factory produces.
type calls struct {
	instances int
	setups    int
	keyIdx    []string
	ctIdx     []string
}

func kind(idx scheme.Index) string {
	switch idx.(type) {
	case attribute.Set:
		return "set"
	case policy.Policy:
		return "policy"
	default:
		return fmt.Sprintf("%T", idx)
	}
}

type fakeKey struct{ idx scheme.Index }

type fakeCiphertext struct {
	pt  scheme.PlainText
	idx scheme.Index
}

// fakePredicate is an insecure predicate "encryption" that stores the
// plaintext next to its index and releases it iff the indices match.
type fakePredicate struct {
	polarity scheme.Polarity
	calls    *calls
	setupErr error
	// corrupt makes Decrypt return a different plaintext.
	corrupt bool
	// leak makes Decrypt ignore the policy.
	leak  bool
	setUp bool
}

func newFakeFactory(p scheme.Polarity, c *calls, mutate ...func(*fakePredicate)) func() scheme.PredicateBenchmarkable {
	return func() scheme.PredicateBenchmarkable {
		c.instances++
		f := &fakePredicate{polarity: p, calls: c}
		for _, m := range mutate {
			m(f)
		}
		return f
	}
}

func (f *fakePredicate) Name() string              { return "fake-" + f.polarity.String() }
func (f *fakePredicate) Polarity() scheme.Polarity { return f.polarity }
func (f *fakePredicate) PublicParameters() any     { return nil }
func (f *fakePredicate) MasterSecret() any         { return nil }

func (f *fakePredicate) DoSetup(_ context.Context, _, _ scheme.IndexHint) error {
	f.calls.setups++
	if f.setupErr != nil {
		return f.setupErr
	}
	f.setUp = true
	return nil
}

func (f *fakePredicate) GeneratePlainText() (scheme.PlainText, error) {
	return scheme.RandomRingElement(testModulus)
}

func (f *fakePredicate) GenerateDecryptionKey(_ context.Context, idx scheme.Index) (scheme.DecryptionKey, error) {
	if !f.setUp {
		return nil, scheme.ErrNotSetUp
	}
	f.calls.keyIdx = append(f.calls.keyIdx, kind(idx))
	return fakeKey{idx: idx}, nil
}

func (f *fakePredicate) Encrypt(_ context.Context, pt scheme.PlainText, idx scheme.Index) (scheme.CipherText, error) {
	f.calls.ctIdx = append(f.calls.ctIdx, kind(idx))
	return fakeCiphertext{pt: pt, idx: idx}, nil
}

func (f *fakePredicate) Decrypt(_ context.Context, ct scheme.CipherText, key scheme.DecryptionKey) (scheme.PlainText, error) {
	c := ct.(fakeCiphertext)
	k := key.(fakeKey)

	setIdx, polIdx := k.idx, c.idx
	if f.polarity == scheme.KeyPolicy {
		setIdx, polIdx = c.idx, k.idx
	}
	set, err := scheme.AsAttributeSet(setIdx)
	if err != nil {
		return nil, err
	}
	pol, err := scheme.AsPolicy(polIdx)
	if err != nil {
		return nil, err
	}
	if !f.leak && !pol.SatisfiedBy(set) {
		return nil, errors.New("attributes do not satisfy policy")
	}
	if f.corrupt {
		return scheme.RandomRingElement(testModulus)
	}
	return c.pt, nil
}

type fakeSignature struct {
	calls   *calls
	forgery bool
}

func (f *fakeSignature) Name() string          { return "fake-sig" }
func (f *fakeSignature) PublicParameters() any { return nil }

func (f *fakeSignature) DoSetup(context.Context, scheme.IndexHint, scheme.IndexHint) error {
	f.calls.setups++
	return nil
}

func (f *fakeSignature) GeneratePlainText() (scheme.PlainText, error) {
	return scheme.RandomMessageBlock(3, testModulus)
}

func (f *fakeSignature) GenerateKeyPair(context.Context) (scheme.KeyPair, error) {
	return scheme.KeyPair{Public: "vk", Secret: "sk"}, nil
}

func (f *fakeSignature) Sign(_ context.Context, pt scheme.PlainText, _ any) (scheme.Signature, error) {
	return pt.Bytes(), nil
}

func (f *fakeSignature) Verify(_ context.Context, pt scheme.PlainText, sig scheme.Signature, _ any) (bool, error) {
	if f.forgery {
		return false, nil
	}
	return bytes.Equal(sig.([]byte), pt.Bytes()), nil
}

type fakeEncryption struct {
	calls *calls
}

func (f *fakeEncryption) Name() string          { return "fake-pke" }
func (f *fakeEncryption) PublicParameters() any { return nil }

func (f *fakeEncryption) DoSetup(context.Context, scheme.IndexHint, scheme.IndexHint) error {
	f.calls.setups++
	return nil
}

func (f *fakeEncryption) GeneratePlainText() (scheme.PlainText, error) {
	return scheme.RandomRingElement(testModulus)
}

func (f *fakeEncryption) GenerateKeyPair(context.Context) (scheme.KeyPair, error) {
	return scheme.KeyPair{Public: 1, Secret: 2}, nil
}

func (f *fakeEncryption) Encrypt(_ context.Context, pt scheme.PlainText, _ any) (scheme.CipherText, error) {
	return pt, nil
}

func (f *fakeEncryption) Decrypt(_ context.Context, ct scheme.CipherText, _ any) (scheme.PlainText, error) {
	return ct.(scheme.PlainText), nil
}
