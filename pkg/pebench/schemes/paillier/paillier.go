package paillier

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/roasbeef/go-go-gadget-paillier"

	"github.com/coinbase/pebench-go/pkg/pebench/scheme"
)

const (
	// Name is the registry key of this adapter.
	Name = "paillier"

	// DefaultBits is the modulus size used when WithBits is not given.
	DefaultBits = 2048
	minBits     = 128
)

// Params are the public parameters shared by every key pair of one setup.
type Params struct {
	Bits       int
	PlainSpace *big.Int
}

// Scheme benchmarks Paillier encryption of ring elements below the plaintext
// bound in Params.
type Scheme struct {
	bits   int
	params *Params
}

// Option configures a Scheme.
type Option func(*Scheme)

// WithBits sets the modulus size of generated keys.
func WithBits(bits int) Option {
	return func(s *Scheme) {
		s.bits = bits
	}
}

// New returns a Scheme that has not been set up.
func New(opts ...Option) *Scheme {
	s := &Scheme{bits: DefaultBits}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ scheme.EncryptionBenchmarkable = (*Scheme)(nil)

func (s *Scheme) Name() string          { return Name }
func (s *Scheme) PublicParameters() any { return s.params }

func (s *Scheme) DoSetup(context.Context, scheme.IndexHint, scheme.IndexHint) error {
	if s.bits < minBits {
		return fmt.Errorf("paillier: modulus size %d below minimum %d", s.bits, minBits)
	}
	s.params = &Params{
		Bits:       s.bits,
		PlainSpace: new(big.Int).Lsh(big.NewInt(1), uint(s.bits-2)),
	}
	return nil
}

func (s *Scheme) GeneratePlainText() (scheme.PlainText, error) {
	if s.params == nil {
		return nil, scheme.ErrNotSetUp
	}
	return scheme.RandomRingElement(s.params.PlainSpace)
}

// GenerateKeyPair returns *paillier.PublicKey as Public and
// *paillier.PrivateKey as Secret.
func (s *Scheme) GenerateKeyPair(context.Context) (scheme.KeyPair, error) {
	if s.params == nil {
		return scheme.KeyPair{}, scheme.ErrNotSetUp
	}
	priv, err := paillier.GenerateKey(rand.Reader, s.params.Bits)
	if err != nil {
		return scheme.KeyPair{}, fmt.Errorf("paillier: generate key: %w", err)
	}
	return scheme.KeyPair{Public: &priv.PublicKey, Secret: priv}, nil
}

func (s *Scheme) Encrypt(_ context.Context, pt scheme.PlainText, encryptionKey any) (scheme.CipherText, error) {
	pub, ok := encryptionKey.(*paillier.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: want *paillier.PublicKey, got %T", scheme.ErrKeyType, encryptionKey)
	}
	re, ok := pt.(*scheme.RingElement)
	if !ok {
		return nil, fmt.Errorf("%w: paillier encrypts ring elements, got %T", scheme.ErrPlainTextType, pt)
	}
	if re.Value().Cmp(pub.N) >= 0 {
		return nil, fmt.Errorf("%w: plaintext exceeds the modulus", scheme.ErrPlainTextType)
	}
	ct, err := paillier.Encrypt(pub, re.Value().Bytes())
	if err != nil {
		return nil, fmt.Errorf("paillier: encrypt: %w", err)
	}
	return ct, nil
}

func (s *Scheme) Decrypt(_ context.Context, ct scheme.CipherText, decryptionKey any) (scheme.PlainText, error) {
	if s.params == nil {
		return nil, scheme.ErrNotSetUp
	}
	priv, ok := decryptionKey.(*paillier.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: want *paillier.PrivateKey, got %T", scheme.ErrKeyType, decryptionKey)
	}
	raw, ok := ct.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: want []byte ciphertext, got %T", scheme.ErrKeyType, ct)
	}
	plain, err := paillier.Decrypt(priv, raw)
	if err != nil {
		return nil, fmt.Errorf("paillier: decrypt: %w", err)
	}
	return scheme.NewRingElement(new(big.Int).SetBytes(plain), s.params.PlainSpace), nil
}
