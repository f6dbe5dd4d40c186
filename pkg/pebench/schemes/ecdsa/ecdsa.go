package ecdsa

import (
	"context"
	stdecdsa "crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"

	"github.com/coinbase/pebench-go/pkg/pebench/scheme"
)

const (
	// Name is the registry key of this adapter.
	Name = "ecdsa"

	// DefaultMessages is the number of ring elements per signed block.
	DefaultMessages = 15
)

// Params are the public parameters: the group order messages are sampled
// from and the block length.
type Params struct {
	Order    *big.Int
	Messages int
}

// Scheme signs message blocks with ECDSA over secp256k1 using go-ethereum's
// crypto package. Blocks are hashed with Keccak-256.
type Scheme struct {
	messages int
	params   *Params
}

// Option configures a Scheme.
type Option func(*Scheme)

// WithMessages sets the number of messages per block.
func WithMessages(n int) Option {
	return func(s *Scheme) {
		if n > 0 {
			s.messages = n
		}
	}
}

// New returns a Scheme with DefaultMessages unless opts say otherwise. It
// must be set up before use.
func New(opts ...Option) *Scheme {
	s := &Scheme{messages: DefaultMessages}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ scheme.SignatureBenchmarkable = (*Scheme)(nil)

func (s *Scheme) Name() string          { return Name }
func (s *Scheme) PublicParameters() any { return s.params }

func (s *Scheme) DoSetup(context.Context, scheme.IndexHint, scheme.IndexHint) error {
	s.params = &Params{
		Order:    new(big.Int).Set(crypto.S256().Params().N),
		Messages: s.messages,
	}
	return nil
}

func (s *Scheme) GeneratePlainText() (scheme.PlainText, error) {
	if s.params == nil {
		return nil, scheme.ErrNotSetUp
	}
	return scheme.RandomMessageBlock(s.params.Messages, s.params.Order)
}

// GenerateKeyPair returns the private key as Secret and the uncompressed
// public key encoding as Public.
func (s *Scheme) GenerateKeyPair(context.Context) (scheme.KeyPair, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return scheme.KeyPair{}, fmt.Errorf("ecdsa: generate key: %w", err)
	}
	return scheme.KeyPair{Public: crypto.FromECDSAPub(&priv.PublicKey), Secret: priv}, nil
}

func (s *Scheme) Sign(_ context.Context, pt scheme.PlainText, signingKey any) (scheme.Signature, error) {
	priv, ok := signingKey.(*stdecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: want *ecdsa.PrivateKey, got %T", scheme.ErrKeyType, signingKey)
	}
	digest, err := s.digest(pt)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(digest, priv)
	if err != nil {
		return nil, fmt.Errorf("ecdsa: sign: %w", err)
	}
	return sig, nil
}

// Verify checks a 65-byte [R || S || V] signature; the recovery byte is
// ignored.
func (s *Scheme) Verify(_ context.Context, pt scheme.PlainText, sig scheme.Signature, verificationKey any) (bool, error) {
	pub, ok := verificationKey.([]byte)
	if !ok {
		return false, fmt.Errorf("%w: want encoded public key, got %T", scheme.ErrKeyType, verificationKey)
	}
	raw, ok := sig.([]byte)
	if !ok || len(raw) != crypto.SignatureLength {
		return false, fmt.Errorf("%w: malformed signature", scheme.ErrKeyType)
	}
	digest, err := s.digest(pt)
	if err != nil {
		return false, err
	}
	return crypto.VerifySignature(pub, digest, raw[:crypto.RecoveryIDOffset]), nil
}

func (s *Scheme) digest(pt scheme.PlainText) ([]byte, error) {
	if s.params == nil {
		return nil, scheme.ErrNotSetUp
	}
	block, err := scheme.AsMessageBlock(pt, s.params.Messages)
	if err != nil {
		return nil, err
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(block.Bytes())
	return h.Sum(nil), nil
}
