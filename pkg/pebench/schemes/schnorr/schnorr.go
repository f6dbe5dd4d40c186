package schnorr

import (
	"context"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"golang.org/x/crypto/sha3"

	"github.com/coinbase/pebench-go/pkg/pebench/scheme"
)

const (
	// Name is the registry key of this adapter.
	Name = "schnorr"
	// DefaultMessages is the number of ring elements per signed block.
	DefaultMessages = 15
)

// Params are the public parameters of one setup.
type Params struct {
	Order    *big.Int
	Messages int
}

// Scheme signs message blocks with BIP-340 Schnorr signatures over secp256k1.
// Blocks are hashed with SHA3-256 before signing.
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

// New returns a Scheme that has not been set up.
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
	s.params = &Params{Order: new(big.Int).Set(btcec.S256().N), Messages: s.messages}
	return nil
}

func (s *Scheme) GeneratePlainText() (scheme.PlainText, error) {
	if s.params == nil {
		return nil, scheme.ErrNotSetUp
	}
	return scheme.RandomMessageBlock(s.params.Messages, s.params.Order)
}

// GenerateKeyPair returns a *btcec.PrivateKey as Secret and its
// *btcec.PublicKey as Public.
func (s *Scheme) GenerateKeyPair(context.Context) (scheme.KeyPair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return scheme.KeyPair{}, fmt.Errorf("schnorr: generate key: %w", err)
	}
	return scheme.KeyPair{Public: priv.PubKey(), Secret: priv}, nil
}

func (s *Scheme) Sign(_ context.Context, pt scheme.PlainText, signingKey any) (scheme.Signature, error) {
	priv, ok := signingKey.(*btcec.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: want *btcec.PrivateKey, got %T", scheme.ErrKeyType, signingKey)
	}
	digest, err := s.digest(pt)
	if err != nil {
		return nil, err
	}
	sig, err := schnorr.Sign(priv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("schnorr: sign: %w", err)
	}
	return sig, nil
}

func (s *Scheme) Verify(_ context.Context, pt scheme.PlainText, sig scheme.Signature, verificationKey any) (bool, error) {
	pub, ok := verificationKey.(*btcec.PublicKey)
	if !ok {
		return false, fmt.Errorf("%w: want *btcec.PublicKey, got %T", scheme.ErrKeyType, verificationKey)
	}
	signature, ok := sig.(*schnorr.Signature)
	if !ok {
		return false, fmt.Errorf("%w: want *schnorr.Signature, got %T", scheme.ErrKeyType, sig)
	}
	digest, err := s.digest(pt)
	if err != nil {
		return false, err
	}
	return signature.Verify(digest[:], pub), nil
}

func (s *Scheme) digest(pt scheme.PlainText) ([32]byte, error) {
	if s.params == nil {
		return [32]byte{}, scheme.ErrNotSetUp
	}
	block, err := scheme.AsMessageBlock(pt, s.params.Messages)
	if err != nil {
		return [32]byte{}, err
	}
	return sha3.Sum256(block.Bytes()), nil
}
