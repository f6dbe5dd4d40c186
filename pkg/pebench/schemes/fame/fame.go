package fame

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/fentec-project/gofe/abe"

	"github.com/coinbase/pebench-go/pkg/pebench/policy"
	"github.com/coinbase/pebench-go/pkg/pebench/scheme"
	"github.com/coinbase/pebench-go/pkg/pebench/schemes/internal/msp"
)

// Name is the scheme name used in reports and on the command line.
const Name = "fame"

// DefaultMaxRows bounds the number of leaves of a ciphertext policy.
const DefaultMaxRows = msp.DefaultMaxRows

// ErrRepeatedAttribute is returned for policies that name an attribute in
// more than one leaf. FAME allows each attribute at most one row of the
// policy matrix.
var ErrRepeatedAttribute = errors.New("fame: policy names an attribute more than once")

// Scheme is one FAME instance. It holds the master keys of a single setup
// and is not safe for concurrent use.
type Scheme struct {
	maxRows int

	fame *abe.FAME
	pk   *abe.FAMEPubKey
	sk   *abe.FAMESecKey
}

// Option configures a Scheme.
type Option func(*Scheme)

// WithMaxRows overrides DefaultMaxRows.
func WithMaxRows(n int) Option {
	return func(s *Scheme) {
		if n > 0 {
			s.maxRows = n
		}
	}
}

// New returns an instance that is not yet set up.
func New(opts ...Option) *Scheme {
	s := &Scheme{maxRows: DefaultMaxRows}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ scheme.PredicateBenchmarkable = (*Scheme)(nil)

// Name returns Name.
func (s *Scheme) Name() string { return Name }

// Polarity is always CiphertextPolicy.
func (s *Scheme) Polarity() scheme.Polarity { return scheme.CiphertextPolicy }

// PublicParameters returns the *abe.FAMEPubKey, or nil before setup.
func (s *Scheme) PublicParameters() any { return s.pk }

// MasterSecret returns the *abe.FAMESecKey, or nil before setup.
func (s *Scheme) MasterSecret() any { return s.sk }

// DoSetup generates fresh master keys. FAME has an unbounded attribute
// universe; the ciphertext hint is only checked for policies FAME cannot
// express, so they fail here rather than at the first encryption.
func (s *Scheme) DoSetup(_ context.Context, _, ciphertextHint scheme.IndexHint) error {
	for _, idx := range ciphertextHint {
		if pol, ok := idx.(policy.Policy); ok {
			if err := checkPolicy(pol); err != nil {
				return err
			}
		}
	}
	f := abe.NewFAME()
	pk, sk, err := f.GenerateMasterKeys()
	if err != nil {
		return fmt.Errorf("fame: generate master keys: %w", err)
	}
	s.fame, s.pk, s.sk = f, pk, sk
	return nil
}

// GeneratePlainText samples a random GT element, which FAME encrypts after
// serializing.
func (s *Scheme) GeneratePlainText() (scheme.PlainText, error) {
	return scheme.RandomGroupElement(nil)
}

// GenerateDecryptionKey issues a key for an attribute set.
func (s *Scheme) GenerateDecryptionKey(_ context.Context, keyIndex scheme.Index) (scheme.DecryptionKey, error) {
	if s.sk == nil {
		return nil, scheme.ErrNotSetUp
	}
	attrs, err := scheme.AsAttributeSet(keyIndex)
	if err != nil {
		return nil, err
	}
	keys, err := s.fame.GenerateAttribKeys(attrs.Strings(), s.sk)
	if err != nil {
		return nil, fmt.Errorf("fame: generate attribute keys: %w", err)
	}
	return keys, nil
}

// Encrypt encrypts pt under a policy.
func (s *Scheme) Encrypt(_ context.Context, pt scheme.PlainText, ciphertextIndex scheme.Index) (scheme.CipherText, error) {
	if s.pk == nil {
		return nil, scheme.ErrNotSetUp
	}
	ge, ok := pt.(*scheme.GroupElement)
	if !ok {
		return nil, fmt.Errorf("%w: fame encrypts GT elements, got %T", scheme.ErrPlainTextType, pt)
	}
	pol, err := scheme.AsPolicy(ciphertextIndex)
	if err != nil {
		return nil, err
	}
	if err := checkPolicy(pol); err != nil {
		return nil, err
	}
	m, err := msp.Build(pol, s.fame.P, s.maxRows)
	if err != nil {
		return nil, fmt.Errorf("fame: policy %s: %w", pol, err)
	}
	ct, err := s.fame.Encrypt(hex.EncodeToString(ge.Bytes()), m, s.pk)
	if err != nil {
		return nil, fmt.Errorf("fame: encrypt: %w", err)
	}
	return ct, nil
}

// Decrypt fails when the key's attributes do not satisfy the ciphertext's
// policy.
func (s *Scheme) Decrypt(_ context.Context, ct scheme.CipherText, key scheme.DecryptionKey) (scheme.PlainText, error) {
	if s.pk == nil {
		return nil, scheme.ErrNotSetUp
	}
	cipher, ok := ct.(*abe.FAMECipher)
	if !ok {
		return nil, fmt.Errorf("%w: want *abe.FAMECipher, got %T", scheme.ErrKeyType, ct)
	}
	keys, ok := key.(*abe.FAMEAttribKeys)
	if !ok {
		return nil, fmt.Errorf("%w: want *abe.FAMEAttribKeys, got %T", scheme.ErrKeyType, key)
	}
	msg, err := s.fame.Decrypt(cipher, keys, s.pk)
	if err != nil {
		return nil, fmt.Errorf("fame: decrypt: %w", err)
	}
	raw, err := hex.DecodeString(msg)
	if err != nil {
		return nil, fmt.Errorf("fame: decode plaintext: %w", err)
	}
	return scheme.GroupElementFromBytes(raw)
}

func checkPolicy(pol policy.Policy) error {
	if a, ok := policy.Repeated(pol); ok {
		return fmt.Errorf("%w: %s appears twice in %s", ErrRepeatedAttribute, a, pol)
	}
	return nil
}
