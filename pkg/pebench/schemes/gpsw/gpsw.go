package gpsw

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/fentec-project/gofe/abe"
	"github.com/fentec-project/gofe/data"

	"github.com/coinbase/pebench-go/pkg/pebench/attribute"
	"github.com/coinbase/pebench-go/pkg/pebench/scheme"
	"github.com/coinbase/pebench-go/pkg/pebench/schemes/internal/msp"
)

// Name is the scheme name used in reports and on the command line.
const Name = "gpsw"

// DefaultMaxRows bounds the number of leaves of a key policy.
const DefaultMaxRows = msp.DefaultMaxRows

// MaxUniverseSize bounds l. Setup allocates public parameters for every
// attribute of the universe, so larger universes are refused.
const MaxUniverseSize = 1 << 20

// ErrOutsideUniverse is returned for attributes outside {0, ..., l-1} and for
// universes larger than MaxUniverseSize.
var ErrOutsideUniverse = errors.New("gpsw: attribute outside the universe fixed at setup")

// Scheme is one GPSW instance over the universe {0, ..., l-1}. It holds the
// master keys of a single setup and is not safe for concurrent use.
type Scheme struct {
	maxRows     int
	minUniverse int

	gpsw *abe.GPSW
	pk   *abe.GPSWPubKey
	sk   data.Vector
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

// WithUniverseSize sets a lower bound on l. The hints may still enlarge it.
func WithUniverseSize(l int) Option {
	return func(s *Scheme) {
		s.minUniverse = l
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

// Polarity is always KeyPolicy.
func (s *Scheme) Polarity() scheme.Polarity { return scheme.KeyPolicy }

// PublicParameters returns the *abe.GPSWPubKey, or nil before setup.
func (s *Scheme) PublicParameters() any { return s.pk }

// MasterSecret returns the secret data.Vector, or nil before setup.
func (s *Scheme) MasterSecret() any { return s.sk }

// UniverseSize returns l, or 0 before setup.
func (s *Scheme) UniverseSize() int {
	if s.gpsw == nil {
		return 0
	}
	return s.gpsw.Params.L
}

// DoSetup generates master keys for a universe just large enough for every
// attribute named in the hints.
func (s *Scheme) DoSetup(_ context.Context, keyHint, ciphertextHint scheme.IndexHint) error {
	l, err := universeSize(keyHint.Universe().Union(ciphertextHint.Universe()))
	if err != nil {
		return err
	}
	l = max(l, s.minUniverse, 1)
	if l > MaxUniverseSize {
		return fmt.Errorf("%w: universe of %d attributes exceeds %d", ErrOutsideUniverse, l, MaxUniverseSize)
	}

	g := abe.NewGPSW(l)
	pk, sk, err := g.GenerateMasterKeys()
	if err != nil {
		return fmt.Errorf("gpsw: generate master keys: %w", err)
	}
	s.gpsw, s.pk, s.sk = g, pk, sk
	return nil
}

func universeSize(attrs attribute.Set) (int, error) {
	top, ok := attrs.Max()
	if !ok {
		return 0, nil
	}
	if lowest := attrs.Attributes()[0]; lowest < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrOutsideUniverse, lowest)
	}
	if top >= MaxUniverseSize {
		return 0, fmt.Errorf("%w: %d exceeds the largest universe %d", ErrOutsideUniverse, top, MaxUniverseSize)
	}
	return int(top) + 1, nil
}

// GeneratePlainText samples a random GT element.
func (s *Scheme) GeneratePlainText() (scheme.PlainText, error) {
	return scheme.RandomGroupElement(nil)
}

// GenerateDecryptionKey issues a key for a policy.
func (s *Scheme) GenerateDecryptionKey(_ context.Context, keyIndex scheme.Index) (scheme.DecryptionKey, error) {
	if s.sk == nil {
		return nil, scheme.ErrNotSetUp
	}
	pol, err := scheme.AsPolicy(keyIndex)
	if err != nil {
		return nil, err
	}
	if err := s.checkUniverse(pol.AttributeSet()); err != nil {
		return nil, err
	}
	m, err := msp.Build(pol, s.gpsw.Params.P, s.maxRows)
	if err != nil {
		return nil, fmt.Errorf("gpsw: policy %s: %w", pol, err)
	}
	key, err := s.gpsw.GeneratePolicyKey(msp.ToOnes(m), s.sk)
	if err != nil {
		return nil, fmt.Errorf("gpsw: generate policy key: %w", err)
	}
	return key, nil
}

// Encrypt encrypts pt under an attribute set.
func (s *Scheme) Encrypt(_ context.Context, pt scheme.PlainText, ciphertextIndex scheme.Index) (scheme.CipherText, error) {
	if s.pk == nil {
		return nil, scheme.ErrNotSetUp
	}
	ge, ok := pt.(*scheme.GroupElement)
	if !ok {
		return nil, fmt.Errorf("%w: gpsw encrypts GT elements, got %T", scheme.ErrPlainTextType, pt)
	}
	attrs, err := scheme.AsAttributeSet(ciphertextIndex)
	if err != nil {
		return nil, err
	}
	if err := s.checkUniverse(attrs); err != nil {
		return nil, err
	}
	ct, err := s.gpsw.Encrypt(hex.EncodeToString(ge.Bytes()), attrs.Strings(), s.pk)
	if err != nil {
		return nil, fmt.Errorf("gpsw: encrypt: %w", err)
	}
	return ct, nil
}

// Decrypt fails when the ciphertext's attributes do not satisfy the key's
// policy.
func (s *Scheme) Decrypt(_ context.Context, ct scheme.CipherText, key scheme.DecryptionKey) (scheme.PlainText, error) {
	if s.pk == nil {
		return nil, scheme.ErrNotSetUp
	}
	cipher, ok := ct.(*abe.GPSWCipher)
	if !ok {
		return nil, fmt.Errorf("%w: want *abe.GPSWCipher, got %T", scheme.ErrKeyType, ct)
	}
	k, ok := key.(*abe.GPSWKey)
	if !ok {
		return nil, fmt.Errorf("%w: want *abe.GPSWKey, got %T", scheme.ErrKeyType, key)
	}
	msg, err := s.gpsw.Decrypt(cipher, k)
	if err != nil {
		return nil, fmt.Errorf("gpsw: decrypt: %w", err)
	}
	raw, err := hex.DecodeString(msg)
	if err != nil {
		return nil, fmt.Errorf("gpsw: decode plaintext: %w", err)
	}
	return scheme.GroupElementFromBytes(raw)
}

func (s *Scheme) checkUniverse(attrs attribute.Set) error {
	l := s.gpsw.Params.L
	for _, a := range attrs.Attributes() {
		if a < 0 || int64(a) >= int64(l) {
			return fmt.Errorf("%w: %d not in [0, %d)", ErrOutsideUniverse, a, l)
		}
	}
	return nil
}
