package scheme

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/fentec-project/gofe/sample"
	"golang.org/x/crypto/bn256"
)

// PlainText is a message from a scheme's message space.
type PlainText interface {
	// Bytes returns the canonical encoding of the message. The returned
	// slice must not be modified.
	Bytes() []byte
	// Equal reports whether other encodes the same message. Comparison runs
	// in constant time over the encodings.
	Equal(other PlainText) bool
}

func equalBytes(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

var (
	gtGeneratorOnce sync.Once
	gtGenerator     *bn256.GT
)

// GTGenerator returns e(g1, g2) for the canonical generators of the BN256
// source groups.
func GTGenerator() *bn256.GT {
	gtGeneratorOnce.Do(func() {
		one := big.NewInt(1)
		gtGenerator = bn256.Pair(new(bn256.G1).ScalarBaseMult(one), new(bn256.G2).ScalarBaseMult(one))
	})
	return gtGenerator
}

// GroupElement is a message in the pairing target group GT.
type GroupElement struct {
	enc []byte
}

// RandomGroupElement samples a uniformly random non-identity element of GT as
// e(g1, g2)^k with k uniform in [1, Order).
func RandomGroupElement(random io.Reader) (*GroupElement, error) {
	if random == nil {
		random = rand.Reader
	}
	k, err := rand.Int(random, new(big.Int).Sub(bn256.Order, big.NewInt(1)))
	if err != nil {
		return nil, fmt.Errorf("sample GT exponent: %w", err)
	}
	k.Add(k, big.NewInt(1))
	return NewGroupElement(new(bn256.GT).ScalarMult(GTGenerator(), k)), nil
}

// NewGroupElement wraps gt.
func NewGroupElement(gt *bn256.GT) *GroupElement {
	return &GroupElement{enc: gt.Marshal()}
}

// GroupElementFromBytes decodes a GT element produced by Bytes.
func GroupElementFromBytes(b []byte) (*GroupElement, error) {
	gt, ok := new(bn256.GT).Unmarshal(b)
	if !ok {
		return nil, errors.New("invalid GT encoding")
	}
	return NewGroupElement(gt), nil
}

// GT returns the element as a bn256 value.
func (g *GroupElement) GT() (*bn256.GT, error) {
	gt, ok := new(bn256.GT).Unmarshal(g.enc)
	if !ok {
		return nil, errors.New("invalid GT encoding")
	}
	return gt, nil
}

func (g *GroupElement) Bytes() []byte {
	return g.enc
}

func (g *GroupElement) Equal(other PlainText) bool {
	o, ok := other.(*GroupElement)
	if !ok || g == nil || o == nil {
		return false
	}
	return equalBytes(g.enc, o.enc)
}

// RingElement is a message in Z_p.
type RingElement struct {
	value   *big.Int
	modulus *big.Int
}

// RandomRingElement samples a uniformly random element of Z_modulus.
func RandomRingElement(modulus *big.Int) (*RingElement, error) {
	if modulus == nil || modulus.Sign() <= 0 {
		return nil, errors.New("modulus must be positive")
	}
	v, err := sample.NewUniform(modulus).Sample()
	if err != nil {
		return nil, fmt.Errorf("sample ring element: %w", err)
	}
	return &RingElement{value: v, modulus: new(big.Int).Set(modulus)}, nil
}

// NewRingElement returns v mod modulus.
func NewRingElement(v, modulus *big.Int) *RingElement {
	return &RingElement{
		value:   new(big.Int).Mod(v, modulus),
		modulus: new(big.Int).Set(modulus),
	}
}

// Value returns a copy of the element's canonical representative.
func (r *RingElement) Value() *big.Int {
	return new(big.Int).Set(r.value)
}

// Modulus returns a copy of the ring modulus.
func (r *RingElement) Modulus() *big.Int {
	return new(big.Int).Set(r.modulus)
}

// Bytes returns the element big-endian, padded to the byte length of the
// modulus.
func (r *RingElement) Bytes() []byte {
	return r.value.FillBytes(make([]byte, (r.modulus.BitLen()+7)/8))
}

func (r *RingElement) Equal(other PlainText) bool {
	o, ok := other.(*RingElement)
	if !ok || r == nil || o == nil || r.modulus.Cmp(o.modulus) != 0 {
		return false
	}
	return equalBytes(r.Bytes(), o.Bytes())
}

// MessageBlock is an ordered block of messages, as signed by multi-message
// signature schemes.
type MessageBlock []PlainText

// Bytes encodes every message with a 4-byte big-endian length prefix.
func (m MessageBlock) Bytes() []byte {
	var out []byte
	for _, pt := range m {
		b := pt.Bytes()
		out = binary.BigEndian.AppendUint32(out, uint32(len(b)))
		out = append(out, b...)
	}
	return out
}

func (m MessageBlock) Equal(other PlainText) bool {
	o, ok := other.(MessageBlock)
	if !ok || len(m) != len(o) {
		return false
	}
	eq := true
	for i := range m {
		if !m[i].Equal(o[i]) {
			eq = false
		}
	}
	return eq
}

// RandomMessageBlock samples n independent ring elements of Z_modulus.
func RandomMessageBlock(n int, modulus *big.Int) (MessageBlock, error) {
	block := make(MessageBlock, n)
	for i := range block {
		el, err := RandomRingElement(modulus)
		if err != nil {
			return nil, err
		}
		block[i] = el
	}
	return block, nil
}

// AsMessageBlock returns pt as a block of exactly n messages or
// ErrPlainTextType.
func AsMessageBlock(pt PlainText, n int) (MessageBlock, error) {
	block, ok := pt.(MessageBlock)
	if !ok {
		return nil, fmt.Errorf("%w: want message block, got %T", ErrPlainTextType, pt)
	}
	if len(block) != n {
		return nil, fmt.Errorf("%w: want %d messages, got %d", ErrPlainTextType, n, len(block))
	}
	return block, nil
}
