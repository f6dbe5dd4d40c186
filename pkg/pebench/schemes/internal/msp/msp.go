package msp

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/fentec-project/gofe/abe"
	"github.com/fentec-project/gofe/data"

	"github.com/coinbase/pebench-go/pkg/pebench/policy"
)

// DefaultMaxRows bounds the number of leaves, and so rows, of a compiled
// policy. A program with r rows has at most r columns.
const DefaultMaxRows = 1024

// ErrTooLarge is returned for policies with more leaves than the row limit.
var ErrTooLarge = errors.New("msp: policy has too many leaves")

type builder struct {
	modulus *big.Int
	cols    int
	rows    []data.Vector
	attribs []string
}

// Build compiles p into a span program over Z_modulus whose rows span
// (1, 0, ..., 0) exactly when their attributes satisfy p.
func Build(p policy.Policy, modulus *big.Int, maxRows int) (*abe.MSP, error) {
	if err := policy.Validate(p); err != nil {
		return nil, err
	}
	if n := len(policy.Leaves(p)); n > maxRows {
		return nil, fmt.Errorf("%w: %d leaves, limit %d", ErrTooLarge, n, maxRows)
	}
	b := &builder{modulus: modulus, cols: 1}
	b.walk(p, data.Vector{big.NewInt(1)})

	mat := make(data.Matrix, len(b.rows))
	for i, row := range b.rows {
		full := make(data.Vector, b.cols)
		copy(full, row)
		for j := len(row); j < b.cols; j++ {
			full[j] = big.NewInt(0)
		}
		mat[i] = full
	}
	return &abe.MSP{P: new(big.Int).Set(modulus), Mat: mat, RowToAttrib: b.attribs}, nil
}

func (b *builder) walk(p policy.Policy, label data.Vector) {
	if a, ok := policy.LeafAttribute(p); ok {
		b.rows = append(b.rows, label)
		b.attribs = append(b.attribs, a.String())
		return
	}
	k, children, _ := policy.Gate(p)
	base := b.cols
	b.cols += k - 1
	for i, child := range children {
		x := big.NewInt(int64(i + 1))
		l := make(data.Vector, b.cols)
		for j := range l {
			if j < len(label) {
				l[j] = new(big.Int).Set(label[j])
			} else {
				l[j] = big.NewInt(0)
			}
		}
		pow := new(big.Int).Set(x)
		for j := 0; j < k-1; j++ {
			l[base+j].Set(pow)
			pow.Mul(pow, x).Mod(pow, b.modulus)
		}
		b.walk(child, l)
	}
}

// ToOnes returns a copy of m whose rows span (1, 1, ..., 1) exactly when the
// rows of m span (1, 0, ..., 0). It multiplies m by the invertible matrix
// that maps the first unit vector to the all-ones vector.
func ToOnes(m *abe.MSP) *abe.MSP {
	mat := make(data.Matrix, len(m.Mat))
	for i, row := range m.Mat {
		out := make(data.Vector, len(row))
		out[0] = new(big.Int).Set(row[0])
		for j := 1; j < len(row); j++ {
			out[j] = new(big.Int).Add(row[0], row[j])
			out[j].Mod(out[j], m.P)
		}
		mat[i] = out
	}
	return &abe.MSP{P: new(big.Int).Set(m.P), Mat: mat, RowToAttrib: append([]string(nil), m.RowToAttrib...)}
}
