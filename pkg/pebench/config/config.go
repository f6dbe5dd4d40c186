package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/coinbase/pebench-go/pkg/pebench/attribute"
	"github.com/coinbase/pebench-go/pkg/pebench/bench"
	"github.com/coinbase/pebench-go/pkg/pebench/policy"
	"github.com/coinbase/pebench-go/pkg/pebench/scheme"
)

// ErrInvalid is returned for files that parse but describe an invalid
// configuration.
var ErrInvalid = errors.New("config: invalid benchmark file")

// maxPolicyDepth bounds the nesting of policy nodes.
const maxPolicyDepth = 32

// MaxAttribute is the largest attribute a file may name. It is the top of the
// largest allowed range.
const MaxAttribute = 1<<20 - 1

var validate = validator.New()

// File is the on-disk form of a benchmark configuration. Nil and empty fields
// leave the builder defaults in place.
type File struct {
	Scheme        string             `yaml:"scheme" validate:"omitempty,oneof=fame gpsw ecdsa schnorr paillier"`
	Polarity      string             `yaml:"polarity" validate:"omitempty,oneof=cp kp ciphertext-policy key-policy"`
	Iterations    *Iterations        `yaml:"iterations"`
	PrintDetails  *bool              `yaml:"print_details"`
	AttributeSets []AttributeSetSpec `yaml:"attribute_sets" validate:"dive"`
	Policies      []PolicySpec       `yaml:"policies" validate:"dive"`
}

// Iterations overrides the loop counts. Absent keys keep the builder defaults.
type Iterations struct {
	Warmup         *int `yaml:"warmup" validate:"omitempty,gte=0"`
	Setups         *int `yaml:"setups" validate:"omitempty,gte=0"`
	KeyGenerations *int `yaml:"key_generations" validate:"omitempty,gte=0"`
	Cycles         *int `yaml:"cycles" validate:"omitempty,gte=0"`
}

// AttributeSpec names a set either as the range 0..Range-1 or as an explicit
// list. Exactly one of the two must be given. Listed attributes must lie in
// [0, MaxAttribute].
type AttributeSpec struct {
	Range      int     `yaml:"range" validate:"gte=0,lte=1048576"`
	Attributes []int64 `yaml:"attributes" validate:"dive,gte=0,lte=1048575"`
}

// AttributeSetSpec is a labelled attribute-set fixture.
type AttributeSetSpec struct {
	Label         string `yaml:"label" validate:"required"`
	AttributeSpec `yaml:",inline"`
}

// PolicySpec is a labelled policy fixture.
type PolicySpec struct {
	Label  string     `yaml:"label" validate:"required"`
	Policy PolicyNode `yaml:"policy"`
}

// PolicyNode is one node of a policy tree. Exactly one of Attr, And, Or,
// Threshold, AllOf and AnyOf must be set; Of holds the children of a
// threshold gate.
type PolicyNode struct {
	Attr      *int64         `yaml:"attr" validate:"omitempty,gte=0,lte=1048575"`
	And       []PolicyNode   `yaml:"and" validate:"dive"`
	Or        []PolicyNode   `yaml:"or" validate:"dive"`
	Threshold int            `yaml:"threshold" validate:"gte=0"`
	Of        []PolicyNode   `yaml:"of" validate:"dive"`
	AllOf     *AttributeSpec `yaml:"all_of"`
	AnyOf     *AttributeSpec `yaml:"any_of"`
}

// SecurePath resolves path and rejects paths that escape the working
// directory.
func SecurePath(path string) (string, error) {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	base, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	rel, err := filepath.Rel(base, absPath)
	if err != nil {
		return "", fmt.Errorf("relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes working directory", path)
	}
	return absPath, nil
}

// Load reads and validates the file at path.
func Load(path string) (*File, error) {
	absPath, err := SecurePath(path)
	if err != nil {
		return nil, fmt.Errorf("secure path: %w", err)
	}
	data, err := os.ReadFile(absPath) // #nosec G304 -- absPath validated by SecurePath
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML document. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshal YAML: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks field constraints and converts every fixture once, so
// Apply cannot fail on a validated file.
func (f *File) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	for i, s := range f.AttributeSets {
		if _, err := s.AttributeSpec.set(); err != nil {
			return fmt.Errorf("%w: attribute_sets[%d] %q: %w", ErrInvalid, i, s.Label, err)
		}
	}
	for i, p := range f.Policies {
		pol, err := p.Policy.build(0)
		if err != nil {
			return fmt.Errorf("%w: policies[%d] %q: %w", ErrInvalid, i, p.Label, err)
		}
		if err := policy.Validate(pol); err != nil {
			return fmt.Errorf("%w: policies[%d] %q: %w", ErrInvalid, i, p.Label, err)
		}
	}
	return nil
}

// PolarityValue returns the configured polarity and whether one was set.
func (f *File) PolarityValue() (scheme.Polarity, bool, error) {
	if f.Polarity == "" {
		return 0, false, nil
	}
	p, err := scheme.ParsePolarity(f.Polarity)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return p, true, nil
}

// Apply copies every field the file sets onto b.
func (f *File) Apply(b *bench.ConfigBuilder) error {
	if p, ok, err := f.PolarityValue(); err != nil {
		return err
	} else if ok {
		b.WithPolarity(p)
	}
	if it := f.Iterations; it != nil {
		if it.Warmup != nil {
			b.WithWarmupRuns(*it.Warmup)
		}
		if it.Setups != nil {
			b.WithSetups(*it.Setups)
		}
		if it.KeyGenerations != nil {
			b.WithKeyGenerations(*it.KeyGenerations)
		}
		if it.Cycles != nil {
			b.WithEncDecCycles(*it.Cycles)
		}
	}
	if f.PrintDetails != nil {
		b.WithPrintDetails(*f.PrintDetails)
	}
	if len(f.AttributeSets) > 0 {
		fixtures := make([]bench.AttributeSetFixture, len(f.AttributeSets))
		for i, s := range f.AttributeSets {
			set, err := s.AttributeSpec.set()
			if err != nil {
				return fmt.Errorf("%w: attribute set %q: %w", ErrInvalid, s.Label, err)
			}
			fixtures[i] = bench.NewFixture(set, s.Label)
		}
		b.WithAttributeSets(fixtures...)
	}
	if len(f.Policies) > 0 {
		fixtures := make([]bench.PolicyFixture, len(f.Policies))
		for i, p := range f.Policies {
			pol, err := p.Policy.build(0)
			if err != nil {
				return fmt.Errorf("%w: policy %q: %w", ErrInvalid, p.Label, err)
			}
			fixtures[i] = bench.NewFixture(pol, p.Label)
		}
		b.WithPolicies(fixtures...)
	}
	return nil
}

// ApplyKeyPair copies the iteration counts and verbosity onto b. Fixtures
// and polarity do not apply to key pair benchmarks and are ignored.
func (f *File) ApplyKeyPair(b *bench.KeyPairConfigBuilder) {
	if it := f.Iterations; it != nil {
		if it.Warmup != nil {
			b.WithWarmupRuns(*it.Warmup)
		}
		if it.Setups != nil {
			b.WithSetups(*it.Setups)
		}
		if it.KeyGenerations != nil {
			b.WithKeyGenerations(*it.KeyGenerations)
		}
		if it.Cycles != nil {
			b.WithCycles(*it.Cycles)
		}
	}
	if f.PrintDetails != nil {
		b.WithPrintDetails(*f.PrintDetails)
	}
}

func (s AttributeSpec) set() (attribute.Set, error) {
	switch {
	case s.Range > 0 && len(s.Attributes) > 0:
		return attribute.Set{}, errors.New("range and attributes are mutually exclusive")
	case s.Range > 0:
		return attribute.Range(s.Range), nil
	case len(s.Attributes) > 0:
		attrs := make([]attribute.Attribute, len(s.Attributes))
		for i, a := range s.Attributes {
			attrs[i] = attribute.Attribute(a)
		}
		return attribute.NewSet(attrs...), nil
	default:
		return attribute.Set{}, errors.New("one of range or attributes is required")
	}
}

func (n PolicyNode) build(depth int) (policy.Policy, error) {
	if depth > maxPolicyDepth {
		return nil, fmt.Errorf("policy nested deeper than %d levels", maxPolicyDepth)
	}
	set := 0
	for _, present := range []bool{
		n.Attr != nil, n.And != nil, n.Or != nil, n.Threshold != 0 || n.Of != nil, n.AllOf != nil, n.AnyOf != nil,
	} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("policy node must set exactly one of attr, and, or, threshold, all_of, any_of (got %d)", set)
	}

	switch {
	case n.Attr != nil:
		return policy.Leaf(attribute.Attribute(*n.Attr)), nil
	case n.And != nil:
		children, err := buildAll(n.And, depth)
		if err != nil {
			return nil, err
		}
		return policy.And(children...), nil
	case n.Or != nil:
		children, err := buildAll(n.Or, depth)
		if err != nil {
			return nil, err
		}
		return policy.Or(children...), nil
	case n.AllOf != nil:
		s, err := n.AllOf.set()
		if err != nil {
			return nil, err
		}
		return policy.AllOf(s), nil
	case n.AnyOf != nil:
		s, err := n.AnyOf.set()
		if err != nil {
			return nil, err
		}
		return policy.AnyOf(s), nil
	default:
		children, err := buildAll(n.Of, depth)
		if err != nil {
			return nil, err
		}
		return policy.Threshold(n.Threshold, children...), nil
	}
}

func buildAll(nodes []PolicyNode, depth int) ([]policy.Policy, error) {
	out := make([]policy.Policy, len(nodes))
	for i, n := range nodes {
		p, err := n.build(depth + 1)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
