package bench

import (
	"fmt"
	"slices"

	"github.com/coinbase/pebench-go/pkg/pebench/attribute"
	"github.com/coinbase/pebench-go/pkg/pebench/policy"
	"github.com/coinbase/pebench-go/pkg/pebench/scheme"
)

// Iterations holds the loop counts of a benchmark run.
type Iterations struct {
	// WarmupRuns is the number of full passes run before measuring. Their
	// measurements are discarded.
	WarmupRuns int
	// Setups is how often a fresh scheme instance is set up.
	Setups int
	// KeyGenerations is how many keys (or key pairs) are generated per setup.
	KeyGenerations int
	// EncDecCycles is how many encrypt/decrypt (or sign/verify) cycles run
	// per generated key.
	EncDecCycles int
}

func defaultIterations() Iterations {
	return Iterations{WarmupRuns: 1, Setups: 1, KeyGenerations: 1, EncDecCycles: 1}
}

func (it Iterations) validate() error {
	for _, c := range []struct {
		name string
		n    int
	}{
		{"warm-up runs", it.WarmupRuns},
		{"setups", it.Setups},
		{"key generations", it.KeyGenerations},
		{"enc/dec cycles", it.EncDecCycles},
	} {
		if c.n < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %d", ErrConfiguration, c.name, c.n)
		}
	}
	return nil
}

// Config is the immutable configuration of a predicate encryption benchmark.
// Obtain one from ConfigBuilder.Build or NewConfig.
type Config struct {
	attributeSets []AttributeSetFixture
	policies      []PolicyFixture
	polarity      scheme.Polarity
	iterations    Iterations
	printDetails  bool
}

// AttributeSets returns a copy of the attribute-set fixtures.
func (c Config) AttributeSets() []AttributeSetFixture { return slices.Clone(c.attributeSets) }

// Policies returns a copy of the policy fixtures.
func (c Config) Policies() []PolicyFixture { return slices.Clone(c.policies) }

// Polarity reports which side of the scheme carries the policy.
func (c Config) Polarity() scheme.Polarity { return c.polarity }

// Iterations returns all loop counts at once.
func (c Config) Iterations() Iterations { return c.iterations }

// WarmupRuns returns the number of discarded passes.
func (c Config) WarmupRuns() int { return c.iterations.WarmupRuns }

// Setups returns the number of scheme setups per pass.
func (c Config) Setups() int { return c.iterations.Setups }

// KeyGenerations returns the number of key generations per setup.
func (c Config) KeyGenerations() int { return c.iterations.KeyGenerations }

// EncDecCycles returns the number of encrypt/decrypt cycles per key and
// ciphertext fixture.
func (c Config) EncDecCycles() int { return c.iterations.EncDecCycles }

// PrintDetails reports whether the runner logs every operation.
func (c Config) PrintDetails() bool { return c.printDetails }

// DefaultAttributeCount is the size of the default attribute set.
const DefaultAttributeCount = 64

// ConfigBuilder assembles a Config. The zero value is not usable; call
// NewConfigBuilder. Every setter returns the builder.
//
// The polarity has no default and must be set before Build.
type ConfigBuilder struct {
	attributeSets []AttributeSetFixture
	policies      []PolicyFixture
	polarity      scheme.Polarity
	polaritySet   bool
	iterations    Iterations
	printDetails  bool
}

// NewConfigBuilder returns a builder holding the defaults: a single set of 64
// sequential attributes, a full-AND and a full-OR policy over that set, every
// iteration count at 1 and PrintDetails enabled.
func NewConfigBuilder() *ConfigBuilder {
	attrs := attribute.Range(DefaultAttributeCount)
	return &ConfigBuilder{
		attributeSets: []AttributeSetFixture{
			NewFixture(attrs, "64 BigInt"),
		},
		policies: []PolicyFixture{
			NewFixture(policy.AllOf(attrs), "64 BigInt All AND"),
			NewFixture(policy.AnyOf(attrs), "64 BigInt All OR"),
		},
		iterations:   defaultIterations(),
		printDetails: true,
	}
}

// NewConfig builds a Config with polarity as a required argument, so the
// "polarity unset" state cannot occur. configure may adjust any other field.
func NewConfig(polarity scheme.Polarity, configure ...func(*ConfigBuilder)) (Config, error) {
	b := NewConfigBuilder().WithPolarity(polarity)
	for _, fn := range configure {
		fn(b)
	}
	return b.Build()
}

// WithAttributeSets replaces the attribute-set fixtures.
func (b *ConfigBuilder) WithAttributeSets(fixtures ...AttributeSetFixture) *ConfigBuilder {
	b.attributeSets = slices.Clone(fixtures)
	return b
}

// WithPolicies replaces the policy fixtures.
func (b *ConfigBuilder) WithPolicies(fixtures ...PolicyFixture) *ConfigBuilder {
	b.policies = slices.Clone(fixtures)
	return b
}

// WithPolarity records whether the scheme under test is ciphertext-policy or
// key-policy. It decides which fixture indexes keys and which indexes
// ciphertexts.
func (b *ConfigBuilder) WithPolarity(p scheme.Polarity) *ConfigBuilder {
	b.polarity = p
	b.polaritySet = true
	return b
}

// WithWarmupRuns sets the number of unmeasured passes run first.
func (b *ConfigBuilder) WithWarmupRuns(n int) *ConfigBuilder {
	b.iterations.WarmupRuns = n
	return b
}

// WithSetups sets the number of scheme setups.
func (b *ConfigBuilder) WithSetups(n int) *ConfigBuilder {
	b.iterations.Setups = n
	return b
}

// WithKeyGenerations sets the number of key-generation rounds per setup. A
// round generates one key per key fixture.
func (b *ConfigBuilder) WithKeyGenerations(n int) *ConfigBuilder {
	b.iterations.KeyGenerations = n
	return b
}

// WithEncDecCycles sets the number of encrypt/decrypt cycles run for each
// key and ciphertext fixture pair.
func (b *ConfigBuilder) WithEncDecCycles(n int) *ConfigBuilder {
	b.iterations.EncDecCycles = n
	return b
}

// WithPrintDetails toggles per-operation debug logging.
func (b *ConfigBuilder) WithPrintDetails(enabled bool) *ConfigBuilder {
	b.printDetails = enabled
	return b
}

// Build validates the builder state and returns a snapshot of it. The builder
// remains usable afterwards; later changes do not affect returned configs.
func (b *ConfigBuilder) Build() (Config, error) {
	if !b.polaritySet {
		return Config{}, fmt.Errorf("%w: the scheme polarity (CP or KP) must be set", ErrConfiguration)
	}
	if !b.polarity.Valid() {
		return Config{}, fmt.Errorf("%w: invalid polarity %d", ErrConfiguration, int(b.polarity))
	}
	if err := b.iterations.validate(); err != nil {
		return Config{}, err
	}
	if len(b.attributeSets) == 0 {
		return Config{}, fmt.Errorf("%w: at least one attribute-set fixture is required", ErrConfiguration)
	}
	if len(b.policies) == 0 {
		return Config{}, fmt.Errorf("%w: at least one policy fixture is required", ErrConfiguration)
	}
	for _, f := range b.policies {
		if err := policy.Validate(f.Value()); err != nil {
			return Config{}, fmt.Errorf("%w: policy %q: %w", ErrConfiguration, f.Label(), err)
		}
	}
	return Config{
		attributeSets: slices.Clone(b.attributeSets),
		policies:      slices.Clone(b.policies),
		polarity:      b.polarity,
		iterations:    b.iterations,
		printDetails:  b.printDetails,
	}, nil
}

// KeyPairConfig is the immutable configuration of a signature or public-key
// encryption benchmark. These families have no fixtures and no polarity.
type KeyPairConfig struct {
	iterations   Iterations
	printDetails bool
}

// Iterations returns the loop counts. EncDecCycles counts sign/verify or
// encrypt/decrypt cycles per key pair.
func (c KeyPairConfig) Iterations() Iterations { return c.iterations }

// PrintDetails reports whether the runner logs every operation.
func (c KeyPairConfig) PrintDetails() bool { return c.printDetails }

// KeyPairConfigBuilder assembles a KeyPairConfig. Every count defaults to 1
// and PrintDetails to true.
type KeyPairConfigBuilder struct {
	iterations   Iterations
	printDetails bool
}

// NewKeyPairConfigBuilder returns a builder holding the defaults.
func NewKeyPairConfigBuilder() *KeyPairConfigBuilder {
	return &KeyPairConfigBuilder{iterations: defaultIterations(), printDetails: true}
}

// WithWarmupRuns sets the number of unmeasured passes run first.
func (b *KeyPairConfigBuilder) WithWarmupRuns(n int) *KeyPairConfigBuilder {
	b.iterations.WarmupRuns = n
	return b
}

// WithSetups sets the number of scheme setups.
func (b *KeyPairConfigBuilder) WithSetups(n int) *KeyPairConfigBuilder {
	b.iterations.Setups = n
	return b
}

// WithKeyGenerations sets the number of key pairs generated per setup.
func (b *KeyPairConfigBuilder) WithKeyGenerations(n int) *KeyPairConfigBuilder {
	b.iterations.KeyGenerations = n
	return b
}

// WithCycles sets the number of sign/verify or encrypt/decrypt cycles per key
// pair.
func (b *KeyPairConfigBuilder) WithCycles(n int) *KeyPairConfigBuilder {
	b.iterations.EncDecCycles = n
	return b
}

// WithPrintDetails toggles per-operation debug logging.
func (b *KeyPairConfigBuilder) WithPrintDetails(enabled bool) *KeyPairConfigBuilder {
	b.printDetails = enabled
	return b
}

// Build validates the counts and returns a snapshot.
func (b *KeyPairConfigBuilder) Build() (KeyPairConfig, error) {
	if err := b.iterations.validate(); err != nil {
		return KeyPairConfig{}, err
	}
	return KeyPairConfig{iterations: b.iterations, printDetails: b.printDetails}, nil
}
