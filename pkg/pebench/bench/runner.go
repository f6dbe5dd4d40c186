package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coinbase/pebench-go/pkg/pebench/logging"
	"github.com/coinbase/pebench-go/pkg/pebench/scheme"
)

// State is a stage of the benchmark state machine:
//
//	WarmingUp -> Setup -> KeyGen -> EncDec -> Done
//
// Setup -> KeyGen -> EncDec repeats once per setup, and KeyGen -> EncDec once
// per key generation.
type State int

const (
	StateWarmingUp State = iota + 1
	StateSetup
	StateKeyGen
	StateEncDec
	StateDone
)

func (s State) String() string {
	switch s {
	case StateWarmingUp:
		return "warming-up"
	case StateSetup:
		return "setup"
	case StateKeyGen:
		return "keygen"
	case StateEncDec:
		return "encdec"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Runner drives schemes through the benchmark loop. A Runner holds no state
// between runs and may be reused.
type Runner struct {
	logger   logging.Logger
	now      func() time.Time
	observer func(State)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for inline status output. The default discards
// everything.
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithStateObserver registers fn to be called on every state transition.
func WithStateObserver(fn func(State)) Option {
	return func(r *Runner) {
		r.observer = fn
	}
}

// NewRunner returns a runner that logs nothing and reads the wall clock
// unless opts say otherwise.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{logger: logging.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) enter(s State) {
	if r.observer != nil {
		r.observer(s)
	}
}

// pass carries the state of one full pass through the loop, warm-up or
// measured.
type pass struct {
	r       *Runner
	rec     *recorder
	warmup  bool
	details bool
	setup   int
	keygen  int
	cycle   int
	keyLbl  string
	ctLbl   string
	label   string
}

func (p *pass) fail(phase Phase, err error) error {
	return &RunError{
		Phase:           phase,
		Warmup:          p.warmup,
		Setup:           p.setup,
		KeyGeneration:   p.keygen,
		Cycle:           p.cycle,
		KeyLabel:        p.keyLbl,
		CiphertextLabel: p.ctLbl,
		Err:             err,
	}
}

// checkpoint is the only place a run observes cancellation; operations
// themselves are never interrupted.
func (p *pass) checkpoint(ctx context.Context, phase Phase) error {
	if err := ctx.Err(); err != nil {
		return p.fail(phase, err)
	}
	return nil
}

// timed runs fn and records its duration under op.
func (p *pass) timed(ctx context.Context, op Operation, satisfied bool, fn func() error) error {
	start := p.r.now()
	err := fn()
	elapsed := p.r.now().Sub(start)
	if err != nil {
		return err
	}
	p.record(ctx, op, elapsed, satisfied)
	return nil
}

func (p *pass) record(ctx context.Context, op Operation, elapsed time.Duration, satisfied bool) {
	m := Measurement{
		Operation:     op,
		Duration:      elapsed,
		Setup:         p.setup,
		KeyGeneration: p.keygen,
		Cycle:         p.cycle,
		Satisfied:     satisfied,
	}
	if p.details {
		m.Label = p.label
	}
	p.rec.add(m)

	args := []any{"op", string(op), "setup", p.setup, "keygen", p.keygen, "cycle", p.cycle, "duration", elapsed}
	if p.warmup {
		args = append(args, "warmup", true)
	}
	if p.details {
		p.r.logger.Info(ctx, "measured", append(args, "label", p.label)...)
		return
	}
	p.r.logger.Debug(ctx, "measured", args...)
}

// RunPredicate benchmarks a predicate encryption scheme. newScheme is called
// once per setup iteration, including warm-up passes; instances are never
// reused.
//
// Every key generation iteration visits every (attribute set, policy) fixture
// pair in configuration order, so a measured pass records
// Setups × KeyGenerations × |sets| × |policies| key generations and
// EncDecCycles times as many encryptions and decryptions. The configured
// polarity decides which fixture indexes the key and which the ciphertext.
// When the attribute set satisfies the policy, decryption must return the
// encrypted plaintext; otherwise it must fail or return something else.
// Violations abort the run with ErrCorrectness.
func (r *Runner) RunPredicate(ctx context.Context, cfg Config, newScheme func() scheme.PredicateBenchmarkable) (*Result, error) {
	if !cfg.Polarity().Valid() {
		return nil, fmt.Errorf("%w: config was not built with a polarity", ErrConfiguration)
	}
	if len(cfg.attributeSets) == 0 || len(cfg.policies) == 0 {
		return nil, fmt.Errorf("%w: predicate benchmarks need attribute-set and policy fixtures", ErrConfiguration)
	}
	if newScheme == nil {
		return nil, fmt.Errorf("%w: nil scheme factory", ErrConfiguration)
	}

	return r.run(cfg.iterations, func(rec *recorder, warmup bool) error {
		return r.predicatePass(ctx, cfg, newScheme, rec, warmup)
	})
}

// RunSignature benchmarks a signature scheme: setup, key pair generation,
// signing and verification. A signature that does not verify aborts the run
// with ErrCorrectness.
func (r *Runner) RunSignature(ctx context.Context, cfg KeyPairConfig, newScheme func() scheme.SignatureBenchmarkable) (*Result, error) {
	if newScheme == nil {
		return nil, fmt.Errorf("%w: nil scheme factory", ErrConfiguration)
	}
	return r.run(cfg.iterations, func(rec *recorder, warmup bool) error {
		return r.signaturePass(ctx, cfg, newScheme, rec, warmup)
	})
}

// RunEncryption benchmarks a public-key encryption scheme: setup, key pair
// generation, encryption and decryption. Decryption must return the
// encrypted plaintext.
func (r *Runner) RunEncryption(ctx context.Context, cfg KeyPairConfig, newScheme func() scheme.EncryptionBenchmarkable) (*Result, error) {
	if newScheme == nil {
		return nil, fmt.Errorf("%w: nil scheme factory", ErrConfiguration)
	}
	return r.run(cfg.iterations, func(rec *recorder, warmup bool) error {
		return r.encryptionPass(ctx, cfg, newScheme, rec, warmup)
	})
}

// run executes the warm-up passes with recording disabled followed by one
// measured pass.
func (r *Runner) run(it Iterations, onePass func(*recorder, bool) error) (*Result, error) {
	result := newResult("", r.now())
	if it.WarmupRuns > 0 {
		r.enter(StateWarmingUp)
	}
	for w := 0; w < it.WarmupRuns; w++ {
		if err := onePass(&recorder{result: result}, true); err != nil {
			return nil, err
		}
	}
	if err := onePass(&recorder{result: result, enabled: true}, false); err != nil {
		return nil, err
	}
	r.enter(StateDone)
	return result, nil
}

// pairLabels returns the labels of the key-side and ciphertext-side fixtures.
func pairLabels(p scheme.Polarity, set AttributeSetFixture, pol PolicyFixture) (key, ciphertext string) {
	if p == scheme.KeyPolicy {
		return pol.Label(), set.Label()
	}
	return set.Label(), pol.Label()
}

func predicateHints(cfg Config) (keyHint, ciphertextHint scheme.IndexHint) {
	for _, set := range cfg.attributeSets {
		for _, pol := range cfg.policies {
			key, ct := cfg.polarity.Indices(set.Value(), pol.Value())
			keyHint = append(keyHint, key)
			ciphertextHint = append(ciphertextHint, ct)
		}
	}
	return keyHint, ciphertextHint
}

func (r *Runner) predicatePass(ctx context.Context, cfg Config, newScheme func() scheme.PredicateBenchmarkable, rec *recorder, warmup bool) error {
	p := &pass{r: r, rec: rec, warmup: warmup, details: cfg.printDetails, keygen: -1, cycle: -1}
	keyHint, ciphertextHint := predicateHints(cfg)

	for p.setup = 0; p.setup < cfg.iterations.Setups; p.setup++ {
		p.keygen, p.cycle, p.keyLbl, p.ctLbl, p.label = -1, -1, "", "", ""
		if err := p.checkpoint(ctx, PhaseSetup); err != nil {
			return err
		}
		r.enter(StateSetup)
		s := newScheme()
		if s == nil {
			return p.fail(PhaseSetup, fmt.Errorf("%w: scheme factory returned nil", ErrConfiguration))
		}
		rec.named(s.Name())
		if s.Polarity() != cfg.polarity {
			return p.fail(PhaseSetup, fmt.Errorf("%w: scheme %s is %s, config is %s",
				ErrPolarityMismatch, s.Name(), s.Polarity(), cfg.polarity))
		}
		if err := p.timed(ctx, OpSetup, false, func() error {
			return s.DoSetup(ctx, keyHint, ciphertextHint)
		}); err != nil {
			return p.fail(PhaseSetup, fmt.Errorf("%w: %w", ErrSetup, err))
		}
		r.logger.Debug(ctx, "scheme set up", "scheme", s.Name(), logging.Redacted("master_secret"))

		for p.keygen = 0; p.keygen < cfg.iterations.KeyGenerations; p.keygen++ {
			for _, set := range cfg.attributeSets {
				for _, pol := range cfg.policies {
					if err := p.predicatePair(ctx, cfg, s, set, pol); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (p *pass) predicatePair(ctx context.Context, cfg Config, s scheme.PredicateBenchmarkable, set AttributeSetFixture, pol PolicyFixture) error {
	p.cycle = -1
	p.keyLbl, p.ctLbl = pairLabels(cfg.polarity, set, pol)
	p.label = set.Label() + " / " + pol.Label()
	keyIdx, ctIdx := cfg.polarity.Indices(set.Value(), pol.Value())
	satisfied := pol.Value().SatisfiedBy(set.Value())

	if err := p.checkpoint(ctx, PhaseKeyGen); err != nil {
		return err
	}
	p.r.enter(StateKeyGen)
	var key scheme.DecryptionKey
	if err := p.timed(ctx, OpKeyGen, satisfied, func() (err error) {
		key, err = s.GenerateDecryptionKey(ctx, keyIdx)
		return err
	}); err != nil {
		return p.fail(PhaseKeyGen, err)
	}

	for p.cycle = 0; p.cycle < cfg.iterations.EncDecCycles; p.cycle++ {
		if err := p.checkpoint(ctx, PhaseEncrypt); err != nil {
			return err
		}
		p.r.enter(StateEncDec)
		pt, err := s.GeneratePlainText()
		if err != nil {
			return p.fail(PhasePlainText, err)
		}

		var ct scheme.CipherText
		if err := p.timed(ctx, OpEncrypt, satisfied, func() (err error) {
			ct, err = s.Encrypt(ctx, pt, ctIdx)
			return err
		}); err != nil {
			return p.fail(PhaseEncrypt, err)
		}

		if err := p.checkpoint(ctx, PhaseDecrypt); err != nil {
			return err
		}
		start := p.r.now()
		got, decErr := s.Decrypt(ctx, ct, key)
		elapsed := p.r.now().Sub(start)

		switch {
		case satisfied && decErr != nil:
			return p.fail(PhaseDecrypt, fmt.Errorf("%w: decryption failed for a satisfying pair: %w", ErrCorrectness, decErr))
		case satisfied && (got == nil || !got.Equal(pt)):
			return p.fail(PhaseDecrypt, fmt.Errorf("%w: decrypted plaintext differs from the original", ErrCorrectness))
		case !satisfied && decErr == nil && got != nil && got.Equal(pt):
			return p.fail(PhaseDecrypt, fmt.Errorf("%w: non-satisfying pair recovered the plaintext", ErrCorrectness))
		}
		p.record(ctx, OpDecrypt, elapsed, satisfied)
	}
	return nil
}

func (r *Runner) signaturePass(ctx context.Context, cfg KeyPairConfig, newScheme func() scheme.SignatureBenchmarkable, rec *recorder, warmup bool) error {
	p := &pass{r: r, rec: rec, warmup: warmup, details: cfg.printDetails, keygen: -1, cycle: -1}
	for p.setup = 0; p.setup < cfg.iterations.Setups; p.setup++ {
		p.keygen, p.cycle = -1, -1
		s := newScheme()
		if s == nil {
			return p.fail(PhaseSetup, fmt.Errorf("%w: scheme factory returned nil", ErrConfiguration))
		}
		rec.named(s.Name())
		p.label = s.Name()
		if err := p.setUp(ctx, s); err != nil {
			return err
		}
		for p.keygen = 0; p.keygen < cfg.iterations.KeyGenerations; p.keygen++ {
			p.cycle = -1
			kp, err := p.keyPair(ctx, s.GenerateKeyPair)
			if err != nil {
				return err
			}
			for p.cycle = 0; p.cycle < cfg.iterations.EncDecCycles; p.cycle++ {
				if err := p.checkpoint(ctx, PhaseSign); err != nil {
					return err
				}
				r.enter(StateEncDec)
				pt, err := s.GeneratePlainText()
				if err != nil {
					return p.fail(PhasePlainText, err)
				}
				var sig scheme.Signature
				if err := p.timed(ctx, OpSign, true, func() (err error) {
					sig, err = s.Sign(ctx, pt, kp.Secret)
					return err
				}); err != nil {
					return p.fail(PhaseSign, err)
				}
				var ok bool
				if err := p.timed(ctx, OpVerify, true, func() (err error) {
					ok, err = s.Verify(ctx, pt, sig, kp.Public)
					return err
				}); err != nil {
					return p.fail(PhaseVerify, err)
				}
				if !ok {
					return p.fail(PhaseVerify, fmt.Errorf("%w: signature did not verify", ErrCorrectness))
				}
			}
		}
	}
	return nil
}

func (r *Runner) encryptionPass(ctx context.Context, cfg KeyPairConfig, newScheme func() scheme.EncryptionBenchmarkable, rec *recorder, warmup bool) error {
	p := &pass{r: r, rec: rec, warmup: warmup, details: cfg.printDetails, keygen: -1, cycle: -1}
	for p.setup = 0; p.setup < cfg.iterations.Setups; p.setup++ {
		p.keygen, p.cycle = -1, -1
		s := newScheme()
		if s == nil {
			return p.fail(PhaseSetup, fmt.Errorf("%w: scheme factory returned nil", ErrConfiguration))
		}
		rec.named(s.Name())
		p.label = s.Name()
		if err := p.setUp(ctx, s); err != nil {
			return err
		}
		for p.keygen = 0; p.keygen < cfg.iterations.KeyGenerations; p.keygen++ {
			p.cycle = -1
			kp, err := p.keyPair(ctx, s.GenerateKeyPair)
			if err != nil {
				return err
			}
			for p.cycle = 0; p.cycle < cfg.iterations.EncDecCycles; p.cycle++ {
				if err := p.checkpoint(ctx, PhaseEncrypt); err != nil {
					return err
				}
				r.enter(StateEncDec)
				pt, err := s.GeneratePlainText()
				if err != nil {
					return p.fail(PhasePlainText, err)
				}
				var ct scheme.CipherText
				if err := p.timed(ctx, OpEncrypt, true, func() (err error) {
					ct, err = s.Encrypt(ctx, pt, kp.Public)
					return err
				}); err != nil {
					return p.fail(PhaseEncrypt, err)
				}
				var got scheme.PlainText
				if err := p.timed(ctx, OpDecrypt, true, func() (err error) {
					got, err = s.Decrypt(ctx, ct, kp.Secret)
					return err
				}); err != nil {
					return p.fail(PhaseDecrypt, fmt.Errorf("%w: %w", ErrCorrectness, err))
				}
				if got == nil || !got.Equal(pt) {
					return p.fail(PhaseDecrypt, fmt.Errorf("%w: decrypted plaintext differs from the original", ErrCorrectness))
				}
			}
		}
	}
	return nil
}

// setUp runs the timed, hint-free setup shared by the key pair families.
func (p *pass) setUp(ctx context.Context, s scheme.Benchmarkable) error {
	if err := p.checkpoint(ctx, PhaseSetup); err != nil {
		return err
	}
	p.r.enter(StateSetup)
	if err := p.timed(ctx, OpSetup, true, func() error {
		return s.DoSetup(ctx, nil, nil)
	}); err != nil {
		return p.fail(PhaseSetup, fmt.Errorf("%w: %w", ErrSetup, err))
	}
	return nil
}

func (p *pass) keyPair(ctx context.Context, generate func(context.Context) (scheme.KeyPair, error)) (scheme.KeyPair, error) {
	if err := p.checkpoint(ctx, PhaseKeyGen); err != nil {
		return scheme.KeyPair{}, err
	}
	p.r.enter(StateKeyGen)
	var kp scheme.KeyPair
	if err := p.timed(ctx, OpKeyGen, true, func() (err error) {
		kp, err = generate(ctx)
		return err
	}); err != nil {
		return scheme.KeyPair{}, p.fail(PhaseKeyGen, err)
	}
	return kp, nil
}

// IsCorrectnessFailure reports whether err stems from a failed decrypt or
// verify check.
func IsCorrectnessFailure(err error) bool {
	return errors.Is(err, ErrCorrectness)
}
