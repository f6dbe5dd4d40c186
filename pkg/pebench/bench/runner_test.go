package bench_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/pebench-go/pkg/pebench/attribute"
	"github.com/coinbase/pebench-go/pkg/pebench/bench"
	"github.com/coinbase/pebench-go/pkg/pebench/policy"
	"github.com/coinbase/pebench-go/pkg/pebench/scheme"
)

func singlePair(t *testing.T, p scheme.Polarity, configure func(*bench.ConfigBuilder)) bench.Config {
	t.Helper()
	set := attribute.NewSet(1, 2, 3)
	b := bench.NewConfigBuilder().
		WithPolarity(p).
		WithAttributeSets(bench.NewFixture(set, "abc")).
		WithPolicies(bench.NewFixture(policy.AllOf(set), "all-abc"))
	if configure != nil {
		configure(b)
	}
	cfg, err := b.Build()
	require.NoError(t, err)
	return cfg
}

func TestRunPredicateIterationCounts(t *testing.T) {
	cfg := singlePair(t, scheme.CiphertextPolicy, func(b *bench.ConfigBuilder) {
		b.WithWarmupRuns(2).WithSetups(1).WithKeyGenerations(1).WithEncDecCycles(3)
	})
	c := &calls{}

	res, err := bench.NewRunner().RunPredicate(context.Background(), cfg, newFakeFactory(scheme.CiphertextPolicy, c))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Count(bench.OpEncrypt))
	assert.Equal(t, 3, res.Count(bench.OpDecrypt))
	assert.Equal(t, 1, res.Count(bench.OpSetup))
	assert.Equal(t, 1, res.Count(bench.OpKeyGen))
	assert.Len(t, res.Measurements, 8)
	assert.Equal(t, "fake-cp", res.Scheme)

	// Warm-up passes did run; their measurements were dropped.
	assert.Equal(t, 3, c.instances)
	assert.Equal(t, 3, c.setups)
	assert.Len(t, c.ctIdx, 9)
}

func TestRunPredicateVisitsEveryPair(t *testing.T) {
	sets := []bench.AttributeSetFixture{
		bench.NewFixture(attribute.NewSet(1), "one"),
		bench.NewFixture(attribute.NewSet(1, 2), "two"),
		bench.NewFixture(attribute.NewSet(2, 3), "other"),
	}
	pols := []bench.PolicyFixture{
		bench.NewFixture(policy.Leaf(1), "leaf"),
		bench.NewFixture(policy.AnyOf(attribute.NewSet(2, 3)), "any"),
	}
	cfg, err := bench.NewConfig(scheme.CiphertextPolicy, func(b *bench.ConfigBuilder) {
		b.WithAttributeSets(sets...).WithPolicies(pols...).
			WithWarmupRuns(0).WithSetups(2).WithKeyGenerations(3).WithEncDecCycles(2)
	})
	require.NoError(t, err)

	res, err := bench.NewRunner().RunPredicate(context.Background(), cfg, newFakeFactory(scheme.CiphertextPolicy, &calls{}))
	require.NoError(t, err)

	keygens := 2 * 3 * len(sets) * len(pols)
	assert.Equal(t, 2, res.Count(bench.OpSetup))
	assert.Equal(t, keygens, res.Count(bench.OpKeyGen))
	assert.Equal(t, 2*keygens, res.Count(bench.OpEncrypt))
	assert.Equal(t, 2*keygens, res.Count(bench.OpDecrypt))

	perPair := make(map[string]int)
	for _, m := range res.ByOperation(bench.OpKeyGen) {
		perPair[m.Label]++
	}
	assert.Len(t, perPair, len(sets)*len(pols))
	for label, n := range perPair {
		assert.Equal(t, 6, n, label)
	}
}

func TestRunPredicateMeasurementOrder(t *testing.T) {
	cfg := singlePair(t, scheme.KeyPolicy, func(b *bench.ConfigBuilder) {
		b.WithWarmupRuns(0).WithSetups(2).WithKeyGenerations(2).WithEncDecCycles(1)
	})

	res, err := bench.NewRunner().RunPredicate(context.Background(), cfg, newFakeFactory(scheme.KeyPolicy, &calls{}))
	require.NoError(t, err)

	var ops []bench.Operation
	for _, m := range res.Measurements {
		ops = append(ops, m.Operation)
	}
	oneKey := []bench.Operation{bench.OpKeyGen, bench.OpEncrypt, bench.OpDecrypt}
	oneSetup := append([]bench.Operation{bench.OpSetup}, append(oneKey, oneKey...)...)
	assert.Equal(t, append(oneSetup, oneSetup...), ops)

	last := res.Measurements[len(res.Measurements)-1]
	assert.Equal(t, 1, last.Setup)
	assert.Equal(t, 1, last.KeyGeneration)
	assert.Equal(t, 0, last.Cycle)
}

func TestRunPredicateDefaultConfig(t *testing.T) {
	cfg, err := bench.NewConfigBuilder().
		WithPolarity(scheme.CiphertextPolicy).
		WithAttributeSets(
			bench.NewFixture(attribute.Range(64), "64 BigInt"),
			bench.NewFixture(attribute.Range(10), "10 BigInt"),
			bench.NewFixture(attribute.NewSet(63), "last"),
		).
		Build()
	require.NoError(t, err)
	defaults, err := bench.NewConfigBuilder().WithPolarity(scheme.CiphertextPolicy).Build()
	require.NoError(t, err)
	assert.Equal(t, defaults.Policies()[0].Label(), cfg.Policies()[0].Label())

	res, err := bench.NewRunner().RunPredicate(context.Background(), cfg, newFakeFactory(scheme.CiphertextPolicy, &calls{}))
	require.NoError(t, err)

	satisfied := make(map[string]bool)
	for _, m := range res.ByOperation(bench.OpDecrypt) {
		satisfied[m.Label] = m.Satisfied
	}
	assert.Equal(t, map[string]bool{
		"64 BigInt / 64 BigInt All AND": true,
		"64 BigInt / 64 BigInt All OR":  true,
		"10 BigInt / 64 BigInt All AND": false,
		"10 BigInt / 64 BigInt All OR":  true,
		"last / 64 BigInt All AND":      false,
		"last / 64 BigInt All OR":       true,
	}, satisfied)
}

func TestRunPredicatePolaritySwap(t *testing.T) {
	for _, tc := range []struct {
		polarity scheme.Polarity
		key, ct  string
	}{
		{scheme.CiphertextPolicy, "set", "policy"},
		{scheme.KeyPolicy, "policy", "set"},
	} {
		t.Run(tc.polarity.String(), func(t *testing.T) {
			cfg := singlePair(t, tc.polarity, func(b *bench.ConfigBuilder) {
				b.WithWarmupRuns(0).WithEncDecCycles(2)
			})
			c := &calls{}
			_, err := bench.NewRunner().RunPredicate(context.Background(), cfg, newFakeFactory(tc.polarity, c))
			require.NoError(t, err)
			assert.Equal(t, []string{tc.key}, c.keyIdx)
			assert.Equal(t, []string{tc.ct, tc.ct}, c.ctIdx)
		})
	}
}

func TestRunPredicatePolarityMismatch(t *testing.T) {
	cfg := singlePair(t, scheme.CiphertextPolicy, nil)
	_, err := bench.NewRunner().RunPredicate(context.Background(), cfg, newFakeFactory(scheme.KeyPolicy, &calls{}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, bench.ErrPolarityMismatch))
}

func TestRunPredicateCorrectnessFailure(t *testing.T) {
	cfg := singlePair(t, scheme.CiphertextPolicy, func(b *bench.ConfigBuilder) {
		b.WithWarmupRuns(0)
	})
	_, err := bench.NewRunner().RunPredicate(context.Background(), cfg,
		newFakeFactory(scheme.CiphertextPolicy, &calls{}, func(f *fakePredicate) { f.corrupt = true }))
	require.Error(t, err)
	assert.True(t, bench.IsCorrectnessFailure(err))

	var runErr *bench.RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, bench.PhaseDecrypt, runErr.Phase)
	assert.False(t, runErr.Warmup)
	assert.Equal(t, 0, runErr.Setup)
	assert.Equal(t, 0, runErr.KeyGeneration)
	assert.Equal(t, 0, runErr.Cycle)
	assert.Equal(t, "abc", runErr.KeyLabel)
	assert.Equal(t, "all-abc", runErr.CiphertextLabel)
}

func TestRunPredicateNonSatisfyingPairMustNotDecrypt(t *testing.T) {
	cfg, err := bench.NewConfigBuilder().
		WithPolarity(scheme.KeyPolicy).
		WithAttributeSets(bench.NewFixture(attribute.NewSet(1), "one")).
		WithPolicies(bench.NewFixture(policy.And(policy.Leaf(1), policy.Leaf(2)), "one and two")).
		Build()
	require.NoError(t, err)

	_, err = bench.NewRunner().RunPredicate(context.Background(), cfg, newFakeFactory(scheme.KeyPolicy, &calls{}))
	require.NoError(t, err)

	_, err = bench.NewRunner().RunPredicate(context.Background(), cfg,
		newFakeFactory(scheme.KeyPolicy, &calls{}, func(f *fakePredicate) { f.leak = true }))
	require.Error(t, err)
	assert.True(t, errors.Is(err, bench.ErrCorrectness))

	var runErr *bench.RunError
	require.True(t, errors.As(err, &runErr))
	assert.True(t, runErr.Warmup)
	assert.Equal(t, "one and two", runErr.KeyLabel)
	assert.Equal(t, "one", runErr.CiphertextLabel)
}

func TestRunPredicateSetupFailure(t *testing.T) {
	boom := errors.New("no parameters within retry budget")
	cfg := singlePair(t, scheme.CiphertextPolicy, nil)
	c := &calls{}

	_, err := bench.NewRunner().RunPredicate(context.Background(), cfg,
		newFakeFactory(scheme.CiphertextPolicy, c, func(f *fakePredicate) { f.setupErr = boom }))
	require.Error(t, err)
	assert.True(t, errors.Is(err, bench.ErrSetup))
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 1, c.setups, "setup must not be retried")
	assert.Empty(t, c.keyIdx)

	var runErr *bench.RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, bench.PhaseSetup, runErr.Phase)
	assert.True(t, runErr.Warmup)
}

func TestRunPredicateLabels(t *testing.T) {
	quiet := singlePair(t, scheme.CiphertextPolicy, func(b *bench.ConfigBuilder) {
		b.WithPrintDetails(false)
	})
	res, err := bench.NewRunner().RunPredicate(context.Background(), quiet, newFakeFactory(scheme.CiphertextPolicy, &calls{}))
	require.NoError(t, err)
	for _, m := range res.Measurements {
		assert.Empty(t, m.Label)
	}

	verbose := singlePair(t, scheme.CiphertextPolicy, nil)
	res, err = bench.NewRunner().RunPredicate(context.Background(), verbose, newFakeFactory(scheme.CiphertextPolicy, &calls{}))
	require.NoError(t, err)
	assert.Equal(t, "abc / all-abc", res.ByOperation(bench.OpEncrypt)[0].Label)
}

func TestRunPredicateClock(t *testing.T) {
	var ticks int
	clock := func() time.Time {
		ticks++
		return time.Unix(0, 0).Add(time.Duration(ticks) * time.Millisecond)
	}
	cfg := singlePair(t, scheme.CiphertextPolicy, func(b *bench.ConfigBuilder) {
		b.WithWarmupRuns(0).WithEncDecCycles(4)
	})

	res, err := bench.NewRunner(bench.WithClock(clock)).RunPredicate(context.Background(), cfg, newFakeFactory(scheme.CiphertextPolicy, &calls{}))
	require.NoError(t, err)
	assert.Equal(t, time.Unix(0, 0).Add(time.Millisecond), res.Started)
	for _, m := range res.Measurements {
		assert.Equal(t, time.Millisecond, m.Duration)
	}
	assert.Equal(t, 4*time.Millisecond, res.Total(bench.OpDecrypt))
}

func TestRunPredicateStates(t *testing.T) {
	var states []bench.State
	cfg := singlePair(t, scheme.CiphertextPolicy, func(b *bench.ConfigBuilder) {
		b.WithWarmupRuns(1).WithEncDecCycles(2)
	})
	runner := bench.NewRunner(bench.WithStateObserver(func(s bench.State) { states = append(states, s) }))

	_, err := runner.RunPredicate(context.Background(), cfg, newFakeFactory(scheme.CiphertextPolicy, &calls{}))
	require.NoError(t, err)

	onePass := []bench.State{bench.StateSetup, bench.StateKeyGen, bench.StateEncDec, bench.StateEncDec}
	want := append([]bench.State{bench.StateWarmingUp}, onePass...)
	want = append(want, onePass...)
	want = append(want, bench.StateDone)
	assert.Equal(t, want, states)
}

func TestRunPredicateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := singlePair(t, scheme.CiphertextPolicy, nil)
	c := &calls{}

	_, err := bench.NewRunner().RunPredicate(ctx, cfg, newFakeFactory(scheme.CiphertextPolicy, c))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, c.setups)
}

func TestRunPredicateRejectsUnbuiltConfig(t *testing.T) {
	_, err := bench.NewRunner().RunPredicate(context.Background(), bench.Config{}, newFakeFactory(scheme.CiphertextPolicy, &calls{}))
	assert.True(t, errors.Is(err, bench.ErrConfiguration))
}

func TestRunSignature(t *testing.T) {
	cfg, err := bench.NewKeyPairConfigBuilder().WithWarmupRuns(1).WithSetups(2).WithKeyGenerations(2).WithCycles(3).Build()
	require.NoError(t, err)
	c := &calls{}

	res, err := bench.NewRunner().RunSignature(context.Background(), cfg, func() scheme.SignatureBenchmarkable {
		return &fakeSignature{calls: c}
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count(bench.OpSetup))
	assert.Equal(t, 4, res.Count(bench.OpKeyGen))
	assert.Equal(t, 12, res.Count(bench.OpSign))
	assert.Equal(t, 12, res.Count(bench.OpVerify))
	assert.Equal(t, 4, c.setups)
	assert.Equal(t, "fake-sig", res.Scheme)

	_, err = bench.NewRunner().RunSignature(context.Background(), cfg, func() scheme.SignatureBenchmarkable {
		return &fakeSignature{calls: &calls{}, forgery: true}
	})
	assert.True(t, errors.Is(err, bench.ErrCorrectness))
}

func TestRunEncryption(t *testing.T) {
	cfg, err := bench.NewKeyPairConfigBuilder().WithWarmupRuns(0).WithCycles(5).WithPrintDetails(false).Build()
	require.NoError(t, err)

	res, err := bench.NewRunner().RunEncryption(context.Background(), cfg, func() scheme.EncryptionBenchmarkable {
		return &fakeEncryption{calls: &calls{}}
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Count(bench.OpEncrypt))
	assert.Equal(t, 5, res.Count(bench.OpDecrypt))
	assert.Equal(t, 1, res.Count(bench.OpSetup))
	assert.Equal(t, 1, res.Count(bench.OpKeyGen))
}
