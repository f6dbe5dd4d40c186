// Package bench runs benchmark workloads against schemes implementing the
// contracts in package scheme.
//
// A run is configured once and then executed read-only:
//
//	cfg, err := bench.NewConfigBuilder().
//		WithPolarity(scheme.CiphertextPolicy).
//		WithEncDecCycles(10).
//		Build()
//	if err != nil {
//		return err
//	}
//	res, err := bench.NewRunner().RunPredicate(ctx, cfg, func() scheme.PredicateBenchmarkable {
//		return fame.New()
//	})
//
// The runner constructs a fresh scheme for every setup iteration, runs the
// configured warm-up passes with recording disabled and returns the measured
// pass as a Result. Failures carry their position in the loop as a *RunError
// wrapping one of ErrSetup, ErrCorrectness or ErrPolarityMismatch, or the
// scheme's own error.
//
// The package does not format or print results; see package report.
package bench
