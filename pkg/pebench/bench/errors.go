package bench

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is returned by Build when the configuration is
	// incomplete or invalid. It is recoverable: fix the builder and retry.
	ErrConfiguration = errors.New("bench: invalid configuration")

	// ErrSetup wraps a failure of a scheme's DoSetup. The harness never
	// retries setup.
	ErrSetup = errors.New("bench: scheme setup failed")

	// ErrCorrectness indicates that a decrypt-then-compare or verify check
	// failed. It always aborts the run.
	ErrCorrectness = errors.New("bench: correctness check failed")

	// ErrPolarityMismatch indicates that the scheme under test does not have
	// the polarity the configuration was built for.
	ErrPolarityMismatch = errors.New("bench: scheme polarity does not match configuration")
)

// Phase names the step of the benchmark loop a RunError occurred in.
type Phase string

const (
	PhaseSetup     Phase = "setup"
	PhaseKeyGen    Phase = "keygen"
	PhasePlainText Phase = "plaintext"
	PhaseEncrypt   Phase = "encrypt"
	PhaseDecrypt   Phase = "decrypt"
	PhaseSign      Phase = "sign"
	PhaseVerify    Phase = "verify"
)

// RunError records where in the benchmark loop a failure happened, so the
// failing combination can be reproduced. Iteration indices are zero-based and
// -1 where not applicable.
type RunError struct {
	Phase           Phase
	Warmup          bool
	Setup           int
	KeyGeneration   int
	Cycle           int
	KeyLabel        string
	CiphertextLabel string
	Err             error
}

func (e *RunError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bench: %s failed (", e.Phase)
	if e.Warmup {
		b.WriteString("warm-up, ")
	}
	fmt.Fprintf(&b, "setup %d", e.Setup)
	if e.KeyGeneration >= 0 {
		fmt.Fprintf(&b, ", keygen %d", e.KeyGeneration)
	}
	if e.Cycle >= 0 {
		fmt.Fprintf(&b, ", cycle %d", e.Cycle)
	}
	if e.KeyLabel != "" {
		fmt.Fprintf(&b, ", key %q", e.KeyLabel)
	}
	if e.CiphertextLabel != "" {
		fmt.Fprintf(&b, ", ciphertext %q", e.CiphertextLabel)
	}
	fmt.Fprintf(&b, "): %v", e.Err)
	return b.String()
}

func (e *RunError) Unwrap() error {
	return e.Err
}
