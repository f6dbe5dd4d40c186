package bench

import (
	"time"

	"github.com/google/uuid"
)

// Operation is a timed step of the benchmark loop.
type Operation string

const (
	OpSetup   Operation = "setup"
	OpKeyGen  Operation = "keygen"
	OpEncrypt Operation = "encrypt"
	OpDecrypt Operation = "decrypt"
	OpSign    Operation = "sign"
	OpVerify  Operation = "verify"
)

// Measurement is the duration of one timed operation. Label is only set when
// the configuration enables PrintDetails. Iteration indices are zero-based and
// -1 where not applicable.
type Measurement struct {
	Operation     Operation
	Label         string
	Duration      time.Duration
	Setup         int
	KeyGeneration int
	Cycle         int
	// Satisfied reports whether the key and ciphertext indices matched. Only
	// meaningful for predicate encryption measurements.
	Satisfied bool
}

// Result is the ordered sequence of measurements of one run.
type Result struct {
	RunID uuid.UUID
	// Scheme is the name reported by the first instance the run set up.
	Scheme string
	// Started is the time the run began, warm-up included.
	Started      time.Time
	Measurements []Measurement
}

func newResult(schemeName string, started time.Time) *Result {
	return &Result{RunID: uuid.New(), Scheme: schemeName, Started: started}
}

// Count returns the number of measurements of op.
func (r *Result) Count(op Operation) int {
	return len(r.ByOperation(op))
}

// ByOperation returns the measurements of op in recording order.
func (r *Result) ByOperation(op Operation) []Measurement {
	var out []Measurement
	for _, m := range r.Measurements {
		if m.Operation == op {
			out = append(out, m)
		}
	}
	return out
}

// Total returns the summed duration of every measurement of op.
func (r *Result) Total(op Operation) time.Duration {
	var total time.Duration
	for _, m := range r.ByOperation(op) {
		total += m.Duration
	}
	return total
}

// recorder collects measurements; a disabled recorder drops them, which is
// how warm-up passes discard their timings.
type recorder struct {
	result  *Result
	enabled bool
}

func (r *recorder) add(m Measurement) {
	if r.enabled {
		r.result.Measurements = append(r.result.Measurements, m)
	}
}

func (r *recorder) named(scheme string) {
	if r.result.Scheme == "" {
		r.result.Scheme = scheme
	}
}
