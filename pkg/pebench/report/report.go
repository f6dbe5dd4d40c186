package report

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/coinbase/pebench-go/pkg/pebench/bench"
)

// Reporter consumes the measurements of a finished run.
type Reporter interface {
	Report(ctx context.Context, res *bench.Result) error
}

type row struct {
	op    bench.Operation
	label string
	count int
	total time.Duration
}

// summarize groups measurements by operation and label, in order of first
// appearance.
func summarize(res *bench.Result) []*row {
	var rows []*row
	index := make(map[[2]string]*row)
	for _, m := range res.Measurements {
		key := [2]string{string(m.Operation), m.Label}
		r, ok := index[key]
		if !ok {
			r = &row{op: m.Operation, label: m.Label}
			index[key] = r
			rows = append(rows, r)
		}
		r.count++
		r.total += m.Duration
	}
	return rows
}

// Text writes an aligned table. By default it prints one row per operation
// and label; WithRaw prints every measurement instead.
type Text struct {
	w   io.Writer
	raw bool
}

// TextOption configures a Text reporter.
type TextOption func(*Text)

// WithRaw prints one row per measurement.
func WithRaw() TextOption {
	return func(t *Text) { t.raw = true }
}

// NewText returns a reporter writing to w.
func NewText(w io.Writer, opts ...TextOption) *Text {
	t := &Text{w: w}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Report writes a header line naming the scheme and run, then the table.
func (t *Text) Report(_ context.Context, res *bench.Result) error {
	if _, err := fmt.Fprintf(t.w, "scheme %s, run %s\n", res.Scheme, res.RunID); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(t.w, 0, 4, 2, ' ', 0)
	if t.raw {
		fmt.Fprintln(tw, "OPERATION\tLABEL\tSETUP\tKEYGEN\tCYCLE\tDURATION")
		for _, m := range res.Measurements {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
				m.Operation, dash(m.Label), m.Setup, index(m.KeyGeneration), index(m.Cycle), m.Duration)
		}
		return tw.Flush()
	}
	fmt.Fprintln(tw, "OPERATION\tLABEL\tCOUNT\tTOTAL\tMEAN")
	for _, r := range summarize(res) {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			r.op, dash(r.label), r.count, r.total, r.total/time.Duration(r.count))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func index(i int) string {
	if i < 0 {
		return "-"
	}
	return fmt.Sprint(i)
}

// Prometheus records every measurement in the histogram
// pebench_operation_duration_seconds{scheme, operation, label}.
type Prometheus struct {
	durations *prometheus.HistogramVec
}

// NewPrometheus registers the histogram with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	return &Prometheus{
		durations: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pebench_operation_duration_seconds",
			Help:    "Duration of benchmarked scheme operations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 24), // 10us to ~84s
		}, []string{"scheme", "operation", "label"}),
	}
}

// Report observes every measurement once. Calling it twice with the same
// result counts the measurements twice.
func (p *Prometheus) Report(_ context.Context, res *bench.Result) error {
	for _, m := range res.Measurements {
		p.durations.WithLabelValues(res.Scheme, string(m.Operation), m.Label).Observe(m.Duration.Seconds())
	}
	return nil
}

// Multi fans a result out to several reporters and stops at the first error.
type Multi []Reporter

func (m Multi) Report(ctx context.Context, res *bench.Result) error {
	for _, r := range m {
		if err := r.Report(ctx, res); err != nil {
			return err
		}
	}
	return nil
}
