package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/coinbase/pebench-go/pkg/pebench/bench"
	"github.com/coinbase/pebench-go/pkg/pebench/config"
	"github.com/coinbase/pebench-go/pkg/pebench/logging"
	"github.com/coinbase/pebench-go/pkg/pebench/report"
	"github.com/coinbase/pebench-go/pkg/pebench/scheme"
	"github.com/coinbase/pebench-go/pkg/pebench/schemes/ecdsa"
	"github.com/coinbase/pebench-go/pkg/pebench/schemes/fame"
	"github.com/coinbase/pebench-go/pkg/pebench/schemes/paillier"
)

type runFlags struct {
	scheme     string
	configPath string
	warmup     int
	setups     int
	keygens    int
	cycles     int
	quiet      bool
	raw        bool
	logLevel   string
	logFormat  string
	metricsOut string
	influx     influxFlags
	adapter    schemeOptions
}

// influxFlags locate the bucket results are written to. The token is read
// from influxTokenEnv so it never appears in the process list.
type influxFlags struct {
	url    string
	org    string
	bucket string
}

const influxTokenEnv = "PEBENCH_INFLUX_TOKEN"

func newRunCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a benchmark",
		Long: `Run a benchmark against one scheme.

Iteration counts and fixtures come from --config when given; the count flags
override the file. Predicate schemes default to a 64-attribute set with an
all-AND and an all-OR policy over it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.scheme, "scheme", "", "scheme to benchmark ("+strings.Join(schemeNames(), ", ")+")")
	fl.StringVar(&f.configPath, "config", "", "YAML benchmark file")
	fl.IntVar(&f.warmup, "warmup", 1, "unmeasured warm-up passes")
	fl.IntVar(&f.setups, "setups", 1, "setup iterations")
	fl.IntVar(&f.keygens, "keygens", 1, "key generations per setup")
	fl.IntVar(&f.cycles, "cycles", 1, "encrypt/decrypt or sign/verify cycles per key")
	fl.BoolVar(&f.quiet, "quiet", false, "omit fixture labels and per-operation status")
	fl.BoolVar(&f.raw, "raw", false, "print every measurement instead of a summary")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fl.StringVar(&f.logFormat, "log-format", "auto", "log format (auto, text, json); auto uses text on a terminal")
	fl.StringVar(&f.metricsOut, "metrics-out", "", "write Prometheus text exposition to this file")
	fl.StringVar(&f.influx.url, "influx-url", "", "InfluxDB URL to write measurements to (token from $"+influxTokenEnv+")")
	fl.StringVar(&f.influx.org, "influx-org", "", "InfluxDB organization")
	fl.StringVar(&f.influx.bucket, "influx-bucket", "pebench", "InfluxDB bucket")
	fl.IntVar(&f.adapter.messages, "messages", ecdsa.DefaultMessages, "messages per signed block")
	fl.IntVar(&f.adapter.paillierBits, "paillier-bits", paillier.DefaultBits, "Paillier modulus size")
	fl.IntVar(&f.adapter.maxRows, "max-rows", fame.DefaultMaxRows, "limit on the number of policy leaves")
	return cmd
}

func runBenchmark(cmd *cobra.Command, f *runFlags) error {
	var file *config.File
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return fmt.Errorf("load %s: %w", f.configPath, err)
		}
		file = loaded
	}

	name := f.scheme
	if name == "" && file != nil {
		name = file.Scheme
	}
	if name == "" {
		return fmt.Errorf("no scheme given; use --scheme or set scheme in the config file")
	}
	entry, ok := registry[name]
	if !ok {
		return fmt.Errorf("unknown scheme %q (want one of %s)", name, strings.Join(schemeNames(), ", "))
	}

	handler, err := logHandler(cmd.ErrOrStderr(), f.logFormat, logging.ParseLevel(f.logLevel))
	if err != nil {
		return err
	}
	logger := logging.New(slog.New(handler))
	runner := bench.NewRunner(bench.WithLogger(logger.With("scheme", name)))
	ctx := cmd.Context()

	var res *bench.Result
	switch {
	case entry.predicate != nil:
		var cfg bench.Config
		cfg, err = predicateConfig(cmd, f, file, entry.predicate(f.adapter).Polarity())
		if err != nil {
			return err
		}
		res, err = runner.RunPredicate(ctx, cfg, func() scheme.PredicateBenchmarkable {
			return entry.predicate(f.adapter)
		})
	case entry.signature != nil:
		var cfg bench.KeyPairConfig
		cfg, err = keyPairConfig(cmd, f, file)
		if err != nil {
			return err
		}
		res, err = runner.RunSignature(ctx, cfg, func() scheme.SignatureBenchmarkable {
			return entry.signature(f.adapter)
		})
	default:
		var cfg bench.KeyPairConfig
		cfg, err = keyPairConfig(cmd, f, file)
		if err != nil {
			return err
		}
		res, err = runner.RunEncryption(ctx, cfg, func() scheme.EncryptionBenchmarkable {
			return entry.encryption(f.adapter)
		})
	}
	if err != nil {
		return err
	}

	var textOpts []report.TextOption
	if f.raw {
		textOpts = append(textOpts, report.WithRaw())
	}
	reporters := report.Multi{report.NewText(cmd.OutOrStdout(), textOpts...)}
	var promReg *prometheus.Registry
	if f.metricsOut != "" {
		promReg = prometheus.NewRegistry()
		reporters = append(reporters, report.NewPrometheus(promReg))
	}
	if f.influx.url != "" {
		client := influxdb2.NewClient(f.influx.url, os.Getenv(influxTokenEnv))
		defer client.Close()
		reporters = append(reporters, report.NewInflux(client.WriteAPIBlocking(f.influx.org, f.influx.bucket)))
	}
	if err := reporters.Report(ctx, res); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if promReg != nil {
		if err := prometheus.WriteToTextfile(f.metricsOut, promReg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

// logHandler builds the slog handler for format. "auto" picks text when w is
// a terminal and JSON otherwise.
func logHandler(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	case "auto", "":
		if file, ok := w.(*os.File); ok && (isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())) {
			return slog.NewTextHandler(w, opts), nil
		}
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want auto, text or json)", format)
	}
}

// predicateConfig layers defaults, the config file and explicit flags, in
// that order. Without a polarity in the file the scheme's own is used.
func predicateConfig(cmd *cobra.Command, f *runFlags, file *config.File, polarity scheme.Polarity) (bench.Config, error) {
	b := bench.NewConfigBuilder().WithPolarity(polarity)
	if file != nil {
		if err := file.Apply(b); err != nil {
			return bench.Config{}, err
		}
	}
	fl := cmd.Flags()
	if fl.Changed("warmup") {
		b.WithWarmupRuns(f.warmup)
	}
	if fl.Changed("setups") {
		b.WithSetups(f.setups)
	}
	if fl.Changed("keygens") {
		b.WithKeyGenerations(f.keygens)
	}
	if fl.Changed("cycles") {
		b.WithEncDecCycles(f.cycles)
	}
	if f.quiet {
		b.WithPrintDetails(false)
	}
	return b.Build()
}

func keyPairConfig(cmd *cobra.Command, f *runFlags, file *config.File) (bench.KeyPairConfig, error) {
	b := bench.NewKeyPairConfigBuilder()
	if file != nil {
		file.ApplyKeyPair(b)
	}
	fl := cmd.Flags()
	if fl.Changed("warmup") {
		b.WithWarmupRuns(f.warmup)
	}
	if fl.Changed("setups") {
		b.WithSetups(f.setups)
	}
	if fl.Changed("keygens") {
		b.WithKeyGenerations(f.keygens)
	}
	if fl.Changed("cycles") {
		b.WithCycles(f.cycles)
	}
	if f.quiet {
		b.WithPrintDetails(false)
	}
	return b.Build()
}
