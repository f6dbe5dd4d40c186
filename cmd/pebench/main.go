// Command pebench benchmarks the bundled scheme adapters.
//
//	pebench run --scheme fame --cycles 10
//	pebench run --config bench.yaml --metrics-out metrics.prom
//	pebench version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
