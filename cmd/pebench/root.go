package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coinbase/pebench-go/pkg/pebench"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pebench",
		Short: "Benchmark predicate encryption, signature and public-key encryption schemes",
		Long: `pebench measures setup, key generation, encryption and decryption (or
signing and verification) of a scheme across configurable workloads.

Schemes: ` + strings.Join(schemeNames(), ", "),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the harness version and the versions of the linked scheme modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pebench %s (%s)\n", pebench.HarnessVersion(), pebench.GitSHA)
			mods := append([]string(nil), pebench.SchemeModules...)
			sort.Strings(mods)
			for _, m := range mods {
				v := pebench.DependencyVersion(m)
				if v == "" {
					v = "unknown"
				}
				fmt.Fprintf(out, "  %s %s\n", m, v)
			}
			return nil
		},
	}
}
