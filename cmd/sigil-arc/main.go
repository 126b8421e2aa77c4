// Package main implements the sigil-arc CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sigil/internal/driver"
	"sigil/internal/trace"
	"sigil/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "sigil-arc",
	Short: "ARC lowering for sigil module bundles",
	Long:  `sigil-arc rejects ownership cycles, analyzes per-function ownership, and expands constructor reuse in compiled sigil bundles`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup

		cleanup, err = setupProfiling(cmd)
		if err != nil {
			traceCleanup()
			return err
		}
		profCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		profCleanup()
		traceCleanup()
	},
}

// traceCleanup and profCleanup flush what PersistentPreRunE started.
// Cobra skips PersistentPostRun when RunE fails, so error paths call
// cleanupOnError instead.
var (
	traceCleanup = func() {}
	profCleanup  = func() {}
)

// cleanupOnError releases the tracer and profilers on paths where
// cobra will not run PersistentPostRun.
func cleanupOnError(cmd *cobra.Command) {
	if tracer := trace.FromContext(cmd.Context()); tracer != nil && tracer != trace.Nop {
		_ = tracer.Flush()
		_ = tracer.Close()
	}
	profCleanup()
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(ownershipCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("jobs", 0, "max parallel workers for per-function passes (0=auto)")
	rootCmd.PersistentFlags().Int("max-diagnostics", driver.DefaultMaxDiagnostics, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("trace", "", "write a pipeline trace to FILE (text, or NDJSON for .ndjson/.jsonl)")
	rootCmd.PersistentFlags().String("trace-level", "detail", "trace verbosity (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("progress", "auto", "progress UI for expansion (auto|on|off)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a pprof CPU profile to FILE")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a pprof heap profile to FILE on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to FILE")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
