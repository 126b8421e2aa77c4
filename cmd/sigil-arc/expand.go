package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sigil/internal/arc"
	"sigil/internal/diag"
	"sigil/internal/diagfmt"
	"sigil/internal/driver"
	"sigil/internal/trace"
)

var expandCmd = &cobra.Command{
	Use:   "expand [flags] <bundle.mp>",
	Short: "Expand constructor reuse in a bundle",
	Long:  `Expand runs the full ARC pipeline over a compiled bundle and writes the rewritten module: reset/reuse pairs become in-place construction guarded by a sharing check`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExpand,
}

func init() {
	expandCmd.Flags().StringP("output", "o", "", "output path (default <input>.arc.mp)")
	expandCmd.Flags().Bool("validate", false, "validate every function after expansion")
	expandCmd.Flags().Bool("no-cache", false, "bypass the expansion disk cache")
}

func runExpand(cmd *cobra.Command, args []string) error {
	outFlag, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	validate, err := cmd.Flags().GetBool("validate")
	if err != nil {
		return fmt.Errorf("failed to get validate flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	progressFlag, err := cmd.Root().PersistentFlags().GetString("progress")
	if err != nil {
		return fmt.Errorf("failed to get progress flag: %w", err)
	}
	progressValue, err := readProgressMode(progressFlag)
	if err != nil {
		return err
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	inPath := args[0]
	outPath := outFlag
	if outPath == "" {
		outPath = defaultOutputName(inPath)
	}

	cfg, _, err := arc.ResolveConfig(filepath.Dir(inPath))
	if err != nil {
		cleanupOnError(cmd)
		return err
	}

	var cache *driver.DiskCache
	if !noCache {
		cache, err = driver.OpenDiskCache("sigil-arc")
		if err != nil {
			fmt.Fprintf(os.Stderr, "disk cache disabled: %v\n", err)
			cache = nil
		}
	}

	opts := driver.Options{
		Config:         cfg,
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		Validate:       validate,
		Cache:          cache,
		Tracer:         trace.FromContext(cmd.Context()),
	}

	var outcome *driver.Outcome
	if !quiet && shouldShowProgress(progressValue) {
		// The model needs the function list up front; a second decode
		// inside ExpandFile is cheap next to the passes themselves.
		nameBag := diag.NewBag(maxDiagnostics)
		img, _, ok := driver.Load(inPath, nameBag)
		if !ok {
			prettyOpts := diagfmt.DefaultPrettyOpts()
			prettyOpts.Color = useColor
			diagfmt.Pretty(os.Stdout, nameBag, nil, prettyOpts)
			cleanupOnError(cmd)
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return fmt.Errorf("") // diagnostics already printed
		}
		outcome, err = runExpandWithUI(cmd.Context(), "sigil-arc expand", moduleItems(img), inPath, outPath, opts)
	} else {
		outcome, err = driver.ExpandFile(cmd.Context(), inPath, outPath, opts)
	}
	if err != nil {
		cleanupOnError(cmd)
		return err
	}

	prettyOpts := diagfmt.DefaultPrettyOpts()
	prettyOpts.Color = useColor
	diagfmt.Pretty(os.Stdout, outcome.Result.Bag, fileSetOf(outcome.Image), prettyOpts)

	if showTimings {
		printPhaseTimings(os.Stdout, outcome.Result.Report)
	}
	if !quiet {
		if outcome.CacheHit {
			fmt.Fprintf(os.Stdout, "cache hit for %s\n", filepath.Base(inPath))
		}
		if outcome.Wrote != "" {
			fmt.Fprintf(os.Stdout, "wrote %s (%d reuse pairs)\n", outcome.Wrote, outcome.Result.Expanded)
		}
	}

	if outcome.Result.Bag.HasErrors() {
		cleanupOnError(cmd)
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("") // diagnostics already printed
	}
	return nil
}
