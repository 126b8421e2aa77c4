package main

import (
	"encoding/json"
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

var checkCmd = &cobra.Command{
	Use:   "check [flags] <bundle.mp>...",
	Short: "Check bundles for ownership cycles",
	Long:  `Check runs cycle rejection and the per-function ownership passes over compiled bundles without writing anything`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Bool("json", false, "emit diagnostics as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
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
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	prettyOpts := diagfmt.DefaultPrettyOpts()
	prettyOpts.Color = useColor
	jsonOpts := diagfmt.DefaultJSONOpts()

	exit := 0
	jsonDocs := make(map[string]diagfmt.DiagnosticsOutput, len(args))

	for idx, path := range args {
		cfg, _, err := arc.ResolveConfig(filepath.Dir(path))
		if err != nil {
			cleanupOnError(cmd)
			return err
		}
		opts := driver.Options{
			Config:         cfg,
			MaxDiagnostics: maxDiagnostics,
			Jobs:           jobs,
			Tracer:         trace.FromContext(cmd.Context()),
			Timings:        showTimings && jsonOut,
		}

		bag := diag.NewBag(maxDiagnostics)
		var res *driver.Result
		img, _, ok := driver.Load(path, bag)
		if ok {
			res, err = driver.ProcessModule(cmd.Context(), img, opts)
			if err != nil {
				cleanupOnError(cmd)
				return err
			}
			bag = res.Bag
		}
		if bag.HasErrors() {
			exit = 1
		}

		switch {
		case jsonOut && len(args) > 1:
			jsonDocs[path] = diagfmt.BuildDiagnosticsOutput(bag, fileSetOf(img), jsonOpts)
		case jsonOut:
			if err := diagfmt.JSON(os.Stdout, bag, fileSetOf(img), jsonOpts); err != nil {
				cleanupOnError(cmd)
				return fmt.Errorf("failed to format diagnostics: %w", err)
			}
		default:
			if len(args) > 1 {
				if idx > 0 {
					fmt.Fprintln(os.Stdout)
				}
				fmt.Fprintf(os.Stdout, "== %s ==\n", path)
			}
			diagfmt.Pretty(os.Stdout, bag, fileSetOf(img), prettyOpts)
			if showTimings && res != nil {
				printPhaseTimings(os.Stdout, res.Report)
			}
		}
	}

	if jsonOut && len(args) > 1 {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(jsonDocs); err != nil {
			cleanupOnError(cmd)
			return fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
	}

	if exit != 0 {
		cleanupOnError(cmd)
		// Suppress cobra usage output on diagnostic errors.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("") // diagnostics already printed
	}
	return nil
}
