package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"sigil/internal/arc"
	"sigil/internal/diag"
	"sigil/internal/diagfmt"
	"sigil/internal/driver"
	"sigil/internal/source"
	"sigil/internal/trace"
)

var ownershipCmd = &cobra.Command{
	Use:   "ownership [flags] <bundle.mp>",
	Short: "Report per-function ownership verdicts",
	Long:  `Ownership prints, for every typed function in a bundle, how many expressions had their ARC operations elided and which bindings owe a release at scope end`,
	Args:  cobra.ExactArgs(1),
	RunE:  runOwnership,
}

func runOwnership(cmd *cobra.Command, args []string) error {
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

	path := args[0]
	cfg, _, err := arc.ResolveConfig(filepath.Dir(path))
	if err != nil {
		cleanupOnError(cmd)
		return err
	}

	bag := diag.NewBag(maxDiagnostics)
	img, _, ok := driver.Load(path, bag)
	var res *driver.Result
	if ok {
		res, err = driver.ProcessModule(cmd.Context(), img, driver.Options{
			Config:         cfg,
			MaxDiagnostics: maxDiagnostics,
			Jobs:           jobs,
			Tracer:         trace.FromContext(cmd.Context()),
		})
		if err != nil {
			cleanupOnError(cmd)
			return err
		}
		bag = res.Bag
	}

	prettyOpts := diagfmt.DefaultPrettyOpts()
	prettyOpts.Color = useColor
	diagfmt.Pretty(os.Stdout, bag, fileSetOf(img), prettyOpts)

	if bag.HasErrors() {
		cleanupOnError(cmd)
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("") // diagnostics already printed
	}

	fmt.Fprintf(os.Stdout, "funcs=%d\n", len(res.Ownership))
	for _, fo := range res.Ownership {
		fmt.Fprintf(os.Stdout, "fn %s: elide=%d release=[%s]\n",
			lookupName(img.Names, fo.Name), len(fo.Info.ElideARC), releaseNames(img.Names, fo.Info))
	}
	if showTimings {
		printPhaseTimings(os.Stdout, res.Report)
	}
	return nil
}

// releaseNames renders the owed releases sorted by name; the analysis
// hands them back as a set.
func releaseNames(names *source.Interner, info *arc.OwnershipInfo) string {
	if info == nil || len(info.NeedsRelease) == 0 {
		return ""
	}
	out := make([]string, 0, len(info.NeedsRelease))
	for id := range info.NeedsRelease {
		out = append(out, lookupName(names, id))
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
