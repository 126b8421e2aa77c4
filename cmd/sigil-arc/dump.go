package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"sigil/internal/arc"
	"sigil/internal/arcir"
	"sigil/internal/bundle"
	"sigil/internal/diag"
	"sigil/internal/diagfmt"
	"sigil/internal/driver"
	"sigil/internal/trace"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <bundle.mp>",
	Short: "Print the ARC IR of a bundle",
	Long:  `Dump prints the IR functions of a compiled bundle in a stable text form, optionally after reuse expansion and with per-block liveness`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().Bool("expanded", false, "run reuse expansion before dumping")
	dumpCmd.Flags().Bool("live", false, "append per-block liveness of refcounted variables")
}

func runDump(cmd *cobra.Command, args []string) error {
	expanded, err := cmd.Flags().GetBool("expanded")
	if err != nil {
		return fmt.Errorf("failed to get expanded flag: %w", err)
	}
	live, err := cmd.Flags().GetBool("live")
	if err != nil {
		return fmt.Errorf("failed to get live flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
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
	if ok && expanded {
		res, perr := driver.ProcessModule(cmd.Context(), img, driver.Options{
			Config:         cfg,
			MaxDiagnostics: maxDiagnostics,
			Jobs:           jobs,
			Tracer:         trace.FromContext(cmd.Context()),
		})
		if perr != nil {
			cleanupOnError(cmd)
			return perr
		}
		bag = res.Bag
	}
	if bag.HasErrors() {
		prettyOpts := diagfmt.DefaultPrettyOpts()
		prettyOpts.Color = useColor
		diagfmt.Pretty(os.Stdout, bag, fileSetOf(img), prettyOpts)
		cleanupOnError(cmd)
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("") // diagnostics already printed
	}

	mod := &arcir.Module{Name: img.Name, Funcs: img.Funcs}
	if err := arcir.DumpModule(os.Stdout, mod, img.Types, img.Names, arcir.DumpOptions{}); err != nil {
		cleanupOnError(cmd)
		return err
	}
	if live {
		dumpLiveness(os.Stdout, img, cfg)
	}
	return nil
}

// dumpLiveness prints the live refcounted variables around every
// block, functions sorted by name to match the module dump.
func dumpLiveness(w io.Writer, img *bundle.Image, cfg arc.Config) {
	cls := arc.NewClassifier(img.Types, cfg)
	funcs := make([]*arcir.Func, 0, len(img.Funcs))
	for _, f := range img.Funcs {
		if f != nil {
			funcs = append(funcs, f)
		}
	}
	slices.SortStableFunc(funcs, func(a, b *arcir.Func) int {
		return strings.Compare(lookupName(img.Names, a.Name), lookupName(img.Names, b.Name))
	})

	fmt.Fprintf(w, "\nliveness:\n")
	for _, f := range funcs {
		fmt.Fprintf(w, "\nfn %s:\n", lookupName(img.Names, f.Name))
		for i, bl := range arcir.ComputeLiveness(f, cls) {
			fmt.Fprintf(w, "  bb%d: in=[%s] out=[%s]\n",
				int32(f.Blocks[i].ID), formatLiveVars(bl.LiveIn), formatLiveVars(bl.LiveOut))
		}
	}
}

func formatLiveVars(s arcir.VarSet) string {
	vars := s.Vars()
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = fmt.Sprintf("%%%d", int32(v))
	}
	return strings.Join(parts, ", ")
}
