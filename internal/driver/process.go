package driver

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"sigil/internal/arc"
	"sigil/internal/arcir"
	"sigil/internal/bundle"
	"sigil/internal/diag"
	"sigil/internal/hir"
	"sigil/internal/observ"
	"sigil/internal/source"
	"sigil/internal/trace"
	"sigil/internal/types"
)

// FuncOwnership pairs a function with its ownership verdicts.
type FuncOwnership struct {
	Name source.StringID
	Fn   *hir.Func
	Info *arc.OwnershipInfo
}

// Result is the outcome of processing one module.
type Result struct {
	// Bag holds every diagnostic the pipeline produced.
	Bag *diag.Bag
	// Cyclic lists the rejected type cycles, declaration-table order.
	Cyclic []arc.CycleResult
	// Ownership holds the per-function analyses in HIR table order.
	// Empty when the module halted.
	Ownership []FuncOwnership
	// Expanded counts reuse pairs rewritten across all IR functions.
	Expanded int
	// Halted reports that cyclic types stopped the module before any
	// per-function work.
	Halted bool
	// Report carries phase timings.
	Report observ.Report
}

// ProcessModule runs the ARC pipeline over one module image: the
// module-wide cycle check, then ownership analysis per HIR function and
// reuse expansion per IR function. Per-function work fans out across
// Options.Jobs goroutines and merges back in function order, so the
// result is deterministic regardless of scheduling.
//
// The error return covers context cancellation and, with
// Options.Validate, a malformed function after expansion. Everything
// user-facing lands in Result.Bag.
func ProcessModule(ctx context.Context, img *bundle.Image, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	res := &Result{Bag: diag.NewBag(opts.MaxDiagnostics)}
	if img == nil {
		return res, nil
	}

	timer := observ.NewTimer()
	span := trace.Begin(opts.Tracer, trace.ScopeDriver, "arc", trace.CurrentSpan(ctx).SpanID)
	defer func() {
		span.End(fmt.Sprintf("%d pairs", res.Expanded))
	}()

	if checkCycles(img, opts, res, timer, span.ID()) {
		res.Report = timer.Report()
		if opts.Timings {
			appendTimingDiagnostic(res.Bag, res.Report)
		}
		return res, nil
	}

	// The classifier memo is written on first query per type. Filling
	// it for the whole pool up front keeps the fan-out below read-only.
	cls := arc.NewClassifier(img.Types, opts.Config)
	for id := range img.Types.Len() {
		cls.NeedsRC(types.TypeID(id))
	}

	if err := analyzeOwnership(ctx, img, cls, opts, res, timer, span.ID()); err != nil {
		return res, err
	}
	if err := expandFuncs(ctx, img, cls, opts, res, timer, span.ID()); err != nil {
		return res, err
	}

	res.Report = timer.Report()
	if opts.Timings {
		appendTimingDiagnostic(res.Bag, res.Report)
	}
	return res, nil
}

// checkCycles runs the detector and, on any finding, halts the module:
// downstream passes assume acyclic ownership and must not run.
func checkCycles(img *bundle.Image, opts Options, res *Result, timer *observ.Timer, parent uint64) bool {
	emit(opts.Progress, "", StageCycles, StatusWorking, nil, 0)
	span := trace.Begin(opts.Tracer, trace.ScopePass, "cycles", parent)
	idx := timer.Begin("cycles")

	graph := arc.NewTypeGraph(img.Types, img.Names)
	res.Cyclic = graph.CheckAll(diag.BagReporter{Bag: res.Bag})

	elapsed := span.End(fmt.Sprintf("%d types, %d cyclic", graph.Len(), len(res.Cyclic)))
	timer.End(idx, fmt.Sprintf("%d types", graph.Len()))

	if len(res.Cyclic) == 0 {
		emit(opts.Progress, "", StageCycles, StatusDone, nil, elapsed)
		return false
	}
	res.Halted = true
	res.Bag.Add(diag.New(diag.SevInfo, diag.ArcModuleHalted, source.Span{},
		fmt.Sprintf("module %s halted before ARC lowering: %d cyclic types",
			itemName(img.Names, img.Name), len(res.Cyclic))))
	emit(opts.Progress, "", StageCycles, StatusError, nil, elapsed)
	return true
}

func analyzeOwnership(ctx context.Context, img *bundle.Image, cls arc.Classification, opts Options, res *Result, timer *observ.Timer, parent uint64) error {
	res.Ownership = make([]FuncOwnership, len(img.HIR))
	if len(img.HIR) == 0 {
		return nil
	}

	span := trace.Begin(opts.Tracer, trace.ScopePass, "ownership", parent)
	idx := timer.Begin("ownership")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.Jobs, len(img.HIR)))
	for i, fn := range img.HIR {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			name := itemName(img.Names, fn.Name)
			emit(opts.Progress, name, StageOwnership, StatusWorking, nil, 0)
			fnSpan := trace.Begin(opts.Tracer, trace.ScopeFunc, name, span.ID())
			info := arc.AnalyzeOwnership(fn, cls)
			elapsed := fnSpan.End(fmt.Sprintf("%d elided, %d releases",
				len(info.ElideARC), len(info.NeedsRelease)))
			// Slot i is this goroutine's alone; no lock needed.
			res.Ownership[i] = FuncOwnership{Name: fn.Name, Fn: fn, Info: info}
			emit(opts.Progress, name, StageOwnership, StatusDone, nil, elapsed)
			return nil
		})
	}
	err := g.Wait()
	span.End(fmt.Sprintf("%d funcs", len(img.HIR)))
	timer.End(idx, fmt.Sprintf("%d funcs", len(img.HIR)))
	return err
}

func expandFuncs(ctx context.Context, img *bundle.Image, cls arc.Classification, opts Options, res *Result, timer *observ.Timer, parent uint64) error {
	if len(img.Funcs) == 0 {
		return nil
	}

	span := trace.Begin(opts.Tracer, trace.ScopePass, "expand", parent)
	idx := timer.Begin("expand")

	counts := make([]int, len(img.Funcs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.Jobs, len(img.Funcs)))
	for i, fn := range img.Funcs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if fn == nil {
				return nil
			}
			name := itemName(img.Names, fn.Name)
			emit(opts.Progress, name, StageExpand, StatusWorking, nil, 0)
			fnSpan := trace.Begin(opts.Tracer, trace.ScopeFunc, name, span.ID())
			counts[i] = arcir.Expand(fn, img.Types, cls)
			if opts.Validate {
				if err := arcir.ValidateFunc(fn); err != nil {
					fnSpan.End("invalid")
					emit(opts.Progress, name, StageExpand, StatusError, err, 0)
					return fmt.Errorf("function %s invalid after expansion: %w", name, err)
				}
			}
			elapsed := fnSpan.End(fmt.Sprintf("%d pairs", counts[i]))
			emit(opts.Progress, name, StageExpand, StatusDone, nil, elapsed)
			return nil
		})
	}
	err := g.Wait()
	for _, n := range counts {
		res.Expanded += n
	}
	span.End(fmt.Sprintf("%d funcs, %d pairs", len(img.Funcs), res.Expanded))
	timer.End(idx, fmt.Sprintf("%d pairs", res.Expanded))
	return err
}

func itemName(names *source.Interner, id source.StringID) string {
	if names == nil {
		return fmt.Sprintf("#%d", uint32(id))
	}
	if s, ok := names.Lookup(id); ok && s != "" {
		return s
	}
	return fmt.Sprintf("#%d", uint32(id))
}
