package driver

import (
	"context"
	"time"

	"sigil/internal/bundle"
	"sigil/internal/diag"
	"sigil/internal/observ"
	"sigil/internal/source"
	"sigil/internal/trace"
)

// Outcome reports one file run: the module result plus the cache and
// I/O facts the CLI prints.
type Outcome struct {
	Result *Result
	// Image is the decoded input, nil when loading failed. Diagnostic
	// spans resolve against its FileSet.
	Image *bundle.Image
	// Digest identifies the input bundle.
	Digest bundle.Digest
	// CacheHit reports that a prior expansion was served. Per-function
	// analyses are skipped on a hit, so Result carries counts only.
	CacheHit bool
	// Wrote is the output path, empty when nothing was written.
	Wrote string
}

// ExpandFile runs the pipeline over the bundle at inPath and writes the
// expanded module to outPath. With Options.Cache set, a prior run over
// the same input and config is replayed from disk. Halted modules and
// error diagnostics leave outPath untouched.
func ExpandFile(ctx context.Context, inPath, outPath string, opts Options) (*Outcome, error) {
	opts = opts.withDefaults()
	out := &Outcome{Result: &Result{Bag: diag.NewBag(opts.MaxDiagnostics)}}

	emit(opts.Progress, "", StageLoad, StatusWorking, nil, 0)
	img, digest, ok := Load(inPath, out.Result.Bag)
	if !ok {
		emit(opts.Progress, "", StageLoad, StatusError, nil, 0)
		return out, nil
	}
	emit(opts.Progress, "", StageLoad, StatusDone, nil, 0)
	out.Image = img
	out.Digest = digest

	key := CacheKey(digest, opts.Config)
	if payload, err := opts.Cache.Get(key); err == nil {
		out.CacheHit = true
		out.Result.Expanded = payload.Expanded
		if outPath != "" {
			if _, ok := writeOut(outPath, payload.Module, out.Result.Bag, opts); !ok {
				return out, nil
			}
			out.Wrote = outPath
		}
		return out, nil
	}
	// Cache errors fall through to a fresh run; misses are the common
	// case and corrupt entries get rewritten below.

	runOpts := opts
	runOpts.Timings = false
	res, err := ProcessModule(ctx, img, runOpts)
	out.Result = res
	if err != nil {
		return out, err
	}
	if res.Halted || res.Bag.HasErrors() {
		if opts.Timings {
			appendTimingDiagnostic(res.Bag, res.Report)
		}
		return out, nil
	}

	mod := bundle.Snapshot(img)
	if outPath != "" {
		elapsed, ok := writeOut(outPath, mod, res.Bag, opts)
		if !ok {
			return out, nil
		}
		out.Wrote = outPath
		ms := float64(elapsed) / float64(time.Millisecond)
		res.Report.Phases = append(res.Report.Phases, observ.PhaseReport{Name: "write", DurationMS: ms})
		res.Report.TotalMS += ms
	}
	if opts.Timings {
		appendTimingDiagnostic(res.Bag, res.Report)
	}

	if opts.Cache != nil {
		if err := opts.Cache.Put(key, &CachePayload{Expanded: res.Expanded, Module: mod}); err != nil {
			trace.Point(opts.Tracer, trace.ScopeDriver, "cache.put", err.Error(), 0)
		}
	}
	return out, nil
}

func writeOut(path string, mod *bundle.Module, bag *diag.Bag, opts Options) (time.Duration, bool) {
	emit(opts.Progress, "", StageWrite, StatusWorking, nil, 0)
	start := time.Now()
	if err := bundle.WriteFile(path, mod); err != nil {
		bag.Add(diag.NewError(diag.BndWriteError, source.Span{}, path+": "+err.Error()))
		emit(opts.Progress, "", StageWrite, StatusError, err, 0)
		return 0, false
	}
	elapsed := time.Since(start)
	emit(opts.Progress, "", StageWrite, StatusDone, nil, elapsed)
	return elapsed, true
}
