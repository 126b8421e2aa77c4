// Package fuzztests houses Go fuzz harnesses that exercise the bundle
// decode path (raw bytes -> msgpack -> live image -> per-function
// passes). Its goal is to smoke test robustness and guard against
// panics or runaway recursion on arbitrary inputs: corrupt bundles
// must surface as errors, and whatever restores intact must survive
// analysis.
//
// It does not generate corpora, write files, or drive the CLI.
package fuzztests
