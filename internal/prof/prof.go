// Package prof drives the Go runtime profilers behind the CLI's
// profiling flags.
package prof

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Options selects the profiles to collect. Empty paths are skipped.
type Options struct {
	// CPUPath receives pprof CPU samples for the whole run.
	CPUPath string
	// HeapPath receives a heap profile taken when the session stops.
	HeapPath string
	// TracePath receives a runtime execution trace.
	TracePath string
}

// Session holds the profilers started by Start until Stop is called.
type Session struct {
	cpu      *os.File
	trace    *os.File
	heapPath string
	done     bool
}

// Start enables every profiler selected in opts. On failure the
// profilers that already started are shut down before returning.
func Start(opts Options) (*Session, error) {
	s := &Session{heapPath: opts.HeapPath}

	if opts.CPUPath != "" {
		f, err := os.Create(opts.CPUPath)
		if err != nil {
			return nil, fmt.Errorf("create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("start cpu profile: %w", err)
		}
		s.cpu = f
	}

	if opts.TracePath != "" {
		f, err := os.Create(opts.TracePath)
		if err != nil {
			s.shutdown()
			return nil, fmt.Errorf("create runtime trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.shutdown()
			return nil, fmt.Errorf("start runtime trace: %w", err)
		}
		s.trace = f
	}

	return s, nil
}

// Stop halts the active profilers and writes the heap profile when one
// was requested. Calling Stop again is a no-op.
func (s *Session) Stop() error {
	if s == nil || s.done {
		return nil
	}
	s.done = true
	s.shutdown()

	if s.heapPath == "" {
		return nil
	}
	f, err := os.Create(s.heapPath)
	if err != nil {
		return fmt.Errorf("create heap profile: %w", err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write heap profile: %w", err)
	}
	return f.Close()
}

func (s *Session) shutdown() {
	if s.trace != nil {
		trace.Stop()
		_ = s.trace.Close()
		s.trace = nil
	}
	if s.cpu != nil {
		pprof.StopCPUProfile()
		_ = s.cpu.Close()
		s.cpu = nil
	}
}
