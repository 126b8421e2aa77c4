package main

import (
	"fmt"
	"io"

	"sigil/internal/observ"
)

// printPhaseTimings renders the phase report as plain lines. JSON
// consumers get the same data through the timings diagnostic instead.
func printPhaseTimings(out io.Writer, report observ.Report) {
	if out == nil || len(report.Phases) == 0 {
		return
	}
	for _, ph := range report.Phases {
		if ph.Note != "" {
			fmt.Fprintf(out, "%s %.1f ms (%s)\n", ph.Name, ph.DurationMS, ph.Note)
			continue
		}
		fmt.Fprintf(out, "%s %.1f ms\n", ph.Name, ph.DurationMS)
	}
	fmt.Fprintf(out, "total %.1f ms\n", report.TotalMS)
}
