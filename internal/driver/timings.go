package driver

import (
	"encoding/json"
	"fmt"

	"sigil/internal/diag"
	"sigil/internal/observ"
	"sigil/internal/source"
)

// appendTimingDiagnostic surfaces phase durations as an INFO diagnostic
// so --timings reaches both the pretty and the JSON renderers. The
// machine-readable report rides in a note.
func appendTimingDiagnostic(bag *diag.Bag, report observ.Report) {
	if bag == nil || len(report.Phases) == 0 {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{},
		fmt.Sprintf("timings: total %.2f ms", report.TotalMS)).
		WithNote(source.Span{}, string(data))
	if bag.Add(entry) {
		return
	}
	// The bag may be full of real findings; timings still matter, so
	// grow past the cap through a merge.
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
