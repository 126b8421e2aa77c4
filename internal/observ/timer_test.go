package observ_test

import (
	"strings"
	"testing"

	"sigil/internal/observ"
)

func TestTimerReport(t *testing.T) {
	tm := observ.NewTimer()
	i := tm.Begin("cycles")
	tm.End(i, "")
	j := tm.Begin("expand")
	tm.End(j, "4 funcs")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(report.Phases))
	}
	if report.Phases[0].Name != "cycles" || report.Phases[1].Name != "expand" {
		t.Errorf("phases out of order: %+v", report.Phases)
	}
	if report.Phases[1].Note != "4 funcs" {
		t.Errorf("expected note to survive, got %q", report.Phases[1].Note)
	}
	if report.TotalMS < 0 {
		t.Errorf("total should not be negative, got %f", report.TotalMS)
	}
}

func TestTimerSummary(t *testing.T) {
	tm := observ.NewTimer()
	i := tm.Begin("ownership")
	tm.End(i, "2 funcs")

	out := tm.Summary()
	if !strings.Contains(out, "ownership") {
		t.Errorf("summary missing phase name:\n%s", out)
	}
	if !strings.Contains(out, "// 2 funcs") {
		t.Errorf("summary missing note:\n%s", out)
	}
	if !strings.Contains(out, "total") {
		t.Errorf("summary missing total line:\n%s", out)
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	tm := observ.NewTimer()
	tm.End(3, "ignored")
	if got := tm.Report(); len(got.Phases) != 0 {
		t.Errorf("expected empty report, got %+v", got)
	}
}
