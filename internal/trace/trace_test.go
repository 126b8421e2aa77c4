package trace_test

import (
	"context"
	"strings"
	"testing"

	"sigil/internal/trace"
)

func TestStreamTracerFiltersByLevel(t *testing.T) {
	var sb strings.Builder
	tr := trace.NewStreamTracer(&sb, trace.LevelPhase, trace.FormatText)

	sp := trace.Begin(tr, trace.ScopePass, "expand", 0)
	sp.End("3 pairs")
	trace.Point(tr, trace.ScopeFunc, "func:main", "", sp.ID())

	out := sb.String()
	if !strings.Contains(out, "expand") {
		t.Errorf("pass span missing from output:\n%s", out)
	}
	if strings.Contains(out, "func:main") {
		t.Errorf("func event should be filtered at phase level:\n%s", out)
	}
	if !strings.Contains(out, "(3 pairs)") {
		t.Errorf("end detail missing:\n%s", out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var sb strings.Builder
	tr := trace.NewStreamTracer(&sb, trace.LevelDebug, trace.FormatNDJSON)

	sp := trace.Begin(tr, trace.ScopeDriver, "pipeline", 0)
	sp.WithExtra("funcs", "4").End("")

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 events, got %d:\n%s", len(lines), sb.String())
	}
	if !strings.Contains(lines[0], `"kind":"begin"`) || !strings.Contains(lines[0], `"name":"pipeline"`) {
		t.Errorf("begin event malformed: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"kind":"end"`) || !strings.Contains(lines[1], `"funcs":"4"`) {
		t.Errorf("end event malformed: %s", lines[1])
	}
}

func TestNopTracerSwallowsEverything(t *testing.T) {
	if trace.Nop.Enabled() {
		t.Errorf("nop tracer should be disabled")
	}
	sp := trace.Begin(trace.Nop, trace.ScopeDriver, "anything", 0)
	if d := sp.End(""); d != 0 {
		t.Errorf("expected zero duration from nop span, got %v", d)
	}
	if sp.ID() != 0 {
		t.Errorf("nop span should carry no id")
	}
}

func TestContextRoundTrip(t *testing.T) {
	if got := trace.FromContext(context.Background()); got != trace.Nop {
		t.Errorf("empty context should yield Nop")
	}

	var sb strings.Builder
	tr := trace.NewStreamTracer(&sb, trace.LevelDebug, trace.FormatText)
	ctx := trace.WithTracer(context.Background(), tr)
	if got := trace.FromContext(ctx); got != trace.Tracer(tr) {
		t.Errorf("tracer lost in context")
	}

	sc := trace.SpanContext{SpanID: 7}
	ctx = trace.WithSpanContext(ctx, sc)
	if got := trace.CurrentSpan(ctx); got != sc {
		t.Errorf("expected span context %+v, got %+v", sc, got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    trace.Level
		wantErr bool
	}{
		{"off", trace.LevelOff, false},
		{"phase", trace.LevelPhase, false},
		{"DETAIL", trace.LevelDetail, false},
		{"debug", trace.LevelDebug, false},
		{"verbose", trace.LevelOff, true},
	}
	for _, tc := range tests {
		got, err := trace.ParseLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %t", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	if got := trace.DetectFormat("run.ndjson"); got != trace.FormatNDJSON {
		t.Errorf("expected ndjson for .ndjson, got %v", got)
	}
	if got := trace.DetectFormat("-"); got != trace.FormatText {
		t.Errorf("expected text for stderr, got %v", got)
	}
	if got := trace.DetectFormat("run.log"); got != trace.FormatText {
		t.Errorf("expected text for .log, got %v", got)
	}
}
