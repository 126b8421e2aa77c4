package diag

import (
	"testing"

	"sigil/internal/source"
)

func TestBagLimit(t *testing.T) {
	bag := NewBag(2)

	if !bag.Add(NewError(ArcDirectCycle, source.Span{File: 1, Start: 0, End: 4}, "a")) {
		t.Error("first Add should succeed")
	}
	if !bag.Add(NewError(ArcDirectCycle, source.Span{File: 1, Start: 5, End: 9}, "b")) {
		t.Error("second Add should succeed")
	}
	if bag.Add(NewError(ArcDirectCycle, source.Span{File: 1, Start: 10, End: 14}, "c")) {
		t.Error("Add past the limit should report a drop")
	}
	if bag.Len() != 2 {
		t.Errorf("Len = %d, want 2", bag.Len())
	}
	if bag.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", bag.Dropped())
	}
}

func TestBagSortIsDeterministic(t *testing.T) {
	bag := NewBag(10)
	bag.Add(New(SevWarning, ArcUnresolvedType, source.Span{File: 2, Start: 1, End: 2}, "w"))
	bag.Add(New(SevError, ArcIndirectCycle, source.Span{File: 1, Start: 8, End: 9}, "e2"))
	bag.Add(New(SevError, ArcDirectCycle, source.Span{File: 1, Start: 8, End: 9}, "e1"))
	bag.Add(New(SevInfo, ArcInfo, source.Span{File: 1, Start: 0, End: 1}, "i"))

	bag.Sort()

	items := bag.Items()
	wantOrder := []string{"i", "e1", "e2", "w"}
	for i, want := range wantOrder {
		if items[i].Message != want {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Message, want)
		}
	}
}

func TestBagDedup(t *testing.T) {
	bag := NewBag(10)
	sp := source.Span{File: 1, Start: 3, End: 7}
	bag.Add(NewError(ArcDirectCycle, sp, "type contains itself through: next"))
	bag.Add(NewError(ArcDirectCycle, sp, "type contains itself through: next"))
	bag.Add(NewError(ArcDirectCycle, sp, "different message"))

	bag.Dedup()
	if bag.Len() != 2 {
		t.Errorf("Len after Dedup = %d, want 2", bag.Len())
	}
}

func TestBagMergeGrowsLimit(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(ArcDirectCycle, source.Span{}, "a"))

	b := NewBag(1)
	b.Add(NewError(ArcIndirectCycle, source.Span{}, "b"))

	a.Merge(b)
	if a.Len() != 2 {
		t.Errorf("Len after Merge = %d, want 2", a.Len())
	}
	if a.HasWarnings() != true {
		t.Error("errors imply HasWarnings")
	}
	if !a.HasErrors() {
		t.Error("merged bag should report errors")
	}
}

func TestSeverityOrdering(t *testing.T) {
	bag := NewBag(4)
	bag.Add(New(SevInfo, ObsTimings, source.Span{}, "timings"))
	if bag.HasErrors() || bag.HasWarnings() {
		t.Error("info-only bag must not report warnings or errors")
	}
	bag.Add(New(SevWarning, ArcUnresolvedType, source.Span{}, "w"))
	if bag.HasErrors() {
		t.Error("warnings are not errors")
	}
	if !bag.HasWarnings() {
		t.Error("expected HasWarnings")
	}
}

func TestCodeIDBands(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{code: BndReadError, want: "BND1001"},
		{code: CfgParseError, want: "CFG2002"},
		{code: ArcDirectCycle, want: "ARC3001"},
		{code: ObsTimings, want: "OBS6001"},
		{code: UnknownCode, want: "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("ID(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}

	if got := ArcIndirectCycle.String(); got != "[ARC3002]: cyclic type reference" {
		t.Errorf("String = %q", got)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})

	sp := source.Span{File: 1, Start: 0, End: 3}
	r.Report(ArcIndirectCycle, SevError, sp, "cyclic type reference: A -> B", nil)
	r.Report(ArcIndirectCycle, SevError, sp, "cyclic type reference: A -> B", nil)
	r.Report(ArcIndirectCycle, SevError, sp, "cyclic type reference: B -> A", nil)

	if bag.Len() != 2 {
		t.Errorf("Len = %d, want 2 (duplicate suppressed)", bag.Len())
	}
}

func TestReportBuilderEmitOnce(t *testing.T) {
	bag := NewBag(10)
	r := BagReporter{Bag: bag}

	b := ReportError(r, ArcDirectCycle, source.Span{File: 1}, "type contains itself").
		WithNote(source.Span{File: 1, Start: 10, End: 14}, "field declared here")
	b.Emit()
	b.Emit()

	if bag.Len() != 1 {
		t.Fatalf("Len = %d, want 1", bag.Len())
	}
	d := bag.Items()[0]
	if len(d.Notes) != 1 || d.Notes[0].Msg != "field declared here" {
		t.Errorf("notes = %+v", d.Notes)
	}
}
