package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"sigil/internal/diag"
	"sigil/internal/source"
)

func TestJSONOutputShape(t *testing.T) {
	fs, id := testFileSet(t)
	bag := diag.NewBag(10)
	bag.Add(cycleDiag(id))
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, "cycles: 0.42 ms"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludeNotes: true}); err != nil {
		t.Fatalf("failed to encode: %v", err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if out.Count != 2 {
		t.Fatalf("expected count 2, got %d", out.Count)
	}
	if out.Dropped != 0 {
		t.Errorf("expected dropped 0, got %d", out.Dropped)
	}

	d := out.Diagnostics[0]
	if d.Severity != "ERROR" {
		t.Errorf("expected severity ERROR, got %q", d.Severity)
	}
	if d.Code != "ARC3001" {
		t.Errorf("expected code ARC3001, got %q", d.Code)
	}
	if d.Title != "type contains itself" {
		t.Errorf("expected title, got %q", d.Title)
	}
	if d.Location == nil {
		t.Fatal("expected a location")
	}
	if d.Location.File != "main.sg" {
		t.Errorf("expected file main.sg, got %q", d.Location.File)
	}
	if d.Location.StartByte != 47 || d.Location.EndByte != 51 {
		t.Errorf("expected bytes 47..51, got %d..%d", d.Location.StartByte, d.Location.EndByte)
	}
	if d.Location.StartLine != 3 || d.Location.StartCol != 11 {
		t.Errorf("expected 3:11, got %d:%d", d.Location.StartLine, d.Location.StartCol)
	}
	if len(d.Notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(d.Notes))
	}
	n := d.Notes[0]
	if n.Message != "the cycle enters through this field" {
		t.Errorf("unexpected note message %q", n.Message)
	}
	if n.Location == nil || n.Location.StartLine != 3 || n.Location.StartCol != 5 {
		t.Errorf("unexpected note location %+v", n.Location)
	}

	// Spanless diagnostics omit the location entirely.
	if out.Diagnostics[1].Location != nil {
		t.Errorf("expected no location, got %+v", out.Diagnostics[1].Location)
	}
	if out.Diagnostics[1].Severity != "INFO" {
		t.Errorf("expected severity INFO, got %q", out.Diagnostics[1].Severity)
	}
}

func TestJSONOmitsNotesWhenDisabled(t *testing.T) {
	fs, id := testFileSet(t)
	bag := diag.NewBag(10)
	bag.Add(cycleDiag(id))

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	if len(out.Diagnostics[0].Notes) != 0 {
		t.Errorf("expected no notes, got %+v", out.Diagnostics[0].Notes)
	}
}

func TestJSONCountsDropped(t *testing.T) {
	fs, id := testFileSet(t)
	bag := diag.NewBag(1)
	for range 3 {
		bag.Add(cycleDiag(id))
	}

	out := BuildDiagnosticsOutput(bag, fs, DefaultJSONOpts())
	if out.Count != 1 {
		t.Errorf("expected count 1, got %d", out.Count)
	}
	if out.Dropped != 2 {
		t.Errorf("expected dropped 2, got %d", out.Dropped)
	}
}

func TestJSONStubFileOmitsLineColumns(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddStub("main.sg", 0)
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.ArcDirectCycle,
		source.Span{File: id, Start: 47, End: 51}, "struct `Node` owns itself"))

	out := BuildDiagnosticsOutput(bag, fs, DefaultJSONOpts())
	loc := out.Diagnostics[0].Location
	if loc == nil {
		t.Fatal("expected a location")
	}
	if loc.File != "main.sg" || loc.StartByte != 47 {
		t.Errorf("expected path and byte offsets, got %+v", loc)
	}
	if loc.StartLine != 0 || loc.StartCol != 0 {
		t.Errorf("expected no line info for unloaded file, got %+v", loc)
	}
}

func TestJSONEmptyBagEncodesEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, diag.NewBag(1), nil, DefaultJSONOpts()); err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	if !strings.Contains(buf.String(), `"diagnostics": []`) {
		t.Errorf("expected an empty array, got:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "null") {
		t.Errorf("expected no nulls, got:\n%s", buf.String())
	}
}
