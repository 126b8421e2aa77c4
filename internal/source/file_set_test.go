package source

import (
	"testing"
)

func TestFileSetAddAndResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("pair.si", []byte("type Pair =\n    first: Node\n    second: Node\n"))

	if id == NoFileID {
		t.Fatal("AddVirtual returned NoFileID")
	}
	if fs.Len() != 1 {
		t.Fatalf("Len = %d, want 1", fs.Len())
	}

	span := Span{File: id, Start: 16, End: 21} // "first"
	start, end, ok := fs.Resolve(span)
	if !ok {
		t.Fatal("Resolve failed for a loaded file")
	}
	if start.Line != 2 || start.Col != 5 {
		t.Errorf("start = %d:%d, want 2:5", start.Line, start.Col)
	}
	if end.Line != 2 || end.Col != 10 {
		t.Errorf("end = %d:%d, want 2:10", end.Line, end.Col)
	}

	if got := fs.Position(span); got != "pair.si:2:5" {
		t.Errorf("Position = %q, want %q", got, "pair.si:2:5")
	}
}

func TestFileSetGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.si", []byte("alpha\nbeta\ngamma"))
	f := fs.Get(id)

	tests := []struct {
		line uint32
		want string
	}{
		{line: 0, want: ""},
		{line: 1, want: "alpha"},
		{line: 2, want: "beta"},
		{line: 3, want: "gamma"},
		{line: 4, want: ""},
	}
	for _, tt := range tests {
		if got := f.GetLine(tt.line); got != tt.want {
			t.Errorf("GetLine(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestFileSetStubDegradesGracefully(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddStub("src/list.si", 0)

	f := fs.Get(id)
	if f == nil || f.Loaded() {
		t.Fatal("stub entry should exist without content")
	}

	span := Span{File: id, Start: 42, End: 50}
	if _, _, ok := fs.Resolve(span); ok {
		t.Error("Resolve must fail on a stub")
	}
	if got := fs.Position(span); got != "src/list.si:@42" {
		t.Errorf("Position = %q, want stub fallback", got)
	}
	if got := f.GetLine(1); got != "" {
		t.Errorf("GetLine on stub = %q, want empty", got)
	}
}

func TestFileSetSnapshotRestore(t *testing.T) {
	fs := NewFileSet()
	a := fs.AddStub("a.si", 0)
	b := fs.AddVirtual("b.si", []byte("x"))

	snap := fs.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot len = %d, want 2", len(snap))
	}

	restored := NewFileSet()
	restored.Restore(snap)

	if restored.Len() != 2 {
		t.Fatalf("restored Len = %d, want 2", restored.Len())
	}
	if got := restored.Get(a); got == nil || got.Path != "a.si" {
		t.Errorf("restored[%d] = %+v, want a.si", a, got)
	}
	if got := restored.Get(b); got == nil || got.Path != "b.si" {
		t.Errorf("restored[%d] = %+v, want b.si", b, got)
	}
	// Content never round-trips; restored entries are stubs.
	if restored.Get(b).Loaded() {
		t.Error("restored entries must not carry content")
	}
}

func TestFileSetGetLatest(t *testing.T) {
	fs := NewFileSet()
	first := fs.AddVirtual("dup.si", []byte("v1"))
	second := fs.AddVirtual("dup.si", []byte("v2"))

	if first == second {
		t.Fatal("re-adding a path must mint a new ID")
	}
	id, ok := fs.GetLatest("dup.si")
	if !ok || id != second {
		t.Errorf("GetLatest = %d, ok=%v, want %d", id, ok, second)
	}
}

func TestFileSetNoFileID(t *testing.T) {
	fs := NewFileSet()
	if fs.Get(NoFileID) != nil {
		t.Error("Get(NoFileID) must be nil")
	}
	if got := fs.Position(Span{Start: 7}); got != "@7" {
		t.Errorf("Position without file = %q, want @7", got)
	}
}
