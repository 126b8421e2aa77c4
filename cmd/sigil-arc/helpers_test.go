package main

import (
	"testing"

	"sigil/internal/arc"
	"sigil/internal/arcir"
	"sigil/internal/bundle"
	"sigil/internal/hir"
	"sigil/internal/source"
)

func TestDefaultOutputName(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"mod.mp", "mod.arc.mp"},
		{"dir/mod.mp", "dir/mod.arc.mp"},
		{"mod", "mod.arc.mp"},
		{"a.b.mp", "a.b.arc.mp"},
	}
	for _, tc := range cases {
		got := defaultOutputName(tc.input)
		if got != tc.want {
			t.Fatalf("defaultOutputName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestReadProgressMode(t *testing.T) {
	cases := []struct {
		input string
		want  progressMode
	}{
		{"", progressAuto},
		{"auto", progressAuto},
		{"ON", progressOn},
		{" off ", progressOff},
	}
	for _, tc := range cases {
		got, err := readProgressMode(tc.input)
		if err != nil {
			t.Fatalf("readProgressMode(%q) error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("readProgressMode(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
	if _, err := readProgressMode("sometimes"); err == nil {
		t.Fatalf("expected an error for an unknown mode")
	}
}

func TestReleaseNamesSorted(t *testing.T) {
	names := source.NewInterner()
	xs := names.Intern("xs")
	tmp := names.Intern("tmp")
	info := &arc.OwnershipInfo{
		NeedsRelease: map[source.StringID]struct{}{xs: {}, tmp: {}},
	}
	if got := releaseNames(names, info); got != "tmp, xs" {
		t.Fatalf("releaseNames = %q, want %q", got, "tmp, xs")
	}
	if got := releaseNames(names, nil); got != "" {
		t.Fatalf("releaseNames(nil) = %q, want empty", got)
	}
}

func TestFormatLiveVars(t *testing.T) {
	s := arcir.NewVarSet(8)
	s.Add(arcir.VarID(1))
	s.Add(arcir.VarID(3))
	if got := formatLiveVars(s); got != "%1, %3" {
		t.Fatalf("formatLiveVars = %q, want %q", got, "%1, %3")
	}
	if got := formatLiveVars(arcir.NewVarSet(0)); got != "" {
		t.Fatalf("formatLiveVars(empty) = %q, want empty", got)
	}
}

func TestModuleItemsDedups(t *testing.T) {
	names := source.NewInterner()
	alpha := names.Intern("alpha")
	beta := names.Intern("beta")
	img := &bundle.Image{
		Names: names,
		HIR:   []*hir.Func{{Name: alpha}, {Name: beta}},
		Funcs: []*arcir.Func{{Name: alpha}},
	}
	got := moduleItems(img)
	want := []string{"alpha", "beta"}
	if len(got) != len(want) {
		t.Fatalf("moduleItems = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("moduleItems[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if items := moduleItems(nil); items != nil {
		t.Fatalf("moduleItems(nil) = %v, want nil", items)
	}
}
