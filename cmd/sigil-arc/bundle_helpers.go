package main

import (
	"fmt"

	"sigil/internal/bundle"
	"sigil/internal/source"
)

func fileSetOf(img *bundle.Image) *source.FileSet {
	if img == nil {
		return nil
	}
	return img.Files
}

func lookupName(names *source.Interner, id source.StringID) string {
	if names != nil {
		if name, ok := names.Lookup(id); ok {
			return name
		}
	}
	return fmt.Sprintf("#%d", id)
}

// moduleItems lists the function names the progress UI tracks, typed
// functions in table order first, deduplicated against the IR side.
func moduleItems(img *bundle.Image) []string {
	if img == nil {
		return nil
	}
	items := make([]string, 0, len(img.HIR)+len(img.Funcs))
	seen := make(map[string]struct{}, len(img.HIR)+len(img.Funcs))
	add := func(id source.StringID) {
		name := lookupName(img.Names, id)
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		items = append(items, name)
	}
	for _, f := range img.HIR {
		if f != nil {
			add(f.Name)
		}
	}
	for _, f := range img.Funcs {
		if f != nil {
			add(f.Name)
		}
	}
	return items
}
