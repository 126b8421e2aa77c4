package main

import (
	"path/filepath"
	"strings"
)

// defaultOutputName places the expanded bundle next to the input:
// mod.mp becomes mod.arc.mp.
func defaultOutputName(inputPath string) string {
	ext := filepath.Ext(inputPath)
	if ext == "" {
		return inputPath + ".arc.mp"
	}
	return strings.TrimSuffix(inputPath, ext) + ".arc" + ext
}
