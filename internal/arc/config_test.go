package arc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[arc]
sso_threshold = 16
thread_safe = false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SSOThreshold != 16 {
		t.Errorf("SSOThreshold = %d, want 16", cfg.SSOThreshold)
	}
	if cfg.ThreadSafe {
		t.Errorf("ThreadSafe = true, want false")
	}
	// Keys absent from the file keep their defaults.
	if cfg.ValueTypeThreshold != DefaultValueTypeThreshold {
		t.Errorf("ValueTypeThreshold = %d, want default %d", cfg.ValueTypeThreshold, DefaultValueTypeThreshold)
	}
	if cfg.DebugTracking {
		t.Errorf("DebugTracking = true, want default false")
	}
}

func TestLoadConfigWithoutArcSection(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[package]
name = "demo"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfigRejectsNegativeThreshold(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[arc]
sso_threshold = -1
`)

	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidThreshold) {
		t.Fatalf("LoadConfig error = %v, want ErrInvalidThreshold", err)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `[arc`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("LoadConfig accepted malformed TOML")
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeManifest(t, root, "[arc]\n")
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	got, ok, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if !ok || got != want {
		t.Errorf("FindConfig = %q, %v, want %q, true", got, ok, want)
	}
}

func TestFindConfigNearestWins(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[arc]\nsso_threshold = 1\n")
	inner := filepath.Join(root, "pkg")
	if err := os.MkdirAll(inner, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	want := writeManifest(t, inner, "[arc]\nsso_threshold = 2\n")

	got, ok, err := FindConfig(filepath.Join(inner))
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if !ok || got != want {
		t.Errorf("FindConfig = %q, %v, want nearest %q", got, ok, want)
	}
}

func TestResolveConfig(t *testing.T) {
	root := t.TempDir()
	manifest := writeManifest(t, root, "[arc]\nsso_threshold = 10\n")
	nested := filepath.Join(root, "src")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	cfg, path, err := ResolveConfig(nested)
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	if path != manifest {
		t.Errorf("path = %q, want %q", path, manifest)
	}
	if cfg.SSOThreshold != 10 {
		t.Errorf("SSOThreshold = %d, want 10", cfg.SSOThreshold)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate(defaults) = %v, want nil", err)
	}
	cfg.ValueTypeThreshold = -5
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("Validate = %v, want ErrInvalidThreshold", err)
	}
}
