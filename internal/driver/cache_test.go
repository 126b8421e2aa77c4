package driver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"sigil/internal/arc"
	"sigil/internal/bundle"
)

func cachedModule() *bundle.Module {
	return &bundle.Module{
		Name:    1,
		Strings: []string{"", "demo"},
	}
}

func TestDiskCachePutGet(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	key := CacheKey(bundle.Digest{1, 2, 3}, arc.DefaultConfig())

	if err := cache.Put(key, &CachePayload{Expanded: 3, Module: cachedModule()}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, err := cache.Get(key)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Expanded != 3 {
		t.Errorf("expected 3 expanded, got %d", got.Expanded)
	}
	if got.Schema != cacheSchema {
		t.Errorf("expected schema %d, got %d", cacheSchema, got.Schema)
	}
	if got.Module == nil || len(got.Module.Strings) != 2 || got.Module.Strings[1] != "demo" {
		t.Errorf("module did not round-trip: %+v", got.Module)
	}
}

func TestDiskCacheMiss(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	if _, err := cache.Get(bundle.Digest{9}); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}

	var nilCache *DiskCache
	if _, err := nilCache.Get(bundle.Digest{9}); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("nil cache should miss, got %v", err)
	}
	if err := nilCache.Put(bundle.Digest{9}, &CachePayload{}); err != nil {
		t.Errorf("nil cache put should be a no-op, got %v", err)
	}
}

func TestDiskCacheRejectsCorruptEntries(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	key := CacheKey(bundle.Digest{4}, arc.DefaultConfig())
	p := cache.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(p, []byte{0xc1}, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := cache.Get(key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("corrupt entry should read as a miss, got %v", err)
	}
}

func TestDiskCacheRejectsSchemaDrift(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	key := CacheKey(bundle.Digest{5}, arc.DefaultConfig())
	p := cache.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	raw, err := msgpack.Marshal(&CachePayload{Schema: 99, Module: cachedModule()})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := os.WriteFile(p, raw, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := cache.Get(key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("stale schema should read as a miss, got %v", err)
	}
}

func TestCacheKeyDependsOnInputs(t *testing.T) {
	digest := bundle.Digest{7}
	base := CacheKey(digest, arc.DefaultConfig())

	if again := CacheKey(digest, arc.DefaultConfig()); again != base {
		t.Error("same inputs should derive the same key")
	}
	if other := CacheKey(bundle.Digest{8}, arc.DefaultConfig()); other == base {
		t.Error("different digests should derive different keys")
	}
	cfg := arc.DefaultConfig()
	cfg.ThreadSafe = !cfg.ThreadSafe
	if other := CacheKey(digest, cfg); other == base {
		t.Error("different config should derive a different key")
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "arc"))
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	key := CacheKey(bundle.Digest{6}, arc.DefaultConfig())
	if err := cache.Put(key, &CachePayload{Expanded: 1, Module: cachedModule()}); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop failed: %v", err)
	}
	if _, err := cache.Get(key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected a miss after drop, got %v", err)
	}
	// The cache recreates its directory on the next write.
	if err := cache.Put(key, &CachePayload{Expanded: 1, Module: cachedModule()}); err != nil {
		t.Fatalf("put after drop failed: %v", err)
	}
	if _, err := cache.Get(key); err != nil {
		t.Errorf("get after re-put failed: %v", err)
	}
}

func TestOpenDiskCacheUsesXDGCacheHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	cache, err := OpenDiskCache("sigil-arc-test")
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	key := CacheKey(bundle.Digest{1}, arc.DefaultConfig())
	if err := cache.Put(key, &CachePayload{Expanded: 2, Module: cachedModule()}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "sigil-arc-test", "mods")); err != nil {
		t.Errorf("expected entries under XDG_CACHE_HOME, got %v", err)
	}
}
