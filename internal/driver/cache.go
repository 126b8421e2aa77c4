package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"sigil/internal/arc"
	"sigil/internal/bundle"
)

// cacheSchema versions CachePayload; bump when the format changes.
const cacheSchema uint16 = 1

// ErrCacheMiss reports an absent or unusable cache entry. Corrupt and
// stale-schema entries count as misses so the pipeline recomputes
// instead of failing.
var ErrCacheMiss = errors.New("cache miss")

// DiskCache stores expanded bundles keyed by input digest so unchanged
// modules skip re-expansion. Safe for concurrent use; a nil cache
// misses on every Get and swallows every Put.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachePayload is the recorded outcome of one module expansion.
type CachePayload struct {
	// Schema guards against format drift between tool versions.
	Schema uint16
	// Expanded counts the reuse pairs rewritten when the entry was made.
	Expanded int
	// Module is the expanded bundle.
	Module *bundle.Module
}

// OpenDiskCache initializes the cache at the standard location:
// $XDG_CACHE_HOME/<app>, or ~/.cache/<app> when unset.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt initializes the cache in an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// CacheKey derives the lookup key from the input digest and the
// settings that travel with the output.
func CacheKey(digest bundle.Digest, cfg arc.Config) bundle.Digest {
	h := sha256.New()
	_, _ = h.Write(digest[:])
	_, _ = fmt.Fprintf(h, "%d|%d|%t|%t|%d",
		cfg.SSOThreshold, cfg.ValueTypeThreshold, cfg.ThreadSafe, cfg.DebugTracking, cacheSchema)
	var out bundle.Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (c *DiskCache) pathFor(key bundle.Digest) string {
	return filepath.Join(c.dir, "mods", hex.EncodeToString(key[:])+".mp")
}

// Put serializes a payload under key. The write is temp-file plus
// rename so concurrent readers never observe a partial entry.
func (c *DiskCache) Put(key bundle.Digest, payload *CachePayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = cacheSchema
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get loads the payload stored under key.
func (c *DiskCache) Get(key bundle.Digest) (*CachePayload, error) {
	if c == nil {
		return nil, ErrCacheMiss
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var payload CachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheMiss, err)
	}
	if payload.Schema != cacheSchema || payload.Module == nil {
		return nil, ErrCacheMiss
	}
	return &payload, nil
}

// DropAll removes every entry, for invalidation after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
