package arc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the manifest consulted for [arc] settings.
const ConfigFileName = "sigil.toml"

// Default thresholds. SSO capacity matches the runtime's 24-byte string
// representation (one byte reserved for the length tag).
const (
	DefaultSSOThreshold       = 23
	DefaultValueTypeThreshold = 32
)

// ErrInvalidThreshold indicates a negative threshold in [arc].
var ErrInvalidThreshold = errors.New("threshold must not be negative")

// Config carries the runtime knobs the ARC stage threads through to
// code generation. The analyses themselves stay conservative regardless
// of the values; the knobs travel with the output bundle.
type Config struct {
	// SSOThreshold is the largest string length kept inline without a
	// heap allocation. Strings classify as refcounted either way; the
	// generated code tests the length at runtime.
	SSOThreshold int `toml:"sso_threshold" msgpack:"sso_threshold"`
	// ValueTypeThreshold is the largest struct size, in bytes, that
	// code generation may pass by value instead of by reference.
	ValueTypeThreshold int `toml:"value_type_threshold" msgpack:"value_type_threshold"`
	// ThreadSafe selects atomic reference counts.
	ThreadSafe bool `toml:"thread_safe" msgpack:"thread_safe"`
	// DebugTracking makes the runtime record every retain and release.
	DebugTracking bool `toml:"debug_tracking" msgpack:"debug_tracking"`
}

// DefaultConfig returns the settings used when no manifest is found.
func DefaultConfig() Config {
	return Config{
		SSOThreshold:       DefaultSSOThreshold,
		ValueTypeThreshold: DefaultValueTypeThreshold,
		ThreadSafe:         true,
		DebugTracking:      false,
	}
}

// Validate rejects settings no backend could honor.
func (c Config) Validate() error {
	if c.SSOThreshold < 0 {
		return fmt.Errorf("sso_threshold: %w", ErrInvalidThreshold)
	}
	if c.ValueTypeThreshold < 0 {
		return fmt.Errorf("value_type_threshold: %w", ErrInvalidThreshold)
	}
	return nil
}

type configFile struct {
	Arc Config `toml:"arc"`
}

// LoadConfig parses the [arc] section of the manifest at path. Keys
// absent from the file keep their defaults; a missing [arc] section
// yields DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := configFile{Arc: DefaultConfig()}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := cfg.Arc.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg.Arc, nil
}

// FindConfig walks up from startDir to locate the manifest.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// ResolveConfig locates and loads the effective settings for startDir.
// When no manifest exists the defaults are returned with an empty path.
func ResolveConfig(startDir string) (Config, string, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return DefaultConfig(), "", nil
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}
