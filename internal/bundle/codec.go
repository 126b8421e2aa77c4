package bundle

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrSchemaVersion reports a bundle written with a schema this build
// does not read. Check with errors.Is.
var ErrSchemaVersion = errors.New("bundle schema version mismatch")

// Encode writes the module as msgpack, stamping the current schema so
// hand-built modules round-trip the same as Snapshot-built ones.
func Encode(w io.Writer, m *Module) error {
	if m == nil {
		return errors.New("bundle: nil module")
	}
	m.Schema = Schema
	if err := msgpack.NewEncoder(w).Encode(m); err != nil {
		return fmt.Errorf("bundle: encode: %w", err)
	}
	return nil
}

// Decode reads one module and verifies its schema. On any failure the
// module is discarded; callers never see a partial read.
func Decode(r io.Reader) (*Module, error) {
	var m Module
	if err := msgpack.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("bundle: decode: %w", err)
	}
	if m.Schema != Schema {
		return nil, fmt.Errorf("%w: bundle carries %d, reader expects %d", ErrSchemaVersion, m.Schema, Schema)
	}
	return &m, nil
}

// Digest is a content hash of the encoded bundle, used as the artifact
// cache key.
type Digest [sha256.Size]byte

// Hex renders the digest for file names and logs.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// ReadFile loads a bundle from disk and returns the digest of the raw
// bytes alongside it.
func ReadFile(path string) (*Module, Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Digest{}, err
	}
	m, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Digest{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, sha256.Sum256(data), nil
}

// WriteFile encodes the module next to its destination and renames it
// into place, so readers never observe a half-written bundle.
func WriteFile(path string, m *Module) error {
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(f.Name()) }()

	if err := Encode(f, m); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
