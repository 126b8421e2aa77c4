package source

import (
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet maps FileIDs to files. IDs arrive in IR bundles produced by
// earlier compiler stages, so a set usually starts as metadata-only stub
// entries and gains content lazily when diagnostics need source lines.
//
// Index 0 is reserved so that NoFileID stays unambiguous.
type FileSet struct {
	files []File
	index map[string]FileID // normalized path -> id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 1), // files[0] reserved for NoFileID
		index: make(map[string]FileID),
	}
}

// Add stores a file with content, builds its line index, and returns a
// fresh FileID. Re-adding a path creates a new ID; the path index always
// points at the latest version.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	normalized := normalizePath(path)

	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	id := FileID(n)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   flags,
	})
	fs.index[normalized] = id
	return id
}

// AddStub registers a metadata-only entry (typically restored from a
// bundle's file table). Position resolution degrades to byte offsets
// until LoadContent succeeds.
func (fs *FileSet) AddStub(path string, flags FileFlags) FileID {
	id := fs.Add(path, nil, flags|FileStub)
	f := fs.Get(id)
	f.LineIdx = nil
	return id
}

// AddVirtual adds an in-memory file (stdin, test, or generated input).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Load reads a file from disk, normalizes BOM/CRLF the way the front end
// does, and adds it.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return NoFileID, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// LoadContent fills a stub entry with content from its recorded path.
// A second call on a loaded file is a no-op.
func (fs *FileSet) LoadContent(id FileID) error {
	f := fs.Get(id)
	if f == nil {
		return fmt.Errorf("no file with ID %d", id)
	}
	if f.Loaded() {
		return nil
	}
	// #nosec G304 -- path came from a bundle the user asked us to read
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return err
	}
	content, _ = removeBOM(content)
	content, _ = normalizeCRLF(content)
	f.Content = content
	f.LineIdx = buildLineIndex(content)
	return nil
}

// Get returns the file metadata for the given ID, or nil for NoFileID
// and out-of-range IDs.
func (fs *FileSet) Get(id FileID) *File {
	if id == NoFileID || int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// GetLatest returns the latest file ID for the given path, if present.
func (fs *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fs.index[normalizePath(path)]
	return id, ok
}

// Len counts real entries (the reserved slot excluded).
func (fs *FileSet) Len() int {
	return len(fs.files) - 1
}

// Resolve converts a span into line/column positions. Works only when
// the file content is loaded; callers should check ok and fall back to
// byte offsets otherwise.
func (fs *FileSet) Resolve(span Span) (start, end LineCol, ok bool) {
	f := fs.Get(span.File)
	if f == nil || !f.Loaded() {
		return LineCol{}, LineCol{}, false
	}
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End), true
}

// Position renders a span as "path:line:col", degrading gracefully for
// stub entries ("path:@start") and missing files ("@start").
func (fs *FileSet) Position(span Span) string {
	f := fs.Get(span.File)
	if f == nil {
		return fmt.Sprintf("@%d", span.Start)
	}
	if !f.Loaded() {
		return fmt.Sprintf("%s:@%d", f.Path, span.Start)
	}
	lc := toLineCol(f.LineIdx, span.Start)
	return fmt.Sprintf("%s:%d:%d", f.Path, lc.Line, lc.Col)
}

// Snapshot returns the path table in ID order (reserved slot excluded),
// for bundle encoding. Content is never serialized.
func (fs *FileSet) Snapshot() []string {
	paths := make([]string, 0, len(fs.files)-1)
	for _, f := range fs.files[1:] {
		paths = append(paths, f.Path)
	}
	return paths
}

// Restore rebuilds the set from a path table as stub entries, preserving
// IDs exactly. Previously registered files are discarded.
func (fs *FileSet) Restore(paths []string) {
	fs.files = make([]File, 1, len(paths)+1)
	fs.index = make(map[string]FileID, len(paths))
	for _, p := range paths {
		fs.AddStub(p, 0)
	}
}

// GetLine returns the 1-based line from the file, without the trailing
// newline. Missing lines and unloaded files yield "".
func (f *File) GetLine(lineNum uint32) string {
	if f == nil || !f.Loaded() || lineNum == 0 {
		return ""
	}

	var start, end uint32
	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	switch {
	case lineNum == 1:
		start = 0
	case (lineNum - 2) < lenLineIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}

	if (lineNum - 1) < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}

	if start >= lenContent {
		return ""
	}
	if end > lenContent {
		end = lenContent
	}

	return string(f.Content[start:end])
}
