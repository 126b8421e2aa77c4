package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

// NoFileID marks spans that carry no file association.
const NoFileID FileID = 0

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	// FileStub indicates a metadata-only entry restored from a bundle;
	// content may still be loaded from disk if the path resolves.
	FileStub
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and (optionally) content for a single source file.
// Entries restored from bundles start without content; LineIdx is built
// when the content arrives.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Flags   FileFlags
}

// Loaded reports whether file content is available for position resolution.
func (f *File) Loaded() bool {
	return f.Content != nil
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
