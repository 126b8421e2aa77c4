package driver

import (
	"errors"
	"io/fs"

	"sigil/internal/bundle"
	"sigil/internal/diag"
	"sigil/internal/source"
)

// Load reads the bundle at path and restores it to a live image.
// Failures land in the bag as bundle diagnostics; a false return means
// the image is unusable.
func Load(path string, bag *diag.Bag) (*bundle.Image, bundle.Digest, bool) {
	mod, digest, err := bundle.ReadFile(path)
	if err != nil {
		bag.Add(diag.NewError(loadErrorCode(err), source.Span{}, err.Error()))
		return nil, bundle.Digest{}, false
	}
	img, err := mod.Restore()
	if err != nil {
		bag.Add(diag.NewError(diag.BndCorrupt, source.Span{}, path+": "+err.Error()))
		return nil, bundle.Digest{}, false
	}
	return img, digest, true
}

func loadErrorCode(err error) diag.Code {
	var pathErr *fs.PathError
	switch {
	case errors.Is(err, bundle.ErrSchemaVersion):
		return diag.BndSchemaMismatch
	case errors.As(err, &pathErr):
		return diag.BndReadError
	default:
		return diag.BndCorrupt
	}
}
