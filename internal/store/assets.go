package store

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"photo-retouch/internal/imaging"
	"photo-retouch/internal/render"
)

// FileAssets resolves asset references as paths under a root directory:
// session sources, masks, mattes and replacement backgrounds live as
// plain image files. References that escape the root or do not exist
// report render.ErrMissingAsset.
type FileAssets struct {
	Root string
}

// NewFileAssets creates a resolver rooted at dir.
func NewFileAssets(dir string) *FileAssets {
	return &FileAssets{Root: dir}
}

// Resolve implements render.AssetResolver.
func (f *FileAssets) Resolve(_ context.Context, ref string) (image.Image, error) {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("%w: reference %q escapes the asset root", render.ErrMissingAsset, ref)
	}

	path := filepath.Join(f.Root, clean)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %q", render.ErrMissingAsset, ref)
	}
	src, err := imaging.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", render.ErrMissingAsset, ref, err)
	}
	return src.Image, nil
}
