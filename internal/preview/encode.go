package preview

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// Formats lists the image formats Encode supports.
var Formats = []string{"png", "webp", "tga"}

// Encode writes img to w in the named format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "webp":
		return nativewebp.Encode(w, img, nil)
	case "tga":
		return tga.Encode(w, img)
	}
	return fmt.Errorf("preview: unknown format %q", format)
}

// Save writes img to path, picking the format from its extension.
func Save(path string, img image.Image) error {
	ext := filepath.Ext(path)
	if ext == "" {
		return fmt.Errorf("preview: %s has no extension", path)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("preview: create %s: %w", path, err)
	}
	if err := Encode(f, img, ext[1:]); err != nil {
		_ = f.Close()
		return fmt.Errorf("preview: encode %s: %w", path, err)
	}
	return f.Close()
}
