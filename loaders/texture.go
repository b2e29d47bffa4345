package loaders

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/godotengine/collada-exporter/scene"
)

// DecodeImage reads and decodes a texture file by extension.
func DecodeImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Decode(file)
	case ".jpg", ".jpeg":
		return jpeg.Decode(file)
	case ".bmp", ".dib":
		return bmp.Decode(file)
	case ".tif", ".tiff":
		return tiff.Decode(file)
	case ".tga":
		return tga.Decode(file)
	default:
		img, _, err := image.Decode(file)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return img, nil
	}
}

// LoadImage builds an image resource for path. When decode is set the
// pixels are loaded too, so the exporter can re-encode the image even
// if the source file later disappears.
func LoadImage(path string, decode bool) (*scene.Image, error) {
	img := &scene.Image{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path: path,
	}
	if decode {
		data, err := DecodeImage(path)
		if err != nil {
			return nil, err
		}
		img.Data = data
	}
	return img, nil
}
