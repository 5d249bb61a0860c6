package mosaic

import (
	"bytes"
	"image"

	// Register decoders for the supported source formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode parses source image bytes into an image.
// PNG, JPEG, GIF, BMP, TIFF and WebP are accepted. Malformed or
// unsupported bytes fail with an InvalidInputError.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, invalidInput("image", "empty image data")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, invalidInput("image", "undecodable image data: %v", err)
	}
	return img, nil
}
