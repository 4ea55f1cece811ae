package colorquant

import (
	"fmt"
	"image"
	"io"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImage reads the image file at path into a Matrix and returns the
// registered format name alongside. PNG, JPEG, GIF, BMP, TIFF and WebP are
// recognized.
func DecodeImage(path string) (*Matrix, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer f.Close()

	m, format, err := DecodeImageReader(f)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image %q: %w", path, err)
	}
	return m, format, nil
}

// DecodeImageReader decodes an image stream into a Matrix.
func DecodeImageReader(r io.Reader) (*Matrix, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	return MatrixFromImage(img), format, nil
}
