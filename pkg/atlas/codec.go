package atlas

import (
	"bytes"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"

	_ "golang.org/x/image/bmp" // register BMP decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/matzehuels/cubeskin/pkg/errors"
)

// Decode decodes a PNG, JPEG, GIF, BMP, TIFF or WebP image.
// Failures carry ErrCodeDecodeFailure.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "decode image")
	}
	if img.Bounds().Empty() {
		return nil, errors.New(errors.ErrCodeDecodeFailure, "decode image: empty bounds")
	}
	return img, nil
}

// EncodePNG writes img as a lossless, alpha-preserving PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

// PNG returns img encoded as PNG bytes.
func PNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeAtlas decodes a PNG produced by [EncodePNG] back into an atlas.
func DecodeAtlas(data []byte) (*image.NRGBA, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() != Size || b.Dy() != Size {
		return nil, errors.New(errors.ErrCodeDecodeFailure, "atlas is %dx%d, want %dx%d", b.Dx(), b.Dy(), Size, Size)
	}
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n, nil
	}
	out := image.NewNRGBA(image.Rect(0, 0, Size, Size))
	xdraw.Copy(out, image.Point{}, img, b, xdraw.Src, nil)
	return out, nil
}
