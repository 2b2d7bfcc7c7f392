package atlas

import "image"

// HasPartialAlpha reports whether img, resampled to 16×16, contains at least
// one pixel whose alpha is neither fully transparent nor fully opaque.
func HasPartialAlpha(img image.Image) bool {
	tile := Resample(img)
	for i := 3; i < len(tile.Pix); i += 4 {
		if a := tile.Pix[i]; a > 0 && a < 255 {
			return true
		}
	}
	return false
}
