package atlas

import (
	"image"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
)

// Swatch returns the dominant colour of the front face of an atlas as a
// "#rrggbb" string, or "" when the face has no visible pixels.
// Used for listing previews; it never affects generation.
func Swatch(atlas image.Image) string {
	front := image.NewNRGBA(image.Rect(0, 0, TileSize, TileSize))
	r := TileRect(Front).Add(atlas.Bounds().Min)
	visible := false
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			c := atlas.At(r.Min.X+x, r.Min.Y+y)
			if _, _, _, a := c.RGBA(); a > 0 {
				visible = true
			}
			front.Set(x, y, c)
		}
	}
	if !visible {
		return ""
	}

	candidates := dominantcolor.FindWeight(front, 1)
	if len(candidates) == 0 {
		return ""
	}
	col, _ := colorful.MakeColor(candidates[0].RGBA)
	return col.Clamped().Hex()
}
