package atlas

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Resample scales img to a 16×16 tile with nearest-neighbour sampling.
// The result is always a fresh *image.NRGBA anchored at (0, 0).
func Resample(img image.Image) *image.NRGBA {
	tile := image.NewNRGBA(image.Rect(0, 0, TileSize, TileSize))
	xdraw.NearestNeighbor.Scale(tile, tile.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return tile
}

// Composite renders the six faces of s into a new 128×128 atlas.
// It fails without producing an image if any face is missing.
func Composite(s FaceSet) (*image.NRGBA, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	out := image.NewNRGBA(image.Rect(0, 0, Size, Size))
	for _, p := range layout {
		blit(out, Resample(s.Get(p.face)), p)
	}
	return out, nil
}

// CompositeUniform renders img on all six faces. The result is identical to
// Composite(Uniform(img)).
func CompositeUniform(img image.Image) (*image.NRGBA, error) {
	return Composite(Uniform(img))
}

// blit copies tile into out at the placement origin, applying its transform.
func blit(out, tile *image.NRGBA, p placement) {
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			sx, sy := p.xf(x, y)
			si := tile.PixOffset(sx, sy)
			di := out.PixOffset(p.origin.X+x, p.origin.Y+y)
			copy(out.Pix[di:di+4], tile.Pix[si:si+4])
		}
	}
}
