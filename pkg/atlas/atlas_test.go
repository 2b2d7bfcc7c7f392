package atlas

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/matzehuels/cubeskin/pkg/errors"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// marked returns a 16×16 tile of base colour with mark at (0, 0).
func marked(base, mark color.NRGBA) *image.NRGBA {
	img := solid(TileSize, TileSize, base)
	img.SetNRGBA(0, 0, mark)
	return img
}

var (
	red     = color.NRGBA{R: 255, A: 255}
	green   = color.NRGBA{G: 255, A: 255}
	blue    = color.NRGBA{B: 255, A: 255}
	yellow  = color.NRGBA{R: 255, G: 255, A: 255}
	cyan    = color.NRGBA{G: 255, B: 255, A: 255}
	magenta = color.NRGBA{R: 255, B: 255, A: 255}
	white   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func TestCompositePlacement(t *testing.T) {
	colors := map[Face]color.NRGBA{
		Top:    red,
		Bottom: green,
		Left:   blue,
		Right:  yellow,
		Front:  cyan,
		Back:   magenta,
	}
	var set FaceSet
	for f, c := range colors {
		set.Set(f, solid(TileSize, TileSize, c))
	}

	out, err := Composite(set)
	if err != nil {
		t.Fatalf("Composite() error = %v", err)
	}
	if got := out.Bounds(); got != image.Rect(0, 0, Size, Size) {
		t.Fatalf("bounds = %v, want 128x128", got)
	}

	want := map[image.Point]Face{
		{16, 0}:  Bottom,
		{32, 0}:  Top,
		{0, 16}:  Left,
		{16, 16}: Front,
		{32, 16}: Right,
		{48, 16}: Back,
	}
	for origin, f := range want {
		for y := 0; y < TileSize; y++ {
			for x := 0; x < TileSize; x++ {
				if got := out.NRGBAAt(origin.X+x, origin.Y+y); got != colors[f] {
					t.Fatalf("%s pixel (%d,%d) = %v, want %v", f, x, y, got, colors[f])
				}
			}
		}
	}

	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			inside := false
			for origin := range want {
				if image.Pt(x, y).In(image.Rect(origin.X, origin.Y, origin.X+TileSize, origin.Y+TileSize)) {
					inside = true
					break
				}
			}
			if !inside && out.NRGBAAt(x, y).A != 0 {
				t.Fatalf("pixel (%d,%d) outside tiles has alpha %d", x, y, out.NRGBAAt(x, y).A)
			}
		}
	}
}

func TestCompositeTransforms(t *testing.T) {
	tile := marked(white, red)
	out, err := CompositeUniform(tile)
	if err != nil {
		t.Fatalf("CompositeUniform() error = %v", err)
	}

	tests := []struct {
		face Face
		mark image.Point // where the (0,0) source pixel ends up, relative to the tile
	}{
		{Bottom, image.Pt(0, 0)},
		{Top, image.Pt(0, 15)}, // 180° then mirror x: vertical flip
		{Left, image.Pt(15, 15)},
		{Front, image.Pt(15, 15)},
		{Right, image.Pt(15, 15)},
		{Back, image.Pt(15, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.face.String(), func(t *testing.T) {
			o := Origin(tt.face)
			p := o.Add(tt.mark)
			if got := out.NRGBAAt(p.X, p.Y); got != red {
				t.Errorf("mark at %v = %v, want red", p, got)
			}
			if got := out.NRGBAAt(o.X+7, o.Y+7); got != white {
				t.Errorf("centre pixel = %v, want white", got)
			}
		})
	}
}

func TestCompositeTopIsMirroredAgainstFront(t *testing.T) {
	// An asymmetric tile: left column red, rest white.
	tile := solid(TileSize, TileSize, white)
	for y := 0; y < TileSize; y++ {
		tile.SetNRGBA(0, y, red)
	}
	out, err := CompositeUniform(tile)
	if err != nil {
		t.Fatalf("CompositeUniform() error = %v", err)
	}

	top := Origin(Top)
	front := Origin(Front)
	if got := out.NRGBAAt(top.X, top.Y+3); got != red {
		t.Errorf("top keeps the red column on the left, got %v", got)
	}
	if got := out.NRGBAAt(front.X+15, front.Y+3); got != red {
		t.Errorf("front moves the red column to the right, got %v", got)
	}
}

func TestCompositeUniformMatchesSixCopies(t *testing.T) {
	tile := marked(green, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	tile.SetNRGBA(5, 9, blue)

	a, err := CompositeUniform(tile)
	if err != nil {
		t.Fatalf("CompositeUniform() error = %v", err)
	}
	copies := FaceSet{
		Top: clone(tile), Bottom: clone(tile), Left: clone(tile),
		Right: clone(tile), Front: clone(tile), Back: clone(tile),
	}
	b, err := Composite(copies)
	if err != nil {
		t.Fatalf("Composite() error = %v", err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("uniform atlas differs from six-copy atlas")
	}
}

func clone(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

func TestCompositeMissingFace(t *testing.T) {
	set := Uniform(solid(TileSize, TileSize, red))
	set.Back = nil

	out, err := Composite(set)
	if err == nil {
		t.Fatal("Composite() with missing face should fail")
	}
	if out != nil {
		t.Error("Composite() should not return a partial atlas")
	}
	if !errors.Is(err, errors.ErrCodeIncompleteFaceSet) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeIncompleteFaceSet)
	}
}

func TestResampleNearestNeighbor(t *testing.T) {
	// 32×32 made of 2×2 blocks: each block maps to exactly one tile pixel.
	src := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			c := white
			if (x/2+y/2)%2 == 0 {
				c = blue
			}
			src.SetNRGBA(x, y, c)
		}
	}
	tile := Resample(src)
	if tile.Bounds() != image.Rect(0, 0, TileSize, TileSize) {
		t.Fatalf("bounds = %v", tile.Bounds())
	}
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			want := white
			if (x+y)%2 == 0 {
				want = blue
			}
			if got := tile.NRGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v (no smoothing)", x, y, got, want)
			}
		}
	}
}

func TestResampleOffsetBounds(t *testing.T) {
	base := solid(40, 40, white)
	sub := base.SubImage(image.Rect(8, 8, 24, 24)).(*image.NRGBA)
	sub.SetNRGBA(8, 8, red)

	tile := Resample(sub)
	if got := tile.NRGBAAt(0, 0); got != red {
		t.Errorf("origin pixel = %v, want red", got)
	}
}

func TestHasPartialAlpha(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want bool
	}{
		{"opaque", solid(16, 16, red), false},
		{"transparent", solid(16, 16, color.NRGBA{}), false},
		{"mixed binary alpha", marked(red, color.NRGBA{}), false},
		{"one pixel at 128", marked(red, color.NRGBA{R: 255, A: 128}), true},
		{"one pixel at 1", marked(color.NRGBA{}, color.NRGBA{A: 1}), true},
		{"one pixel at 254", marked(red, color.NRGBA{A: 254}), true},
		{"large opaque", solid(64, 64, green), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPartialAlpha(tt.img); got != tt.want {
				t.Errorf("HasPartialAlpha() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasPartialAlphaIgnoresDroppedPixels(t *testing.T) {
	// A 32×32 image whose only semi-transparent pixel falls between samples.
	img := solid(32, 32, red)
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 100})
	if HasPartialAlpha(img) {
		t.Error("pixel not sampled by nearest-neighbour should not count")
	}
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(16, 16, blue)); err != nil {
		t.Fatal(err)
	}
	img, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Errorf("width = %d, want 16", img.Bounds().Dx())
	}

	_, err = Decode([]byte("not an image"))
	if !errors.Is(err, errors.ErrCodeDecodeFailure) {
		t.Errorf("Decode(garbage) code = %v, want %v", errors.GetCode(err), errors.ErrCodeDecodeFailure)
	}
}

func TestPNGRoundTripKeepsAlpha(t *testing.T) {
	out, err := CompositeUniform(marked(red, color.NRGBA{G: 255, A: 128}))
	if err != nil {
		t.Fatal(err)
	}
	data, err := PNG(out)
	if err != nil {
		t.Fatalf("PNG() error = %v", err)
	}
	img, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("background alpha = %d, want 0", a)
	}
	o := Origin(Bottom)
	if _, _, _, a := img.At(o.X, o.Y).RGBA(); a>>8 != 128 {
		t.Errorf("marked alpha = %d, want 128", a>>8)
	}
}

func TestSwatch(t *testing.T) {
	out, err := CompositeUniform(solid(16, 16, red))
	if err != nil {
		t.Fatal(err)
	}
	if got := Swatch(out); len(got) != 7 || got[0] != '#' {
		t.Errorf("Swatch() = %q, want #rrggbb", got)
	}

	empty := image.NewNRGBA(image.Rect(0, 0, Size, Size))
	if got := Swatch(empty); got != "" {
		t.Errorf("Swatch(empty) = %q, want empty", got)
	}
}

func TestFaceString(t *testing.T) {
	if Top.String() != "top" || Back.String() != "back" {
		t.Errorf("unexpected face names: %s %s", Top, Back)
	}
	if Face(9).String() != "face(9)" {
		t.Errorf("Face(9).String() = %q", Face(9).String())
	}
}

func TestDecodeAtlas(t *testing.T) {
	out, err := CompositeUniform(solid(16, 16, red))
	if err != nil {
		t.Fatal(err)
	}
	data, err := PNG(out)
	if err != nil {
		t.Fatal(err)
	}
	back, err := DecodeAtlas(data)
	if err != nil {
		t.Fatalf("DecodeAtlas() error = %v", err)
	}
	if !bytes.Equal(back.Pix, out.Pix) {
		t.Error("DecodeAtlas() pixels differ from the encoded atlas")
	}

	small, _ := PNG(solid(16, 16, red))
	if _, err := DecodeAtlas(small); !errors.Is(err, errors.ErrCodeDecodeFailure) {
		t.Errorf("DecodeAtlas(16x16) code = %v, want %v", errors.GetCode(err), errors.ErrCodeDecodeFailure)
	}
}
