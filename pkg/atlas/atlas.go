// Package atlas composites cube faces into block skin atlases.
//
// A block skin is a 128×128 image holding the six faces of a cube at fixed
// 16×16 offsets. Faces of any size are first resampled to 16×16 with
// nearest-neighbour sampling so pixel art keeps its hard edges.
//
// # Layout
//
//	face    transform                     origin
//	bottom  none                          (16, 0)
//	top     rotate 180°, mirror x         (32, 0)
//	left    rotate 180°                   (0, 16)
//	front   rotate 180°                   (16, 16)
//	right   rotate 180°                   (32, 16)
//	back    rotate 180°                   (48, 16)
//
// Every pixel outside those six tiles is fully transparent.
//
// # Usage
//
//	img, err := atlas.Composite(atlas.FaceSet{Top: top, Bottom: bottom, ...})
//	img, err := atlas.CompositeUniform(texture)
//	semi := atlas.HasPartialAlpha(texture)
package atlas

import (
	"fmt"
	"image"

	"github.com/matzehuels/cubeskin/pkg/errors"
)

const (
	// TileSize is the edge length of one face inside the atlas.
	TileSize = 16

	// Size is the edge length of the atlas.
	Size = 128
)

// Face identifies one side of a cube.
type Face int

// Cube faces in FaceSet order.
const (
	Top Face = iota
	Bottom
	Left
	Right
	Front
	Back
)

// Faces lists all six faces in a fixed order.
var Faces = [6]Face{Top, Bottom, Left, Right, Front, Back}

var faceNames = [6]string{"top", "bottom", "left", "right", "front", "back"}

func (f Face) String() string {
	if f < Top || f > Back {
		return fmt.Sprintf("face(%d)", int(f))
	}
	return faceNames[f]
}

// FaceSet holds one image per cube face. All six must be set before
// compositing; a partial set is rejected rather than rendered with gaps.
type FaceSet struct {
	Top    image.Image
	Bottom image.Image
	Left   image.Image
	Right  image.Image
	Front  image.Image
	Back   image.Image
}

// Uniform returns a FaceSet using img for every face.
func Uniform(img image.Image) FaceSet {
	return FaceSet{Top: img, Bottom: img, Left: img, Right: img, Front: img, Back: img}
}

// Get returns the image for face f.
func (s FaceSet) Get(f Face) image.Image {
	switch f {
	case Top:
		return s.Top
	case Bottom:
		return s.Bottom
	case Left:
		return s.Left
	case Right:
		return s.Right
	case Front:
		return s.Front
	case Back:
		return s.Back
	}
	return nil
}

// Set stores img as face f.
func (s *FaceSet) Set(f Face, img image.Image) {
	switch f {
	case Top:
		s.Top = img
	case Bottom:
		s.Bottom = img
	case Left:
		s.Left = img
	case Right:
		s.Right = img
	case Front:
		s.Front = img
	case Back:
		s.Back = img
	}
}

// Validate reports the first missing or empty face.
func (s FaceSet) Validate() error {
	for _, f := range Faces {
		img := s.Get(f)
		if img == nil {
			return errors.New(errors.ErrCodeIncompleteFaceSet, "missing %s face", f)
		}
		if b := img.Bounds(); b.Empty() {
			return errors.New(errors.ErrCodeIncompleteFaceSet, "%s face has no pixels", f)
		}
	}
	return nil
}

// transform maps a destination tile pixel to the source tile pixel it copies.
type transform func(x, y int) (int, int)

func identity(x, y int) (int, int) { return x, y }

func rotate180(x, y int) (int, int) { return TileSize - 1 - x, TileSize - 1 - y }

// rotate180MirrorX is a 180° turn followed by a horizontal mirror, which
// collapses to a vertical flip.
func rotate180MirrorX(x, y int) (int, int) { return x, TileSize - 1 - y }

type placement struct {
	face   Face
	origin image.Point
	xf     transform
}

var layout = [6]placement{
	{Bottom, image.Pt(16, 0), identity},
	{Top, image.Pt(32, 0), rotate180MirrorX},
	{Left, image.Pt(0, 16), rotate180},
	{Front, image.Pt(16, 16), rotate180},
	{Right, image.Pt(32, 16), rotate180},
	{Back, image.Pt(48, 16), rotate180},
}

// Origin returns the top-left corner of face f inside the atlas.
func Origin(f Face) image.Point {
	for _, p := range layout {
		if p.face == f {
			return p.origin
		}
	}
	return image.Point{}
}

// TileRect returns the atlas rectangle occupied by face f.
func TileRect(f Face) image.Rectangle {
	o := Origin(f)
	return image.Rect(o.X, o.Y, o.X+TileSize, o.Y+TileSize)
}
