package blocks

import "github.com/matzehuels/cubeskin/pkg/atlas"

// Candidate keys per face, tried in order. The first non-empty value wins.
var (
	baseKeys   = []string{"*", "all", "default"}
	topKeys    = []string{"top", "up", "end"}
	bottomKeys = []string{"bottom", "down", "end"}
	sideKeys   = []string{"side", "sides", "wall", "north"}
	northKeys  = []string{"north", "front"}
	southKeys  = []string{"south", "back"}
	eastKeys   = []string{"east", "right"}
	westKeys   = []string{"west", "left"}
)

// FaceNames holds the texture name chosen for each of the six faces.
// Directional faces map onto the atlas as North=front, South=back,
// East=right and West=left.
type FaceNames struct {
	Top, Bottom              string
	North, South, East, West string
}

// Name returns the texture name for an atlas face.
func (n FaceNames) Name(f atlas.Face) string {
	switch f {
	case atlas.Top:
		return n.Top
	case atlas.Bottom:
		return n.Bottom
	case atlas.Front:
		return n.North
	case atlas.Back:
		return n.South
	case atlas.Right:
		return n.East
	case atlas.Left:
		return n.West
	default:
		return ""
	}
}

// Unique returns the distinct names in atlas face order.
func (n FaceNames) Unique() []string {
	seen := make(map[string]bool, 6)
	var out []string
	for _, f := range atlas.Faces {
		name := n.Name(f)
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func (m FaceMap) first(keys []string, fallback string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return fallback
}

// Resolve picks a texture name for every face of def. It reports false when
// any face ends up without a name.
func Resolve(def Definition) (FaceNames, bool) {
	m := def.Textures
	base := m.first(baseKeys, "")
	side := m.first(sideKeys, base)

	n := FaceNames{
		Top:    m.first(topKeys, base),
		Bottom: m.first(bottomKeys, base),
		North:  m.first(northKeys, side),
		South:  m.first(southKeys, side),
		East:   m.first(eastKeys, side),
		West:   m.first(westKeys, side),
	}
	ok := n.Top != "" && n.Bottom != "" &&
		n.North != "" && n.South != "" && n.East != "" && n.West != ""
	return n, ok
}
