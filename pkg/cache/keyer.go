package cache

// atlasLayoutVersion is part of every atlas key. Bump it when the atlas
// layout or face transforms change so stale entries are never reused.
const atlasLayoutVersion = 1

// Keyer derives cache keys.
type Keyer interface {
	// ReferenceKey returns the key for a reference table loaded from source
	// (a URL or file path).
	ReferenceKey(source string) string

	// AtlasKey returns the key for an atlas composited from face images whose
	// combined content hash is facesHash.
	AtlasKey(facesHash string, opts AtlasKeyOpts) string
}

// AtlasKeyOpts holds the settings that change an atlas cache entry.
type AtlasKeyOpts struct {
	// CheckAlpha is false for blocks exempt from the transparency check.
	CheckAlpha bool `json:"check_alpha"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ReferenceKey returns "reference:<source>".
func (DefaultKeyer) ReferenceKey(source string) string {
	return "reference:" + source
}

// AtlasKey hashes the face hash together with opts and the layout version.
func (DefaultKeyer) AtlasKey(facesHash string, opts AtlasKeyOpts) string {
	return hashKey("atlas", atlasLayoutVersion, facesHash, opts)
}

var _ Keyer = DefaultKeyer{}
