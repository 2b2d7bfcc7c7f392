package blocks

import "strings"

// ExcludeSubstrings names non-cube geometry. A block whose lowercased
// "key type" string contains any of these is never turned into a skin.
// Duplicates are kept as-is; they are harmless.
var ExcludeSubstrings = []string{
	"anvil", "enchanting_table", "flower", "sapling", "tall_grass", "rose_bush",
	"peony", "dead_bush", "fern", "_stairs", "_slab", "fence", "_door", "bed",
	"_button", "_pressure_plate", "rail", "torch", "ladder", "carpet", "pane",
	"banner", "sign", "trapdoor", "scaffolding", "chain", "bar", "cauldron",
	"fire", "vine", "tinted", "dyed", "waxed", "infested", "shelf", "shelves",
	"mushroom", "sea_pickle", "sea_pickel", "lantern", "root", "roots", "sculk",
	"sensor", "heavy_core", "spore", "mangrove_root", "mangrove_roots",
	"sea_pickle", "sea_pickles",
}

// Excluded reports whether def names non-cube geometry, and which substring
// matched.
func Excluded(def Definition) (string, bool) {
	haystack := strings.ToLower(def.Key + " " + def.Type)
	for _, s := range ExcludeSubstrings {
		if strings.Contains(haystack, s) {
			return s, true
		}
	}
	return "", false
}

// IsPlainGlass reports whether key names untinted, undyed glass. Such blocks
// are exempt from the partial-transparency rejection.
func IsPlainGlass(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "glass") &&
		!strings.Contains(k, "tinted") &&
		!strings.Contains(k, "dyed")
}
