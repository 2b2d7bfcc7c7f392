package archive

import (
	"path"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cubeskin/pkg/blocks"
)

// TexturePrefixes are the directories, relative to the pack root, searched
// for block textures, in probing order.
var TexturePrefixes = []string{"textures/blocks/", "textures/block/"}

// Index describes the layout of a pack archive.
type Index struct {
	Files      []string // all entry paths in listing order
	Root       string   // root prefix; "" when the pack sits at the top level
	BlocksPath string   // path of blocks.json; "" when absent
}

// Scan derives the root prefix and the blocks.json location from arc.
func Scan(arc Archive) Index {
	files := arc.Files()
	root := FindRoot(files)
	return Index{
		Files:      files,
		Root:       root,
		BlocksPath: FindBlocksJSON(files, root),
	}
}

// FindRoot returns the root prefix of a pack: the text before the first
// manifest.json, textures/ or pack_icon.png found in listing order.
func FindRoot(files []string) string {
	for _, f := range files {
		switch {
		case strings.HasSuffix(f, "manifest.json"):
			return f[:strings.LastIndex(f, "manifest.json")]
		case strings.Contains(f, "textures/"):
			return f[:strings.Index(f, "textures/")]
		case strings.HasSuffix(f, "pack_icon.png"):
			return strings.TrimSuffix(f, "pack_icon.png")
		}
	}
	return ""
}

// FindBlocksJSON returns the first entry that is root+"blocks.json" or ends
// with "/blocks.json".
func FindBlocksJSON(files []string, root string) string {
	want := root + "blocks.json"
	for _, f := range files {
		if f == want || strings.HasSuffix(f, "/blocks.json") {
			return f
		}
	}
	return ""
}

// HasBlocksJSON reports whether the index found a blocks.json entry.
func (ix Index) HasBlocksJSON() bool {
	return ix.BlocksPath != ""
}

// TexturePaths returns the candidate paths for a texture name, in probing
// order.
func (ix Index) TexturePaths(name string) []string {
	out := make([]string, len(TexturePrefixes))
	for i, p := range TexturePrefixes {
		out[i] = ix.Root + p + name + ".png"
	}
	return out
}

// FlatTextures returns every .png entry under the texture prefixes, in
// listing order.
func (ix Index) FlatTextures() []string {
	var out []string
	for _, f := range ix.Files {
		if !strings.HasSuffix(strings.ToLower(f), ".png") {
			continue
		}
		for _, p := range TexturePrefixes {
			if strings.HasPrefix(f, ix.Root+p) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// BaseName returns the file name of an entry without its extension.
func BaseName(entry string) string {
	base := path.Base(entry)
	return strings.TrimSuffix(base, path.Ext(base))
}

// LoadResourceTable reads and parses the pack's blocks.json. A missing file
// returns nil. A file that cannot be read or parsed is logged and also
// returns nil: a broken table never stops a run.
func LoadResourceTable(arc Archive, ix Index, logger *log.Logger) *blocks.Table {
	if ix.BlocksPath == "" {
		return nil
	}
	data, err := arc.ReadFile(ix.BlocksPath)
	if err != nil {
		if logger != nil {
			logger.Warn("cannot read blocks.json", "path", ix.BlocksPath, "error", err)
		}
		return nil
	}
	tbl, err := blocks.Parse(data)
	if err != nil {
		if logger != nil {
			logger.Warn("ignoring malformed blocks.json", "path", ix.BlocksPath, "error", err)
		}
		return nil
	}
	return tbl
}
