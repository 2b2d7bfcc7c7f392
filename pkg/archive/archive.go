// Package archive provides read access to resource pack archives and derives
// the layout information skin generation needs from them.
//
// An [Archive] is anything that can list its entry paths and read an entry by
// path. Three implementations are provided:
//
//   - [OpenZip] / [NewZip]: a .zip or .mcpack file
//   - [OpenDir]: an unpacked pack on disk
//   - [Map]: an in-memory archive, useful for tests and HTTP uploads
//
// Entry paths always use forward slashes and never start with "/".
package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matzehuels/cubeskin/pkg/errors"
)

// Archive is a read-only collection of named entries.
type Archive interface {
	// Files returns every entry path in listing order.
	Files() []string
	// ReadFile returns the contents of the named entry.
	ReadFile(name string) ([]byte, error)
}

// =============================================================================
// Zip
// =============================================================================

// Zip is an Archive backed by a zip file.
type Zip struct {
	r       *zip.Reader
	files   []string
	ignored []string
	byName  map[string]*zip.File
	closer  io.Closer
}

// OpenZip opens the zip (or .mcpack) file at path. The caller must Close it.
func OpenZip(path string) (*Zip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "stat %s", path)
	}
	z, err := NewZip(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	z.closer = f
	return z, nil
}

// NewZip reads a zip archive from r. Entries whose names are not clean
// relative slash paths (backslashes, "..", control characters) are left out
// of the listing and reported by [Zip.Ignored].
func NewZip(r io.ReaderAt, size int64) (*Zip, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil && err != zip.ErrInsecurePath {
		return nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "read zip")
	}
	z := &Zip{r: zr, byName: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if err := errors.ValidateEntryPath(f.Name); err != nil {
			z.ignored = append(z.ignored, f.Name)
			continue
		}
		if _, dup := z.byName[f.Name]; dup {
			continue
		}
		z.files = append(z.files, f.Name)
		z.byName[f.Name] = f
	}
	return z, nil
}

// ZipBytes reads a zip archive held in memory.
func ZipBytes(data []byte) (*Zip, error) {
	return NewZip(bytes.NewReader(data), int64(len(data)))
}

// Files returns the entry paths in central directory order.
func (z *Zip) Files() []string {
	return z.files
}

// Ignored returns the entry names left out of Files because their paths
// were unsafe.
func (z *Zip) Ignored() []string {
	return z.ignored
}

// ReadFile reads the named entry.
func (z *Zip) ReadFile(name string) ([]byte, error) {
	f, ok := z.byName[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no entry %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "open entry %s", name)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "read entry %s", name)
	}
	return data, nil
}

// Close releases the underlying file, if any.
func (z *Zip) Close() error {
	if z.closer == nil {
		return nil
	}
	return z.closer.Close()
}

// =============================================================================
// Directory
// =============================================================================

// Dir is an Archive backed by a directory tree.
type Dir struct {
	root  string
	files []string
	set   map[string]bool
}

// OpenDir walks root and indexes every regular file below it.
// Files are listed in lexical order.
func OpenDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidArchive, "%s is not a directory", root)
	}

	d := &Dir{root: root, set: make(map[string]bool)}
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		d.files = append(d.files, name)
		d.set[name] = true
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "walk %s", root)
	}
	return d, nil
}

// Files returns the relative paths of all files.
func (d *Dir) Files() []string {
	return d.files
}

// ReadFile reads a file by its relative path.
func (d *Dir) ReadFile(name string) ([]byte, error) {
	if !d.set[name] {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no entry %s", name)
	}
	data, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(name)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "read %s", name)
	}
	return data, nil
}

// =============================================================================
// In-memory
// =============================================================================

// Map is an in-memory Archive. Files are listed in lexical order unless an
// explicit order is set with [Map.WithOrder].
type Map struct {
	entries map[string][]byte
	order   []string
}

// NewMap creates an in-memory archive from path → contents.
func NewMap(entries map[string][]byte) *Map {
	m := &Map{entries: entries}
	for name := range entries {
		m.order = append(m.order, name)
	}
	sort.Strings(m.order)
	return m
}

// WithOrder sets the listing order. Names not in entries are ignored;
// entries not named are appended in lexical order.
func (m *Map) WithOrder(names ...string) *Map {
	seen := make(map[string]bool, len(names))
	var order []string
	for _, n := range names {
		if _, ok := m.entries[n]; ok && !seen[n] {
			order = append(order, n)
			seen[n] = true
		}
	}
	for _, n := range m.order {
		if !seen[n] {
			order = append(order, n)
		}
	}
	m.order = order
	return m
}

// Files returns the entry paths.
func (m *Map) Files() []string {
	return m.order
}

// ReadFile returns the contents of the named entry.
func (m *Map) ReadFile(name string) ([]byte, error) {
	data, ok := m.entries[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no entry %s", name)
	}
	return data, nil
}

// =============================================================================
// Open
// =============================================================================

// Open opens path as a directory archive if it is a directory, otherwise as
// a zip file. The returned close function is never nil.
func Open(path string) (Archive, func() error, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if info.IsDir() {
		d, err := OpenDir(path)
		if err != nil {
			return nil, nil, err
		}
		return d, func() error { return nil }, nil
	}
	z, err := OpenZip(path)
	if err != nil {
		return nil, nil, err
	}
	return z, z.Close, nil
}

// IsPackFile reports whether path has a pack archive extension.
func IsPackFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".mcpack":
		return true
	}
	return false
}

var (
	_ Archive = (*Zip)(nil)
	_ Archive = (*Dir)(nil)
	_ Archive = (*Map)(nil)
)
