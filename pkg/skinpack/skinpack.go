// Package skinpack packages generated skins as a Bedrock skin pack.
//
// A skin pack is a zip archive (.mcpack, or .zip for manual installs) with a
// single top-level folder:
//
//	<Folder>/
//	  <identifier>.png      one per skin
//	  manifest.json         pack header and skin_pack module
//	  skins.json            one entry per skin
//	  text/languages.json   ["en_US"]
//	  text/en_US.lang       display names
//
// Identifiers must be unique within a pack. [Pack.AddExtra] derives a fresh
// identifier for user-supplied textures; [Pack.Rename] re-validates on edit.
package skinpack

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/cubeskin/pkg/errors"
	"github.com/matzehuels/cubeskin/pkg/pipeline"
)

// Pack defaults.
const (
	DefaultName        = "Imported Block Skin Pack"
	DefaultDescription = "Skins generated from a resource pack"
	DefaultKey         = "imported_blocks"
	DefaultFolder      = "ImportedBlockSkinPack"
)

// Format is the output container extension.
type Format string

// Output formats.
const (
	FormatMCPack Format = "mcpack"
	FormatZip    Format = "zip"
)

// ParseFormat parses "mcpack" or "zip" (case-insensitive, optional dot).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case FormatMCPack, FormatZip:
		return f, nil
	case "":
		return FormatMCPack, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown pack format %q (want mcpack or zip)", s)
}

// Entry is one skin in a pack.
type Entry struct {
	Identifier  string
	DisplayName string
	PNG         []byte
}

// Pack is an in-memory skin pack.
type Pack struct {
	Name        string
	Description string
	Folder      string // raw folder name; empty means DefaultFolder
	Key         string
	HeaderUUID  uuid.UUID
	ModuleUUID  uuid.UUID
	Entries     []Entry
}

// New creates an empty pack with fresh UUIDs. Empty name and description
// fall back to the defaults; the folder is derived from the name as given.
func New(name, description string) *Pack {
	folder := name
	if strings.TrimSpace(name) == "" {
		name = DefaultName
	}
	if strings.TrimSpace(description) == "" {
		description = DefaultDescription
	}
	return &Pack{
		Name:        name,
		Description: description,
		Folder:      folder,
		Key:         DefaultKey,
		HeaderUUID:  uuid.New(),
		ModuleUUID:  uuid.New(),
	}
}

// FromSkins creates a pack holding every skin of a run.
func FromSkins(name, description string, skins []pipeline.Skin) (*Pack, error) {
	p := New(name, description)
	for _, s := range skins {
		data, err := s.PNG()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", s.Identifier)
		}
		if err := p.Add(Entry{Identifier: s.Identifier, DisplayName: s.DisplayName, PNG: data}); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Len returns the number of skins.
func (p *Pack) Len() int { return len(p.Entries) }

// Has reports whether identifier is in use.
func (p *Pack) Has(identifier string) bool {
	return p.Index(identifier) >= 0
}

// Index returns the position of identifier, or -1.
func (p *Pack) Index(identifier string) int {
	for i, e := range p.Entries {
		if e.Identifier == identifier {
			return i
		}
	}
	return -1
}

// Add appends e. The identifier must be valid and unused.
func (p *Pack) Add(e Entry) error {
	if err := errors.ValidateIdentifier(e.Identifier); err != nil {
		return err
	}
	if p.Has(e.Identifier) {
		return errors.New(errors.ErrCodeInvalidIdentifier, "identifier %q is already used in this skin pack", e.Identifier)
	}
	if e.DisplayName == "" {
		e.DisplayName = e.Identifier
	}
	p.Entries = append(p.Entries, e)
	return nil
}

// AddExtra adds a user-supplied texture named filename. The identifier is
// derived from the file name and suffixed (_2, _3, ...) until unique.
func (p *Pack) AddExtra(filename string, png []byte) Entry {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if strings.HasSuffix(strings.ToLower(base), ".png") {
		base = base[:len(base)-len(".png")]
	}

	id := pipeline.CleanIdentifier(base)
	if id == "" {
		id = "texture"
	}
	original := id
	for n := 2; p.Has(id); n++ {
		id = original + "_" + strconv.Itoa(n)
	}

	display := id
	if strings.Trim(base, "_ \t\r\n") != "" {
		display = pipeline.DisplayName(base)
	}

	e := Entry{Identifier: id, DisplayName: display, PNG: png}
	p.Entries = append(p.Entries, e)
	return e
}

// Rename changes the identifier and display name of entry i. The new
// identifier is cleaned first; an empty display name keeps the current one.
func (p *Pack) Rename(i int, identifier, display string) error {
	if i < 0 || i >= len(p.Entries) {
		return errors.New(errors.ErrCodeInvalidInput, "no skin at index %d", i)
	}
	clean := pipeline.CleanIdentifier(strings.TrimSpace(identifier))
	if clean == "" {
		return errors.New(errors.ErrCodeInvalidIdentifier, "identifier cannot be empty")
	}
	if j := p.Index(clean); j >= 0 && j != i {
		return errors.New(errors.ErrCodeInvalidIdentifier, "identifier %q is already in use", clean)
	}
	p.Entries[i].Identifier = clean
	if d := strings.TrimSpace(display); d != "" {
		p.Entries[i].DisplayName = d
	}
	return nil
}

// Remove deletes entry i.
func (p *Pack) Remove(i int) error {
	if i < 0 || i >= len(p.Entries) {
		return errors.New(errors.ErrCodeInvalidInput, "no skin at index %d", i)
	}
	p.Entries = append(p.Entries[:i], p.Entries[i+1:]...)
	return nil
}

var folderUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)

// SanitizeFolderName replaces characters outside [a-zA-Z0-9_-] with '_'.
// An empty name becomes DefaultFolder.
func SanitizeFolderName(name string) string {
	if name == "" {
		return DefaultFolder
	}
	return folderUnsafe.ReplaceAllString(name, "_")
}

// FolderName returns the top-level folder inside the archive.
func (p *Pack) FolderName() string {
	return SanitizeFolderName(p.Folder)
}

// FileName returns the suggested archive file name for format.
func (p *Pack) FileName(format Format) string {
	if format == "" {
		format = FormatMCPack
	}
	return p.FolderName() + "." + string(format)
}

// =============================================================================
// Pack Documents
// =============================================================================

var packVersion = [3]int{1, 0, 0}

type manifest struct {
	FormatVersion int              `json:"format_version"`
	Header        manifestHeader   `json:"header"`
	Modules       []manifestModule `json:"modules"`
}

type manifestHeader struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UUID        string `json:"uuid"`
	Version     [3]int `json:"version"`
}

type manifestModule struct {
	Type    string `json:"type"`
	UUID    string `json:"uuid"`
	Version [3]int `json:"version"`
}

type skinsDoc struct {
	FormatVersion    string      `json:"format_version"`
	SerializeName    string      `json:"serialize_name"`
	LocalizationName string      `json:"localization_name"`
	Skins            []skinEntry `json:"skins"`
}

type skinEntry struct {
	LocalizationName  string     `json:"localization_name"`
	Geometry          string     `json:"geometry"`
	Texture           string     `json:"texture"`
	Cape              string     `json:"cape"`
	Type              string     `json:"type"`
	Animations        animations `json:"animations"`
	EnableAttachables bool       `json:"enable_attachables"`
}

type animations struct {
	HumanoidBasePose string `json:"humanoid_base_pose"`
	LookAtTarget     string `json:"look_at_target"`
	LookAtTargetUI   string `json:"look_at_target_ui"`
	MoveLegs         string `json:"move.legs"`
	MoveArms         string `json:"move.arms"`
	Bob              string `json:"bob"`
	Holding          string `json:"holding"`
	AttackPositions  string `json:"attack.positions"`
	AttackRotations  string `json:"attack.rotations"`
	Sneaking         string `json:"sneaking"`
}

// blockAnimations poses the player model so the cube stays upright and still.
var blockAnimations = animations{
	HumanoidBasePose: "animation.player.base_pose.upside_down",
	LookAtTarget:     "animation.witch.general",
	LookAtTargetUI:   "animation.witch.general",
	MoveLegs:         "animation.chicken.baby_transform",
	MoveArms:         "animation.sheep.setup",
	Bob:              "animation.parrot.sitting",
	Holding:          "animation.evoker.general",
	AttackPositions:  "animation.witch.general",
	AttackRotations:  "animation.witch.general",
	Sneaking:         "animation.witch.general",
}

func (p *Pack) key() string {
	if p.Key == "" {
		return DefaultKey
	}
	return p.Key
}

func (p *Pack) manifest() manifest {
	return manifest{
		FormatVersion: 1,
		Header: manifestHeader{
			Name:        p.Name,
			Description: p.Description,
			UUID:        p.HeaderUUID.String(),
			Version:     packVersion,
		},
		Modules: []manifestModule{{
			Type:    "skin_pack",
			UUID:    p.ModuleUUID.String(),
			Version: packVersion,
		}},
	}
}

func (p *Pack) skins() skinsDoc {
	doc := skinsDoc{
		FormatVersion:    "1.10.0",
		SerializeName:    p.key(),
		LocalizationName: p.key(),
		Skins:            make([]skinEntry, 0, len(p.Entries)),
	}
	for _, e := range p.Entries {
		doc.Skins = append(doc.Skins, skinEntry{
			LocalizationName:  e.Identifier,
			Geometry:          "geometry.humanoid.custom",
			Texture:           e.Identifier + ".png",
			Cape:              "cape.png",
			Type:              "free",
			Animations:        blockAnimations,
			EnableAttachables: false,
		})
	}
	return doc
}

func (p *Pack) lang() string {
	var b strings.Builder
	fmt.Fprintf(&b, "skinpack.%s=%s\n", p.key(), p.Name)
	for _, e := range p.Entries {
		fmt.Fprintf(&b, "skin.%s.%s=%s\n", p.key(), e.Identifier, e.DisplayName)
	}
	return b.String()
}

// =============================================================================
// Archive Output
// =============================================================================

// Write writes the pack as a zip archive to w.
func (p *Pack) Write(w io.Writer) error {
	if len(p.Entries) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no skins in pack to export")
	}

	manifestJSON, err := json.MarshalIndent(p.manifest(), "", "  ")
	if err != nil {
		return err
	}
	skinsJSON, err := json.MarshalIndent(p.skins(), "", "  ")
	if err != nil {
		return err
	}
	languagesJSON, err := json.MarshalIndent([]string{"en_US"}, "", "  ")
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	folder := p.FolderName() + "/"
	files := make([]zipFile, 0, len(p.Entries)+4)
	for _, e := range p.Entries {
		files = append(files, zipFile{folder + e.Identifier + ".png", e.PNG})
	}
	files = append(files,
		zipFile{folder + "manifest.json", manifestJSON},
		zipFile{folder + "skins.json", skinsJSON},
		zipFile{folder + "text/languages.json", languagesJSON},
		zipFile{folder + "text/en_US.lang", []byte(p.lang())},
	)

	for _, f := range files {
		fw, err := zw.Create(f.name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(f.data); err != nil {
			return err
		}
	}
	return zw.Close()
}

type zipFile struct {
	name string
	data []byte
}
