package blocks

import (
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/cubeskin/pkg/atlas"
	"github.com/matzehuels/cubeskin/pkg/errors"
)

func mustParse(t *testing.T, doc string) *Table {
	t.Helper()
	tbl, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return tbl
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantKeys []string
	}{
		{
			name:     "flat table",
			doc:      `{"minecraft:stone": {"textures": "stone"}, "minecraft:dirt": {"textures": "dirt"}}`,
			wantKeys: []string{"minecraft:stone", "minecraft:dirt"},
		},
		{
			name:     "blocks wrapper",
			doc:      `{"format_version": "1.0", "blocks": {"b": "x", "a": "y"}}`,
			wantKeys: []string{"b", "a"},
		},
		{
			name:     "keeps document order",
			doc:      `{"z": "1", "a": "2", "m": "3"}`,
			wantKeys: []string{"z", "a", "m"},
		},
		{
			name:     "non-object entries kept",
			doc:      `{"format_version": [1, 1, 0], "stone": "stone"}`,
			wantKeys: []string{"format_version", "stone"},
		},
		{
			name:     "empty",
			doc:      `{}`,
			wantKeys: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := mustParse(t, tt.doc)
			got := tbl.Keys()
			if len(got) == 0 && len(tt.wantKeys) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.wantKeys) {
				t.Errorf("Keys() = %v, want %v", got, tt.wantKeys)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"stone": `},
		{"top-level array", `["stone"]`},
		{"blocks not object", `{"blocks": ["stone"]}`},
		{"top-level string", `"stone"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !errors.Is(err, errors.ErrCodeMalformedInput) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeMalformedInput)
			}
		})
	}
}

func TestParseDefinitionShapes(t *testing.T) {
	tbl := mustParse(t, `{
		"shorthand": "stone",
		"wrapped": {"textures": "dirt", "sound": "gravel"},
		"faces": {"textures": {"up": "grass_top", "down": "dirt", "side": "grass_side", "weird": 5}},
		"inline": {"top": "log_top", "side": "log_side", "sound": "wood"},
		"typed": {"type": "Stairs", "textures": "oak"},
		"empty": {"textures": ""},
		"numeric": 12,
		"null_textures": {"textures": null}
	}`)

	tests := []struct {
		key      string
		wantType string
		want     FaceMap
	}{
		{"shorthand", "", FaceMap{"*": "stone"}},
		{"wrapped", "", FaceMap{"*": "dirt"}},
		{"faces", "", FaceMap{"up": "grass_top", "down": "dirt", "side": "grass_side"}},
		{"inline", "", FaceMap{"top": "log_top", "side": "log_side", "sound": "wood"}},
		{"typed", "Stairs", FaceMap{"*": "oak"}},
		{"empty", "", FaceMap{}},
		{"numeric", "", FaceMap{}},
		{"null_textures", "", FaceMap{}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			def, ok := tbl.Get(tt.key)
			if !ok {
				t.Fatalf("Get(%q) not found", tt.key)
			}
			if def.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", def.Type, tt.wantType)
			}
			if !reflect.DeepEqual(def.Textures, tt.want) {
				t.Errorf("Textures = %v, want %v", def.Textures, tt.want)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	defA := Definition{Key: "A", Textures: FaceMap{"*": "a"}}
	defA2 := Definition{Key: "A", Textures: FaceMap{"*": "a2"}}
	defB := Definition{Key: "B", Textures: FaceMap{"*": "b"}}

	resource := NewTable()
	resource.Add(defA)
	reference := NewTable()
	reference.Add(defA2)
	reference.Add(defB)

	tests := []struct {
		mode     MergeMode
		wantKeys []string
		wantA    string
	}{
		{MergeResource, []string{"A"}, "a"},
		{MergeReference, []string{"A", "B"}, "a2"},
		{MergeBoth, []string{"A", "B"}, "a"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got, err := Merge(resource, reference, tt.mode)
			if err != nil {
				t.Fatalf("Merge() error = %v", err)
			}
			if !reflect.DeepEqual(got.Keys(), tt.wantKeys) {
				t.Errorf("Keys() = %v, want %v", got.Keys(), tt.wantKeys)
			}
			a, _ := got.Get("A")
			if a.Textures["*"] != tt.wantA {
				t.Errorf("A = %q, want %q", a.Textures["*"], tt.wantA)
			}
		})
	}
}

func TestMergeSingleSource(t *testing.T) {
	tbl := NewTable()
	tbl.Add(Definition{Key: "A"})

	for _, mode := range []MergeMode{"", MergeResource, MergeReference} {
		if got, err := Merge(tbl, nil, mode); err != nil || got != tbl {
			t.Errorf("Merge(resource only, %q) = %v, %v; want resource table", mode, got, err)
		}
		if got, err := Merge(nil, tbl, mode); err != nil || got != tbl {
			t.Errorf("Merge(reference only, %q) = %v, %v; want reference table", mode, got, err)
		}
	}

	got, err := Merge(nil, nil, MergeBoth)
	if err != nil || got != nil {
		t.Errorf("Merge(nil, nil) = %v, %v; want nil, nil", got, err)
	}
}

func TestMergeRequiresMode(t *testing.T) {
	a, b := NewTable(), NewTable()
	if _, err := Merge(a, b, ""); !errors.Is(err, errors.ErrCodeInvalidMergeMode) {
		t.Errorf("Merge(both, \"\") code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidMergeMode)
	}
	if _, err := Merge(a, b, "vanilla"); !errors.Is(err, errors.ErrCodeInvalidMergeMode) {
		t.Errorf("Merge(both, vanilla) code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidMergeMode)
	}
	if !NeedsChoice(a, b) || NeedsChoice(a, nil) || NeedsChoice(nil, nil) {
		t.Error("NeedsChoice() should only be true when both tables exist")
	}
}

func TestParseMergeMode(t *testing.T) {
	tests := []struct {
		in      string
		want    MergeMode
		wantErr bool
	}{
		{"both", MergeBoth, false},
		{"Resource", MergeResource, false},
		{" reference ", MergeReference, false},
		{"", "", true},
		{"vanilla", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMergeMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMergeMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMergeMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		faces  FaceMap
		want   FaceNames
		wantOK bool
	}{
		{
			name:   "side fills walls",
			faces:  FaceMap{"top": "t", "bottom": "b", "side": "s"},
			want:   FaceNames{Top: "t", Bottom: "b", North: "s", South: "s", East: "s", West: "s"},
			wantOK: true,
		},
		{
			name:   "wildcard",
			faces:  FaceMap{"*": "stone"},
			want:   FaceNames{"stone", "stone", "stone", "stone", "stone", "stone"},
			wantOK: true,
		},
		{
			name:   "all and default",
			faces:  FaceMap{"all": "a", "default": "d"},
			want:   FaceNames{"a", "a", "a", "a", "a", "a"},
			wantOK: true,
		},
		{
			name:   "end caps",
			faces:  FaceMap{"end": "log_top", "side": "log"},
			want:   FaceNames{Top: "log_top", Bottom: "log_top", North: "log", South: "log", East: "log", West: "log"},
			wantOK: true,
		},
		{
			name:   "directional aliases",
			faces:  FaceMap{"up": "u", "down": "d", "front": "f", "back": "bk", "right": "r", "left": "l"},
			want:   FaceNames{Top: "u", Bottom: "d", North: "f", South: "bk", East: "r", West: "l"},
			wantOK: true,
		},
		{
			name:   "north doubles as side",
			faces:  FaceMap{"*": "base", "north": "n"},
			want:   FaceNames{Top: "base", Bottom: "base", North: "n", South: "n", East: "n", West: "n"},
			wantOK: true,
		},
		{
			name:   "empty string falls through",
			faces:  FaceMap{"top": "", "*": "x"},
			want:   FaceNames{"x", "x", "x", "x", "x", "x"},
			wantOK: true,
		},
		{
			name:   "missing bottom",
			faces:  FaceMap{"top": "t", "side": "s"},
			want:   FaceNames{Top: "t", North: "s", South: "s", East: "s", West: "s"},
			wantOK: false,
		},
		{
			name:   "nothing",
			faces:  FaceMap{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(Definition{Key: "k", Textures: tt.faces})
			if ok != tt.wantOK {
				t.Errorf("Resolve() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFaceNamesAtlasMapping(t *testing.T) {
	n := FaceNames{Top: "t", Bottom: "b", North: "n", South: "s", East: "e", West: "w"}
	want := map[atlas.Face]string{
		atlas.Top: "t", atlas.Bottom: "b",
		atlas.Front: "n", atlas.Back: "s",
		atlas.Right: "e", atlas.Left: "w",
	}
	for f, name := range want {
		if got := n.Name(f); got != name {
			t.Errorf("Name(%s) = %q, want %q", f, got, name)
		}
	}

	same := FaceNames{"a", "b", "a", "a", "a", "a"}
	if got := same.Unique(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Unique() = %v, want [a b]", got)
	}
}

func TestExcluded(t *testing.T) {
	tests := []struct {
		key     string
		typ     string
		want    bool
		wantSub string
	}{
		{"minecraft:oak_stairs", "", true, "_stairs"},
		{"minecraft:stone", "", false, ""},
		{"minecraft:STONE_SLAB", "", true, "_slab"},
		{"minecraft:tinted_glass", "", true, "tinted"},
		{"minecraft:glass", "", false, ""},
		{"custom:thing", "fence_gate", true, "fence"},
		{"minecraft:iron_bars", "", true, "bar"},
		{"minecraft:barrel", "", true, "bar"},
		{"minecraft:sea_pickle", "", true, "sea_pickle"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			sub, got := Excluded(Definition{Key: tt.key, Type: tt.typ})
			if got != tt.want {
				t.Errorf("Excluded(%q) = %v, want %v", tt.key, got, tt.want)
			}
			if sub != tt.wantSub {
				t.Errorf("Excluded(%q) matched %q, want %q", tt.key, sub, tt.wantSub)
			}
		})
	}
}

func TestExcludeSubstringsAreLowercase(t *testing.T) {
	for _, s := range ExcludeSubstrings {
		if s != strings.ToLower(s) {
			t.Errorf("substring %q is not lowercase", s)
		}
	}
	if len(ExcludeSubstrings) != 50 {
		t.Errorf("len(ExcludeSubstrings) = %d, want 50", len(ExcludeSubstrings))
	}
}

func TestIsPlainGlass(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"minecraft:glass", true},
		{"minecraft:Glass", true},
		{"minecraft:tinted_glass", false},
		{"minecraft:dyed_glass", false},
		{"minecraft:stone", false},
	}
	for _, tt := range tests {
		if got := IsPlainGlass(tt.key); got != tt.want {
			t.Errorf("IsPlainGlass(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
