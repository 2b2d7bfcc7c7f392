package reference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/cubeskin/pkg/blocks"
	"github.com/matzehuels/cubeskin/pkg/cache"
	"github.com/matzehuels/cubeskin/pkg/errors"
)

func TestBuiltin(t *testing.T) {
	l := NewLoader("", nil, nil)
	tbl := l.Load(context.Background())
	if tbl == nil {
		t.Fatalf("Load() = nil, err = %v", l.Err())
	}
	if tbl.Len() < 50 {
		t.Errorf("builtin table has %d blocks, want at least 50", tbl.Len())
	}
	if len(l.Digest()) != 64 {
		t.Errorf("Digest() = %q, want 64 hex chars", l.Digest())
	}

	def, ok := tbl.Get("minecraft:grass_block")
	if !ok {
		t.Fatal("builtin table missing minecraft:grass_block")
	}
	names, ok := blocks.Resolve(def)
	if !ok || names.Top != "grass_carried" || names.Bottom != "dirt" || names.North != "grass_side_carried" {
		t.Errorf("Resolve(grass_block) = %+v, %v", names, ok)
	}
}

func TestLoadNone(t *testing.T) {
	l := NewLoader(SourceNone, nil, nil)
	if tbl := l.Load(context.Background()); tbl != nil {
		t.Errorf("Load() = %v, want nil", tbl)
	}
	if l.Err() != nil {
		t.Errorf("Err() = %v, want nil", l.Err())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.json")
	if err := os.WriteFile(path, []byte(`{"blocks": {"x:stone": "stone"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl := NewLoader(path, nil, nil).Load(context.Background())
	if tbl == nil || !tbl.Has("x:stone") {
		t.Errorf("Load() = %v, want table with x:stone", tbl)
	}

	missing := NewLoader(filepath.Join(t.TempDir(), "nope.json"), nil, nil)
	if tbl := missing.Load(context.Background()); tbl != nil {
		t.Error("missing file should degrade to nil")
	}
	if !errors.Is(missing.Err(), errors.ErrCodeFileNotFound) {
		t.Errorf("Err() code = %v, want %v", errors.GetCode(missing.Err()), errors.ErrCodeFileNotFound)
	}
}

func TestLoadURLCachesCanonicalForm(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{ "z:dirt": "dirt", "a:stone": { "textures": "stone" } }`))
	}))
	defer srv.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	first := NewLoader(srv.URL, fc, nil)
	tbl := first.Load(ctx)
	if tbl == nil {
		t.Fatalf("Load() = nil, err = %v", first.Err())
	}
	if keys := tbl.Keys(); len(keys) != 2 || keys[0] != "a:stone" {
		t.Errorf("Keys() = %v, want canonical order", keys)
	}

	// Memoized within a loader.
	first.Load(ctx)
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1", hits.Load())
	}

	second := NewLoader(srv.URL, fc, nil)
	if second.Load(ctx) == nil || hits.Load() != 1 {
		t.Errorf("second loader should be served from cache; hits = %d", hits.Load())
	}
	if second.Digest() != first.Digest() {
		t.Errorf("Digest() differs between fetch and cache: %s vs %s", first.Digest(), second.Digest())
	}

	refreshed := NewLoader(srv.URL, fc, nil)
	refreshed.Refresh = true
	refreshed.Load(ctx)
	if hits.Load() != 2 {
		t.Errorf("refresh should refetch; hits = %d", hits.Load())
	}
}

func TestLoadURLNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	l := NewLoader(srv.URL+"/blocks.json", nil, nil)
	if tbl := l.Load(context.Background()); tbl != nil {
		t.Error("404 should degrade to nil")
	}
	if !errors.Is(l.Err(), errors.ErrCodeNetwork) {
		t.Errorf("Err() code = %v, want %v", errors.GetCode(l.Err()), errors.ErrCodeNetwork)
	}
}

func TestDigestIgnoresFormatting(t *testing.T) {
	a, err := Digest([]byte(`{"b": 1, "a": [1, 2]}`))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Digest([]byte("{\n  \"a\": [1,2],\n  \"b\": 1\n}"))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("Digest() differs for equivalent documents: %s vs %s", a, b)
	}
	if _, err := Digest([]byte(`{`)); !errors.Is(err, errors.ErrCodeMalformedInput) {
		t.Errorf("Digest(bad) code = %v, want %v", errors.GetCode(err), errors.ErrCodeMalformedInput)
	}
}

func TestIsURLAndDescribe(t *testing.T) {
	tests := []struct {
		source string
		url    bool
		desc   string
	}{
		{"", false, "built-in reference table"},
		{"builtin", false, "built-in reference table"},
		{"NONE", false, "no reference table"},
		{"https://example.com/b.json", true, "reference table from https://example.com/b.json"},
		{"HTTP://x", true, "reference table from HTTP://x"},
		{"ref.json", false, "reference table file ref.json"},
	}
	for _, tt := range tests {
		if got := IsURL(tt.source); got != tt.url {
			t.Errorf("IsURL(%q) = %v, want %v", tt.source, got, tt.url)
		}
		if got := Describe(tt.source); got != tt.desc {
			t.Errorf("Describe(%q) = %q, want %q", tt.source, got, tt.desc)
		}
	}
}
