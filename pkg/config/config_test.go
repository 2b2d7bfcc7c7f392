package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/cubeskin/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Cache.Backend != BackendFile || c.Server.Addr != DefaultAddr || c.Generate.Reference != "builtin" {
		t.Errorf("defaults not applied: %+v", c)
	}
	if c.Pack.Format != "mcpack" || c.Pack.Key != "imported_blocks" {
		t.Errorf("pack defaults = %+v", c.Pack)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[generate]
merge_mode = "reference"
reference = "https://example.com/blocks.json"
refresh = true

[cache]
backend = "redis"
redis_addr = "cache:6379"
redis_db = 2
prefix = "staging:"

[pack]
name = "Block Skins"
format = "zip"

[server]
addr = "127.0.0.1:9000"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Generate.MergeMode != "reference" || !c.Generate.Refresh || c.Generate.Reference != "https://example.com/blocks.json" {
		t.Errorf("Generate = %+v", c.Generate)
	}
	if c.Cache.Backend != BackendRedis || c.Cache.RedisAddr != "cache:6379" || c.Cache.RedisDB != 2 || c.Cache.Prefix != "staging:" {
		t.Errorf("Cache = %+v", c.Cache)
	}
	if c.Pack.Name != "Block Skins" || c.Pack.Format != "zip" || c.Pack.Description == "" {
		t.Errorf("Pack = %+v", c.Pack)
	}
	if c.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server = %+v", c.Server)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", "[generate\n", errors.ErrCodeInvalidInput},
		{"unknown key", "[cache]\nbakend = \"file\"\n", errors.ErrCodeInvalidInput},
		{"merge mode", "[generate]\nmerge_mode = \"sideways\"\n", errors.ErrCodeInvalidMergeMode},
		{"backend", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidInput},
		{"format", "[pack]\nformat = \"tar\"\n", errors.ErrCodeInvalidInput},
		{"key", "[pack]\nkey = \"Bad Key\"\n", errors.ErrCodeInvalidIdentifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() code = %v, want %v (err: %v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", AppName, "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache-home")
	c := Default()
	got, err := c.CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/cache-home", AppName); got != want {
		t.Errorf("CacheDir() = %q, want %q", got, want)
	}

	c.Cache.Dir = "/srv/cache"
	if got, _ := c.CacheDir(); got != "/srv/cache" {
		t.Errorf("CacheDir() with dir = %q", got)
	}
}
