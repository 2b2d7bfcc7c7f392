package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/cubeskin/pkg/observability"
)

// isolate points config and cache lookups at fresh temporary directories.
func isolate(t *testing.T) (cacheHome string) {
	t.Helper()
	cacheHome = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	t.Cleanup(observability.Reset)
	return cacheHome
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := newTestCLI(t)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCachePathCommand(t *testing.T) {
	cacheHome := isolate(t)

	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if want := filepath.Join(cacheHome, appName); strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	cacheHome := isolate(t)
	dir := filepath.Join(cacheHome, appName)
	for _, name := range []string{"ab/one.json", "cd/two.json"} {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if got := countEntries(dir); got != 2 {
		t.Fatalf("countEntries() = %d, want 2", got)
	}

	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("cache dir should still exist: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after clear", len(entries))
	}
}

func TestConfigFlagMissingFile(t *testing.T) {
	isolate(t)
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "cache", "path")
	if err == nil {
		t.Error("expected an error for a missing --config file")
	}
}

func TestConfigFileSetsCacheDir(t *testing.T) {
	isolate(t)
	cfg := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfg, []byte("[cache]\ndir = \"/srv/skins\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != "/srv/skins" {
		t.Errorf("cache path = %q, want /srv/skins", strings.TrimSpace(out))
	}
}
