// Package config loads cubeskin's TOML configuration file.
//
// The file is optional. Every field has a default, and command-line flags
// override file values. A typical file:
//
//	[generate]
//	merge_mode = "both"
//	reference  = "builtin"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[pack]
//	name   = "My Block Skins"
//	format = "mcpack"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cubeskin/pkg/blocks"
	cserrors "github.com/matzehuels/cubeskin/pkg/errors"
	"github.com/matzehuels/cubeskin/pkg/reference"
	"github.com/matzehuels/cubeskin/pkg/skinpack"
)

// AppName names the configuration and cache directories.
const AppName = "cubeskin"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Defaults.
const (
	DefaultBackend   = BackendFile
	DefaultRedisAddr = "localhost:6379"
	DefaultAddr      = ":8080"
)

// Config is the parsed configuration file.
type Config struct {
	Generate Generate `toml:"generate"`
	Cache    Cache    `toml:"cache"`
	Pack     Pack     `toml:"pack"`
	Server   Server   `toml:"server"`
}

// Generate holds pipeline settings.
type Generate struct {
	MergeMode string `toml:"merge_mode"`
	Reference string `toml:"reference"`
	Refresh   bool   `toml:"refresh"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	// Prefix namespaces every cache key, for deployments sharing one Redis
	// database.
	Prefix string `toml:"prefix"`
}

// Pack holds skin pack metadata. An empty name yields the default pack name
// and folder.
type Pack struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Key         string `toml:"key"`
	Format      string `toml:"format"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.Generate.Reference == "" {
		c.Generate.Reference = reference.DefaultSource
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultBackend
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = DefaultRedisAddr
	}
	if c.Pack.Description == "" {
		c.Pack.Description = skinpack.DefaultDescription
	}
	if c.Pack.Key == "" {
		c.Pack.Key = skinpack.DefaultKey
	}
	if c.Pack.Format == "" {
		c.Pack.Format = string(skinpack.FormatMCPack)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if c.Generate.MergeMode != "" {
		if _, err := blocks.ParseMergeMode(c.Generate.MergeMode); err != nil {
			return err
		}
	}
	switch strings.ToLower(c.Cache.Backend) {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return cserrors.New(cserrors.ErrCodeInvalidInput, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if _, err := skinpack.ParseFormat(c.Pack.Format); err != nil {
		return err
	}
	return cserrors.ValidateIdentifier(c.Pack.Key)
}

// Load reads the file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	c := &Config{}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, cserrors.Wrap(cserrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, cserrors.New(cserrors.ErrCodeInvalidInput, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Path returns the default config file location,
// $XDG_CONFIG_HOME/cubeskin/config.toml or ~/.config/cubeskin/config.toml.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the cache directory: the configured one, else
// $XDG_CACHE_HOME/cubeskin or ~/.cache/cubeskin.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return DefaultCacheDir()
}

// DefaultCacheDir returns the XDG cache directory for cubeskin.
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
