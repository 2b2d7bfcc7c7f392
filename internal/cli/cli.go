// Package cli implements the cubeskin command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cubeskin/pkg/buildinfo"
	"github.com/matzehuels/cubeskin/pkg/cache"
	"github.com/matzehuels/cubeskin/pkg/config"
	"github.com/matzehuels/cubeskin/pkg/errors"
	"github.com/matzehuels/cubeskin/pkg/observability"
	"github.com/matzehuels/cubeskin/pkg/pipeline"
	"github.com/matzehuels/cubeskin/pkg/reference"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location.
	ConfigPath string

	config *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Cubeskin turns resource pack block textures into block skins",
		Long: `Cubeskin reads a Bedrock resource pack, finds every full-cube block and
composites its six face textures into a 128x128 skin atlas. The skins can be
written as PNG files or packaged as an importable skin pack.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			hooks := observability.NewLogHooks(c.Logger)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetHTTPHooks(hooks)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/cubeskin/config.toml)")

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.compositeCommand())
	root.AddCommand(c.classifyCommand())
	root.AddCommand(c.blocksCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file. A missing default file is not an error,
// a missing explicit --config file is.
func (c *CLI) loadConfig() error {
	path := c.ConfigPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			c.config = config.Default()
			return nil
		}
		path = p
	} else if _, err := os.Stat(path); err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, c.newKeyer(), c.Logger), nil
}

// newKeyer returns the cache keyer, scoped when a key prefix is configured.
func (c *CLI) newKeyer() cache.Keyer {
	if c.config.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.config.Cache.Prefix)
}

// newLoader creates a reference loader sharing the runner's cache and keys.
func newLoader(source string, runner *pipeline.Runner, logger *log.Logger) *reference.Loader {
	l := reference.NewLoader(source, runner.Cache, logger)
	l.Keyer = runner.Keyer
	return l
}

// newCache opens the configured cache backend. An unusable cache directory
// disables caching instead of failing the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.config.Cache.RedisAddr,
			Password: c.config.Cache.RedisPassword,
			DB:       c.config.Cache.RedisDB,
		})
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: the configured one, else the
// XDG default (~/.cache/cubeskin/).
func (c *CLI) cacheDir() (string, error) {
	return c.config.CacheDir()
}
