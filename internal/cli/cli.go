// Package cli implements the iconfont command-line interface.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/iconfont/pkg/builder"
	"github.com/matzehuels/iconfont/pkg/buildinfo"
	"github.com/matzehuels/iconfont/pkg/cache"
	"github.com/matzehuels/iconfont/pkg/plugin"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "iconfont"
)

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

	configPath string
	noCache    bool
	refresh    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "iconfont turns a folder of SVG icons into a webfont",
		Long:         `iconfont compiles SVG icons into WOFF2, WOFF, TTF, EOT and SVG fonts, generates the matching stylesheet and serves both during development.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			registerHooks(c.Logger)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "config file (default: iconfont.toml or iconfont.yaml)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the font cache")
	flags.BoolVar(&c.refresh, "refresh", false, "rebuild even when the cache has a matching font")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.glyphsCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.initCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Plugin Factory
// =============================================================================

// newPlugin creates a plugin instance backed by the configured cache.
// The returned close function releases the cache.
func (c *CLI) newPlugin(ctx context.Context, cfg fileConfig) (*plugin.Plugin, func(), error) {
	b, err := c.newBuilder(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	p := plugin.New(cfg.Icons,
		plugin.WithLogger(c.Logger),
		plugin.WithBuilder(b),
	)
	return p, func() { _ = b.Close() }, nil
}

// newBuilder creates a font builder for CLI use.
func (c *CLI) newBuilder(ctx context.Context, cc cacheConfig) (*builder.Builder, error) {
	fc, err := c.newCache(ctx, cc)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cc.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cc.Prefix)
	}
	b := builder.New(fc, keyer, c.Logger)
	b.Refresh = c.refresh
	return b, nil
}

// newCache picks the cache backend. An unreachable Redis falls back to the
// file cache with a warning so a missing server never blocks a build.
func (c *CLI) newCache(ctx context.Context, cc cacheConfig) (cache.Cache, error) {
	if c.noCache || cc.Disabled {
		return cache.NewNullCache(), nil
	}
	if cc.Redis != "" {
		rc, err := cache.NewRedisCache(ctx, cc.Redis)
		if err == nil {
			c.Logger.Debug("using redis cache")
			return rc, nil
		}
		if !errors.Is(err, cache.ErrUnavailable) {
			return nil, err
		}
		c.Logger.Warn("redis cache unavailable, using file cache", "err", err)
	}
	dir := cc.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/iconfont/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
