// Package cli implements the jsondiagram command-line interface.
//
// # Commands
//
//   - validate: check a document the way the editor does
//   - build: print the node/edge graph of a document
//   - layout: print the positioned scene of a document
//   - explore: browse a diagram interactively in the terminal
//   - serve: run the HTTP/WebSocket rendering boundary
//   - format: export a document as 2-space indented data.json
//   - cache: manage the layout cache
//
// # Configuration
//
// Settings come from defaults, a config file, JSONDIAGRAM_* environment
// variables and flags, in increasing priority (see internal/config).
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs layout, cache, search and session events.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jsondiagram/internal/config"
	"github.com/matzehuels/jsondiagram/pkg/buildinfo"
	"github.com/matzehuels/jsondiagram/pkg/cache"
	"github.com/matzehuels/jsondiagram/pkg/layout"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "jsondiagram"

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

	configFile string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Debug level also routes
// observability events to the logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		registerLogHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "jsondiagram turns JSON documents into interactive diagrams",
		Long: `jsondiagram converts a JSON document into a tree of object and array nodes,
lays it out with Graphviz, and lets you explore it: collapse and expand
subtrees, limit the visible depth, search labels and properties, and follow
selections through the tree.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: ./jsondiagram.yaml)")

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.formatCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig merges configuration with the command's explicitly set flags.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		c.Logger.Debug("using config file", "file", cfg.File)
	}
	return cfg, nil
}

// addLayoutFlags registers the flags shared by commands that lay out a diagram.
func addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().String("direction", string(layout.DefaultDirection), "rank direction: LR, TB")
	cmd.Flags().String("density", string(layout.DefaultDensity), "density: compact, medium, expanded")
	cmd.Flags().Bool("no-cache", false, "disable the layout cache")
	cmd.Flags().String("cache-dir", "", "layout cache directory")
	cmd.Flags().String("redis-url", "", "use a redis layout cache (redis://host:port/db)")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL, "layout cache entry lifetime")
}

// =============================================================================
// Engine Factory
// =============================================================================

// newEngine returns the Graphviz engine wrapped in the configured cache.
// The returned close function releases the cache.
func (c *CLI) newEngine(ctx context.Context, cfg *config.Config) (layout.Engine, func(), error) {
	cc, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	// Redis keys are namespaced by the application name.
	var keyer cache.Keyer
	if cfg.Cache.RedisURL != "" {
		keyer = cache.NewScopedKeyer(nil, appName+":")
	}
	engine := layout.NewCachedEngine(layout.NewGraphvizEngine(), cc, keyer, cfg.Cache.TTL, c.Logger)
	return engine, func() { cc.Close() }, nil
}

func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	if cfg.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	}
	dir, err := resolveCacheDir(cfg)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/jsondiagram/).
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
