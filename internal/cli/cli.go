// Package cli implements the orgtree command-line interface.
//
// Commands share one [CLI] value that carries the logger and the loaded
// configuration file. Flags given on the command line override the
// configuration, which overrides the built-in defaults.
//
// # Commands
//
//   - parse: build the weighted tree of an outline and save it as graph.json
//   - layout: compute node positions from an outline or graph.json
//   - render: outline to HTML, SVG, PNG, PDF, DOT or layout JSON in one go
//   - visualize: render a saved layout.json
//   - browse: explore an outline interactively in the terminal
//   - serve: run the HTTP API
//   - cache: inspect or clear the result cache
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtree/pkg/buildinfo"
	"github.com/matzehuels/orgtree/pkg/cache"
	"github.com/matzehuels/orgtree/pkg/config"
	"github.com/matzehuels/orgtree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "orgtree"

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
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The configuration file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
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
		Short: "orgtree turns outlines into weighted, laid-out trees",
		Long: `orgtree reads an outline document (org-mode style headers such as
"* Project" and "** Task"), builds the tree of its headers weighted by the
amount of text under each one, and draws it level by level.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/orgtree/config.toml)")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or the default path if it exists.
func (c *CLI) loadConfig() error {
	var (
		cfg config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		cfg, err = config.LoadOptional("")
	}
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.Config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.Config.Cache.Prefix)
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	switch {
	case noCache || cfg.Disabled:
		return cache.NewNullCache(), nil
	case cfg.RedisURL != "":
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		c.Logger.Debug("using redis cache", "url", cfg.RedisURL)
		return rc, nil
	}

	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the configured cache directory or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/orgtree/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineFlags are the pipeline settings shared by several commands.
// Zero values leave the configured value in place.
type pipelineFlags struct {
	marker   string
	encoding string
	strict   bool
	width    float64
	height   float64
	strategy string
	title    string
	formats  string
	scale    float64
	detailed bool
	showIDs  bool
	labels   bool
	refresh  bool
	noCache  bool
}

func (f *pipelineFlags) addParseFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.marker, "marker", "", "header marker character (default *)")
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "input encoding, e.g. latin1 or utf-16 (default utf-8)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on malformed headers instead of skipping them")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
}

func (f *pipelineFlags) addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", 0, "layout width (default 1)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "layout height (default 1)")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "horizontal placement: level (default), subtree")
	cmd.Flags().StringVar(&f.title, "title", "", "diagram title (default: input file name)")
}

func (f *pipelineFlags) addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): "+strings.Join(pipeline.FormatNames, ", ")+" (comma-separated, default html)")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "PNG resolution multiplier (default 2)")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "add level and weight to node labels (svg, png, pdf, dot)")
	cmd.Flags().BoolVar(&f.showIDs, "ids", false, "label nodes with their unique ID")
	cmd.Flags().BoolVar(&f.labels, "labels", false, "always show header text (html)")
}

// options overlays the flags on the configured pipeline options.
func (c *CLI) options(f *pipelineFlags) pipeline.Options {
	opts := c.Config.PipelineOptions()
	if f.marker != "" {
		opts.Marker = f.marker
	}
	if f.encoding != "" {
		opts.Encoding = f.encoding
	}
	if f.width != 0 {
		opts.Width = f.width
	}
	if f.height != 0 {
		opts.Height = f.height
	}
	if f.strategy != "" {
		opts.Strategy = f.strategy
	}
	if f.formats != "" {
		opts.Formats = parseFormats(f.formats)
	}
	if f.scale != 0 {
		opts.Scale = f.scale
	}
	opts.Strict = opts.Strict || f.strict
	opts.Detailed = opts.Detailed || f.detailed
	opts.Labels = opts.Labels || f.labels
	opts.ShowIDs = f.showIDs
	opts.Title = f.title
	opts.Refresh = f.refresh
	opts.Logger = c.Logger
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
