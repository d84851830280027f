// Package config loads orgtree settings from a TOML or YAML file.
//
// The file is optional. Values it sets become the defaults for CLI flags
// and the HTTP server; explicit flags still win. The format follows the
// extension: .yaml and .yml are YAML, anything else is TOML.
//
//	[parse]
//	marker = "*"
//	encoding = "utf-8"
//
//	[layout]
//	width = 1.0
//	height = 1.0
//	strategy = "level"
//
//	[render]
//	formats = ["html", "svg"]
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/orgtree/pkg/errors"
	"github.com/matzehuels/orgtree/pkg/pipeline"
)

const appName = "orgtree"

// Config is the full configuration file.
type Config struct {
	Parse  Parse  `toml:"parse" yaml:"parse"`
	Layout Layout `toml:"layout" yaml:"layout"`
	Render Render `toml:"render" yaml:"render"`
	Cache  Cache  `toml:"cache" yaml:"cache"`
	Server Server `toml:"server" yaml:"server"`
}

// Parse holds outline builder settings.
type Parse struct {
	Marker   string `toml:"marker" yaml:"marker"`
	Encoding string `toml:"encoding" yaml:"encoding"`
	Strict   bool   `toml:"strict" yaml:"strict"`
}

// Layout holds layout settings.
type Layout struct {
	Width    float64 `toml:"width" yaml:"width"`
	Height   float64 `toml:"height" yaml:"height"`
	Strategy string  `toml:"strategy" yaml:"strategy"`
}

// Render holds renderer settings.
type Render struct {
	Formats  []string `toml:"formats" yaml:"formats"`
	Scale    float64  `toml:"scale" yaml:"scale"`
	Detailed bool     `toml:"detailed" yaml:"detailed"`
	Labels   bool     `toml:"labels" yaml:"labels"`
}

// Cache selects the cache backend. RedisURL wins over Dir.
type Cache struct {
	Disabled bool   `toml:"disabled" yaml:"disabled"`
	Dir      string `toml:"dir" yaml:"dir"`
	RedisURL string `toml:"redis_url" yaml:"redis_url"`
	Prefix   string `toml:"prefix" yaml:"prefix"`
}

// Server holds HTTP API settings.
type Server struct {
	Addr         string `toml:"addr" yaml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes" yaml:"max_body_bytes"`
	Timeout      string `toml:"timeout" yaml:"timeout"`
}

// Server defaults.
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 4 << 20
	DefaultTimeout      = 30 * time.Second
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Parse: Parse{
			Marker:   "*",
			Encoding: "utf-8",
		},
		Layout: Layout{
			Width:    pipeline.DefaultWidth,
			Height:   pipeline.DefaultHeight,
			Strategy: pipeline.DefaultStrategy,
		},
		Render: Render{
			Formats: []string{pipeline.DefaultFormat},
			Scale:   pipeline.DefaultPNGScale,
		},
		Server: Server{
			Addr:         DefaultAddr,
			MaxBodyBytes: DefaultMaxBodyBytes,
			Timeout:      DefaultTimeout.String(),
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/orgtree/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Decode(data, formatOf(path))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional reads path if it exists and returns the defaults otherwise.
// An empty path means DefaultPath.
func LoadOptional(path string) (Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	cfg, err := Load(path)
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// Format is a configuration file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Decode parses data in the given format over the defaults and validates
// the result.
func Decode(data []byte, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml")
		}
	default:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidInput, "unknown config key %q", undecoded[0].String())
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every value the pipeline would otherwise reject later.
func (c Config) Validate() error {
	opts := c.PipelineOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if c.Cache.RedisURL != "" {
		if err := errors.ValidateCacheURL(c.Cache.RedisURL); err != nil {
			return err
		}
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.max_body_bytes must not be negative")
	}
	if _, err := c.Server.timeout(); err != nil {
		return err
	}
	return nil
}

// PipelineOptions converts the parse, layout and render sections.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Marker:   c.Parse.Marker,
		Encoding: c.Parse.Encoding,
		Strict:   c.Parse.Strict,
		Width:    c.Layout.Width,
		Height:   c.Layout.Height,
		Strategy: c.Layout.Strategy,
		Formats:  append([]string(nil), c.Render.Formats...),
		Scale:    c.Render.Scale,
		Detailed: c.Render.Detailed,
		Labels:   c.Render.Labels,
	}
}

// TimeoutDuration returns the parsed server timeout, or DefaultTimeout if
// unset.
func (s Server) TimeoutDuration() time.Duration {
	d, err := s.timeout()
	if err != nil || d == 0 {
		return DefaultTimeout
	}
	return d
}

func (s Server) timeout() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "server.timeout %q is not a duration", s.Timeout)
	}
	return d, nil
}
