package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/orgtree/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Layout.Strategy != "level" {
		t.Errorf("Strategy = %q, want level", cfg.Layout.Strategy)
	}
	if cfg.Server.TimeoutDuration() != DefaultTimeout {
		t.Errorf("TimeoutDuration = %v, want %v", cfg.Server.TimeoutDuration(), DefaultTimeout)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[parse]
marker = "#"
strict = true

[layout]
width = 0.3
height = 45.2
strategy = "subtree"

[render]
formats = ["svg", "json"]

[server]
addr = ":9000"
timeout = "5s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Parse.Marker != "#" || !cfg.Parse.Strict {
		t.Errorf("Parse = %+v", cfg.Parse)
	}
	if cfg.Parse.Encoding != "utf-8" {
		t.Errorf("Encoding = %q, want default kept", cfg.Parse.Encoding)
	}
	if cfg.Layout.Width != 0.3 || cfg.Layout.Height != 45.2 || cfg.Layout.Strategy != "subtree" {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if len(cfg.Render.Formats) != 2 || cfg.Render.Formats[0] != "svg" {
		t.Errorf("Formats = %v", cfg.Render.Formats)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.TimeoutDuration() != 5*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}

	opts := cfg.PipelineOptions()
	if opts.Marker != "#" || opts.Strategy != "subtree" || opts.Width != 0.3 {
		t.Errorf("PipelineOptions = %+v", opts)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
parse:
  encoding: latin1
layout:
  strategy: level
cache:
  redis_url: redis://localhost:6379/1
  prefix: "team:"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Parse.Encoding != "latin1" {
		t.Errorf("Encoding = %q, want latin1", cfg.Parse.Encoding)
	}
	if cfg.Parse.Marker != "*" {
		t.Errorf("Marker = %q, want default", cfg.Parse.Marker)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/1" || cfg.Cache.Prefix != "team:" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestDecode_Empty(t *testing.T) {
	for _, f := range []Format{FormatTOML, FormatYAML} {
		cfg, err := Decode(nil, f)
		if err != nil {
			t.Errorf("Decode(empty %s): %v", f, err)
			continue
		}
		if cfg.Server.Addr != DefaultAddr {
			t.Errorf("Decode(empty %s) lost defaults", f)
		}
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		code   errors.Code
	}{
		{"toml syntax", "[layout\nwidth=1", FormatTOML, errors.ErrCodeInvalidInput},
		{"toml unknown key", "[layout]\ncolour = 1", FormatTOML, errors.ErrCodeInvalidInput},
		{"yaml unknown key", "layout:\n  colour: 1\n", FormatYAML, errors.ErrCodeInvalidInput},
		{"bad strategy", "[layout]\nstrategy = \"radial\"", FormatTOML, errors.ErrCodeInvalidStrategy},
		{"negative width", "[layout]\nwidth = -2.0", FormatTOML, errors.ErrCodePrecondition},
		{"bad format", "[render]\nformats = [\"gif\"]", FormatTOML, errors.ErrCodeInvalidFormat},
		{"bad marker", "[parse]\nmarker = \"ab\"", FormatTOML, errors.ErrCodeInvalidInput},
		{"bad redis url", "[cache]\nredis_url = \"http://x\"", FormatTOML, errors.ErrCodeInvalidInput},
		{"bad timeout", "[server]\ntimeout = \"soon\"", FormatTOML, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadOptional(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadOptional("")
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Error("missing default config should yield defaults")
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if want := filepath.Join(dir, "orgtree", "config.toml"); got != want {
		t.Errorf("DefaultPath = %q, want %q", got, want)
	}
}
