// Package pipeline runs the parse → layout → render pipeline shared by the
// CLI and the HTTP API.
//
// # Stages
//
//  1. Parse: build a weighted tree from org text ([outline.Build])
//  2. Layout: assign coordinates to every node ([layout.Hierarchy])
//  3. Render: produce HTML, SVG, PNG, PDF, DOT or JSON output
//
// Each stage can run alone or as part of [Runner.Execute], and each is
// cached under a key derived from its inputs.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, "notes.org", data, pipeline.Options{
//	    Formats: []string{"html", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	html := result.Artifacts["html"]
package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgtree/pkg/cache"
	"github.com/matzehuels/orgtree/pkg/errors"
	"github.com/matzehuels/orgtree/pkg/graph"
	"github.com/matzehuels/orgtree/pkg/layout"
	"github.com/matzehuels/orgtree/pkg/outline"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	DefaultWidth  = layout.DefaultExtent
	DefaultHeight = layout.DefaultExtent

	// DefaultFormat mirrors the interactive page the tool has always produced.
	DefaultFormat = FormatHTML

	// DefaultPNGScale is the PNG resolution multiplier.
	DefaultPNGScale = 2.0
)

// DefaultStrategy is the default horizontal placement strategy.
const DefaultStrategy = string(layout.DefaultStrategy)

// Format constants for output formats.
const (
	FormatHTML = "html"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatHTML: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// FormatNames lists ValidFormats in display order.
var FormatNames = []string{FormatHTML, FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatJSON}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// It decodes from JSON so the API can accept it in request bodies.
type Options struct {
	// Parse options
	Marker   string `json:"marker,omitempty"`
	Encoding string `json:"encoding,omitempty"`
	Strict   bool   `json:"strict,omitempty"`
	RootID   string `json:"root_id,omitempty"`
	Refresh  bool   `json:"refresh,omitempty"`

	// Layout options
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Strategy string  `json:"strategy,omitempty"`
	Title    string  `json:"title,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	ShowIDs  bool     `json:"show_ids,omitempty"`
	Labels   bool     `json:"labels,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Outline is the parsed document.
	Outline *outline.Result

	// GraphHash is the content hash of the serialized tree.
	GraphHash string

	// Layout is the positioned tree.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Levels     int
	Warnings   int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit  bool
	LayoutHit bool
	RenderHit bool // every requested artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is supported. Formats are
// case-sensitive.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames, ", "))
	}
	return nil
}

// ValidateFormats checks every format in the list.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStrategy checks that a layout strategy name is known.
func ValidateStrategy(name string) error {
	_, err := layout.ParseStrategy(name)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults validates options for the full pipeline.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse applies parse defaults and checks the marker.
func (o *Options) ValidateForParse() error {
	if o.Marker == "" {
		o.Marker = outline.DefaultMarker
	}
	if o.Encoding == "" {
		o.Encoding = outline.DefaultEncoding
	}
	if o.RootID == "" {
		o.RootID = outline.DefaultRootID
	}
	o.setLogger()
	return errors.ValidateMarker(o.Marker)
}

// SetLayoutDefaults fills in zero layout fields.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	o.setLogger()
}

// ValidateForLayout applies layout defaults and checks extents and strategy.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateExtent("width", o.Width); err != nil {
		return err
	}
	if err := errors.ValidateExtent("height", o.Height); err != nil {
		return err
	}
	return ValidateStrategy(o.Strategy)
}

// SetRenderDefaults fills in zero render fields.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
	o.setLogger()
}

// ValidateForRender applies render defaults and checks the formats.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// OutlineOptions converts parse options for [outline.Build].
func (o *Options) OutlineOptions() outline.Options {
	return outline.Options{
		Marker:   o.Marker,
		Encoding: o.Encoding,
		Strict:   o.Strict,
		RootID:   o.RootID,
		Logger:   o.Logger,
	}
}

// GraphKeyOpts returns cache key options for parsing.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		Marker:   o.Marker,
		Encoding: o.Encoding,
		Strict:   o.Strict,
		RootID:   o.RootID,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:    o.Width,
		Height:   o.Height,
		Strategy: o.Strategy,
		Title:    o.Title,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatHTML:
		k.Labels = o.Labels
	case FormatPNG:
		k.Scale = o.Scale
		fallthrough
	case FormatSVG, FormatPDF, FormatDOT:
		k.Detailed = o.Detailed
		k.ShowIDs = o.ShowIDs
	}
	return k
}

// OutputName returns the file name for a document rendered to format,
// "<base>_<ext>.<format>", so that notes.org becomes notes_org.html.
// Directories are dropped.
func OutputName(document, format string) string {
	base := filepath.Base(document)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return base + "." + format
	}
	return strings.TrimSuffix(base, ext) + "_" + ext[1:] + "." + format
}

func (r *Result) fill() {
	if r.Outline == nil {
		return
	}
	r.Stats.NodeCount = r.Outline.Tree.NodeCount()
	r.Stats.EdgeCount = r.Outline.Tree.EdgeCount()
	r.Stats.Levels = r.Outline.Levels.Levels()
	r.Stats.Warnings = len(r.Outline.Warnings)
}

// String summarizes a result for log output.
func (s Stats) String() string {
	return fmt.Sprintf("%d nodes, %d levels, %d warnings", s.NodeCount, s.Levels, s.Warnings)
}
