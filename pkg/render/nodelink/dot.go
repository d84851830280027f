package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/orgtree/pkg/graph"
	"github.com/matzehuels/orgtree/pkg/render"
)

// DefaultScale is the number of inches one layout unit spans.
const DefaultScale = 8.0

// Options configures node-link diagram rendering.
type Options struct {
	// Scale converts layout units to inches. Zero means DefaultScale.
	Scale float64
	// Detailed adds level and weight to node labels.
	Detailed bool
	// ShowIDs labels nodes with their unique ID instead of the header text.
	ShowIDs bool
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return DefaultScale
	}
	return o.Scale
}

// ToDOT converts a layout to Graphviz DOT.
//
// Every node is pinned at its layout position with pos="x,y!" so that the
// neato engine used by [RenderSVG] draws exactly the computed layout. Fill
// colour follows node weight, from pale yellow to dark blue.
func ToDOT(l graph.Layout, opts Options) string {
	scale := opts.scale()
	maxI := 0
	for _, n := range l.Nodes {
		maxI = max(maxI, render.Intensity(n.Weight))
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	if l.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", printable(l.Title))
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12, margin=\"0.1,0.05\"];\n")
	buf.WriteString("  edge [color=\"#888888\"];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		fill := render.Palette(render.Intensity(n.Weight), maxI)
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(n, opts)),
			fmt.Sprintf("pos=\"%s,%s!\"", coord(n.X*scale), coord(n.Y*scale)),
			fmt.Sprintf("fillcolor=%q", fill),
			fmt.Sprintf("fontcolor=%q", render.TextColor(fill)),
			fmt.Sprintf("tooltip=%q", fmt.Sprintf("%s (weight %d)", printable(n.DisplayLabel()), n.Weight)),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  %q -- %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func fmtLabel(n graph.PlacedNode, opts Options) string {
	label := n.DisplayLabel()
	if opts.ShowIDs {
		label = n.ID
	}
	label = printable(label)
	if !opts.Detailed {
		return label
	}
	return fmt.Sprintf("%s\nlevel: %d\nweight: %d", label, n.Level, n.Weight)
}

// printable replaces control and other non-printing runes with spaces.
// %q would otherwise emit Go escapes such as \x07, which DOT draws
// literally.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		if !unicode.IsPrint(r) {
			return ' '
		}
		return r
	}, s)
}

// RenderSVG renders DOT to SVG with the neato engine, which honours pinned
// node positions. Returns the SVG bytes ready for display or further
// conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders DOT as PDF via SVG conversion.
// Requires rsvg-convert on PATH.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT as PNG via SVG conversion.
// Requires rsvg-convert on PATH.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
