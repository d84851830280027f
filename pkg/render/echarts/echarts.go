// Package echarts renders a positioned outline tree as an interactive HTML
// page backed by Apache ECharts.
//
// Nodes are drawn at their layout coordinates (the force layout is off),
// coloured by weight and labelled with their header text. Hovering shows
// the weight; the view can be panned and zoomed.
package echarts

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/matzehuels/orgtree/pkg/graph"
	"github.com/matzehuels/orgtree/pkg/render"
)

const (
	// DefaultScale is the number of pixels one layout unit spans.
	DefaultScale = 1000.0

	minSymbolSize = 8
)

// Options configures HTML rendering.
type Options struct {
	// Scale converts layout units to pixels. Zero means DefaultScale.
	Scale float64
	// PageTitle is the HTML <title>. Defaults to the layout title.
	PageTitle string
	// Labels shows header text next to every node.
	Labels bool
}

// RenderHTML writes a standalone HTML page for l to w.
func RenderHTML(l graph.Layout, w io.Writer, o Options) error {
	page := components.NewPage()
	page.PageTitle = pageTitle(l, o)
	page.AddCharts(newChart(l, o))
	return page.Render(w)
}

// HTML renders l and returns the page bytes.
func HTML(l graph.Layout, o Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderHTML(l, &buf, o); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

func newChart(l graph.Layout, o Options) *charts.Graph {
	scale := o.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	title := pageTitle(l, o)

	g := charts.NewGraph()
	g.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Height:    "100vh",
			Width:     "100vw",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Node structure of " + title,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Formatter: "{b}<br/>weight: {c}",
		}),
	)

	g.AddSeries(
		"outline",
		nodes(l, scale),
		links(l),
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout:    "none",
			Roam:      opts.Bool(true),
			Draggable: opts.Bool(false),
		}),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(o.Labels),
			Color:    "black",
			Position: "right",
		}),
		charts.WithLineStyleOpts(opts.LineStyle{
			Color: "#888888",
			Width: 0.5,
		}),
	)
	return g
}

func pageTitle(l graph.Layout, o Options) string {
	switch {
	case o.PageTitle != "":
		return o.PageTitle
	case l.Title != "":
		return l.Title
	default:
		return "orgtree"
	}
}

func nodes(l graph.Layout, scale float64) []opts.GraphNode {
	maxI := 0
	for _, n := range l.Nodes {
		maxI = max(maxI, render.Intensity(n.Weight))
	}

	out := make([]opts.GraphNode, 0, len(l.Nodes))
	for _, n := range l.Nodes {
		intensity := render.Intensity(n.Weight)
		out = append(out, opts.GraphNode{
			Name: n.ID,
			// Screen Y grows downwards; layout Y grows upwards.
			X:          float32(n.X * scale),
			Y:          float32(-n.Y * scale),
			Value:      float32(n.Weight),
			SymbolSize: minSymbolSize + 2*intensity,
			ItemStyle: &opts.ItemStyle{
				Color:       render.Palette(intensity, maxI),
				BorderColor: "#555555",
			},
		})
	}
	return out
}

func links(l graph.Layout) []opts.GraphLink {
	out := make([]opts.GraphLink, 0, len(l.Edges))
	for _, e := range l.Edges {
		out = append(out, opts.GraphLink{Source: e.From, Target: e.To})
	}
	return out
}
