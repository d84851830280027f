package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/orgtree/pkg/graph"
	"github.com/matzehuels/orgtree/pkg/render"
	"github.com/matzehuels/orgtree/pkg/render/echarts"
	"github.com/matzehuels/orgtree/pkg/render/nodelink"
)

// RenderFromLayout produces every requested format from a layout.
// SVG is rendered at most once and reused for PNG and PDF conversion.
func RenderFromLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	r := renderer{layout: l, opts: opts}
	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := r.render(ctx, format)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		out[format] = data
	}
	return out, nil
}

type renderer struct {
	layout graph.Layout
	opts   Options

	dot string
	svg []byte
}

func (r *renderer) render(ctx context.Context, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return graph.MarshalLayout(r.layout)
	case FormatHTML:
		return echarts.HTML(r.layout, echarts.Options{
			PageTitle: r.opts.Title,
			Labels:    r.opts.Labels,
		})
	case FormatDOT:
		return []byte(r.toDOT()), nil
	case FormatSVG:
		return r.toSVG(ctx)
	case FormatPNG:
		svg, err := r.toSVG(ctx)
		if err != nil {
			return nil, err
		}
		return render.ToPNG(ctx, svg, r.opts.Scale)
	case FormatPDF:
		svg, err := r.toSVG(ctx)
		if err != nil {
			return nil, err
		}
		return render.ToPDF(ctx, svg)
	default:
		return nil, ValidateFormat(format)
	}
}

func (r *renderer) toDOT() string {
	if r.dot == "" {
		r.dot = nodelink.ToDOT(r.layout, nodelink.Options{
			Detailed: r.opts.Detailed,
			ShowIDs:  r.opts.ShowIDs,
		})
	}
	return r.dot
}

func (r *renderer) toSVG(ctx context.Context) ([]byte, error) {
	if r.svg == nil {
		svg, err := nodelink.RenderSVG(ctx, r.toDOT())
		if err != nil {
			return nil, err
		}
		r.svg = svg
	}
	return r.svg, nil
}
