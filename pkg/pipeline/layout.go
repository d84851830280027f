package pipeline

import (
	"github.com/matzehuels/orgtree/pkg/graph"
	"github.com/matzehuels/orgtree/pkg/layout"
	"github.com/matzehuels/orgtree/pkg/outline"
)

// GenerateLayout positions every node of a parsed outline and packages the
// result in the serialization format renderers consume.
//
// The level map computed by the builder is passed through to the layout,
// which rejects it if it disagrees with the tree.
func GenerateLayout(res *outline.Result, opts Options) (graph.Layout, error) {
	strategy, err := layout.ParseStrategy(opts.Strategy)
	if err != nil {
		return graph.Layout{}, err
	}

	pos, err := layout.Hierarchy(res.Tree, res.Root, res.Levels,
		layout.WithWidth(opts.Width),
		layout.WithHeight(opts.Height),
		layout.WithStrategy(strategy),
	)
	if err != nil {
		return graph.Layout{}, err
	}

	return graph.NewLayout(res.Tree, res.Root, pos, graph.LayoutOptions{
		Title:    opts.Title,
		Width:    opts.Width,
		Height:   opts.Height,
		Strategy: strategy,
	}), nil
}
