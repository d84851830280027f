// Package pkg provides the libraries behind orgtree.
//
// # Overview
//
// orgtree reads outline documents, where header lines start with a run of
// marker characters ("* Project", "** Task"), and turns them into a tree of
// headers under a synthetic root. Each node is weighted by the amount of body
// text beneath it, and the tree is laid out level by level so it can be drawn.
//
// # Architecture
//
// The data flow through orgtree:
//
//	outline text
//	     ↓
//	[outline] package (headers → tree, levels, weights)
//	     ↓
//	[layout] package (tree → positions)
//	     ↓
//	[graph] package (tree + positions → layout.json)
//	     ↓
//	[render] packages (HTML, SVG, PNG, PDF, DOT)
//
// [pipeline] runs these stages with caching and is shared by the CLI and the
// HTTP API.
//
// # Quick Start
//
//	res, err := outline.BuildFile("notes.org", outline.Options{})
//	if err != nil {
//	    return err
//	}
//	pos, err := layout.Hierarchy(res.Tree, res.Root, res.Levels)
//	if err != nil {
//	    return err
//	}
//	l := graph.NewLayout(res.Tree, res.Root, pos, graph.LayoutOptions{Title: "notes"})
//	page, err := echarts.HTML(l, echarts.Options{})
//
// # Main Packages
//
// [tree] - Generic tree storage with validation (connected, acyclic) and
// per-depth node counts.
//
// [outline] - The outline builder: header detection, ID assignment, level
// and weight accumulation, input decoding.
//
// [layout] - Hierarchical placement. The root sits at the top centre and
// every level is one row lower; nodes of a level share the width evenly or
// split their parent's share.
//
// [graph] - JSON forms of trees and layouts.
//
// [render] - Weight colouring and SVG conversion; [render/nodelink] and
// [render/echarts] produce the actual pictures.
//
// ## Infrastructure
//
// [pipeline] - parse → layout → render with per-stage caching and hooks.
//
// [cache] - Cache backends (none, filesystem, Redis) and key derivation.
//
// [config] - TOML/YAML configuration files.
//
// [observability] - Stage and HTTP hooks with a Prometheus implementation.
//
// [errors] - Coded errors shared by every package.
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/orgtree/pkg/tree
// [outline]: https://pkg.go.dev/github.com/matzehuels/orgtree/pkg/outline
// [layout]: https://pkg.go.dev/github.com/matzehuels/orgtree/pkg/layout
// [graph]: https://pkg.go.dev/github.com/matzehuels/orgtree/pkg/graph
// [render]: https://pkg.go.dev/github.com/matzehuels/orgtree/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/orgtree/pkg/render/nodelink
// [render/echarts]: https://pkg.go.dev/github.com/matzehuels/orgtree/pkg/render/echarts
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/orgtree/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/orgtree/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/orgtree/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/orgtree/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/orgtree/pkg/errors
package pkg
