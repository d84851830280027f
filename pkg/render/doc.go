// Package render turns positioned outline trees into pictures.
//
// # Overview
//
// The package holds what the concrete renderers share:
//
//   - Colour mapping from node weight ([Intensity], [Palette])
//   - Format conversion from SVG to PDF/PNG ([ToPDF], [ToPNG])
//
// The renderers themselves live in subpackages:
//
//   - [nodelink]: Graphviz DOT with pinned positions, rendered to SVG
//   - [echarts]: self-contained interactive HTML page
//
// # Colour Mapping
//
// Weights span several orders of magnitude, so they are compressed with a
// fourth root before colouring:
//
//	render.Intensity(0)    // 0
//	render.Intensity(1)    // 1
//	render.Intensity(625)  // 5
//
// [Palette] maps an intensity onto a light-yellow to dark-blue ramp.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] shell out to rsvg-convert (from librsvg).
//
// [nodelink]: github.com/matzehuels/orgtree/pkg/render/nodelink
// [echarts]: github.com/matzehuels/orgtree/pkg/render/echarts
package render
