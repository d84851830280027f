// Package nodelink renders positioned outline trees as node-link diagrams.
//
// # Usage
//
// Convert a layout to DOT, then render it:
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Positions
//
// Graphviz does not choose the coordinates here. Each node carries a pinned
// pos attribute taken from the layout, scaled by [Options.Scale] inches per
// layout unit, and the neato engine keeps it in place. The generated DOT
// can also be fed to the graphviz CLI:
//
//	neato -n -Tsvg tree.dot
//
// # Options
//
//   - Scale: inches per layout unit (default 8)
//   - Detailed: add level and weight to each label
//   - ShowIDs: label nodes with their unique ID
package nodelink
