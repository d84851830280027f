// Package graph provides serialization types for outline trees and their
// layouts.
//
// This package defines the wire format used for graph.json and layout.json
// files, HTTP API responses and cache entries.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and JSON:
//
//   - [Graph], [Layout]: Serialization types (this package)
//   - pkg/tree.Tree: Internal tree representation
//   - pkg/layout.Positions: Internal coordinates
//
// Use [FromTree]/[ToTree] and [NewLayout] to convert between them.
//
// # Graph Serialization
//
// Graphs use a node-link format with the root named explicitly:
//
//	{
//	  "root": "root",
//	  "nodes": [
//	    {"id": "root", "label": "root", "level": 0, "weight": 12},
//	    {"id": "Tasks -- 1", "label": "Tasks", "level": 1, "weight": 12, "header": 1}
//	  ],
//	  "edges": [{"from": "root", "to": "Tasks -- 1"}]
//	}
//
// # Layout Serialization
//
// A layout adds the coordinates and the parameters they were computed with:
//
//	{
//	  "width": 1, "height": 1, "strategy": "level", "root": "root",
//	  "levels": {"0": 1, "1": 1},
//	  "nodes": [{"id": "root", "x": 0.5, "y": 0, "level": 0, "weight": 12}, ...],
//	  "edges": [...]
//	}
//
// [UnmarshalLayout] rejects layouts whose root or edges name unknown nodes.
package graph
