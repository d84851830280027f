package graph

import (
	"encoding/json"
	"maps"

	"github.com/matzehuels/orgtree/pkg/errors"
	"github.com/matzehuels/orgtree/pkg/tree"
)

// =============================================================================
// Graph - Outline Tree Serialization
// =============================================================================

// Graph is the canonical serialization format for outline trees.
// Used for graph.json files, API responses and the parse cache.
//
// Nodes and edges keep the tree's insertion order, so writing a tree and
// reading it back yields the same layout.
type Graph struct {
	Root  string         `json:"root"`
	Nodes []Node         `json:"nodes"`
	Edges []Edge         `json:"edges"`
	Meta  map[string]any `json:"meta,omitempty"`
}

// =============================================================================
// Node / Edge
// =============================================================================

// Node is a serialized tree node.
type Node struct {
	ID     string         `json:"id"`
	Label  string         `json:"label,omitempty"`
	Level  int            `json:"level"`
	Weight int            `json:"weight"`
	Header int            `json:"header,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a parent-to-child edge.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// =============================================================================
// Tree ↔ Graph Conversion
// =============================================================================

// FromTree converts a tree to its serialization format.
func FromTree(t *tree.Tree, root string) Graph {
	nodes := t.Nodes()
	edges := t.Edges()

	out := Graph{
		Root:  root,
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
		Meta:  copyMeta(t.Meta()),
	}
	for i, n := range nodes {
		out.Nodes[i] = Node{
			ID:     n.ID,
			Label:  n.Label,
			Level:  n.Level,
			Weight: n.Weight,
			Header: n.Header,
			Meta:   copyMeta(n.Meta),
		}
	}
	for i, e := range edges {
		out.Edges[i] = Edge{From: e.From, To: e.To}
	}
	return out
}

// ToTree converts a Graph to a tree.
//
// A duplicate or empty node ID is an INVALID_INPUT error; an edge naming an
// unknown node is a STRUCTURAL error. Whether the result is actually a tree
// is left to [tree.Tree.Validate].
func ToTree(g Graph) (*tree.Tree, error) {
	t := tree.New(copyMeta(g.Meta))

	for _, n := range g.Nodes {
		err := t.AddNode(tree.Node{
			ID:     n.ID,
			Label:  n.Label,
			Level:  n.Level,
			Weight: n.Weight,
			Header: n.Header,
			Meta:   copyMeta(n.Meta),
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "add node %q", n.ID)
		}
	}

	for _, e := range g.Edges {
		if err := t.AddEdge(tree.Edge{From: e.From, To: e.To}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStructural, err, "add edge %s→%s", e.From, e.To)
		}
	}

	return t, nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// copyMeta returns a shallow copy, or nil for an empty map.
func copyMeta(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}
