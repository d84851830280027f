package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/orgtree/pkg/layout"
	"github.com/matzehuels/orgtree/pkg/tree"
)

// =============================================================================
// Layout - Positioned Tree Format
// =============================================================================

// Layout is the serialization format for a positioned outline tree.
// Renderers consume it; layout.json files and the layout cache store it.
type Layout struct {
	Title    string      `json:"title,omitempty"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Strategy string      `json:"strategy"`
	Root     string      `json:"root"`
	Levels   map[int]int `json:"levels"`

	Nodes []PlacedNode `json:"nodes"`
	Edges []Edge       `json:"edges"`
}

// PlacedNode is a node with its position.
type PlacedNode struct {
	ID     string  `json:"id"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Level  int     `json:"level"`
	Weight int     `json:"weight"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *PlacedNode) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// LayoutOptions carries the parameters a layout was computed with.
type LayoutOptions struct {
	Title    string
	Width    float64
	Height   float64
	Strategy layout.Strategy
}

// NewLayout combines a tree and the positions computed for it.
// Nodes missing from pos are placed at the origin; callers normally pass
// the output of [layout.Hierarchy], which covers every node. Node levels
// are their depths from root, falling back to Node.Level when t is not a
// tree rooted there.
func NewLayout(t *tree.Tree, root string, pos layout.Positions, opts LayoutOptions) Layout {
	depths, _ := layout.Depths(t, root)
	var levels tree.LevelMap
	if depths != nil {
		levels = make(tree.LevelMap)
		for _, d := range depths {
			levels[d]++
		}
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = layout.DefaultStrategy
	}

	l := Layout{
		Title:    opts.Title,
		Width:    orDefault(opts.Width),
		Height:   orDefault(opts.Height),
		Strategy: string(strategy),
		Root:     root,
		Levels:   levels,
		Nodes:    make([]PlacedNode, 0, t.NodeCount()),
	}
	for _, n := range t.Nodes() {
		p := pos[n.ID]
		level, ok := depths[n.ID]
		if !ok {
			level = n.Level
		}
		l.Nodes = append(l.Nodes, PlacedNode{
			ID:     n.ID,
			Label:  n.Label,
			X:      p.X,
			Y:      p.Y,
			Level:  level,
			Weight: n.Weight,
		})
	}
	for _, e := range t.Edges() {
		l.Edges = append(l.Edges, Edge{From: e.From, To: e.To})
	}
	return l
}

func orDefault(v float64) float64 {
	if v == 0 {
		return layout.DefaultExtent
	}
	return v
}

// Node returns the placed node with the given ID.
func (l *Layout) Node(id string) (PlacedNode, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return PlacedNode{}, false
}

// Positions returns the coordinates keyed by node ID.
func (l *Layout) Positions() layout.Positions {
	pos := make(layout.Positions, len(l.Nodes))
	for _, n := range l.Nodes {
		pos[n.ID] = layout.Position{X: n.X, Y: n.Y}
	}
	return pos
}

// MaxWeight returns the largest node weight, 0 for an empty layout.
func (l *Layout) MaxWeight() int {
	m := 0
	for _, n := range l.Nodes {
		m = max(m, n.Weight)
	}
	return m
}

// Validate checks that the layout is self-consistent: it has nodes with
// unique IDs, the root is among them and every edge joins two of them.
func (l *Layout) Validate() error {
	if len(l.Nodes) == 0 {
		return fmt.Errorf("layout must contain nodes")
	}
	ids := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		if n.ID == "" {
			return fmt.Errorf("layout node without id")
		}
		if ids[n.ID] {
			return fmt.Errorf("duplicate layout node %q", n.ID)
		}
		ids[n.ID] = true
	}
	if !ids[l.Root] {
		return fmt.Errorf("layout root %q is not a node", l.Root)
	}
	for _, e := range l.Edges {
		if !ids[e.From] || !ids[e.To] {
			return fmt.Errorf("layout edge %s→%s references an unknown node", e.From, e.To)
		}
	}
	return nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout and validates it.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
