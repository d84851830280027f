package tree

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Tree.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Tree.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Tree.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Tree.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrEmptyTree is returned by [Tree.Validate] for a graph without nodes.
	ErrEmptyTree = errors.New("tree has no nodes")

	// ErrInvalidEdgeEndpoint is returned by [Tree.Validate] when an edge
	// references a node that doesn't exist.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrSelfLoop is returned by [Tree.Validate] when an edge connects a
	// node to itself.
	ErrSelfLoop = errors.New("edge connects a node to itself")

	// ErrGraphHasCycle is returned by [Tree.Validate] when the undirected
	// graph contains a cycle. Parallel edges count as a cycle of length two.
	ErrGraphHasCycle = errors.New("graph contains a cycle")

	// ErrDisconnected is returned by [Tree.Validate] when some nodes cannot
	// be reached from the others, e.g. a forest with several roots.
	ErrDisconnected = errors.New("graph is not connected")

	// ErrUnknownRoot is returned by [Tree.Depths] when the root is absent.
	ErrUnknownRoot = errors.New("root not in tree")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the tree.
// Metadata maps are never nil after AddNode/AddEdge/New.
type Metadata map[string]any

// Node is a vertex of the outline tree.
//
// The zero value is not usable; ID must be set before adding to a Tree.
type Node struct {
	ID     string   // Unique, opaque identifier (e.g. "Tasks -- 3")
	Label  string   // Display text
	Level  int      // Depth from the root (root = 0)
	Weight int      // Accumulated body-text size under the node
	Header int      // Marker run length of the source header (0 for the root)
	Meta   Metadata // Arbitrary key-value metadata
}

// Edge connects a parent to a child.
type Edge struct {
	From string   // Parent node ID
	To   string   // Child node ID
	Meta Metadata // Arbitrary key-value metadata
}

// Tree holds nodes and parent-to-child edges.
//
// A Tree can hold any graph shape while it is being built; [Tree.Validate]
// decides whether the result is actually a tree. Nodes and edges keep their
// insertion order, which is what makes layouts deterministic.
//
// The zero value is not usable - use New. Tree is not safe for concurrent
// mutation; concurrent reads of a fully built tree are fine.
type Tree struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
	adjacent map[string][]string
	meta     Metadata
}

// New creates an empty Tree with optional tree-level metadata.
func New(meta Metadata) *Tree {
	if meta == nil {
		meta = Metadata{}
	}
	return &Tree{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		adjacent: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the tree-level metadata map.
func (t *Tree) Meta() Metadata { return t.meta }

// AddNode adds a node. Returns ErrInvalidNodeID if the node ID is empty,
// or ErrDuplicateNodeID if the ID is already in use.
func (t *Tree) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := t.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	t.nodes[n.ID] = &n
	t.order = append(t.order, n.ID)
	return nil
}

// AddEdge adds a parent-to-child edge between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode for missing endpoints.
//
// AddEdge accepts self loops, parallel edges and second parents; Validate
// reports them.
func (t *Tree) AddEdge(e Edge) error {
	if _, ok := t.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := t.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	t.edges = append(t.edges, e)
	t.outgoing[e.From] = append(t.outgoing[e.From], e.To)
	t.incoming[e.To] = append(t.incoming[e.To], e.From)
	t.adjacent[e.From] = append(t.adjacent[e.From], e.To)
	if e.From != e.To {
		t.adjacent[e.To] = append(t.adjacent[e.To], e.From)
	}
	return nil
}

// Node returns the node with the given ID and true, or nil and false.
// The returned pointer refers to the node stored in the tree.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Has reports whether a node with the given ID exists.
func (t *Tree) Has(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// stored nodes, so modifications affect the tree.
func (t *Tree) Nodes() []*Node {
	nodes := make([]*Node, len(t.order))
	for i, id := range t.order {
		nodes[i] = t.nodes[id]
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (t *Tree) NodeIDs() []string { return slices.Clone(t.order) }

// Edges returns a copy of all edges in insertion order.
func (t *Tree) Edges() []Edge { return slices.Clone(t.edges) }

// NodeCount returns the number of nodes.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// EdgeCount returns the number of edges.
func (t *Tree) EdgeCount() int { return len(t.edges) }

// Children returns the IDs the node has edges to, in insertion order.
// The returned slice is a read-only view.
func (t *Tree) Children(id string) []string { return t.outgoing[id] }

// Parent returns the first parent of the node, if any.
func (t *Tree) Parent(id string) (string, bool) {
	ps := t.incoming[id]
	if len(ps) == 0 {
		return "", false
	}
	return ps[0], true
}

// Neighbors returns every node sharing an edge with id, ignoring edge
// direction, in the order the edges were added. The returned slice is a
// read-only view.
func (t *Tree) Neighbors(id string) []string { return t.adjacent[id] }

// Sources returns the nodes without a parent, in insertion order.
func (t *Tree) Sources() []*Node {
	var sources []*Node
	for _, id := range t.order {
		if len(t.incoming[id]) == 0 {
			sources = append(sources, t.nodes[id])
		}
	}
	return sources
}

// Leaves returns the nodes without children, in insertion order.
func (t *Tree) Leaves() []*Node {
	var leaves []*Node
	for _, id := range t.order {
		if len(t.outgoing[id]) == 0 {
			leaves = append(leaves, t.nodes[id])
		}
	}
	return leaves
}

// Validate reports whether the graph, read as undirected, is a tree:
// non-empty, connected, free of self loops and with exactly one edge fewer
// than it has nodes.
//
// Returns ErrEmptyTree, ErrInvalidEdgeEndpoint, ErrSelfLoop,
// ErrGraphHasCycle or ErrDisconnected. Runs in O(N+E).
func (t *Tree) Validate() error {
	if len(t.nodes) == 0 {
		return ErrEmptyTree
	}
	for _, e := range t.edges {
		if !t.Has(e.From) || !t.Has(e.To) {
			return ErrInvalidEdgeEndpoint
		}
		if e.From == e.To {
			return ErrSelfLoop
		}
	}
	// n nodes and at least n edges always close a cycle.
	if len(t.edges) >= len(t.nodes) {
		return ErrGraphHasCycle
	}
	if len(t.reachable(t.order[0])) != len(t.nodes) {
		return ErrDisconnected
	}
	return nil
}

func (t *Tree) reachable(start string) map[string]int {
	depth := map[string]int{start: 0}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, nb := range t.adjacent[id] {
			if _, seen := depth[nb]; !seen {
				depth[nb] = depth[id] + 1
				queue = append(queue, nb)
			}
		}
	}
	return depth
}

// Depths returns the breadth-first distance of every reachable node from
// root, ignoring edge direction. Returns ErrUnknownRoot if root is absent.
func (t *Tree) Depths(root string) (map[string]int, error) {
	if !t.Has(root) {
		return nil, ErrUnknownRoot
	}
	return t.reachable(root), nil
}

// Levels returns the depth histogram of the nodes reachable from root.
func (t *Tree) Levels(root string) (LevelMap, error) {
	depths, err := t.Depths(root)
	if err != nil {
		return nil, err
	}
	levels := make(LevelMap)
	for _, d := range depths {
		levels[d]++
	}
	return levels, nil
}

// LevelMap maps a depth to the number of nodes at that depth.
type LevelMap map[int]int

// Levels returns the number of distinct depths holding at least one node.
func (m LevelMap) Levels() int {
	n := 0
	for _, c := range m {
		if c != 0 {
			n++
		}
	}
	return n
}

// Total returns the number of nodes counted by the map.
func (m LevelMap) Total() int {
	total := 0
	for _, c := range m {
		total += c
	}
	return total
}

// Depths returns the depths present in the map in ascending order.
func (m LevelMap) Depths() []int { return slices.Sorted(maps.Keys(m)) }

// MaxDepth returns the deepest level, or 0 for an empty map.
func (m LevelMap) MaxDepth() int {
	if len(m) == 0 {
		return 0
	}
	ds := m.Depths()
	return ds[len(ds)-1]
}

// Equal reports whether both maps count the same nodes at the same depths.
// Zero entries are ignored.
func (m LevelMap) Equal(other LevelMap) bool {
	for d, c := range m {
		if c != 0 && other[d] != c {
			return false
		}
	}
	for d, c := range other {
		if c != 0 && m[d] != c {
			return false
		}
	}
	return true
}
