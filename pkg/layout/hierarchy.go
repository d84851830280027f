package layout

import (
	"math"

	"github.com/matzehuels/orgtree/pkg/errors"
	"github.com/matzehuels/orgtree/pkg/tree"
)

// Strategy selects how horizontal space is shared among nodes.
type Strategy string

const (
	// StrategyLevel splits each depth level into as many equal slots as
	// it has nodes and hands them out left to right in depth-first order.
	// Nodes of one level are evenly spaced across the whole width.
	StrategyLevel Strategy = "level"

	// StrategySubtree splits a node's band into equal slots, one per child,
	// and gives each child its slot as its own band. Children are spaced
	// evenly and symmetrically under their parent.
	StrategySubtree Strategy = "subtree"
)

// DefaultStrategy is used when no strategy is given.
const DefaultStrategy = StrategyLevel

// DefaultExtent is the width and height used when none is given.
const DefaultExtent = 1.0

// ValidStrategies is the set of supported strategies.
var ValidStrategies = map[Strategy]bool{
	StrategyLevel:   true,
	StrategySubtree: true,
}

// ParseStrategy converts a name into a Strategy. The empty string yields
// DefaultStrategy.
func ParseStrategy(name string) (Strategy, error) {
	if name == "" {
		return DefaultStrategy, nil
	}
	s := Strategy(name)
	if !ValidStrategies[s] {
		return "", errors.New(errors.ErrCodeInvalidStrategy, "unknown layout strategy %q (want level or subtree)", name)
	}
	return s, nil
}

// Position is a node's coordinate. Y is 0 at the root and decreases with
// depth.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Positions maps node IDs to coordinates.
type Positions map[string]Position

// Option configures Hierarchy.
type Option func(*config)

type config struct {
	width    float64
	height   float64
	strategy Strategy
}

// WithWidth sets the horizontal extent. Zero keeps the default of 1.
func WithWidth(w float64) Option { return func(c *config) { c.width = w } }

// WithHeight sets the vertical extent. Zero keeps the default of 1.
func WithHeight(h float64) Option { return func(c *config) { c.height = h } }

// WithStrategy selects the horizontal placement strategy.
func WithStrategy(s Strategy) Option { return func(c *config) { c.strategy = s } }

func newConfig(opts []Option) (config, error) {
	c := config{strategy: DefaultStrategy}
	for _, opt := range opts {
		opt(&c)
	}
	if err := errors.ValidateExtent("width", c.width); err != nil {
		return c, err
	}
	if err := errors.ValidateExtent("height", c.height); err != nil {
		return c, err
	}
	if c.width == 0 {
		c.width = DefaultExtent
	}
	if c.height == 0 {
		c.height = DefaultExtent
	}
	if c.strategy == "" {
		c.strategy = DefaultStrategy
	}
	if !ValidStrategies[c.strategy] {
		return c, errors.New(errors.ErrCodeInvalidStrategy, "unknown layout strategy %q", c.strategy)
	}
	return c, nil
}

// Hierarchy assigns a position to every node of t.
//
// The root sits at (width/2, 0). Every level below it is height/L lower
// than the previous one, where L is the number of distinct levels, so all
// nodes of one depth share a Y coordinate. Children are visited in the
// order their edges were added, which makes the result deterministic.
// Edge direction is ignored: the tree is read from root outwards.
//
// levels must count the nodes at each depth from root exactly as a
// breadth-first traversal would; pass nil to have it derived.
//
// Errors, all returned before any position is computed:
//   - STRUCTURAL if t is nil, empty or not a tree
//   - PRECONDITION if root is absent, levels disagrees with the tree,
//     or an extent is negative or not finite
//   - INVALID_STRATEGY for an unknown strategy
func Hierarchy(t *tree.Tree, root string, levels tree.LevelMap, opts ...Option) (Positions, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := checkTree(t); err != nil {
		return nil, err
	}
	levels, err = checkLevels(t, root, levels)
	if err != nil {
		return nil, err
	}

	vertStep := c.height / float64(levels.Levels())
	pos := make(Positions, t.NodeCount())

	switch c.strategy {
	case StrategySubtree:
		placeSubtree(t, root, c.width, vertStep, pos)
	default:
		placeLevel(t, root, levels, c.width, vertStep, pos)
	}
	return pos, nil
}

// Depths returns every node's distance from root after checking that t is
// a tree containing root.
func Depths(t *tree.Tree, root string) (map[string]int, error) {
	if err := checkTree(t); err != nil {
		return nil, err
	}
	depths, err := t.Depths(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePrecondition, err, "root %q", root)
	}
	return depths, nil
}

func checkTree(t *tree.Tree) error {
	if t == nil {
		return errors.Wrap(errors.ErrCodeStructural, tree.ErrEmptyTree, "no tree given")
	}
	if err := t.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeStructural, err, "input is not a tree")
	}
	return nil
}

func checkLevels(t *tree.Tree, root string, levels tree.LevelMap) (tree.LevelMap, error) {
	derived, err := t.Levels(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePrecondition, err, "root %q", root)
	}
	if levels == nil {
		return derived, nil
	}
	if !levels.Equal(derived) {
		return nil, errors.New(errors.ErrCodePrecondition,
			"level map %v does not match the tree's depths %v", levels, derived)
	}
	// Zero entries compare equal but must not add levels.
	return derived, nil
}

// visit is one step of the pre-order walk.
type visit struct {
	id       string
	parent   string
	depth    int
	index    int // position among the parent's children
	siblings int // number of children of the parent
}

// walk calls fn for every node reachable from root in depth-first
// pre-order. Each node's neighbours other than the one it was reached from
// are its children, taken in edge insertion order. The walk keeps its own
// stack so deep outlines cannot exhaust the goroutine stack.
func walk(t *tree.Tree, root string, fn func(visit)) {
	stack := []visit{{id: root, depth: 0, siblings: 1}}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(v)

		children := childrenOf(t, v.id, v.parent)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, visit{
				id:       children[i],
				parent:   v.id,
				depth:    v.depth + 1,
				index:    i,
				siblings: len(children),
			})
		}
	}
}

func childrenOf(t *tree.Tree, id, parent string) []string {
	nbs := t.Neighbors(id)
	children := make([]string, 0, len(nbs))
	for _, nb := range nbs {
		if nb != parent {
			children = append(children, nb)
		}
	}
	return children
}

func placeLevel(t *tree.Tree, root string, levels tree.LevelMap, width, vertStep float64, pos Positions) {
	next := make(map[int]int, len(levels))
	walk(t, root, func(v visit) {
		dx := width / float64(levels[v.depth])
		pos[v.id] = Position{
			X: dx/2 + dx*float64(next[v.depth]),
			Y: y(v.depth, vertStep),
		}
		next[v.depth]++
	})
}

// band is the horizontal interval a node and its descendants occupy.
type band struct{ start, width float64 }

func placeSubtree(t *tree.Tree, root string, width, vertStep float64, pos Positions) {
	bands := map[string]band{}
	walk(t, root, func(v visit) {
		b := band{0, width}
		if v.depth > 0 {
			pb := bands[v.parent]
			slot := pb.width / float64(v.siblings)
			b = band{pb.start + slot*float64(v.index), slot}
		}
		bands[v.id] = b
		pos[v.id] = Position{X: b.start + b.width/2, Y: y(v.depth, vertStep)}
	})
}

func y(depth int, vertStep float64) float64 {
	if depth == 0 {
		return 0
	}
	return -float64(depth) * vertStep
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Bounds returns the smallest Rect containing every position. An empty map
// yields the zero Rect.
func Bounds(p Positions) Rect {
	if len(p) == 0 {
		return Rect{}
	}
	r := Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, q := range p {
		r.MinX = math.Min(r.MinX, q.X)
		r.MinY = math.Min(r.MinY, q.Y)
		r.MaxX = math.Max(r.MaxX, q.X)
		r.MaxY = math.Max(r.MaxY, q.Y)
	}
	return r
}
