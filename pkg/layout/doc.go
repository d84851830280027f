// Package layout positions the nodes of a tree for drawing.
//
// [Hierarchy] places the root at the top centre and every other node on a
// horizontal line determined by its depth. How the width is shared among
// the nodes of a level is chosen with [WithStrategy]:
//
//   - [StrategyLevel] (the default) spaces the nodes of each level evenly
//     across the full width, in depth-first order. The level map passed to
//     Hierarchy decides the slot size.
//   - [StrategySubtree] gives each node an interval, splits it evenly among
//     its children and centres each child in its part.
//
// Both strategies are deterministic and never revisit a node. Inputs are
// checked before any coordinate is produced: a graph that is not a tree is
// a STRUCTURAL error, a missing root or a level map that disagrees with the
// tree is a PRECONDITION error.
package layout
