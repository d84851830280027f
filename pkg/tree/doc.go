// Package tree provides the rooted tree that an outline document is parsed
// into and that the hierarchy layout positions.
//
// # Overview
//
// An org outline describes a hierarchy with leading asterisks. The builder
// in [github.com/matzehuels/orgtree/pkg/outline] turns it into a [Tree]
// whose nodes carry a depth ([Node.Level]), the marker run they were
// declared with ([Node.Header]) and an accumulated body-text size
// ([Node.Weight]).
//
// # Basic Usage
//
// Create a tree with [New], then add nodes and parent-to-child edges:
//
//	t := tree.New(nil)
//	t.AddNode(tree.Node{ID: "root"})
//	t.AddNode(tree.Node{ID: "Tasks -- 1", Label: "Tasks", Level: 1, Header: 1})
//	t.AddEdge(tree.Edge{From: "root", To: "Tasks -- 1"})
//
// # Structure Checks
//
// Adding nodes and edges only guards against unknown endpoints and duplicate
// IDs. Whether the result is a tree is decided by [Tree.Validate], which
// reads the graph as undirected and rejects cycles, self loops and
// disconnected components. Layout code calls it before producing any output.
//
// # Level Maps
//
// A [LevelMap] counts nodes per depth. [Tree.Levels] derives one by
// breadth-first search from a root; the builder produces the same map as a
// by-product of parsing.
//
// # Ordering
//
// Nodes, edges, children and neighbours are all returned in insertion
// order. This is what makes a layout of the same tree reproducible.
//
// # Concurrency
//
// A Tree is not safe for concurrent mutation. Once built it may be read from
// several goroutines.
package tree
