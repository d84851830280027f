package tree_test

import (
	"fmt"

	"github.com/matzehuels/orgtree/pkg/tree"
)

func ExampleTree_basic() {
	// root → Tasks → Groceries
	t := tree.New(nil)
	_ = t.AddNode(tree.Node{ID: "root"})
	_ = t.AddNode(tree.Node{ID: "Tasks -- 1", Label: "Tasks", Level: 1, Header: 1})
	_ = t.AddNode(tree.Node{ID: "Groceries -- 2", Label: "Groceries", Level: 2, Header: 2})
	_ = t.AddEdge(tree.Edge{From: "root", To: "Tasks -- 1"})
	_ = t.AddEdge(tree.Edge{From: "Tasks -- 1", To: "Groceries -- 2"})

	fmt.Println("Nodes:", t.NodeCount())
	fmt.Println("Edges:", t.EdgeCount())
	fmt.Println("Valid:", t.Validate() == nil)
	// Output:
	// Nodes: 3
	// Edges: 2
	// Valid: true
}

func ExampleTree_Levels() {
	t := tree.New(nil)
	for _, id := range []string{"1", "2", "3", "4"} {
		_ = t.AddNode(tree.Node{ID: id})
	}
	_ = t.AddEdge(tree.Edge{From: "1", To: "2"})
	_ = t.AddEdge(tree.Edge{From: "1", To: "3"})
	_ = t.AddEdge(tree.Edge{From: "3", To: "4"})

	levels, _ := t.Levels("1")
	for _, d := range levels.Depths() {
		fmt.Printf("depth %d: %d\n", d, levels[d])
	}
	// Output:
	// depth 0: 1
	// depth 1: 2
	// depth 2: 1
}

func ExampleTree_Validate() {
	// Two disjoint pairs form a forest, not a tree.
	t := tree.New(nil)
	for _, id := range []string{"a", "b", "c", "d"} {
		_ = t.AddNode(tree.Node{ID: id})
	}
	_ = t.AddEdge(tree.Edge{From: "a", To: "b"})
	_ = t.AddEdge(tree.Edge{From: "c", To: "d"})

	fmt.Println(t.Validate())
	// Output:
	// graph is not connected
}
