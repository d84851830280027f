package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/orgtree/pkg/errors"
	"github.com/matzehuels/orgtree/pkg/graph"
	"github.com/matzehuels/orgtree/pkg/outline"
	"github.com/matzehuels/orgtree/pkg/tree"
)

// Parse builds a weighted tree from org text.
func Parse(data []byte, opts Options) (*outline.Result, error) {
	return outline.Build(bytes.NewReader(data), opts.OutlineOptions())
}

// FromTree wraps an already built tree, such as one read from graph.json,
// so it can enter the pipeline at the layout stage. Levels are derived
// from root; a missing root is reported by the layout stage.
func FromTree(t *tree.Tree, root string) *outline.Result {
	levels, _ := t.Levels(root)
	return &outline.Result{Tree: t, Root: root, Levels: levels}
}

// parsedDoc is the parse cache record. It keeps the build statistics that
// graph.json files do not carry.
type parsedDoc struct {
	Graph    graph.Graph       `json:"graph"`
	Warnings []outline.Warning `json:"warnings,omitempty"`
	Lines    int               `json:"lines"`
	Headers  int               `json:"headers"`
}

func encodeParsed(res *outline.Result) ([]byte, error) {
	return json.Marshal(parsedDoc{
		Graph:    graph.FromTree(res.Tree, res.Root),
		Warnings: res.Warnings,
		Lines:    res.Lines,
		Headers:  res.Headers,
	})
}

func decodeParsed(data []byte) (*outline.Result, error) {
	var doc parsedDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode parse record: %w", err)
	}
	t, err := graph.ToTree(doc.Graph)
	if err != nil {
		return nil, err
	}
	levels, err := t.Levels(doc.Graph.Root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "cached tree has no root")
	}
	return &outline.Result{
		Tree:     t,
		Root:     doc.Graph.Root,
		Levels:   levels,
		Warnings: doc.Warnings,
		Lines:    doc.Lines,
		Headers:  doc.Headers,
	}, nil
}
