package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/orgtree/pkg/tree"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a tree to JSON bytes.
func MarshalGraph(t *tree.Tree, root string) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(t, root, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a tree to a JSON file.
func WriteGraphFile(t *tree.Tree, root, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(t, root, f)
}

// WriteGraph writes a tree as JSON to an io.Writer.
func WriteGraph(t *tree.Tree, root string, w io.Writer) error {
	return writeGraphTo(t, root, w)
}

// ReadGraphFile reads a JSON file and returns the decoded tree and its root.
func ReadGraphFile(path string) (*tree.Tree, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON graph from an io.Reader.
func ReadGraph(r io.Reader) (*tree.Tree, string, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(t *tree.Tree, root string, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromTree(t, root)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*tree.Tree, string, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, "", fmt.Errorf("decode: %w", err)
	}
	t, err := ToTree(data)
	if err != nil {
		return nil, "", err
	}
	root := data.Root
	if root == "" {
		// Files written without a root: take the only parentless node.
		if src := t.Sources(); len(src) == 1 {
			root = src[0].ID
		}
	}
	return t, root, nil
}
