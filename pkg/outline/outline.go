package outline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/matzehuels/orgtree/pkg/errors"
	"github.com/matzehuels/orgtree/pkg/tree"
)

const (
	// DefaultMarker is the header marker of org files.
	DefaultMarker = "*"

	// DefaultEncoding is used when Options.Encoding is empty.
	DefaultEncoding = "utf-8"

	// DefaultRootID names the synthetic root every top-level header hangs off.
	DefaultRootID = "root"

	// IDSeparator joins a header label and its counter to form a node ID.
	IDSeparator = " -- "

	// maxLineSize bounds a single line; longer lines fail the build.
	maxLineSize = 1 << 20
)

// Options configures a build.
type Options struct {
	// Marker is the header marker character. Defaults to "*".
	Marker string
	// Encoding is an IANA/WHATWG encoding name such as "utf-8",
	// "latin1" or "windows-1252". Defaults to UTF-8. A byte order mark
	// overrides it.
	Encoding string
	// Strict aborts on malformed headers instead of treating them as body
	// text.
	Strict bool
	// RootID is the ID of the synthetic root. Defaults to "root".
	RootID string
	// RootLabel is the root's display label. Defaults to RootID.
	RootLabel string
	// Logger receives warnings about skipped headers. Nil discards them.
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.Marker == "" {
		o.Marker = DefaultMarker
	}
	if o.Encoding == "" {
		o.Encoding = DefaultEncoding
	}
	if o.RootID == "" {
		o.RootID = DefaultRootID
	}
	if o.RootLabel == "" {
		o.RootLabel = o.RootID
	}
}

// Warning records an input line that looked like a header but was not.
type Warning struct {
	Line    int    `json:"line"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s: %q", w.Line, w.Message, w.Text)
}

// Attributes is the per-node record handed to the layout and renderers.
type Attributes struct {
	Level  int `json:"level"`
	Weight int `json:"weight"`
}

// Result is the outcome of a build.
type Result struct {
	Tree     *tree.Tree    // Root plus one node per header
	Root     string        // Root ID
	Levels   tree.LevelMap // Node count per depth
	Warnings []Warning     // Lines demoted from header to body text
	Lines    int           // Lines read
	Headers  int           // Header lines turned into nodes
}

// Attributes returns the level and weight of every node keyed by ID.
func (r *Result) Attributes() map[string]Attributes {
	attrs := make(map[string]Attributes, r.Tree.NodeCount())
	for _, n := range r.Tree.Nodes() {
		attrs[n.ID] = Attributes{Level: n.Level, Weight: n.Weight}
	}
	return attrs
}

// Weight returns the accumulated weight of a node, 0 if absent.
func (r *Result) Weight(id string) int {
	if n, ok := r.Tree.Node(id); ok {
		return n.Weight
	}
	return 0
}

// BuildFile opens path and builds a tree from it.
func BuildFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Build(f, opts)
}

// Build reads an outline document and returns its tree.
//
// Each header line ("*** Label") becomes a child of the nearest preceding
// header with a shorter marker run, or of the root. Every other line adds
// the rune count of its trimmed text to the weight of the root and of every
// header currently open above it.
//
// Node IDs are "<label> -- <k>" where k numbers the headers of this call
// starting at 1, so repeated labels stay distinct. A node's Level is its
// depth in the tree; the raw marker run is kept in Node.Header.
func Build(r io.Reader, opts Options) (*Result, error) {
	opts.setDefaults()
	if err := errors.ValidateMarker(opts.Marker); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	dec, err := decoder(opts.Encoding)
	if err != nil {
		return nil, err
	}

	b := newBuilder(opts)
	scanner := bufio.NewScanner(transform.NewReader(r, dec))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := b.line(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", b.lineNo+1, err)
	}

	if total := b.levels.Total(); total != b.tree.NodeCount() {
		return nil, errors.New(errors.ErrCodeInternal,
			"level map counts %d nodes, tree has %d", total, b.tree.NodeCount())
	}

	for _, w := range b.warnings {
		logger.Warn("skipped malformed header", "line", w.Line, "text", w.Text)
	}
	logger.Debug("built outline tree",
		"lines", b.lineNo,
		"headers", b.counter,
		"leaves", len(b.tree.Leaves()),
		"depth", b.levels.MaxDepth())

	return &Result{
		Tree:     b.tree,
		Root:     opts.RootID,
		Levels:   b.levels,
		Warnings: b.warnings,
		Lines:    b.lineNo,
		Headers:  b.counter,
	}, nil
}

func decoder(name string) (transform.Transformer, error) {
	var enc encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		enc = unicode.UTF8
	default:
		var err error
		enc, err = htmlindex.Get(name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidEncoding, err, "unknown encoding %q", name)
		}
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}

// frame is an open header on the ancestor stack.
type frame struct {
	id     string
	header int
	depth  int
}

type builder struct {
	opts     Options
	marker   rune
	tree     *tree.Tree
	root     *tree.Node
	stack    []frame
	levels   tree.LevelMap
	warnings []Warning
	counter  int
	lineNo   int
}

func newBuilder(opts Options) *builder {
	t := tree.New(nil)
	_ = t.AddNode(tree.Node{ID: opts.RootID, Label: opts.RootLabel})
	root, _ := t.Node(opts.RootID)
	marker, _ := utf8.DecodeRuneInString(opts.Marker)
	return &builder{
		opts:   opts,
		marker: marker,
		tree:   t,
		root:   root,
		levels: tree.LevelMap{0: 1},
	}
}

func (b *builder) line(text string) error {
	b.lineNo++
	text = strings.TrimRight(text, "\r")

	run := b.markerRun(text)
	if run == 0 {
		b.body(text)
		return nil
	}

	rest := text[run*utf8.RuneLen(b.marker):]
	if !strings.HasPrefix(rest, " ") {
		if b.opts.Strict {
			return errors.Wrap(errors.ErrCodeInputFormat,
				&errors.LineError{Line: b.lineNo, Text: text},
				"marker run not followed by a space")
		}
		b.warnings = append(b.warnings, Warning{
			Line:    b.lineNo,
			Text:    text,
			Message: "marker run not followed by a space",
		})
		b.body(text)
		return nil
	}

	return b.header(run, rest[1:])
}

func (b *builder) markerRun(text string) int {
	n := 0
	for _, r := range text {
		if r != b.marker {
			break
		}
		n++
	}
	return n
}

func (b *builder) header(run int, label string) error {
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].header >= run {
		b.stack = b.stack[:len(b.stack)-1]
	}

	parent, depth := b.opts.RootID, 1
	if len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		parent, depth = top.id, top.depth+1
	}

	b.counter++
	id := label + IDSeparator + strconv.Itoa(b.counter)
	node := tree.Node{ID: id, Label: label, Level: depth, Header: run}
	if err := b.tree.AddNode(node); err != nil {
		// Only reachable when the root ID itself looks like "<label> -- <k>".
		return errors.Wrap(errors.ErrCodeInputFormat, err, "line %d: node %q", b.lineNo, id)
	}
	if err := b.tree.AddEdge(tree.Edge{From: parent, To: id}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "line %d: edge %s->%s", b.lineNo, parent, id)
	}

	b.stack = append(b.stack, frame{id: id, header: run, depth: depth})
	b.levels[depth]++
	return nil
}

func (b *builder) body(text string) {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n == 0 {
		return
	}
	b.root.Weight += n
	for _, f := range b.stack {
		node, _ := b.tree.Node(f.id)
		node.Weight += n
	}
}
