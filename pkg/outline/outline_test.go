package outline

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/orgtree/pkg/errors"
	"github.com/matzehuels/orgtree/pkg/tree"
)

func mustBuild(t *testing.T, input string, opts Options) *Result {
	t.Helper()
	res, err := Build(strings.NewReader(input), opts)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := res.Tree.Validate(); err != nil {
		t.Fatalf("built tree is invalid: %v", err)
	}
	return res
}

func TestBuild_Weights(t *testing.T) {
	input := `intro text
* A
hello
** B
  world  !
* C
xyz
`
	res := mustBuild(t, input, Options{})

	want := map[string]Attributes{
		"root":   {Level: 0, Weight: 26},
		"A -- 1": {Level: 1, Weight: 13},
		"B -- 2": {Level: 2, Weight: 8},
		"C -- 3": {Level: 1, Weight: 3},
	}
	got := res.Attributes()
	if len(got) != len(want) {
		t.Fatalf("Attributes has %d entries, want %d", len(got), len(want))
	}
	for id, w := range want {
		if got[id] != w {
			t.Errorf("Attributes[%q] = %+v, want %+v", id, got[id], w)
		}
	}

	if !res.Levels.Equal(tree.LevelMap{0: 1, 1: 2, 2: 1}) {
		t.Errorf("Levels = %v", res.Levels)
	}
	if res.Lines != 7 {
		t.Errorf("Lines = %d, want 7", res.Lines)
	}
	if res.Headers != 3 {
		t.Errorf("Headers = %d, want 3", res.Headers)
	}
	if res.Weight("B -- 2") != 8 || res.Weight("missing") != 0 {
		t.Error("Weight lookup mismatch")
	}
}

func TestBuild_WeightAccumulatesOncePerAncestor(t *testing.T) {
	// The body line is seen with the stack [root, a, b]; only those grow.
	input := "* a\n** b\n12345\n* c\n"
	res := mustBuild(t, input, Options{})

	for id, w := range map[string]int{"root": 5, "a -- 1": 5, "b -- 2": 5, "c -- 3": 0} {
		if got := res.Weight(id); got != w {
			t.Errorf("Weight(%q) = %d, want %d", id, got, w)
		}
	}
}

func TestBuild_StackPopping(t *testing.T) {
	input := "* A\n*** B\n** C\n**** D\n* E\n"
	res := mustBuild(t, input, Options{})

	tests := []struct {
		id     string
		parent string
		level  int
		header int
	}{
		{"A -- 1", "root", 1, 1},
		{"B -- 2", "A -- 1", 2, 3},
		{"C -- 3", "A -- 1", 2, 2},
		{"D -- 4", "C -- 3", 3, 4},
		{"E -- 5", "root", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			n, ok := res.Tree.Node(tt.id)
			if !ok {
				t.Fatalf("node %q missing", tt.id)
			}
			if p, _ := res.Tree.Parent(tt.id); p != tt.parent {
				t.Errorf("parent = %q, want %q", p, tt.parent)
			}
			if n.Level != tt.level {
				t.Errorf("Level = %d, want %d", n.Level, tt.level)
			}
			if n.Header != tt.header {
				t.Errorf("Header = %d, want %d", n.Header, tt.header)
			}
		})
	}

	// Levels are tree depths, so they agree with a traversal from the root.
	derived, err := res.Tree.Levels(res.Root)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Levels.Equal(derived) {
		t.Errorf("Levels = %v, traversal gives %v", res.Levels, derived)
	}
	if !res.Levels.Equal(tree.LevelMap{0: 1, 1: 2, 2: 2, 3: 1}) {
		t.Errorf("Levels = %v", res.Levels)
	}
}

func TestBuild_DuplicateLabels(t *testing.T) {
	res := mustBuild(t, "* X\n** X\n* X\n", Options{})

	want := []string{"root", "X -- 1", "X -- 2", "X -- 3"}
	if got := res.Tree.NodeIDs(); !slices.Equal(got, want) {
		t.Errorf("NodeIDs = %v, want %v", got, want)
	}
	for _, n := range res.Tree.Nodes()[1:] {
		if n.Label != "X" {
			t.Errorf("Label(%q) = %q, want X", n.ID, n.Label)
		}
	}
}

func TestBuild_CounterIsPerCall(t *testing.T) {
	for i := 0; i < 2; i++ {
		res := mustBuild(t, "* only\n", Options{})
		if !res.Tree.Has("only -- 1") {
			t.Fatalf("run %d: want node %q, got %v", i, "only -- 1", res.Tree.NodeIDs())
		}
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	res := mustBuild(t, "", Options{})

	if res.Tree.NodeCount() != 1 {
		t.Fatalf("NodeCount = %d, want 1", res.Tree.NodeCount())
	}
	if a := res.Attributes()["root"]; a.Level != 0 || a.Weight != 0 {
		t.Errorf("root attributes = %+v, want level 0 weight 0", a)
	}
	if !res.Levels.Equal(tree.LevelMap{0: 1}) {
		t.Errorf("Levels = %v, want {0:1}", res.Levels)
	}
}

func TestBuild_MalformedHeader(t *testing.T) {
	input := "* A\n**bold** text\n*\n"

	t.Run("lenient", func(t *testing.T) {
		res := mustBuild(t, input, Options{})
		if len(res.Warnings) != 2 {
			t.Fatalf("Warnings = %v, want 2", res.Warnings)
		}
		if res.Warnings[0].Line != 2 || res.Warnings[1].Line != 3 {
			t.Errorf("warning lines = %d, %d, want 2, 3", res.Warnings[0].Line, res.Warnings[1].Line)
		}
		// Demoted lines count as body text.
		if got := res.Weight("A -- 1"); got != len("**bold** text")+1 {
			t.Errorf("Weight(A) = %d, want %d", got, len("**bold** text")+1)
		}
		if res.Tree.NodeCount() != 2 {
			t.Errorf("NodeCount = %d, want 2", res.Tree.NodeCount())
		}
	})

	t.Run("strict", func(t *testing.T) {
		_, err := Build(strings.NewReader(input), Options{Strict: true})
		if !errors.IsInputFormat(err) {
			t.Fatalf("error = %v, want INVALID_INPUT_FORMAT", err)
		}
		var le *errors.LineError
		if !stderrors.As(err, &le) || le.Line != 2 {
			t.Errorf("LineError = %+v, want line 2", le)
		}
	})
}

func TestBuild_LineTerminators(t *testing.T) {
	res := mustBuild(t, "* A\r\nbody\r\n* B", Options{})

	if !res.Tree.Has("A -- 1") || !res.Tree.Has("B -- 2") {
		t.Fatalf("NodeIDs = %v", res.Tree.NodeIDs())
	}
	if got := res.Weight("A -- 1"); got != 4 {
		t.Errorf("Weight(A) = %d, want 4", got)
	}
}

func TestBuild_RuneWeights(t *testing.T) {
	res := mustBuild(t, "* Ü\nÄÖÜ\n", Options{})
	if got := res.Weight("Ü -- 1"); got != 3 {
		t.Errorf("Weight = %d, want 3 runes", got)
	}
}

func TestBuild_Encoding(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		input    []byte
		label    string
		weight   int
	}{
		{"utf-8 default", "", []byte("* Café\nété\n"), "Café", 3},
		{"utf-8 bom", "utf-8", []byte("\xef\xbb\xbf* Café\nété\n"), "Café", 3},
		{"latin1", "latin1", []byte("* Caf\xe9\n\xe9t\xe9\n"), "Café", 3},
		{"windows-1252", "windows-1252", []byte("* Caf\xe9\n\xe9t\xe9\n"), "Café", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Build(strings.NewReader(string(tt.input)), Options{Encoding: tt.encoding})
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			id := tt.label + IDSeparator + "1"
			n, ok := res.Tree.Node(id)
			if !ok {
				t.Fatalf("node %q missing, have %v", id, res.Tree.NodeIDs())
			}
			if n.Weight != tt.weight {
				t.Errorf("Weight = %d, want %d", n.Weight, tt.weight)
			}
		})
	}

	_, err := Build(strings.NewReader("* A\n"), Options{Encoding: "klingon"})
	if errors.GetCode(err) != errors.ErrCodeInvalidEncoding {
		t.Errorf("unknown encoding error = %v, want INVALID_ENCODING", err)
	}
}

func TestBuild_CustomMarkerAndRoot(t *testing.T) {
	res := mustBuild(t, "# A\n## B\n* not a header\n", Options{Marker: "#", RootID: "doc"})

	if res.Root != "doc" {
		t.Errorf("Root = %q, want doc", res.Root)
	}
	if p, _ := res.Tree.Parent("A -- 1"); p != "doc" {
		t.Errorf("Parent(A) = %q, want doc", p)
	}
	if got := res.Weight("B -- 2"); got != len("* not a header") {
		t.Errorf("Weight(B) = %d, want %d", got, len("* not a header"))
	}

	if _, err := Build(strings.NewReader(""), Options{Marker: "ab"}); err == nil {
		t.Error("multi-character marker should be rejected")
	}
}

func TestBuildFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.org")
	if err := os.WriteFile(path, []byte("* Inbox\nbuy milk\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := BuildFile(path, Options{})
	if err != nil {
		t.Fatalf("BuildFile: %v", err)
	}
	if got := res.Weight("Inbox -- 1"); got != 8 {
		t.Errorf("Weight(Inbox) = %d, want 8", got)
	}

	_, err = BuildFile(filepath.Join(dir, "missing.org"), Options{})
	if errors.GetCode(err) != errors.ErrCodeFileNotFound {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWarningString(t *testing.T) {
	w := Warning{Line: 4, Text: "**x", Message: "marker run not followed by a space"}
	want := `line 4: marker run not followed by a space: "**x"`
	if w.String() != want {
		t.Errorf("String() = %q, want %q", w.String(), want)
	}
}
