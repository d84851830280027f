package layout

import (
	"math"
	"strconv"
	"testing"

	"github.com/matzehuels/orgtree/pkg/errors"
	"github.com/matzehuels/orgtree/pkg/tree"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

// sample is the 13-node tree used throughout the layout tests.
func sample(t *testing.T) *tree.Tree {
	t.Helper()
	return fromEdges(t, 13, [][2]int{
		{1, 2}, {1, 3}, {1, 4}, {2, 5}, {2, 6}, {2, 7},
		{3, 8}, {3, 9}, {4, 10}, {5, 11}, {5, 12}, {6, 13},
	})
}

func fromEdges(t *testing.T, n int, edges [][2]int) *tree.Tree {
	t.Helper()
	tr := tree.New(nil)
	for i := 1; i <= n; i++ {
		if err := tr.AddNode(tree.Node{ID: strconv.Itoa(i)}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := tr.AddEdge(tree.Edge{From: strconv.Itoa(e[0]), To: strconv.Itoa(e[1])}); err != nil {
			t.Fatal(err)
		}
	}
	return tr
}

var sampleLevels = tree.LevelMap{0: 1, 1: 3, 2: 6, 3: 3}

func TestHierarchy_WorkedExample(t *testing.T) {
	sizes := []struct {
		name          string
		width, height float64
	}{
		{"unit", 1, 1},
		{"scaled", 0.3, 45.2},
	}

	for _, sz := range sizes {
		t.Run(sz.name, func(t *testing.T) {
			w, h := sz.width, sz.height
			pos, err := Hierarchy(sample(t), "1", sampleLevels, WithWidth(w), WithHeight(h))
			if err != nil {
				t.Fatalf("Hierarchy: %v", err)
			}

			d1, d2, d3 := w/3, w/6, w/3
			want := map[string]Position{
				"1":  {w / 2, 0},
				"2":  {d1 / 2, -0.25 * h},
				"3":  {d1/2 + d1, -0.25 * h},
				"4":  {d1/2 + 2*d1, -0.25 * h},
				"5":  {d2 / 2, -0.5 * h},
				"6":  {d2/2 + d2, -0.5 * h},
				"7":  {d2/2 + 2*d2, -0.5 * h},
				"8":  {d2/2 + 3*d2, -0.5 * h},
				"9":  {d2/2 + 4*d2, -0.5 * h},
				"10": {d2/2 + 5*d2, -0.5 * h},
				"11": {d3 / 2, -0.75 * h},
				"12": {d3/2 + d3, -0.75 * h},
				"13": {d3/2 + 2*d3, -0.75 * h},
			}

			if len(pos) != len(want) {
				t.Fatalf("got %d positions, want %d", len(pos), len(want))
			}
			for id, p := range want {
				got := pos[id]
				if !near(got.X, p.X) || !near(got.Y, p.Y) {
					t.Errorf("pos[%s] = (%v, %v), want (%v, %v)", id, got.X, got.Y, p.X, p.Y)
				}
			}
		})
	}
}

func TestHierarchy_UnitValues(t *testing.T) {
	pos, err := Hierarchy(sample(t), "1", sampleLevels)
	if err != nil {
		t.Fatal(err)
	}
	for id, x := range map[string]float64{"2": 1.0 / 6, "3": 0.5, "4": 5.0 / 6, "5": 1.0 / 12, "10": 11.0 / 12} {
		if !near(pos[id].X, x) {
			t.Errorf("pos[%s].X = %v, want %v", id, pos[id].X, x)
		}
	}
}

func TestHierarchy_Deterministic(t *testing.T) {
	tr := sample(t)
	for _, s := range []Strategy{StrategyLevel, StrategySubtree} {
		first, err := Hierarchy(tr, "1", nil, WithStrategy(s))
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 20; i++ {
			again, err := Hierarchy(tr, "1", nil, WithStrategy(s))
			if err != nil {
				t.Fatal(err)
			}
			for id, p := range first {
				if again[id] != p {
					t.Fatalf("%s run %d: pos[%s] = %v, want %v", s, i, id, again[id], p)
				}
			}
		}
	}
}

func TestHierarchy_DepthConsistency(t *testing.T) {
	tr := sample(t)
	depths, err := tr.Depths("1")
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range []Strategy{StrategyLevel, StrategySubtree} {
		t.Run(string(s), func(t *testing.T) {
			pos, err := Hierarchy(tr, "1", nil, WithStrategy(s), WithHeight(8))
			if err != nil {
				t.Fatal(err)
			}
			step := 8.0 / 4
			for id, d := range depths {
				if !near(pos[id].Y, -float64(d)*step) {
					t.Errorf("pos[%s].Y = %v, want %v", id, pos[id].Y, -float64(d)*step)
				}
			}
		})
	}
}

func TestHierarchy_SubtreeCentering(t *testing.T) {
	tr := sample(t)
	pos, err := Hierarchy(tr, "1", nil, WithStrategy(StrategySubtree), WithWidth(2))
	if err != nil {
		t.Fatal(err)
	}

	if !near(pos["1"].X, 1) {
		t.Errorf("root X = %v, want 1", pos["1"].X)
	}
	for _, n := range tr.Nodes() {
		kids := tr.Children(n.ID)
		if len(kids) == 0 {
			continue
		}
		sum := 0.0
		for _, k := range kids {
			sum += pos[k].X
		}
		if mean := sum / float64(len(kids)); !near(mean, pos[n.ID].X) {
			t.Errorf("children of %s centred at %v, parent at %v", n.ID, mean, pos[n.ID].X)
		}
		if len(kids) > 1 {
			gap := pos[kids[1]].X - pos[kids[0]].X
			for i := 2; i < len(kids); i++ {
				if g := pos[kids[i]].X - pos[kids[i-1]].X; !near(g, gap) {
					t.Errorf("children of %s unevenly spaced: %v vs %v", n.ID, g, gap)
				}
			}
		}
	}

	// Node 2's band is [0, 2/3]; its three children split it in thirds.
	for id, x := range map[string]float64{"5": 1.0 / 9, "6": 3.0 / 9, "7": 5.0 / 9} {
		if !near(pos[id].X, x) {
			t.Errorf("pos[%s].X = %v, want %v", id, pos[id].X, x)
		}
	}
}

func TestHierarchy_SingleNode(t *testing.T) {
	tr := fromEdges(t, 1, nil)
	for _, s := range []Strategy{StrategyLevel, StrategySubtree} {
		pos, err := Hierarchy(tr, "1", tree.LevelMap{0: 1}, WithStrategy(s), WithWidth(4), WithHeight(3))
		if err != nil {
			t.Fatal(err)
		}
		if len(pos) != 1 || pos["1"] != (Position{2, 0}) {
			t.Errorf("%s: positions = %v, want {1: (2, 0)}", s, pos)
		}
	}
}

func TestHierarchy_RootAnywhere(t *testing.T) {
	// Edge direction is ignored, so a leaf can serve as root.
	tr := sample(t)
	pos, err := Hierarchy(tr, "13", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(pos) != tr.NodeCount() {
		t.Errorf("got %d positions, want %d", len(pos), tr.NodeCount())
	}
	if pos["13"] != (Position{0.5, 0}) {
		t.Errorf("root position = %v, want (0.5, 0)", pos["13"])
	}
}

func TestHierarchy_DeepChain(t *testing.T) {
	const n = 10000
	edges := make([][2]int, 0, n-1)
	for i := 1; i < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	tr := fromEdges(t, n, edges)
	pos, err := Hierarchy(tr, "1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(pos) != n {
		t.Fatalf("got %d positions, want %d", len(pos), n)
	}
	if !near(pos[strconv.Itoa(n)].Y, -float64(n-1)/n) {
		t.Errorf("deepest Y = %v", pos[strconv.Itoa(n)].Y)
	}
}

func TestHierarchy_ZeroLevelEntries(t *testing.T) {
	padded := tree.LevelMap{0: 1, 1: 3, 2: 6, 3: 3, 4: 0, 7: 0}
	for _, s := range []Strategy{StrategyLevel, StrategySubtree} {
		t.Run(string(s), func(t *testing.T) {
			want, err := Hierarchy(sample(t), "1", sampleLevels, WithStrategy(s))
			if err != nil {
				t.Fatalf("Hierarchy: %v", err)
			}
			got, err := Hierarchy(sample(t), "1", padded, WithStrategy(s))
			if err != nil {
				t.Fatalf("Hierarchy with zero entries: %v", err)
			}
			for id, p := range want {
				if !near(got[id].X, p.X) || !near(got[id].Y, p.Y) {
					t.Errorf("node %s at %v, want %v", id, got[id], p)
				}
			}
			if !near(got["2"].Y, -0.25) || !near(got["11"].Y, -0.75) {
				t.Errorf("vertical step changed: y(2)=%v y(11)=%v", got["2"].Y, got["11"].Y)
			}
		})
	}
}

func TestHierarchy_Errors(t *testing.T) {
	cycle := fromEdges(t, 3, [][2]int{{1, 2}, {2, 3}, {3, 1}})
	forest := fromEdges(t, 4, [][2]int{{1, 2}, {3, 4}})

	tests := []struct {
		name   string
		tree   *tree.Tree
		root   string
		levels tree.LevelMap
		opts   []Option
		code   errors.Code
	}{
		{"nil tree", nil, "1", nil, nil, errors.ErrCodeStructural},
		{"empty tree", tree.New(nil), "1", nil, nil, errors.ErrCodeStructural},
		{"cycle", cycle, "1", nil, nil, errors.ErrCodeStructural},
		{"forest", forest, "1", nil, nil, errors.ErrCodeStructural},
		{"root absent", sample(t), "99", nil, nil, errors.ErrCodePrecondition},
		{"levels wrong count", sample(t), "1", tree.LevelMap{0: 1, 1: 3, 2: 5, 3: 4}, nil, errors.ErrCodePrecondition},
		{"levels missing depth", sample(t), "1", tree.LevelMap{0: 1, 1: 3, 2: 9}, nil, errors.ErrCodePrecondition},
		{"levels for another root", sample(t), "13", sampleLevels, nil, errors.ErrCodePrecondition},
		{"negative width", sample(t), "1", nil, []Option{WithWidth(-1)}, errors.ErrCodePrecondition},
		{"nan height", sample(t), "1", nil, []Option{WithHeight(math.NaN())}, errors.ErrCodePrecondition},
		{"unknown strategy", sample(t), "1", nil, []Option{WithStrategy("radial")}, errors.ErrCodeInvalidStrategy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := Hierarchy(tt.tree, tt.root, tt.levels, tt.opts...)
			if pos != nil {
				t.Errorf("positions = %v, want nil", pos)
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q (%v), want %q", got, err, tt.code)
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyLevel, false},
		{"level", StrategyLevel, false},
		{"subtree", StrategySubtree, false},
		{"radial", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStrategy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	if (Bounds(nil) != Rect{}) {
		t.Error("Bounds(nil) should be zero")
	}

	pos, err := Hierarchy(sample(t), "1", nil)
	if err != nil {
		t.Fatal(err)
	}
	r := Bounds(pos)
	if !near(r.MinX, 1.0/12) || !near(r.MaxX, 11.0/12) {
		t.Errorf("X bounds = [%v, %v], want [1/12, 11/12]", r.MinX, r.MaxX)
	}
	if !near(r.MinY, -0.75) || !near(r.MaxY, 0) {
		t.Errorf("Y bounds = [%v, %v], want [-0.75, 0]", r.MinY, r.MaxY)
	}
	if !near(r.Width(), 10.0/12) || !near(r.Height(), 0.75) {
		t.Errorf("size = %v x %v", r.Width(), r.Height())
	}
}
