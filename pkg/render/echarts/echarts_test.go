package echarts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/orgtree/pkg/graph"
)

func sampleLayout() graph.Layout {
	return graph.Layout{
		Title:  "notes",
		Width:  1,
		Height: 1,
		Root:   "root",
		Nodes: []graph.PlacedNode{
			{ID: "root", X: 0.5, Y: 0, Level: 0, Weight: 625},
			{ID: "A -- 1", Label: "A", X: 0.5, Y: -0.5, Level: 1, Weight: 600},
		},
		Edges: []graph.Edge{{From: "root", To: "A -- 1"}},
	}
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHTML(sampleLayout(), &buf, Options{Labels: true}); err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"<html", "echarts", "notes", "A -- 1", "#081d58"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestHTML_PageTitle(t *testing.T) {
	out, err := HTML(sampleLayout(), Options{PageTitle: "custom page"})
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !bytes.Contains(out, []byte("custom page")) {
		t.Error("page title not rendered")
	}
}

func TestNodes(t *testing.T) {
	l := sampleLayout()
	got := nodes(l, 100)

	if len(got) != 2 {
		t.Fatalf("nodes = %d, want 2", len(got))
	}
	a := got[1]
	if a.Name != "A -- 1" {
		t.Errorf("Name = %q, want %q", a.Name, "A -- 1")
	}
	if a.X != 50 || a.Y != 50 {
		t.Errorf("position = (%v, %v), want (50, 50)", a.X, a.Y)
	}
	if a.Value != 600 {
		t.Errorf("Value = %v, want 600", a.Value)
	}
	if a.ItemStyle == nil || a.ItemStyle.Color != "#081d58" {
		t.Errorf("ItemStyle = %+v, want dark fill", a.ItemStyle)
	}
}

func TestLinks(t *testing.T) {
	got := links(sampleLayout())
	if len(got) != 1 || got[0].Source != "root" || got[0].Target != "A -- 1" {
		t.Errorf("links = %+v", got)
	}
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		name string
		l    graph.Layout
		o    Options
		want string
	}{
		{"option wins", graph.Layout{Title: "a"}, Options{PageTitle: "b"}, "b"},
		{"layout title", graph.Layout{Title: "a"}, Options{}, "a"},
		{"fallback", graph.Layout{}, Options{}, "orgtree"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageTitle(tt.l, tt.o); got != tt.want {
				t.Errorf("pageTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
