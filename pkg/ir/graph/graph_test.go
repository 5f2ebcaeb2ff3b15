package graph

import (
	"reflect"
	"testing"
)

func TestToposortLeavesFirst(t *testing.T) {
	g := New[string, struct{}]()
	// a depends on b, b depends on c
	g.Put("a", "b", struct{}{})
	g.Put("b", "c", struct{}{})
	g.AddVertex("a")

	order, cyc := g.Toposort()
	if cyc != nil {
		t.Fatalf("unexpected cycle: %v", cyc.Unranked)
	}
	want := []string{"c", "b", "a"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestToposortIsPermutationAndRespectsEdges(t *testing.T) {
	g := New[int, struct{}]()
	edges := [][2]int{{1, 2}, {2, 3}, {1, 3}, {4, 3}}
	for _, e := range edges {
		g.Put(e[0], e[1], struct{}{})
	}

	order, cyc := g.Toposort()
	if cyc != nil {
		t.Fatalf("unexpected cycle")
	}
	if len(order) != 4 {
		t.Fatalf("expected permutation of all 4 vertices, got %v", order)
	}
	pos := make(map[int]int)
	for i, v := range order {
		pos[v] = i
	}
	for _, e := range edges {
		if pos[e[0]] <= pos[e[1]] {
			t.Errorf("expected %d after %d in order %v", e[0], e[1], order)
		}
	}
}

func TestToposortCycle(t *testing.T) {
	g := New[string, struct{}]()
	g.Put("a", "b", struct{}{})
	g.Put("b", "a", struct{}{})

	order, cyc := g.Toposort()
	if order != nil {
		t.Fatalf("expected nil order on cycle")
	}
	if cyc == nil {
		t.Fatal("expected cycle error")
	}
	if len(cyc.Unranked) != 2 {
		t.Fatalf("expected both vertices unranked, got %v", cyc.Unranked)
	}
}

func TestGraphContainsAndGet(t *testing.T) {
	g := New[string, int]()
	g.Put("x", "y", 42)
	if !g.Contains("x", "y") {
		t.Fatal("expected edge to exist")
	}
	v, ok := g.Get("x", "y")
	if !ok || v != 42 {
		t.Fatalf("Get = %v, %v", v, ok)
	}
	if g.Contains("y", "x") {
		t.Fatal("reverse edge should not exist")
	}
}

func TestPutReplacesLabelInPlace(t *testing.T) {
	g := New[string, int]()
	g.Put("x", "y", 1)
	g.Put("x", "y", 2)
	if len(g.Out("x")) != 1 {
		t.Fatalf("expected a single edge after replace, got %d", len(g.Out("x")))
	}
	v, _ := g.Get("x", "y")
	if v != 2 {
		t.Fatalf("expected replaced label 2, got %d", v)
	}
}
