// Package graph provides a small directed labeled graph used by the
// compiler pipeline for dependency ordering of the conversion dependency
// DAG. Ingestion's type definition order and protocol cycle check do not use
// it; they walk the schema directly.
package graph

// edgeKey identifies a directed edge by its endpoints.
type edgeKey[V comparable] struct {
	src, dst V
}

// Graph is a directed graph over comparable vertices V with edge labels E.
// Vertex insertion order is preserved, which matters: toposort ties are
// broken by that order so results are reproducible across runs.
type Graph[V comparable, E any] struct {
	vertices []V
	index    map[V]int
	edges    map[edgeKey[V]]E
	out      map[V][]V // adjacency, preserving insertion order
}

// New creates an empty graph.
func New[V comparable, E any]() *Graph[V, E] {
	return &Graph[V, E]{
		index: make(map[V]int),
		edges: make(map[edgeKey[V]]E),
		out:   make(map[V][]V),
	}
}

// AddVertex registers v if it is not already present. Idempotent.
func (g *Graph[V, E]) AddVertex(v V) {
	if _, ok := g.index[v]; ok {
		return
	}
	g.index[v] = len(g.vertices)
	g.vertices = append(g.vertices, v)
}

// Vertices returns all vertices in insertion order.
func (g *Graph[V, E]) Vertices() []V {
	out := make([]V, len(g.vertices))
	copy(out, g.vertices)
	return out
}

// Contains reports whether the edge (src, dst) exists.
func (g *Graph[V, E]) Contains(src, dst V) bool {
	_, ok := g.edges[edgeKey[V]{src, dst}]
	return ok
}

// Get returns the label of edge (src, dst), if present.
func (g *Graph[V, E]) Get(src, dst V) (E, bool) {
	e, ok := g.edges[edgeKey[V]{src, dst}]
	return e, ok
}

// Put inserts or replaces the edge (src, dst) with label e, registering both
// endpoints as vertices if new. Replacing an edge in place is how a pass may
// rewrite a single conversion without reconstructing the whole graph.
func (g *Graph[V, E]) Put(src, dst V, e E) {
	g.AddVertex(src)
	g.AddVertex(dst)
	key := edgeKey[V]{src, dst}
	if _, exists := g.edges[key]; !exists {
		g.out[src] = append(g.out[src], dst)
	}
	g.edges[key] = e
}

// Out returns the destinations of edges leaving src, in insertion order.
func (g *Graph[V, E]) Out(src V) []V {
	out := make([]V, len(g.out[src]))
	copy(out, g.out[src])
	return out
}

// Cycle is returned by Toposort when the graph is not a DAG. It carries the
// set of vertices that could not be ranked because they (transitively)
// participate in a cycle.
type Cycle[V comparable] struct {
	Unranked []V
}

func (c *Cycle[V]) Error() string {
	return "graph: cycle detected"
}

// Toposort returns a dependency-ordered (leaves-first) vertex list: for every
// edge (u, v) meaning "u depends on v", v appears before u in the result.
// Uses Kahn's algorithm over in-degree computed on the *reversed* edge
// relation (since edges point from dependent to dependency), processing the
// ready queue in vertex-insertion order so ties are broken deterministically.
func (g *Graph[V, E]) Toposort() ([]V, *Cycle[V]) {
	// inDegree[v] counts "things that must come before v can be emitted",
	// i.e. the number of vertices v depends on that have not yet been
	// emitted. We want leaves (no outgoing deps) first.
	remaining := make(map[V]int, len(g.vertices))
	for _, v := range g.vertices {
		remaining[v] = len(g.out[v])
	}
	// dependents[v] = vertices u that have an edge u -> v,
	// i.e. things that depend on v and whose remaining count drops when v
	// is emitted.
	dependents := make(map[V][]V)
	for _, v := range g.vertices {
		for _, d := range g.out[v] {
			dependents[d] = append(dependents[d], v)
		}
	}

	var ready []V
	for _, v := range g.vertices {
		if remaining[v] == 0 {
			ready = append(ready, v)
		}
	}

	var order []V
	emitted := make(map[V]bool, len(g.vertices))
	for len(ready) > 0 {
		v := ready[0]
		ready = ready[1:]
		if emitted[v] {
			continue
		}
		emitted[v] = true
		order = append(order, v)
		for _, dep := range dependents[v] {
			remaining[dep]--
			if remaining[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(g.vertices) {
		var unranked []V
		for _, v := range g.vertices {
			if !emitted[v] {
				unranked = append(unranked, v)
			}
		}
		return nil, &Cycle[V]{Unranked: unranked}
	}
	return order, nil
}
