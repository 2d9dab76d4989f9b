// Package graph implements an undirected planar graph over geo points, with an
// index of edges bucketed by the infinite line they lie on. The bucket index is
// what lets long straight walls be found, merged and split cheaply when the map
// changes.
package graph

import (
	"sort"

	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/chauncy-crib/tagprobot-sub000/internal/throw"
)

type pointSet map[geo.Point]struct{}

type Graph struct {
	adjacency map[geo.Point]pointSet
	// Every live edge appears in exactly one bucket
	collinearEdges map[geo.LineKey]map[geo.Edge]struct{}
	edgeCount      int
}

func New() *Graph {
	return &Graph{
		adjacency:      make(map[geo.Point]pointSet),
		collinearEdges: make(map[geo.LineKey]map[geo.Edge]struct{}),
	}
}

func (g *Graph) HasVertex(p geo.Point) bool {
	_, ok := g.adjacency[p]
	return ok
}

func (g *Graph) HasEdge(a, b geo.Point) bool {
	neighbors, ok := g.adjacency[a]
	if !ok {
		return false
	}
	_, ok = neighbors[b]
	return ok
}

// Number of vertices.
func (g *Graph) Len() int {
	return len(g.adjacency)
}

func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// No-op if the vertex already exists.
func (g *Graph) AddVertex(p geo.Point) {
	if g.HasVertex(p) {
		return
	}
	g.adjacency[p] = make(pointSet)
}

// Both endpoints must already be vertices. No-op if already connected.
func (g *Graph) AddEdge(a, b geo.Point) {
	g.mustHaveVertex(a)
	g.mustHaveVertex(b)
	if g.HasEdge(a, b) {
		return
	}
	e := geo.NewEdge(a, b)
	g.adjacency[a][b] = struct{}{}
	g.adjacency[b][a] = struct{}{}
	key := e.LineKey()
	bucket, ok := g.collinearEdges[key]
	if !ok {
		bucket = make(map[geo.Edge]struct{})
		g.collinearEdges[key] = bucket
	}
	bucket[e] = struct{}{}
	g.edgeCount++
}

func (g *Graph) AddEdgeAndVertices(a, b geo.Point) {
	g.AddVertex(a)
	g.AddVertex(b)
	g.AddEdge(a, b)
}

// Removes the edge between a and b if present. An endpoint left without any
// neighbors is removed as well.
func (g *Graph) RemoveEdge(a, b geo.Point) {
	g.mustHaveVertex(a)
	g.mustHaveVertex(b)
	if !g.HasEdge(a, b) {
		return
	}
	g.unlink(a, b)
	g.dropIfIsolated(a)
	g.dropIfIsolated(b)
}

// Like RemoveEdge, but a missing endpoint is tolerated rather than treated as
// a precondition failure.
func (g *Graph) RemoveEdgeAndVertices(a, b geo.Point) {
	if !g.HasEdge(a, b) {
		g.dropIfIsolated(a)
		g.dropIfIsolated(b)
		return
	}
	g.RemoveEdge(a, b)
}

// Removes p and all of its edges. Neighbors are kept even if this leaves them
// isolated.
func (g *Graph) RemoveVertex(p geo.Point) {
	g.mustHaveVertex(p)
	for n := range g.adjacency[p] {
		g.unlink(p, n)
	}
	delete(g.adjacency, p)
}

// Neighbors of p in deterministic (lexicographic) order.
func (g *Graph) Neighbors(p geo.Point) []geo.Point {
	g.mustHaveVertex(p)
	return sortedPoints(g.adjacency[p])
}

func (g *Graph) Degree(p geo.Point) int {
	g.mustHaveVertex(p)
	return len(g.adjacency[p])
}

// Points adjacent to both a and b.
func (g *Graph) CommonNeighbors(a, b geo.Point) []geo.Point {
	g.mustHaveVertex(a)
	g.mustHaveVertex(b)
	var common []geo.Point
	for n := range g.adjacency[a] {
		if _, ok := g.adjacency[b][n]; ok {
			common = append(common, n)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i].Less(common[j]) })
	return common
}

// All vertices in deterministic order.
func (g *Graph) Vertices() []geo.Point {
	points := make([]geo.Point, 0, len(g.adjacency))
	for p := range g.adjacency {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })
	return points
}

// All edges in deterministic order.
func (g *Graph) Edges() []geo.Edge {
	edges := make([]geo.Edge, 0, g.edgeCount)
	for _, bucket := range g.collinearEdges {
		for e := range bucket {
			edges = append(edges, e)
		}
	}
	sortEdges(edges)
	return edges
}

// Every edge lying on the same infinite line as e, including e itself if it
// is in the graph. e need not be in the graph.
func (g *Graph) EdgesInLineWith(e geo.Edge) []geo.Edge {
	bucket := g.collinearEdges[e.LineKey()]
	edges := make([]geo.Edge, 0, len(bucket))
	for other := range bucket {
		edges = append(edges, other)
	}
	sortEdges(edges)
	return edges
}

func (g *Graph) unlink(a, b geo.Point) {
	delete(g.adjacency[a], b)
	delete(g.adjacency[b], a)
	e := geo.NewEdge(a, b)
	key := e.LineKey()
	bucket := g.collinearEdges[key]
	delete(bucket, e)
	if len(bucket) == 0 {
		delete(g.collinearEdges, key)
	}
	g.edgeCount--
}

func (g *Graph) dropIfIsolated(p geo.Point) {
	if neighbors, ok := g.adjacency[p]; ok && len(neighbors) == 0 {
		delete(g.adjacency, p)
	}
}

func (g *Graph) mustHaveVertex(p geo.Point) {
	if !g.HasVertex(p) {
		throw.Preconditionf("vertex %v is not in the graph", p)
	}
}

func sortedPoints(set pointSet) []geo.Point {
	points := make([]geo.Point, 0, len(set))
	for p := range set {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })
	return points
}

func sortEdges(edges []geo.Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].P1 != edges[j].P1 {
			return edges[i].P1.Less(edges[j].P1)
		}
		return edges[i].P2.Less(edges[j].P2)
	})
}
