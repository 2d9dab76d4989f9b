// Package mesh maintains a constrained Delaunay triangulation over a dynamic
// set of points and fixed edges, and the dual graph of triangle centroids that
// paths are searched over.
//
// The triangulation starts as a single root triangle formed by three dummy
// points placed far outside the bound. Every real point lies strictly inside
// the root, so insertion never has to deal with a convex hull. Triangles are
// never mutated in place: an operation destroys some triangles and creates
// others, and the destroyed triangles keep pointers to their replacements. The
// resulting DAG, periodically rebuilt over the live triangles, is the
// point-location hierarchy (see hierarchy.go).
//
// All failures inside this package are panics from the throw package. A
// Triangulation is owned by a single goroutine; no method is safe to call
// concurrently with a mutation.
package mesh

import (
	"math"
	"sort"

	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/chauncy-crib/tagprobot-sub000/internal/graph"
	"github.com/chauncy-crib/tagprobot-sub000/internal/throw"
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// How far out the dummy points sit, in multiples of the bound's larger side.
const dummyScale = 4

type Triangulation struct {
	*graph.Graph

	bound   orb.Bound
	dummies [3]geo.Point

	// Arena of the triangles created since the last compaction, on top of the
	// base they refine. Live triangles are exactly the leaves indexed by live.
	nodes       []node
	base        *rtreego.Rtree
	live        map[geo.Triangle]nodeID
	compactions int

	fixed map[geo.Point]map[geo.Point]struct{}

	// Mutation window, drained by TakeChanges
	removed map[geo.Triangle]struct{}
	touched map[geo.Triangle]struct{}

	logger *zap.Logger
}

type Option func(*Triangulation)

func WithLogger(logger *zap.Logger) Option {
	return func(t *Triangulation) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Create an empty triangulation able to hold points inside bound (inclusive).
func New(bound orb.Bound, opts ...Option) *Triangulation {
	t := &Triangulation{
		Graph:   graph.New(),
		bound:   bound,
		live:    make(map[geo.Triangle]nodeID),
		fixed:   make(map[geo.Point]map[geo.Point]struct{}),
		removed: make(map[geo.Triangle]struct{}),
		touched: make(map[geo.Triangle]struct{}),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	center := bound.Center()
	size := math.Max(bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1])
	if size < geo.Epsilon {
		size = 1
	}
	cx, cy := center[0], center[1]
	t.dummies = [3]geo.Point{
		{X: cx - dummyScale*size, Y: cy - dummyScale/2*size},
		{X: cx + dummyScale*size, Y: cy - dummyScale/2*size},
		{X: cx, Y: cy + dummyScale*size},
	}
	d := t.dummies
	t.AddEdgeAndVertices(d[0], d[1])
	t.AddEdgeAndVertices(d[1], d[2])
	t.AddEdgeAndVertices(d[0], d[2])
	rootTri := geo.NewTriangle(d[0], d[1], d[2])
	t.live[rootTri] = 0
	t.touched[rootTri] = struct{}{}
	t.compact()
	t.compactions = 0
	return t
}

func (t *Triangulation) Bound() orb.Bound {
	return t.bound
}

func (t *Triangulation) Dummies() [3]geo.Point {
	return t.dummies
}

func (t *Triangulation) IsDummy(p geo.Point) bool {
	return p == t.dummies[0] || p == t.dummies[1] || p == t.dummies[2]
}

// Whether the triangle has a dummy point as a vertex, i.e. lies at least
// partly outside the bound.
func (t *Triangulation) TouchesDummy(tri geo.Triangle) bool {
	return t.IsDummy(tri.P1) || t.IsDummy(tri.P2) || t.IsDummy(tri.P3)
}

func (t *Triangulation) InBounds(p geo.Point) bool {
	return t.bound.Contains(orb.Point{p.X, p.Y})
}

func (t *Triangulation) TriangleCount() int {
	return len(t.live)
}

// Live triangles in deterministic order.
func (t *Triangulation) Triangles() []geo.Triangle {
	tris := make([]geo.Triangle, 0, len(t.live))
	for tri := range t.live {
		tris = append(tris, tri)
	}
	sortTriangles(tris)
	return tris
}

func (t *Triangulation) IsLive(tri geo.Triangle) bool {
	_, ok := t.live[tri]
	return ok
}

// The live triangle with exactly these vertices, if any.
func (t *Triangulation) FindTriangle(a, b, c geo.Point) (geo.Triangle, bool) {
	if geo.Collinear(a, b, c) {
		return geo.Triangle{}, false
	}
	tri := geo.NewTriangle(a, b, c)
	return tri, t.IsLive(tri)
}

// Live triangles having e as an edge. There are at most two.
func (t *Triangulation) TrianglesAt(e geo.Edge) []geo.Triangle {
	if !t.HasEdge(e.P1, e.P2) {
		return nil
	}
	var tris []geo.Triangle
	for _, c := range t.CommonNeighbors(e.P1, e.P2) {
		if tri, ok := t.FindTriangle(e.P1, e.P2, c); ok {
			tris = append(tris, tri)
		}
	}
	return tris
}

// The third point of the triangle across e from p, if e is unconstrained and
// such a triangle exists. Fixed edges never yield an opposite point, which is
// what keeps them out of legalization.
func (t *Triangulation) FindOppositePoint(p geo.Point, e geo.Edge) (geo.Point, bool) {
	if t.IsFixed(e) {
		return geo.Point{}, false
	}
	return t.oppositeAcross(p, e)
}

func (t *Triangulation) oppositeAcross(p geo.Point, e geo.Edge) (geo.Point, bool) {
	side := geo.Orient(e.P1, e.P2, p)
	for _, tri := range t.TrianglesAt(e) {
		q := tri.Opposite(e)
		if q == p {
			continue
		}
		if side*geo.Orient(e.P1, e.P2, q) < 0 {
			return q, true
		}
	}
	return geo.Point{}, false
}

// Live triangles having p as a vertex, in counterclockwise order around p.
func (t *Triangulation) IncidentTriangles(p geo.Point) []geo.Triangle {
	ring := t.sortedAround(p)
	var tris []geo.Triangle
	for i := range ring {
		u, v := ring[i], ring[(i+1)%len(ring)]
		if tri, ok := t.FindTriangle(p, u, v); ok {
			tris = append(tris, tri)
		}
	}
	return tris
}

// Neighbors of p sorted counterclockwise by angle.
func (t *Triangulation) sortedAround(p geo.Point) []geo.Point {
	ring := t.Neighbors(p)
	sort.SliceStable(ring, func(i, j int) bool {
		return geo.Angle(p, ring[i]) < geo.Angle(p, ring[j])
	})
	return ring
}

func (t *Triangulation) IsFixed(e geo.Edge) bool {
	_, ok := t.fixed[e.P1][e.P2]
	return ok
}

// Whether p anchors at least one fixed edge.
func (t *Triangulation) HasFixedEdges(p geo.Point) bool {
	return len(t.fixed[p]) > 0
}

// Points joined to p by a fixed edge, in deterministic order.
func (t *Triangulation) FixedNeighbors(p geo.Point) []geo.Point {
	var points []geo.Point
	for q := range t.fixed[p] {
		points = append(points, q)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })
	return points
}

// All fixed edges in deterministic order.
func (t *Triangulation) FixedEdges() []geo.Edge {
	var edges []geo.Edge
	for a, others := range t.fixed {
		for b := range others {
			if a.Less(b) {
				edges = append(edges, geo.NewEdge(a, b))
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].P1 != edges[j].P1 {
			return edges[i].P1.Less(edges[j].P1)
		}
		return edges[i].P2.Less(edges[j].P2)
	})
	return edges
}

// Mark an existing graph edge as fixed. The adjacent triangles are touched so
// that their dual edges get recomputed.
func (t *Triangulation) fix(e geo.Edge) {
	if !t.HasEdge(e.P1, e.P2) {
		throw.Invariantf("fixing %v, which is not an edge of the triangulation", e)
	}
	for _, pair := range [2][2]geo.Point{{e.P1, e.P2}, {e.P2, e.P1}} {
		if t.fixed[pair[0]] == nil {
			t.fixed[pair[0]] = make(map[geo.Point]struct{})
		}
		t.fixed[pair[0]][pair[1]] = struct{}{}
	}
	t.touchEdge(e)
}

func (t *Triangulation) unfix(e geo.Edge) {
	for _, pair := range [2][2]geo.Point{{e.P1, e.P2}, {e.P2, e.P1}} {
		delete(t.fixed[pair[0]], pair[1])
		if len(t.fixed[pair[0]]) == 0 {
			delete(t.fixed, pair[0])
		}
	}
	t.touchEdge(e)
}

func (t *Triangulation) touchEdge(e geo.Edge) {
	for _, tri := range t.TrianglesAt(e) {
		t.touched[tri] = struct{}{}
	}
}

// Changes describes the triangles affected since the last call to
// TakeChanges. Removed triangles are no longer live (unless they were
// recreated, in which case they also appear in Touched). Touched triangles are
// live and were either created or had an edge's fixed state change.
type Changes struct {
	Removed []geo.Triangle
	Touched []geo.Triangle
}

func (c Changes) Empty() bool {
	return len(c.Removed) == 0 && len(c.Touched) == 0
}

// Return the accumulated changes and start a new window.
func (t *Triangulation) TakeChanges() Changes {
	var c Changes
	for tri := range t.removed {
		c.Removed = append(c.Removed, tri)
	}
	for tri := range t.touched {
		if t.IsLive(tri) {
			c.Touched = append(c.Touched, tri)
		}
	}
	sortTriangles(c.Removed)
	sortTriangles(c.Touched)
	t.removed = make(map[geo.Triangle]struct{})
	t.touched = make(map[geo.Triangle]struct{})
	return c
}

// Replace a set of live triangles by a set of new ones covering the same
// region. Graph edges are the caller's responsibility.
func (t *Triangulation) replace(old []geo.Triangle, created []geo.Triangle) {
	ids := make([]nodeID, len(created))
	for i, tri := range created {
		if t.IsLive(tri) {
			throw.Invariantf("creating %v, which is already live", tri)
		}
		ids[i] = t.newNode(tri)
	}
	for _, tri := range old {
		id, ok := t.live[tri]
		if !ok {
			throw.Invariantf("replacing %v, which is not live", tri)
		}
		t.nodes[id].children = ids
		delete(t.live, tri)
		delete(t.touched, tri)
		t.removed[tri] = struct{}{}
	}
	for i, tri := range created {
		t.live[tri] = ids[i]
		t.touched[tri] = struct{}{}
	}
	t.maybeCompact()
}

func (t *Triangulation) mustHaveVertex(p geo.Point) {
	if !t.HasVertex(p) {
		throw.Preconditionf("vertex %v is not in the triangulation", p)
	}
}

func sortTriangles(tris []geo.Triangle) {
	sort.Slice(tris, func(i, j int) bool {
		a, b := tris[i].Points(), tris[j].Points()
		for k := range a {
			if a[k] != b[k] {
				return a[k].Less(b[k])
			}
		}
		return false
	})
}
