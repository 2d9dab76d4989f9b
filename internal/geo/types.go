package geo

import (
	"fmt"
	"math"
	"sort"

	"github.com/chauncy-crib/tagprobot-sub000/internal/throw"
)

// Points are plain values. They are compared exactly and used directly as map
// keys, so a point must never be recomputed from other points when it is meant
// to refer to an existing vertex.
type Point struct {
	X float64
	Y float64
}

// Lexicographic ordering: X first, then Y.
func (p Point) Less(q Point) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	return p.Y < q.Y
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

func (p Point) Sub(q Point) Vector { return Vector{p.X - q.X, p.Y - q.Y} }
func (p Point) Add(v Vector) Point { return Point{p.X + v.X, p.Y + v.Y} }

func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Edges are unordered. NewEdge normalizes so that P1 sorts before P2, which
// makes Edge usable as a map key.
type Edge struct {
	P1, P2 Point
}

func NewEdge(a, b Point) Edge {
	if a == b {
		throw.Preconditionf("degenerate edge at %v", a)
	}
	if b.Less(a) {
		a, b = b, a
	}
	return Edge{a, b}
}

func (e Edge) String() string {
	return fmt.Sprintf("%v-%v", e.P1, e.P2)
}

func (e Edge) Has(p Point) bool {
	return e.P1 == p || e.P2 == p
}

// The endpoint that is not p. p must be an endpoint.
func (e Edge) Other(p Point) Point {
	switch p {
	case e.P1:
		return e.P2
	case e.P2:
		return e.P1
	}
	throw.Preconditionf("%v is not an endpoint of %v", p, e)
	return Point{}
}

func (e Edge) Length() float64 {
	return e.P1.Dist(e.P2)
}

// LineKey identifies the infinite line through an edge. Values are rounded so
// that edges computed from the same grid agree despite float noise.
type LineKey struct {
	Slope, Intercept float64
}

const lineKeyPrecision = 1e6

func (e Edge) LineKey() LineKey {
	dx := e.P2.X - e.P1.X
	if math.Abs(dx) < Epsilon {
		// Vertical: the intercept is the x coordinate
		return LineKey{math.Inf(1), roundKey(e.P1.X)}
	}
	slope := (e.P2.Y - e.P1.Y) / dx
	return LineKey{roundKey(slope), roundKey(e.P1.Y - slope*e.P1.X)}
}

func roundKey(v float64) float64 {
	r := math.Round(v*lineKeyPrecision) / lineKeyPrecision
	if r == 0 {
		return 0 // fold -0
	}
	return r
}

// Triangles are normalized by sorting their points, so two triangles over the
// same points compare equal regardless of construction order. Orientation is
// therefore not stored; use Orient when it matters.
type Triangle struct {
	P1, P2, P3 Point
}

func NewTriangle(a, b, c Point) Triangle {
	if Collinear(a, b, c) {
		throw.Preconditionf("degenerate triangle %v %v %v", a, b, c)
	}
	pts := [3]Point{a, b, c}
	sort.Slice(pts[:], func(i, j int) bool { return pts[i].Less(pts[j]) })
	return Triangle{pts[0], pts[1], pts[2]}
}

func (t Triangle) String() string {
	return fmt.Sprintf("△%v%v%v", t.P1, t.P2, t.P3)
}

func (t Triangle) Points() [3]Point {
	return [3]Point{t.P1, t.P2, t.P3}
}

func (t Triangle) Edges() [3]Edge {
	return [3]Edge{NewEdge(t.P1, t.P2), NewEdge(t.P2, t.P3), NewEdge(t.P1, t.P3)}
}

func (t Triangle) Has(p Point) bool {
	return t.P1 == p || t.P2 == p || t.P3 == p
}

func (t Triangle) HasEdge(e Edge) bool {
	return t.Has(e.P1) && t.Has(e.P2)
}

// The vertex not on edge e. e must be an edge of t.
func (t Triangle) Opposite(e Edge) Point {
	for _, p := range t.Points() {
		if !e.Has(p) {
			return p
		}
	}
	throw.Preconditionf("%v has no vertex opposite %v", t, e)
	return Point{}
}

// The points t shares with other, in t's order.
func (t Triangle) Shared(other Triangle) []Point {
	var shared []Point
	for _, p := range t.Points() {
		if other.Has(p) {
			shared = append(shared, p)
		}
	}
	return shared
}

func (t Triangle) Centroid() Point {
	return Point{(t.P1.X + t.P2.X + t.P3.X) / 3, (t.P1.Y + t.P2.Y + t.P3.Y) / 3}
}

// Always positive; triangles are never degenerate.
func (t Triangle) Area() float64 {
	return math.Abs(Orient(t.P1, t.P2, t.P3)) / 2
}

// Inclusive containment: points on the boundary are contained.
func (t Triangle) Contains(p Point) bool {
	d1 := Orient(t.P1, t.P2, p)
	d2 := Orient(t.P2, t.P3, p)
	d3 := Orient(t.P3, t.P1, p)
	hasNeg := d1 < -Epsilon || d2 < -Epsilon || d3 < -Epsilon
	hasPos := d1 > Epsilon || d2 > Epsilon || d3 > Epsilon
	return !(hasNeg && hasPos)
}

// The edge of t that p lies on, if any.
func (t Triangle) EdgeThrough(p Point) (Edge, bool) {
	for _, e := range t.Edges() {
		if OnSegment(e.P1, e.P2, p) {
			return e, true
		}
	}
	return Edge{}, false
}

// Whether p is strictly inside the circumcircle of t.
func (t Triangle) CircumcircleContains(p Point) bool {
	return InCircle(t.P1, t.P2, t.P3, p)
}
