package mesh

import (
	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/chauncy-crib/tagprobot-sub000/internal/throw"
)

// Insert a point into the triangulation, keeping it Delaunay. Inserting an
// existing vertex is a no-op. A point landing on a fixed edge splits the
// constraint: both halves stay fixed.
func (t *Triangulation) InsertVertex(p geo.Point) {
	if !t.InBounds(p) {
		throw.Preconditionf("%v is outside the triangulation bound %v", p, t.bound)
	}
	if t.HasVertex(p) {
		return
	}

	containing := t.FindContainingTriangles(p)
	switch len(containing) {
	case 1:
		tri := containing[0]
		// Point location is inclusive with a tolerance, so a point on an edge
		// can still come back with a single triangle
		if e, ok := tri.EdgeThrough(p); ok {
			if q, ok := t.oppositeAcross(tri.Opposite(e), e); ok {
				other := geo.NewTriangle(e.P1, e.P2, q)
				t.splitEdge(p, e, tri, other)
				return
			}
			throw.Preconditionf("%v lies on the outer edge %v", p, e)
		}
		t.splitInterior(p, tri)
	case 2:
		shared := containing[0].Shared(containing[1])
		if len(shared) != 2 {
			throw.Invariantf("%v is contained by non-adjacent triangles %v and %v", p, containing[0], containing[1])
		}
		t.splitEdge(p, geo.NewEdge(shared[0], shared[1]), containing[0], containing[1])
	default:
		throw.Invariantf("%v is contained by %d triangles", p, len(containing))
	}
}

// Split the triangle into three sharing p, then legalize the edges opposite p.
func (t *Triangulation) splitInterior(p geo.Point, tri geo.Triangle) {
	a, b, c := tri.P1, tri.P2, tri.P3
	t.AddVertex(p)
	t.AddEdge(p, a)
	t.AddEdge(p, b)
	t.AddEdge(p, c)
	t.replace([]geo.Triangle{tri}, []geo.Triangle{
		geo.NewTriangle(p, a, b),
		geo.NewTriangle(p, b, c),
		geo.NewTriangle(p, a, c),
	})
	t.legalize(p, geo.NewEdge(a, b))
	t.legalize(p, geo.NewEdge(b, c))
	t.legalize(p, geo.NewEdge(a, c))
}

// Split the two triangles sharing e into four around p, which lies on e.
func (t *Triangulation) splitEdge(p geo.Point, e geo.Edge, t1, t2 geo.Triangle) {
	a, b := e.P1, e.P2
	c, d := t1.Opposite(e), t2.Opposite(e)
	wasFixed := t.IsFixed(e)
	if wasFixed {
		t.unfix(e)
	}

	t.RemoveEdge(a, b)
	t.AddVertex(p)
	for _, q := range []geo.Point{a, b, c, d} {
		t.AddEdge(p, q)
	}
	t.replace([]geo.Triangle{t1, t2}, []geo.Triangle{
		geo.NewTriangle(p, a, c),
		geo.NewTriangle(p, b, c),
		geo.NewTriangle(p, a, d),
		geo.NewTriangle(p, b, d),
	})
	if wasFixed {
		t.fix(geo.NewEdge(a, p))
		t.fix(geo.NewEdge(p, b))
	}

	t.legalize(p, geo.NewEdge(a, c))
	t.legalize(p, geo.NewEdge(b, c))
	t.legalize(p, geo.NewEdge(a, d))
	t.legalize(p, geo.NewEdge(b, d))
}

// Flip e if the point across it from p lies strictly inside the circumcircle
// of p and e, then recurse on the two edges that now face p. Ties never flip.
func (t *Triangulation) legalize(p geo.Point, e geo.Edge) {
	q, ok := t.FindOppositePoint(p, e)
	if !ok {
		return
	}
	if !geo.InCircle(p, e.P1, e.P2, q) {
		return
	}
	if !t.flip(e, p, q) {
		return
	}
	t.legalize(p, geo.NewEdge(e.P1, q))
	t.legalize(p, geo.NewEdge(e.P2, q))
}

// Replace the diagonal e of the quadrilateral p, e.P1, q, e.P2 by p-q. Returns
// false, leaving the mesh alone, when the quadrilateral is not strictly convex.
func (t *Triangulation) flip(e geo.Edge, p, q geo.Point) bool {
	if !geo.SegmentsCross(p, q, e.P1, e.P2) {
		return false
	}
	t.RemoveEdge(e.P1, e.P2)
	t.AddEdge(p, q)
	t.replace(
		[]geo.Triangle{geo.NewTriangle(p, e.P1, e.P2), geo.NewTriangle(q, e.P1, e.P2)},
		[]geo.Triangle{geo.NewTriangle(p, q, e.P1), geo.NewTriangle(p, q, e.P2)},
	)
	return true
}
