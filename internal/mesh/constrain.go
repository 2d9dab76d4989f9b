package mesh

import (
	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/chauncy-crib/tagprobot-sub000/internal/throw"
)

// Force the edge a-b into the triangulation and mark it fixed. Both endpoints
// must already be vertices.
//
// If the edge already exists it is only marked. Otherwise every triangle the
// segment crosses is deleted, leaving a pseudo-polygon on each side of the new
// edge, and each side is retriangulated. If the segment runs through another
// vertex, the constraint is split there and both pieces are inserted. Crossing
// an existing fixed edge is a precondition failure.
func (t *Triangulation) AddConstrainedEdge(a, b geo.Point) {
	t.mustHaveVertex(a)
	t.mustHaveVertex(b)
	e := geo.NewEdge(a, b)
	if t.HasEdge(a, b) {
		t.fix(e)
		return
	}

	w, ok := t.walkSegment(a, b)
	if !ok {
		// Blocked by a vertex on the segment
		t.AddConstrainedEdge(a, w.hit)
		t.AddConstrainedEdge(w.hit, b)
		return
	}

	for _, crossed := range w.crossedEdges {
		t.RemoveEdge(crossed.P1, crossed.P2)
	}
	t.AddEdge(a, b)

	var created []geo.Triangle
	created = t.triangulatePseudoPolygon(w.upper, a, b, created)
	created = t.triangulatePseudoPolygon(w.lower, a, b, created)
	t.replace(w.crossedTriangles, created)
	t.fix(e)
}

// Result of walking from a to b through the triangulation.
type segmentWalk struct {
	crossedTriangles []geo.Triangle
	crossedEdges     []geo.Edge
	// Chains of points strictly left (upper) and right (lower) of a->b, in the
	// order the walk meets them, excluding the endpoints.
	upper, lower []geo.Point
	// A vertex lying strictly inside the segment, when the walk was blocked
	hit geo.Point
}

// Walk the triangles crossed by the open segment a-b. This only reads the
// mesh, so a failure part way leaves it untouched. Returns false with hit set
// if the segment runs through a vertex.
func (t *Triangulation) walkSegment(a, b geo.Point) (segmentWalk, bool) {
	var w segmentWalk

	// Find the triangle around a that the segment leaves through
	var (
		tri      geo.Triangle
		exit     geo.Edge
		foundTri bool
	)
	for _, n := range t.Neighbors(a) {
		if geo.StrictlyBetween(a, b, n) {
			w.hit = n
			return w, false
		}
	}
	for _, candidate := range t.IncidentTriangles(a) {
		e := edgeOpposite(candidate, a)
		if geo.SegmentsCross(a, b, e.P1, e.P2) {
			tri, exit, foundTri = candidate, e, true
			break
		}
	}
	if !foundTri {
		throw.Invariantf("no triangle around %v is crossed by the segment to %v", a, b)
	}

	w.crossedTriangles = append(w.crossedTriangles, tri)
	for {
		if t.IsFixed(exit) {
			throw.Preconditionf("constrained edge %v crosses fixed edge %v", geo.NewEdge(a, b), exit)
		}
		w.crossedEdges = append(w.crossedEdges, exit)
		w.addChainPoints(a, b, exit)

		q, ok := t.oppositeAcross(tri.Opposite(exit), exit)
		if !ok {
			throw.Invariantf("segment %v leaves the triangulation through %v", geo.NewEdge(a, b), exit)
		}
		next := geo.NewTriangle(exit.P1, exit.P2, q)
		w.crossedTriangles = append(w.crossedTriangles, next)
		if q == b {
			return w, true
		}
		if geo.StrictlyBetween(a, b, q) {
			w.hit = q
			return w, false
		}

		// Continue through whichever remaining edge of next the segment crosses
		left, right := exit.P1, exit.P2
		if geo.Orient(a, b, left) < 0 {
			left, right = right, left
		}
		if geo.Orient(a, b, q) > 0 {
			exit = geo.NewEdge(q, right)
		} else {
			exit = geo.NewEdge(left, q)
		}
		tri = next
	}
}

func (w *segmentWalk) addChainPoints(a, b geo.Point, crossed geo.Edge) {
	for _, p := range []geo.Point{crossed.P1, crossed.P2} {
		if geo.Orient(a, b, p) > 0 {
			if len(w.upper) == 0 || w.upper[len(w.upper)-1] != p {
				w.upper = append(w.upper, p)
			}
		} else {
			if len(w.lower) == 0 || w.lower[len(w.lower)-1] != p {
				w.lower = append(w.lower, p)
			}
		}
	}
}

// Triangulate the pseudo-polygon formed by the edge a-b and the chain of
// points between them, appending the triangles to acc. The chosen apex c is
// one whose circumcircle with a and b holds no other chain point, which makes
// the result constrained Delaunay; the chain then splits at c and each half is
// handled the same way.
func (t *Triangulation) triangulatePseudoPolygon(chain []geo.Point, a, b geo.Point, acc []geo.Triangle) []geo.Triangle {
	if len(chain) == 0 {
		return acc
	}
	ci := -1
	for i, p := range chain {
		if geo.Collinear(a, b, p) {
			continue
		}
		if ci < 0 || geo.InCircle(a, b, chain[ci], p) {
			ci = i
		}
	}
	if ci < 0 {
		throw.Invariantf("pseudo-polygon on %v has only collinear points", geo.NewEdge(a, b))
	}
	c := chain[ci]
	t.AddEdge(a, c)
	t.AddEdge(c, b)
	acc = append(acc, geo.NewTriangle(a, b, c))
	acc = t.triangulatePseudoPolygon(chain[:ci], a, c, acc)
	acc = t.triangulatePseudoPolygon(chain[ci+1:], c, b, acc)
	return acc
}

// Drop the constraint on a-b and restore the Delaunay property around it with
// Lawson flips. Unfixing an edge that is not fixed is a no-op.
func (t *Triangulation) UnfixEdge(a, b geo.Point) {
	e := geo.NewEdge(a, b)
	if !t.IsFixed(e) {
		return
	}
	t.unfix(e)

	queue := []geo.Edge{e}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		if t.IsFixed(e) || !t.HasEdge(e.P1, e.P2) {
			continue
		}
		tris := t.TrianglesAt(e)
		if len(tris) != 2 {
			continue
		}
		p, q := tris[0].Opposite(e), tris[1].Opposite(e)
		if !geo.InCircle(p, e.P1, e.P2, q) {
			continue
		}
		if !t.flip(e, p, q) {
			continue
		}
		queue = append(queue,
			geo.NewEdge(p, e.P1), geo.NewEdge(p, e.P2),
			geo.NewEdge(q, e.P1), geo.NewEdge(q, e.P2))
	}
}

// The edge of tri not touching p.
func edgeOpposite(tri geo.Triangle, p geo.Point) geo.Edge {
	var rest []geo.Point
	for _, q := range tri.Points() {
		if q != p {
			rest = append(rest, q)
		}
	}
	return geo.NewEdge(rest[0], rest[1])
}
