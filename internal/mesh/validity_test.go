package mesh

// This contains no actual tests. It is a helper for checking triangulation
// validity.

import (
	"errors"
	"testing"

	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/chauncy-crib/tagprobot-sub000/internal/throw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Check that a triangulation is valid. The rules are:
// 1. There are 2V-5 triangles (the hull is always the three dummy points).
// 2. The triangle areas sum to the area of the root triangle.
// 3. The graph edges are exactly the triangle edges.
// 4. Every fixed edge is a graph edge.
// 5. No unconstrained edge has its opposite point strictly inside the
//    circumcircle of the triangle on the other side.
// 6. Point location finds each triangle from its centroid.
func assertValidTriangulation(t *testing.T, tr *Triangulation) {
	t.Helper()
	triangles := tr.Triangles()
	require.Equal(t, 2*tr.Len()-5, len(triangles), "triangle count for %d vertices", tr.Len())

	d := tr.Dummies()
	rootArea := geo.NewTriangle(d[0], d[1], d[2]).Area()
	var area float64
	triangleEdges := make(map[geo.Edge]struct{})
	for _, tri := range triangles {
		area += tri.Area()
		for _, e := range tri.Edges() {
			triangleEdges[e] = struct{}{}
		}
	}
	require.InDelta(t, rootArea, area, rootArea*1e-9, "triangles must cover the root triangle")

	graphEdges := tr.Edges()
	require.Equal(t, len(triangleEdges), len(graphEdges))
	for _, e := range graphEdges {
		_, ok := triangleEdges[e]
		require.True(t, ok, "graph edge %v is not a triangle edge", e)
	}

	for _, e := range tr.FixedEdges() {
		require.True(t, tr.HasEdge(e.P1, e.P2), "fixed edge %v is missing", e)
	}

	for _, tri := range triangles {
		for _, e := range tri.Edges() {
			p := tri.Opposite(e)
			q, ok := tr.FindOppositePoint(p, e)
			if !ok {
				continue
			}
			require.False(t, geo.InCircle(p, e.P1, e.P2, q),
				"%v is inside the circumcircle of %v", q, tri)
		}
		found := tr.FindContainingTriangles(tri.Centroid())
		require.Equal(t, []geo.Triangle{tri}, found, "locating the centroid of %v", tri)
	}
}

// Check that an incrementally maintained dual matches a fresh build.
func assertDualMatches(t *testing.T, tr *Triangulation, dual *DualGraph) {
	t.Helper()
	fresh := NewDualGraph(tr)
	require.Equal(t, fresh.Vertices(), dual.Vertices())
	require.Equal(t, fresh.Edges(), dual.Edges())
	for _, c := range fresh.Vertices() {
		expected, _ := fresh.Polypoint(c)
		actual, ok := dual.Polypoint(c)
		require.True(t, ok)
		require.Equal(t, expected, actual)
	}
}

// Whether exactly one of the two diagonals of a quadrilateral is an edge.
func assertOneDiagonal(t *testing.T, tr *Triangulation, a, b, c, d geo.Point) {
	t.Helper()
	first, second := tr.HasEdge(a, c), tr.HasEdge(b, d)
	assert.True(t, first != second, "diagonals %v: %v, %v: %v",
		geo.NewEdge(a, c), first, geo.NewEdge(b, d), second)
}

func assertPrecondition(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected a precondition panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		var pe throw.PreconditionError
		assert.True(t, errors.As(err, &pe), "unexpected panic %v", err)
	}()
	f()
}
