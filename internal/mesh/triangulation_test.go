package mesh

import (
	"math/rand"
	"testing"

	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(size float64) orb.Bound {
	return orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{size, size}}
}

func TestNewHasOnlyTheRoot(t *testing.T) {
	tr := New(square(10))
	assert.Equal(t, 3, tr.Len())
	assert.Equal(t, 1, tr.TriangleCount())
	for _, d := range tr.Dummies() {
		assert.True(t, tr.IsDummy(d))
		assert.False(t, tr.InBounds(d))
	}
	// The root strictly encloses the bound
	root := tr.Triangles()[0]
	for _, corner := range []geo.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}} {
		assert.True(t, root.Contains(corner))
		_, onEdge := root.EdgeThrough(corner)
		assert.False(t, onEdge)
	}
	assertValidTriangulation(t, tr)
}

func TestUnitSquare(t *testing.T) {
	tr := New(square(1))
	a, b, c, d := geo.Point{X: 0, Y: 0}, geo.Point{X: 1, Y: 0}, geo.Point{X: 1, Y: 1}, geo.Point{X: 0, Y: 1}
	for _, p := range []geo.Point{a, b, c, d} {
		tr.InsertVertex(p)
	}
	assert.Equal(t, 9, tr.TriangleCount())
	assertOneDiagonal(t, tr, a, b, c, d)
	assertValidTriangulation(t, tr)

	// The square example counts 8 points: the 4 corners, the centre and the 3
	// dummies. A triangulation of 8 points with a 3 point hull has 2*8-5 = 11
	// triangles, 4 of them inside the square. The centre lies on the diagonal,
	// so the split leaves it as two edges meeting at the centre, and joins the
	// centre to the other two corners as well.
	center := geo.Point{X: 0.5, Y: 0.5}
	tr.InsertVertex(center)
	assert.Equal(t, 11, tr.TriangleCount())
	assert.Equal(t, []geo.Point{a, d, b, c}, tr.Neighbors(center))
	assert.False(t, tr.HasEdge(a, c))
	assert.False(t, tr.HasEdge(b, d))
	incident := tr.IncidentTriangles(center)
	require.Len(t, incident, 4)
	for _, tri := range incident {
		assert.False(t, tr.TouchesDummy(tri), "%v", tri)
	}
	assertValidTriangulation(t, tr)

	tr.RemoveVertex(center)
	assert.False(t, tr.HasVertex(center))
	assert.Equal(t, 9, tr.TriangleCount())
	assertOneDiagonal(t, tr, a, b, c, d)
	assertValidTriangulation(t, tr)
}

func TestInsertExistingVertexIsNoop(t *testing.T) {
	tr := New(square(10))
	p := geo.Point{X: 3, Y: 4}
	tr.InsertVertex(p)
	size := tr.HierarchySize()
	tr.InsertVertex(p)
	assert.Equal(t, size, tr.HierarchySize())
	assert.Equal(t, 3, tr.TriangleCount())
}

func TestRandomInsertRemoveStaysDelaunay(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := New(square(100))

	var points []geo.Point
	seen := make(map[geo.Point]struct{})
	for len(points) < 80 {
		// Integer coordinates give plenty of collinear and cocircular ties
		p := geo.Point{X: float64(rng.Intn(101)), Y: float64(rng.Intn(101))}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		points = append(points, p)
		tr.InsertVertex(p)
	}
	assertValidTriangulation(t, tr)

	for i, p := range points {
		if i%2 == 0 {
			tr.RemoveVertex(p)
			assertValidTriangulation(t, tr)
		}
	}
	assert.Equal(t, 3+len(points)/2, tr.Len())
}

func TestPointLocation(t *testing.T) {
	tr := New(square(10))
	a, b, c := geo.Point{X: 2, Y: 2}, geo.Point{X: 8, Y: 2}, geo.Point{X: 5, Y: 8}
	for _, p := range []geo.Point{a, b, c} {
		tr.InsertVertex(p)
	}
	inner := geo.NewTriangle(a, b, c)
	require.True(t, tr.IsLive(inner))

	t.Run("interior point", func(t *testing.T) {
		assert.Equal(t, []geo.Triangle{inner}, tr.FindContainingTriangles(geo.Point{X: 5, Y: 4}))
		tri, ok := tr.ContainingTriangle(geo.Point{X: 5, Y: 4})
		require.True(t, ok)
		assert.Equal(t, inner, tri)
	})

	t.Run("point on an edge", func(t *testing.T) {
		found := tr.FindContainingTriangles(geo.Point{X: 5, Y: 2})
		require.Len(t, found, 2)
		for _, tri := range found {
			assert.True(t, tri.HasEdge(geo.NewEdge(a, b)))
		}
		tri, ok := tr.ContainingTriangle(geo.Point{X: 5, Y: 2})
		require.True(t, ok)
		assert.Equal(t, inner, tri, "prefers the triangle inside the bound")
	})

	t.Run("vertex", func(t *testing.T) {
		assert.Len(t, tr.FindContainingTriangles(a), len(tr.IncidentTriangles(a)))
	})

	t.Run("outside the bound", func(t *testing.T) {
		_, ok := tr.ContainingTriangle(geo.Point{X: 11, Y: 5})
		assert.False(t, ok)
	})

	t.Run("lookups", func(t *testing.T) {
		tri, ok := tr.FindTriangle(c, a, b)
		assert.True(t, ok)
		assert.Equal(t, inner, tri)
		_, ok = tr.FindTriangle(a, b, geo.Point{X: 5, Y: 5})
		assert.False(t, ok)

		q, ok := tr.FindOppositePoint(c, geo.NewEdge(a, b))
		require.True(t, ok)
		assert.True(t, tr.IsDummy(q))
	})
}

func TestConstrainedEdge(t *testing.T) {
	a, b := geo.Point{X: 1, Y: 5}, geo.Point{X: 9, Y: 5}
	others := []geo.Point{{X: 5, Y: 3}, {X: 5, Y: 7}, {X: 3, Y: 4}, {X: 7, Y: 6}, {X: 4, Y: 1}, {X: 6, Y: 9}}
	build := func() *Triangulation {
		tr := New(square(10))
		tr.InsertVertex(a)
		tr.InsertVertex(b)
		for _, p := range others {
			tr.InsertVertex(p)
		}
		require.False(t, tr.HasEdge(a, b), "the segment should not be Delaunay on its own")
		return tr
	}

	t.Run("retriangulates the crossed region", func(t *testing.T) {
		tr := build()
		tr.AddConstrainedEdge(a, b)
		assert.True(t, tr.HasEdge(a, b))
		assert.True(t, tr.IsFixed(geo.NewEdge(a, b)))
		assert.Equal(t, []geo.Edge{geo.NewEdge(a, b)}, tr.FixedEdges())
		assertValidTriangulation(t, tr)

		// Idempotent
		tr.AddConstrainedEdge(b, a)
		assert.Len(t, tr.FixedEdges(), 1)
	})

	t.Run("crossing a fixed edge", func(t *testing.T) {
		tr := build()
		tr.AddConstrainedEdge(a, b)
		before := tr.Triangles()
		assertPrecondition(t, func() {
			tr.AddConstrainedEdge(geo.Point{X: 4, Y: 1}, geo.Point{X: 6, Y: 9})
		})
		assert.Equal(t, before, tr.Triangles(), "a rejected constraint leaves the mesh alone")
	})

	t.Run("inserting onto a fixed edge splits it", func(t *testing.T) {
		tr := build()
		tr.AddConstrainedEdge(a, b)
		m := geo.Point{X: 5, Y: 5}
		tr.InsertVertex(m)
		assert.False(t, tr.HasEdge(a, b))
		assert.Equal(t, []geo.Edge{geo.NewEdge(a, m), geo.NewEdge(m, b)}, tr.FixedEdges())
		assertValidTriangulation(t, tr)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		tr := build()
		assertPrecondition(t, func() { tr.AddConstrainedEdge(a, geo.Point{X: 9, Y: 9}) })
	})
}

func TestConstrainedEdgeThroughVertex(t *testing.T) {
	tr := New(square(10))
	a, m, b := geo.Point{X: 1, Y: 1}, geo.Point{X: 5, Y: 5}, geo.Point{X: 9, Y: 9}
	for _, p := range []geo.Point{a, m, b, {X: 2, Y: 8}, {X: 8, Y: 2}, {X: 6, Y: 4}, {X: 4, Y: 6}} {
		tr.InsertVertex(p)
	}
	tr.AddConstrainedEdge(a, b)
	assert.False(t, tr.HasEdge(a, b))
	assert.Equal(t, []geo.Edge{geo.NewEdge(a, m), geo.NewEdge(m, b)}, tr.FixedEdges())
	assertValidTriangulation(t, tr)
}

func TestUnfixRestoresDelaunay(t *testing.T) {
	tr := New(square(10))
	left, right := geo.Point{X: 0, Y: 5}, geo.Point{X: 10, Y: 5}
	low, high := geo.Point{X: 5, Y: 4}, geo.Point{X: 5, Y: 6}
	for _, p := range []geo.Point{left, right, low, high} {
		tr.InsertVertex(p)
	}
	require.True(t, tr.HasEdge(low, high))

	tr.AddConstrainedEdge(left, right)
	require.True(t, tr.HasEdge(left, right))
	require.False(t, tr.HasEdge(low, high))
	assertValidTriangulation(t, tr)

	tr.UnfixEdge(left, right)
	assert.Empty(t, tr.FixedEdges())
	assert.False(t, tr.HasEdge(left, right))
	assert.True(t, tr.HasEdge(low, high))
	assertValidTriangulation(t, tr)

	// Unfixing an edge that is not fixed does nothing
	size := tr.HierarchySize()
	tr.UnfixEdge(low, high)
	assert.Equal(t, size, tr.HierarchySize())
}

func TestRemovePreconditions(t *testing.T) {
	tr := New(square(10))
	a, b := geo.Point{X: 2, Y: 2}, geo.Point{X: 8, Y: 8}
	tr.InsertVertex(a)
	tr.InsertVertex(b)
	tr.AddConstrainedEdge(a, b)

	assertPrecondition(t, func() { tr.RemoveVertex(tr.Dummies()[0]) })
	assertPrecondition(t, func() { tr.RemoveVertex(a) })
	assertPrecondition(t, func() { tr.RemoveVertex(geo.Point{X: 5, Y: 5}) })
	assertPrecondition(t, func() { tr.InsertVertex(geo.Point{X: -1, Y: 5}) })

	tr.UnfixEdge(a, b)
	tr.RemoveVertex(a)
	assertValidTriangulation(t, tr)
}

func TestDynamicUpdate(t *testing.T) {
	t.Run("empty diff is a no-op", func(t *testing.T) {
		tr := New(square(10))
		tr.InsertVertex(geo.Point{X: 3, Y: 3})
		tr.TakeChanges()
		before, size := tr.Triangles(), tr.HierarchySize()

		tr.DynamicUpdate(Diff{})
		assert.Equal(t, before, tr.Triangles())
		assert.Equal(t, size, tr.HierarchySize())
		assert.True(t, tr.TakeChanges().Empty())
	})

	for _, name := range []string{"rooms", "corridor"} {
		t.Run(name, func(t *testing.T) {
			fixture := loadFixture(name)
			tr := New(fixture.bound)
			tr.TakeChanges()
			dual := NewDualGraph(tr)

			for _, outline := range fixture.obstacles {
				tr.DynamicUpdate(obstacleDiff(outline))
				dual.Update(tr, tr.TakeChanges())
				assertValidTriangulation(t, tr)
				assertDualMatches(t, tr, dual)
				for i, p := range outline {
					assert.True(t, tr.IsFixed(geo.NewEdge(p, outline[(i+1)%len(outline)])))
				}
			}

			// Fixed edges survive unrelated updates
			fixed := tr.FixedEdges()
			extra := geo.Point{X: fixture.bound.Max[0] - 1, Y: fixture.bound.Max[1] - 1}
			tr.DynamicUpdate(Diff{AddVertices: []geo.Point{extra}})
			tr.DynamicUpdate(Diff{RemoveVertices: []geo.Point{extra}})
			dual.Update(tr, tr.TakeChanges())
			assert.Equal(t, fixed, tr.FixedEdges())
			assertDualMatches(t, tr, dual)

			for i := len(fixture.obstacles) - 1; i >= 0; i-- {
				tr.DynamicUpdate(removeObstacleDiff(fixture.obstacles[i]))
				dual.Update(tr, tr.TakeChanges())
				assertValidTriangulation(t, tr)
				assertDualMatches(t, tr, dual)
			}
			assert.Equal(t, 3, tr.Len())
			assert.Empty(t, tr.FixedEdges())
		})
	}
}

func TestDualSeparatesFixedEdges(t *testing.T) {
	tr := New(square(10))
	a, b := geo.Point{X: 1, Y: 5}, geo.Point{X: 9, Y: 5}
	for _, p := range []geo.Point{a, b, {X: 5, Y: 3}, {X: 5, Y: 7}} {
		tr.InsertVertex(p)
	}
	tr.AddConstrainedEdge(a, b)
	dual := NewDualGraph(tr)

	tris := tr.TrianglesAt(geo.NewEdge(a, b))
	require.Len(t, tris, 2)
	assert.False(t, dual.HasEdge(tris[0].Centroid(), tris[1].Centroid()))

	tr.TakeChanges()
	tr.UnfixEdge(a, b)
	dual.Update(tr, tr.TakeChanges())
	assertDualMatches(t, tr, dual)

	for _, tri := range tr.Triangles() {
		p, ok := dual.Polypoint(tri.Centroid())
		require.True(t, ok)
		assert.True(t, dual.HasPolypoint(p))
		for _, n := range dual.NeighborPolypoints(p) {
			assert.Len(t, n.Triangle.Shared(p.Triangle), 2)
		}
	}
}

func TestHierarchyStaysBounded(t *testing.T) {
	tr := New(square(100))
	tr.DynamicUpdate(obstacleDiff([]geo.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}))
	tr.DynamicUpdate(obstacleDiff([]geo.Point{{X: 45, Y: 0}, {X: 55, Y: 0}, {X: 55, Y: 40}, {X: 45, Y: 40}}))
	tr.DynamicUpdate(obstacleDiff([]geo.Point{{X: 45, Y: 60}, {X: 55, Y: 60}, {X: 55, Y: 100}, {X: 45, Y: 100}}))
	tr.TakeChanges()
	dual := NewDualGraph(tr)
	pillar := []geo.Point{{X: 20, Y: 45}, {X: 30, Y: 45}, {X: 30, Y: 55}, {X: 20, Y: 55}}
	closed, open := obstacleDiff(pillar), removeObstacleDiff(pillar)

	steady := tr.TriangleCount()
	for i := 0; i < 500; i++ {
		if i%2 == 0 {
			tr.DynamicUpdate(closed)
		} else {
			tr.DynamicUpdate(open)
		}
		dual.Update(tr, tr.TakeChanges())
		require.LessOrEqual(t, tr.HierarchySize(), hierarchyGrowth*tr.TriangleCount())
	}
	assert.Equal(t, steady, tr.TriangleCount())
	assert.Positive(t, tr.Compactions())
	assertValidTriangulation(t, tr)
	assertDualMatches(t, tr, dual)

	// Point location agrees with a scan of the live triangles
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		p := geo.Point{X: rng.Float64() * 100, Y: rng.Float64() * 100}
		var expected []geo.Triangle
		for _, tri := range tr.Triangles() {
			if tri.Contains(p) {
				expected = append(expected, tri)
			}
		}
		assert.Equal(t, expected, tr.FindContainingTriangles(p), "%v", p)
	}
}
