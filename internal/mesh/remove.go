package mesh

import (
	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/chauncy-crib/tagprobot-sub000/internal/throw"
)

// Remove a vertex and retriangulate the hole it leaves, keeping the
// triangulation Delaunay. The vertex must not be a dummy point and must not
// anchor a fixed edge; unfix its edges first.
//
// The hole is filled by clipping ears off the ring of former neighbors. An ear
// is three consecutive ring points that turn left and whose circumcircle holds
// no other ring point. When several ears qualify, any of them gives a valid
// result; the first found in ring order is used.
func (t *Triangulation) RemoveVertex(p geo.Point) {
	t.mustHaveVertex(p)
	if t.IsDummy(p) {
		throw.Preconditionf("cannot remove dummy point %v", p)
	}
	if t.HasFixedEdges(p) {
		throw.Preconditionf("cannot remove %v while it anchors fixed edges", p)
	}

	incident := t.IncidentTriangles(p)
	ring := t.sortedAround(p)
	if len(incident) != len(ring) {
		throw.Invariantf("%v has %d neighbors but %d incident triangles", p, len(ring), len(incident))
	}

	// Work out every ear before touching the mesh
	var ears []geo.Triangle
	var diagonals []geo.Edge
	for len(ring) > 3 {
		i, ok := findEar(ring)
		if !ok {
			throw.Invariantf("no legal ear while removing %v from ring %v", p, ring)
		}
		n := len(ring)
		k := (i + 1) % n
		u, v, w := ring[i], ring[k], ring[(i+2)%n]
		ears = append(ears, geo.NewTriangle(u, v, w))
		diagonals = append(diagonals, geo.NewEdge(u, w))
		ring = append(ring[:k], ring[k+1:]...)
	}
	ears = append(ears, geo.NewTriangle(ring[0], ring[1], ring[2]))

	t.Graph.RemoveVertex(p)
	for _, d := range diagonals {
		t.AddEdge(d.P1, d.P2)
	}
	t.replace(incident, ears)
}

// Index i such that ring[i], ring[i+1], ring[i+2] (cyclically) is a Delaunay
// ear of the counterclockwise ring.
func findEar(ring []geo.Point) (int, bool) {
	n := len(ring)
outer:
	for i := 0; i < n; i++ {
		u, v, w := ring[i], ring[(i+1)%n], ring[(i+2)%n]
		if geo.Orient(u, v, w) <= geo.Epsilon {
			continue
		}
		for j := 0; j < n; j++ {
			if j == i || j == (i+1)%n || j == (i+2)%n {
				continue
			}
			if geo.InCircle(u, v, w, ring[j]) {
				continue outer
			}
		}
		return i, true
	}
	return 0, false
}
