package mesh

import (
	"math"

	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/chauncy-crib/tagprobot-sub000/internal/throw"
	"github.com/dhconnelly/rtreego"
)

// The point-location hierarchy has two layers. The base is a set of triangles
// that tiled the plane at the last compaction, indexed in an R-tree. Above it
// is a refinement DAG: a destroyed triangle lists the triangles created by the
// same operation as its children, and together they cover it. Leaves are the
// live triangles, so locating a point is an R-tree query for the base
// triangles containing it followed by a descent through their refinements.
//
// Nodes are addressed by index into the arena rather than by pointer. Once
// the arena outgrows the live mesh by hierarchyGrowth, it is rebuilt with the
// live triangles as the new base, so its size stays proportional to the mesh.

// Maximum ratio of hierarchy nodes to live triangles.
const hierarchyGrowth = 4

// Padding around base triangle bounds and query points, so points on a
// triangle's boundary still reach it.
const locateTolerance = 1e-6

type nodeID int

type node struct {
	tri      geo.Triangle
	children []nodeID
}

type baseEntry struct {
	id   nodeID
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial
func (b *baseEntry) Bounds() rtreego.Rect {
	return b.bbox
}

func (t *Triangulation) newNode(tri geo.Triangle) nodeID {
	t.nodes = append(t.nodes, node{tri: tri})
	return nodeID(len(t.nodes) - 1)
}

// Rebuild the hierarchy if it has outgrown the live mesh.
func (t *Triangulation) maybeCompact() {
	if len(t.nodes) > hierarchyGrowth*len(t.live) {
		t.compact()
	}
}

// Discard every dead node and make the live triangles the new base.
func (t *Triangulation) compact() {
	live := t.Triangles()
	t.nodes = make([]node, 0, hierarchyGrowth*len(live))
	entries := make([]rtreego.Spatial, len(live))
	for i, tri := range live {
		id := t.newNode(tri)
		t.live[tri] = id
		entries[i] = &baseEntry{id: id, bbox: triangleBounds(tri)}
	}
	t.base = rtreego.NewTree(2, 25, 50, entries...) // 2D, min 25, max 50 entries per node
	t.compactions++
}

func triangleBounds(tri geo.Triangle) rtreego.Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range tri.Points() {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	bbox, err := rtreego.NewRectFromPoints(
		rtreego.Point{minX - locateTolerance, minY - locateTolerance},
		rtreego.Point{maxX + locateTolerance, maxY + locateTolerance},
	)
	if err != nil {
		throw.Invariantf("bounds of %v: %v", tri, err)
	}
	return bbox
}

// Live triangles containing p, inclusive of their boundary. A point inside a
// triangle gives one result, a point on an edge gives two, and an existing
// vertex gives every incident triangle. Points outside the dummy triangle give
// none.
func (t *Triangulation) FindContainingTriangles(p geo.Point) []geo.Triangle {
	var stack []nodeID
	for _, item := range t.base.SearchIntersect(rtreego.Point{p.X, p.Y}.ToRect(locateTolerance)) {
		stack = append(stack, item.(*baseEntry).id)
	}

	var found []geo.Triangle
	seen := make(map[nodeID]struct{})
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		n := t.nodes[id]
		if !n.tri.Contains(p) {
			continue
		}
		if len(n.children) == 0 {
			found = append(found, n.tri)
			continue
		}
		stack = append(stack, n.children...)
	}
	sortTriangles(found)
	return found
}

// The live triangle containing p, preferring one that does not touch a dummy
// point. Returns false if p is outside the bound.
func (t *Triangulation) ContainingTriangle(p geo.Point) (geo.Triangle, bool) {
	if !t.InBounds(p) {
		return geo.Triangle{}, false
	}
	found := t.FindContainingTriangles(p)
	for _, tri := range found {
		if !t.TouchesDummy(tri) {
			return tri, true
		}
	}
	if len(found) > 0 {
		return found[0], true
	}
	return geo.Triangle{}, false
}

// Number of nodes in the hierarchy, live or not.
func (t *Triangulation) HierarchySize() int {
	return len(t.nodes)
}

// Number of times the hierarchy has been rebuilt from the live mesh.
func (t *Triangulation) Compactions() int {
	return t.compactions
}
