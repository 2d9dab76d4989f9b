package mesh

import (
	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/chauncy-crib/tagprobot-sub000/internal/graph"
)

// A Polypoint is the centroid of a live triangle, paired with the triangle so
// that portals can be reconstructed from a path of polypoints.
type Polypoint struct {
	geo.Point
	Triangle geo.Triangle
}

func NewPolypoint(tri geo.Triangle) Polypoint {
	return Polypoint{tri.Centroid(), tri}
}

// DualGraph has one vertex per live triangle, at its centroid, and an edge
// between the centroids of triangles sharing an unconstrained edge. Fixed
// edges are walls, so nothing in the dual crosses them.
type DualGraph struct {
	*graph.Graph
	polys map[geo.Point]geo.Triangle
}

// Build the dual of every live triangle.
func NewDualGraph(t *Triangulation) *DualGraph {
	d := &DualGraph{
		Graph: graph.New(),
		polys: make(map[geo.Point]geo.Triangle),
	}
	for _, tri := range t.Triangles() {
		d.addTriangle(t, tri)
	}
	return d
}

// Bring the dual up to date with a window of triangulation changes. Only the
// removed and touched triangles are recomputed.
func (d *DualGraph) Update(t *Triangulation, c Changes) {
	for _, group := range [][]geo.Triangle{c.Removed, c.Touched} {
		for _, tri := range group {
			centroid := tri.Centroid()
			if existing, ok := d.polys[centroid]; ok && existing == tri {
				d.RemoveVertex(centroid)
				delete(d.polys, centroid)
			}
		}
	}
	for _, tri := range c.Touched {
		d.addTriangle(t, tri)
	}
}

func (d *DualGraph) addTriangle(t *Triangulation, tri geo.Triangle) {
	centroid := tri.Centroid()
	d.AddVertex(centroid)
	d.polys[centroid] = tri
	for _, e := range tri.Edges() {
		if t.IsFixed(e) {
			continue
		}
		for _, other := range t.TrianglesAt(e) {
			if other == tri {
				continue
			}
			if oc := other.Centroid(); d.HasVertex(oc) {
				d.AddEdge(centroid, oc)
			}
		}
	}
}

// The polypoint at centroid c, if c is a vertex of the dual.
func (d *DualGraph) Polypoint(c geo.Point) (Polypoint, bool) {
	tri, ok := d.polys[c]
	if !ok {
		return Polypoint{}, false
	}
	return Polypoint{c, tri}, true
}

func (d *DualGraph) HasPolypoint(p Polypoint) bool {
	tri, ok := d.polys[p.Point]
	return ok && tri == p.Triangle
}

// Polypoints adjacent to p in the dual, in deterministic order.
func (d *DualGraph) NeighborPolypoints(p Polypoint) []Polypoint {
	neighbors := d.Neighbors(p.Point)
	polys := make([]Polypoint, len(neighbors))
	for i, n := range neighbors {
		polys[i] = Polypoint{n, d.polys[n]}
	}
	return polys
}
