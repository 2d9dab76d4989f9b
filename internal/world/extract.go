package world

import (
	"sort"

	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/chauncy-crib/tagprobot-sub000/internal/mesh"
)

// Whether the unit of grid line id between grid points k and k+1 separates a
// blocked cell from a traversable one.
func (g *Grid) boundaryUnit(id lineID, k int) bool {
	if id.horizontal {
		return g.blocked(k, id.index-1) != g.blocked(k, id.index)
	}
	return g.blocked(id.index-1, k) != g.blocked(id.index, k)
}

// Whether a boundary on a perpendicular grid line ends or passes at grid
// point k of line id.
func (g *Grid) perpendicularTouches(id lineID, k int) bool {
	cross := lineID{horizontal: !id.horizontal, index: k}
	return g.boundaryUnit(cross, id.index-1) || g.boundaryUnit(cross, id.index)
}

func (g *Grid) linePoint(id lineID, k int) geo.Point {
	if id.horizontal {
		return geo.Point{X: float64(k) * g.tileSize, Y: float64(id.index) * g.tileSize}
	}
	return geo.Point{X: float64(id.index) * g.tileSize, Y: float64(k) * g.tileSize}
}

func (g *Grid) lineLength(id lineID) int {
	if id.horizontal {
		return g.width
	}
	return g.height
}

// The wall segments lying on one grid line, in order along it.
func (g *Grid) extractLine(id lineID) []geo.Edge {
	var segments []geo.Edge
	start := -1
	n := g.lineLength(id)
	for k := 0; k <= n; k++ {
		if start >= 0 && (k == n || !g.boundaryUnit(id, k) || g.perpendicularTouches(id, k)) {
			segments = append(segments, geo.NewEdge(g.linePoint(id, start), g.linePoint(id, k)))
			start = -1
		}
		if start < 0 && k < n && g.boundaryUnit(id, k) {
			start = k
		}
	}
	return segments
}

// Re-extract the given lines and return the diff between the old and new
// segments, keeping the vertex reference counts in step.
func (g *Grid) reextract(ids []lineID) mesh.Diff {
	var d mesh.Diff
	delta := make(map[geo.Point]int)
	for _, id := range ids {
		oldSegments := g.lines[id]
		newSegments := g.extractLine(id)

		oldSet := make(map[geo.Edge]struct{}, len(oldSegments))
		for _, e := range oldSegments {
			oldSet[e] = struct{}{}
		}
		newSet := make(map[geo.Edge]struct{}, len(newSegments))
		for _, e := range newSegments {
			newSet[e] = struct{}{}
			if _, ok := oldSet[e]; !ok {
				d.ConstrainEdges = append(d.ConstrainEdges, e)
				delta[e.P1]++
				delta[e.P2]++
			}
		}
		for _, e := range oldSegments {
			if _, ok := newSet[e]; !ok {
				d.UnfixEdges = append(d.UnfixEdges, e)
				delta[e.P1]--
				delta[e.P2]--
			}
		}

		if len(newSegments) == 0 {
			delete(g.lines, id)
		} else {
			g.lines[id] = newSegments
		}
	}

	for p, change := range delta {
		before := g.vertexRefs[p]
		after := before + change
		if after == 0 {
			delete(g.vertexRefs, p)
		} else {
			g.vertexRefs[p] = after
		}
		switch {
		case before == 0 && after > 0:
			d.AddVertices = append(d.AddVertices, p)
		case before > 0 && after == 0:
			d.RemoveVertices = append(d.RemoveVertices, p)
		}
	}

	sortEdges(d.UnfixEdges)
	sortEdges(d.ConstrainEdges)
	sortPoints(d.RemoveVertices)
	sortPoints(d.AddVertices)
	return d
}

// Every wall segment currently extracted, in deterministic order.
func (g *Grid) Segments() []geo.Edge {
	var segments []geo.Edge
	for _, line := range g.lines {
		segments = append(segments, line...)
	}
	sortEdges(segments)
	return segments
}

// Every segment endpoint currently extracted, in deterministic order.
func (g *Grid) Vertices() []geo.Point {
	points := make([]geo.Point, 0, len(g.vertexRefs))
	for p := range g.vertexRefs {
		points = append(points, p)
	}
	sortPoints(points)
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

func sortPoints(points []geo.Point) {
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })
}
