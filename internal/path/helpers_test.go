package path

import (
	"testing"

	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/chauncy-crib/tagprobot-sub000/internal/mesh"
	"github.com/paulmach/orb"
)

// A square room of the given size, walled on all four sides, with each
// obstacle given as a counterclockwise rectangle outline.
func walledMesh(t *testing.T, size float64, obstacles ...[]geo.Point) (*mesh.Triangulation, *mesh.DualGraph) {
	t.Helper()
	tr := mesh.New(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{size, size}})
	border := []geo.Point{{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size}}
	for _, outline := range append([][]geo.Point{border}, obstacles...) {
		var d mesh.Diff
		d.AddVertices = outline
		for i, p := range outline {
			d.ConstrainEdges = append(d.ConstrainEdges, geo.NewEdge(p, outline[(i+1)%len(outline)]))
		}
		tr.DynamicUpdate(d)
	}
	tr.TakeChanges()
	return tr, mesh.NewDualGraph(tr)
}

func rect(x0, y0, x1, y1 float64) []geo.Point {
	return []geo.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func points(states []PathState) []geo.Point {
	result := make([]geo.Point, len(states))
	for i, s := range states {
		result[i] = s.Point
	}
	return result
}
