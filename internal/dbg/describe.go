package dbg

import (
	"fmt"

	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/logrusorgru/aurora"
	"github.com/paulmach/orb"
)

// Mesh is the read-only view of a triangulation the debug helpers need.
type Mesh interface {
	Bound() orb.Bound
	Triangles() []geo.Triangle
	TouchesDummy(geo.Triangle) bool
	IsFixed(geo.Edge) bool
}

// Describe names a triangle and colors the name by its role: red if it
// touches a dummy point, cyan if any of its edges is a wall, green otherwise.
func Describe(m Mesh, t geo.Triangle) string {
	name := Name(t)
	switch {
	case m.TouchesDummy(t):
		name = aurora.Red(name).String()
	case hasFixedEdge(m, t):
		name = aurora.Cyan(name).String()
	default:
		name = aurora.Green(name).String()
	}
	return fmt.Sprintf("%s%v", name, t)
}

func hasFixedEdge(m Mesh, t geo.Triangle) bool {
	for _, e := range t.Edges() {
		if m.IsFixed(e) {
			return true
		}
	}
	return false
}
