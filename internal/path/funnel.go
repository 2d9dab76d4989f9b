package path

import (
	"math"

	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/chauncy-crib/tagprobot-sub000/internal/mesh"
	"github.com/chauncy-crib/tagprobot-sub000/internal/throw"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Portal is the edge shared by two consecutive triangles of a path, with its
// endpoints named as seen when walking through it.
type Portal struct {
	Left, Right geo.Point
}

// Corridor is everything the funnel pass needs, copied out of the mesh. It
// holds no reference to the mesh, so string pulling can run on another
// goroutine while the mesh keeps changing.
type Corridor struct {
	Start, Goal geo.Point
	// Portal corners are already pushed away from the walls meeting there, so
	// the funnel bends around the points the path actually goes through.
	Portals []Portal
	// Paths too short to smooth are passed through as is
	passthrough bool
	raw         []geo.Point
}

// Extract the corridor of a path found by a Finder. clearance is how far
// path bends are pushed away from wall corners.
func BuildCorridor(states []PathState, t *mesh.Triangulation, clearance float64) Corridor {
	if len(states) <= 2 {
		raw := make([]geo.Point, len(states))
		for i, s := range states {
			raw[i] = s.Point
		}
		return Corridor{passthrough: true, raw: raw}
	}

	c := Corridor{
		Start: states[0].Point,
		Goal:  states[len(states)-1].Point,
	}
	var tris []geo.Triangle
	for _, s := range states {
		if len(tris) == 0 || tris[len(tris)-1] != s.Triangle {
			tris = append(tris, s.Triangle)
		}
	}
	moved := make(map[geo.Point]geo.Point)
	for i := 0; i+1 < len(tris); i++ {
		shared := tris[i].Shared(tris[i+1])
		if len(shared) != 2 {
			throw.Invariantf("consecutive path triangles %v and %v share %d points", tris[i], tris[i+1], len(shared))
		}
		from := tris[i].Opposite(geo.NewEdge(shared[0], shared[1]))
		portal := Portal{Left: shared[0], Right: shared[1]}
		if geo.Orient(from, portal.Right, portal.Left) < 0 {
			portal.Left, portal.Right = portal.Right, portal.Left
		}
		for _, corner := range shared {
			if _, ok := moved[corner]; !ok {
				moved[corner] = clearancePoint(t, corner, tris[i].Centroid(), clearance)
			}
		}
		pulled := Portal{Left: moved[portal.Left], Right: moved[portal.Right]}
		// A portal narrower than the clearance allows keeps its corners
		if pulled.Left.Sub(pulled.Right).Dot(portal.Left.Sub(portal.Right)) <= 0 {
			pulled = portal
		}
		c.Portals = append(c.Portals, pulled)
	}
	return c
}

// The point clearance away from corner, directly away from the fixed edges
// meeting there. Corners with no fixed edges, or whose edges cancel out, are
// not moved. Neither is a corner where moving would leave the free sector
// that inside lies in, which is the case at a concave wall corner.
func clearancePoint(t *mesh.Triangulation, corner, inside geo.Point, clearance float64) geo.Point {
	if clearance <= 0 {
		return corner
	}
	fixed := t.FixedNeighbors(corner)
	var sum geo.Vector
	for _, n := range fixed {
		sum = sum.Add(n.Sub(corner).Normalize())
	}
	dir := sum.Normalize()
	if dir == (geo.Vector{}) {
		return corner
	}
	p := corner.Add(dir.Scale(-clearance))
	if !sameSector(corner, fixed, inside, p) {
		return corner
	}
	return p
}

// Whether a and b lie in the same sector around c, where the sectors are
// bounded by the rays from c through each of walls.
func sameSector(c geo.Point, walls []geo.Point, a, b geo.Point) bool {
	if len(walls) < 2 {
		return true
	}
	from := geo.Angle(c, a)
	next := math.Inf(1)
	for _, w := range walls {
		next = math.Min(next, ccwAngle(from, geo.Angle(c, w)))
	}
	return ccwAngle(from, geo.Angle(c, b)) < next
}

// Counterclockwise turn from angle a to angle b, in [0, 2π).
func ccwAngle(a, b float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d
}

// Pull the path taut through the corridor with the simple stupid funnel
// algorithm. The result starts at Start and ends at Goal; every point in
// between is a portal corner the path has to bend around.
func (c Corridor) StringPull() []geo.Point {
	if c.passthrough {
		return append([]geo.Point(nil), c.raw...)
	}

	portals := make([]Portal, 0, len(c.Portals)+2)
	portals = append(portals, Portal{c.Start, c.Start})
	portals = append(portals, c.Portals...)
	portals = append(portals, Portal{c.Goal, c.Goal})

	path := []geo.Point{c.Start}
	apex, left, right := c.Start, c.Start, c.Start
	apexIndex, leftIndex, rightIndex := 0, 0, 0

	for i := 1; i < len(portals); i++ {
		l, r := portals[i].Left, portals[i].Right

		// Update the right side
		if geo.Orient(apex, right, r) >= 0 {
			if apex == right || geo.Orient(apex, left, r) < 0 {
				// Tighten the funnel
				right = r
				rightIndex = i
			} else {
				// Right crossed over left: left is a corner of the path
				path = appendCorner(path, left)
				apex = left
				apexIndex = leftIndex
				left, right = apex, apex
				leftIndex, rightIndex = apexIndex, apexIndex
				i = apexIndex
				continue
			}
		}

		// Update the left side
		if geo.Orient(apex, left, l) <= 0 {
			if apex == left || geo.Orient(apex, right, l) > 0 {
				left = l
				leftIndex = i
			} else {
				path = appendCorner(path, right)
				apex = right
				apexIndex = rightIndex
				left, right = apex, apex
				leftIndex, rightIndex = apexIndex, apexIndex
				i = apexIndex
				continue
			}
		}
	}

	if path[len(path)-1] != c.Goal {
		path = append(path, c.Goal)
	}
	return path
}

func appendCorner(path []geo.Point, corner geo.Point) []geo.Point {
	if path[len(path)-1] == corner {
		return path
	}
	return append(path, corner)
}

// Extract the corridor and pull it taut in one go.
func Smooth(states []PathState, t *mesh.Triangulation, clearance float64) []geo.Point {
	return BuildCorridor(states, t, clearance).StringPull()
}

// Total length of a polyline.
func Length(points []geo.Point) float64 {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = orb.Point{p.X, p.Y}
	}
	return planar.Length(ls)
}
