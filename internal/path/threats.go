package path

import (
	"math"

	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/dhconnelly/rtreego"
)

// Hostiles closer than this are treated as being at this distance, so the
// penalty stays finite.
const minThreatDistance = 1

// Side of the box stored for a point hostile; rtreego rejects empty rects.
const threatTolerance = 0.01

type threat struct {
	pos  geo.Point
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial
func (t *threat) Bounds() rtreego.Rect {
	return t.bbox
}

// ThreatIndex is a snapshot of hostile positions, indexed for radius queries.
// Positions change every tick, so an index is built per tick and never
// updated.
type ThreatIndex struct {
	tree  *rtreego.Rtree
	count int
}

func NewThreatIndex(hostiles ...geo.Point) *ThreatIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node
	for _, h := range hostiles {
		tree.Insert(&threat{pos: h, bbox: rtreego.Point{h.X, h.Y}.ToRect(threatTolerance)})
	}
	return &ThreatIndex{tree: tree, count: len(hostiles)}
}

func (ti *ThreatIndex) Len() int {
	return ti.count
}

// Hostiles within radius of p.
func (ti *ThreatIndex) Within(p geo.Point, radius float64) []geo.Point {
	if ti.count == 0 || radius <= 0 {
		return nil
	}
	bbox, err := rtreego.NewRect(
		rtreego.Point{p.X - radius, p.Y - radius},
		[]float64{2 * radius, 2 * radius},
	)
	if err != nil {
		return nil
	}
	var found []geo.Point
	for _, item := range ti.tree.SearchIntersect(bbox) {
		h := item.(*threat).pos
		if h.Dist(p) <= radius {
			found = append(found, h)
		}
	}
	return found
}

// Sum of penalty / distance over the hostiles within radius of p.
func (ti *ThreatIndex) Penalty(p geo.Point, penalty, radius float64) float64 {
	var total float64
	for _, h := range ti.Within(p, radius) {
		total += penalty / math.Max(h.Dist(p), minThreatDistance)
	}
	return total
}
