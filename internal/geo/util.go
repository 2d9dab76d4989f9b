package geo

import "math"

// Absolute tolerance for the orientation and incircle predicates. Map
// coordinates are integer pixel multiples, so exact ties come out as exact
// zeros; the tolerance only absorbs noise from computed points.
const Epsilon = 1e-9

// Twice the signed area of abc: positive when c is left of a->b
// (counterclockwise), negative when right, zero when collinear.
func Orient(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func Collinear(a, b, c Point) bool {
	return math.Abs(Orient(a, b, c)) < Epsilon
}

// Whether d lies strictly inside the circumcircle of abc, for either winding
// of abc. Ties (cocircular points) report false, which is what keeps flip
// legalization from cycling.
func InCircle(a, b, c, d Point) bool {
	o := Orient(a, b, c)
	if math.Abs(o) < Epsilon {
		return false
	}
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y
	ad := adx*adx + ady*ady
	bd := bdx*bdx + bdy*bdy
	cd := cdx*cdx + cdy*cdy
	det := adx*(bdy*cd-bd*cdy) - ady*(bdx*cd-bd*cdx) + ad*(bdx*cdy-bdy*cdx)
	if o < 0 {
		det = -det
	}
	return det > Epsilon
}

// Whether p lies on the closed segment ab.
func OnSegment(a, b, p Point) bool {
	if !Collinear(a, b, p) {
		return false
	}
	return p.X >= math.Min(a.X, b.X)-Epsilon && p.X <= math.Max(a.X, b.X)+Epsilon &&
		p.Y >= math.Min(a.Y, b.Y)-Epsilon && p.Y <= math.Max(a.Y, b.Y)+Epsilon
}

// Whether p lies on the open segment ab, excluding the endpoints.
func StrictlyBetween(a, b, p Point) bool {
	return p != a && p != b && OnSegment(a, b, p)
}

// Whether the open segments ab and cd cross at a single interior point.
func SegmentsCross(a, b, c, d Point) bool {
	d1 := Orient(c, d, a)
	d2 := Orient(c, d, b)
	d3 := Orient(a, b, c)
	d4 := Orient(a, b, d)
	return ((d1 > Epsilon && d2 < -Epsilon) || (d1 < -Epsilon && d2 > Epsilon)) &&
		((d3 > Epsilon && d4 < -Epsilon) || (d3 < -Epsilon && d4 > Epsilon))
}

// Angle of q around p, in (-pi, pi].
func Angle(p, q Point) float64 {
	return math.Atan2(q.Y-p.Y, q.X-p.X)
}
