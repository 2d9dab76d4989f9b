package geo

import "math"

// Vector is a displacement between points, kept distinct from Point so that
// vertex keys are never confused with offsets.
type Vector struct {
	X, Y float64
}

func (v Vector) Add(w Vector) Vector    { return Vector{v.X + w.X, v.Y + w.Y} }
func (v Vector) Scale(f float64) Vector { return Vector{v.X * f, v.Y * f} }
func (v Vector) Cross(w Vector) float64 { return v.X*w.Y - v.Y*w.X }
func (v Vector) Dot(w Vector) float64   { return v.X*w.X + v.Y*w.Y }
func (v Vector) Length() float64        { return math.Hypot(v.X, v.Y) }

// Unit vector in the same direction; the zero vector stays zero.
func (v Vector) Normalize() Vector {
	l := v.Length()
	if l < Epsilon {
		return Vector{}
	}
	return Vector{v.X / l, v.Y / l}
}
