package dbg

import (
	"os"

	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/fogleman/gg"
	imgcat "github.com/martinlindhe/imgcat/lib"
	"github.com/pkg/errors"
)

// Padding around the mesh bound so walls on the border are visible
const drawPadding = 20

// Draw renders the mesh inside its bound, with walls in red and the path in
// yellow, and saves it as a PNG. Triangles that touch a dummy point are
// clipped away by the bound.
func Draw(m Mesh, path []geo.Point, file string, scale float64) error {
	bound := m.Bound()
	minX, minY := bound.Min[0], bound.Min[1]
	width := int(scale*(bound.Max[0]-minX)) + drawPadding*2
	height := int(scale*(bound.Max[1]-minY)) + drawPadding*2

	c := gg.NewContext(width, height)
	c.SetRGB(0, 0, 0)
	c.DrawRectangle(0, 0, float64(width), float64(height))
	c.Fill()
	// Flip the context so the origin is at the bottom left
	c.Translate(0, float64(height))
	c.Scale(1, -1)
	c.Translate(drawPadding, drawPadding)
	c.Scale(scale, scale)
	c.Translate(-minX, -minY)

	triangles := m.Triangles()
	for _, t := range triangles {
		if m.TouchesDummy(t) {
			continue
		}
		c.MoveTo(t.P1.X, t.P1.Y)
		c.LineTo(t.P2.X, t.P2.Y)
		c.LineTo(t.P3.X, t.P3.Y)
		c.ClosePath()
		c.SetRGBA(0.3, 0.2, 1, 0.4)
		c.Fill()
	}

	// Line widths are in canvas units, which are scaled
	c.SetLineWidth(1 / scale)
	c.SetRGB(0, 1, 0)
	walls := make(map[geo.Edge]struct{})
	for _, t := range triangles {
		for _, e := range t.Edges() {
			if m.IsFixed(e) {
				walls[e] = struct{}{}
				continue
			}
			c.DrawLine(e.P1.X, e.P1.Y, e.P2.X, e.P2.Y)
		}
	}
	c.Stroke()

	c.SetLineWidth(3 / scale)
	c.SetRGB(1, 0, 0)
	for e := range walls {
		c.DrawLine(e.P1.X, e.P1.Y, e.P2.X, e.P2.Y)
	}
	c.Stroke()

	if len(path) > 0 {
		c.SetRGB(1, 1, 0)
		c.SetLineWidth(2 / scale)
		c.MoveTo(path[0].X, path[0].Y)
		for _, p := range path[1:] {
			c.LineTo(p.X, p.Y)
		}
		c.Stroke()
		for _, p := range path {
			c.DrawCircle(p.X, p.Y, 3/scale)
		}
		c.Fill()
	}

	return errors.Wrapf(c.SavePNG(file), "saving %s", file)
}

// Print a PNG to the terminal (iTerm only).
func Cat(file string) {
	imgcat.CatFile(file, os.Stdout)
}
