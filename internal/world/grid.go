// Package world turns a tile grid into the walls of the navigation mesh.
//
// A wall boundary runs along the grid lines wherever a blocked cell meets a
// traversable one. Outside the grid counts as blocked, so the map edge is a
// wall wherever floor touches it. Boundaries are merged into maximal straight
// segments along each grid line, then split at every grid point a
// perpendicular boundary touches. That split rule guarantees no segment passes
// through another segment's endpoint, which is what lets the segments go into
// the mesh as constrained edges one to one.
package world

import (
	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/chauncy-crib/tagprobot-sub000/internal/mesh"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

type Tile int

// Classifier decides what a tile id means for navigation.
type Classifier interface {
	// Whether an agent can stand on the tile
	Traversable(Tile) bool
	// Whether the tile never changes at runtime
	Permanent(Tile) bool
}

var (
	ErrPermanentTile = errors.New("tile is permanent")
	ErrOutOfGrid     = errors.New("cell is outside the grid")
	ErrStaleChange   = errors.New("change does not match the current tile")
)

// Change reports that a cell switched from one tile to another.
type Change struct {
	X, Y     int
	From, To Tile
}

type lineID struct {
	horizontal bool
	index      int
}

// Grid is a rectangular tile map and the wall segments extracted from it.
// Cell (x, y) covers [x, x+1] * [y, y+1] in tile units; world coordinates are
// tile units times the tile size.
type Grid struct {
	width, height int
	tileSize      float64
	tiles         []Tile
	classifier    Classifier

	lines      map[lineID][]geo.Edge
	vertexRefs map[geo.Point]int
}

// Create a grid from rows of tiles. Every row must have the same length.
func NewGrid(rows [][]Tile, tileSize float64, classifier Classifier) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("empty grid")
	}
	if tileSize <= 0 {
		return nil, errors.Errorf("tile size must be positive, got %v", tileSize)
	}
	g := &Grid{
		width:      len(rows[0]),
		height:     len(rows),
		tileSize:   tileSize,
		classifier: classifier,
		lines:      make(map[lineID][]geo.Edge),
		vertexRefs: make(map[geo.Point]int),
	}
	g.tiles = make([]Tile, 0, g.width*g.height)
	for y, row := range rows {
		if len(row) != g.width {
			return nil, errors.Errorf("row %d has %d tiles, expected %d", y, len(row), g.width)
		}
		g.tiles = append(g.tiles, row...)
	}
	return g, nil
}

func (g *Grid) Width() int           { return g.width }
func (g *Grid) Height() int          { return g.height }
func (g *Grid) TileSize() float64    { return g.tileSize }
func (g *Grid) InGrid(x, y int) bool { return x >= 0 && y >= 0 && x < g.width && y < g.height }

func (g *Grid) Tile(x, y int) (Tile, bool) {
	if !g.InGrid(x, y) {
		return 0, false
	}
	return g.tiles[y*g.width+x], true
}

// The world-space area covered by the grid.
func (g *Grid) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{0, 0},
		Max: orb.Point{float64(g.width) * g.tileSize, float64(g.height) * g.tileSize},
	}
}

func (g *Grid) CellCenter(x, y int) geo.Point {
	return geo.Point{X: (float64(x) + 0.5) * g.tileSize, Y: (float64(y) + 0.5) * g.tileSize}
}

// The cell containing world point p.
func (g *Grid) CellAt(p geo.Point) (int, int, bool) {
	x, y := int(p.X/g.tileSize), int(p.Y/g.tileSize)
	if p.X < 0 || p.Y < 0 || !g.InGrid(x, y) {
		return 0, 0, false
	}
	return x, y, true
}

// Whether world point p is on a traversable cell.
func (g *Grid) Walkable(p geo.Point) bool {
	x, y, ok := g.CellAt(p)
	return ok && !g.blocked(x, y)
}

func (g *Grid) blocked(x, y int) bool {
	tile, ok := g.Tile(x, y)
	return !ok || !g.classifier.Traversable(tile)
}

// Extract every wall segment, and return the diff that adds them all to an
// empty mesh. Calling Build again starts over.
func (g *Grid) Build() mesh.Diff {
	g.lines = make(map[lineID][]geo.Edge)
	g.vertexRefs = make(map[geo.Point]int)
	var ids []lineID
	for j := 0; j <= g.height; j++ {
		ids = append(ids, lineID{horizontal: true, index: j})
	}
	for i := 0; i <= g.width; i++ {
		ids = append(ids, lineID{horizontal: false, index: i})
	}
	return g.reextract(ids)
}

// Apply a tile change and return the diff that brings a mesh built from this
// grid up to date. Only the four grid lines bordering the cell are
// re-extracted. Changes to or from a permanent tile are rejected and leave
// the grid untouched.
func (g *Grid) Apply(c Change) (mesh.Diff, error) {
	current, ok := g.Tile(c.X, c.Y)
	if !ok {
		return mesh.Diff{}, errors.Wrapf(ErrOutOfGrid, "cell (%d, %d)", c.X, c.Y)
	}
	if current != c.From {
		return mesh.Diff{}, errors.Wrapf(ErrStaleChange, "cell (%d, %d) holds %d, not %d", c.X, c.Y, current, c.From)
	}
	if g.classifier.Permanent(c.From) || g.classifier.Permanent(c.To) {
		return mesh.Diff{}, errors.Wrapf(ErrPermanentTile, "cell (%d, %d) from %d to %d", c.X, c.Y, c.From, c.To)
	}

	wasBlocked := g.blocked(c.X, c.Y)
	g.tiles[c.Y*g.width+c.X] = c.To
	if g.blocked(c.X, c.Y) == wasBlocked {
		return mesh.Diff{}, nil
	}
	return g.reextract([]lineID{
		{horizontal: true, index: c.Y},
		{horizontal: true, index: c.Y + 1},
		{horizontal: false, index: c.X},
		{horizontal: false, index: c.X + 1},
	}), nil
}
