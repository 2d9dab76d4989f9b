package world

// Tile ids used by text maps.
const (
	Floor      Tile = 0
	Wall       Tile = 1
	GateClosed Tile = 9
	GateOpen   Tile = 10
)

// TileClasses is a Classifier backed by explicit sets of blocked and mutable
// tile ids. Anything not listed as blocked is traversable, and anything not
// listed as mutable is permanent.
type TileClasses struct {
	blocked map[Tile]struct{}
	mutable map[Tile]struct{}
}

func NewTileClasses(blocked, mutable []Tile) *TileClasses {
	c := &TileClasses{
		blocked: make(map[Tile]struct{}, len(blocked)),
		mutable: make(map[Tile]struct{}, len(mutable)),
	}
	for _, t := range blocked {
		c.blocked[t] = struct{}{}
	}
	for _, t := range mutable {
		c.mutable[t] = struct{}{}
	}
	return c
}

// Walls and closed gates block; only gates ever change.
func DefaultTileClasses() *TileClasses {
	return NewTileClasses([]Tile{Wall, GateClosed}, []Tile{GateClosed, GateOpen})
}

func (c *TileClasses) Traversable(t Tile) bool {
	_, blocked := c.blocked[t]
	return !blocked
}

func (c *TileClasses) Permanent(t Tile) bool {
	_, mutable := c.mutable[t]
	return !mutable
}
