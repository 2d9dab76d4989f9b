// A dynamic navigation mesh for agents moving through a tile world.
//
// The walkable area of a tile grid is covered by a constrained Delaunay
// triangulation whose fixed edges are the walls. Paths are found with A* over
// the triangles and then pulled taut with a funnel pass, keeping a clearance
// from wall corners. When tiles change at runtime (gates opening and closing),
// only the walls around the changed cells are retriangulated.
//
// A NavMesh is not safe for concurrent use. Keep it on one goroutine, and use a
// Navigator to move the smoothing work off that goroutine.
package navmesh

import (
	"github.com/chauncy-crib/tagprobot-sub000/internal/config"
	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/chauncy-crib/tagprobot-sub000/internal/mesh"
	"github.com/chauncy-crib/tagprobot-sub000/internal/path"
	"github.com/chauncy-crib/tagprobot-sub000/internal/throw"
	"github.com/chauncy-crib/tagprobot-sub000/internal/world"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Point = geo.Point
type Triangle = geo.Triangle
type Agent = path.Agent

var ErrOutOfBounds = errors.New("point is outside the mesh")

type NavMesh struct {
	grid   *world.Grid
	mesh   *mesh.Triangulation
	dual   *mesh.DualGraph
	finder *path.Finder
	cfg    *config.Config
	logger *zap.Logger
}

// Build the mesh for a grid. A nil config uses the defaults, and a nil logger
// discards everything.
func New(grid *world.Grid, cfg *config.Config, logger *zap.Logger) (nm *NavMesh, err error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if grid.TileSize() != cfg.Mesh.TileSize {
		return nil, errors.Wrapf(config.ErrInvalid, "mesh.tile_size is %v but the grid's tiles are %v", cfg.Mesh.TileSize, grid.TileSize())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	defer func() {
		if recoveredErr := throw.Recover(recover()); recoveredErr != nil {
			nm = nil
			err = errors.Wrap(recoveredErr, "building mesh")
		}
	}()

	tr := mesh.New(grid.Bound(), mesh.WithLogger(logger))
	tr.DynamicUpdate(grid.Build())
	tr.TakeChanges()
	dual := mesh.NewDualGraph(tr)
	finder := path.NewFinder(tr, dual, path.Options{
		EnemyPenalty: cfg.Path.EnemyPenalty,
		EnemyRadius:  cfg.Path.EnemyRadius,
	}, logger)

	logger.Info("built navigation mesh",
		zap.Int("width", grid.Width()),
		zap.Int("height", grid.Height()),
		zap.Int("vertices", tr.Len()),
		zap.Int("triangles", tr.TriangleCount()),
		zap.Int("walls", len(tr.FixedEdges())),
	)
	return &NavMesh{grid: grid, mesh: tr, dual: dual, finder: finder, cfg: cfg, logger: logger}, nil
}

func (nm *NavMesh) Grid() *world.Grid            { return nm.grid }
func (nm *NavMesh) Mesh() *mesh.Triangulation    { return nm.mesh }
func (nm *NavMesh) Dual() *mesh.DualGraph        { return nm.dual }
func (nm *NavMesh) Config() *config.Config       { return nm.cfg }
func (nm *NavMesh) TriangleCount() int           { return nm.mesh.TriangleCount() }
func (nm *NavMesh) InBounds(p geo.Point) bool    { return nm.mesh.InBounds(p) }
func (nm *NavMesh) Walls() []geo.Edge            { return nm.mesh.FixedEdges() }
func (nm *NavMesh) Triangles() []geo.Triangle    { return nm.mesh.Triangles() }
func (nm *NavMesh) SetThreats(hostiles ...Point) { nm.finder.SetThreats(path.NewThreatIndex(hostiles...)) }

// The triangle containing p, preferring one that doesn't touch a dummy point.
func (nm *NavMesh) ContainingTriangle(p geo.Point) (geo.Triangle, bool) {
	return nm.mesh.ContainingTriangle(p)
}

// Find a smoothed path from start to goal. No path is not an error: the result
// is nil with a nil error.
func (nm *NavMesh) ShortestPath(start, goal Point, agent Agent) (result []Point, err error) {
	corridor, err := nm.Corridor(start, goal, agent)
	if err != nil || corridor == nil {
		return nil, err
	}
	return corridor.StringPull(), nil
}

// Run A* and extract the corridor for the funnel pass, without pulling it
// taut. The corridor holds no reference to the mesh. Returns nil with a nil
// error if there is no path.
func (nm *NavMesh) Corridor(start, goal Point, agent Agent) (corridor *path.Corridor, err error) {
	for _, p := range []Point{start, goal} {
		if !nm.mesh.InBounds(p) {
			return nil, errors.Wrapf(ErrOutOfBounds, "%v", p)
		}
	}
	defer func() {
		if recoveredErr := throw.Recover(recover()); recoveredErr != nil {
			corridor = nil
			err = recoveredErr
		}
	}()
	states := nm.finder.ShortestPath(start, goal, agent)
	if states == nil {
		return nil, nil
	}
	c := path.BuildCorridor(states, nm.mesh, nm.cfg.Path.Clearance)
	return &c, nil
}

// Apply a diff to the mesh and bring the dual graph up to date. If a
// precondition fails partway, the operations before it stay applied and the
// dual graph still matches the mesh.
func (nm *NavMesh) DynamicUpdate(d mesh.Diff) (err error) {
	defer func() {
		r := recover()
		nm.syncDual()
		if recoveredErr := throw.Recover(r); recoveredErr != nil {
			err = errors.Wrap(recoveredErr, "updating mesh")
		}
	}()
	nm.mesh.DynamicUpdate(d)
	return nil
}

func (nm *NavMesh) syncDual() {
	changes := nm.mesh.TakeChanges()
	if changes.Empty() {
		return
	}
	nm.dual.Update(nm.mesh, changes)
}

// Apply tile changes to the grid and the mesh, one at a time and in order.
// The first change the grid rejects stops the batch; the changes before it
// stay applied.
func (nm *NavMesh) ApplyTileChanges(changes ...world.Change) error {
	for _, c := range changes {
		d, err := nm.grid.Apply(c)
		if err != nil {
			return err
		}
		if err := nm.DynamicUpdate(d); err != nil {
			return err
		}
		nm.logger.Debug("applied tile change",
			zap.Int("x", c.X),
			zap.Int("y", c.Y),
			zap.Int("from", int(c.From)),
			zap.Int("to", int(c.To)),
			zap.Int("triangles", nm.mesh.TriangleCount()),
		)
	}
	return nil
}
