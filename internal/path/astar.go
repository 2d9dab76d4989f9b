// Package path plans routes over the navigation mesh: A* over the dual graph
// of triangle centroids, then a funnel pass that pulls the coarse path taut.
package path

import (
	"container/heap"
	"math"

	"github.com/chauncy-crib/tagprobot-sub000/internal/dbg"
	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/chauncy-crib/tagprobot-sub000/internal/mesh"
	"go.uber.org/zap"
)

// PathState is a node of one A* search. The first and last states of a
// returned path hold the true start and goal points rather than centroids.
type PathState struct {
	mesh.Polypoint
	G      float64 // Cost from start to this node
	F      float64 // G plus the heuristic
	Parent *PathState
	index  int // Index in the heap
}

// priorityQueue implements heap.Interface ordered by F.
type priorityQueue []*PathState

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].F < pq[j].F
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	state := x.(*PathState)
	state.index = len(*pq)
	*pq = append(*pq, state)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	state := old[n-1]
	old[n-1] = nil
	state.index = -1
	*pq = old[0 : n-1]
	return state
}

// Agent describes who the path is for.
type Agent struct {
	// Agents carrying an objective steer clear of hostiles
	HasObjective bool
}

type Options struct {
	// Added to an edge's cost per hostile near its target, divided by the
	// distance to that hostile
	EnemyPenalty float64
	// Hostiles further than this from a centroid are ignored
	EnemyRadius float64
}

// Finder searches one mesh and its dual. It reads both, so it must not run
// concurrently with a mesh update.
type Finder struct {
	mesh    *mesh.Triangulation
	dual    *mesh.DualGraph
	threats *ThreatIndex
	opts    Options
	logger  *zap.Logger
}

func NewFinder(t *mesh.Triangulation, dual *mesh.DualGraph, opts Options, logger *zap.Logger) *Finder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finder{mesh: t, dual: dual, opts: opts, logger: logger}
}

// Replace the set of hostiles used for the enemy penalty. A nil index
// disables the penalty.
func (f *Finder) SetThreats(threats *ThreatIndex) {
	f.threats = threats
}

// Find the cheapest path of polypoints from start to goal. Every triangle
// containing start seeds the search, and reaching any triangle containing goal
// ends it. Returns nil if either point is off the mesh or no path exists.
func (f *Finder) ShortestPath(start, goal geo.Point, agent Agent) []PathState {
	startTris := f.mesh.FindContainingTriangles(start)
	goalTris := f.mesh.FindContainingTriangles(goal)
	if len(startTris) == 0 || len(goalTris) == 0 {
		return nil
	}
	goals := make(map[geo.Triangle]struct{}, len(goalTris))
	for _, tri := range goalTris {
		goals[tri] = struct{}{}
	}
	heuristic := func(p geo.Point) float64 {
		best := math.Inf(1)
		for _, tri := range goalTris {
			best = math.Min(best, p.Dist(tri.Centroid()))
		}
		return best
	}

	openSet := &priorityQueue{}
	heap.Init(openSet)
	openStates := make(map[geo.Point]*PathState)
	closedSet := make(map[geo.Point]bool)
	for _, tri := range startTris {
		poly := mesh.NewPolypoint(tri)
		if !f.dual.HasPolypoint(poly) {
			continue
		}
		g := start.Dist(poly.Point)
		state := &PathState{Polypoint: poly, G: g, F: g + heuristic(poly.Point)}
		heap.Push(openSet, state)
		openStates[poly.Point] = state
	}

	explored := 0
	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*PathState)
		delete(openStates, current.Point)
		explored++

		if _, ok := goals[current.Triangle]; ok {
			path := f.reconstruct(current, start, goal)
			if ce := f.logger.Check(zap.DebugLevel, "found path"); ce != nil {
				ce.Write(
					zap.String("from", dbg.Describe(f.mesh, path[0].Triangle)),
					zap.String("to", dbg.Describe(f.mesh, current.Triangle)),
					zap.Int("explored", explored),
					zap.Int("states", len(path)),
					zap.Float64("cost", current.G))
			}
			return path
		}
		closedSet[current.Point] = true

		for _, neighbor := range f.dual.NeighborPolypoints(current.Polypoint) {
			if closedSet[neighbor.Point] {
				continue
			}
			tentativeG := current.G + current.Dist(neighbor.Point) + f.penalty(neighbor.Point, agent)

			state, exists := openStates[neighbor.Point]
			if !exists {
				state = &PathState{
					Polypoint: neighbor,
					G:         tentativeG,
					F:         tentativeG + heuristic(neighbor.Point),
					Parent:    current,
				}
				heap.Push(openSet, state)
				openStates[neighbor.Point] = state
			} else if tentativeG < state.G {
				state.F += tentativeG - state.G
				state.G = tentativeG
				state.Parent = current
				heap.Fix(openSet, state.index)
			}
		}
	}

	f.logger.Debug("no path", zap.Stringer("start", start), zap.Stringer("goal", goal), zap.Int("explored", explored))
	return nil
}

func (f *Finder) penalty(p geo.Point, agent Agent) float64 {
	if !agent.HasObjective || f.threats == nil {
		return 0
	}
	return f.threats.Penalty(p, f.opts.EnemyPenalty, f.opts.EnemyRadius)
}

// Walk the parent links back and splice the true endpoints on.
func (f *Finder) reconstruct(last *PathState, start, goal geo.Point) []PathState {
	var reversed []PathState
	for s := last; s != nil; s = s.Parent {
		reversed = append(reversed, *s)
	}
	path := make([]PathState, 0, len(reversed)+2)
	first := reversed[len(reversed)-1]
	path = append(path, PathState{Polypoint: mesh.Polypoint{Point: start, Triangle: first.Triangle}})
	for i := len(reversed) - 1; i >= 0; i-- {
		s := reversed[i]
		s.Parent = nil
		s.index = -1
		path = append(path, s)
	}
	path = append(path, PathState{
		Polypoint: mesh.Polypoint{Point: goal, Triangle: last.Triangle},
		G:         last.G + last.Dist(goal),
		F:         last.G + last.Dist(goal),
	})
	return path
}
