package path

import (
	"testing"

	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortestPathEndpoints(t *testing.T) {
	tr, dual := walledMesh(t, 100, rect(40, 20, 60, 80))
	finder := NewFinder(tr, dual, Options{}, nil)
	start, goal := geo.Point{X: 10, Y: 50}, geo.Point{X: 90, Y: 50}

	states := finder.ShortestPath(start, goal, Agent{})
	require.NotNil(t, states)
	require.GreaterOrEqual(t, len(states), 3)
	assert.Equal(t, start, states[0].Point)
	assert.Equal(t, goal, states[len(states)-1].Point)
	assert.True(t, states[0].Triangle.Contains(start))
	assert.True(t, states[len(states)-1].Triangle.Contains(goal))

	// Consecutive distinct triangles are neighbors across an unconstrained edge
	for i := 1; i < len(states); i++ {
		a, b := states[i-1].Triangle, states[i].Triangle
		if a == b {
			continue
		}
		shared := a.Shared(b)
		require.Len(t, shared, 2)
		assert.False(t, tr.IsFixed(geo.NewEdge(shared[0], shared[1])))
	}
	for i := 1; i < len(states); i++ {
		assert.GreaterOrEqual(t, states[i].G, states[i-1].G)
	}
}

func TestShortestPathSameTriangle(t *testing.T) {
	tr, dual := walledMesh(t, 100)
	finder := NewFinder(tr, dual, Options{}, nil)
	// Off both possible diagonals of the square
	start, goal := geo.Point{X: 10, Y: 20}, geo.Point{X: 12, Y: 20}
	tri, ok := tr.ContainingTriangle(start)
	require.True(t, ok)
	require.True(t, tri.Contains(goal))

	states := finder.ShortestPath(start, goal, Agent{})
	require.NotNil(t, states)
	assert.Equal(t, start, states[0].Point)
	assert.Equal(t, goal, states[len(states)-1].Point)
}

func TestShortestPathDisconnected(t *testing.T) {
	// A wall across the whole room
	tr, dual := walledMesh(t, 100, rect(45, 0, 55, 100))
	finder := NewFinder(tr, dual, Options{}, nil)

	assert.Nil(t, finder.ShortestPath(geo.Point{X: 10, Y: 50}, geo.Point{X: 90, Y: 50}, Agent{}))
	assert.NotNil(t, finder.ShortestPath(geo.Point{X: 10, Y: 50}, geo.Point{X: 30, Y: 90}, Agent{}))
	assert.Nil(t, finder.ShortestPath(geo.Point{X: 10, Y: 50}, geo.Point{X: 500, Y: 50}, Agent{}), "goal off the mesh")
}

func TestEnemyPenalty(t *testing.T) {
	tr, dual := walledMesh(t, 100, rect(45, 45, 55, 55))
	finder := NewFinder(tr, dual, Options{EnemyPenalty: 1e4, EnemyRadius: 60}, nil)
	finder.SetThreats(NewThreatIndex(geo.Point{X: 50, Y: 75}))
	start, goal := geo.Point{X: 10, Y: 50}, geo.Point{X: 90, Y: 50}

	withObjective := Smooth(finder.ShortestPath(start, goal, Agent{HasObjective: true}), tr, 0)
	require.GreaterOrEqual(t, len(withObjective), 3)
	for _, p := range withObjective[1 : len(withObjective)-1] {
		assert.LessOrEqual(t, p.Y, 45.0, "path should pass below the pillar, away from the threat")
	}

	// Without an objective the threat is ignored, but a path still exists
	assert.NotNil(t, finder.ShortestPath(start, goal, Agent{}))

	finder.SetThreats(nil)
	assert.NotNil(t, finder.ShortestPath(start, goal, Agent{HasObjective: true}))
}

func TestThreatIndex(t *testing.T) {
	ti := NewThreatIndex(geo.Point{X: 0, Y: 0}, geo.Point{X: 10, Y: 0}, geo.Point{X: 100, Y: 100})
	assert.Equal(t, 3, ti.Len())
	assert.ElementsMatch(t,
		[]geo.Point{{X: 0, Y: 0}, {X: 10, Y: 0}},
		ti.Within(geo.Point{X: 5, Y: 0}, 6))
	assert.Empty(t, ti.Within(geo.Point{X: 50, Y: 50}, 10))
	assert.Empty(t, ti.Within(geo.Point{X: 0, Y: 0}, 0))

	// 10/5 + 10/5
	assert.InDelta(t, 4, ti.Penalty(geo.Point{X: 5, Y: 0}, 10, 6), 1e-9)
	// Distance clamps at 1
	assert.InDelta(t, 10, ti.Penalty(geo.Point{X: 100, Y: 100}, 10, 1), 1e-9)

	assert.Zero(t, NewThreatIndex().Penalty(geo.Point{}, 10, 100))
}
