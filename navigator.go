package navmesh

import (
	"context"
	"time"

	"github.com/chauncy-crib/tagprobot-sub000/internal/path"
	"github.com/chauncy-crib/tagprobot-sub000/internal/worker"
	"go.uber.org/zap"
)

// Navigator plans a path every tick without blocking the tick on the funnel
// pass. A* and corridor extraction need the mesh, so they run on the caller's
// goroutine inside Tick. String pulling only needs the corridor, so it is
// handed to a background worker, and Tick returns the newest path that worker
// has finished. That path can be a tick or more behind the current query.
type Navigator struct {
	nm      *NavMesh
	task    *worker.Task[path.Corridor, []Point]
	timeout time.Duration
	logger  *zap.Logger
}

func NewNavigator(nm *NavMesh) *Navigator {
	return &Navigator{
		nm: nm,
		task: worker.New(func(c path.Corridor) []Point {
			return c.StringPull()
		}, nm.logger),
		timeout: nm.cfg.Path.PlanTimeout,
		logger:  nm.logger,
	}
}

// Run the smoothing worker until ctx is done.
func (n *Navigator) Run(ctx context.Context) error {
	return n.task.Run(ctx)
}

// Plan from start to goal and return the latest smoothed path, or nil if none
// has completed yet. When there is currently no path, nothing new is queued
// and the previous path is still returned.
func (n *Navigator) Tick(start, goal Point, agent Agent) ([]Point, error) {
	corridor, err := n.nm.Corridor(start, goal, agent)
	if err != nil {
		return nil, err
	}
	if corridor != nil {
		n.task.Submit(*corridor, time.Now().Add(n.timeout))
	} else {
		n.logger.Debug("no path this tick", zap.Stringer("start", start), zap.Stringer("goal", goal))
	}
	return n.Latest(), nil
}

// The newest completed path, without planning.
func (n *Navigator) Latest() []Point {
	result, ok := n.task.Poll()
	if !ok {
		return nil
	}
	return result.Value
}
