package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	navmesh "github.com/chauncy-crib/tagprobot-sub000"
	"github.com/chauncy-crib/tagprobot-sub000/internal/config"
	"github.com/chauncy-crib/tagprobot-sub000/internal/dbg"
	"github.com/chauncy-crib/tagprobot-sub000/internal/logging"
	"github.com/chauncy-crib/tagprobot-sub000/internal/path"
	"github.com/chauncy-crib/tagprobot-sub000/internal/world"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/alecthomas/kingpin.v2"
)

// Command line tools for the navigation mesh. Maps are text files, one row of
// tiles per line with the bottom row first: '.' is floor, '#' is wall, 'G' is
// a closed gate and 'g' an open one. Points are given in world units as "x,y".
var (
	app        = kingpin.New("navmesh", "Build navigation meshes from tile maps and plan paths on them.")
	configFile = app.Flag("config", "YAML configuration file.").ExistingFile()
	mapFile    = app.Flag("map", "Tile map file.").Required().ExistingFile()

	pathCmd   = app.Command("path", "Find one smoothed path.")
	pathFrom  = pathCmd.Flag("from", "Start point.").Required().String()
	pathTo    = pathCmd.Flag("to", "Goal point.").Required().String()
	enemies   = pathCmd.Flag("enemy", "Hostile position; repeatable.").Strings()
	objective = pathCmd.Flag("objective", "Plan as an agent carrying an objective, avoiding hostiles.").Bool()
	pngFile   = pathCmd.Flag("png", "Draw the mesh and path to this file.").String()
	scale     = pathCmd.Flag("scale", "Pixels per world unit when drawing.").Default("1").Float64()
	cat       = pathCmd.Flag("imgcat", "Print the drawing to the terminal (iTerm only).").Bool()

	simulateCmd  = app.Command("simulate", "Replan every tick while a gate opens and closes.")
	simFrom      = simulateCmd.Flag("from", "Start point.").Required().String()
	simTo        = simulateCmd.Flag("to", "Goal point.").Required().String()
	toggle       = simulateCmd.Flag("toggle", "Gate cell to toggle, as column,row.").Required().String()
	ticks        = simulateCmd.Flag("ticks", "Number of ticks to run.").Default("300").Int()
	togglePeriod = simulateCmd.Flag("period", "Ticks between gate toggles.").Default("60").Int()
	tickInterval = simulateCmd.Flag("interval", "Time between ticks.").Default("16ms").Duration()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		app.FatalIfError(err, "")
	}
	logger, err := logging.New(cfg.Log)
	app.FatalIfError(err, "")
	defer logger.Sync() //nolint:errcheck

	nm, err := loadMesh(*mapFile, cfg, logger)
	app.FatalIfError(err, "")

	switch command {
	case pathCmd.FullCommand():
		err = runPath(nm, logger)
	case simulateCmd.FullCommand():
		err = runSimulate(nm, logger)
	}
	app.FatalIfError(err, "%s", command)
}

func loadMesh(file string, cfg *config.Config, logger *zap.Logger) (*navmesh.NavMesh, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrap(err, "opening map")
	}
	defer f.Close()
	grid, err := world.ParseGrid(f, cfg.Mesh.TileSize, cfg.Classifier())
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", file)
	}
	return navmesh.New(grid, cfg, logger)
}

func runPath(nm *navmesh.NavMesh, logger *zap.Logger) error {
	from, err := parsePoint(*pathFrom)
	if err != nil {
		return err
	}
	to, err := parsePoint(*pathTo)
	if err != nil {
		return err
	}
	var hostiles []navmesh.Point
	for _, s := range *enemies {
		p, err := parsePoint(s)
		if err != nil {
			return err
		}
		hostiles = append(hostiles, p)
	}
	nm.SetThreats(hostiles...)

	points, err := nm.ShortestPath(from, to, navmesh.Agent{HasObjective: *objective})
	if err != nil {
		return err
	}
	if points == nil {
		fmt.Println("no path")
	} else {
		for _, p := range points {
			fmt.Printf("%g %g\n", p.X, p.Y)
		}
		logger.Info("found path", zap.Int("points", len(points)), zap.Float64("length", path.Length(points)))
	}

	if *pngFile != "" {
		if err := dbg.Draw(nm.Mesh(), points, *pngFile, *scale); err != nil {
			return err
		}
		if *cat {
			dbg.Cat(*pngFile)
		}
	}
	return nil
}

func runSimulate(nm *navmesh.NavMesh, logger *zap.Logger) error {
	from, err := parsePoint(*simFrom)
	if err != nil {
		return err
	}
	to, err := parsePoint(*simTo)
	if err != nil {
		return err
	}
	gx, gy, err := parseCell(*toggle)
	if err != nil {
		return err
	}

	nav := navmesh.NewNavigator(nm)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return nav.Run(ctx) })
	g.Go(func() error {
		// The worker stops when the tick loop is done
		defer cancel()
		ticker := time.NewTicker(*tickInterval)
		defer ticker.Stop()
		for tick := 1; tick <= *ticks; tick++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
			if tick%*togglePeriod == 0 {
				if err := toggleGate(nm, gx, gy); err != nil {
					return err
				}
			}
			points, err := nav.Tick(from, to, navmesh.Agent{})
			if err != nil {
				return err
			}
			logger.Info("tick",
				zap.Int("tick", tick),
				zap.Int("points", len(points)),
				zap.Float64("length", path.Length(points)),
				zap.Int("triangles", nm.TriangleCount()))
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func toggleGate(nm *navmesh.NavMesh, x, y int) error {
	tile, ok := nm.Grid().Tile(x, y)
	if !ok {
		return errors.Wrapf(world.ErrOutOfGrid, "cell (%d, %d)", x, y)
	}
	change := world.Change{X: x, Y: y, From: tile, To: world.GateClosed}
	if tile == world.GateClosed {
		change.To = world.GateOpen
	}
	return nm.ApplyTileChanges(change)
}

func parsePoint(s string) (navmesh.Point, error) {
	x, y, err := parsePair(s, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
	return navmesh.Point{X: x, Y: y}, err
}

func parseCell(s string) (int, int, error) {
	return parsePair(s, strconv.Atoi)
}

func parsePair[T any](s string, parse func(string) (T, error)) (T, T, error) {
	var zero T
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return zero, zero, errors.Errorf("expected \"a,b\", got %q", s)
	}
	a, err := parse(strings.TrimSpace(parts[0]))
	if err != nil {
		return zero, zero, errors.Wrapf(err, "parsing %q", s)
	}
	b, err := parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return zero, zero, errors.Wrapf(err, "parsing %q", s)
	}
	return a, b, nil
}
