package mesh

import (
	"embed"
	"log"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"
	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"github.com/paulmach/orb"
)

// This loads the svg obstacle fixtures. It is not a real svg parser: it reads
// the width and height of the root element as the bound, and every <polygon>
// as an obstacle outline. If anything goes wrong, it dies.
//
// Fixtures are available by name in the fixtures/ directory, sans extension.

//go:embed fixtures
var fixtures embed.FS

type obstacleFixture struct {
	bound     orb.Bound
	obstacles [][]geo.Point
}

func loadFixture(name string) obstacleFixture {
	fixture, err := fixtures.Open("fixtures/" + name + ".svg")
	if err != nil {
		log.Fatalf("Could not load fixture %q: %v", name, err)
	}
	defer fixture.Close()

	rootEl, err := svgparser.Parse(fixture, true)
	if err != nil {
		log.Fatalf("Failed to parse fixture %q: %v", name, err)
	}
	result := obstacleFixture{
		bound: orb.Bound{
			Min: orb.Point{0, 0},
			Max: orb.Point{parseFloat(rootEl.Attributes["width"]), parseFloat(rootEl.Attributes["height"])},
		},
	}

	polygons := rootEl.FindAll("polygon")
	if len(polygons) == 0 {
		log.Fatalf("No polygons found in fixture %q", name)
	}
	for _, polygonEl := range polygons {
		var points []geo.Point
		for _, pointString := range strings.Fields(polygonEl.Attributes["points"]) {
			coords := strings.Split(pointString, ",")
			if len(coords) != 2 {
				log.Fatalf("Invalid point string %q", pointString)
			}
			points = append(points, geo.Point{X: parseFloat(coords[0]), Y: parseFloat(coords[1])})
		}
		result.obstacles = append(result.obstacles, points)
	}
	return result
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Fatalf("Invalid number %q: %v", s, err)
	}
	return v
}

// The diff that adds an obstacle outline as fixed edges.
func obstacleDiff(outline []geo.Point) Diff {
	var d Diff
	d.AddVertices = append(d.AddVertices, outline...)
	for i, p := range outline {
		d.ConstrainEdges = append(d.ConstrainEdges, geo.NewEdge(p, outline[(i+1)%len(outline)]))
	}
	return d
}

// The diff that takes an obstacle added by obstacleDiff back out.
func removeObstacleDiff(outline []geo.Point) Diff {
	add := obstacleDiff(outline)
	return Diff{UnfixEdges: add.ConstrainEdges, RemoveVertices: add.AddVertices}
}
