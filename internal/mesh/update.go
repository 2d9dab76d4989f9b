package mesh

import (
	"github.com/chauncy-crib/tagprobot-sub000/internal/geo"
	"go.uber.org/zap"
)

// Diff is a batch of changes to the constrained point set, as produced by the
// obstacle extractor when tiles change.
type Diff struct {
	UnfixEdges     []geo.Edge
	ConstrainEdges []geo.Edge
	RemoveVertices []geo.Point
	AddVertices    []geo.Point
}

func (d Diff) Empty() bool {
	return len(d.UnfixEdges) == 0 && len(d.ConstrainEdges) == 0 &&
		len(d.RemoveVertices) == 0 && len(d.AddVertices) == 0
}

// Apply a diff. This is the only entry point for live updates, and the order
// is fixed: unfix edges, remove vertices, add vertices, then add constrained
// edges. Removal comes after unfixing so a vertex is never deleted while it
// still anchors a constraint, and constraints come last so their endpoints
// always exist.
func (t *Triangulation) DynamicUpdate(d Diff) {
	if d.Empty() {
		return
	}
	for _, e := range d.UnfixEdges {
		t.UnfixEdge(e.P1, e.P2)
	}
	for _, p := range d.RemoveVertices {
		t.RemoveVertex(p)
	}
	for _, p := range d.AddVertices {
		t.InsertVertex(p)
	}
	for _, e := range d.ConstrainEdges {
		t.AddConstrainedEdge(e.P1, e.P2)
	}
	t.logger.Debug("applied mesh update",
		zap.Int("unfixed", len(d.UnfixEdges)),
		zap.Int("removed", len(d.RemoveVertices)),
		zap.Int("added", len(d.AddVertices)),
		zap.Int("constrained", len(d.ConstrainEdges)),
		zap.Int("triangles", t.TriangleCount()),
		zap.Int("hierarchy", t.HierarchySize()),
	)
}
