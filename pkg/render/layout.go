package render

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/graph/layout"

	"github.com/cluster-tools/impactviz/pkg/model"
)

// DefaultSeed seeds the layout source when no seed is configured. A fixed
// seed makes positions reproducible across runs for identical graph
// topology.
const DefaultSeed uint64 = 42

// XY is a 2-D node position.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout computes a force-directed position for every node in the graph
// using the Eades spring embedder with a seeded source. The same graph and
// seed always produce the same positions.
func Layout(g *model.Graph, seed uint64) map[string]XY {
	positions := make(map[string]XY, g.NodeCount())
	if g.NodeCount() == 0 {
		return positions
	}

	eades := layout.EadesR2{
		Repulsion: 1,
		Rate:      0.05,
		Updates:   100,
		Theta:     0.2,
		Src:       rand.NewPCG(seed, seed),
	}
	opt := layout.NewOptimizerR2(g.Directed(), eades.Update)
	for opt.Update() {
	}

	for _, id := range g.Nodes() {
		v := opt.Coord2(g.LayoutID(id))
		positions[id] = XY{X: v.X, Y: v.Y}
	}
	return positions
}
