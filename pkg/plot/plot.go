// Package plot renders a built graph to a static image via gonum/plot.
package plot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/cluster-tools/impactviz/pkg/model"
	"github.com/cluster-tools/impactviz/pkg/render"
)

// edgeLines strokes every directed edge as a straight segment between the
// laid-out endpoint positions. Arrowheads are intentionally omitted; the
// web backend is the place for edge direction inspection.
type edgeLines struct {
	segs [][4]float64
	sty  draw.LineStyle
}

func (e edgeLines) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, s := range e.segs {
		c.StrokeLine2(e.sty, trX(s[0]), trY(s[1]), trX(s[2]), trY(s[3]))
	}
}

// Write renders the graph to path. The output format follows the file
// extension (.png, .svg, .pdf); the default configuration uses .png.
// Positions must cover every node in the graph.
func Write(g *model.Graph, positions map[string]render.XY, palette render.Palette, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()

	nodes := g.Nodes()
	xys := make(plotter.XYs, len(nodes))
	labels := make([]string, len(nodes))
	colors := make([]color.RGBA, len(nodes))
	for i, id := range nodes {
		pos, ok := positions[id]
		if !ok {
			return fmt.Errorf("no layout position for node %q", id)
		}
		attrs, _ := g.Node(id)
		xys[i] = plotter.XY{X: pos.X, Y: pos.Y}
		labels[i] = attrs.Label
		colors[i] = palette.ColorFor(attrs)
	}

	var edges edgeLines
	edges.sty = draw.LineStyle{
		Color: color.Gray{Y: 0xb0},
		Width: vg.Points(1),
	}
	for _, e := range g.Edges() {
		if e[0] == e[1] {
			continue // self loops have no extent to draw
		}
		from, to := positions[e[0]], positions[e[1]]
		edges.segs = append(edges.segs, [4]float64{from.X, from.Y, to.X, to.Y})
	}

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("building node scatter: %w", err)
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  colors[i],
			Radius: vg.Points(6),
			Shape:  draw.CircleGlyph{},
		}
	}

	names, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return fmt.Errorf("building node labels: %w", err)
	}

	p.Add(edges, scatter, names)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("saving graph image: %w", err)
	}
	return nil
}
