/*
Copyright © 2026 the GWFlow authors.
This file is part of GWFlow.

GWFlow is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GWFlow is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GWFlow.  If not, see <http://www.gnu.org/licenses/>.
*/

package gwflowutil

import (
	"fmt"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/gwflow"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// headGrid adapts a head field to plotter.GridXYZ.
type headGrid struct {
	x, y []float64
	head *sparse.DenseArray
}

func (h headGrid) Dims() (c, r int)   { return len(h.x), len(h.y) }
func (h headGrid) Z(c, r int) float64 { return h.head.Get(c, r) }
func (h headGrid) X(c int) float64    { return h.x[c] }
func (h headGrid) Y(r int) float64    { return h.y[r] }

// PlotHeadMap saves a color map of head to a PNG file at path.
func PlotHeadMap(path string, g *gwflow.Grid, head *sparse.DenseArray) error {
	if len(head.Shape) != 2 || head.Shape[0] != g.Nx() || head.Shape[1] != g.Ny() {
		return fmt.Errorf("gwflowutil: head has shape %v; want [%d %d]", head.Shape, g.Nx(), g.Ny())
	}
	cm := moreland.ExtendedBlackBody()
	lo, hi := floats.Min(head.Elements), floats.Max(head.Elements)
	if hi == lo {
		hi = lo + 1
	}
	cm.SetMin(lo)
	cm.SetMax(hi)

	p := plot.New()
	p.Title.Text = "Hydraulic head [m]"
	p.X.Label.Text = "x [m]"
	p.Y.Label.Text = "y [m]"
	hm := plotter.NewHeatMap(headGrid{x: g.XCenters(), y: g.YCenters(), head: head}, cm.Palette(255))
	hm.Min, hm.Max = lo, hi
	p.Add(hm)
	if err := p.Save(6*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("gwflowutil: saving head map: %v", err)
	}
	return nil
}

// PlotProfile saves a plot of the head along row j of the grid to a
// PNG file at path, with one line for each head field.
func PlotProfile(path string, g *gwflow.Grid, heads []*sparse.DenseArray, labels []string, j int) error {
	if len(heads) != len(labels) {
		return fmt.Errorf("gwflowutil: %d head fields but %d labels", len(heads), len(labels))
	}
	if j < 0 || j >= g.Ny() {
		return fmt.Errorf("gwflowutil: profile row %d is outside of the grid", j)
	}
	x := g.XCenters()
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Head profile at y = %g m", g.YCenters()[j])
	p.X.Label.Text = "x [m]"
	p.Y.Label.Text = "Head [m]"
	for n, h := range heads {
		xy := make(plotter.XYs, len(x))
		for i := range x {
			xy[i].X = x[i]
			xy[i].Y = h.Get(i, j)
		}
		l, err := plotter.NewLine(xy)
		if err != nil {
			return fmt.Errorf("gwflowutil: plotting head profile: %v", err)
		}
		l.Color = plotutil.Color(n)
		p.Add(l)
		p.Legend.Add(labels[n], l)
	}
	p.Legend.Top = true
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("gwflowutil: saving head profile: %v", err)
	}
	return nil
}
