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

package gwflow

import (
	"fmt"
	"math"

	"github.com/spatialmodel/gwflow/linsolve"
	"github.com/spatialmodel/gwflow/schedule"
	"github.com/spatialmodel/gwflow/theis"
)

// Boundary is a boundary condition applied to a set of grid cells.
// The implementations are *Dirichlet, *Flux, *GeneralHead,
// *RechargeBoundary, and *TheisPerimeter.
type Boundary interface {
	boundaryCells() []Cell
}

// Dirichlet holds the head in its cells at a fixed value.
type Dirichlet struct {
	Cells []Cell
	Value float64 // [m]
}

func (d *Dirichlet) boundaryCells() []Cell { return d.Cells }

// Apply replaces the row of each boundary cell with the equation
// h = Value. Applying it more than once has no further effect.
func (d *Dirichlet) Apply(g *Grid, A *linsolve.Matrix, b []float64) {
	for _, c := range d.Cells {
		fixHead(A, b, g.Index(c.I, c.J), d.Value)
	}
}

func fixHead(A *linsolve.Matrix, b []float64, k int, h float64) {
	A.ZeroRow(k)
	A.Set(k, k, 1)
	b[k] = h
}

// FluxKind specifies the units of a Flux boundary rate.
type FluxKind int

const (
	// Neumann rates are volumetric [m³/s] per cell.
	Neumann FluxKind = iota
	// PerArea rates are fluxes [m/s] that are multiplied by the cell area.
	PerArea
)

func (k FluxKind) String() string {
	switch k {
	case Neumann:
		return "neumann"
	case PerArea:
		return "flux"
	default:
		return fmt.Sprintf("FluxKind(%d)", int(k))
	}
}

// Flux adds a prescribed inflow to its cells without changing the
// conductance matrix. Positive rates add water.
type Flux struct {
	Cells []Cell
	Kind  FluxKind
	Rate  float64

	// Schedule, if not nil, replaces Rate.
	Schedule schedule.Schedule
}

func (f *Flux) boundaryCells() []Cell { return f.Cells }

// CellRate returns the volumetric inflow [m³/s] into cell c at time t.
func (f *Flux) CellRate(g *Grid, c Cell, t float64) float64 {
	q := f.Rate
	if f.Schedule != nil {
		q = f.Schedule.Rate(t)
	}
	if f.Kind == PerArea {
		q *= g.Area(c)
	}
	return q
}

// ApplyRHS adds the boundary inflow at time t to b. A rate that is
// not finite, as returned by a schedule that fails to evaluate, is an
// error.
func (f *Flux) ApplyRHS(g *Grid, b []float64, t float64) error {
	for _, c := range f.Cells {
		q := f.CellRate(g, c, t)
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return fmt.Errorf("gwflow: %v boundary has invalid rate %g in cell %v at t=%g", f.Kind, q, c, t)
		}
		b[g.Index(c.I, c.J)] += q
	}
	return nil
}

// HeadDependentKind distinguishes general-head boundaries from rivers
// in budget output.
type HeadDependentKind int

const (
	GHB HeadDependentKind = iota
	River
)

func (k HeadDependentKind) String() string {
	if k == River {
		return "river"
	}
	return "ghb"
}

// GeneralHead is a head-dependent (Cauchy) boundary. The inflow into
// each cell is Conductance·(Stage - h).
type GeneralHead struct {
	Cells       []Cell
	Kind        HeadDependentKind
	Stage       float64 // [m]
	Conductance float64 // [m²/s]
}

func (gh *GeneralHead) boundaryCells() []Cell { return gh.Cells }

// Apply adds the boundary conductance to the diagonal of A and
// Conductance·Stage to b.
func (gh *GeneralHead) Apply(g *Grid, A *linsolve.Matrix, b []float64) {
	for _, c := range gh.Cells {
		k := g.Index(c.I, c.J)
		A.Add(k, k, gh.Conductance)
		b[k] += gh.Conductance * gh.Stage
	}
}

// Inflow returns the flow [m³/s] into the aquifer through the boundary
// in a cell whose head is h.
func (gh *GeneralHead) Inflow(h float64) float64 {
	return gh.Conductance * (gh.Stage - h)
}

// RechargeBoundary adds recharge to a subset of cells.
type RechargeBoundary struct {
	Cells []Cell
	Rate  float64 // [m/s]
}

func (r *RechargeBoundary) boundaryCells() []Cell { return r.Cells }

// CellRate returns the volumetric recharge [m³/s] into cell c.
func (r *RechargeBoundary) CellRate(g *Grid, c Cell) float64 {
	return r.Rate * g.Area(c)
}

// ApplyRHS adds the recharge to b.
func (r *RechargeBoundary) ApplyRHS(g *Grid, b []float64, _ float64) {
	for _, c := range r.Cells {
		b[g.Index(c.I, c.J)] += r.CellRate(g, c)
	}
}

// TheisWell is a well whose drawdown is superposed onto a TheisPerimeter
// boundary. Q follows the model sign convention: negative values
// extract water.
type TheisWell struct {
	I, J int
	Q    float64
}

// TheisPerimeter is a fixed-head boundary whose head changes over
// time as head0 minus the analytical Theis drawdown of a set of wells.
// It approximates the edge of an infinite aquifer.
type TheisPerimeter struct {
	Cells []Cell

	// Coords optionally gives the location [m] used for each cell when
	// calculating distances. If nil, cell centers are used.
	Coords [][2]float64

	// Locations optionally gives the (i, j) index used for each cell
	// when calculating distances, in place of Coords. Indices may lie
	// outside of the grid. The distance from a well at (wi, wj) has
	// components (i-wi)·Dx and (j-wj)·Dy.
	Locations []Cell

	// Dx and Dy are the cell spacing used with Locations. If zero,
	// the mean cell width of the grid along each axis is used.
	Dx, Dy float64

	Wells []TheisWell
	T, S  float64
	Head0 float64

	// MinDistance is the smallest well distance used in the drawdown
	// calculation. If zero, half of the smallest grid spacing is used.
	MinDistance float64

	heads []float64
}

func (tp *TheisPerimeter) boundaryCells() []Cell { return tp.Cells }

// Update calculates the boundary heads at time t. For t <= 0 all
// heads equal Head0.
func (tp *TheisPerimeter) Update(g *Grid, t float64) error {
	if err := tp.checkLocations(); err != nil {
		return err
	}
	dx, dy := tp.spacing(g)
	rMin := tp.MinDistance
	if rMin <= 0 {
		rMin = 0.5 * g.MinSpacing()
	}
	if tp.heads == nil {
		tp.heads = make([]float64, len(tp.Cells))
	}
	for n, c := range tp.Cells {
		h := tp.Head0
		if t > 0 {
			x, y := g.Center(c)
			if len(tp.Coords) != 0 {
				x, y = tp.Coords[n][0], tp.Coords[n][1]
			}
			for _, w := range tp.Wells {
				var r float64
				if len(tp.Locations) != 0 {
					l := tp.Locations[n]
					r = math.Hypot(float64(l.I-w.I)*dx, float64(l.J-w.J)*dy)
				} else {
					wx, wy := g.Center(Cell{I: w.I, J: w.J})
					r = math.Hypot(x-wx, y-wy)
				}
				r = math.Max(r, rMin)
				s, err := theis.Drawdown(-w.Q, tp.T, tp.S, r, t)
				if err != nil {
					return fmt.Errorf("gwflow: theis boundary: %w", err)
				}
				h -= s
			}
		}
		tp.heads[n] = h
	}
	return nil
}

func (tp *TheisPerimeter) checkLocations() error {
	switch {
	case len(tp.Coords) != 0 && len(tp.Locations) != 0:
		return fmt.Errorf("gwflow: theis boundary has both coordinates and cell locations")
	case len(tp.Coords) != 0 && len(tp.Coords) != len(tp.Cells):
		return fmt.Errorf("gwflow: theis boundary has %d coordinates for %d cells", len(tp.Coords), len(tp.Cells))
	case len(tp.Locations) != 0 && len(tp.Locations) != len(tp.Cells):
		return fmt.Errorf("gwflow: theis boundary has %d cell locations for %d cells", len(tp.Locations), len(tp.Cells))
	}
	return nil
}

// spacing returns the cell spacing used with Locations.
func (tp *TheisPerimeter) spacing(g *Grid) (dx, dy float64) {
	dx, dy = tp.Dx, tp.Dy
	if dx <= 0 {
		dx = (g.xFaces[g.Nx()] - g.xFaces[0]) / float64(g.Nx())
	}
	if dy <= 0 {
		dy = (g.yFaces[g.Ny()] - g.yFaces[0]) / float64(g.Ny())
	}
	return dx, dy
}

// Heads returns the boundary head of each cell as of the last Update.
func (tp *TheisPerimeter) Heads() []float64 {
	if tp.heads == nil {
		h := make([]float64, len(tp.Cells))
		for i := range h {
			h[i] = tp.Head0
		}
		return h
	}
	return append([]float64(nil), tp.heads...)
}

// Apply fixes the head of each boundary cell at its current value.
func (tp *TheisPerimeter) Apply(g *Grid, A *linsolve.Matrix, b []float64) {
	for n, h := range tp.Heads() {
		c := tp.Cells[n]
		fixHead(A, b, g.Index(c.I, c.J), h)
	}
}

// fixedHeads returns the prescribed head of every cell held by a
// Dirichlet or TheisPerimeter boundary, by linear index. Later
// boundaries take precedence.
func fixedHeads(g *Grid, bcs []Boundary) map[int]float64 {
	fixed := make(map[int]float64)
	for _, bc := range bcs {
		switch bc := bc.(type) {
		case *Dirichlet:
			for _, c := range bc.Cells {
				fixed[g.Index(c.I, c.J)] = bc.Value
			}
		case *TheisPerimeter:
			for n, h := range bc.Heads() {
				c := bc.Cells[n]
				fixed[g.Index(c.I, c.J)] = h
			}
		}
	}
	return fixed
}

// ApplyBoundaries applies bcs to the system A·h = b at time t. Time
// dependent boundaries are updated first. Head-dependent boundaries
// are then added, fixed heads are imposed, and finally flux
// boundaries are added to b. Fluxes into fixed-head cells are
// discarded.
func ApplyBoundaries(g *Grid, bcs []Boundary, A *linsolve.Matrix, b []float64, t float64) error {
	for _, bc := range bcs {
		switch bc := bc.(type) {
		case *TheisPerimeter:
			if err := bc.Update(g, t); err != nil {
				return err
			}
		case *Dirichlet, *Flux, *GeneralHead, *RechargeBoundary:
		default:
			return fmt.Errorf("gwflow: unsupported boundary type %T", bc)
		}
	}
	for _, bc := range bcs {
		if gh, ok := bc.(*GeneralHead); ok {
			gh.Apply(g, A, b)
		}
	}
	for _, bc := range bcs {
		switch bc := bc.(type) {
		case *Dirichlet:
			bc.Apply(g, A, b)
		case *TheisPerimeter:
			bc.Apply(g, A, b)
		}
	}
	var hasFlux bool
	for _, bc := range bcs {
		switch bc := bc.(type) {
		case *Flux:
			if err := bc.ApplyRHS(g, b, t); err != nil {
				return err
			}
			hasFlux = true
		case *RechargeBoundary:
			bc.ApplyRHS(g, b, t)
			hasFlux = true
		}
	}
	if hasFlux {
		for k, h := range fixedHeads(g, bcs) {
			b[k] = h
		}
	}
	return nil
}

// checkBoundary verifies that the cells of bc are in g and that its
// parameters are valid.
func checkBoundary(g *Grid, bc Boundary) error {
	if bc == nil {
		return fmt.Errorf("gwflow: nil boundary condition")
	}
	for _, c := range bc.boundaryCells() {
		if err := g.checkCell(c); err != nil {
			return fmt.Errorf("gwflow: %T: %w", bc, err)
		}
	}
	switch bc := bc.(type) {
	case *GeneralHead:
		if bc.Conductance < 0 {
			return fmt.Errorf("gwflow: %v boundary conductance %g must not be negative", bc.Kind, bc.Conductance)
		}
	case *TheisPerimeter:
		if !(bc.T > 0) || !(bc.S > 0) {
			return fmt.Errorf("gwflow: theis boundary T=%g and S=%g must be positive", bc.T, bc.S)
		}
		if err := bc.checkLocations(); err != nil {
			return err
		}
		for _, w := range bc.Wells {
			if err := g.checkCell(Cell{I: w.I, J: w.J}); err != nil {
				return fmt.Errorf("gwflow: theis boundary well: %w", err)
			}
		}
	}
	return nil
}
