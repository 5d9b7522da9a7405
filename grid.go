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

// Package gwflow is a two-dimensional finite-difference model of
// saturated groundwater flow.
//
// Grid cells are addressed by (i, j), where i runs along the x axis
// (nx cells) and j along the y axis (ny cells). Cell (i, j) is stored
// at linear index i*ny + j everywhere in the model, which is the
// element order of a sparse.DenseArray with shape (nx, ny).
package gwflow

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// ErrOutsideGrid is returned when a location does not fall within the
// model grid.
var ErrOutsideGrid = errors.New("gwflow: location is outside of the grid")

// Cell identifies a grid cell by its x (I) and y (J) indices.
type Cell struct {
	I, J int
}

func (c Cell) String() string { return fmt.Sprintf("(%d, %d)", c.I, c.J) }

// Grid is a structured rectangular grid.
type Grid struct {
	// Dx holds the cell widths along the x axis [m]. len(Dx) = nx.
	Dx []float64
	// Dy holds the cell widths along the y axis [m]. len(Dy) = ny.
	Dy []float64
	// X0 and Y0 are the coordinates of the lower-left grid corner.
	X0, Y0 float64

	xFaces, yFaces []float64
}

// NewGrid creates a grid from the given cell widths.
func NewGrid(dx, dy []float64) (*Grid, error) {
	if len(dx) == 0 || len(dy) == 0 {
		return nil, fmt.Errorf("gwflow: grid must have at least one cell in each direction; nx=%d, ny=%d", len(dx), len(dy))
	}
	for i, v := range dx {
		if !(v > 0) {
			return nil, fmt.Errorf("gwflow: grid dx[%d]=%g must be positive", i, v)
		}
	}
	for j, v := range dy {
		if !(v > 0) {
			return nil, fmt.Errorf("gwflow: grid dy[%d]=%g must be positive", j, v)
		}
	}
	g := &Grid{
		Dx: append([]float64(nil), dx...),
		Dy: append([]float64(nil), dy...),
	}
	g.setup()
	return g, nil
}

// NewUniformGrid creates an nx by ny grid with constant cell widths.
func NewUniformGrid(nx, ny int, dx, dy float64) (*Grid, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("gwflow: grid must have at least one cell in each direction; nx=%d, ny=%d", nx, ny)
	}
	dxs := make([]float64, nx)
	dys := make([]float64, ny)
	for i := range dxs {
		dxs[i] = dx
	}
	for j := range dys {
		dys[j] = dy
	}
	return NewGrid(dxs, dys)
}

func (g *Grid) setup() {
	g.xFaces = faces(g.X0, g.Dx)
	g.yFaces = faces(g.Y0, g.Dy)
}

func faces(o float64, d []float64) []float64 {
	f := make([]float64, len(d)+1)
	f[0] = o
	for i, v := range d {
		f[i+1] = f[i] + v
	}
	return f
}

// SetOrigin moves the lower-left corner of the grid to (x0, y0).
func (g *Grid) SetOrigin(x0, y0 float64) {
	g.X0, g.Y0 = x0, y0
	g.setup()
}

// Nx returns the number of cells along the x axis.
func (g *Grid) Nx() int { return len(g.Dx) }

// Ny returns the number of cells along the y axis.
func (g *Grid) Ny() int { return len(g.Dy) }

// N returns the total number of cells.
func (g *Grid) N() int { return len(g.Dx) * len(g.Dy) }

// Index returns the linear index of cell (i, j).
func (g *Grid) Index(i, j int) int { return i*len(g.Dy) + j }

// Cell returns the cell at linear index k.
func (g *Grid) Cell(k int) Cell {
	ny := len(g.Dy)
	return Cell{I: k / ny, J: k % ny}
}

// Contains reports whether c is a valid cell of the grid.
func (g *Grid) Contains(c Cell) bool {
	return c.I >= 0 && c.I < len(g.Dx) && c.J >= 0 && c.J < len(g.Dy)
}

func (g *Grid) checkCell(c Cell) error {
	if !g.Contains(c) {
		return fmt.Errorf("gwflow: cell %v is outside of the %d×%d grid", c, g.Nx(), g.Ny())
	}
	return nil
}

// XFaces returns the x coordinates of the cell faces (nx+1 values).
func (g *Grid) XFaces() []float64 { return append([]float64(nil), g.xFaces...) }

// YFaces returns the y coordinates of the cell faces (ny+1 values).
func (g *Grid) YFaces() []float64 { return append([]float64(nil), g.yFaces...) }

// XCenters returns the x coordinates of the cell centers.
func (g *Grid) XCenters() []float64 { return centers(g.xFaces) }

// YCenters returns the y coordinates of the cell centers.
func (g *Grid) YCenters() []float64 { return centers(g.yFaces) }

func centers(f []float64) []float64 {
	c := make([]float64, len(f)-1)
	for i := range c {
		c[i] = (f[i] + f[i+1]) / 2
	}
	return c
}

// Center returns the coordinates of the center of cell c.
func (g *Grid) Center(c Cell) (x, y float64) {
	return (g.xFaces[c.I] + g.xFaces[c.I+1]) / 2, (g.yFaces[c.J] + g.yFaces[c.J+1]) / 2
}

// Area returns the plan-view area of cell c.
func (g *Grid) Area(c Cell) float64 { return g.Dx[c.I] * g.Dy[c.J] }

// Areas returns the area of every cell in linear index order.
func (g *Grid) Areas() []float64 {
	a := make([]float64, g.N())
	for i, dx := range g.Dx {
		for j, dy := range g.Dy {
			a[g.Index(i, j)] = dx * dy
		}
	}
	return a
}

// MinSpacing returns the smallest cell width in either direction.
func (g *Grid) MinSpacing() float64 {
	m := math.Inf(1)
	for _, v := range g.Dx {
		m = math.Min(m, v)
	}
	for _, v := range g.Dy {
		m = math.Min(m, v)
	}
	return m
}

// CellAt returns the cell that contains the point (x, y). Points on an
// interior face belong to the cell with the larger index. An error
// wrapping ErrOutsideGrid is returned for points outside the grid.
func (g *Grid) CellAt(x, y float64) (Cell, error) {
	i := locate(g.xFaces, x)
	j := locate(g.yFaces, y)
	if i < 0 || j < 0 {
		return Cell{}, fmt.Errorf("%w: (%g, %g) not in x=[%g, %g], y=[%g, %g]", ErrOutsideGrid, x, y,
			g.xFaces[0], g.xFaces[len(g.xFaces)-1], g.yFaces[0], g.yFaces[len(g.yFaces)-1])
	}
	return Cell{I: i, J: j}, nil
}

// locate returns the interval of f containing v, or -1.
func locate(f []float64, v float64) int {
	if v < f[0] || v > f[len(f)-1] || math.IsNaN(v) {
		return -1
	}
	i := sort.SearchFloat64s(f, v)
	if i < len(f) && f[i] == v {
		i++
	}
	i--
	if i >= len(f)-1 {
		i = len(f) - 2
	}
	return i
}

// Edge returns the cells along one side of the grid: "left" (i=0),
// "right" (i=nx-1), "bottom" (j=0), "top" (j=ny-1), or "perimeter"
// for all boundary cells.
func (g *Grid) Edge(name string) ([]Cell, error) {
	nx, ny := g.Nx(), g.Ny()
	var cells []Cell
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left", "west":
		for j := 0; j < ny; j++ {
			cells = append(cells, Cell{0, j})
		}
	case "right", "east":
		for j := 0; j < ny; j++ {
			cells = append(cells, Cell{nx - 1, j})
		}
	case "bottom", "south":
		for i := 0; i < nx; i++ {
			cells = append(cells, Cell{i, 0})
		}
	case "top", "north":
		for i := 0; i < nx; i++ {
			cells = append(cells, Cell{i, ny - 1})
		}
	case "perimeter", "all":
		return g.Perimeter(), nil
	default:
		return nil, fmt.Errorf("gwflow: unknown grid location %q", name)
	}
	return cells, nil
}

// Perimeter returns every cell on the outer edge of the grid, each once.
func (g *Grid) Perimeter() []Cell {
	nx, ny := g.Nx(), g.Ny()
	var cells []Cell
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			if i == 0 || j == 0 || i == nx-1 || j == ny-1 {
				cells = append(cells, Cell{i, j})
			}
		}
	}
	return cells
}

// Polygon returns the outline of cell c.
func (g *Grid) Polygon(c Cell) geom.Polygon {
	x0, x1 := g.xFaces[c.I], g.xFaces[c.I+1]
	y0, y1 := g.yFaces[c.J], g.yFaces[c.J+1]
	return geom.Polygon{geom.Path{
		geom.Point{X: x0, Y: y0},
		geom.Point{X: x1, Y: y0},
		geom.Point{X: x1, Y: y1},
		geom.Point{X: x0, Y: y1},
	}}
}

// NewField returns a zeroed field with one value per cell.
func (g *Grid) NewField() *sparse.DenseArray {
	return sparse.ZerosDense(g.Nx(), g.Ny())
}

// UniformField returns a field with value v in every cell.
func (g *Grid) UniformField(v float64) *sparse.DenseArray {
	f := g.NewField()
	for i := range f.Elements {
		f.Elements[i] = v
	}
	return f
}

// FieldFromFlat returns a field holding a copy of v, which must have
// one value per cell in linear index order.
func (g *Grid) FieldFromFlat(v []float64) (*sparse.DenseArray, error) {
	if len(v) != g.N() {
		return nil, fmt.Errorf("gwflow: array of length %d does not match grid size %d×%d", len(v), g.Nx(), g.Ny())
	}
	f := g.NewField()
	copy(f.Elements, v)
	return f, nil
}

// checkField verifies that f has shape (nx, ny).
func (g *Grid) checkField(name string, f *sparse.DenseArray) error {
	if f == nil {
		return fmt.Errorf("gwflow: %s is missing", name)
	}
	if len(f.Shape) != 2 || f.Shape[0] != g.Nx() || f.Shape[1] != g.Ny() {
		return fmt.Errorf("gwflow: %s has shape %v; want [%d %d]", name, f.Shape, g.Nx(), g.Ny())
	}
	return nil
}
