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
	"math"
	"testing"

	"github.com/spatialmodel/gwflow/linsolve"
	"github.com/spatialmodel/gwflow/schedule"
	"github.com/spatialmodel/gwflow/theis"
)

func testSystem(t *testing.T, g *Grid) (*linsolve.Matrix, []float64) {
	t.Helper()
	m := &Model{Grid: g, Props: NewUniformProperties(g, 1, 1, 0, 0, true)}
	A, _, err := Assemble(m, nil)
	if err != nil {
		t.Fatal(err)
	}
	b := make([]float64, g.N())
	for i := range b {
		b[i] = float64(i) + 0.5
	}
	return A, b
}

func sameSystem(t *testing.T, A1, A2 *linsolve.Matrix, b1, b2 []float64) {
	t.Helper()
	for i := 0; i < A1.N(); i++ {
		for j := 0; j < A1.N(); j++ {
			if A1.At(i, j) != A2.At(i, j) {
				t.Errorf("A[%d, %d]: %g != %g", i, j, A1.At(i, j), A2.At(i, j))
			}
		}
		if b1[i] != b2[i] {
			t.Errorf("b[%d]: %g != %g", i, b1[i], b2[i])
		}
	}
}

func TestDirichletIdempotent(t *testing.T) {
	g := mustGrid(t, 3, 3, 1, 1)
	A, b := testSystem(t, g)
	d := &Dirichlet{Cells: []Cell{{0, 0}, {1, 1}}, Value: 7}

	d.Apply(g, A, b)
	A1, b1 := A.Clone(), append([]float64(nil), b...)
	d.Apply(g, A, b)
	sameSystem(t, A, A1, b, b1)

	k := g.Index(1, 1)
	if A.Diag(k) != 1 || b[k] != 7 {
		t.Errorf("fixed row: diag=%g, b=%g", A.Diag(k), b[k])
	}
	var nnz int
	A.Row(k, func(int, float64) { nnz++ })
	if nnz != 1 {
		t.Errorf("fixed row has %d entries", nnz)
	}
	// Neighbor rows still reference the fixed cell.
	if A.At(g.Index(1, 0), k) != -1 {
		t.Error("neighbor row was modified")
	}
}

func TestGeneralHead(t *testing.T) {
	g := mustGrid(t, 2, 2, 1, 1)
	A, b := testSystem(t, g)
	A0, b0 := A.Clone(), append([]float64(nil), b...)
	gh := &GeneralHead{Cells: []Cell{{1, 0}}, Stage: 4, Conductance: 0.5}
	gh.Apply(g, A, b)
	k := g.Index(1, 0)
	if A.Diag(k) != A0.Diag(k)+0.5 {
		t.Errorf("diagonal = %g", A.Diag(k))
	}
	if b[k] != b0[k]+2 {
		t.Errorf("b = %g", b[k])
	}
	if q := gh.Inflow(3); q != 0.5 {
		t.Errorf("inflow = %g", q)
	}
}

func TestFluxBoundaries(t *testing.T) {
	g := mustGrid(t, 2, 2, 10, 20)
	_, b := testSystem(t, g)
	b0 := append([]float64(nil), b...)
	if err := (&Flux{Cells: []Cell{{0, 0}}, Kind: Neumann, Rate: 3}).ApplyRHS(g, b, 0); err != nil {
		t.Fatal(err)
	}
	if err := (&Flux{Cells: []Cell{{0, 1}}, Kind: PerArea, Rate: 0.01}).ApplyRHS(g, b, 0); err != nil {
		t.Fatal(err)
	}
	(&RechargeBoundary{Cells: []Cell{{1, 1}}, Rate: 0.001}).ApplyRHS(g, b, 0)
	for _, test := range []struct {
		c    Cell
		want float64
	}{
		{Cell{0, 0}, 3},
		{Cell{0, 1}, 2},
		{Cell{1, 1}, 0.2},
		{Cell{1, 0}, 0},
	} {
		k := g.Index(test.c.I, test.c.J)
		if math.Abs(b[k]-b0[k]-test.want) > 1e-12 {
			t.Errorf("%v: added %g, want %g", test.c, b[k]-b0[k], test.want)
		}
	}
}

func TestFluxInvalidRate(t *testing.T) {
	g := mustGrid(t, 2, 2, 10, 10)
	expr, err := schedule.NewExpression("1 / (t - 5)")
	if err != nil {
		t.Fatal(err)
	}
	f := &Flux{Cells: []Cell{{1, 1}}, Kind: Neumann, Schedule: expr}
	A, b := testSystem(t, g)
	if err := ApplyBoundaries(g, []Boundary{f}, A, b, 1); err != nil {
		t.Fatalf("finite rate: %v", err)
	}
	if err := ApplyBoundaries(g, []Boundary{f}, A, b, 5); err == nil {
		t.Error("expected an error for an infinite rate")
	}
	nan := &Flux{Cells: []Cell{{0, 0}}, Kind: PerArea, Schedule: schedule.Func(func(float64) float64 { return math.NaN() })}
	if err := nan.ApplyRHS(g, b, 0); err == nil {
		t.Error("expected an error for a NaN rate")
	}
}

func TestApplyBoundariesOrder(t *testing.T) {
	g := mustGrid(t, 3, 1, 1, 1)
	A, b := testSystem(t, g)
	bcs := []Boundary{
		&Flux{Cells: []Cell{{0, 0}, {1, 0}}, Rate: 5},
		&Dirichlet{Cells: []Cell{{0, 0}}, Value: 10},
		&GeneralHead{Cells: []Cell{{0, 0}}, Stage: 3, Conductance: 2},
	}
	b1 := append([]float64(nil), b...)
	if err := ApplyBoundaries(g, bcs, A, b, 0); err != nil {
		t.Fatal(err)
	}
	if A.Diag(0) != 1 || b[0] != 10 {
		t.Errorf("fixed cell: diag=%g b=%g; want 1, 10", A.Diag(0), b[0])
	}
	if b[1] != b1[1]+5 {
		t.Errorf("flux cell b = %g, want %g", b[1], b1[1]+5)
	}
}

func TestTheisPerimeter(t *testing.T) {
	g := mustGrid(t, 11, 11, 10, 10)
	const T, S, Q, h0 = 100., 1e-3, -0.005, 10.
	tp := &TheisPerimeter{
		Cells: g.Perimeter(),
		Wells: []TheisWell{{I: 5, J: 5, Q: Q}},
		T:     T,
		S:     S,
		Head0: h0,
	}
	if err := tp.Update(g, 0); err != nil {
		t.Fatal(err)
	}
	for _, h := range tp.Heads() {
		if h != h0 {
			t.Fatalf("head at t=0 = %g, want %g", h, h0)
		}
	}
	if err := tp.Update(g, 100); err != nil {
		t.Fatal(err)
	}
	heads := tp.Heads()
	for n, c := range tp.Cells {
		x, y := g.Center(c)
		r := math.Hypot(x-55, y-55)
		s, err := theis.Drawdown(-Q, T, S, r, 100)
		if err != nil {
			t.Fatal(err)
		}
		if different(h0-heads[n], s, 1e-8) {
			t.Errorf("%v: drawdown %g, want %g", c, h0-heads[n], s)
		}
		if !(heads[n] < h0) {
			t.Errorf("%v: extraction should lower the head", c)
		}
	}

	A, b := testSystem(t, g)
	if err := ApplyBoundaries(g, []Boundary{tp}, A, b, 200); err != nil {
		t.Fatal(err)
	}
	k := g.Index(0, 5)
	s, _ := theis.Drawdown(-Q, T, S, 50, 200)
	if A.Diag(k) != 1 || different(b[k], h0-s, 1e-12) {
		t.Errorf("boundary row: diag=%g b=%g, want 1, %g", A.Diag(k), b[k], h0-s)
	}
}

// TestTheisLocations checks that a boundary cell given an (i, j)
// location has the drawdown of the cell at that location.
func TestTheisLocations(t *testing.T) {
	g := mustGrid(t, 21, 21, 10, 10)
	wells := []TheisWell{{I: 10, J: 10, Q: -0.005}}
	located := &TheisPerimeter{Cells: []Cell{{0, 5}}, Locations: []Cell{{8, 10}},
		Wells: wells, T: 100, S: 1e-3, Head0: 10}
	actual := &TheisPerimeter{Cells: []Cell{{8, 10}}, Wells: wells, T: 100, S: 1e-3, Head0: 10}
	scaled := &TheisPerimeter{Cells: []Cell{{0, 5}}, Locations: []Cell{{8, 10}}, Dx: 20, Dy: 20,
		Wells: wells, T: 100, S: 1e-3, Head0: 10}
	outside := &TheisPerimeter{Cells: []Cell{{0, 5}}, Locations: []Cell{{-2, 10}},
		Wells: wells, T: 100, S: 1e-3, Head0: 10}
	for _, tp := range []*TheisPerimeter{located, actual, scaled, outside} {
		if err := tp.Update(g, 600); err != nil {
			t.Fatal(err)
		}
	}
	if a, b := located.Heads()[0], actual.Heads()[0]; different(a, b, 1e-12) {
		t.Errorf("head at location (8, 10) = %g, want %g", a, b)
	}
	s, err := theis.Drawdown(0.005, 100, 1e-3, 40, 600)
	if err != nil {
		t.Fatal(err)
	}
	if h := scaled.Heads()[0]; different(10-h, s, 1e-12) {
		t.Errorf("drawdown with 20 m spacing = %g, want %g", 10-h, s)
	}
	s, _ = theis.Drawdown(0.005, 100, 1e-3, 120, 600)
	if h := outside.Heads()[0]; different(10-h, s, 1e-12) {
		t.Errorf("drawdown outside of the grid = %g, want %g", 10-h, s)
	}

	both := &TheisPerimeter{Cells: []Cell{{0, 5}}, Locations: []Cell{{8, 10}}, Coords: [][2]float64{{0, 0}},
		Wells: wells, T: 100, S: 1e-3, Head0: 10}
	if err := both.Update(g, 600); err == nil {
		t.Error("expected an error for both coordinates and locations")
	}
}

func f64(v float64) *float64 { return &v }

func TestNewBoundary(t *testing.T) {
	g := mustGrid(t, 4, 3, 10, 10)
	for _, test := range []struct {
		name  string
		cfg   BoundaryConfig
		check func(t *testing.T, bc Boundary)
	}{
		{
			name: "dirichlet keyword",
			cfg:  BoundaryConfig{Type: "Dirichlet", Cells: "left", Value: f64(100)},
			check: func(t *testing.T, bc Boundary) {
				d := bc.(*Dirichlet)
				if len(d.Cells) != 3 || d.Value != 100 {
					t.Errorf("%+v", d)
				}
			},
		},
		{
			name: "neumann",
			cfg:  BoundaryConfig{Type: "neumann", Cells: [][2]int{{1, 1}}, Value: f64(2)},
			check: func(t *testing.T, bc Boundary) {
				f := bc.(*Flux)
				if f.Kind != Neumann || f.Rate != 2 {
					t.Errorf("%+v", f)
				}
			},
		},
		{
			name: "flux",
			cfg:  BoundaryConfig{Type: "flux", Cells: []interface{}{[]interface{}{int64(1), int64(2)}}, Flux: f64(1e-3)},
			check: func(t *testing.T, bc Boundary) {
				f := bc.(*Flux)
				if f.Kind != PerArea || f.Rate != 1e-3 || f.Cells[0] != (Cell{1, 2}) {
					t.Errorf("%+v", f)
				}
			},
		},
		{
			name: "river",
			cfg: BoundaryConfig{Type: "river", Cells: []interface{}{map[string]interface{}{"i": 3, "j": 0}},
				Stage: f64(5), C: f64(0.1)},
			check: func(t *testing.T, bc Boundary) {
				gh := bc.(*GeneralHead)
				if gh.Kind != River || gh.Stage != 5 || gh.Conductance != 0.1 || gh.Cells[0] != (Cell{3, 0}) {
					t.Errorf("%+v", gh)
				}
			},
		},
		{
			name: "ghb",
			cfg:  BoundaryConfig{Type: "ghb", Cells: "right", Stage: f64(5), Conductance: f64(0.2)},
			check: func(t *testing.T, bc Boundary) {
				if gh := bc.(*GeneralHead); gh.Kind != GHB || gh.Conductance != 0.2 {
					t.Errorf("%+v", gh)
				}
			},
		},
		{
			name: "recharge",
			cfg:  BoundaryConfig{Type: "recharge", Cells: "top", Rate: f64(1e-8)},
			check: func(t *testing.T, bc Boundary) {
				if r := bc.(*RechargeBoundary); len(r.Cells) != 4 || r.Rate != 1e-8 {
					t.Errorf("%+v", r)
				}
			},
		},
		{
			name: "theis",
			cfg: BoundaryConfig{Type: "theis", Cells: "perimeter", T: f64(100), S: f64(1e-3), Head0: f64(10),
				Wells: []interface{}{[]interface{}{int64(1), int64(1), -0.01}}, Dx: 10, Dy: 10},
			check: func(t *testing.T, bc Boundary) {
				tp := bc.(*TheisPerimeter)
				if len(tp.Cells) != 10 || len(tp.Wells) != 1 || tp.Wells[0] != (TheisWell{1, 1, -0.01}) || tp.MinDistance != 5 {
					t.Errorf("%+v", tp)
				}
			},
		},
		{
			name: "dirichlet linear indices",
			cfg:  BoundaryConfig{Type: "dirichlet", Cells: []interface{}{0, 1, 2, int64(5)}, Value: f64(7)},
			check: func(t *testing.T, bc Boundary) {
				want := []Cell{{0, 0}, {0, 1}, {0, 2}, {1, 2}}
				d := bc.(*Dirichlet)
				if len(d.Cells) != len(want) {
					t.Fatalf("cells %v, want %v", d.Cells, want)
				}
				for n, c := range want {
					if d.Cells[n] != c {
						t.Errorf("cell %d = %v, want %v", n, d.Cells[n], c)
					}
				}
			},
		},
		{
			name: "theis cell locations",
			cfg: BoundaryConfig{Type: "theis", Cells: [][2]int{{0, 0}}, T: f64(100), S: f64(1e-3), Head0: f64(10),
				Wells:      []interface{}{[]interface{}{int64(1), int64(1), -0.01}},
				CellCoords: []interface{}{[]interface{}{int64(8), int64(10)}}, Dx: 20, Dy: 30},
			check: func(t *testing.T, bc Boundary) {
				tp := bc.(*TheisPerimeter)
				if tp.Coords != nil || len(tp.Locations) != 1 || tp.Locations[0] != (Cell{8, 10}) || tp.Dx != 20 || tp.Dy != 30 {
					t.Errorf("%+v", tp)
				}
			},
		},
		{
			name: "theis coordinates",
			cfg: BoundaryConfig{Type: "theis", Cells: [][2]int{{0, 0}}, T: f64(100), S: f64(1e-3), Head0: f64(10),
				Wells:      []interface{}{[]interface{}{int64(1), int64(1), -0.01}},
				CellCoords: []interface{}{[]interface{}{25.5, 5.0}}},
			check: func(t *testing.T, bc Boundary) {
				tp := bc.(*TheisPerimeter)
				if tp.Locations != nil || len(tp.Coords) != 1 || tp.Coords[0] != [2]float64{25.5, 5} {
					t.Errorf("%+v", tp)
				}
			},
		},
		{
			name: "scheduled flux",
			cfg: BoundaryConfig{Type: "neumann", Cells: "bottom",
				Schedule: &schedule.Config{Type: "constant", Q: f64(4)}},
			check: func(t *testing.T, bc Boundary) {
				f := bc.(*Flux)
				if q := f.CellRate(g, Cell{0, 0}, 10); q != 4 {
					t.Errorf("rate = %g", q)
				}
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			bc, err := NewBoundary(test.cfg, g)
			if err != nil {
				t.Fatal(err)
			}
			test.check(t, bc)
		})
	}
}

func TestNewBoundaryErrors(t *testing.T) {
	g := mustGrid(t, 4, 3, 10, 10)
	for _, test := range []struct {
		name string
		cfg  BoundaryConfig
	}{
		{"no type", BoundaryConfig{Cells: "left", Value: f64(1)}},
		{"unknown type", BoundaryConfig{Type: "magic", Cells: "left", Value: f64(1)}},
		{"no cells", BoundaryConfig{Type: "dirichlet", Value: f64(1)}},
		{"bad keyword", BoundaryConfig{Type: "dirichlet", Cells: "middle", Value: f64(1)}},
		{"cell outside", BoundaryConfig{Type: "dirichlet", Cells: [][2]int{{4, 0}}, Value: f64(1)}},
		{"bad cell", BoundaryConfig{Type: "dirichlet", Cells: []interface{}{[]interface{}{1}}, Value: f64(1)}},
		{"dirichlet value", BoundaryConfig{Type: "dirichlet", Cells: "left"}},
		{"flux value", BoundaryConfig{Type: "flux", Cells: "left"}},
		{"ghb stage", BoundaryConfig{Type: "ghb", Cells: "left", Conductance: f64(1)}},
		{"ghb conductance", BoundaryConfig{Type: "ghb", Cells: "left", Stage: f64(1)}},
		{"ghb negative", BoundaryConfig{Type: "ghb", Cells: "left", Stage: f64(1), C: f64(-1)}},
		{"recharge rate", BoundaryConfig{Type: "recharge", Cells: "left"}},
		{"theis wells", BoundaryConfig{Type: "theis", Cells: "perimeter", T: f64(1), S: f64(1), Head0: f64(0)}},
		{"theis T", BoundaryConfig{Type: "theis", Cells: "perimeter", S: f64(1), Head0: f64(0),
			Wells: [][]float64{{1, 1, -1}}}},
		{"theis well outside", BoundaryConfig{Type: "theis", Cells: "perimeter", T: f64(1), S: f64(1), Head0: f64(0),
			Wells: [][]float64{{9, 1, -1}}}},
		{"theis coords", BoundaryConfig{Type: "theis", Cells: "left", T: f64(1), S: f64(1), Head0: f64(0),
			Wells: [][]float64{{1, 1, -1}}, CellCoords: [][2]float64{{0, 0}}}},
		{"bad schedule", BoundaryConfig{Type: "flux", Cells: "left", Schedule: &schedule.Config{Type: "ramp"}}},
		{"linear index outside", BoundaryConfig{Type: "dirichlet", Cells: []interface{}{12}, Value: f64(1)}},
		{"negative linear index", BoundaryConfig{Type: "dirichlet", Cells: []int{-1}, Value: f64(1)}},
		{"fractional linear index", BoundaryConfig{Type: "dirichlet", Cells: []interface{}{1.5}, Value: f64(1)}},
		{"theis mixed coords", BoundaryConfig{Type: "theis", Cells: [][2]int{{0, 0}, {0, 1}}, T: f64(1), S: f64(1),
			Head0: f64(0), Wells: [][]float64{{1, 1, -1}},
			CellCoords: []interface{}{[]interface{}{1, 2}, []interface{}{1.5, 2.5}}}},
		{"theis locations count", BoundaryConfig{Type: "theis", Cells: "left", T: f64(1), S: f64(1), Head0: f64(0),
			Wells: [][]float64{{1, 1, -1}}, CellCoords: [][2]int{{0, 0}}}},
	} {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewBoundary(test.cfg, g); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
