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

	"github.com/spatialmodel/gwflow/schedule"
)

func TestAssembleUniform(t *testing.T) {
	g := mustGrid(t, 3, 2, 10, 20)
	m := &Model{Grid: g, Props: NewUniformProperties(g, 2, 5, 1e-5, 0.2, true)}
	A, info, err := Assemble(m, nil)
	if err != nil {
		t.Fatal(err)
	}
	if info.DryConnections != 0 {
		t.Errorf("dry connections = %d", info.DryConnections)
	}
	// T = 10; along x the face is 20 m wide and cells are 10 m apart,
	// along y the face is 10 m wide and cells are 20 m apart.
	k00, k10, k01 := g.Index(0, 0), g.Index(1, 0), g.Index(0, 1)
	if v := A.At(k00, k10); v != -20 {
		t.Errorf("x conductance = %g, want -20", v)
	}
	if v := A.At(k00, k01); v != -5 {
		t.Errorf("y conductance = %g, want -5", v)
	}
	if v := A.Diag(k00); v != 25 {
		t.Errorf("corner diagonal = %g, want 25", v)
	}
	if v := A.Diag(k10); v != 45 {
		t.Errorf("edge diagonal = %g, want 45", v)
	}
	for i := 0; i < g.N(); i++ {
		var sum float64
		A.Row(i, func(j int, v float64) {
			sum += v
			if A.At(j, i) != v {
				t.Errorf("A is not symmetric at (%d, %d)", i, j)
			}
		})
		if math.Abs(sum) > 1e-12 {
			t.Errorf("row %d sums to %g", i, sum)
		}
	}
	if A.At(k00, g.Index(1, 1)) != 0 {
		t.Error("diagonal neighbors should not be connected")
	}
}

func TestAssembleHarmonic(t *testing.T) {
	g, err := NewGrid([]float64{1, 3}, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	p := NewUniformProperties(g, 1, 1, 0, 0, true)
	p.Kx.Elements[1] = 3
	m := &Model{Grid: g, Props: p}
	A, _, err := Assemble(m, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Two half-cells in series: 1 / (0.5/1 + 1.5/3) = 1.
	if v := A.At(0, 1); different(v, -1, 1e-12) {
		t.Errorf("conductance = %g, want -1", v)
	}
	if v := faceConductance(1, 3, 1, 1, 1); different(v, harmonicMean(1, 3), 1e-12) {
		t.Errorf("uniform spacing conductance %g != harmonic mean %g", v, harmonicMean(1, 3))
	}
	if v := faceConductance(0, 3, 1, 1, 1); v != 0 {
		t.Errorf("zero transmissivity conductance = %g", v)
	}
}

func TestAssembleUnconfined(t *testing.T) {
	g := mustGrid(t, 3, 1, 1, 1)
	p := NewUniformProperties(g, 2, 100, 0, 0.2, false)
	p.Bottom = 1
	m := &Model{Grid: g, Props: p}

	tx, _, err := Transmissivity(m, []float64{5, 5, 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if tx[0] != 8 {
		t.Errorf("T = %g, want 8", tx[0])
	}
	if different(tx[2], 2*DefaultMinThickness, 1e-12) {
		t.Errorf("dry cell T = %g, want %g", tx[2], 2*DefaultMinThickness)
	}

	A, info, err := Assemble(m, []float64{5, 0.5, 0.9})
	if err != nil {
		t.Fatal(err)
	}
	if info.DryConnections != 1 {
		t.Errorf("dry connections = %d, want 1", info.DryConnections)
	}
	if A.At(1, 2) != 0 {
		t.Errorf("dry cells are connected: %g", A.At(1, 2))
	}
	if A.At(0, 1) == 0 {
		t.Error("a wet and a dry cell should be connected")
	}

	if _, _, err := Assemble(m, []float64{5}); err == nil {
		t.Error("expected an error for a short head array")
	}
}

func TestAssembleInactive(t *testing.T) {
	g := mustGrid(t, 3, 1, 1, 1)
	m := &Model{
		Grid:   g,
		Props:  NewUniformProperties(g, 1, 1, 0, 0, true),
		Active: []bool{true, false, true},
	}
	A, _, err := Assemble(m, nil)
	if err != nil {
		t.Fatal(err)
	}
	if A.NNZ() != 0 {
		t.Errorf("inactive cell splits the grid, so there should be no entries; got %d", A.NNZ())
	}
}

func TestAssembleMultiLayer(t *testing.T) {
	g := mustGrid(t, 2, 2, 1, 1)
	p := NewUniformProperties(g, 1, 1, 0, 0, true)
	p.Thickness = append(p.Thickness, 1)
	if _, _, err := Assemble(&Model{Grid: g, Props: p}, nil); err == nil {
		t.Error("expected an error for two layers")
	}
}

func TestStorage(t *testing.T) {
	g := mustGrid(t, 2, 1, 10, 20)
	m := &Model{Grid: g, Props: NewUniformProperties(g, 1, 5, 1e-4, 0.2, true), Active: []bool{true, false}}
	s := StorageCoefficients(m)
	if different(s[0], 1e-4*5*200, 1e-12) || s[1] != 0 {
		t.Errorf("confined storage = %v", s)
	}
	m.Props.Confined = false
	s = StorageCoefficients(m)
	if different(s[0], 0.2*200, 1e-12) || s[1] != 0 {
		t.Errorf("unconfined storage = %v", s)
	}
}

func TestSources(t *testing.T) {
	g := mustGrid(t, 3, 2, 10, 20)
	w1, _ := NewWell(g, "a", 1, 1, -1, nil)
	w2, _ := NewWell(g, "b", 1, 1, -2, nil)
	step, err := schedule.NewStep([]float64{0, 100}, []float64{0.5, 1.5})
	if err != nil {
		t.Fatal(err)
	}
	w3, _ := NewWell(g, "c", 2, 0, 0, step)
	w4, _ := NewWell(g, "inactive", 0, 0, -5, nil)
	if _, err := NewWell(g, "outside", 3, 0, 0, nil); err == nil {
		t.Error("expected an error for a well outside the grid")
	}
	active := make([]bool, g.N())
	for i := range active {
		active[i] = true
	}
	active[g.Index(0, 0)] = false
	m := &Model{
		Grid:     g,
		Props:    NewUniformProperties(g, 1, 1, 0, 0, true),
		Wells:    []*Well{w1, w2, w3, w4},
		Recharge: ConstantRecharge(1e-3),
		Active:   active,
	}

	s, err := AssembleSources(m, 150)
	if err != nil {
		t.Fatal(err)
	}
	if v := s.Wells[g.Index(1, 1)]; v != -3 {
		t.Errorf("wells in the same cell = %g, want -3", v)
	}
	if v := s.Wells[g.Index(2, 0)]; v != 1.5 {
		t.Errorf("scheduled well = %g, want 1.5", v)
	}
	if v := s.Wells[g.Index(0, 0)]; v != 0 {
		t.Errorf("inactive well = %g, want 0", v)
	}
	if v := s.Recharge[g.Index(2, 1)]; different(v, 0.2, 1e-12) {
		t.Errorf("recharge = %g, want 0.2", v)
	}
	if v := s.Recharge[g.Index(0, 0)]; v != 0 {
		t.Errorf("inactive recharge = %g", v)
	}
	f, err := SourceSink(m, 50)
	if err != nil {
		t.Fatal(err)
	}
	if v := f[g.Index(2, 0)]; different(v, 0.7, 1e-12) {
		t.Errorf("total source = %g, want 0.7", v)
	}

	m.Wells = append(m.Wells, &Well{Name: "bad", Schedule: schedule.Func(func(float64) float64 { return math.NaN() })})
	if _, err := AssembleSources(m, 0); err == nil {
		t.Error("expected an error for a NaN well rate")
	}
}

func TestRecharge(t *testing.T) {
	g := mustGrid(t, 2, 2, 1, 1)
	field := []float64{1, 2, 3, 4}
	fr, err := NewFlatRecharge(g, field)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewFlatRecharge(g, field[:3]); err == nil {
		t.Error("expected an error for a short recharge array")
	}
	sin, err := schedule.NewSinusoidal(1, 1, 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		name string
		r    Recharge
		t    float64
		want []float64
	}{
		{"constant", ConstantRecharge(2), 0, []float64{2, 2, 2, 2}},
		{"field", fr, 0, field},
		{"scheduled", ScheduledRecharge{Schedule: sin}, 1, []float64{2, 2, 2, 2}},
		{"func", RechargeFunc(func(t float64) Recharge {
			if t < 10 {
				return ConstantRecharge(0)
			}
			return fr
		}), 20, field},
		{"func nil", RechargeFunc(func(float64) Recharge { return nil }), 0, []float64{0, 0, 0, 0}},
	} {
		t.Run(test.name, func(t *testing.T) {
			f, err := test.r.flux(g, test.t)
			if err != nil {
				t.Fatal(err)
			}
			for i, v := range f {
				if math.Abs(v-test.want[i]) > 1e-12 {
					t.Errorf("flux = %v, want %v", f, test.want)
					break
				}
			}
		})
	}
}
