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

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// Sources holds the volumetric source and sink rates [m³/s] in each
// cell, split by type. Positive values add water to the aquifer.
type Sources struct {
	Wells    []float64
	Recharge []float64
}

// Total returns the sum of all sources in each cell.
func (s *Sources) Total() []float64 {
	t := append([]float64(nil), s.Wells...)
	floats.Add(t, s.Recharge)
	return t
}

// combine returns θ·s + (1-θ)·s0.
func (s *Sources) combine(s0 *Sources, theta float64) *Sources {
	if s0 == nil || theta == 1 {
		return s
	}
	o := &Sources{
		Wells:    make([]float64, len(s.Wells)),
		Recharge: make([]float64, len(s.Recharge)),
	}
	floats.AddScaledTo(o.Wells, floats.ScaleTo(o.Wells, 1-theta, s0.Wells), theta, s.Wells)
	floats.AddScaledTo(o.Recharge, floats.ScaleTo(o.Recharge, 1-theta, s0.Recharge), theta, s.Recharge)
	return o
}

// AssembleSources evaluates the wells and recharge of m at time t.
// Sources in inactive cells are ignored. Wells in the same cell add
// together.
func AssembleSources(m *Model, t float64) (*Sources, error) {
	g := m.Grid
	n := g.N()

	wells := sparse.ZerosSparse(n)
	for _, w := range m.Wells {
		q := w.Rate(t)
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return nil, fmt.Errorf("gwflow: well %q has invalid rate %g at t=%g", w.Name, q, t)
		}
		k := g.Index(w.cell.I, w.cell.J)
		if !m.IsActive(k) {
			continue
		}
		wells.AddVal(q, k)
	}
	s := &Sources{
		Wells:    wells.ToDense(),
		Recharge: make([]float64, n),
	}
	if m.Recharge == nil {
		return s, nil
	}
	flux, err := m.Recharge.flux(g, t)
	if err != nil {
		return nil, err
	}
	if len(flux) != n {
		return nil, fmt.Errorf("gwflow: recharge has %d values but grid has %d cells", len(flux), n)
	}
	for k, r := range flux {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("gwflow: invalid recharge %g in cell %v at t=%g", r, g.Cell(k), t)
		}
		if m.IsActive(k) {
			s.Recharge[k] = r * g.Area(g.Cell(k))
		}
	}
	return s, nil
}

// SourceSink returns the total volumetric source rate [m³/s] in each
// cell at time t.
func SourceSink(m *Model, t float64) ([]float64, error) {
	s, err := AssembleSources(m, t)
	if err != nil {
		return nil, err
	}
	return s.Total(), nil
}
