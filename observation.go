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

import "fmt"

// ObservationPoint is a cell at which the head is recorded during a
// simulation.
type ObservationPoint struct {
	Name string
	I, J int

	// ReferenceHead is the head from which drawdown is measured. If
	// nil, the initial head in the cell is used.
	ReferenceHead *float64
}

// ObservationSeries holds the recorded head and drawdown at an
// observation point.
type ObservationSeries struct {
	Point     ObservationPoint
	Reference float64

	Steps     []int
	Times     []float64
	Heads     []float64
	Drawdowns []float64
}

// ObservationRecorder records head time series at observation points.
type ObservationRecorder struct {
	g      *Grid
	series []*ObservationSeries
}

// NewObservationRecorder returns a recorder for points in g, where h0
// is the initial head used as the default drawdown reference.
func NewObservationRecorder(g *Grid, points []ObservationPoint, h0 []float64) (*ObservationRecorder, error) {
	if len(h0) != g.N() {
		return nil, fmt.Errorf("gwflow: initial head has %d values but grid has %d cells", len(h0), g.N())
	}
	r := &ObservationRecorder{g: g}
	for _, p := range points {
		c := Cell{I: p.I, J: p.J}
		if err := g.checkCell(c); err != nil {
			return nil, fmt.Errorf("gwflow: observation point %q: %w", p.Name, err)
		}
		s := &ObservationSeries{Point: p, Reference: h0[g.Index(p.I, p.J)]}
		if p.ReferenceHead != nil {
			s.Reference = *p.ReferenceHead
		}
		r.series = append(r.series, s)
	}
	return r, nil
}

// Record adds the head h at time t to every series.
func (r *ObservationRecorder) Record(step int, t float64, h []float64) {
	for _, s := range r.series {
		v := h[r.g.Index(s.Point.I, s.Point.J)]
		s.Steps = append(s.Steps, step)
		s.Times = append(s.Times, t)
		s.Heads = append(s.Heads, v)
		s.Drawdowns = append(s.Drawdowns, s.Reference-v)
	}
}

// Series returns the recorded series, in the order the points were
// given.
func (r *ObservationRecorder) Series() []*ObservationSeries { return r.series }

// Get returns the series for the observation point with the given
// name.
func (r *ObservationRecorder) Get(name string) (*ObservationSeries, error) {
	for _, s := range r.series {
		if s.Point.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("gwflow: no observation point named %q", name)
}
