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

	"github.com/spatialmodel/gwflow/schedule"
)

// Well is a pumping or injection well. Rates are volumetric [m³/s]:
// negative values extract water and positive values inject it.
type Well struct {
	Name string

	// Q is the rate used when Schedule is nil.
	Q float64

	// Schedule, if not nil, gives the rate as a function of time.
	Schedule schedule.Schedule

	cell Cell
}

// NewWell returns a well located in cell (i, j) of g.
func NewWell(g *Grid, name string, i, j int, Q float64, s schedule.Schedule) (*Well, error) {
	c := Cell{I: i, J: j}
	if err := g.checkCell(c); err != nil {
		return nil, fmt.Errorf("gwflow: well %q: %w", name, err)
	}
	return &Well{Name: name, Q: Q, Schedule: s, cell: c}, nil
}

// NewWellAt returns a well located in the grid cell that contains the
// point (x, y).
func NewWellAt(g *Grid, name string, x, y, Q float64, s schedule.Schedule) (*Well, error) {
	c, err := g.CellAt(x, y)
	if err != nil {
		return nil, fmt.Errorf("gwflow: well %q: %w", name, err)
	}
	return &Well{Name: name, Q: Q, Schedule: s, cell: c}, nil
}

// Cell returns the grid cell the well is located in.
func (w *Well) Cell() Cell { return w.cell }

// Rate returns the well rate at time t.
func (w *Well) Rate(t float64) float64 {
	if w.Schedule != nil {
		return w.Schedule.Rate(t)
	}
	return w.Q
}
