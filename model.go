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

	"github.com/ctessum/sparse"
)

// Model holds the static description of an aquifer simulation. It is
// not modified while a simulation runs.
type Model struct {
	Grid  *Grid
	Props *AquiferProperties

	Wells      []*Well
	Boundaries []Boundary

	// Recharge is optional.
	Recharge Recharge

	// Active marks the cells that take part in the flow calculation,
	// in linear index order. If nil, all cells are active.
	Active []bool

	// H0 is the initial head [m] with shape (nx, ny). It is required
	// for transient simulations.
	H0 *sparse.DenseArray

	Observations []ObservationPoint
}

// Check verifies that the components of the model are consistent
// with each other.
func (m *Model) Check() error {
	if m.Grid == nil {
		return fmt.Errorf("gwflow: model has no grid")
	}
	if m.Props == nil {
		return fmt.Errorf("gwflow: model has no aquifer properties")
	}
	if err := m.Props.Check(m.Grid); err != nil {
		return err
	}
	if err := m.Props.checkSingleLayer(); err != nil {
		return err
	}
	if m.Active != nil && len(m.Active) != m.Grid.N() {
		return fmt.Errorf("gwflow: active mask has %d cells but grid has %d", len(m.Active), m.Grid.N())
	}
	if m.H0 != nil {
		if err := m.Grid.checkField("initial head", m.H0); err != nil {
			return err
		}
	}
	for _, w := range m.Wells {
		if err := m.Grid.checkCell(w.cell); err != nil {
			return fmt.Errorf("gwflow: well %q: %w", w.Name, err)
		}
	}
	for _, bc := range m.Boundaries {
		if err := checkBoundary(m.Grid, bc); err != nil {
			return err
		}
	}
	for _, o := range m.Observations {
		if err := m.Grid.checkCell(Cell{I: o.I, J: o.J}); err != nil {
			return fmt.Errorf("gwflow: observation point %q: %w", o.Name, err)
		}
	}
	return nil
}

// IsActive reports whether the cell at linear index k is active.
func (m *Model) IsActive(k int) bool {
	return m.Active == nil || m.Active[k]
}

// initialHead returns a copy of H0 as a flat array.
func (m *Model) initialHead() ([]float64, error) {
	if m.H0 == nil {
		return nil, fmt.Errorf("gwflow: model has no initial head")
	}
	return append([]float64(nil), m.H0.Elements...), nil
}
