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
)

// AssemblyInfo holds diagnostics from conductance matrix assembly.
type AssemblyInfo struct {
	// DryConnections is the number of cell faces given zero conductance
	// because the saturated thickness on both sides is not positive.
	DryConnections int
}

// SaturatedThickness returns the thickness of the saturated part of
// the aquifer in each cell. For confined aquifers this is the layer
// thickness. For unconfined aquifers it is head - Bottom, which may be
// negative for dry cells. head is only used for unconfined aquifers and
// may be nil otherwise.
func SaturatedThickness(m *Model, head []float64) ([]float64, error) {
	n := m.Grid.N()
	b := make([]float64, n)
	if m.Props.Confined {
		for k := range b {
			b[k] = m.Props.Thickness[0]
		}
		return b, nil
	}
	if len(head) != n {
		return nil, fmt.Errorf("gwflow: head has %d values but grid has %d cells", len(head), n)
	}
	for k, h := range head {
		b[k] = h - m.Props.Bottom
	}
	return b, nil
}

// Transmissivity returns the transmissivity [m²/s] of each cell in the
// x and y directions, using the saturated thickness of each cell with
// the minimum-thickness floor applied for unconfined aquifers.
func Transmissivity(m *Model, head []float64) (tx, ty []float64, err error) {
	b, err := SaturatedThickness(m, head)
	if err != nil {
		return nil, nil, err
	}
	minB := m.Props.minThickness()
	tx = make([]float64, len(b))
	ty = make([]float64, len(b))
	for k, bk := range b {
		if !m.Props.Confined {
			bk = math.Max(bk, minB)
		}
		tx[k] = layerValue(m.Props.Kx, k) * bk
		ty[k] = layerValue(m.Props.Ky, k) * bk
	}
	return tx, ty, nil
}

// faceConductance returns the conductance [m²/s] of the face between
// two cells with transmissivities t1 and t2 and widths d1 and d2 along
// the connection, where w is the width of the shared face. The two
// half-cells act in series, so the result is w times the harmonic mean
// of t/d on each side, which on a uniform grid with spacing Δ is
// harmonicMean(t1, t2)·w/Δ.
func faceConductance(t1, t2, d1, d2, w float64) float64 {
	if t1 <= 0 || t2 <= 0 {
		return 0
	}
	return w * harmonicMean(t1/d1, t2/d2)
}

// harmonicMean returns the harmonic mean of a and b.
func harmonicMean(a, b float64) float64 {
	if a+b == 0 {
		return 0
	}
	return 2 * a * b / (a + b)
}

// Assemble builds the conductance matrix A of the model, where A·h is
// the net volumetric outflow [m³/s] from each cell. Off-diagonal
// entries are the negative conductances between neighboring cells and
// each diagonal entry is the sum of the conductances of that cell.
// head is the current head estimate, which is used to calculate the
// saturated thickness of unconfined aquifers.
//
// Inactive cells have no connections, so their rows are empty. Boundary
// conditions are not applied here.
func Assemble(m *Model, head []float64) (*linsolve.Matrix, *AssemblyInfo, error) {
	if err := m.Props.checkSingleLayer(); err != nil {
		return nil, nil, err
	}
	g := m.Grid
	b, err := SaturatedThickness(m, head)
	if err != nil {
		return nil, nil, err
	}
	tx, ty, err := Transmissivity(m, head)
	if err != nil {
		return nil, nil, err
	}
	info := new(AssemblyInfo)
	A := linsolve.NewMatrix(g.N())
	connect := func(k1, k2 int, c float64) {
		if c == 0 {
			return
		}
		A.Add(k1, k1, c)
		A.Add(k2, k2, c)
		A.Add(k1, k2, -c)
		A.Add(k2, k1, -c)
	}
	dry := func(k1, k2 int) bool {
		if !m.Props.Confined && b[k1] <= 0 && b[k2] <= 0 {
			info.DryConnections++
			return true
		}
		return false
	}
	nx, ny := g.Nx(), g.Ny()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			k := g.Index(i, j)
			if !m.IsActive(k) {
				continue
			}
			if i+1 < nx {
				ke := g.Index(i+1, j)
				if m.IsActive(ke) && !dry(k, ke) {
					connect(k, ke, faceConductance(tx[k], tx[ke], g.Dx[i], g.Dx[i+1], g.Dy[j]))
				}
			}
			if j+1 < ny {
				kn := g.Index(i, j+1)
				if m.IsActive(kn) && !dry(k, kn) {
					connect(k, kn, faceConductance(ty[k], ty[kn], g.Dy[j], g.Dy[j+1], g.Dx[i]))
				}
			}
		}
	}
	return A, info, nil
}

// pinInactive turns the rows of inactive cells into identity rows that
// hold each cell at the head in h.
func pinInactive(m *Model, A *linsolve.Matrix, rhs, h []float64) {
	if m.Active == nil {
		return
	}
	for k, active := range m.Active {
		if !active {
			A.ZeroRow(k)
			A.Set(k, k, 1)
			rhs[k] = h[k]
		}
	}
}
