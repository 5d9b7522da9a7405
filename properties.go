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

// DefaultMinThickness is the smallest saturated thickness used when
// calculating unconfined transmissivity [m].
const DefaultMinThickness = 0.1

// AquiferProperties holds the hydraulic parameters of the aquifer.
// Per-cell arrays have shape (nlay, nx, ny). Only single-layer
// aquifers can currently be simulated.
type AquiferProperties struct {
	// Hydraulic conductivity [m/s] in the x, y, and z directions.
	// Kz is optional and is not used by the two-dimensional flow
	// equations.
	Kx, Ky, Kz *sparse.DenseArray

	// Thickness is the thickness of each layer [m]. It sets the
	// saturated thickness of confined aquifers.
	Thickness []float64

	// Ss is the specific storage [1/m], used when Confined is true.
	Ss *sparse.DenseArray

	// Sy is the specific yield [-], used when Confined is false.
	Sy *sparse.DenseArray

	// Porosity [-] is carried for output but is not used to calculate flow.
	Porosity *sparse.DenseArray

	// Confined specifies whether the aquifer is confined. If it is not,
	// transmissivity depends on the saturated thickness, head - Bottom.
	Confined bool

	// Bottom is the elevation of the aquifer bottom [m].
	Bottom float64

	// MinThickness is the minimum saturated thickness of an unconfined
	// aquifer [m]. If zero, DefaultMinThickness is used.
	MinThickness float64
}

func uniformLayer(g *Grid, v float64) *sparse.DenseArray {
	a := sparse.ZerosDense(1, g.Nx(), g.Ny())
	for i := range a.Elements {
		a.Elements[i] = v
	}
	return a
}

// NewUniformProperties returns single-layer properties with the same
// conductivity K, layer thickness, specific storage ss, and specific
// yield sy in every cell.
func NewUniformProperties(g *Grid, K, thickness, ss, sy float64, confined bool) *AquiferProperties {
	return &AquiferProperties{
		Kx:        uniformLayer(g, K),
		Ky:        uniformLayer(g, K),
		Kz:        uniformLayer(g, K),
		Thickness: []float64{thickness},
		Ss:        uniformLayer(g, ss),
		Sy:        uniformLayer(g, sy),
		Confined:  confined,
	}
}

// NewTransmissivityProperties returns confined, single-layer properties
// with transmissivity T [m²/s] and storativity S [-], represented as a
// unit-thickness layer with K = T and Ss = S.
func NewTransmissivityProperties(g *Grid, T, S float64) *AquiferProperties {
	return NewUniformProperties(g, T, 1, S, S, true)
}

// NLay returns the number of layers.
func (p *AquiferProperties) NLay() int { return len(p.Thickness) }

func (p *AquiferProperties) minThickness() float64 {
	if p.MinThickness > 0 {
		return p.MinThickness
	}
	return DefaultMinThickness
}

// Check verifies that the properties are consistent with g.
func (p *AquiferProperties) Check(g *Grid) error {
	nlay := p.NLay()
	if nlay == 0 {
		return fmt.Errorf("gwflow: aquifer properties have no layers")
	}
	for l, b := range p.Thickness {
		if !(b > 0) {
			return fmt.Errorf("gwflow: layer %d thickness %g must be positive", l, b)
		}
	}
	want := []int{nlay, g.Nx(), g.Ny()}
	check := func(name string, a *sparse.DenseArray, required bool) error {
		if a == nil {
			if required {
				return fmt.Errorf("gwflow: aquifer property %s is missing", name)
			}
			return nil
		}
		if len(a.Shape) != 3 || a.Shape[0] != want[0] || a.Shape[1] != want[1] || a.Shape[2] != want[2] {
			return fmt.Errorf("gwflow: aquifer property %s has shape %v; want %v", name, a.Shape, want)
		}
		for i, v := range a.Elements {
			if v < 0 {
				return fmt.Errorf("gwflow: aquifer property %s is negative (%g) at index %d", name, v, i)
			}
		}
		return nil
	}
	for _, v := range []struct {
		name     string
		a        *sparse.DenseArray
		required bool
	}{
		{"Kx", p.Kx, true},
		{"Ky", p.Ky, true},
		{"Kz", p.Kz, false},
		{"Ss", p.Ss, false},
		{"Sy", p.Sy, false},
		{"Porosity", p.Porosity, false},
	} {
		if err := check(v.name, v.a, v.required); err != nil {
			return err
		}
	}
	if p.MinThickness < 0 {
		return fmt.Errorf("gwflow: minimum thickness %g must not be negative", p.MinThickness)
	}
	return nil
}

// checkStorage returns an error if the storage property needed by a
// transient simulation is missing: Ss for confined aquifers or Sy for
// unconfined aquifers.
func (p *AquiferProperties) checkStorage() error {
	if p.Confined && p.Ss == nil {
		return fmt.Errorf("gwflow: transient simulation of a confined aquifer requires specific storage (Ss)")
	}
	if !p.Confined && p.Sy == nil {
		return fmt.Errorf("gwflow: transient simulation of an unconfined aquifer requires specific yield (Sy)")
	}
	return nil
}

// checkSingleLayer returns an error for multi-layer properties.
func (p *AquiferProperties) checkSingleLayer() error {
	if n := p.NLay(); n != 1 {
		return fmt.Errorf("gwflow: %d layers specified but only single-layer aquifers are supported", n)
	}
	return nil
}

// layerValue returns a[0, i, j], or 0 if a is nil.
func layerValue(a *sparse.DenseArray, k int) float64 {
	if a == nil {
		return 0
	}
	// With a single layer the (0, i, j) element sits at i*ny + j.
	return a.Elements[k]
}
