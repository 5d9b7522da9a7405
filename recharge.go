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
	"github.com/spatialmodel/gwflow/schedule"
)

// Recharge is a distributed flux across the top of the aquifer
// [m/s, volume per unit area per time]. Positive values add water.
// The implementations are ConstantRecharge, FieldRecharge,
// ScheduledRecharge, and RechargeFunc.
type Recharge interface {
	// flux returns the recharge flux in each cell at time t.
	flux(g *Grid, t float64) ([]float64, error)
}

// ConstantRecharge is the same flux everywhere at all times.
type ConstantRecharge float64

func (r ConstantRecharge) flux(g *Grid, _ float64) ([]float64, error) {
	f := make([]float64, g.N())
	for i := range f {
		f[i] = float64(r)
	}
	return f, nil
}

// FieldRecharge is a constant flux that varies in space.
type FieldRecharge struct {
	field *sparse.DenseArray
}

// NewFieldRecharge returns recharge from a field with shape (nx, ny).
func NewFieldRecharge(g *Grid, field *sparse.DenseArray) (*FieldRecharge, error) {
	if err := g.checkField("recharge", field); err != nil {
		return nil, err
	}
	return &FieldRecharge{field: field.Copy()}, nil
}

// NewFlatRecharge returns recharge from an array with one value per
// cell in linear index order.
func NewFlatRecharge(g *Grid, v []float64) (*FieldRecharge, error) {
	f, err := g.FieldFromFlat(v)
	if err != nil {
		return nil, fmt.Errorf("gwflow: recharge: %v", err)
	}
	return &FieldRecharge{field: f}, nil
}

func (r *FieldRecharge) flux(g *Grid, _ float64) ([]float64, error) {
	if len(r.field.Elements) != g.N() {
		return nil, fmt.Errorf("gwflow: recharge field has %d cells but grid has %d", len(r.field.Elements), g.N())
	}
	return append([]float64(nil), r.field.Elements...), nil
}

// ScheduledRecharge is a spatially uniform flux that varies in time.
type ScheduledRecharge struct {
	Schedule schedule.Schedule
}

func (r ScheduledRecharge) flux(g *Grid, t float64) ([]float64, error) {
	if r.Schedule == nil {
		return nil, fmt.Errorf("gwflow: scheduled recharge has no schedule")
	}
	return ConstantRecharge(r.Schedule.Rate(t)).flux(g, t)
}

// RechargeFunc returns the recharge in effect at time t, which may be
// any of the other Recharge types.
type RechargeFunc func(t float64) Recharge

func (f RechargeFunc) flux(g *Grid, t float64) ([]float64, error) {
	r := f(t)
	if r == nil {
		return make([]float64, g.N()), nil
	}
	return r.flux(g, t)
}
