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
	"bytes"
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gwflow/linsolve"
)

// Names of the budget components.
const (
	BudgetStorage       = "STORAGE"
	BudgetConstantHead  = "CONSTANT HEAD"
	BudgetWells         = "WELLS"
	BudgetRecharge      = "RECHARGE"
	BudgetHeadDependent = "HEAD DEP BOUNDS"
	BudgetRiver         = "RIVER LEAKAGE"
	BudgetFlux          = "SPECIFIED FLUX"
)

var budgetOrder = []string{BudgetStorage, BudgetConstantHead, BudgetWells,
	BudgetRecharge, BudgetHeadDependent, BudgetRiver, BudgetFlux}

// BudgetTerm holds the total inflow to and outflow from the aquifer
// [m³/s] for one budget component. Both are non-negative.
type BudgetTerm struct {
	Name    string
	In, Out float64
}

// Budget is the volumetric water budget of the aquifer over a time
// step. Flows are rates [m³/s].
type Budget struct {
	Step int
	Time float64

	Terms []BudgetTerm

	TotalIn, TotalOut float64

	// Imbalance is TotalIn - TotalOut.
	Imbalance float64

	// PercentError is the absolute imbalance as a percentage of the
	// total inflow (or outflow, if there is no inflow).
	PercentError float64
}

type budgetAccumulator map[string]*BudgetTerm

func (ba budgetAccumulator) add(name string, q float64) {
	t, ok := ba[name]
	if !ok {
		t = &BudgetTerm{Name: name}
		ba[name] = t
	}
	if q > 0 {
		t.In += q
	} else {
		t.Out -= q
	}
}

// ComputeBudget calculates the water budget of a solved time step,
// where A is the conductance matrix used for the step (before
// integration and boundary conditions were applied), theta is the
// implicitness of the integrator, and h is the head at the end of the
// step. For steady-state solutions ctx.Storage should be zero.
//
// Only active cells that are not held at a fixed head are included;
// flow to and from fixed-head cells is reported as CONSTANT HEAD.
func ComputeBudget(m *Model, A *linsolve.Matrix, ctx *StepContext, theta float64, h []float64) (*Budget, error) {
	g := m.Grid
	n := g.N()
	if len(h) != n || len(ctx.HPrev) != n {
		return nil, fmt.Errorf("gwflow: budget: head has %d values but grid has %d cells", len(h), n)
	}
	fixed := fixedHeads(g, m.Boundaries)
	include := func(k int) bool {
		_, isFixed := fixed[k]
		return m.IsActive(k) && !isFixed
	}

	ba := make(budgetAccumulator)
	for _, name := range budgetOrder {
		ba[name] = &BudgetTerm{Name: name}
	}

	for k := 0; k < n; k++ {
		if !include(k) {
			continue
		}
		if ctx.Storage != nil && ctx.Dt > 0 {
			ba.add(BudgetStorage, ctx.Storage[k]/ctx.Dt*(ctx.HPrev[k]-h[k]))
		}
		if ctx.Sources != nil {
			if q := ctx.Sources.Wells[k]; q != 0 {
				ba.add(BudgetWells, q)
			}
			if q := ctx.Sources.Recharge[k]; q != 0 {
				ba.add(BudgetRecharge, q)
			}
		}
	}

	// Flow between fixed-head cells and the rest of the aquifer, using
	// the time-weighted head of the integrator.
	hTheta := make([]float64, n)
	for k := range hTheta {
		hTheta[k] = theta*h[k] + (1-theta)*ctx.HPrev[k]
	}
	for k := range fixed {
		if !m.IsActive(k) {
			continue
		}
		A.Row(k, func(j int, v float64) {
			if j == k || !include(j) {
				return
			}
			ba.add(BudgetConstantHead, -v*(hTheta[k]-hTheta[j]))
		})
	}

	for _, bc := range m.Boundaries {
		switch bc := bc.(type) {
		case *GeneralHead:
			name := BudgetHeadDependent
			if bc.Kind == River {
				name = BudgetRiver
			}
			for _, c := range bc.Cells {
				if k := g.Index(c.I, c.J); include(k) {
					ba.add(name, bc.Inflow(h[k]))
				}
			}
		case *Flux:
			for _, c := range bc.Cells {
				if k := g.Index(c.I, c.J); include(k) {
					ba.add(BudgetFlux, bc.CellRate(g, c, ctx.T1))
				}
			}
		case *RechargeBoundary:
			for _, c := range bc.Cells {
				if k := g.Index(c.I, c.J); include(k) {
					ba.add(BudgetRecharge, bc.CellRate(g, c))
				}
			}
		}
	}

	b := &Budget{Step: ctx.Step, Time: ctx.T1}
	for _, name := range budgetOrder {
		t := ba[name]
		b.Terms = append(b.Terms, *t)
		b.TotalIn += t.In
		b.TotalOut += t.Out
	}
	b.Imbalance = b.TotalIn - b.TotalOut
	switch {
	case b.TotalIn > 0:
		b.PercentError = math.Abs(b.Imbalance) / b.TotalIn * 100
	case b.TotalOut > 0:
		b.PercentError = math.Abs(b.Imbalance) / b.TotalOut * 100
	}
	return b, nil
}

// Term returns the budget term with the given name.
func (b *Budget) Term(name string) BudgetTerm {
	for _, t := range b.Terms {
		if t.Name == name {
			return t
		}
	}
	return BudgetTerm{Name: name}
}

// String returns the budget formatted as a table.
func (b *Budget) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "VOLUMETRIC BUDGET, STEP %d, TIME %g\n", b.Step, b.Time)
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "\tIN [m³/s]\tOUT [m³/s]\t")
	for _, t := range b.Terms {
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\t\n", t.Name, t.In, t.Out)
	}
	fmt.Fprintf(w, "TOTAL\t%.6g\t%.6g\t\n", b.TotalIn, b.TotalOut)
	w.Flush()
	fmt.Fprintf(&buf, "IN - OUT = %.6g\nPERCENT DISCREPANCY = %.4g\n", b.Imbalance, b.PercentError)
	return buf.String()
}

// Fields returns the budget as structured log fields.
func (b *Budget) Fields() logrus.Fields {
	f := logrus.Fields{
		"step":          b.Step,
		"time":          b.Time,
		"total_in":      b.TotalIn,
		"total_out":     b.TotalOut,
		"percent_error": b.PercentError,
	}
	for _, t := range b.Terms {
		if t.In != 0 || t.Out != 0 {
			f[t.Name] = t.In - t.Out
		}
	}
	return f
}
