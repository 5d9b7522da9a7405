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

import "testing"

// mixedBoundaryModel returns a confined 11×11 model with a fixed head on
// its left edge and every other kind of boundary on separate cells.
func mixedBoundaryModel(t *testing.T) *Model {
	g := mustGrid(t, 11, 11, 10, 10)
	w, err := NewWell(g, "center", 5, 5, -1e-3, nil)
	if err != nil {
		t.Fatal(err)
	}
	return &Model{
		Grid:     g,
		Props:    NewTransmissivityProperties(g, 0.01, 1e-3),
		Wells:    []*Well{w},
		Recharge: ConstantRecharge(1e-8),
		Boundaries: []Boundary{
			&Dirichlet{Cells: edge(t, g, "left"), Value: 10},
			&GeneralHead{Cells: []Cell{{9, 2}, {9, 3}}, Kind: GHB, Stage: 12, Conductance: 0.01},
			&GeneralHead{Cells: []Cell{{5, 8}, {6, 8}}, Kind: River, Stage: 9, Conductance: 0.005},
			&Flux{Cells: []Cell{{2, 2}, {2, 8}}, Kind: Neumann, Rate: 1e-4},
			&RechargeBoundary{Cells: []Cell{{8, 8}, {8, 9}}, Rate: 1e-7},
		},
		H0: g.UniformField(10),
	}
}

func TestBudgetClosure(t *testing.T) {
	for _, integ := range []Integrator{BackwardEuler{}, CrankNicolson{}} {
		t.Run(integ.String(), func(t *testing.T) {
			m := mixedBoundaryModel(t)
			s := simulate(t, m, TransientOptions{TEnd: 200, Dt: 10, Integrator: integ, BudgetInterval: 1})
			if len(s.Budgets) != 20 {
				t.Fatalf("%d budgets, want 20", len(s.Budgets))
			}
			for _, b := range s.Budgets {
				if b.PercentError > 1e-8 {
					t.Errorf("step %d: percent error %g\n%s", b.Step, b.PercentError, b)
				}
				for _, name := range budgetOrder {
					if term := b.Term(name); !(term.In+term.Out > 0) {
						t.Errorf("step %d: no %s flow", b.Step, name)
					}
				}
			}
			last := s.Budgets[len(s.Budgets)-1]
			if ghb := last.Term(BudgetHeadDependent); !(ghb.In > 0) {
				t.Errorf("boundary with a higher stage should supply water: %+v", ghb)
			}
			if riv := last.Term(BudgetRiver); !(riv.Out > 0) {
				t.Errorf("river with a lower stage should gain water: %+v", riv)
			}
			if q := last.Term(BudgetFlux); different(q.In, 2e-4, 1e-10) {
				t.Errorf("specified flux inflow %g, want 2e-4", q.In)
			}
			// 110 cells off the fixed-head edge at 1e-8 m/s plus two cells at
			// 1e-7 m/s.
			wantRecharge := (110*1e-8 + 2*1e-7) * 100
			if r := last.Term(BudgetRecharge); different(r.In, wantRecharge, 1e-10) {
				t.Errorf("recharge inflow %g, want %g", r.In, wantRecharge)
			}
		})
	}
}
