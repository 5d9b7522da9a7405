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

package linsolve

import (
	"fmt"
	"math"
)

// Default SOR parameters.
const (
	DefaultOmega   = 1.4
	DefaultTol     = 1e-6
	DefaultMaxIter = 3000
)

// diagTolerance is the magnitude below which a diagonal element is
// treated as zero and its row is skipped.
const diagTolerance = 1e-20

// SOR is a successive over-relaxation (damped Gauss-Seidel) solver.
// Omega = 1 reduces it to Gauss-Seidel.
//
// Rows whose diagonal is smaller than 1e-20 in magnitude are treated as
// inactive: their value is left at the initial guess and the number of
// such rows is reported in Result.SkippedRows.
type SOR struct {
	Omega   float64
	Tol     float64
	MaxIter int
}

func (s *SOR) String() string { return fmt.Sprintf("sor(ω=%g)", s.Omega) }

func (s *SOR) setDefaults() error {
	if s.Omega == 0 {
		s.Omega = DefaultOmega
	}
	if s.Tol == 0 {
		s.Tol = DefaultTol
	}
	if s.MaxIter == 0 {
		s.MaxIter = DefaultMaxIter
	}
	if s.Omega <= 0 || s.Omega >= 2 {
		return fmt.Errorf("linsolve: SOR relaxation factor %g must be in (0, 2)", s.Omega)
	}
	if s.Tol <= 0 || s.MaxIter < 1 {
		return fmt.Errorf("linsolve: SOR tolerance (%g) and max iterations (%d) must be positive", s.Tol, s.MaxIter)
	}
	return nil
}

// Solve implements Solver. Exhausting MaxIter is not an error: the last
// iterate is returned with Converged set to false.
func (s *SOR) Solve(A *Matrix, b, x0 []float64) (*Result, error) {
	if err := checkSystem(A, b); err != nil {
		return nil, err
	}
	if err := s.setDefaults(); err != nil {
		return nil, err
	}
	n := A.N()
	x := make([]float64, n)
	if x0 != nil {
		if len(x0) != n {
			return nil, fmt.Errorf("linsolve: initial guess length %d != %d", len(x0), n)
		}
		copy(x, x0)
	}
	diag := make([]float64, n)
	var skipped int
	for i := 0; i < n; i++ {
		diag[i] = A.Diag(i)
		if math.Abs(diag[i]) < diagTolerance {
			skipped++
		}
	}

	r := &Result{X: x, SkippedRows: skipped}
	for r.Iterations < s.MaxIter {
		r.Iterations++
		var maxChange float64
		for i := 0; i < n; i++ {
			if math.Abs(diag[i]) < diagTolerance {
				continue
			}
			sigma := b[i]
			A.Row(i, func(j int, v float64) {
				if j != i {
					sigma -= v * x[j]
				}
			})
			xNew := (1-s.Omega)*x[i] + s.Omega*sigma/diag[i]
			if d := math.Abs(xNew - x[i]); d > maxChange {
				maxChange = d
			}
			x[i] = xNew
		}
		if maxChange < s.Tol {
			r.Converged = true
			break
		}
	}
	r.Residual = residual(A, b, x)
	return r, nil
}
