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
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Result holds the outcome of a linear solve.
type Result struct {
	// X is the solution vector.
	X []float64

	// Converged reports whether the solver met its convergence criterion.
	// Direct solves always converge.
	Converged bool

	// Iterations is the number of sweeps performed.
	Iterations int

	// Residual is the 2-norm of b - A·X.
	Residual float64

	// SkippedRows is the number of rows an iterative solver left
	// unchanged because their diagonal was effectively zero.
	SkippedRows int
}

// Solver solves A·x = b. x0 is the initial guess for iterative
// solvers and may be nil.
type Solver interface {
	Solve(A *Matrix, b, x0 []float64) (*Result, error)
	fmt.Stringer
}

// New returns the solver with the given name ("direct" or "sor").
// omega, tol and maxIter only apply to SOR; zero values select the
// defaults.
func New(name string, omega, tol float64, maxIter int) (Solver, error) {
	switch strings.ToLower(name) {
	case "direct", "lu":
		return Direct{}, nil
	case "sor", "iterative", "gauss-seidel":
		s := &SOR{Omega: omega, Tol: tol, MaxIter: maxIter}
		if err := s.setDefaults(); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("linsolve: unknown solver %q", name)
	}
}

// residual returns ||b - A·x||₂.
func residual(A *Matrix, b, x []float64) float64 {
	r := A.MulVec(x, nil)
	floats.Sub(r, b)
	return floats.Norm(r, 2)
}

func checkSystem(A *Matrix, b []float64) error {
	if A.N() != len(b) {
		return fmt.Errorf("linsolve: matrix size %d does not match rhs length %d", A.N(), len(b))
	}
	return nil
}
