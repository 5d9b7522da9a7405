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

// Direct solves the system exactly with a banded LU factorization.
// Rows are not pivoted: the flow matrices are diagonally dominant and
// boundary rows are identity rows, so the factorization stays inside
// the band. A zero pivot results in an error.
type Direct struct{}

func (Direct) String() string { return "direct" }

// band is a dense band of half-width bw stored row by row.
type band struct {
	n, bw int
	a     []float64
}

func (b *band) idx(i, j int) int { return i*(2*b.bw+1) + j - i + b.bw }

func newBand(A *Matrix) *band {
	bw := A.Bandwidth()
	b := &band{n: A.N(), bw: bw, a: make([]float64, A.N()*(2*bw+1))}
	for i := 0; i < b.n; i++ {
		A.Row(i, func(j int, v float64) {
			b.a[b.idx(i, j)] = v
		})
	}
	return b
}

// factor performs the in-place LU decomposition of the band.
func (b *band) factor() error {
	const tiny = 1e-300
	for k := 0; k < b.n; k++ {
		pivot := b.a[b.idx(k, k)]
		if math.Abs(pivot) < tiny {
			return fmt.Errorf("linsolve: zero pivot in row %d; system is singular", k)
		}
		iMax := min(b.n-1, k+b.bw)
		for i := k + 1; i <= iMax; i++ {
			lik := b.a[b.idx(i, k)]
			if lik == 0 {
				continue
			}
			lik /= pivot
			b.a[b.idx(i, k)] = lik
			for j := k + 1; j <= iMax; j++ {
				ukj := b.a[b.idx(k, j)]
				if ukj != 0 {
					b.a[b.idx(i, j)] -= lik * ukj
				}
			}
		}
	}
	return nil
}

// solve performs the forward and back substitution.
func (b *band) solve(rhs []float64) []float64 {
	x := append([]float64(nil), rhs...)
	for i := 0; i < b.n; i++ {
		for j := max(0, i-b.bw); j < i; j++ {
			x[i] -= b.a[b.idx(i, j)] * x[j]
		}
	}
	for i := b.n - 1; i >= 0; i-- {
		for j := i + 1; j <= min(b.n-1, i+b.bw); j++ {
			x[i] -= b.a[b.idx(i, j)] * x[j]
		}
		x[i] /= b.a[b.idx(i, i)]
	}
	return x
}

// Solve implements Solver. x0 is ignored.
func (Direct) Solve(A *Matrix, b, _ []float64) (*Result, error) {
	if err := checkSystem(A, b); err != nil {
		return nil, err
	}
	bd := newBand(A)
	if err := bd.factor(); err != nil {
		return nil, err
	}
	x := bd.solve(b)
	return &Result{
		X:          x,
		Converged:  true,
		Iterations: 1,
		Residual:   residual(A, b, x),
	}, nil
}
