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

// Package linsolve holds the sparse matrix type used for the groundwater
// flow equations and the solvers that operate on it.
package linsolve

import (
	"fmt"
	"sort"
)

// row holds the nonzero entries of one matrix row, sorted by column.
type row struct {
	cols []int
	vals []float64
}

// Matrix is a square sparse matrix stored row by row. Each row keeps its
// column indices in ascending order, so rows can be modified in place
// by boundary conditions without rebuilding the whole structure.
type Matrix struct {
	n    int
	rows []row
}

// NewMatrix returns an empty n×n matrix.
func NewMatrix(n int) *Matrix {
	return &Matrix{n: n, rows: make([]row, n)}
}

// N returns the number of rows (and columns) in the matrix.
func (m *Matrix) N() int { return m.n }

func (m *Matrix) check(i, j int) {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		panic(fmt.Errorf("linsolve: index (%d, %d) out of range for %d×%d matrix", i, j, m.n, m.n))
	}
}

// find returns the position of column j in row i and whether it exists.
func (r *row) find(j int) (int, bool) {
	p := sort.SearchInts(r.cols, j)
	return p, p < len(r.cols) && r.cols[p] == j
}

// Add adds v to the element at (i, j).
func (m *Matrix) Add(i, j int, v float64) {
	m.check(i, j)
	r := &m.rows[i]
	p, ok := r.find(j)
	if ok {
		r.vals[p] += v
		return
	}
	r.cols = append(r.cols, 0)
	r.vals = append(r.vals, 0)
	copy(r.cols[p+1:], r.cols[p:])
	copy(r.vals[p+1:], r.vals[p:])
	r.cols[p] = j
	r.vals[p] = v
}

// Set sets the element at (i, j) to v.
func (m *Matrix) Set(i, j int, v float64) {
	m.check(i, j)
	r := &m.rows[i]
	if p, ok := r.find(j); ok {
		r.vals[p] = v
		return
	}
	m.Add(i, j, v)
}

// At returns the element at (i, j).
func (m *Matrix) At(i, j int) float64 {
	m.check(i, j)
	r := &m.rows[i]
	if p, ok := r.find(j); ok {
		return r.vals[p]
	}
	return 0
}

// Diag returns the diagonal element of row i.
func (m *Matrix) Diag(i int) float64 { return m.At(i, i) }

// ZeroRow removes all entries from row i.
func (m *Matrix) ZeroRow(i int) {
	m.check(i, i)
	m.rows[i].cols = m.rows[i].cols[:0]
	m.rows[i].vals = m.rows[i].vals[:0]
}

// Row calls f for each stored entry of row i in column order.
func (m *Matrix) Row(i int, f func(j int, v float64)) {
	r := &m.rows[i]
	for p, j := range r.cols {
		f(j, r.vals[p])
	}
}

// AddDiagonal adds d[i] to each diagonal element.
func (m *Matrix) AddDiagonal(d []float64) {
	if len(d) != m.n {
		panic(fmt.Errorf("linsolve: diagonal length %d != %d", len(d), m.n))
	}
	for i, v := range d {
		if v != 0 {
			m.Add(i, i, v)
		}
	}
}

// Scale multiplies every element by f.
func (m *Matrix) Scale(f float64) {
	for i := range m.rows {
		for p := range m.rows[i].vals {
			m.rows[i].vals[p] *= f
		}
	}
}

// MulVec calculates y = A·x. If y is nil it is allocated.
func (m *Matrix) MulVec(x, y []float64) []float64 {
	if len(x) != m.n {
		panic(fmt.Errorf("linsolve: vector length %d != %d", len(x), m.n))
	}
	if y == nil {
		y = make([]float64, m.n)
	}
	for i := range m.rows {
		var s float64
		r := &m.rows[i]
		for p, j := range r.cols {
			s += r.vals[p] * x[j]
		}
		y[i] = s
	}
	return y
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	o := NewMatrix(m.n)
	for i, r := range m.rows {
		o.rows[i].cols = append([]int(nil), r.cols...)
		o.rows[i].vals = append([]float64(nil), r.vals...)
	}
	return o
}

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int {
	var n int
	for _, r := range m.rows {
		n += len(r.cols)
	}
	return n
}

// Bandwidth returns the largest |i-j| over all stored entries.
func (m *Matrix) Bandwidth() int {
	var bw int
	for i, r := range m.rows {
		if len(r.cols) == 0 {
			continue
		}
		if d := i - r.cols[0]; d > bw {
			bw = d
		}
		if d := r.cols[len(r.cols)-1] - i; d > bw {
			bw = d
		}
	}
	return bw
}
