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

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gwflow/linsolve"
	"gonum.org/v1/gonum/floats"
)

// Default settings for the outer nonlinear iteration.
const (
	DefaultMaxOuter     = 20
	DefaultTolOuter     = 1e-4
	DefaultInitialGuess = 10.
)

// OuterState is the state of the outer nonlinear iteration.
type OuterState int

// States of the outer nonlinear iteration.
const (
	Initializing OuterState = iota
	Iterating
	Converged
	MaxIterationsExceeded
)

func (s OuterState) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case MaxIterationsExceeded:
		return "max iterations exceeded"
	default:
		return fmt.Sprintf("OuterState(%d)", int(s))
	}
}

// SteadyOptions configures SolveSteady.
type SteadyOptions struct {
	// Solver is the linear solver. If nil, linsolve.Direct is used.
	Solver linsolve.Solver

	// MaxOuter is the maximum number of outer iterations and TolOuter
	// is the largest head change [m] between outer iterations for the
	// solution to be considered converged. Zero values select
	// DefaultMaxOuter and DefaultTolOuter.
	MaxOuter int
	TolOuter float64

	// InitialHead is the starting head estimate in linear index order.
	// If nil, the model's initial head is used if present; otherwise
	// the average of all fixed heads, or DefaultInitialGuess if there
	// are none.
	InitialHead []float64

	// Time is the time at which wells, recharge, and boundaries are
	// evaluated.
	Time float64

	// Log receives progress messages. If nil, the standard logrus
	// logger is used.
	Log logrus.FieldLogger
}

// SteadyResult is the outcome of a steady-state solve.
type SteadyResult struct {
	Head *sparse.DenseArray

	State     OuterState
	Converged bool

	// OuterIterations is the number of outer iterations performed, and
	// Change is the largest head change in the last one.
	OuterIterations int
	Change          float64

	// Linear holds the linear solver result of each outer iteration.
	Linear []*linsolve.Result

	DryConnections int

	Budget *Budget
}

// initialGuess returns the starting head estimate for a steady-state
// solve.
func initialGuess(m *Model, o *SteadyOptions) ([]float64, error) {
	n := m.Grid.N()
	if o.InitialHead != nil {
		if len(o.InitialHead) != n {
			return nil, fmt.Errorf("gwflow: initial head has %d values but grid has %d cells", len(o.InitialHead), n)
		}
		return append([]float64(nil), o.InitialHead...), nil
	}
	if m.H0 != nil {
		return m.initialHead()
	}
	v := DefaultInitialGuess
	var sum float64
	var count int
	for _, bc := range m.Boundaries {
		if d, ok := bc.(*Dirichlet); ok && len(d.Cells) > 0 {
			sum += d.Value * float64(len(d.Cells))
			count += len(d.Cells)
		}
	}
	if count > 0 {
		v = sum / float64(count)
	}
	h := make([]float64, n)
	for k := range h {
		h[k] = v
	}
	return h, nil
}

// hasHeadBoundary reports whether any boundary ties the head to a
// reference level, which is required for a unique steady solution.
func hasHeadBoundary(bcs []Boundary) bool {
	for _, bc := range bcs {
		switch bc := bc.(type) {
		case *Dirichlet, *TheisPerimeter:
			if len(bc.boundaryCells()) > 0 {
				return true
			}
		case *GeneralHead:
			if bc.Conductance > 0 && len(bc.Cells) > 0 {
				return true
			}
		}
	}
	return false
}

// SolveSteady calculates the steady-state head of m. For unconfined
// aquifers transmissivity depends on head, so the conductance matrix is
// rebuilt from the latest head estimate and the system re-solved until
// the head changes by less than o.TolOuter. Confined aquifers need a
// single iteration.
//
// Failure to converge is not an error: the last head estimate is
// returned with Converged set to false.
func SolveSteady(m *Model, o SteadyOptions) (*SteadyResult, error) {
	if err := m.Check(); err != nil {
		return nil, err
	}
	if !hasHeadBoundary(m.Boundaries) {
		return nil, fmt.Errorf("gwflow: steady-state solution requires at least one fixed-head or head-dependent boundary")
	}
	if o.Solver == nil {
		o.Solver = linsolve.Direct{}
	}
	if o.MaxOuter <= 0 {
		o.MaxOuter = DefaultMaxOuter
	}
	if o.TolOuter <= 0 {
		o.TolOuter = DefaultTolOuter
	}
	log := o.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	res := &SteadyResult{State: Initializing}
	h, err := initialGuess(m, &o)
	if err != nil {
		return nil, err
	}
	src, err := AssembleSources(m, o.Time)
	if err != nil {
		return nil, err
	}
	f := src.Total()

	log.WithFields(logrus.Fields{
		"solver":    o.Solver.String(),
		"confined":  m.Props.Confined,
		"max_outer": o.MaxOuter,
		"tol_outer": o.TolOuter,
	}).Info("starting steady-state solution")

	res.State = Iterating
	var A *linsolve.Matrix
	for it := 1; it <= o.MaxOuter; it++ {
		var info *AssemblyInfo
		A, info, err = Assemble(m, h)
		if err != nil {
			return nil, err
		}
		res.DryConnections = info.DryConnections
		sys := A.Clone()
		rhs := append([]float64(nil), f...)
		if err := ApplyBoundaries(m.Grid, m.Boundaries, sys, rhs, o.Time); err != nil {
			return nil, err
		}
		pinInactive(m, sys, rhs, h)

		r, err := o.Solver.Solve(sys, rhs, h)
		if err != nil {
			return nil, fmt.Errorf("gwflow: steady-state outer iteration %d: %w", it, err)
		}
		res.Linear = append(res.Linear, r)
		res.OuterIterations = it
		res.Change = floats.Distance(r.X, h, math.Inf(1))
		h = r.X

		fields := logrus.Fields{
			"outer_iteration": it,
			"change":          res.Change,
			"linear_iter":     r.Iterations,
			"residual":        r.Residual,
		}
		if r.SkippedRows > 0 {
			fields["skipped_rows"] = r.SkippedRows
		}
		if info.DryConnections > 0 {
			fields["dry_connections"] = info.DryConnections
		}
		log.WithFields(fields).Debug("outer iteration")
		if !r.Converged {
			log.WithFields(fields).Warn("linear solver did not converge")
		}

		if m.Props.Confined || res.Change < o.TolOuter {
			if r.Converged {
				res.State = Converged
				res.Converged = true
			}
			break
		}
	}
	if !res.Converged {
		res.State = MaxIterationsExceeded
		log.WithFields(logrus.Fields{
			"outer_iterations": res.OuterIterations,
			"change":           res.Change,
		}).Warn("steady-state solution did not converge")
	}

	ctx := &StepContext{
		T0:      o.Time,
		T1:      o.Time,
		HPrev:   h,
		Sources: src,
	}
	if res.Budget, err = ComputeBudget(m, A, ctx, 1, h); err != nil {
		return nil, err
	}
	if res.Head, err = m.Grid.FieldFromFlat(h); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"state":            res.State.String(),
		"outer_iterations": res.OuterIterations,
		"percent_error":    res.Budget.PercentError,
	}).Info("finished steady-state solution")
	return res, nil
}
