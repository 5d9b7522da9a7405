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
	"strings"

	"github.com/spatialmodel/gwflow/linsolve"
	"gonum.org/v1/gonum/floats"
)

// StepContext holds the state needed to build the linear system for
// one time step.
type StepContext struct {
	Step   int     // step number, starting at 1
	T0, T1 float64 // times at the start and end of the step [s]
	Dt     float64 // T1 - T0

	// HPrev is the head at T0.
	HPrev []float64

	// Storage is the volumetric storage coefficient of each cell [m²].
	Storage []float64

	// Sources holds the source and sink rates for the step, already
	// weighted in time for the integrator being used.
	Sources *Sources
}

// Integrator turns the spatial operator A into the linear system for
// a single time step.
type Integrator interface {
	// BuildSystem returns A_eff and b such that A_eff·h = b gives the
	// head at the end of the step. A is not modified.
	BuildSystem(ctx *StepContext, A *linsolve.Matrix) (*linsolve.Matrix, []float64)

	// Theta is the implicitness weight: 1 for Backward Euler and 0.5
	// for Crank-Nicolson.
	Theta() float64

	fmt.Stringer
}

// BackwardEuler is the first-order, unconditionally stable implicit
// scheme:
//
//	(A + S/dt)·h = S/dt·h_prev + f
type BackwardEuler struct{}

func (BackwardEuler) String() string  { return "backward-euler" }
func (BackwardEuler) Theta() float64 { return 1 }

// BuildSystem implements Integrator.
func (be BackwardEuler) BuildSystem(ctx *StepContext, A *linsolve.Matrix) (*linsolve.Matrix, []float64) {
	return buildTheta(be.Theta(), ctx, A)
}

// CrankNicolson is the second-order trapezoidal scheme:
//
//	(S/dt + A/2)·h = (S/dt - A/2)·h_prev + f
//
// where f is the average of the sources at the start and end of the step.
type CrankNicolson struct{}

func (CrankNicolson) String() string  { return "crank-nicolson" }
func (CrankNicolson) Theta() float64 { return 0.5 }

// BuildSystem implements Integrator.
func (cn CrankNicolson) BuildSystem(ctx *StepContext, A *linsolve.Matrix) (*linsolve.Matrix, []float64) {
	return buildTheta(cn.Theta(), ctx, A)
}

func buildTheta(theta float64, ctx *StepContext, A *linsolve.Matrix) (*linsolve.Matrix, []float64) {
	n := A.N()
	sdt := make([]float64, n)
	floats.ScaleTo(sdt, 1/ctx.Dt, ctx.Storage)

	Aeff := A.Clone()
	if theta != 1 {
		Aeff.Scale(theta)
	}
	Aeff.AddDiagonal(sdt)

	b := make([]float64, n)
	floats.MulTo(b, sdt, ctx.HPrev)
	if theta != 1 {
		floats.AddScaled(b, -(1 - theta), A.MulVec(ctx.HPrev, nil))
	}
	if ctx.Sources != nil {
		floats.Add(b, ctx.Sources.Total())
	}
	return Aeff, b
}

// NewIntegrator returns the integrator with the given name:
// "backward-euler" (or "be") or "crank-nicolson" (or "cn").
func NewIntegrator(name string) (Integrator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "backward-euler", "backwardeuler", "be", "implicit", "":
		return BackwardEuler{}, nil
	case "crank-nicolson", "cranknicolson", "cn":
		return CrankNicolson{}, nil
	default:
		return nil, fmt.Errorf("gwflow: unknown time integrator %q", name)
	}
}

// stepSources evaluates the sources of m for a step from t0 to t1,
// weighted in time for an integrator with implicitness theta.
func stepSources(m *Model, theta, t0, t1 float64) (*Sources, error) {
	s1, err := AssembleSources(m, t1)
	if err != nil {
		return nil, err
	}
	if theta == 1 {
		return s1, nil
	}
	s0, err := AssembleSources(m, t0)
	if err != nil {
		return nil, err
	}
	return s1.combine(s0, theta), nil
}
