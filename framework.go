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
)

// Simulation holds the state of a transient simulation. A simulation
// is run as a pipeline of DomainManipulators: InitFuncs run once,
// RunFuncs run repeatedly until Done is set, and CleanupFuncs run once
// at the end.
type Simulation struct {
	Model      *Model
	Integrator Integrator
	Solver     linsolve.Solver

	InitFuncs, RunFuncs, CleanupFuncs []DomainManipulator

	// Times holds the start time followed by the end time of every step.
	Times []float64

	// Step is the number of completed steps, T the current time and Dt
	// the length of the last step.
	Step  int
	T, Dt float64

	// H is the current head and HPrev the head before the last step,
	// in linear index order.
	H, HPrev []float64

	// History holds the head field after each step, starting with the
	// initial head.
	History []*sparse.DenseArray

	// Results holds the linear solver result of each step.
	Results []*linsolve.Result

	// Budgets holds the water budgets calculated during the simulation.
	Budgets []*Budget

	Observations *ObservationRecorder

	// Done is set when the simulation is finished.
	Done bool

	// Information about the last step, kept for budget calculations.
	lastA    *linsolve.Matrix
	lastCtx  *StepContext
	lastInfo *AssemblyInfo
}

// DomainManipulator is a function that operates on a simulation.
type DomainManipulator func(s *Simulation) error

// Init initializes the simulation by running s.InitFuncs.
func (s *Simulation) Init() error {
	for _, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// Run carries out the simulation by running s.RunFuncs until
// s.Done is true.
func (s *Simulation) Run() error {
	for !s.Done {
		for _, f := range s.RunFuncs {
			if err := f(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup finishes the simulation by running s.CleanupFuncs.
func (s *Simulation) Cleanup() error {
	for _, f := range s.CleanupFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// NSteps returns the total number of time steps in the simulation.
func (s *Simulation) NSteps() int {
	if len(s.Times) == 0 {
		return 0
	}
	return len(s.Times) - 1
}

// Head returns the current head as a field with shape (nx, ny).
func (s *Simulation) Head() *sparse.DenseArray {
	f, err := s.Model.Grid.FieldFromFlat(s.H)
	if err != nil {
		panic(err)
	}
	return f
}

// StepTimes returns the times of a simulation from tStart to tEnd with
// a fixed step dt, starting with tStart and ending with tEnd. The
// number of steps is (tEnd-tStart)/dt rounded to the nearest integer if
// it is within 1e-9 of one, and rounded up otherwise, in which case
// the last step is shortened to end at tEnd.
func StepTimes(tStart, tEnd, dt float64) ([]float64, error) {
	if !(dt > 0) {
		return nil, fmt.Errorf("gwflow: time step %g must be positive", dt)
	}
	if !(tEnd >= tStart) {
		return nil, fmt.Errorf("gwflow: end time %g is before start time %g", tEnd, tStart)
	}
	r := (tEnd - tStart) / dt
	n := math.Round(r)
	if math.Abs(r-n) > 1e-9 {
		n = math.Ceil(r)
	}
	times := make([]float64, int(n)+1)
	for i := range times {
		times[i] = tStart + float64(i)*dt
	}
	times[len(times)-1] = tEnd
	return times, nil
}

func checkTimes(times []float64) error {
	if len(times) == 0 {
		return fmt.Errorf("gwflow: no simulation times specified")
	}
	for i := 1; i < len(times); i++ {
		if !(times[i] > times[i-1]) {
			return fmt.Errorf("gwflow: simulation times must be strictly increasing; times[%d]=%g, times[%d]=%g",
				i-1, times[i-1], i, times[i])
		}
	}
	return nil
}

// TransientOptions configures NewTransient.
type TransientOptions struct {
	// TStart, TEnd, and Dt specify fixed time steps [s]. They are
	// ignored if Times is set.
	TStart, TEnd, Dt float64

	// Times optionally lists the start time followed by the end time
	// of every step.
	Times []float64

	// Integrator defaults to BackwardEuler and Solver to
	// linsolve.Direct.
	Integrator Integrator
	Solver     linsolve.Solver

	// BudgetInterval is the number of steps between budget
	// calculations. Zero selects DefaultBudgetInterval and a negative
	// value disables budgets.
	BudgetInterval int

	// Log receives progress messages. If nil, the standard logrus
	// logger is used.
	Log logrus.FieldLogger
}

// DefaultBudgetInterval is the default number of steps between budget
// calculations.
const DefaultBudgetInterval = 10

// NewTransient returns a simulation of m with the default pipeline:
// initialization, then each step is solved, observations are
// recorded, the budget is periodically checked, and progress is
// logged until the end time is reached.
func NewTransient(m *Model, o TransientOptions) (*Simulation, error) {
	times := o.Times
	if times == nil {
		var err error
		if times, err = StepTimes(o.TStart, o.TEnd, o.Dt); err != nil {
			return nil, err
		}
	}
	if err := checkTimes(times); err != nil {
		return nil, err
	}
	if m.Props != nil {
		if err := m.Props.checkStorage(); err != nil {
			return nil, err
		}
	}
	if o.Integrator == nil {
		o.Integrator = BackwardEuler{}
	}
	if o.Solver == nil {
		o.Solver = linsolve.Direct{}
	}
	if o.BudgetInterval == 0 {
		o.BudgetInterval = DefaultBudgetInterval
	}
	log := o.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	runFuncs := []DomainManipulator{
		TransientStep(),
		RecordObservations(),
	}
	if o.BudgetInterval > 0 {
		runFuncs = append(runFuncs, BudgetCheck(o.BudgetInterval, log))
	}
	runFuncs = append(runFuncs, Log(log), EndTime())
	return &Simulation{
		Model:      m,
		Integrator: o.Integrator,
		Solver:     o.Solver,
		InitFuncs: []DomainManipulator{
			Initialize(times),
			SetupObservations(),
			LogStart(log),
		},
		RunFuncs: runFuncs,
		CleanupFuncs: []DomainManipulator{
			LogFinish(log),
		},
	}, nil
}

// Simulate runs a transient simulation of m from start to finish.
func Simulate(m *Model, o TransientOptions) (*Simulation, error) {
	s, err := NewTransient(m, o)
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	if err := s.Run(); err != nil {
		return nil, err
	}
	if err := s.Cleanup(); err != nil {
		return nil, err
	}
	return s, nil
}
