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
	"time"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// Initialize sets up the simulation to run over the given times,
// starting from the initial head of the model.
func Initialize(times []float64) DomainManipulator {
	return func(s *Simulation) error {
		if err := checkTimes(times); err != nil {
			return err
		}
		if err := s.Model.Check(); err != nil {
			return err
		}
		if s.Integrator == nil || s.Solver == nil {
			return fmt.Errorf("gwflow: simulation requires an integrator and a solver")
		}
		h, err := s.Model.initialHead()
		if err != nil {
			return err
		}
		s.Times = append([]float64(nil), times...)
		s.Step = 0
		s.T = times[0]
		s.H = h
		s.HPrev = append([]float64(nil), h...)
		s.History = []*sparse.DenseArray{s.Model.H0.Copy()}
		s.Results = nil
		s.Budgets = nil
		s.Done = s.NSteps() == 0
		return nil
	}
}

// SetupObservations prepares to record heads at the observation
// points of the model and records the initial head.
func SetupObservations() DomainManipulator {
	return func(s *Simulation) error {
		r, err := NewObservationRecorder(s.Model.Grid, s.Model.Observations, s.H)
		if err != nil {
			return err
		}
		r.Record(s.Step, s.T, s.H)
		s.Observations = r
		return nil
	}
}

// TransientStep advances the simulation by one time step. The
// conductance matrix is assembled from the current head, the storage
// and source terms are evaluated, the integrator builds the linear
// system, boundary conditions are applied at the end-of-step time,
// and the system is solved for the new head.
func TransientStep() DomainManipulator {
	return func(s *Simulation) error {
		m := s.Model
		if s.Step >= s.NSteps() {
			return fmt.Errorf("gwflow: simulation has already completed %d steps", s.Step)
		}
		t0, t1 := s.Times[s.Step], s.Times[s.Step+1]

		A, info, err := Assemble(m, s.H)
		if err != nil {
			return err
		}
		src, err := stepSources(m, s.Integrator.Theta(), t0, t1)
		if err != nil {
			return err
		}
		ctx := &StepContext{
			Step:    s.Step + 1,
			T0:      t0,
			T1:      t1,
			Dt:      t1 - t0,
			HPrev:   s.H,
			Storage: StorageCoefficients(m),
			Sources: src,
		}
		Aeff, b := s.Integrator.BuildSystem(ctx, A)
		if err := ApplyBoundaries(m.Grid, m.Boundaries, Aeff, b, t1); err != nil {
			return err
		}
		pinInactive(m, Aeff, b, s.H)

		r, err := s.Solver.Solve(Aeff, b, s.H)
		if err != nil {
			return fmt.Errorf("gwflow: step %d: %w", ctx.Step, err)
		}
		h, err := m.Grid.FieldFromFlat(r.X)
		if err != nil {
			return err
		}
		s.HPrev, s.H = s.H, r.X
		s.Step, s.T, s.Dt = ctx.Step, t1, ctx.Dt
		s.History = append(s.History, h)
		s.Results = append(s.Results, r)
		s.lastA, s.lastCtx, s.lastInfo = A, ctx, info
		return nil
	}
}

// RecordObservations records the current head at each observation
// point.
func RecordObservations() DomainManipulator {
	return func(s *Simulation) error {
		if s.Observations != nil {
			s.Observations.Record(s.Step, s.T, s.H)
		}
		return nil
	}
}

// RunPeriodically runs f after every n steps.
func RunPeriodically(n int, f DomainManipulator) DomainManipulator {
	return func(s *Simulation) error {
		if n > 0 && s.Step%n == 0 {
			return f(s)
		}
		return nil
	}
}

// BudgetCheck calculates the water budget of the last step every
// interval steps and logs it.
func BudgetCheck(interval int, log logrus.FieldLogger) DomainManipulator {
	const warnPercent = 1.
	return RunPeriodically(interval, func(s *Simulation) error {
		if s.lastA == nil {
			return nil
		}
		b, err := ComputeBudget(s.Model, s.lastA, s.lastCtx, s.Integrator.Theta(), s.H)
		if err != nil {
			return err
		}
		s.Budgets = append(s.Budgets, b)
		entry := log.WithFields(b.Fields())
		if b.PercentError > warnPercent {
			entry.Warn("water budget discrepancy")
		} else {
			entry.Info("water budget")
		}
		return nil
	})
}

// LogStart logs the start of the simulation.
func LogStart(log logrus.FieldLogger) DomainManipulator {
	return func(s *Simulation) error {
		log.WithFields(logrus.Fields{
			"nx":         s.Model.Grid.Nx(),
			"ny":         s.Model.Grid.Ny(),
			"steps":      s.NSteps(),
			"t_start":    s.T,
			"integrator": s.Integrator.String(),
			"solver":     s.Solver.String(),
			"confined":   s.Model.Props.Confined,
		}).Info("starting transient simulation")
		return nil
	}
}

// Log logs the status of the simulation after each step.
func Log(log logrus.FieldLogger) DomainManipulator {
	startTime := time.Now()
	stepTime := time.Now()

	return func(s *Simulation) error {
		fields := logrus.Fields{
			"step":      s.Step,
			"time":      s.T,
			"dt":        s.Dt,
			"walltime":  time.Since(startTime).String(),
			"Δwalltime": time.Since(stepTime).String(),
		}
		stepTime = time.Now()
		if n := len(s.Results); n > 0 {
			r := s.Results[n-1]
			fields["iterations"] = r.Iterations
			fields["residual"] = r.Residual
			if r.SkippedRows > 0 {
				fields["skipped_rows"] = r.SkippedRows
				log.WithFields(fields).Warn("linear solver skipped rows with zero diagonal")
			}
			if !r.Converged {
				log.WithFields(fields).Warn("linear solver did not converge")
			}
		}
		if s.lastInfo != nil && s.lastInfo.DryConnections > 0 {
			fields["dry_connections"] = s.lastInfo.DryConnections
		}
		log.WithFields(fields).Debug("step")
		return nil
	}
}

// EndTime sets s.Done once all time steps have been taken.
func EndTime() DomainManipulator {
	return func(s *Simulation) error {
		if s.Step >= s.NSteps() {
			s.Done = true
		}
		return nil
	}
}

// LogFinish logs the end of the simulation.
func LogFinish(log logrus.FieldLogger) DomainManipulator {
	startTime := time.Now()
	return func(s *Simulation) error {
		var converged int
		for _, r := range s.Results {
			if r.Converged {
				converged++
			}
		}
		fields := logrus.Fields{
			"steps":           s.Step,
			"time":            s.T,
			"converged_steps": converged,
			"walltime":        time.Since(startTime).String(),
		}
		if n := len(s.Budgets); n > 0 {
			fields["percent_error"] = s.Budgets[n-1].PercentError
		}
		log.WithFields(fields).Info("finished transient simulation")
		return nil
	}
}
