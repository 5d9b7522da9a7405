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

package gwflowutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gwflow"
	"github.com/spatialmodel/gwflow/internal/store"
	"github.com/spf13/cobra"
)

// newLogger returns a logger that writes to w and to a new file at
// logFile. The returned function closes the log file.
func newLogger(w io.Writer, logFile, level string) (*logrus.Logger, func() error, error) {
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("gwflowutil: problem creating log file: %v", err)
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("gwflowutil: %v", err)
	}
	log := logrus.New()
	log.Out = io.MultiWriter(w, f)
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true, DisableColors: true}
	log.Level = lvl
	return log, f.Close, nil
}

// results holds the outputs of a simulation.
type results struct {
	times        []float64
	history      []*sparse.DenseArray
	budgets      []*gwflow.Budget
	observations []*gwflow.ObservationSeries
}

// RunSteady calculates the steady-state head for the configuration c
// and writes the requested outputs. cmd is the command RunSteady is
// called from, whose output receives the log messages.
func RunSteady(cmd *cobra.Command, c *Config) error {
	log, closeLog, err := newLogger(cmd.OutOrStdout(), c.LogFile, c.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	r, err := gwflow.SolveSteady(c.Model, gwflow.SteadyOptions{
		Solver:   c.Solver,
		MaxOuter: c.MaxOuter,
		TolOuter: c.TolOuter,
		Log:      log,
	})
	if err != nil {
		return err
	}
	log.Info("\n" + r.Budget.String())

	res := &results{
		times:   []float64{0},
		history: []*sparse.DenseArray{r.Head},
		budgets: []*gwflow.Budget{r.Budget},
	}
	if len(c.Model.Observations) > 0 {
		rec, err := gwflow.NewObservationRecorder(c.Model.Grid, c.Model.Observations, c.Model.H0.Elements)
		if err != nil {
			return err
		}
		rec.Record(0, 0, r.Head.Elements)
		res.observations = rec.Series()
	}
	return writeOutputs(log, c, "steady", res)
}

// RunTransient runs a transient simulation for the configuration c
// and writes the requested outputs.
func RunTransient(cmd *cobra.Command, c *Config) error {
	log, closeLog, err := newLogger(cmd.OutOrStdout(), c.LogFile, c.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := gwflow.Simulate(c.Model, gwflow.TransientOptions{
		TStart:         c.TStart,
		TEnd:           c.TEnd,
		Dt:             c.Dt,
		Integrator:     c.Integrator,
		Solver:         c.Solver,
		BudgetInterval: c.BudgetInterval,
		Log:            log,
	})
	if err != nil {
		return err
	}
	if n := len(s.Budgets); n > 0 {
		log.Info("\n" + s.Budgets[n-1].String())
	}
	return writeOutputs(log, c, "transient", &results{
		times:        s.Times,
		history:      s.History,
		budgets:      s.Budgets,
		observations: s.Observations.Series(),
	})
}

// writeOutputs writes the results of a simulation of the given kind
// to each of the output files that is specified in c.
func writeOutputs(log logrus.FieldLogger, c *Config, kind string, r *results) error {
	g := c.Model.Grid
	final := r.history[len(r.history)-1]

	if err := gwflow.WriteHistoryNetCDF(c.OutputFile, g, r.times, r.history); err != nil {
		return err
	}
	log.WithField("file", c.OutputFile).Info("wrote head history")

	if c.ShapeFile != "" {
		if err := gwflow.WriteHeadShapefile(c.ShapeFile, g, final, c.Model.H0); err != nil {
			return err
		}
		log.WithField("file", c.ShapeFile).Info("wrote head shapefile")
	}
	if c.BudgetFile != "" {
		if err := gwflow.WriteBudgetXLSX(c.BudgetFile, r.budgets, r.observations); err != nil {
			return err
		}
		log.WithField("file", c.BudgetFile).Info("wrote budget workbook")
	}
	if c.StoreFile != "" {
		ctx := context.Background()
		db, err := store.Open(ctx, c.StoreFile)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PutRun(ctx, c.RunID, fmt.Sprintf("%s simulation, %d×%d grid", kind, g.Nx(), g.Ny())); err != nil {
			return err
		}
		if err := db.PutBudgets(ctx, c.RunID, r.budgets); err != nil {
			return err
		}
		if err := db.PutObservations(ctx, c.RunID, r.observations); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"file": c.StoreFile,
			"run":  c.RunID,
		}).Info("saved results to database")
	}
	if c.PlotDir != "" {
		if err := os.MkdirAll(c.PlotDir, 0755); err != nil {
			return fmt.Errorf("gwflowutil: creating plot directory: %v", err)
		}
		mapFile := filepath.Join(c.PlotDir, "head.png")
		if err := PlotHeadMap(mapFile, g, final); err != nil {
			return err
		}
		steps := profileSteps(len(r.history), 5)
		heads := make([]*sparse.DenseArray, len(steps))
		labels := make([]string, len(steps))
		for n, step := range steps {
			heads[n] = r.history[step]
			labels[n] = fmt.Sprintf("t = %g s", r.times[step])
		}
		profileFile := filepath.Join(c.PlotDir, "profile.png")
		if err := PlotProfile(profileFile, g, heads, labels, g.Ny()/2); err != nil {
			return err
		}
		log.WithField("dir", c.PlotDir).Info("wrote plots")
	}
	return nil
}

// profileSteps returns up to n evenly spaced indices from 0 to
// length-1, always including the last.
func profileSteps(length, n int) []int {
	if length <= n {
		steps := make([]int, length)
		for i := range steps {
			steps[i] = i
		}
		return steps
	}
	steps := make([]int, n)
	for i := range steps {
		steps[i] = i * (length - 1) / (n - 1)
	}
	return steps
}
