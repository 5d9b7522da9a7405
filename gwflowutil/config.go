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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/gwflow"
	"github.com/spatialmodel/gwflow/internal/hash"
	"github.com/spatialmodel/gwflow/linsolve"
	"github.com/spf13/cast"
)

// Config holds everything needed to run a simulation.
type Config struct {
	Model *gwflow.Model

	Solver     linsolve.Solver
	Integrator gwflow.Integrator

	TStart, TEnd, Dt float64
	BudgetInterval   int

	MaxOuter int
	TolOuter float64

	OutputFile, ShapeFile, BudgetFile, StoreFile, PlotDir, LogFile string
	LogLevel                                                       string

	// RunID identifies the configuration and scenario in the results
	// database.
	RunID string
}

// LoadConfig builds a model and run configuration from cfg, reading
// the scenario file if one is specified.
func LoadConfig(cfg *viper.Viper) (*Config, error) {
	g, err := checkGrid(cfg)
	if err != nil {
		return nil, err
	}
	props, err := checkAquifer(cfg, g)
	if err != nil {
		return nil, err
	}
	h0, err := cast.ToFloat64E(cfg.Get("InitialHead"))
	if err != nil {
		return nil, fmt.Errorf("gwflowutil: reading InitialHead: %v", err)
	}
	m := &gwflow.Model{
		Grid:  g,
		Props: props,
		H0:    g.UniformField(h0),
	}
	if r := cfg.GetFloat64("Recharge"); r != 0 {
		m.Recharge = gwflow.ConstantRecharge(r)
	}
	var scenario *Scenario
	if path := os.ExpandEnv(cfg.GetString("scenario")); path != "" {
		if scenario, err = ReadScenario(path); err != nil {
			return nil, err
		}
		if err := scenario.Apply(m); err != nil {
			return nil, err
		}
	}
	if err := m.Check(); err != nil {
		return nil, err
	}

	c := &Config{
		Model:          m,
		TStart:         cfg.GetFloat64("Time.Start"),
		TEnd:           cfg.GetFloat64("Time.End"),
		Dt:             cfg.GetFloat64("Time.Dt"),
		BudgetInterval: cfg.GetInt("BudgetInterval"),
		MaxOuter:       cfg.GetInt("Outer.MaxIter"),
		TolOuter:       cfg.GetFloat64("Outer.Tol"),
		ShapeFile:      os.ExpandEnv(cfg.GetString("ShapeFile")),
		BudgetFile:     os.ExpandEnv(cfg.GetString("BudgetFile")),
		StoreFile:      os.ExpandEnv(cfg.GetString("StoreFile")),
		PlotDir:        os.ExpandEnv(cfg.GetString("PlotDir")),
		RunID:          hash.Hash(cfg.AllSettings(), scenario),
	}
	if c.Solver, err = checkSolver(cfg); err != nil {
		return nil, err
	}
	if c.Integrator, err = gwflow.NewIntegrator(cfg.GetString("Integrator")); err != nil {
		return nil, err
	}
	if c.OutputFile, err = checkOutputFile(cfg.GetString("OutputFile")); err != nil {
		return nil, err
	}
	c.LogFile = checkLogFile(os.ExpandEnv(cfg.GetString("LogFile")), c.OutputFile)
	if c.LogLevel, err = checkLogLevel(cfg.GetString("LogLevel")); err != nil {
		return nil, err
	}
	return c, nil
}

// checkGrid creates a uniform grid from the Grid configuration.
func checkGrid(cfg *viper.Viper) (*gwflow.Grid, error) {
	nx, err := cast.ToIntE(cfg.Get("Grid.Nx"))
	if err != nil {
		return nil, fmt.Errorf("gwflowutil: reading Grid.Nx: %v", err)
	}
	ny, err := cast.ToIntE(cfg.Get("Grid.Ny"))
	if err != nil {
		return nil, fmt.Errorf("gwflowutil: reading Grid.Ny: %v", err)
	}
	g, err := gwflow.NewUniformGrid(nx, ny, cfg.GetFloat64("Grid.Dx"), cfg.GetFloat64("Grid.Dy"))
	if err != nil {
		return nil, err
	}
	g.SetOrigin(cfg.GetFloat64("Grid.X0"), cfg.GetFloat64("Grid.Y0"))
	return g, nil
}

// checkAquifer creates uniform aquifer properties from the Aquifer
// configuration. The conductivity is the transmissivity divided by the
// thickness, and the specific storage is the storativity divided by
// the thickness.
func checkAquifer(cfg *viper.Viper, g *gwflow.Grid) (*gwflow.AquiferProperties, error) {
	T := cfg.GetFloat64("Aquifer.T")
	S := cfg.GetFloat64("Aquifer.S")
	b := cfg.GetFloat64("Aquifer.Thickness")
	if !(T > 0) {
		return nil, fmt.Errorf("gwflowutil: Aquifer.T must be positive but is %g", T)
	}
	if !(b > 0) {
		return nil, fmt.Errorf("gwflowutil: Aquifer.Thickness must be positive but is %g", b)
	}
	if S < 0 {
		return nil, fmt.Errorf("gwflowutil: Aquifer.S must not be negative but is %g", S)
	}
	p := gwflow.NewUniformProperties(g, T/b, b, S/b, cfg.GetFloat64("Aquifer.Sy"), cfg.GetBool("Aquifer.Confined"))
	p.Bottom = cfg.GetFloat64("Aquifer.Bottom")
	p.MinThickness = cfg.GetFloat64("Aquifer.MinThickness")
	if err := p.Check(g); err != nil {
		return nil, err
	}
	return p, nil
}

// checkSolver returns the linear solver named in the configuration.
func checkSolver(cfg *viper.Viper) (linsolve.Solver, error) {
	s, err := linsolve.New(cfg.GetString("Solver"), cfg.GetFloat64("SOR.Omega"),
		cfg.GetFloat64("SOR.Tol"), cfg.GetInt("SOR.MaxIter"))
	if err != nil {
		return nil, fmt.Errorf("gwflowutil: %v", err)
	}
	return s, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`gwflowutil: you need to specify an output file configuration variable (for example: OutputFile="output.nc")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("gwflowutil: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

func checkLogLevel(l string) (string, error) {
	l = strings.ToLower(strings.TrimSpace(l))
	switch l {
	case "":
		return "info", nil
	case "debug", "info", "warning", "warn", "error":
		return l, nil
	default:
		return l, fmt.Errorf("gwflowutil: LogLevel must be debug, info, warning, or error but is %q", l)
	}
}
