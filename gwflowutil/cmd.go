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

// Package gwflowutil provides the command-line interface to GWFlow.
package gwflowutil

import (
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/gwflow"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to GWFlow.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "scenario",
			usage: `
              scenario specifies the location of a TOML or YAML file
              describing the wells, boundary conditions, recharge,
              inactive cells, and observation points of the simulation.`,
			shorthand:  "s",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Grid.Nx",
			usage: `
              Grid.Nx is the number of grid cells along the x axis.`,
			defaultVal: 50,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Grid.Ny",
			usage: `
              Grid.Ny is the number of grid cells along the y axis.`,
			defaultVal: 50,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Grid.Dx",
			usage: `
              Grid.Dx is the width of the grid cells along the x axis [m].`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Grid.Dy",
			usage: `
              Grid.Dy is the width of the grid cells along the y axis [m].`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Grid.X0",
			usage: `
              Grid.X0 is the x coordinate of the lower-left grid corner [m].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Grid.Y0",
			usage: `
              Grid.Y0 is the y coordinate of the lower-left grid corner [m].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Aquifer.T",
			usage: `
              Aquifer.T is the transmissivity of the aquifer [m²/s]. For
              unconfined aquifers it is the transmissivity at full
              saturation, and the hydraulic conductivity is
              Aquifer.T / Aquifer.Thickness.`,
			defaultVal: 1e-3,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Aquifer.S",
			usage: `
              Aquifer.S is the storativity of a confined aquifer [-].`,
			defaultVal: 1e-4,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Aquifer.Sy",
			usage: `
              Aquifer.Sy is the specific yield of an unconfined aquifer [-].`,
			defaultVal: 0.2,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Aquifer.Confined",
			usage: `
              Aquifer.Confined specifies whether the aquifer is confined.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Aquifer.Thickness",
			usage: `
              Aquifer.Thickness is the thickness of the aquifer [m].`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Aquifer.Bottom",
			usage: `
              Aquifer.Bottom is the elevation of the bottom of an
              unconfined aquifer [m].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Aquifer.MinThickness",
			usage: `
              Aquifer.MinThickness is the smallest saturated thickness
              used to calculate the transmissivity of an unconfined
              aquifer [m]. If zero, a default value is used.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "InitialHead",
			usage: `
              InitialHead is the uniform initial head [m].`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Recharge",
			usage: `
              Recharge is a uniform, constant recharge flux [m/s]. It is
              overridden by any recharge given in the scenario file.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Time.Start",
			usage: `
              Time.Start is the start time of a transient simulation [s].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{transientCmd.Flags()},
		},
		{
			name: "Time.End",
			usage: `
              Time.End is the end time of a transient simulation [s].`,
			defaultVal: 86400.0,
			flagsets:   []*pflag.FlagSet{transientCmd.Flags()},
		},
		{
			name: "Time.Dt",
			usage: `
              Time.Dt is the time step length [s].`,
			defaultVal: 3600.0,
			flagsets:   []*pflag.FlagSet{transientCmd.Flags()},
		},
		{
			name: "Integrator",
			usage: `
              Integrator is the time integration scheme, either
              "backward-euler" or "crank-nicolson".`,
			defaultVal: "backward-euler",
			flagsets:   []*pflag.FlagSet{transientCmd.Flags()},
		},
		{
			name: "BudgetInterval",
			usage: `
              BudgetInterval is the number of time steps between water
              budget calculations. A negative value turns budgets off.`,
			defaultVal: gwflow.DefaultBudgetInterval,
			flagsets:   []*pflag.FlagSet{transientCmd.Flags()},
		},
		{
			name: "Solver",
			usage: `
              Solver is the linear solver, either "direct" or "sor".`,
			defaultVal: "direct",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "SOR.Omega",
			usage: `
              SOR.Omega is the relaxation factor of the SOR solver.`,
			defaultVal: 1.5,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "SOR.Tol",
			usage: `
              SOR.Tol is the convergence tolerance of the SOR solver [m].`,
			defaultVal: 1e-6,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "SOR.MaxIter",
			usage: `
              SOR.MaxIter is the maximum number of SOR iterations.`,
			defaultVal: 10000,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Outer.MaxIter",
			usage: `
              Outer.MaxIter is the maximum number of outer iterations of
              a steady-state solution of an unconfined aquifer.`,
			defaultVal: gwflow.DefaultMaxOuter,
			flagsets:   []*pflag.FlagSet{steadyCmd.Flags()},
		},
		{
			name: "Outer.Tol",
			usage: `
              Outer.Tol is the largest head change between outer
              iterations [m] for the solution to be considered converged.`,
			defaultVal: gwflow.DefaultTolOuter,
			flagsets:   []*pflag.FlagSet{steadyCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the NetCDF file where the head
              history is saved. It can include environment variables.`,
			shorthand:  "o",
			defaultVal: "gwflow.nc",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "ShapeFile",
			usage: `
              ShapeFile, if set, is the path to a shapefile where the
              final head in each grid cell is saved.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "BudgetFile",
			usage: `
              BudgetFile, if set, is the path to an Excel workbook where
              the water budgets and observation series are saved.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "StoreFile",
			usage: `
              StoreFile, if set, is the path to a SQLite database where
              the water budgets and observation series are saved.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "PlotDir",
			usage: `
              PlotDir, if set, is the directory where plots of the head
              are saved.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the log file. If empty, it is the
              output file path with the extension ".log".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages: "debug",
              "info", "warning", or "error".`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GWFLOW")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	runCmd.AddCommand(steadyCmd)
	runCmd.AddCommand(transientCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("gwflowutil: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "gwflow",
	Short: "A two-dimensional groundwater flow model.",
	Long: `GWFlow is a two-dimensional finite-difference model of saturated
groundwater flow in confined and unconfined aquifers.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'GWFLOW_var' where 'var' is the
name of the variable to be set. Wells, boundary conditions, and observation
points are specified in a separate scenario file (--scenario).`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of GWFlow.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("GWFlow v%s\n", gwflow.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run runs a GWFlow simulation. Use the subcommands specified below to
choose a run mode.`,
	DisableAutoGenTag: true,
}

// steadyCmd is a command that runs a steady-state simulation.
var steadyCmd = &cobra.Command{
	Use:   "steady",
	Short: "Calculate the steady-state head.",
	Long: `steady calculates the steady-state head distribution with the wells,
recharge, and boundary conditions evaluated at time zero. Unconfined
aquifers are solved iteratively until the head stops changing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		return RunSteady(cmd, c)
	},
	DisableAutoGenTag: true,
}

// transientCmd is a command that runs a transient simulation.
var transientCmd = &cobra.Command{
	Use:   "transient",
	Short: "Run a transient simulation.",
	Long: `transient simulates the head from Time.Start to Time.End with fixed
time steps of length Time.Dt, starting from the initial head.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		return RunTransient(cmd, c)
	},
	DisableAutoGenTag: true,
}
