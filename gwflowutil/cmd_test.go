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
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/gwflow"
	"github.com/spatialmodel/gwflow/internal/store"
)

const wellScenario = `
[[wells]]
name = "pump"
i = 10
j = 10
Q = -0.001

[[boundaries]]
type = "dirichlet"
cells = "perimeter"
value = 10.0

[[observations]]
name = "mw-1"
i = 12
j = 10
`

func setupRun(t *testing.T) (dir string, out *bytes.Buffer) {
	dir, err := ioutil.TempDir("", "gwflowutil")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	Cfg.Set("scenario", writeFile(t, dir, "scenario.toml", wellScenario))
	Cfg.Set("Grid.Nx", 21)
	Cfg.Set("Grid.Ny", 21)
	Cfg.Set("Aquifer.T", 0.01)
	Cfg.Set("Aquifer.S", 1e-3)
	Cfg.Set("Aquifer.Thickness", 10.0)
	Cfg.Set("OutputFile", filepath.Join(dir, "heads.nc"))
	Cfg.Set("LogFile", "")
	out = new(bytes.Buffer)
	Root.SetOut(out)
	return dir, out
}

func TestVersion(t *testing.T) {
	out := new(bytes.Buffer)
	Root.SetOut(out)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "GWFlow v"+gwflow.Version) {
		t.Errorf("version output %q", out.String())
	}
}

func TestRunSteady(t *testing.T) {
	dir, out := setupRun(t)
	Cfg.Set("ShapeFile", filepath.Join(dir, "heads.shp"))
	Cfg.Set("BudgetFile", "")
	Cfg.Set("StoreFile", "")
	Cfg.Set("PlotDir", "")
	Root.SetArgs([]string{"run", "steady"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "finished steady-state solution") {
		t.Errorf("missing log message in:\n%s", out.String())
	}
	times, heads, err := gwflow.ReadHistoryNetCDF(filepath.Join(dir, "heads.nc"))
	if err != nil {
		t.Fatal(err)
	}
	if len(times) != 1 || len(heads) != 1 {
		t.Fatalf("%d times, %d heads", len(times), len(heads))
	}
	if h := heads[0].Get(10, 10); !(h < 10) {
		t.Errorf("head at the well is %g", h)
	}
	for _, f := range []string{"heads.shp", "heads.dbf", "heads.log"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Error(err)
		}
	}
}

func TestRunTransient(t *testing.T) {
	dir, out := setupRun(t)
	Cfg.Set("Time.Start", 0.0)
	Cfg.Set("Time.End", 600.0)
	Cfg.Set("Time.Dt", 60.0)
	Cfg.Set("Integrator", "crank-nicolson")
	Cfg.Set("BudgetInterval", 5)
	Cfg.Set("ShapeFile", "")
	Cfg.Set("BudgetFile", filepath.Join(dir, "budget.xlsx"))
	Cfg.Set("StoreFile", filepath.Join(dir, "results.db"))
	Cfg.Set("PlotDir", filepath.Join(dir, "plots"))
	c, err := LoadConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	Root.SetArgs([]string{"run", "transient"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "finished transient simulation") {
		t.Errorf("missing log message in:\n%s", out.String())
	}
	times, heads, err := gwflow.ReadHistoryNetCDF(filepath.Join(dir, "heads.nc"))
	if err != nil {
		t.Fatal(err)
	}
	if len(times) != 11 || len(heads) != 11 || times[10] != 600 {
		t.Errorf("%d times ending at %g", len(times), times[len(times)-1])
	}
	for _, f := range []string{"budget.xlsx", "plots/head.png", "plots/profile.png"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Error(err)
		}
	}

	ctx := context.Background()
	db, err := store.Open(ctx, filepath.Join(dir, "results.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	obs, err := db.Observations(ctx, c.RunID, "mw-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(obs.Heads) != 11 || obs.Heads[10] != heads[10].Get(12, 10) {
		t.Errorf("stored observations %v", obs.Heads)
	}
	terms, err := db.BudgetTerms(ctx, c.RunID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(terms) == 0 {
		t.Error("no budget stored for step 10")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	for _, test := range []struct {
		key string
		val interface{}
	}{
		{"Grid.Nx", 0},
		{"Aquifer.T", -1.0},
		{"Aquifer.Thickness", 0.0},
		{"Solver", "cholesky"},
		{"Integrator", "rk4"},
		{"OutputFile", "/no/such/directory/heads.nc"},
		{"LogLevel", "verbose"},
		{"scenario", "missing.toml"},
	} {
		t.Run(test.key, func(t *testing.T) {
			setupRun(t)
			Cfg.Set(test.key, test.val)
			if _, err := LoadConfig(Cfg); err == nil {
				t.Errorf("%s=%v: expected an error", test.key, test.val)
			}
		})
	}
	// Reset the values changed above.
	for key, val := range map[string]interface{}{
		"Solver":     "direct",
		"Integrator": "backward-euler",
		"LogLevel":   "info",
	} {
		Cfg.Set(key, val)
	}
}

func TestCheckLogFile(t *testing.T) {
	if f := checkLogFile("", "out/heads.nc"); f != "out/heads.log" {
		t.Errorf("log file %s", f)
	}
	if f := checkLogFile("my.log", "out/heads.nc"); f != "my.log" {
		t.Errorf("log file %s", f)
	}
}

func TestProfileSteps(t *testing.T) {
	for _, test := range []struct {
		length, n int
		want      []int
	}{
		{3, 5, []int{0, 1, 2}},
		{11, 5, []int{0, 2, 5, 7, 10}},
		{101, 2, []int{0, 100}},
	} {
		got := profileSteps(test.length, test.n)
		if len(got) != len(test.want) {
			t.Errorf("profileSteps(%d, %d) = %v, want %v", test.length, test.n, got, test.want)
			continue
		}
		for i := range got {
			if got[i] != test.want[i] {
				t.Errorf("profileSteps(%d, %d) = %v, want %v", test.length, test.n, got, test.want)
				break
			}
		}
	}
}
