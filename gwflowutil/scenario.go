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
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/gwflow"
	"github.com/spatialmodel/gwflow/schedule"
	"gopkg.in/yaml.v3"
)

// Scenario describes the wells, boundary conditions, recharge, inactive
// cells, and observation points of a simulation.
type Scenario struct {
	Wells        []WellConfig            `toml:"wells" yaml:"wells"`
	Boundaries   []gwflow.BoundaryConfig `toml:"boundaries" yaml:"boundaries"`
	Observations []ObservationConfig     `toml:"observations" yaml:"observations"`
	Recharge     *RechargeConfig         `toml:"recharge" yaml:"recharge"`

	// Inactive lists cells that are excluded from the flow
	// calculation, in any form accepted by gwflow.ParseCells.
	Inactive interface{} `toml:"inactive" yaml:"inactive"`
}

// WellConfig specifies a well either by cell index (I and J) or by
// location (X and Y). The rate is Q [m³/s, negative for extraction]
// unless a schedule is given.
type WellConfig struct {
	Name     string           `toml:"name" yaml:"name"`
	I        *int             `toml:"i" yaml:"i"`
	J        *int             `toml:"j" yaml:"j"`
	X        *float64         `toml:"x" yaml:"x"`
	Y        *float64         `toml:"y" yaml:"y"`
	Q        float64          `toml:"Q" yaml:"Q"`
	Schedule *schedule.Config `toml:"schedule" yaml:"schedule"`
}

// ObservationConfig specifies an observation point by cell index or
// location.
type ObservationConfig struct {
	Name      string   `toml:"name" yaml:"name"`
	I         *int     `toml:"i" yaml:"i"`
	J         *int     `toml:"j" yaml:"j"`
	X         *float64 `toml:"x" yaml:"x"`
	Y         *float64 `toml:"y" yaml:"y"`
	Reference *float64 `toml:"reference" yaml:"reference"`
}

// RechargeConfig specifies a uniform recharge flux [m/s] that is
// either constant (Rate) or varies in time (Schedule).
type RechargeConfig struct {
	Rate     *float64         `toml:"rate" yaml:"rate"`
	Schedule *schedule.Config `toml:"schedule" yaml:"schedule"`
}

// ReadScenario reads a scenario from a TOML (.toml) or YAML (.yaml or
// .yml) file.
func ReadScenario(path string) (*Scenario, error) {
	s := new(Scenario)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, s); err != nil {
			return nil, fmt.Errorf("gwflowutil: reading scenario file %s: %v", path, err)
		}
	case ".yaml", ".yml":
		b, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("gwflowutil: reading scenario file: %v", err)
		}
		if err := yaml.Unmarshal(b, s); err != nil {
			return nil, fmt.Errorf("gwflowutil: reading scenario file %s: %v", path, err)
		}
	default:
		return nil, fmt.Errorf("gwflowutil: scenario file %s must have extension .toml, .yaml, or .yml", path)
	}
	return s, nil
}

// locate returns the cell given either by index or by location.
func locate(g *gwflow.Grid, what, name string, i, j *int, x, y *float64) (gwflow.Cell, error) {
	switch {
	case i != nil && j != nil:
		c := gwflow.Cell{I: *i, J: *j}
		if !g.Contains(c) {
			return c, fmt.Errorf("gwflowutil: %s %q: cell %v is outside of the grid", what, name, c)
		}
		return c, nil
	case x != nil && y != nil:
		c, err := g.CellAt(*x, *y)
		if err != nil {
			return c, fmt.Errorf("gwflowutil: %s %q: %w", what, name, err)
		}
		return c, nil
	default:
		return gwflow.Cell{}, fmt.Errorf("gwflowutil: %s %q needs either 'i' and 'j' or 'x' and 'y'", what, name)
	}
}

// Apply adds the contents of the scenario to m.
func (s *Scenario) Apply(m *gwflow.Model) error {
	g := m.Grid
	for n, wc := range s.Wells {
		if wc.Name == "" {
			wc.Name = fmt.Sprintf("well%d", n+1)
		}
		c, err := locate(g, "well", wc.Name, wc.I, wc.J, wc.X, wc.Y)
		if err != nil {
			return err
		}
		var sched schedule.Schedule
		if wc.Schedule != nil {
			if sched, err = schedule.New(*wc.Schedule); err != nil {
				return fmt.Errorf("gwflowutil: well %q: %w", wc.Name, err)
			}
		}
		w, err := gwflow.NewWell(g, wc.Name, c.I, c.J, wc.Q, sched)
		if err != nil {
			return err
		}
		m.Wells = append(m.Wells, w)
	}

	bcs, err := gwflow.NewBoundaries(s.Boundaries, g)
	if err != nil {
		return err
	}
	m.Boundaries = append(m.Boundaries, bcs...)

	for n, oc := range s.Observations {
		if oc.Name == "" {
			oc.Name = fmt.Sprintf("obs%d", n+1)
		}
		c, err := locate(g, "observation point", oc.Name, oc.I, oc.J, oc.X, oc.Y)
		if err != nil {
			return err
		}
		m.Observations = append(m.Observations, gwflow.ObservationPoint{
			Name: oc.Name, I: c.I, J: c.J, ReferenceHead: oc.Reference,
		})
	}

	if r := s.Recharge; r != nil {
		switch {
		case r.Schedule != nil:
			sched, err := schedule.New(*r.Schedule)
			if err != nil {
				return fmt.Errorf("gwflowutil: recharge: %w", err)
			}
			m.Recharge = gwflow.ScheduledRecharge{Schedule: sched}
		case r.Rate != nil:
			m.Recharge = gwflow.ConstantRecharge(*r.Rate)
		default:
			return fmt.Errorf("gwflowutil: recharge needs either 'rate' or 'schedule'")
		}
	}

	if s.Inactive != nil {
		cells, err := gwflow.ParseCells(g, s.Inactive)
		if err != nil {
			return fmt.Errorf("gwflowutil: inactive cells: %w", err)
		}
		if m.Active == nil {
			m.Active = make([]bool, g.N())
			for k := range m.Active {
				m.Active[k] = true
			}
		}
		for _, c := range cells {
			m.Active[g.Index(c.I, c.J)] = false
		}
	}
	return nil
}
