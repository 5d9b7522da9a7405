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

package schedule

import (
	"fmt"
	"strings"
)

// Config is the file representation of a schedule. Type selects the
// variant; the fields used by each variant are:
//
//	constant:   Q
//	step:       times, rates
//	ramp:       t_start, t_end, Q_start, Q_end
//	sinusoidal: Q_mean, Q_amp, period, phase (optional)
//	pulse:      Q_on, Q_off (optional), period, t_on, t_off
//	expression: expression
type Config struct {
	Type string `toml:"type" yaml:"type" json:"type"`

	Q *float64 `toml:"Q" yaml:"Q" json:"Q"`

	Times []float64 `toml:"times" yaml:"times" json:"times"`
	Rates []float64 `toml:"rates" yaml:"rates" json:"rates"`

	TStart *float64 `toml:"t_start" yaml:"t_start" json:"t_start"`
	TEnd   *float64 `toml:"t_end" yaml:"t_end" json:"t_end"`
	QStart *float64 `toml:"Q_start" yaml:"Q_start" json:"Q_start"`
	QEnd   *float64 `toml:"Q_end" yaml:"Q_end" json:"Q_end"`

	QMean  *float64 `toml:"Q_mean" yaml:"Q_mean" json:"Q_mean"`
	QAmp   *float64 `toml:"Q_amp" yaml:"Q_amp" json:"Q_amp"`
	Period *float64 `toml:"period" yaml:"period" json:"period"`
	Phase  float64  `toml:"phase" yaml:"phase" json:"phase"`

	QOn  *float64 `toml:"Q_on" yaml:"Q_on" json:"Q_on"`
	QOff float64  `toml:"Q_off" yaml:"Q_off" json:"Q_off"`
	TOn  *float64 `toml:"t_on" yaml:"t_on" json:"t_on"`
	TOff *float64 `toml:"t_off" yaml:"t_off" json:"t_off"`

	Expression string `toml:"expression" yaml:"expression" json:"expression"`
}

// missing returns an error naming the first nil key.
func missing(typ string, keys []string, vals ...*float64) error {
	for i, v := range vals {
		if v == nil {
			return fmt.Errorf("schedule: %s schedule is missing required key '%s'", typ, keys[i])
		}
	}
	return nil
}

// New validates c and returns the schedule it describes.
func New(c Config) (Schedule, error) {
	typ := strings.ToLower(strings.TrimSpace(c.Type))
	switch typ {
	case "constant":
		if err := missing(typ, []string{"Q"}, c.Q); err != nil {
			return nil, err
		}
		return Constant{Q: *c.Q}, nil
	case "step":
		return NewStep(c.Times, c.Rates)
	case "ramp":
		if err := missing(typ, []string{"t_start", "t_end", "Q_start", "Q_end"},
			c.TStart, c.TEnd, c.QStart, c.QEnd); err != nil {
			return nil, err
		}
		return NewRamp(*c.TStart, *c.TEnd, *c.QStart, *c.QEnd)
	case "sinusoidal", "sine":
		if err := missing(typ, []string{"Q_mean", "Q_amp", "period"},
			c.QMean, c.QAmp, c.Period); err != nil {
			return nil, err
		}
		return NewSinusoidal(*c.QMean, *c.QAmp, *c.Period, c.Phase)
	case "pulse":
		if err := missing(typ, []string{"Q_on", "period", "t_on", "t_off"},
			c.QOn, c.Period, c.TOn, c.TOff); err != nil {
			return nil, err
		}
		return NewPulse(*c.QOn, c.QOff, *c.Period, *c.TOn, *c.TOff)
	case "expression":
		if c.Expression == "" {
			return nil, fmt.Errorf("schedule: expression schedule is missing required key 'expression'")
		}
		return NewExpression(c.Expression)
	case "":
		return nil, fmt.Errorf("schedule: missing schedule type")
	default:
		return nil, fmt.Errorf("schedule: unknown schedule type %q", c.Type)
	}
}
