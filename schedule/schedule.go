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

// Package schedule provides time-varying rates for wells and recharge.
// All schedules are validated when they are created, so evaluating a
// schedule cannot fail.
package schedule

import (
	"fmt"
	"math"
	"sort"
)

// Schedule returns a rate as a function of time. The set of
// implementations is closed; arbitrary functions can be supplied
// through Func or Expression.
type Schedule interface {
	Rate(t float64) float64
	isSchedule()
}

// Constant is a rate that does not change.
type Constant struct{ Q float64 }

// Rate implements Schedule.
func (c Constant) Rate(float64) float64 { return c.Q }
func (Constant) isSchedule()            {}

// Step is a piecewise-constant rate.
type Step struct {
	times, rates []float64
}

// NewStep returns a piecewise-constant schedule where rates[i] applies
// from times[i] until the next breakpoint. Before the first breakpoint
// the first rate applies. times must be non-decreasing.
func NewStep(times, rates []float64) (*Step, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("schedule: step schedule needs at least one breakpoint")
	}
	if len(times) != len(rates) {
		return nil, fmt.Errorf("schedule: step schedule has %d times but %d rates", len(times), len(rates))
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return nil, fmt.Errorf("schedule: step times must be non-decreasing; "+
				"times[%d]=%g < times[%d]=%g", i, times[i], i-1, times[i-1])
		}
	}
	return &Step{
		times: append([]float64(nil), times...),
		rates: append([]float64(nil), rates...),
	}, nil
}

// Rate implements Schedule.
func (s *Step) Rate(t float64) float64 {
	// Index of the latest breakpoint <= t.
	i := sort.Search(len(s.times), func(i int) bool { return s.times[i] > t }) - 1
	if i < 0 {
		return s.rates[0]
	}
	return s.rates[i]
}
func (*Step) isSchedule() {}

// Ramp interpolates linearly between (TStart, QStart) and (TEnd, QEnd)
// and is constant outside of that interval.
type Ramp struct {
	TStart, TEnd, QStart, QEnd float64
}

// NewRamp returns a validated ramp schedule.
func NewRamp(tStart, tEnd, qStart, qEnd float64) (*Ramp, error) {
	if !(tEnd > tStart) {
		return nil, fmt.Errorf("schedule: ramp end time %g must be after start time %g", tEnd, tStart)
	}
	return &Ramp{TStart: tStart, TEnd: tEnd, QStart: qStart, QEnd: qEnd}, nil
}

// Rate implements Schedule.
func (r *Ramp) Rate(t float64) float64 {
	switch {
	case t <= r.TStart:
		return r.QStart
	case t >= r.TEnd:
		return r.QEnd
	}
	return r.QStart + (t-r.TStart)/(r.TEnd-r.TStart)*(r.QEnd-r.QStart)
}
func (*Ramp) isSchedule() {}

// Sinusoidal oscillates around Mean: Mean + Amp·sin(2π(t-Phase)/Period).
type Sinusoidal struct {
	Mean, Amp, Period, Phase float64
}

// NewSinusoidal returns a validated sinusoidal schedule.
func NewSinusoidal(mean, amp, period, phase float64) (*Sinusoidal, error) {
	if !(period > 0) {
		return nil, fmt.Errorf("schedule: sinusoidal period must be positive, got %g", period)
	}
	return &Sinusoidal{Mean: mean, Amp: amp, Period: period, Phase: phase}, nil
}

// Rate implements Schedule.
func (s *Sinusoidal) Rate(t float64) float64 {
	return s.Mean + s.Amp*math.Sin(2*math.Pi*(t-s.Phase)/s.Period)
}
func (*Sinusoidal) isSchedule() {}

// Pulse repeats every Period. Within each period the rate is On during
// [TOn, TOff) and Off otherwise.
type Pulse struct {
	On, Off          float64
	Period, TOn, TOff float64
}

// NewPulse returns a validated pulse schedule.
func NewPulse(on, off, period, tOn, tOff float64) (*Pulse, error) {
	if !(period > 0) {
		return nil, fmt.Errorf("schedule: pulse period must be positive, got %g", period)
	}
	if tOn < 0 || tOn >= period {
		return nil, fmt.Errorf("schedule: pulse on time %g must be in [0, %g)", tOn, period)
	}
	if tOff <= tOn || tOff > period {
		return nil, fmt.Errorf("schedule: pulse off time %g must be in (%g, %g]", tOff, tOn, period)
	}
	return &Pulse{On: on, Off: off, Period: period, TOn: tOn, TOff: tOff}, nil
}

// Rate implements Schedule.
func (p *Pulse) Rate(t float64) float64 {
	tc := math.Mod(t, p.Period)
	if tc < 0 {
		tc += p.Period
	}
	if tc >= p.TOn && tc < p.TOff {
		return p.On
	}
	return p.Off
}
func (*Pulse) isSchedule() {}

// Func adapts an ordinary function to the Schedule interface.
type Func func(t float64) float64

// Rate implements Schedule.
func (f Func) Rate(t float64) float64 { return f(t) }
func (Func) isSchedule()              {}
