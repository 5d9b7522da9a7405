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
	"math"

	"github.com/Knetic/govaluate"
)

// Expression is a rate given by an arithmetic expression of the
// variable t, for example "-0.01 * (1 - exp(-t/3600))". The constant
// pi is also available.
type Expression struct {
	src  string
	expr *govaluate.EvaluableExpression
}

func oneArg(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("schedule: got %d arguments for function '%s', but needs 1", len(args), name)
		}
		v, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("schedule: argument to '%s' is not a number", name)
		}
		return f(v), nil
	}
}

func twoArgs(name string, f func(a, b float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("schedule: got %d arguments for function '%s', but needs 2", len(args), name)
		}
		a, ok1 := args[0].(float64)
		b, ok2 := args[1].(float64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("schedule: arguments to '%s' are not numbers", name)
		}
		return f(a, b), nil
	}
}

var expressionFuncs = map[string]govaluate.ExpressionFunction{
	"sin": oneArg("sin", math.Sin),
	"cos": oneArg("cos", math.Cos),
	"exp": oneArg("exp", math.Exp),
	"abs": oneArg("abs", math.Abs),
	"min": twoArgs("min", math.Min),
	"max": twoArgs("max", math.Max),
	"mod": twoArgs("mod", math.Mod),
}

// NewExpression parses src. The only variables allowed are t and pi,
// and the expression must evaluate to a number.
func NewExpression(src string) (*Expression, error) {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(src, expressionFuncs)
	if err != nil {
		return nil, fmt.Errorf("schedule: parsing expression %q: %v", src, err)
	}
	for _, v := range expr.Vars() {
		if v != "t" && v != "pi" {
			return nil, fmt.Errorf("schedule: expression %q uses variable %q; only 't' and 'pi' are allowed", src, v)
		}
	}
	e := &Expression{src: src, expr: expr}
	if _, err := e.eval(0); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Expression) eval(t float64) (float64, error) {
	r, err := e.expr.Evaluate(map[string]interface{}{"t": t, "pi": math.Pi})
	if err != nil {
		return math.NaN(), fmt.Errorf("schedule: evaluating %q at t=%g: %v", e.src, t, err)
	}
	v, ok := r.(float64)
	if !ok {
		return math.NaN(), fmt.Errorf("schedule: expression %q evaluates to %T, not a number", e.src, r)
	}
	return v, nil
}

// Rate implements Schedule. An evaluation failure gives NaN, which
// the source assembly reports as an error.
func (e *Expression) Rate(t float64) float64 {
	v, _ := e.eval(t)
	return v
}

func (e *Expression) String() string { return e.src }
func (*Expression) isSchedule()      {}
