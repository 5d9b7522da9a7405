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
	"strings"

	"github.com/spatialmodel/gwflow/schedule"
	"github.com/spf13/cast"
)

// BoundaryConfig is the file representation of a boundary condition.
// Type selects the variant; the keys used by each variant are:
//
//	dirichlet:      cells, value
//	neumann, flux:  cells, value or flux, schedule (optional)
//	ghb, river:     cells, stage, conductance (or C)
//	recharge:       cells, rate
//	theis:          cells, cell_coords (optional), wells, T, S,
//	                dx and dy (optional), head0
//
// cells is one of the location keywords accepted by Grid.Edge, such
// as "left" or "perimeter", or a list whose elements are [i, j] pairs
// or linear cell indices (i*ny + j). wells is a list of [i, j, Q]
// triples. cell_coords gives one location per cell for the distance
// calculation: integer pairs are [i, j] cell indices, which may lie
// outside the grid and are scaled by dx and dy, and floating-point
// pairs are [x, y] coordinates [m].
type BoundaryConfig struct {
	Type  string      `toml:"type" yaml:"type" json:"type"`
	Cells interface{} `toml:"cells" yaml:"cells" json:"cells"`

	Value *float64 `toml:"value" yaml:"value" json:"value"`
	Flux  *float64 `toml:"flux" yaml:"flux" json:"flux"`
	Rate  *float64 `toml:"rate" yaml:"rate" json:"rate"`

	Stage       *float64 `toml:"stage" yaml:"stage" json:"stage"`
	Conductance *float64 `toml:"conductance" yaml:"conductance" json:"conductance"`
	C           *float64 `toml:"C" yaml:"C" json:"C"`

	CellCoords interface{} `toml:"cell_coords" yaml:"cell_coords" json:"cell_coords"`
	Wells      interface{} `toml:"wells" yaml:"wells" json:"wells"`
	T          *float64    `toml:"T" yaml:"T" json:"T"`
	S          *float64    `toml:"S" yaml:"S" json:"S"`
	Dx         float64     `toml:"dx" yaml:"dx" json:"dx"`
	Dy         float64     `toml:"dy" yaml:"dy" json:"dy"`
	Head0      *float64    `toml:"head0" yaml:"head0" json:"head0"`

	Schedule *schedule.Config `toml:"schedule" yaml:"schedule" json:"schedule"`
}

func requireKeys(typ string, keys []string, vals ...*float64) error {
	for i, v := range vals {
		if v == nil {
			return fmt.Errorf("gwflow: %s boundary is missing required key '%s'", typ, keys[i])
		}
	}
	return nil
}

// NewBoundary validates c against g and returns the boundary condition
// it describes.
func NewBoundary(c BoundaryConfig, g *Grid) (Boundary, error) {
	typ := strings.ToLower(strings.TrimSpace(c.Type))
	if typ == "" {
		return nil, fmt.Errorf("gwflow: boundary condition is missing required key 'type'")
	}
	if c.Cells == nil {
		return nil, fmt.Errorf("gwflow: %s boundary is missing required key 'cells'", typ)
	}
	cells, err := ParseCells(g, c.Cells)
	if err != nil {
		return nil, fmt.Errorf("gwflow: %s boundary: %w", typ, err)
	}
	switch typ {
	case "dirichlet", "constant_head", "chd":
		if err := requireKeys(typ, []string{"value"}, c.Value); err != nil {
			return nil, err
		}
		return &Dirichlet{Cells: cells, Value: *c.Value}, nil

	case "neumann", "flux":
		f := &Flux{Cells: cells, Kind: Neumann}
		if typ == "flux" {
			f.Kind = PerArea
		}
		switch {
		case c.Schedule != nil:
			s, err := schedule.New(*c.Schedule)
			if err != nil {
				return nil, fmt.Errorf("gwflow: %s boundary: %w", typ, err)
			}
			f.Schedule = s
		case c.Value != nil:
			f.Rate = *c.Value
		case c.Flux != nil:
			f.Rate = *c.Flux
		default:
			return nil, fmt.Errorf("gwflow: %s boundary is missing required key 'value' or 'flux'", typ)
		}
		return f, nil

	case "ghb", "river":
		cond := c.Conductance
		if cond == nil {
			cond = c.C
		}
		if err := requireKeys(typ, []string{"stage", "conductance"}, c.Stage, cond); err != nil {
			return nil, err
		}
		gh := &GeneralHead{Cells: cells, Kind: GHB, Stage: *c.Stage, Conductance: *cond}
		if typ == "river" {
			gh.Kind = River
		}
		if err := checkBoundary(g, gh); err != nil {
			return nil, err
		}
		return gh, nil

	case "recharge":
		if err := requireKeys(typ, []string{"rate"}, c.Rate); err != nil {
			return nil, err
		}
		return &RechargeBoundary{Cells: cells, Rate: *c.Rate}, nil

	case "theis":
		if err := requireKeys(typ, []string{"T", "S", "head0"}, c.T, c.S, c.Head0); err != nil {
			return nil, err
		}
		if c.Wells == nil {
			return nil, fmt.Errorf("gwflow: theis boundary is missing required key 'wells'")
		}
		wells, err := parseTheisWells(c.Wells)
		if err != nil {
			return nil, err
		}
		coords, locations, err := parseCellCoords(c.CellCoords)
		if err != nil {
			return nil, err
		}
		tp := &TheisPerimeter{
			Cells:     cells,
			Coords:    coords,
			Locations: locations,
			Wells:     wells,
			T:         *c.T,
			S:         *c.S,
			Head0:     *c.Head0,
			Dx:        c.Dx,
			Dy:        c.Dy,
		}
		if c.Dx > 0 && c.Dy > 0 {
			tp.MinDistance = 0.5 * math.Min(c.Dx, c.Dy)
		}
		if err := checkBoundary(g, tp); err != nil {
			return nil, err
		}
		return tp, nil

	default:
		return nil, fmt.Errorf("gwflow: unknown boundary condition type %q", c.Type)
	}
}

// NewBoundaries converts each configuration in cs into a boundary
// condition.
func NewBoundaries(cs []BoundaryConfig, g *Grid) ([]Boundary, error) {
	bcs := make([]Boundary, len(cs))
	for i, c := range cs {
		bc, err := NewBoundary(c, g)
		if err != nil {
			return nil, fmt.Errorf("boundary %d: %w", i, err)
		}
		bcs[i] = bc
	}
	return bcs, nil
}

// ParseCells converts v into a list of cells in g. v can be a location
// keyword or a list whose elements are [i, j] pairs, maps with "i" and
// "j" keys, or linear cell indices.
func ParseCells(g *Grid, v interface{}) ([]Cell, error) {
	switch v := v.(type) {
	case string:
		return g.Edge(v)
	case []int:
		cells := make([]Cell, len(v))
		for n, k := range v {
			c, err := linearCell(g, k)
			if err != nil {
				return nil, err
			}
			cells[n] = c
		}
		return cells, nil
	case []Cell:
		for _, c := range v {
			if err := g.checkCell(c); err != nil {
				return nil, err
			}
		}
		return append([]Cell(nil), v...), nil
	case [][2]int:
		cells := make([]Cell, len(v))
		for n, ij := range v {
			cells[n] = Cell{I: ij[0], J: ij[1]}
			if err := g.checkCell(cells[n]); err != nil {
				return nil, err
			}
		}
		return cells, nil
	case [][]int:
		items := make([]interface{}, len(v))
		for n, ij := range v {
			items[n] = ij
		}
		return ParseCells(g, items)
	}
	items, err := cast.ToSliceE(v)
	if err != nil {
		return nil, fmt.Errorf("gwflow: invalid cell list %v: %v", v, err)
	}
	cells := make([]Cell, 0, len(items))
	for _, item := range items {
		var c Cell
		if k, ok := integerValue(item); ok {
			if c, err = linearCell(g, k); err != nil {
				return nil, err
			}
			cells = append(cells, c)
			continue
		}
		if isNumber(item) {
			return nil, fmt.Errorf("gwflow: invalid cell %v: linear cell indices must be integers", item)
		}
		if m, err := cast.ToStringMapE(item); err == nil {
			if c.I, err = cast.ToIntE(m["i"]); err != nil {
				return nil, fmt.Errorf("gwflow: invalid cell %v: %v", item, err)
			}
			if c.J, err = cast.ToIntE(m["j"]); err != nil {
				return nil, fmt.Errorf("gwflow: invalid cell %v: %v", item, err)
			}
		} else {
			ij, err := cast.ToIntSliceE(item)
			if err != nil || len(ij) != 2 {
				return nil, fmt.Errorf("gwflow: invalid cell %v: want [i, j]", item)
			}
			c = Cell{I: ij[0], J: ij[1]}
		}
		if err := g.checkCell(c); err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, nil
}

// linearCell returns the cell at linear index k of g.
func linearCell(g *Grid, k int) (Cell, error) {
	if k < 0 || k >= g.N() {
		return Cell{}, fmt.Errorf("gwflow: cell index %d is outside of the %d×%d grid", k, g.Nx(), g.Ny())
	}
	return g.Cell(k), nil
}

// integerValue returns v as an int if it has an integer type or is a
// floating-point number with an integer value.
func integerValue(v interface{}) (int, bool) {
	switch x := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToInt(x), true
	case float32:
		if float32(math.Trunc(float64(x))) == x {
			return int(x), true
		}
	case float64:
		if math.Trunc(x) == x && !math.IsInf(x, 0) {
			return int(x), true
		}
	}
	return 0, false
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func isInteger(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// parseCellCoords converts theis cell locations. Pairs of integers are
// returned as cell indices and pairs of floating-point numbers as
// coordinates; a list may not mix the two.
func parseCellCoords(v interface{}) ([][2]float64, []Cell, error) {
	switch c := v.(type) {
	case nil:
		return nil, nil, nil
	case [][2]float64:
		return append([][2]float64(nil), c...), nil, nil
	case [][2]int:
		locs := make([]Cell, len(c))
		for n, ij := range c {
			locs[n] = Cell{I: ij[0], J: ij[1]}
		}
		return nil, locs, nil
	case []Cell:
		return nil, append([]Cell(nil), c...), nil
	}
	items, err := cast.ToSliceE(v)
	if err != nil {
		return nil, nil, fmt.Errorf("gwflow: theis boundary: invalid cell_coords %v: %v", v, err)
	}
	var coords [][2]float64
	var locs []Cell
	for _, item := range items {
		pair, err := cast.ToSliceE(item)
		if err != nil || len(pair) != 2 || !isNumber(pair[0]) || !isNumber(pair[1]) {
			return nil, nil, fmt.Errorf("gwflow: theis boundary: invalid cell_coords element %v: want a pair of numbers", item)
		}
		if isInteger(pair[0]) && isInteger(pair[1]) {
			locs = append(locs, Cell{I: cast.ToInt(pair[0]), J: cast.ToInt(pair[1])})
		} else {
			coords = append(coords, [2]float64{cast.ToFloat64(pair[0]), cast.ToFloat64(pair[1])})
		}
	}
	if len(coords) > 0 && len(locs) > 0 {
		return nil, nil, fmt.Errorf("gwflow: theis boundary: cell_coords mixes cell indices and coordinates")
	}
	return coords, locs, nil
}

// parseTheisWells converts a list of [i, j, Q] triples.
func parseTheisWells(v interface{}) ([]TheisWell, error) {
	switch w := v.(type) {
	case []TheisWell:
		return append([]TheisWell(nil), w...), nil
	case [][]float64:
		items := make([]interface{}, len(w))
		for n, iq := range w {
			if len(iq) != 3 {
				return nil, fmt.Errorf("gwflow: theis boundary: invalid well %v: want [i, j, Q]", iq)
			}
			items[n] = []interface{}{iq[0], iq[1], iq[2]}
		}
		return parseTheisWells(items)
	}
	items, err := cast.ToSliceE(v)
	if err != nil {
		return nil, fmt.Errorf("gwflow: theis boundary: invalid wells %v: %v", v, err)
	}
	wells := make([]TheisWell, len(items))
	for n, item := range items {
		vals, err := cast.ToSliceE(item)
		if err != nil || len(vals) != 3 {
			return nil, fmt.Errorf("gwflow: theis boundary: invalid well %v: want [i, j, Q]", item)
		}
		var w TheisWell
		if w.I, err = cast.ToIntE(vals[0]); err != nil {
			return nil, fmt.Errorf("gwflow: theis boundary: well %d: %v", n, err)
		}
		if w.J, err = cast.ToIntE(vals[1]); err != nil {
			return nil, fmt.Errorf("gwflow: theis boundary: well %d: %v", n, err)
		}
		if w.Q, err = cast.ToFloat64E(vals[2]); err != nil {
			return nil, fmt.Errorf("gwflow: theis boundary: well %d: %v", n, err)
		}
		wells[n] = w
	}
	return wells, nil
}
