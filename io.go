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
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/sparse"
	goshp "github.com/jonas-p/go-shp"
	"github.com/tealeg/xlsx"
)

// WriteHistoryNetCDF writes a head history to a NetCDF file at path.
// heads[n] is the head field at times[n]. The file holds the variables
// head(time, x, y), time(time), x(x), and y(y), where x and y are the
// cell-center coordinates.
func WriteHistoryNetCDF(path string, g *Grid, times []float64, heads []*sparse.DenseArray) error {
	if len(times) != len(heads) {
		return fmt.Errorf("gwflow: %d times but %d head fields", len(times), len(heads))
	}
	for n, h := range heads {
		if err := g.checkField(fmt.Sprintf("head field %d", n), h); err != nil {
			return err
		}
	}
	nt, nx, ny := len(times), g.Nx(), g.Ny()

	h := cdf.NewHeader([]string{"time", "x", "y"}, []int{nt, nx, ny})
	h.AddAttribute("", "comment", "GWFlow hydraulic head history")
	h.AddVariable("head", []string{"time", "x", "y"}, []float64{0})
	h.AddAttribute("head", "description", "Hydraulic head")
	h.AddAttribute("head", "units", "m")
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "description", "Simulation time")
	h.AddAttribute("time", "units", "s")
	h.AddVariable("x", []string{"x"}, []float64{0})
	h.AddAttribute("x", "description", "Cell center x coordinate")
	h.AddAttribute("x", "units", "m")
	h.AddVariable("y", []string{"y"}, []float64{0})
	h.AddAttribute("y", "description", "Cell center y coordinate")
	h.AddAttribute("y", "units", "m")
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("gwflow: creating netcdf file: %v", err)
	}

	ff, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gwflow: creating netcdf file: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		return fmt.Errorf("gwflow: creating netcdf file: %v", err)
	}

	data := make([]float64, 0, nt*nx*ny)
	for _, hh := range heads {
		data = append(data, hh.Elements...)
	}
	for _, v := range []struct {
		name string
		data []float64
	}{
		{"head", data},
		{"time", times},
		{"x", g.XCenters()},
		{"y", g.YCenters()},
	} {
		if err := writeNCF(f, v.name, v.data); err != nil {
			return err
		}
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		return fmt.Errorf("gwflow: finalizing netcdf file: %v", err)
	}
	return nil
}

func writeNCF(f *cdf.File, Var string, data []float64) error {
	end := f.Header.Lengths(Var)
	start := make([]int, len(end))
	w := f.Writer(Var, start, end)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("gwflow: writing variable %s to netcdf file: %v", Var, err)
	}
	return nil
}

// ReadHistoryNetCDF reads a head history written by
// WriteHistoryNetCDF.
func ReadHistoryNetCDF(path string) (times []float64, heads []*sparse.DenseArray, err error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("gwflow: opening netcdf file: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, nil, fmt.Errorf("gwflow: opening netcdf file: %v", err)
	}
	readVar := func(name string) ([]float64, error) {
		r := f.Reader(name, nil, nil)
		buf := r.Zero(-1)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("gwflow: reading netcdf variable %s: %v", name, err)
		}
		return buf.([]float64), nil
	}
	if times, err = readVar("time"); err != nil {
		return nil, nil, err
	}
	data, err := readVar("head")
	if err != nil {
		return nil, nil, err
	}
	dims := f.Header.Lengths("head")
	if len(dims) != 3 || dims[0] != len(times) {
		return nil, nil, fmt.Errorf("gwflow: netcdf head variable has dimensions %v", dims)
	}
	n := dims[1] * dims[2]
	for t := range times {
		h := sparse.ZerosDense(dims[1], dims[2])
		copy(h.Elements, data[t*n:(t+1)*n])
		heads = append(heads, h)
	}
	return times, heads, nil
}

// WriteHeadShapefile writes a polygon shapefile with one shape per
// grid cell holding the cell indices, the head, and, if h0 is not nil,
// the drawdown h0 - head.
func WriteHeadShapefile(path string, g *Grid, head, h0 *sparse.DenseArray) error {
	if err := g.checkField("head", head); err != nil {
		return err
	}
	if h0 != nil {
		if err := g.checkField("initial head", h0); err != nil {
			return err
		}
	}
	fields := []goshp.Field{
		goshp.NumberField("i", 10),
		goshp.NumberField("j", 10),
		goshp.FloatField("head", 14, 8),
	}
	if h0 != nil {
		fields = append(fields, goshp.FloatField("drawdown", 14, 8))
	}

	// remove extension and replace it with .shp
	path = strings.TrimSuffix(path, filepath.Ext(path)) + ".shp"
	shape, err := shp.NewEncoderFromFields(path, goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("gwflow: creating shapefile: %v", err)
	}
	defer shape.Close()
	for k, h := range head.Elements {
		c := g.Cell(k)
		vals := []interface{}{c.I, c.J, h}
		if h0 != nil {
			vals = append(vals, h0.Elements[k]-h)
		}
		if err := shape.EncodeFields(g.Polygon(c), vals...); err != nil {
			return fmt.Errorf("gwflow: writing shapefile: %v", err)
		}
	}
	return nil
}

// WriteBudgetXLSX writes budgets and observation series to an Excel
// workbook at path, with one sheet for each.
func WriteBudgetXLSX(path string, budgets []*Budget, obs []*ObservationSeries) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet("Budget")
	if err != nil {
		return fmt.Errorf("gwflow: creating budget sheet: %v", err)
	}
	header := sheet.AddRow()
	for _, v := range []string{"Step", "Time [s]", "Component", "In [m³/s]", "Out [m³/s]"} {
		header.AddCell().SetString(v)
	}
	for _, b := range budgets {
		terms := append(append([]BudgetTerm(nil), b.Terms...), BudgetTerm{Name: "TOTAL", In: b.TotalIn, Out: b.TotalOut})
		for _, t := range terms {
			row := sheet.AddRow()
			row.AddCell().SetInt(b.Step)
			row.AddCell().SetFloat(b.Time)
			row.AddCell().SetString(t.Name)
			row.AddCell().SetFloat(t.In)
			row.AddCell().SetFloat(t.Out)
		}
	}

	if len(obs) > 0 {
		sheet, err := f.AddSheet("Observations")
		if err != nil {
			return fmt.Errorf("gwflow: creating observation sheet: %v", err)
		}
		header := sheet.AddRow()
		for _, v := range []string{"Name", "I", "J", "Step", "Time [s]", "Head [m]", "Drawdown [m]"} {
			header.AddCell().SetString(v)
		}
		for _, s := range obs {
			for n := range s.Times {
				row := sheet.AddRow()
				row.AddCell().SetString(s.Point.Name)
				row.AddCell().SetInt(s.Point.I)
				row.AddCell().SetInt(s.Point.J)
				row.AddCell().SetInt(s.Steps[n])
				row.AddCell().SetFloat(s.Times[n])
				row.AddCell().SetFloat(s.Heads[n])
				row.AddCell().SetFloat(s.Drawdowns[n])
			}
		}
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("gwflow: saving budget workbook: %v", err)
	}
	return nil
}
