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

package store

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spatialmodel/gwflow"
)

func TestStore(t *testing.T) {
	dir, err := ioutil.TempDir("", "gwflowstore")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(dir, "results.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	const run = "a1b2"
	if err := s.PutRun(ctx, run, "test run"); err != nil {
		t.Fatal(err)
	}
	obs := &gwflow.ObservationSeries{
		Point:     gwflow.ObservationPoint{Name: "mw-1", I: 3, J: 4},
		Reference: 10,
		Steps:     []int{0, 1, 2},
		Times:     []float64{0, 60, 120},
		Heads:     []float64{10, 9.5, 9.25},
		Drawdowns: []float64{0, 0.5, 0.75},
	}
	if err := s.PutObservations(ctx, run, []*gwflow.ObservationSeries{obs}); err != nil {
		t.Fatal(err)
	}
	// Saving again replaces the existing records.
	if err := s.PutObservations(ctx, run, []*gwflow.ObservationSeries{obs}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Observations(ctx, run, "mw-1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, obs) {
		t.Errorf("observations:\n%+v\n!=\n%+v", got, obs)
	}
	if _, err := s.Observations(ctx, run, "mw-2"); err == nil {
		t.Error("expected an error for a missing observation point")
	}

	b := &gwflow.Budget{
		Step: 10,
		Time: 600,
		Terms: []gwflow.BudgetTerm{
			{Name: gwflow.BudgetStorage, In: 0.25},
			{Name: gwflow.BudgetWells, Out: 1},
			{Name: gwflow.BudgetConstantHead, In: 0.75},
		},
	}
	if err := s.PutBudgets(ctx, run, []*gwflow.Budget{b}); err != nil {
		t.Fatal(err)
	}
	terms, err := s.BudgetTerms(ctx, run, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(terms, b.Terms) {
		t.Errorf("budget terms %v, want %v", terms, b.Terms)
	}
	if terms, _ := s.BudgetTerms(ctx, run, 11); len(terms) != 0 {
		t.Errorf("unexpected terms for step 11: %v", terms)
	}

	if _, err := s.Observations(ctx, "other", "mw-1"); err == nil {
		t.Error("observations should belong to a single run")
	}

	if err := s.PutRun(ctx, "c3d4", "second run"); err != nil {
		t.Fatal(err)
	}
	runs, err := s.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(runs, []string{run, "c3d4"}) {
		t.Errorf("runs %v", runs)
	}

	// Saving a run again clears its results.
	if err := s.PutRun(ctx, run, "test run"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Observations(ctx, run, "mw-1"); err == nil {
		t.Error("observations should have been cleared")
	}
}
