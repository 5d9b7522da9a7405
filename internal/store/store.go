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

// Package store saves simulation results to a SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/spatialmodel/gwflow"
	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	created     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS observations (
	run      TEXT    NOT NULL,
	name     TEXT    NOT NULL,
	i        INTEGER NOT NULL,
	j        INTEGER NOT NULL,
	step     INTEGER NOT NULL,
	time     REAL    NOT NULL,
	head     REAL    NOT NULL,
	drawdown REAL    NOT NULL,
	PRIMARY KEY (run, name, step)
);
CREATE TABLE IF NOT EXISTS budgets (
	run       TEXT    NOT NULL,
	step      INTEGER NOT NULL,
	time      REAL    NOT NULL,
	component TEXT    NOT NULL,
	inflow    REAL    NOT NULL,
	outflow   REAL    NOT NULL,
	PRIMARY KEY (run, step, component)
);`

// Store is a SQLite database of observation series and water budgets.
// Records are grouped by run, so results of several simulations can
// share one database.
type Store struct {
	db *sql.DB
}

// Open opens the database at path, creating it and its tables if
// they do not already exist.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.retry(ctx, func() error {
		_, err := db.ExecContext(ctx, schema)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating tables: %w", err)
	}
	return s, nil
}

// busy reports whether err means another connection holds a lock on
// the database.
func busy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retry runs f, retrying with exponential backoff while the database
// is locked by another process.
func (s *Store) retry(ctx context.Context, f func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return backoff.Retry(func() error {
		err := f()
		if err != nil && !busy(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx))
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// withTx runs f in a transaction, which is committed if f succeeds.
func (s *Store) withTx(ctx context.Context, f func(tx *sql.Tx) error) error {
	return s.retry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("store: beginning transaction: %w", err)
		}
		if err := f(tx); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("store: committing transaction: %w", err)
		}
		return nil
	})
}

// PutRun records a simulation run. Saving a run that already exists
// removes its observations and budgets.
func (s *Store) PutRun(ctx context.Context, run, description string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, q := range []string{
			`DELETE FROM observations WHERE run = ?`,
			`DELETE FROM budgets WHERE run = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, run); err != nil {
				return fmt.Errorf("store: clearing run %s: %w", run, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO runs (id, description, created)
			VALUES (?, ?, ?)`, run, description, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("store: saving run %s: %w", run, err)
		}
		return nil
	})
}

// Runs returns the IDs of the stored runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs ORDER BY created, rowid`)
	if err != nil {
		return nil, fmt.Errorf("store: querying runs: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: reading run: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PutObservations saves observation series for a run, replacing any
// records already stored for the same point and step.
func (s *Store) PutObservations(ctx context.Context, run string, series []*gwflow.ObservationSeries) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO observations
			(run, name, i, j, step, time, head, drawdown) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("store: preparing observation insert: %w", err)
		}
		defer stmt.Close()
		for _, o := range series {
			for n := range o.Times {
				if _, err := stmt.ExecContext(ctx, run, o.Point.Name, o.Point.I, o.Point.J,
					o.Steps[n], o.Times[n], o.Heads[n], o.Drawdowns[n]); err != nil {
					return fmt.Errorf("store: saving observation %q step %d: %w", o.Point.Name, o.Steps[n], err)
				}
			}
		}
		return nil
	})
}

// PutBudgets saves the water budgets of a run, one row per budget
// component.
func (s *Store) PutBudgets(ctx context.Context, run string, budgets []*gwflow.Budget) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO budgets
			(run, step, time, component, inflow, outflow) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("store: preparing budget insert: %w", err)
		}
		defer stmt.Close()
		for _, b := range budgets {
			for _, t := range b.Terms {
				if _, err := stmt.ExecContext(ctx, run, b.Step, b.Time, t.Name, t.In, t.Out); err != nil {
					return fmt.Errorf("store: saving budget step %d: %w", b.Step, err)
				}
			}
		}
		return nil
	})
}

// Observations returns the series stored for the named observation
// point in a run, ordered by step.
func (s *Store) Observations(ctx context.Context, run, name string) (*gwflow.ObservationSeries, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT i, j, step, time, head, drawdown
		FROM observations WHERE run = ? AND name = ? ORDER BY step`, run, name)
	if err != nil {
		return nil, fmt.Errorf("store: querying observations: %w", err)
	}
	defer rows.Close()
	o := &gwflow.ObservationSeries{Point: gwflow.ObservationPoint{Name: name}}
	for rows.Next() {
		var step int
		var t, h, d float64
		if err := rows.Scan(&o.Point.I, &o.Point.J, &step, &t, &h, &d); err != nil {
			return nil, fmt.Errorf("store: reading observation: %w", err)
		}
		o.Steps = append(o.Steps, step)
		o.Times = append(o.Times, t)
		o.Heads = append(o.Heads, h)
		o.Drawdowns = append(o.Drawdowns, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: reading observations: %w", err)
	}
	if len(o.Steps) == 0 {
		return nil, fmt.Errorf("store: no observations for %q in run %s", name, run)
	}
	o.Reference = o.Heads[0] + o.Drawdowns[0]
	return o, nil
}

// BudgetTerms returns the budget components stored for a step of a
// run in the order they were saved.
func (s *Store) BudgetTerms(ctx context.Context, run string, step int) ([]gwflow.BudgetTerm, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT component, inflow, outflow
		FROM budgets WHERE run = ? AND step = ? ORDER BY rowid`, run, step)
	if err != nil {
		return nil, fmt.Errorf("store: querying budgets: %w", err)
	}
	defer rows.Close()
	var terms []gwflow.BudgetTerm
	for rows.Next() {
		var t gwflow.BudgetTerm
		if err := rows.Scan(&t.Name, &t.In, &t.Out); err != nil {
			return nil, fmt.Errorf("store: reading budget: %w", err)
		}
		terms = append(terms, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: reading budgets: %w", err)
	}
	return terms, nil
}
