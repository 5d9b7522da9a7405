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

package hash

import "testing"

func TestHash(t *testing.T) {
	type well struct {
		Name string
		Q    *float64
	}
	q1, q2 := -1e-3, -1e-3
	a := map[string]interface{}{"grid.nx": 50, "aquifer.t": 1e-3, "solver": "direct"}
	b := map[string]interface{}{"solver": "direct", "aquifer.t": 1e-3, "grid.nx": 50}
	c := map[string]interface{}{"solver": "sor", "aquifer.t": 1e-3, "grid.nx": 50}

	if Hash(a, well{"w", &q1}) != Hash(b, well{"w", &q2}) {
		t.Error("equal objects should have the same hash")
	}
	if Hash(a) == Hash(c) {
		t.Error("different objects should have different hashes")
	}
	if Hash(a, b) == Hash(a) {
		t.Error("the number of objects should change the hash")
	}
	if n := len(Hash(a)); n != 16 {
		t.Errorf("hash length %d", n)
	}
}
