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

// StorageCoefficients returns the volumetric storage coefficient
// [m²] of each cell: the volume of water released from storage per
// unit decline in head. It is Ss·b·area for confined aquifers and
// Sy·area for unconfined aquifers, and zero for inactive cells.
func StorageCoefficients(m *Model) []float64 {
	g := m.Grid
	s := make([]float64, g.N())
	for k := range s {
		if !m.IsActive(k) {
			continue
		}
		area := g.Area(g.Cell(k))
		if m.Props.Confined {
			s[k] = layerValue(m.Props.Ss, k) * m.Props.Thickness[0] * area
		} else {
			s[k] = layerValue(m.Props.Sy, k) * area
		}
	}
	return s
}
