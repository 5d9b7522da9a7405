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

// Package theis calculates the Theis (1935) analytical solution for
// drawdown around a well pumping at a constant rate from an infinite
// confined aquifer.
package theis

import (
	"fmt"
	"math"
	"sync"

	"github.com/golang/groupcache/lru"
)

const eulerGamma = 0.57721566490153286061

// W calculates the Theis well function W(u), which is the exponential
// integral E1(u). u must be positive.
func W(u float64) float64 {
	switch {
	case u <= 0:
		return math.Inf(1)
	case u < 1:
		return wSeries(u)
	default:
		return wContinuedFraction(u)
	}
}

// wSeries evaluates -γ - ln(u) + Σ (-1)^(n+1) u^n / (n·n!).
func wSeries(u float64) float64 {
	const maxTerms = 100
	sum := -eulerGamma - math.Log(u)
	term := 1.0
	for n := 1; n <= maxTerms; n++ {
		term *= -u / float64(n)
		d := -term / float64(n)
		sum += d
		if math.Abs(d) < 1e-16*math.Abs(sum) {
			break
		}
	}
	return sum
}

// wContinuedFraction evaluates E1(u) with the modified Lentz algorithm.
func wContinuedFraction(u float64) float64 {
	const (
		maxIter = 200
		eps     = 1e-16
		tiny    = 1e-300
	)
	b := u + 1
	c := 1 / tiny
	d := 1 / b
	h := d
	for i := 1; i <= maxIter; i++ {
		an := -float64(i * i)
		b += 2
		d = 1 / (an*d + b)
		c = b + an/c
		del := c * d
		h *= del
		if math.Abs(del-1) < eps {
			break
		}
	}
	return h * math.Exp(-u)
}

// Cache memoizes well-function evaluations. It is safe for
// concurrent use.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache
}

// NewCache returns a cache holding up to maxEntries values of W(u).
func NewCache(maxEntries int) *Cache {
	return &Cache{lru: lru.New(maxEntries)}
}

// W returns W(u), using a cached value if available.
func (c *Cache) W(u float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.lru.Get(u); ok {
		return v.(float64)
	}
	v := W(u)
	c.lru.Add(u, v)
	return v
}

// Len returns the number of cached values.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// defaultCache is used by Drawdown. Perimeter boundaries evaluate the
// same (r, t) pairs for every cell at equal distance, so a modest cache
// is enough.
var defaultCache = NewCache(4096)

// Drawdown returns the Theis drawdown at distance r from a well pumping
// at rate Q (positive for extraction) after time t, in an aquifer with
// transmissivity T and storativity S:
//
//	s = Q/(4πT) · W(r²S / (4Tt))
//
// r and t must be positive.
func Drawdown(Q, T, S, r, t float64) (float64, error) {
	return drawdown(defaultCache, Q, T, S, r, t)
}

// Drawdown is like the package-level Drawdown but uses cache c.
func (c *Cache) Drawdown(Q, T, S, r, t float64) (float64, error) {
	return drawdown(c, Q, T, S, r, t)
}

func drawdown(c *Cache, Q, T, S, r, t float64) (float64, error) {
	if !(r > 0) {
		return math.NaN(), fmt.Errorf("theis: distance must be positive, got %g", r)
	}
	if !(t > 0) {
		return math.NaN(), fmt.Errorf("theis: time must be positive, got %g", t)
	}
	if !(T > 0) || !(S > 0) {
		return math.NaN(), fmt.Errorf("theis: transmissivity (%g) and storativity (%g) must be positive", T, S)
	}
	u := r * r * S / (4 * T * t)
	return Q / (4 * math.Pi * T) * c.W(u), nil
}
