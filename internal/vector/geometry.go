/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package vector holds the 2D value types and pure vector math shared by the
// geometry engines. Coordinates are float64 diagram units.
package vector

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Pt is a 2D point or displacement vector.
type Pt = r2.Vec

// P is shorthand for Pt{X: x, Y: y}.
func P(x, y float64) Pt { return Pt{X: x, Y: y} }

func Add(a, b Pt) Pt           { return r2.Add(a, b) }
func Sub(a, b Pt) Pt           { return r2.Sub(a, b) }
func Scale(p Pt, k float64) Pt { return r2.Scale(k, p) }
func Negate(p Pt) Pt           { return Pt{X: -p.X, Y: -p.Y} }
func Length(v Pt) float64      { return r2.Norm(v) }
func Distance(a, b Pt) float64 { return r2.Norm(r2.Sub(a, b)) }

// Normalize returns the unit vector of v. The zero vector stays zero.
func Normalize(v Pt) Pt {
	if v.X == 0 && v.Y == 0 {
		return Pt{}
	}
	return r2.Unit(v)
}

// ScaleTo rescales v to the given length. Callers must guard zero vectors,
// which come back as the zero vector.
func ScaleTo(v Pt, length float64) Pt { return Scale(Normalize(v), length) }

// Angle is the signed angle of v against the positive x axis, in radians.
func Angle(v Pt) float64 { return math.Atan2(v.Y, v.X) }

// LinearInterpolate returns a + (b-a)*t.
func LinearInterpolate(a, b Pt, t float64) Pt {
	return Pt{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// IsInRange reports whether v lies between a and b (inclusive), in either order.
func IsInRange(v, a, b float64) bool {
	lo, hi := ordered(a, b)
	return v >= lo && v <= hi
}

// FindRangeOverlap intersects the ranges [a0,a1] and [b0,b1]; bounds may be given in any order.
func FindRangeOverlap(a0, a1, b0, b1 float64) (lo, hi float64, ok bool) {
	aLo, aHi := ordered(a0, a1)
	bLo, bHi := ordered(b0, b1)
	lo, hi = max(aLo, bLo), min(aHi, bHi)
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func ordered(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// CenteredRect builds a w×h rectangle around c.
func CenteredRect(c Pt, w, h float64) Rect { return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h} }

func (r Rect) Min() Pt    { return Pt{X: r.X, Y: r.Y} }
func (r Rect) Max() Pt    { return Pt{X: r.X + r.W, Y: r.Y + r.H} }
func (r Rect) Center() Pt { return r.Box().Center() }
func (r Rect) Box() r2.Box {
	return r2.NewBox(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.X+r.W, o.X+o.W)
	maxY := max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func (r Rect) Translate(d Pt) Rect { return Rect{X: r.X + d.X, Y: r.Y + d.Y, W: r.W, H: r.H} }
