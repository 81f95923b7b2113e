/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package relation

import "diagramroute/internal/vector"

func coord(p vector.Pt, a Axis) float64 {
	if a == AxisX {
		return p.X
	}
	return p.Y
}

func withCoord(p vector.Pt, a Axis, v float64) vector.Pt {
	if a == AxisX {
		p.X = v
	} else {
		p.Y = v
	}
	return p
}

// SimplifyPath returns the shortest alternating chain from start with the same
// overall course as segs. Consecutive runs on one axis are merged and runs
// that do not move are dropped, including merged runs that come back to
// where they began. segs is not modified.
func SimplifyPath(start vector.Pt, segs []BaseSegment) []BaseSegment {
	out := make([]BaseSegment, 0, len(segs))
	// origin[i] is the coordinate out[i] starts from on its axis
	origin := make([]float64, 0, len(segs))
	cur := start
	for _, s := range segs {
		if s.Value == coord(cur, s.Axis) {
			continue
		}
		n := len(out)
		switch {
		case n > 0 && out[n-1].Axis == s.Axis && origin[n-1] == s.Value:
			out, origin = out[:n-1], origin[:n-1]
		case n > 0 && out[n-1].Axis == s.Axis:
			out[n-1].Value = s.Value
		default:
			out = append(out, s)
			origin = append(origin, coord(cur, s.Axis))
		}
		cur = withCoord(cur, s.Axis, s.Value)
	}
	return out
}

// Simplify simplifies the runs of p and rebuilds their start points. The
// result always has at least one run; a path without movement gets a zero
// length run at its start.
func Simplify(p Path) Path {
	bases := SimplifyPath(p.Start, Bases(p.Segments))
	if len(bases) == 0 {
		bases = []BaseSegment{X(p.Start.X)}
	}
	return Path{Start: p.Start, End: p.End, Segments: Chain(p.Start, bases)}
}
