/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package line

import "diagramroute/internal/vector"

type lineSegmentEngine struct{}

func (lineSegmentEngine) ProjectPoint(p vector.Pt, seg Segment, start vector.Pt) NearestPoint {
	end := seg.EndPoint()
	d := vector.Sub(end, start)
	d2 := d.X*d.X + d.Y*d.Y
	if d2 == 0 {
		return NearestPoint{Distance: vector.Distance(start, p), Point: start}
	}
	rel := vector.Sub(p, start)
	t := (rel.X*d.X + rel.Y*d.Y) / d2
	var closest vector.Pt
	switch {
	case t <= 0:
		t, closest = 0, start
	case t >= 1:
		t, closest = 1, end
	default:
		closest = vector.Add(start, vector.Scale(d, t))
	}
	return NearestPoint{Position: t, Distance: vector.Distance(closest, p), Point: closest}
}

func (e lineSegmentEngine) ProjectPointOrthogonal(p vector.Pt, seg Segment, start vector.Pt) NearestPoint {
	end := seg.EndPoint()
	var vertical, horizontal *NearestPoint
	if vector.IsInRange(p.X, start.X, end.X) {
		var pos, y float64
		if dx := end.X - start.X; dx != 0 {
			pos = (p.X - start.X) / dx
			y = start.Y + pos*(end.Y-start.Y)
		} else {
			// the ray runs along the segment
			pos, y = alongAxis(p.Y, start.Y, end.Y)
		}
		hit := vector.P(p.X, y)
		vertical = &NearestPoint{Position: pos, Distance: vector.Distance(p, hit), Point: hit, Priority: true}
	}
	if vector.IsInRange(p.Y, start.Y, end.Y) {
		var pos, x float64
		if dy := end.Y - start.Y; dy != 0 {
			pos = (p.Y - start.Y) / dy
			x = start.X + pos*(end.X-start.X)
		} else {
			pos, x = alongAxis(p.X, start.X, end.X)
		}
		hit := vector.P(x, p.Y)
		horizontal = &NearestPoint{Position: pos, Distance: vector.Distance(p, hit), Point: hit, Priority: true}
	}
	if best := closer(vertical, horizontal); best != nil {
		return *best
	}
	return e.ProjectPoint(p, seg, start)
}

// alongAxis clamps v into [from,to] (either order) and returns the local
// position and the clamped coordinate.
func alongAxis(v, from, to float64) (float64, float64) {
	if from == to {
		return 0, from
	}
	pos := (v - from) / (to - from)
	pos = min(max(pos, 0), 1)
	return pos, from + pos*(to-from)
}

func (e lineSegmentEngine) GetPoint(pos, offset float64, seg Segment, start vector.Pt) vector.Pt {
	p := vector.LinearInterpolate(start, seg.EndPoint(), pos)
	if offset != 0 {
		p = vector.Add(p, vector.Scale(e.GetNormalVector(pos, seg, start), offset))
	}
	return p
}

func (lineSegmentEngine) GetNormalVector(_ float64, seg Segment, start vector.Pt) vector.Pt {
	d := vector.Sub(seg.EndPoint(), start)
	return vector.Normalize(vector.P(d.Y, -d.X))
}

func (lineSegmentEngine) PathString(seg Segment, _ vector.Pt) string {
	end := seg.EndPoint()
	return "L " + vector.FormatFloat(end.X) + " " + vector.FormatFloat(end.Y)
}
