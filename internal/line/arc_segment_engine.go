/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package line

import (
	"math"

	"diagramroute/internal/vector"
)

// angleEpsilon absorbs rounding when testing whether an angle lies on an arc.
const angleEpsilon = 1e-9

// arcSegmentEngine works in the unit-circle space of the arc's ellipse: the
// parametric angle theta maps to Center + (RX cos theta, RY sin theta).
type arcSegmentEngine struct{}

type arcGeom struct {
	seg   ArcSegment
	start vector.Pt
	from  float64
	sweep float64 // signed, positive when clockwise on screen
}

func newArcGeom(seg Segment, start vector.Pt) arcGeom {
	a := seg.(ArcSegment)
	g := arcGeom{seg: a, start: start}
	g.from = g.angleOf(start)
	sweep := g.angleOf(a.End) - g.from
	if a.Clockwise {
		if sweep <= 0 {
			sweep += 2 * math.Pi
		}
	} else if sweep >= 0 {
		sweep -= 2 * math.Pi
	}
	g.sweep = sweep
	return g
}

func (g arcGeom) angleOf(p vector.Pt) float64 {
	return math.Atan2((p.Y-g.seg.Center.Y)/g.seg.RY, (p.X-g.seg.Center.X)/g.seg.RX)
}

func (g arcGeom) at(theta float64) vector.Pt {
	return vector.P(g.seg.Center.X+g.seg.RX*math.Cos(theta), g.seg.Center.Y+g.seg.RY*math.Sin(theta))
}

// position maps theta to the local arc position and reports whether the angle
// is covered by the arc.
func (g arcGeom) position(theta float64) (float64, bool) {
	var rel float64
	if g.sweep > 0 {
		rel = wrapAngle(theta - g.from)
	} else {
		rel = wrapAngle(g.from - theta)
	}
	span := math.Abs(g.sweep)
	switch {
	case rel <= span+angleEpsilon:
		return min(rel/span, 1), true
	case 2*math.Pi-rel <= angleEpsilon:
		return 0, true
	default:
		return rel / span, false
	}
}

func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

func (arcSegmentEngine) ProjectPoint(p vector.Pt, seg Segment, start vector.Pt) NearestPoint {
	g := newArcGeom(seg, start)
	theta := g.from
	if p != g.seg.Center {
		theta = g.angleOf(p)
	}
	if pos, ok := g.position(theta); ok {
		hit := g.at(theta)
		return NearestPoint{Position: pos, Distance: vector.Distance(p, hit), Point: hit}
	}
	ds, de := vector.Distance(p, start), vector.Distance(p, g.seg.End)
	if ds <= de {
		return NearestPoint{Position: 0, Distance: ds, Point: start}
	}
	return NearestPoint{Position: 1, Distance: de, Point: g.seg.End}
}

func (e arcSegmentEngine) ProjectPointOrthogonal(p vector.Pt, seg Segment, start vector.Pt) NearestPoint {
	g := newArcGeom(seg, start)
	c := g.seg.Center
	var vertical, horizontal *NearestPoint
	consider := func(best **NearestPoint, theta float64, hit vector.Pt) {
		pos, ok := g.position(theta)
		if !ok {
			return
		}
		cand := NearestPoint{Position: pos, Distance: vector.Distance(p, hit), Point: hit, Priority: true}
		if *best == nil || cand.Distance < (*best).Distance {
			*best = &cand
		}
	}
	if u := (p.X - c.X) / g.seg.RX; u >= -1 && u <= 1 {
		a := math.Acos(u)
		for _, theta := range []float64{a, -a} {
			consider(&vertical, theta, vector.P(p.X, c.Y+g.seg.RY*math.Sin(theta)))
		}
	}
	if v := (p.Y - c.Y) / g.seg.RY; v >= -1 && v <= 1 {
		a := math.Asin(v)
		for _, theta := range []float64{a, math.Pi - a} {
			consider(&horizontal, theta, vector.P(c.X+g.seg.RX*math.Cos(theta), p.Y))
		}
	}
	if best := closer(vertical, horizontal); best != nil {
		return *best
	}
	return e.ProjectPoint(p, seg, start)
}

func (e arcSegmentEngine) GetPoint(pos, offset float64, seg Segment, start vector.Pt) vector.Pt {
	g := newArcGeom(seg, start)
	var p vector.Pt
	switch pos {
	case 0:
		p = start
	case 1:
		p = g.seg.End
	default:
		p = g.at(g.from + pos*g.sweep)
	}
	if offset != 0 {
		p = vector.Add(p, vector.Scale(e.GetNormalVector(pos, seg, start), offset))
	}
	return p
}

func (arcSegmentEngine) GetNormalVector(pos float64, seg Segment, start vector.Pt) vector.Pt {
	g := newArcGeom(seg, start)
	theta := g.from + pos*g.sweep
	dir := vector.Sign(g.sweep)
	tangent := vector.P(-g.seg.RX*math.Sin(theta)*dir, g.seg.RY*math.Cos(theta)*dir)
	return vector.Normalize(vector.P(tangent.Y, -tangent.X))
}

func (arcSegmentEngine) PathString(seg Segment, start vector.Pt) string {
	g := newArcGeom(seg, start)
	large, sweep := "0", "0"
	if math.Abs(g.sweep) > math.Pi {
		large = "1"
	}
	if g.sweep > 0 {
		sweep = "1"
	}
	return "A " + vector.FormatFloat(g.seg.RX) + " " + vector.FormatFloat(g.seg.RY) + " 0 " + large + " " + sweep + " " +
		vector.FormatFloat(g.seg.End.X) + " " + vector.FormatFloat(g.seg.End.Y)
}
