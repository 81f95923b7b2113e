/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package relation routes relations between diagram elements as chains of
// horizontal and vertical runs.
package relation

import (
	"diagramroute/internal/line"
	"diagramroute/internal/vector"
)

// Axis tells which coordinate a run changes. An AxisX run is horizontal and
// ends at x = Value; an AxisY run is vertical and ends at y = Value.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) Opposite() Axis {
	if a == AxisX {
		return AxisY
	}
	return AxisX
}

func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}
	return "y"
}

// BaseSegment is a run without its start point.
type BaseSegment struct {
	Axis  Axis
	Value float64
}

func X(v float64) BaseSegment { return BaseSegment{Axis: AxisX, Value: v} }
func Y(v float64) BaseSegment { return BaseSegment{Axis: AxisY, Value: v} }

// Segment is a run that knows where it starts.
type Segment struct {
	Axis  Axis
	Value float64
	Start vector.Pt
}

func (s Segment) Base() BaseSegment { return BaseSegment{Axis: s.Axis, Value: s.Value} }

// Path is a routed relation: anchors on both ends plus the runs between them.
type Path struct {
	Start    vector.Pt
	End      vector.Pt
	Segments []Segment
}

// SegmentEnd returns the point a run ends at.
func SegmentEnd(s Segment) vector.Pt {
	if s.Axis == AxisX {
		return vector.P(s.Value, s.Start.Y)
	}
	return vector.P(s.Start.X, s.Value)
}

// SegmentCenter returns the midpoint of a run.
func SegmentCenter(s Segment) vector.Pt {
	return vector.LinearInterpolate(s.Start, SegmentEnd(s), 0.5)
}

// AxisLayout maps the axis of a leaving run to the layout starting with it.
func AxisLayout(a Axis) line.SegmentLayout {
	if a == AxisX {
		return line.HorizontalVertical
	}
	return line.VerticalHorizontal
}

// CreateSegments connects from and to with two runs. HorizontalVertical
// leaves from horizontally.
func CreateSegments(from, to vector.Pt, layout line.SegmentLayout) []Segment {
	if layout == line.HorizontalVertical {
		return []Segment{
			{Axis: AxisX, Value: to.X, Start: from},
			{Axis: AxisY, Value: to.Y, Start: vector.P(to.X, from.Y)},
		}
	}
	return []Segment{
		{Axis: AxisY, Value: to.Y, Start: from},
		{Axis: AxisX, Value: to.X, Start: vector.P(from.X, to.Y)},
	}
}

// Chain attaches start points to runs beginning at start.
func Chain(start vector.Pt, segs []BaseSegment) []Segment {
	out := make([]Segment, len(segs))
	cur := start
	for i, s := range segs {
		out[i] = Segment{Axis: s.Axis, Value: s.Value, Start: cur}
		cur = SegmentEnd(out[i])
	}
	return out
}

// Bases strips the start points.
func Bases(segs []Segment) []BaseSegment {
	out := make([]BaseSegment, len(segs))
	for i, s := range segs {
		out[i] = s.Base()
	}
	return out
}

// Points returns start, every run end and nothing else; the last point is the
// end of the final run.
func (p Path) Points() []vector.Pt {
	out := make([]vector.Pt, 0, len(p.Segments)+1)
	out = append(out, p.Start)
	for _, s := range p.Segments {
		out = append(out, SegmentEnd(s))
	}
	return out
}

// Translate moves the whole path by d.
func (p Path) Translate(d vector.Pt) Path {
	out := Path{Start: vector.Add(p.Start, d), End: vector.Add(p.End, d), Segments: make([]Segment, len(p.Segments))}
	for i, s := range p.Segments {
		v := s.Value + d.X
		if s.Axis == AxisY {
			v = s.Value + d.Y
		}
		out.Segments[i] = Segment{Axis: s.Axis, Value: v, Start: vector.Add(s.Start, d)}
	}
	return out
}
