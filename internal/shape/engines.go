/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"math"

	"diagramroute/internal/line"
	"diagramroute/internal/vector"
)

type ellipseEngine struct{}

// ellipseOutline is four clockwise quarter arcs starting at the rightmost point.
func ellipseOutline(c vector.Pt, rx, ry float64) line.Line {
	arc := func(end vector.Pt) line.Segment {
		return line.ArcSegment{End: end, Center: c, RX: rx, RY: ry, Clockwise: true}
	}
	return line.Line{Start: vector.P(c.X+rx, c.Y), Segments: []line.Segment{
		arc(vector.P(c.X, c.Y+ry)),
		arc(vector.P(c.X-rx, c.Y)),
		arc(vector.P(c.X, c.Y-ry)),
		arc(vector.P(c.X+rx, c.Y)),
	}}
}

func (ellipseEngine) GenerateForBounds(b vector.Rect, st Style) Shape {
	half := st.Stroke.EffectiveWidth() / 2
	return Shape{Bounds: b, Kind: Ellipse, Outline: ellipseOutline(b.Center(), b.W/2-half, b.H/2-half)}
}

// The ellipse through the corners of b with the aspect ratio of b has radii
// scaled by sqrt(2).
func (ellipseEngine) GenerateForInnerBounds(b vector.Rect, st Style) Shape {
	sw := st.Stroke.EffectiveWidth()
	rx := b.W/2*math.Sqrt2 + DefaultMargin + sw/2
	ry := b.H/2*math.Sqrt2 + DefaultMargin + sw/2
	c := b.Center()
	return Shape{
		Bounds:  vector.CenteredRect(c, 2*rx+sw, 2*ry+sw),
		Kind:    Ellipse,
		Outline: ellipseOutline(c, rx, ry),
	}
}

type circleEngine struct{}

func (circleEngine) GenerateForBounds(b vector.Rect, st Style) Shape {
	r := min(b.W, b.H)/2 - st.Stroke.EffectiveWidth()/2
	return Shape{Bounds: b, Kind: Circle, Outline: ellipseOutline(b.Center(), r, r)}
}

func (circleEngine) GenerateForInnerBounds(b vector.Rect, st Style) Shape {
	sw := st.Stroke.EffectiveWidth()
	r := math.Hypot(b.W, b.H)/2 + sw/2 + DefaultMargin
	outer := r + sw/2
	c := b.Center()
	return Shape{
		Bounds:  vector.CenteredRect(c, 2*outer, 2*outer),
		Kind:    Circle,
		Outline: ellipseOutline(c, r, r),
	}
}

type rectEngine struct{}

func rectOutline(r vector.Rect) line.Line {
	lo, hi := r.Min(), r.Max()
	return polygon(lo, vector.P(hi.X, lo.Y), hi, vector.P(lo.X, hi.Y))
}

func (rectEngine) GenerateForBounds(b vector.Rect, st Style) Shape {
	half := st.Stroke.EffectiveWidth() / 2
	return Shape{Bounds: b, Kind: Rect, Outline: rectOutline(b.Inset(half, half))}
}

func (rectEngine) GenerateForInnerBounds(b vector.Rect, st Style) Shape {
	sw := st.Stroke.EffectiveWidth()
	pad := DefaultMargin + sw/2
	return Shape{
		Bounds:  b.Inset(-(pad + sw/2), -(pad + sw/2)),
		Kind:    Rect,
		Outline: rectOutline(b.Inset(-pad, -pad)),
	}
}

type rhombusEngine struct{}

func rhombusOutline(c vector.Pt, a, h float64) line.Line {
	return polygon(
		vector.P(c.X, c.Y-h),
		vector.P(c.X+a, c.Y),
		vector.P(c.X, c.Y+h),
		vector.P(c.X-a, c.Y),
	)
}

func (rhombusEngine) GenerateForBounds(b vector.Rect, st Style) Shape {
	half := st.Stroke.EffectiveWidth() / 2
	return Shape{Bounds: b, Kind: Rhombus, Outline: rhombusOutline(b.Center(), b.W/2-half, b.H/2-half)}
}

// A rhombus with half diagonals equal to the full width and height of a box
// touches the box corners.
func (rhombusEngine) GenerateForInnerBounds(b vector.Rect, st Style) Shape {
	sw := st.Stroke.EffectiveWidth()
	a := b.W + 2*DefaultMargin + sw/2
	h := b.H + 2*DefaultMargin + sw/2
	c := b.Center()
	return Shape{
		Bounds:  vector.CenteredRect(c, 2*a+sw, 2*h+sw),
		Kind:    Rhombus,
		Outline: rhombusOutline(c, a, h),
	}
}

type hexagonEngine struct{}

// hexagonOutline has flat top and bottom edges; the side tips stick out by
// tip from the top edge ends.
func hexagonOutline(r vector.Rect, tip float64) line.Line {
	lo, hi := r.Min(), r.Max()
	cy := r.Center().Y
	return polygon(
		vector.P(lo.X+tip, lo.Y),
		vector.P(hi.X-tip, lo.Y),
		vector.P(hi.X, cy),
		vector.P(hi.X-tip, hi.Y),
		vector.P(lo.X+tip, hi.Y),
		vector.P(lo.X, cy),
	)
}

func (hexagonEngine) GenerateForBounds(b vector.Rect, st Style) Shape {
	half := st.Stroke.EffectiveWidth() / 2
	in := b.Inset(half, half)
	return Shape{Bounds: b, Kind: Hexagon, Outline: hexagonOutline(in, in.W/4)}
}

func (hexagonEngine) GenerateForInnerBounds(b vector.Rect, st Style) Shape {
	sw := st.Stroke.EffectiveWidth()
	box := b.Inset(-(DefaultMargin + sw/2), -(DefaultMargin + sw/2))
	tip := box.H / 2
	outline := box.Inset(-tip, 0)
	return Shape{
		Bounds:  outline.Inset(-sw/2, -sw/2),
		Kind:    Hexagon,
		Outline: hexagonOutline(outline, tip),
	}
}
