/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package relation

import (
	"fmt"

	"diagramroute/internal/line"
	"diagramroute/internal/marker"
	"diagramroute/internal/shape"
	"diagramroute/internal/vector"
)

// Resolver looks up the current outline and bounds of an element.
type Resolver interface {
	Outline(id string) (line.Line, vector.Rect, bool)
}

// Endpoint is either an element reference or a free point.
type Endpoint struct {
	ID    string
	Point vector.Pt
}

func ElementEnd(id string) Endpoint { return Endpoint{ID: id} }
func PointEnd(p vector.Pt) Endpoint { return Endpoint{Point: p} }
func (e Endpoint) IsElement() bool  { return e.ID != "" }

type Style struct {
	Stroke shape.StrokeStyle
	Marker marker.Kind
}

// Relation is the routing input. Layouts holds one entry per leg, that is
// len(Points)+1; missing entries mean HorizontalVertical.
type Relation struct {
	ID      string
	Start   string
	End     Endpoint
	Points  []vector.Pt
	Layouts []line.SegmentLayout
	Style   Style
}

// Layout returns the layout of leg i.
func (r Relation) Layout(i int) line.SegmentLayout {
	if i >= 0 && i < len(r.Layouts) {
		return r.Layouts[i]
	}
	return line.HorizontalVertical
}

// Build routes r. It returns nil without error when an endpoint cannot be
// resolved.
func Build(res Resolver, r Relation) (*Path, error) {
	startLine, startBounds, ok := res.Outline(r.Start)
	if !ok {
		return nil, nil
	}
	var endLine line.Line
	var endBounds vector.Rect
	if r.End.IsElement() {
		if endLine, endBounds, ok = res.Outline(r.End.ID); !ok {
			return nil, nil
		}
	}

	var target vector.Pt
	switch {
	case len(r.Points) > 0:
		target = r.Points[0]
	case r.End.IsElement():
		target = balancedPoint(startBounds, endBounds)
	default:
		target = r.End.Point
	}
	sp, err := line.Default.ProjectPointOrthogonalWithPrecision(target, startLine, r.Layout(0))
	if err != nil {
		return nil, fmt.Errorf("relation %s: start anchor: %w", r.ID, err)
	}
	start := sp.Point

	var segs []Segment
	prev := start
	for i, p := range r.Points {
		segs = append(segs, CreateSegments(prev, p, r.Layout(i))...)
		prev = p
	}
	last := r.Layout(len(r.Points))
	end := r.End.Point
	if r.End.IsElement() {
		ep, err := line.Default.ProjectPointOrthogonalWithPrecision(prev, endLine, last.Invert())
		if err != nil {
			return nil, fmt.Errorf("relation %s: end anchor: %w", r.ID, err)
		}
		end = ep.Point
	}
	segs = append(segs, CreateSegments(prev, end, last)...)
	p := Simplify(Path{Start: start, End: end, Segments: segs})
	return &p, nil
}

// balancedPoint is the point projected onto the start element when the
// relation has no waypoints. It sits at the end element's center, except on
// an axis where both boxes overlap: there it takes the mean of both centers
// clamped to the overlap, so the anchors face each other instead of landing
// on a corner.
func balancedPoint(start, end vector.Rect) vector.Pt {
	cs, ce := start.Center(), end.Center()
	pt := ce
	if lo, hi, ok := vector.FindRangeOverlap(start.X, start.X+start.W, end.X, end.X+end.W); ok {
		pt.X = min(max((cs.X+ce.X)/2, lo), hi)
	}
	if lo, hi, ok := vector.FindRangeOverlap(start.Y, start.Y+start.H, end.Y, end.Y+end.H); ok {
		pt.Y = min(max((cs.Y+ce.Y)/2, lo), hi)
	}
	return pt
}
