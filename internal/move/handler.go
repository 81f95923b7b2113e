/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package move turns pointer drags into layout updates. A Listener tracks one
// gesture at a time and feeds the accumulated, grid snapped offset into a
// Handler, which derives new element positions and relation waypoints from
// the state captured when the drag started.
package move

import (
	"diagramroute/internal/grid"
	"diagramroute/internal/line"
	"diagramroute/internal/relation"
	"diagramroute/internal/vector"
)

// Modifiers is the keyboard state during a drag.
type Modifiers struct {
	Shift bool
}

// ElementLayout patches one element. Nil fields are left untouched.
type ElementLayout struct {
	Pos     *vector.Pt
	Points  []vector.Pt
	Layouts []line.SegmentLayout
}

// LayoutUpdate is a sparse patch keyed by element id.
type LayoutUpdate struct {
	Committed     bool
	PartialLayout map[string]ElementLayout
}

// Handler computes the layout for a total drag offset. Every call starts from
// the state captured at gesture start, so frames may be skipped.
type Handler interface {
	GenerateAction(dx, dy float64, committed bool, mods Modifiers) (LayoutUpdate, error)
}

// ProjectPointOnElement snaps point to the grid, projects it onto outline and
// returns the runs joining the anchor and the snapped point. For a start anchor
// the runs lead from the anchor to the point, otherwise from the point to the
// anchor.
func ProjectPointOnElement(point vector.Pt, start bool, layout line.SegmentLayout, outline line.Line) ([]relation.BaseSegment, vector.Pt, error) {
	rounded := grid.RoundPoint(point)
	r, err := line.Default.ProjectPointOrthogonalWithPrecision(rounded, outline, layout)
	if err != nil {
		return nil, vector.Pt{}, err
	}
	anchor := r.Point
	var segs []relation.BaseSegment
	switch {
	case anchor.X == rounded.X:
		if start {
			segs = []relation.BaseSegment{relation.Y(rounded.Y)}
		} else {
			segs = []relation.BaseSegment{relation.Y(anchor.Y)}
		}
	case anchor.Y == rounded.Y:
		if start {
			segs = []relation.BaseSegment{relation.X(rounded.X)}
		} else {
			segs = []relation.BaseSegment{relation.X(anchor.X)}
		}
	case start:
		if layout == line.HorizontalVertical {
			segs = []relation.BaseSegment{relation.X(rounded.X), relation.Y(rounded.Y)}
		} else {
			segs = []relation.BaseSegment{relation.Y(rounded.Y), relation.X(rounded.X)}
		}
	default:
		if layout == line.VerticalHorizontal {
			segs = []relation.BaseSegment{relation.X(anchor.X), relation.Y(anchor.Y)}
		} else {
			segs = []relation.BaseSegment{relation.Y(anchor.Y), relation.X(anchor.X)}
		}
	}
	return segs, anchor, nil
}

// LayoutFromPath converts a run chain into relation waypoints: the corners of
// the simplified chain, or its midpoint when it is a single run. All legs get
// HorizontalVertical, which reproduces the chain since consecutive corners
// differ in one coordinate.
func LayoutFromPath(start vector.Pt, segs []relation.BaseSegment) ElementLayout {
	simplified := relation.SimplifyPath(start, segs)
	var points []vector.Pt
	if len(simplified) > 1 {
		for _, s := range relation.Chain(start, simplified[:len(simplified)-1]) {
			points = append(points, relation.SegmentEnd(s))
		}
	} else {
		mid := start
		if len(simplified) == 1 {
			mid = relation.SegmentCenter(relation.Chain(start, simplified)[0])
		}
		points = []vector.Pt{mid}
	}
	layouts := make([]line.SegmentLayout, len(points)+1)
	return ElementLayout{Points: points, Layouts: layouts}
}
