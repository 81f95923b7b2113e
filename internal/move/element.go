/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package move

import (
	"fmt"
	"math"

	"diagramroute/internal/line"
	"diagramroute/internal/relation"
	"diagramroute/internal/vector"
)

// AttachedRelation is a relation with exactly one end on a moved element:
// the outline of that element and the path, both as they were when the drag
// started.
type AttachedRelation struct {
	Outline line.Line
	Path    relation.Path
}

// ElementHandler moves components and interfaces and keeps the relations
// attached to them routed.
type ElementHandler struct {
	positions  map[string]vector.Pt
	fully      map[string][]vector.Pt
	startMoved map[string]AttachedRelation
	endMoved   map[string]AttachedRelation
}

// NewElementHandler captures the drag origin state. positions holds the layout
// position of every moved element, fully the waypoints of relations with both
// ends moved, startMoved and endMoved the relations with only one moved end.
func NewElementHandler(positions map[string]vector.Pt, fully map[string][]vector.Pt, startMoved, endMoved map[string]AttachedRelation) *ElementHandler {
	return &ElementHandler{positions: positions, fully: fully, startMoved: startMoved, endMoved: endMoved}
}

// LockAxis keeps only the dominant component of (dx, dy). On a tie x is
// dropped.
func LockAxis(dx, dy float64) (float64, float64) {
	if math.Abs(dx) > math.Abs(dy) {
		return dx, 0
	}
	return 0, dy
}

func (h *ElementHandler) GenerateAction(dx, dy float64, committed bool, mods Modifiers) (LayoutUpdate, error) {
	if mods.Shift {
		dx, dy = LockAxis(dx, dy)
	}
	d := vector.P(dx, dy)
	out := LayoutUpdate{Committed: committed, PartialLayout: make(map[string]ElementLayout, len(h.positions))}
	for id, p := range h.positions {
		pos := vector.Add(p, d)
		out.PartialLayout[id] = ElementLayout{Pos: &pos}
	}
	for id, pts := range h.fully {
		if len(pts) == 0 {
			continue
		}
		moved := make([]vector.Pt, len(pts))
		for i, p := range pts {
			moved[i] = vector.Add(p, d)
		}
		out.PartialLayout[id] = ElementLayout{Points: moved}
	}
	for id, r := range h.startMoved {
		l, err := reanchorStart(r, d)
		if err != nil {
			return LayoutUpdate{}, fmt.Errorf("relation %s: %w", id, err)
		}
		out.PartialLayout[id] = l
	}
	for id, r := range h.endMoved {
		l, err := reanchorEnd(r, d)
		if err != nil {
			return LayoutUpdate{}, fmt.Errorf("relation %s: %w", id, err)
		}
		out.PartialLayout[id] = l
	}
	return out, nil
}

func coord(p vector.Pt, a relation.Axis) float64 {
	if a == relation.AxisX {
		return p.X
	}
	return p.Y
}

// reanchorStart keeps every run after the first and re-derives the start
// anchor for the first corner on the moved outline. When the translated old
// anchor still lines up with that corner and leaves in the same direction as
// before, it is kept. That is only the case for a drag parallel to the first
// run; any perpendicular component re-projects the corner.
func reanchorStart(r AttachedRelation, d vector.Pt) (ElementLayout, error) {
	segs := r.Path.Segments
	first := segs[0]
	corner := relation.SegmentEnd(first)
	far := relation.Bases(segs[1:])

	anchor := vector.Add(r.Path.Start, d)
	other := first.Axis.Opposite()
	dir := vector.Sign(first.Value - coord(r.Path.Start, first.Axis))
	if dir != 0 && coord(anchor, other) == coord(corner, other) && vector.Sign(first.Value-coord(anchor, first.Axis)) == dir {
		return LayoutFromPath(anchor, append([]relation.BaseSegment{first.Base()}, far...)), nil
	}
	head, start, err := ProjectPointOnElement(corner, true, relation.AxisLayout(first.Axis), r.Outline.Translate(d))
	if err != nil {
		return ElementLayout{}, err
	}
	return LayoutFromPath(start, append(head, far...)), nil
}

// reanchorEnd mirrors reanchorStart for the last run: the anchor is kept only
// for a drag parallel to it.
func reanchorEnd(r AttachedRelation, d vector.Pt) (ElementLayout, error) {
	segs := r.Path.Segments
	last := segs[len(segs)-1]
	corner := last.Start
	near := relation.Bases(segs[:len(segs)-1])

	anchor := vector.Add(r.Path.End, d)
	other := last.Axis.Opposite()
	dir := vector.Sign(coord(r.Path.End, last.Axis) - coord(corner, last.Axis))
	if dir != 0 && coord(anchor, other) == coord(corner, other) && vector.Sign(coord(anchor, last.Axis)-coord(corner, last.Axis)) == dir {
		tail := relation.BaseSegment{Axis: last.Axis, Value: coord(anchor, last.Axis)}
		return LayoutFromPath(r.Path.Start, append(near, tail)), nil
	}
	tail, _, err := ProjectPointOnElement(corner, false, relation.AxisLayout(last.Axis), r.Outline.Translate(d))
	if err != nil {
		return ElementLayout{}, err
	}
	return LayoutFromPath(r.Path.Start, append(near, tail...)), nil
}
