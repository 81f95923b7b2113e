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

	"diagramroute/internal/line"
	"diagramroute/internal/relation"
	"diagramroute/internal/vector"
)

// RelationHandler drags one run of a routed relation perpendicular to its
// direction. Runs next to an anchor re-anchor on the element outline; runs
// further inside shift the coordinate they sit on.
type RelationHandler struct {
	relation  string
	path      relation.Path
	segment   int
	startLine line.Line
	endLine   line.Line
}

func NewRelationHandler(id string, path relation.Path, segment int, startLine, endLine line.Line) (*RelationHandler, error) {
	if segment < 0 || segment >= len(path.Segments) {
		return nil, fmt.Errorf("relation %s: segment %d out of range [0,%d)", id, segment, len(path.Segments))
	}
	return &RelationHandler{relation: id, path: path, segment: segment, startLine: startLine, endLine: endLine}, nil
}

func (h *RelationHandler) GenerateAction(dx, dy float64, committed bool, _ Modifiers) (LayoutUpdate, error) {
	segs := h.path.Segments
	n, k := len(segs), h.segment
	moved := segs[k]
	mv := vector.P(dx, 0)
	if moved.Axis == relation.AxisX {
		mv = vector.P(0, dy)
	}

	newStart := h.path.Start
	var startSegs, endSegs []relation.BaseSegment
	replacedStart, replacedEnd := 0, 0
	if k <= 1 {
		axis := moved.Axis
		if k == 1 {
			axis = axis.Opposite()
		}
		s, anchor, err := ProjectPointOnElement(vector.Add(relation.SegmentEnd(moved), mv), true, relation.AxisLayout(axis), h.startLine)
		if err != nil {
			return LayoutUpdate{}, fmt.Errorf("relation %s: start anchor: %w", h.relation, err)
		}
		startSegs, newStart, replacedStart = s, anchor, k+1
	}
	if k >= n-2 {
		axis := moved.Axis
		if k == n-2 {
			axis = axis.Opposite()
		}
		s, _, err := ProjectPointOnElement(vector.Add(moved.Start, mv), false, relation.AxisLayout(axis), h.endLine)
		if err != nil {
			return LayoutUpdate{}, fmt.Errorf("relation %s: end anchor: %w", h.relation, err)
		}
		endSegs, replacedEnd = s, n-k
	}

	chain := append([]relation.BaseSegment(nil), startSegs...)
	if replacedStart < n-replacedEnd {
		middle := relation.Bases(segs[replacedStart : n-replacedEnd])
		if replacedStart == 0 {
			// the run sits on the coordinate its predecessor ends at, which
			// is the last kept run when the end side was re-anchored
			prev := &middle[k-1]
			if moved.Axis == relation.AxisX {
				prev.Value += dy
			} else {
				prev.Value += dx
			}
		}
		chain = append(chain, middle...)
	}
	chain = append(chain, endSegs...)

	return LayoutUpdate{
		Committed:     committed,
		PartialLayout: map[string]ElementLayout{h.relation: LayoutFromPath(newStart, chain)},
	}, nil
}
