/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"log/slog"
	"math"

	"diagramroute/internal/line"
	"diagramroute/internal/move"
	"diagramroute/internal/relation"
	"diagramroute/internal/shape"
	"diagramroute/internal/vector"
)

// HitTolerance is how far from a relation run a point still hits it.
const HitTolerance = 4.0

type shapeEntry struct {
	key   int64
	shape shape.Shape
}

type pathEntry struct {
	key  int64
	path *relation.Path
	err  error
}

// shapeKey is the latest revision the shape of id depends on.
func (s *Scene) shapeKey(id string) int64 {
	k := s.versions[id]
	if i, ok := s.interfaces[id]; ok {
		k = max(k, s.versions[i.Parent])
	}
	return k
}

// Shape returns the memoized shape of a component or interface.
func (s *Scene) Shape(id string) (shape.Shape, bool) {
	key := s.shapeKey(id)
	if e, ok := s.shapes[id]; ok && e.key == key {
		return e.shape, true
	}
	var (
		sh  shape.Shape
		err error
	)
	switch {
	case s.components[id] != nil:
		c := s.components[id]
		sh, err = shape.Default.GenerateForInnerBounds(c.Style.Shape, s.LabelBox(*c), c.Style)
	case s.interfaces[id] != nil:
		i := s.interfaces[id]
		b := vector.CenteredRect(s.InterfacePos(*i), InterfaceSize, InterfaceSize)
		sh, err = shape.Default.GenerateForBounds(i.Style.Shape, b, i.Style)
	default:
		return shape.Shape{}, false
	}
	if err != nil {
		s.log.Warn("shape", slog.String("id", id), slog.Any("err", err))
		return shape.Shape{}, false
	}
	s.shapes[id] = shapeEntry{key: key, shape: sh}
	return sh, true
}

// Outline resolves the outline and bounds of a component or interface.
func (s *Scene) Outline(id string) (line.Line, vector.Rect, bool) {
	sh, ok := s.Shape(id)
	return sh.Outline, sh.Bounds, ok
}

// RelationPath returns the memoized route of a relation, or nil when the
// relation or one of its ends does not resolve.
func (s *Scene) RelationPath(id string) (*relation.Path, error) {
	r, ok := s.relations[id]
	if !ok {
		return nil, nil
	}
	key := max(s.versions[id], s.shapeKey(r.Start))
	if r.End.IsElement() {
		key = max(key, s.shapeKey(r.End.ID))
	}
	if e, ok := s.paths[id]; ok && e.key == key {
		return e.path, e.err
	}
	p, err := relation.Build(s, *r)
	if err != nil {
		s.log.Warn("route", slog.String("relation", id), slog.Any("err", err))
	}
	s.paths[id] = pathEntry{key: key, path: p, err: err}
	return p, err
}

// RelationView renders a relation. ok is false when it is not routed.
func (s *Scene) RelationView(id string) (v relation.View, ok bool, err error) {
	p, err := s.RelationPath(id)
	if err != nil || p == nil {
		return relation.View{}, false, err
	}
	v, err = relation.Render(p, s.relations[id].Style, s.IsSelected(id))
	if err != nil {
		return relation.View{}, false, err
	}
	return v, true, nil
}

// HitTest finds the top-most element at p. Relation runs win over shapes,
// interfaces over components and later elements over earlier ones.
func (s *Scene) HitTest(p vector.Pt) (move.Target, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		id := s.order[i]
		if _, ok := s.relations[id]; !ok {
			continue
		}
		path, err := s.RelationPath(id)
		if err != nil || path == nil {
			continue
		}
		for k, seg := range path.Segments {
			if runDistance(p, seg) <= HitTolerance {
				return move.Target{ID: id, Relation: true, Segment: k, Movable: true}, true
			}
		}
	}
	for _, pick := range []func(string) bool{
		func(id string) bool { return s.interfaces[id] != nil },
		func(id string) bool { return s.components[id] != nil },
	} {
		for i := len(s.order) - 1; i >= 0; i-- {
			id := s.order[i]
			if !pick(id) {
				continue
			}
			if sh, ok := s.Shape(id); ok && contains(sh.Outline, p) {
				return move.Target{ID: id, Segment: -1, Movable: true}, true
			}
		}
	}
	return move.Target{}, false
}

// runDistance is the distance from p to an axis aligned run.
func runDistance(p vector.Pt, seg relation.Segment) float64 {
	a, b := seg.Start, relation.SegmentEnd(seg)
	q := vector.P(
		min(max(p.X, math.Min(a.X, b.X)), math.Max(a.X, b.X)),
		min(max(p.Y, math.Min(a.Y, b.Y)), math.Max(a.Y, b.Y)),
	)
	return vector.Distance(p, q)
}

// contains tests p against the flattened outline with the even-odd rule.
func contains(l line.Line, p vector.Pt) bool {
	pts, err := line.Default.Flatten(l, 16)
	if err != nil || len(pts) < 3 {
		return false
	}
	in := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}
