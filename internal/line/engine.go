/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package line

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"diagramroute/internal/grid"
	"diagramroute/internal/vector"
)

var (
	ErrEmptyLine      = errors.New("line must have at least one segment")
	ErrPrecision      = errors.New("failed to project point with precision")
	ErrUnknownSegment = errors.New("unknown segment kind")
)

// Epsilon is the distance to a segment join, in local position, within which
// normals of both incident segments are combined.
const Epsilon = 1e-5

// ProjectionResult locates a projected point on a whole line. Pos is global in
// [0,1], RelativePos is local to segment Segment.
type ProjectionResult struct {
	Pos         float64
	RelativePos float64
	Segment     int
	Point       vector.Pt
	Distance    float64
	Priority    bool
}

// Engine dispatches line queries to the segment engine registered for each
// segment kind. The registry is fixed at construction.
type Engine struct {
	engines map[Kind]SegmentEngine
}

// NewEngine returns an engine knowing line and arc segments.
func NewEngine() *Engine {
	return &Engine{engines: map[Kind]SegmentEngine{
		KindLine: lineSegmentEngine{},
		KindArc:  arcSegmentEngine{},
	}}
}

// Default is shared; engines are stateless.
var Default = NewEngine()

func (e *Engine) engineFor(s Segment) (SegmentEngine, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil segment", ErrUnknownSegment)
	}
	eng, ok := e.engines[s.Kind()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSegment, s.Kind())
	}
	return eng, nil
}

type projector func(eng SegmentEngine, p vector.Pt, seg Segment, start vector.Pt) NearestPoint

// ProjectPointOrthogonal finds the best point on l reachable by a horizontal or
// vertical ray from p. Priority hits beat fallbacks; ties go to the closer one.
func (e *Engine) ProjectPointOrthogonal(p vector.Pt, l Line) (ProjectionResult, error) {
	return e.project(p, l, SegmentEngine.ProjectPointOrthogonal)
}

// ProjectPoint finds the Euclidean nearest point on l. Results never have priority.
func (e *Engine) ProjectPoint(p vector.Pt, l Line) (ProjectionResult, error) {
	return e.project(p, l, SegmentEngine.ProjectPoint)
}

func (e *Engine) project(p vector.Pt, l Line, fn projector) (ProjectionResult, error) {
	n := len(l.Segments)
	if n == 0 {
		return ProjectionResult{}, ErrEmptyLine
	}
	best := ProjectionResult{Distance: math.Inf(1)}
	start := l.Start
	for i, seg := range l.Segments {
		eng, err := e.engineFor(seg)
		if err != nil {
			return ProjectionResult{}, err
		}
		c := fn(eng, p, seg, start)
		if (c.Distance < best.Distance && c.Priority == best.Priority) || (c.Priority && !best.Priority) {
			best = ProjectionResult{
				Pos:         (float64(i) + c.Position) / float64(n),
				RelativePos: c.Position,
				Segment:     i,
				Point:       c.Point,
				Distance:    c.Distance,
				Priority:    c.Priority,
			}
		}
		start = seg.EndPoint()
	}
	return best, nil
}

// ProjectPointOrthogonalWithPrecision snaps p to the grid and projects it. When
// the snapped point has no orthogonal hit, the coordinate chosen by layout is
// moved to the grid lines around the fallback point and both alternates are
// tried; the priority hit closest to the snapped point wins.
func (e *Engine) ProjectPointOrthogonalWithPrecision(p vector.Pt, l Line, layout SegmentLayout) (ProjectionResult, error) {
	snapped := grid.RoundPoint(p)
	direct, err := e.ProjectPointOrthogonal(snapped, l)
	if err != nil || direct.Priority {
		return direct, err
	}
	var alternates [2]vector.Pt
	if layout == HorizontalVertical {
		alternates = [2]vector.Pt{
			vector.P(snapped.X, grid.Floor(direct.Point.Y)),
			vector.P(snapped.X, grid.Ceil(direct.Point.Y)),
		}
	} else {
		alternates = [2]vector.Pt{
			vector.P(grid.Floor(direct.Point.X), snapped.Y),
			vector.P(grid.Ceil(direct.Point.X), snapped.Y),
		}
	}
	var best ProjectionResult
	found := false
	for _, alt := range alternates {
		r, err := e.ProjectPointOrthogonal(alt, l)
		if err != nil {
			return ProjectionResult{}, err
		}
		if !r.Priority {
			continue
		}
		if !found || vector.Distance(r.Point, snapped) < vector.Distance(best.Point, snapped) {
			best, found = r, true
		}
	}
	if !found {
		return ProjectionResult{}, fmt.Errorf("%w: point (%v, %v) as %s", ErrPrecision, snapped.X, snapped.Y, layout)
	}
	return best, nil
}

func segmentIndex(pos float64, n int) int {
	i := int(math.Floor(pos * float64(n)))
	return min(max(i, 0), n-1)
}

// GetPoint returns the point at global position pos, moved offset along the
// local normal. An empty line yields its start.
func (e *Engine) GetPoint(pos, offset float64, l Line) (vector.Pt, error) {
	n := len(l.Segments)
	if n == 0 {
		return l.Start, nil
	}
	i := segmentIndex(pos, n)
	seg := l.Segments[i]
	eng, err := e.engineFor(seg)
	if err != nil {
		return vector.Pt{}, err
	}
	return eng.GetPoint(pos*float64(n)-float64(i), offset, seg, l.SegmentStart(i)), nil
}

// GetNormal returns the normal at global position pos. At a segment join the
// normals of both segments are added, wrapping around on closed lines.
func (e *Engine) GetNormal(pos float64, l Line) (vector.Pt, error) {
	n := len(l.Segments)
	if n == 0 {
		return vector.Pt{}, ErrEmptyLine
	}
	i := segmentIndex(pos, n)
	rel := pos*float64(n) - float64(i)
	current, err := e.normalAt(i, rel, l)
	if err != nil {
		return vector.Pt{}, err
	}
	var other vector.Pt
	switch {
	case rel < Epsilon && (i > 0 || l.IsClosed()):
		other, err = e.normalAt(i-1, 1, l)
	case rel > 1-Epsilon && (i < n-1 || l.IsClosed()):
		other, err = e.normalAt(i+1, 0, l)
	default:
		return current, nil
	}
	if err != nil {
		return vector.Pt{}, err
	}
	return vector.Add(other, current), nil
}

func (e *Engine) normalAt(i int, rel float64, l Line) (vector.Pt, error) {
	n := len(l.Segments)
	i = (i + n) % n
	seg := l.Segments[i]
	eng, err := e.engineFor(seg)
	if err != nil {
		return vector.Pt{}, err
	}
	return eng.GetNormalVector(rel, seg, l.SegmentStart(i)), nil
}

// PathString renders l as SVG path data, always closed with Z.
func (e *Engine) PathString(l Line) (string, error) {
	var b strings.Builder
	b.WriteString("M " + vector.FormatFloat(l.Start.X) + " " + vector.FormatFloat(l.Start.Y))
	start := l.Start
	for _, seg := range l.Segments {
		eng, err := e.engineFor(seg)
		if err != nil {
			return "", err
		}
		b.WriteString(" ")
		b.WriteString(eng.PathString(seg, start))
		start = seg.EndPoint()
	}
	b.WriteString(" Z")
	return b.String(), nil
}

// Flatten samples l into a polyline. Straight segments contribute their end
// point, other kinds are sampled at steps points each.
func (e *Engine) Flatten(l Line, steps int) ([]vector.Pt, error) {
	steps = max(steps, 1)
	pts := []vector.Pt{l.Start}
	start := l.Start
	for _, seg := range l.Segments {
		eng, err := e.engineFor(seg)
		if err != nil {
			return nil, err
		}
		if seg.Kind() == KindLine {
			pts = append(pts, seg.EndPoint())
		} else {
			for k := 1; k <= steps; k++ {
				pts = append(pts, eng.GetPoint(float64(k)/float64(steps), 0, seg, start))
			}
		}
		start = seg.EndPoint()
	}
	return pts, nil
}
