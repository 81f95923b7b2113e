/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package relation

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"diagramroute/internal/line"
	"diagramroute/internal/marker"
	"diagramroute/internal/shape"
	"diagramroute/internal/vector"
)

type fakeResolver map[string]shape.Shape

func (f fakeResolver) Outline(id string) (line.Line, vector.Rect, bool) {
	s, ok := f[id]
	return s.Outline, s.Bounds, ok
}

func mustShape(t *testing.T, k shape.Kind, b vector.Rect) shape.Shape {
	t.Helper()
	s, err := shape.Default.GenerateForBounds(k, b, shape.Style{Stroke: shape.StrokeStyle{Width: 2}})
	if err != nil {
		t.Fatalf("shape %s: %v", k, err)
	}
	return s
}

// rectAndCircle places a 100x60 rectangle around the origin and a circle of
// diameter 40 around (150,0), both moved by d.
func rectAndCircle(t *testing.T, d vector.Pt) fakeResolver {
	return fakeResolver{
		"a": mustShape(t, shape.Rect, vector.R(-50, -30, 100, 60).Translate(d)),
		"b": mustShape(t, shape.Circle, vector.R(130, -20, 40, 40).Translate(d)),
	}
}

func TestCreateSegments(t *testing.T) {
	from, to := vector.P(0, 0), vector.P(30, 40)
	hv := CreateSegments(from, to, line.HorizontalVertical)
	if hv[0] != (Segment{Axis: AxisX, Value: 30, Start: from}) || hv[1] != (Segment{Axis: AxisY, Value: 40, Start: vector.P(30, 0)}) {
		t.Fatalf("HV: got %+v", hv)
	}
	vh := CreateSegments(from, to, line.VerticalHorizontal)
	if vh[0] != (Segment{Axis: AxisY, Value: 40, Start: from}) || vh[1] != (Segment{Axis: AxisX, Value: 30, Start: vector.P(0, 40)}) {
		t.Fatalf("VH: got %+v", vh)
	}
	if SegmentEnd(vh[1]) != to || SegmentEnd(hv[1]) != to {
		t.Fatalf("legs do not reach the target")
	}
	if SegmentCenter(hv[0]) != vector.P(15, 0) {
		t.Fatalf("center: got %v", SegmentCenter(hv[0]))
	}
}

func TestSimplifyPathMergesAndDrops(t *testing.T) {
	start := vector.P(0, 0)
	in := []BaseSegment{X(0), X(10), X(20), Y(5), Y(5), Y(15), X(20), X(40)}
	got := SimplifyPath(start, in)
	want := []BaseSegment{X(20), Y(15), X(40)}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if in[1] != X(10) {
		t.Fatalf("input was modified: %v", in)
	}
}

func TestSimplifyPathDropsRunsThatReturn(t *testing.T) {
	got := SimplifyPath(vector.P(0, 0), []BaseSegment{X(10), Y(5), Y(0), X(0)})
	if len(got) != 0 {
		t.Fatalf("got %v want empty", got)
	}
}

func TestSimplifyPathIdempotentAndAlternating(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for n := 0; n < 500; n++ {
		start := vector.P(float64(rng.IntN(5)*10), float64(rng.IntN(5)*10))
		segs := make([]BaseSegment, rng.IntN(8))
		for i := range segs {
			v := float64(rng.IntN(5) * 10)
			if rng.IntN(2) == 0 {
				segs[i] = X(v)
			} else {
				segs[i] = Y(v)
			}
		}
		once := SimplifyPath(start, segs)
		twice := SimplifyPath(start, once)
		if !slices.Equal(once, twice) {
			t.Fatalf("not idempotent for %v from %v: %v then %v", segs, start, once, twice)
		}
		for i := 1; i < len(once); i++ {
			if once[i].Axis == once[i-1].Axis {
				t.Fatalf("runs %d and %d share an axis: %v", i-1, i, once)
			}
		}
		// the overall displacement is unchanged
		a := Chain(start, once)
		b := Chain(start, segs)
		endA, endB := start, start
		if len(a) > 0 {
			endA = SegmentEnd(a[len(a)-1])
		}
		if len(b) > 0 {
			endB = SegmentEnd(b[len(b)-1])
		}
		if endA != endB {
			t.Fatalf("end moved: %v vs %v", endA, endB)
		}
		if s := Simplify(Path{Start: start, Segments: b}); len(s.Segments) < 1 {
			t.Fatalf("Simplify returned no segments")
		}
	}
}

func TestSimplifyAddsPlaceholder(t *testing.T) {
	p := Simplify(Path{Start: vector.P(5, 5), End: vector.P(5, 5)})
	if len(p.Segments) != 1 || SegmentEnd(p.Segments[0]) != vector.P(5, 5) {
		t.Fatalf("got %+v", p.Segments)
	}
}

func TestBuildRectToCircle(t *testing.T) {
	res := rectAndCircle(t, vector.Pt{})
	p, err := Build(res, Relation{ID: "r", Start: "a", End: ElementEnd("b")})
	if err != nil || p == nil {
		t.Fatalf("build: %v, %v", p, err)
	}
	if p.Start != vector.P(49, 0) {
		t.Fatalf("start: got %v want (49,0)", p.Start)
	}
	if p.End != vector.P(131, 0) {
		t.Fatalf("end: got %v want (131,0)", p.End)
	}
	if d := vector.Distance(p.End, vector.P(150, 0)); d != 19 {
		t.Fatalf("end off the circle: distance %v", d)
	}
	if n := len(p.Segments); n < 1 || n > 2 {
		t.Fatalf("got %d segments", n)
	}
	if p.Segments[0] != (Segment{Axis: AxisX, Value: 131, Start: vector.P(49, 0)}) {
		t.Fatalf("segment: %+v", p.Segments[0])
	}
}

func TestBuildIsTranslationInvariant(t *testing.T) {
	base, err := Build(rectAndCircle(t, vector.Pt{}), Relation{Start: "a", End: ElementEnd("b")})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, d := range []vector.Pt{vector.P(30, 20), vector.P(-40, 70), vector.P(1000, -300)} {
		moved, err := Build(rectAndCircle(t, d), Relation{Start: "a", End: ElementEnd("b")})
		if err != nil {
			t.Fatalf("build moved by %v: %v", d, err)
		}
		want := base.Translate(d)
		if moved.Start != want.Start || moved.End != want.End || !slices.Equal(moved.Segments, want.Segments) {
			t.Fatalf("moved by %v: got %+v want %+v", d, *moved, want)
		}
	}
}

func TestBuildWithWaypoint(t *testing.T) {
	res := rectAndCircle(t, vector.Pt{})
	p, err := Build(res, Relation{Start: "a", End: ElementEnd("b"), Points: []vector.Pt{vector.P(100, 100)}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Start != vector.P(49, 20) {
		t.Fatalf("start: got %v want (49,20)", p.Start)
	}
	if len(p.Segments) != 4 {
		t.Fatalf("got %d segments: %+v", len(p.Segments), p.Segments)
	}
	if p.End.X != 140 || math.Abs(vector.Distance(p.End, vector.P(150, 0))-19) > 1e-9 {
		t.Fatalf("end: got %v", p.End)
	}
	if got := SegmentEnd(p.Segments[1]); got != vector.P(100, 100) {
		t.Fatalf("waypoint not visited: %v", got)
	}
	if last := p.Segments[3]; last.Axis != AxisY || SegmentEnd(last) != p.End {
		t.Fatalf("last run: %+v", last)
	}
}

func TestBuildToFreePoint(t *testing.T) {
	p, err := Build(rectAndCircle(t, vector.Pt{}), Relation{Start: "a", End: PointEnd(vector.P(200, 0))})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Start != vector.P(49, 0) || p.End != vector.P(200, 0) || len(p.Segments) != 1 {
		t.Fatalf("got %+v", *p)
	}
}

func TestBuildUnresolved(t *testing.T) {
	res := rectAndCircle(t, vector.Pt{})
	for _, r := range []Relation{
		{Start: "missing", End: ElementEnd("b")},
		{Start: "a", End: ElementEnd("missing")},
	} {
		p, err := Build(res, r)
		if p != nil || err != nil {
			t.Fatalf("expected nil path and no error, got %v, %v", p, err)
		}
	}
}

func TestBuildPrecisionFailure(t *testing.T) {
	res := fakeResolver{
		"a": mustShape(t, shape.Rect, vector.R(0, 0, 10, 10)),
		"b": mustShape(t, shape.Rect, vector.R(100, 100, 60, 60)),
	}
	_, err := Build(res, Relation{ID: "r", Start: "a", End: ElementEnd("b")})
	if !errors.Is(err, line.ErrPrecision) {
		t.Fatalf("expected ErrPrecision, got %v", err)
	}
}

func TestBalancedPoint(t *testing.T) {
	got := balancedPoint(vector.R(-50, -30, 100, 60), vector.R(0, 100, 100, 60))
	if got != vector.P(25, 130) {
		t.Fatalf("got %v want (25,130)", got)
	}
	got = balancedPoint(vector.R(-50, -30, 100, 60), vector.R(200, 200, 40, 40))
	if got != vector.P(220, 220) {
		t.Fatalf("no overlap: got %v want the end center", got)
	}
}

func TestRenderForeshortensForMarker(t *testing.T) {
	p, _ := Build(rectAndCircle(t, vector.Pt{}), Relation{Start: "a", End: ElementEnd("b")})
	st := Style{Stroke: shape.StrokeStyle{Width: 2, Dash: []float64{4, 2}}, Marker: marker.Arrow}
	v, err := Render(p, st, true)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	info, _ := marker.Default.Info(marker.Arrow, 2)
	off := info.StartOffset - info.LineOffset
	tail := v.Points[len(v.Points)-1]
	want := vector.Add(p.End, vector.ScaleTo(v.EndVector, off))
	if tail != want {
		t.Fatalf("terminal point: got %v want %v", tail, want)
	}
	if v.Path != "M 49 0 H 130" || v.HiddenPath != v.Path || v.SelectedPath != v.Path {
		t.Fatalf("paths: %q %q %q", v.Path, v.HiddenPath, v.SelectedPath)
	}
	if v.MarkerOrigin != vector.P(117, 0) || v.MarkerTransform != "translate(117, 0) rotate(360)" {
		t.Fatalf("marker: %v %q", v.MarkerOrigin, v.MarkerTransform)
	}
	if v.DashArray != "4 2" {
		t.Fatalf("dash: %q", v.DashArray)
	}
	if len(v.Handles) != 1 || v.Handles[0].Index != 0 || v.Handles[0].End != vector.P(131, 0) {
		t.Fatalf("handles: %+v", v.Handles)
	}
}

func TestRenderVerticalEndWithoutMarker(t *testing.T) {
	p := Simplify(Path{Start: vector.P(0, 0), End: vector.P(0, 50), Segments: []Segment{{Axis: AxisY, Value: 50}}})
	v, err := Render(&p, Style{}, false)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if v.Path != "M 0 0 V 50" || v.SelectedPath != "" {
		t.Fatalf("paths: %q %q", v.Path, v.SelectedPath)
	}
	if math.Abs(v.MarkerAngle-90) > 1e-9 {
		t.Fatalf("angle: got %v want 90", v.MarkerAngle)
	}
}

func TestRenderPlaceholderDefaultsEndVector(t *testing.T) {
	p := Simplify(Path{Start: vector.P(5, 5), End: vector.P(5, 5)})
	v, err := Render(&p, Style{}, false)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if v.EndVector != vector.P(1, 0) {
		t.Fatalf("end vector: got %v", v.EndVector)
	}
	if _, err := Render(nil, Style{}, false); err == nil {
		t.Fatalf("expected error for nil path")
	}
}
