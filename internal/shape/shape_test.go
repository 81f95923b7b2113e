/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"errors"
	"math"
	"testing"

	"diagramroute/internal/line"
	"diagramroute/internal/vector"
)

func points(l line.Line) []vector.Pt {
	out := []vector.Pt{l.Start}
	for _, s := range l.Segments {
		out = append(out, s.EndPoint())
	}
	return out
}

func TestRectForBoundsInsetsHalfStroke(t *testing.T) {
	s, err := Default.GenerateForBounds(Rect, vector.R(-50, -30, 100, 60), Style{Stroke: StrokeStyle{Width: 2}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := []vector.Pt{vector.P(-49, -29), vector.P(49, -29), vector.P(49, 29), vector.P(-49, 29), vector.P(-49, -29)}
	got := points(s.Outline)
	if len(got) != len(want) {
		t.Fatalf("got %d points want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("point %d: got %v want %v", i, got[i], want[i])
		}
	}
	if s.Bounds != vector.R(-50, -30, 100, 60) || s.Kind != Rect {
		t.Fatalf("bounds/kind: %+v %v", s.Bounds, s.Kind)
	}
}

func TestCircleForBounds(t *testing.T) {
	s, err := Default.GenerateForBounds(Circle, vector.R(130, -20, 40, 40), Style{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	a := s.Outline.Segments[0].(line.ArcSegment)
	if a.RX != 19 || a.RY != 19 || a.Center != vector.P(150, 0) {
		t.Fatalf("got arc %+v want r=19 around (150,0)", a)
	}
	if s.Outline.Start != vector.P(169, 0) {
		t.Fatalf("start: got %v", s.Outline.Start)
	}
}

func TestCircleForInnerBounds(t *testing.T) {
	s, err := Default.GenerateForInnerBounds(Circle, vector.R(0, 0, 30, 40), Style{Stroke: StrokeStyle{Width: 2}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	a := s.Outline.Segments[0].(line.ArcSegment)
	if a.RX != 36 {
		t.Fatalf("radius: got %v want 36", a.RX)
	}
	if s.Bounds != vector.R(15-37, 20-37, 74, 74) {
		t.Fatalf("outer bounds: got %+v", s.Bounds)
	}
}

func TestInnerBoundsContainLabelBox(t *testing.T) {
	box := vector.R(-40, -10, 80, 20)
	corners := []vector.Pt{box.Min(), box.Max(), vector.P(box.X, box.Y+box.H), vector.P(box.X+box.W, box.Y)}
	for _, k := range []Kind{Circle, Ellipse, Rect, Rhombus, Hexagon} {
		s, err := Default.GenerateForInnerBounds(k, box, Style{})
		if err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		for _, c := range corners {
			// each corner must sit at least the margin away from the outline
			r, err := line.Default.ProjectPoint(c, s.Outline)
			if err != nil {
				t.Fatalf("%s: %v", k, err)
			}
			if r.Distance < DefaultMargin/2 {
				t.Fatalf("%s: corner %v only %v from outline", k, c, r.Distance)
			}
			if !s.Bounds.Contains(c) {
				t.Fatalf("%s: bounds %+v miss corner %v", k, s.Bounds, c)
			}
		}
	}
}

func TestEveryKindProducesClosedOutline(t *testing.T) {
	for _, k := range []Kind{Circle, Ellipse, Rect, Rhombus, Hexagon} {
		for _, inner := range []bool{false, true} {
			var s Shape
			var err error
			if inner {
				s, err = Default.GenerateForInnerBounds(k, vector.R(0, 0, 60, 40), Style{})
			} else {
				s, err = Default.GenerateForBounds(k, vector.R(0, 0, 60, 40), Style{})
			}
			if err != nil {
				t.Fatalf("%s: %v", k, err)
			}
			if len(s.Outline.Segments) == 0 || !s.Outline.IsClosed() {
				t.Fatalf("%s (inner=%v): outline not closed", k, inner)
			}
			if s.Kind != k {
				t.Fatalf("kind: got %v want %v", s.Kind, k)
			}
		}
	}
}

func TestRhombusAndHexagonVertices(t *testing.T) {
	s, _ := Default.GenerateForBounds(Rhombus, vector.R(0, 0, 100, 60), Style{})
	got := points(s.Outline)
	want := []vector.Pt{vector.P(50, 1), vector.P(99, 30), vector.P(50, 59), vector.P(1, 30), vector.P(50, 1)}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rhombus point %d: got %v want %v", i, got[i], want[i])
		}
	}
	s, _ = Default.GenerateForBounds(Hexagon, vector.R(-1, -1, 82, 42), Style{})
	got = points(s.Outline)
	want = []vector.Pt{vector.P(20, 0), vector.P(60, 0), vector.P(80, 20), vector.P(60, 40), vector.P(20, 40), vector.P(0, 20), vector.P(20, 0)}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("hexagon point %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestEllipseOutlineNormalsPointOutward(t *testing.T) {
	s, _ := Default.GenerateForBounds(Ellipse, vector.R(0, 0, 80, 40), Style{})
	c := s.Bounds.Center()
	for _, pos := range []float64{0.1, 0.3, 0.6, 0.9} {
		p, _ := line.Default.GetPoint(pos, 0, s.Outline)
		n, _ := line.Default.GetNormal(pos, s.Outline)
		d := vector.Sub(p, c)
		if d.X*n.X+d.Y*n.Y <= 0 {
			t.Fatalf("normal at %v points inward", pos)
		}
	}
}

func TestUnknownShape(t *testing.T) {
	_, err := Default.GenerateForBounds("star", vector.R(0, 0, 10, 10), Style{})
	if !errors.Is(err, ErrUnknownShape) {
		t.Fatalf("expected ErrUnknownShape, got %v", err)
	}
	if _, err := Default.GenerateForInnerBounds("", vector.R(0, 0, 10, 10), Style{}); !errors.Is(err, ErrUnknownShape) {
		t.Fatalf("expected ErrUnknownShape for empty kind, got %v", err)
	}
	if Default.Known("star") || !Default.Known(Hexagon) {
		t.Fatalf("Known mismatch")
	}
}

func TestEffectiveStrokeWidth(t *testing.T) {
	if w := (StrokeStyle{}).EffectiveWidth(); w != DefaultStrokeWidth {
		t.Fatalf("default width: got %v", w)
	}
	if w := (StrokeStyle{Width: 3.5}).EffectiveWidth(); math.Abs(w-3.5) > 0 {
		t.Fatalf("explicit width: got %v", w)
	}
}
