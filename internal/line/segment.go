/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package line models outlines as chains of line and arc segments and answers
// projection, point and normal queries against them.
package line

import "diagramroute/internal/vector"

// Kind tags a segment variant. Engines are looked up by kind.
type Kind string

const (
	KindLine Kind = "line"
	KindArc  Kind = "arc"
)

// Segment is one piece of a Line. A segment only knows its end point; its start
// is the end of the previous segment, or the line start for the first one.
type Segment interface {
	Kind() Kind
	EndPoint() vector.Pt
	Translate(d vector.Pt) Segment
}

// LineSegment is a straight piece ending at End.
type LineSegment struct {
	End vector.Pt
}

func (LineSegment) Kind() Kind            { return KindLine }
func (s LineSegment) EndPoint() vector.Pt { return s.End }
func (s LineSegment) Translate(d vector.Pt) Segment {
	return LineSegment{End: vector.Add(s.End, d)}
}

// ArcSegment is an elliptical arc around Center with radii RX and RY. Clockwise
// refers to screen coordinates (y pointing down) and maps to the SVG sweep flag.
type ArcSegment struct {
	End       vector.Pt
	Center    vector.Pt
	RX, RY    float64
	Clockwise bool
}

func (ArcSegment) Kind() Kind            { return KindArc }
func (s ArcSegment) EndPoint() vector.Pt { return s.End }
func (s ArcSegment) Translate(d vector.Pt) Segment {
	s.End = vector.Add(s.End, d)
	s.Center = vector.Add(s.Center, d)
	return s
}

// Line is an ordered chain of segments starting at Start.
type Line struct {
	Start    vector.Pt
	Segments []Segment
}

// IsClosed reports whether the last segment ends where the line starts.
func (l Line) IsClosed() bool {
	if len(l.Segments) == 0 {
		return false
	}
	return l.Segments[len(l.Segments)-1].EndPoint() == l.Start
}

// SegmentStart returns the start point of segment i.
func (l Line) SegmentStart(i int) vector.Pt {
	if i <= 0 {
		return l.Start
	}
	return l.Segments[i-1].EndPoint()
}

// Translate returns a copy of the line moved by d.
func (l Line) Translate(d vector.Pt) Line {
	out := Line{Start: vector.Add(l.Start, d), Segments: make([]Segment, len(l.Segments))}
	for i, s := range l.Segments {
		out.Segments[i] = s.Translate(d)
	}
	return out
}
