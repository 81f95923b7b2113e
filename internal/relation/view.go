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
	"strings"

	"diagramroute/internal/marker"
	"diagramroute/internal/vector"
)

// Handle is the hit area of one run; Index is the run's position in the path
// and is what a drag on the handle reports back.
type Handle struct {
	Index int
	Start vector.Pt
	End   vector.Pt
}

// View holds the drawable primitives of a routed relation.
type View struct {
	// EndVector points from the end anchor back along the last run.
	EndVector vector.Pt
	Marker    marker.Info
	// MarkerOrigin and MarkerAngle (degrees) place the marker path.
	MarkerOrigin    vector.Pt
	MarkerAngle     float64
	MarkerTransform string

	// Path is the visible stroke, with the last run shortened to meet the
	// marker. Points is the same course as a polyline.
	Path         string
	Points       []vector.Pt
	HiddenPath   string
	SelectedPath string
	StrokeWidth  float64
	Stroke       vector.Color
	DashArray    string
	Handles      []Handle
}

var errNoSegments = errors.New("path has no segments")

// Render turns a routed path into drawing primitives.
func Render(p *Path, st Style, selected bool) (View, error) {
	if p == nil || len(p.Segments) == 0 {
		return View{}, errNoSegments
	}
	sw := st.Stroke.EffectiveWidth()
	info, err := marker.Default.Info(st.Marker, sw)
	if err != nil {
		return View{}, err
	}
	last := p.Segments[len(p.Segments)-1]
	endVector := vector.Negate(vector.Sub(SegmentEnd(last), last.Start))
	if vector.Length(endVector) == 0 {
		endVector = vector.P(1, 0)
	}
	v := View{
		EndVector:   endVector,
		Marker:      info,
		StrokeWidth: sw,
		Stroke:      st.Stroke.Color,
	}
	v.MarkerOrigin = vector.Add(p.End, vector.ScaleTo(endVector, info.StartOffset))
	v.MarkerAngle = degrees(vector.Angle(endVector) + math.Pi)
	v.MarkerTransform = "translate(" + vector.FormatFloat(v.MarkerOrigin.X) + ", " + vector.FormatFloat(v.MarkerOrigin.Y) +
		") rotate(" + vector.FormatFloat(v.MarkerAngle) + ")"

	endOffset := info.StartOffset - info.LineOffset
	var b strings.Builder
	b.WriteString("M " + vector.FormatFloat(p.Start.X) + " " + vector.FormatFloat(p.Start.Y))
	cur := p.Start
	v.Points = append(v.Points, cur)
	for i, s := range p.Segments {
		val := s.Value
		if i == len(p.Segments)-1 {
			val += vector.Sign(coord(endVector, s.Axis)) * endOffset
		}
		if s.Axis == AxisX {
			b.WriteString(" H " + vector.FormatFloat(val))
		} else {
			b.WriteString(" V " + vector.FormatFloat(val))
		}
		cur = withCoord(cur, s.Axis, val)
		v.Points = append(v.Points, cur)
		v.Handles = append(v.Handles, Handle{Index: i, Start: s.Start, End: SegmentEnd(s)})
	}
	v.Path = b.String()
	v.HiddenPath = v.Path
	if selected {
		v.SelectedPath = v.Path
	}
	if len(st.Stroke.Dash) > 0 {
		parts := make([]string, len(st.Stroke.Dash))
		for i, d := range st.Stroke.Dash {
			parts[i] = vector.FormatFloat(d)
		}
		v.DashArray = strings.Join(parts, " ")
	}
	return v, nil
}

// degrees converts radians, rounded to 1e-9 so exact angles print cleanly.
func degrees(rad float64) float64 {
	return math.Round(rad*180/math.Pi*1e9) / 1e9
}
