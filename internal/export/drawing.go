/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a routed diagram to SVG, PNG or PDF. All three
// writers consume the same Drawing, which is collected once from a scene.
package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"diagramroute/internal/line"
	"diagramroute/internal/relation"
	"diagramroute/internal/scene"
	"diagramroute/internal/shape"
	"diagramroute/internal/vector"
)

// Options shared by all formats.
type Options struct {
	// Margin around the diagram bounds in model units. Defaults to 20.
	Margin float64
	// DPI scales raster output; 96 means one pixel per model unit.
	DPI float64
	// Background fills the page. Defaults to white.
	Background vector.Color
	// ArcSteps is the number of samples per arc when outlines are flattened.
	ArcSteps int
}

func (o Options) withDefaults() Options {
	if o.Margin <= 0 {
		o.Margin = 20
	}
	if o.DPI <= 0 {
		o.DPI = 96
	}
	if o.Background.IsZero() {
		o.Background = vector.White
	}
	if o.ArcSteps <= 0 {
		o.ArcSteps = 24
	}
	return o
}

// scale is the raster pixel size of one model unit.
func (o Options) scale() float64 { return o.DPI / 96 }

// Item is a component or interface outline.
type Item struct {
	ID          string
	Path        string
	Polygon     []vector.Pt
	Fill        vector.Color
	Stroke      vector.Color
	StrokeWidth float64
	Dash        []float64
	Label       string
	LabelAt     vector.Pt
}

// Wire is a routed relation.
type Wire struct {
	ID     string
	View   relation.View
	Dash   []float64
	Marker []vector.Pt
}

// Drawing is the flattened content of a scene in model coordinates.
type Drawing struct {
	Name   string
	Bounds vector.Rect
	Items  []Item
	Wires  []Wire
}

// Collect gathers outlines and routed relations. Relations whose endpoints
// are missing are skipped.
func Collect(s *scene.Scene, opt Options) (Drawing, error) {
	opt = opt.withDefaults()
	d := Drawing{Name: s.Name()}
	first := true
	grow := func(r vector.Rect) {
		if first {
			d.Bounds, first = r, false
			return
		}
		d.Bounds = d.Bounds.Union(r)
	}
	addItem := func(id, label string, labelAt vector.Pt, st shape.Style) error {
		sh, ok := s.Shape(id)
		if !ok {
			return nil
		}
		path, err := line.Default.PathString(sh.Outline)
		if err != nil {
			return fmt.Errorf("outline %s: %w", id, err)
		}
		poly, err := line.Default.Flatten(sh.Outline, opt.ArcSteps)
		if err != nil {
			return fmt.Errorf("outline %s: %w", id, err)
		}
		it := Item{ID: id, Path: path, Polygon: poly, Label: label, LabelAt: labelAt}
		it.Fill = st.Fill
		if it.Fill.IsZero() {
			it.Fill = vector.White
		}
		it.Stroke = st.Stroke.Color
		if it.Stroke.IsZero() {
			it.Stroke = vector.Black
		}
		it.StrokeWidth = st.Stroke.EffectiveWidth()
		it.Dash = st.Stroke.Dash
		d.Items = append(d.Items, it)
		grow(sh.Bounds)
		return nil
	}
	for _, c := range s.Components() {
		if err := addItem(c.ID, c.Label, c.Pos, c.Style); err != nil {
			return Drawing{}, err
		}
	}
	for _, i := range s.Interfaces() {
		pos := s.InterfacePos(i)
		if err := addItem(i.ID, i.Label, vector.Add(pos, vector.P(0, scene.InterfaceSize/2+scene.LabelFontSize)), i.Style); err != nil {
			return Drawing{}, err
		}
	}
	for _, r := range s.RelationDefs() {
		v, ok, err := s.RelationView(r.ID)
		if err != nil {
			return Drawing{}, fmt.Errorf("relation %s: %w", r.ID, err)
		}
		if !ok {
			continue
		}
		if v.Stroke.IsZero() {
			v.Stroke = vector.Black
		}
		w := Wire{ID: r.ID, View: v, Dash: r.Style.Stroke.Dash}
		if v.Marker.Path != "" {
			w.Marker = markerPolygon(v.Marker.Path, v.MarkerOrigin, v.MarkerAngle)
		}
		d.Wires = append(d.Wires, w)
		if len(v.Points) > 0 {
			grow(vector.Polyline(v.Points...).Bounds())
		}
	}
	d.Bounds = d.Bounds.Inset(-opt.Margin, -opt.Margin)
	return d, nil
}

// markerPolygon samples marker path data (M, L, A, Z with absolute
// coordinates) and places it at origin rotated by deg degrees.
func markerPolygon(path string, origin vector.Pt, deg float64) []vector.Pt {
	tok := strings.Fields(path)
	num := func(i int) float64 {
		if i >= len(tok) {
			return 0
		}
		v, _ := strconv.ParseFloat(tok[i], 64)
		return v
	}
	var pts []vector.Pt
	var cur vector.Pt
	for i := 0; i < len(tok); {
		switch tok[i] {
		case "M", "L":
			cur = vector.P(num(i+1), num(i+2))
			pts = append(pts, cur)
			i += 3
		case "A":
			// markers only use half circles
			to := vector.P(num(i+6), num(i+7))
			c := vector.LinearInterpolate(cur, to, 0.5)
			r := vector.Distance(cur, to) / 2
			a0 := vector.Angle(vector.Sub(cur, c))
			for k := 1; k <= 8; k++ {
				a := a0 + math.Pi*float64(k)/8
				pts = append(pts, vector.P(c.X+r*math.Cos(a), c.Y+r*math.Sin(a)))
			}
			cur = to
			i += 8
		default:
			i++
		}
	}
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	for k, p := range pts {
		pts[k] = vector.P(origin.X+p.X*cos-p.Y*sin, origin.Y+p.X*sin+p.Y*cos)
	}
	return pts
}
