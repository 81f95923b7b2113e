/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package shape builds closed outlines for the node shapes of a diagram.
package shape

import (
	"errors"
	"fmt"

	"diagramroute/internal/line"
	"diagramroute/internal/vector"
)

// Kind names a shape engine.
type Kind string

const (
	Circle  Kind = "circle"
	Ellipse Kind = "ellipse"
	Rect    Kind = "rect"
	Rhombus Kind = "rhombus"
	Hexagon Kind = "hexagon"
)

// DefaultMargin is the gap kept between a label box and the outline drawn
// around it.
const DefaultMargin = 10.0

// DefaultStrokeWidth applies when a style leaves the width unset.
const DefaultStrokeWidth = 2.0

var ErrUnknownShape = errors.New("unknown shape kind")

type StrokeStyle struct {
	Width float64
	Color vector.Color
	Dash  []float64
}

// EffectiveWidth returns Width, or DefaultStrokeWidth when unset.
func (s StrokeStyle) EffectiveWidth() float64 {
	if s.Width <= 0 {
		return DefaultStrokeWidth
	}
	return s.Width
}

type Style struct {
	Shape  Kind
	Stroke StrokeStyle
	Fill   vector.Color
}

// Shape is a generated outline together with the box it occupies.
type Shape struct {
	Bounds  vector.Rect
	Kind    Kind
	Outline line.Line
}

// Engine generates the outline of one shape kind. GenerateForBounds inscribes
// the outline in b; GenerateForInnerBounds surrounds b with DefaultMargin and
// reports the resulting outer bounds.
type Engine interface {
	GenerateForBounds(b vector.Rect, st Style) Shape
	GenerateForInnerBounds(b vector.Rect, st Style) Shape
}

// Generator is the registry of shape engines.
type Generator struct {
	engines map[Kind]Engine
}

func NewGenerator() *Generator {
	return &Generator{engines: map[Kind]Engine{
		Circle:  circleEngine{},
		Ellipse: ellipseEngine{},
		Rect:    rectEngine{},
		Rhombus: rhombusEngine{},
		Hexagon: hexagonEngine{},
	}}
}

var Default = NewGenerator()

func (g *Generator) engine(k Kind) (Engine, error) {
	e, ok := g.engines[k]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, string(k))
	}
	return e, nil
}

// Known reports whether an engine is registered for k.
func (g *Generator) Known(k Kind) bool {
	_, ok := g.engines[k]
	return ok
}

func (g *Generator) GenerateForBounds(k Kind, b vector.Rect, st Style) (Shape, error) {
	e, err := g.engine(k)
	if err != nil {
		return Shape{}, err
	}
	return e.GenerateForBounds(b, st), nil
}

func (g *Generator) GenerateForInnerBounds(k Kind, b vector.Rect, st Style) (Shape, error) {
	e, err := g.engine(k)
	if err != nil {
		return Shape{}, err
	}
	return e.GenerateForInnerBounds(b, st), nil
}

// polygon closes the outline through pts, clockwise on screen.
func polygon(pts ...vector.Pt) line.Line {
	l := line.Line{Start: pts[0], Segments: make([]line.Segment, 0, len(pts))}
	for _, p := range pts[1:] {
		l.Segments = append(l.Segments, line.LineSegment{End: p})
	}
	l.Segments = append(l.Segments, line.LineSegment{End: pts[0]})
	return l
}
