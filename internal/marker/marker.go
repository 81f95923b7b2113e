/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package marker computes the end decorations drawn on relation paths.
//
// Marker paths are drawn in local coordinates: the marker starts at the
// origin and points along +x, its tip at x = StartOffset. Renderers translate
// the origin to end + StartOffset*endVector and rotate by the path direction.
package marker

import (
	"errors"
	"fmt"
	"strings"

	"diagramroute/internal/vector"
)

type Kind string

const (
	None           Kind = ""
	Arrow          Kind = "ARROW"
	Diamond        Kind = "DIAMOND"
	FilledDiamond  Kind = "FILLED_DIAMOND"
	Triangle       Kind = "TRIANGLE"
	FilledTriangle Kind = "FILLED_TRIANGLE"
	Circle         Kind = "CIRCLE"
	FilledCircle   Kind = "FILLED_CIRCLE"
)

var ErrUnknownMarker = errors.New("unknown marker kind")

// Info describes a marker for a given stroke width. The relation line stops
// LineOffset into the marker.
type Info struct {
	Path        string
	StartOffset float64
	LineOffset  float64
	Filled      bool
}

type engine interface {
	info(strokeWidth float64) Info
}

// Generator is the marker registry.
type Generator struct {
	engines map[Kind]engine
}

func NewGenerator() *Generator {
	return &Generator{engines: map[Kind]engine{
		Arrow:          arrowEngine{},
		Diamond:        diamondEngine{},
		FilledDiamond:  diamondEngine{filled: true},
		Triangle:       triangleEngine{},
		FilledTriangle: triangleEngine{filled: true},
		Circle:         circleEngine{},
		FilledCircle:   circleEngine{filled: true},
	}}
}

var Default = NewGenerator()

// Info returns the marker geometry for kind. None yields a zero Info.
func (g *Generator) Info(kind Kind, strokeWidth float64) (Info, error) {
	if kind == None {
		return Info{}, nil
	}
	e, ok := g.engines[kind]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrUnknownMarker, string(kind))
	}
	return e.info(strokeWidth), nil
}

// size is the marker length along the path.
func size(strokeWidth float64) float64 { return 4*strokeWidth + 6 }

func path(parts ...any) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch v := p.(type) {
		case float64:
			b.WriteString(vector.FormatFloat(v))
		default:
			fmt.Fprint(&b, v)
		}
	}
	return b.String()
}

type arrowEngine struct{}

func (arrowEngine) info(sw float64) Info {
	s := size(sw)
	return Info{
		Path:        path("M", 0.0, -s/2, "L", s, 0.0, "L", 0.0, s/2),
		StartOffset: s,
		LineOffset:  s - sw/2,
	}
}

type triangleEngine struct{ filled bool }

func (e triangleEngine) info(sw float64) Info {
	s := size(sw)
	return Info{
		Path:        path("M", 0.0, -s/2, "L", s, 0.0, "L", 0.0, s/2, "Z"),
		StartOffset: s,
		Filled:      e.filled,
	}
}

type diamondEngine struct{ filled bool }

func (e diamondEngine) info(sw float64) Info {
	s := size(sw) * 1.5
	return Info{
		Path:        path("M", 0.0, 0.0, "L", s/2, -s/3, "L", s, 0.0, "L", s/2, s/3, "Z"),
		StartOffset: s,
		Filled:      e.filled,
	}
}

type circleEngine struct{ filled bool }

func (e circleEngine) info(sw float64) Info {
	s := size(sw)
	r := s / 2
	return Info{
		Path:        path("M", 0.0, 0.0, "A", r, r, 0, 0, 1, s, 0.0, "A", r, r, 0, 0, 1, 0.0, 0.0, "Z"),
		StartOffset: s,
		Filled:      e.filled,
	}
}
