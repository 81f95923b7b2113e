/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures element labels and breaks them into lines.
package textlayout

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string
	SizePt float64
	Bold   bool
}

// Metrics are the vertical metrics of a resolved face in pixels.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// LineHeight is the advance from one baseline to the next.
func (m Metrics) LineHeight() float64 { return m.Ascent + m.Descent + m.LineGap }

// Provider maps a FontSpec to a concrete face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider always returns basicfont.Face7x13, which keeps layouts
// deterministic without font files.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  float64(m.Ascent.Round()),
		Descent: float64(m.Descent.Round()),
		LineGap: float64(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// Line is one laid out line of a label.
type Line struct {
	Text  string
	Width float64
}

// Block is a laid out label.
type Block struct {
	Lines   []Line
	Width   float64
	Height  float64
	Metrics Metrics
}

func px(v fixed.Int26_6) float64 { return float64(v) / 64 }

// Layout breaks text on explicit newlines and, when maxWidth is positive, on
// spaces so that no line is wider than maxWidth unless a single word is. An
// empty text still yields one empty line.
func Layout(p Provider, spec FontSpec, text string, maxWidth float64) Block {
	if p == nil {
		p = BasicProvider{}
	}
	face, met := p.Resolve(spec)
	space := px(font.MeasureString(face, " "))
	b := Block{Metrics: met}
	add := func(words []string, w float64) {
		b.Lines = append(b.Lines, Line{Text: strings.Join(words, " "), Width: w})
		b.Width = max(b.Width, w)
	}
	for _, para := range strings.Split(text, "\n") {
		var cur []string
		var w float64
		for _, word := range strings.Fields(para) {
			ww := px(font.MeasureString(face, word))
			if len(cur) > 0 && maxWidth > 0 && w+space+ww > maxWidth {
				add(cur, w)
				cur, w = nil, 0
			}
			if len(cur) > 0 {
				w += space
			}
			cur = append(cur, word)
			w += ww
		}
		add(cur, w)
	}
	b.Height = float64(len(b.Lines)) * met.LineHeight()
	return b
}

// Measure returns the size of text on a single line per paragraph.
func Measure(p Provider, spec FontSpec, text string) (w, h float64) {
	b := Layout(p, spec, text, 0)
	return b.Width, b.Height
}
