/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"diagramroute/internal/scene"
	"diagramroute/internal/textlayout"
	"diagramroute/internal/vector"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	xvector "golang.org/x/image/vector"
)

// Raster renders d into an RGBA image. Labels use the faces of p; nil means
// the built-in bitmap font.
func Raster(d Drawing, opt Options, p textlayout.Provider) *image.RGBA {
	opt = opt.withDefaults()
	if p == nil {
		p = textlayout.BasicProvider{}
	}
	r := &rasterizer{b: d.Bounds, k: opt.scale()}
	pixW := max(1, int(math.Ceil(d.Bounds.W*r.k)))
	pixH := max(1, int(math.Ceil(d.Bounds.H*r.k)))
	r.img = image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	r.ras = xvector.NewRasterizer(pixW, pixH)
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(opt.Background), image.Point{}, draw.Src)

	face, _ := p.Resolve(textlayout.FontSpec{SizePt: scene.LabelFontSize})
	for _, it := range d.Items {
		r.fill(it.Polygon, it.Fill)
		r.stroke(it.Polygon, true, it.StrokeWidth, it.Stroke)
		if it.Label != "" {
			r.label(face, it.Label, it.LabelAt)
		}
	}
	for _, w := range d.Wires {
		v := w.View
		r.stroke(v.Points, false, v.StrokeWidth, v.Stroke)
		if len(w.Marker) > 0 {
			if v.Marker.Filled {
				r.fill(w.Marker, v.Stroke)
			} else {
				r.fill(w.Marker, vector.White)
			}
			r.stroke(w.Marker, true, v.StrokeWidth, v.Stroke)
		}
	}
	return r.img
}

// WritePNG encodes the rasterized drawing.
func WritePNG(w io.Writer, d Drawing, opt Options, p textlayout.Provider) error {
	if err := png.Encode(w, Raster(d, opt, p)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

type rasterizer struct {
	b   vector.Rect
	k   float64
	img *image.RGBA
	ras *xvector.Rasterizer
}

func (r *rasterizer) px(p vector.Pt) (float32, float32) {
	return float32((p.X - r.b.X) * r.k), float32((p.Y - r.b.Y) * r.k)
}

func (r *rasterizer) polygon(pts []vector.Pt, c color.Color) {
	if len(pts) < 3 {
		return
	}
	r.ras.Reset(r.img.Bounds().Dx(), r.img.Bounds().Dy())
	x, y := r.px(pts[0])
	r.ras.MoveTo(x, y)
	for _, p := range pts[1:] {
		x, y := r.px(p)
		r.ras.LineTo(x, y)
	}
	r.ras.ClosePath()
	r.ras.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{})
}

func (r *rasterizer) fill(pts []vector.Pt, c vector.Color) { r.polygon(pts, c) }

// stroke draws each edge as a quad extended by half the width at both ends,
// which gives square joins on orthogonal paths.
func (r *rasterizer) stroke(pts []vector.Pt, closed bool, width float64, c vector.Color) {
	if len(pts) < 2 {
		return
	}
	hw := max(width/2, 0.5/r.k)
	edge := func(a, b vector.Pt) {
		d := vector.Sub(b, a)
		if vector.Length(d) == 0 {
			return
		}
		t := vector.ScaleTo(d, hw)
		n := vector.P(-t.Y, t.X)
		a, b = vector.Sub(a, t), vector.Add(b, t)
		r.polygon([]vector.Pt{vector.Add(a, n), vector.Add(b, n), vector.Sub(b, n), vector.Sub(a, n)}, c)
	}
	for i := 1; i < len(pts); i++ {
		edge(pts[i-1], pts[i])
	}
	if closed {
		edge(pts[len(pts)-1], pts[0])
	}
}

func (r *rasterizer) label(face font.Face, text string, at vector.Pt) {
	x, y := r.px(at)
	w := font.MeasureString(face, text)
	asc := face.Metrics().Ascent
	dr := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x*64) - w/2, Y: fixed.Int26_6(y*64) + asc/2},
	}
	dr.DrawString(text)
}
