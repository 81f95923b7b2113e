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
	"io"

	"diagramroute/internal/vector"

	"github.com/jung-kurt/gofpdf"
)

// newPDF lays d out on a single page sized to its bounds. One model unit is
// one point.
func newPDF(d Drawing, opt Options) *gofpdf.Fpdf {
	opt = opt.withDefaults()
	b := d.Bounds
	size := gofpdf.SizeType{Wd: max(b.W, 1), Ht: max(b.H, 1)}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	if d.Name != "" {
		pdf.SetTitle(d.Name, true)
	}
	pdf.SetAuthor("DiagramRoute", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", size)

	at := func(p vector.Pt) (float64, float64) { return p.X - b.X, p.Y - b.Y }

	setFillColor(pdf, opt.Background)
	pdf.Rect(0, 0, size.Wd, size.Ht, "F")
	pdf.SetFont("Helvetica", "", 12)

	for _, it := range d.Items {
		setFillColor(pdf, it.Fill)
		setDrawColor(pdf, it.Stroke)
		pdf.SetLineWidth(it.StrokeWidth)
		setDash(pdf, it.Dash)
		polyline(pdf, it.Polygon, at, true, "FD")
		if it.Label != "" {
			x, y := at(it.LabelAt)
			pdf.SetTextColor(0, 0, 0)
			pdf.Text(x-pdf.GetStringWidth(it.Label)/2, y+4, it.Label)
		}
	}
	for _, w := range d.Wires {
		v := w.View
		setDrawColor(pdf, v.Stroke)
		pdf.SetLineWidth(v.StrokeWidth)
		setDash(pdf, w.Dash)
		polyline(pdf, v.Points, at, false, "D")
		if len(w.Marker) > 0 {
			setDash(pdf, nil)
			if v.Marker.Filled {
				setFillColor(pdf, v.Stroke)
			} else {
				setFillColor(pdf, vector.White)
			}
			polyline(pdf, w.Marker, at, true, "FD")
		}
	}
	return pdf
}

// WritePDF writes d as a one-page PDF.
func WritePDF(w io.Writer, d Drawing, opt Options) error {
	pdf := newPDF(d, opt)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func polyline(pdf *gofpdf.Fpdf, pts []vector.Pt, at func(vector.Pt) (float64, float64), closed bool, style string) {
	if len(pts) < 2 {
		return
	}
	x, y := at(pts[0])
	pdf.MoveTo(x, y)
	for _, p := range pts[1:] {
		x, y := at(p)
		pdf.LineTo(x, y)
	}
	if closed {
		pdf.ClosePath()
	}
	pdf.DrawPath(style)
}

func setDash(pdf *gofpdf.Fpdf, dash []float64) {
	if len(dash) == 0 {
		pdf.SetDashPattern([]float64{}, 0)
		return
	}
	pdf.SetDashPattern(dash, 0)
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
