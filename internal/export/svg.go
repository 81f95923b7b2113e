/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"diagramroute/internal/vector"
)

// WriteSVG writes d as a standalone SVG document. The viewBox is in model
// units; width and height are scaled by DPI.
func WriteSVG(w io.Writer, d Drawing, opt Options) error {
	opt = opt.withDefaults()
	b := d.Bounds
	pxW := int(math.Round(b.W * opt.scale()))
	pxH := int(math.Round(b.H * opt.scale()))

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}
	f := vector.FormatFloat

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"%s %s %s %s\">\n", pxW, pxH, f(b.X), f(b.Y), f(b.W), f(b.H))
	if d.Name != "" {
		wf("  <title>%s</title>\n", escText(d.Name))
	}
	wf("  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"%s\"/>\n", f(b.X), f(b.Y), f(b.W), f(b.H), svgColor(opt.Background))

	for _, it := range d.Items {
		wf("  <path id=\"%s\" d=\"%s\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%s\"%s/>\n",
			escAttr(it.ID), it.Path, svgColor(it.Fill), svgColor(it.Stroke), f(it.StrokeWidth), dashAttr(it.Dash))
		if it.Label != "" {
			wf("  <text x=\"%s\" y=\"%s\" text-anchor=\"middle\" dominant-baseline=\"central\" font-family=\"sans-serif\" font-size=\"12\" fill=\"#000000\">%s</text>\n",
				f(it.LabelAt.X), f(it.LabelAt.Y), escText(it.Label))
		}
	}
	for _, wr := range d.Wires {
		v := wr.View
		wf("  <g id=\"%s\">\n", escAttr(wr.ID))
		wf("    <path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%s\"%s/>\n", v.Path, svgColor(v.Stroke), f(v.StrokeWidth), dashAttr(wr.Dash))
		if v.Marker.Path != "" {
			fill := "#ffffff"
			if v.Marker.Filled {
				fill = svgColor(v.Stroke)
			}
			wf("    <path d=\"%s\" transform=\"%s\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%s\"/>\n", v.Marker.Path, v.MarkerTransform, fill, svgColor(v.Stroke), f(v.StrokeWidth))
		}
		wf("  </g>\n")
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgColor(c vector.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func dashAttr(dash []float64) string {
	if len(dash) == 0 {
		return ""
	}
	parts := make([]string, len(dash))
	for i, v := range dash {
		parts[i] = vector.FormatFloat(v)
	}
	return " stroke-dasharray=\"" + strings.Join(parts, " ") + "\""
}

func escAttr(s string) string {
	var b strings.Builder
	for _, ch := range s {
		switch ch {
		case '"':
			b.WriteString("&quot;")
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '\n':
			b.WriteByte(' ')
		case '\r':
			// skip
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

func escText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
