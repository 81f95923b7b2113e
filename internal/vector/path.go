/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "strconv"

// Flattened drawing paths. Curves are sampled into line commands before they
// land here, so renderers only deal with polylines.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	Close
)

type PathCmd struct {
	Op PathOp
	P  Pt
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(pt Pt) { p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, P: pt}) }
func (p *Path) LineTo(pt Pt) { p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, P: pt}) }
func (p *Path) Close()       { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// Polyline builds an open path through pts.
func Polyline(pts ...Pt) Path {
	var p Path
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt)
		} else {
			p.LineTo(pt)
		}
	}
	return p
}

// Bounds returns the axis-aligned bounding box of all path points.
func (p Path) Bounds() Rect {
	first := true
	var minX, minY, maxX, maxY float64
	for _, c := range p.Cmds {
		if c.Op == Close {
			continue
		}
		if first {
			minX, minY, maxX, maxY = c.P.X, c.P.Y, c.P.X, c.P.Y
			first = false
			continue
		}
		minX, minY = min(minX, c.P.X), min(minY, c.P.Y)
		maxX, maxY = max(maxX, c.P.X), max(maxY, c.P.Y)
	}
	if first {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// FormatFloat renders a coordinate for path data: shortest exact form, no
// exponent, negative zero printed as 0.
func FormatFloat(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
