/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package line

import "diagramroute/internal/vector"

// NearestPoint is the answer of a single segment engine to a projection query.
// Position is local to the segment, in [0,1]. Priority marks an exact hit of a
// horizontal or vertical ray.
type NearestPoint struct {
	Position float64
	Distance float64
	Point    vector.Pt
	Priority bool
}

// SegmentEngine implements the geometry of one segment kind. Engines are
// stateless; start is the implicit start point of seg.
type SegmentEngine interface {
	ProjectPoint(p vector.Pt, seg Segment, start vector.Pt) NearestPoint
	ProjectPointOrthogonal(p vector.Pt, seg Segment, start vector.Pt) NearestPoint
	GetPoint(pos, offset float64, seg Segment, start vector.Pt) vector.Pt
	GetNormalVector(pos float64, seg Segment, start vector.Pt) vector.Pt
	PathString(seg Segment, start vector.Pt) string
}

// closer picks between the vertical and horizontal ray hits. On a tie the
// horizontal hit wins.
func closer(vertical, horizontal *NearestPoint) *NearestPoint {
	switch {
	case vertical == nil:
		return horizontal
	case horizontal == nil:
		return vertical
	case vertical.Distance < horizontal.Distance:
		return vertical
	default:
		return horizontal
	}
}
