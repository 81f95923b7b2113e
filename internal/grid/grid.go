/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package grid snaps coordinates to the fixed editing grid. Every coordinate
// derived from pointer input goes through here so that orthogonal projections
// can compare coordinates exactly.
package grid

import (
	"math"

	"diagramroute/internal/vector"
)

// Unit is the snapping quantum in diagram units.
const Unit = 10.0

// Round snaps v to the nearest grid line; halves round up.
func Round(v float64) float64 { return math.Floor(v/Unit+0.5) * Unit }

func Floor(v float64) float64 { return math.Floor(v/Unit) * Unit }
func Ceil(v float64) float64  { return math.Ceil(v/Unit) * Unit }

// RoundPoint snaps both coordinates of p.
func RoundPoint(p vector.Pt) vector.Pt { return vector.Pt{X: Round(p.X), Y: Round(p.Y)} }

// Aligned reports whether v already sits on a grid line.
func Aligned(v float64) bool { return Round(v) == v }
