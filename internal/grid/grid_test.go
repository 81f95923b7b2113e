/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package grid

import (
	"testing"

	"diagramroute/internal/vector"
)

func TestRoundIdempotent(t *testing.T) {
	for _, v := range []float64{-123.4, -15, -5, -0.1, 0, 4.9, 5, 14.999, 49, 131.7, 1e6 + 3} {
		r := Round(v)
		if Round(r) != r {
			t.Fatalf("Round(Round(%v)) = %v, want %v", v, Round(r), r)
		}
		if !Aligned(r) {
			t.Fatalf("Round(%v) = %v is not grid aligned", v, r)
		}
	}
}

func TestFloorCeilBracket(t *testing.T) {
	for _, v := range []float64{-17, -10, 0, 3, 10, 49.5, 131} {
		f, c := Floor(v), Ceil(v)
		if f > v || c < v {
			t.Fatalf("Floor/Ceil(%v) = %v/%v do not bracket", v, f, c)
		}
		if c-f > Unit {
			t.Fatalf("Floor/Ceil(%v) = %v/%v more than one unit apart", v, f, c)
		}
	}
	for _, v := range []float64{-30, 0, 40} {
		if Floor(v) != v || Ceil(v) != v || Round(v) != v {
			t.Fatalf("grid aligned %v must be a fixed point", v)
		}
	}
}

func TestRoundHalfUp(t *testing.T) {
	if got := Round(5); got != 10 {
		t.Fatalf("Round(5) = %v, want 10", got)
	}
	if got := Round(-5); got != 0 {
		t.Fatalf("Round(-5) = %v, want 0", got)
	}
	if got := Round(-15) + 20; got != Round(-15+20) {
		t.Fatalf("Round must commute with grid translations")
	}
}

func TestRoundPoint(t *testing.T) {
	if p := RoundPoint(vector.P(131, -4)); p != vector.P(130, 0) {
		t.Fatalf("RoundPoint = %v", p)
	}
}
