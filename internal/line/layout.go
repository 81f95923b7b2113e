/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package line

import "fmt"

// SegmentLayout selects how a leg between two points is routed:
// HorizontalVertical leaves horizontally and turns vertical,
// VerticalHorizontal does the opposite.
type SegmentLayout uint8

const (
	HorizontalVertical SegmentLayout = iota
	VerticalHorizontal
)

// Invert returns the layout seen from the other end of the leg.
func (l SegmentLayout) Invert() SegmentLayout {
	if l == HorizontalVertical {
		return VerticalHorizontal
	}
	return HorizontalVertical
}

func (l SegmentLayout) String() string {
	switch l {
	case HorizontalVertical:
		return "HORIZONTAL_VERTICAL"
	case VerticalHorizontal:
		return "VERTICAL_HORIZONTAL"
	default:
		return fmt.Sprintf("SegmentLayout(%d)", uint8(l))
	}
}

func (l SegmentLayout) MarshalText() ([]byte, error) {
	if l > VerticalHorizontal {
		return nil, fmt.Errorf("invalid segment layout %d", uint8(l))
	}
	return []byte(l.String()), nil
}

func (l *SegmentLayout) UnmarshalText(b []byte) error {
	switch string(b) {
	case "HORIZONTAL_VERTICAL", "":
		*l = HorizontalVertical
	case "VERTICAL_HORIZONTAL":
		*l = VerticalHorizontal
	default:
		return fmt.Errorf("unknown segment layout %q", string(b))
	}
	return nil
}
