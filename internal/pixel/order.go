// Copyright 2025 the rawscan authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pixel

import "fmt"

// ColorOrder is the order in which a sensor acquires the three color
// channels of one logical line.
type ColorOrder int

const (
	OrderRGB ColorOrder = iota
	OrderGBR
	OrderBGR
)

// Slots maps an acquisition line index (0, 1, 2) to the logical channel
// (0=R, 1=G, 2=B) that line carries.
func (o ColorOrder) Slots() [3]int {
	switch o {
	case OrderGBR:
		return [3]int{1, 2, 0}
	case OrderBGR:
		return [3]int{2, 1, 0}
	}
	return [3]int{0, 1, 2}
}

func (o ColorOrder) String() string {
	switch o {
	case OrderRGB:
		return "rgb"
	case OrderGBR:
		return "gbr"
	case OrderBGR:
		return "bgr"
	}
	return fmt.Sprintf("pixel.ColorOrder(%d)", int(o))
}
