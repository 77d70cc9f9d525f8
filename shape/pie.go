/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package shape

import (
	"math"
	"sort"
)

// Slice is the angular extent of one pie value.  Angles are in radians,
// clockwise from twelve o'clock.
type Slice struct {
	Index      int
	Value      float64
	StartAngle float64
	EndAngle   float64
	PadAngle   float64
}

// Pie lays out the provided values around a full circle, returning one
// Slice per value in input order.  Slices are placed in descending value
// order, ties keeping input order; non-positive values receive only padding.
func Pie(values []float64, padAngle float64) []Slice {
	n := len(values)
	ret := make([]Slice, n)
	if n == 0 {
		return ret
	}
	sum := 0.0
	for _, v := range values {
		if v > 0 {
			sum += v
		}
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] > values[order[b]]
	})
	p := math.Min(tau/float64(n), padAngle)
	k := 0.0
	if sum > 0 {
		k = (tau - float64(n)*p) / sum
	}
	a0 := 0.0
	for pos, idx := range order {
		v := values[idx]
		a1 := a0 + p
		if v > 0 {
			a1 += v * k
		}
		ret[idx] = Slice{
			Index:      pos,
			Value:      v,
			StartAngle: a0,
			EndAngle:   a1,
			PadAngle:   p,
		}
		a0 = a1
	}
	return ret
}

// Fraction returns the share of the full circle the receiver spans.
func (s Slice) Fraction() float64 {
	return (s.EndAngle - s.StartAngle) / tau
}
