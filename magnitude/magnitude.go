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

// Package magnitude supports attaching magnitudes to marks and formatting
// them for display.
package magnitude

import (
	"math"
	"strconv"
	"strings"

	"github.com/ilhamster/litviz/util"
)

const (
	valueKey = "value"
)

// Value returns a PropertyUpdate that annotates a mark with its value.
func Value(v float64) util.PropertyUpdate {
	return util.DoubleProperty(valueKey, v)
}

// Fixed formats v with the provided number of decimal places.
func Fixed(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// Percent formats a fraction as a percentage with one decimal place.
func Percent(frac float64) string {
	return Fixed(frac*100, 1) + "%"
}

// Grouped formats v with thousands separators and the provided number of
// decimal places.
func Grouped(v float64, precision int) string {
	s := Fixed(math.Abs(v), precision)
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	if v < 0 && s != Fixed(0, precision) {
		b.WriteByte('-')
	}
	for idx, r := range intPart {
		if idx > 0 && (len(intPart)-idx)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// TickPrecision returns the number of decimal places needed to distinguish
// ticks spaced step apart.
func TickPrecision(step float64) int {
	step = math.Abs(step)
	if step == 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return 0
	}
	p := -int(math.Floor(math.Log10(step)))
	if p < 0 {
		return 0
	}
	return p
}

// Tick formats an axis tick value spaced step from its neighbors.
func Tick(v, step float64) string {
	return Grouped(v, TickPrecision(step))
}

// Compact formats v using the shortest representation that round-trips,
// as JavaScript prints numbers.
func Compact(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
