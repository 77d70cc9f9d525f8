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

// Package scale provides linear scales mapping data domains onto pixel
// ranges, with 'nice' domain rounding and human-friendly tick generation.
//
// A scale for a line chart's y axis might be built like:
//
//	y := scale.NewLinear(0, maxY, innerHeight, 0).Nice(10)
//	for _, tick := range y.Ticks(10) {
//	  drawTick(y.Apply(tick))
//	}
package scale

import (
	"math"
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// jsRound rounds half-values toward positive infinity.
func jsRound(x float64) float64 {
	return math.Floor(x + 0.5)
}

func tickSpec(start, stop, count float64) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	err := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case err >= e10:
		factor = 10
	case err >= e5:
		factor = 5
	case err >= e2:
		factor = 2
	}
	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = jsRound(start * inc)
		i2 = jsRound(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = jsRound(start / inc)
		i2 = jsRound(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}
	if i2 < i1 && 0.5 <= count && count < 2 {
		return tickSpec(start, stop, count*2)
	}
	return i1, i2, inc
}

// Ticks returns approximately count+1 uniformly-spaced, round values between
// start and stop inclusive.  Tick steps are powers of ten multiplied by 1, 2
// or 5.  Ticks are returned in the order of start and stop.
func Ticks(start, stop float64, count int) []float64 {
	if count <= 0 || math.IsNaN(start) || math.IsNaN(stop) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	reverse := stop < start
	var i1, i2, inc float64
	if reverse {
		i1, i2, inc = tickSpec(stop, start, float64(count))
	} else {
		i1, i2, inc = tickSpec(start, stop, float64(count))
	}
	if !(i2 >= i1) {
		return nil
	}
	n := int(i2-i1) + 1
	ret := make([]float64, n)
	for i := 0; i < n; i++ {
		var k float64
		if reverse {
			k = i2 - float64(i)
		} else {
			k = i1 + float64(i)
		}
		if inc < 0 {
			ret[i] = k / -inc
		} else {
			ret[i] = k * inc
		}
	}
	return ret
}

// TickIncrement returns the tick step Ticks would use for the provided
// arguments.  A negative result -n means the step is 1/n; this preserves
// precision for fractional steps.
func TickIncrement(start, stop float64, count int) float64 {
	_, _, inc := tickSpec(start, stop, float64(count))
	return inc
}

// TickStep returns the absolute tick step, in domain units, Ticks would use.
func TickStep(start, stop float64, count int) float64 {
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	inc := TickIncrement(start, stop, count)
	if inc < 0 {
		inc = 1 / -inc
	}
	if reverse {
		return -inc
	}
	return inc
}

// Extent returns the minimum and maximum of the provided values.  NaN values
// are ignored.  ok is false if no values remain.
func Extent(values []float64) (min, max float64, ok bool) {
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if !ok {
			min, max, ok = v, v, true
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, ok
}

// Linear is a continuous linear mapping from a domain to a range.  A Linear
// is a value; its With* and Nice methods return modified copies.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
	clamp  bool
}

// NewLinear returns a new Linear scale mapping [d0, d1] onto [r0, r1].
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Domain returns the receiver's domain.
func (l Linear) Domain() (float64, float64) {
	return l.d0, l.d1
}

// Range returns the receiver's range.
func (l Linear) Range() (float64, float64) {
	return l.r0, l.r1
}

// WithDomain returns a copy of the receiver with the provided domain.
func (l Linear) WithDomain(d0, d1 float64) Linear {
	l.d0, l.d1 = d0, d1
	return l
}

// WithRange returns a copy of the receiver with the provided range.
func (l Linear) WithRange(r0, r1 float64) Linear {
	l.r0, l.r1 = r0, r1
	return l
}

// WithClamp returns a copy of the receiver which clamps its outputs to its
// range (and inverted outputs to its domain) if clamp is true.
func (l Linear) WithClamp(clamp bool) Linear {
	l.clamp = clamp
	return l
}

func normalize(a, b, x float64) float64 {
	if b-a == 0 || math.IsNaN(b-a) {
		if math.IsNaN(b - a) {
			return math.NaN()
		}
		return 0.5
	}
	return (x - a) / (b - a)
}

// Apply maps the domain value x into the receiver's range.  Degenerate
// domains map every value to the middle of the range.
func (l Linear) Apply(x float64) float64 {
	t := normalize(l.d0, l.d1, x)
	if l.clamp {
		t = math.Max(0, math.Min(1, t))
	}
	return l.r0 + t*(l.r1-l.r0)
}

// Invert maps the range value y back into the receiver's domain.
func (l Linear) Invert(y float64) float64 {
	t := normalize(l.r0, l.r1, y)
	if l.clamp {
		t = math.Max(0, math.Min(1, t))
	}
	return l.d0 + t*(l.d1-l.d0)
}

// Ticks returns approximately count representative values from the
// receiver's domain.
func (l Linear) Ticks(count int) []float64 {
	return Ticks(l.d0, l.d1, count)
}

// Nice returns a copy of the receiver whose domain is extended so that it
// starts and ends on round values, as Ticks would produce for count.
func (l Linear) Nice(count int) Linear {
	start, stop := l.d0, l.d1
	if start == stop || math.IsNaN(start) || math.IsNaN(stop) || count <= 0 {
		return l
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	var prestep float64
	converged := false
	for maxIter := 10; maxIter > 0 && !converged; maxIter-- {
		step := TickIncrement(start, stop, count)
		switch {
		case step == prestep:
			converged = true
		case step > 0:
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		case step < 0:
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		default:
			return l
		}
		prestep = step
	}
	if !converged {
		return l
	}
	if reverse {
		start, stop = stop, start
	}
	l.d0, l.d1 = start, stop
	return l
}
