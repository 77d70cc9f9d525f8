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

// Package transition describes timed attribute animations.  A Tween
// interpolates one attribute of one scene element from a start value to an
// end value over a duration, after an optional delay, through an easing
// function.  Tweens are data: they can be sampled at any elapsed time, so a
// scene is fully deterministic given the time since its draw.
package transition

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Ease maps normalized time in [0, 1] to normalized progress.
type Ease func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 {
	return t
}

// CubicInOut is symmetric cubic easing, the default easing for transitions.
func CubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// EaseName returns the name of a predefined easing, for encoding tweens
// into responses.  A nil easing is CubicInOut; unknown easings are "custom".
func EaseName(e Ease) string {
	if e == nil {
		return "cubic-in-out"
	}
	switch reflect.ValueOf(e).Pointer() {
	case reflect.ValueOf(Linear).Pointer():
		return "linear"
	case reflect.ValueOf(CubicInOut).Pointer():
		return "cubic-in-out"
	}
	return "custom"
}

// Interpolator renders an attribute value at eased progress t in [0, 1].
type Interpolator func(t float64) string

// Tween animates a single attribute.
type Tween struct {
	Attr        string
	Delay       time.Duration
	Duration    time.Duration
	Ease        Ease
	Interpolate Interpolator
}

// End returns the elapsed time at which the receiver completes.
func (tw Tween) End() time.Duration {
	return tw.Delay + tw.Duration
}

// Progress returns the eased progress of the receiver at the provided
// elapsed time: 0 before its delay has passed, 1 once it has ended.
func (tw Tween) Progress(elapsed time.Duration) float64 {
	if elapsed <= tw.Delay {
		if tw.Duration == 0 && elapsed == tw.Delay {
			return 1
		}
		return 0
	}
	if elapsed >= tw.End() {
		return 1
	}
	t := float64(elapsed-tw.Delay) / float64(tw.Duration)
	ease := tw.Ease
	if ease == nil {
		ease = CubicInOut
	}
	return ease(t)
}

// At returns the receiver's attribute value at the provided elapsed time.
func (tw Tween) At(elapsed time.Duration) string {
	return tw.Interpolate(tw.Progress(elapsed))
}

// End returns the time by which all provided tweens have completed.
func End(tweens []Tween) time.Duration {
	var ret time.Duration
	for _, tw := range tweens {
		if e := tw.End(); e > ret {
			ret = e
		}
	}
	return ret
}

// Format renders a number as an attribute value, rounded to three decimal
// places.
func Format(v float64) string {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		r = 0 // no negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Number interpolates between two numbers.
func Number(from, to float64) Interpolator {
	return func(t float64) string {
		return Format(Lerp(from, to, t))
	}
}

// Translate interpolates between two translations, rendered as SVG
// transforms.
func Translate(x0, y0, x1, y1 float64) Interpolator {
	return func(t float64) string {
		return TranslateAttr(Lerp(x0, x1, t), Lerp(y0, y1, t))
	}
}

// TranslateAttr renders a translation as an SVG transform.
func TranslateAttr(x, y float64) string {
	return fmt.Sprintf("translate(%s,%s)", Format(x), Format(y))
}

// Discrete jumps from one value to another once the tween completes.
func Discrete(from, to string) Interpolator {
	return func(t float64) string {
		if t >= 1 {
			return to
		}
		return from
	}
}

// New returns a Tween of the provided attribute.
func New(attr string, delay, duration time.Duration, ease Ease, interp Interpolator) Tween {
	return Tween{
		Attr:        attr,
		Delay:       delay,
		Duration:    duration,
		Ease:        ease,
		Interpolate: interp,
	}
}

// DashReveal returns a Tween drawing a stroke of the provided length from
// nothing to complete by animating its dash offset.  The element's
// stroke-dasharray must be set to DashArray(length).
func DashReveal(length float64, duration time.Duration) Tween {
	return New("stroke-dashoffset", 0, duration, Linear, Number(length, 0))
}

// DashArray returns the stroke-dasharray that DashReveal animates against.
func DashArray(length float64) string {
	return Format(length) + " " + Format(length)
}
