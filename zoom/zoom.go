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

// Package zoom implements pan and zoom state for charts.
//
// A Transform scales by K and then translates by (X, Y).  A Behavior bounds
// the transforms reachable by wheel, pan and programmatic zooms: K is clamped
// to the scale extent, and the translation is constrained so that the
// viewport, mapped back through the transform, stays within the translate
// extent whenever it fits (and is centered on it otherwise).
//
// Behaviors are stateless; charts hold the current Transform:
//
//	b := zoom.Behavior{ScaleExtent: [2]float64{1, 50}, ...}
//	if next, ok := b.Wheel(chart.transform, ev); ok {
//	  chart.transform = next
//	  chart.redraw()
//	}
package zoom

import (
	"fmt"
	"math"

	"github.com/ilhamster/litviz/scale"
	"github.com/ilhamster/litviz/transition"
)

// Point is a position in screen coordinates.
type Point struct {
	X, Y float64
}

// Extent is a rectangle given by its minimum and maximum corners.
type Extent [2]Point

// Unbounded is an extent containing every point.
var Unbounded = Extent{
	{math.Inf(-1), math.Inf(-1)},
	{math.Inf(1), math.Inf(1)},
}

// Transform is a zoom transform.
type Transform struct {
	K, X, Y float64
}

// Identity is the transform that changes nothing.
var Identity = Transform{K: 1}

// Apply maps a point through the receiver.
func (t Transform) Apply(p Point) Point {
	return Point{p.X*t.K + t.X, p.Y*t.K + t.Y}
}

// ApplyX maps an x coordinate through the receiver.
func (t Transform) ApplyX(x float64) float64 {
	return x*t.K + t.X
}

// Invert maps a point back through the receiver.
func (t Transform) Invert(p Point) Point {
	return Point{(p.X - t.X) / t.K, (p.Y - t.Y) / t.K}
}

// InvertX maps an x coordinate back through the receiver.
func (t Transform) InvertX(x float64) float64 {
	return (x - t.X) / t.K
}

// InvertY maps a y coordinate back through the receiver.
func (t Transform) InvertY(y float64) float64 {
	return (y - t.Y) / t.K
}

// RescaleX returns a copy of the provided x scale whose domain is
// transformed by the receiver.
func (t Transform) RescaleX(s scale.Linear) scale.Linear {
	r0, r1 := s.Range()
	return s.WithDomain(s.Invert(t.InvertX(r0)), s.Invert(t.InvertX(r1)))
}

// translate translates the receiver by (x, y) in its own scaled coordinates.
func (t Transform) translate(x, y float64) Transform {
	return Transform{t.K, t.X + t.K*x, t.Y + t.K*y}
}

// String renders the receiver as an SVG transform.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%s,%s) scale(%s)",
		transition.Format(t.X), transition.Format(t.Y), transition.Format(t.K))
}

// DeltaMode is the unit of a wheel event's delta.
type DeltaMode int

// Wheel delta units.
const (
	DeltaPixel DeltaMode = iota
	DeltaLine
	DeltaPage
)

// WheelEvent is a mouse wheel event at a screen position.
type WheelEvent struct {
	Position  Point
	DeltaY    float64
	DeltaMode DeltaMode
	CtrlKey   bool
}

// delta returns the base-2 logarithm of the zoom factor of the receiver.
func (ev WheelEvent) delta() float64 {
	factor := 0.002
	switch ev.DeltaMode {
	case DeltaLine:
		factor = 0.05
	case DeltaPage:
		factor = 1
	}
	return -ev.DeltaY * factor
}

// Behavior bounds zoom transforms.
type Behavior struct {
	// The minimum and maximum K.
	ScaleExtent [2]float64
	// The region the viewport must remain within.
	TranslateExtent Extent
	// The visible region, in untransformed coordinates.
	Viewport Extent
}

func (b Behavior) clampK(k float64) float64 {
	return math.Max(b.ScaleExtent[0], math.Min(b.ScaleExtent[1], k))
}

func constrainAxis(d0, d1 float64) float64 {
	if d1 > d0 {
		return (d0 + d1) / 2
	}
	if v := math.Min(0, d0); v != 0 {
		return v
	}
	return math.Max(0, d1)
}

// Constrain returns the provided transform, translated as needed to keep the
// viewport within the translate extent.
func (b Behavior) Constrain(t Transform) Transform {
	dx0 := t.InvertX(b.Viewport[0].X) - b.TranslateExtent[0].X
	dx1 := t.InvertX(b.Viewport[1].X) - b.TranslateExtent[1].X
	dy0 := t.InvertY(b.Viewport[0].Y) - b.TranslateExtent[0].Y
	dy1 := t.InvertY(b.Viewport[1].Y) - b.TranslateExtent[1].Y
	dx, dy := constrainAxis(dx0, dx1), constrainAxis(dy0, dy1)
	if math.IsNaN(dx) {
		dx = 0
	}
	if math.IsNaN(dy) {
		dy = 0
	}
	return t.translate(dx, dy)
}

// ScaleTo returns the provided transform rescaled to k (clamped), keeping
// the point p fixed on screen.
func (b Behavior) ScaleTo(t Transform, k float64, p Point) Transform {
	k = b.clampK(k)
	p1 := t.Invert(p)
	return b.Constrain(Transform{k, p.X - p1.X*k, p.Y - p1.Y*k})
}

// Wheel applies a wheel event to the provided transform.  It returns false,
// and the transform unchanged, if the event is not handled: if the control
// key is held, or if the zoom is already at the limit of the scale extent.
func (b Behavior) Wheel(t Transform, ev WheelEvent) (Transform, bool) {
	if ev.CtrlKey {
		return t, false
	}
	k := b.clampK(t.K * math.Pow(2, ev.delta()))
	if k == t.K {
		return t, false
	}
	return b.ScaleTo(t, k, ev.Position), true
}

// Pan returns the provided transform dragged by (dx, dy) screen pixels.
func (b Behavior) Pan(t Transform, dx, dy float64) Transform {
	return b.Constrain(Transform{t.K, t.X + dx, t.Y + dy})
}
