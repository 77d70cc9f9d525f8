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

// Package shape generates SVG path data for chart marks: monotone line
// curves, polylines and rings, and padded, rounded annular pie slices.  Paths
// track their drawn length so strokes can be revealed with a dash animation.
package shape

import (
	"math"
	"strings"

	"github.com/ilhamster/litviz/transition"
)

const (
	epsilon = 1e-12
	tau     = 2 * math.Pi
	// Cubic segments are measured by subdivision.
	bezierSteps = 16
)

// Path accumulates SVG path data.  The zero value is an empty path.
type Path struct {
	b              strings.Builder
	startX, startY float64
	x, y           float64
	length         float64
}

func (p *Path) cmd(c byte, coords ...float64) {
	p.b.WriteByte(c)
	for idx, v := range coords {
		if idx > 0 {
			p.b.WriteByte(',')
		}
		p.b.WriteString(transition.Format(v))
	}
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) {
	p.cmd('M', x, y)
	p.startX, p.startY, p.x, p.y = x, y, x, y
}

// LineTo draws a straight segment to (x, y).
func (p *Path) LineTo(x, y float64) {
	p.cmd('L', x, y)
	p.length += math.Hypot(x-p.x, y-p.y)
	p.x, p.y = x, y
}

// BezierCurveTo draws a cubic Bézier segment to (x, y).
func (p *Path) BezierCurveTo(x1, y1, x2, y2, x, y float64) {
	p.cmd('C', x1, y1, x2, y2, x, y)
	px, py := p.x, p.y
	for i := 1; i <= bezierSteps; i++ {
		t := float64(i) / bezierSteps
		mt := 1 - t
		bx := mt*mt*mt*p.x + 3*mt*mt*t*x1 + 3*mt*t*t*x2 + t*t*t*x
		by := mt*mt*mt*p.y + 3*mt*mt*t*y1 + 3*mt*t*t*y2 + t*t*t*y
		p.length += math.Hypot(bx-px, by-py)
		px, py = bx, by
	}
	p.x, p.y = x, y
}

// ArcTo draws a circular arc of radius r, spanning the signed angle (in
// radians, positive clockwise on screen), ending at (x, y).
func (p *Path) ArcTo(r, angle, x, y float64) {
	large, sweep := 0.0, 0.0
	if math.Abs(angle) > math.Pi {
		large = 1
	}
	if angle > 0 {
		sweep = 1
	}
	p.cmd('A', r, r, 0, large, sweep, x, y)
	p.length += r * math.Abs(angle)
	p.x, p.y = x, y
}

// Close closes the current subpath.
func (p *Path) Close() {
	p.b.WriteByte('Z')
	p.length += math.Hypot(p.startX-p.x, p.startY-p.y)
	p.x, p.y = p.startX, p.startY
}

// String returns the accumulated path data.
func (p *Path) String() string {
	return p.b.String()
}

// Length returns the drawn length of the path.
func (p *Path) Length() float64 {
	return p.length
}

// Empty returns true if nothing has been drawn.
func (p *Path) Empty() bool {
	return p.b.Len() == 0
}

// Point is a two-dimensional screen coordinate.
type Point struct {
	X, Y float64
}

// Ring appends a closed polygon ring to the provided path.  Rings with fewer
// than two points are skipped.
func Ring(p *Path, pts []Point) {
	if len(pts) < 2 {
		return
	}
	p.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		p.LineTo(pt.X, pt.Y)
	}
	p.Close()
}
