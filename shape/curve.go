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

import "math"

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// monotoneX carries the state of a monotone cubic interpolation in x
// (Steffen's method), which preserves monotonicity of y between points.
type monotoneX struct {
	p              *Path
	x0, y0, x1, y1 float64
	t0             float64
	point          int
}

// slope3 returns the slope at the middle of three consecutive points.
func (m *monotoneX) slope3(x2, y2 float64) float64 {
	h0 := m.x1 - m.x0
	h1 := x2 - m.x1
	s0 := divOr(m.y1-m.y0, h0, h1 < 0)
	s1 := divOr(y2-m.y1, h1, h0 < 0)
	p := (s0*h1 + s1*h0) / (h0 + h1)
	ret := (sign(s0) + sign(s1)) * math.Min(math.Min(math.Abs(s0), math.Abs(s1)), 0.5*math.Abs(p))
	if math.IsNaN(ret) {
		return 0
	}
	return ret
}

// divOr divides num by den, substituting a signed zero denominator when den
// is zero.
func divOr(num, den float64, negZero bool) float64 {
	if den == 0 {
		if negZero {
			den = math.Copysign(0, -1)
		}
	}
	return num / den
}

// slope2 returns the slope at an endpoint given the slope t at its neighbor.
func (m *monotoneX) slope2(t float64) float64 {
	h := m.x1 - m.x0
	if h != 0 {
		return (3*(m.y1-m.y0)/h - t) / 2
	}
	return t
}

func (m *monotoneX) curve(t0, t1 float64) {
	dx := (m.x1 - m.x0) / 3
	m.p.BezierCurveTo(m.x0+dx, m.y0+dx*t0, m.x1-dx, m.y1-dx*t1, m.x1, m.y1)
}

func (m *monotoneX) add(x, y float64) {
	t1 := math.NaN()
	if x == m.x1 && y == m.y1 && m.point > 0 {
		return
	}
	switch m.point {
	case 0:
		m.point = 1
		m.p.MoveTo(x, y)
	case 1:
		m.point = 2
	case 2:
		m.point = 3
		t1 = m.slope3(x, y)
		m.curve(m.slope2(t1), t1)
	default:
		t1 = m.slope3(x, y)
		m.curve(m.t0, t1)
	}
	m.x0, m.x1 = m.x1, x
	m.y0, m.y1 = m.y1, y
	m.t0 = t1
}

func (m *monotoneX) end() {
	switch m.point {
	case 2:
		m.p.LineTo(m.x1, m.y1)
	case 3:
		m.curve(m.t0, m.slope2(m.t0))
	}
}

// MonotoneX returns a path through the provided points, ordered by X, as a
// monotone cubic spline.  Consecutive coincident points are ignored.
func MonotoneX(pts []Point) *Path {
	m := &monotoneX{p: &Path{}}
	for _, pt := range pts {
		m.add(pt.X, pt.Y)
	}
	m.end()
	return m.p
}
