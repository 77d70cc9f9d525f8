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

// Arc generates annular sectors centered on the origin.
type Arc struct {
	InnerRadius  float64
	OuterRadius  float64
	CornerRadius float64
}

func asin(x float64) float64 {
	if x > 1 {
		return math.Pi / 2
	}
	if x < -1 {
		return -math.Pi / 2
	}
	return math.Asin(x)
}

func polar(r, a float64) (float64, float64) {
	return r * math.Cos(a), r * math.Sin(a)
}

// Path returns the path of the sector spanning [start, end] (radians,
// clockwise from twelve o'clock), inset by half of padAngle on each side.
func (a Arc) Path(start, end, padAngle float64) *Path {
	p := &Path{}
	r0, r1 := a.InnerRadius, a.OuterRadius
	if r1 < r0 {
		r0, r1 = r1, r0
	}
	if r1 <= epsilon {
		p.MoveTo(0, 0)
		p.Close()
		return p
	}
	a0, a1 := start-math.Pi/2, end-math.Pi/2
	da := math.Abs(a1 - a0)
	s := 1.0
	if a1 < a0 {
		s = -1
	}
	if da > tau-epsilon {
		x, y := polar(r1, a0)
		p.MoveTo(x, y)
		p.ArcTo(r1, s*math.Pi, -x, -y)
		p.ArcTo(r1, s*math.Pi, x, y)
		if r0 > epsilon {
			x, y = polar(r0, a1)
			p.MoveTo(x, y)
			p.ArcTo(r0, -s*math.Pi, -x, -y)
			p.ArcTo(r0, -s*math.Pi, x, y)
		}
		p.Close()
		return p
	}
	a00, a10, a01, a11 := a0, a1, a0, a1
	da0, da1 := da, da
	if ap := padAngle / 2; ap > epsilon {
		rp := math.Sqrt(r0*r0 + r1*r1)
		var p0 float64
		if r0 > epsilon {
			p0 = asin(rp / r0 * math.Sin(ap))
		} else {
			p0 = math.Pi / 2
		}
		p1 := asin(rp / r1 * math.Sin(ap))
		if da0 -= p0 * 2; da0 > epsilon {
			a00 += s * p0
			a10 -= s * p0
		} else {
			da0 = 0
			a00, a10 = (a0+a1)/2, (a0+a1)/2
		}
		if da1 -= p1 * 2; da1 > epsilon {
			a01 += s * p1
			a11 -= s * p1
		} else {
			da1 = 0
			a01, a11 = (a0+a1)/2, (a0+a1)/2
		}
	}
	rc := math.Min(a.CornerRadius, (r1-r0)/2)
	if rc <= epsilon || da1 <= epsilon {
		p.MoveTo(polar(r1, a01))
		if da1 > epsilon {
			x, y := polar(r1, a11)
			p.ArcTo(r1, s*da1, x, y)
		}
		if r0 > epsilon {
			p.LineTo(polar(r0, a10))
			if da0 > epsilon {
				x, y := polar(r0, a00)
				p.ArcTo(r0, -s*da0, x, y)
			}
		} else {
			p.LineTo(0, 0)
		}
		p.Close()
		return p
	}
	oc := math.Min(rc/r1, da1/2)
	p.MoveTo(polar(r1-rc, a01))
	x, y := polar(r1, a01+s*oc)
	p.ArcTo(rc, s*math.Pi/2, x, y)
	x, y = polar(r1, a11-s*oc)
	p.ArcTo(r1, s*(da1-2*oc), x, y)
	x, y = polar(r1-rc, a11)
	p.ArcTo(rc, s*math.Pi/2, x, y)
	if r0 > epsilon && da0 > epsilon {
		ic := math.Min(rc/r0, da0/2)
		p.LineTo(polar(r0+rc, a10))
		x, y = polar(r0, a10-s*ic)
		p.ArcTo(rc, s*math.Pi/2, x, y)
		x, y = polar(r0, a00+s*ic)
		p.ArcTo(r0, -s*(da0-2*ic), x, y)
		x, y = polar(r0+rc, a00)
		p.ArcTo(rc, s*math.Pi/2, x, y)
	} else if r0 > epsilon {
		p.LineTo(polar(r0, a10))
	} else {
		p.LineTo(0, 0)
	}
	p.Close()
	return p
}

// Centroid returns the midpoint of the sector spanning [start, end].
func (a Arc) Centroid(start, end float64) Point {
	r := (a.InnerRadius + a.OuterRadius) / 2
	x, y := polar(r, (start+end)/2-math.Pi/2)
	return Point{X: x, Y: y}
}
