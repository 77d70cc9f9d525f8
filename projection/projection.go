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

// Package projection maps geographic coordinates to screen coordinates.
//
// TransverseMercator is the spherical transverse Mercator projection,
// centered on a configurable meridian, with screen y growing downward.  It
// is fit to a set of geometries much like d3's fitSize: the projection is
// scaled so the geometries' projected bounds fill the target size along one
// axis, and translated to center them along the other.
package projection

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	radians = math.Pi / 180
	degrees = 180 / math.Pi
	// Points on the projection's singular meridians are nudged inward.
	limit = 1 - 1e-9
)

// TransverseMercator is a transverse Mercator projection.  The zero value
// is not useful; use NewTransverseMercator.
type TransverseMercator struct {
	rotate float64
	k      float64
	tx, ty float64
}

// NewTransverseMercator returns a transverse Mercator projection rotated by
// the provided longitude, in degrees: a rotation of 100 centers the
// projection on the 100°W meridian.  It has unit scale and no translation.
func NewTransverseMercator(rotate float64) TransverseMercator {
	return TransverseMercator{rotate: rotate, k: 1}
}

// Scale returns the receiver's scale, in pixels per radian.
func (tm TransverseMercator) Scale() float64 {
	return tm.k
}

// Translate returns the screen position of the projection's center.
func (tm TransverseMercator) Translate() orb.Point {
	return orb.Point{tm.tx, tm.ty}
}

// raw returns the unscaled projection of a longitude/latitude point, with y
// growing downward.
func (tm TransverseMercator) raw(p orb.Point) (float64, float64) {
	lambda := math.Remainder((p[0]+tm.rotate)*radians, 2*math.Pi)
	phi := p[1] * radians
	b := math.Max(-limit, math.Min(limit, math.Cos(phi)*math.Sin(lambda)))
	return math.Atanh(b), -math.Atan2(math.Sin(phi), math.Cos(phi)*math.Cos(lambda))
}

// Project maps a longitude/latitude point, in degrees, to the screen.
func (tm TransverseMercator) Project(p orb.Point) orb.Point {
	x, y := tm.raw(p)
	return orb.Point{tm.k*x + tm.tx, tm.k*y + tm.ty}
}

// Invert maps a screen point back to longitude/latitude, in degrees.
func (tm TransverseMercator) Invert(p orb.Point) orb.Point {
	x := (p[0] - tm.tx) / tm.k
	y := -(p[1] - tm.ty) / tm.k
	phi := math.Asin(math.Sin(y) / math.Cosh(x))
	lambda := math.Atan2(math.Sinh(x), math.Cos(y))
	return orb.Point{lambda*degrees - tm.rotate, phi * degrees}
}

// MultiPolygon projects every point of the provided geometry.
func (tm TransverseMercator) MultiPolygon(mp orb.MultiPolygon) orb.MultiPolygon {
	ret := make(orb.MultiPolygon, len(mp))
	for i, poly := range mp {
		ret[i] = make(orb.Polygon, len(poly))
		for j, ring := range poly {
			ret[i][j] = make(orb.Ring, len(ring))
			for k, pt := range ring {
				ret[i][j][k] = tm.Project(pt)
			}
		}
	}
	return ret
}

// FitSize returns a copy of the receiver scaled and translated so that the
// provided geometries fill a width x height viewport at the origin.  Bounds
// are taken over the geometries' vertices.  If there are no vertices, the
// receiver is returned unchanged.
func (tm TransverseMercator) FitSize(width, height float64, mps ...orb.MultiPolygon) TransverseMercator {
	var b orb.Bound
	empty := true
	for _, mp := range mps {
		for _, poly := range mp {
			for _, ring := range poly {
				for _, pt := range ring {
					x, y := tm.raw(pt)
					rp := orb.Point{x, y}
					if empty {
						b, empty = orb.Bound{Min: rp, Max: rp}, false
						continue
					}
					b = b.Extend(rp)
				}
			}
		}
	}
	if empty {
		return tm
	}
	dx, dy := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	k := math.Inf(1)
	if dx > 0 {
		k = width / dx
	}
	if dy > 0 {
		k = math.Min(k, height/dy)
	}
	if math.IsInf(k, 1) {
		k = 1
	}
	tm.k = k
	tm.tx = (width - k*(b.Min[0]+b.Max[0])) / 2
	tm.ty = (height - k*(b.Min[1]+b.Max[1])) / 2
	return tm
}
