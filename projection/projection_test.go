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

package projection

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/paulmach/orb"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestProject(t *testing.T) {
	tm := NewTransverseMercator(100)
	for _, test := range []struct {
		description string
		p           orb.Point
		want        orb.Point
	}{
		{"center", orb.Point{-100, 0}, orb.Point{0, 0}},
		{"north along the central meridian", orb.Point{-100, 45}, orb.Point{0, -math.Pi / 4}},
		{"south along the central meridian", orb.Point{-100, -30}, orb.Point{0, math.Pi / 6}},
		{"east along the equator", orb.Point{-70, 0}, orb.Point{math.Atanh(0.5), 0}},
	} {
		t.Run(test.description, func(t *testing.T) {
			if diff := cmp.Diff(test.want, tm.Project(test.p), approx); diff != "" {
				t.Errorf("Project() diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInvertRoundTrips(t *testing.T) {
	tm := NewTransverseMercator(100).FitSize(500, 300, orb.MultiPolygon{{{
		{-141, 42}, {-52, 42}, {-52, 83}, {-141, 83}, {-141, 42},
	}}})
	for _, p := range []orb.Point{{-123.1, 49.3}, {-79.4, 43.7}, {-63.6, 44.6}, {-114.4, 62.5}} {
		if diff := cmp.Diff(p, tm.Invert(tm.Project(p)), approx); diff != "" {
			t.Errorf("Invert(Project(%v)) diff (-want +got):\n%s", p, diff)
		}
	}
}

func TestFitSize(t *testing.T) {
	region := orb.MultiPolygon{{{
		{-110, 40}, {-90, 40}, {-90, 60}, {-110, 60}, {-110, 40},
	}}}
	const width, height = 400.0, 200.0
	tm := NewTransverseMercator(100).FitSize(width, height, region)
	b := tm.MultiPolygon(region).Bound()
	const eps = 1e-6
	if b.Min[0] < -eps || b.Min[1] < -eps || b.Max[0] > width+eps || b.Max[1] > height+eps {
		t.Fatalf("projected bounds %v exceed the %vx%v viewport", b, width, height)
	}
	// The region is taller than the viewport's aspect ratio, so it spans
	// the full height and is centered horizontally.
	if diff := cmp.Diff([]float64{0, height}, []float64{b.Min[1], b.Max[1]}, cmpopts.EquateApprox(0, eps)); diff != "" {
		t.Errorf("vertical extent diff (-want +got):\n%s", diff)
	}
	if got := b.Min[0] + b.Max[0]; math.Abs(got-width) > eps {
		t.Errorf("horizontal extent %v-%v is not centered", b.Min[0], b.Max[0])
	}

	if got := NewTransverseMercator(100).FitSize(width, height); got.Scale() != 1 {
		t.Errorf("FitSize() with no geometry changed the scale to %v", got.Scale())
	}
}
