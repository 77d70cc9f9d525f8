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

package linechart

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/litviz/resize"
	"github.com/ilhamster/litviz/scene"
	xychart "github.com/ilhamster/litviz/xy_chart"
	"github.com/ilhamster/litviz/zoom"
)

const ms = time.Millisecond

var testPoints = []Point{
	{1900, 10},
	{1950, 50},
	{2000, 97},
}

func mount(t *testing.T, width, height int, points []Point) (*Chart, *resize.Container) {
	t.Helper()
	container := resize.NewContainer(resize.Size{Width: width, Height: height})
	chart := New(Props{XLabel: "Year", YLabel: "Words"})
	chart.Mount(container)
	t.Cleanup(chart.Unmount)
	if points != nil {
		chart.Load(points)
	}
	return chart, container
}

func attr(t *testing.T, el *scene.Element, name string) string {
	t.Helper()
	if el == nil {
		t.Fatalf("missing element")
	}
	v, ok := el.Attr(name)
	if !ok {
		t.Fatalf("element %s.%s has no attribute %q", el.Kind, el.Class, name)
	}
	return v
}

func TestLoadingAndDegenerateData(t *testing.T) {
	for _, test := range []struct {
		description  string
		points       []Point
		wantLoading  bool
		wantChildren int
	}{{
		description:  "not loaded",
		points:       nil,
		wantLoading:  true,
		wantChildren: 1,
	}, {
		description:  "empty",
		points:       []Point{},
		wantChildren: 0,
	}, {
		description:  "single point",
		points:       []Point{{1900, 3}},
		wantChildren: 0,
	}} {
		t.Run(test.description, func(t *testing.T) {
			chart, _ := mount(t, 800, 400, test.points)
			s := chart.Scene()
			if got := len(s.Find(xychart.ClassLoading)) == 1; got != test.wantLoading {
				t.Errorf("loading placeholder present = %t, want %t", got, test.wantLoading)
			}
			if got := len(s.Root.Children); got != test.wantChildren {
				t.Errorf("root has %d children, want %d", got, test.wantChildren)
			}
			if len(s.Find(ClassLine)) != 0 || len(s.Find(ClassDot)) != 0 {
				t.Errorf("degenerate data drew marks")
			}
		})
	}
}

func TestDraw(t *testing.T) {
	chart, _ := mount(t, 800, 400, testPoints)
	s := chart.Scene()
	if s.Width != 800 || s.Height != 400 {
		t.Errorf("scene size = %dx%d, want 800x400", s.Width, s.Height)
	}
	plot := chart.Plot()
	if d0, d1 := plot.Y.Domain(); d0 != 0 || d1 != 100 {
		t.Errorf("y domain = [%v, %v], want [0, 100]", d0, d1)
	}
	if d0, d1 := plot.X.Domain(); d0 != 1900 || d1 != 2000 {
		t.Errorf("x domain = [%v, %v], want [1900, 2000]", d0, d1)
	}
	lines := s.Find(ClassLine)
	if len(lines) != 1 {
		t.Fatalf("found %d lines, want 1", len(lines))
	}
	line := lines[0]
	if got := attr(t, line, "stroke-width"); got != "1.5" {
		t.Errorf("stroke-width = %s, want 1.5", got)
	}
	dashArray := attr(t, line, "stroke-dasharray")
	length, _, _ := strings.Cut(dashArray, " ")
	if got := attr(t, line.At(0), "stroke-dashoffset"); got != length {
		t.Errorf("initial stroke-dashoffset = %s, want %s", got, length)
	}
	if got := attr(t, line.At(1500*ms), "stroke-dashoffset"); got != "0" {
		t.Errorf("final stroke-dashoffset = %s, want 0", got)
	}
	if got := s.Duration(); got != 1500*ms {
		t.Errorf("scene duration = %v, want 1.5s", got)
	}

	dots := s.Find(ClassDot)
	if len(dots) != len(testPoints) {
		t.Fatalf("found %d dots, want %d", len(dots), len(testPoints))
	}
	for _, test := range []struct {
		key     string
		elapsed time.Duration
		want    string
	}{
		{"0", 0, "0"},
		{"0", 1000 * ms, "2.5"},
		{"2", 20 * ms, "0"},
		{"2", 1020 * ms, "2.5"},
	} {
		if got := attr(t, s.FindKey(ClassDot, test.key).At(test.elapsed), "r"); got != test.want {
			t.Errorf("dot %s r at %v = %s, want %s", test.key, test.elapsed, got, test.want)
		}
	}
	if got := attr(t, s.FindKey(ClassDot, "2"), "cy"); got != "9.45" {
		t.Errorf("dot 2 cy = %s, want 9.45", got)
	}
	if got := len(s.Find(xychart.ClassHitArea)); got != len(testPoints) {
		t.Errorf("found %d hit areas, want %d", got, len(testPoints))
	}
	if got := attr(t, s.FindKey(xychart.ClassHitArea, "1"), "r"); got != "7" {
		t.Errorf("hit area r = %s, want 7", got)
	}
	if len(s.Find(xychart.ClassStripe)) == 0 {
		t.Errorf("no stripes drawn")
	}
}

func TestNarrowContainer(t *testing.T) {
	chart, _ := mount(t, 500, 300, testPoints)
	s := chart.Scene()
	if got := attr(t, s.Find(ClassLine)[0], "stroke-width"); got != "1" {
		t.Errorf("narrow stroke-width = %s, want 1", got)
	}
	if got := attr(t, s.FindKey(ClassDot, "0"), "r"); got != "2" {
		t.Errorf("narrow dot r = %s, want 2", got)
	}
}

func TestFocus(t *testing.T) {
	chart, _ := mount(t, 800, 400, testPoints)
	if err := chart.Focus(1); err != nil {
		t.Fatalf("Focus() yielded unexpected error %s", err)
	}
	s := chart.Scene()
	focus := s.Find(xychart.ClassFocusLine)
	if len(focus) != 1 {
		t.Fatalf("found %d focus lines, want 1", len(focus))
	}
	if got := attr(t, focus[0], "x1"); got != "345" {
		t.Errorf("focus line x1 = %s, want 345", got)
	}
	if got := attr(t, focus[0], "opacity"); got != "1" {
		t.Errorf("focus line opacity = %s, want 1", got)
	}
	// Focusing does not replay the entering animation.
	if got := attr(t, s.At(0).FindKey(ClassDot, "0"), "r"); got != "2.5" {
		t.Errorf("dot r after focus = %s, want 2.5", got)
	}
	tips := s.Find("tooltip")
	if len(tips) != 1 {
		t.Fatalf("found %d tooltips, want 1", len(tips))
	}
	content := tips[0].Raw.String()
	for _, want := range []string{"Year: 1950", "Words: 50.00"} {
		if !strings.Contains(content, want) {
			t.Errorf("tooltip content %q lacks %q", content, want)
		}
	}
	if diff := cmp.Diff([]string{"445", "159.5"}, []string{attr(t, tips[0], "x"), attr(t, tips[0], "y")}); diff != "" {
		t.Errorf("tooltip position diff (-want +got):\n%s", diff)
	}
	if err := chart.Blur(); err != nil {
		t.Fatalf("Blur() yielded unexpected error %s", err)
	}
	s = chart.Scene()
	if len(s.Find("tooltip")) != 0 {
		t.Errorf("tooltip visible after blur")
	}
	if got := attr(t, s.Find(xychart.ClassFocusLine)[0], "opacity"); got != "0" {
		t.Errorf("focus line opacity after blur = %s, want 0", got)
	}
	if err := chart.Focus(7); err == nil {
		t.Errorf("Focus() of a missing point yielded no error")
	}
}

func TestTouchBackgroundClearsFocus(t *testing.T) {
	chart, _ := mount(t, 800, 400, testPoints)
	if err := chart.Focus(0); err != nil {
		t.Fatalf("Focus() yielded unexpected error %s", err)
	}
	if err := chart.TouchBackground(); err != nil {
		t.Fatalf("TouchBackground() yielded unexpected error %s", err)
	}
	if chart.Tooltip().Visible() {
		t.Errorf("tooltip visible after background touch")
	}
}

func TestZoom(t *testing.T) {
	chart, _ := mount(t, 800, 400, testPoints)
	if chart.Wheel(zoom.WheelEvent{Position: zoom.Point{X: 0, Y: 0}, DeltaY: -500, CtrlKey: true}) {
		t.Errorf("Wheel() with control held was handled")
	}
	if !chart.Wheel(zoom.WheelEvent{Position: zoom.Point{X: 0, Y: 0}, DeltaY: -500}) {
		t.Fatalf("Wheel() was not handled")
	}
	plot := chart.Plot()
	if d0, d1 := plot.X.Domain(); d0 != 1900 || d1 != 1950 {
		t.Errorf("zoomed x domain = [%v, %v], want [1900, 1950]", d0, d1)
	}
	s := chart.Scene()
	if got := attr(t, s.FindKey(ClassDot, "2"), "display"); got != "none" {
		t.Errorf("out-of-plot dot display = %s, want none", got)
	}
	if _, ok := s.FindKey(ClassDot, "0").Attr("display"); ok {
		t.Errorf("in-plot dot is hidden")
	}
	if len(s.Find(ClassLine)[0].Tweens) != 0 {
		t.Errorf("zoomed line replays its reveal")
	}
	// Panning cannot leave the data extent.
	chart.Pan(10000)
	if d0, _ := chart.Plot().X.Domain(); d0 != 1900 {
		t.Errorf("panned x domain starts at %v, want 1900", d0)
	}
	chart.Pan(-10000)
	if _, d1 := chart.Plot().X.Domain(); d1 != 2000 {
		t.Errorf("panned x domain ends at %v, want 2000", d1)
	}
}

func TestResize(t *testing.T) {
	chart, container := mount(t, 800, 400, testPoints)
	chart.Wheel(zoom.WheelEvent{DeltaY: -500})
	before := chart.Draws()
	container.Resize(resize.Size{Width: 1000, Height: 500})
	if got := chart.Draws(); got != before+1 {
		t.Errorf("Draws() after resize = %d, want %d", got, before+1)
	}
	if diff := cmp.Diff(zoom.Identity, chart.Transform()); diff != "" {
		t.Errorf("transform after resize diff (-want +got):\n%s", diff)
	}
	if got := chart.Plot().InnerWidth; got != 890 {
		t.Errorf("inner width after resize = %v, want 890", got)
	}
	chart.Unmount()
	after := chart.Draws()
	container.Resize(resize.Size{Width: 600, Height: 300})
	if got := chart.Draws(); got != after {
		t.Errorf("unmounted chart redrew on resize")
	}
	if container.ObserverCount() != 0 {
		t.Errorf("unmounted chart still observes its container")
	}
}

func TestLoadCopiesData(t *testing.T) {
	points := append([]Point(nil), testPoints...)
	chart, _ := mount(t, 800, 400, points)
	points[0].Y = 1000
	if got := chart.Plot().Points[0].Y; got != 10 {
		t.Errorf("chart data changed with its source: y = %v", got)
	}
}

// settled returns attrs of the class elements of s once its transitions
// have finished, keyed by element key and attribute.
func settled(s *scene.Scene, class string, attrs ...string) map[string]string {
	ret := map[string]string{}
	for idx, el := range s.At(time.Hour).Find(class) {
		for _, attr := range attrs {
			v, _ := el.Attr(attr)
			ret[fmt.Sprintf("%d/%s:%s", idx, el.Key, attr)] = v
		}
	}
	return ret
}

func TestIdempotentRedraw(t *testing.T) {
	chart, container := mount(t, 800, 400, testPoints)
	dots := settled(chart.Scene(), ClassDot, "cx", "cy", "r")
	lines := settled(chart.Scene(), ClassLine, "d")
	if len(dots) != 3*len(testPoints) || len(lines) != 1 {
		t.Fatalf("found %d dot and %d line attributes", len(dots), len(lines))
	}
	draws := chart.Draws()
	container.Resize(resize.Size{Width: 800, Height: 400})
	if got := chart.Draws(); got != draws+1 {
		t.Fatalf("resize drew %d times, want once", got-draws)
	}
	if diff := cmp.Diff(dots, settled(chart.Scene(), ClassDot, "cx", "cy", "r")); diff != "" {
		t.Errorf("redrawn dots diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(lines, settled(chart.Scene(), ClassLine, "d")); diff != "" {
		t.Errorf("redrawn line diff (-want +got):\n%s", diff)
	}
}

func TestShortSeriesDomains(t *testing.T) {
	points := []Point{{1900, 10}, {1950, 50}, {1964, 5}}
	chart, _ := mount(t, 800, 400, points)
	plot := chart.Plot()
	if d0, d1 := plot.Y.Domain(); d0 != 0 || d1 != 50 {
		t.Errorf("y domain = [%v, %v], want [0, 50]", d0, d1)
	}
	if d0, d1 := plot.X.Domain(); d0 != 1900 || d1 != 1964 {
		t.Errorf("x domain = [%v, %v], want [1900, 1964]", d0, d1)
	}
	if got := len(chart.Scene().Find(ClassDot)); got != len(points) {
		t.Errorf("found %d dots, want %d", got, len(points))
	}
}
