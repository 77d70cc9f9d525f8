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

package scatterchart

import (
	"strings"
	"testing"

	"github.com/ilhamster/litviz/resize"
	xychart "github.com/ilhamster/litviz/xy_chart"
)

var testPoints = []Point{
	{1852, 12.5, map[string]any{"author": "Susanna Moodie", "title": "Roughing It in the Bush"}},
	{1908, 9.25, map[string]any{"author": "L. M. Montgomery", "title": "Anne of Green Gables"}},
	{1914, 11, map[string]any{"author": "Stephen <Leacock>", "title": "Arcadian Adventures"}},
}

func mount(t *testing.T, points []Point) *Chart {
	t.Helper()
	chart := New(Props{XLabel: "Year", YLabel: "Smog Index", Title: "Smog Index vs Year"})
	chart.Mount(resize.NewContainer(resize.Size{Width: 800, Height: 400}))
	t.Cleanup(chart.Unmount)
	chart.Load(points)
	return chart
}

func TestDraw(t *testing.T) {
	chart := mount(t, testPoints)
	s := chart.Scene()
	dots := s.Find(ClassDot)
	if len(dots) != len(testPoints) {
		t.Fatalf("found %d dots, want %d", len(dots), len(testPoints))
	}
	if got := dots[1].Details["title"]; got != "Anne of Green Gables" {
		t.Errorf("dot details title = %v", got)
	}
	if r, _ := dots[0].At(0).Attr("r"); r != "0" {
		t.Errorf("entering dot r = %s, want 0", r)
	}
	if r, _ := dots[0].At(s.Duration()).Attr("r"); r != "3" {
		t.Errorf("final dot r = %s, want 3", r)
	}
	if len(s.Find("line")) != 0 || len(s.Find(xychart.ClassFocusLine)) != 0 {
		t.Errorf("scatter chart drew a line")
	}
	titles := s.Find(xychart.ClassTitle)
	if len(titles) != 1 || titles[0].Text != "Smog Index vs Year" {
		t.Errorf("unexpected title %v", titles)
	}
}

func TestDegenerate(t *testing.T) {
	chart := mount(t, testPoints[:1])
	if got := len(chart.Scene().Find(ClassDot)); got != 0 {
		t.Errorf("single point drew %d dots", got)
	}
}

func TestTooltipShowsEscapedDetails(t *testing.T) {
	chart := mount(t, testPoints)
	if err := chart.Focus(2); err != nil {
		t.Fatalf("Focus() yielded unexpected error %s", err)
	}
	got := chart.Tooltip().Content().String()
	for _, want := range []string{
		"Year: 1914",
		"Smog Index: 11.00",
		"<br/>author: Stephen &lt;Leacock&gt;",
		"<br/>title: Arcadian Adventures",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("tooltip %q lacks %q", got, want)
		}
	}
	if strings.Index(got, "author") > strings.Index(got, "title") {
		t.Errorf("tooltip details are not sorted: %q", got)
	}
}

func TestLoadCopiesDetails(t *testing.T) {
	points := []Point{
		{1, 1, map[string]any{"k": "before"}},
		{2, 2, nil},
	}
	chart := mount(t, points)
	points[0].Details["k"] = "after"
	if got := chart.Plot().Points[0].Details["k"]; got != "before" {
		t.Errorf("chart details changed with their source: %v", got)
	}
}
