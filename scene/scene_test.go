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

package scene

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/ilhamster/litviz/payload"
	"github.com/ilhamster/litviz/style"
	testutil "github.com/ilhamster/litviz/test_util"
	"github.com/ilhamster/litviz/transition"
	"github.com/ilhamster/litviz/util"
)

const ms = time.Millisecond

func testScene() *Scene {
	return &Scene{
		Width:  200,
		Height: 100,
		Root: New(Group).WithClass("chart").Append(
			New(Rect).WithClass("bar").WithKey("a").
				SetNum("width", 100).
				Animate(transition.New("width", 0, 1000*ms, transition.Linear, transition.Number(50, 100))),
			New(Rect).WithClass("bar").WithKey("b").
				SetNum("width", 0).
				RemoveAfter(700*ms),
			New(Text).WithClass("label").WithText("a & b").
				Animate(transition.New(TextContent, 0, 500*ms, transition.Linear, transition.Discrete("", "a & b"))),
		),
	}
}

func attrsOf(els []*Element, attr string) []string {
	ret := []string{}
	for _, el := range els {
		v, _ := el.Attr(attr)
		ret = append(ret, v)
	}
	return ret
}

func TestAt(t *testing.T) {
	s := testScene()
	for _, test := range []struct {
		description string
		elapsed     time.Duration
		wantWidths  []string
		wantLabel   string
	}{{
		description: "start",
		elapsed:     0,
		wantWidths:  []string{"50", "0"},
		wantLabel:   "",
	}, {
		description: "midway",
		elapsed:     500 * ms,
		wantWidths:  []string{"75", "0"},
		wantLabel:   "a & b",
	}, {
		description: "exiting element removed",
		elapsed:     700 * ms,
		wantWidths:  []string{"85"},
		wantLabel:   "a & b",
	}, {
		description: "end",
		elapsed:     2000 * ms,
		wantWidths:  []string{"100"},
		wantLabel:   "a & b",
	}} {
		t.Run(test.description, func(t *testing.T) {
			got := s.At(test.elapsed)
			if diff := cmp.Diff(test.wantWidths, attrsOf(got.Find("bar"), "width")); diff != "" {
				t.Errorf("widths diff (-want +got):\n%s", diff)
			}
			labels := got.Find("label")
			if len(labels) != 1 || labels[0].Text != test.wantLabel {
				t.Errorf("label = %v, want %q", labels, test.wantLabel)
			}
			for _, el := range got.Find("bar") {
				if len(el.Tweens) != 0 {
					t.Errorf("sampled element %q retains tweens", el.Key)
				}
			}
		})
	}
	// Sampling must not modify the scene.
	if v, _ := s.FindKey("bar", "a").Attr("width"); v != "100" {
		t.Errorf("sampling modified the scene: width = %q", v)
	}
}

func TestChainedTweens(t *testing.T) {
	el := New(Rect).SetNum("x", 20).Animate(
		transition.New("x", 0, 100*ms, transition.Linear, transition.Number(0, 10)),
		transition.New("x", 100*ms, 100*ms, transition.Linear, transition.Number(10, 20)),
	)
	for _, test := range []struct {
		elapsed time.Duration
		want    string
	}{
		{0, "0"},
		{50 * ms, "5"},
		{150 * ms, "15"},
		{300 * ms, "20"},
	} {
		if got, _ := el.At(test.elapsed).Attr("x"); got != test.want {
			t.Errorf("At(%v) x = %q, want %q", test.elapsed, got, test.want)
		}
	}
}

func TestDuration(t *testing.T) {
	if got, want := testScene().Duration(), 1000*ms; got != want {
		t.Errorf("Duration() = %v, want %v", got, want)
	}
	if got := (&Scene{}).Duration(); got != 0 {
		t.Errorf("empty Duration() = %v, want 0", got)
	}
}

func TestClone(t *testing.T) {
	orig := testScene().Root
	clone := orig.Clone()
	if diff := cmp.Diff(orig, clone,
		cmpopts.IgnoreFields(Element{}, "Tweens", "Raw"),
	); diff != "" {
		t.Errorf("Clone() diff (-want +got):\n%s", diff)
	}
	clone.Children[0].Set("width", "1")
	if v, _ := orig.Children[0].Attr("width"); v != "100" {
		t.Errorf("modifying a clone modified the original")
	}
}

func TestFind(t *testing.T) {
	s := testScene()
	if got := len(s.Find("bar")); got != 2 {
		t.Errorf("Find(bar) returned %d elements, want 2", got)
	}
	if s.FindKey("bar", "b") == nil {
		t.Errorf("FindKey(bar, b) = nil")
	}
	if s.FindKey("bar", "c") != nil {
		t.Errorf("FindKey(bar, c) != nil")
	}
}

func TestWriteSVG(t *testing.T) {
	s := testScene()
	s.Root.Append(
		New(Circle).WithClass("dot").SetNum("r", 2.5).On(MouseOver, "focus:0"),
		New(Path).SetNum("stroke-width", 1.5).Set("d", "M0,0L10,10"),
	)
	var b strings.Builder
	if err := s.WriteSVG(&b, 2000*ms); err != nil {
		t.Fatalf("WriteSVG() yielded unexpected error %s", err)
	}
	got := b.String()
	for _, want := range []string{
		`viewBox="0 0 200 100"`,
		`preserveAspectRatio="xMinYMin meet"`,
		`<g class="chart"`,
		`<rect class="bar" data-key="a" width="100"/>`,
		`<text class="label">a &amp; b</text>`,
		`<circle class="dot" r="2.5" data-on-mouseover="focus:0"/>`,
		`<path d="M0,0L10,10" stroke-width="1.5"`,
		`</g>`,
		`</svg>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("WriteSVG() output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, `data-key="b"`) {
		t.Errorf("WriteSVG() output contains a removed element:\n%s", got)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("oops")
}

func TestWriteSVGError(t *testing.T) {
	if err := testScene().WriteSVG(failingWriter{}, 0); err == nil {
		t.Errorf("WriteSVG() to a failing writer yielded no error")
	}
}

func TestDefine(t *testing.T) {
	s := &Scene{
		Width:  100,
		Height: 50,
		Root: New(Group).Append(
			New(Circle).WithKey("p0").WithClass("dot").
				WithStyle(style.New().With("fill", "green")).
				WithDetails(map[string]any{"author": "Moodie"}).
				On(Click, "select").
				Animate(transition.New("r", 0, 200*ms, transition.Linear, transition.Number(0, 7))),
		),
	}
	if err := testutil.CompareResponses(t,
		func(db util.DataBuilder) {
			s.Define(db)
		},
		func(db util.DataBuilder) {
			db.With(
				util.IntegerProperty("width", 100),
				util.IntegerProperty("height", 50),
				util.DurationProperty("duration", 200*ms),
			)
			root := db.Child().With(
				util.StringProperty("kind", "g"),
			)
			dot := root.Child().With(
				util.StringProperty("kind", "circle"),
				util.StringProperty("key", "p0"),
				util.StringProperty("class", "dot"),
				util.StringProperty("style_fill", "green"),
				util.StringsProperty("listeners", "click:select"),
			)
			dot.Child().With(
				util.StringProperty("kind", "tween"),
				util.StringProperty("attr", "r"),
				util.DurationProperty("delay", 0),
				util.DurationProperty("duration", 200*ms),
				util.StringProperty("ease", "linear"),
				util.StringProperty("from", "0"),
				util.StringProperty("to", "7"),
			)
			dot.Child().With(
				util.StringProperty(payload.TypeKey, payload.DetailsType),
				util.StringProperty("author", "Moodie"),
			)
		},
	); err != nil {
		t.Fatalf("encountered unexpected error building the scene: %s", err)
	}
}
