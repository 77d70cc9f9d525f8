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

package continuousaxis

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/litviz/scale"
	"github.com/ilhamster/litviz/scene"
	testutil "github.com/ilhamster/litviz/test_util"
	"github.com/ilhamster/litviz/util"
)

type renderedTick struct {
	Label     string
	Transform string
	LineAttr  string
	TextAttr  string
}

func ticksOf(t *testing.T, el *scene.Element, lineAttr, textAttr string) []renderedTick {
	t.Helper()
	ret := []renderedTick{}
	for _, tick := range el.Find("tick") {
		if len(tick.Children) != 2 {
			t.Fatalf("tick %q has %d children, want 2", tick.Key, len(tick.Children))
		}
		transform, _ := tick.Attr("transform")
		line, _ := tick.Children[0].Attr(lineAttr)
		text, _ := tick.Children[1].Attr(textAttr)
		ret = append(ret, renderedTick{tick.Children[1].Text, transform, line, text})
	}
	return ret
}

func TestRender(t *testing.T) {
	for _, test := range []struct {
		description        string
		axis               *Axis
		lineAttr, textAttr string
		wantDomain         string
		wantTicks          []renderedTick
	}{{
		description: "bottom",
		axis:        New(Bottom, scale.NewLinear(0, 100, 0, 200)).WithTicks(2),
		lineAttr:    "y2",
		textAttr:    "y",
		wantDomain:  "M0,6V0H200V6",
		wantTicks: []renderedTick{
			{"0", "translate(0,0)", "6", "9"},
			{"50", "translate(100,0)", "6", "9"},
			{"100", "translate(200,0)", "6", "9"},
		},
	}, {
		description: "left with fractional ticks",
		axis:        New(Left, scale.NewLinear(0, 1, 100, 0)).WithTicks(2),
		lineAttr:    "x2",
		textAttr:    "x",
		wantDomain:  "M-6,100H0V0H-6",
		wantTicks: []renderedTick{
			{"0.0", "translate(0,100)", "-6", "-9"},
			{"0.5", "translate(0,50)", "-6", "-9"},
			{"1.0", "translate(0,0)", "-6", "-9"},
		},
	}, {
		description: "top grid with explicit ticks and format",
		axis: New(Top, scale.NewLinear(1900, 2000, 0, 100)).
			WithTickValues(1900, 1950).
			WithFormat(Integer).
			WithTickSizeInner(-80).
			WithTickSizeOuter(0),
		lineAttr:   "y2",
		textAttr:   "y",
		wantDomain: "M0,0H100",
		wantTicks: []renderedTick{
			{"1900", "translate(0,0)", "80", "-3"},
			{"1950", "translate(50,0)", "80", "-3"},
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			el := test.axis.Element()
			domains := el.Find("domain")
			if len(domains) != 1 {
				t.Fatalf("axis has %d domain paths, want 1", len(domains))
			}
			if d, _ := domains[0].Attr("d"); d != test.wantDomain {
				t.Errorf("domain path = %q, want %q", d, test.wantDomain)
			}
			if diff := cmp.Diff(test.wantTicks, ticksOf(t, el, test.lineAttr, test.textAttr)); diff != "" {
				t.Errorf("ticks diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefine(t *testing.T) {
	axis := New(Left, scale.NewLinear(10, 0, 0, 100)).WithLabel("Words")
	if msg, failed := testutil.NewUpdateComparator().
		WithTestUpdates(axis.Define()).
		WithWantUpdates(
			util.StringProperty(axisTypeKey, doubleAxisType),
			util.StringProperty(axisLabelKey, "Words"),
			util.DoubleProperty(axisMinKey, 0),
			util.DoubleProperty(axisMaxKey, 10),
		).
		Compare(t); failed {
		t.Fatal(msg)
	}
}
