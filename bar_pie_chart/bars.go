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

package barpiechart

import (
	"math"
	"time"

	"github.com/ilhamster/litviz/color"
	continuousaxis "github.com/ilhamster/litviz/continuous_axis"
	keyeddiff "github.com/ilhamster/litviz/keyed_diff"
	"github.com/ilhamster/litviz/scale"
	"github.com/ilhamster/litviz/scene"
	"github.com/ilhamster/litviz/style"
	"github.com/ilhamster/litviz/transition"
)

const (
	// MaxBars is the number of rank slots in a bar layer.
	MaxBars = 20
	// BarDuration is the duration of bar enter, update and exit transitions.
	BarDuration = 700 * time.Millisecond

	axisDuration = 500 * time.Millisecond
	// Entering bars rise from, and exiting bars sink to, this far below the
	// plot.
	offscreen   = 20
	cornerR     = 4
	labelGap    = 5
	domainScale = 1.2
	shadowBlur  = 2
	shadowAlpha = 0.7
)

// Bar layer classes.
const (
	ClassBars       = "bars"
	ClassBarGroup   = "bar-group"
	ClassBar        = "bar"
	ClassLabelGroup = "bar-label-group"
	ClassNameLabel  = "bar-name-label"
	ClassValueLabel = "bar-value-label"
	ClassGrid       = "x-grid"
)

// Item is a labeled, non-negative value.  Labels are unique within a
// dataset.
type Item struct {
	Label string
	Value float64
}

func labelOf(it Item) string {
	return it.Label
}

// Geometry is the layout of a bar layer within its plot.
type Geometry struct {
	// X maps values to bar widths.
	X                       scale.Linear
	InnerWidth, InnerHeight float64
	FontSize                float64
	Narrow                  bool
}

// NewGeometry returns the geometry for the provided items in a plot of the
// provided inner size.  The x domain spans [0, 1.2 × the largest value].
func NewGeometry(items []Item, innerWidth, innerHeight, fontSize float64, narrow bool) Geometry {
	max := 0.0
	for _, it := range items {
		max = math.Max(max, it.Value)
	}
	if max <= 0 {
		max = 1
	}
	return Geometry{
		X:           scale.NewLinear(0, max*domainScale, 0, innerWidth),
		InnerWidth:  innerWidth,
		InnerHeight: innerHeight,
		FontSize:    fontSize,
		Narrow:      narrow,
	}
}

// Slot returns the y offset of the bar at the provided rank index.
func (g Geometry) Slot(idx int) float64 {
	return float64(idx)*g.InnerHeight/MaxBars + 1
}

// BarHeight returns the height of every bar.
func (g Geometry) BarHeight() float64 {
	return g.InnerHeight/MaxBars - 2
}

func (g Geometry) offscreen() float64 {
	return g.InnerHeight + offscreen
}

// Axes returns the value axis along the top of the plot, the rank axis
// along its left, and the value grid.  Rank ticks are formatted with
// rankFormat.
func (g Geometry) Axes(rankFormat func(float64) string) []*scene.Element {
	xTicks := 10
	if g.Narrow {
		xTicks = 5
	}
	gridTicks := g.X.Ticks(10)
	if len(gridTicks) > 0 {
		gridTicks = gridTicks[1:]
	}
	ranks := make([]float64, MaxBars)
	for idx := range ranks {
		ranks[idx] = float64(idx + 1)
	}
	fade := func(el *scene.Element) *scene.Element {
		return el.Animate(transition.New("opacity", 0, axisDuration, nil, transition.Number(0, 1))).
			Set("opacity", "1")
	}
	return []*scene.Element{
		continuousaxis.New(continuousaxis.Top, g.X).
			WithClass("x-axis").
			WithTicks(xTicks).
			WithFormat(continuousaxis.Integer).
			WithFontSize(g.FontSize).
			Element(),
		continuousaxis.New(continuousaxis.Left, scale.NewLinear(MaxBars, 0, g.InnerHeight, 0)).
			WithClass("y-axis").
			WithTickValues(ranks...).
			WithFormat(rankFormat).
			WithFontSize(g.FontSize).
			Element(),
		fade(continuousaxis.New(continuousaxis.Top, g.X).
			WithClass(ClassGrid).
			WithTickValues(gridTicks...).
			WithTickSizeInner(-g.InnerHeight).
			WithTickStroke(color.Grid).
			WithFormat(continuousaxis.Blank).
			Element()),
	}
}

// Shadow returns the drop-shadow filter applied to highlighted marks.
func Shadow(id string) *scene.Element {
	return scene.New(scene.Filter).Set("id", id).Append(
		scene.New(scene.DropShadow).
			SetNum("dx", 0).
			SetNum("dy", 0).
			SetNum("stdDeviation", shadowBlur).
			Set("flood-color", color.Shadow).
			SetNum("flood-opacity", shadowAlpha),
	)
}

// FilterURL returns the reference to the filter with the provided id.
func FilterURL(id string) string {
	return "url(#" + id + ")"
}

type barState struct {
	item     Item
	y, width float64
}

// bar holds the parts of a rendered bar that transitions animate.
type bar struct {
	group, rect, end, name *scene.Element
}

// Bars is a keyed bar layer.  Each draw reconciles the drawn items against
// those of the previous draw: entering bars rise into their rank slot while
// growing and fading in, updating bars move and resize from their previous
// state, and exiting bars sink below the plot, fade out, and are removed.
//
// Bars is not safe for concurrent use; its owning chart serializes draws.
type Bars struct {
	// EndLabel, if set, renders the label drawn past each bar's end.
	EndLabel func(it Item) string
	// EndLabelClass is the scene class of end labels.
	EndLabelClass string
	// If true, each item's label is drawn left of its bar, or inside it on
	// narrow plots.
	NameLabels bool
	// FilterID is the id of the filter highlighting the focused bar.
	FilterID string
	// Listeners returns the listeners attached to the bar at idx.
	Listeners func(idx int, it Item) []scene.Listener

	prev  []Item
	state map[string]barState
}

// Reset forgets the previously drawn bars, so that every bar enters on the
// next draw.
func (b *Bars) Reset() {
	b.prev = nil
	b.state = nil
}

// Items returns the items of the most recent draw.
func (b *Bars) Items() []Item {
	return b.prev
}

// Draw renders the provided items, at most MaxBars of them.  If animate is
// false, bars are drawn in their final state and exiting bars are dropped.
// The bar labeled focused, if any, is highlighted.
func (b *Bars) Draw(items []Item, g Geometry, animate bool, focused string) *scene.Element {
	items = dedupe(items)
	if len(items) > MaxBars {
		items = items[:MaxBars]
	}
	diff := keyeddiff.Diff(b.prev, items, labelOf)
	groups := make([]*scene.Element, len(items))
	next := make(map[string]barState, len(items))
	for _, e := range diff.Enter {
		st := barState{item: e.Item, y: g.Slot(e.Index), width: g.X.Apply(e.Item.Value)}
		el := b.element(e.Index, st, g, focused)
		if animate {
			b.enter(el, st, g)
		}
		groups[e.Index] = el.group
		next[e.Item.Label] = st
	}
	for _, u := range diff.Update {
		st := barState{item: u.Item, y: g.Slot(u.Index), width: g.X.Apply(u.Item.Value)}
		el := b.element(u.Index, st, g, focused)
		if prev, ok := b.state[u.Item.Label]; ok && animate {
			b.update(el, prev, st)
		}
		groups[u.Index] = el.group
		next[u.Item.Label] = st
	}
	ret := scene.New(scene.Group).WithClass(ClassBars).Append(groups...)
	if animate {
		for _, x := range diff.Exit {
			if prev, ok := b.state[x.Prev.Label]; ok {
				ret.Append(b.exit(prev, g))
			}
		}
	}
	b.prev = items
	b.state = next
	return ret
}

func dedupe(items []Item) []Item {
	seen := make(map[string]bool, len(items))
	ret := make([]Item, 0, len(items))
	for _, it := range items {
		if !seen[it.Label] {
			seen[it.Label] = true
			ret = append(ret, it)
		}
	}
	return ret
}

// element renders a bar in the provided state.  An idx of -1 marks an
// exiting bar, which has no listeners.
func (b *Bars) element(idx int, st barState, g Geometry, focused string) bar {
	h := g.BarHeight()
	fontSize := style.Px(g.FontSize)
	var ret bar
	ret.rect = scene.New(scene.Rect).WithClass(ClassBar).
		SetNum("x", 0).
		SetNum("width", st.width).
		SetNum("height", h).
		SetNum("rx", cornerR).
		SetNum("ry", cornerR).
		Set("fill", color.Bar)
	if st.item.Label == focused && b.FilterID != "" {
		ret.rect.Set("filter", FilterURL(b.FilterID))
	}
	if idx >= 0 && b.Listeners != nil {
		for _, l := range b.Listeners(idx, st.item) {
			ret.rect.On(l.Event, l.Action)
		}
	}
	labels := scene.New(scene.Group).WithClass(ClassLabelGroup)
	if b.EndLabel != nil {
		ret.end = scene.New(scene.Text).WithClass(b.EndLabelClass).
			Set("text-anchor", "start").
			Set("fill", "black").
			SetNum("x", st.width+labelGap).
			SetNum("y", h/2+labelGap).
			Set("font-size", fontSize).
			Set("opacity", "1").
			WithText(b.EndLabel(st.item))
		labels.Append(ret.end)
	}
	if b.NameLabels {
		anchor, fill, x := "end", "black", -10.0
		if g.Narrow {
			anchor, fill, x = "start", "white", labelGap
		}
		ret.name = scene.New(scene.Text).WithClass(ClassNameLabel).
			Set("text-anchor", anchor).
			Set("fill", fill).
			SetNum("x", x).
			SetNum("y", h/2+labelGap).
			Set("font-size", fontSize).
			Set("opacity", "1").
			WithText(st.item.Label)
		labels.Append(ret.name)
	}
	ret.group = scene.New(scene.Group).WithClass(ClassBarGroup).WithKey(st.item.Label).
		Set("transform", transition.TranslateAttr(0, st.y)).
		Set("opacity", "1").
		Append(ret.rect, labels)
	return ret
}

func (b *Bars) enter(el bar, st barState, g Geometry) {
	el.group.Animate(
		transition.New("transform", 0, BarDuration, nil, transition.Translate(0, g.offscreen(), 0, st.y)),
		transition.New("opacity", 0, BarDuration, nil, transition.Number(0, 1)),
	)
	el.rect.Animate(transition.New("width", 0, BarDuration, nil, transition.Number(st.width/2, st.width)))
	if el.end != nil {
		el.end.Animate(
			transition.New("x", 0, BarDuration, nil, transition.Number(st.width/2, st.width+labelGap)),
			transition.New("opacity", 0, BarDuration, nil, transition.Number(0, 1)),
		)
	}
	if el.name != nil {
		el.name.Animate(transition.New("opacity", 0, BarDuration, nil, transition.Number(0, 1)))
	}
}

func (b *Bars) update(el bar, prev, st barState) {
	el.group.Animate(transition.New("transform", 0, BarDuration, nil, transition.Translate(0, prev.y, 0, st.y)))
	el.rect.Animate(transition.New("width", 0, BarDuration, nil, transition.Number(prev.width, st.width)))
	if el.end != nil {
		el.end.Animate(transition.New("x", 0, BarDuration, nil, transition.Number(prev.width+labelGap, st.width+labelGap)))
	}
}

func (b *Bars) exit(prev barState, g Geometry) *scene.Element {
	st := prev
	st.y = g.offscreen()
	return b.element(-1, st, g, "").group.
		Set("opacity", "0").
		Animate(
			transition.New("transform", 0, BarDuration, nil, transition.Translate(0, prev.y, 0, st.y)),
			transition.New("opacity", 0, BarDuration, nil, transition.Number(1, 0)),
		).
		RemoveAfter(BarDuration)
}
