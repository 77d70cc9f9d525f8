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
	"github.com/ilhamster/litviz/label"
	"github.com/ilhamster/litviz/magnitude"
	"github.com/ilhamster/litviz/resize"
	"github.com/ilhamster/litviz/scale"
	"github.com/ilhamster/litviz/scene"
	"github.com/ilhamster/litviz/shape"
	"github.com/ilhamster/litviz/style"
	"github.com/ilhamster/litviz/transition"
)

const (
	maxSlices      = 10
	padAngle       = 0.01
	pieCorner      = 3
	innerRatio     = 0.6
	radiusRatio    = 0.7
	sliceDuration  = 1000 * time.Millisecond
	legendDuration = 500 * time.Millisecond
	swatchSize     = 15
	legendRow      = 20
)

// Pie classes.
const (
	ClassSlices      = "slices"
	ClassSlice       = "slice"
	ClassCenter      = "pie-center"
	ClassCenterLabel = "pie-center-label"
	ClassCenterValue = "pie-center-value"
	ClassLegends     = "legends"
	ClassLegend      = "legend"
)

// angles is the angular extent a slice was last drawn with.
type angles struct {
	start, end float64
}

type pieLayer struct {
	state map[string]angles
}

func newPieLayer() *pieLayer {
	return &pieLayer{state: map[string]angles{}}
}

func (pl *pieLayer) reset() {
	pl.state = map[string]angles{}
}

// sliceTween interpolates a slice's path between two angular extents.
func sliceTween(arc shape.Arc, from, to angles, pad float64) transition.Interpolator {
	return func(t float64) string {
		return arc.Path(
			transition.Lerp(from.start, to.start, t),
			transition.Lerp(from.end, to.end, t),
			pad,
		).String()
	}
}

func (c *Chart) renderPie(size resize.Size, animate bool) *scene.Element {
	items := c.items
	if len(items) > maxSlices {
		items = items[:maxSlices]
	}
	width := float64(size.Width)
	iw := width - ChartMargin.Left - ChartMargin.Right
	ih := float64(size.Height) - ChartMargin.Top - ChartMargin.Bottom
	radius := math.Min(iw, ih) / 2 * radiusRatio
	fontSize := style.Px(scale.PieFont.Size(width))
	large := style.Px(scale.PieFont.Large(width))
	offset := transition.TranslateAttr(iw/2-radius, 0)

	ret := scene.New(scene.Group).WithClass(ClassContainer).
		Set("transform", transition.TranslateAttr(ChartMargin.Left+iw/2, ChartMargin.Top+ih/2))
	ret.Append(
		scene.New(scene.Text).WithClass(ClassTitle).
			SetNum("x", 0).
			SetNum("y", -ih/2+20).
			Set("font-size", style.Px(scale.PieFont.Title(width))).
			Set("font-weight", "bold").
			Set("text-anchor", "middle").
			WithText(c.props.PieTitle),
	)

	values := make([]float64, len(items))
	for idx, it := range items {
		values[idx] = it.Value
	}
	layout := shape.Pie(values, padAngle)
	arc := shape.Arc{InnerRadius: radius * innerRatio, OuterRadius: radius, CornerRadius: pieCorner}
	slices := scene.New(scene.Group).WithClass(ClassSlices)
	var raised *scene.Element
	next := make(map[string]angles, len(items))
	for idx, it := range items {
		sl := layout[idx]
		to := angles{sl.StartAngle, sl.EndAngle}
		action := ActionFocus + ":" + it.Label
		path := scene.New(scene.Path).WithClass(ClassSlice).WithKey(it.Label).
			Set("d", arc.Path(to.start, to.end, sl.PadAngle).String()).
			Set("fill", color.Pie.At(sl.Index)).
			Set("transform", offset).
			On(scene.MouseOver, action).
			On(scene.TouchStart, action).
			On(scene.MouseOut, ActionBlur)
		if animate {
			// New slices grow from twelve o'clock.
			from := c.pie.state[it.Label]
			path.Animate(transition.New("d", 0, sliceDuration, nil, sliceTween(arc, from, to, sl.PadAngle)))
		}
		next[it.Label] = to
		if it.Label == c.focused {
			path.Set("filter", FilterURL(c.filterID))
			raised = path
			continue
		}
		slices.Append(path)
	}
	// The focused slice is drawn last, above its neighbors.
	slices.Append(raised)
	ret.Append(slices)
	if animate {
		c.pie.state = next
	}

	if idx := c.indexOf(c.center); idx >= 0 && idx < len(items) {
		ret.Append(scene.New(scene.Group).WithClass(ClassCenter).
			Set("transform", offset).
			Append(
				scene.New(scene.Text).WithClass(ClassCenterLabel).
					SetNum("y", -10).
					Set("text-anchor", "middle").
					Set("font-size", large).
					Set("font-weight", "bold").
					WithText(label.StartCase(items[idx].Label)),
				scene.New(scene.Text).WithClass(ClassCenterValue).
					SetNum("y", 15).
					Set("text-anchor", "middle").
					Set("font-size", large).
					Set("font-weight", "bold").
					WithText(magnitude.Percent(layout[idx].Fraction())),
			))
	}

	n := float64(len(items))
	legends := scene.New(scene.Group).WithClass(ClassLegends)
	for idx, it := range items {
		y := -10*n + float64(idx*legendRow)
		swatch := scene.New(scene.Rect).
			SetNum("width", swatchSize).
			SetNum("height", swatchSize).
			SetNum("rx", cornerR).
			SetNum("ry", cornerR).
			Set("fill", color.Pie.At(layout[idx].Index))
		if it.Label == c.focused {
			swatch.Set("stroke", "black").SetNum("stroke-width", 1)
		}
		action := ActionFocus + ":" + it.Label
		legend := scene.New(scene.Group).WithClass(ClassLegend).WithKey(it.Label).
			Set("transform", transition.TranslateAttr(-iw/2, y)).
			Set("opacity", "1").
			On(scene.MouseOver, action).
			On(scene.MouseOut, ActionBlur).
			Append(
				swatch,
				scene.New(scene.Text).
					SetNum("x", 20).
					SetNum("y", 12).
					Set("font-size", fontSize).
					WithText(label.StartCase(it.Label)),
			)
		if animate {
			legend.Animate(
				transition.New("transform", 0, legendDuration, nil,
					transition.Translate(-iw/2, -5*n+float64(idx*legendRow), -iw/2, y)),
				transition.New("opacity", 0, legendDuration, nil, transition.Number(0, 1)),
			)
		}
		legends.Append(legend)
	}
	ret.Append(legends)
	return ret
}
