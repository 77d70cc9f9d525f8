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

// Package scatterchart provides an animated scatter chart.  Each point is
// drawn as a dot growing into place; hovering it shows the point's
// coordinates and its details.  The chart zooms and pans horizontally.
package scatterchart

import (
	"strconv"
	"time"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
	"github.com/ilhamster/litviz/color"
	"github.com/ilhamster/litviz/magnitude"
	"github.com/ilhamster/litviz/payload"
	"github.com/ilhamster/litviz/scale"
	"github.com/ilhamster/litviz/scene"
	"github.com/ilhamster/litviz/tooltip"
	"github.com/ilhamster/litviz/transition"
	xychart "github.com/ilhamster/litviz/xy_chart"
)

// Defaults for unset props.
const (
	DefaultXLabel = "x"
	DefaultYLabel = "y"
	DefaultTitle  = "Animated Scatter Chart"
)

const (
	dotDuration  = 1000 * time.Millisecond
	dotStagger   = 2 * time.Millisecond
	dotRadius    = 3
	narrowRadius = 2.5
	dotOpacity   = 0.7
)

// ClassDot is the scene class of scatter dots.
const ClassDot = "dot"

// Margin is the scatter chart's plot margin.
var Margin = xychart.Margin{Top: 30, Right: 20, Bottom: 55, Left: 90}

var tooltipTemplate = template.Must(template.New("scatter").Parse(
	`{{.XLabel}}: {{.X}}<br/>{{.YLabel}}: {{.Y}}{{range .Details}}<br/>{{.Key}}: {{.Value}}{{end}}`,
))

// Point is a scatter chart data point.  Details are shown in its tooltip.
type Point struct {
	X, Y    float64
	Details map[string]any
}

// Props configures a scatter chart.  Empty labels take their defaults.
type Props struct {
	XLabel, YLabel, Title string
}

func (p Props) withDefaults() Props {
	if p.XLabel == "" {
		p.XLabel = DefaultXLabel
	}
	if p.YLabel == "" {
		p.YLabel = DefaultYLabel
	}
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	return p
}

type marks struct {
	props Props
}

func (m *marks) Draw(p *xychart.Plot, content *scene.Element, animate bool) {
	radius := float64(dotRadius)
	if p.Narrow {
		radius = narrowRadius
	}
	for idx, pt := range p.Points {
		x, y := p.Position(pt)
		dot := scene.New(scene.Circle).WithClass(ClassDot).WithKey(strconv.Itoa(idx)).
			SetNum("cx", x).
			SetNum("cy", y).
			SetNum("r", radius).
			Set("fill", color.Line).
			SetNum("fill-opacity", dotOpacity).
			WithDetails(pt.Details)
		if animate {
			dot.Animate(transition.New("r", time.Duration(idx)*dotStagger, dotDuration, nil, transition.Number(0, radius)))
		}
		content.Append(p.Hide(dot, x, y))
	}
}

func (m *marks) Tooltip(pt xychart.Point) (safehtml.HTML, error) {
	return tooltip.Render(tooltipTemplate, struct {
		XLabel, X, YLabel, Y string
		Details              []payload.Entry
	}{
		XLabel:  m.props.XLabel,
		X:       magnitude.Compact(pt.X),
		YLabel:  m.props.YLabel,
		Y:       magnitude.Fixed(pt.Y, 2),
		Details: payload.Entries(pt.Details),
	})
}

// Chart is an animated scatter chart.
type Chart struct {
	*xychart.Chart
}

// New returns a new scatter chart.
func New(props Props) *Chart {
	props = props.withDefaults()
	return &Chart{
		Chart: xychart.New(xychart.Config{
			Title:  props.Title,
			XLabel: props.XLabel,
			YLabel: props.YLabel,
			Margin: Margin,
			Font:   scale.LineFont,
			Marks:  &marks{props: props},
		}),
	}
}

// Load replaces the chart's data with a copy of points, and redraws it.
func (c *Chart) Load(points []Point) {
	pts := make([]xychart.Point, len(points))
	for idx, pt := range points {
		details := make(map[string]any, len(pt.Details))
		for k, v := range pt.Details {
			details[k] = v
		}
		pts[idx] = xychart.Point{X: pt.X, Y: pt.Y, Details: details}
	}
	c.Chart.Load(pts)
}
