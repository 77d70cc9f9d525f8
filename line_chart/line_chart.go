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

// Package linechart provides an animated line chart.  The line is drawn as a
// monotone curve through the points, ordered by x, and revealed with a
// stroke-dash animation; a dot marks each point.  Hovering a point shows a
// tooltip and a focus line, and the chart zooms and pans horizontally.
package linechart

import (
	"strconv"
	"time"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
	"github.com/ilhamster/litviz/color"
	"github.com/ilhamster/litviz/magnitude"
	"github.com/ilhamster/litviz/scale"
	"github.com/ilhamster/litviz/scene"
	"github.com/ilhamster/litviz/shape"
	"github.com/ilhamster/litviz/tooltip"
	"github.com/ilhamster/litviz/transition"
	xychart "github.com/ilhamster/litviz/xy_chart"
)

// Defaults for unset props.
const (
	DefaultXLabel = "x"
	DefaultYLabel = "y"
	DefaultTitle  = "Animated Line Chart"
)

const (
	revealDuration = 1500 * time.Millisecond
	dotDuration    = 1000 * time.Millisecond
	dotStagger     = 10 * time.Millisecond
	dotRadius      = 2.5
	narrowRadius   = 2
	strokeWidth    = 1.5
	narrowStroke   = 1
)

// Scene classes.
const (
	ClassLine = "line"
	ClassDot  = "dot"
)

// Margin is the line chart's plot margin.
var Margin = xychart.Margin{Top: 30, Right: 20, Bottom: 55, Left: 90}

var tooltipTemplate = template.Must(template.New("line").Parse(
	`{{.XLabel}}: {{.X}}<br/>{{.YLabel}}: {{.Y}}`,
))

// Point is a line chart data point.
type Point struct {
	X, Y float64
}

// Props configures a line chart.  Empty labels take their defaults.
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
	pts := make([]shape.Point, len(p.Points))
	for idx, pt := range p.Points {
		x, y := p.Position(pt)
		pts[idx] = shape.Point{X: x, Y: y}
	}
	path := shape.MonotoneX(pts)
	width := strokeWidth
	if p.Narrow {
		width = narrowStroke
	}
	line := scene.New(scene.Path).WithClass(ClassLine).
		Set("d", path.String()).
		Set("stroke", color.Line).
		SetNum("stroke-width", width).
		Set("fill", "none")
	if animate {
		line.Set("stroke-dasharray", transition.DashArray(path.Length())).
			SetNum("stroke-dashoffset", 0).
			Animate(transition.DashReveal(path.Length(), revealDuration))
	}
	content.Append(line)

	radius := dotRadius
	if p.Narrow {
		radius = narrowRadius
	}
	for idx, pt := range pts {
		dot := scene.New(scene.Circle).WithClass(ClassDot).WithKey(strconv.Itoa(idx)).
			SetNum("cx", pt.X).
			SetNum("cy", pt.Y).
			SetNum("r", radius).
			Set("fill", color.Line)
		if animate {
			dot.Animate(transition.New("r", time.Duration(idx)*dotStagger, dotDuration, nil, transition.Number(0, radius)))
		}
		content.Append(p.Hide(dot, pt.X, pt.Y))
	}
}

func (m *marks) Tooltip(pt xychart.Point) (safehtml.HTML, error) {
	return tooltip.Render(tooltipTemplate, struct {
		XLabel, X, YLabel, Y string
	}{
		XLabel: m.props.XLabel,
		X:      magnitude.Compact(pt.X),
		YLabel: m.props.YLabel,
		Y:      magnitude.Fixed(pt.Y, 2),
	})
}

// Chart is an animated line chart.
type Chart struct {
	*xychart.Chart
}

// New returns a new line chart.
func New(props Props) *Chart {
	props = props.withDefaults()
	return &Chart{
		Chart: xychart.New(xychart.Config{
			Title:     props.Title,
			XLabel:    props.XLabel,
			YLabel:    props.YLabel,
			Margin:    Margin,
			Font:      scale.LineFont,
			FocusLine: true,
			Marks:     &marks{props: props},
		}),
	}
}

// Load replaces the chart's data with a copy of points, and redraws it.
func (c *Chart) Load(points []Point) {
	pts := make([]xychart.Point, len(points))
	for idx, pt := range points {
		pts[idx] = xychart.Point{X: pt.X, Y: pt.Y}
	}
	c.Chart.Load(pts)
}
