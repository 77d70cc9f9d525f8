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

// Package continuousaxis renders axes for continuous linear scales.  An axis
// has an orientation, a scale, tick settings and a label formatter.  It is
// rendered as a scene group containing a domain line and one group per tick,
// and may be defined into a response with its type, label, and minimum and
// maximum points along its domain.
//
// Grid lines are axes whose inner ticks span the plot:
//
//	grid := continuousaxis.New(continuousaxis.Top, x).
//	  WithTickSizeInner(-innerHeight).
//	  WithClass("x-grid")
package continuousaxis

import (
	"fmt"
	"math"

	"github.com/ilhamster/litviz/magnitude"
	"github.com/ilhamster/litviz/scale"
	"github.com/ilhamster/litviz/scene"
	"github.com/ilhamster/litviz/style"
	"github.com/ilhamster/litviz/transition"
	"github.com/ilhamster/litviz/util"
)

const (
	axisTypeKey  = "axis_type"
	axisMinKey   = "axis_min"
	axisMaxKey   = "axis_max"
	axisLabelKey = "axis_label"

	doubleAxisType = "double"

	defaultTickCount   = 10
	defaultTickSize    = 6
	defaultTickPadding = 3
	defaultFontSize    = 10
)

// Orient is the side of the plot an axis is drawn along.
type Orient int

// Axis orientations.
const (
	Bottom Orient = iota
	Left
	Top
)

// k is the direction in which ticks extend from the domain line.
func (o Orient) k() float64 {
	if o == Bottom {
		return 1
	}
	return -1
}

func (o Orient) vertical() bool {
	return o == Left
}

// Axis is a renderable axis.
type Axis struct {
	orient        Orient
	scale         scale.Linear
	label         string
	class         string
	tickCount     int
	tickValues    []float64
	format        func(v float64) string
	tickSizeInner float64
	tickSizeOuter float64
	tickPadding   float64
	tickStroke    string
	fontSize      float64
}

// New returns a new axis of the provided orientation for the provided scale.
func New(orient Orient, s scale.Linear) *Axis {
	return &Axis{
		orient:        orient,
		scale:         s,
		tickCount:     defaultTickCount,
		tickSizeInner: defaultTickSize,
		tickSizeOuter: defaultTickSize,
		tickPadding:   defaultTickPadding,
		tickStroke:    "currentColor",
		fontSize:      defaultFontSize,
	}
}

// WithLabel sets the receiver's label.
func (a *Axis) WithLabel(label string) *Axis {
	a.label = label
	return a
}

// WithClass sets the class of the receiver's scene group.
func (a *Axis) WithClass(class string) *Axis {
	a.class = class
	return a
}

// WithTicks sets the approximate number of ticks the receiver shows.
func (a *Axis) WithTicks(count int) *Axis {
	a.tickCount = count
	return a
}

// WithTickValues sets the exact tick values the receiver shows.
func (a *Axis) WithTickValues(values ...float64) *Axis {
	a.tickValues = values
	return a
}

// WithFormat sets the receiver's tick label formatter.
func (a *Axis) WithFormat(format func(v float64) string) *Axis {
	a.format = format
	return a
}

// WithTickSizeInner sets the length of the receiver's tick lines.  Negative
// sizes extend across the plot.
func (a *Axis) WithTickSizeInner(px float64) *Axis {
	a.tickSizeInner = px
	return a
}

// WithTickSizeOuter sets the length of the receiver's domain line end caps.
func (a *Axis) WithTickSizeOuter(px float64) *Axis {
	a.tickSizeOuter = px
	return a
}

// WithTickStroke sets the stroke color of the receiver's tick lines.
func (a *Axis) WithTickStroke(color string) *Axis {
	a.tickStroke = color
	return a
}

// WithFontSize sets the receiver's tick label font size in pixels.
func (a *Axis) WithFontSize(px float64) *Axis {
	a.fontSize = px
	return a
}

// Ticks returns the receiver's tick values.
func (a *Axis) Ticks() []float64 {
	if a.tickValues != nil {
		return a.tickValues
	}
	return a.scale.Ticks(a.tickCount)
}

func (a *Axis) formatter() func(v float64) string {
	if a.format != nil {
		return a.format
	}
	d0, d1 := a.scale.Domain()
	step := scale.TickStep(d0, d1, a.tickCount)
	return func(v float64) string {
		return magnitude.Tick(v, step)
	}
}

// Integer formats tick values as integers.
func Integer(v float64) string {
	return magnitude.Fixed(math.Round(v)+0, 0)
}

// Blank formats every tick value as the empty string.
func Blank(float64) string {
	return ""
}

func (a *Axis) domainPath() string {
	k := a.orient.k()
	r0, r1 := a.scale.Range()
	outer := transition.Format(k * a.tickSizeOuter)
	f := transition.Format
	if a.orient.vertical() {
		if a.tickSizeOuter != 0 {
			return fmt.Sprintf("M%s,%sH0V%sH%s", outer, f(r0), f(r1), outer)
		}
		return fmt.Sprintf("M0,%sV%s", f(r0), f(r1))
	}
	if a.tickSizeOuter != 0 {
		return fmt.Sprintf("M%s,%sV0H%sV%s", f(r0), outer, f(r1), outer)
	}
	return fmt.Sprintf("M%s,0H%s", f(r0), f(r1))
}

// Element renders the receiver as a scene group.
func (a *Axis) Element() *scene.Element {
	k := a.orient.k()
	anchor := "middle"
	if a.orient.vertical() {
		anchor = "end"
	}
	ret := scene.New(scene.Group).WithClass(a.class).
		WithStyle(style.New().
			With("fill", "none").
			With("font-size", style.Px(a.fontSize)).
			With("font-family", "sans-serif").
			With("text-anchor", anchor),
		)
	ret.Append(scene.New(scene.Path).WithClass("domain").
		Set("stroke", "currentColor").
		Set("d", a.domainPath()))
	spacing := math.Max(a.tickSizeInner, 0) + a.tickPadding
	format := a.formatter()
	for _, v := range a.Ticks() {
		pos := a.scale.Apply(v)
		label := format(v)
		tick := scene.New(scene.Group).WithClass("tick").WithKey(transition.Format(v)).Set("opacity", "1")
		line := scene.New(scene.Line).Set("stroke", a.tickStroke)
		text := scene.New(scene.Text).Set("fill", "currentColor").WithText(label)
		if a.orient.vertical() {
			tick.Set("transform", transition.TranslateAttr(0, pos))
			line.SetNum("x2", k*a.tickSizeInner)
			text.SetNum("x", k*spacing).Set("dy", "0.32em")
		} else {
			tick.Set("transform", transition.TranslateAttr(pos, 0))
			line.SetNum("y2", k*a.tickSizeInner)
			dy := "0.71em"
			if a.orient == Top {
				dy = "0em"
			}
			text.SetNum("y", k*spacing).Set("dy", dy)
		}
		ret.Append(tick.Append(line, text))
	}
	return ret
}

// Define annotates with a definition of the receiver.
func (a *Axis) Define() util.PropertyUpdate {
	d0, d1 := a.scale.Domain()
	return util.Chain(
		util.StringProperty(axisTypeKey, doubleAxisType),
		util.If(a.label != "", util.StringProperty(axisLabelKey, a.label)),
		util.DoubleProperty(axisMinKey, math.Min(d0, d1)),
		util.DoubleProperty(axisMaxKey, math.Max(d0, d1)),
	)
}
