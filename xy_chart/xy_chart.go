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

// Package xychart provides the shared core of charts plotting points on
// continuous x and y axes.
//
// A Chart owns the plot layout (margins, scales, striped background, axes,
// title and axis labels), the invisible hit targets over each point, the
// focus line and tooltip, and horizontal zoom and pan.  Chart-specific
// marks, such as a line or scatter dots, are drawn by a Marks
// implementation:
//
//	chart := xychart.New(xychart.Config{
//	  Title:  "Average Word Count vs Year",
//	  XLabel: "Year",
//	  YLabel: "Average Word Count",
//	  Margin: xychart.Margin{Top: 30, Right: 20, Bottom: 55, Left: 90},
//	  Font:   scale.LineFont,
//	  Marks:  myMarks,
//	})
//	chart.Mount(container)
//	defer chart.Unmount()
//	chart.Load(points)
//	svg := chart.Scene()
//
// The structure of an xy chart in a litviz response, with each level
// representing a DataSeries or nested Datum, is:
//
//	xychart
//	  properties:
//	    * title: string
//	    * x_axis_label: string
//	    * y_axis_label: string
//	  children:
//	    * axes
//	    * series
//	    * scene
//
//	axes
//	  children:
//	    * x axis
//	    * y axis
//
//	axis
//	  properties:
//	    * axis definition
//
//	series
//	  children:
//	    repeated points
//
//	point
//	  properties:
//	    * x: double
//	    * y: double
//	  children:
//	    * details payload (if any)
package xychart

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/safehtml"
	"github.com/google/uuid"
	"github.com/ilhamster/litviz/color"
	continuousaxis "github.com/ilhamster/litviz/continuous_axis"
	"github.com/ilhamster/litviz/label"
	"github.com/ilhamster/litviz/payload"
	"github.com/ilhamster/litviz/resize"
	"github.com/ilhamster/litviz/scale"
	"github.com/ilhamster/litviz/scene"
	"github.com/ilhamster/litviz/style"
	"github.com/ilhamster/litviz/tooltip"
	"github.com/ilhamster/litviz/transition"
	"github.com/ilhamster/litviz/util"
	"github.com/ilhamster/litviz/zoom"
)

const (
	stripeTicks   = 10
	hitRadius     = 7
	focusDuration = 250 * time.Millisecond
	minZoom       = 1
	maxZoom       = 50
)

// Scene classes.
const (
	ClassChart      = "chart"
	ClassPlot       = "plot"
	ClassLoading    = scene.ClassLoading
	ClassBackground = "background-rect"
	ClassContent    = "chart-content"
	ClassStripes    = "x-stripes"
	ClassStripe     = "stripe"
	ClassTitle      = "chart-title"
	ClassXAxis      = "x-axis"
	ClassYAxis      = "y-axis"
	ClassXLabel     = "x-axis-label"
	ClassYLabel     = "y-axis-label"
	ClassHitArea    = "hit-area"
	ClassFocusLine  = "focus-line"
)

// Listener actions.
const (
	ActionClear = "clear"
	ActionBlur  = "blur"
	// ActionFocus is followed by ':' and the point's index.
	ActionFocus = "focus"
)

// Point is a plotted data point.  Details are shown in tooltips only.
type Point struct {
	X, Y    float64
	Details map[string]any
}

// Margin holds the space around a plot, in pixels.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Marks draws a chart's data marks.
type Marks interface {
	// Draw appends marks for the plot's points to its clipped content.  If
	// animate is true, marks carry their entering transitions.
	Draw(p *Plot, content *scene.Element, animate bool)
	// Tooltip renders the tooltip content for a point.
	Tooltip(pt Point) (safehtml.HTML, error)
}

// Config configures a Chart.
type Config struct {
	Title, XLabel, YLabel string
	Margin                Margin
	Font                  scale.FontScale
	// If true, a dashed vertical line marks the focused point.
	FocusLine bool
	// Formats x axis ticks; defaults to integers.
	XFormat func(float64) string
	Marks   Marks
}

// Plot is the layout of a single draw.
type Plot struct {
	Width, Height           int
	InnerWidth, InnerHeight float64
	Narrow                  bool
	FontSize                float64
	// BaseX is the unzoomed x scale; X is zoomed.
	BaseX, X, Y scale.Linear
	Points      []Point
}

// Position returns the plot coordinates of a point.
func (p *Plot) Position(pt Point) (x, y float64) {
	return p.X.Apply(pt.X), p.Y.Apply(pt.Y)
}

// Visible reports whether plot coordinates lie within the plot area.
func (p *Plot) Visible(x, y float64) bool {
	return x >= 0 && x <= p.InnerWidth && y >= 0 && y <= p.InnerHeight
}

// Hide hides el if the plot coordinates (x, y) are outside the plot area.
func (p *Plot) Hide(el *scene.Element, x, y float64) *scene.Element {
	if !p.Visible(x, y) {
		el.WithStyle(style.Hidden)
	}
	return el
}

// Chart is an xy chart.  Its methods are safe for concurrent use.
type Chart struct {
	cfg    Config
	clipID string

	mu           sync.Mutex
	container    *resize.Container
	disconnect   func()
	tooltip      *tooltip.Tooltip
	loaded       bool
	points       []Point
	transform    zoom.Transform
	focused      int
	focusVisible bool
	plot         *Plot
	scene        *scene.Scene
	draws        int
}

// New returns a new, unmounted Chart.
func New(cfg Config) *Chart {
	return &Chart{
		cfg:       cfg,
		clipID:    "chart-clip-" + uuid.NewString(),
		transform: zoom.Identity,
		focused:   -1,
	}
}

// Mount attaches the receiver to a container, acquiring its tooltip and
// observing the container's size, and draws it.
func (c *Chart) Mount(container *resize.Container) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disconnect != nil {
		c.disconnect()
	}
	if c.tooltip == nil {
		c.tooltip = tooltip.Acquire()
	}
	c.container = container
	c.disconnect = container.Observe(func(resize.Size) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.resetInteraction()
		c.draw(true)
	})
	c.draw(true)
}

// Unmount detaches the receiver from its container and releases its
// tooltip.  The receiver's scene is retained but no longer redrawn.
func (c *Chart) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disconnect != nil {
		c.disconnect()
		c.disconnect = nil
	}
	if c.tooltip != nil {
		c.tooltip.Release()
		c.tooltip = nil
	}
}

// Tooltip returns the receiver's tooltip.
func (c *Chart) Tooltip() *tooltip.Tooltip {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tooltip
}

// Load replaces the receiver's data with a copy of points and redraws it.
func (c *Chart) Load(points []Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.points = append([]Point(nil), points...)
	c.loaded = true
	c.resetInteraction()
	c.draw(true)
}

// Scene returns the receiver's most recent scene.
func (c *Chart) Scene() *scene.Scene {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scene == nil {
		c.draw(false)
	}
	return c.scene
}

// Draws returns the number of times the receiver has drawn.
func (c *Chart) Draws() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draws
}

// Transform returns the receiver's zoom transform.
func (c *Chart) Transform() zoom.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transform
}

// Plot returns the layout of the receiver's most recent draw, or nil if it
// has no plot.
func (c *Chart) Plot() *Plot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plot
}

func (c *Chart) resetInteraction() {
	c.transform = zoom.Identity
	c.focused = -1
	if c.tooltip != nil {
		c.tooltip.Hide()
	}
}

func (c *Chart) size() resize.Size {
	if c.container == nil {
		return resize.Size{}.OrDefault()
	}
	return c.container.Size()
}

// Focus focuses the point at idx, as when its hit target is hovered or
// touched: the tooltip shows the point and the focus line marks it.
func (c *Chart) Focus(idx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.plot == nil {
		return nil
	}
	if idx < 0 || idx >= len(c.points) {
		return fmt.Errorf("no point at index %d", idx)
	}
	if c.tooltip == nil {
		return resize.ErrNotMounted
	}
	content, err := c.cfg.Marks.Tooltip(c.points[idx])
	if err != nil {
		return err
	}
	x, y := c.plot.Position(c.points[idx])
	if err := c.tooltip.Show(content, c.cfg.Margin.Left+x, c.cfg.Margin.Top+y); err != nil {
		return err
	}
	c.focused = idx
	c.draw(false)
	return nil
}

// Blur clears the focused point, as when the pointer leaves a hit target.
func (c *Chart) Blur() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tooltip == nil {
		return resize.ErrNotMounted
	}
	if err := c.tooltip.Hide(); err != nil {
		return err
	}
	c.focused = -1
	c.draw(false)
	return nil
}

// TouchBackground handles a touch on the plot background, which clears a
// visible tooltip and focus line.
func (c *Chart) TouchBackground() error {
	c.mu.Lock()
	visible := c.tooltip != nil && c.tooltip.Visible()
	c.mu.Unlock()
	if !visible {
		return nil
	}
	return c.Blur()
}

func (c *Chart) behavior() zoom.Behavior {
	vp := zoom.Extent{{X: 0, Y: 0}, {X: c.plot.InnerWidth, Y: c.plot.InnerHeight}}
	return zoom.Behavior{
		ScaleExtent: [2]float64{minZoom, maxZoom},
		TranslateExtent: zoom.Extent{
			{X: 0, Y: math.Inf(-1)},
			{X: c.plot.InnerWidth, Y: math.Inf(1)},
		},
		Viewport: vp,
	}
}

// Wheel zooms the receiver horizontally about the event's position, in plot
// coordinates.  It returns false if the event was not handled.
func (c *Chart) Wheel(ev zoom.WheelEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.plot == nil {
		return false
	}
	next, ok := c.behavior().Wheel(c.transform, ev)
	if !ok {
		return false
	}
	c.transform = next
	c.draw(false)
	return true
}

// Pan drags the receiver horizontally by dx pixels.
func (c *Chart) Pan(dx float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.plot == nil {
		return
	}
	next := c.behavior().Pan(c.transform, dx, 0)
	next.Y = 0
	c.transform = next
	c.draw(false)
}

func (c *Chart) layout(size resize.Size) *Plot {
	m := c.cfg.Margin
	xs := make([]float64, len(c.points))
	ys := make([]float64, len(c.points))
	for idx, pt := range c.points {
		xs[idx], ys[idx] = pt.X, pt.Y
	}
	x0, x1, _ := scale.Extent(xs)
	_, yMax, _ := scale.Extent(ys)
	if yMax <= 0 {
		yMax = 1
	}
	iw := float64(size.Width) - m.Left - m.Right
	ih := float64(size.Height) - m.Top - m.Bottom
	baseX := scale.NewLinear(x0, x1, 0, iw)
	return &Plot{
		Width:       size.Width,
		Height:      size.Height,
		InnerWidth:  iw,
		InnerHeight: ih,
		Narrow:      size.Narrow(),
		FontSize:    c.cfg.Font.Size(float64(size.Width)),
		BaseX:       baseX,
		X:           c.transform.RescaleX(baseX),
		Y:           scale.NewLinear(0, yMax, ih, 0).Nice(10),
		Points:      c.points,
	}
}

// draw redraws the receiver's scene.  c.mu must be held.
func (c *Chart) draw(animate bool) {
	size := c.size()
	s := &scene.Scene{Width: size.Width, Height: size.Height}
	c.plot = nil
	switch {
	case !c.loaded:
		s.Root = scene.New(scene.Group).WithClass(ClassChart).
			Append(scene.Loading(size.Width, size.Height))
	case len(c.points) < 2:
		s.Root = scene.New(scene.Group).WithClass(ClassChart)
	default:
		c.plot = c.layout(size)
		s.Root = c.render(c.plot, animate)
	}
	c.scene = s
	c.draws++
}

func (c *Chart) render(p *Plot, animate bool) *scene.Element {
	m := c.cfg.Margin
	plot := scene.New(scene.Group).WithClass(ClassPlot).
		Set("transform", transition.TranslateAttr(m.Left, m.Top))
	plot.Append(
		scene.New(scene.Rect).WithClass(ClassBackground).
			SetNum("width", float64(p.Width)).
			SetNum("height", float64(p.Height)).
			WithStyle(style.HitArea).
			On(scene.TouchStart, ActionClear),
		scene.New(scene.Defs).Append(
			scene.New(scene.ClipPath).Set("id", c.clipID).Append(
				scene.New(scene.Rect).
					SetNum("width", p.InnerWidth).
					SetNum("height", p.InnerHeight),
			),
		),
	)
	content := scene.New(scene.Group).WithClass(ClassContent).
		Set("clip-path", "url(#"+c.clipID+")")
	content.Append(c.stripes(p))
	plot.Append(content)

	fontSize := style.Px(p.FontSize)
	plot.Append(
		scene.New(scene.Text).WithClass(ClassTitle).
			SetNum("x", p.InnerWidth/2-m.Left/2).
			Set("y", "-1em").
			Set("font-weight", "bold").
			Set("font-size", style.Px(c.cfg.Font.Title(float64(p.Width)))).
			Set("text-anchor", "middle").
			WithText(c.cfg.Title),
	)
	xTicks := 10
	if p.Narrow {
		xTicks = 5
	}
	xFormat := c.cfg.XFormat
	if xFormat == nil {
		xFormat = continuousaxis.Integer
	}
	plot.Append(
		continuousaxis.New(continuousaxis.Bottom, p.X).
			WithClass(ClassXAxis).
			WithTicks(xTicks).
			WithFormat(xFormat).
			WithFontSize(p.FontSize).
			Element().
			Set("transform", transition.TranslateAttr(0, p.InnerHeight)),
		continuousaxis.New(continuousaxis.Left, p.Y).
			WithClass(ClassYAxis).
			WithFontSize(p.FontSize).
			Element(),
		scene.New(scene.Text).WithClass(ClassXLabel).
			SetNum("x", p.InnerWidth/2).
			SetNum("y", p.InnerHeight+m.Bottom-10).
			Set("font-size", fontSize).
			Set("text-anchor", "middle").
			WithText(c.cfg.XLabel),
		scene.New(scene.Text).WithClass(ClassYLabel).
			Set("transform", "rotate(-90)").
			SetNum("x", -p.InnerHeight/2).
			SetNum("y", -m.Left+20).
			Set("font-size", fontSize).
			Set("text-anchor", "middle").
			WithText(c.cfg.YLabel),
	)

	c.cfg.Marks.Draw(p, content, animate)
	for idx, pt := range p.Points {
		x, y := p.Position(pt)
		action := ActionFocus + ":" + strconv.Itoa(idx)
		content.Append(p.Hide(
			scene.New(scene.Circle).WithClass(ClassHitArea).WithKey(strconv.Itoa(idx)).
				SetNum("cx", x).
				SetNum("cy", y).
				SetNum("r", hitRadius).
				WithStyle(style.HitArea).
				On(scene.MouseOver, action).
				On(scene.TouchStart, action).
				On(scene.MouseOut, ActionBlur),
			x, y,
		))
	}
	if c.cfg.FocusLine {
		content.Append(c.focusLine(p))
	}

	root := scene.New(scene.Group).WithClass(ClassChart).Append(plot)
	if c.tooltip != nil {
		root.Append(c.tooltip.Element())
	}
	return root
}

func (c *Chart) stripes(p *Plot) *scene.Element {
	ret := scene.New(scene.Group).WithClass(ClassStripes)
	ticks := p.X.Ticks(stripeTicks)
	for i := 0; i+1 < len(ticks); i += 2 {
		x0, x1 := p.X.Apply(ticks[i]), p.X.Apply(ticks[i+1])
		ret.Append(scene.New(scene.Rect).WithClass(ClassStripe).
			SetNum("x", x0).
			SetNum("y", 0).
			SetNum("width", x1-x0).
			SetNum("height", p.InnerHeight).
			Set("fill", color.Stripe))
	}
	return ret
}

func (c *Chart) focusLine(p *Plot) *scene.Element {
	ret := scene.New(scene.Line).WithClass(ClassFocusLine).
		SetNum("y1", 0).
		SetNum("y2", p.InnerHeight).
		Set("stroke", color.FocusLine).
		Set("stroke-dasharray", "3,3")
	visible := c.focused >= 0
	if visible {
		x := p.X.Apply(c.points[c.focused].X)
		ret.SetNum("x1", x).SetNum("x2", x)
	}
	from, to := 0.0, 0.0
	if c.focusVisible {
		from = 1
	}
	if visible {
		to = 1
	}
	ret.SetNum("opacity", to)
	if from != to {
		ret.Animate(transition.New("opacity", 0, focusDuration, nil, transition.Number(from, to)))
	}
	c.focusVisible = visible
	return ret
}

type payloader struct {
	db util.DataBuilder
}

func (p payloader) Payload() util.DataBuilder {
	return p.db.Child()
}

// Define encodes the receiver's data and current scene into the provided
// DataBuilder.
func (c *Chart) Define(db util.DataBuilder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scene == nil {
		c.draw(false)
	}
	db.With(
		label.Title(c.cfg.Title),
		label.Axes(c.cfg.XLabel, c.cfg.YLabel),
	)
	axes := db.Child()
	xs := make([]float64, len(c.points))
	ys := make([]float64, len(c.points))
	for idx, pt := range c.points {
		xs[idx], ys[idx] = pt.X, pt.Y
	}
	x0, x1, _ := scale.Extent(xs)
	_, yMax, _ := scale.Extent(ys)
	axes.Child().With(continuousaxis.New(continuousaxis.Bottom, scale.NewLinear(x0, x1, 0, 1)).
		WithLabel(c.cfg.XLabel).Define())
	axes.Child().With(continuousaxis.New(continuousaxis.Left, scale.NewLinear(0, math.Max(yMax, 0), 1, 0)).
		WithLabel(c.cfg.YLabel).Define())
	series := db.Child()
	for _, pt := range c.points {
		point := series.Child().With(
			util.DoubleProperty("x", pt.X),
			util.DoubleProperty("y", pt.Y),
		)
		payload.Details(payloader{point}, pt.Details)
	}
	c.scene.Define(db.Child())
}
