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

// Package barpiechart provides a chart that shows a ranked dataset either
// as horizontal bars or as an annular pie, with a control switching between
// the two.
//
// In bar mode, up to 20 items are drawn as bars in rank slots by a keyed
// bar layer (Bars), which the ranking chart reuses.  In pie mode the top 10
// items are drawn as slices, with a legend and a center label naming the
// hovered slice.
//
// The structure of a bar/pie chart in a litviz response, with each level
// representing a DataSeries or nested Datum, is:
//
//	barpiechart
//	  properties:
//	    * title: string
//	    * x_axis_label: string
//	    * y_axis_label: string
//	    * mode: string ("bar" or "pie")
//	    * palette_pie: []string
//	  children:
//	    * items
//	    * scene
//
//	items
//	  children:
//	    repeated item
//
//	item
//	  properties:
//	    * label: string
//	    * value: double
package barpiechart

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/safehtml/template"
	"github.com/google/uuid"
	"github.com/ilhamster/litviz/color"
	continuousaxis "github.com/ilhamster/litviz/continuous_axis"
	"github.com/ilhamster/litviz/label"
	"github.com/ilhamster/litviz/magnitude"
	"github.com/ilhamster/litviz/resize"
	"github.com/ilhamster/litviz/scale"
	"github.com/ilhamster/litviz/scene"
	"github.com/ilhamster/litviz/style"
	"github.com/ilhamster/litviz/tooltip"
	"github.com/ilhamster/litviz/transition"
	"github.com/ilhamster/litviz/util"
)

// Defaults for unset props.
const (
	DefaultXLabel   = "x"
	DefaultYLabel   = "y"
	DefaultBarTitle = "Animated Bar Chart"
	DefaultPieTitle = "Animated Pie Chart"
)

// Scene classes.
const (
	ClassChart      = "chart"
	ClassContainer  = "chart-container"
	ClassBackground = "background-rect"
	ClassTitle      = "chart-title"
	ClassXLabel     = "x-axis-label"
	ClassSwitch     = "mode-switch"
)

// Listener actions.
const (
	ActionClear = "clear"
	ActionBlur  = "blur"
	// ActionFocus is followed by ':' and the item's label.
	ActionFocus = "focus"
	// ActionMode is followed by ':' and the mode to switch to.
	ActionMode = "mode"
)

const modeKey = "mode"

// Margin holds the space around a plot, in pixels.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// ChartMargin is the bar/pie chart's plot margin.
var ChartMargin = Margin{Top: 70, Right: 20, Bottom: 10, Left: 30}

var barTooltip = template.Must(template.New("bar").Parse(
	`Label: {{.Label}}<br/>Rank: {{.Rank}}<br/>{{.XLabel}}: {{.Value}}`,
))

// Mode is the way a bar/pie chart draws its data.
type Mode int

// Chart modes.  The zero Mode is PieMode.
const (
	PieMode Mode = iota
	BarMode
)

func (m Mode) String() string {
	if m == BarMode {
		return "bar"
	}
	return "pie"
}

// ParseMode parses a Mode from its string form.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "pie":
		return PieMode, nil
	case "bar":
		return BarMode, nil
	}
	return PieMode, fmt.Errorf("unknown chart mode '%s'", s)
}

// Props configures a bar/pie chart.  Empty labels and titles take their
// defaults.
type Props struct {
	XLabel, YLabel     string
	BarTitle, PieTitle string
	// Mode is the initial mode.
	Mode Mode
	// If true, no mode switch is drawn.
	HideSwitch bool
}

func (p Props) withDefaults() Props {
	if p.XLabel == "" {
		p.XLabel = DefaultXLabel
	}
	if p.YLabel == "" {
		p.YLabel = DefaultYLabel
	}
	if p.BarTitle == "" {
		p.BarTitle = DefaultBarTitle
	}
	if p.PieTitle == "" {
		p.PieTitle = DefaultPieTitle
	}
	return p
}

// Chart is an animated bar/pie chart.  Its methods are safe for concurrent
// use.
type Chart struct {
	props    Props
	filterID string

	mu         sync.Mutex
	container  *resize.Container
	disconnect func()
	tooltip    *tooltip.Tooltip
	loaded     bool
	items      []Item
	mode       Mode
	bars       *Bars
	pie        *pieLayer
	focused    string
	// center is the label shown at the pie's center; it outlives focus.
	center string
	scene  *scene.Scene
	draws  int
}

// New returns a new, unmounted bar/pie chart.
func New(props Props) *Chart {
	props = props.withDefaults()
	c := &Chart{
		props:    props,
		filterID: "shadow-" + uuid.NewString(),
		mode:     props.Mode,
		pie:      newPieLayer(),
	}
	c.bars = &Bars{
		EndLabel:      func(it Item) string { return label.StartCase(it.Label) },
		EndLabelClass: ClassNameLabel,
		FilterID:      c.filterID,
		Listeners:     focusListeners,
	}
	return c
}

func focusListeners(_ int, it Item) []scene.Listener {
	action := ActionFocus + ":" + it.Label
	return []scene.Listener{
		{Event: scene.MouseOver, Action: action},
		{Event: scene.TouchStart, Action: action},
		{Event: scene.MouseOut, Action: ActionBlur},
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
		c.clearFocus()
		c.draw(true)
	})
	c.draw(true)
}

// Unmount detaches the receiver from its container and releases its
// tooltip.
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

// Load replaces the receiver's data with a copy of items, which should be
// ordered by descending value, and redraws it.
func (c *Chart) Load(items []Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]Item(nil), items...)
	c.loaded = true
	c.clearFocus()
	c.draw(true)
}

// Items returns a copy of the receiver's data.
func (c *Chart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Item(nil), c.items...)
}

// Mode returns the receiver's current mode.
func (c *Chart) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches the receiver to the provided mode, clearing its scene and
// redrawing it with entering transitions.
func (c *Chart) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m == c.mode {
		return
	}
	c.mode = m
	c.bars.Reset()
	c.pie.reset()
	c.clearFocus()
	c.center = ""
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

func (c *Chart) clearFocus() {
	c.focused = ""
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

func (c *Chart) indexOf(lbl string) int {
	for idx, it := range c.items {
		if it.Label == lbl {
			return idx
		}
	}
	return -1
}

// Focus highlights the item with the provided label, as when its bar, slice
// or legend entry is hovered or touched.  In bar mode the tooltip shows the
// item; in pie mode the pie's center names it.
func (c *Chart) Focus(lbl string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexOf(lbl)
	if idx < 0 {
		return fmt.Errorf("no item labeled '%s'", lbl)
	}
	if c.tooltip == nil {
		return resize.ErrNotMounted
	}
	switch c.mode {
	case BarMode:
		if idx >= MaxBars {
			return fmt.Errorf("item '%s' is not drawn", lbl)
		}
		content, err := tooltip.Render(barTooltip, struct {
			Label, Rank, XLabel, Value string
		}{
			Label:  label.StartCase(lbl),
			Rank:   strconv.Itoa(idx + 1),
			XLabel: c.props.XLabel,
			Value:  magnitude.Compact(c.items[idx].Value),
		})
		if err != nil {
			return err
		}
		g := c.barGeometry(c.size())
		x := ChartMargin.Left + g.X.Apply(c.items[idx].Value)
		y := ChartMargin.Top + g.Slot(idx) + g.BarHeight()/2
		if err := c.tooltip.Show(content, x, y); err != nil {
			return err
		}
	case PieMode:
		if idx >= maxSlices {
			return fmt.Errorf("item '%s' is not drawn", lbl)
		}
		c.center = lbl
	}
	c.focused = lbl
	c.draw(false)
	return nil
}

// Blur clears the highlighted item, as when the pointer leaves it.  The
// pie's center label remains.
func (c *Chart) Blur() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tooltip == nil {
		return resize.ErrNotMounted
	}
	if err := c.tooltip.Hide(); err != nil {
		return err
	}
	c.focused = ""
	c.draw(false)
	return nil
}

// TouchBackground handles a touch on the chart background, which clears any
// highlight and tooltip.
func (c *Chart) TouchBackground() error {
	c.mu.Lock()
	active := c.focused != "" || (c.tooltip != nil && c.tooltip.Visible())
	c.mu.Unlock()
	if !active {
		return nil
	}
	return c.Blur()
}

// Handle performs a listener action from the receiver's scene.
func (c *Chart) Handle(action string) error {
	name, arg, _ := strings.Cut(action, ":")
	switch name {
	case ActionClear:
		return c.TouchBackground()
	case ActionBlur:
		return c.Blur()
	case ActionFocus:
		return c.Focus(arg)
	case ActionMode:
		m, err := ParseMode(arg)
		if err != nil {
			return err
		}
		c.SetMode(m)
		return nil
	}
	return fmt.Errorf("unsupported action '%s'", action)
}

func (c *Chart) barGeometry(size resize.Size) Geometry {
	items := c.items
	if len(items) > MaxBars {
		items = items[:MaxBars]
	}
	return NewGeometry(items,
		float64(size.Width)-ChartMargin.Left-ChartMargin.Right,
		float64(size.Height)-ChartMargin.Top-ChartMargin.Bottom,
		scale.BarFont.Size(float64(size.Width)),
		size.Narrow(),
	)
}

// draw redraws the receiver's scene.  c.mu must be held.
func (c *Chart) draw(animate bool) {
	size := c.size()
	s := &scene.Scene{Width: size.Width, Height: size.Height}
	root := scene.New(scene.Group).WithClass(ClassChart)
	switch {
	case !c.loaded:
		root.Append(scene.Loading(size.Width, size.Height))
	case len(c.items) == 0:
	default:
		root.Append(
			scene.New(scene.Rect).WithClass(ClassBackground).
				SetNum("width", float64(size.Width)).
				SetNum("height", float64(size.Height)).
				WithStyle(style.HitArea).
				On(scene.TouchStart, ActionClear),
			scene.New(scene.Defs).Append(Shadow(c.filterID)),
		)
		if c.mode == BarMode {
			root.Append(c.renderBars(size, animate))
		} else {
			root.Append(c.renderPie(size, animate))
		}
		if !c.props.HideSwitch {
			root.Append(c.modeSwitch(size))
		}
		if c.tooltip != nil {
			root.Append(c.tooltip.Element())
		}
	}
	s.Root = root
	c.scene = s
	c.draws++
}

func (c *Chart) renderBars(size resize.Size, animate bool) *scene.Element {
	g := c.barGeometry(size)
	width := float64(size.Width)
	ret := scene.New(scene.Group).WithClass(ClassContainer).
		Set("transform", transition.TranslateAttr(ChartMargin.Left, ChartMargin.Top))
	ret.Append(
		scene.New(scene.Text).WithClass(ClassTitle).
			SetNum("x", g.InnerWidth/2).
			SetNum("y", -ChartMargin.Top).
			Set("font-size", style.Px(scale.BarFont.Title(width))).
			Set("font-weight", "bold").
			Set("text-anchor", "middle").
			Set("dominant-baseline", "hanging").
			WithText(c.props.BarTitle),
	)
	ret.Append(g.Axes(continuousaxis.Integer)...)
	ret.Append(
		scene.New(scene.Text).WithClass(ClassXLabel).
			SetNum("x", g.InnerWidth/2).
			SetNum("y", -30).
			Set("font-size", style.Px(g.FontSize)).
			Set("text-anchor", "middle").
			WithText(c.props.XLabel),
		c.bars.Draw(c.items, g, animate, c.focused),
	)
	return ret
}

func (c *Chart) modeSwitch(size resize.Size) *scene.Element {
	target, text := BarMode, "Bar"
	if c.mode == BarMode {
		target, text = PieMode, "Pie"
	}
	action := ActionMode + ":" + target.String()
	return scene.New(scene.Group).WithClass(ClassSwitch).WithKey(target.String()).
		Set("transform", transition.TranslateAttr(float64(size.Width)-48, 8)).
		On(scene.Click, action).
		Append(
			scene.New(scene.Rect).
				SetNum("width", 40).
				SetNum("height", 28).
				SetNum("rx", 6).
				Set("fill", color.Bar),
			scene.New(scene.Text).
				SetNum("x", 20).
				SetNum("y", 19).
				Set("text-anchor", "middle").
				Set("fill", color.RegionFill).
				WithText(text),
		)
}

// Define encodes the receiver's data and current scene into the provided
// DataBuilder.
func (c *Chart) Define(db util.DataBuilder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scene == nil {
		c.draw(false)
	}
	title := c.props.PieTitle
	if c.mode == BarMode {
		title = c.props.BarTitle
	}
	db.With(
		label.Title(title),
		label.Axes(c.props.XLabel, c.props.YLabel),
		util.StringProperty(modeKey, c.mode.String()),
		color.Pie.Define(),
	)
	items := db.Child()
	for _, it := range c.items {
		items.Child().With(
			label.Text(it.Label),
			magnitude.Value(it.Value),
		)
	}
	c.scene.Define(db.Child())
}
