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

// Package rankingchart provides an animated leaderboard that plays through
// a timeline of ranking snapshots.
//
// A Chart owns a Player, which steps through the timeline once per
// Interval while playing.  Each step redraws the chart's bars with the
// keyed bar layer of the bar/pie chart, so that entries rise, move and sink
// as their ranks change.  Below the plot, a scrubber shows one marker per
// snapshot; clicking a marker jumps to that snapshot.
//
// The structure of a ranking chart in a litviz response, with each level
// representing a DataSeries or nested Datum, is:
//
//	rankingchart
//	  properties:
//	    * x_axis_label: string
//	    * y_axis_label: string
//	    * accumulate: bool
//	    * state: string ("idle" or "playing")
//	    * snapshot_index: int
//	    * timestamps: []double
//	  children:
//	    * entries
//	    * scene
//
//	entries
//	  children:
//	    repeated entry
//
//	entry
//	  properties:
//	    * label: string
//	    * value: double
package rankingchart

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/safehtml/template"
	barpiechart "github.com/ilhamster/litviz/bar_pie_chart"
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
	DefaultXLabel = "x"
	DefaultYLabel = "y"
)

// Scene classes.
const (
	ClassChart       = "chart"
	ClassContainer   = "chart-container"
	ClassBackground  = "background-rect"
	ClassXLabel      = "x-axis-label"
	ClassTopGroup    = "highest-ranked-item-label-group"
	ClassTopLabel    = "highest-ranked-item-label"
	ClassTimestamp   = "current-timestamp-label"
	ClassScrubber    = "scrubber"
	ClassTrack       = "scrubber-track"
	ClassProgress    = "scrubber-progress"
	ClassMarker      = "scrubber-marker"
	ClassMarkerLabel = "scrubber-label"
)

// Listener actions.
const (
	ActionClear = "clear"
	ActionBlur  = "blur"
	// ActionFocus is followed by ':' and the entry's label.
	ActionFocus = "focus"
	// ActionScrub is followed by ':' and the snapshot index.
	ActionScrub = "scrub"
	ActionPlay  = "play"
	ActionPause = "pause"
	ActionStop  = "stop"
	ActionReset = "reset"
)

const (
	accumulateKey = "accumulate"
	stateKey      = "state"
	indexKey      = "snapshot_index"
	timestampsKey = "timestamps"
)

// ChartMargin is the ranking plot's margin.  On narrow containers the left
// margin shrinks to NarrowLeft and entry names are drawn inside the bars.
var ChartMargin = barpiechart.Margin{Top: 50, Right: 20, Bottom: 10, Left: 100}

// Scrubber layout.
const (
	NarrowLeft = 20
	// PlotShare is the fraction of the container height given to the plot;
	// the scrubber takes the rest.
	PlotShare = 0.9

	trackInset       = 20
	trackHeight      = 20
	progressHeight   = 10
	markerRadius     = 5
	labelsDuration   = 500 * time.Millisecond
	progressDuration = 300 * time.Millisecond
)

var entryTooltip = template.Must(template.New("entry").Parse(
	`Label: {{.Label}}<br/>Rank: {{.Rank}}<br/>{{.XLabel}}: {{.Value}}`,
))

// Props configures a ranking chart.  Empty labels take their defaults.
type Props struct {
	XLabel, YLabel string
	// If true, each step merges a single entry into a running ranking.
	Accumulate bool
	// Clock drives playback.  Nil means RealClock.
	Clock Clock
	// OnFrame, if set, is called with each frame after it is drawn, without
	// the chart's lock held.  Like a Player's step callback, it must not
	// call Pause, Stop, Reset or Unmount.
	OnFrame func(Frame)
}

func (p Props) withDefaults() Props {
	if p.XLabel == "" {
		p.XLabel = DefaultXLabel
	}
	if p.YLabel == "" {
		p.YLabel = DefaultYLabel
	}
	return p
}

// Chart is an animated ranking chart.  Its methods are safe for concurrent
// use.
type Chart struct {
	props  Props
	player *Player

	mu         sync.Mutex
	container  *resize.Container
	disconnect func()
	tooltip    *tooltip.Tooltip
	loaded     bool
	frame      Frame
	bars       *barpiechart.Bars
	focused    string
	progress   float64
	scene      *scene.Scene
	draws      int
}

// New returns a new, unmounted ranking chart.
func New(props Props) *Chart {
	props = props.withDefaults()
	c := &Chart{
		props: props,
		frame: Frame{Index: -1},
	}
	c.bars = &barpiechart.Bars{
		EndLabel:      func(it Item) string { return magnitude.Compact(it.Value) },
		EndLabelClass: barpiechart.ClassValueLabel,
		NameLabels:    true,
		Listeners:     focusListeners,
	}
	c.player = NewPlayer(props.Clock, props.Accumulate, c.onStep)
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

// onStep redraws the receiver with a frame reported by its player.
func (c *Chart) onStep(f Frame) {
	c.mu.Lock()
	c.loaded = true
	c.frame = f
	if c.focused != "" && indexOf(f.Entries, c.focused) < 0 {
		c.clearFocus()
	}
	c.draw(true)
	c.mu.Unlock()
	if c.props.OnFrame != nil {
		c.props.OnFrame(f)
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

// Unmount stops playback, detaches the receiver from its container and
// releases its tooltip.  No playback step is drawn after Unmount returns.
func (c *Chart) Unmount() {
	c.player.Pause()
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

// Load stops playback, replaces the receiver's timeline with a copy of the
// provided one, and shows its first snapshot.
func (c *Chart) Load(timeline []Snapshot) error {
	return c.player.Load(timeline)
}

// Play starts playback.
func (c *Chart) Play() {
	c.player.Play()
}

// Pause stops playback at the current step.
func (c *Chart) Pause() {
	c.player.Pause()
}

// Stop stops playback and rewinds to the first snapshot.
func (c *Chart) Stop() {
	c.player.Stop()
}

// Reset stops playback and clears the ranking.
func (c *Chart) Reset() {
	c.player.Reset()
}

// Advance performs a single playback step.
func (c *Chart) Advance() bool {
	return c.player.Advance()
}

// Scrub jumps to snapshot idx.
func (c *Chart) Scrub(idx int) error {
	return c.player.Scrub(idx)
}

// State returns the receiver's playback state.
func (c *Chart) State() State {
	return c.player.State()
}

// Frame returns the frame the receiver last drew.
func (c *Chart) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	ret := c.frame
	ret.Entries = append([]Item(nil), c.frame.Entries...)
	return ret
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

func indexOf(entries []Item, lbl string) int {
	for idx, it := range entries {
		if it.Label == lbl {
			return idx
		}
	}
	return -1
}

func margin(size resize.Size) barpiechart.Margin {
	m := ChartMargin
	if size.Narrow() {
		m.Left = NarrowLeft
	}
	return m
}

func plotHeight(size resize.Size) float64 {
	return float64(size.Height) * PlotShare
}

func (c *Chart) geometry(size resize.Size) barpiechart.Geometry {
	m := margin(size)
	entries := c.frame.Entries
	if len(entries) > barpiechart.MaxBars {
		entries = entries[:barpiechart.MaxBars]
	}
	return barpiechart.NewGeometry(entries,
		float64(size.Width)-m.Left-m.Right,
		plotHeight(size)-m.Top-m.Bottom,
		scale.RankingFont.Size(float64(size.Width)),
		size.Narrow(),
	)
}

// Focus shows the tooltip for the entry with the provided label, as when
// its bar is hovered or touched.
func (c *Chart) Focus(lbl string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := indexOf(c.frame.Entries, lbl)
	if idx < 0 || idx >= barpiechart.MaxBars {
		return fmt.Errorf("no entry labeled '%s' is drawn", lbl)
	}
	if c.tooltip == nil {
		return resize.ErrNotMounted
	}
	it := c.frame.Entries[idx]
	content, err := tooltip.Render(entryTooltip, struct {
		Label, Rank, XLabel, Value string
	}{
		Label:  it.Label,
		Rank:   strconv.Itoa(idx + 1),
		XLabel: c.props.XLabel,
		Value:  magnitude.Compact(it.Value),
	})
	if err != nil {
		return err
	}
	size := c.size()
	m := margin(size)
	g := c.geometry(size)
	x := m.Left + g.X.Apply(it.Value)
	y := m.Top + g.Slot(idx) + g.BarHeight()/2
	if err := c.tooltip.Show(content, x, y); err != nil {
		return err
	}
	c.focused = lbl
	c.draw(false)
	return nil
}

// Blur hides the tooltip, as when the pointer leaves a bar.
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
	return nil
}

// TouchBackground handles a touch on the chart background, which hides a
// visible tooltip.
func (c *Chart) TouchBackground() error {
	c.mu.Lock()
	visible := c.tooltip != nil && c.tooltip.Visible()
	c.mu.Unlock()
	if !visible {
		return nil
	}
	return c.Blur()
}

// Handle performs a listener action from the receiver's scene.  Player
// methods are called without holding the receiver's lock, since the player
// reports steps back through it.
func (c *Chart) Handle(action string) error {
	name, arg, _ := strings.Cut(action, ":")
	switch name {
	case ActionClear:
		return c.TouchBackground()
	case ActionBlur:
		return c.Blur()
	case ActionFocus:
		return c.Focus(arg)
	case ActionScrub:
		idx, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("bad snapshot index '%s': %w", arg, err)
		}
		return c.Scrub(idx)
	case ActionPlay:
		c.Play()
		return nil
	case ActionPause:
		c.Pause()
		return nil
	case ActionStop:
		c.Stop()
		return nil
	case ActionReset:
		c.Reset()
		return nil
	}
	return fmt.Errorf("unsupported action '%s'", action)
}

// draw redraws the receiver's scene.  c.mu must be held.
func (c *Chart) draw(animate bool) {
	size := c.size()
	s := &scene.Scene{Width: size.Width, Height: size.Height}
	root := scene.New(scene.Group).WithClass(ClassChart)
	timestamps := c.player.Timestamps()
	switch {
	case !c.loaded:
		root.Append(scene.Loading(size.Width, size.Height))
	case len(timestamps) == 0:
	default:
		root.Append(
			scene.New(scene.Rect).WithClass(ClassBackground).
				SetNum("width", float64(size.Width)).
				SetNum("height", plotHeight(size)).
				WithStyle(style.HitArea).
				On(scene.TouchStart, ActionClear),
		)
		if len(c.frame.Entries) > 0 {
			root.Append(c.renderPlot(size, animate))
		} else {
			c.bars.Reset()
		}
		root.Append(c.renderScrubber(size, timestamps, animate))
		if c.tooltip != nil {
			root.Append(c.tooltip.Element())
		}
	}
	s.Root = root
	c.scene = s
	c.draws++
}

func (c *Chart) renderPlot(size resize.Size, animate bool) *scene.Element {
	m := margin(size)
	g := c.geometry(size)
	large := style.Px(scale.RankingFont.Large(float64(size.Width)))
	ret := scene.New(scene.Group).WithClass(ClassContainer).
		Set("transform", transition.TranslateAttr(m.Left, m.Top))
	ret.Append(g.Axes(continuousaxis.Blank)...)
	ret.Append(
		scene.New(scene.Text).WithClass(ClassXLabel).
			SetNum("x", g.InnerWidth/2).
			SetNum("y", -30).
			Set("font-size", style.Px(g.FontSize)).
			Set("text-anchor", "middle").
			WithText(c.props.XLabel),
		c.bars.Draw(c.frame.Entries, g, animate, c.focused),
	)
	top := func(class, dy, text string) *scene.Element {
		el := scene.New(scene.Text).WithClass(class).
			Set("text-anchor", "end").
			Set("fill", "black").
			SetNum("x", g.InnerWidth-10).
			SetNum("y", g.InnerHeight).
			Set("dy", dy).
			Set("font-size", large).
			Set("font-weight", "bold").
			Set("opacity", "1").
			WithText(text)
		if animate {
			el.Animate(transition.New("opacity", 0, labelsDuration, nil, transition.Number(0, 1)))
		}
		return el
	}
	labels := scene.New(scene.Group).WithClass(ClassTopGroup).
		Append(top(ClassTopLabel, "-2em", strings.ToUpper(c.frame.Entries[0].Label)))
	if c.frame.Index >= 0 {
		labels.Append(top(ClassTimestamp, "-1em", magnitude.Compact(c.frame.Timestamp)))
	}
	ret.Append(labels)
	return ret
}

// progressFraction returns the share of the timeline that has been played.
func progressFraction(index, count int) float64 {
	if count <= 1 {
		return 1
	}
	if index < 0 {
		return 0
	}
	return float64(index) / float64(count-1)
}

func (c *Chart) renderScrubber(size resize.Size, timestamps []float64, animate bool) *scene.Element {
	width := float64(size.Width)
	trackWidth := width - 2*trackInset
	if trackWidth < 0 {
		trackWidth = 0
	}
	fontSize := style.Px(scale.RankingFont.Size(width))
	ret := scene.New(scene.Group).WithClass(ClassScrubber).
		Set("transform", transition.TranslateAttr(0, plotHeight(size)))
	ret.Append(scene.New(scene.Rect).WithClass(ClassTrack).
		SetNum("x", trackInset).
		SetNum("width", trackWidth).
		SetNum("height", trackHeight).
		SetNum("rx", trackHeight/2).
		Set("fill", color.Grid))
	if c.props.Accumulate {
		w := progressFraction(c.frame.Index, len(timestamps)) * trackWidth
		bar := scene.New(scene.Rect).WithClass(ClassProgress).
			SetNum("x", trackInset).
			SetNum("y", (trackHeight-progressHeight)/2).
			SetNum("width", w).
			SetNum("height", progressHeight).
			SetNum("rx", progressHeight/2).
			Set("fill", color.Active)
		if animate && c.progress != w {
			bar.Animate(transition.New("width", 0, progressDuration, nil, transition.Number(c.progress, w)))
		}
		c.progress = w
		ret.Append(bar)
	}
	step := trackWidth / float64(len(timestamps))
	for idx, ts := range timestamps {
		active := idx == c.frame.Index
		fill := color.Inactive
		if active {
			fill = color.Active
		}
		if c.props.Accumulate {
			fill = "transparent"
		}
		labelFill := color.Text
		if active {
			labelFill = color.Active
		}
		cx := trackInset + (float64(idx)+0.5)*step
		action := ActionScrub + ":" + strconv.Itoa(idx)
		ret.Append(scene.New(scene.Group).WithClass(ClassMarker).WithKey(strconv.Itoa(idx)).
			On(scene.Click, action).
			Append(
				scene.New(scene.Circle).
					SetNum("cx", cx).
					SetNum("cy", trackHeight/2).
					SetNum("r", markerRadius).
					Set("fill", fill),
				scene.New(scene.Text).WithClass(ClassMarkerLabel).
					SetNum("x", cx).
					SetNum("y", trackHeight+15).
					Set("text-anchor", "middle").
					Set("font-size", fontSize).
					Set("fill", labelFill).
					WithText(magnitude.Compact(ts)),
			))
	}
	return ret
}

// Define encodes the receiver's frame and current scene into the provided
// DataBuilder.
func (c *Chart) Define(db util.DataBuilder) {
	timestamps, state := c.player.Timestamps(), c.player.State()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scene == nil {
		c.draw(false)
	}
	db.With(
		label.Axes(c.props.XLabel, c.props.YLabel),
		util.BoolProperty(accumulateKey, c.props.Accumulate),
		util.StringProperty(stateKey, state.String()),
		util.IntegerProperty(indexKey, int64(c.frame.Index)),
		util.DoublesProperty(timestampsKey, timestamps...),
	)
	entries := db.Child()
	for _, it := range c.frame.Entries {
		entries.Child().With(
			label.Text(it.Label),
			magnitude.Value(it.Value),
		)
	}
	c.scene.Define(db.Child())
}
