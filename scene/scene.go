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

// Package scene provides the scene graph litviz charts draw into.
//
// A chart's draw produces a Scene: a tree of Elements carrying their final
// attribute values, plus the Tweens that animate them there from their
// previous (or entering) state.  A Scene is data.  It may be sampled at any
// elapsed time since the draw with At, written as SVG with WriteSVG, or
// encoded into a data response with Define.
//
// Elements are assembled fluently:
//
//	g := scene.New(scene.Group).WithClass("bars").Append(
//	  scene.New(scene.Rect).WithKey("apple").
//	    SetNum("width", 120).
//	    Animate(transition.New("width", 0, 700*time.Millisecond, nil, transition.Number(60, 120))),
//	)
//
// The encoding of a scene in a litviz response, with each level representing
// a DataSeries or nested Datum, is:
//
//	scene
//	  properties:
//	    * width: int
//	    * height: int
//	    * duration: duration
//	  children:
//	    * root element
//
//	element
//	  properties:
//	    * kind: string
//	    * key: string (if set)
//	    * class: string (if set)
//	    * style_<attr>: string, for each attribute
//	    * text: string (if set)
//	    * html: string (if set)
//	    * listeners: strings, each '<event>:<action>' (if any)
//	    * remove_at: duration (if set)
//	  children:
//	    * repeated tweens
//	    * details payload (if any)
//	    * repeated child elements
//
//	tween
//	  properties:
//	    * kind: 'tween'
//	    * attr: string
//	    * delay: duration
//	    * duration: duration
//	    * ease: string
//	    * from: string
//	    * to: string
package scene

import (
	"sort"
	"time"

	"github.com/google/safehtml"
	"github.com/ilhamster/litviz/color"
	"github.com/ilhamster/litviz/payload"
	"github.com/ilhamster/litviz/style"
	"github.com/ilhamster/litviz/transition"
	"github.com/ilhamster/litviz/util"
)

// Kind is the kind of a scene element; for most kinds, its SVG tag name.
type Kind string

// Element kinds.
const (
	Group         Kind = "g"
	Rect          Kind = "rect"
	Circle        Kind = "circle"
	Line          Kind = "line"
	Path          Kind = "path"
	Text          Kind = "text"
	ClipPath      Kind = "clipPath"
	Defs          Kind = "defs"
	Filter        Kind = "filter"
	DropShadow    Kind = "feDropShadow"
	ForeignObject Kind = "foreignObject"
)

// TextContent is the pseudo-attribute a Tween animates to change an
// element's text.
const TextContent = "textContent"

// Event is a pointer event an element listens for.
type Event string

// Supported events.
const (
	MouseOver  Event = "mouseover"
	MouseOut   Event = "mouseout"
	TouchStart Event = "touchstart"
	TouchEnd   Event = "touchend"
	Click      Event = "click"
)

// Listener binds an event on an element to a chart action.
type Listener struct {
	Event  Event
	Action string
}

func (l Listener) String() string {
	return string(l.Event) + ":" + l.Action
}

// Element is a node in a scene graph.
type Element struct {
	Kind  Kind
	Key   string
	Class string
	Attrs map[string]string
	Text  string
	// Raw holds the trusted HTML content of a foreignObject.
	Raw       safehtml.HTML
	Children  []*Element
	Tweens    []transition.Tween
	Listeners []Listener
	Details   map[string]any
	// If nonzero, the element is dropped from the scene once this much time
	// has elapsed.
	RemoveAt time.Duration
}

// ClassLoading is the class of the placeholder shown before a chart's data
// arrives.
const ClassLoading = "loading"

// Loading returns the placeholder text centered in a container of the
// provided size.
func Loading(width, height int) *Element {
	return New(Text).WithClass(ClassLoading).
		SetNum("x", float64(width)/2).
		SetNum("y", float64(height)/2).
		Set("text-anchor", "middle").
		Set("fill", color.Line).
		WithText("Loading…")
}

// New returns a new element of the specified kind.
func New(kind Kind) *Element {
	return &Element{
		Kind:  kind,
		Attrs: map[string]string{},
	}
}

// WithKey sets the receiver's reconciliation key.
func (e *Element) WithKey(key string) *Element {
	e.Key = key
	return e
}

// WithClass sets the receiver's class.
func (e *Element) WithClass(class string) *Element {
	e.Class = class
	return e
}

// Set sets an attribute on the receiver.
func (e *Element) Set(attr, value string) *Element {
	e.Attrs[attr] = value
	return e
}

// SetNum sets a numeric attribute on the receiver.
func (e *Element) SetNum(attr string, value float64) *Element {
	return e.Set(attr, transition.Format(value))
}

// WithStyle applies all attributes of the provided style to the receiver.
func (e *Element) WithStyle(s *style.Style) *Element {
	s.ApplyTo(e.Attrs)
	return e
}

// WithText sets the receiver's text content.
func (e *Element) WithText(text string) *Element {
	e.Text = text
	return e
}

// WithHTML sets the receiver's trusted HTML content.
func (e *Element) WithHTML(html safehtml.HTML) *Element {
	e.Raw = html
	return e
}

// WithDetails attaches opaque details to the receiver.
func (e *Element) WithDetails(details map[string]any) *Element {
	e.Details = details
	return e
}

// Append appends children to the receiver.  Nil children are skipped.
func (e *Element) Append(children ...*Element) *Element {
	for _, child := range children {
		if child != nil {
			e.Children = append(e.Children, child)
		}
	}
	return e
}

// Animate attaches tweens to the receiver.
func (e *Element) Animate(tweens ...transition.Tween) *Element {
	e.Tweens = append(e.Tweens, tweens...)
	return e
}

// On registers the receiver as listening for an event.
func (e *Element) On(event Event, action string) *Element {
	e.Listeners = append(e.Listeners, Listener{Event: event, Action: action})
	return e
}

// RemoveAfter schedules the receiver for removal at the provided elapsed
// time.
func (e *Element) RemoveAfter(d time.Duration) *Element {
	e.RemoveAt = d
	return e
}

// Attr returns the value of the specified attribute.
func (e *Element) Attr(attr string) (string, bool) {
	v, ok := e.Attrs[attr]
	return v, ok
}

// Listens reports whether the receiver listens for the specified event.
func (e *Element) Listens(event Event) bool {
	for _, l := range e.Listeners {
		if l.Event == event {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the receiver.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	ret := &Element{
		Kind:     e.Kind,
		Key:      e.Key,
		Class:    e.Class,
		Attrs:    make(map[string]string, len(e.Attrs)),
		Text:     e.Text,
		Raw:      e.Raw,
		RemoveAt: e.RemoveAt,
	}
	for k, v := range e.Attrs {
		ret.Attrs[k] = v
	}
	if len(e.Tweens) > 0 {
		ret.Tweens = append([]transition.Tween(nil), e.Tweens...)
	}
	if len(e.Listeners) > 0 {
		ret.Listeners = append([]Listener(nil), e.Listeners...)
	}
	if e.Details != nil {
		ret.Details = make(map[string]any, len(e.Details))
		for k, v := range e.Details {
			ret.Details[k] = v
		}
	}
	for _, child := range e.Children {
		ret.Children = append(ret.Children, child.Clone())
	}
	return ret
}

// At returns a copy of the receiver as it appears at the provided elapsed
// time: tweens are applied and removed, and children scheduled for removal
// by then are dropped.  At returns nil if the receiver itself is removed.
func (e *Element) At(elapsed time.Duration) *Element {
	if e.RemoveAt > 0 && elapsed >= e.RemoveAt {
		return nil
	}
	ret := &Element{
		Kind:      e.Kind,
		Key:       e.Key,
		Class:     e.Class,
		Attrs:     make(map[string]string, len(e.Attrs)),
		Text:      e.Text,
		Raw:       e.Raw,
		Listeners: e.Listeners,
		Details:   e.Details,
	}
	for k, v := range e.Attrs {
		ret.Attrs[k] = v
	}
	// Later tweens of the same attribute take precedence once started.
	for _, tw := range e.Tweens {
		if elapsed < tw.Delay && started(e.Tweens, tw.Attr, elapsed) {
			continue
		}
		v := tw.At(elapsed)
		if tw.Attr == TextContent {
			ret.Text = v
		} else {
			ret.Attrs[tw.Attr] = v
		}
	}
	for _, child := range e.Children {
		if c := child.At(elapsed); c != nil {
			ret.Children = append(ret.Children, c)
		}
	}
	return ret
}

// started reports whether any tween of attr has started by elapsed.
func started(tweens []transition.Tween, attr string, elapsed time.Duration) bool {
	for _, tw := range tweens {
		if tw.Attr == attr && elapsed >= tw.Delay {
			return true
		}
	}
	return false
}

// Duration returns the time by which all tweens in the receiver's subtree
// have completed and all scheduled removals have happened.
func (e *Element) Duration() time.Duration {
	ret := transition.End(e.Tweens)
	if e.RemoveAt > ret {
		ret = e.RemoveAt
	}
	for _, child := range e.Children {
		if d := child.Duration(); d > ret {
			ret = d
		}
	}
	return ret
}

// Walk invokes fn on each element in the receiver's subtree, in preorder.
func (e *Element) Walk(fn func(e *Element)) {
	fn(e)
	for _, child := range e.Children {
		child.Walk(fn)
	}
}

// Find returns all elements in the receiver's subtree with the specified
// class, in preorder.
func (e *Element) Find(class string) []*Element {
	var ret []*Element
	e.Walk(func(el *Element) {
		if el.Class == class {
			ret = append(ret, el)
		}
	})
	return ret
}

// FindKey returns the first element in the receiver's subtree with the
// specified class and key, or nil if there is none.
func (e *Element) FindKey(class, key string) *Element {
	for _, el := range e.Find(class) {
		if el.Key == key {
			return el
		}
	}
	return nil
}

func (e *Element) define(db util.DataBuilder) {
	db.With(
		util.StringProperty("kind", string(e.Kind)),
		util.If(e.Key != "", util.StringProperty("key", e.Key)),
		util.If(e.Class != "", util.StringProperty("class", e.Class)),
		style.FromAttrs(e.Attrs).Define(),
		util.If(e.Text != "", util.StringProperty("text", e.Text)),
		util.If(e.Raw.String() != "", util.StringProperty("html", e.Raw.String())),
		util.If(e.RemoveAt > 0, util.DurationProperty("remove_at", e.RemoveAt)),
	)
	if len(e.Listeners) > 0 {
		listeners := make([]string, len(e.Listeners))
		for idx, l := range e.Listeners {
			listeners[idx] = l.String()
		}
		db.With(util.StringsProperty("listeners", listeners...))
	}
	for _, tw := range e.Tweens {
		db.Child().With(
			util.StringProperty("kind", "tween"),
			util.StringProperty("attr", tw.Attr),
			util.DurationProperty("delay", tw.Delay),
			util.DurationProperty("duration", tw.Duration),
			util.StringProperty("ease", transition.EaseName(tw.Ease)),
			util.StringProperty("from", tw.Interpolate(0)),
			util.StringProperty("to", tw.Interpolate(1)),
		)
	}
	payload.Details(payloader{db}, e.Details)
	for _, child := range e.Children {
		child.define(db.Child())
	}
}

type payloader struct {
	db util.DataBuilder
}

func (p payloader) Payload() util.DataBuilder {
	return p.db.Child()
}

// Scene is a complete drawing of a chart.
type Scene struct {
	Width, Height int
	Root          *Element
}

// At returns the receiver as it appears at the provided elapsed time.
func (s *Scene) At(elapsed time.Duration) *Scene {
	ret := &Scene{
		Width:  s.Width,
		Height: s.Height,
	}
	if s.Root != nil {
		ret.Root = s.Root.At(elapsed)
	}
	return ret
}

// Duration returns the time after which the receiver no longer changes.
func (s *Scene) Duration() time.Duration {
	if s.Root == nil {
		return 0
	}
	return s.Root.Duration()
}

// Find returns all elements in the receiver with the specified class.
func (s *Scene) Find(class string) []*Element {
	if s.Root == nil {
		return nil
	}
	return s.Root.Find(class)
}

// FindKey returns the element in the receiver with the specified class and
// key, or nil.
func (s *Scene) FindKey(class, key string) *Element {
	if s.Root == nil {
		return nil
	}
	return s.Root.FindKey(class, key)
}

// Define encodes the receiver into the provided DataBuilder.
func (s *Scene) Define(db util.DataBuilder) {
	db.With(
		util.IntegerProperty("width", int64(s.Width)),
		util.IntegerProperty("height", int64(s.Height)),
		util.DurationProperty("duration", s.Duration()),
	)
	if s.Root != nil {
		s.Root.define(db.Child())
	}
}

// sortedAttrs returns the receiver's attribute names in a stable order.
func (e *Element) sortedAttrs() []string {
	ret := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
