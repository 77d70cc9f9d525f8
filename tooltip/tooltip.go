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

// Package tooltip provides chart-owned tooltips.
//
// A Tooltip is acquired when a chart mounts and released when it unmounts.
// It belongs to exactly one chart, and is rendered only into that chart's
// scene.  Content is trusted HTML, produced by the safehtml template
// package, so data values reaching a tooltip are always escaped:
//
//	tt := tooltip.Acquire()
//	defer tt.Release()
//	content, err := tooltip.Render(lineTemplate, point)
//	...
//	tt.Show(content, x, y)
//	root.Append(tt.Element())
package tooltip

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
	"github.com/google/uuid"
	"github.com/ilhamster/litviz/scene"
	"github.com/ilhamster/litviz/transition"
)

// ErrReleased is returned by operations on a released Tooltip.
var ErrReleased = errors.New("tooltip has been released")

// Class is the scene class of rendered tooltips.
const Class = "tooltip"

const (
	// Offset of the tooltip box from the pointer.
	offsetX = 10
	offsetY = -28
	width   = 220
	height  = 80
	fadeIn  = 200 * time.Millisecond
)

var boxTemplate = template.Must(template.New("tooltip").Parse(
	`<div xmlns="http://www.w3.org/1999/xhtml" class="litviz-tooltip">{{.}}</div>`,
))

// Tooltip is a tooltip resource owned by a single chart.
type Tooltip struct {
	id string

	mu       sync.Mutex
	released bool
	visible  bool
	content  safehtml.HTML
	x, y     float64
}

// Acquire returns a new, hidden tooltip with a unique ID.
func Acquire() *Tooltip {
	return &Tooltip{
		id: "tooltip-" + uuid.NewString(),
	}
}

// ID returns the receiver's unique ID.
func (tt *Tooltip) ID() string {
	return tt.id
}

// Show displays the provided content at the provided position.
func (tt *Tooltip) Show(content safehtml.HTML, x, y float64) error {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if tt.released {
		return ErrReleased
	}
	tt.visible = true
	tt.content = content
	tt.x, tt.y = x, y
	return nil
}

// Hide hides the receiver.
func (tt *Tooltip) Hide() error {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if tt.released {
		return ErrReleased
	}
	tt.visible = false
	return nil
}

// Release releases the receiver.  Releasing twice is an error.
func (tt *Tooltip) Release() error {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if tt.released {
		return ErrReleased
	}
	tt.released = true
	tt.visible = false
	return nil
}

// Visible reports whether the receiver is shown.
func (tt *Tooltip) Visible() bool {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return tt.visible
}

// Content returns the receiver's current content.
func (tt *Tooltip) Content() safehtml.HTML {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return tt.content
}

// Element returns the receiver's scene element, or nil if it is hidden or
// released.
func (tt *Tooltip) Element() *scene.Element {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if !tt.visible {
		return nil
	}
	box, err := boxTemplate.ExecuteToHTML(tt.content)
	if err != nil {
		return nil
	}
	return scene.New(scene.ForeignObject).
		WithKey(tt.id).
		WithClass(Class).
		SetNum("x", tt.x+offsetX).
		SetNum("y", tt.y+offsetY).
		SetNum("width", width).
		SetNum("height", height).
		Set("pointer-events", "none").
		Set("opacity", "0.9").
		WithHTML(box).
		Animate(transition.New("opacity", 0, fadeIn, nil, transition.Number(0, 0.9)))
}

// Render executes a tooltip template against the provided data.
func Render(tmpl *template.Template, data any) (safehtml.HTML, error) {
	ret, err := tmpl.ExecuteToHTML(data)
	if err != nil {
		return safehtml.HTML{}, fmt.Errorf("failed to render tooltip: %w", err)
	}
	return ret, nil
}
