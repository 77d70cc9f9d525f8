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

// Package resize tracks the size of the container a chart draws into, and
// notifies observers when it changes.  Observation is explicitly scoped: a
// chart observes its container on mount and disconnects on unmount, after
// which it is never notified again.
package resize

import (
	"errors"
	"sort"
	"sync"
)

// ErrNotMounted is returned by chart interactions that need a container and
// tooltip while the chart is not mounted.
var ErrNotMounted = errors.New("chart is not mounted")

// Default dimensions of a container whose size has not been reported.
const (
	DefaultWidth  = 800
	DefaultHeight = 400
)

// NarrowWidth is the container width below which charts draw thinner marks
// and fewer ticks.
const NarrowWidth = 768

// Size is a container size in pixels.
type Size struct {
	Width, Height int
}

// OrDefault returns the receiver, with unset dimensions replaced by the
// defaults.
func (s Size) OrDefault() Size {
	if s.Width <= 0 {
		s.Width = DefaultWidth
	}
	if s.Height <= 0 {
		s.Height = DefaultHeight
	}
	return s
}

// Narrow reports whether the receiver is narrower than NarrowWidth.
func (s Size) Narrow() bool {
	return s.Width < NarrowWidth
}

// Observer is notified of a container's new size.
type Observer func(Size)

// Container is a resizable chart container.
type Container struct {
	mu        sync.Mutex
	size      Size
	nextID    int
	observers map[int]Observer
}

// NewContainer returns a container of the provided size.
func NewContainer(size Size) *Container {
	return &Container{
		size:      size.OrDefault(),
		observers: map[int]Observer{},
	}
}

// Size returns the receiver's current size.
func (c *Container) Size() Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Observe registers an observer of the receiver's size, and returns a
// function disconnecting it.  Disconnecting more than once is harmless.
func (c *Container) Observe(fn Observer) (disconnect func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// ObserverCount returns the number of connected observers.
func (c *Container) ObserverCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.observers)
}

// Resize sets the receiver's size and notifies all connected observers, in
// registration order.  Observers are invoked without the receiver's lock
// held, so they may query or disconnect.
func (c *Container) Resize(size Size) {
	c.mu.Lock()
	c.size = size.OrDefault()
	newSize := c.size
	ids := make([]int, 0, len(c.observers))
	for id := range c.observers {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	sort.Ints(ids)
	for _, id := range ids {
		c.mu.Lock()
		fn, ok := c.observers[id]
		c.mu.Unlock()
		if ok {
			fn(newSize)
		}
	}
}
