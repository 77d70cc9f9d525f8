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

// Package style supports specifying SVG presentation attributes.
//
// A Style instance comprises a mapping from attribute name to value, both
// represented as strings, with the names and expected values of SVG
// attributes, e.g. https://developer.mozilla.org/en-US/docs/Web/SVG/Attribute.
// Styles are applied to scene elements, and may be attached to a response
// Datum via the `Define()` method.
package style

import (
	"fmt"
	"sort"

	"github.com/ilhamster/litviz/util"
)

const (
	keyPrefix = "style_"
)

// Style defines a set of attributes that can be attached to a scene element
// or a Datum.
type Style struct {
	attrs map[string]string
}

// New returns a new, empty Style.
func New() *Style {
	return &Style{
		attrs: map[string]string{},
	}
}

// FromAttrs returns a new Style holding a copy of the provided attributes.
func FromAttrs(attrs map[string]string) *Style {
	ret := New()
	for k, v := range attrs {
		ret.attrs[k] = v
	}
	return ret
}

// With sets the specified attribute type and value in the receiver.
func (s *Style) With(attrType string, attrVal string) *Style {
	s.attrs[attrType] = attrVal
	return s
}

// Attrs returns the receiver's attribute names, sorted.
func (s *Style) Attrs() []string {
	ret := make([]string, 0, len(s.attrs))
	for k := range s.attrs {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Get returns the value of the provided attribute.
func (s *Style) Get(attr string) (string, bool) {
	v, ok := s.attrs[attr]
	return v, ok
}

// ApplyTo copies the receiver's attributes into attrs, overwriting existing
// values.
func (s *Style) ApplyTo(attrs map[string]string) {
	for k, v := range s.attrs {
		attrs[k] = v
	}
}

// Define returns a PropertyUpdate defining the receiver into a Datum.
func (s *Style) Define() util.PropertyUpdate {
	keys := s.Attrs()
	ret := make([]util.PropertyUpdate, 0, len(keys))
	for _, attr := range keys {
		ret = append(ret, util.StringProperty(keyPrefix+attr, s.attrs[attr]))
	}
	return util.Chain(ret...)
}

// Px formats the provided value as a pixel specifier.
func Px(valPx float64) string {
	return fmt.Sprintf("%.2fpx", valPx)
}

// Shared styles.  Callers must not modify them; use FromAttrs to derive.
var (
	// HitArea is an invisible pointer target.
	HitArea = New().With("fill", "transparent").With("pointer-events", "all")
	// NoPointer marks an element as transparent to pointer events.
	NoPointer = New().With("pointer-events", "none")
	// Hidden hides an element.
	Hidden = New().With("display", "none")
)
