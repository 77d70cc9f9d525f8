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

// Package payload facilitates attaching payloads of arbitrary data to marks
// in litviz data responses.
//
// Some marks carry data that is displayed but never plotted: a scatter point
// may carry the title and author of the work it represents.  Such details are
// opaque to layout, and are shipped as a payload child of the mark's datum.
// Any type into which payloads may be embedded should implement the
// Payloader interface.
package payload

import (
	"fmt"
	"sort"

	"github.com/ilhamster/litviz/util"
)

const (
	// TypeKey, if present in a Datum's properties, indicates that that datum is
	// an embedded payload.  properties[TypeKey] should be a string value
	// indicating the type of the payload.
	TypeKey = "payload_type"
	// DetailsType is the payload type of a mark's opaque details.
	DetailsType = "details"
)

// Payloader is implemented by types able to accept payloads.
type Payloader interface {
	// Payload implementations should add a child to the receiver and return
	// that child.
	Payload() util.DataBuilder
}

// New creates and returns a payload of the specified type under the provided
// parent.
func New(parent Payloader, payloadType string) util.DataBuilder {
	return parent.Payload().With(
		util.StringProperty(TypeKey, payloadType),
	)
}

// Entry is a single displayable detail.
type Entry struct {
	Key   string
	Value string
}

// Entries returns the provided details as displayable key/value pairs,
// sorted by key.
func Entries(details map[string]any) []Entry {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ret := make([]Entry, 0, len(keys))
	for _, k := range keys {
		ret = append(ret, Entry{Key: k, Value: fmt.Sprint(details[k])})
	}
	return ret
}

func detailUpdate(key string, v any) util.PropertyUpdate {
	switch val := v.(type) {
	case string:
		return util.StringProperty(key, val)
	case float64:
		return util.DoubleProperty(key, val)
	case int:
		return util.IntegerProperty(key, int64(val))
	case int64:
		return util.IntegerProperty(key, val)
	case bool:
		return util.BoolProperty(key, val)
	default:
		return util.StringProperty(key, fmt.Sprint(val))
	}
}

// Details embeds the provided details as a payload under parent.  Nothing is
// embedded if details is empty.
func Details(parent Payloader, details map[string]any) {
	if len(details) == 0 {
		return
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	updates := make([]util.PropertyUpdate, 0, len(keys))
	for _, k := range keys {
		updates = append(updates, detailUpdate(k, details[k]))
	}
	New(parent, DetailsType).With(updates...)
}
