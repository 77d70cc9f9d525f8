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

// Package util defines the litviz data protocol, which carries chart
// requests from clients and encoded chart scenes, catalogs and status tables
// back to them.
//
// Requests are DataRequests holding typed V values, read with the
// Expect{type}Value functions.  Responses are Data: trees of Datum properties
// whose string keys and values are interned in a shared string table.
// Responses are assembled through a DataResponseBuilder and the
// PropertyUpdates applied to its DataBuilders.
package util

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DataSeriesRequest asks a data source for one series.
type DataSeriesRequest struct {
	QueryName  string
	SeriesName string
	Options    map[string]*V
}

// DataRequest asks for one or more series.  GlobalFilters apply to every
// series, and are overridden by per-series Options.
type DataRequest struct {
	GlobalFilters  map[string]*V
	SeriesRequests []*DataSeriesRequest
}

// DataRequestFromJSON decodes a DataRequest.
func DataRequestFromJSON(j []byte) (*DataRequest, error) {
	ret := &DataRequest{}
	if err := json.Unmarshal(j, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Datum is a node in a response series: a set of properties keyed by string
// table index, and ordered children.
type Datum struct {
	Properties map[int64]*V
	Children   []*Datum
}

func (d *Datum) sortedKeys(less func(a, b int64) bool) []int64 {
	keys := make([]int64, 0, len(d.Properties))
	for k := range d.Properties {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		return less(keys[a], keys[b])
	})
	return keys
}

// PrettyPrint returns the receiver deterministically prettyprinted, with
// properties sorted by name.  Only for use in tests.
func (d *Datum) PrettyPrint(indent string, st []string) string {
	var lines []string
	for _, k := range d.sortedKeys(func(a, b int64) bool { return st[a] < st[b] }) {
		lines = append(lines, fmt.Sprintf("%sProp '%s': %s", indent, st[k], d.Properties[k].PrettyPrint(st)))
	}
	for _, child := range d.Children {
		lines = append(lines, indent+"Child:", child.PrettyPrint(indent+"  ", st))
	}
	return strings.Join(lines, "\n")
}

// MarshalJSON encodes the receiver as [properties, children], where
// properties is an array of [key index, V] pairs in key order.
func (d *Datum) MarshalJSON() ([]byte, error) {
	props := make([][2]any, 0, len(d.Properties))
	for _, k := range d.sortedKeys(func(a, b int64) bool { return a < b }) {
		props = append(props, [2]any{k, d.Properties[k]})
	}
	children := d.Children
	if children == nil {
		children = []*Datum{}
	}
	return json.Marshal([2]any{props, children})
}

// property is a decoded [key index, V] pair.
type property struct {
	key int64
	val *V
}

func (p *property) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("datum property must be a [key, value] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("datum property must be a [key, value] pair")
	}
	if err := json.Unmarshal(pair[0], &p.key); err != nil {
		return fmt.Errorf("datum property key must be an integer: %w", err)
	}
	p.val = &V{}
	return json.Unmarshal(pair[1], p.val)
}

// UnmarshalJSON decodes [properties, children] into the receiver.
func (d *Datum) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return fmt.Errorf("datum must have exactly two elements, got %d", len(parts))
	}
	var props []property
	if err := json.Unmarshal(parts[0], &props); err != nil {
		return err
	}
	d.Properties = make(map[int64]*V, len(props))
	for _, p := range props {
		d.Properties[p.key] = p.val
	}
	d.Children = []*Datum{}
	return json.Unmarshal(parts[1], &d.Children)
}

// DataSeries is the response to a DataSeriesRequest.
type DataSeries struct {
	SeriesName string
	Root       *Datum
}

// PrettyPrint returns the receiver deterministically prettyprinted.  Only
// for use in tests.
func (ds *DataSeries) PrettyPrint(indent string, st []string) string {
	return strings.Join([]string{
		indent + "Series " + ds.SeriesName,
		indent + "  Root:",
		ds.Root.PrettyPrint(indent+"    ", st),
	}, "\n")
}

// Data is the response to a DataRequest.
type Data struct {
	StringTable []string
	DataSeries  []*DataSeries
}

// PrettyPrint returns the receiver deterministically prettyprinted.  Only
// for use in tests.
func (d *Data) PrettyPrint() string {
	lines := []string{"Data:"}
	for _, series := range d.DataSeries {
		lines = append(lines, series.PrettyPrint("  ", d.StringTable))
	}
	return strings.Join(lines, "\n")
}
