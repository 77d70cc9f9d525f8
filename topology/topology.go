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

// Package topology decodes TopoJSON topologies into GeoJSON features.
//
// A topology stores shared boundary arcs once; each geometry lists the arcs
// making up its rings, with a negative index ~i naming arc i reversed.  If
// the topology is quantized, arc positions are delta-encoded integers mapped
// back to coordinates by its transform.  Only polygonal geometries are
// decoded, as MultiPolygons:
//
//	topo, err := topology.Parse(data)
//	fc, err := topo.Features("canada_provinces")
//	for _, f := range fc.Features {
//	  name := topology.Name(f)
//	  mp := f.Geometry.(orb.MultiPolygon)
//	}
package topology

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrUnknownObject is returned when a topology has no object of the
// requested name.
var ErrUnknownObject = errors.New("unknown topology object")

// NameProperty is the feature property holding a region's name.
const NameProperty = "name"

// Transform maps quantized positions to coordinates.
type Transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

// Geometry is a TopoJSON geometry object.  Arcs holds arc indices nested
// according to Type.
type Geometry struct {
	Type       string          `json:"type"`
	ID         any             `json:"id,omitempty"`
	Properties map[string]any  `json:"properties,omitempty"`
	Arcs       json.RawMessage `json:"arcs,omitempty"`
	Geometries []Geometry      `json:"geometries,omitempty"`
}

// Topology is a decoded TopoJSON topology.
type Topology struct {
	Type      string              `json:"type"`
	Transform *Transform          `json:"transform,omitempty"`
	Arcs      [][][]float64       `json:"arcs"`
	Objects   map[string]Geometry `json:"objects"`

	// Decoded arcs, in coordinates.
	arcs []orb.LineString
}

// Parse decodes a TopoJSON topology.
func Parse(data []byte) (*Topology, error) {
	t := &Topology{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to decode topology: %w", err)
	}
	if t.Type != "Topology" {
		return nil, fmt.Errorf("expected a Topology, got '%s'", t.Type)
	}
	t.decodeArcs()
	return t, nil
}

func (t *Topology) decodeArcs() {
	t.arcs = make([]orb.LineString, len(t.Arcs))
	for idx, arc := range t.Arcs {
		ls := make(orb.LineString, 0, len(arc))
		var x, y float64
		for _, pos := range arc {
			if len(pos) < 2 {
				continue
			}
			if t.Transform == nil {
				ls = append(ls, orb.Point{pos[0], pos[1]})
				continue
			}
			x, y = x+pos[0], y+pos[1]
			ls = append(ls, orb.Point{
				x*t.Transform.Scale[0] + t.Transform.Translate[0],
				y*t.Transform.Scale[1] + t.Transform.Translate[1],
			})
		}
		t.arcs[idx] = ls
	}
}

// ObjectNames returns the names of the receiver's objects.
func (t *Topology) ObjectNames() []string {
	ret := make([]string, 0, len(t.Objects))
	for name := range t.Objects {
		ret = append(ret, name)
	}
	return ret
}

func (t *Topology) arc(idx int) (orb.LineString, error) {
	reversed := idx < 0
	if reversed {
		idx = ^idx
	}
	if idx >= len(t.arcs) {
		return nil, fmt.Errorf("arc index %d out of range", idx)
	}
	arc := t.arcs[idx]
	if !reversed {
		return arc, nil
	}
	ret := make(orb.LineString, len(arc))
	for i, pt := range arc {
		ret[len(arc)-1-i] = pt
	}
	return ret, nil
}

// ring stitches the indexed arcs into a closed ring.  Consecutive arcs share
// their joining point.
func (t *Topology) ring(indices []int) (orb.Ring, error) {
	var ret orb.Ring
	for _, idx := range indices {
		arc, err := t.arc(idx)
		if err != nil {
			return nil, err
		}
		if len(ret) > 0 && len(arc) > 0 {
			arc = arc[1:]
		}
		ret = append(ret, arc...)
	}
	if len(ret) > 0 && ret[0] != ret[len(ret)-1] {
		ret = append(ret, ret[0])
	}
	return ret, nil
}

func (t *Topology) polygon(rings [][]int) (orb.Polygon, error) {
	ret := make(orb.Polygon, 0, len(rings))
	for _, indices := range rings {
		r, err := t.ring(indices)
		if err != nil {
			return nil, err
		}
		ret = append(ret, r)
	}
	return ret, nil
}

// MultiPolygon decodes a Polygon or MultiPolygon geometry.  It returns nil,
// and no error, for other geometry types.
func (t *Topology) MultiPolygon(g Geometry) (orb.MultiPolygon, error) {
	switch g.Type {
	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(g.Arcs, &rings); err != nil {
			return nil, fmt.Errorf("bad Polygon arcs: %w", err)
		}
		p, err := t.polygon(rings)
		if err != nil {
			return nil, err
		}
		return orb.MultiPolygon{p}, nil
	case "MultiPolygon":
		var polys [][][]int
		if err := json.Unmarshal(g.Arcs, &polys); err != nil {
			return nil, fmt.Errorf("bad MultiPolygon arcs: %w", err)
		}
		ret := make(orb.MultiPolygon, 0, len(polys))
		for _, rings := range polys {
			p, err := t.polygon(rings)
			if err != nil {
				return nil, err
			}
			ret = append(ret, p)
		}
		return ret, nil
	}
	return nil, nil
}

// Features returns the polygonal geometries of the named object as a
// FeatureCollection of MultiPolygon features, carrying their properties.
// A GeometryCollection yields one feature per polygonal member.
func (t *Topology) Features(object string) (*geojson.FeatureCollection, error) {
	obj, ok := t.Objects[object]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownObject, object)
	}
	members := []Geometry{obj}
	if obj.Type == "GeometryCollection" {
		members = obj.Geometries
	}
	fc := geojson.NewFeatureCollection()
	for _, g := range members {
		mp, err := t.MultiPolygon(g)
		if err != nil {
			return nil, fmt.Errorf("object '%s': %w", object, err)
		}
		if len(mp) == 0 {
			continue
		}
		f := geojson.NewFeature(mp)
		f.ID = g.ID
		for k, v := range g.Properties {
			f.Properties[k] = v
		}
		fc.Append(f)
	}
	return fc, nil
}

// Name returns the name property of the provided feature, or "" if it has
// none.
func Name(f *geojson.Feature) string {
	name, _ := f.Properties[NameProperty].(string)
	return name
}
