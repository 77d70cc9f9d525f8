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

// Package geoheatmap provides a zoomable map of regions overlaid with one
// marker per geocoded item.
//
// Regions are decoded from a topology object and drawn with a transverse
// Mercator projection fit to the map area; their outlines are revealed by a
// stroke-dash animation.  Markers fade in with an opacity proportional to
// their item's value.  Regions in the chart's exclusion set do not react to
// hovers or clicks; clicking any other region reports its name.
//
// The structure of a geo heat map in a litviz response, with each level
// representing a DataSeries or nested Datum, is:
//
//	geoheatmap
//	  properties:
//	    * title: string
//	    * topology_object: string
//	    * excluded_regions: []string
//	    * zoom: double
//	  children:
//	    * regions
//	    * items
//	    * scene
//
//	regions
//	  children:
//	    repeated region
//
//	region
//	  properties:
//	    * label: string
//	    * interactive: bool
//
//	items
//	  children:
//	    repeated item
//
//	item
//	  properties:
//	    * label: string
//	    * value: double
//	    * coordinates: []double (longitude, latitude)
package geoheatmap

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/ilhamster/litviz/color"
	"github.com/ilhamster/litviz/label"
	"github.com/ilhamster/litviz/magnitude"
	"github.com/ilhamster/litviz/projection"
	"github.com/ilhamster/litviz/resize"
	"github.com/ilhamster/litviz/scale"
	"github.com/ilhamster/litviz/scene"
	"github.com/ilhamster/litviz/shape"
	"github.com/ilhamster/litviz/style"
	"github.com/ilhamster/litviz/topology"
	"github.com/ilhamster/litviz/transition"
	"github.com/ilhamster/litviz/util"
	"github.com/ilhamster/litviz/zoom"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// DefaultObject is the topology object drawn when none is configured.
const DefaultObject = "canada_provinces"

// DefaultExcluded lists the regions excluded when no exclusion set is
// configured.
var DefaultExcluded = []string{"Nunavut", "Northwest Territories"}

const (
	margin          = 10
	centralMeridian = 100
	revealDuration  = 2500 * time.Millisecond
	markerDuration  = 2000 * time.Millisecond
	markerRadius    = 7
	minOpacity      = 0.2
	maxOpacity      = 0.4
	minZoom         = 1
	maxZoom         = 5
	// The viewport may be panned this far past the map's edges.
	panSlack = 100
)

// Scene classes.
const (
	ClassChart      = "chart"
	ClassBackground = "background-rect"
	ClassContainer  = "chart-container"
	ClassTitle      = "chart-title"
	ClassZoom       = "zoom-capture"
	ClassMap        = "map-container"
	ClassRegions    = "provinces"
	ClassRegion     = "province"
	ClassMarkers    = "cities"
	ClassMarker     = "city"
)

// Listener actions.  Each is followed by ':' and a region name.
const (
	ActionHover   = "hover"
	ActionUnhover = "unhover"
	ActionClick   = "click"
)

const (
	objectKey      = "topology_object"
	excludedKey    = "excluded_regions"
	zoomKey        = "zoom"
	interactiveKey = "interactive"
	coordinatesKey = "coordinates"
)

// Item is a geocoded value.
type Item struct {
	Label string
	Value float64
	// Coordinates are the item's longitude and latitude, in degrees.
	Coordinates orb.Point
}

// Props configures a geo heat map.
type Props struct {
	Title string
	// Object names the topology object holding the regions.  Empty means
	// DefaultObject.
	Object string
	// Excluded lists the names of non-interactive regions.  Nil means
	// DefaultExcluded.
	Excluded []string
	// If true, the map does not zoom or pan.
	DisableZoom bool
	// OnClick, if set, is called with the name of each clicked interactive
	// region.  It is called without the chart's lock held.
	OnClick func(region string)
}

type region struct {
	name        string
	geometry    orb.MultiPolygon
	interactive bool
}

// Chart is an animated geo heat map.  Its methods are safe for concurrent
// use.
type Chart struct {
	props    Props
	excluded map[string]bool

	mu         sync.Mutex
	container  *resize.Container
	disconnect func()
	loaded     bool
	regions    []region
	items      []Item
	hovered    string
	transform  zoom.Transform
	// Projected region outlines of the most recent draw.
	projected []orb.MultiPolygon
	scene     *scene.Scene
	draws     int
}

// New returns a new, unmounted geo heat map.
func New(props Props) *Chart {
	if props.Object == "" {
		props.Object = DefaultObject
	}
	if props.Excluded == nil {
		props.Excluded = DefaultExcluded
	}
	c := &Chart{
		props:     props,
		excluded:  make(map[string]bool, len(props.Excluded)),
		transform: zoom.Identity,
	}
	for _, name := range props.Excluded {
		c.excluded[name] = true
	}
	return c
}

// Mount attaches the receiver to a container, observing its size, and
// draws it.
func (c *Chart) Mount(container *resize.Container) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disconnect != nil {
		c.disconnect()
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

// Unmount detaches the receiver from its container.
func (c *Chart) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disconnect != nil {
		c.disconnect()
		c.disconnect = nil
	}
}

// Load replaces the receiver's regions with those of its topology object
// in the provided topology, and its items with a copy of items, and redraws
// it.  On error, the receiver is unchanged.
func (c *Chart) Load(topo *topology.Topology, items []Item) error {
	fc, err := topo.Features(c.props.Object)
	if err != nil {
		return err
	}
	regions := make([]region, 0, len(fc.Features))
	for _, f := range fc.Features {
		mp, ok := f.Geometry.(orb.MultiPolygon)
		if !ok {
			continue
		}
		name := topology.Name(f)
		regions = append(regions, region{
			name:        name,
			geometry:    mp,
			interactive: !c.excluded[name],
		})
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regions = regions
	c.items = append([]Item(nil), items...)
	c.loaded = true
	c.resetInteraction()
	c.draw(true)
	return nil
}

// Regions returns the names of the receiver's regions.
func (c *Chart) Regions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ret := make([]string, len(c.regions))
	for idx, r := range c.regions {
		ret[idx] = r.name
	}
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

// Transform returns the receiver's zoom transform.
func (c *Chart) Transform() zoom.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transform
}

func (c *Chart) resetInteraction() {
	c.transform = zoom.Identity
	c.hovered = ""
}

func (c *Chart) size() resize.Size {
	if c.container == nil {
		return resize.Size{}.OrDefault()
	}
	return c.container.Size()
}

func (c *Chart) region(name string) (region, bool) {
	for _, r := range c.regions {
		if r.name == name {
			return r, true
		}
	}
	return region{}, false
}

// Hover highlights the named region, as when the pointer enters it.
// Excluded regions are not highlighted.
func (c *Chart) Hover(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.region(name)
	if !ok {
		return fmt.Errorf("no region named '%s'", name)
	}
	if !r.interactive || c.hovered == name {
		return nil
	}
	c.hovered = name
	c.draw(false)
	return nil
}

// Unhover clears the named region's highlight, as when the pointer leaves
// it.
func (c *Chart) Unhover(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.region(name); !ok {
		return fmt.Errorf("no region named '%s'", name)
	}
	if c.hovered != name {
		return nil
	}
	c.hovered = ""
	c.draw(false)
	return nil
}

// ClickRegion handles a click on the named region, reporting it to the
// click callback if it is interactive.  It returns true if the callback was
// invoked.
func (c *Chart) ClickRegion(name string) (bool, error) {
	c.mu.Lock()
	r, ok := c.region(name)
	c.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("no region named '%s'", name)
	}
	if !r.interactive || c.props.OnClick == nil {
		return false, nil
	}
	c.props.OnClick(name)
	return true, nil
}

// Click handles a click at the provided container position.  The position
// is mapped through the margin and zoom transform and hit-tested against
// the projected regions; a hit on an interactive region is reported to the
// click callback.  Click returns the name of the reported region, if any.
func (c *Chart) Click(x, y float64) (string, bool) {
	c.mu.Lock()
	p := c.transform.Invert(zoom.Point{X: x - margin, Y: y - margin})
	hit := ""
	found := false
	for idx, mp := range c.projected {
		if planar.MultiPolygonContains(mp, orb.Point{p.X, p.Y}) {
			r := c.regions[idx]
			hit, found = r.name, r.interactive
			break
		}
	}
	c.mu.Unlock()
	if !found || c.props.OnClick == nil {
		return "", false
	}
	c.props.OnClick(hit)
	return hit, true
}

func (c *Chart) behavior(size resize.Size) zoom.Behavior {
	w, h := float64(size.Width), float64(size.Height)
	return zoom.Behavior{
		ScaleExtent: [2]float64{minZoom, maxZoom},
		TranslateExtent: zoom.Extent{
			{X: -panSlack, Y: -panSlack},
			{X: w + panSlack, Y: h + panSlack},
		},
		Viewport: zoom.Extent{{X: 0, Y: 0}, {X: w, Y: h}},
	}
}

// Wheel zooms the receiver about the event's position, in map coordinates.
// It returns false if the event was not handled.
func (c *Chart) Wheel(ev zoom.WheelEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.props.DisableZoom || len(c.regions) == 0 {
		return false
	}
	next, ok := c.behavior(c.size()).Wheel(c.transform, ev)
	if !ok {
		return false
	}
	c.transform = next
	c.draw(false)
	return true
}

// Pan drags the receiver by (dx, dy) pixels.  It returns false if zooming
// is disabled.
func (c *Chart) Pan(dx, dy float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.props.DisableZoom || len(c.regions) == 0 {
		return false
	}
	c.transform = c.behavior(c.size()).Pan(c.transform, dx, dy)
	c.draw(false)
	return true
}

// Handle performs a listener action from the receiver's scene.
func (c *Chart) Handle(action string) error {
	name, arg, _ := strings.Cut(action, ":")
	switch name {
	case ActionHover:
		return c.Hover(arg)
	case ActionUnhover:
		return c.Unhover(arg)
	case ActionClick:
		_, err := c.ClickRegion(arg)
		return err
	}
	return fmt.Errorf("unsupported action '%s'", action)
}

func (c *Chart) regionListeners(el *scene.Element, name string) *scene.Element {
	hover, unhover := ActionHover+":"+name, ActionUnhover+":"+name
	return el.
		On(scene.MouseOver, hover).
		On(scene.TouchStart, hover).
		On(scene.MouseOut, unhover).
		On(scene.TouchEnd, unhover).
		On(scene.Click, ActionClick+":"+name)
}

// draw redraws the receiver's scene.  c.mu must be held.
func (c *Chart) draw(animate bool) {
	size := c.size()
	s := &scene.Scene{Width: size.Width, Height: size.Height}
	root := scene.New(scene.Group).WithClass(ClassChart)
	c.projected = nil
	switch {
	case !c.loaded:
		root.Append(scene.Loading(size.Width, size.Height))
	case len(c.items) == 0:
	default:
		root.Append(
			scene.New(scene.Rect).WithClass(ClassBackground).
				SetNum("width", float64(size.Width)).
				SetNum("height", float64(size.Height)).
				Set("fill", "transparent"),
			c.renderMap(size, animate),
		)
	}
	s.Root = root
	c.scene = s
	c.draws++
}

func (c *Chart) renderMap(size resize.Size, animate bool) *scene.Element {
	width := float64(size.Width)
	iw := width - 2*margin
	ih := float64(size.Height) - 2*margin
	geoms := make([]orb.MultiPolygon, len(c.regions))
	for idx, r := range c.regions {
		geoms[idx] = r.geometry
	}
	proj := projection.NewTransverseMercator(centralMeridian).FitSize(iw, ih, geoms...)
	k := c.transform.K

	ret := scene.New(scene.Group).WithClass(ClassContainer).
		Set("transform", transition.TranslateAttr(margin, margin))
	ret.Append(
		scene.New(scene.Text).WithClass(ClassTitle).
			SetNum("x", iw/2).
			SetNum("y", 0).
			Set("text-anchor", "middle").
			Set("dominant-baseline", "hanging").
			Set("font-size", style.Px(scale.GeoFont.Title(width))).
			WithText(c.props.Title),
	)
	if !c.props.DisableZoom {
		ret.Append(scene.New(scene.Rect).WithClass(ClassZoom).
			SetNum("width", width).
			SetNum("height", float64(size.Height)).
			Set("fill", "none").
			Set("pointer-events", "all"))
	}

	regions := scene.New(scene.Group).WithClass(ClassRegions).
		Set("transform", c.transform.String())
	c.projected = make([]orb.MultiPolygon, len(c.regions))
	for idx, r := range c.regions {
		projected := proj.MultiPolygon(r.geometry)
		c.projected[idx] = projected
		var path shape.Path
		for _, poly := range projected {
			for _, ring := range poly {
				pts := make([]shape.Point, len(ring))
				for i, pt := range ring {
					pts[i] = shape.Point{X: pt[0], Y: pt[1]}
				}
				shape.Ring(&path, pts)
			}
		}
		fill := color.RegionFill
		if r.interactive && r.name == c.hovered {
			fill = color.RegionHover
		}
		el := scene.New(scene.Path).WithClass(ClassRegion).WithKey(r.name).
			Set("d", path.String()).
			Set("fill", fill).
			Set("stroke", color.RegionStroke).
			SetNum("stroke-width", 1/k)
		if animate {
			el.Set("stroke-dasharray", transition.DashArray(path.Length())).
				SetNum("stroke-dashoffset", 0).
				Animate(transition.DashReveal(path.Length(), revealDuration))
		}
		if r.interactive {
			c.regionListeners(el, r.name)
		}
		regions.Append(el)
	}

	maxValue := 0.0
	for _, it := range c.items {
		maxValue = math.Max(maxValue, it.Value)
	}
	opacity := scale.NewLinear(0, maxValue, minOpacity, maxOpacity)
	markers := scene.New(scene.Group).WithClass(ClassMarkers).
		Set("transform", c.transform.String())
	for _, it := range c.items {
		p := proj.Project(it.Coordinates)
		op := opacity.Apply(it.Value)
		r := markerRadius / k
		el := scene.New(scene.Circle).WithClass(ClassMarker).WithKey(it.Label).
			SetNum("cx", p[0]).
			SetNum("cy", p[1]).
			SetNum("r", r).
			Set("fill", color.Marker).
			SetNum("opacity", op).
			Set("pointer-events", "none")
		if animate {
			el.Animate(
				transition.New("r", 0, markerDuration, nil, transition.Number(0, r)),
				transition.New("opacity", 0, markerDuration, nil, transition.Number(0, op)),
			)
		}
		markers.Append(el)
	}
	ret.Append(scene.New(scene.Group).WithClass(ClassMap).Append(regions, markers))
	return ret
}

// Define encodes the receiver's regions, items and current scene into the
// provided DataBuilder.
func (c *Chart) Define(db util.DataBuilder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scene == nil {
		c.draw(false)
	}
	db.With(
		label.Title(c.props.Title),
		util.StringProperty(objectKey, c.props.Object),
		util.StringsProperty(excludedKey, c.props.Excluded...),
		util.DoubleProperty(zoomKey, c.transform.K),
	)
	regions := db.Child()
	for _, r := range c.regions {
		regions.Child().With(
			label.Text(r.name),
			util.BoolProperty(interactiveKey, r.interactive),
		)
	}
	items := db.Child()
	for _, it := range c.items {
		items.Child().With(
			label.Text(it.Label),
			magnitude.Value(it.Value),
			util.DoublesProperty(coordinatesKey, it.Coordinates[0], it.Coordinates[1]),
		)
	}
	c.scene.Define(db.Child())
}
