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

// Package color declares the colors litviz charts draw with, and color
// palettes: ordered sequences of colors assigned to marks by rank.
//
// Colors are HTML color strings: a color name or a hex color specifier.
// A palette may be shipped to clients alongside a scene, so that legends and
// custom renderers can reproduce the same assignment:
//
//	db.With(color.Pie.Define())
//	for idx, slice := range slices {
//	  fill := color.Pie.At(idx)
//	  ...
//	}
package color

import "github.com/ilhamster/litviz/util"

// Named colors shared across charts.
const (
	Bar          = "steelblue"
	Line         = "steelblue"
	Stripe       = "#f7f7f7"
	FocusLine    = "#aaa"
	Text         = "#333"
	RegionFill   = "#e6f7ff"
	RegionHover  = "#bae7ff"
	RegionStroke = "#1890ff"
	Marker       = "green"
	Highlight    = "#1890ff"
	Muted        = "#d9d9d9"
	Grid         = "#e5e7eb"
	Shadow       = "black"
	Active       = "#3b82f6"
	Inactive     = "#d1d5db"
)

const paletteNamePrefix = "palette_"

// Palette is an ordered sequence of colors.
type Palette struct {
	name   string
	colors []string
}

// NewPalette defines a new palette.
func NewPalette(name string, colors ...string) *Palette {
	return &Palette{
		name:   name,
		colors: colors,
	}
}

// Pie is the darkening blue palette used for pie slices, darkest first.
var Pie = NewPalette("pie",
	"#003c66", "#19547b", "#326c90", "#4a84a5", "#639cbb",
	"#7bb4d0", "#94cce5", "#ace4fa", "#b2e6ff", "#bae7ff",
)

// Name returns the Palette's name.
func (p *Palette) Name() string {
	return p.name
}

// Len returns the number of colors in the receiver.
func (p *Palette) Len() int {
	return len(p.colors)
}

// At returns the color for the provided rank.  Ranks beyond the receiver's
// length wrap around; an empty palette yields "black".
func (p *Palette) At(rank int) string {
	if len(p.colors) == 0 {
		return "black"
	}
	if rank < 0 {
		rank = -rank
	}
	return p.colors[rank%len(p.colors)]
}

// Define annotates a Datum with a definition of the receiving Palette.
func (p *Palette) Define() util.PropertyUpdate {
	return util.StringsProperty(paletteNamePrefix+p.name, p.colors...)
}
