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

package scale

// FontScale maps a container width in pixels to a base font size in pixels,
// clamped to [MinPx, MaxPx] outside of [MinWidth, MaxWidth].
type FontScale struct {
	MinWidth, MaxWidth float64
	MinPx, MaxPx       float64
	// LargeFactor scales the base size for emphasized labels.  Zero means 1.5.
	LargeFactor float64
}

// Font scales used by each chart.
var (
	LineFont    = FontScale{MinWidth: 300, MaxWidth: 1200, MinPx: 12, MaxPx: 14}
	BarFont     = FontScale{MinWidth: 300, MaxWidth: 1200, MinPx: 14, MaxPx: 16}
	PieFont     = FontScale{MinWidth: 300, MaxWidth: 1200, MinPx: 12, MaxPx: 16, LargeFactor: 1.3}
	RankingFont = FontScale{MinWidth: 300, MaxWidth: 1200, MinPx: 14, MaxPx: 16}
	GeoFont     = FontScale{MinWidth: 300, MaxWidth: 1200, MinPx: 12, MaxPx: 14}
)

// Size returns the base font size for the provided container width.
func (fs FontScale) Size(width float64) float64 {
	return NewLinear(fs.MinWidth, fs.MaxWidth, fs.MinPx, fs.MaxPx).WithClamp(true).Apply(width)
}

// Title returns the title font size for the provided container width.
func (fs FontScale) Title(width float64) float64 {
	return fs.Size(width) * 1.2
}

// Large returns the emphasized font size for the provided container width.
func (fs FontScale) Large(width float64) float64 {
	f := fs.LargeFactor
	if f == 0 {
		f = 1.5
	}
	return fs.Size(width) * f
}
