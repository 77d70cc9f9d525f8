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

package color

import (
	"testing"

	testutil "github.com/ilhamster/litviz/test_util"
	"github.com/ilhamster/litviz/util"
)

func TestPaletteDefinition(t *testing.T) {
	for _, test := range []struct {
		description string
		palettes    []*Palette
		wantUpdates []util.PropertyUpdate
	}{{
		description: "single palette",
		palettes: []*Palette{
			NewPalette("grey", "grey"),
		},
		wantUpdates: []util.PropertyUpdate{
			util.StringsProperty(paletteNamePrefix+"grey", "grey"),
		},
	}, {
		description: "multiple palettes",
		palettes: []*Palette{
			NewPalette("fire", "yellow", "red"),
			NewPalette("royal", "blue", "purple"),
		},
		wantUpdates: []util.PropertyUpdate{
			util.StringsProperty(paletteNamePrefix+"fire", "yellow", "red"),
			util.StringsProperty(paletteNamePrefix+"royal", "blue", "purple"),
		},
	}, {
		description: "palette redefinition overwrites previous",
		palettes: []*Palette{
			NewPalette("royal", "blue", "purple"),
			NewPalette("royal", "purple", "blue"),
		},
		wantUpdates: []util.PropertyUpdate{
			util.StringsProperty(paletteNamePrefix+"royal", "purple", "blue"),
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			testUpdates := []util.PropertyUpdate{}
			for _, p := range test.palettes {
				testUpdates = append(testUpdates, p.Define())
			}
			if msg, failed := testutil.NewUpdateComparator().
				WithTestUpdates(testUpdates...).
				WithWantUpdates(test.wantUpdates...).
				Compare(t); failed {
				t.Fatal(msg)
			}
		})
	}
}

func TestPaletteAt(t *testing.T) {
	for _, test := range []struct {
		description string
		palette     *Palette
		rank        int
		want        string
	}{{
		description: "darkest first",
		palette:     Pie,
		rank:        0,
		want:        "#003c66",
	}, {
		description: "lightest last",
		palette:     Pie,
		rank:        9,
		want:        "#bae7ff",
	}, {
		description: "wraps around",
		palette:     Pie,
		rank:        11,
		want:        "#19547b",
	}, {
		description: "empty palette",
		palette:     NewPalette("empty"),
		rank:        3,
		want:        "black",
	}} {
		t.Run(test.description, func(t *testing.T) {
			if got := test.palette.At(test.rank); got != test.want {
				t.Errorf("At(%d) = %q, want %q", test.rank, got, test.want)
			}
		})
	}
}
