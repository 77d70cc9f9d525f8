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

package datasource

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	barpiechart "github.com/ilhamster/litviz/bar_pie_chart"
	geoheatmap "github.com/ilhamster/litviz/geo_heat_map"
	linechart "github.com/ilhamster/litviz/line_chart"
	rankingchart "github.com/ilhamster/litviz/ranking_chart"
	scatterchart "github.com/ilhamster/litviz/scatter_chart"
	"github.com/paulmach/orb"
)

func TestDecodePoints(t *testing.T) {
	for _, test := range []struct {
		description string
		data        string
		want        []linechart.Point
		wantSkipped int
		wantErr     bool
	}{{
		description: "ordered by x",
		data:        `[{"x": 3, "y": 1}, {"x": 1, "y": 2}, {"x": 2, "y": 3}]`,
		want:        []linechart.Point{{X: 1, Y: 2}, {X: 2, Y: 3}, {X: 3, Y: 1}},
	}, {
		description: "malformed records skipped",
		data:        `[{"x": 1}, null, {"x": 2, "y": 0}, {}]`,
		want:        []linechart.Point{{X: 2, Y: 0}},
		wantSkipped: 3,
	}, {
		description: "empty",
		data:        `[]`,
		want:        []linechart.Point{},
	}, {
		description: "not an array",
		data:        `{"x": 1}`,
		wantErr:     true,
	}} {
		t.Run(test.description, func(t *testing.T) {
			got, skipped, err := decodePoints([]byte(test.data))
			if (err != nil) != test.wantErr {
				t.Fatalf("decodePoints() yielded error %v, wantErr %t", err, test.wantErr)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("decodePoints() diff (-want +got):\n%s", diff)
			}
			if skipped != test.wantSkipped {
				t.Errorf("decodePoints() skipped %d, want %d", skipped, test.wantSkipped)
			}
		})
	}
}

func TestDecodeTimeline(t *testing.T) {
	var many []string
	var wantMany []rankingchart.Item
	for i := 0; i < MaxRankedEntries+5; i++ {
		many = append(many, fmt.Sprintf(`{"label": "w%02d", "value": %d}`, i, i))
	}
	for i := MaxRankedEntries + 4; i >= 5; i-- {
		wantMany = append(wantMany, rankingchart.Item{Label: fmt.Sprintf("w%02d", i), Value: float64(i)})
	}
	for _, test := range []struct {
		description string
		data        string
		want        []rankingchart.Snapshot
		wantSkipped int
	}{{
		description: "snapshots ordered by timestamp, entries by value",
		data: `[
			{"timestamp": 2, "entries": [{"label": "a", "value": 1}, {"label": "b", "value": 2}]},
			{"timestamp": 1, "entries": [{"label": "c", "value": 3}]}
		]`,
		want: []rankingchart.Snapshot{{
			Timestamp: 1,
			Entries:   []rankingchart.Item{{Label: "c", Value: 3}},
		}, {
			Timestamp: 2,
			Entries:   []rankingchart.Item{{Label: "b", Value: 2}, {Label: "a", Value: 1}},
		}},
	}, {
		description: "bad entries and repeated timestamps skipped",
		data: `[
			{"timestamp": 1, "entries": [{"label": "a", "value": -1}, {"label": "a", "value": 1}, {"label": "a", "value": 2}, {"value": 4}]},
			{"timestamp": 1, "entries": [{"label": "z", "value": 9}]},
			{"entries": [{"label": "y", "value": 9}]}
		]`,
		want: []rankingchart.Snapshot{{
			Timestamp: 1,
			Entries:   []rankingchart.Item{{Label: "a", Value: 1}},
		}},
		wantSkipped: 5,
	}, {
		description: "entries truncated",
		data:        `[{"timestamp": 1, "entries": [` + strings.Join(many, ",") + `]}]`,
		want:        []rankingchart.Snapshot{{Timestamp: 1, Entries: wantMany}},
	}} {
		t.Run(test.description, func(t *testing.T) {
			got, skipped, err := decodeTimeline([]byte(test.data))
			if err != nil {
				t.Fatalf("decodeTimeline() yielded unexpected error %s", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("decodeTimeline() diff (-want +got):\n%s", diff)
			}
			if skipped != test.wantSkipped {
				t.Errorf("decodeTimeline() skipped %d, want %d", skipped, test.wantSkipped)
			}
		})
	}
}

func TestCityCounts(t *testing.T) {
	cc, skipped, err := decodeCityCounts([]byte(`{
		"B": [
			{"label": "b1", "value": 5, "coordinates": [-80, 45]},
			{"label": "b2", "value": 1, "coordinates": [-80]},
			{"label": "b3", "value": 7, "coordinates": [-81, 46]}
		],
		"A": [
			{"label": "a1", "value": 6, "coordinates": [-70, 50]},
			{"label": "", "value": 6, "coordinates": [-70, 50]}
		],
		"C": []
	}`))
	if err != nil {
		t.Fatalf("decodeCityCounts() yielded unexpected error %s", err)
	}
	if skipped != 2 {
		t.Errorf("decodeCityCounts() skipped %d, want 2", skipped)
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, cc.Regions()); diff != "" {
		t.Errorf("Regions() diff (-want +got):\n%s", diff)
	}
	wantAll := []geoheatmap.Item{
		{Label: "a1", Value: 6, Coordinates: orb.Point{-70, 50}},
		{Label: "b1", Value: 5, Coordinates: orb.Point{-80, 45}},
		{Label: "b3", Value: 7, Coordinates: orb.Point{-81, 46}},
	}
	if diff := cmp.Diff(wantAll, cc.All()); diff != "" {
		t.Errorf("All() diff (-want +got):\n%s", diff)
	}
	for _, test := range []struct {
		description string
		region      string
		n           int
		want        []barpiechart.Item
	}{{
		description: "all regions",
		n:           2,
		want:        []barpiechart.Item{{Label: "b3", Value: 7}, {Label: "a1", Value: 6}},
	}, {
		description: "one region",
		region:      "B",
		n:           10,
		want:        []barpiechart.Item{{Label: "b3", Value: 7}, {Label: "b1", Value: 5}},
	}, {
		description: "unknown region",
		region:      "Z",
		n:           10,
		want:        []barpiechart.Item{},
	}} {
		t.Run(test.description, func(t *testing.T) {
			if diff := cmp.Diff(test.want, cc.Top(test.region, test.n)); diff != "" {
				t.Errorf("Top() diff (-want +got):\n%s", diff)
			}
		})
	}
}

const textStats = `[
	{"title": "A", "author": "X", "year": 1900, "smog_index": 10, "flesch_reading_ease": -5.5},
	{"title": "B", "author": "Y", "year": 1900, "smog_index": 12, "flesch_reading_ease": null},
	{"title": "C", "author": "Z", "year": 1850, "smog_index": 9},
	{"title": "D", "year": null, "smog_index": 1},
	{"title": "E", "smog_index": 1}
]`

func TestDecodeTextStats(t *testing.T) {
	got, skipped, err := decodeTextStats([]byte(textStats))
	if err != nil {
		t.Fatalf("decodeTextStats() yielded unexpected error %s", err)
	}
	want := []TextStat{{
		Title: "A", Author: "X", Year: 1900,
		Metrics: map[Metric]float64{SmogIndex: 10, FleschReadingEase: -5.5},
	}, {
		Title: "B", Author: "Y", Year: 1900,
		Metrics: map[Metric]float64{SmogIndex: 12},
	}, {
		Title: "C", Author: "Z", Year: 1850,
		Metrics: map[Metric]float64{SmogIndex: 9},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decodeTextStats() diff (-want +got):\n%s", diff)
	}
	if skipped != 2 {
		t.Errorf("decodeTextStats() skipped %d, want 2", skipped)
	}
}

func TestProjections(t *testing.T) {
	stats, _, err := decodeTextStats([]byte(textStats))
	if err != nil {
		t.Fatalf("decodeTextStats() yielded unexpected error %s", err)
	}
	pts, missing := scatterPoints(stats, FleschReadingEase)
	wantPts := []scatterchart.Point{{
		X: 1900, Y: -5.5,
		Details: map[string]any{"author": "X", "title": "A"},
	}}
	if diff := cmp.Diff(wantPts, pts); diff != "" {
		t.Errorf("scatterPoints() diff (-want +got):\n%s", diff)
	}
	if missing != 2 {
		t.Errorf("scatterPoints() missed %d, want 2", missing)
	}
	avgs, missing := yearlyAverages(stats, SmogIndex)
	wantAvgs := []linechart.Point{{X: 1850, Y: 9}, {X: 1900, Y: 11}}
	if diff := cmp.Diff(wantAvgs, avgs); diff != "" {
		t.Errorf("yearlyAverages() diff (-want +got):\n%s", diff)
	}
	if missing != 0 {
		t.Errorf("yearlyAverages() missed %d, want 0", missing)
	}
}
