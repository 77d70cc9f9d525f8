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
	"encoding/json"
	"fmt"
	"math"
	"sort"

	barpiechart "github.com/ilhamster/litviz/bar_pie_chart"
	geoheatmap "github.com/ilhamster/litviz/geo_heat_map"
	linechart "github.com/ilhamster/litviz/line_chart"
	rankingchart "github.com/ilhamster/litviz/ranking_chart"
	scatterchart "github.com/ilhamster/litviz/scatter_chart"
	"github.com/paulmach/orb"
)

// MaxRankedEntries bounds the entries of a decoded ranking snapshot.
const MaxRankedEntries = 20

// Metric names a per-work readability statistic.
type Metric string

// Readability metrics, as keyed in text-stats.json.
const (
	AvgSentenceLength Metric = "avg_sentence_length"
	SmogIndex         Metric = "smog_index"
	FleschReadingEase Metric = "flesch_reading_ease"
	TextStandard      Metric = "text_standard"
)

var allMetrics = []Metric{AvgSentenceLength, SmogIndex, FleschReadingEase, TextStandard}

// TextStat is the readability record of one literary work.
type TextStat struct {
	Title, Author string
	Year          float64
	// Metrics holds each of the work's present, finite metrics.
	Metrics map[Metric]float64
}

// CityCounts maps region names to the geocoded city counts in each.
type CityCounts map[string][]geoheatmap.Item

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validValue reports whether a ranked or counted value is usable.
func validValue(v *float64) bool {
	return v != nil && finite(*v) && *v >= 0
}

type pointRecord struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// decodePoints decodes a JSON array of {x, y} points, ordered by x.  It
// returns the number of malformed records skipped.
func decodePoints(data []byte) ([]linechart.Point, int, error) {
	var recs []*pointRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode points: %w", err)
	}
	ret := make([]linechart.Point, 0, len(recs))
	skipped := 0
	for _, rec := range recs {
		if rec == nil || rec.X == nil || rec.Y == nil || !finite(*rec.X) || !finite(*rec.Y) {
			skipped++
			continue
		}
		ret = append(ret, linechart.Point{X: *rec.X, Y: *rec.Y})
	}
	sort.SliceStable(ret, func(a, b int) bool {
		return ret[a].X < ret[b].X
	})
	return ret, skipped, nil
}

type itemRecord struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

func (ir *itemRecord) valid() bool {
	return ir != nil && ir.Label != "" && validValue(ir.Value)
}

type snapshotRecord struct {
	Timestamp *float64      `json:"timestamp"`
	Entries   []*itemRecord `json:"entries"`
}

// decodeTimeline decodes a JSON array of ranking snapshots.  Snapshots are
// ordered by timestamp; those without a finite timestamp, or repeating an
// earlier one, are skipped, as are malformed and duplicate entries.  Each
// snapshot's entries are ordered by descending value and truncated to
// MaxRankedEntries.
func decodeTimeline(data []byte) ([]rankingchart.Snapshot, int, error) {
	var recs []*snapshotRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode ranking timeline: %w", err)
	}
	skipped := 0
	ret := make([]rankingchart.Snapshot, 0, len(recs))
	for _, rec := range recs {
		if rec == nil || rec.Timestamp == nil || !finite(*rec.Timestamp) {
			skipped++
			continue
		}
		snap := rankingchart.Snapshot{Timestamp: *rec.Timestamp}
		seen := map[string]bool{}
		for _, ent := range rec.Entries {
			if !ent.valid() || seen[ent.Label] {
				skipped++
				continue
			}
			seen[ent.Label] = true
			snap.Entries = append(snap.Entries, rankingchart.Item{Label: ent.Label, Value: *ent.Value})
		}
		sort.SliceStable(snap.Entries, func(a, b int) bool {
			return snap.Entries[a].Value > snap.Entries[b].Value
		})
		if len(snap.Entries) > MaxRankedEntries {
			snap.Entries = snap.Entries[:MaxRankedEntries]
		}
		ret = append(ret, snap)
	}
	sort.SliceStable(ret, func(a, b int) bool {
		return ret[a].Timestamp < ret[b].Timestamp
	})
	deduped := ret[:0]
	for _, snap := range ret {
		if len(deduped) > 0 && snap.Timestamp == deduped[len(deduped)-1].Timestamp {
			skipped++
			continue
		}
		deduped = append(deduped, snap)
	}
	return deduped, skipped, nil
}

type cityRecord struct {
	Label       string    `json:"label"`
	Value       *float64  `json:"value"`
	Coordinates []float64 `json:"coordinates"`
}

func (cr *cityRecord) valid() bool {
	if cr == nil || cr.Label == "" || !validValue(cr.Value) || len(cr.Coordinates) != 2 {
		return false
	}
	return finite(cr.Coordinates[0]) && finite(cr.Coordinates[1])
}

// decodeCityCounts decodes a JSON object mapping region names to arrays of
// geocoded items.
func decodeCityCounts(data []byte) (CityCounts, int, error) {
	var recs map[string][]*cityRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode city counts: %w", err)
	}
	skipped := 0
	ret := make(CityCounts, len(recs))
	for region, cities := range recs {
		items := make([]geoheatmap.Item, 0, len(cities))
		for _, city := range cities {
			if !city.valid() {
				skipped++
				continue
			}
			items = append(items, geoheatmap.Item{
				Label:       city.Label,
				Value:       *city.Value,
				Coordinates: orb.Point{city.Coordinates[0], city.Coordinates[1]},
			})
		}
		ret[region] = items
	}
	return ret, skipped, nil
}

// Regions returns the receiver's region names, sorted.
func (cc CityCounts) Regions() []string {
	ret := make([]string, 0, len(cc))
	for region := range cc {
		ret = append(ret, region)
	}
	sort.Strings(ret)
	return ret
}

// All returns every item of every region, in region name order.
func (cc CityCounts) All() []geoheatmap.Item {
	ret := []geoheatmap.Item{}
	for _, region := range cc.Regions() {
		ret = append(ret, cc[region]...)
	}
	return ret
}

// Top returns up to n of the highest-valued items of the named region, or of
// all regions if region is empty, ordered by descending value.  An unknown
// region has no items.
func (cc CityCounts) Top(region string, n int) []barpiechart.Item {
	var items []geoheatmap.Item
	if region == "" {
		items = cc.All()
	} else {
		items = cc[region]
	}
	ret := make([]barpiechart.Item, len(items))
	for idx, it := range items {
		ret[idx] = barpiechart.Item{Label: it.Label, Value: it.Value}
	}
	sort.SliceStable(ret, func(a, b int) bool {
		return ret[a].Value > ret[b].Value
	})
	if len(ret) > n {
		ret = ret[:n]
	}
	return ret
}

// decodeTextStats decodes a JSON array of readability records.  Records
// without a finite year are skipped; absent or non-finite metrics are
// omitted from their record.
func decodeTextStats(data []byte) ([]TextStat, int, error) {
	var recs []map[string]json.RawMessage
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode text stats: %w", err)
	}
	skipped := 0
	ret := make([]TextStat, 0, len(recs))
	for _, rec := range recs {
		var year *float64
		if raw, ok := rec["year"]; !ok || json.Unmarshal(raw, &year) != nil || year == nil || !finite(*year) {
			skipped++
			continue
		}
		ts := TextStat{Year: *year, Metrics: map[Metric]float64{}}
		if raw, ok := rec["title"]; ok {
			json.Unmarshal(raw, &ts.Title)
		}
		if raw, ok := rec["author"]; ok {
			json.Unmarshal(raw, &ts.Author)
		}
		for _, m := range allMetrics {
			raw, ok := rec[string(m)]
			if !ok {
				continue
			}
			var v *float64
			if json.Unmarshal(raw, &v) == nil && v != nil && finite(*v) {
				ts.Metrics[m] = *v
			}
		}
		ret = append(ret, ts)
	}
	return ret, skipped, nil
}

// scatterPoints projects each record carrying the provided metric into a
// point of that metric against the record's year, with its author and
// title as details.  It returns the number of records lacking the metric.
func scatterPoints(stats []TextStat, m Metric) ([]scatterchart.Point, int) {
	ret := make([]scatterchart.Point, 0, len(stats))
	missing := 0
	for _, ts := range stats {
		v, ok := ts.Metrics[m]
		if !ok {
			missing++
			continue
		}
		ret = append(ret, scatterchart.Point{
			X: ts.Year,
			Y: v,
			Details: map[string]any{
				"author": ts.Author,
				"title":  ts.Title,
			},
		})
	}
	return ret, missing
}

// yearlyAverages returns the per-year mean of the provided metric, ordered
// by year.  It returns the number of records lacking the metric.
func yearlyAverages(stats []TextStat, m Metric) ([]linechart.Point, int) {
	type acc struct {
		total float64
		count int
	}
	byYear := map[float64]*acc{}
	missing := 0
	for _, ts := range stats {
		v, ok := ts.Metrics[m]
		if !ok {
			missing++
			continue
		}
		a, ok := byYear[ts.Year]
		if !ok {
			a = &acc{}
			byYear[ts.Year] = a
		}
		a.total += v
		a.count++
	}
	ret := make([]linechart.Point, 0, len(byYear))
	for year, a := range byYear {
		ret = append(ret, linechart.Point{X: year, Y: a.total / float64(a.count)})
	}
	sort.Slice(ret, func(a, b int) bool {
		return ret[a].X < ret[b].X
	})
	return ret, missing
}
