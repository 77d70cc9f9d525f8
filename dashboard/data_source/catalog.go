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
	"errors"

	"github.com/ilhamster/litviz/resize"
	"github.com/ilhamster/litviz/scene"
	"github.com/ilhamster/litviz/util"
)

// ErrUnknownChart is returned for chart IDs missing from the catalog.
var ErrUnknownChart = errors.New("unknown chart")

// Kind is the kind of chart a catalog entry draws.
type Kind string

// Chart kinds.
const (
	LineKind       Kind = "line"
	ScatterKind    Kind = "scatter"
	RankingKind    Kind = "ranking"
	GeoHeatMapKind Kind = "geo_heat_map"
	BarPieKind     Kind = "bar_pie"
)

// Dataset paths, relative to the data root.
const (
	AvgWordCountPath = "avg-word-count-by-year.json"
	TopWordsPath     = "top-words-by-year.json"
	CityCountsPath   = "city-count-by-province.json"
	ProvincesPath    = "canada-provinces-0.1-tolerance.topojson"
	TextStatsPath    = "text-stats.json"
	BookCountsPath   = "collected-book-counts-by-year.json"
)

// Entry describes one dashboard chart.
type Entry struct {
	ID string
	// Title is the title of the chart's dashboard card.
	Title                      string
	Kind                       Kind
	ChartTitle, XLabel, YLabel string
	// Metric, if set, derives the chart's points from readability records.
	Metric Metric
	// Datasets are the paths of the resources the chart is drawn from.
	Datasets []string
}

// Catalog lists the dashboard's charts, in card order.
var Catalog = []Entry{{
	ID:         "changing-length-canadian-literature",
	Title:      "The Changing Length of Canadian Literature (1769-1964)",
	Kind:       LineKind,
	ChartTitle: "Average Word Count vs Year",
	XLabel:     "Year",
	YLabel:     "Average Word Count",
	Datasets:   []string{AvgWordCountPath},
}, {
	ID:       "most-common-word-canadian-literature",
	Title:    "What's the Most Common Word in Canadian Literature? (1769-1964)",
	Kind:     RankingKind,
	XLabel:   "Word Count",
	YLabel:   "Rank",
	Datasets: []string{TopWordsPath},
}, {
	ID:       "cities-in-canadian-literature",
	Title:    "What's the popular cities in Canadian Literature (1769-1964)",
	Kind:     GeoHeatMapKind,
	Datasets: []string{CityCountsPath, ProvincesPath},
}, {
	ID:       "top-cities-canadian-literature",
	Title:    "Canadian Literature Distribution",
	Kind:     BarPieKind,
	XLabel:   "Word Count",
	YLabel:   "Rank",
	Datasets: []string{CityCountsPath},
}, {
	ID:         "changing-sentence-length-canadian-literature",
	Title:      "The Changing Sentence Length of Canadian Literature (1769-1964)",
	Kind:       ScatterKind,
	ChartTitle: "Average Sentence Length vs Year",
	XLabel:     "Year",
	YLabel:     "Average Sentence Length",
	Metric:     AvgSentenceLength,
	Datasets:   []string{TextStatsPath},
}, {
	ID:         "smog-index-canadian-literature",
	Title:      "Smog Index of Canadian Literature (1769-1964)",
	Kind:       ScatterKind,
	ChartTitle: "Smog Index vs Year",
	XLabel:     "Year",
	YLabel:     "Smog Index",
	Metric:     SmogIndex,
	Datasets:   []string{TextStatsPath},
}, {
	ID:         "flesch-reading-ease-canadian-literature",
	Title:      "Flesch Reading Ease of Canadian Literature (1769-1964)",
	Kind:       ScatterKind,
	ChartTitle: "Flesch Reading Ease vs Year",
	XLabel:     "Year",
	YLabel:     "Flesch Reading Ease",
	Metric:     FleschReadingEase,
	Datasets:   []string{TextStatsPath},
}, {
	ID:         "avg-text-standard-by-year-canadian-literature",
	Title:      "What grade needed to read Canadian literatures (1769-1964)",
	Kind:       LineKind,
	ChartTitle: "Average Text Standards vs Year",
	XLabel:     "Year",
	YLabel:     "Average Text Standards",
	Metric:     TextStandard,
	Datasets:   []string{TextStatsPath},
}, {
	ID:         "collected-book-counts",
	Title:      "Collected Book Counts by Year (1769-1964)",
	Kind:       LineKind,
	ChartTitle: "Collected Book Counts by Year (1769-1964)",
	XLabel:     "Year",
	YLabel:     "Number of Books",
	Datasets:   []string{BookCountsPath},
}}

// Lookup returns the catalog entry with the provided ID.
func Lookup(id string) (Entry, bool) {
	for _, e := range Catalog {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Chart is a mounted dashboard chart.  Callers must Unmount it when done.
type Chart interface {
	Mount(container *resize.Container)
	Unmount()
	Scene() *scene.Scene
	Define(db util.DataBuilder)
}

// Options adjust how a chart is drawn.
type Options struct {
	// Size is the chart's container size; unset dimensions take their
	// defaults.
	Size resize.Size
	// Mode is the mode of a bar/pie chart, "bar" or "pie".  Empty means pie.
	Mode string
	// Region restricts a bar/pie chart of cities to one region.
	Region string
	// Snapshot is the ranking snapshot shown by a ranking chart.
	Snapshot int
	// Accumulate makes a ranking chart rank running totals rather than each
	// snapshot's own values.
	Accumulate bool
	// Zoom, if neither 0 nor 1, zooms a zoomable chart about its center.
	Zoom float64
}
