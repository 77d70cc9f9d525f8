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

// Package metrics defines the litviz dashboard's Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000}

// Dataset fetch results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	FetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "litviz_dataset_fetches_total",
		Help: "Dataset fetches by path and result",
	}, []string{"path", "result"})
	FetchDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "litviz_dataset_fetch_duration_ms",
		Help:    "Dataset fetch and decode duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"path"})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "litviz_dataset_cache_hits_total",
		Help: "Dataset cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "litviz_dataset_cache_misses_total",
		Help: "Dataset cache misses",
	})
	SkippedRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "litviz_skipped_records_total",
		Help: "Malformed dataset records skipped during decoding",
	}, []string{"path"})
	QueryDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "litviz_query_duration_ms",
		Help:    "Data series query duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"query"})
	DataRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "litviz_data_requests_total",
		Help: "Data protocol requests by result",
	}, []string{"result"})
	RendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "litviz_renders_total",
		Help: "SVG chart renders by chart",
	}, []string{"chart"})
	PlaybackSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "litviz_playback_sessions",
		Help: "Open ranking playback streams",
	})
)

func init() {
	prometheus.MustRegister(FetchesTotal)
	prometheus.MustRegister(FetchDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(SkippedRecordsTotal)
	prometheus.MustRegister(QueryDurationMs)
	prometheus.MustRegister(DataRequestsTotal)
	prometheus.MustRegister(RendersTotal)
	prometheus.MustRegister(PlaybackSessions)
}

// Handler returns the handler exposing all registered metrics.
func Handler() http.Handler { return promhttp.Handler() }
