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

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	datasource "github.com/ilhamster/litviz/dashboard/data_source"
	"github.com/ilhamster/litviz/dashboard/metrics"
)

const (
	catalogPath = "/charts"
	renderPath  = "/charts/{id}.svg"

	idParam = "id"
)

// ChartSource builds dashboard charts.
type ChartSource interface {
	Chart(ctx context.Context, id string, opts datasource.Options) (datasource.Chart, error)
}

// chartHandler serves the chart catalog and SVG renderings of its charts.
type chartHandler struct {
	charts ChartSource
	logger *slog.Logger
}

// NewChartHandler returns a Handler listing the dashboard's charts and
// rendering them, at a moment of their animation, as SVG.
func NewChartHandler(charts ChartSource, logger *slog.Logger) Handler {
	return &chartHandler{
		charts: charts,
		logger: logger,
	}
}

// HandlersByPath returns a mapping of HTTP request path to HTTP handler for
// this Handler.
func (ch *chartHandler) HandlersByPath() map[string]func(http.ResponseWriter, *http.Request) {
	return map[string]func(http.ResponseWriter, *http.Request){
		catalogPath: ch.catalog,
		renderPath:  ch.render,
	}
}

type catalogEntry struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Kind       string   `json:"kind"`
	ChartTitle string   `json:"chart_title,omitempty"`
	XLabel     string   `json:"x_label,omitempty"`
	YLabel     string   `json:"y_label,omitempty"`
	Metric     string   `json:"metric,omitempty"`
	Datasets   []string `json:"datasets"`
}

func (ch *chartHandler) catalog(w http.ResponseWriter, req *http.Request) {
	ret := make([]catalogEntry, len(datasource.Catalog))
	for idx, e := range datasource.Catalog {
		ret[idx] = catalogEntry{
			ID:         e.ID,
			Title:      e.Title,
			Kind:       string(e.Kind),
			ChartTitle: e.ChartTitle,
			XLabel:     e.XLabel,
			YLabel:     e.YLabel,
			Metric:     string(e.Metric),
			Datasets:   e.Datasets,
		}
	}
	writeJSON(w, ret)
}

func intParam(q url.Values, key string) (int, error) {
	s := q.Get(key)
	if s == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parameter '%s' must be an integer", key)
	}
	return i, nil
}

func boolParam(q url.Values, key string) (bool, error) {
	s := q.Get(key)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("parameter '%s' must be a bool", key)
	}
	return b, nil
}

// renderOptions returns the chart options and elapsed animation time
// requested by the provided query.  A missing time means the end of the
// chart's animations.
func renderOptions(q url.Values) (datasource.Options, *time.Duration, error) {
	var (
		opts datasource.Options
		err  error
	)
	if opts.Size.Width, err = intParam(q, "width"); err != nil {
		return opts, nil, err
	}
	if opts.Size.Height, err = intParam(q, "height"); err != nil {
		return opts, nil, err
	}
	if opts.Snapshot, err = intParam(q, "snapshot"); err != nil {
		return opts, nil, err
	}
	if opts.Accumulate, err = boolParam(q, "accumulate"); err != nil {
		return opts, nil, err
	}
	opts.Mode = q.Get("mode")
	opts.Region = q.Get("region")
	if z := q.Get("zoom"); z != "" {
		if opts.Zoom, err = strconv.ParseFloat(z, 64); err != nil {
			return opts, nil, fmt.Errorf("parameter 'zoom' must be a number")
		}
	}
	var elapsed *time.Duration
	if t := q.Get("t"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil || d < 0 {
			return opts, nil, fmt.Errorf("parameter 't' must be a non-negative duration")
		}
		elapsed = &d
	}
	return opts, elapsed, nil
}

func (ch *chartHandler) render(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, idParam)
	opts, elapsed, err := renderOptions(req.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	chart, err := ch.charts.Chart(req.Context(), id, opts)
	if errors.Is(err, datasource.ErrUnknownChart) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer chart.Unmount()
	sc := chart.Scene()
	at := sc.Duration()
	if elapsed != nil {
		at = *elapsed
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := sc.WriteSVG(w, at); err != nil {
		ch.logger.Error("failed to write chart", "chart", id, "error", err)
		return
	}
	metrics.RendersTotal.WithLabelValues(id).Inc()
}
