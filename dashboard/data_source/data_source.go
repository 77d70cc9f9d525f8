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

// Package datasource provides a litviz data source for the Canadian
// literature dashboard's datasets.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/simplelru"
	barpiechart "github.com/ilhamster/litviz/bar_pie_chart"
	"github.com/ilhamster/litviz/category"
	"github.com/ilhamster/litviz/dashboard/metrics"
	geoheatmap "github.com/ilhamster/litviz/geo_heat_map"
	linechart "github.com/ilhamster/litviz/line_chart"
	rankingchart "github.com/ilhamster/litviz/ranking_chart"
	"github.com/ilhamster/litviz/resize"
	scatterchart "github.com/ilhamster/litviz/scatter_chart"
	"github.com/ilhamster/litviz/table"
	"github.com/ilhamster/litviz/topology"
	"github.com/ilhamster/litviz/util"
	xychart "github.com/ilhamster/litviz/xy_chart"
	"github.com/ilhamster/litviz/zoom"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	chartQuery   = "litviz.chart"
	catalogQuery = "litviz.catalog"
	statusQuery  = "litviz.status"

	chartIDKey    = "chart_id"
	widthKey      = "width"
	heightKey     = "height"
	modeKey       = "mode"
	regionKey     = "region"
	snapshotKey   = "snapshot"
	zoomKey       = "zoom"
	accumulateKey = "accumulate"

	kindKey       = "kind"
	titleKey      = "title"
	chartTitleKey = "chart_title"
	xLabelKey     = "x_label"
	yLabelKey     = "y_label"
	metricKey     = "metric"
	datasetsKey   = "datasets"

	pathKey    = "path"
	loadedKey  = "loaded"
	skippedKey = "skipped"
	errorKey   = "error"
)

// Bar and pie charts of cities show this many of the top cities.
const (
	topBarCities = 20
	topPieCities = 10
)

// wheelFactor is the zoom exponent contributed by each pixel of wheel delta.
const wheelFactor = 0.002

// DatasetStatus reports the outcome of the most recent load of a dataset.
type DatasetStatus struct {
	Path   string
	Loaded bool
	// Skipped is the number of malformed records dropped while decoding.
	Skipped int
	// Err is the most recent load failure, if the dataset is not loaded.
	Err       string
	UpdatedAt time.Time
}

// DataSource implements querydispatcher.dataSource for the dashboard's
// datasets.  It caches the most recently used decoded datasets.
type DataSource struct {
	fetcher  Fetcher
	logger   *slog.Logger
	object   string
	excluded []string
	// Deduplicates concurrent loads of the same dataset.
	group singleflight.Group

	mu sync.Mutex
	// An LRU cache holding the most recently-accessed decoded datasets.
	lru    *simplelru.LRU
	status map[string]*DatasetStatus
}

// Option configures a DataSource.
type Option func(ds *DataSource)

// WithLogger sets the DataSource's logger.  The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ds *DataSource) {
		ds.logger = logger
	}
}

// WithRegions sets the topology object and excluded regions of the
// DataSource's geo heat maps.
func WithRegions(object string, excluded []string) Option {
	return func(ds *DataSource) {
		ds.object = object
		ds.excluded = excluded
	}
}

// New returns a new DataSource with the specified cache capacity, and using
// the provided fetcher.
func New(cap int, fetcher Fetcher, opts ...Option) (*DataSource, error) {
	lru, err := simplelru.NewLRU(cap /*no onEvict policy*/, nil)
	if err != nil {
		return nil, err
	}
	ds := &DataSource{
		fetcher: fetcher,
		logger:  slog.Default(),
		lru:     lru,
		status:  map[string]*DatasetStatus{},
	}
	for _, opt := range opts {
		opt(ds)
	}
	return ds, nil
}

// SupportedDataSeriesQueries returns the DataSeriesRequest query names
// supported by DataSource.
func (ds *DataSource) SupportedDataSeriesQueries() []string {
	return []string{
		chartQuery,
		catalogQuery,
		statusQuery,
	}
}

func (ds *DataSource) cached(path string) (any, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	v, ok := ds.lru.Get(path)
	if ok {
		metrics.CacheHitsTotal.Inc()
	} else {
		metrics.CacheMissesTotal.Inc()
	}
	return v, ok
}

func (ds *DataSource) record(path string, skipped int, err error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	st := &DatasetStatus{
		Path:      path,
		Loaded:    err == nil,
		Skipped:   skipped,
		UpdatedAt: time.Now(),
	}
	if err != nil {
		st.Err = err.Error()
	}
	ds.status[path] = st
}

// load returns the dataset at the provided path, decoded with decode.  It is
// served from the LRU if present there; otherwise it is fetched, decoded, and
// added to the LRU.  Failed loads are not cached.
func load[T any](ctx context.Context, ds *DataSource, path string, decode func([]byte) (T, int, error)) (T, error) {
	var zero T
	if v, ok := ds.cached(path); ok {
		t, ok := v.(T)
		if !ok {
			return zero, fmt.Errorf("cached dataset '%s' has unexpected type %T", path, v)
		}
		return t, nil
	}
	v, err, _ := ds.group.Do(path, func() (any, error) {
		start := time.Now()
		data, err := ds.fetcher.Fetch(ctx, path)
		var (
			decoded T
			skipped int
		)
		if err == nil {
			decoded, skipped, err = decode(data)
		}
		elapsed := time.Since(start)
		metrics.FetchDurationMs.WithLabelValues(path).Observe(float64(elapsed.Milliseconds()))
		ds.record(path, skipped, err)
		if err != nil {
			metrics.FetchesTotal.WithLabelValues(path, metrics.ResultError).Inc()
			ds.logger.Error("failed to load dataset", "path", path, "error", err)
			return nil, err
		}
		metrics.FetchesTotal.WithLabelValues(path, metrics.ResultOK).Inc()
		if skipped > 0 {
			metrics.SkippedRecordsTotal.WithLabelValues(path).Add(float64(skipped))
			ds.logger.Warn("skipped malformed records", "path", path, "skipped", skipped)
		}
		ds.logger.Info("loaded dataset", "path", path, "duration", elapsed)
		ds.mu.Lock()
		ds.lru.Add(path, decoded)
		ds.mu.Unlock()
		return decoded, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func decodeTopology(data []byte) (*topology.Topology, int, error) {
	topo, err := topology.Parse(data)
	return topo, 0, err
}

// Statuses returns the status of every dataset loaded so far, ordered by
// path.
func (ds *DataSource) Statuses() []DatasetStatus {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ret := make([]DatasetStatus, 0, len(ds.status))
	for _, st := range ds.status {
		ret = append(ret, *st)
	}
	sort.Slice(ret, func(a, b int) bool {
		return ret[a].Path < ret[b].Path
	})
	return ret
}

// linePoints returns the points of a line chart entry.
func (ds *DataSource) linePoints(ctx context.Context, entry Entry) ([]linechart.Point, error) {
	if entry.Metric == "" {
		return load(ctx, ds, entry.Datasets[0], decodePoints)
	}
	stats, err := load(ctx, ds, entry.Datasets[0], decodeTextStats)
	if err != nil {
		return nil, err
	}
	pts, _ := yearlyAverages(stats, entry.Metric)
	return pts, nil
}

func (ds *DataSource) scatterPoints(ctx context.Context, entry Entry) ([]scatterchart.Point, error) {
	stats, err := load(ctx, ds, entry.Datasets[0], decodeTextStats)
	if err != nil {
		return nil, err
	}
	pts, _ := scatterPoints(stats, entry.Metric)
	return pts, nil
}

// Timeline returns the ranking timeline of the specified ranking chart.
func (ds *DataSource) Timeline(ctx context.Context, id string) (Entry, []rankingchart.Snapshot, error) {
	entry, ok := Lookup(id)
	if !ok {
		return Entry{}, nil, fmt.Errorf("%w '%s'", ErrUnknownChart, id)
	}
	if entry.Kind != RankingKind {
		return Entry{}, nil, fmt.Errorf("chart '%s' is not a ranking chart", id)
	}
	timeline, err := load(ctx, ds, entry.Datasets[0], decodeTimeline)
	if err != nil {
		return Entry{}, nil, err
	}
	return entry, timeline, nil
}

func wheelTo(k float64, center zoom.Point) zoom.WheelEvent {
	return zoom.WheelEvent{
		Position: center,
		DeltaY:   -math.Log2(k) / wheelFactor,
	}
}

func zoomXY(c *xychart.Chart, k float64) {
	if k == 0 || k == 1 {
		return
	}
	p := c.Plot()
	if p == nil {
		return
	}
	c.Wheel(wheelTo(k, zoom.Point{X: p.InnerWidth / 2, Y: p.InnerHeight / 2}))
}

// Chart returns the specified chart, mounted in a container of the requested
// size and loaded with its datasets.  If a dataset cannot be loaded, the
// failure is logged and the chart is returned in its loading state.  Callers
// must Unmount the returned chart.
func (ds *DataSource) Chart(ctx context.Context, id string, opts Options) (Chart, error) {
	entry, ok := Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownChart, id)
	}
	if opts.Zoom < 0 || math.IsNaN(opts.Zoom) || math.IsInf(opts.Zoom, 0) {
		return nil, fmt.Errorf("invalid zoom %v", opts.Zoom)
	}
	container := resize.NewContainer(opts.Size)
	switch entry.Kind {
	case LineKind:
		c := linechart.New(linechart.Props{
			Title:  entry.ChartTitle,
			XLabel: entry.XLabel,
			YLabel: entry.YLabel,
		})
		c.Mount(container)
		if pts, err := ds.linePoints(ctx, entry); err == nil {
			c.Load(pts)
			zoomXY(c.Chart, opts.Zoom)
		}
		return c, nil
	case ScatterKind:
		c := scatterchart.New(scatterchart.Props{
			Title:  entry.ChartTitle,
			XLabel: entry.XLabel,
			YLabel: entry.YLabel,
		})
		c.Mount(container)
		if pts, err := ds.scatterPoints(ctx, entry); err == nil {
			c.Load(pts)
			zoomXY(c.Chart, opts.Zoom)
		}
		return c, nil
	case RankingKind:
		c := rankingchart.New(rankingchart.Props{
			XLabel:     entry.XLabel,
			YLabel:     entry.YLabel,
			Accumulate: opts.Accumulate,
		})
		c.Mount(container)
		timeline, err := load(ctx, ds, entry.Datasets[0], decodeTimeline)
		if err != nil {
			return c, nil
		}
		if err := c.Load(timeline); err != nil {
			c.Unmount()
			return nil, err
		}
		if opts.Snapshot != 0 {
			if err := c.Scrub(opts.Snapshot); err != nil {
				c.Unmount()
				return nil, err
			}
		}
		return c, nil
	case GeoHeatMapKind:
		c := geoheatmap.New(geoheatmap.Props{
			Object:   ds.object,
			Excluded: ds.excluded,
		})
		c.Mount(container)
		counts, err := load(ctx, ds, entry.Datasets[0], decodeCityCounts)
		if err != nil {
			return c, nil
		}
		topo, err := load(ctx, ds, entry.Datasets[1], decodeTopology)
		if err != nil {
			return c, nil
		}
		if err := c.Load(topo, counts.All()); err != nil {
			c.Unmount()
			return nil, err
		}
		if opts.Zoom != 0 && opts.Zoom != 1 {
			size := opts.Size.OrDefault()
			c.Wheel(wheelTo(opts.Zoom, zoom.Point{X: float64(size.Width) / 2, Y: float64(size.Height) / 2}))
		}
		return c, nil
	case BarPieKind:
		mode := barpiechart.PieMode
		if opts.Mode != "" {
			var err error
			if mode, err = barpiechart.ParseMode(opts.Mode); err != nil {
				return nil, err
			}
		}
		place := opts.Region
		if place == "" {
			place = "Canada"
		}
		c := barpiechart.New(barpiechart.Props{
			XLabel:   entry.XLabel,
			YLabel:   entry.YLabel,
			BarTitle: fmt.Sprintf("Top %d Cities in %s", topBarCities, place),
			PieTitle: fmt.Sprintf("Top %d Cities in %s", topPieCities, place),
			Mode:     mode,
		})
		c.Mount(container)
		counts, err := load(ctx, ds, entry.Datasets[0], decodeCityCounts)
		if err != nil {
			return c, nil
		}
		n := topPieCities
		if mode == barpiechart.BarMode {
			n = topBarCities
		}
		c.Load(counts.Top(opts.Region, n))
		return c, nil
	default:
		return nil, fmt.Errorf("chart '%s' has unsupported kind '%s'", id, entry.Kind)
	}
}

// option returns the named option from the request, falling back to the
// global filters.
func option(key string, reqOpts, globalFilters map[string]*util.V) (*util.V, bool) {
	if v, ok := reqOpts[key]; ok {
		return v, true
	}
	v, ok := globalFilters[key]
	return v, ok
}

func integerOption(key string, reqOpts, globalFilters map[string]*util.V) (int, error) {
	v, ok := option(key, reqOpts, globalFilters)
	if !ok {
		return 0, nil
	}
	i, err := util.ExpectIntegerValue(v)
	if err != nil {
		return 0, fmt.Errorf("option '%s' must be an integer", key)
	}
	return int(i), nil
}

func stringOption(key string, reqOpts, globalFilters map[string]*util.V) (string, error) {
	v, ok := option(key, reqOpts, globalFilters)
	if !ok {
		return "", nil
	}
	s, err := util.ExpectStringValue(v)
	if err != nil {
		return "", fmt.Errorf("option '%s' must be a string", key)
	}
	return s, nil
}

func boolOption(key string, reqOpts, globalFilters map[string]*util.V) (bool, error) {
	v, ok := option(key, reqOpts, globalFilters)
	if !ok {
		return false, nil
	}
	b, err := util.ExpectBoolValue(v)
	if err != nil {
		return false, fmt.Errorf("option '%s' must be a bool", key)
	}
	return b, nil
}

// chartOptions assembles a chart ID and Options from the provided request
// options and global filters.
func chartOptions(reqOpts, globalFilters map[string]*util.V) (string, Options, error) {
	var (
		opts Options
		err  error
	)
	id, err := stringOption(chartIDKey, reqOpts, globalFilters)
	if err != nil {
		return "", Options{}, err
	}
	if id == "" {
		return "", Options{}, fmt.Errorf("missing required option '%s'", chartIDKey)
	}
	if opts.Size.Width, err = integerOption(widthKey, reqOpts, globalFilters); err != nil {
		return "", Options{}, err
	}
	if opts.Size.Height, err = integerOption(heightKey, reqOpts, globalFilters); err != nil {
		return "", Options{}, err
	}
	if opts.Mode, err = stringOption(modeKey, reqOpts, globalFilters); err != nil {
		return "", Options{}, err
	}
	if opts.Region, err = stringOption(regionKey, reqOpts, globalFilters); err != nil {
		return "", Options{}, err
	}
	if opts.Snapshot, err = integerOption(snapshotKey, reqOpts, globalFilters); err != nil {
		return "", Options{}, err
	}
	if v, ok := option(zoomKey, reqOpts, globalFilters); ok {
		if opts.Zoom, err = util.ExpectDoubleValue(v); err != nil {
			return "", Options{}, fmt.Errorf("option '%s' must be a double", zoomKey)
		}
	}
	if opts.Accumulate, err = boolOption(accumulateKey, reqOpts, globalFilters); err != nil {
		return "", Options{}, err
	}
	return id, opts, nil
}

func (ds *DataSource) handleChartQuery(ctx context.Context, series util.DataBuilder, reqOpts, globalFilters map[string]*util.V) error {
	id, opts, err := chartOptions(reqOpts, globalFilters)
	if err != nil {
		return err
	}
	chart, err := ds.Chart(ctx, id, opts)
	if err != nil {
		return err
	}
	defer chart.Unmount()
	entry, _ := Lookup(id)
	series.With(
		util.StringProperty(chartIDKey, entry.ID),
		util.StringProperty(kindKey, string(entry.Kind)),
		util.StringProperty(titleKey, entry.Title),
	)
	chart.Define(series.Child())
	return nil
}

func handleCatalogQuery(series util.DataBuilder) {
	for _, entry := range Catalog {
		series.Child().With(
			util.StringProperty(chartIDKey, entry.ID),
			util.StringProperty(kindKey, string(entry.Kind)),
			util.StringProperty(titleKey, entry.Title),
			util.If(entry.ChartTitle != "", util.StringProperty(chartTitleKey, entry.ChartTitle)),
			util.If(entry.XLabel != "", util.StringProperty(xLabelKey, entry.XLabel)),
			util.If(entry.YLabel != "", util.StringProperty(yLabelKey, entry.YLabel)),
			util.If(entry.Metric != "", util.StringProperty(metricKey, string(entry.Metric))),
			util.StringsProperty(datasetsKey, entry.Datasets...),
		)
	}
}

var (
	pathColumn    = table.Column(category.New(pathKey, "Dataset", "Dataset path relative to the data root"))
	loadedColumn  = table.Column(category.New(loadedKey, "Loaded", "Whether the latest load succeeded"))
	skippedColumn = table.Column(category.New(skippedKey, "Skipped", "Malformed records dropped while decoding"))
	errorColumn   = table.Column(category.New(errorKey, "Error", "The latest load failure"))
)

// handleStatusQuery reports dataset statuses as a table, one row per dataset.
func (ds *DataSource) handleStatusQuery(series util.DataBuilder) {
	tbl := table.New(series, nil, pathColumn, loadedColumn, skippedColumn, errorColumn)
	for _, st := range ds.Statuses() {
		tbl.Row(
			table.Cell(pathColumn, util.String(st.Path)),
			table.Cell(loadedColumn, util.Bool(st.Loaded)),
			table.Cell(skippedColumn, util.Integer(int64(st.Skipped))),
			table.Cell(errorColumn, util.String(st.Err)),
		)
	}
}

// HandleDataSeriesRequests handles the provided set of DataSeriesRequests, with
// the provided global filters.  It assembles its responses in the provided
// DataResponseBuilder.
func (ds *DataSource) HandleDataSeriesRequests(ctx context.Context, globalFilters map[string]*util.V, drb *util.DataResponseBuilder, reqs []*util.DataSeriesRequest) error {
	// Log how long it takes to handle each DataRequest.
	start := time.Now()
	queryNames := make([]string, 0, len(reqs))
	for _, req := range reqs {
		queryNames = append(queryNames, req.QueryName)
	}
	defer func() {
		ds.logger.Info("handled queries", "queries", strings.Join(queryNames, ", "), "duration", time.Since(start))
	}()
	// Series are created in request order, then filled concurrently.
	series := make([]util.DataBuilder, len(reqs))
	for idx, req := range reqs {
		series[idx] = drb.DataSeries(req)
	}
	errg, ctx := errgroup.WithContext(ctx)
	for idx, req := range reqs {
		db := series[idx]
		errg.Go(func() error {
			queryStart := time.Now()
			var err error
			switch req.QueryName {
			case chartQuery:
				err = ds.handleChartQuery(ctx, db, req.Options, globalFilters)
			case catalogQuery:
				handleCatalogQuery(db)
			case statusQuery:
				ds.handleStatusQuery(db)
			default:
				err = errors.New("unsupported data query")
			}
			metrics.QueryDurationMs.WithLabelValues(req.QueryName).Observe(float64(time.Since(queryStart).Milliseconds()))
			if err != nil {
				return fmt.Errorf("error handling data query %s: %w", req.QueryName, err)
			}
			return nil
		})
	}
	return errg.Wait()
}
