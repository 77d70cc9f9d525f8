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

// Package querydispatcher routes the data series queries of a single data
// request to the data sources that serve them, such as the dashboard's
// chart, catalog and status queries.
package querydispatcher

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ilhamster/litviz/util"
	"golang.org/x/sync/errgroup"
)

// dataSource serves a set of named data series queries.  Its
// HandleDataSeriesRequests must be safe for concurrent use.
type dataSource interface {
	// SupportedDataSeriesQueries returns the query names the data source
	// serves.  Names must be unique across a dispatcher's data sources, so
	// they are conventionally prefixed, as in 'litviz.chart'.
	SupportedDataSeriesQueries() []string
	// HandleDataSeriesRequests adds a series to drb for each request.  An
	// error fails the whole data request.
	HandleDataSeriesRequests(ctx context.Context, globalFilters map[string]*util.V, drb *util.DataResponseBuilder, reqs []*util.DataSeriesRequest) error
}

// QueryDispatcher fans a data request's series queries out to its data
// sources, concurrently, and assembles their series into one response.
type QueryDispatcher struct {
	dataSources []dataSource
	// Index into dataSources of each query's data source.
	sourceByQuery map[string]int
}

// New returns a QueryDispatcher over the provided data sources.  It fails if
// two data sources serve the same query.
func New(dss ...dataSource) (*QueryDispatcher, error) {
	qd := &QueryDispatcher{
		dataSources:   dss,
		sourceByQuery: map[string]int{},
	}
	for idx, ds := range dss {
		for _, query := range ds.SupportedDataSeriesQueries() {
			if _, ok := qd.sourceByQuery[query]; ok {
				return nil, fmt.Errorf("multiple data sources serve query '%s'", query)
			}
			qd.sourceByQuery[query] = idx
		}
	}
	return qd, nil
}

// SupportedQueries returns the sorted names of all queries the receiver can
// dispatch.
func (qd *QueryDispatcher) SupportedQueries() []string {
	ret := make([]string, 0, len(qd.sourceByQuery))
	for name := range qd.sourceByQuery {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// HandleDataRequest dispatches each of req's series requests to its data
// source and returns the combined response, with series in request order.
// No data source is invoked if any query is unsupported.
func (qd *QueryDispatcher) HandleDataRequest(ctx context.Context, req *util.DataRequest) (*util.Data, error) {
	if req == nil {
		return nil, errors.New("missing data request")
	}
	bySource := map[int][]*util.DataSeriesRequest{}
	order := map[string]int{}
	for idx, seriesReq := range req.SeriesRequests {
		dsIdx, ok := qd.sourceByQuery[seriesReq.QueryName]
		if !ok {
			return nil, fmt.Errorf("unsupported data query '%s'", seriesReq.QueryName)
		}
		bySource[dsIdx] = append(bySource[dsIdx], seriesReq)
		if _, ok := order[seriesReq.SeriesName]; !ok {
			order[seriesReq.SeriesName] = idx
		}
	}
	drb := util.NewDataResponseBuilder()
	errg, ctx := errgroup.WithContext(ctx)
	for dsIdx, reqs := range bySource {
		ds := qd.dataSources[dsIdx]
		errg.Go(func() error {
			return ds.HandleDataSeriesRequests(ctx, req.GlobalFilters, drb, reqs)
		})
	}
	if err := errg.Wait(); err != nil {
		return nil, err
	}
	data, err := drb.Data()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(data.DataSeries, func(a, b int) bool {
		return order[data.DataSeries[a].SeriesName] < order[data.DataSeries[b].SeriesName]
	})
	return data, nil
}
