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

package querydispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/litviz/util"
)

const chartIDKey = "chart_id"

// testDataSource answers each request with a series holding the requested
// chart ID, and counts the queries it handles.
type testDataSource struct {
	queries []string

	mu      sync.Mutex
	handled map[string]int
}

func newTestDataSource(queries ...string) *testDataSource {
	return &testDataSource{
		queries: queries,
		handled: map[string]int{},
	}
}

func (tds *testDataSource) SupportedDataSeriesQueries() []string {
	return tds.queries
}

func (tds *testDataSource) HandleDataSeriesRequests(ctx context.Context, globalFilters map[string]*util.V, drb *util.DataResponseBuilder, reqs []*util.DataSeriesRequest) error {
	id, err := util.ExpectStringValue(globalFilters[chartIDKey])
	if err != nil {
		return err
	}
	if id == "error" {
		return errors.New("oops")
	}
	for _, req := range reqs {
		drb.DataSeries(req).With(
			util.StringProperty(chartIDKey, id),
			util.StringProperty("query", req.QueryName),
		)
		tds.mu.Lock()
		tds.handled[req.QueryName]++
		tds.mu.Unlock()
	}
	return nil
}

func (tds *testDataSource) handledQueries() map[string]int {
	tds.mu.Lock()
	defer tds.mu.Unlock()
	ret := map[string]int{}
	for k, v := range tds.handled {
		ret[k] = v
	}
	return ret
}

func TestNew(t *testing.T) {
	for _, test := range []struct {
		description string
		dataSources []dataSource
		wantErr     bool
	}{{
		description: "no data sources",
	}, {
		description: "disjoint data sources",
		dataSources: []dataSource{
			newTestDataSource("litviz.chart", "litviz.catalog"),
			newTestDataSource("litviz.status"),
		},
	}, {
		description: "conflicting data sources",
		dataSources: []dataSource{
			newTestDataSource("litviz.chart", "litviz.catalog"),
			newTestDataSource("litviz.catalog"),
		},
		wantErr: true,
	}} {
		t.Run(test.description, func(t *testing.T) {
			_, err := New(test.dataSources...)
			if test.wantErr != (err != nil) {
				t.Fatalf("New() yielded unexpected error %v", err)
			}
		})
	}
}

func series(id, query string) func(util.DataBuilder) {
	return func(db util.DataBuilder) {
		db.With(
			util.StringProperty(chartIDKey, id),
			util.StringProperty("query", query),
		)
	}
}

func TestHandleDataRequest(t *testing.T) {
	type wantSeries struct {
		name, query string
	}
	for _, test := range []struct {
		description string
		id          string
		reqs        []*util.DataSeriesRequest
		wantSeries  []wantSeries
		// Queries handled by each data source.
		wantHandled []map[string]int
		wantErr     bool
	}{{
		description: "one data source",
		id:          "changing-length-canadian-literature",
		reqs: []*util.DataSeriesRequest{
			{QueryName: "litviz.chart", SeriesName: "1"},
		},
		wantSeries:  []wantSeries{{"1", "litviz.chart"}},
		wantHandled: []map[string]int{{"litviz.chart": 1}, {}},
	}, {
		description: "series follow request order across data sources",
		id:          "smog-index-canadian-literature",
		reqs: []*util.DataSeriesRequest{
			{QueryName: "litviz.status", SeriesName: "a"},
			{QueryName: "litviz.chart", SeriesName: "b"},
			{QueryName: "litviz.status", SeriesName: "c"},
			{QueryName: "litviz.catalog", SeriesName: "d"},
		},
		wantSeries: []wantSeries{
			{"a", "litviz.status"},
			{"b", "litviz.chart"},
			{"c", "litviz.status"},
			{"d", "litviz.catalog"},
		},
		wantHandled: []map[string]int{
			{"litviz.chart": 1, "litviz.catalog": 1},
			{"litviz.status": 2},
		},
	}, {
		description: "data source failure",
		id:          "error",
		reqs: []*util.DataSeriesRequest{
			{QueryName: "litviz.chart", SeriesName: "1"},
		},
		wantErr: true,
	}, {
		description: "unsupported query",
		id:          "changing-length-canadian-literature",
		reqs: []*util.DataSeriesRequest{
			{QueryName: "litviz.chart", SeriesName: "1"},
			{QueryName: "litviz.polar", SeriesName: "2"},
		},
		wantErr:     true,
		wantHandled: []map[string]int{{}, {}},
	}} {
		t.Run(test.description, func(t *testing.T) {
			sources := []*testDataSource{
				newTestDataSource("litviz.chart", "litviz.catalog"),
				newTestDataSource("litviz.status"),
			}
			qd, err := New(sources[0], sources[1])
			if err != nil {
				t.Fatalf("New() yielded unexpected error %s", err)
			}
			got, err := qd.HandleDataRequest(context.Background(), &util.DataRequest{
				GlobalFilters: map[string]*util.V{
					chartIDKey: util.StringValue(test.id),
				},
				SeriesRequests: test.reqs,
			})
			if test.wantErr != (err != nil) {
				t.Fatalf("HandleDataRequest() yielded unexpected error %v", err)
			}
			for idx, want := range test.wantHandled {
				if diff := cmp.Diff(want, sources[idx].handledQueries()); diff != "" {
					t.Errorf("data source %d handled queries diff (-want +got):\n%s", idx, diff)
				}
			}
			if err != nil {
				return
			}
			drb := util.NewDataResponseBuilder()
			for _, ws := range test.wantSeries {
				series(test.id, ws.query)(drb.DataSeries(&util.DataSeriesRequest{SeriesName: ws.name}))
			}
			want, err := drb.Data()
			if err != nil {
				t.Fatalf("failed to build wanted data: %s", err)
			}
			if diff := cmp.Diff(want.PrettyPrint(), got.PrettyPrint()); diff != "" {
				t.Errorf("HandleDataRequest() diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandleNilRequest(t *testing.T) {
	qd, err := New(newTestDataSource("litviz.chart"))
	if err != nil {
		t.Fatalf("New() yielded unexpected error %s", err)
	}
	if _, err := qd.HandleDataRequest(context.Background(), nil); err == nil {
		t.Errorf("HandleDataRequest(nil) yielded no error")
	}
}

func TestSupportedQueries(t *testing.T) {
	qd, err := New(newTestDataSource("litviz.status"), newTestDataSource("litviz.chart", "litviz.catalog"))
	if err != nil {
		t.Fatalf("New() yielded unexpected error %s", err)
	}
	want := []string{"litviz.catalog", "litviz.chart", "litviz.status"}
	if diff := cmp.Diff(want, qd.SupportedQueries()); diff != "" {
		t.Errorf("SupportedQueries() diff (-want +got):\n%s", diff)
	}
}
